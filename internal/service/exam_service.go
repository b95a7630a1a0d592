package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

const (
	examCodeLength      = 8
	examCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	examCodeMaxAttempts = 20
	paperCacheSlack     = 30 * time.Minute
)

// ExamService owns the exam lifecycle: creation, scheduling, code
// generation, activation and completion, plus the student access check.
type ExamService struct {
	exams     ExamStore
	questions QuestionStore
	users     UserStore
	paper     PaperCache
	log       zerolog.Logger
	// codeLeadTime is the minimum gap between code generation and the
	// scheduled start.
	codeLeadTime time.Duration
	now          func() time.Time
}

func NewExamService(exams ExamStore, questions QuestionStore, users UserStore, paper PaperCache, log zerolog.Logger, codeLeadTime time.Duration) *ExamService {
	return &ExamService{
		exams:        exams,
		questions:    questions,
		users:        users,
		paper:        paper,
		log:          log.With().Str("component", "exam_service").Logger(),
		codeLeadTime: codeLeadTime,
		now:          time.Now,
	}
}

// getOwned loads an exam and verifies the caller may manage it. Admins
// manage every exam, examiners only their own.
func (s *ExamService) getOwned(ctx context.Context, examID, userID uuid.UUID, role model.Role) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	if role != model.RoleAdmin && exam.CreatedBy != userID {
		return nil, ErrNotAuthorized
	}
	return exam, nil
}

func (s *ExamService) Create(ctx context.Context, creatorID uuid.UUID, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		ID:               uuid.New(),
		Title:            req.Title,
		Description:      req.Description,
		DurationMinutes:  req.DurationMinutes,
		TotalMarks:       req.TotalMarks,
		PassingMarks:     req.PassingMarks,
		PerQuestionMarks: req.PerQuestionMarks,
		NegativeMarks:    req.NegativeMarks,
		Instructions:     req.Instructions,
		Status:           model.ExamStatusCreated,
		CreatedBy:        creatorID,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, err
	}
	s.log.Info().Str("exam_id", exam.ID.String()).Str("created_by", creatorID.String()).Msg("exam created")
	return exam, nil
}

func (s *ExamService) Get(ctx context.Context, examID, userID uuid.UUID, role model.Role) (*model.Exam, error) {
	return s.getOwned(ctx, examID, userID, role)
}

// List returns an examiner's own exams. Admins see every exam.
func (s *ExamService) List(ctx context.Context, userID uuid.UUID, role model.Role, limit, offset int) ([]model.Exam, int, error) {
	var scope *uuid.UUID
	if role != model.RoleAdmin {
		scope = &userID
	}
	return s.exams.ListByCreator(ctx, scope, limit, offset)
}

func (s *ExamService) ListAssigned(ctx context.Context, studentID uuid.UUID) ([]model.Exam, error) {
	return s.exams.ListAssigned(ctx, studentID)
}

func (s *ExamService) Update(ctx context.Context, examID, userID uuid.UUID, role model.Role, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.getOwned(ctx, examID, userID, role)
	if err != nil {
		return nil, err
	}
	if exam.Status == model.ExamStatusActive || exam.Status == model.ExamStatusCompleted {
		return nil, ErrExamNotEditable
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.TotalMarks > 0 {
		exam.TotalMarks = req.TotalMarks
	}
	if req.PassingMarks != nil {
		exam.PassingMarks = *req.PassingMarks
	}
	if req.PerQuestionMarks > 0 {
		exam.PerQuestionMarks = req.PerQuestionMarks
	}
	if req.NegativeMarks != nil {
		exam.NegativeMarks = *req.NegativeMarks
	}
	if req.Instructions != nil {
		exam.Instructions = *req.Instructions
	}

	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) Delete(ctx context.Context, examID, userID uuid.UUID, role model.Role) error {
	exam, err := s.getOwned(ctx, examID, userID, role)
	if err != nil {
		return err
	}
	if exam.Status == model.ExamStatusActive {
		return ErrExamNotEditable
	}
	if _, err := s.exams.Delete(ctx, examID); err != nil {
		return err
	}
	s.log.Info().Str("exam_id", examID.String()).Msg("exam deleted")
	return nil
}

// Schedule sets the planned window. The start must be in the future and
// the end, when given, after the start.
func (s *ExamService) Schedule(ctx context.Context, examID, userID uuid.UUID, role model.Role, req *model.ScheduleExamRequest) (*model.Exam, error) {
	exam, err := s.getOwned(ctx, examID, userID, role)
	if err != nil {
		return nil, err
	}
	if exam.Status == model.ExamStatusActive || exam.Status == model.ExamStatusCompleted {
		return nil, ErrExamNotSchedulable
	}
	if !req.ScheduledStartTime.After(s.now()) {
		return nil, ErrScheduleInPast
	}
	if req.ScheduledEndTime != nil && !req.ScheduledEndTime.After(req.ScheduledStartTime) {
		return nil, ErrEndBeforeStart
	}

	if err := s.exams.SetSchedule(ctx, examID, req.ScheduledStartTime, req.ScheduledEndTime, model.ExamStatusScheduled); err != nil {
		return nil, err
	}
	exam.ScheduledStartTime = &req.ScheduledStartTime
	exam.ScheduledEndTime = req.ScheduledEndTime
	exam.Status = model.ExamStatusScheduled

	s.log.Info().
		Str("exam_id", examID.String()).
		Time("scheduled_start", req.ScheduledStartTime).
		Msg("exam scheduled")
	return exam, nil
}

// GenerateCode creates the join code for a scheduled exam. The code can
// only be generated while the scheduled start is still at least the lead
// time away, so students always get a stable code well before the exam.
func (s *ExamService) GenerateCode(ctx context.Context, examID, userID uuid.UUID, role model.Role) (*model.Exam, error) {
	exam, err := s.getOwned(ctx, examID, userID, role)
	if err != nil {
		return nil, err
	}
	if exam.Status == model.ExamStatusActive || exam.Status == model.ExamStatusCompleted {
		return nil, ErrExamNotSchedulable
	}
	if exam.ScheduledStartTime == nil {
		return nil, ErrScheduleRequired
	}

	// Whole minutes until start, truncated. 29m59s does not qualify as 30.
	lead := exam.ScheduledStartTime.Sub(s.now()).Truncate(time.Minute)
	if lead < s.codeLeadTime {
		return nil, ErrLeadTimeTooShort
	}

	code, err := s.newUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	if err := s.exams.SetCode(ctx, examID, code, generatedAt); err != nil {
		return nil, err
	}
	exam.ExamCode = code
	exam.CodeGeneratedAt = &generatedAt
	exam.Status = model.ExamStatusScheduled

	s.log.Info().Str("exam_id", examID.String()).Str("exam_code", code).Msg("exam code generated")
	return exam, nil
}

func (s *ExamService) newUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < examCodeMaxAttempts; attempt++ {
		code, err := randomCode(examCodeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		exists, err := s.exams.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to find a unique exam code after %d attempts", examCodeMaxAttempts)
}

func randomCode(length int) (string, error) {
	max := big.NewInt(int64(len(examCodeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = examCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Start activates an exam: students can join from this moment. The store
// update is conditional on the status, so concurrent starts resolve to
// exactly one winner.
func (s *ExamService) Start(ctx context.Context, examID, userID uuid.UUID, role model.Role) (*model.Exam, error) {
	exam, err := s.getOwned(ctx, examID, userID, role)
	if err != nil {
		return nil, err
	}
	if exam.ExamCode == "" {
		return nil, ErrCodeNotGenerated
	}
	if exam.Status == model.ExamStatusActive {
		return nil, ErrExamAlreadyActive
	}
	if exam.ScheduledStartTime != nil && s.now().Before(*exam.ScheduledStartTime) {
		return nil, ErrStartBeforeSchedule
	}

	startedAt := s.now()
	started, err := s.exams.MarkStarted(ctx, examID, startedAt)
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, ErrExamAlreadyActive
	}
	exam.Status = model.ExamStatusActive
	exam.ActualStartTime = &startedAt
	exam.CanStudentsJoin = true

	if err := s.warmPaperCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("failed to warm paper cache")
	}

	s.log.Info().Str("exam_id", examID.String()).Msg("exam started")
	return exam, nil
}

// End completes an exam and closes the door for new participants. Any
// non-completed exam can be ended, including one that never started.
func (s *ExamService) End(ctx context.Context, examID, userID uuid.UUID, role model.Role) (*model.Exam, error) {
	exam, err := s.getOwned(ctx, examID, userID, role)
	if err != nil {
		return nil, err
	}

	endedAt := s.now()
	ended, err := s.exams.MarkEnded(ctx, examID, endedAt)
	if err != nil {
		return nil, err
	}
	if !ended {
		return nil, ErrExamAlreadyCompleted
	}
	exam.Status = model.ExamStatusCompleted
	exam.ActualEndTime = &endedAt
	exam.CanStudentsJoin = false

	if err := s.paper.InvalidatePaper(ctx, examID); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("failed to drop paper cache")
	}

	s.log.Info().Str("exam_id", examID.String()).Msg("exam ended")
	return exam, nil
}

// Cancel abandons an exam that has not run yet.
func (s *ExamService) Cancel(ctx context.Context, examID, userID uuid.UUID, role model.Role) error {
	exam, err := s.getOwned(ctx, examID, userID, role)
	if err != nil {
		return err
	}
	if exam.Status == model.ExamStatusActive || exam.Status == model.ExamStatusCompleted {
		return ErrExamNotEditable
	}
	if err := s.exams.SetStatus(ctx, examID, model.ExamStatusCancelled); err != nil {
		return err
	}
	s.log.Info().Str("exam_id", examID.String()).Msg("exam cancelled")
	return nil
}

// ValidateAccess checks a student's join code against every gate: the
// code exists, the student is assigned, the exam belongs to the student's
// examiner, the exam is active and still accepting participants.
func (s *ExamService) ValidateAccess(ctx context.Context, studentID uuid.UUID, code string) (*model.ExamAccessView, error) {
	exam, err := s.exams.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up exam code: %w", err)
	}
	if exam == nil {
		return nil, ErrInvalidExamCode
	}

	assigned, err := s.exams.IsAssigned(ctx, exam.ID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		return nil, ErrNotFound
	}
	if student.ExaminerID != nil && *student.ExaminerID != exam.CreatedBy {
		return nil, ErrExaminerMismatch
	}

	if exam.Status != model.ExamStatusActive {
		return nil, ErrExamNotActive
	}
	if !exam.CanStudentsJoin {
		return nil, ErrJoinClosed
	}

	view := exam.AccessView()
	return &view, nil
}

func (s *ExamService) AssignStudents(ctx context.Context, examID, userID uuid.UUID, role model.Role, req *model.AssignStudentsRequest) (int, error) {
	if _, err := s.getOwned(ctx, examID, userID, role); err != nil {
		return 0, err
	}
	assigned, err := s.exams.AssignStudents(ctx, examID, req.StudentIDs)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("exam_id", examID.String()).Int("assigned", assigned).Msg("students assigned")
	return assigned, nil
}

func (s *ExamService) UnassignStudent(ctx context.Context, examID, userID uuid.UUID, role model.Role, studentID uuid.UUID) error {
	if _, err := s.getOwned(ctx, examID, userID, role); err != nil {
		return err
	}
	removed, err := s.exams.UnassignStudent(ctx, examID, studentID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *ExamService) ListAssignedStudents(ctx context.Context, examID, userID uuid.UUID, role model.Role) ([]model.User, error) {
	if _, err := s.getOwned(ctx, examID, userID, role); err != nil {
		return nil, err
	}
	return s.exams.ListAssignedStudents(ctx, examID)
}

func (s *ExamService) warmPaperCache(ctx context.Context, exam *model.Exam) error {
	questions, err := s.questions.ListByExam(ctx, exam.ID)
	if err != nil {
		return err
	}
	paper := &model.ExamPaper{Exam: exam.AccessView()}
	for i := range questions {
		paper.Questions = append(paper.Questions, questions[i].ForStudent())
	}
	ttl := time.Duration(exam.DurationMinutes)*time.Minute + paperCacheSlack
	return s.paper.SetPaper(ctx, exam.ID, paper, ttl)
}
