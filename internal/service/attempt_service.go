package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

// AttemptService owns the student side of a running exam: starting an
// attempt, saving answers, submitting and reading results.
type AttemptService struct {
	attempts  AttemptStore
	exams     ExamStore
	questions QuestionStore
	users     UserStore
	paper     PaperCache
	events    EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewAttemptService(attempts AttemptStore, exams ExamStore, questions QuestionStore, users UserStore, paper PaperCache, events EventPublisher, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		attempts:  attempts,
		exams:     exams,
		questions: questions,
		users:     users,
		paper:     paper,
		events:    events,
		log:       log.With().Str("component", "attempt_service").Logger(),
		now:       time.Now,
	}
}

// assignedExam loads an exam and verifies the student is assigned to
// it. Status gating happens earlier, at exam code validation.
func (s *AttemptService) assignedExam(ctx context.Context, examID, studentID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}

	assigned, err := s.exams.IsAssigned(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotAssigned
	}
	return exam, nil
}

// Start opens the student's attempt. The store enforces one attempt per
// (exam, student): a second start reports the conflict instead of a new
// row.
func (s *AttemptService) Start(ctx context.Context, examID, studentID uuid.UUID) (*model.Attempt, error) {
	if _, err := s.assignedExam(ctx, examID, studentID); err != nil {
		return nil, err
	}

	attempt := &model.Attempt{
		ID:        uuid.New(),
		ExamID:    examID,
		StudentID: studentID,
		Status:    model.AttemptStatusInProgress,
		StartedAt: s.now(),
	}
	created, err := s.attempts.CreateIfAbsent(ctx, attempt)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, ErrAttemptAlreadyStarted
	}

	s.publishEvent(ctx, model.MonitorEventAttemptStarted, created)
	s.log.Info().
		Str("exam_id", examID.String()).
		Str("student_id", studentID.String()).
		Msg("attempt started")
	return created, nil
}

// Paper returns the student-facing exam paper for an in-progress
// attempt, served from cache when the exam start warmed it.
func (s *AttemptService) Paper(ctx context.Context, examID, studentID uuid.UUID) (*model.ExamPaper, error) {
	attempt, err := s.attempts.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return nil, ErrAttemptNotStarted
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrAttemptAlreadySubmitted
	}

	paper, err := s.paper.GetPaper(ctx, examID)
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("paper cache read failed")
	}
	if paper != nil {
		return paper, nil
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	paper = &model.ExamPaper{Exam: exam.AccessView()}
	for i := range questions {
		paper.Questions = append(paper.Questions, questions[i].ForStudent())
	}

	ttl := time.Duration(exam.DurationMinutes)*time.Minute + paperCacheSlack
	if err := s.paper.SetPaper(ctx, examID, paper, ttl); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("paper cache write failed")
	}
	return paper, nil
}

// SaveAnswer records or replaces the answer for one question. Saving the
// same question twice keeps only the latest answer.
func (s *AttemptService) SaveAnswer(ctx context.Context, examID, studentID uuid.UUID, req *model.SaveAnswerRequest) error {
	attempt, err := s.attempts.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return ErrAttemptNotStarted
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return ErrAttemptAlreadySubmitted
	}

	question, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to load question: %w", err)
	}
	if question == nil || question.ExamID != examID {
		return ErrQuestionNotInExam
	}

	resp := &model.AttemptResponse{
		ID:             uuid.New(),
		AttemptID:      attempt.ID,
		QuestionID:     req.QuestionID,
		SelectedAnswer: req.SelectedAnswer,
		TimeSpentSec:   req.TimeSpentSec,
		AnsweredAt:     s.now(),
	}
	return s.attempts.UpsertResponse(ctx, resp)
}

// Submit finalizes and grades the attempt. Submission is single-shot: the
// conditional store update rejects a second submit even under a race.
func (s *AttemptService) Submit(ctx context.Context, examID, studentID uuid.UUID, req *model.SubmitAttemptRequest) (*model.AttemptResult, error) {
	attempt, err := s.attempts.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return nil, ErrAttemptNotStarted
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrAttemptAlreadySubmitted
	}
	return s.finalize(ctx, attempt, req.TotalTimeSpentSec, false)
}

// AutoSubmit closes an overdue attempt on the student's behalf. Called by
// the background sweeper.
func (s *AttemptService) AutoSubmit(ctx context.Context, attemptID uuid.UUID) (*model.AttemptResult, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return nil, ErrNotFound
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrAttemptAlreadySubmitted
	}

	exam, err := s.exams.GetByID(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	elapsed := int(s.now().Sub(attempt.StartedAt).Seconds())
	if limit := exam.DurationMinutes * 60; elapsed > limit {
		elapsed = limit
	}
	return s.finalize(ctx, attempt, elapsed, true)
}

func (s *AttemptService) finalize(ctx context.Context, attempt *model.Attempt, timeSpentSec int, auto bool) (*model.AttemptResult, error) {
	exam, err := s.exams.GetByID(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	questions, err := s.questions.ListByExam(ctx, attempt.ExamID)
	if err != nil {
		return nil, err
	}
	responses, err := s.attempts.ListResponses(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}

	score := ScoreAttempt(exam, questions, responses)

	submittedAt := s.now()
	attempt.Status = model.AttemptStatusEvaluated
	attempt.TotalObtainedMarks = score.TotalObtainedMarks
	attempt.TotalScore = score.TotalScore
	attempt.Percentage = score.Percentage
	attempt.CorrectAnswers = score.CorrectAnswers
	attempt.IncorrectAnswers = score.IncorrectAnswers
	attempt.UnattemptedQuestions = score.UnattemptedQuestions
	attempt.IsPassed = score.IsPassed
	attempt.SubmittedAt = &submittedAt
	attempt.TotalTimeSpentSec = timeSpentSec
	attempt.AutoSubmitted = auto

	done, err := s.attempts.FinalizeSubmission(ctx, attempt, responses)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, ErrAttemptAlreadySubmitted
	}

	s.publishEvent(ctx, model.MonitorEventAttemptSubmitted, attempt)
	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("exam_id", attempt.ExamID.String()).
		Float64("obtained", attempt.TotalObtainedMarks).
		Bool("auto", auto).
		Msg("attempt submitted")

	return &model.AttemptResult{Attempt: *attempt, Responses: responses}, nil
}

// Result returns the graded attempt for the student who sat it.
func (s *AttemptService) Result(ctx context.Context, examID, studentID uuid.UUID) (*model.AttemptResult, error) {
	attempt, err := s.attempts.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil || attempt.Status == model.AttemptStatusInProgress {
		return nil, ErrNoResults
	}
	responses, err := s.attempts.ListResponses(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}
	return &model.AttemptResult{Attempt: *attempt, Responses: responses}, nil
}

// MyResults lists all of a student's graded attempts.
func (s *AttemptService) MyResults(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	attempts, err := s.attempts.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	graded := attempts[:0]
	for _, a := range attempts {
		if a.Status != model.AttemptStatusInProgress {
			graded = append(graded, a)
		}
	}
	return graded, nil
}

// ListOverdue exposes overdue in-progress attempts to the sweeper.
func (s *AttemptService) ListOverdue(ctx context.Context, limit int) ([]model.Attempt, error) {
	return s.attempts.ListOverdue(ctx, s.now(), limit)
}

func (s *AttemptService) publishEvent(ctx context.Context, eventType string, attempt *model.Attempt) {
	ev := model.MonitorEvent{
		Type:      eventType,
		ExamID:    attempt.ExamID,
		AttemptID: attempt.ID,
		StudentID: attempt.StudentID,
		At:        s.now(),
	}
	if student, err := s.users.GetByID(ctx, attempt.StudentID); err == nil && student != nil {
		ev.StudentName = student.Name
	}
	if err := s.events.PublishMonitorEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("exam_id", attempt.ExamID.String()).Msg("failed to publish monitor event")
	}
}
