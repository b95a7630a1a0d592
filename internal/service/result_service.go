package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

// ResultRow pairs a graded attempt with its student for examiner views
// and the CSV export.
type ResultRow struct {
	Attempt            model.Attempt `json:"attempt"`
	StudentName        string        `json:"student_name"`
	StudentEmail       string        `json:"student_email"`
	RegistrationNumber string        `json:"registration_number,omitempty"`
}

// ResultService gives examiners the results side: per-exam result lists,
// aggregate stats and CSV export.
type ResultService struct {
	attempts AttemptStore
	exams    ExamStore
	users    UserStore
	log      zerolog.Logger
}

func NewResultService(attempts AttemptStore, exams ExamStore, users UserStore, log zerolog.Logger) *ResultService {
	return &ResultService{
		attempts: attempts,
		exams:    exams,
		users:    users,
		log:      log.With().Str("component", "result_service").Logger(),
	}
}

func (s *ResultService) ownedExam(ctx context.Context, examID, callerID uuid.UUID, role model.Role) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	if role != model.RoleAdmin && exam.CreatedBy != callerID {
		return nil, ErrNotAuthorized
	}
	return exam, nil
}

// ExamResults lists graded attempts for one exam with student details.
func (s *ResultService) ExamResults(ctx context.Context, examID, callerID uuid.UUID, role model.Role) ([]ResultRow, error) {
	if _, err := s.ownedExam(ctx, examID, callerID, role); err != nil {
		return nil, err
	}

	attempts, err := s.attempts.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	rows := make([]ResultRow, 0, len(attempts))
	for _, a := range attempts {
		if a.Status == model.AttemptStatusInProgress {
			continue
		}
		row := ResultRow{Attempt: a}
		if student, err := s.users.GetByID(ctx, a.StudentID); err == nil && student != nil {
			row.StudentName = student.Name
			row.StudentEmail = student.Email
			row.RegistrationNumber = student.RegistrationNumber
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// StudentResults lists all graded attempts of one student for the
// examiner who owns them.
func (s *ResultService) StudentResults(ctx context.Context, studentID, callerID uuid.UUID, role model.Role) ([]model.Attempt, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, ErrNotFound
	}
	if role != model.RoleAdmin && (student.ExaminerID == nil || *student.ExaminerID != callerID) {
		return nil, ErrNotAuthorized
	}

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

// Stats aggregates attempt outcomes for one exam.
func (s *ResultService) Stats(ctx context.Context, examID, callerID uuid.UUID, role model.Role) (*model.ExamStats, error) {
	if _, err := s.ownedExam(ctx, examID, callerID, role); err != nil {
		return nil, err
	}
	stats, err := s.attempts.Stats(ctx, examID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.exams.CountAssigned(ctx, examID)
	if err != nil {
		return nil, err
	}
	stats.AssignedStudents = assigned
	return stats, nil
}

// ExportCSV streams the exam's results as CSV.
func (s *ResultService) ExportCSV(ctx context.Context, examID, callerID uuid.UUID, role model.Role, w io.Writer) error {
	rows, err := s.ExamResults(ctx, examID, callerID, role)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNoResults
	}

	cw := csv.NewWriter(w)
	header := []string{
		"Student Name", "Email", "Registration Number",
		"Obtained Marks", "Total Marks", "Percentage",
		"Correct", "Incorrect", "Unattempted",
		"Result", "Submitted At", "Time Spent (min)",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		a := row.Attempt
		verdict := "FAIL"
		if a.IsPassed {
			verdict = "PASS"
		}
		submittedAt := ""
		if a.SubmittedAt != nil {
			submittedAt = a.SubmittedAt.Format(time.RFC3339)
		}
		record := []string{
			row.StudentName,
			row.StudentEmail,
			row.RegistrationNumber,
			strconv.FormatFloat(a.TotalObtainedMarks, 'f', 2, 64),
			strconv.FormatFloat(a.TotalScore, 'f', 2, 64),
			strconv.FormatFloat(a.Percentage, 'f', 2, 64),
			strconv.Itoa(a.CorrectAnswers),
			strconv.Itoa(a.IncorrectAnswers),
			strconv.Itoa(a.UnattemptedQuestions),
			verdict,
			submittedAt,
			strconv.Itoa(a.TotalTimeSpentSec / 60),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	s.log.Info().Str("exam_id", examID.String()).Int("rows", len(rows)).Msg("results exported")
	return nil
}
