package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusworks/examportal-backend/internal/model"
)

// AttemptRepository persists attempts and their answers. The unique index
// on (exam_id, student_id) makes attempt creation race-free.
type AttemptRepository struct {
	db *pgxpool.Pool
}

func NewAttemptRepository(db *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{db: db}
}

const attemptColumns = `id, exam_id, student_id, status, total_obtained_marks, total_score,
	percentage, correct_answers, incorrect_answers, unattempted_questions, is_passed,
	started_at, submitted_at, total_time_spent_sec, auto_submitted, created_at, updated_at`

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	var a model.Attempt
	err := row.Scan(
		&a.ID, &a.ExamID, &a.StudentID, &a.Status, &a.TotalObtainedMarks, &a.TotalScore,
		&a.Percentage, &a.CorrectAnswers, &a.IncorrectAnswers, &a.UnattemptedQuestions,
		&a.IsPassed, &a.StartedAt, &a.SubmittedAt, &a.TotalTimeSpentSec, &a.AutoSubmitted,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func scanAttempts(rows pgx.Rows) ([]model.Attempt, error) {
	defer rows.Close()
	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		err := rows.Scan(
			&a.ID, &a.ExamID, &a.StudentID, &a.Status, &a.TotalObtainedMarks, &a.TotalScore,
			&a.Percentage, &a.CorrectAnswers, &a.IncorrectAnswers, &a.UnattemptedQuestions,
			&a.IsPassed, &a.StartedAt, &a.SubmittedAt, &a.TotalTimeSpentSec, &a.AutoSubmitted,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CreateIfAbsent inserts an attempt unless one already exists for the
// (exam, student) pair. Returns (nil, nil) when the pair is taken.
func (r *AttemptRepository) CreateIfAbsent(ctx context.Context, a *model.Attempt) (*model.Attempt, error) {
	query := `
		INSERT INTO attempts (id, exam_id, student_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (exam_id, student_id) DO NOTHING
		RETURNING ` + attemptColumns

	created, err := scanAttempt(r.db.QueryRow(ctx, query,
		a.ID, a.ExamID, a.StudentID, a.Status, a.StartedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}
	return created, nil
}

func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE id = $1`
	return scanAttempt(r.db.QueryRow(ctx, query, id))
}

func (r *AttemptRepository) GetByExamAndStudent(ctx context.Context, examID, studentID uuid.UUID) (*model.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE exam_id = $1 AND student_id = $2`
	return scanAttempt(r.db.QueryRow(ctx, query, examID, studentID))
}

// UpsertResponse saves or replaces the answer for one question of an
// in-progress attempt.
func (r *AttemptRepository) UpsertResponse(ctx context.Context, resp *model.AttemptResponse) error {
	query := `
		INSERT INTO attempt_responses (id, attempt_id, question_id, selected_answer, time_spent_sec, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (attempt_id, question_id) DO UPDATE
		SET selected_answer = EXCLUDED.selected_answer,
			time_spent_sec = EXCLUDED.time_spent_sec,
			answered_at = EXCLUDED.answered_at
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		resp.ID, resp.AttemptID, resp.QuestionID, resp.SelectedAnswer,
		resp.TimeSpentSec, resp.AnsweredAt,
	).Scan(&resp.ID)
	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}

func (r *AttemptRepository) ListResponses(ctx context.Context, attemptID uuid.UUID) ([]model.AttemptResponse, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, attempt_id, question_id, selected_answer, is_correct, marks_awarded,
			time_spent_sec, answered_at
		 FROM attempt_responses WHERE attempt_id = $1`,
		attemptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []model.AttemptResponse
	for rows.Next() {
		var resp model.AttemptResponse
		err := rows.Scan(
			&resp.ID, &resp.AttemptID, &resp.QuestionID, &resp.SelectedAnswer,
			&resp.IsCorrect, &resp.MarksAwarded, &resp.TimeSpentSec, &resp.AnsweredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// FinalizeSubmission writes the graded attempt and its per-response
// grading in one transaction. The status guard in the UPDATE makes the
// submission single-shot. Returns false when the attempt was already
// submitted.
func (r *AttemptRepository) FinalizeSubmission(ctx context.Context, a *model.Attempt, responses []model.AttemptResponse) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin submission: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE attempts
		 SET status = $2, total_obtained_marks = $3, total_score = $4, percentage = $5,
			 correct_answers = $6, incorrect_answers = $7, unattempted_questions = $8,
			 is_passed = $9, submitted_at = $10, total_time_spent_sec = $11,
			 auto_submitted = $12, updated_at = NOW()
		 WHERE id = $1 AND status = 'in-progress'`,
		a.ID, a.Status, a.TotalObtainedMarks, a.TotalScore, a.Percentage,
		a.CorrectAnswers, a.IncorrectAnswers, a.UnattemptedQuestions,
		a.IsPassed, a.SubmittedAt, a.TotalTimeSpentSec, a.AutoSubmitted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to finalize attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for i := range responses {
		resp := &responses[i]
		_, err := tx.Exec(ctx,
			`UPDATE attempt_responses
			 SET is_correct = $2, marks_awarded = $3
			 WHERE id = $1`,
			resp.ID, resp.IsCorrect, resp.MarksAwarded,
		)
		if err != nil {
			return false, fmt.Errorf("failed to grade response: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit submission: %w", err)
	}
	return true, nil
}

// ListByExam returns all attempts for one exam, newest first.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE exam_id = $1 ORDER BY started_at DESC`,
		examID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return scanAttempts(rows)
}

func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE student_id = $1 ORDER BY started_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return scanAttempts(rows)
}

// ListOverdue returns in-progress attempts whose per-student clock has run
// out, for the background sweeper to close.
func (r *AttemptRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]model.Attempt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+prefixedAttemptColumns("a")+` FROM attempts a
		 JOIN exams e ON e.id = a.exam_id
		 WHERE a.status = 'in-progress'
		   AND a.started_at + (e.duration_minutes * INTERVAL '1 minute') <= $1
		 ORDER BY a.started_at
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue attempts: %w", err)
	}
	return scanAttempts(rows)
}

// Stats aggregates submitted attempts for one exam.
func (r *AttemptRepository) Stats(ctx context.Context, examID uuid.UUID) (*model.ExamStats, error) {
	var s model.ExamStats
	s.ExamID = examID

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status <> 'in-progress'),
			COUNT(*) FILTER (WHERE status <> 'in-progress' AND is_passed),
			COUNT(*) FILTER (WHERE status <> 'in-progress' AND NOT is_passed),
			COALESCE(AVG(total_obtained_marks) FILTER (WHERE status <> 'in-progress'), 0),
			COALESCE(AVG(percentage) FILTER (WHERE status <> 'in-progress'), 0),
			COALESCE(MAX(total_obtained_marks) FILTER (WHERE status <> 'in-progress'), 0),
			COALESCE(MIN(total_obtained_marks) FILTER (WHERE status <> 'in-progress'), 0)
		FROM attempts WHERE exam_id = $1`

	err := r.db.QueryRow(ctx, query, examID).Scan(
		&s.AttemptsStarted, &s.AttemptsSubmitted, &s.PassedCount, &s.FailedCount,
		&s.AverageScore, &s.AveragePercentage, &s.HighestScore, &s.LowestScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam stats: %w", err)
	}
	return &s, nil
}

func prefixedAttemptColumns(alias string) string {
	return alias + `.id, ` + alias + `.exam_id, ` + alias + `.student_id, ` + alias + `.status, ` +
		alias + `.total_obtained_marks, ` + alias + `.total_score, ` + alias + `.percentage, ` +
		alias + `.correct_answers, ` + alias + `.incorrect_answers, ` + alias + `.unattempted_questions, ` +
		alias + `.is_passed, ` + alias + `.started_at, ` + alias + `.submitted_at, ` +
		alias + `.total_time_spent_sec, ` + alias + `.auto_submitted, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
