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

// ExamRepository persists exams and their student assignments.
type ExamRepository struct {
	db *pgxpool.Pool
}

func NewExamRepository(db *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{db: db}
}

const examColumns = `id, title, description, duration_minutes, total_marks, passing_marks,
	per_question_marks, negative_marks, total_questions, instructions, status,
	scheduled_start_time, scheduled_end_time, actual_start_time, actual_end_time,
	exam_code, code_generated_at, can_students_join, created_by, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	var e model.Exam
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &e.TotalMarks, &e.PassingMarks,
		&e.PerQuestionMarks, &e.NegativeMarks, &e.TotalQuestions, &e.Instructions, &e.Status,
		&e.ScheduledStartTime, &e.ScheduledEndTime, &e.ActualStartTime, &e.ActualEndTime,
		&e.ExamCode, &e.CodeGeneratedAt, &e.CanStudentsJoin, &e.CreatedBy,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func scanExams(rows pgx.Rows) ([]model.Exam, error) {
	defer rows.Close()
	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &e.TotalMarks, &e.PassingMarks,
			&e.PerQuestionMarks, &e.NegativeMarks, &e.TotalQuestions, &e.Instructions, &e.Status,
			&e.ScheduledStartTime, &e.ScheduledEndTime, &e.ActualStartTime, &e.ActualEndTime,
			&e.ExamCode, &e.CodeGeneratedAt, &e.CanStudentsJoin, &e.CreatedBy,
			&e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exam: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	query := `
		INSERT INTO exams (id, title, description, duration_minutes, total_marks, passing_marks,
			per_question_marks, negative_marks, instructions, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		e.ID, e.Title, e.Description, e.DurationMinutes, e.TotalMarks, e.PassingMarks,
		e.PerQuestionMarks, e.NegativeMarks, e.Instructions, e.Status, e.CreatedBy,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create exam: %w", err)
	}
	return nil
}

func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = $1`
	return scanExam(r.db.QueryRow(ctx, query, id))
}

func (r *ExamRepository) GetByCode(ctx context.Context, code string) (*model.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE exam_code = $1`
	return scanExam(r.db.QueryRow(ctx, query, code))
}

func (r *ExamRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM exams WHERE exam_code = $1)`
	if err := r.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check exam code: %w", err)
	}
	return exists, nil
}

// ListByCreator returns exams authored by one examiner, newest first.
// A nil createdBy lists every exam (admin view).
func (r *ExamRepository) ListByCreator(ctx context.Context, createdBy *uuid.UUID, limit, offset int) ([]model.Exam, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM exams WHERE $1::uuid IS NULL OR created_by = $1`, createdBy,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+examColumns+` FROM exams WHERE $1::uuid IS NULL OR created_by = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		createdBy, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}
	exams, err := scanExams(rows)
	return exams, total, err
}

// ListAssigned returns exams a student has been assigned to.
func (r *ExamRepository) ListAssigned(ctx context.Context, studentID uuid.UUID) ([]model.Exam, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+examColumns+` FROM exams e
		 JOIN exam_assignments a ON a.exam_id = e.id
		 WHERE a.student_id = $1
		 ORDER BY e.scheduled_start_time NULLS LAST, e.created_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned exams: %w", err)
	}
	return scanExams(rows)
}

func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	query := `
		UPDATE exams
		SET title = $2, description = $3, duration_minutes = $4, total_marks = $5,
			passing_marks = $6, per_question_marks = $7, negative_marks = $8,
			instructions = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		e.ID, e.Title, e.Description, e.DurationMinutes, e.TotalMarks,
		e.PassingMarks, e.PerQuestionMarks, e.NegativeMarks, e.Instructions,
	).Scan(&e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update exam: %w", err)
	}
	return nil
}

// SetSchedule stores the planned window and moves the exam to scheduled.
func (r *ExamRepository) SetSchedule(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time, status model.ExamStatus) error {
	query := `
		UPDATE exams
		SET scheduled_start_time = $2, scheduled_end_time = $3, status = $4, updated_at = NOW()
		WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, start, end, status); err != nil {
		return fmt.Errorf("failed to schedule exam: %w", err)
	}
	return nil
}

// SetCode records a freshly generated join code. The unique index on
// exam_code backs up the in-service uniqueness loop.
func (r *ExamRepository) SetCode(ctx context.Context, id uuid.UUID, code string, generatedAt time.Time) error {
	query := `
		UPDATE exams
		SET exam_code = $2, code_generated_at = $3, status = 'scheduled', updated_at = NOW()
		WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, code, generatedAt); err != nil {
		return fmt.Errorf("failed to set exam code: %w", err)
	}
	return nil
}

// MarkStarted flips the exam to active only if it is not already active.
// Returns false when another request won the race.
func (r *ExamRepository) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE exams
		SET status = 'active', actual_start_time = $2, can_students_join = TRUE, updated_at = NOW()
		WHERE id = $1 AND status <> 'active'`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("failed to start exam: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkEnded completes an exam in any non-completed state. Returns false
// when the exam was already completed.
func (r *ExamRepository) MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE exams
		SET status = 'completed', actual_end_time = $2, can_students_join = FALSE, updated_at = NOW()
		WHERE id = $1 AND status <> 'completed'`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("failed to end exam: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ExamRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error {
	query := `UPDATE exams SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, status); err != nil {
		return fmt.Errorf("failed to set exam status: %w", err)
	}
	return nil
}

func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete exam: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AssignStudents inserts assignments, skipping pairs that already exist.
func (r *ExamRepository) AssignStudents(ctx context.Context, examID uuid.UUID, studentIDs []uuid.UUID) (int, error) {
	batch := &pgx.Batch{}
	for _, sid := range studentIDs {
		batch.Queue(
			`INSERT INTO exam_assignments (exam_id, student_id)
			 VALUES ($1, $2) ON CONFLICT (exam_id, student_id) DO NOTHING`,
			examID, sid,
		)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	assigned := 0
	for range studentIDs {
		tag, err := results.Exec()
		if err != nil {
			return assigned, fmt.Errorf("failed to assign student: %w", err)
		}
		assigned += int(tag.RowsAffected())
	}
	return assigned, nil
}

func (r *ExamRepository) UnassignStudent(ctx context.Context, examID, studentID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM exam_assignments WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to unassign student: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ExamRepository) IsAssigned(ctx context.Context, examID, studentID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM exam_assignments WHERE exam_id = $1 AND student_id = $2)`
	if err := r.db.QueryRow(ctx, query, examID, studentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return exists, nil
}

func (r *ExamRepository) CountAssigned(ctx context.Context, examID uuid.UUID) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM exam_assignments WHERE exam_id = $1`
	if err := r.db.QueryRow(ctx, query, examID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return n, nil
}

func (r *ExamRepository) ListAssignedStudents(ctx context.Context, examID uuid.UUID) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users u
		 JOIN exam_assignments a ON a.student_id = u.id
		 WHERE a.exam_id = $1
		 ORDER BY u.name`,
		examID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned students: %w", err)
	}
	defer rows.Close()

	var students []model.User
	for rows.Next() {
		var u model.User
		err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.RegistrationNumber,
			&u.Department, &u.Semester, &u.ExaminerID, &u.IsActive, &u.LastLogin,
			&u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assigned student: %w", err)
		}
		students = append(students, u)
	}
	return students, rows.Err()
}
