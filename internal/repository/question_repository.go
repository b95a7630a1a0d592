package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusworks/examportal-backend/internal/model"
)

// QuestionRepository persists questions. Question numbers are assigned in
// the INSERT so concurrent adds to the same exam stay dense and unique.
type QuestionRepository struct {
	db *pgxpool.Pool
}

func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, exam_id, question_text, question_type, options, correct_answer,
	explanation, marks, negative_marks, difficulty, question_number, created_at, updated_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	var q model.Question
	err := row.Scan(
		&q.ID, &q.ExamID, &q.QuestionText, &q.QuestionType, &q.Options, &q.CorrectAnswer,
		&q.Explanation, &q.Marks, &q.NegativeMarks, &q.Difficulty, &q.QuestionNumber,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	query := `
		INSERT INTO questions (id, exam_id, question_text, question_type, options,
			correct_answer, explanation, marks, negative_marks, difficulty, question_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			(SELECT COALESCE(MAX(question_number), 0) + 1 FROM questions WHERE exam_id = $2))
		RETURNING question_number, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		q.ID, q.ExamID, q.QuestionText, q.QuestionType, q.Options,
		q.CorrectAnswer, q.Explanation, q.Marks, q.NegativeMarks, q.Difficulty,
	).Scan(&q.QuestionNumber, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	return scanQuestion(r.db.QueryRow(ctx, query, id))
}

func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE exam_id = $1 ORDER BY question_number`,
		examID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		err := rows.Scan(
			&q.ID, &q.ExamID, &q.QuestionText, &q.QuestionType, &q.Options, &q.CorrectAnswer,
			&q.Explanation, &q.Marks, &q.NegativeMarks, &q.Difficulty, &q.QuestionNumber,
			&q.CreatedAt, &q.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	query := `
		UPDATE questions
		SET question_text = $2, options = $3, correct_answer = $4, explanation = $5,
			marks = $6, negative_marks = $7, difficulty = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		q.ID, q.QuestionText, q.Options, q.CorrectAnswer, q.Explanation,
		q.Marks, q.NegativeMarks, q.Difficulty,
	).Scan(&q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete question: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *QuestionRepository) CountByExam(ctx context.Context, examID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE exam_id = $1`, examID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}

// SyncExamTotals recomputes the denormalized question count and total
// marks on the owning exam.
func (r *QuestionRepository) SyncExamTotals(ctx context.Context, examID uuid.UUID) error {
	query := `
		UPDATE exams
		SET total_questions = sub.cnt,
			total_marks = COALESCE(sub.marks, 0),
			updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS cnt, SUM(marks) AS marks
			FROM questions WHERE exam_id = $1
		) sub
		WHERE exams.id = $1`
	if _, err := r.db.Exec(ctx, query, examID); err != nil {
		return fmt.Errorf("failed to sync exam totals: %w", err)
	}
	return nil
}
