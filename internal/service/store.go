package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/examportal-backend/internal/model"
)

// The store interfaces below describe exactly what each service needs
// from persistence. The pgx repositories satisfy them; tests use
// in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *model.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListStudents(ctx context.Context, examinerID *uuid.UUID, limit, offset int) ([]model.User, int, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type ExamStore interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	GetByCode(ctx context.Context, code string) (*model.Exam, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByCreator(ctx context.Context, createdBy *uuid.UUID, limit, offset int) ([]model.Exam, int, error)
	ListAssigned(ctx context.Context, studentID uuid.UUID) ([]model.Exam, error)
	Update(ctx context.Context, e *model.Exam) error
	SetSchedule(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time, status model.ExamStatus) error
	SetCode(ctx context.Context, id uuid.UUID, code string, generatedAt time.Time) error
	MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AssignStudents(ctx context.Context, examID uuid.UUID, studentIDs []uuid.UUID) (int, error)
	UnassignStudent(ctx context.Context, examID, studentID uuid.UUID) (bool, error)
	IsAssigned(ctx context.Context, examID, studentID uuid.UUID) (bool, error)
	CountAssigned(ctx context.Context, examID uuid.UUID) (int, error)
	ListAssignedStudents(ctx context.Context, examID uuid.UUID) ([]model.User, error)
}

type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CountByExam(ctx context.Context, examID uuid.UUID) (int, error)
	SyncExamTotals(ctx context.Context, examID uuid.UUID) error
}

type AttemptStore interface {
	CreateIfAbsent(ctx context.Context, a *model.Attempt) (*model.Attempt, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	GetByExamAndStudent(ctx context.Context, examID, studentID uuid.UUID) (*model.Attempt, error)
	UpsertResponse(ctx context.Context, resp *model.AttemptResponse) error
	ListResponses(ctx context.Context, attemptID uuid.UUID) ([]model.AttemptResponse, error)
	FinalizeSubmission(ctx context.Context, a *model.Attempt, responses []model.AttemptResponse) (bool, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Attempt, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]model.Attempt, error)
	Stats(ctx context.Context, examID uuid.UUID) (*model.ExamStats, error)
}

// EventPublisher fans attempt lifecycle events out to live monitor
// subscribers.
type EventPublisher interface {
	PublishMonitorEvent(ctx context.Context, ev model.MonitorEvent) error
}

// PaperCache caches the student-facing exam paper while an exam runs.
type PaperCache interface {
	GetPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error)
	SetPaper(ctx context.Context, examID uuid.UUID, paper *model.ExamPaper, ttl time.Duration) error
	InvalidatePaper(ctx context.Context, examID uuid.UUID) error
}
