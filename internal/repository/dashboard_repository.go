package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusworks/examportal-backend/internal/model"
)

// DashboardRepository aggregates the dashboard metrics. Every query takes
// an optional examiner scope; nil means platform-wide (admin view).
type DashboardRepository struct {
	db *pgxpool.Pool
}

func NewDashboardRepository(db *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// SummaryCounts returns the headline counts for one examiner or, with a
// nil scope, the whole platform.
func (r *DashboardRepository) SummaryCounts(ctx context.Context, examinerID *uuid.UUID) (*model.DashboardSummary, error) {
	s := &model.DashboardSummary{}
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users
			 WHERE role = 'student' AND ($1::uuid IS NULL OR examiner_id = $1)),
			(SELECT COUNT(*) FROM exams
			 WHERE $1::uuid IS NULL OR created_by = $1),
			(SELECT COUNT(*) FROM questions q JOIN exams e ON e.id = q.exam_id
			 WHERE $1::uuid IS NULL OR e.created_by = $1),
			(SELECT COUNT(*) FROM attempts a JOIN exams e ON e.id = a.exam_id
			 WHERE $1::uuid IS NULL OR e.created_by = $1)`,
		examinerID,
	).Scan(&s.TotalStudents, &s.TotalExams, &s.TotalQuestions, &s.TotalAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary counts: %w", err)
	}
	return s, nil
}

// ExamStatusCounts returns the exam count per lifecycle status.
func (r *DashboardRepository) ExamStatusCounts(ctx context.Context, examinerID *uuid.UUID) (map[model.ExamStatus]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM exams
		 WHERE $1::uuid IS NULL OR created_by = $1
		 GROUP BY status`,
		examinerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count exams by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.ExamStatus]int)
	for rows.Next() {
		var status model.ExamStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// UpcomingExams returns the next scheduled exams whose start is still
// ahead of now.
func (r *DashboardRepository) UpcomingExams(ctx context.Context, examinerID *uuid.UUID, now time.Time, limit int) ([]model.UpcomingExam, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, scheduled_start_time, duration_minutes
		 FROM exams
		 WHERE status = 'scheduled' AND scheduled_start_time > $2
		   AND ($1::uuid IS NULL OR created_by = $1)
		 ORDER BY scheduled_start_time ASC LIMIT $3`,
		examinerID, now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming exams: %w", err)
	}
	defer rows.Close()

	var exams []model.UpcomingExam
	for rows.Next() {
		var e model.UpcomingExam
		if err := rows.Scan(&e.ID, &e.Title, &e.ScheduledStartTime, &e.DurationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan upcoming exam: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// RecentSubmissions returns the latest graded attempts with exam and
// student context.
func (r *DashboardRepository) RecentSubmissions(ctx context.Context, examinerID *uuid.UUID, limit int) ([]model.RecentSubmission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.exam_id, e.title, u.name,
		        a.total_obtained_marks, a.percentage, a.is_passed, a.submitted_at
		 FROM attempts a
		 JOIN exams e ON e.id = a.exam_id
		 JOIN users u ON u.id = a.student_id
		 WHERE a.status <> 'in-progress' AND a.submitted_at IS NOT NULL
		   AND ($1::uuid IS NULL OR e.created_by = $1)
		 ORDER BY a.submitted_at DESC LIMIT $2`,
		examinerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.RecentSubmission
	for rows.Next() {
		var s model.RecentSubmission
		if err := rows.Scan(&s.AttemptID, &s.ExamID, &s.ExamTitle, &s.StudentName,
			&s.TotalObtainedMarks, &s.Percentage, &s.IsPassed, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
