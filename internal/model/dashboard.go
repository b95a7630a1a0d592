package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardSummary holds the headline counts on the examiner dashboard.
// For admins the counts are platform-wide.
type DashboardSummary struct {
	TotalStudents  int `json:"total_students"`
	TotalExams     int `json:"total_exams"`
	TotalQuestions int `json:"total_questions"`
	TotalAttempts  int `json:"total_attempts"`
}

// UpcomingExam is the reduced exam row shown in the dashboard schedule.
type UpcomingExam struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	ScheduledStartTime *time.Time `json:"scheduled_start_time"`
	DurationMinutes    int        `json:"duration_minutes"`
}

// RecentSubmission is one recently graded attempt with its context.
type RecentSubmission struct {
	AttemptID          uuid.UUID `json:"attempt_id"`
	ExamID             uuid.UUID `json:"exam_id"`
	ExamTitle          string    `json:"exam_title"`
	StudentName        string    `json:"student_name"`
	TotalObtainedMarks float64   `json:"total_obtained_marks"`
	Percentage         float64   `json:"percentage"`
	IsPassed           bool      `json:"is_passed"`
	SubmittedAt        time.Time `json:"submitted_at"`
}

// DashboardData consolidates all dashboard metrics.
type DashboardData struct {
	Summary           DashboardSummary   `json:"summary"`
	ExamStatusCounts  map[ExamStatus]int `json:"exam_status_counts"`
	UpcomingExams     []UpcomingExam     `json:"upcoming_exams"`
	RecentSubmissions []RecentSubmission `json:"recent_submissions"`
}
