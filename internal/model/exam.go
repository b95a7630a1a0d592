package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the lifecycle states of an exam.
type ExamStatus string

const (
	ExamStatusCreated   ExamStatus = "created"
	ExamStatusScheduled ExamStatus = "scheduled"
	ExamStatusActive    ExamStatus = "active"
	ExamStatusCompleted ExamStatus = "completed"
	ExamStatusCancelled ExamStatus = "cancelled"
)

// Exam is the central aggregate of the platform. Its lifecycle runs
// created -> scheduled -> active -> completed, with cancellation possible
// before activation.
type Exam struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	DurationMinutes    int        `json:"duration_minutes"`
	TotalMarks         float64    `json:"total_marks"`
	PassingMarks       float64    `json:"passing_marks"`
	PerQuestionMarks   float64    `json:"per_question_marks"`
	NegativeMarks      float64    `json:"negative_marks"`
	TotalQuestions     int        `json:"total_questions"`
	Instructions       string     `json:"instructions,omitempty"`
	Status             ExamStatus `json:"status"`
	ScheduledStartTime *time.Time `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime   *time.Time `json:"scheduled_end_time,omitempty"`
	ActualStartTime    *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime      *time.Time `json:"actual_end_time,omitempty"`
	ExamCode           string     `json:"exam_code,omitempty"`
	CodeGeneratedAt    *time.Time `json:"code_generated_at,omitempty"`
	CanStudentsJoin    bool       `json:"can_students_join"`
	CreatedBy          uuid.UUID  `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ExamAccessView is the reduced exam shape returned to a student whose
// access code validated. It deliberately omits scheduling internals and
// the code metadata.
type ExamAccessView struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      float64   `json:"total_marks"`
	TotalQuestions  int       `json:"total_questions"`
	Instructions    string    `json:"instructions,omitempty"`
}

// AccessView projects an exam into the student-facing shape.
func (e *Exam) AccessView() ExamAccessView {
	return ExamAccessView{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		DurationMinutes: e.DurationMinutes,
		TotalMarks:      e.TotalMarks,
		TotalQuestions:  e.TotalQuestions,
		Instructions:    e.Instructions,
	}
}

// CreateExamRequest is the payload for creating an exam.
type CreateExamRequest struct {
	Title            string  `json:"title" binding:"required,min=3,max=200"`
	Description      string  `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes  int     `json:"duration_minutes" binding:"required,min=1,max=600"`
	TotalMarks       float64 `json:"total_marks" binding:"required,gt=0"`
	PassingMarks     float64 `json:"passing_marks" binding:"min=0"`
	PerQuestionMarks float64 `json:"per_question_marks" binding:"omitempty,gt=0"`
	NegativeMarks    float64 `json:"negative_marks" binding:"omitempty,min=0"`
	Instructions     string  `json:"instructions" binding:"omitempty,max=5000"`
}

// UpdateExamRequest is the payload for updating exam details. All fields
// are optional; zero values are skipped.
type UpdateExamRequest struct {
	Title            string   `json:"title" binding:"omitempty,min=3,max=200"`
	Description      *string  `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes  int      `json:"duration_minutes" binding:"omitempty,min=1,max=600"`
	TotalMarks       float64  `json:"total_marks" binding:"omitempty,gt=0"`
	PassingMarks     *float64 `json:"passing_marks" binding:"omitempty,min=0"`
	PerQuestionMarks float64  `json:"per_question_marks" binding:"omitempty,gt=0"`
	NegativeMarks    *float64 `json:"negative_marks" binding:"omitempty,min=0"`
	Instructions     *string  `json:"instructions" binding:"omitempty,max=5000"`
}

// ScheduleExamRequest sets the planned window for an exam.
type ScheduleExamRequest struct {
	ScheduledStartTime time.Time  `json:"scheduled_start_time" binding:"required"`
	ScheduledEndTime   *time.Time `json:"scheduled_end_time" binding:"omitempty"`
}

// AssignStudentsRequest assigns a set of students to an exam.
type AssignStudentsRequest struct {
	StudentIDs []uuid.UUID `json:"student_ids" binding:"required,min=1,dive,required"`
}

// ValidateAccessRequest carries the join code typed by a student.
type ValidateAccessRequest struct {
	ExamCode string `json:"exam_code" binding:"required,min=4,max=16"`
}

// ExamStats summarizes attempt outcomes for one exam.
type ExamStats struct {
	ExamID            uuid.UUID `json:"exam_id"`
	AssignedStudents  int       `json:"assigned_students"`
	AttemptsStarted   int       `json:"attempts_started"`
	AttemptsSubmitted int       `json:"attempts_submitted"`
	PassedCount       int       `json:"passed_count"`
	FailedCount       int       `json:"failed_count"`
	AverageScore      float64   `json:"average_score"`
	AveragePercentage float64   `json:"average_percentage"`
	HighestScore      float64   `json:"highest_score"`
	LowestScore       float64   `json:"lowest_score"`
}
