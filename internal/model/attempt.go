package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates the states of a student attempt.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in-progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
	AttemptStatusEvaluated  AttemptStatus = "evaluated"
)

// Attempt records one student's run through one exam. The store enforces
// at most one attempt per (exam, student) pair.
type Attempt struct {
	ID                   uuid.UUID     `json:"id"`
	ExamID               uuid.UUID     `json:"exam_id"`
	StudentID            uuid.UUID     `json:"student_id"`
	Status               AttemptStatus `json:"status"`
	TotalObtainedMarks   float64       `json:"total_obtained_marks"`
	TotalScore           float64       `json:"total_score"`
	Percentage           float64       `json:"percentage"`
	CorrectAnswers       int           `json:"correct_answers"`
	IncorrectAnswers     int           `json:"incorrect_answers"`
	UnattemptedQuestions int           `json:"unattempted_questions"`
	IsPassed             bool          `json:"is_passed"`
	StartedAt            time.Time     `json:"started_at"`
	SubmittedAt          *time.Time    `json:"submitted_at,omitempty"`
	TotalTimeSpentSec    int           `json:"total_time_spent_sec"`
	AutoSubmitted        bool          `json:"auto_submitted"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// AttemptResponse is one saved answer inside an attempt. Grading fields
// stay nil/zero until the attempt is submitted.
type AttemptResponse struct {
	ID             uuid.UUID `json:"id"`
	AttemptID      uuid.UUID `json:"attempt_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedAnswer string    `json:"selected_answer"`
	IsCorrect      *bool     `json:"is_correct,omitempty"`
	MarksAwarded   float64   `json:"marks_awarded"`
	TimeSpentSec   int       `json:"time_spent_sec"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// AttemptResult is the graded view returned to students and examiners.
type AttemptResult struct {
	Attempt   Attempt           `json:"attempt"`
	Responses []AttemptResponse `json:"responses,omitempty"`
}

// SaveAnswerRequest records or replaces the answer for one question.
type SaveAnswerRequest struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedAnswer string    `json:"selected_answer" binding:"required,max=500"`
	TimeSpentSec   int       `json:"time_spent_sec" binding:"omitempty,min=0"`
}

// SubmitAttemptRequest finalizes an attempt.
type SubmitAttemptRequest struct {
	TotalTimeSpentSec int `json:"total_time_spent_sec" binding:"omitempty,min=0"`
}

// MonitorEvent is published on an exam's monitor channel whenever an
// attempt starts or is submitted.
type MonitorEvent struct {
	Type        string    `json:"type"`
	ExamID      uuid.UUID `json:"exam_id"`
	AttemptID   uuid.UUID `json:"attempt_id"`
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	At          time.Time `json:"at"`
}

const (
	MonitorEventAttemptStarted   = "attempt_started"
	MonitorEventAttemptSubmitted = "attempt_submitted"
)
