package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeTrueFalse   QuestionType = "true-false"
	QuestionTypeShortAnswer QuestionType = "short-answer"
)

// Option is a single answer choice for an MCQ question.
type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Question belongs to exactly one exam. QuestionNumber is assigned by the
// store and is unique per exam.
type Question struct {
	ID             uuid.UUID    `json:"id"`
	ExamID         uuid.UUID    `json:"exam_id"`
	QuestionText   string       `json:"question_text"`
	QuestionType   QuestionType `json:"question_type"`
	Options        []Option     `json:"options,omitempty"`
	CorrectAnswer  string       `json:"correct_answer,omitempty"`
	Explanation    string       `json:"explanation,omitempty"`
	Marks          float64      `json:"marks"`
	NegativeMarks  float64      `json:"negative_marks"`
	Difficulty     string       `json:"difficulty,omitempty"`
	QuestionNumber int          `json:"question_number"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// QuestionForStudent is the exam-paper shape delivered to a student. The
// correct answer and explanation never leave the server before submission.
type QuestionForStudent struct {
	ID             uuid.UUID    `json:"id"`
	QuestionText   string       `json:"question_text"`
	QuestionType   QuestionType `json:"question_type"`
	Options        []Option     `json:"options,omitempty"`
	Marks          float64      `json:"marks"`
	QuestionNumber int          `json:"question_number"`
}

// ForStudent strips grading fields from a question.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:             q.ID,
		QuestionText:   q.QuestionText,
		QuestionType:   q.QuestionType,
		Options:        q.Options,
		Marks:          q.Marks,
		QuestionNumber: q.QuestionNumber,
	}
}

// ExamPaper is the full student-facing exam payload, cached once the exam
// goes active.
type ExamPaper struct {
	Exam      ExamAccessView       `json:"exam"`
	Questions []QuestionForStudent `json:"questions"`
}

// CreateQuestionRequest is the payload for adding a question to an exam.
type CreateQuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,min=3,max=5000"`
	QuestionType  string   `json:"question_type" binding:"required,oneof=mcq true-false short-answer"`
	Options       []Option `json:"options" binding:"omitempty,max=6,dive"`
	CorrectAnswer string   `json:"correct_answer" binding:"required,max=500"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=2000"`
	Marks         float64  `json:"marks" binding:"omitempty,gt=0"`
	NegativeMarks float64  `json:"negative_marks" binding:"omitempty,min=0"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// BulkCreateQuestionsRequest adds several questions in one call.
type BulkCreateQuestionsRequest struct {
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1,max=200,dive"`
}

// UpdateQuestionRequest is the payload for editing a question.
type UpdateQuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"omitempty,min=3,max=5000"`
	Options       []Option `json:"options" binding:"omitempty,max=6,dive"`
	CorrectAnswer string   `json:"correct_answer" binding:"omitempty,max=500"`
	Explanation   *string  `json:"explanation" binding:"omitempty,max=2000"`
	Marks         float64  `json:"marks" binding:"omitempty,gt=0"`
	NegativeMarks *float64 `json:"negative_marks" binding:"omitempty,min=0"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}
