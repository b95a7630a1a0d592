package service

import (
	"math"

	"github.com/google/uuid"

	"github.com/campusworks/examportal-backend/internal/model"
)

// ScoreResult is the outcome of grading one attempt.
type ScoreResult struct {
	TotalObtainedMarks   float64
	TotalScore           float64
	Percentage           float64
	CorrectAnswers       int
	IncorrectAnswers     int
	UnattemptedQuestions int
	IsPassed             bool
}

// ScoreAttempt grades saved responses against the exam's questions and
// writes the per-response verdicts in place.
//
// Answers are compared by exact string equality. A wrong answer costs the
// question's negative marks (falling back to the exam default). The raw
// sum is clamped at zero, but the unattempted count is not clamped: a
// question added after a response was saved leaves the bookkeeping as-is.
// Responses to questions no longer in the exam are skipped entirely.
func ScoreAttempt(exam *model.Exam, questions []model.Question, responses []model.AttemptResponse) ScoreResult {
	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	var raw float64
	var correct, incorrect, attempted int
	for i := range responses {
		resp := &responses[i]
		q, ok := byID[resp.QuestionID]
		if !ok {
			continue
		}
		attempted++

		marks := q.Marks
		if marks == 0 {
			marks = exam.PerQuestionMarks
		}
		penalty := q.NegativeMarks
		if penalty == 0 {
			penalty = exam.NegativeMarks
		}

		isCorrect := resp.SelectedAnswer == q.CorrectAnswer
		resp.IsCorrect = &isCorrect
		if isCorrect {
			resp.MarksAwarded = marks
			raw += marks
			correct++
		} else {
			resp.MarksAwarded = -penalty
			raw -= penalty
			incorrect++
		}
	}

	obtained := math.Max(0, raw)
	totalScore := exam.TotalMarks

	var percentage float64
	if totalScore > 0 {
		percentage = math.Round(obtained/totalScore*100*100) / 100
	}

	return ScoreResult{
		TotalObtainedMarks:   obtained,
		TotalScore:           totalScore,
		Percentage:           percentage,
		CorrectAnswers:       correct,
		IncorrectAnswers:     incorrect,
		UnattemptedQuestions: exam.TotalQuestions - attempted,
		IsPassed:             obtained >= exam.PassingMarks,
	}
}
