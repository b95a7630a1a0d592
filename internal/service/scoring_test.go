package service

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/campusworks/examportal-backend/internal/model"
)

func makeQuestion(correct string, marks, negative float64) model.Question {
	return model.Question{
		ID:            uuid.New(),
		QuestionText:  "q",
		QuestionType:  model.QuestionTypeMCQ,
		CorrectAnswer: correct,
		Marks:         marks,
		NegativeMarks: negative,
	}
}

func makeResponse(questionID uuid.UUID, answer string) model.AttemptResponse {
	return model.AttemptResponse{
		ID:             uuid.New(),
		QuestionID:     questionID,
		SelectedAnswer: answer,
	}
}

func TestScoreAttemptBasicGrading(t *testing.T) {
	q1 := makeQuestion("A", 4, 1)
	q2 := makeQuestion("B", 4, 1)
	q3 := makeQuestion("C", 4, 1)
	exam := &model.Exam{TotalMarks: 12, PassingMarks: 5, TotalQuestions: 3}

	responses := []model.AttemptResponse{
		makeResponse(q1.ID, "A"), // correct
		makeResponse(q2.ID, "D"), // wrong, -1
		makeResponse(q3.ID, "C"), // correct
	}

	result := ScoreAttempt(exam, []model.Question{q1, q2, q3}, responses)

	if result.TotalObtainedMarks != 7 {
		t.Errorf("obtained = %v, want 7", result.TotalObtainedMarks)
	}
	if result.TotalScore != 12 {
		t.Errorf("total score = %v, want 12", result.TotalScore)
	}
	if result.CorrectAnswers != 2 || result.IncorrectAnswers != 1 {
		t.Errorf("correct/incorrect = %d/%d, want 2/1", result.CorrectAnswers, result.IncorrectAnswers)
	}
	if result.UnattemptedQuestions != 0 {
		t.Errorf("unattempted = %d, want 0", result.UnattemptedQuestions)
	}
	if !result.IsPassed {
		t.Error("expected pass with 7 >= 5")
	}

	// Per-response verdicts must be written in place.
	if responses[0].IsCorrect == nil || !*responses[0].IsCorrect {
		t.Error("response 0 should be marked correct")
	}
	if responses[0].MarksAwarded != 4 {
		t.Errorf("response 0 marks = %v, want 4", responses[0].MarksAwarded)
	}
	if responses[1].IsCorrect == nil || *responses[1].IsCorrect {
		t.Error("response 1 should be marked incorrect")
	}
	if responses[1].MarksAwarded != -1 {
		t.Errorf("response 1 marks = %v, want -1", responses[1].MarksAwarded)
	}
}

func TestScoreAttemptExactStringEquality(t *testing.T) {
	q := makeQuestion("Paris", 2, 0)
	exam := &model.Exam{TotalMarks: 2, TotalQuestions: 1}

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"exact match", "Paris", true},
		{"case differs", "paris", false},
		{"trailing space", "Paris ", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := []model.AttemptResponse{makeResponse(q.ID, tt.answer)}
			result := ScoreAttempt(exam, []model.Question{q}, responses)
			got := result.CorrectAnswers == 1
			if got != tt.correct {
				t.Errorf("answer %q graded correct=%v, want %v", tt.answer, got, tt.correct)
			}
		})
	}
}

func TestScoreAttemptClampsAtZero(t *testing.T) {
	q1 := makeQuestion("A", 1, 5)
	q2 := makeQuestion("B", 1, 5)
	exam := &model.Exam{TotalMarks: 2, PassingMarks: 0, TotalQuestions: 2}

	responses := []model.AttemptResponse{
		makeResponse(q1.ID, "X"),
		makeResponse(q2.ID, "Y"),
	}
	result := ScoreAttempt(exam, []model.Question{q1, q2}, responses)

	if result.TotalObtainedMarks != 0 {
		t.Errorf("obtained = %v, want 0 after clamp", result.TotalObtainedMarks)
	}
	if result.Percentage != 0 {
		t.Errorf("percentage = %v, want 0", result.Percentage)
	}
	// Clamped zero still meets a zero passing threshold.
	if !result.IsPassed {
		t.Error("expected pass at zero threshold")
	}
	// The raw per-response penalty is preserved even though the sum is clamped.
	if responses[0].MarksAwarded != -5 {
		t.Errorf("response penalty = %v, want -5", responses[0].MarksAwarded)
	}
}

func TestScoreAttemptFractionalPenalty(t *testing.T) {
	q1 := makeQuestion("A", 1, 0.5)
	q2 := makeQuestion("B", 1, 0.5)
	exam := &model.Exam{TotalMarks: 2, PassingMarks: 1, TotalQuestions: 2}

	responses := []model.AttemptResponse{
		makeResponse(q1.ID, "A"), // +1
		makeResponse(q2.ID, "X"), // -0.5
	}
	result := ScoreAttempt(exam, []model.Question{q1, q2}, responses)

	if result.TotalObtainedMarks != 0.5 {
		t.Errorf("obtained = %v, want 0.5", result.TotalObtainedMarks)
	}
	if math.Abs(result.Percentage-25.00) > 1e-9 {
		t.Errorf("percentage = %v, want 25.00", result.Percentage)
	}
	if result.IsPassed {
		t.Error("0.5 must not pass a threshold of 1")
	}
}

func TestScoreAttemptPercentageRounding(t *testing.T) {
	q1 := makeQuestion("A", 1, 0)
	q2 := makeQuestion("B", 1, 0)
	exam := &model.Exam{TotalMarks: 3, TotalQuestions: 3}

	responses := []model.AttemptResponse{
		makeResponse(q1.ID, "A"),
		makeResponse(q2.ID, "B"),
	}
	result := ScoreAttempt(exam, []model.Question{q1, q2}, responses)

	// 2/3 of 100 rounds to 66.67.
	if math.Abs(result.Percentage-66.67) > 1e-9 {
		t.Errorf("percentage = %v, want 66.67", result.Percentage)
	}
}

func TestScoreAttemptZeroTotalMarks(t *testing.T) {
	q := makeQuestion("A", 1, 0)
	exam := &model.Exam{TotalMarks: 0, TotalQuestions: 1}

	responses := []model.AttemptResponse{makeResponse(q.ID, "A")}
	result := ScoreAttempt(exam, []model.Question{q}, responses)

	if result.Percentage != 0 {
		t.Errorf("percentage = %v, want 0 when total marks is 0", result.Percentage)
	}
}

func TestScoreAttemptSkipsOrphanResponses(t *testing.T) {
	q := makeQuestion("A", 2, 1)
	exam := &model.Exam{TotalMarks: 2, TotalQuestions: 1}

	orphan := makeResponse(uuid.New(), "A") // question was deleted
	responses := []model.AttemptResponse{makeResponse(q.ID, "A"), orphan}

	result := ScoreAttempt(exam, []model.Question{q}, responses)

	if result.CorrectAnswers != 1 || result.IncorrectAnswers != 0 {
		t.Errorf("correct/incorrect = %d/%d, want 1/0", result.CorrectAnswers, result.IncorrectAnswers)
	}
	if responses[1].IsCorrect != nil {
		t.Error("orphan response must stay ungraded")
	}
	if result.UnattemptedQuestions != 0 {
		t.Errorf("unattempted = %d, want 0", result.UnattemptedQuestions)
	}
}

func TestScoreAttemptUnattemptedNotClamped(t *testing.T) {
	q1 := makeQuestion("A", 1, 0)
	q2 := makeQuestion("B", 1, 0)
	// TotalQuestions went stale after questions were added.
	exam := &model.Exam{TotalMarks: 2, TotalQuestions: 1}

	responses := []model.AttemptResponse{
		makeResponse(q1.ID, "A"),
		makeResponse(q2.ID, "B"),
	}
	result := ScoreAttempt(exam, []model.Question{q1, q2}, responses)

	if result.UnattemptedQuestions != -1 {
		t.Errorf("unattempted = %d, want -1 (not clamped)", result.UnattemptedQuestions)
	}
}

func TestScoreAttemptFallsBackToExamDefaults(t *testing.T) {
	q1 := makeQuestion("A", 0, 0) // inherits exam-level marks and penalty
	q2 := makeQuestion("B", 0, 0)
	exam := &model.Exam{
		TotalMarks:       8,
		PerQuestionMarks: 4,
		NegativeMarks:    1,
		PassingMarks:     3,
		TotalQuestions:   2,
	}

	responses := []model.AttemptResponse{
		makeResponse(q1.ID, "A"),
		makeResponse(q2.ID, "X"),
	}
	result := ScoreAttempt(exam, []model.Question{q1, q2}, responses)

	if result.TotalObtainedMarks != 3 {
		t.Errorf("obtained = %v, want 3 (4 - 1)", result.TotalObtainedMarks)
	}
	if !result.IsPassed {
		t.Error("expected pass at exact threshold")
	}
}

func TestScoreAttemptNoResponses(t *testing.T) {
	q := makeQuestion("A", 2, 1)
	exam := &model.Exam{TotalMarks: 2, PassingMarks: 1, TotalQuestions: 1}

	result := ScoreAttempt(exam, []model.Question{q}, nil)

	if result.TotalObtainedMarks != 0 || result.Percentage != 0 {
		t.Errorf("empty attempt scored %v/%v%%, want 0/0", result.TotalObtainedMarks, result.Percentage)
	}
	if result.UnattemptedQuestions != 1 {
		t.Errorf("unattempted = %d, want 1", result.UnattemptedQuestions)
	}
	if result.IsPassed {
		t.Error("empty attempt must not pass a nonzero threshold")
	}
}
