package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

type attemptFixture struct {
	svc      *AttemptService
	attempts *fakeAttemptStore
	exams    *fakeExamStore
	users    *fakeUserStore
	qs       *fakeQuestionStore
	paper    *fakePaperCache
	events   *fakePublisher
	now      time.Time

	exam    *model.Exam
	student uuid.UUID
}

func newAttemptFixture(t *testing.T) *attemptFixture {
	t.Helper()

	users := newFakeUserStore()
	exams := newFakeExamStore(users)
	qs := newFakeQuestionStore(exams)
	attempts := newFakeAttemptStore(exams)
	paper := newFakePaperCache()
	events := &fakePublisher{}

	f := &attemptFixture{
		attempts: attempts,
		exams:    exams,
		users:    users,
		qs:       qs,
		paper:    paper,
		events:   events,
		now:      time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewAttemptService(attempts, exams, qs, users, paper, events, zerolog.Nop())
	f.svc.now = func() time.Time { return f.now }

	examinerID := uuid.New()
	f.exam = &model.Exam{
		ID:              uuid.New(),
		Title:           "Live Exam",
		DurationMinutes: 60,
		TotalMarks:      4,
		PassingMarks:    2,
		TotalQuestions:  2,
		Status:          model.ExamStatusActive,
		CanStudentsJoin: true,
		CreatedBy:       examinerID,
	}
	exams.exams[f.exam.ID] = f.exam

	f.student = uuid.New()
	users.users[f.student] = &model.User{
		ID: f.student, Name: "Alice", Email: "alice@test", Role: model.RoleStudent, IsActive: true,
	}
	exams.AssignStudents(context.Background(), f.exam.ID, []uuid.UUID{f.student})
	return f
}

func (f *attemptFixture) addQuestion(t *testing.T, correct string, marks, negative float64) *model.Question {
	t.Helper()
	q := &model.Question{
		ID:            uuid.New(),
		ExamID:        f.exam.ID,
		QuestionText:  "q",
		QuestionType:  model.QuestionTypeMCQ,
		CorrectAnswer: correct,
		Marks:         marks,
		NegativeMarks: negative,
	}
	f.qs.questions[q.ID] = q
	return q
}

func TestStartAttempt(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an in-progress attempt and publishes an event", func(t *testing.T) {
		f := newAttemptFixture(t)

		attempt, err := f.svc.Start(ctx, f.exam.ID, f.student)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if attempt.Status != model.AttemptStatusInProgress {
			t.Errorf("status = %s, want in-progress", attempt.Status)
		}
		if !attempt.StartedAt.Equal(f.now) {
			t.Error("started_at not stamped")
		}
		if len(f.events.events) != 1 || f.events.events[0].Type != model.MonitorEventAttemptStarted {
			t.Errorf("events = %+v, want one attempt_started", f.events.events)
		}
		if f.events.events[0].StudentName != "Alice" {
			t.Errorf("event student name = %q, want Alice", f.events.events[0].StudentName)
		}
	})

	t.Run("second start conflicts", func(t *testing.T) {
		f := newAttemptFixture(t)

		if _, err := f.svc.Start(ctx, f.exam.ID, f.student); err != nil {
			t.Fatalf("first Start: %v", err)
		}
		_, err := f.svc.Start(ctx, f.exam.ID, f.student)
		if !errors.Is(err, ErrAttemptAlreadyStarted) {
			t.Errorf("err = %v, want ErrAttemptAlreadyStarted", err)
		}
	})

	t.Run("requires assignment", func(t *testing.T) {
		f := newAttemptFixture(t)
		outsider := uuid.New()

		if _, err := f.svc.Start(ctx, f.exam.ID, outsider); !errors.Is(err, ErrNotAssigned) {
			t.Errorf("outsider: err = %v, want ErrNotAssigned", err)
		}
	})

	t.Run("does not gate on exam status", func(t *testing.T) {
		f := newAttemptFixture(t)
		f.exam.Status = model.ExamStatusScheduled
		f.exam.CanStudentsJoin = false

		attempt, err := f.svc.Start(ctx, f.exam.ID, f.student)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if attempt.Status != model.AttemptStatusInProgress {
			t.Errorf("status = %s, want in-progress", attempt.Status)
		}
	})
}

func TestSaveAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("latest answer wins", func(t *testing.T) {
		f := newAttemptFixture(t)
		q := f.addQuestion(t, "A", 2, 0)

		attempt, err := f.svc.Start(ctx, f.exam.ID, f.student)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}

		for _, answer := range []string{"B", "A"} {
			err := f.svc.SaveAnswer(ctx, f.exam.ID, f.student, &model.SaveAnswerRequest{
				QuestionID: q.ID, SelectedAnswer: answer,
			})
			if err != nil {
				t.Fatalf("SaveAnswer(%q): %v", answer, err)
			}
		}

		saved, _ := f.attempts.ListResponses(ctx, attempt.ID)
		if len(saved) != 1 {
			t.Fatalf("responses = %d, want 1 after overwrite", len(saved))
		}
		if saved[0].SelectedAnswer != "A" {
			t.Errorf("answer = %q, want the latest (A)", saved[0].SelectedAnswer)
		}
	})

	t.Run("rejects questions from other exams", func(t *testing.T) {
		f := newAttemptFixture(t)
		foreign := &model.Question{ID: uuid.New(), ExamID: uuid.New(), CorrectAnswer: "A"}
		f.qs.questions[foreign.ID] = foreign

		if _, err := f.svc.Start(ctx, f.exam.ID, f.student); err != nil {
			t.Fatalf("Start: %v", err)
		}
		err := f.svc.SaveAnswer(ctx, f.exam.ID, f.student, &model.SaveAnswerRequest{
			QuestionID: foreign.ID, SelectedAnswer: "A",
		})
		if !errors.Is(err, ErrQuestionNotInExam) {
			t.Errorf("err = %v, want ErrQuestionNotInExam", err)
		}
	})

	t.Run("requires an in-progress attempt", func(t *testing.T) {
		f := newAttemptFixture(t)
		q := f.addQuestion(t, "A", 2, 0)
		req := &model.SaveAnswerRequest{QuestionID: q.ID, SelectedAnswer: "A"}

		if err := f.svc.SaveAnswer(ctx, f.exam.ID, f.student, req); !errors.Is(err, ErrAttemptNotStarted) {
			t.Errorf("no attempt: err = %v, want ErrAttemptNotStarted", err)
		}

		if _, err := f.svc.Start(ctx, f.exam.ID, f.student); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if _, err := f.svc.Submit(ctx, f.exam.ID, f.student, &model.SubmitAttemptRequest{}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if err := f.svc.SaveAnswer(ctx, f.exam.ID, f.student, req); !errors.Is(err, ErrAttemptAlreadySubmitted) {
			t.Errorf("after submit: err = %v, want ErrAttemptAlreadySubmitted", err)
		}
	})
}

func TestSubmitAttempt(t *testing.T) {
	ctx := context.Background()

	t.Run("grades and finalizes", func(t *testing.T) {
		f := newAttemptFixture(t)
		q1 := f.addQuestion(t, "A", 2, 1)
		q2 := f.addQuestion(t, "B", 2, 1)

		if _, err := f.svc.Start(ctx, f.exam.ID, f.student); err != nil {
			t.Fatalf("Start: %v", err)
		}
		f.svc.SaveAnswer(ctx, f.exam.ID, f.student, &model.SaveAnswerRequest{QuestionID: q1.ID, SelectedAnswer: "A"})
		f.svc.SaveAnswer(ctx, f.exam.ID, f.student, &model.SaveAnswerRequest{QuestionID: q2.ID, SelectedAnswer: "C"})

		result, err := f.svc.Submit(ctx, f.exam.ID, f.student, &model.SubmitAttemptRequest{TotalTimeSpentSec: 600})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		a := result.Attempt
		if a.Status != model.AttemptStatusEvaluated {
			t.Errorf("status = %s, want evaluated", a.Status)
		}
		if a.TotalObtainedMarks != 1 { // 2 - 1
			t.Errorf("obtained = %v, want 1", a.TotalObtainedMarks)
		}
		if a.TotalScore != 4 {
			t.Errorf("total score = %v, want exam total marks 4", a.TotalScore)
		}
		if a.Percentage != 25 {
			t.Errorf("percentage = %v, want 25", a.Percentage)
		}
		if a.IsPassed {
			t.Error("1 < 2 must not pass")
		}
		if a.SubmittedAt == nil || !a.SubmittedAt.Equal(f.now) {
			t.Error("submitted_at not stamped")
		}
		if a.TotalTimeSpentSec != 600 {
			t.Errorf("time spent = %d, want 600", a.TotalTimeSpentSec)
		}

		found := false
		for _, ev := range f.events.events {
			if ev.Type == model.MonitorEventAttemptSubmitted {
				found = true
			}
		}
		if !found {
			t.Error("attempt_submitted event not published")
		}
	})

	t.Run("submission is single-shot", func(t *testing.T) {
		f := newAttemptFixture(t)
		f.addQuestion(t, "A", 2, 0)

		if _, err := f.svc.Start(ctx, f.exam.ID, f.student); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if _, err := f.svc.Submit(ctx, f.exam.ID, f.student, &model.SubmitAttemptRequest{}); err != nil {
			t.Fatalf("first Submit: %v", err)
		}
		_, err := f.svc.Submit(ctx, f.exam.ID, f.student, &model.SubmitAttemptRequest{})
		if !errors.Is(err, ErrAttemptAlreadySubmitted) {
			t.Errorf("err = %v, want ErrAttemptAlreadySubmitted", err)
		}
	})

	t.Run("submit without start", func(t *testing.T) {
		f := newAttemptFixture(t)
		_, err := f.svc.Submit(ctx, f.exam.ID, f.student, &model.SubmitAttemptRequest{})
		if !errors.Is(err, ErrAttemptNotStarted) {
			t.Errorf("err = %v, want ErrAttemptNotStarted", err)
		}
	})
}

func TestAttemptResults(t *testing.T) {
	ctx := context.Background()

	t.Run("no results while in progress", func(t *testing.T) {
		f := newAttemptFixture(t)
		if _, err := f.svc.Start(ctx, f.exam.ID, f.student); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if _, err := f.svc.Result(ctx, f.exam.ID, f.student); !errors.Is(err, ErrNoResults) {
			t.Errorf("err = %v, want ErrNoResults", err)
		}
	})

	t.Run("graded result after submit", func(t *testing.T) {
		f := newAttemptFixture(t)
		q := f.addQuestion(t, "A", 2, 0)

		if _, err := f.svc.Start(ctx, f.exam.ID, f.student); err != nil {
			t.Fatalf("Start: %v", err)
		}
		f.svc.SaveAnswer(ctx, f.exam.ID, f.student, &model.SaveAnswerRequest{QuestionID: q.ID, SelectedAnswer: "A"})
		if _, err := f.svc.Submit(ctx, f.exam.ID, f.student, &model.SubmitAttemptRequest{}); err != nil {
			t.Fatalf("Submit: %v", err)
		}

		result, err := f.svc.Result(ctx, f.exam.ID, f.student)
		if err != nil {
			t.Fatalf("Result: %v", err)
		}
		if len(result.Responses) != 1 {
			t.Fatalf("responses = %d, want 1", len(result.Responses))
		}
		if result.Responses[0].IsCorrect == nil || !*result.Responses[0].IsCorrect {
			t.Error("response verdict not persisted")
		}
	})
}

func TestAutoSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("caps the recorded time at the exam duration", func(t *testing.T) {
		f := newAttemptFixture(t)
		f.addQuestion(t, "A", 2, 0)

		attempt, err := f.svc.Start(ctx, f.exam.ID, f.student)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}

		// The sweeper fires well past the deadline.
		f.now = f.now.Add(2 * time.Hour)

		result, err := f.svc.AutoSubmit(ctx, attempt.ID)
		if err != nil {
			t.Fatalf("AutoSubmit: %v", err)
		}
		if !result.Attempt.AutoSubmitted {
			t.Error("auto_submitted should be true")
		}
		if want := f.exam.DurationMinutes * 60; result.Attempt.TotalTimeSpentSec != want {
			t.Errorf("time spent = %d, want capped at %d", result.Attempt.TotalTimeSpentSec, want)
		}
	})

	t.Run("overdue listing feeds the sweeper", func(t *testing.T) {
		f := newAttemptFixture(t)
		if _, err := f.svc.Start(ctx, f.exam.ID, f.student); err != nil {
			t.Fatalf("Start: %v", err)
		}

		overdue, err := f.svc.ListOverdue(ctx, 10)
		if err != nil {
			t.Fatalf("ListOverdue: %v", err)
		}
		if len(overdue) != 0 {
			t.Fatalf("fresh attempt listed as overdue")
		}

		f.now = f.now.Add(61 * time.Minute)
		overdue, err = f.svc.ListOverdue(ctx, 10)
		if err != nil {
			t.Fatalf("ListOverdue: %v", err)
		}
		if len(overdue) != 1 {
			t.Fatalf("overdue = %d, want 1", len(overdue))
		}

		if _, err := f.svc.AutoSubmit(ctx, overdue[0].ID); err != nil {
			t.Fatalf("AutoSubmit: %v", err)
		}
		if _, err := f.svc.AutoSubmit(ctx, overdue[0].ID); !errors.Is(err, ErrAttemptAlreadySubmitted) {
			t.Errorf("second AutoSubmit err = %v, want ErrAttemptAlreadySubmitted", err)
		}
	})
}
