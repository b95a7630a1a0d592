package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

type questionFixture struct {
	svc      *QuestionService
	exams    *fakeExamStore
	qs       *fakeQuestionStore
	examiner uuid.UUID
	exam     *model.Exam
}

func newQuestionFixture(t *testing.T) *questionFixture {
	t.Helper()

	users := newFakeUserStore()
	exams := newFakeExamStore(users)
	qs := newFakeQuestionStore(exams)

	f := &questionFixture{
		svc:      NewQuestionService(qs, exams, zerolog.Nop()),
		exams:    exams,
		qs:       qs,
		examiner: uuid.New(),
	}
	f.exam = &model.Exam{
		ID:               uuid.New(),
		Title:            "Draft Exam",
		Status:           model.ExamStatusCreated,
		PerQuestionMarks: 2,
		NegativeMarks:    0.5,
		CreatedBy:        f.examiner,
	}
	exams.exams[f.exam.ID] = f.exam
	return f
}

func mcqRequest(text string) *model.CreateQuestionRequest {
	return &model.CreateQuestionRequest{
		QuestionText: text,
		QuestionType: "mcq",
		Options: []model.Option{
			{Letter: "A", Text: "first"},
			{Letter: "B", Text: "second"},
		},
		CorrectAnswer: "A",
	}
}

func TestCreateQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("numbers sequentially and syncs totals", func(t *testing.T) {
		f := newQuestionFixture(t)

		q1, err := f.svc.Create(ctx, f.exam.ID, f.examiner, model.RoleExaminer, mcqRequest("first question?"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		q2, err := f.svc.Create(ctx, f.exam.ID, f.examiner, model.RoleExaminer, mcqRequest("second question?"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if q1.QuestionNumber != 1 || q2.QuestionNumber != 2 {
			t.Errorf("numbers = %d, %d, want 1, 2", q1.QuestionNumber, q2.QuestionNumber)
		}
		if f.exam.TotalQuestions != 2 {
			t.Errorf("total questions = %d, want 2", f.exam.TotalQuestions)
		}
		if f.exam.TotalMarks != 4 {
			t.Errorf("total marks = %v, want 4", f.exam.TotalMarks)
		}
	})

	t.Run("inherits exam defaults for marks", func(t *testing.T) {
		f := newQuestionFixture(t)
		q, err := f.svc.Create(ctx, f.exam.ID, f.examiner, model.RoleExaminer, mcqRequest("defaults?"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if q.Marks != 2 {
			t.Errorf("marks = %v, want exam default 2", q.Marks)
		}
		if q.NegativeMarks != 0.5 {
			t.Errorf("negative marks = %v, want exam default 0.5", q.NegativeMarks)
		}
	})

	t.Run("explicit marks win over defaults", func(t *testing.T) {
		f := newQuestionFixture(t)
		req := mcqRequest("explicit?")
		req.Marks = 5
		q, err := f.svc.Create(ctx, f.exam.ID, f.examiner, model.RoleExaminer, req)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if q.Marks != 5 {
			t.Errorf("marks = %v, want 5", q.Marks)
		}
	})

	t.Run("frozen once exam is active", func(t *testing.T) {
		f := newQuestionFixture(t)
		f.exam.Status = model.ExamStatusActive
		_, err := f.svc.Create(ctx, f.exam.ID, f.examiner, model.RoleExaminer, mcqRequest("too late?"))
		if !errors.Is(err, ErrExamNotEditable) {
			t.Errorf("err = %v, want ErrExamNotEditable", err)
		}
	})

	t.Run("only owner or admin may edit", func(t *testing.T) {
		f := newQuestionFixture(t)
		if _, err := f.svc.Create(ctx, f.exam.ID, uuid.New(), model.RoleExaminer, mcqRequest("mine?")); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("stranger err = %v, want ErrNotAuthorized", err)
		}
		if _, err := f.svc.Create(ctx, f.exam.ID, uuid.New(), model.RoleAdmin, mcqRequest("admin?")); err != nil {
			t.Errorf("admin err = %v, want nil", err)
		}
	})
}

func TestBulkCreateQuestions(t *testing.T) {
	ctx := context.Background()
	f := newQuestionFixture(t)

	req := &model.BulkCreateQuestionsRequest{
		Questions: []model.CreateQuestionRequest{
			*mcqRequest("one?"), *mcqRequest("two?"), *mcqRequest("three?"),
		},
	}
	created, err := f.svc.BulkCreate(ctx, f.exam.ID, f.examiner, model.RoleExaminer, req)
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("created = %d, want 3", len(created))
	}
	for i, q := range created {
		if q.QuestionNumber != i+1 {
			t.Errorf("question %d number = %d, want %d", i, q.QuestionNumber, i+1)
		}
	}
	if f.exam.TotalMarks != 6 {
		t.Errorf("total marks = %v, want 6", f.exam.TotalMarks)
	}
}

func TestUpdateAndDeleteQuestion(t *testing.T) {
	ctx := context.Background()
	f := newQuestionFixture(t)

	q, err := f.svc.Create(ctx, f.exam.ID, f.examiner, model.RoleExaminer, mcqRequest("original?"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("update reprices totals", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, q.ID, f.examiner, model.RoleExaminer, &model.UpdateQuestionRequest{
			QuestionText: "reworded?",
			Marks:        10,
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.QuestionText != "reworded?" {
			t.Errorf("text = %q", updated.QuestionText)
		}
		if f.exam.TotalMarks != 10 {
			t.Errorf("total marks = %v, want 10", f.exam.TotalMarks)
		}
	})

	t.Run("delete shrinks totals", func(t *testing.T) {
		if err := f.svc.Delete(ctx, q.ID, f.examiner, model.RoleExaminer); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if f.exam.TotalQuestions != 0 || f.exam.TotalMarks != 0 {
			t.Errorf("totals = %d/%v, want 0/0 after delete", f.exam.TotalQuestions, f.exam.TotalMarks)
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		if err := f.svc.Delete(ctx, uuid.New(), f.examiner, model.RoleExaminer); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
