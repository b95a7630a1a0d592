package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

// QuestionService manages an exam's question bank. Questions are frozen
// once the exam goes active.
type QuestionService struct {
	questions QuestionStore
	exams     ExamStore
	log       zerolog.Logger
}

func NewQuestionService(questions QuestionStore, exams ExamStore, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		exams:     exams,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

func (s *QuestionService) editableExam(ctx context.Context, examID, userID uuid.UUID, role model.Role) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	if role != model.RoleAdmin && exam.CreatedBy != userID {
		return nil, ErrNotAuthorized
	}
	if exam.Status == model.ExamStatusActive || exam.Status == model.ExamStatusCompleted {
		return nil, ErrExamNotEditable
	}
	return exam, nil
}

func (s *QuestionService) Create(ctx context.Context, examID, userID uuid.UUID, role model.Role, req *model.CreateQuestionRequest) (*model.Question, error) {
	exam, err := s.editableExam(ctx, examID, userID, role)
	if err != nil {
		return nil, err
	}

	question := s.build(exam, req)
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}
	if err := s.questions.SyncExamTotals(ctx, examID); err != nil {
		return nil, err
	}
	return question, nil
}

// BulkCreate adds several questions at once, keeping their order.
func (s *QuestionService) BulkCreate(ctx context.Context, examID, userID uuid.UUID, role model.Role, req *model.BulkCreateQuestionsRequest) ([]model.Question, error) {
	exam, err := s.editableExam(ctx, examID, userID, role)
	if err != nil {
		return nil, err
	}

	created := make([]model.Question, 0, len(req.Questions))
	for i := range req.Questions {
		question := s.build(exam, &req.Questions[i])
		if err := s.questions.Create(ctx, question); err != nil {
			return nil, fmt.Errorf("failed to create question %d: %w", i+1, err)
		}
		created = append(created, *question)
	}
	if err := s.questions.SyncExamTotals(ctx, examID); err != nil {
		return nil, err
	}

	s.log.Info().Str("exam_id", examID.String()).Int("count", len(created)).Msg("questions imported")
	return created, nil
}

func (s *QuestionService) build(exam *model.Exam, req *model.CreateQuestionRequest) *model.Question {
	marks := req.Marks
	if marks == 0 {
		marks = exam.PerQuestionMarks
	}
	negative := req.NegativeMarks
	if negative == 0 {
		negative = exam.NegativeMarks
	}
	return &model.Question{
		ID:            uuid.New(),
		ExamID:        exam.ID,
		QuestionText:  req.QuestionText,
		QuestionType:  model.QuestionType(req.QuestionType),
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Marks:         marks,
		NegativeMarks: negative,
		Difficulty:    req.Difficulty,
	}
}

func (s *QuestionService) Get(ctx context.Context, questionID, userID uuid.UUID, role model.Role) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	if question == nil {
		return nil, ErrNotFound
	}
	exam, err := s.exams.GetByID(ctx, question.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	if role != model.RoleAdmin && exam.CreatedBy != userID {
		return nil, ErrNotAuthorized
	}
	return question, nil
}

func (s *QuestionService) List(ctx context.Context, examID, userID uuid.UUID, role model.Role) ([]model.Question, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	if role != model.RoleAdmin && exam.CreatedBy != userID {
		return nil, ErrNotAuthorized
	}
	return s.questions.ListByExam(ctx, examID)
}

func (s *QuestionService) Update(ctx context.Context, questionID, userID uuid.UUID, role model.Role, req *model.UpdateQuestionRequest) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	if question == nil {
		return nil, ErrNotFound
	}
	if _, err := s.editableExam(ctx, question.ExamID, userID, role); err != nil {
		return nil, err
	}

	if req.QuestionText != "" {
		question.QuestionText = req.QuestionText
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.CorrectAnswer != "" {
		question.CorrectAnswer = req.CorrectAnswer
	}
	if req.Explanation != nil {
		question.Explanation = *req.Explanation
	}
	if req.Marks > 0 {
		question.Marks = req.Marks
	}
	if req.NegativeMarks != nil {
		question.NegativeMarks = *req.NegativeMarks
	}
	if req.Difficulty != "" {
		question.Difficulty = req.Difficulty
	}

	if err := s.questions.Update(ctx, question); err != nil {
		return nil, err
	}
	if err := s.questions.SyncExamTotals(ctx, question.ExamID); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) Delete(ctx context.Context, questionID, userID uuid.UUID, role model.Role) error {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return fmt.Errorf("failed to load question: %w", err)
	}
	if question == nil {
		return ErrNotFound
	}
	if _, err := s.editableExam(ctx, question.ExamID, userID, role); err != nil {
		return err
	}
	if _, err := s.questions.Delete(ctx, questionID); err != nil {
		return err
	}
	return s.questions.SyncExamTotals(ctx, question.ExamID)
}
