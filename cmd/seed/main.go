package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/examportal-backend/internal/config"
	"github.com/campusworks/examportal-backend/internal/database"
	"github.com/campusworks/examportal-backend/internal/logger"
	"github.com/campusworks/examportal-backend/internal/model"
	"github.com/campusworks/examportal-backend/internal/repository"
)

// Seeds a demo examiner, a batch of students and one exam with a small
// question bank. Intended for local development only.
func main() {
	var studentCount int
	var password string
	flag.IntVar(&studentCount, "students", 10, "Number of students to create")
	flag.StringVar(&password, "password", "password123", "Password for all seeded accounts")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	examiner := &model.User{
		ID:           uuid.New(),
		Name:         "Demo Examiner",
		Email:        "examiner@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleExaminer,
		Department:   "Computer Science",
		IsActive:     true,
	}
	if err := userRepo.Create(ctx, examiner); err != nil {
		log.Fatal().Err(err).Msg("Failed to create examiner")
	}
	fmt.Printf("Examiner: %s (%s)\n", examiner.Email, examiner.ID)

	studentIDs := make([]uuid.UUID, 0, studentCount)
	for i := 1; i <= studentCount; i++ {
		student := &model.User{
			ID:                 uuid.New(),
			Name:               fmt.Sprintf("Student %02d", i),
			Email:              fmt.Sprintf("student%02d@example.com", i),
			PasswordHash:       string(hash),
			Role:               model.RoleStudent,
			RegistrationNumber: fmt.Sprintf("REG-%04d", i),
			Department:         "Computer Science",
			Semester:           "4",
			ExaminerID:         &examiner.ID,
			IsActive:           true,
		}
		if err := userRepo.Create(ctx, student); err != nil {
			log.Fatal().Err(err).Int("n", i).Msg("Failed to create student")
		}
		studentIDs = append(studentIDs, student.ID)
	}
	fmt.Printf("Students: %d created\n", studentCount)

	exam := &model.Exam{
		ID:               uuid.New(),
		Title:            "Data Structures Midterm",
		Description:      "Covers lists, trees and hashing.",
		DurationMinutes:  60,
		TotalMarks:       20,
		PassingMarks:     8,
		PerQuestionMarks: 4,
		NegativeMarks:    1,
		Instructions:     "Answer all questions. Negative marking applies.",
		Status:           model.ExamStatusCreated,
		CreatedBy:        examiner.ID,
	}
	if err := examRepo.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to create exam")
	}

	questions := []model.Question{
		{
			QuestionText:  "Which data structure gives O(1) average lookup by key?",
			QuestionType:  model.QuestionTypeMCQ,
			Options:       []model.Option{{Letter: "A", Text: "Linked list"}, {Letter: "B", Text: "Hash table"}, {Letter: "C", Text: "Binary heap"}, {Letter: "D", Text: "Stack"}},
			CorrectAnswer: "B",
		},
		{
			QuestionText:  "A balanced binary search tree has O(log n) insertion.",
			QuestionType:  model.QuestionTypeTrueFalse,
			CorrectAnswer: "true",
		},
		{
			QuestionText:  "Which traversal of a BST yields sorted order?",
			QuestionType:  model.QuestionTypeMCQ,
			Options:       []model.Option{{Letter: "A", Text: "Preorder"}, {Letter: "B", Text: "Postorder"}, {Letter: "C", Text: "Inorder"}, {Letter: "D", Text: "Level order"}},
			CorrectAnswer: "C",
		},
		{
			QuestionText:  "A queue is LIFO.",
			QuestionType:  model.QuestionTypeTrueFalse,
			CorrectAnswer: "false",
		},
		{
			QuestionText:  "Name the worst-case complexity of quicksort.",
			QuestionType:  model.QuestionTypeShortAnswer,
			CorrectAnswer: "O(n^2)",
		},
	}
	for i := range questions {
		q := &questions[i]
		q.ID = uuid.New()
		q.ExamID = exam.ID
		q.Marks = exam.PerQuestionMarks
		q.NegativeMarks = exam.NegativeMarks
		if err := questionRepo.Create(ctx, q); err != nil {
			log.Fatal().Err(err).Int("n", i+1).Msg("Failed to create question")
		}
	}
	if err := questionRepo.SyncExamTotals(ctx, exam.ID); err != nil {
		log.Fatal().Err(err).Msg("Failed to sync exam totals")
	}

	if _, err := examRepo.AssignStudents(ctx, exam.ID, studentIDs); err != nil {
		log.Fatal().Err(err).Msg("Failed to assign students")
	}

	fmt.Printf("Exam: %s (%s) with %d questions, all students assigned\n", exam.Title, exam.ID, len(questions))
	fmt.Println("Done.")
}
