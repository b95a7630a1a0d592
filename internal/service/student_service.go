package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/examportal-backend/internal/model"
)

// StudentService lets examiners manage the students they onboard.
type StudentService struct {
	users      UserStore
	log        zerolog.Logger
	bcryptCost int
}

func NewStudentService(users UserStore, log zerolog.Logger, bcryptCost int) *StudentService {
	return &StudentService{
		users:      users,
		log:        log.With().Str("component", "student_service").Logger(),
		bcryptCost: bcryptCost,
	}
}

// Create registers a student under the calling examiner's tenancy.
func (s *StudentService) Create(ctx context.Context, examinerID uuid.UUID, req *model.CreateStudentRequest) (*model.User, error) {
	taken, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &model.User{
		ID:                 uuid.New(),
		Name:               req.Name,
		Email:              req.Email,
		PasswordHash:       string(hash),
		Role:               model.RoleStudent,
		RegistrationNumber: req.RegistrationNumber,
		Department:         req.Department,
		Semester:           req.Semester,
		ExaminerID:         &examinerID,
		IsActive:           true,
	}
	if err := s.users.Create(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("student_id", student.ID.String()).
		Str("examiner_id", examinerID.String()).
		Msg("student created")
	return student, nil
}

// List returns an examiner's own students. Admins see everyone.
func (s *StudentService) List(ctx context.Context, callerID uuid.UUID, role model.Role, limit, offset int) ([]model.User, int, error) {
	var scope *uuid.UUID
	if role != model.RoleAdmin {
		scope = &callerID
	}
	return s.users.ListStudents(ctx, scope, limit, offset)
}

func (s *StudentService) get(ctx context.Context, studentID, callerID uuid.UUID, role model.Role) (*model.User, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, ErrNotFound
	}
	if role != model.RoleAdmin && (student.ExaminerID == nil || *student.ExaminerID != callerID) {
		return nil, ErrNotAuthorized
	}
	return student, nil
}

func (s *StudentService) Get(ctx context.Context, studentID, callerID uuid.UUID, role model.Role) (*model.User, error) {
	return s.get(ctx, studentID, callerID, role)
}

func (s *StudentService) Update(ctx context.Context, studentID, callerID uuid.UUID, role model.Role, req *model.UpdateStudentRequest) (*model.User, error) {
	student, err := s.get(ctx, studentID, callerID, role)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		student.Name = req.Name
	}
	if req.Email != "" && req.Email != student.Email {
		taken, err := s.users.EmailExists(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		student.Email = req.Email
	}
	if req.Department != "" {
		student.Department = req.Department
	}
	if req.Semester != "" {
		student.Semester = req.Semester
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, studentID, callerID uuid.UUID, role model.Role) error {
	if _, err := s.get(ctx, studentID, callerID, role); err != nil {
		return err
	}
	deleted, err := s.users.Delete(ctx, studentID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.log.Info().Str("student_id", studentID.String()).Msg("student deleted")
	return nil
}
