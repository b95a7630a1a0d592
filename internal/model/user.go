package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates user roles.
type Role string

const (
	RoleStudent  Role = "student"
	RoleExaminer Role = "examiner"
	RoleAdmin    Role = "admin"
)

// User represents a platform account: a student, an examiner (exam
// conductor) or a full admin.
type User struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Role               Role      `json:"role"`
	RegistrationNumber string    `json:"registration_number,omitempty"`
	Department         string    `json:"department,omitempty"`
	Semester           string    `json:"semester,omitempty"`
	// ExaminerID is the examiner who onboarded this student. It anchors the
	// tenancy check on exam access: a student may only join exams authored
	// by their own examiner.
	ExaminerID *uuid.UUID `json:"examiner_id,omitempty"`
	IsActive   bool       `json:"is_active"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RegisterRequest is the payload for self-registration (student or examiner).
type RegisterRequest struct {
	Name               string `json:"name" binding:"required,min=2,max=100"`
	Email              string `json:"email" binding:"required,email"`
	Password           string `json:"password" binding:"required,min=6,max=72"`
	Role               string `json:"role" binding:"omitempty,oneof=student examiner"`
	RegistrationNumber string `json:"registration_number" binding:"omitempty,max=30"`
	Department         string `json:"department" binding:"omitempty,max=100"`
	Semester           string `json:"semester" binding:"omitempty,max=20"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the payload for rotating a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateStudentRequest is the payload for an examiner creating a student.
type CreateStudentRequest struct {
	Name               string `json:"name" binding:"required,min=2,max=100"`
	Email              string `json:"email" binding:"required,email"`
	Password           string `json:"password" binding:"required,min=6,max=72"`
	RegistrationNumber string `json:"registration_number" binding:"required,max=30"`
	Department         string `json:"department" binding:"omitempty,max=100"`
	Semester           string `json:"semester" binding:"omitempty,max=20"`
}

// UpdateStudentRequest is the payload for updating a student profile.
type UpdateStudentRequest struct {
	Name       string `json:"name" binding:"omitempty,min=2,max=100"`
	Email      string `json:"email" binding:"omitempty,email"`
	Department string `json:"department" binding:"omitempty,max=100"`
	Semester   string `json:"semester" binding:"omitempty,max=20"`
	IsActive   *bool  `json:"is_active" binding:"omitempty"`
}
