package dto

import (
	"time"

	"github.com/google/uuid"

	"bimbelku_backend/internals/features/tutoring/students/model"
)

/* =========================
   Request
========================= */

type CreateStudentRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	UserID      *string `json:"user_id" validate:"omitempty,uuid4"`
	ParentName  string  `json:"parent_name" validate:"required,max=50"`
	ParentPhone string  `json:"parent_phone" validate:"required,max=20"`
	ParentEmail string  `json:"parent_email" validate:"omitempty,email"`
	DateOfBirth string  `json:"date_of_birth" validate:"required"` // YYYY-MM-DD
	Class       string  `json:"class" validate:"required,max=50"`
	School      string  `json:"school" validate:"omitempty,max=100"`
}

type UpdateStudentRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	ParentName  *string `json:"parent_name" validate:"omitempty,max=50"`
	ParentPhone *string `json:"parent_phone" validate:"omitempty,max=20"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,email"`
	Class       *string `json:"class" validate:"omitempty,max=50"`
	School      *string `json:"school" validate:"omitempty,max=100"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

type EnrollRequest struct {
	BatchID string `json:"batch_id" validate:"required,uuid4"`
}

/* =========================
   Response
========================= */

type StudentResponse struct {
	StudentID      uuid.UUID  `json:"student_id"`
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	ParentName     string     `json:"parent_name"`
	ParentPhone    string     `json:"parent_phone"`
	ParentEmail    *string    `json:"parent_email,omitempty"`
	DateOfBirth    time.Time  `json:"date_of_birth"`
	Class          string     `json:"class"`
	School         *string    `json:"school,omitempty"`
	EnrollmentDate time.Time  `json:"enrollment_date"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

func ToStudentResponse(s *model.StudentModel) StudentResponse {
	return StudentResponse{
		StudentID:      s.StudentID,
		Code:           s.StudentCode,
		Name:           s.StudentName,
		UserID:         s.StudentUserID,
		ParentName:     s.StudentParentName,
		ParentPhone:    s.StudentParentPhone,
		ParentEmail:    s.StudentParentEmail,
		DateOfBirth:    s.StudentDateOfBirth,
		Class:          s.StudentClass,
		School:         s.StudentSchool,
		EnrollmentDate: s.StudentEnrollmentDate,
		Status:         s.StudentStatus,
		CreatedAt:      s.StudentCreatedAt,
	}
}
