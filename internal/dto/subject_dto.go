package dto

import (
	"time"

	"github.com/noah-isme/copo-api/internal/models"
)

// SubjectCreateRequest captures the payload to create a subject.
type SubjectCreateRequest struct {
	DepartmentID uint   `json:"department_id" validate:"required"`
	Name         string `json:"name" validate:"required,min=2,max=255"`
	Code         string `json:"code" validate:"required,min=2,max=32"`
	Semester     int    `json:"semester" validate:"omitempty,min=1,max=12"`
}

// SubjectUpdateRequest captures partial subject updates.
type SubjectUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=255"`
	Code     *string `json:"code" validate:"omitempty,min=2,max=32"`
	Semester *int    `json:"semester" validate:"omitempty,min=1,max=12"`
	Status   *string `json:"status" validate:"omitempty,oneof=pending in-progress complete"`
}

// SubjectResponse serializes subject data.
type SubjectResponse struct {
	ID           uint      `json:"id"`
	DepartmentID uint      `json:"department_id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Semester     int       `json:"semester"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSubjectResponse converts a subject model into a DTO.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:           subject.ID,
		DepartmentID: subject.DepartmentID,
		Name:         subject.Name,
		Code:         subject.Code,
		Semester:     subject.Semester,
		Status:       subject.Status,
		CreatedAt:    subject.CreatedAt,
		UpdatedAt:    subject.UpdatedAt,
	}
}

// AssignmentCreateRequest links a faculty member to a subject.
type AssignmentCreateRequest struct {
	FacultyID uint `json:"faculty_id" validate:"required"`
}

// AssignmentResponse serializes a subject-faculty link.
type AssignmentResponse struct {
	ID         uint      `json:"id"`
	SubjectID  uint      `json:"subject_id"`
	FacultyID  uint      `json:"faculty_id"`
	AssignedBy uint      `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

// NewAssignmentResponse converts an assignment model into a DTO.
func NewAssignmentResponse(assignment models.SubjectAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         assignment.ID,
		SubjectID:  assignment.SubjectID,
		FacultyID:  assignment.FacultyID,
		AssignedBy: assignment.AssignedBy,
		AssignedAt: assignment.AssignedAt,
	}
}
