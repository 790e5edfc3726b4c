package dto

import "github.com/noah-isme/copo-api/internal/models"

// CourseOutcomeCreateRequest captures the payload to create a CO.
type CourseOutcomeCreateRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required"`
	Number    int    `json:"number" validate:"required,min=1"`
	Statement string `json:"statement" validate:"required,min=5"`
}

// CourseOutcomeUpdateRequest captures partial CO updates.
type CourseOutcomeUpdateRequest struct {
	Number    *int    `json:"number" validate:"omitempty,min=1"`
	Statement *string `json:"statement" validate:"omitempty,min=5"`
}

// CourseOutcomeResponse serializes a course outcome.
type CourseOutcomeResponse struct {
	ID        uint   `json:"id"`
	SubjectID uint   `json:"subject_id"`
	Number    int    `json:"number"`
	Statement string `json:"statement"`
}

// NewCourseOutcomeResponse converts a CO model into a DTO.
func NewCourseOutcomeResponse(outcome models.CourseOutcome) CourseOutcomeResponse {
	return CourseOutcomeResponse{
		ID:        outcome.ID,
		SubjectID: outcome.SubjectID,
		Number:    outcome.Number,
		Statement: outcome.Statement,
	}
}

// ProgramOutcomeCreateRequest captures the payload to create a PO.
type ProgramOutcomeCreateRequest struct {
	DepartmentID uint   `json:"department_id" validate:"required"`
	Number       int    `json:"number" validate:"required,min=1"`
	Statement    string `json:"statement" validate:"required,min=5"`
}

// ProgramOutcomeUpdateRequest captures partial PO updates.
type ProgramOutcomeUpdateRequest struct {
	Number    *int    `json:"number" validate:"omitempty,min=1"`
	Statement *string `json:"statement" validate:"omitempty,min=5"`
}

// ProgramOutcomeResponse serializes a program outcome.
type ProgramOutcomeResponse struct {
	ID           uint   `json:"id"`
	DepartmentID uint   `json:"department_id"`
	Number       int    `json:"number"`
	Statement    string `json:"statement"`
}

// NewProgramOutcomeResponse converts a PO model into a DTO.
func NewProgramOutcomeResponse(outcome models.ProgramOutcome) ProgramOutcomeResponse {
	return ProgramOutcomeResponse{
		ID:           outcome.ID,
		DepartmentID: outcome.DepartmentID,
		Number:       outcome.Number,
		Statement:    outcome.Statement,
	}
}

// MappingCreateRequest creates a weighted CO-PO edge.
type MappingCreateRequest struct {
	CourseOutcomeID  uint `json:"course_outcome_id" validate:"required"`
	ProgramOutcomeID uint `json:"program_outcome_id" validate:"required"`
	CorrelationLevel int  `json:"correlation_level" validate:"required,min=1,max=3"`
}

// MappingUpdateRequest adjusts the correlation level of an edge.
type MappingUpdateRequest struct {
	CorrelationLevel int `json:"correlation_level" validate:"required,min=1,max=3"`
}

// MappingResponse serializes a CO-PO edge.
type MappingResponse struct {
	ID               uint `json:"id"`
	CourseOutcomeID  uint `json:"course_outcome_id"`
	ProgramOutcomeID uint `json:"program_outcome_id"`
	CorrelationLevel int  `json:"correlation_level"`
}

// NewMappingResponse converts a mapping model into a DTO.
func NewMappingResponse(mapping models.CoPOMapping) MappingResponse {
	return MappingResponse{
		ID:               mapping.ID,
		CourseOutcomeID:  mapping.CourseOutcomeID,
		ProgramOutcomeID: mapping.ProgramOutcomeID,
		CorrelationLevel: mapping.CorrelationLevel,
	}
}
