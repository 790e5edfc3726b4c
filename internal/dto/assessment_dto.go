package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/copo-api/internal/models"
)

// DirectAssessmentCreateRequest captures the payload to create a direct assessment.
type DirectAssessmentCreateRequest struct {
	SubjectID      uint    `json:"subject_id" validate:"required"`
	Name           string  `json:"name" validate:"required,min=2,max=255"`
	AssessmentType string  `json:"assessment_type" validate:"required,oneof=exam assignment quiz lab project"`
	MaxMarks       float64 `json:"max_marks" validate:"required,gt=0"`
	AcademicYear   string  `json:"academic_year" validate:"required,min=4,max=16"`
}

// DirectAssessmentUpdateRequest captures partial assessment updates.
type DirectAssessmentUpdateRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=2,max=255"`
	AssessmentType *string  `json:"assessment_type" validate:"omitempty,oneof=exam assignment quiz lab project"`
	MaxMarks       *float64 `json:"max_marks" validate:"omitempty,gt=0"`
}

// DirectAssessmentResponse serializes a direct assessment.
type DirectAssessmentResponse struct {
	ID             uint      `json:"id"`
	SubjectID      uint      `json:"subject_id"`
	Name           string    `json:"name"`
	AssessmentType string    `json:"assessment_type"`
	MaxMarks       float64   `json:"max_marks"`
	AcademicYear   string    `json:"academic_year"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewDirectAssessmentResponse converts a direct assessment model into a DTO.
func NewDirectAssessmentResponse(assessment models.DirectAssessment) DirectAssessmentResponse {
	return DirectAssessmentResponse{
		ID:             assessment.ID,
		SubjectID:      assessment.SubjectID,
		Name:           assessment.Name,
		AssessmentType: assessment.AssessmentType,
		MaxMarks:       assessment.MaxMarks,
		AcademicYear:   assessment.AcademicYear,
		CreatedAt:      assessment.CreatedAt,
	}
}

// MarkEntry is one student's marks on one course outcome.
type MarkEntry struct {
	StudentID       uint    `json:"student_id" validate:"required"`
	CourseOutcomeID uint    `json:"course_outcome_id" validate:"required"`
	MarksObtained   float64 `json:"marks_obtained" validate:"min=0"`
}

// MarksUpsertRequest bulk-records marks against an assessment.
type MarksUpsertRequest struct {
	Entries []MarkEntry `json:"entries" validate:"required,min=1,dive"`
}

// MarkResponse serializes one stored mark row.
type MarkResponse struct {
	ID              uint    `json:"id"`
	AssessmentID    uint    `json:"assessment_id"`
	StudentID       uint    `json:"student_id"`
	CourseOutcomeID uint    `json:"course_outcome_id"`
	MarksObtained   float64 `json:"marks_obtained"`
}

// NewMarkResponse converts a mark model into a DTO.
func NewMarkResponse(mark models.StudentAssessmentMarks) MarkResponse {
	return MarkResponse{
		ID:              mark.ID,
		AssessmentID:    mark.AssessmentID,
		StudentID:       mark.StudentID,
		CourseOutcomeID: mark.CourseOutcomeID,
		MarksObtained:   mark.MarksObtained,
	}
}

// SurveyQuestion is one question in an indirect assessment, answered on
// a 1..5 scale.
type SurveyQuestion struct {
	ID     string `json:"id" validate:"required,min=1"`
	Prompt string `json:"prompt" validate:"required,min=5"`
}

// IndirectAssessmentCreateRequest captures the payload to create a survey.
type IndirectAssessmentCreateRequest struct {
	DepartmentID uint             `json:"department_id" validate:"required"`
	Name         string           `json:"name" validate:"required,min=2,max=255"`
	AcademicYear string           `json:"academic_year" validate:"required,min=4,max=16"`
	Questions    []SurveyQuestion `json:"questions" validate:"required,min=1,dive"`
}

// IndirectAssessmentResponse serializes a survey definition.
type IndirectAssessmentResponse struct {
	ID           uint             `json:"id"`
	DepartmentID uint             `json:"department_id"`
	Name         string           `json:"name"`
	AcademicYear string           `json:"academic_year"`
	Questions    []SurveyQuestion `json:"questions"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewIndirectAssessmentResponse converts a survey model into a DTO.
func NewIndirectAssessmentResponse(assessment models.IndirectAssessment) IndirectAssessmentResponse {
	response := IndirectAssessmentResponse{
		ID:           assessment.ID,
		DepartmentID: assessment.DepartmentID,
		Name:         assessment.Name,
		AcademicYear: assessment.AcademicYear,
		CreatedAt:    assessment.CreatedAt,
	}
	if len(assessment.Questions) > 0 {
		_ = json.Unmarshal(assessment.Questions, &response.Questions)
	}
	return response
}

// ResponseSubmitRequest carries a student's survey answers keyed by
// question id; values are 1..5 and validated against the survey schema.
type ResponseSubmitRequest struct {
	Responses map[string]int `json:"responses" validate:"required,min=1"`
}

// StudentResponseResponse serializes a stored survey response.
type StudentResponseResponse struct {
	ID                   uint           `json:"id"`
	IndirectAssessmentID uint           `json:"indirect_assessment_id"`
	StudentID            uint           `json:"student_id"`
	Responses            map[string]int `json:"responses"`
	CreatedAt            time.Time      `json:"created_at"`
}

// NewStudentResponseResponse converts a response model into a DTO.
func NewStudentResponseResponse(response models.StudentResponse) StudentResponseResponse {
	out := StudentResponseResponse{
		ID:                   response.ID,
		IndirectAssessmentID: response.IndirectAssessmentID,
		StudentID:            response.StudentID,
		CreatedAt:            response.CreatedAt,
	}
	if len(response.Responses) > 0 {
		_ = json.Unmarshal(response.Responses, &out.Responses)
	}
	return out
}
