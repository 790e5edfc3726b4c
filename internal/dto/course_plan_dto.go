package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/copo-api/internal/models"
)

// CoursePlanModule is one teaching unit inside a course plan.
type CoursePlanModule struct {
	Title  string `json:"title" validate:"required,min=2"`
	Topics string `json:"topics" validate:"required"`
	Hours  int    `json:"hours" validate:"omitempty,min=1"`
}

// CoursePlanCreateRequest captures the payload to create a course plan.
type CoursePlanCreateRequest struct {
	SubjectID         uint               `json:"subject_id" validate:"required"`
	Overview          string             `json:"overview" validate:"required,min=10"`
	Objectives        string             `json:"objectives" validate:"omitempty"`
	Modules           []CoursePlanModule `json:"modules" validate:"omitempty,dive"`
	AssessmentMethods []string           `json:"assessment_methods" validate:"omitempty,dive,min=2"`
	References        []string           `json:"references" validate:"omitempty,dive,min=2"`
}

// CoursePlanUpdateRequest captures partial course plan updates.
type CoursePlanUpdateRequest struct {
	Overview          *string            `json:"overview" validate:"omitempty,min=10"`
	Objectives        *string            `json:"objectives"`
	Modules           []CoursePlanModule `json:"modules" validate:"omitempty,dive"`
	AssessmentMethods []string           `json:"assessment_methods" validate:"omitempty,dive,min=2"`
	References        []string           `json:"references" validate:"omitempty,dive,min=2"`
	Status            *string            `json:"status" validate:"omitempty,oneof=draft submitted approved"`
}

// CoursePlanResponse serializes a course plan document.
type CoursePlanResponse struct {
	ID                uint               `json:"id"`
	SubjectID         uint               `json:"subject_id"`
	FacultyID         uint               `json:"faculty_id"`
	Overview          string             `json:"overview"`
	Objectives        string             `json:"objectives"`
	Modules           []CoursePlanModule `json:"modules"`
	AssessmentMethods []string           `json:"assessment_methods"`
	References        []string           `json:"references"`
	Status            string             `json:"status"`
	LastUpdated       time.Time          `json:"last_updated"`
}

// NewCoursePlanResponse converts a course plan model into a DTO.
func NewCoursePlanResponse(plan models.CoursePlan) CoursePlanResponse {
	response := CoursePlanResponse{
		ID:          plan.ID,
		SubjectID:   plan.SubjectID,
		FacultyID:   plan.FacultyID,
		Overview:    plan.Overview,
		Objectives:  plan.Objectives,
		Status:      plan.Status,
		LastUpdated: plan.LastUpdated,
	}

	if len(plan.Modules) > 0 {
		_ = json.Unmarshal(plan.Modules, &response.Modules)
	}
	if len(plan.AssessmentMethods) > 0 {
		_ = json.Unmarshal(plan.AssessmentMethods, &response.AssessmentMethods)
	}
	if len(plan.References) > 0 {
		_ = json.Unmarshal(plan.References, &response.References)
	}

	return response
}
