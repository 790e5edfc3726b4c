package models

import (
	"time"

	"gorm.io/datatypes"
)

// Course plan states.
const (
	CoursePlanStatusDraft     = "draft"
	CoursePlanStatusSubmitted = "submitted"
	CoursePlanStatusApproved  = "approved"
)

// CoursePlan is a faculty-owned structured teaching document, one per
// subject. Only the creating faculty member may mutate it; LastUpdated
// is stamped server-side on every successful write.
type CoursePlan struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	SubjectID         uint           `gorm:"not null;uniqueIndex" json:"subject_id"`
	FacultyID         uint           `gorm:"not null;index" json:"faculty_id"`
	Overview          string         `gorm:"type:text" json:"overview"`
	Objectives        string         `gorm:"type:text" json:"objectives"`
	Modules           datatypes.JSON `gorm:"type:json" json:"modules"`
	AssessmentMethods datatypes.JSON `gorm:"type:json" json:"assessment_methods"`
	References        datatypes.JSON `gorm:"type:json" json:"references"`
	Status            string         `gorm:"size:16;not null;default:draft" json:"status"`
	LastUpdated       time.Time      `gorm:"not null" json:"last_updated"`
	CreatedAt         time.Time      `json:"created_at"`
}
