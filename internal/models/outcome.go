package models

import "time"

// CourseOutcome is an ordinal-numbered learning objective scoped to a subject.
type CourseOutcome struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SubjectID uint      `gorm:"not null;uniqueIndex:idx_subject_co_number" json:"subject_id"`
	Number    int       `gorm:"not null;uniqueIndex:idx_subject_co_number" json:"number"`
	Statement string    `gorm:"type:text;not null" json:"statement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgramOutcome is an ordinal-numbered learning objective scoped to a department.
type ProgramOutcome struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DepartmentID uint      `gorm:"not null;uniqueIndex:idx_department_po_number" json:"department_id"`
	Number       int       `gorm:"not null;uniqueIndex:idx_department_po_number" json:"number"`
	Statement    string    `gorm:"type:text;not null" json:"statement"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Correlation levels for CO-PO mappings.
const (
	CorrelationLow    = 1
	CorrelationMedium = 2
	CorrelationHigh   = 3
)

// CoPOMapping is a weighted edge expressing how strongly a course
// outcome contributes to a program outcome.
type CoPOMapping struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CourseOutcomeID  uint      `gorm:"not null;uniqueIndex:idx_co_po_edge" json:"course_outcome_id"`
	ProgramOutcomeID uint      `gorm:"not null;uniqueIndex:idx_co_po_edge" json:"program_outcome_id"`
	CorrelationLevel int       `gorm:"not null" json:"correlation_level"`
	CreatedAt        time.Time `json:"created_at"`
}
