package models

import (
	"time"

	"gorm.io/datatypes"
)

// DirectAssessment is a measured evidence instance (exam, assignment,
// quiz) against which per-CO student marks are recorded.
type DirectAssessment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SubjectID      uint      `gorm:"not null;index" json:"subject_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	AssessmentType string    `gorm:"size:32;not null" json:"assessment_type"`
	MaxMarks       float64   `gorm:"not null" json:"max_marks"`
	AcademicYear   string    `gorm:"size:16;not null" json:"academic_year"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StudentAssessmentMarks stores one student's marks on one assessment,
// attributed to a single course outcome.
type StudentAssessmentMarks struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AssessmentID    uint      `gorm:"not null;uniqueIndex:idx_marks_entry" json:"assessment_id"`
	StudentID       uint      `gorm:"not null;uniqueIndex:idx_marks_entry" json:"student_id"`
	CourseOutcomeID uint      `gorm:"not null;uniqueIndex:idx_marks_entry;index" json:"course_outcome_id"`
	MarksObtained   float64   `gorm:"not null" json:"marks_obtained"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IndirectAssessment is a department-scoped perception survey. Questions
// hold the survey definition; responses are validated against it.
type IndirectAssessment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	DepartmentID uint           `gorm:"not null;index" json:"department_id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	AcademicYear string         `gorm:"size:16;not null" json:"academic_year"`
	Questions    datatypes.JSON `gorm:"type:json" json:"questions"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// StudentResponse is one student's answers to an indirect assessment.
type StudentResponse struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	IndirectAssessmentID uint           `gorm:"not null;uniqueIndex:idx_survey_response" json:"indirect_assessment_id"`
	StudentID            uint           `gorm:"not null;uniqueIndex:idx_survey_response" json:"student_id"`
	Responses            datatypes.JSON `gorm:"type:json" json:"responses"`
	CreatedAt            time.Time      `json:"created_at"`
}
