package models

import "time"

// Subject lifecycle states.
const (
	SubjectStatusPending    = "pending"
	SubjectStatusInProgress = "in-progress"
	SubjectStatusComplete   = "complete"
)

// Subject is a department-scoped course unit.
type Subject struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DepartmentID uint      `gorm:"not null;index" json:"department_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Code         string    `gorm:"size:32;not null" json:"code"`
	Semester     int       `json:"semester"`
	Status       string    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SubjectAssignment links a subject to a teaching faculty member. The
// composite unique index backs up the application-level duplicate check.
type SubjectAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SubjectID  uint      `gorm:"not null;uniqueIndex:idx_subject_faculty" json:"subject_id"`
	FacultyID  uint      `gorm:"not null;uniqueIndex:idx_subject_faculty" json:"faculty_id"`
	AssignedBy uint      `gorm:"not null" json:"assigned_by"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}
