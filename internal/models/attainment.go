package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attainment snapshot kinds.
const (
	AttainmentTypeCO = "co"
	AttainmentTypePO = "po"
)

// Attainment stores a computed CO or PO attainment report. Rows are
// snapshots for reporting only; live reads recompute from source data.
type Attainment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	SubjectID      *uint          `gorm:"index" json:"subject_id"`
	DepartmentID   *uint          `gorm:"index" json:"department_id"`
	AttainmentType string         `gorm:"size:8;not null" json:"attainment_type"`
	AcademicYear   string         `gorm:"size:16;not null" json:"academic_year"`
	AttainmentData datatypes.JSON `gorm:"type:json" json:"attainment_data"`
	ComputedAt     time.Time      `gorm:"not null" json:"computed_at"`
}
