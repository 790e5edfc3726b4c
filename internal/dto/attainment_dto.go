package dto

import "time"

// COAttainment is the computed attainment for one course outcome.
type COAttainment struct {
	CourseOutcomeID uint    `json:"course_outcome_id"`
	Number          int     `json:"number"`
	StudentsTotal   int     `json:"students_total"`
	StudentsCleared int     `json:"students_cleared"`
	Attainment      float64 `json:"attainment"`
}

// SubjectAttainmentResponse is the CO attainment report for a subject.
type SubjectAttainmentResponse struct {
	SubjectID    uint           `json:"subject_id"`
	AcademicYear string         `json:"academic_year"`
	Threshold    float64        `json:"threshold"`
	Outcomes     []COAttainment `json:"outcomes"`
	ComputedAt   time.Time      `json:"computed_at"`
	CacheHit     bool           `json:"cache_hit"`
}

// POAttainment is the computed attainment for one program outcome.
type POAttainment struct {
	ProgramOutcomeID uint    `json:"program_outcome_id"`
	Number           int     `json:"number"`
	Direct           float64 `json:"direct"`
	Indirect         float64 `json:"indirect"`
	Overall          float64 `json:"overall"`
	MappedOutcomes   int     `json:"mapped_outcomes"`
}

// DepartmentAttainmentResponse is the PO attainment report for a department.
type DepartmentAttainmentResponse struct {
	DepartmentID   uint           `json:"department_id"`
	AcademicYear   string         `json:"academic_year"`
	DirectWeight   float64        `json:"direct_weight"`
	IndirectWeight float64        `json:"indirect_weight"`
	Outcomes       []POAttainment `json:"outcomes"`
	ComputedAt     time.Time      `json:"computed_at"`
	CacheHit       bool           `json:"cache_hit"`
}
