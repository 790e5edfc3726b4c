package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

// AttainmentRepository stores computed attainment snapshots.
type AttainmentRepository interface {
	Save(ctx context.Context, snapshot *models.Attainment) error
	LatestForSubject(ctx context.Context, subjectID uint, academicYear string) (models.Attainment, error)
	LatestForDepartment(ctx context.Context, departmentID uint, academicYear string) (models.Attainment, error)
}

type attainmentRepository struct {
	db *gorm.DB
}

// NewAttainmentRepository constructs an attainment repository.
func NewAttainmentRepository(db *gorm.DB) AttainmentRepository {
	return &attainmentRepository{db: db}
}

func (r *attainmentRepository) Save(ctx context.Context, snapshot *models.Attainment) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *attainmentRepository) LatestForSubject(ctx context.Context, subjectID uint, academicYear string) (models.Attainment, error) {
	var snapshot models.Attainment
	if err := r.db.WithContext(ctx).
		Where("subject_id = ? AND academic_year = ? AND attainment_type = ?", subjectID, academicYear, models.AttainmentTypeCO).
		Order("computed_at DESC").
		First(&snapshot).Error; err != nil {
		return models.Attainment{}, err
	}
	return snapshot, nil
}

func (r *attainmentRepository) LatestForDepartment(ctx context.Context, departmentID uint, academicYear string) (models.Attainment, error) {
	var snapshot models.Attainment
	if err := r.db.WithContext(ctx).
		Where("department_id = ? AND academic_year = ? AND attainment_type = ?", departmentID, academicYear, models.AttainmentTypePO).
		Order("computed_at DESC").
		First(&snapshot).Error; err != nil {
		return models.Attainment{}, err
	}
	return snapshot, nil
}
