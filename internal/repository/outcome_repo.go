package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

// CourseOutcomeRepository provides access to course outcome records.
type CourseOutcomeRepository interface {
	Create(ctx context.Context, outcome *models.CourseOutcome) error
	GetByID(ctx context.Context, id uint) (models.CourseOutcome, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]models.CourseOutcome, error)
	Update(ctx context.Context, outcome *models.CourseOutcome) error
	Delete(ctx context.Context, id uint) error
}

type courseOutcomeRepository struct {
	db *gorm.DB
}

// NewCourseOutcomeRepository constructs a course outcome repository.
func NewCourseOutcomeRepository(db *gorm.DB) CourseOutcomeRepository {
	return &courseOutcomeRepository{db: db}
}

func (r *courseOutcomeRepository) Create(ctx context.Context, outcome *models.CourseOutcome) error {
	return r.db.WithContext(ctx).Create(outcome).Error
}

func (r *courseOutcomeRepository) GetByID(ctx context.Context, id uint) (models.CourseOutcome, error) {
	var outcome models.CourseOutcome
	if err := r.db.WithContext(ctx).First(&outcome, id).Error; err != nil {
		return models.CourseOutcome{}, err
	}
	return outcome, nil
}

func (r *courseOutcomeRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.CourseOutcome, error) {
	var outcomes []models.CourseOutcome
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("number ASC").
		Find(&outcomes).Error; err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *courseOutcomeRepository) Update(ctx context.Context, outcome *models.CourseOutcome) error {
	return r.db.WithContext(ctx).Save(outcome).Error
}

func (r *courseOutcomeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CourseOutcome{}, id).Error
}

// ProgramOutcomeRepository provides access to program outcome records.
type ProgramOutcomeRepository interface {
	Create(ctx context.Context, outcome *models.ProgramOutcome) error
	GetByID(ctx context.Context, id uint) (models.ProgramOutcome, error)
	ListByDepartment(ctx context.Context, departmentID uint) ([]models.ProgramOutcome, error)
	Update(ctx context.Context, outcome *models.ProgramOutcome) error
	Delete(ctx context.Context, id uint) error
}

type programOutcomeRepository struct {
	db *gorm.DB
}

// NewProgramOutcomeRepository constructs a program outcome repository.
func NewProgramOutcomeRepository(db *gorm.DB) ProgramOutcomeRepository {
	return &programOutcomeRepository{db: db}
}

func (r *programOutcomeRepository) Create(ctx context.Context, outcome *models.ProgramOutcome) error {
	return r.db.WithContext(ctx).Create(outcome).Error
}

func (r *programOutcomeRepository) GetByID(ctx context.Context, id uint) (models.ProgramOutcome, error) {
	var outcome models.ProgramOutcome
	if err := r.db.WithContext(ctx).First(&outcome, id).Error; err != nil {
		return models.ProgramOutcome{}, err
	}
	return outcome, nil
}

func (r *programOutcomeRepository) ListByDepartment(ctx context.Context, departmentID uint) ([]models.ProgramOutcome, error) {
	var outcomes []models.ProgramOutcome
	if err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("number ASC").
		Find(&outcomes).Error; err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *programOutcomeRepository) Update(ctx context.Context, outcome *models.ProgramOutcome) error {
	return r.db.WithContext(ctx).Save(outcome).Error
}

func (r *programOutcomeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProgramOutcome{}, id).Error
}
