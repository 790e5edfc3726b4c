package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

// CoursePlanRepository provides access to course plan documents.
type CoursePlanRepository interface {
	Create(ctx context.Context, plan *models.CoursePlan) error
	GetByID(ctx context.Context, id uint) (models.CoursePlan, error)
	GetBySubject(ctx context.Context, subjectID uint) (models.CoursePlan, error)
	List(ctx context.Context) ([]models.CoursePlan, error)
	Update(ctx context.Context, plan *models.CoursePlan) error
	Delete(ctx context.Context, id uint) error
}

type coursePlanRepository struct {
	db *gorm.DB
}

// NewCoursePlanRepository constructs a course plan repository.
func NewCoursePlanRepository(db *gorm.DB) CoursePlanRepository {
	return &coursePlanRepository{db: db}
}

func (r *coursePlanRepository) Create(ctx context.Context, plan *models.CoursePlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *coursePlanRepository) GetByID(ctx context.Context, id uint) (models.CoursePlan, error) {
	var plan models.CoursePlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return models.CoursePlan{}, err
	}
	return plan, nil
}

func (r *coursePlanRepository) GetBySubject(ctx context.Context, subjectID uint) (models.CoursePlan, error) {
	var plan models.CoursePlan
	if err := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).First(&plan).Error; err != nil {
		return models.CoursePlan{}, err
	}
	return plan, nil
}

func (r *coursePlanRepository) List(ctx context.Context) ([]models.CoursePlan, error) {
	var plans []models.CoursePlan
	if err := r.db.WithContext(ctx).Order("last_updated DESC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *coursePlanRepository) Update(ctx context.Context, plan *models.CoursePlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *coursePlanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CoursePlan{}, id).Error
}
