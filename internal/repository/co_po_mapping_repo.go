package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

// CoPOMappingRepository manages weighted CO-PO edges.
type CoPOMappingRepository interface {
	Create(ctx context.Context, mapping *models.CoPOMapping) error
	GetByID(ctx context.Context, id uint) (models.CoPOMapping, error)
	Exists(ctx context.Context, courseOutcomeID, programOutcomeID uint) (bool, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]models.CoPOMapping, error)
	ListByProgramOutcome(ctx context.Context, programOutcomeID uint) ([]models.CoPOMapping, error)
	Update(ctx context.Context, mapping *models.CoPOMapping) error
	Delete(ctx context.Context, id uint) error
}

type coPOMappingRepository struct {
	db *gorm.DB
}

// NewCoPOMappingRepository constructs the mapping repository.
func NewCoPOMappingRepository(db *gorm.DB) CoPOMappingRepository {
	return &coPOMappingRepository{db: db}
}

func (r *coPOMappingRepository) Create(ctx context.Context, mapping *models.CoPOMapping) error {
	return r.db.WithContext(ctx).Create(mapping).Error
}

func (r *coPOMappingRepository) GetByID(ctx context.Context, id uint) (models.CoPOMapping, error) {
	var mapping models.CoPOMapping
	if err := r.db.WithContext(ctx).First(&mapping, id).Error; err != nil {
		return models.CoPOMapping{}, err
	}
	return mapping, nil
}

func (r *coPOMappingRepository) Exists(ctx context.Context, courseOutcomeID, programOutcomeID uint) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.CoPOMapping{}).
		Where("course_outcome_id = ? AND program_outcome_id = ?", courseOutcomeID, programOutcomeID).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *coPOMappingRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.CoPOMapping, error) {
	var mappings []models.CoPOMapping
	if err := r.db.WithContext(ctx).
		Joins("JOIN course_outcomes ON course_outcomes.id = co_po_mappings.course_outcome_id").
		Where("course_outcomes.subject_id = ?", subjectID).
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *coPOMappingRepository) ListByProgramOutcome(ctx context.Context, programOutcomeID uint) ([]models.CoPOMapping, error) {
	var mappings []models.CoPOMapping
	if err := r.db.WithContext(ctx).
		Where("program_outcome_id = ?", programOutcomeID).
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *coPOMappingRepository) Update(ctx context.Context, mapping *models.CoPOMapping) error {
	return r.db.WithContext(ctx).Save(mapping).Error
}

func (r *coPOMappingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CoPOMapping{}, id).Error
}
