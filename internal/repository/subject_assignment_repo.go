package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

// SubjectAssignmentRepository manages the subject-faculty join table.
type SubjectAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.SubjectAssignment) error
	Exists(ctx context.Context, subjectID, facultyID uint) (bool, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]models.SubjectAssignment, error)
	Delete(ctx context.Context, subjectID, facultyID uint) error
}

type subjectAssignmentRepository struct {
	db *gorm.DB
}

// NewSubjectAssignmentRepository constructs the assignment repository.
func NewSubjectAssignmentRepository(db *gorm.DB) SubjectAssignmentRepository {
	return &subjectAssignmentRepository{db: db}
}

func (r *subjectAssignmentRepository) Create(ctx context.Context, assignment *models.SubjectAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *subjectAssignmentRepository) Exists(ctx context.Context, subjectID, facultyID uint) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubjectAssignment{}).
		Where("subject_id = ? AND faculty_id = ?", subjectID, facultyID).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *subjectAssignmentRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.SubjectAssignment, error) {
	var assignments []models.SubjectAssignment
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("assigned_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *subjectAssignmentRepository) Delete(ctx context.Context, subjectID, facultyID uint) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ? AND faculty_id = ?", subjectID, facultyID).
		Delete(&models.SubjectAssignment{}).Error
}
