package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

// SubjectRepository provides access to subject records.
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id uint) (models.Subject, error)
	List(ctx context.Context) ([]models.Subject, error)
	ListByDepartment(ctx context.Context, departmentID uint) ([]models.Subject, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id uint) error
	CountByDepartment(ctx context.Context, departmentID uint) (int64, error)
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository constructs a subject repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) GetByID(ctx context.Context, id uint) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) ListByDepartment(ctx context.Context, departmentID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("code ASC").
		Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) ListByFaculty(ctx context.Context, facultyID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).
		Joins("JOIN subject_assignments ON subject_assignments.subject_id = subjects.id").
		Where("subject_assignments.faculty_id = ?", facultyID).
		Order("subjects.code ASC").
		Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}

func (r *subjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Subject{}, id).Error
}

func (r *subjectRepository) CountByDepartment(ctx context.Context, departmentID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Subject{}).
		Where("department_id = ?", departmentID).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
