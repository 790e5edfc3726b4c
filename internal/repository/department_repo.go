package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

// DepartmentRepository provides access to department records. Writes
// that touch the head of department run inside a single transaction so
// a department and its HOD's membership can never diverge.
type DepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id uint) (models.Department, error)
	GetByHOD(ctx context.Context, hodID uint) (models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id uint) error
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository constructs a department repository.
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(department).Error; err != nil {
			return err
		}
		return repointHOD(tx, department)
	})
}

func (r *departmentRepository) GetByID(ctx context.Context, id uint) (models.Department, error) {
	var department models.Department
	if err := r.db.WithContext(ctx).First(&department, id).Error; err != nil {
		return models.Department{}, err
	}
	return department, nil
}

func (r *departmentRepository) GetByHOD(ctx context.Context, hodID uint) (models.Department, error) {
	var department models.Department
	if err := r.db.WithContext(ctx).Where("hod_id = ?", hodID).First(&department).Error; err != nil {
		return models.Department{}, err
	}
	return department, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *departmentRepository) Update(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(department).Error; err != nil {
			return err
		}
		return repointHOD(tx, department)
	})
}

func (r *departmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Department{}, id).Error
}

// repointHOD keeps the HOD's own department membership in sync with the
// department that references them.
func repointHOD(tx *gorm.DB, department *models.Department) error {
	if department.HODID == nil {
		return nil
	}
	return tx.Model(&models.User{}).
		Where("id = ?", *department.HODID).
		Update("department_id", department.ID).Error
}
