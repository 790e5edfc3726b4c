package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/copo-api/internal/models"
)

// DirectAssessmentRepository provides access to direct assessment records.
type DirectAssessmentRepository interface {
	Create(ctx context.Context, assessment *models.DirectAssessment) error
	GetByID(ctx context.Context, id uint) (models.DirectAssessment, error)
	ListBySubject(ctx context.Context, subjectID uint, academicYear string) ([]models.DirectAssessment, error)
	Update(ctx context.Context, assessment *models.DirectAssessment) error
	Delete(ctx context.Context, id uint) error
}

type directAssessmentRepository struct {
	db *gorm.DB
}

// NewDirectAssessmentRepository constructs a direct assessment repository.
func NewDirectAssessmentRepository(db *gorm.DB) DirectAssessmentRepository {
	return &directAssessmentRepository{db: db}
}

func (r *directAssessmentRepository) Create(ctx context.Context, assessment *models.DirectAssessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *directAssessmentRepository) GetByID(ctx context.Context, id uint) (models.DirectAssessment, error) {
	var assessment models.DirectAssessment
	if err := r.db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return models.DirectAssessment{}, err
	}
	return assessment, nil
}

func (r *directAssessmentRepository) ListBySubject(ctx context.Context, subjectID uint, academicYear string) ([]models.DirectAssessment, error) {
	query := r.db.WithContext(ctx).Where("subject_id = ?", subjectID)
	if academicYear != "" {
		query = query.Where("academic_year = ?", academicYear)
	}

	var assessments []models.DirectAssessment
	if err := query.Order("created_at ASC").Find(&assessments).Error; err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *directAssessmentRepository) Update(ctx context.Context, assessment *models.DirectAssessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

func (r *directAssessmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.DirectAssessment{}, id).Error
}

// MarksRepository provides access to per-student, per-CO marks.
type MarksRepository interface {
	BulkUpsert(ctx context.Context, entries []models.StudentAssessmentMarks) error
	ListByAssessment(ctx context.Context, assessmentID uint) ([]models.StudentAssessmentMarks, error)
	ListBySubject(ctx context.Context, subjectID uint, academicYear string) ([]models.StudentAssessmentMarks, error)
}

type marksRepository struct {
	db *gorm.DB
}

// NewMarksRepository constructs a marks repository.
func NewMarksRepository(db *gorm.DB) MarksRepository {
	return &marksRepository{db: db}
}

func (r *marksRepository) BulkUpsert(ctx context.Context, entries []models.StudentAssessmentMarks) error {
	if len(entries) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assessment_id"}, {Name: "student_id"}, {Name: "course_outcome_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"marks_obtained", "updated_at"}),
		}).
		Create(&entries).Error
}

func (r *marksRepository) ListByAssessment(ctx context.Context, assessmentID uint) ([]models.StudentAssessmentMarks, error) {
	var marks []models.StudentAssessmentMarks
	if err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Find(&marks).Error; err != nil {
		return nil, err
	}
	return marks, nil
}

func (r *marksRepository) ListBySubject(ctx context.Context, subjectID uint, academicYear string) ([]models.StudentAssessmentMarks, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN direct_assessments ON direct_assessments.id = student_assessment_marks.assessment_id").
		Where("direct_assessments.subject_id = ?", subjectID)
	if academicYear != "" {
		query = query.Where("direct_assessments.academic_year = ?", academicYear)
	}

	var marks []models.StudentAssessmentMarks
	if err := query.Find(&marks).Error; err != nil {
		return nil, err
	}
	return marks, nil
}

// IndirectAssessmentRepository provides access to perception surveys.
type IndirectAssessmentRepository interface {
	Create(ctx context.Context, assessment *models.IndirectAssessment) error
	GetByID(ctx context.Context, id uint) (models.IndirectAssessment, error)
	ListByDepartment(ctx context.Context, departmentID uint, academicYear string) ([]models.IndirectAssessment, error)
	Update(ctx context.Context, assessment *models.IndirectAssessment) error
	Delete(ctx context.Context, id uint) error
}

type indirectAssessmentRepository struct {
	db *gorm.DB
}

// NewIndirectAssessmentRepository constructs an indirect assessment repository.
func NewIndirectAssessmentRepository(db *gorm.DB) IndirectAssessmentRepository {
	return &indirectAssessmentRepository{db: db}
}

func (r *indirectAssessmentRepository) Create(ctx context.Context, assessment *models.IndirectAssessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *indirectAssessmentRepository) GetByID(ctx context.Context, id uint) (models.IndirectAssessment, error) {
	var assessment models.IndirectAssessment
	if err := r.db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return models.IndirectAssessment{}, err
	}
	return assessment, nil
}

func (r *indirectAssessmentRepository) ListByDepartment(ctx context.Context, departmentID uint, academicYear string) ([]models.IndirectAssessment, error) {
	query := r.db.WithContext(ctx).Where("department_id = ?", departmentID)
	if academicYear != "" {
		query = query.Where("academic_year = ?", academicYear)
	}

	var assessments []models.IndirectAssessment
	if err := query.Order("created_at ASC").Find(&assessments).Error; err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *indirectAssessmentRepository) Update(ctx context.Context, assessment *models.IndirectAssessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

func (r *indirectAssessmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.IndirectAssessment{}, id).Error
}

// StudentResponseRepository provides access to survey responses.
type StudentResponseRepository interface {
	Create(ctx context.Context, response *models.StudentResponse) error
	Exists(ctx context.Context, assessmentID, studentID uint) (bool, error)
	ListByAssessment(ctx context.Context, assessmentID uint) ([]models.StudentResponse, error)
}

type studentResponseRepository struct {
	db *gorm.DB
}

// NewStudentResponseRepository constructs a student response repository.
func NewStudentResponseRepository(db *gorm.DB) StudentResponseRepository {
	return &studentResponseRepository{db: db}
}

func (r *studentResponseRepository) Create(ctx context.Context, response *models.StudentResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r *studentResponseRepository) Exists(ctx context.Context, assessmentID, studentID uint) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentResponse{}).
		Where("indirect_assessment_id = ? AND student_id = ?", assessmentID, studentID).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *studentResponseRepository) ListByAssessment(ctx context.Context, assessmentID uint) ([]models.StudentResponse, error) {
	var responses []models.StudentResponse
	if err := r.db.WithContext(ctx).
		Where("indirect_assessment_id = ?", assessmentID).
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}
