package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

// AssessmentService manages direct assessments with per-CO marks and
// indirect perception surveys with validated responses.
type AssessmentService interface {
	CreateDirect(ctx context.Context, actor Actor, req dto.DirectAssessmentCreateRequest) (dto.DirectAssessmentResponse, error)
	GetDirect(ctx context.Context, id uint) (dto.DirectAssessmentResponse, error)
	ListDirect(ctx context.Context, subjectID uint, academicYear string) ([]dto.DirectAssessmentResponse, error)
	UpdateDirect(ctx context.Context, actor Actor, id uint, req dto.DirectAssessmentUpdateRequest) (dto.DirectAssessmentResponse, error)
	DeleteDirect(ctx context.Context, actor Actor, id uint) error

	RecordMarks(ctx context.Context, actor Actor, assessmentID uint, req dto.MarksUpsertRequest) ([]dto.MarkResponse, error)
	ListMarks(ctx context.Context, assessmentID uint) ([]dto.MarkResponse, error)

	CreateIndirect(ctx context.Context, actor Actor, req dto.IndirectAssessmentCreateRequest) (dto.IndirectAssessmentResponse, error)
	GetIndirect(ctx context.Context, id uint) (dto.IndirectAssessmentResponse, error)
	ListIndirect(ctx context.Context, departmentID uint, academicYear string) ([]dto.IndirectAssessmentResponse, error)
	DeleteIndirect(ctx context.Context, actor Actor, id uint) error

	SubmitResponse(ctx context.Context, actor Actor, assessmentID uint, req dto.ResponseSubmitRequest) (dto.StudentResponseResponse, error)
}

type assessmentService struct {
	assessments repository.DirectAssessmentRepository
	marks       repository.MarksRepository
	surveys     repository.IndirectAssessmentRepository
	responses   repository.StudentResponseRepository
	subjects    repository.SubjectRepository
	assignments repository.SubjectAssignmentRepository
	invalidator AttainmentInvalidator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(
	assessments repository.DirectAssessmentRepository,
	marks repository.MarksRepository,
	surveys repository.IndirectAssessmentRepository,
	responses repository.StudentResponseRepository,
	subjects repository.SubjectRepository,
	assignments repository.SubjectAssignmentRepository,
	invalidator AttainmentInvalidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssessmentService {
	return &assessmentService{
		assessments: assessments,
		marks:       marks,
		surveys:     surveys,
		responses:   responses,
		subjects:    subjects,
		assignments: assignments,
		invalidator: invalidator,
		validator:   validate,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
	}
}

func (s *assessmentService) CreateDirect(ctx context.Context, actor Actor, req dto.DirectAssessmentCreateRequest) (dto.DirectAssessmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DirectAssessmentResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, req.SubjectID)
	if err != nil {
		return dto.DirectAssessmentResponse{}, fmt.Errorf("%w: subject %d does not exist", ErrInvalidInput, req.SubjectID)
	}

	if err := s.checkSubjectWrite(ctx, actor, subject); err != nil {
		return dto.DirectAssessmentResponse{}, err
	}

	assessment := models.DirectAssessment{
		SubjectID:      req.SubjectID,
		Name:           strings.TrimSpace(req.Name),
		AssessmentType: req.AssessmentType,
		MaxMarks:       req.MaxMarks,
		AcademicYear:   strings.TrimSpace(req.AcademicYear),
	}

	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return dto.DirectAssessmentResponse{}, err
	}

	return dto.NewDirectAssessmentResponse(assessment), nil
}

func (s *assessmentService) GetDirect(ctx context.Context, id uint) (dto.DirectAssessmentResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return dto.DirectAssessmentResponse{}, mapNotFound(err)
	}
	return dto.NewDirectAssessmentResponse(assessment), nil
}

func (s *assessmentService) ListDirect(ctx context.Context, subjectID uint, academicYear string) ([]dto.DirectAssessmentResponse, error) {
	assessments, err := s.assessments.ListBySubject(ctx, subjectID, academicYear)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DirectAssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		responses = append(responses, dto.NewDirectAssessmentResponse(assessment))
	}
	return responses, nil
}

func (s *assessmentService) UpdateDirect(ctx context.Context, actor Actor, id uint, req dto.DirectAssessmentUpdateRequest) (dto.DirectAssessmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DirectAssessmentResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return dto.DirectAssessmentResponse{}, mapNotFound(err)
	}

	subject, err := s.subjects.GetByID(ctx, assessment.SubjectID)
	if err != nil {
		return dto.DirectAssessmentResponse{}, err
	}
	if err := s.checkSubjectWrite(ctx, actor, subject); err != nil {
		return dto.DirectAssessmentResponse{}, err
	}

	if req.Name != nil {
		assessment.Name = strings.TrimSpace(*req.Name)
	}
	if req.AssessmentType != nil {
		assessment.AssessmentType = *req.AssessmentType
	}
	if req.MaxMarks != nil {
		assessment.MaxMarks = *req.MaxMarks
	}

	if err := s.assessments.Update(ctx, &assessment); err != nil {
		return dto.DirectAssessmentResponse{}, err
	}

	// Max marks feed percentage normalization, so cached results are stale.
	s.invalidator.InvalidateSubject(ctx, assessment.SubjectID)
	return dto.NewDirectAssessmentResponse(assessment), nil
}

func (s *assessmentService) DeleteDirect(ctx context.Context, actor Actor, id uint) error {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	subject, err := s.subjects.GetByID(ctx, assessment.SubjectID)
	if err != nil {
		return err
	}
	if err := s.checkSubjectWrite(ctx, actor, subject); err != nil {
		return err
	}

	if err := s.assessments.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.InvalidateSubject(ctx, assessment.SubjectID)
	return nil
}

func (s *assessmentService) RecordMarks(ctx context.Context, actor Actor, assessmentID uint, req dto.MarksUpsertRequest) ([]dto.MarkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	subject, err := s.subjects.GetByID(ctx, assessment.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubjectWrite(ctx, actor, subject); err != nil {
		return nil, err
	}

	entries := make([]models.StudentAssessmentMarks, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.MarksObtained > assessment.MaxMarks {
			return nil, fmt.Errorf("%w: marks %.2f exceed assessment maximum %.2f",
				ErrInvalidInput, entry.MarksObtained, assessment.MaxMarks)
		}
		entries = append(entries, models.StudentAssessmentMarks{
			AssessmentID:    assessmentID,
			StudentID:       entry.StudentID,
			CourseOutcomeID: entry.CourseOutcomeID,
			MarksObtained:   entry.MarksObtained,
		})
	}

	if err := s.marks.BulkUpsert(ctx, entries); err != nil {
		return nil, err
	}

	s.invalidator.InvalidateSubject(ctx, assessment.SubjectID)

	stored, err := s.marks.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MarkResponse, 0, len(stored))
	for _, mark := range stored {
		responses = append(responses, dto.NewMarkResponse(mark))
	}
	return responses, nil
}

func (s *assessmentService) ListMarks(ctx context.Context, assessmentID uint) ([]dto.MarkResponse, error) {
	if _, err := s.assessments.GetByID(ctx, assessmentID); err != nil {
		return nil, mapNotFound(err)
	}

	marks, err := s.marks.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MarkResponse, 0, len(marks))
	for _, mark := range marks {
		responses = append(responses, dto.NewMarkResponse(mark))
	}
	return responses, nil
}

func (s *assessmentService) CreateIndirect(ctx context.Context, actor Actor, req dto.IndirectAssessmentCreateRequest) (dto.IndirectAssessmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.IndirectAssessmentResponse{}, err
	}

	if actor.Role == models.RoleHOD {
		if actor.DepartmentID == nil || *actor.DepartmentID != req.DepartmentID {
			return dto.IndirectAssessmentResponse{}, ErrForbidden
		}
	}

	seen := make(map[string]bool, len(req.Questions))
	for _, question := range req.Questions {
		if seen[question.ID] {
			return dto.IndirectAssessmentResponse{}, fmt.Errorf("%w: duplicate question id %q", ErrInvalidInput, question.ID)
		}
		seen[question.ID] = true
	}

	questions, err := json.Marshal(req.Questions)
	if err != nil {
		return dto.IndirectAssessmentResponse{}, fmt.Errorf("failed to encode questions: %w", err)
	}

	assessment := models.IndirectAssessment{
		DepartmentID: req.DepartmentID,
		Name:         strings.TrimSpace(req.Name),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Questions:    datatypes.JSON(questions),
	}

	if err := s.surveys.Create(ctx, &assessment); err != nil {
		return dto.IndirectAssessmentResponse{}, err
	}

	return dto.NewIndirectAssessmentResponse(assessment), nil
}

func (s *assessmentService) GetIndirect(ctx context.Context, id uint) (dto.IndirectAssessmentResponse, error) {
	assessment, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		return dto.IndirectAssessmentResponse{}, mapNotFound(err)
	}
	return dto.NewIndirectAssessmentResponse(assessment), nil
}

func (s *assessmentService) ListIndirect(ctx context.Context, departmentID uint, academicYear string) ([]dto.IndirectAssessmentResponse, error) {
	assessments, err := s.surveys.ListByDepartment(ctx, departmentID, academicYear)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.IndirectAssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		responses = append(responses, dto.NewIndirectAssessmentResponse(assessment))
	}
	return responses, nil
}

func (s *assessmentService) DeleteIndirect(ctx context.Context, actor Actor, id uint) error {
	assessment, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if actor.Role == models.RoleHOD {
		if actor.DepartmentID == nil || *actor.DepartmentID != assessment.DepartmentID {
			return ErrForbidden
		}
	}

	if err := s.surveys.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.InvalidateDepartment(ctx, assessment.DepartmentID)
	return nil
}

func (s *assessmentService) SubmitResponse(ctx context.Context, actor Actor, assessmentID uint, req dto.ResponseSubmitRequest) (dto.StudentResponseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponseResponse{}, err
	}

	assessment, err := s.surveys.GetByID(ctx, assessmentID)
	if err != nil {
		return dto.StudentResponseResponse{}, mapNotFound(err)
	}

	var questions []dto.SurveyQuestion
	if err := json.Unmarshal(assessment.Questions, &questions); err != nil {
		return dto.StudentResponseResponse{}, fmt.Errorf("failed to decode survey questions: %w", err)
	}

	if err := validateSurveyAnswers(questions, req.Responses); err != nil {
		return dto.StudentResponseResponse{}, err
	}

	exists, err := s.responses.Exists(ctx, assessmentID, actor.ID)
	if err != nil {
		return dto.StudentResponseResponse{}, err
	}
	if exists {
		return dto.StudentResponseResponse{}, fmt.Errorf("%w: response already submitted", ErrConflict)
	}

	payload, err := json.Marshal(req.Responses)
	if err != nil {
		return dto.StudentResponseResponse{}, fmt.Errorf("failed to encode responses: %w", err)
	}

	response := models.StudentResponse{
		IndirectAssessmentID: assessmentID,
		StudentID:            actor.ID,
		Responses:            datatypes.JSON(payload),
	}

	if err := s.responses.Create(ctx, &response); err != nil {
		return dto.StudentResponseResponse{}, err
	}

	s.invalidator.InvalidateDepartment(ctx, assessment.DepartmentID)
	return dto.NewStudentResponseResponse(response), nil
}

// validateSurveyAnswers checks a submission against a JSON schema built
// from the survey definition: every question answered, nothing extra,
// all answers on the 1..5 scale.
func validateSurveyAnswers(questions []dto.SurveyQuestion, answers map[string]int) error {
	schema, err := compileSurveySchema(questions)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("failed to decode answers: %w", err)
	}

	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func compileSurveySchema(questions []dto.SurveyQuestion) (*jsonschema.Schema, error) {
	properties := make(map[string]interface{}, len(questions))
	required := make([]string, 0, len(questions))
	for _, question := range questions {
		properties[question.ID] = map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
			"maximum": 5,
		}
		required = append(required, question.ID)
	}

	document := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}

	raw, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode survey schema: %w", err)
	}

	schema, err := jsonschema.CompileString("survey.json", string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile survey schema: %w", err)
	}
	return schema, nil
}

// checkSubjectWrite admits admins, the owning department's head, and
// faculty assigned to the subject.
func (s *assessmentService) checkSubjectWrite(ctx context.Context, actor Actor, subject models.Subject) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleHOD:
		if actor.DepartmentID != nil && *actor.DepartmentID == subject.DepartmentID {
			return nil
		}
		return ErrForbidden
	case models.RoleFaculty:
		assigned, err := s.assignments.Exists(ctx, subject.ID, actor.ID)
		if err != nil {
			return err
		}
		if !assigned {
			return fmt.Errorf("%w: not assigned to this subject", ErrForbidden)
		}
		return nil
	default:
		return ErrForbidden
	}
}
