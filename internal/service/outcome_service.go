package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

// AttainmentInvalidator drops cached attainment results after a write
// that changes their inputs.
type AttainmentInvalidator interface {
	InvalidateSubject(ctx context.Context, subjectID uint)
	InvalidateDepartment(ctx context.Context, departmentID uint)
}

// OutcomeService manages course outcomes, program outcomes and the
// weighted mapping between them.
type OutcomeService interface {
	CreateCourseOutcome(ctx context.Context, actor Actor, req dto.CourseOutcomeCreateRequest) (dto.CourseOutcomeResponse, error)
	ListCourseOutcomes(ctx context.Context, subjectID uint) ([]dto.CourseOutcomeResponse, error)
	UpdateCourseOutcome(ctx context.Context, actor Actor, id uint, req dto.CourseOutcomeUpdateRequest) (dto.CourseOutcomeResponse, error)
	DeleteCourseOutcome(ctx context.Context, actor Actor, id uint) error

	CreateProgramOutcome(ctx context.Context, actor Actor, req dto.ProgramOutcomeCreateRequest) (dto.ProgramOutcomeResponse, error)
	ListProgramOutcomes(ctx context.Context, departmentID uint) ([]dto.ProgramOutcomeResponse, error)
	UpdateProgramOutcome(ctx context.Context, actor Actor, id uint, req dto.ProgramOutcomeUpdateRequest) (dto.ProgramOutcomeResponse, error)
	DeleteProgramOutcome(ctx context.Context, actor Actor, id uint) error

	CreateMapping(ctx context.Context, actor Actor, req dto.MappingCreateRequest) (dto.MappingResponse, error)
	ListMappingsBySubject(ctx context.Context, subjectID uint) ([]dto.MappingResponse, error)
	UpdateMapping(ctx context.Context, actor Actor, id uint, req dto.MappingUpdateRequest) (dto.MappingResponse, error)
	DeleteMapping(ctx context.Context, actor Actor, id uint) error
}

type outcomeService struct {
	courseOutcomes  repository.CourseOutcomeRepository
	programOutcomes repository.ProgramOutcomeRepository
	mappings        repository.CoPOMappingRepository
	subjects        repository.SubjectRepository
	invalidator     AttainmentInvalidator
	validator       *validator.Validate
	logger          zerolog.Logger
}

// NewOutcomeService constructs the outcome service.
func NewOutcomeService(
	courseOutcomes repository.CourseOutcomeRepository,
	programOutcomes repository.ProgramOutcomeRepository,
	mappings repository.CoPOMappingRepository,
	subjects repository.SubjectRepository,
	invalidator AttainmentInvalidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) OutcomeService {
	return &outcomeService{
		courseOutcomes:  courseOutcomes,
		programOutcomes: programOutcomes,
		mappings:        mappings,
		subjects:        subjects,
		invalidator:     invalidator,
		validator:       validate,
		logger:          logger.With().Str("component", "outcome_service").Logger(),
	}
}

func (s *outcomeService) CreateCourseOutcome(ctx context.Context, actor Actor, req dto.CourseOutcomeCreateRequest) (dto.CourseOutcomeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseOutcomeResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, req.SubjectID)
	if err != nil {
		return dto.CourseOutcomeResponse{}, fmt.Errorf("%w: subject %d does not exist", ErrInvalidInput, req.SubjectID)
	}

	if err := s.checkSubjectScope(ctx, actor, subject); err != nil {
		return dto.CourseOutcomeResponse{}, err
	}

	existing, err := s.courseOutcomes.ListBySubject(ctx, req.SubjectID)
	if err != nil {
		return dto.CourseOutcomeResponse{}, err
	}
	for _, outcome := range existing {
		if outcome.Number == req.Number {
			return dto.CourseOutcomeResponse{}, fmt.Errorf("%w: CO%d already defined for this subject", ErrConflict, req.Number)
		}
	}

	outcome := models.CourseOutcome{
		SubjectID: req.SubjectID,
		Number:    req.Number,
		Statement: strings.TrimSpace(req.Statement),
	}

	if err := s.courseOutcomes.Create(ctx, &outcome); err != nil {
		return dto.CourseOutcomeResponse{}, err
	}

	s.invalidator.InvalidateSubject(ctx, req.SubjectID)
	return dto.NewCourseOutcomeResponse(outcome), nil
}

func (s *outcomeService) ListCourseOutcomes(ctx context.Context, subjectID uint) ([]dto.CourseOutcomeResponse, error) {
	outcomes, err := s.courseOutcomes.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CourseOutcomeResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		responses = append(responses, dto.NewCourseOutcomeResponse(outcome))
	}
	return responses, nil
}

func (s *outcomeService) UpdateCourseOutcome(ctx context.Context, actor Actor, id uint, req dto.CourseOutcomeUpdateRequest) (dto.CourseOutcomeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseOutcomeResponse{}, err
	}

	outcome, err := s.courseOutcomes.GetByID(ctx, id)
	if err != nil {
		return dto.CourseOutcomeResponse{}, mapNotFound(err)
	}

	subject, err := s.subjects.GetByID(ctx, outcome.SubjectID)
	if err != nil {
		return dto.CourseOutcomeResponse{}, err
	}
	if err := s.checkSubjectScope(ctx, actor, subject); err != nil {
		return dto.CourseOutcomeResponse{}, err
	}

	if req.Number != nil {
		outcome.Number = *req.Number
	}
	if req.Statement != nil {
		outcome.Statement = strings.TrimSpace(*req.Statement)
	}

	if err := s.courseOutcomes.Update(ctx, &outcome); err != nil {
		return dto.CourseOutcomeResponse{}, err
	}

	s.invalidator.InvalidateSubject(ctx, outcome.SubjectID)
	return dto.NewCourseOutcomeResponse(outcome), nil
}

func (s *outcomeService) DeleteCourseOutcome(ctx context.Context, actor Actor, id uint) error {
	outcome, err := s.courseOutcomes.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	subject, err := s.subjects.GetByID(ctx, outcome.SubjectID)
	if err != nil {
		return err
	}
	if err := s.checkSubjectScope(ctx, actor, subject); err != nil {
		return err
	}

	if err := s.courseOutcomes.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.InvalidateSubject(ctx, outcome.SubjectID)
	return nil
}

func (s *outcomeService) CreateProgramOutcome(ctx context.Context, actor Actor, req dto.ProgramOutcomeCreateRequest) (dto.ProgramOutcomeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgramOutcomeResponse{}, err
	}

	if err := s.checkDepartmentScope(actor, req.DepartmentID); err != nil {
		return dto.ProgramOutcomeResponse{}, err
	}

	existing, err := s.programOutcomes.ListByDepartment(ctx, req.DepartmentID)
	if err != nil {
		return dto.ProgramOutcomeResponse{}, err
	}
	for _, outcome := range existing {
		if outcome.Number == req.Number {
			return dto.ProgramOutcomeResponse{}, fmt.Errorf("%w: PO%d already defined for this department", ErrConflict, req.Number)
		}
	}

	outcome := models.ProgramOutcome{
		DepartmentID: req.DepartmentID,
		Number:       req.Number,
		Statement:    strings.TrimSpace(req.Statement),
	}

	if err := s.programOutcomes.Create(ctx, &outcome); err != nil {
		return dto.ProgramOutcomeResponse{}, err
	}

	s.invalidator.InvalidateDepartment(ctx, req.DepartmentID)
	return dto.NewProgramOutcomeResponse(outcome), nil
}

func (s *outcomeService) ListProgramOutcomes(ctx context.Context, departmentID uint) ([]dto.ProgramOutcomeResponse, error) {
	outcomes, err := s.programOutcomes.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProgramOutcomeResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		responses = append(responses, dto.NewProgramOutcomeResponse(outcome))
	}
	return responses, nil
}

func (s *outcomeService) UpdateProgramOutcome(ctx context.Context, actor Actor, id uint, req dto.ProgramOutcomeUpdateRequest) (dto.ProgramOutcomeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgramOutcomeResponse{}, err
	}

	outcome, err := s.programOutcomes.GetByID(ctx, id)
	if err != nil {
		return dto.ProgramOutcomeResponse{}, mapNotFound(err)
	}

	if err := s.checkDepartmentScope(actor, outcome.DepartmentID); err != nil {
		return dto.ProgramOutcomeResponse{}, err
	}

	if req.Number != nil {
		outcome.Number = *req.Number
	}
	if req.Statement != nil {
		outcome.Statement = strings.TrimSpace(*req.Statement)
	}

	if err := s.programOutcomes.Update(ctx, &outcome); err != nil {
		return dto.ProgramOutcomeResponse{}, err
	}

	s.invalidator.InvalidateDepartment(ctx, outcome.DepartmentID)
	return dto.NewProgramOutcomeResponse(outcome), nil
}

func (s *outcomeService) DeleteProgramOutcome(ctx context.Context, actor Actor, id uint) error {
	outcome, err := s.programOutcomes.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.checkDepartmentScope(actor, outcome.DepartmentID); err != nil {
		return err
	}

	if err := s.programOutcomes.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.InvalidateDepartment(ctx, outcome.DepartmentID)
	return nil
}

func (s *outcomeService) CreateMapping(ctx context.Context, actor Actor, req dto.MappingCreateRequest) (dto.MappingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MappingResponse{}, err
	}

	courseOutcome, err := s.courseOutcomes.GetByID(ctx, req.CourseOutcomeID)
	if err != nil {
		return dto.MappingResponse{}, fmt.Errorf("%w: course outcome %d does not exist", ErrInvalidInput, req.CourseOutcomeID)
	}

	programOutcome, err := s.programOutcomes.GetByID(ctx, req.ProgramOutcomeID)
	if err != nil {
		return dto.MappingResponse{}, fmt.Errorf("%w: program outcome %d does not exist", ErrInvalidInput, req.ProgramOutcomeID)
	}

	subject, err := s.subjects.GetByID(ctx, courseOutcome.SubjectID)
	if err != nil {
		return dto.MappingResponse{}, err
	}
	if subject.DepartmentID != programOutcome.DepartmentID {
		return dto.MappingResponse{}, fmt.Errorf("%w: outcome pair spans two departments", ErrInvalidInput)
	}
	if err := s.checkSubjectScope(ctx, actor, subject); err != nil {
		return dto.MappingResponse{}, err
	}

	exists, err := s.mappings.Exists(ctx, req.CourseOutcomeID, req.ProgramOutcomeID)
	if err != nil {
		return dto.MappingResponse{}, err
	}
	if exists {
		return dto.MappingResponse{}, fmt.Errorf("%w: mapping already exists", ErrConflict)
	}

	mapping := models.CoPOMapping{
		CourseOutcomeID:  req.CourseOutcomeID,
		ProgramOutcomeID: req.ProgramOutcomeID,
		CorrelationLevel: req.CorrelationLevel,
	}

	if err := s.mappings.Create(ctx, &mapping); err != nil {
		return dto.MappingResponse{}, err
	}

	s.invalidator.InvalidateSubject(ctx, courseOutcome.SubjectID)
	s.invalidator.InvalidateDepartment(ctx, programOutcome.DepartmentID)
	return dto.NewMappingResponse(mapping), nil
}

func (s *outcomeService) ListMappingsBySubject(ctx context.Context, subjectID uint) ([]dto.MappingResponse, error) {
	mappings, err := s.mappings.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MappingResponse, 0, len(mappings))
	for _, mapping := range mappings {
		responses = append(responses, dto.NewMappingResponse(mapping))
	}
	return responses, nil
}

func (s *outcomeService) UpdateMapping(ctx context.Context, actor Actor, id uint, req dto.MappingUpdateRequest) (dto.MappingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MappingResponse{}, err
	}

	mapping, err := s.mappings.GetByID(ctx, id)
	if err != nil {
		return dto.MappingResponse{}, mapNotFound(err)
	}

	courseOutcome, err := s.courseOutcomes.GetByID(ctx, mapping.CourseOutcomeID)
	if err != nil {
		return dto.MappingResponse{}, err
	}
	subject, err := s.subjects.GetByID(ctx, courseOutcome.SubjectID)
	if err != nil {
		return dto.MappingResponse{}, err
	}
	if err := s.checkSubjectScope(ctx, actor, subject); err != nil {
		return dto.MappingResponse{}, err
	}

	mapping.CorrelationLevel = req.CorrelationLevel
	if err := s.mappings.Update(ctx, &mapping); err != nil {
		return dto.MappingResponse{}, err
	}

	s.invalidator.InvalidateSubject(ctx, courseOutcome.SubjectID)
	s.invalidator.InvalidateDepartment(ctx, subject.DepartmentID)
	return dto.NewMappingResponse(mapping), nil
}

func (s *outcomeService) DeleteMapping(ctx context.Context, actor Actor, id uint) error {
	mapping, err := s.mappings.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	courseOutcome, err := s.courseOutcomes.GetByID(ctx, mapping.CourseOutcomeID)
	if err != nil {
		return err
	}
	subject, err := s.subjects.GetByID(ctx, courseOutcome.SubjectID)
	if err != nil {
		return err
	}
	if err := s.checkSubjectScope(ctx, actor, subject); err != nil {
		return err
	}

	if err := s.mappings.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.InvalidateSubject(ctx, courseOutcome.SubjectID)
	s.invalidator.InvalidateDepartment(ctx, subject.DepartmentID)
	return nil
}

// checkSubjectScope admits admins, the owning department's head, and
// faculty at large. Students cannot edit outcomes.
func (s *outcomeService) checkSubjectScope(_ context.Context, actor Actor, subject models.Subject) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleFaculty:
		return nil
	case models.RoleHOD:
		if actor.DepartmentID != nil && *actor.DepartmentID == subject.DepartmentID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

func (s *outcomeService) checkDepartmentScope(actor Actor, departmentID uint) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleHOD && actor.DepartmentID != nil && *actor.DepartmentID == departmentID {
		return nil
	}
	return ErrForbidden
}
