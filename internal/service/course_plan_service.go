package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

// CoursePlanService manages faculty-owned course plan documents.
type CoursePlanService interface {
	Create(ctx context.Context, actor Actor, req dto.CoursePlanCreateRequest) (dto.CoursePlanResponse, error)
	Get(ctx context.Context, id uint) (dto.CoursePlanResponse, error)
	GetBySubject(ctx context.Context, subjectID uint) (dto.CoursePlanResponse, error)
	List(ctx context.Context) ([]dto.CoursePlanResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.CoursePlanUpdateRequest) (dto.CoursePlanResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type coursePlanService struct {
	plans       repository.CoursePlanRepository
	subjects    repository.SubjectRepository
	assignments repository.SubjectAssignmentRepository
	sanitizer   *bluemonday.Policy
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCoursePlanService constructs the course plan service.
func NewCoursePlanService(
	plans repository.CoursePlanRepository,
	subjects repository.SubjectRepository,
	assignments repository.SubjectAssignmentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) CoursePlanService {
	return &coursePlanService{
		plans:       plans,
		subjects:    subjects,
		assignments: assignments,
		sanitizer:   bluemonday.UGCPolicy(),
		validator:   validate,
		logger:      logger.With().Str("component", "course_plan_service").Logger(),
		now:         time.Now,
	}
}

func (s *coursePlanService) Create(ctx context.Context, actor Actor, req dto.CoursePlanCreateRequest) (dto.CoursePlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CoursePlanResponse{}, err
	}

	if _, err := s.subjects.GetByID(ctx, req.SubjectID); err != nil {
		return dto.CoursePlanResponse{}, fmt.Errorf("%w: subject %d does not exist", ErrInvalidInput, req.SubjectID)
	}

	if actor.Role == models.RoleFaculty {
		assigned, err := s.assignments.Exists(ctx, req.SubjectID, actor.ID)
		if err != nil {
			return dto.CoursePlanResponse{}, err
		}
		if !assigned {
			return dto.CoursePlanResponse{}, fmt.Errorf("%w: not assigned to this subject", ErrForbidden)
		}
	}

	if _, err := s.plans.GetBySubject(ctx, req.SubjectID); err == nil {
		return dto.CoursePlanResponse{}, fmt.Errorf("%w: subject already has a course plan", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CoursePlanResponse{}, err
	}

	modules, err := marshalModules(req.Modules)
	if err != nil {
		return dto.CoursePlanResponse{}, err
	}
	methods, err := marshalStrings(req.AssessmentMethods)
	if err != nil {
		return dto.CoursePlanResponse{}, err
	}
	references, err := marshalStrings(req.References)
	if err != nil {
		return dto.CoursePlanResponse{}, err
	}

	plan := models.CoursePlan{
		SubjectID:         req.SubjectID,
		FacultyID:         actor.ID,
		Overview:          s.sanitizer.Sanitize(strings.TrimSpace(req.Overview)),
		Objectives:        s.sanitizer.Sanitize(strings.TrimSpace(req.Objectives)),
		Modules:           modules,
		AssessmentMethods: methods,
		References:        references,
		Status:            models.CoursePlanStatusDraft,
		LastUpdated:       s.now(),
	}

	if err := s.plans.Create(ctx, &plan); err != nil {
		return dto.CoursePlanResponse{}, err
	}

	s.logger.Info().Uint("plan_id", plan.ID).Uint("subject_id", plan.SubjectID).Msg("course plan created")
	return dto.NewCoursePlanResponse(plan), nil
}

func (s *coursePlanService) Get(ctx context.Context, id uint) (dto.CoursePlanResponse, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return dto.CoursePlanResponse{}, mapNotFound(err)
	}
	return dto.NewCoursePlanResponse(plan), nil
}

func (s *coursePlanService) GetBySubject(ctx context.Context, subjectID uint) (dto.CoursePlanResponse, error) {
	plan, err := s.plans.GetBySubject(ctx, subjectID)
	if err != nil {
		return dto.CoursePlanResponse{}, mapNotFound(err)
	}
	return dto.NewCoursePlanResponse(plan), nil
}

func (s *coursePlanService) List(ctx context.Context) ([]dto.CoursePlanResponse, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CoursePlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, dto.NewCoursePlanResponse(plan))
	}
	return responses, nil
}

func (s *coursePlanService) Update(ctx context.Context, actor Actor, id uint, req dto.CoursePlanUpdateRequest) (dto.CoursePlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CoursePlanResponse{}, err
	}

	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return dto.CoursePlanResponse{}, mapNotFound(err)
	}

	if err := s.checkOwnership(actor, plan); err != nil {
		return dto.CoursePlanResponse{}, err
	}

	if req.Overview != nil {
		plan.Overview = s.sanitizer.Sanitize(strings.TrimSpace(*req.Overview))
	}
	if req.Objectives != nil {
		plan.Objectives = s.sanitizer.Sanitize(strings.TrimSpace(*req.Objectives))
	}
	if req.Modules != nil {
		modules, err := marshalModules(req.Modules)
		if err != nil {
			return dto.CoursePlanResponse{}, err
		}
		plan.Modules = modules
	}
	if req.AssessmentMethods != nil {
		methods, err := marshalStrings(req.AssessmentMethods)
		if err != nil {
			return dto.CoursePlanResponse{}, err
		}
		plan.AssessmentMethods = methods
	}
	if req.References != nil {
		references, err := marshalStrings(req.References)
		if err != nil {
			return dto.CoursePlanResponse{}, err
		}
		plan.References = references
	}
	if req.Status != nil {
		plan.Status = *req.Status
	}

	plan.LastUpdated = s.now()

	if err := s.plans.Update(ctx, &plan); err != nil {
		return dto.CoursePlanResponse{}, err
	}

	return dto.NewCoursePlanResponse(plan), nil
}

func (s *coursePlanService) Delete(ctx context.Context, actor Actor, id uint) error {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.checkOwnership(actor, plan); err != nil {
		return err
	}

	if err := s.plans.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("plan_id", id).Msg("course plan deleted")
	return nil
}

// checkOwnership admits the creating faculty member only. The role
// gate on the route is not enough: a plan is mutable solely by the
// account that authored it.
func (s *coursePlanService) checkOwnership(actor Actor, plan models.CoursePlan) error {
	if actor.ID == plan.FacultyID {
		return nil
	}
	return fmt.Errorf("%w: course plan belongs to another faculty member", ErrForbidden)
}

func marshalModules(modules []dto.CoursePlanModule) (datatypes.JSON, error) {
	if modules == nil {
		return nil, nil
	}
	payload, err := json.Marshal(modules)
	if err != nil {
		return nil, fmt.Errorf("failed to encode modules: %w", err)
	}
	return datatypes.JSON(payload), nil
}

func marshalStrings(values []string) (datatypes.JSON, error) {
	if values == nil {
		return nil, nil
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list: %w", err)
	}
	return datatypes.JSON(payload), nil
}
