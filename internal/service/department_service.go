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

// DepartmentService manages departments and their heads.
type DepartmentService interface {
	Create(ctx context.Context, req dto.DepartmentCreateRequest) (dto.DepartmentResponse, error)
	Get(ctx context.Context, id uint) (dto.DepartmentResponse, error)
	List(ctx context.Context) ([]dto.DepartmentResponse, error)
	Update(ctx context.Context, id uint, req dto.DepartmentUpdateRequest) (dto.DepartmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type departmentService struct {
	departments repository.DepartmentRepository
	subjects    repository.SubjectRepository
	users       repository.UserRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewDepartmentService constructs the department service.
func NewDepartmentService(
	departments repository.DepartmentRepository,
	subjects repository.SubjectRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) DepartmentService {
	return &departmentService{
		departments: departments,
		subjects:    subjects,
		users:       users,
		validator:   validate,
		logger:      logger.With().Str("component", "department_service").Logger(),
	}
}

func (s *departmentService) Create(ctx context.Context, req dto.DepartmentCreateRequest) (dto.DepartmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DepartmentResponse{}, err
	}

	if err := s.checkHOD(ctx, req.HODID, 0); err != nil {
		return dto.DepartmentResponse{}, err
	}

	department := models.Department{
		Name:  strings.TrimSpace(req.Name),
		HODID: req.HODID,
	}

	if err := s.departments.Create(ctx, &department); err != nil {
		return dto.DepartmentResponse{}, err
	}

	s.logger.Info().Uint("department_id", department.ID).Msg("department created")
	return dto.NewDepartmentResponse(department), nil
}

func (s *departmentService) Get(ctx context.Context, id uint) (dto.DepartmentResponse, error) {
	department, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return dto.DepartmentResponse{}, mapNotFound(err)
	}
	return dto.NewDepartmentResponse(department), nil
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DepartmentResponse, 0, len(departments))
	for _, department := range departments {
		responses = append(responses, dto.NewDepartmentResponse(department))
	}
	return responses, nil
}

func (s *departmentService) Update(ctx context.Context, id uint, req dto.DepartmentUpdateRequest) (dto.DepartmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DepartmentResponse{}, err
	}

	department, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return dto.DepartmentResponse{}, mapNotFound(err)
	}

	if req.Name != nil {
		department.Name = strings.TrimSpace(*req.Name)
	}
	if req.HODID != nil {
		if err := s.checkHOD(ctx, req.HODID, department.ID); err != nil {
			return dto.DepartmentResponse{}, err
		}
		department.HODID = req.HODID
	}

	if err := s.departments.Update(ctx, &department); err != nil {
		return dto.DepartmentResponse{}, err
	}

	return dto.NewDepartmentResponse(department), nil
}

func (s *departmentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.departments.GetByID(ctx, id); err != nil {
		return mapNotFound(err)
	}

	total, err := s.subjects.CountByDepartment(ctx, id)
	if err != nil {
		return err
	}
	if total > 0 {
		return fmt.Errorf("%w: department still owns %d subjects", ErrConflict, total)
	}

	if err := s.departments.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("department_id", id).Msg("department deleted")
	return nil
}

// checkHOD verifies the candidate exists, carries the hod role, and does
// not already head another department.
func (s *departmentService) checkHOD(ctx context.Context, hodID *uint, departmentID uint) error {
	if hodID == nil {
		return nil
	}

	user, err := s.users.GetByID(ctx, *hodID)
	if err != nil {
		return fmt.Errorf("%w: hod %d does not exist", ErrInvalidInput, *hodID)
	}
	if user.Role != models.RoleHOD {
		return fmt.Errorf("%w: user %d does not carry the hod role", ErrInvalidInput, *hodID)
	}

	if existing, err := s.departments.GetByHOD(ctx, *hodID); err == nil && existing.ID != departmentID {
		return fmt.Errorf("%w: user %d already heads another department", ErrConflict, *hodID)
	}

	return nil
}
