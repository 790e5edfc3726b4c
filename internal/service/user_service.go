package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

// UserService manages existing accounts.
type UserService interface {
	Get(ctx context.Context, actor Actor, id uint) (dto.UserResponse, error)
	List(ctx context.Context, actor Actor, role string, departmentID *uint, page, pageSize int) (dto.UserListResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type userService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(
	users repository.UserRepository,
	departments repository.DepartmentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) UserService {
	return &userService{
		users:       users,
		departments: departments,
		validator:   validate,
		logger:      logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, actor Actor, id uint) (dto.UserResponse, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleHOD && actor.ID != id {
		return dto.UserResponse{}, ErrForbidden
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, mapNotFound(err)
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, actor Actor, role string, departmentID *uint, page, pageSize int) (dto.UserListResponse, error) {
	filter := repository.UserFilter{
		DepartmentID: departmentID,
		Page:         page,
		PageSize:     pageSize,
	}

	if role != "" {
		parsed, err := models.ParseRole(role)
		if err != nil {
			return dto.UserListResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Role = parsed
	}

	// Heads of department only see their own department.
	if actor.Role == models.RoleHOD {
		if actor.DepartmentID == nil {
			return dto.UserListResponse{}, ErrForbidden
		}
		filter.DepartmentID = actor.DepartmentID
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(page, 1),
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.UserListResponse{Items: items, Pagination: pagination}, nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if actor.Role != models.RoleAdmin && actor.ID != id {
		return dto.UserResponse{}, ErrForbidden
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, mapNotFound(err)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.DepartmentID != nil {
		if actor.Role != models.RoleAdmin {
			return dto.UserResponse{}, ErrForbidden
		}
		user.DepartmentID = req.DepartmentID
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete the account in use", ErrInvalidInput)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	// A head of department must be replaced before removal.
	if user.Role == models.RoleHOD {
		if _, err := s.departments.GetByHOD(ctx, user.ID); err == nil {
			return fmt.Errorf("%w: user still heads a department", ErrConflict)
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted")
	return nil
}
