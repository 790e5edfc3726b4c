package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
	"github.com/noah-isme/copo-api/internal/session"
)

// Messenger delivers one-time codes out of band.
type Messenger interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// AuthService implements registration, session login and password reset.
type AuthService interface {
	// Register creates a user. The returned session id is non-empty only
	// for the bootstrap registration, which logs the first admin in.
	Register(ctx context.Context, actor *Actor, req dto.RegisterRequest) (dto.UserResponse, string, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.UserResponse, string, error)
	Logout(ctx context.Context, sessionID string) error
	RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirm) error
}

type authService struct {
	users     repository.UserRepository
	sessions  *session.Store
	otps      *session.OTPStore
	messenger Messenger
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(
	users repository.UserRepository,
	sessions *session.Store,
	otps *session.OTPStore,
	messenger Messenger,
	validate *validator.Validate,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:     users,
		sessions:  sessions,
		otps:      otps,
		messenger: messenger,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, actor *Actor, req dto.RegisterRequest) (dto.UserResponse, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, "", err
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return dto.UserResponse{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return dto.UserResponse{}, "", err
	}

	bootstrap := total == 0
	departmentID := req.DepartmentID

	switch {
	case bootstrap:
		// The very first account is always the admin, whatever was asked.
		role = models.RoleAdmin
	case actor == nil:
		return dto.UserResponse{}, "", ErrForbidden
	case actor.Role == models.RoleAdmin:
		// Admins create any role.
	case actor.Role == models.RoleHOD:
		if role != models.RoleFaculty && role != models.RoleStudent {
			return dto.UserResponse{}, "", ErrForbidden
		}
		if departmentID == nil {
			departmentID = actor.DepartmentID
		}
		if departmentID == nil {
			return dto.UserResponse{}, "", fmt.Errorf("%w: department is required for faculty and student accounts", ErrInvalidInput)
		}
	default:
		return dto.UserResponse{}, "", ErrForbidden
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return dto.UserResponse{}, "", fmt.Errorf("%w: username %q is already taken", ErrConflict, username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		DepartmentID: departmentID,
		Phone:        strings.TrimSpace(req.Phone),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, "", err
	}

	sessionID := ""
	if bootstrap {
		sessionID, err = s.sessions.Create(ctx, session.Session{
			UserID:       user.ID,
			Role:         user.Role,
			DepartmentID: user.DepartmentID,
		})
		if err != nil {
			return dto.UserResponse{}, "", err
		}
		s.logger.Info().Uint("user_id", user.ID).Msg("bootstrap admin account created")
	}

	return dto.NewUserResponse(user), sessionID, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.UserResponse, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, "", err
	}

	user, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, "", fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return dto.UserResponse{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.UserResponse{}, "", fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	sessionID, err := s.sessions.Create(ctx, session.Session{
		UserID:       user.ID,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
	})
	if err != nil {
		return dto.UserResponse{}, "", err
	}

	return dto.NewUserResponse(user), sessionID, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Destroy(ctx, sessionID)
}

func (s *authService) RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal whether the account exists.
			s.logger.Debug().Str("username", req.Username).Msg("password reset requested for unknown account")
			return nil
		}
		return err
	}

	if strings.TrimSpace(user.Phone) == "" {
		return fmt.Errorf("%w: account has no phone number on record", ErrInvalidInput)
	}

	code, err := s.otps.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	if err := s.messenger.SendOTP(ctx, user.Phone, code); err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to deliver otp")
		return fmt.Errorf("failed to deliver reset code: %w", err)
	}

	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirm) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		return mapNotFound(err)
	}

	ok, err := s.otps.Verify(ctx, user.ID, req.Code)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: code is invalid or expired", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, &user); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset completed")
	return nil
}
