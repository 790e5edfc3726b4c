package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
	"github.com/noah-isme/copo-api/internal/session"
)

type fakeMessenger struct {
	phone string
	code  string
}

func (m *fakeMessenger) SendOTP(ctx context.Context, phone, code string) error {
	m.phone = phone
	m.code = code
	return nil
}

func newAuthFixture(t *testing.T) (AuthService, *session.Store, *fakeMessenger) {
	t.Helper()

	db := newTestDB(t)
	redisClient := newTestRedis(t)

	sessions := session.NewStore(redisClient, time.Hour)
	otps := session.NewOTPStore(redisClient, 10*time.Minute)
	messenger := &fakeMessenger{}

	svc := NewAuthService(
		repository.NewUserRepository(db),
		sessions,
		otps,
		messenger,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc, sessions, messenger
}

func TestRegisterBootstrapPromotesFirstAccount(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)
	ctx := context.Background()

	user, sessionID, err := svc.Register(ctx, nil, dto.RegisterRequest{
		Username: "Principal",
		Password: "secret123",
		Name:     "First Principal",
		Role:     "student",
	})
	require.NoError(t, err)
	require.Equal(t, "admin", user.Role)
	require.Equal(t, "principal", user.Username)
	require.NotEmpty(t, sessionID)

	sess, err := sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	require.Equal(t, user.ID, sess.UserID)
	require.Equal(t, models.RoleAdmin, sess.Role)
}

func TestRegisterEnforcesActorRules(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	admin, _, err := svc.Register(ctx, nil, dto.RegisterRequest{
		Username: "admin",
		Password: "secret123",
		Name:     "Admin",
		Role:     "admin",
	})
	require.NoError(t, err)

	// Anonymous registration is closed once the system is bootstrapped.
	_, _, err = svc.Register(ctx, nil, dto.RegisterRequest{
		Username: "drifter",
		Password: "secret123",
		Name:     "Drifter",
		Role:     "student",
	})
	require.ErrorIs(t, err, ErrForbidden)

	adminActor := &Actor{ID: admin.ID, Role: models.RoleAdmin}
	hodUser, _, err := svc.Register(ctx, adminActor, dto.RegisterRequest{
		Username:     "hod.cse",
		Password:     "secret123",
		Name:         "CSE Head",
		Role:         "hod",
		DepartmentID: uintPointer(7),
	})
	require.NoError(t, err)

	hodActor := &Actor{ID: hodUser.ID, Role: models.RoleHOD, DepartmentID: uintPointer(7)}

	// Heads of department cannot mint privileged accounts.
	_, _, err = svc.Register(ctx, hodActor, dto.RegisterRequest{
		Username: "rogue",
		Password: "secret123",
		Name:     "Rogue Admin",
		Role:     "admin",
	})
	require.ErrorIs(t, err, ErrForbidden)

	// A student created by a HOD inherits the HOD's department.
	student, _, err := svc.Register(ctx, hodActor, dto.RegisterRequest{
		Username: "student1",
		Password: "secret123",
		Name:     "Student One",
		Role:     "student",
	})
	require.NoError(t, err)
	require.NotNil(t, student.DepartmentID)
	require.Equal(t, uint(7), *student.DepartmentID)

	// Usernames are unique, case-insensitively.
	_, _, err = svc.Register(ctx, adminActor, dto.RegisterRequest{
		Username: "Student1",
		Password: "secret123",
		Name:     "Impostor",
		Role:     "student",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestLoginAndLogout(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, nil, dto.RegisterRequest{
		Username: "admin",
		Password: "secret123",
		Name:     "Admin",
		Role:     "admin",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrUnauthenticated)

	user, sessionID, err := svc.Login(ctx, dto.LoginRequest{Username: "ADMIN", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "admin", user.Username)
	require.NotEmpty(t, sessionID)

	require.NoError(t, svc.Logout(ctx, sessionID))

	_, err = sessions.Get(ctx, sessionID)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, messenger := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, nil, dto.RegisterRequest{
		Username: "admin",
		Password: "secret123",
		Name:     "Admin",
		Role:     "admin",
		Phone:    "+15550001111",
	})
	require.NoError(t, err)

	// Unknown accounts are not revealed.
	require.NoError(t, svc.RequestPasswordReset(ctx, dto.PasswordResetRequest{Username: "nobody"}))
	require.Empty(t, messenger.code)

	require.NoError(t, svc.RequestPasswordReset(ctx, dto.PasswordResetRequest{Username: "admin"}))
	require.Equal(t, "+15550001111", messenger.phone)
	require.Len(t, messenger.code, 6)

	err = svc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirm{
		Username:    "admin",
		Code:        "000000",
		NewPassword: "rotated456",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirm{
		Username:    "admin",
		Code:        messenger.code,
		NewPassword: "rotated456",
	}))

	_, _, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "secret123"})
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, _, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "rotated456"})
	require.NoError(t, err)

	// Codes are single use.
	err = svc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirm{
		Username:    "admin",
		Code:        messenger.code,
		NewPassword: "rotated789",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}
