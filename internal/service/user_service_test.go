package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

func newUserFixture(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewDepartmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc, db
}

func seedUsers(t *testing.T, db *gorm.DB) (models.User, models.User, models.User) {
	t.Helper()

	admin := models.User{Username: "admin", PasswordHash: "x", Name: "Admin", Role: models.RoleAdmin}
	hod := models.User{Username: "hod.cse", PasswordHash: "x", Name: "CSE Head", Role: models.RoleHOD, DepartmentID: uintPointer(1)}
	student := models.User{Username: "student1", PasswordHash: "x", Name: "Student One", Role: models.RoleStudent, DepartmentID: uintPointer(1)}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&hod).Error)
	require.NoError(t, db.Create(&student).Error)
	return admin, hod, student
}

func TestUserGetIsSelfOrPrivileged(t *testing.T) {
	svc, db := newUserFixture(t)
	ctx := context.Background()
	admin, _, student := seedUsers(t, db)

	_, err := svc.Get(ctx, Actor{ID: student.ID, Role: models.RoleStudent}, admin.ID)
	require.ErrorIs(t, err, ErrForbidden)

	self, err := svc.Get(ctx, Actor{ID: student.ID, Role: models.RoleStudent}, student.ID)
	require.NoError(t, err)
	require.Equal(t, "student1", self.Username)

	_, err = svc.Get(ctx, Actor{ID: admin.ID, Role: models.RoleAdmin}, student.ID)
	require.NoError(t, err)
}

func TestUserListScopesHODToOwnDepartment(t *testing.T) {
	svc, db := newUserFixture(t)
	ctx := context.Background()
	_, hod, _ := seedUsers(t, db)

	other := models.User{Username: "student2", PasswordHash: "x", Name: "Student Two", Role: models.RoleStudent, DepartmentID: uintPointer(2)}
	require.NoError(t, db.Create(&other).Error)

	// The HOD asks for department 2 but only ever sees their own.
	result, err := svc.List(ctx, Actor{ID: hod.ID, Role: models.RoleHOD, DepartmentID: uintPointer(1)}, "", uintPointer(2), 1, 10)
	require.NoError(t, err)
	for _, item := range result.Items {
		require.NotNil(t, item.DepartmentID)
		require.Equal(t, uint(1), *item.DepartmentID)
	}

	admins, err := svc.List(ctx, Actor{ID: 1, Role: models.RoleAdmin}, "student", nil, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), admins.Pagination.TotalItems)
}

func TestUserUpdatePermissions(t *testing.T) {
	svc, db := newUserFixture(t)
	ctx := context.Background()
	admin, _, student := seedUsers(t, db)

	name := "Renamed Student"
	_, err := svc.Update(ctx, Actor{ID: student.ID + 50, Role: models.RoleStudent}, student.ID, dto.UserUpdateRequest{Name: &name})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, Actor{ID: student.ID, Role: models.RoleStudent}, student.ID, dto.UserUpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)

	// Moving an account between departments is an admin call.
	_, err = svc.Update(ctx, Actor{ID: student.ID, Role: models.RoleStudent}, student.ID, dto.UserUpdateRequest{DepartmentID: uintPointer(2)})
	require.ErrorIs(t, err, ErrForbidden)

	moved, err := svc.Update(ctx, Actor{ID: admin.ID, Role: models.RoleAdmin}, student.ID, dto.UserUpdateRequest{DepartmentID: uintPointer(2)})
	require.NoError(t, err)
	require.Equal(t, uint(2), *moved.DepartmentID)
}

func TestUserDeleteGuards(t *testing.T) {
	svc, db := newUserFixture(t)
	ctx := context.Background()
	admin, hod, student := seedUsers(t, db)

	adminActor := Actor{ID: admin.ID, Role: models.RoleAdmin}

	require.ErrorIs(t, svc.Delete(ctx, Actor{ID: hod.ID, Role: models.RoleHOD}, student.ID), ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, adminActor, admin.ID), ErrInvalidInput)

	// A sitting head of department must be replaced first.
	department := models.Department{Name: "Computer Science", HODID: uintPointer(hod.ID)}
	require.NoError(t, db.Create(&department).Error)
	require.ErrorIs(t, svc.Delete(ctx, adminActor, hod.ID), ErrConflict)

	require.NoError(t, svc.Delete(ctx, adminActor, student.ID))
	_, err := svc.Get(ctx, adminActor, student.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
