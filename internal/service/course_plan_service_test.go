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

func newCoursePlanFixture(t *testing.T) (CoursePlanService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc := NewCoursePlanService(
		repository.NewCoursePlanRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewSubjectAssignmentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc, db
}

func seedCoursePlanSubject(t *testing.T, db *gorm.DB) (models.Subject, models.User) {
	t.Helper()

	department := models.Department{Name: "Computer Science"}
	require.NoError(t, db.Create(&department).Error)
	subject := models.Subject{DepartmentID: department.ID, Name: "Operating Systems", Code: "CS301", Semester: 5}
	require.NoError(t, db.Create(&subject).Error)
	faculty := models.User{Username: "teacher", PasswordHash: "x", Name: "Teacher", Role: models.RoleFaculty, DepartmentID: uintPointer(department.ID)}
	require.NoError(t, db.Create(&faculty).Error)
	require.NoError(t, db.Create(&models.SubjectAssignment{SubjectID: subject.ID, FacultyID: faculty.ID, AssignedBy: 1}).Error)
	return subject, faculty
}

func TestCoursePlanCreateSanitizesAndScopes(t *testing.T) {
	svc, db := newCoursePlanFixture(t)
	ctx := context.Background()
	subject, faculty := seedCoursePlanSubject(t, db)

	owner := Actor{ID: faculty.ID, Role: models.RoleFaculty, DepartmentID: faculty.DepartmentID}

	plan, err := svc.Create(ctx, owner, dto.CoursePlanCreateRequest{
		SubjectID: subject.ID,
		Overview:  `Covers scheduling and memory.<script>alert("x")</script>`,
		Modules: []dto.CoursePlanModule{
			{Title: "Processes", Topics: "Scheduling, context switches", Hours: 10},
		},
		AssessmentMethods: []string{"Midterm exam"},
	})
	require.NoError(t, err)
	require.NotContains(t, plan.Overview, "<script>")
	require.Contains(t, plan.Overview, "Covers scheduling and memory.")
	require.Equal(t, faculty.ID, plan.FacultyID)
	require.Equal(t, models.CoursePlanStatusDraft, plan.Status)

	// One plan per subject.
	_, err = svc.Create(ctx, owner, dto.CoursePlanCreateRequest{
		SubjectID: subject.ID,
		Overview:  "A competing plan for the same subject.",
	})
	require.ErrorIs(t, err, ErrConflict)

	// Unassigned faculty cannot author a plan.
	outsider := models.User{Username: "other", PasswordHash: "x", Name: "Other", Role: models.RoleFaculty}
	require.NoError(t, db.Create(&outsider).Error)

	other := models.Subject{DepartmentID: subject.DepartmentID, Name: "Networks", Code: "CS302", Semester: 5}
	require.NoError(t, db.Create(&other).Error)

	_, err = svc.Create(ctx, Actor{ID: outsider.ID, Role: models.RoleFaculty}, dto.CoursePlanCreateRequest{
		SubjectID: other.ID,
		Overview:  "Networks from the physical layer up.",
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCoursePlanUpdateOwnership(t *testing.T) {
	svc, db := newCoursePlanFixture(t)
	ctx := context.Background()
	subject, faculty := seedCoursePlanSubject(t, db)

	owner := Actor{ID: faculty.ID, Role: models.RoleFaculty, DepartmentID: faculty.DepartmentID}
	plan, err := svc.Create(ctx, owner, dto.CoursePlanCreateRequest{
		SubjectID: subject.ID,
		Overview:  "Covers scheduling and memory management.",
	})
	require.NoError(t, err)

	// Another faculty member cannot touch the plan.
	stranger := Actor{ID: faculty.ID + 100, Role: models.RoleFaculty}
	newOverview := "Hijacked overview content here."
	_, err = svc.Update(ctx, stranger, plan.ID, dto.CoursePlanUpdateRequest{Overview: &newOverview})
	require.ErrorIs(t, err, ErrForbidden)

	// Neither can anyone else whose role passes the route gate.
	_, err = svc.Update(ctx, Actor{ID: faculty.ID + 500, Role: models.RoleAdmin}, plan.ID, dto.CoursePlanUpdateRequest{Overview: &newOverview})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, Actor{ID: faculty.ID + 501, Role: models.RoleHOD, DepartmentID: faculty.DepartmentID}, plan.ID, dto.CoursePlanUpdateRequest{Overview: &newOverview})
	require.ErrorIs(t, err, ErrForbidden)

	// Only the owner may.
	status := models.CoursePlanStatusSubmitted
	updated, err := svc.Update(ctx, owner, plan.ID, dto.CoursePlanUpdateRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.CoursePlanStatusSubmitted, updated.Status)

	require.ErrorIs(t, svc.Delete(ctx, stranger, plan.ID), ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, Actor{ID: faculty.ID + 500, Role: models.RoleAdmin}, plan.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, plan.ID))

	_, err = svc.Get(ctx, plan.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
