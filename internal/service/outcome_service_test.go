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

func newOutcomeFixture(t *testing.T) (OutcomeService, *invalidatorSpy, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	spy := &invalidatorSpy{}
	svc := NewOutcomeService(
		repository.NewCourseOutcomeRepository(db),
		repository.NewProgramOutcomeRepository(db),
		repository.NewCoPOMappingRepository(db),
		repository.NewSubjectRepository(db),
		spy,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc, spy, db
}

func TestCourseOutcomeNumbersAreUniquePerSubject(t *testing.T) {
	svc, spy, db := newOutcomeFixture(t)
	ctx := context.Background()

	department := models.Department{Name: "Computer Science"}
	require.NoError(t, db.Create(&department).Error)
	subject := models.Subject{DepartmentID: department.ID, Name: "Operating Systems", Code: "CS301", Semester: 5}
	require.NoError(t, db.Create(&subject).Error)

	admin := Actor{ID: 1, Role: models.RoleAdmin}

	created, err := svc.CreateCourseOutcome(ctx, admin, dto.CourseOutcomeCreateRequest{
		SubjectID: subject.ID,
		Number:    1,
		Statement: "Explain process scheduling",
	})
	require.NoError(t, err)
	require.Equal(t, 1, created.Number)
	require.Contains(t, spy.subjects, subject.ID)

	_, err = svc.CreateCourseOutcome(ctx, admin, dto.CourseOutcomeCreateRequest{
		SubjectID: subject.ID,
		Number:    1,
		Statement: "A different statement, same ordinal",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestMappingStaysWithinDepartment(t *testing.T) {
	svc, spy, db := newOutcomeFixture(t)
	ctx := context.Background()

	cse := models.Department{Name: "Computer Science"}
	mech := models.Department{Name: "Mechanical"}
	require.NoError(t, db.Create(&cse).Error)
	require.NoError(t, db.Create(&mech).Error)

	subject := models.Subject{DepartmentID: cse.ID, Name: "Operating Systems", Code: "CS301", Semester: 5}
	require.NoError(t, db.Create(&subject).Error)

	co := models.CourseOutcome{SubjectID: subject.ID, Number: 1, Statement: "Explain process scheduling"}
	require.NoError(t, db.Create(&co).Error)

	homePO := models.ProgramOutcome{DepartmentID: cse.ID, Number: 1, Statement: "Apply engineering knowledge"}
	foreignPO := models.ProgramOutcome{DepartmentID: mech.ID, Number: 1, Statement: "Design mechanical systems"}
	require.NoError(t, db.Create(&homePO).Error)
	require.NoError(t, db.Create(&foreignPO).Error)

	admin := Actor{ID: 1, Role: models.RoleAdmin}

	_, err := svc.CreateMapping(ctx, admin, dto.MappingCreateRequest{
		CourseOutcomeID:  co.ID,
		ProgramOutcomeID: foreignPO.ID,
		CorrelationLevel: models.CorrelationHigh,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	mapping, err := svc.CreateMapping(ctx, admin, dto.MappingCreateRequest{
		CourseOutcomeID:  co.ID,
		ProgramOutcomeID: homePO.ID,
		CorrelationLevel: models.CorrelationMedium,
	})
	require.NoError(t, err)
	require.Equal(t, models.CorrelationMedium, mapping.CorrelationLevel)
	require.Contains(t, spy.subjects, subject.ID)

	_, err = svc.CreateMapping(ctx, admin, dto.MappingCreateRequest{
		CourseOutcomeID:  co.ID,
		ProgramOutcomeID: homePO.ID,
		CorrelationLevel: models.CorrelationLow,
	})
	require.ErrorIs(t, err, ErrConflict)

	updated, err := svc.UpdateMapping(ctx, admin, mapping.ID, dto.MappingUpdateRequest{
		CorrelationLevel: models.CorrelationHigh,
	})
	require.NoError(t, err)
	require.Equal(t, models.CorrelationHigh, updated.CorrelationLevel)
}
