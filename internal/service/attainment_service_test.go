package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

type fixedPolicy struct {
	policy AttainmentPolicy
}

func (p fixedPolicy) Policy(ctx context.Context) (AttainmentPolicy, error) {
	return p.policy, nil
}

func newAttainmentFixture(t *testing.T, db *gorm.DB) AttainmentService {
	t.Helper()

	return NewAttainmentService(
		repository.NewCourseOutcomeRepository(db),
		repository.NewProgramOutcomeRepository(db),
		repository.NewCoPOMappingRepository(db),
		repository.NewDirectAssessmentRepository(db),
		repository.NewMarksRepository(db),
		repository.NewIndirectAssessmentRepository(db),
		repository.NewStudentResponseRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewAttainmentRepository(db),
		fixedPolicy{policy: AttainmentPolicy{Threshold: 60, DirectWeight: 80, IndirectWeight: 20}},
		newTestRedis(t),
		time.Minute,
		zerolog.Nop(),
	)
}

func seedAttainmentData(t *testing.T, db *gorm.DB) (models.Subject, models.CourseOutcome, models.ProgramOutcome) {
	t.Helper()

	department := models.Department{Name: "Computer Science"}
	require.NoError(t, db.Create(&department).Error)

	subject := models.Subject{DepartmentID: department.ID, Name: "Operating Systems", Code: "CS301", Semester: 5}
	require.NoError(t, db.Create(&subject).Error)

	co1 := models.CourseOutcome{SubjectID: subject.ID, Number: 1, Statement: "Explain process scheduling"}
	co2 := models.CourseOutcome{SubjectID: subject.ID, Number: 2, Statement: "Analyse memory management"}
	require.NoError(t, db.Create(&co1).Error)
	require.NoError(t, db.Create(&co2).Error)

	po := models.ProgramOutcome{DepartmentID: department.ID, Number: 1, Statement: "Apply engineering knowledge"}
	require.NoError(t, db.Create(&po).Error)

	mapping := models.CoPOMapping{CourseOutcomeID: co1.ID, ProgramOutcomeID: po.ID, CorrelationLevel: models.CorrelationHigh}
	require.NoError(t, db.Create(&mapping).Error)

	assessment := models.DirectAssessment{SubjectID: subject.ID, Name: "Midterm", AssessmentType: "exam", MaxMarks: 100, AcademicYear: "2025-26"}
	require.NoError(t, db.Create(&assessment).Error)

	marks := []models.StudentAssessmentMarks{
		{AssessmentID: assessment.ID, StudentID: 101, CourseOutcomeID: co1.ID, MarksObtained: 80},
		{AssessmentID: assessment.ID, StudentID: 102, CourseOutcomeID: co1.ID, MarksObtained: 40},
	}
	for i := range marks {
		require.NoError(t, db.Create(&marks[i]).Error)
	}

	survey := models.IndirectAssessment{
		DepartmentID: department.ID,
		Name:         "Exit Survey",
		AcademicYear: "2025-26",
		Questions:    datatypes.JSON([]byte(`[{"id":"q1","prompt":"Rate the program outcomes coverage"}]`)),
	}
	require.NoError(t, db.Create(&survey).Error)

	response := models.StudentResponse{
		IndirectAssessmentID: survey.ID,
		StudentID:            101,
		Responses:            datatypes.JSON([]byte(`{"q1":4}`)),
	}
	require.NoError(t, db.Create(&response).Error)

	return subject, co1, po
}

func TestSubjectAttainmentComputesThresholdShare(t *testing.T) {
	db := newTestDB(t)
	subject, co1, _ := seedAttainmentData(t, db)
	svc := newAttainmentFixture(t, db)
	ctx := context.Background()

	report, err := svc.SubjectAttainment(ctx, subject.ID, "2025-26", false)
	require.NoError(t, err)
	require.False(t, report.CacheHit)
	require.Equal(t, 60.0, report.Threshold)
	require.Len(t, report.Outcomes, 2)

	first := report.Outcomes[0]
	require.Equal(t, co1.ID, first.CourseOutcomeID)
	require.Equal(t, 2, first.StudentsTotal)
	require.Equal(t, 1, first.StudentsCleared)
	require.InDelta(t, 50.0, first.Attainment, 0.001)

	// A course outcome without marks reports zero, not an error.
	second := report.Outcomes[1]
	require.Equal(t, 0, second.StudentsTotal)
	require.InDelta(t, 0.0, second.Attainment, 0.001)

	// The computed snapshot is persisted for later inspection.
	var count int64
	require.NoError(t, db.Model(&models.Attainment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubjectAttainmentRequiresAcademicYear(t *testing.T) {
	db := newTestDB(t)
	subject, _, _ := seedAttainmentData(t, db)
	svc := newAttainmentFixture(t, db)

	_, err := svc.SubjectAttainment(context.Background(), subject.ID, "", false)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDepartmentAttainmentBlendsDirectAndIndirect(t *testing.T) {
	db := newTestDB(t)
	subject, _, po := seedAttainmentData(t, db)
	svc := newAttainmentFixture(t, db)
	ctx := context.Background()

	report, err := svc.DepartmentAttainment(ctx, subject.DepartmentID, "2025-26", false)
	require.NoError(t, err)
	require.Equal(t, 80.0, report.DirectWeight)
	require.Equal(t, 20.0, report.IndirectWeight)
	require.Len(t, report.Outcomes, 1)

	entry := report.Outcomes[0]
	require.Equal(t, po.ID, entry.ProgramOutcomeID)
	require.Equal(t, 1, entry.MappedOutcomes)
	// CO1 attains 50%, mapped at level 3: direct = 3*50/3.
	require.InDelta(t, 50.0, entry.Direct, 0.001)
	// One answer of 4 on a 1..5 scale.
	require.InDelta(t, 80.0, entry.Indirect, 0.001)
	require.InDelta(t, 56.0, entry.Overall, 0.001)
}

func TestAttainmentCachingAndInvalidation(t *testing.T) {
	db := newTestDB(t)
	subject, co1, _ := seedAttainmentData(t, db)
	svc := newAttainmentFixture(t, db)
	ctx := context.Background()

	first, err := svc.SubjectAttainment(ctx, subject.ID, "2025-26", false)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	cached, err := svc.SubjectAttainment(ctx, subject.ID, "2025-26", false)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, first.Outcomes, cached.Outcomes)

	// New marks land behind the cache until the subject is invalidated.
	var assessment models.DirectAssessment
	require.NoError(t, db.First(&assessment).Error)
	require.NoError(t, db.Create(&models.StudentAssessmentMarks{
		AssessmentID:    assessment.ID,
		StudentID:       103,
		CourseOutcomeID: co1.ID,
		MarksObtained:   90,
	}).Error)

	stale, err := svc.SubjectAttainment(ctx, subject.ID, "2025-26", false)
	require.NoError(t, err)
	require.True(t, stale.CacheHit)

	svc.InvalidateSubject(ctx, subject.ID)

	fresh, err := svc.SubjectAttainment(ctx, subject.ID, "2025-26", false)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Equal(t, 3, fresh.Outcomes[0].StudentsTotal)
	require.Equal(t, 2, fresh.Outcomes[0].StudentsCleared)

	// refresh=true bypasses the cache outright.
	forced, err := svc.SubjectAttainment(ctx, subject.ID, "2025-26", true)
	require.NoError(t, err)
	require.False(t, forced.CacheHit)
}
