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

type invalidatorSpy struct {
	subjects    []uint
	departments []uint
}

func (i *invalidatorSpy) InvalidateSubject(ctx context.Context, subjectID uint) {
	i.subjects = append(i.subjects, subjectID)
}

func (i *invalidatorSpy) InvalidateDepartment(ctx context.Context, departmentID uint) {
	i.departments = append(i.departments, departmentID)
}

func newAssessmentFixture(t *testing.T) (AssessmentService, *invalidatorSpy, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	spy := &invalidatorSpy{}
	svc := NewAssessmentService(
		repository.NewDirectAssessmentRepository(db),
		repository.NewMarksRepository(db),
		repository.NewIndirectAssessmentRepository(db),
		repository.NewStudentResponseRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewSubjectAssignmentRepository(db),
		spy,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc, spy, db
}

func TestRecordMarksBoundsAndInvalidation(t *testing.T) {
	svc, spy, db := newAssessmentFixture(t)
	ctx := context.Background()

	department := models.Department{Name: "Computer Science"}
	require.NoError(t, db.Create(&department).Error)
	subject := models.Subject{DepartmentID: department.ID, Name: "Operating Systems", Code: "CS301", Semester: 5}
	require.NoError(t, db.Create(&subject).Error)
	co := models.CourseOutcome{SubjectID: subject.ID, Number: 1, Statement: "Explain process scheduling"}
	require.NoError(t, db.Create(&co).Error)

	admin := Actor{ID: 1, Role: models.RoleAdmin}

	assessment, err := svc.CreateDirect(ctx, admin, dto.DirectAssessmentCreateRequest{
		SubjectID:      subject.ID,
		Name:           "Midterm",
		AssessmentType: "exam",
		MaxMarks:       50,
		AcademicYear:   "2025-26",
	})
	require.NoError(t, err)
	require.Empty(t, spy.subjects)

	_, err = svc.RecordMarks(ctx, admin, assessment.ID, dto.MarksUpsertRequest{
		Entries: []dto.MarkEntry{
			{StudentID: 101, CourseOutcomeID: co.ID, MarksObtained: 60},
		},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	stored, err := svc.RecordMarks(ctx, admin, assessment.ID, dto.MarksUpsertRequest{
		Entries: []dto.MarkEntry{
			{StudentID: 101, CourseOutcomeID: co.ID, MarksObtained: 42},
			{StudentID: 102, CourseOutcomeID: co.ID, MarksObtained: 28},
		},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Len(t, spy.subjects, 1)

	// Re-recording a student's marks replaces the previous row.
	stored, err = svc.RecordMarks(ctx, admin, assessment.ID, dto.MarksUpsertRequest{
		Entries: []dto.MarkEntry{
			{StudentID: 101, CourseOutcomeID: co.ID, MarksObtained: 45},
		},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, mark := range stored {
		if mark.StudentID == 101 {
			require.InDelta(t, 45.0, mark.MarksObtained, 0.001)
		}
	}
}

func TestRecordMarksRequiresTeachingAccess(t *testing.T) {
	svc, _, db := newAssessmentFixture(t)
	ctx := context.Background()

	department := models.Department{Name: "Computer Science"}
	require.NoError(t, db.Create(&department).Error)
	subject := models.Subject{DepartmentID: department.ID, Name: "Operating Systems", Code: "CS301", Semester: 5}
	require.NoError(t, db.Create(&subject).Error)
	assessment := models.DirectAssessment{SubjectID: subject.ID, Name: "Quiz", AssessmentType: "quiz", MaxMarks: 10, AcademicYear: "2025-26"}
	require.NoError(t, db.Create(&assessment).Error)

	unassigned := Actor{ID: 55, Role: models.RoleFaculty, DepartmentID: uintPointer(department.ID)}
	_, err := svc.RecordMarks(ctx, unassigned, assessment.ID, dto.MarksUpsertRequest{
		Entries: []dto.MarkEntry{{StudentID: 101, CourseOutcomeID: 1, MarksObtained: 5}},
	})
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, db.Create(&models.SubjectAssignment{SubjectID: subject.ID, FacultyID: 55, AssignedBy: 1}).Error)

	_, err = svc.RecordMarks(ctx, unassigned, assessment.ID, dto.MarksUpsertRequest{
		Entries: []dto.MarkEntry{{StudentID: 101, CourseOutcomeID: 1, MarksObtained: 5}},
	})
	require.NoError(t, err)
}

func TestSubmitResponseValidatesAgainstSurvey(t *testing.T) {
	svc, spy, db := newAssessmentFixture(t)
	ctx := context.Background()

	department := models.Department{Name: "Computer Science"}
	require.NoError(t, db.Create(&department).Error)

	hod := Actor{ID: 2, Role: models.RoleHOD, DepartmentID: uintPointer(department.ID)}
	survey, err := svc.CreateIndirect(ctx, hod, dto.IndirectAssessmentCreateRequest{
		DepartmentID: department.ID,
		Name:         "Exit Survey",
		AcademicYear: "2025-26",
		Questions: []dto.SurveyQuestion{
			{ID: "q1", Prompt: "Rate the program outcomes coverage"},
			{ID: "q2", Prompt: "Rate the laboratory facilities"},
		},
	})
	require.NoError(t, err)

	student := Actor{ID: 101, Role: models.RoleStudent, DepartmentID: uintPointer(department.ID)}

	// Out-of-scale values are rejected.
	_, err = svc.SubmitResponse(ctx, student, survey.ID, dto.ResponseSubmitRequest{
		Responses: map[string]int{"q1": 9, "q2": 3},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	// Unknown question ids are rejected.
	_, err = svc.SubmitResponse(ctx, student, survey.ID, dto.ResponseSubmitRequest{
		Responses: map[string]int{"q1": 4, "q2": 3, "q9": 5},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	// Partial answers are rejected.
	_, err = svc.SubmitResponse(ctx, student, survey.ID, dto.ResponseSubmitRequest{
		Responses: map[string]int{"q1": 4},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	response, err := svc.SubmitResponse(ctx, student, survey.ID, dto.ResponseSubmitRequest{
		Responses: map[string]int{"q1": 4, "q2": 3},
	})
	require.NoError(t, err)
	require.Equal(t, student.ID, response.StudentID)
	require.Contains(t, spy.departments, department.ID)

	// One response per student per survey.
	_, err = svc.SubmitResponse(ctx, student, survey.ID, dto.ResponseSubmitRequest{
		Responses: map[string]int{"q1": 5, "q2": 5},
	})
	require.ErrorIs(t, err, ErrConflict)
}
