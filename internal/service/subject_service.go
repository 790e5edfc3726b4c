package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

// Notifier publishes in-app notifications. Failures are logged, never
// surfaced to the caller of the originating operation.
type Notifier interface {
	Publish(ctx context.Context, req dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// SubjectService manages subjects and faculty assignments.
type SubjectService interface {
	Create(ctx context.Context, actor Actor, req dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	Get(ctx context.Context, id uint) (dto.SubjectResponse, error)
	List(ctx context.Context, actor Actor, departmentID *uint) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	Assign(ctx context.Context, actor Actor, subjectID uint, req dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Unassign(ctx context.Context, actor Actor, subjectID, facultyID uint) error
	ListAssignments(ctx context.Context, subjectID uint) ([]dto.AssignmentResponse, error)
}

type subjectService struct {
	subjects    repository.SubjectRepository
	assignments repository.SubjectAssignmentRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	notifier    Notifier
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubjectService constructs the subject service.
func NewSubjectService(
	subjects repository.SubjectRepository,
	assignments repository.SubjectAssignmentRepository,
	users repository.UserRepository,
	departments repository.DepartmentRepository,
	notifier Notifier,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubjectService {
	return &subjectService{
		subjects:    subjects,
		assignments: assignments,
		users:       users,
		departments: departments,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "subject_service").Logger(),
	}
}

func (s *subjectService) Create(ctx context.Context, actor Actor, req dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	if err := s.checkDepartmentScope(actor, req.DepartmentID); err != nil {
		return dto.SubjectResponse{}, err
	}

	if _, err := s.departments.GetByID(ctx, req.DepartmentID); err != nil {
		return dto.SubjectResponse{}, fmt.Errorf("%w: department %d does not exist", ErrInvalidInput, req.DepartmentID)
	}

	subject := models.Subject{
		DepartmentID: req.DepartmentID,
		Name:         strings.TrimSpace(req.Name),
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Semester:     req.Semester,
		Status:       models.SubjectStatusPending,
	}

	if err := s.subjects.Create(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Str("code", subject.Code).Msg("subject created")
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Get(ctx context.Context, id uint) (dto.SubjectResponse, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, mapNotFound(err)
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) List(ctx context.Context, actor Actor, departmentID *uint) ([]dto.SubjectResponse, error) {
	var (
		subjects []models.Subject
		err      error
	)

	switch {
	case actor.Role == models.RoleFaculty:
		subjects, err = s.subjects.ListByFaculty(ctx, actor.ID)
	case departmentID != nil:
		subjects, err = s.subjects.ListByDepartment(ctx, *departmentID)
	case actor.Role == models.RoleHOD && actor.DepartmentID != nil:
		subjects, err = s.subjects.ListByDepartment(ctx, *actor.DepartmentID)
	default:
		subjects, err = s.subjects.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, dto.NewSubjectResponse(subject))
	}
	return responses, nil
}

func (s *subjectService) Update(ctx context.Context, actor Actor, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, mapNotFound(err)
	}

	if err := s.checkDepartmentScope(actor, subject.DepartmentID); err != nil {
		return dto.SubjectResponse{}, err
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		subject.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Semester != nil {
		subject.Semester = *req.Semester
	}
	if req.Status != nil {
		subject.Status = *req.Status
	}

	if err := s.subjects.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Delete(ctx context.Context, actor Actor, id uint) error {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.checkDepartmentScope(actor, subject.DepartmentID); err != nil {
		return err
	}

	if err := s.subjects.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("subject_id", id).Msg("subject deleted")
	return nil
}

func (s *subjectService) Assign(ctx context.Context, actor Actor, subjectID uint, req dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssignmentResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return dto.AssignmentResponse{}, mapNotFound(err)
	}

	if err := s.checkDepartmentScope(actor, subject.DepartmentID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	faculty, err := s.users.GetByID(ctx, req.FacultyID)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: faculty %d does not exist", ErrInvalidInput, req.FacultyID)
	}
	if faculty.Role != models.RoleFaculty && faculty.Role != models.RoleHOD {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: user %d cannot teach a subject", ErrInvalidInput, req.FacultyID)
	}

	exists, err := s.assignments.Exists(ctx, subjectID, req.FacultyID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if exists {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: faculty %d is already assigned", ErrConflict, req.FacultyID)
	}

	assignment := models.SubjectAssignment{
		SubjectID:  subjectID,
		FacultyID:  req.FacultyID,
		AssignedBy: actor.ID,
		AssignedAt: time.Now(),
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	entityID := subject.ID
	if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:     req.FacultyID,
		Type:       "subject_assigned",
		Message:    fmt.Sprintf("You have been assigned to %s (%s)", subject.Name, subject.Code),
		EntityType: "subject",
		EntityID:   &entityID,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("faculty_id", req.FacultyID).Msg("failed to publish assignment notification")
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *subjectService) Unassign(ctx context.Context, actor Actor, subjectID, facultyID uint) error {
	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.checkDepartmentScope(actor, subject.DepartmentID); err != nil {
		return err
	}

	exists, err := s.assignments.Exists(ctx, subjectID, facultyID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	return s.assignments.Delete(ctx, subjectID, facultyID)
}

func (s *subjectService) ListAssignments(ctx context.Context, subjectID uint) ([]dto.AssignmentResponse, error) {
	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		return nil, mapNotFound(err)
	}

	assignments, err := s.assignments.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewAssignmentResponse(assignment))
	}
	return responses, nil
}

// checkDepartmentScope restricts heads of department to their own
// department. Admins pass unconditionally.
func (s *subjectService) checkDepartmentScope(actor Actor, departmentID uint) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleHOD {
		if actor.DepartmentID != nil && *actor.DepartmentID == departmentID {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}
