package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/observability"
	"github.com/noah-isme/copo-api/internal/repository"
)

// AttainmentPolicy carries the tunables that drive attainment math.
type AttainmentPolicy struct {
	Threshold      float64
	DirectWeight   float64
	IndirectWeight float64
}

// PolicyProvider resolves the current attainment policy from settings.
type PolicyProvider interface {
	Policy(ctx context.Context) (AttainmentPolicy, error)
}

// AttainmentService computes CO and PO attainment reports. Results are
// cached in Redis under a version counter per subject and department;
// writes that change inputs bump the counter instead of deleting keys.
type AttainmentService interface {
	AttainmentInvalidator

	SubjectAttainment(ctx context.Context, subjectID uint, academicYear string, refresh bool) (dto.SubjectAttainmentResponse, error)
	DepartmentAttainment(ctx context.Context, departmentID uint, academicYear string, refresh bool) (dto.DepartmentAttainmentResponse, error)
}

type attainmentService struct {
	courseOutcomes  repository.CourseOutcomeRepository
	programOutcomes repository.ProgramOutcomeRepository
	mappings        repository.CoPOMappingRepository
	assessments     repository.DirectAssessmentRepository
	marks           repository.MarksRepository
	surveys         repository.IndirectAssessmentRepository
	responses       repository.StudentResponseRepository
	subjects        repository.SubjectRepository
	snapshots       repository.AttainmentRepository
	policies        PolicyProvider
	cache           *redis.Client
	cacheTTL        time.Duration
	tracer          trace.Tracer
	logger          zerolog.Logger
	now             func() time.Time
}

// NewAttainmentService constructs the attainment service.
func NewAttainmentService(
	courseOutcomes repository.CourseOutcomeRepository,
	programOutcomes repository.ProgramOutcomeRepository,
	mappings repository.CoPOMappingRepository,
	assessments repository.DirectAssessmentRepository,
	marks repository.MarksRepository,
	surveys repository.IndirectAssessmentRepository,
	responses repository.StudentResponseRepository,
	subjects repository.SubjectRepository,
	snapshots repository.AttainmentRepository,
	policies PolicyProvider,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) AttainmentService {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &attainmentService{
		courseOutcomes:  courseOutcomes,
		programOutcomes: programOutcomes,
		mappings:        mappings,
		assessments:     assessments,
		marks:           marks,
		surveys:         surveys,
		responses:       responses,
		subjects:        subjects,
		snapshots:       snapshots,
		policies:        policies,
		cache:           cache,
		cacheTTL:        cacheTTL,
		tracer:          otel.Tracer("copo-api/attainment"),
		logger:          logger.With().Str("component", "attainment_service").Logger(),
		now:             time.Now,
	}
}

func (s *attainmentService) SubjectAttainment(ctx context.Context, subjectID uint, academicYear string, refresh bool) (dto.SubjectAttainmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attainment.subject")
	defer span.End()

	if academicYear == "" {
		return dto.SubjectAttainmentResponse{}, fmt.Errorf("%w: academic year is required", ErrInvalidInput)
	}

	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		return dto.SubjectAttainmentResponse{}, mapNotFound(err)
	}

	cacheKey := s.subjectCacheKey(ctx, subjectID, academicYear)
	if !refresh {
		var cached dto.SubjectAttainmentResponse
		if ok := s.readCache(ctx, cacheKey, &cached); ok {
			cached.CacheHit = true
			return cached, nil
		}
	}

	policy, err := s.policies.Policy(ctx)
	if err != nil {
		return dto.SubjectAttainmentResponse{}, err
	}

	outcomes, err := s.coAttainments(ctx, subjectID, academicYear, policy.Threshold)
	if err != nil {
		return dto.SubjectAttainmentResponse{}, err
	}

	report := dto.SubjectAttainmentResponse{
		SubjectID:    subjectID,
		AcademicYear: academicYear,
		Threshold:    policy.Threshold,
		Outcomes:     outcomes,
		ComputedAt:   s.now(),
	}

	observability.AttainmentRecomputes().WithLabelValues("subject").Inc()
	s.writeCache(ctx, cacheKey, report)
	s.persistSnapshot(ctx, models.Attainment{
		SubjectID:      &subjectID,
		AttainmentType: models.AttainmentTypeCO,
		AcademicYear:   academicYear,
		ComputedAt:     report.ComputedAt,
	}, report)

	return report, nil
}

func (s *attainmentService) DepartmentAttainment(ctx context.Context, departmentID uint, academicYear string, refresh bool) (dto.DepartmentAttainmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attainment.department")
	defer span.End()

	if academicYear == "" {
		return dto.DepartmentAttainmentResponse{}, fmt.Errorf("%w: academic year is required", ErrInvalidInput)
	}

	cacheKey := s.departmentCacheKey(ctx, departmentID, academicYear)
	if !refresh {
		var cached dto.DepartmentAttainmentResponse
		if ok := s.readCache(ctx, cacheKey, &cached); ok {
			cached.CacheHit = true
			return cached, nil
		}
	}

	policy, err := s.policies.Policy(ctx)
	if err != nil {
		return dto.DepartmentAttainmentResponse{}, err
	}

	programOutcomes, err := s.programOutcomes.ListByDepartment(ctx, departmentID)
	if err != nil {
		return dto.DepartmentAttainmentResponse{}, err
	}

	direct, mapped, err := s.directPOAttainment(ctx, departmentID, academicYear, policy.Threshold)
	if err != nil {
		return dto.DepartmentAttainmentResponse{}, err
	}

	indirect, err := s.indirectAttainment(ctx, departmentID, academicYear)
	if err != nil {
		return dto.DepartmentAttainmentResponse{}, err
	}

	outcomes := make([]dto.POAttainment, 0, len(programOutcomes))
	for _, po := range programOutcomes {
		entry := dto.POAttainment{
			ProgramOutcomeID: po.ID,
			Number:           po.Number,
			Direct:           round2(direct[po.ID]),
			Indirect:         round2(indirect),
			MappedOutcomes:   mapped[po.ID],
		}
		entry.Overall = round2(entry.Direct*policy.DirectWeight/100 + entry.Indirect*policy.IndirectWeight/100)
		outcomes = append(outcomes, entry)
	}

	report := dto.DepartmentAttainmentResponse{
		DepartmentID:   departmentID,
		AcademicYear:   academicYear,
		DirectWeight:   policy.DirectWeight,
		IndirectWeight: policy.IndirectWeight,
		Outcomes:       outcomes,
		ComputedAt:     s.now(),
	}

	observability.AttainmentRecomputes().WithLabelValues("department").Inc()
	s.writeCache(ctx, cacheKey, report)
	s.persistSnapshot(ctx, models.Attainment{
		DepartmentID:   &departmentID,
		AttainmentType: models.AttainmentTypePO,
		AcademicYear:   academicYear,
		ComputedAt:     report.ComputedAt,
	}, report)

	return report, nil
}

// InvalidateSubject bumps the subject's cache version and, because CO
// attainment feeds PO roll-ups, its department's version too.
func (s *attainmentService) InvalidateSubject(ctx context.Context, subjectID uint) {
	if err := s.cache.Incr(ctx, subjectVersionKey(subjectID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("subject_id", subjectID).Msg("failed to bump subject cache version")
	}

	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return
	}
	s.InvalidateDepartment(ctx, subject.DepartmentID)
}

// InvalidateDepartment bumps the department's cache version.
func (s *attainmentService) InvalidateDepartment(ctx context.Context, departmentID uint) {
	if err := s.cache.Incr(ctx, departmentVersionKey(departmentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("department_id", departmentID).Msg("failed to bump department cache version")
	}
}

// coAttainments computes per-CO attainment for one subject and year: the
// percentage of participating students whose aggregate score on that CO
// meets the threshold.
func (s *attainmentService) coAttainments(ctx context.Context, subjectID uint, academicYear string, threshold float64) ([]dto.COAttainment, error) {
	outcomes, err := s.courseOutcomes.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	assessments, err := s.assessments.ListBySubject(ctx, subjectID, academicYear)
	if err != nil {
		return nil, err
	}
	maxByAssessment := make(map[uint]float64, len(assessments))
	for _, assessment := range assessments {
		maxByAssessment[assessment.ID] = assessment.MaxMarks
	}

	marks, err := s.marks.ListBySubject(ctx, subjectID, academicYear)
	if err != nil {
		return nil, err
	}

	type tally struct {
		obtained float64
		possible float64
	}
	perCO := make(map[uint]map[uint]*tally)
	for _, mark := range marks {
		maxMarks, ok := maxByAssessment[mark.AssessmentID]
		if !ok || maxMarks <= 0 {
			continue
		}
		students := perCO[mark.CourseOutcomeID]
		if students == nil {
			students = make(map[uint]*tally)
			perCO[mark.CourseOutcomeID] = students
		}
		entry := students[mark.StudentID]
		if entry == nil {
			entry = &tally{}
			students[mark.StudentID] = entry
		}
		entry.obtained += mark.MarksObtained
		entry.possible += maxMarks
	}

	results := make([]dto.COAttainment, 0, len(outcomes))
	for _, outcome := range outcomes {
		students := perCO[outcome.ID]
		total := len(students)
		cleared := 0
		for _, entry := range students {
			if entry.possible <= 0 {
				continue
			}
			if entry.obtained/entry.possible*100 >= threshold {
				cleared++
			}
		}

		attainment := 0.0
		if total > 0 {
			attainment = round2(float64(cleared) / float64(total) * 100)
		}

		results = append(results, dto.COAttainment{
			CourseOutcomeID: outcome.ID,
			Number:          outcome.Number,
			StudentsTotal:   total,
			StudentsCleared: cleared,
			Attainment:      attainment,
		})
	}

	return results, nil
}

// directPOAttainment rolls CO attainment up to POs across every subject
// in the department, weighted by the correlation level of each edge.
func (s *attainmentService) directPOAttainment(ctx context.Context, departmentID uint, academicYear string, threshold float64) (map[uint]float64, map[uint]int, error) {
	subjects, err := s.subjects.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, nil, err
	}

	weightSum := make(map[uint]float64)
	weightedSum := make(map[uint]float64)
	mapped := make(map[uint]int)

	for _, subject := range subjects {
		outcomes, err := s.coAttainments(ctx, subject.ID, academicYear, threshold)
		if err != nil {
			return nil, nil, err
		}
		attainmentByCO := make(map[uint]float64, len(outcomes))
		for _, outcome := range outcomes {
			attainmentByCO[outcome.CourseOutcomeID] = outcome.Attainment
		}

		mappings, err := s.mappings.ListBySubject(ctx, subject.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, mapping := range mappings {
			attainment, ok := attainmentByCO[mapping.CourseOutcomeID]
			if !ok {
				continue
			}
			level := float64(mapping.CorrelationLevel)
			weightSum[mapping.ProgramOutcomeID] += level
			weightedSum[mapping.ProgramOutcomeID] += level * attainment
			mapped[mapping.ProgramOutcomeID]++
		}
	}

	direct := make(map[uint]float64, len(weightSum))
	for poID, sum := range weightSum {
		if sum > 0 {
			direct[poID] = weightedSum[poID] / sum
		}
	}
	return direct, mapped, nil
}

// indirectAttainment averages every answer across the department's
// surveys for the year and scales the 1..5 mean onto 0..100.
func (s *attainmentService) indirectAttainment(ctx context.Context, departmentID uint, academicYear string) (float64, error) {
	surveys, err := s.surveys.ListByDepartment(ctx, departmentID, academicYear)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	count := 0
	for _, survey := range surveys {
		responses, err := s.responses.ListByAssessment(ctx, survey.ID)
		if err != nil {
			return 0, err
		}
		for _, response := range responses {
			var answers map[string]int
			if err := json.Unmarshal(response.Responses, &answers); err != nil {
				s.logger.Warn().Err(err).Uint("response_id", response.ID).Msg("skipping malformed survey response")
				continue
			}
			for _, value := range answers {
				sum += float64(value)
				count++
			}
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sum / float64(count) / 5 * 100, nil
}

func (s *attainmentService) subjectCacheKey(ctx context.Context, subjectID uint, academicYear string) string {
	version := s.cacheVersion(ctx, subjectVersionKey(subjectID))
	return fmt.Sprintf("attainment:subject:%d:%s:v%s", subjectID, academicYear, version)
}

func (s *attainmentService) departmentCacheKey(ctx context.Context, departmentID uint, academicYear string) string {
	version := s.cacheVersion(ctx, departmentVersionKey(departmentID))
	return fmt.Sprintf("attainment:department:%d:%s:v%s", departmentID, academicYear, version)
}

func (s *attainmentService) cacheVersion(ctx context.Context, key string) string {
	version, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read cache version")
		}
		return "0"
	}
	return version
}

func (s *attainmentService) readCache(ctx context.Context, key string, target interface{}) bool {
	payload, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read attainment cache")
		}
		return false
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dropping malformed attainment cache entry")
		return false
	}
	return true
}

func (s *attainmentService) writeCache(ctx context.Context, key string, report interface{}) {
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to write attainment cache")
	}
}

func (s *attainmentService) persistSnapshot(ctx context.Context, snapshot models.Attainment, report interface{}) {
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	snapshot.AttainmentData = datatypes.JSON(payload)
	if err := s.snapshots.Save(ctx, &snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist attainment snapshot")
	}
}

func subjectVersionKey(subjectID uint) string {
	return fmt.Sprintf("attainment:ver:subject:%d", subjectID)
}

func departmentVersionKey(departmentID uint) string {
	return fmt.Sprintf("attainment:ver:department:%d", departmentID)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
