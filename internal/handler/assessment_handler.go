package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// AssessmentHandler exposes direct assessment and marks endpoints.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the assessment handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register wires the read-side assessment routes.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/marks", h.listMarks)
}

// RegisterManage wires the assessment write routes.
func (h *AssessmentHandler) RegisterManage(router fiber.Router) {
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/marks", h.recordMarks)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var req dto.DirectAssessmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.CreateDirect(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create assessment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment created", assessment)
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	subjectID, err := parseQueryUint(c, "subjectId")
	if err != nil || subjectID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "subjectId is required")
	}

	assessments, err := h.service.ListDirect(c.UserContext(), *subjectID, c.Query("academicYear"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list assessments")
	}

	return utils.SendSuccess(c, "assessments retrieved", assessments)
}

func (h *AssessmentHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment id")
	}

	assessment, err := h.service.GetDirect(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load assessment")
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}

func (h *AssessmentHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment id")
	}

	var req dto.DirectAssessmentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.UpdateDirect(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update assessment")
	}

	return utils.SendSuccess(c, "assessment updated", assessment)
}

func (h *AssessmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment id")
	}

	if err := h.service.DeleteDirect(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete assessment")
	}

	return utils.SendSuccess(c, "assessment deleted", nil)
}

func (h *AssessmentHandler) recordMarks(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment id")
	}

	var req dto.MarksUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	marks, err := h.service.RecordMarks(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to record marks")
	}

	return utils.SendSuccess(c, "marks recorded", marks)
}

func (h *AssessmentHandler) listMarks(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment id")
	}

	marks, err := h.service.ListMarks(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list marks")
	}

	return utils.SendSuccess(c, "marks retrieved", marks)
}
