package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// OutcomeHandler exposes CO, PO and CO-PO mapping endpoints.
type OutcomeHandler struct {
	service service.OutcomeService
	logger  zerolog.Logger
}

// NewOutcomeHandler constructs the outcome handler.
func NewOutcomeHandler(service service.OutcomeService, logger zerolog.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		service: service,
		logger:  logger.With().Str("component", "outcome_handler").Logger(),
	}
}

// Register wires the read-side outcome routes.
func (h *OutcomeHandler) Register(router fiber.Router) {
	router.Get("/course-outcomes", h.listCourseOutcomes)
	router.Get("/program-outcomes", h.listProgramOutcomes)
	router.Get("/mappings", h.listMappings)
}

// RegisterManage wires the outcome write routes.
func (h *OutcomeHandler) RegisterManage(router fiber.Router) {
	router.Post("/course-outcomes", h.createCourseOutcome)
	router.Put("/course-outcomes/:id", h.updateCourseOutcome)
	router.Delete("/course-outcomes/:id", h.deleteCourseOutcome)

	router.Post("/program-outcomes", h.createProgramOutcome)
	router.Put("/program-outcomes/:id", h.updateProgramOutcome)
	router.Delete("/program-outcomes/:id", h.deleteProgramOutcome)

	router.Post("/mappings", h.createMapping)
	router.Put("/mappings/:id", h.updateMapping)
	router.Delete("/mappings/:id", h.deleteMapping)
}

func (h *OutcomeHandler) createCourseOutcome(c *fiber.Ctx) error {
	var req dto.CourseOutcomeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	outcome, err := h.service.CreateCourseOutcome(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create course outcome")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course outcome created", outcome)
}

func (h *OutcomeHandler) listCourseOutcomes(c *fiber.Ctx) error {
	subjectID, err := parseQueryUint(c, "subjectId")
	if err != nil || subjectID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "subjectId is required")
	}

	outcomes, err := h.service.ListCourseOutcomes(c.UserContext(), *subjectID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list course outcomes")
	}

	return utils.SendSuccess(c, "course outcomes retrieved", outcomes)
}

func (h *OutcomeHandler) updateCourseOutcome(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course outcome id")
	}

	var req dto.CourseOutcomeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	outcome, err := h.service.UpdateCourseOutcome(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update course outcome")
	}

	return utils.SendSuccess(c, "course outcome updated", outcome)
}

func (h *OutcomeHandler) deleteCourseOutcome(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course outcome id")
	}

	if err := h.service.DeleteCourseOutcome(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete course outcome")
	}

	return utils.SendSuccess(c, "course outcome deleted", nil)
}

func (h *OutcomeHandler) createProgramOutcome(c *fiber.Ctx) error {
	var req dto.ProgramOutcomeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	outcome, err := h.service.CreateProgramOutcome(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create program outcome")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "program outcome created", outcome)
}

func (h *OutcomeHandler) listProgramOutcomes(c *fiber.Ctx) error {
	departmentID, err := parseQueryUint(c, "departmentId")
	if err != nil || departmentID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "departmentId is required")
	}

	outcomes, err := h.service.ListProgramOutcomes(c.UserContext(), *departmentID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list program outcomes")
	}

	return utils.SendSuccess(c, "program outcomes retrieved", outcomes)
}

func (h *OutcomeHandler) updateProgramOutcome(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid program outcome id")
	}

	var req dto.ProgramOutcomeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	outcome, err := h.service.UpdateProgramOutcome(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update program outcome")
	}

	return utils.SendSuccess(c, "program outcome updated", outcome)
}

func (h *OutcomeHandler) deleteProgramOutcome(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid program outcome id")
	}

	if err := h.service.DeleteProgramOutcome(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete program outcome")
	}

	return utils.SendSuccess(c, "program outcome deleted", nil)
}

func (h *OutcomeHandler) createMapping(c *fiber.Ctx) error {
	var req dto.MappingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	mapping, err := h.service.CreateMapping(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create mapping")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mapping created", mapping)
}

func (h *OutcomeHandler) listMappings(c *fiber.Ctx) error {
	subjectID, err := parseQueryUint(c, "subjectId")
	if err != nil || subjectID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "subjectId is required")
	}

	mappings, err := h.service.ListMappingsBySubject(c.UserContext(), *subjectID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list mappings")
	}

	return utils.SendSuccess(c, "mappings retrieved", mappings)
}

func (h *OutcomeHandler) updateMapping(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid mapping id")
	}

	var req dto.MappingUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	mapping, err := h.service.UpdateMapping(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update mapping")
	}

	return utils.SendSuccess(c, "mapping updated", mapping)
}

func (h *OutcomeHandler) deleteMapping(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid mapping id")
	}

	if err := h.service.DeleteMapping(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete mapping")
	}

	return utils.SendSuccess(c, "mapping deleted", nil)
}
