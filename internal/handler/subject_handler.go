package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// SubjectHandler exposes subject and assignment endpoints.
type SubjectHandler struct {
	service service.SubjectService
	logger  zerolog.Logger
}

// NewSubjectHandler constructs the subject handler.
func NewSubjectHandler(service service.SubjectService, logger zerolog.Logger) *SubjectHandler {
	return &SubjectHandler{
		service: service,
		logger:  logger.With().Str("component", "subject_handler").Logger(),
	}
}

// Register wires the read-side subject routes.
func (h *SubjectHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/assignments", h.listAssignments)
}

// RegisterManage wires the subject write routes.
func (h *SubjectHandler) RegisterManage(router fiber.Router) {
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/assignments", h.assign)
	router.Delete("/:id/assignments/:facultyId", h.unassign)
}

func (h *SubjectHandler) create(c *fiber.Ctx) error {
	var req dto.SubjectCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.Create(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create subject")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *SubjectHandler) list(c *fiber.Ctx) error {
	departmentID, err := parseQueryUint(c, "departmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid department id")
	}

	subjects, err := h.service.List(c.UserContext(), actorFromContext(c), departmentID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list subjects")
	}

	return utils.SendSuccess(c, "subjects retrieved", subjects)
}

func (h *SubjectHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	subject, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load subject")
	}

	return utils.SendSuccess(c, "subject retrieved", subject)
}

func (h *SubjectHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	var req dto.SubjectUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.Update(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update subject")
	}

	return utils.SendSuccess(c, "subject updated", subject)
}

func (h *SubjectHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete subject")
	}

	return utils.SendSuccess(c, "subject deleted", nil)
}

func (h *SubjectHandler) assign(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	var req dto.AssignmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Assign(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to assign faculty")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "faculty assigned", assignment)
}

func (h *SubjectHandler) unassign(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}
	facultyID, err := parseIDParam(c, "facultyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faculty id")
	}

	if err := h.service.Unassign(c.UserContext(), actorFromContext(c), id, facultyID); err != nil {
		return sendServiceError(c, h.logger, err, "failed to remove assignment")
	}

	return utils.SendSuccess(c, "assignment removed", nil)
}

func (h *SubjectHandler) listAssignments(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	assignments, err := h.service.ListAssignments(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list assignments")
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}
