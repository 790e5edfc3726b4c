package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// CoursePlanHandler exposes course plan endpoints.
type CoursePlanHandler struct {
	service service.CoursePlanService
	logger  zerolog.Logger
}

// NewCoursePlanHandler constructs the course plan handler.
func NewCoursePlanHandler(service service.CoursePlanService, logger zerolog.Logger) *CoursePlanHandler {
	return &CoursePlanHandler{
		service: service,
		logger:  logger.With().Str("component", "course_plan_handler").Logger(),
	}
}

// Register wires the read-side course plan routes.
func (h *CoursePlanHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

// RegisterManage wires the course plan write routes.
func (h *CoursePlanHandler) RegisterManage(router fiber.Router) {
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CoursePlanHandler) create(c *fiber.Ctx) error {
	var req dto.CoursePlanCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	plan, err := h.service.Create(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create course plan")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course plan created", plan)
}

func (h *CoursePlanHandler) list(c *fiber.Ctx) error {
	if subjectID, err := parseQueryUint(c, "subjectId"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	} else if subjectID != nil {
		plan, err := h.service.GetBySubject(c.UserContext(), *subjectID)
		if err != nil {
			return sendServiceError(c, h.logger, err, "failed to load course plan")
		}
		return utils.SendSuccess(c, "course plan retrieved", plan)
	}

	plans, err := h.service.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list course plans")
	}

	return utils.SendSuccess(c, "course plans retrieved", plans)
}

func (h *CoursePlanHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course plan id")
	}

	plan, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load course plan")
	}

	return utils.SendSuccess(c, "course plan retrieved", plan)
}

func (h *CoursePlanHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course plan id")
	}

	var req dto.CoursePlanUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	plan, err := h.service.Update(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update course plan")
	}

	return utils.SendSuccess(c, "course plan updated", plan)
}

func (h *CoursePlanHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course plan id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete course plan")
	}

	return utils.SendSuccess(c, "course plan deleted", nil)
}
