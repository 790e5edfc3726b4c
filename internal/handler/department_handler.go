package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// DepartmentHandler exposes department management endpoints.
type DepartmentHandler struct {
	service service.DepartmentService
	logger  zerolog.Logger
}

// NewDepartmentHandler constructs the department handler.
func NewDepartmentHandler(service service.DepartmentService, logger zerolog.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		service: service,
		logger:  logger.With().Str("component", "department_handler").Logger(),
	}
}

// Register wires the department routes.
func (h *DepartmentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

// RegisterAdmin wires the admin-only department routes.
func (h *DepartmentHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *DepartmentHandler) create(c *fiber.Ctx) error {
	var req dto.DepartmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	department, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create department")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "department created", department)
}

func (h *DepartmentHandler) list(c *fiber.Ctx) error {
	departments, err := h.service.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list departments")
	}

	return utils.SendSuccess(c, "departments retrieved", departments)
}

func (h *DepartmentHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid department id")
	}

	department, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load department")
	}

	return utils.SendSuccess(c, "department retrieved", department)
}

func (h *DepartmentHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid department id")
	}

	var req dto.DepartmentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	department, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update department")
	}

	return utils.SendSuccess(c, "department updated", department)
}

func (h *DepartmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid department id")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete department")
	}

	return utils.SendSuccess(c, "department deleted", nil)
}
