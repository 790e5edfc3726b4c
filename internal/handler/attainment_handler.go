package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// AttainmentHandler exposes CO and PO attainment reports.
type AttainmentHandler struct {
	service service.AttainmentService
	logger  zerolog.Logger
}

// NewAttainmentHandler constructs the attainment handler.
func NewAttainmentHandler(service service.AttainmentService, logger zerolog.Logger) *AttainmentHandler {
	return &AttainmentHandler{
		service: service,
		logger:  logger.With().Str("component", "attainment_handler").Logger(),
	}
}

// Register wires the attainment routes.
func (h *AttainmentHandler) Register(router fiber.Router) {
	router.Get("/subjects/:id", h.subject)
	router.Get("/departments/:id", h.department)
}

func (h *AttainmentHandler) subject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	report, err := h.service.SubjectAttainment(c.UserContext(), id, c.Query("academicYear"), refreshRequested(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to compute subject attainment")
	}

	setCacheHeader(c, report.CacheHit)
	return utils.SendSuccess(c, "subject attainment computed", report)
}

func (h *AttainmentHandler) department(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid department id")
	}

	report, err := h.service.DepartmentAttainment(c.UserContext(), id, c.Query("academicYear"), refreshRequested(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to compute department attainment")
	}

	setCacheHeader(c, report.CacheHit)
	return utils.SendSuccess(c, "department attainment computed", report)
}

func refreshRequested(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Query("refresh"), "true")
}

func setCacheHeader(c *fiber.Ctx, hit bool) {
	if hit {
		c.Set("X-Cache-Hit", "true")
		return
	}
	c.Set("X-Cache-Hit", "false")
}
