package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// SurveyHandler exposes indirect assessment and response endpoints.
type SurveyHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewSurveyHandler constructs the survey handler.
func NewSurveyHandler(service service.AssessmentService, logger zerolog.Logger) *SurveyHandler {
	return &SurveyHandler{
		service: service,
		logger:  logger.With().Str("component", "survey_handler").Logger(),
	}
}

// Register wires the read-side survey routes.
func (h *SurveyHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

// RegisterManage wires the survey definition write routes.
func (h *SurveyHandler) RegisterManage(router fiber.Router) {
	router.Post("/", h.create)
	router.Delete("/:id", h.delete)
}

// RegisterSubmit wires the student response route.
func (h *SurveyHandler) RegisterSubmit(router fiber.Router) {
	router.Post("/:id/responses", h.submitResponse)
}

func (h *SurveyHandler) create(c *fiber.Ctx) error {
	var req dto.IndirectAssessmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	survey, err := h.service.CreateIndirect(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create survey")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "survey created", survey)
}

func (h *SurveyHandler) list(c *fiber.Ctx) error {
	departmentID, err := parseQueryUint(c, "departmentId")
	if err != nil || departmentID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "departmentId is required")
	}

	surveys, err := h.service.ListIndirect(c.UserContext(), *departmentID, c.Query("academicYear"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list surveys")
	}

	return utils.SendSuccess(c, "surveys retrieved", surveys)
}

func (h *SurveyHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	survey, err := h.service.GetIndirect(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load survey")
	}

	return utils.SendSuccess(c, "survey retrieved", survey)
}

func (h *SurveyHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	if err := h.service.DeleteIndirect(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete survey")
	}

	return utils.SendSuccess(c, "survey deleted", nil)
}

func (h *SurveyHandler) submitResponse(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	var req dto.ResponseSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.SubmitResponse(c.UserContext(), actorFromContext(c), id, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to submit response")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "response recorded", response)
}
