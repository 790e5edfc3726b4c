package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// SettingHandler exposes system settings and branding endpoints.
type SettingHandler struct {
	service service.SettingService
	logger  zerolog.Logger
}

// NewSettingHandler constructs the setting handler.
func NewSettingHandler(service service.SettingService, logger zerolog.Logger) *SettingHandler {
	return &SettingHandler{
		service: service,
		logger:  logger.With().Str("component", "setting_handler").Logger(),
	}
}

// Register wires the read-side setting routes.
func (h *SettingHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:key", h.get)
}

// RegisterAdmin wires the admin-only setting routes.
func (h *SettingHandler) RegisterAdmin(router fiber.Router) {
	router.Put("/", h.upsert)
	router.Post("/logo", h.uploadLogo)
}

func (h *SettingHandler) list(c *fiber.Ctx) error {
	settings, err := h.service.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list settings")
	}

	return utils.SendSuccess(c, "settings retrieved", settings)
}

func (h *SettingHandler) get(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "setting key required")
	}

	setting, err := h.service.Get(c.UserContext(), key)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load setting")
	}

	return utils.SendSuccess(c, "setting retrieved", setting)
}

func (h *SettingHandler) upsert(c *fiber.Ctx) error {
	var req dto.SettingUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	setting, err := h.service.Upsert(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update setting")
	}

	return utils.SendSuccess(c, "setting updated", setting)
}

func (h *SettingHandler) uploadLogo(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.UploadLogo(c.UserContext(), actorFromContext(c), file)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to upload logo")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "logo uploaded", result)
}
