package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/middleware"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/utils"
)

// AuthHandler exposes registration, session login and password reset.
type AuthHandler struct {
	service    service.AuthService
	cookieName string
	sessionTTL time.Duration
	logger     zerolog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(service service.AuthService, cookieName string, sessionTTL time.Duration, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the session and password-reset routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/logout", h.logout)
	router.Post("/password-reset/request", h.requestPasswordReset)
	router.Post("/password-reset/confirm", h.confirmPasswordReset)
}

// RegisterSignup wires the registration route. It is registered on its
// own group so account creation can carry the audit middleware.
func (h *AuthHandler) RegisterSignup(router fiber.Router) {
	router.Post("/register", h.register)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var actor *service.Actor
	if resolved := actorFromContext(c); resolved.ID != 0 {
		actor = &resolved
	}

	user, sessionID, err := h.service.Register(c.UserContext(), actor, req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to register user")
	}

	if sessionID != "" {
		h.setSessionCookie(c, sessionID)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user registered", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, sessionID, err := h.service.Login(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to log in")
	}

	h.setSessionCookie(c, sessionID)
	return utils.SendSuccess(c, "login successful", user)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(h.cookieName)
	if sessionID == "" {
		if stored, ok := c.Locals(middleware.LocalSessionID).(string); ok {
			sessionID = stored
		}
	}

	if err := h.service.Logout(c.UserContext(), sessionID); err != nil {
		return sendServiceError(c, h.logger, err, "failed to log out")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return utils.SendSuccess(c, "logout successful", nil)
}

func (h *AuthHandler) requestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RequestPasswordReset(c.UserContext(), req); err != nil {
		return sendServiceError(c, h.logger, err, "failed to request password reset")
	}

	return utils.SendSuccess(c, "reset code sent if the account exists", nil)
}

func (h *AuthHandler) confirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirm
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ConfirmPasswordReset(c.UserContext(), req); err != nil {
		return sendServiceError(c, h.logger, err, "failed to reset password")
	}

	return utils.SendSuccess(c, "password updated", nil)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    sessionID,
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
