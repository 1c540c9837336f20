package handlers

import (
	"time"

	"stockdesk/internal/adapters/http/middleware"
	"stockdesk/internal/config"
	"stockdesk/internal/core/services"
	"stockdesk/internal/pkg/jwt"
	"stockdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	gate *services.AuthGate
	cfg  *config.Config
	log  *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gate *services.AuthGate, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		gate: gate,
		cfg:  cfg,
		log:  log,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login handles user login
// @Summary Login
// @Description Verify credentials, set the session cookie and return the session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	session, err := h.gate.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}

	token, err := jwt.GenerateSessionToken(session, h.cfg.Session.Secret, h.cfg.Session.TTL)
	if err != nil {
		h.log.Error("issue session token", zap.Error(err))
		return response.InternalServerError(c, "Internal server error")
	}

	h.setSessionCookie(c, token, time.Now().Add(h.cfg.Session.TTL))

	return response.Success(c, "Login successful", fiber.Map{
		"token":   token,
		"session": session,
	})
}

// Logout handles user logout
// @Summary Logout
// @Description End the current session and clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.gate.EndSession(middleware.CurrentSession(c))
	h.clearSessionCookie(c)

	return response.Success(c, "Logout successful", nil)
}

// Me returns the current session
// @Summary Current session
// @Description Return the principal of the current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return response.Success(c, "", middleware.CurrentSession(c))
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    token,
		Path:     "/",
		Domain:   h.cfg.Cookie.Domain,
		Expires:  expires,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	h.setSessionCookie(c, "", time.Now().Add(-time.Hour))
}
