package handlers

import (
	"stockdesk/internal/core/services"
	"stockdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account administration
type UserHandler struct {
	gate *services.AuthGate
}

// NewUserHandler creates a new user handler
func NewUserHandler(gate *services.AuthGate) *UserHandler {
	return &UserHandler{gate: gate}
}

// CreateUserRequest represents create user request body
type CreateUserRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// CreateUser creates a new account (admin only)
// @Summary Create account
// @Description Create a login account. Requires the admin role.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateUserRequest true "Account data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	id, err := h.gate.CreateAccount(c.UserContext(), req.Username, req.Password, req.Role)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Account created", fiber.Map{"id": id})
}
