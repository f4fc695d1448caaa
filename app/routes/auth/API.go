package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
	"github.com/ThariniLelwala/EduBloom-sub000/app/services"
)

type Handler struct {
	auth  *services.AuthService
	links *services.LinkService
	log   zerolog.Logger
}

func NewHandler(auth *services.AuthService, links *services.LinkService, log zerolog.Logger) *Handler {
	return &Handler{auth: auth, links: links, log: log}
}

func (h *Handler) RegisterAPI(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request")
	}

	user, err := h.auth.Register(req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user.Public(),
	})
}

func (h *Handler) LoginAPI(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request")
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	user, token, err := h.auth.Login(identifier, req.Password)
	if err != nil {
		return err
	}

	payload := fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"token":    token,
	}
	if user.StudentType != nil {
		payload["student_type"] = *user.StudentType
	}

	switch {
	case user.Role == models.RoleParent:
		children, err := h.links.ListAcceptedChildren(user.ID)
		if err != nil {
			return err
		}
		payload["children"] = children
	case user.IsSchoolStudent():
		pending, err := h.links.CountPendingRequests(user.ID)
		if err != nil {
			return err
		}
		payload["pending_parent_requests"] = pending
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    payload,
	})
}

func (h *Handler) LogoutAPI(c *fiber.Ctx) error {
	ident := CurrentIdentity(c)
	if err := h.auth.Logout(ident.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

func (h *Handler) ProfileAPI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": CurrentIdentity(c).Public()})
}

func (h *Handler) ChangePasswordAPI(c *fiber.Ctx) error {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request")
	}

	ident := CurrentIdentity(c)
	if err := h.auth.ChangePassword(ident.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
