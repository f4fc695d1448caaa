package auth

import (
	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, h *Handler, sessions TokenResolver) {
	grp := app.Group("/auth")

	// Public routes
	grp.Post("/register", h.RegisterAPI)
	grp.Post("/login", h.LoginAPI)

	// Protected routes
	authenticated := Chain(Authenticate(sessions))
	grp.Post("/logout", authenticated, h.LogoutAPI)
	grp.Get("/profile", authenticated, h.ProfileAPI)
	grp.Post("/change-password", authenticated, h.ChangePasswordAPI)
}
