package parents

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
	"github.com/ThariniLelwala/EduBloom-sub000/app/routes/auth"
)

func SetupParentsRoutes(app *fiber.App, h *Handler, sessions auth.TokenResolver) {
	grp := app.Group("/parent")
	grp.Use(auth.Chain(
		auth.Authenticate(sessions),
		auth.RequireRole(models.RoleParent),
	))

	grp.Post("/children/request-link", h.RequestLinkAPI)
	grp.Post("/children/remove-link", h.RemoveLinkAPI)
	grp.Get("/children", h.GetChildrenAPI)
}
