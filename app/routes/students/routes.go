package students

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
	"github.com/ThariniLelwala/EduBloom-sub000/app/routes/auth"
)

func SetupStudentsRoutes(app *fiber.App, h *Handler, sessions auth.TokenResolver) {
	grp := app.Group("/student")
	grp.Use(auth.Chain(
		auth.Authenticate(sessions),
		auth.RequireRole(models.RoleStudent),
	))

	grp.Post("/parent-requests/list", h.ListParentRequestsAPI)
	grp.Post("/parent-requests/respond", h.RespondToRequestAPI)
}
