package students

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
	"github.com/ThariniLelwala/EduBloom-sub000/app/routes/auth"
	"github.com/ThariniLelwala/EduBloom-sub000/app/services"
)

type Handler struct {
	links *services.LinkService
	log   zerolog.Logger
}

func NewHandler(links *services.LinkService, log zerolog.Logger) *Handler {
	return &Handler{links: links, log: log}
}

// ListParentRequestsAPI returns the pending link requests targeting the
// calling student. A student_id in the body is accepted for wire
// compatibility but must match the caller; scoping always uses the
// authenticated identity.
func (h *Handler) ListParentRequestsAPI(c *fiber.Ctx) error {
	type ListRequest struct {
		StudentID int64 `json:"student_id"`
	}

	var req ListRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request")
	}

	ident := auth.CurrentIdentity(c)
	if req.StudentID != 0 && req.StudentID != ident.ID {
		return apperr.Forbidden("Insufficient permissions")
	}

	requests, err := h.links.ListPendingRequests(ident.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

func (h *Handler) RespondToRequestAPI(c *fiber.Ctx) error {
	type RespondRequest struct {
		LinkID    int64  `json:"link_id"`
		Action    string `json:"action"`
		StudentID int64  `json:"student_id"`
	}

	var req RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request")
	}
	if req.LinkID == 0 {
		return apperr.Validation("Link id is required")
	}

	ident := auth.CurrentIdentity(c)
	if req.StudentID != 0 && req.StudentID != ident.ID {
		return apperr.Forbidden("Insufficient permissions")
	}

	link, err := h.links.RespondToRequest(req.LinkID, req.Action, ident.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Request " + req.Action + "ed",
		"link":    link,
	})
}
