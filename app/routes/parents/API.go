package parents

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

func (h *Handler) RequestLinkAPI(c *fiber.Ctx) error {
	type RequestLinkRequest struct {
		StudentIdentifier string `json:"studentIdentifier"`
	}

	var req RequestLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request")
	}
	if req.StudentIdentifier == "" {
		return apperr.Validation("Student identifier is required")
	}

	ident := auth.CurrentIdentity(c)
	link, err := h.links.RequestLink(ident.ID, req.StudentIdentifier)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Link request sent",
		"link":    link,
	})
}

func (h *Handler) RemoveLinkAPI(c *fiber.Ctx) error {
	type RemoveLinkRequest struct {
		StudentID int64 `json:"studentId"`
	}

	var req RemoveLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request")
	}
	if req.StudentID == 0 {
		return apperr.Validation("Student id is required")
	}

	ident := auth.CurrentIdentity(c)
	if err := h.links.RemoveLink(ident.ID, req.StudentID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Link removed"})
}

func (h *Handler) GetChildrenAPI(c *fiber.Ctx) error {
	ident := auth.CurrentIdentity(c)
	children, err := h.links.ListAcceptedChildren(ident.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"children": children,
		"count":    len(children),
	})
}
