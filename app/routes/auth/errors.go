package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
)

// ErrorHandler is the app-wide Fiber error handler. Every failure goes out
// as {"error": message, "code": code} with the taxonomy's status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := apperr.CodeInternal
		if fe.Code == fiber.StatusNotFound {
			code = apperr.CodeNotFound
		}
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
			"code":  code,
		})
	}

	ae := apperr.From(err)
	return c.Status(ae.Status).JSON(fiber.Map{
		"error": ae.Message,
		"code":  ae.Code,
	})
}
