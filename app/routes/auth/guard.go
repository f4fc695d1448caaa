package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

// Identity is the authenticated-user context attached to a request after
// the guard chain succeeds. Downstream handlers read it and nothing else.
type Identity struct {
	ID          int64
	Username    string
	Email       string
	Role        models.Role
	StudentType *models.StudentType
}

func (id *Identity) Public() *models.PublicUser {
	return &models.PublicUser{
		ID:          id.ID,
		Username:    id.Username,
		Email:       id.Email,
		Role:        id.Role,
		StudentType: id.StudentType,
	}
}

// Denial terminates a request with a status and message.
type Denial struct {
	Status  int
	Message string
}

// Guard is one authorization check. It either returns an (optionally
// augmented) identity to continue with, or a Denial that stops the chain.
type Guard func(c *fiber.Ctx, ident *Identity) (*Identity, *Denial)

// TokenResolver maps a bearer token to the user holding it.
type TokenResolver interface {
	Resolve(token string) (*models.User, error)
}

const identityKey = "identity"

// Chain compiles an ordered guard list into a single Fiber handler.
// Guards run strictly in sequence; the first Denial wins and neither the
// remaining guards nor the route handler run.
func Chain(guards ...Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ident *Identity
		for _, guard := range guards {
			next, denial := guard(c, ident)
			if denial != nil {
				code := apperr.CodeAuthentication
				if denial.Status == fiber.StatusForbidden {
					code = apperr.CodeAuthorization
				}
				return c.Status(denial.Status).JSON(fiber.Map{
					"error": denial.Message,
					"code":  code,
				})
			}
			ident = next
		}
		c.Locals(identityKey, ident)
		return c.Next()
	}
}

// CurrentIdentity returns the identity the guard chain attached, or nil on
// an unguarded route.
func CurrentIdentity(c *fiber.Ctx) *Identity {
	ident, _ := c.Locals(identityKey).(*Identity)
	return ident
}

// Authenticate resolves the Authorization bearer token into an identity.
func Authenticate(resolver TokenResolver) Guard {
	return func(c *fiber.Ctx, _ *Identity) (*Identity, *Denial) {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return nil, &Denial{Status: fiber.StatusUnauthorized, Message: "No token provided"}
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" {
			return nil, &Denial{Status: fiber.StatusUnauthorized, Message: "No token provided"}
		}

		user, err := resolver.Resolve(token)
		if err != nil {
			return nil, &Denial{Status: fiber.StatusUnauthorized, Message: apperr.From(err).Message}
		}
		return &Identity{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			Role:        user.Role,
			StudentType: user.StudentType,
		}, nil
	}
}

// RequireAuth accepts any authenticated identity.
func RequireAuth() Guard {
	return func(_ *fiber.Ctx, ident *Identity) (*Identity, *Denial) {
		if ident == nil {
			return nil, &Denial{Status: fiber.StatusUnauthorized, Message: "Authentication required"}
		}
		return ident, nil
	}
}

// RequireRole accepts only an identity whose role equals role.
func RequireRole(role models.Role) Guard {
	return RequireAnyRole(role)
}

// RequireAnyRole accepts an identity whose role is in the given set.
func RequireAnyRole(roles ...models.Role) Guard {
	return func(_ *fiber.Ctx, ident *Identity) (*Identity, *Denial) {
		if ident == nil {
			return nil, &Denial{Status: fiber.StatusUnauthorized, Message: "Authentication required"}
		}
		for _, role := range roles {
			if ident.Role == role {
				return ident, nil
			}
		}
		return nil, &Denial{Status: fiber.StatusForbidden, Message: "Insufficient permissions"}
	}
}
