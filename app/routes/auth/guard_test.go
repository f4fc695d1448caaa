package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

type fakeResolver struct {
	users map[string]*models.User
}

func (f *fakeResolver) Resolve(token string) (*models.User, error) {
	user, ok := f.users[token]
	if !ok {
		return nil, apperr.Unauthorized("Invalid token")
	}
	return user, nil
}

func newGuardApp(guards ...Guard) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/guarded", Chain(guards...), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"username": CurrentIdentity(c).Username})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func adminResolver() *fakeResolver {
	return &fakeResolver{users: map[string]*models.User{
		"admin-token": {ID: 1, Username: "root", Email: "root@example.com", Role: models.RoleAdmin},
	}}
}

func TestAuthenticateMissingToken(t *testing.T) {
	app := newGuardApp(Authenticate(adminResolver()))

	status, body := doRequest(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", body["error"])
	assert.Equal(t, apperr.CodeAuthentication, body["code"])
}

func TestAuthenticateInvalidToken(t *testing.T) {
	app := newGuardApp(Authenticate(adminResolver()))

	status, body := doRequest(t, app, "bogus")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", body["error"])
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	app := newGuardApp(Authenticate(adminResolver()))

	status, body := doRequest(t, app, "admin-token")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "root", body["username"])
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.User{
		"student-token": {ID: 2, Username: "stu", Role: models.RoleStudent},
	}}
	app := newGuardApp(Authenticate(resolver), RequireRole(models.RoleAdmin))

	status, body := doRequest(t, app, "student-token")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Insufficient permissions", body["error"])
	assert.Equal(t, apperr.CodeAuthorization, body["code"])
}

func TestRequireRoleAcceptsExactRole(t *testing.T) {
	app := newGuardApp(Authenticate(adminResolver()), RequireRole(models.RoleAdmin))

	status, _ := doRequest(t, app, "admin-token")
	assert.Equal(t, http.StatusOK, status)
}

// Role guards without a preceding authenticate must deny, not panic.
func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	app := newGuardApp(RequireRole(models.RoleAdmin))

	status, body := doRequest(t, app, "admin-token")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication required", body["error"])
}

func TestRequireAnyRole(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.User{
		"teacher-token": {ID: 3, Username: "tea", Role: models.RoleTeacher},
		"parent-token":  {ID: 4, Username: "par", Role: models.RoleParent},
	}}
	app := newGuardApp(Authenticate(resolver), RequireAnyRole(models.RoleAdmin, models.RoleTeacher))

	status, _ := doRequest(t, app, "teacher-token")
	assert.Equal(t, http.StatusOK, status)

	status, body := doRequest(t, app, "parent-token")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Insufficient permissions", body["error"])
}

func TestRequireAuth(t *testing.T) {
	app := newGuardApp(Authenticate(adminResolver()), RequireAuth())

	status, _ := doRequest(t, app, "admin-token")
	assert.Equal(t, http.StatusOK, status)
}

// The first terminating guard wins; later guards never run.
func TestChainStopsAtFirstDenial(t *testing.T) {
	ran := false
	tripwire := Guard(func(_ *fiber.Ctx, ident *Identity) (*Identity, *Denial) {
		ran = true
		return ident, nil
	})
	app := newGuardApp(Authenticate(adminResolver()), tripwire)

	status, _ := doRequest(t, app, "bogus")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, ran)
}
