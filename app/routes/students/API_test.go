package students

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThariniLelwala/EduBloom-sub000/app/database"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
	"github.com/ThariniLelwala/EduBloom-sub000/app/routes/auth"
	"github.com/ThariniLelwala/EduBloom-sub000/app/services"
)

type fixture struct {
	app      *fiber.App
	store    database.Store
	sessions *services.SessionManager
	links    *services.LinkService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := database.NewMemStore()
	sessions := services.NewSessionManager(store, 0)
	links := services.NewLinkService(store, zerolog.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	SetupStudentsRoutes(app, NewHandler(links, zerolog.Nop()), sessions)
	return &fixture{app: app, store: store, sessions: sessions, links: links}
}

func (f *fixture) seed(t *testing.T, username string, role models.Role, studentType ...models.StudentType) (*models.User, string) {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "digest",
		PasswordSalt: "salt",
		Role:         role,
	}
	if len(studentType) > 0 {
		st := studentType[0]
		user.StudentType = &st
	}
	require.NoError(t, f.store.Users().Create(user))

	token, err := f.sessions.Issue(user.ID)
	require.NoError(t, err)
	return user, token
}

func (f *fixture) post(t *testing.T, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestListParentRequestsEndpoint(t *testing.T) {
	f := newFixture(t)
	parent, _ := f.seed(t, "p1", models.RoleParent)
	_, token := f.seed(t, "stu123", models.RoleStudent, models.SchoolStudent)

	status, body := f.post(t, "/student/parent-requests/list", token, map[string]any{})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])

	_, err := f.links.RequestLink(parent.ID, "stu123")
	require.NoError(t, err)

	status, body = f.post(t, "/student/parent-requests/list", token, map[string]any{})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	requests := body["requests"].([]any)
	first := requests[0].(map[string]any)
	assert.Equal(t, "p1", first["parent_username"])
	assert.Equal(t, "p1@example.com", first["parent_email"])
}

func TestListParentRequestsRejectsForeignStudentID(t *testing.T) {
	f := newFixture(t)
	student, token := f.seed(t, "stu123", models.RoleStudent, models.SchoolStudent)

	status, body := f.post(t, "/student/parent-requests/list", token,
		map[string]any{"student_id": student.ID + 99})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Insufficient permissions", body["error"])
}

func TestRespondToRequestEndpoint(t *testing.T) {
	f := newFixture(t)
	parent, _ := f.seed(t, "p1", models.RoleParent)
	student, token := f.seed(t, "stu123", models.RoleStudent, models.SchoolStudent)

	link, err := f.links.RequestLink(parent.ID, "stu123")
	require.NoError(t, err)

	status, body := f.post(t, "/student/parent-requests/respond", token,
		map[string]any{"link_id": link.ID, "action": "accept"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Request accepted", body["message"])

	updated := body["link"].(map[string]any)
	assert.Equal(t, "accepted", updated["status"])

	stored, err := f.store.Links().ByPair(parent.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LinkAccepted, stored.Status)
}

func TestRespondToRequestValidation(t *testing.T) {
	f := newFixture(t)
	parent, _ := f.seed(t, "p1", models.RoleParent)
	_, token := f.seed(t, "stu123", models.RoleStudent, models.SchoolStudent)

	link, err := f.links.RequestLink(parent.ID, "stu123")
	require.NoError(t, err)

	status, body := f.post(t, "/student/parent-requests/respond", token,
		map[string]any{"action": "accept"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Link id is required", body["error"])

	status, body = f.post(t, "/student/parent-requests/respond", token,
		map[string]any{"link_id": link.ID, "action": "approve"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid action", body["error"])

	status, body = f.post(t, "/student/parent-requests/respond", token,
		map[string]any{"link_id": link.ID + 99, "action": "reject"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Link request not found", body["error"])
}

func TestStudentRoutesGuards(t *testing.T) {
	f := newFixture(t)
	_, parentToken := f.seed(t, "p1", models.RoleParent)

	status, body := f.post(t, "/student/parent-requests/list", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", body["error"])

	status, body = f.post(t, "/student/parent-requests/list", parentToken, map[string]any{})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Insufficient permissions", body["error"])
}
