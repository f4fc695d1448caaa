package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
	"github.com/ThariniLelwala/EduBloom-sub000/app/database"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

func newAuthFixture(t *testing.T) (*AuthService, *SessionManager, database.Store) {
	t.Helper()
	store := database.NewMemStore()
	sessions := NewSessionManager(store, 0)
	return NewAuthService(store, sessions, zerolog.Nop()), sessions, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)

	user, err := svc.Register(RegisterInput{
		Username:    "stu123",
		Email:       "stu123@example.com",
		Password:    "hunter2hunter2",
		Role:        models.RoleStudent,
		StudentType: models.SchoolStudent,
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.PasswordSalt)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	assert.Nil(t, user.SessionToken)

	logged, token, err := svc.Login("stu123", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	resolved, err := sessions.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	cases := []struct {
		name  string
		input RegisterInput
		want  string
	}{
		{
			name:  "missing fields",
			input: RegisterInput{Username: "a", Role: models.RoleTeacher},
			want:  "Username, email and password are required",
		},
		{
			name: "short password",
			input: RegisterInput{
				Username: "a", Email: "a@example.com", Password: "short", Role: models.RoleTeacher,
			},
			want: "Password must be at least 8 characters",
		},
		{
			name: "bad role",
			input: RegisterInput{
				Username: "a", Email: "a@example.com", Password: "longenough", Role: "superuser",
			},
			want: "Invalid role",
		},
		{
			name: "student without type",
			input: RegisterInput{
				Username: "a", Email: "a@example.com", Password: "longenough", Role: models.RoleStudent,
			},
			want: "Invalid student type",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.want, apperr.From(err).Message)
			assert.Equal(t, 400, apperr.From(err).Status)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	input := RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "longenough", Role: models.RoleTeacher,
	}
	_, err := svc.Register(input)
	require.NoError(t, err)

	_, err = svc.Register(input)
	require.Error(t, err)
	assert.Equal(t, "Username or email already exists", apperr.From(err).Message)
	assert.Equal(t, 409, apperr.From(err).Status)
}

func TestRegisterParentWithStudentIdentifier(t *testing.T) {
	svc, _, store := newAuthFixture(t)
	student := seedUser(t, store, "stu123", models.RoleStudent, models.SchoolStudent)

	parent, err := svc.Register(RegisterInput{
		Username:          "p1",
		Email:             "p1@example.com",
		Password:          "longenough",
		Role:              models.RoleParent,
		StudentIdentifier: "stu123",
	})
	require.NoError(t, err)

	link, err := store.Links().ByPair(parent.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LinkPending, link.Status)
}

// A bad student identifier aborts the whole registration; no user row may
// survive the failed transaction.
func TestRegisterParentWithBadIdentifierIsAtomic(t *testing.T) {
	svc, _, store := newAuthFixture(t)

	_, err := svc.Register(RegisterInput{
		Username:          "p1",
		Email:             "p1@example.com",
		Password:          "longenough",
		Role:              models.RoleParent,
		StudentIdentifier: "stu123",
	})
	require.Error(t, err)
	assert.Equal(t, "Invalid student identifier: No school student found", apperr.From(err).Message)

	_, err = store.Users().ByUsername("p1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLoginByEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "longenough", Role: models.RoleTeacher,
	})
	require.NoError(t, err)

	_, token, err := svc.Login("alice@example.com", "longenough")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginFailures(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "longenough", Role: models.RoleTeacher,
	})
	require.NoError(t, err)

	_, _, err = svc.Login("alice", "")
	require.Error(t, err)
	assert.Equal(t, 400, apperr.From(err).Status)

	_, _, err = svc.Login("alice", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperr.From(err).Message)

	_, _, err = svc.Login("nobody", "longenough")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperr.From(err).Message)
}

// Logging in twice leaves only the second token valid.
func TestLoginSupersedesPreviousSession(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)

	_, err := svc.Register(RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "longenough", Role: models.RoleTeacher,
	})
	require.NoError(t, err)

	_, first, err := svc.Login("alice", "longenough")
	require.NoError(t, err)
	_, second, err := svc.Login("alice", "longenough")
	require.NoError(t, err)

	_, err = sessions.Resolve(first)
	require.Error(t, err)
	_, err = sessions.Resolve(second)
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)

	user, err := svc.Register(RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "longenough", Role: models.RoleTeacher,
	})
	require.NoError(t, err)

	_, token, err := svc.Login("alice", "longenough")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(user.ID))
	_, err = sessions.Resolve(token)
	require.Error(t, err)
	assert.Equal(t, "Invalid token", apperr.From(err).Message)
}

func TestChangePassword(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)

	user, err := svc.Register(RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "longenough", Role: models.RoleTeacher,
	})
	require.NoError(t, err)
	_, token, err := svc.Login("alice", "longenough")
	require.NoError(t, err)

	err = svc.ChangePassword(user.ID, "wrong-password", "evenlonger1")
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", apperr.From(err).Message)

	require.NoError(t, svc.ChangePassword(user.ID, "longenough", "evenlonger1"))

	// The old credential and the old token are both dead.
	_, _, err = svc.Login("alice", "longenough")
	require.Error(t, err)
	_, err = sessions.Resolve(token)
	require.Error(t, err)

	_, _, err = svc.Login("alice", "evenlonger1")
	require.NoError(t, err)
}
