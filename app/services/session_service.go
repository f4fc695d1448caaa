package services

import (
	"errors"
	"time"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
	"github.com/ThariniLelwala/EduBloom-sub000/app/auth"
	"github.com/ThariniLelwala/EduBloom-sub000/app/database"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

// SessionManager issues, resolves and revokes opaque bearer tokens. The
// store holds exactly one live token per user: issuing a new one
// invalidates whatever token the user held before, so logging in anywhere
// logs the user out everywhere else.
type SessionManager struct {
	store database.Store
	ttl   time.Duration
}

// NewSessionManager builds a manager. A ttl of zero means tokens never
// expire on their own, which is the default behavior.
func NewSessionManager(store database.Store, ttl time.Duration) *SessionManager {
	return &SessionManager{store: store, ttl: ttl}
}

// Issue generates a fresh token and persists it as the user's current one.
func (m *SessionManager) Issue(userID int64) (string, error) {
	token, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Users().SetSessionToken(userID, token, time.Now()); err != nil {
		return "", err
	}
	return token, nil
}

// Revoke clears the user's current token. Clearing an already-absent
// token is not an error.
func (m *SessionManager) Revoke(userID int64) error {
	err := m.store.Users().ClearSessionToken(userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	return err
}

// Resolve returns the user whose current token matches. A token that was
// never issued, superseded by a later login, revoked by logout, or (when a
// TTL is configured) issued too long ago all fail the same way.
func (m *SessionManager) Resolve(token string) (*models.User, error) {
	user, err := m.store.Users().BySessionToken(token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid token")
		}
		return nil, err
	}
	if m.ttl > 0 && user.TokenIssuedAt != nil && time.Since(*user.TokenIssuedAt) > m.ttl {
		return nil, apperr.Unauthorized("Invalid token")
	}
	return user, nil
}
