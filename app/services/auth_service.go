package services

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
	"github.com/ThariniLelwala/EduBloom-sub000/app/auth"
	"github.com/ThariniLelwala/EduBloom-sub000/app/database"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

// AuthService covers registration, login/logout and password maintenance.
type AuthService struct {
	store    database.Store
	sessions *SessionManager
	log      zerolog.Logger
}

func NewAuthService(store database.Store, sessions *SessionManager, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, sessions: sessions, log: log}
}

type RegisterInput struct {
	Username          string             `json:"username"`
	Email             string             `json:"email"`
	Password          string             `json:"password"`
	Role              models.Role        `json:"role"`
	StudentType       models.StudentType `json:"student_type"`
	StudentIdentifier string             `json:"student_identifier"`
}

// Register creates the user row and, for a parent supplying a student
// identifier, the pending link — both inside one transaction, so a bad
// identifier aborts the whole registration and no partial user remains.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, apperr.Validation("Username, email and password are required")
	}
	if len(input.Password) < 8 {
		return nil, apperr.Validation("Password must be at least 8 characters")
	}
	if !input.Role.Valid() {
		return nil, apperr.Validation("Invalid role")
	}

	user := &models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(input.Email),
		Role:     input.Role,
	}
	if input.Role == models.RoleStudent {
		if !input.StudentType.Valid() {
			return nil, apperr.Validation("Invalid student type")
		}
		st := input.StudentType
		user.StudentType = &st
	}

	digest, salt, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = digest
	user.PasswordSalt = salt

	err = s.store.InTx(func(tx database.Tx) error {
		if err := tx.Users().Create(user); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return apperr.Conflict("Username or email already exists")
			}
			return err
		}

		if input.Role == models.RoleParent && input.StudentIdentifier != "" {
			student, err := ResolveSchoolStudent(tx.Users(), input.StudentIdentifier)
			if err != nil {
				return apperr.Validation("Invalid student identifier: No school student found")
			}
			if _, err := createRequest(tx, user.ID, student.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("user registered")
	return user, nil
}

// Login verifies the credential and issues a fresh token, superseding any
// previously active session for that user. The identifier is treated as an
// email when it contains '@', otherwise as a username.
func (s *AuthService) Login(identifier, password string) (*models.User, string, error) {
	if identifier == "" || password == "" {
		return nil, "", apperr.Validation("Username and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.Users().ByEmail(identifier)
	} else {
		user, err = s.store.Users().ByUsername(identifier)
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", apperr.Unauthorized("Invalid credentials")
		}
		return nil, "", err
	}

	if !auth.VerifyPassword(password, user.PasswordHash, user.PasswordSalt) {
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return user, token, nil
}

// Logout revokes the user's current token.
func (s *AuthService) Logout(userID int64) error {
	if err := s.sessions.Revoke(userID); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", userID).Msg("user logged out")
	return nil
}

// ChangePassword re-hashes the credential under a fresh salt and revokes
// the current session token, so anyone else holding the old credential is
// cut off.
func (s *AuthService) ChangePassword(userID int64, current, updated string) error {
	if updated == "" {
		return apperr.Validation("New password is required")
	}
	if len(updated) < 8 {
		return apperr.Validation("Password must be at least 8 characters")
	}

	user, err := s.store.Users().ByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}

	if !auth.VerifyPassword(current, user.PasswordHash, user.PasswordSalt) {
		return apperr.Validation("Current password is incorrect")
	}

	digest, salt, err := auth.HashPassword(updated)
	if err != nil {
		return err
	}
	if err := s.store.Users().UpdatePassword(userID, digest, salt); err != nil {
		return err
	}
	return s.sessions.Revoke(userID)
}
