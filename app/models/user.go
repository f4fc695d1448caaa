package models

import "time"

// User is the identity record shared by every role. The password digest
// and salt never leave the server; the session token column holds the
// user's single current bearer token, or nil when logged out.
type User struct {
	ID            int64        `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"-"`
	PasswordSalt  string       `json:"-"`
	SessionToken  *string      `json:"-"`
	TokenIssuedAt *time.Time   `json:"-"`
	Role          Role         `json:"role"`
	StudentType   *StudentType `json:"student_type,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// PublicUser is the non-sensitive projection returned by the API and
// attached to the request context after authentication.
type PublicUser struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	StudentType *StudentType `json:"student_type,omitempty"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		StudentType: u.StudentType,
	}
}

// IsSchoolStudent reports whether the user is a student of type school,
// the only category eligible for parental linking.
func (u *User) IsSchoolStudent() bool {
	return u.Role == RoleStudent && u.StudentType != nil && *u.StudentType == SchoolStudent
}
