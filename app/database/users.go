package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

const uniqueViolation = "23505"

type userRepo struct {
	q querier
}

const userColumns = `id, username, email, password_hash, password_salt,
	session_token, token_issued_at, role, student_type, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var studentType sql.NullString
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.PasswordSalt, &user.SessionToken, &user.TokenIssuedAt,
		&user.Role, &studentType, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if studentType.Valid {
		st := models.StudentType(studentType.String)
		user.StudentType = &st
	}
	return user, nil
}

func (r *userRepo) ByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.q.QueryRow(query, id))
}

func (r *userRepo) ByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.q.QueryRow(query, username))
}

func (r *userRepo) ByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.q.QueryRow(query, email))
}

func (r *userRepo) BySessionToken(token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE session_token = $1`
	return scanUser(r.q.QueryRow(query, token))
}

func (r *userRepo) Create(u *models.User) error {
	query := `INSERT INTO users (username, email, password_hash, password_salt, role, student_type)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, created_at`

	var studentType any
	if u.StudentType != nil {
		studentType = string(*u.StudentType)
	}

	err := r.q.QueryRow(query, u.Username, u.Email, u.PasswordHash,
		u.PasswordSalt, u.Role, studentType).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) UpdatePassword(userID int64, digest, salt string) error {
	query := `UPDATE users SET password_hash = $1, password_salt = $2 WHERE id = $3`
	res, err := r.q.Exec(query, digest, salt, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRows(res)
}

func (r *userRepo) SetSessionToken(userID int64, token string, issuedAt time.Time) error {
	query := `UPDATE users SET session_token = $1, token_issued_at = $2 WHERE id = $3`
	res, err := r.q.Exec(query, token, issuedAt, userID)
	if err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	return requireRows(res)
}

func (r *userRepo) ClearSessionToken(userID int64) error {
	query := `UPDATE users SET session_token = NULL, token_issued_at = NULL WHERE id = $1`
	res, err := r.q.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return requireRows(res)
}

func (r *userRepo) ClearSessionTokensBefore(cutoff time.Time) (int64, error) {
	query := `UPDATE users SET session_token = NULL, token_issued_at = NULL
			  WHERE session_token IS NOT NULL AND token_issued_at < $1`
	res, err := r.q.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear expired tokens: %w", err)
	}
	return res.RowsAffected()
}

func (r *userRepo) LockByID(id int64) error {
	var got int64
	err := r.q.QueryRow(`SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
