package database

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/ThariniLelwala/EduBloom-sub000/app/config"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (username, email, or the parent/student pair).
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository is the user-store boundary consumed by the services.
type UserRepository interface {
	ByID(id int64) (*models.User, error)
	ByUsername(username string) (*models.User, error)
	ByEmail(email string) (*models.User, error)
	BySessionToken(token string) (*models.User, error)
	Create(u *models.User) error
	UpdatePassword(userID int64, digest, salt string) error
	SetSessionToken(userID int64, token string, issuedAt time.Time) error
	ClearSessionToken(userID int64) error
	ClearSessionTokensBefore(cutoff time.Time) (int64, error)
	// LockByID takes a row lock on the user. Meaningful only inside a
	// transaction; it is the serialization point for link capacity checks.
	LockByID(id int64) error
}

// LinkRepository is the link-store boundary consumed by the services.
type LinkRepository interface {
	ByPair(parentID, studentID int64) (*models.ParentStudentLink, error)
	ByIDForStudent(linkID, studentID int64) (*models.ParentStudentLink, error)
	CountAccepted(studentID int64) (int, error)
	CountPending(studentID int64) (int, error)
	Insert(parentID, studentID int64) (*models.ParentStudentLink, error)
	UpdateStatus(linkID int64, status models.LinkStatus) (*models.ParentStudentLink, error)
	DeleteByPair(parentID, studentID int64) error
	PendingForStudent(studentID int64) ([]*models.PendingRequest, error)
	AcceptedForParent(parentID int64) ([]*models.LinkedChild, error)
}

// Tx is the repository view bound to a single transaction.
type Tx interface {
	Users() UserRepository
	Links() LinkRepository
}

// Store groups the repositories with a transactional runner. Check-then-write
// sequences (link capacity, pair uniqueness, registration side effects) must
// go through InTx so they commit or roll back as one unit.
type Store interface {
	Users() UserRepository
	Links() LinkRepository
	InTx(fn func(tx Tx) error) error
}

// querier is satisfied by both *sql.DB and *sql.Tx so the repositories
// work inside and outside a transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// SQLStore is the PostgreSQL-backed Store.
type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Users() UserRepository { return &userRepo{q: s.db} }
func (s *SQLStore) Links() LinkRepository { return &linkRepo{q: s.db} }

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Users() UserRepository { return &userRepo{q: t.tx} }
func (t *sqlTx) Links() LinkRepository { return &linkRepo{q: t.tx} }

func (s *SQLStore) InTx(fn func(tx Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(&sqlTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Connect opens the pool and verifies the connection.
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
