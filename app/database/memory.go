package database

import (
	"sort"
	"sync"
	"time"

	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

// MemStore is an in-memory Store with the same uniqueness and transaction
// semantics as the PostgreSQL store. Transactions serialize on a single
// mutex and roll back by snapshot, which makes it a faithful stand-in for
// service and handler tests.
type MemStore struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	links      map[int64]*models.ParentStudentLink
	nextUserID int64
	nextLinkID int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[int64]*models.User),
		links: make(map[int64]*models.ParentStudentLink),
	}
}

func (s *MemStore) Users() UserRepository { return &memUserRepo{s: s, lock: true} }
func (s *MemStore) Links() LinkRepository { return &memLinkRepo{s: s, lock: true} }

func (s *MemStore) InTx(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, links := s.snapshot()
	err := fn(&memTx{s: s})
	if err != nil {
		s.users, s.links = users, links
	}
	return err
}

func (s *MemStore) snapshot() (map[int64]*models.User, map[int64]*models.ParentStudentLink) {
	users := make(map[int64]*models.User, len(s.users))
	for id, u := range s.users {
		users[id] = copyUser(u)
	}
	links := make(map[int64]*models.ParentStudentLink, len(s.links))
	for id, l := range s.links {
		cp := *l
		links[id] = &cp
	}
	return users, links
}

type memTx struct {
	s *MemStore
}

func (t *memTx) Users() UserRepository { return &memUserRepo{s: t.s} }
func (t *memTx) Links() LinkRepository { return &memLinkRepo{s: t.s} }

func copyUser(u *models.User) *models.User {
	cp := *u
	if u.SessionToken != nil {
		tok := *u.SessionToken
		cp.SessionToken = &tok
	}
	if u.TokenIssuedAt != nil {
		at := *u.TokenIssuedAt
		cp.TokenIssuedAt = &at
	}
	if u.StudentType != nil {
		st := *u.StudentType
		cp.StudentType = &st
	}
	return &cp
}

type memUserRepo struct {
	s    *MemStore
	lock bool
}

func (r *memUserRepo) acquire() func() {
	if !r.lock {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	for _, u := range r.s.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) ByID(id int64) (*models.User, error) {
	defer r.acquire()()
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUserRepo) ByUsername(username string) (*models.User, error) {
	defer r.acquire()()
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *memUserRepo) ByEmail(email string) (*models.User, error) {
	defer r.acquire()()
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUserRepo) BySessionToken(token string) (*models.User, error) {
	defer r.acquire()()
	return r.find(func(u *models.User) bool {
		return u.SessionToken != nil && *u.SessionToken == token
	})
}

func (r *memUserRepo) Create(u *models.User) error {
	defer r.acquire()()
	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	r.s.nextUserID++
	u.ID = r.s.nextUserID
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *memUserRepo) UpdatePassword(userID int64, digest, salt string) error {
	defer r.acquire()()
	u, ok := r.s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = digest
	u.PasswordSalt = salt
	return nil
}

func (r *memUserRepo) SetSessionToken(userID int64, token string, issuedAt time.Time) error {
	defer r.acquire()()
	u, ok := r.s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.SessionToken = &token
	u.TokenIssuedAt = &issuedAt
	return nil
}

func (r *memUserRepo) ClearSessionToken(userID int64) error {
	defer r.acquire()()
	u, ok := r.s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.SessionToken = nil
	u.TokenIssuedAt = nil
	return nil
}

func (r *memUserRepo) ClearSessionTokensBefore(cutoff time.Time) (int64, error) {
	defer r.acquire()()
	var n int64
	for _, u := range r.s.users {
		if u.SessionToken != nil && u.TokenIssuedAt != nil && u.TokenIssuedAt.Before(cutoff) {
			u.SessionToken = nil
			u.TokenIssuedAt = nil
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) LockByID(id int64) error {
	defer r.acquire()()
	if _, ok := r.s.users[id]; !ok {
		return ErrNotFound
	}
	return nil
}

type memLinkRepo struct {
	s    *MemStore
	lock bool
}

func (r *memLinkRepo) acquire() func() {
	if !r.lock {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memLinkRepo) ByPair(parentID, studentID int64) (*models.ParentStudentLink, error) {
	defer r.acquire()()
	for _, l := range r.s.links {
		if l.ParentID == parentID && l.StudentID == studentID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memLinkRepo) ByIDForStudent(linkID, studentID int64) (*models.ParentStudentLink, error) {
	defer r.acquire()()
	l, ok := r.s.links[linkID]
	if !ok || l.StudentID != studentID {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *memLinkRepo) CountAccepted(studentID int64) (int, error) {
	defer r.acquire()()
	return r.count(studentID, models.LinkAccepted), nil
}

func (r *memLinkRepo) CountPending(studentID int64) (int, error) {
	defer r.acquire()()
	return r.count(studentID, models.LinkPending), nil
}

func (r *memLinkRepo) count(studentID int64, status models.LinkStatus) int {
	n := 0
	for _, l := range r.s.links {
		if l.StudentID == studentID && l.Status == status {
			n++
		}
	}
	return n
}

func (r *memLinkRepo) Insert(parentID, studentID int64) (*models.ParentStudentLink, error) {
	defer r.acquire()()
	for _, l := range r.s.links {
		if l.ParentID == parentID && l.StudentID == studentID {
			return nil, ErrDuplicate
		}
	}
	r.s.nextLinkID++
	now := time.Now()
	link := &models.ParentStudentLink{
		ID:        r.s.nextLinkID,
		ParentID:  parentID,
		StudentID: studentID,
		Status:    models.LinkPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.links[link.ID] = link
	cp := *link
	return &cp, nil
}

func (r *memLinkRepo) UpdateStatus(linkID int64, status models.LinkStatus) (*models.ParentStudentLink, error) {
	defer r.acquire()()
	l, ok := r.s.links[linkID]
	if !ok {
		return nil, ErrNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	cp := *l
	return &cp, nil
}

func (r *memLinkRepo) DeleteByPair(parentID, studentID int64) error {
	defer r.acquire()()
	for id, l := range r.s.links {
		if l.ParentID == parentID && l.StudentID == studentID {
			delete(r.s.links, id)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memLinkRepo) PendingForStudent(studentID int64) ([]*models.PendingRequest, error) {
	defer r.acquire()()
	var requests []*models.PendingRequest
	for _, l := range r.s.links {
		if l.StudentID != studentID || l.Status != models.LinkPending {
			continue
		}
		parent, ok := r.s.users[l.ParentID]
		if !ok {
			continue
		}
		requests = append(requests, &models.PendingRequest{
			LinkID:         l.ID,
			ParentID:       parent.ID,
			ParentUsername: parent.Username,
			ParentEmail:    parent.Email,
			RequestedAt:    l.CreatedAt,
		})
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].LinkID < requests[j].LinkID
	})
	return requests, nil
}

func (r *memLinkRepo) AcceptedForParent(parentID int64) ([]*models.LinkedChild, error) {
	defer r.acquire()()
	var children []*models.LinkedChild
	for _, l := range r.s.links {
		if l.ParentID != parentID || l.Status != models.LinkAccepted {
			continue
		}
		student, ok := r.s.users[l.StudentID]
		if !ok {
			continue
		}
		child := &models.LinkedChild{
			LinkID:    l.ID,
			StudentID: student.ID,
			Username:  student.Username,
			Email:     student.Email,
			LinkedAt:  l.UpdatedAt,
		}
		if student.StudentType != nil {
			st := *student.StudentType
			child.StudentType = &st
		}
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].LinkID < children[j].LinkID
	})
	return children, nil
}
