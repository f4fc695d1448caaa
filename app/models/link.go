package models

import "time"

// MaxLinkedParents is the capacity invariant: a student may have at most
// this many simultaneously accepted parent links.
const MaxLinkedParents = 2

// ParentStudentLink is the consent relationship between a parent account
// and a school-student account. The (parent_id, student_id) pair is unique
// for the lifetime of the table.
type ParentStudentLink struct {
	ID        int64      `json:"id"`
	ParentID  int64      `json:"parent_id"`
	StudentID int64      `json:"student_id"`
	Status    LinkStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PendingRequest is the display projection of a pending link targeting a
// student, joined with the requesting parent's contact fields.
type PendingRequest struct {
	LinkID         int64     `json:"link_id"`
	ParentID       int64     `json:"parent_id"`
	ParentUsername string    `json:"parent_username"`
	ParentEmail    string    `json:"parent_email"`
	RequestedAt    time.Time `json:"requested_at"`
}

// LinkedChild is the display projection of an accepted link for a parent,
// joined with the student's profile fields.
type LinkedChild struct {
	LinkID      int64        `json:"link_id"`
	StudentID   int64        `json:"student_id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	StudentType *StudentType `json:"student_type,omitempty"`
	LinkedAt    time.Time    `json:"linked_at"`
}
