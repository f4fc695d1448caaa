package models

// Role defines the closed set of account roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// StudentType defines the category of a student account. Only school
// students are eligible for parental linking.
type StudentType string

const (
	SchoolStudent     StudentType = "school"
	UniversityStudent StudentType = "university"
)

func (t StudentType) Valid() bool {
	return t == SchoolStudent || t == UniversityStudent
}

// LinkStatus defines the possible status values for a parent-student link.
type LinkStatus string

const (
	LinkPending  LinkStatus = "pending"
	LinkAccepted LinkStatus = "accepted"
	LinkRejected LinkStatus = "rejected"
)

func (s LinkStatus) Valid() bool {
	switch s {
	case LinkPending, LinkAccepted, LinkRejected:
		return true
	}
	return false
}
