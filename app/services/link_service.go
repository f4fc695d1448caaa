package services

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ThariniLelwala/EduBloom-sub000/app/apperr"
	"github.com/ThariniLelwala/EduBloom-sub000/app/database"
	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

const (
	msgStudentNotFound = "School student not found with provided identifier"
	msgCapacityReached = "Student already has the maximum of 2 linked parents"
	msgAlreadyLinked   = "Already linked to this student"
	msgRequestPending  = "Link request already pending"
	msgInvalidAction   = "Invalid action"
	msgRequestNotFound = "Link request not found"
	msgLinkNotFound    = "Link not found"
)

var allDigits = regexp.MustCompile(`^\d+$`)

// LinkService governs the consent relationship between parent and student
// accounts: request, accept/reject, removal, and the capacity invariant.
type LinkService struct {
	store database.Store
	log   zerolog.Logger
}

func NewLinkService(store database.Store, log zerolog.Logger) *LinkService {
	return &LinkService{store: store, log: log}
}

// ResolveSchoolStudent finds the link target by numeric id or username.
// Only school students are eligible; anything else is reported as not found.
func ResolveSchoolStudent(users database.UserRepository, identifier string) (*models.User, error) {
	var (
		student *models.User
		err     error
	)
	if allDigits.MatchString(identifier) {
		id, convErr := strconv.ParseInt(identifier, 10, 64)
		if convErr != nil {
			return nil, apperr.NotFound(msgStudentNotFound)
		}
		student, err = users.ByID(id)
	} else {
		student, err = users.ByUsername(identifier)
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgStudentNotFound)
		}
		return nil, err
	}
	if !student.IsSchoolStudent() {
		return nil, apperr.NotFound(msgStudentNotFound)
	}
	return student, nil
}

// RequestLink creates (or reopens) a pending link from parentID to the
// student named by identifier. The capacity and duplicate checks run in
// one transaction holding a lock on the student row, so two concurrent
// requests against the same student serialize instead of both passing the
// check-then-write gap.
func (s *LinkService) RequestLink(parentID int64, identifier string) (*models.ParentStudentLink, error) {
	var link *models.ParentStudentLink
	err := s.store.InTx(func(tx database.Tx) error {
		student, err := ResolveSchoolStudent(tx.Users(), identifier)
		if err != nil {
			return err
		}
		link, err = createRequest(tx, parentID, student.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("parent_id", parentID).
		Int64("link_id", link.ID).
		Msg("parent link requested")
	return link, nil
}

// createRequest assumes tx-scoped repositories and a resolved student id.
// Shared with registration, which runs the same checks inside its own
// transaction.
func createRequest(tx database.Tx, parentID, studentID int64) (*models.ParentStudentLink, error) {
	if err := tx.Users().LockByID(studentID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(msgStudentNotFound)
		}
		return nil, err
	}

	accepted, err := tx.Links().CountAccepted(studentID)
	if err != nil {
		return nil, err
	}
	if accepted >= models.MaxLinkedParents {
		return nil, apperr.Conflict(msgCapacityReached)
	}

	existing, err := tx.Links().ByPair(parentID, studentID)
	switch {
	case err == nil:
		switch existing.Status {
		case models.LinkAccepted:
			return nil, apperr.Conflict(msgAlreadyLinked)
		case models.LinkPending:
			return nil, apperr.Conflict(msgRequestPending)
		default:
			// A rejected pair reopens in place rather than colliding
			// with the pair-uniqueness constraint.
			return tx.Links().UpdateStatus(existing.ID, models.LinkPending)
		}
	case errors.Is(err, database.ErrNotFound):
		link, err := tx.Links().Insert(parentID, studentID)
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict(msgRequestPending)
		}
		return link, err
	default:
		return nil, err
	}
}

// RespondToRequest lets the student accept or reject a pending request.
// Accepting re-checks the capacity invariant under the student row lock;
// the request-time check alone cannot hold it once concurrent accepts are
// in play.
func (s *LinkService) RespondToRequest(linkID int64, action string, studentID int64) (*models.ParentStudentLink, error) {
	var status models.LinkStatus
	switch action {
	case "accept":
		status = models.LinkAccepted
	case "reject":
		status = models.LinkRejected
	default:
		return nil, apperr.Validation(msgInvalidAction)
	}

	var link *models.ParentStudentLink
	err := s.store.InTx(func(tx database.Tx) error {
		if err := tx.Users().LockByID(studentID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperr.NotFound(msgRequestNotFound)
			}
			return err
		}

		existing, err := tx.Links().ByIDForStudent(linkID, studentID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperr.NotFound(msgRequestNotFound)
			}
			return err
		}

		if status == models.LinkAccepted && existing.Status != models.LinkAccepted {
			accepted, err := tx.Links().CountAccepted(studentID)
			if err != nil {
				return err
			}
			if accepted >= models.MaxLinkedParents {
				return apperr.Conflict(msgCapacityReached)
			}
		}

		link, err = tx.Links().UpdateStatus(linkID, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("link_id", linkID).
		Str("status", string(link.Status)).
		Msg("link request answered")
	return link, nil
}

// RemoveLink deletes the pair's row regardless of status, freeing an
// accepted slot if one was held.
func (s *LinkService) RemoveLink(parentID, studentID int64) error {
	err := s.store.Links().DeleteByPair(parentID, studentID)
	if errors.Is(err, database.ErrNotFound) {
		return apperr.NotFound(msgLinkNotFound)
	}
	if err != nil {
		return err
	}
	s.log.Info().
		Int64("parent_id", parentID).
		Int64("student_id", studentID).
		Msg("parent link removed")
	return nil
}

// ListPendingRequests returns the pending requests targeting a student,
// with the requesting parents' contact fields.
func (s *LinkService) ListPendingRequests(studentID int64) ([]*models.PendingRequest, error) {
	return s.store.Links().PendingForStudent(studentID)
}

// ListAcceptedChildren returns the parent's accepted links joined with
// student profiles.
func (s *LinkService) ListAcceptedChildren(parentID int64) ([]*models.LinkedChild, error) {
	return s.store.Links().AcceptedForParent(parentID)
}

// CountPendingRequests is used for the student's login summary.
func (s *LinkService) CountPendingRequests(studentID int64) (int, error) {
	return s.store.Links().CountPending(studentID)
}
