package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ThariniLelwala/EduBloom-sub000/app/models"
)

type linkRepo struct {
	q querier
}

const linkColumns = `id, parent_id, student_id, status, created_at, updated_at`

func scanLink(row *sql.Row) (*models.ParentStudentLink, error) {
	link := &models.ParentStudentLink{}
	err := row.Scan(&link.ID, &link.ParentID, &link.StudentID,
		&link.Status, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan link: %w", err)
	}
	return link, nil
}

func (r *linkRepo) ByPair(parentID, studentID int64) (*models.ParentStudentLink, error) {
	query := `SELECT ` + linkColumns + ` FROM parent_student_links
			  WHERE parent_id = $1 AND student_id = $2`
	return scanLink(r.q.QueryRow(query, parentID, studentID))
}

func (r *linkRepo) ByIDForStudent(linkID, studentID int64) (*models.ParentStudentLink, error) {
	query := `SELECT ` + linkColumns + ` FROM parent_student_links
			  WHERE id = $1 AND student_id = $2`
	return scanLink(r.q.QueryRow(query, linkID, studentID))
}

func (r *linkRepo) CountAccepted(studentID int64) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM parent_student_links
			  WHERE student_id = $1 AND status = $2`
	if err := r.q.QueryRow(query, studentID, models.LinkAccepted).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accepted links: %w", err)
	}
	return n, nil
}

func (r *linkRepo) CountPending(studentID int64) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM parent_student_links
			  WHERE student_id = $1 AND status = $2`
	if err := r.q.QueryRow(query, studentID, models.LinkPending).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending links: %w", err)
	}
	return n, nil
}

func (r *linkRepo) Insert(parentID, studentID int64) (*models.ParentStudentLink, error) {
	query := `INSERT INTO parent_student_links (parent_id, student_id, status)
			  VALUES ($1, $2, $3)
			  RETURNING ` + linkColumns
	link, err := scanLink(r.q.QueryRow(query, parentID, studentID, models.LinkPending))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return link, nil
}

func (r *linkRepo) UpdateStatus(linkID int64, status models.LinkStatus) (*models.ParentStudentLink, error) {
	query := `UPDATE parent_student_links SET status = $1, updated_at = NOW()
			  WHERE id = $2
			  RETURNING ` + linkColumns
	return scanLink(r.q.QueryRow(query, status, linkID))
}

func (r *linkRepo) DeleteByPair(parentID, studentID int64) error {
	query := `DELETE FROM parent_student_links WHERE parent_id = $1 AND student_id = $2`
	res, err := r.q.Exec(query, parentID, studentID)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return requireRows(res)
}

func (r *linkRepo) PendingForStudent(studentID int64) ([]*models.PendingRequest, error) {
	query := `SELECT l.id, u.id, u.username, u.email, l.created_at
			  FROM parent_student_links l
			  JOIN users u ON u.id = l.parent_id
			  WHERE l.student_id = $1 AND l.status = $2
			  ORDER BY l.created_at`
	rows, err := r.q.Query(query, studentID, models.LinkPending)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.PendingRequest
	for rows.Next() {
		req := &models.PendingRequest{}
		if err := rows.Scan(&req.LinkID, &req.ParentID, &req.ParentUsername,
			&req.ParentEmail, &req.RequestedAt); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *linkRepo) AcceptedForParent(parentID int64) ([]*models.LinkedChild, error) {
	query := `SELECT l.id, u.id, u.username, u.email, u.student_type, l.updated_at
			  FROM parent_student_links l
			  JOIN users u ON u.id = l.student_id
			  WHERE l.parent_id = $1 AND l.status = $2
			  ORDER BY l.updated_at`
	rows, err := r.q.Query(query, parentID, models.LinkAccepted)
	if err != nil {
		return nil, fmt.Errorf("list accepted children: %w", err)
	}
	defer rows.Close()

	var children []*models.LinkedChild
	for rows.Next() {
		child := &models.LinkedChild{}
		var studentType sql.NullString
		if err := rows.Scan(&child.LinkID, &child.StudentID, &child.Username,
			&child.Email, &studentType, &child.LinkedAt); err != nil {
			return nil, fmt.Errorf("scan linked child: %w", err)
		}
		if studentType.Valid {
			st := models.StudentType(studentType.String)
			child.StudentType = &st
		}
		children = append(children, child)
	}
	return children, rows.Err()
}
