package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/storage"
)

const noticeColumns = `id, title, content, priority, author, created_by, created_at`

// ListNotices returns notices newest first.
func (s *Store) ListNotices(ctx context.Context, filter storage.NoticeFilter) ([]models.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices ORDER BY created_at DESC, id DESC`
	args := []any{}
	if filter.Priority != "" {
		query = `SELECT ` + noticeColumns + ` FROM notices WHERE priority = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, filter.Priority)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer rows.Close()

	notices := []models.Notice{}
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// GetNotice fetches one notice.
func (s *Store) GetNotice(ctx context.Context, id int64) (models.Notice, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id = $1`, id)
	n, err := scanNotice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Notice{}, storage.ErrNotFound
	}
	return n, err
}

// CreateNotice inserts a notice and returns its id.
func (s *Store) CreateNotice(ctx context.Context, n models.Notice) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO notices (title, content, priority, author, created_by) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		n.Title, n.Content, n.Priority, n.Author, n.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert notice: %w", err)
	}
	return id, nil
}

// UpdateNotice overwrites the editable notice fields.
func (s *Store) UpdateNotice(ctx context.Context, n models.Notice) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notices SET title = $1, content = $2, priority = $3, author = $4 WHERE id = $5`,
		n.Title, n.Content, n.Priority, n.Author, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteNotice removes a notice.
func (s *Store) DeleteNotice(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const complaintColumns = `id, title, description, category, status, created_by, created_at, updated_at`

// ListComplaints returns complaints newest first.
func (s *Store) ListComplaints(ctx context.Context, filter storage.ComplaintFilter) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints ORDER BY created_at DESC, id DESC`
	args := []any{}
	if filter.Status != "" {
		query = `SELECT ` + complaintColumns + ` FROM complaints WHERE status = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, string(filter.Status))
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	complaints := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

// GetComplaint fetches one complaint.
func (s *Store) GetComplaint(ctx context.Context, id int64) (models.Complaint, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Complaint{}, storage.ErrNotFound
	}
	return c, err
}

// CreateComplaint inserts a pending complaint and returns its id.
func (s *Store) CreateComplaint(ctx context.Context, c models.Complaint) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO complaints (title, description, category, created_by) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Title, c.Description, c.Category, c.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert complaint: %w", err)
	}
	return id, nil
}

// UpdateComplaintStatus moves a complaint to status and bumps updated_at.
func (s *Store) UpdateComplaintStatus(ctx context.Context, id int64, status models.ComplaintStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE complaints SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteComplaint removes a complaint.
func (s *Store) DeleteComplaint(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ComplaintStats counts complaints per status.
func (s *Store) ComplaintStats(ctx context.Context) (models.ComplaintStats, error) {
	const query = `
	SELECT
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'in-progress'),
		COUNT(*) FILTER (WHERE status = 'resolved'),
		COUNT(*)
	FROM complaints
	`
	var stats models.ComplaintStats
	if err := s.pool.QueryRow(ctx, query).Scan(&stats.Pending, &stats.InProgress, &stats.Resolved, &stats.Total); err != nil {
		return models.ComplaintStats{}, fmt.Errorf("complaint stats: %w", err)
	}
	return stats, nil
}

func scanNotice(row pgx.Row) (models.Notice, error) {
	var n models.Notice
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Priority, &n.Author, &n.CreatedBy, &n.CreatedAt)
	return n, err
}

func scanComplaint(row pgx.Row) (models.Complaint, error) {
	var c models.Complaint
	var status string
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return models.Complaint{}, err
	}
	c.Status = models.ComplaintStatus(status)
	return c, nil
}
