package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/storage"
)

const noticeColumns = `id, title, content, priority, author, created_by, created_at`

func (s *Store) ListNotices(ctx context.Context, filter storage.NoticeFilter) ([]models.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices ORDER BY created_at DESC, id DESC`
	args := []any{}
	if filter.Priority != "" {
		query = `SELECT ` + noticeColumns + ` FROM notices WHERE priority = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, filter.Priority)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *Store) GetNotice(ctx context.Context, id int64) (models.Notice, error) {
	n, err := scanNotice(s.db.QueryRowContext(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notice{}, storage.ErrNotFound
	}
	return n, err
}

func (s *Store) CreateNotice(ctx context.Context, n models.Notice) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notices (title, content, priority, author, created_by) VALUES ($1, $2, $3, $4, $5)`,
		n.Title, n.Content, n.Priority, n.Author, n.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert notice: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UpdateNotice(ctx context.Context, n models.Notice) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notices SET title = $1, content = $2, priority = $3, author = $4 WHERE id = $5`,
		n.Title, n.Content, n.Priority, n.Author, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteNotice(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return requireAffected(res)
}

const complaintColumns = `id, title, description, category, status, created_by, created_at, updated_at`

func (s *Store) ListComplaints(ctx context.Context, filter storage.ComplaintFilter) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints ORDER BY created_at DESC, id DESC`
	args := []any{}
	if filter.Status != "" {
		query = `SELECT ` + complaintColumns + ` FROM complaints WHERE status = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, string(filter.Status))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *Store) GetComplaint(ctx context.Context, id int64) (models.Complaint, error) {
	c, err := scanComplaint(s.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Complaint{}, storage.ErrNotFound
	}
	return c, err
}

func (s *Store) CreateComplaint(ctx context.Context, c models.Complaint) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO complaints (title, description, category, created_by) VALUES ($1, $2, $3, $4)`,
		c.Title, c.Description, c.Category, c.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert complaint: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UpdateComplaintStatus(ctx context.Context, id int64, status models.ComplaintStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE complaints SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteComplaint(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) ComplaintStats(ctx context.Context) (models.ComplaintStats, error) {
	const query = `
	SELECT
		COUNT(CASE WHEN status = 'pending' THEN 1 END),
		COUNT(CASE WHEN status = 'in-progress' THEN 1 END),
		COUNT(CASE WHEN status = 'resolved' THEN 1 END),
		COUNT(*)
	FROM complaints
	`
	var stats models.ComplaintStats
	if err := s.db.QueryRowContext(ctx, query).Scan(&stats.Pending, &stats.InProgress, &stats.Resolved, &stats.Total); err != nil {
		return models.ComplaintStats{}, fmt.Errorf("complaint stats: %w", err)
	}
	return stats, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotice(row scanner) (models.Notice, error) {
	var n models.Notice
	var createdBy sql.NullInt64
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Priority, &n.Author, &createdBy, &n.CreatedAt); err != nil {
		return models.Notice{}, err
	}
	if createdBy.Valid {
		n.CreatedBy = &createdBy.Int64
	}
	return n, nil
}

func scanComplaint(row scanner) (models.Complaint, error) {
	var c models.Complaint
	var status string
	var createdBy sql.NullInt64
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &status, &createdBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return models.Complaint{}, err
	}
	c.Status = models.ComplaintStatus(status)
	if createdBy.Valid {
		c.CreatedBy = &createdBy.Int64
	}
	return c, nil
}
