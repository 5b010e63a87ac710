package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/storage"
)

const eventColumns = `id, title, description, category, date::text, time, venue, organizer, created_by, created_at`

// ListEvents returns events by date, latest first.
func (s *Store) ListEvents(ctx context.Context, filter storage.CategoryFilter) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC, id DESC`
	args := []any{}
	if filter.Category != "" {
		query = `SELECT ` + eventColumns + ` FROM events WHERE category = $1 ORDER BY date DESC, id DESC`
		args = append(args, filter.Category)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEvent fetches one event.
func (s *Store) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	e, err := scanEvent(s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Event{}, storage.ErrNotFound
	}
	return e, err
}

// CreateEvent inserts an event and returns its id.
func (s *Store) CreateEvent(ctx context.Context, e models.Event) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO events (title, description, category, date, time, venue, organizer, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		e.Title, e.Description, e.Category, e.Date, e.Time, e.Venue, e.Organizer, e.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// UpdateEvent overwrites the editable event fields.
func (s *Store) UpdateEvent(ctx context.Context, e models.Event) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE events SET title = $1, description = $2, category = $3, date = $4, time = $5, venue = $6, organizer = $7
		WHERE id = $8`,
		e.Title, e.Description, e.Category, e.Date, e.Time, e.Venue, e.Organizer, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireAffected(tag)
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(tag)
}

const clubColumns = `id, name, description, category, coordinator, members, projects, created_by, created_at`

const syncMembers = `UPDATE clubs SET members = (SELECT COUNT(*) FROM club_members WHERE club_id = $1) WHERE id = $1`

// ListClubs returns clubs newest first.
func (s *Store) ListClubs(ctx context.Context, filter storage.CategoryFilter) ([]models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if filter.Category != "" {
		query = `SELECT ` + clubColumns + ` FROM clubs WHERE category = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, filter.Category)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	defer rows.Close()

	clubs := []models.Club{}
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("scan club: %w", err)
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// GetClub fetches one club.
func (s *Store) GetClub(ctx context.Context, id int64) (models.Club, error) {
	c, err := scanClub(s.pool.QueryRow(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Club{}, storage.ErrNotFound
	}
	return c, err
}

// CreateClub inserts the club and enrols its creator in one transaction.
func (s *Store) CreateClub(ctx context.Context, c models.Club, creatorID int64) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO clubs (name, description, category, coordinator, created_by) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			c.Name, c.Description, c.Category, c.Coordinator, creatorID,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert club: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO club_members (club_id, user_id) VALUES ($1, $2)`, id, creatorID); err != nil {
			return fmt.Errorf("insert club creator: %w", err)
		}
		if _, err := tx.Exec(ctx, syncMembers, id); err != nil {
			return fmt.Errorf("count club members: %w", err)
		}
		return nil
	})
	return id, err
}

// JoinClub enrols userID and recounts the club's members.
func (s *Store) JoinClub(ctx context.Context, clubID, userID int64) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var one int
		if err := tx.QueryRow(ctx, `SELECT 1 FROM clubs WHERE id = $1 FOR UPDATE`, clubID).Scan(&one); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("find club: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO club_members (club_id, user_id) VALUES ($1, $2)`, clubID, userID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert club member: %w", err)
		}
		if _, err := tx.Exec(ctx, syncMembers, clubID); err != nil {
			return fmt.Errorf("count club members: %w", err)
		}
		return nil
	})
}

// LeaveClub drops userID's membership and recounts the club's members.
func (s *Store) LeaveClub(ctx context.Context, clubID, userID int64) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM club_members WHERE club_id = $1 AND user_id = $2`, clubID, userID)
		if err != nil {
			return fmt.Errorf("delete club member: %w", err)
		}
		if err := requireAffected(tag); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, syncMembers, clubID); err != nil {
			return fmt.Errorf("count club members: %w", err)
		}
		return nil
	})
}

// DeleteClub removes a club; memberships go with it via ON DELETE CASCADE.
func (s *Store) DeleteClub(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete club: %w", err)
	}
	return requireAffected(tag)
}

const attendanceColumns = `id, user_id, subject, date::text, status, created_at`

// ListAttendance returns one member's records. A date filter orders by
// marking time, otherwise records run latest class first.
func (s *Store) ListAttendance(ctx context.Context, userID int64, filter storage.AttendanceFilter) ([]models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE user_id = $1 ORDER BY date DESC, id DESC`
	args := []any{userID}
	switch {
	case filter.Date != "":
		query = `SELECT ` + attendanceColumns + ` FROM attendance WHERE user_id = $1 AND date = $2 ORDER BY created_at DESC, id DESC`
		args = append(args, filter.Date)
	case filter.Subject != "":
		query = `SELECT ` + attendanceColumns + ` FROM attendance WHERE user_id = $1 AND subject = $2 ORDER BY date DESC, id DESC`
		args = append(args, filter.Subject)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	records := []models.AttendanceRecord{}
	for rows.Next() {
		var a models.AttendanceRecord
		var status string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Subject, &a.Date, &status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		a.Status = models.AttendanceStatus(status)
		records = append(records, a)
	}
	return records, rows.Err()
}

// MarkAttendance records a class and returns its id.
func (s *Store) MarkAttendance(ctx context.Context, a models.AttendanceRecord) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO attendance (user_id, subject, date, status) VALUES ($1, $2, $3, $4) RETURNING id`,
		a.UserID, a.Subject, a.Date, string(a.Status),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert attendance: %w", err)
	}
	return id, nil
}

// AttendanceStats totals one member's records per subject.
func (s *Store) AttendanceStats(ctx context.Context, userID int64) ([]models.SubjectAttendance, error) {
	const query = `
	SELECT
		subject,
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'present'),
		COUNT(*) FILTER (WHERE status = 'absent')
	FROM attendance
	WHERE user_id = $1
	GROUP BY subject
	ORDER BY subject
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("attendance stats: %w", err)
	}
	defer rows.Close()

	stats := []models.SubjectAttendance{}
	for rows.Next() {
		var st models.SubjectAttendance
		if err := rows.Scan(&st.Subject, &st.TotalClasses, &st.Present, &st.Absent); err != nil {
			return nil, fmt.Errorf("scan attendance stats: %w", err)
		}
		st.Fill()
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

const feedbackColumns = `id, title, message, category, rating, created_by, created_at`

// ListFeedback returns feedback newest first.
func (s *Store) ListFeedback(ctx context.Context, filter storage.CategoryFilter) ([]models.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback ORDER BY created_at DESC, id DESC`
	args := []any{}
	if filter.Category != "" {
		query = `SELECT ` + feedbackColumns + ` FROM feedback WHERE category = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, filter.Category)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	out := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.Title, &f.Message, &f.Category, &f.Rating, &f.CreatedBy, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFeedback inserts feedback and returns its id.
func (s *Store) CreateFeedback(ctx context.Context, f models.Feedback) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO feedback (title, message, category, rating, created_by) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		f.Title, f.Message, f.Category, f.Rating, f.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	return id, nil
}

// DeleteFeedback removes feedback.
func (s *Store) DeleteFeedback(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return requireAffected(tag)
}

// FeedbackSummary aggregates every rating.
func (s *Store) FeedbackSummary(ctx context.Context) (models.FeedbackSummary, error) {
	const query = `
	SELECT
		COALESCE(AVG(rating), 0)::float8,
		COUNT(*),
		COUNT(*) FILTER (WHERE rating >= 4),
		COUNT(*) FILTER (WHERE rating <= 2)
	FROM feedback
	`
	var sum models.FeedbackSummary
	if err := s.pool.QueryRow(ctx, query).Scan(&sum.AverageRating, &sum.TotalFeedback, &sum.Positive, &sum.Negative); err != nil {
		return models.FeedbackSummary{}, fmt.Errorf("feedback summary: %w", err)
	}
	sum.RoundAverage()
	return sum, nil
}

func requireAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Date, &e.Time, &e.Venue, &e.Organizer, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

func scanClub(row pgx.Row) (models.Club, error) {
	var c models.Club
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Coordinator, &c.Members, &c.Projects, &c.CreatedBy, &c.CreatedAt)
	return c, err
}
