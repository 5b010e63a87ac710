package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/storage"
)

const eventColumns = `id, title, description, category, date, time, venue, organizer, created_by, created_at`

func (s *Store) ListEvents(ctx context.Context, filter storage.CategoryFilter) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC, id DESC`
	args := []any{}
	if filter.Category != "" {
		query = `SELECT ` + eventColumns + ` FROM events WHERE category = $1 ORDER BY date DESC, id DESC`
		args = append(args, filter.Category)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *Store) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, storage.ErrNotFound
	}
	return e, err
}

func (s *Store) CreateEvent(ctx context.Context, e models.Event) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (title, description, category, date, time, venue, organizer, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.Title, e.Description, e.Category, e.Date, e.Time, e.Venue, e.Organizer, e.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UpdateEvent(ctx context.Context, e models.Event) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET title = $1, description = $2, category = $3, date = $4, time = $5, venue = $6, organizer = $7
		WHERE id = $8`,
		e.Title, e.Description, e.Category, e.Date, e.Time, e.Venue, e.Organizer, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(res)
}

const clubColumns = `id, name, description, category, coordinator, members, projects, created_by, created_at`

// syncMembers recounts a club's membership rows into clubs.members.
const syncMembers = `UPDATE clubs SET members = (SELECT COUNT(*) FROM club_members WHERE club_id = $1) WHERE id = $1`

func (s *Store) ListClubs(ctx context.Context, filter storage.CategoryFilter) ([]models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if filter.Category != "" {
		query = `SELECT ` + clubColumns + ` FROM clubs WHERE category = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, filter.Category)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *Store) GetClub(ctx context.Context, id int64) (models.Club, error) {
	c, err := scanClub(s.db.QueryRowContext(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Club{}, storage.ErrNotFound
	}
	return c, err
}

func (s *Store) CreateClub(ctx context.Context, c models.Club, creatorID int64) (int64, error) {
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO clubs (name, description, category, coordinator, created_by) VALUES ($1, $2, $3, $4, $5)`,
			c.Name, c.Description, c.Category, c.Coordinator, creatorID,
		)
		if err != nil {
			return fmt.Errorf("insert club: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert club: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO club_members (club_id, user_id) VALUES ($1, $2)`, id, creatorID); err != nil {
			return fmt.Errorf("insert club creator: %w", err)
		}
		if _, err := tx.ExecContext(ctx, syncMembers, id); err != nil {
			return fmt.Errorf("count club members: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *Store) JoinClub(ctx context.Context, clubID, userID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM clubs WHERE id = $1`, clubID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("find club: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO club_members (club_id, user_id) VALUES ($1, $2)`, clubID, userID); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert club member: %w", err)
		}
		if _, err := tx.ExecContext(ctx, syncMembers, clubID); err != nil {
			return fmt.Errorf("count club members: %w", err)
		}
		return nil
	})
}

func (s *Store) LeaveClub(ctx context.Context, clubID, userID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM club_members WHERE club_id = $1 AND user_id = $2`, clubID, userID)
		if err != nil {
			return fmt.Errorf("delete club member: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, syncMembers, clubID); err != nil {
			return fmt.Errorf("count club members: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteClub(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete club: %w", err)
	}
	return requireAffected(res)
}

const attendanceColumns = `id, user_id, subject, date, status, created_at`

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
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *Store) MarkAttendance(ctx context.Context, a models.AttendanceRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (user_id, subject, date, status) VALUES ($1, $2, $3, $4)`,
		a.UserID, a.Subject, a.Date, string(a.Status),
	)
	if err != nil {
		return 0, fmt.Errorf("insert attendance: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) AttendanceStats(ctx context.Context, userID int64) ([]models.SubjectAttendance, error) {
	const query = `
	SELECT
		subject,
		COUNT(*),
		COUNT(CASE WHEN status = 'present' THEN 1 END),
		COUNT(CASE WHEN status = 'absent' THEN 1 END)
	FROM attendance
	WHERE user_id = $1
	GROUP BY subject
	ORDER BY subject
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
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

func (s *Store) ListFeedback(ctx context.Context, filter storage.CategoryFilter) ([]models.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback ORDER BY created_at DESC, id DESC`
	args := []any{}
	if filter.Category != "" {
		query = `SELECT ` + feedbackColumns + ` FROM feedback WHERE category = $1 ORDER BY created_at DESC, id DESC`
		args = append(args, filter.Category)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	out := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		var createdBy sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Title, &f.Message, &f.Category, &f.Rating, &createdBy, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if createdBy.Valid {
			f.CreatedBy = &createdBy.Int64
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) CreateFeedback(ctx context.Context, f models.Feedback) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (title, message, category, rating, created_by) VALUES ($1, $2, $3, $4, $5)`,
		f.Title, f.Message, f.Category, f.Rating, f.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) DeleteFeedback(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) FeedbackSummary(ctx context.Context) (models.FeedbackSummary, error) {
	const query = `
	SELECT
		COALESCE(AVG(rating), 0.0),
		COUNT(*),
		COUNT(CASE WHEN rating >= 4 THEN 1 END),
		COUNT(CASE WHEN rating <= 2 THEN 1 END)
	FROM feedback
	`
	var sum models.FeedbackSummary
	if err := s.db.QueryRowContext(ctx, query).Scan(&sum.AverageRating, &sum.TotalFeedback, &sum.Positive, &sum.Negative); err != nil {
		return models.FeedbackSummary{}, fmt.Errorf("feedback summary: %w", err)
	}
	sum.RoundAverage()
	return sum, nil
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanEvent(row scanner) (models.Event, error) {
	var e models.Event
	var createdBy sql.NullInt64
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Date, &e.Time, &e.Venue, &e.Organizer, &createdBy, &e.CreatedAt); err != nil {
		return models.Event{}, err
	}
	if createdBy.Valid {
		e.CreatedBy = &createdBy.Int64
	}
	return e, nil
}

func scanClub(row scanner) (models.Club, error) {
	var c models.Club
	var createdBy sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Coordinator, &c.Members, &c.Projects, &createdBy, &c.CreatedAt); err != nil {
		return models.Club{}, err
	}
	if createdBy.Valid {
		c.CreatedBy = &createdBy.Int64
	}
	return c, nil
}
