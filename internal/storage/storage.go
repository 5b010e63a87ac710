package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/campus-connect/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore is the credential store consumed by the auth endpoints.
type UserStore interface {
	// CreateUser inserts the user and returns it with ID and CreatedAt set.
	// A duplicate email yields ErrAlreadyExists via the unique constraint.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// NoticeFilter narrows ListNotices; an empty Priority lists everything.
type NoticeFilter struct {
	Priority string
}

type NoticeStore interface {
	ListNotices(ctx context.Context, filter NoticeFilter) ([]models.Notice, error)
	GetNotice(ctx context.Context, id int64) (models.Notice, error)
	CreateNotice(ctx context.Context, notice models.Notice) (int64, error)
	UpdateNotice(ctx context.Context, notice models.Notice) error
	DeleteNotice(ctx context.Context, id int64) error
}

// ComplaintFilter narrows ListComplaints; an empty Status lists everything.
type ComplaintFilter struct {
	Status models.ComplaintStatus
}

type ComplaintStore interface {
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	GetComplaint(ctx context.Context, id int64) (models.Complaint, error)
	CreateComplaint(ctx context.Context, complaint models.Complaint) (int64, error)
	UpdateComplaintStatus(ctx context.Context, id int64, status models.ComplaintStatus) error
	DeleteComplaint(ctx context.Context, id int64) error
	ComplaintStats(ctx context.Context) (models.ComplaintStats, error)
}

// CategoryFilter narrows the event, club and feedback listings; an empty
// Category lists everything.
type CategoryFilter struct {
	Category string
}

type EventStore interface {
	// ListEvents returns events by date, latest first.
	ListEvents(ctx context.Context, filter CategoryFilter) ([]models.Event, error)
	GetEvent(ctx context.Context, id int64) (models.Event, error)
	CreateEvent(ctx context.Context, event models.Event) (int64, error)
	UpdateEvent(ctx context.Context, event models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

// ClubStore keeps clubs and their memberships. Members on a club always
// equals its membership rows.
type ClubStore interface {
	ListClubs(ctx context.Context, filter CategoryFilter) ([]models.Club, error)
	GetClub(ctx context.Context, id int64) (models.Club, error)
	// CreateClub inserts the club with its creator as the first member.
	CreateClub(ctx context.Context, club models.Club, creatorID int64) (int64, error)
	// JoinClub returns ErrNotFound for a missing club and ErrAlreadyExists
	// when userID is already a member.
	JoinClub(ctx context.Context, clubID, userID int64) error
	// LeaveClub returns ErrNotFound when userID is not a member.
	LeaveClub(ctx context.Context, clubID, userID int64) error
	// DeleteClub removes the club and its memberships.
	DeleteClub(ctx context.Context, id int64) error
}

// AttendanceFilter narrows ListAttendance. Date wins over Subject when both
// are set.
type AttendanceFilter struct {
	Subject string
	Date    string
}

// AttendanceStore is scoped to one member per call.
type AttendanceStore interface {
	ListAttendance(ctx context.Context, userID int64, filter AttendanceFilter) ([]models.AttendanceRecord, error)
	MarkAttendance(ctx context.Context, record models.AttendanceRecord) (int64, error)
	AttendanceStats(ctx context.Context, userID int64) ([]models.SubjectAttendance, error)
}

type FeedbackStore interface {
	ListFeedback(ctx context.Context, filter CategoryFilter) ([]models.Feedback, error)
	CreateFeedback(ctx context.Context, feedback models.Feedback) (int64, error)
	DeleteFeedback(ctx context.Context, id int64) error
	FeedbackSummary(ctx context.Context) (models.FeedbackSummary, error)
}

// Store is the full persistence surface a backend provides.
type Store interface {
	UserStore
	NoticeStore
	ComplaintStore
	EventStore
	ClubStore
	AttendanceStore
	FeedbackStore
	Ping(ctx context.Context) error
	Close()
}
