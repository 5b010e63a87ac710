package models

import (
	"math"
	"time"
)

// DateLayout is the calendar-date format events and attendance use.
const DateLayout = "2006-01-02"

// Event is a scheduled campus activity.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Venue       string    `json:"venue"`
	Organizer   string    `json:"organizer"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Club is a student society. Members counts club_members rows.
type Club struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Coordinator string    `json:"coordinator"`
	Members     int64     `json:"members"`
	Projects    int64     `json:"projects"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// AttendanceRecord is one class a member marked.
type AttendanceRecord struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Subject   string           `json:"subject"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// SubjectAttendance totals one member's records for a subject.
type SubjectAttendance struct {
	Subject      string  `json:"subject"`
	TotalClasses int64   `json:"total_classes"`
	Present      int64   `json:"present"`
	Absent       int64   `json:"absent"`
	Percentage   float64 `json:"percentage"`
}

// Fill sets Percentage from Present and TotalClasses, rounded to two places.
func (s *SubjectAttendance) Fill() {
	if s.TotalClasses == 0 {
		s.Percentage = 0
		return
	}
	s.Percentage = round2(float64(s.Present) / float64(s.TotalClasses) * 100)
}

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a rated comment about campus life.
type Feedback struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Rating    int       `json:"rating"`
	CreatedBy *int64    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackSummary aggregates every rating. Positive counts ratings of 4 or
// more, Negative ratings of 2 or less.
type FeedbackSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalFeedback int64   `json:"total_feedback"`
	Positive      int64   `json:"positive"`
	Negative      int64   `json:"negative"`
}

// RoundAverage rounds AverageRating to two places.
func (s *FeedbackSummary) RoundAverage() {
	s.AverageRating = round2(s.AverageRating)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
