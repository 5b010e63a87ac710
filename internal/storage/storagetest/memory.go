// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/storage"
)

var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore keeps records in maps. Setting Err makes every call fail with it.
type MemoryStore struct {
	mu         sync.Mutex
	nextID     int64
	users      map[string]models.User
	notices    map[int64]models.Notice
	complaints map[int64]models.Complaint
	events     map[int64]models.Event
	clubs      map[int64]models.Club
	members    map[int64]map[int64]bool
	attendance map[int64]models.AttendanceRecord
	feedback   map[int64]models.Feedback

	Err error
	// SkipLookup hides existing users from FindByEmail, so CreateUser's
	// uniqueness check is the only guard, as in a check-then-insert race.
	SkipLookup bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      map[string]models.User{},
		notices:    map[int64]models.Notice{},
		complaints: map[int64]models.Complaint{},
		events:     map[int64]models.Event{},
		clubs:      map[int64]models.Club{},
		members:    map[int64]map[int64]bool{},
		attendance: map[int64]models.AttendanceRecord{},
		feedback:   map[int64]models.Feedback{},
	}
}

func (m *MemoryStore) Ping(context.Context) error { return m.Err }

func (m *MemoryStore) Close() {}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.User{}, m.Err
	}
	if _, ok := m.users[user.Email]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	user.ID = m.id()
	user.CreatedAt = time.Now().UTC()
	m.users[user.Email] = user
	return user, nil
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.User{}, m.Err
	}
	user, ok := m.users[email]
	if !ok || m.SkipLookup {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// UserCount reports how many users have been created.
func (m *MemoryStore) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MemoryStore) ListNotices(_ context.Context, filter storage.NoticeFilter) ([]models.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Notice{}
	for _, n := range m.notices {
		if filter.Priority == "" || n.Priority == filter.Priority {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetNotice(_ context.Context, id int64) (models.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Notice{}, m.Err
	}
	n, ok := m.notices[id]
	if !ok {
		return models.Notice{}, storage.ErrNotFound
	}
	return n, nil
}

func (m *MemoryStore) CreateNotice(_ context.Context, n models.Notice) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	n.ID = m.id()
	n.CreatedAt = time.Now().UTC()
	m.notices[n.ID] = n
	return n.ID, nil
}

func (m *MemoryStore) UpdateNotice(_ context.Context, n models.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	old, ok := m.notices[n.ID]
	if !ok {
		return storage.ErrNotFound
	}
	n.CreatedBy, n.CreatedAt = old.CreatedBy, old.CreatedAt
	m.notices[n.ID] = n
	return nil
}

func (m *MemoryStore) DeleteNotice(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.notices[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.notices, id)
	return nil
}

func (m *MemoryStore) ListComplaints(_ context.Context, filter storage.ComplaintFilter) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Complaint{}
	for _, c := range m.complaints {
		if filter.Status == "" || c.Status == filter.Status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetComplaint(_ context.Context, id int64) (models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Complaint{}, m.Err
	}
	c, ok := m.complaints[id]
	if !ok {
		return models.Complaint{}, storage.ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) CreateComplaint(_ context.Context, c models.Complaint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	now := time.Now().UTC()
	c.ID = m.id()
	c.Status = models.ComplaintPending
	c.CreatedAt, c.UpdatedAt = now, now
	m.complaints[c.ID] = c
	return c.ID, nil
}

func (m *MemoryStore) UpdateComplaintStatus(_ context.Context, id int64, status models.ComplaintStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c, ok := m.complaints[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	m.complaints[id] = c
	return nil
}

func (m *MemoryStore) DeleteComplaint(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.complaints[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.complaints, id)
	return nil
}

func (m *MemoryStore) ComplaintStats(context.Context) (models.ComplaintStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.ComplaintStats{}, m.Err
	}
	var stats models.ComplaintStats
	for _, c := range m.complaints {
		stats.Total++
		switch c.Status {
		case models.ComplaintPending:
			stats.Pending++
		case models.ComplaintInProgress:
			stats.InProgress++
		case models.ComplaintResolved:
			stats.Resolved++
		}
	}
	return stats, nil
}

func (m *MemoryStore) ListEvents(_ context.Context, filter storage.CategoryFilter) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Event{}
	for _, e := range m.events {
		if filter.Category == "" || e.Category == filter.Category {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) GetEvent(_ context.Context, id int64) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Event{}, m.Err
	}
	e, ok := m.events[id]
	if !ok {
		return models.Event{}, storage.ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) CreateEvent(_ context.Context, e models.Event) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	e.ID = m.id()
	e.CreatedAt = time.Now().UTC()
	m.events[e.ID] = e
	return e.ID, nil
}

func (m *MemoryStore) UpdateEvent(_ context.Context, e models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	old, ok := m.events[e.ID]
	if !ok {
		return storage.ErrNotFound
	}
	e.CreatedBy, e.CreatedAt = old.CreatedBy, old.CreatedAt
	m.events[e.ID] = e
	return nil
}

func (m *MemoryStore) DeleteEvent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.events[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *MemoryStore) ListClubs(_ context.Context, filter storage.CategoryFilter) ([]models.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Club{}
	for _, c := range m.clubs {
		if filter.Category == "" || c.Category == filter.Category {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetClub(_ context.Context, id int64) (models.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Club{}, m.Err
	}
	c, ok := m.clubs[id]
	if !ok {
		return models.Club{}, storage.ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) CreateClub(_ context.Context, c models.Club, creatorID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	c.ID = m.id()
	c.CreatedBy = &creatorID
	c.CreatedAt = time.Now().UTC()
	c.Members = 1
	m.clubs[c.ID] = c
	m.members[c.ID] = map[int64]bool{creatorID: true}
	return c.ID, nil
}

func (m *MemoryStore) JoinClub(_ context.Context, clubID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c, ok := m.clubs[clubID]
	if !ok {
		return storage.ErrNotFound
	}
	if m.members[clubID][userID] {
		return storage.ErrAlreadyExists
	}
	m.members[clubID][userID] = true
	c.Members = int64(len(m.members[clubID]))
	m.clubs[clubID] = c
	return nil
}

func (m *MemoryStore) LeaveClub(_ context.Context, clubID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if !m.members[clubID][userID] {
		return storage.ErrNotFound
	}
	delete(m.members[clubID], userID)
	c := m.clubs[clubID]
	c.Members = int64(len(m.members[clubID]))
	m.clubs[clubID] = c
	return nil
}

func (m *MemoryStore) DeleteClub(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.clubs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.clubs, id)
	delete(m.members, id)
	return nil
}

func (m *MemoryStore) ListAttendance(_ context.Context, userID int64, filter storage.AttendanceFilter) ([]models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.AttendanceRecord{}
	for _, a := range m.attendance {
		switch {
		case a.UserID != userID:
			continue
		case filter.Date != "":
			if a.Date != filter.Date {
				continue
			}
		case filter.Subject != "":
			if a.Subject != filter.Subject {
				continue
			}
		}
		out = append(out, a)
	}
	byDate := filter.Date == ""
	sort.Slice(out, func(i, j int) bool {
		if byDate && out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) MarkAttendance(_ context.Context, a models.AttendanceRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	a.ID = m.id()
	a.CreatedAt = time.Now().UTC()
	m.attendance[a.ID] = a
	return a.ID, nil
}

func (m *MemoryStore) AttendanceStats(_ context.Context, userID int64) ([]models.SubjectAttendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	bySubject := map[string]*models.SubjectAttendance{}
	for _, a := range m.attendance {
		if a.UserID != userID {
			continue
		}
		st, ok := bySubject[a.Subject]
		if !ok {
			st = &models.SubjectAttendance{Subject: a.Subject}
			bySubject[a.Subject] = st
		}
		st.TotalClasses++
		switch a.Status {
		case models.AttendancePresent:
			st.Present++
		case models.AttendanceAbsent:
			st.Absent++
		}
	}
	out := []models.SubjectAttendance{}
	for _, st := range bySubject {
		st.Fill()
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func (m *MemoryStore) ListFeedback(_ context.Context, filter storage.CategoryFilter) ([]models.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Feedback{}
	for _, f := range m.feedback {
		if filter.Category == "" || f.Category == filter.Category {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) CreateFeedback(_ context.Context, f models.Feedback) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	f.ID = m.id()
	f.CreatedAt = time.Now().UTC()
	m.feedback[f.ID] = f
	return f.ID, nil
}

func (m *MemoryStore) DeleteFeedback(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.feedback[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.feedback, id)
	return nil
}

func (m *MemoryStore) FeedbackSummary(context.Context) (models.FeedbackSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.FeedbackSummary{}, m.Err
	}
	var sum models.FeedbackSummary
	total := 0
	for _, f := range m.feedback {
		sum.TotalFeedback++
		total += f.Rating
		switch {
		case f.Rating >= 4:
			sum.Positive++
		case f.Rating <= 2:
			sum.Negative++
		}
	}
	if sum.TotalFeedback > 0 {
		sum.AverageRating = float64(total) / float64(sum.TotalFeedback)
		sum.RoundAverage()
	}
	return sum, nil
}
