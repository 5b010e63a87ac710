package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/models/dto"
)

func eventBody(title, category, date string) map[string]string {
	return map[string]string{
		"title": title, "description": "d", "category": category, "date": date,
		"time": "14:00", "venue": "Hall A", "organizer": "Student Union",
	}
}

func TestEventLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signup(t, "Ann", "ann@x.edu")

	rec := api.do(t, http.MethodPost, "/api/events", "", eventBody("Fest", "cultural", "2025-03-01"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/events", token, map[string]string{"title": "Fest"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/events", token, eventBody("Fest", "cultural", "01/03/2025"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Date must be in YYYY-MM-DD format", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/events", token, eventBody("Fest", "cultural", "2025-03-01"))
	require.Equal(t, http.StatusCreated, rec.Code)
	fest := decodeBody[dto.CreatedResponse](t, rec)
	assert.Equal(t, "Event created successfully", fest.Message)

	rec = api.do(t, http.MethodPost, "/api/events", token, eventBody("Hackathon", "technical", "2025-04-10"))
	require.Equal(t, http.StatusCreated, rec.Code)

	all := decodeBody[[]models.Event](t, api.do(t, http.MethodGet, "/api/events?category=all", "", nil))
	require.Len(t, all, 2)
	assert.Equal(t, "Hackathon", all[0].Title, "latest date first")

	technical := decodeBody[[]models.Event](t, api.do(t, http.MethodGet, "/api/events?category=technical", "", nil))
	require.Len(t, technical, 1)

	got := decodeBody[models.Event](t, api.do(t, http.MethodGet, "/api/events/"+itoa(fest.ID), "", nil))
	assert.Equal(t, "Hall A", got.Venue)
	require.NotNil(t, got.CreatedBy)

	rec = api.do(t, http.MethodPut, "/api/events/"+itoa(fest.ID), token, eventBody("Spring Fest", "cultural", "2025-03-02"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event updated successfully", decodeBody[dto.MessageResponse](t, rec).Message)
	got = decodeBody[models.Event](t, api.do(t, http.MethodGet, "/api/events/"+itoa(fest.ID), "", nil))
	assert.Equal(t, "Spring Fest", got.Title)
	assert.Equal(t, "2025-03-02", got.Date)

	rec = api.do(t, http.MethodPut, "/api/events/999", token, eventBody("X", "cultural", "2025-03-02"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Event not found", errorOf(t, rec))

	require.Equal(t, http.StatusOK, api.do(t, http.MethodDelete, "/api/events/"+itoa(fest.ID), token, nil).Code)
	rec = api.do(t, http.MethodGet, "/api/events/"+itoa(fest.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Event not found", errorOf(t, rec))
}

func TestClubMembership(t *testing.T) {
	api := newTestAPI(t, nil)
	ann := api.signup(t, "Ann", "ann@x.edu")
	bo := api.signup(t, "Bo", "bo@x.edu")

	rec := api.do(t, http.MethodPost, "/api/clubs", ann, map[string]string{"name": "Chess"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/clubs", ann, map[string]string{
		"name": "Chess", "description": "Weekly games", "category": "games", "coordinator": "Dr. Lee",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	club := decodeBody[dto.CreatedResponse](t, rec)
	assert.Equal(t, "Club created successfully", club.Message)
	path := "/api/clubs/" + itoa(club.ID)

	got := decodeBody[models.Club](t, api.do(t, http.MethodGet, path, "", nil))
	assert.Equal(t, int64(1), got.Members)

	rec = api.do(t, http.MethodPost, path+"/join", ann, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already a member", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, path+"/join", bo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Joined club successfully", decodeBody[dto.MessageResponse](t, rec).Message)
	got = decodeBody[models.Club](t, api.do(t, http.MethodGet, path, "", nil))
	assert.Equal(t, int64(2), got.Members)

	rec = api.do(t, http.MethodPost, path+"/leave", bo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, path+"/leave", bo, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not a member of this club", errorOf(t, rec))
	got = decodeBody[models.Club](t, api.do(t, http.MethodGet, path, "", nil))
	assert.Equal(t, int64(1), got.Members)

	rec = api.do(t, http.MethodPost, "/api/clubs/999/join", bo, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Club not found", errorOf(t, rec))

	games := decodeBody[[]models.Club](t, api.do(t, http.MethodGet, "/api/clubs?category=games", "", nil))
	assert.Len(t, games, 1)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodDelete, path, ann, nil).Code)
	rec = api.do(t, http.MethodDelete, path, ann, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Club not found", errorOf(t, rec))
}

func TestAttendanceIsPerMember(t *testing.T) {
	api := newTestAPI(t, nil)
	ann := api.signup(t, "Ann", "ann@x.edu")
	bo := api.signup(t, "Bo", "bo@x.edu")

	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/attendance", "", nil).Code)

	rec := api.do(t, http.MethodPost, "/api/attendance", ann, map[string]string{"subject": "Math"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Subject, date, and status are required", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/attendance", ann, map[string]string{"subject": "Math", "date": "2025-02-01", "status": "sick"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", errorOf(t, rec))

	for _, mark := range []map[string]string{
		{"subject": "Math", "date": "2025-02-01", "status": "present"},
		{"subject": "Math", "date": "2025-02-02", "status": "present"},
		{"subject": "Math", "date": "2025-02-03", "status": "absent"},
		{"subject": "Physics", "date": "2025-02-03", "status": "late"},
	} {
		rec = api.do(t, http.MethodPost, "/api/attendance", ann, mark)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodPost, "/api/attendance", bo, map[string]string{"subject": "Math", "date": "2025-02-01", "status": "absent"})
	require.Equal(t, http.StatusCreated, rec.Code)

	mine := decodeBody[[]models.AttendanceRecord](t, api.do(t, http.MethodGet, "/api/attendance", ann, nil))
	require.Len(t, mine, 4)
	assert.Equal(t, "2025-02-03", mine[0].Date)

	mathOnly := decodeBody[[]models.AttendanceRecord](t, api.do(t, http.MethodGet, "/api/attendance?subject=Math", ann, nil))
	assert.Len(t, mathOnly, 3)

	// date wins over subject
	onDay := decodeBody[[]models.AttendanceRecord](t, api.do(t, http.MethodGet, "/api/attendance?subject=Math&date=2025-02-03", ann, nil))
	assert.Len(t, onDay, 2)

	stats := decodeBody[[]models.SubjectAttendance](t, api.do(t, http.MethodGet, "/api/attendance/stats", ann, nil))
	require.Len(t, stats, 2)
	assert.Equal(t, models.SubjectAttendance{Subject: "Math", TotalClasses: 3, Present: 2, Absent: 1, Percentage: 66.67}, stats[0])
	assert.Equal(t, models.SubjectAttendance{Subject: "Physics", TotalClasses: 1}, stats[1])

	theirs := decodeBody[[]models.SubjectAttendance](t, api.do(t, http.MethodGet, "/api/attendance/stats", bo, nil))
	require.Len(t, theirs, 1)
	assert.Zero(t, theirs[0].Percentage)
}

func TestFeedbackRatingsAndSummary(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signup(t, "Ann", "ann@x.edu")

	empty := decodeBody[models.FeedbackSummary](t, api.do(t, http.MethodGet, "/api/feedback/stats/summary", "", nil))
	assert.Equal(t, models.FeedbackSummary{}, empty)

	rec := api.do(t, http.MethodPost, "/api/feedback", token, map[string]any{"title": "Food", "message": "Cold", "category": "canteen"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/feedback", token, map[string]any{"title": "Food", "message": "Cold", "category": "canteen", "rating": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Rating must be between 1 and 5", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/feedback", "", map[string]any{"title": "Food", "message": "Cold", "category": "canteen", "rating": 2})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var first int64
	for i, rating := range []int{2, 4, 5} {
		rec = api.do(t, http.MethodPost, "/api/feedback", token, map[string]any{
			"title": "Note", "message": "m", "category": []string{"canteen", "library", "library"}[i], "rating": rating,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeBody[dto.CreatedResponse](t, rec)
		assert.Equal(t, "Feedback submitted successfully", created.Message)
		if i == 0 {
			first = created.ID
		}
	}

	library := decodeBody[[]models.Feedback](t, api.do(t, http.MethodGet, "/api/feedback?category=library", "", nil))
	assert.Len(t, library, 2)

	summary := decodeBody[models.FeedbackSummary](t, api.do(t, http.MethodGet, "/api/feedback/stats/summary", "", nil))
	assert.Equal(t, models.FeedbackSummary{AverageRating: 3.67, TotalFeedback: 3, Positive: 2, Negative: 1}, summary)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodDelete, "/api/feedback/"+itoa(first), token, nil).Code)
	rec = api.do(t, http.MethodDelete, "/api/feedback/"+itoa(first), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Feedback not found", errorOf(t, rec))
}

func TestActivityStoreFailures(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signup(t, "Ann", "ann@x.edu")
	api.store.Err = errors.New("connection reset")

	for _, tc := range []struct {
		method, path, token, message string
		body                        any
	}{
		{http.MethodGet, "/api/events", "", "Failed to fetch events", nil},
		{http.MethodPost, "/api/events", token, "Failed to create event", eventBody("Fest", "cultural", "2025-03-01")},
		{http.MethodGet, "/api/clubs", "", "Failed to fetch clubs", nil},
		{http.MethodPost, "/api/clubs/1/join", token, "Failed to join club", nil},
		{http.MethodGet, "/api/attendance", token, "Failed to fetch attendance", nil},
		{http.MethodGet, "/api/attendance/stats", token, "Failed to fetch statistics", nil},
		{http.MethodGet, "/api/feedback", "", "Failed to fetch feedback", nil},
		{http.MethodGet, "/api/feedback/stats/summary", "", "Failed to fetch statistics", nil},
	} {
		rec := api.do(t, tc.method, tc.path, tc.token, tc.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, tc.path)
		body := decodeBody[map[string]string](t, rec)
		assert.Equal(t, tc.message, body["error"], tc.path)
		assert.Equal(t, "connection reset", body["detail"], tc.path)
	}
}
