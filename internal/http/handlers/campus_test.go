package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/models/dto"
)

func TestNoticeLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signup(t, "Ann", "ann@x.edu")

	rec := api.do(t, http.MethodPost, "/api/notices", "", map[string]string{"title": "T", "content": "C", "author": "A"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/notices", token, map[string]string{"title": "T", "content": "C"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title, content, and author are required", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/notices", token, map[string]string{"title": "Exam", "content": "Monday", "author": "Registrar"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[dto.CreatedResponse](t, rec)
	assert.Equal(t, "Notice created successfully", created.Message)

	rec = api.do(t, http.MethodPost, "/api/notices", token, map[string]string{"title": "Fire drill", "content": "Now", "author": "Safety", "priority": "urgent"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/notices/"+itoa(created.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notice := decodeBody[models.Notice](t, rec)
	assert.Equal(t, models.DefaultNoticePriority, notice.Priority)
	require.NotNil(t, notice.CreatedBy)

	all := decodeBody[[]models.Notice](t, api.do(t, http.MethodGet, "/api/notices?priority=all", "", nil))
	assert.Len(t, all, 2)
	urgent := decodeBody[[]models.Notice](t, api.do(t, http.MethodGet, "/api/notices?priority=urgent", "", nil))
	require.Len(t, urgent, 1)
	assert.Equal(t, "Fire drill", urgent[0].Title)

	rec = api.do(t, http.MethodPut, "/api/notices/"+itoa(created.ID), token, map[string]string{"title": "Exam moved", "content": "Tuesday", "author": "Registrar", "priority": "high"})
	require.Equal(t, http.StatusOK, rec.Code)
	notice = decodeBody[models.Notice](t, api.do(t, http.MethodGet, "/api/notices/"+itoa(created.ID), "", nil))
	assert.Equal(t, "Exam moved", notice.Title)
	assert.Equal(t, "high", notice.Priority)

	rec = api.do(t, http.MethodDelete, "/api/notices/"+itoa(created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodDelete, "/api/notices/"+itoa(created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Notice not found", errorOf(t, rec))

	rec = api.do(t, http.MethodGet, "/api/notices/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplaintLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signup(t, "Ann", "ann@x.edu")

	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/complaints", "", nil).Code)

	rec := api.do(t, http.MethodPost, "/api/complaints", token, map[string]string{"title": "Wifi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/complaints", token, map[string]string{"title": "Wifi", "description": "Down in library", "category": "it"})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decodeBody[dto.CreatedResponse](t, rec)
	assert.Equal(t, "Complaint submitted successfully", first.Message)

	rec = api.do(t, http.MethodPost, "/api/complaints", token, map[string]string{"title": "Leak", "description": "Room 4", "category": "facilities"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/complaints/"+itoa(first.ID)+"/status", token, map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", errorOf(t, rec))

	rec = api.do(t, http.MethodPatch, "/api/complaints/"+itoa(first.ID)+"/status", token, map[string]string{"status": "in-progress"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/complaints/999/status", token, map[string]string{"status": "resolved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Complaint not found", errorOf(t, rec))

	got := decodeBody[models.Complaint](t, api.do(t, http.MethodGet, "/api/complaints/"+itoa(first.ID), token, nil))
	assert.Equal(t, models.ComplaintInProgress, got.Status)

	pending := decodeBody[[]models.Complaint](t, api.do(t, http.MethodGet, "/api/complaints?status=pending", token, nil))
	require.Len(t, pending, 1)
	assert.Equal(t, "Leak", pending[0].Title)

	stats := decodeBody[models.ComplaintStats](t, api.do(t, http.MethodGet, "/api/complaints/stats/summary", token, nil))
	assert.Equal(t, models.ComplaintStats{Pending: 1, InProgress: 1, Total: 2}, stats)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodDelete, "/api/complaints/"+itoa(first.ID), token, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/complaints/"+itoa(first.ID), token, nil).Code)
}
