package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/campus-connect/internal/auth"
	"github.com/hongminglow/campus-connect/internal/http/respond"
	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/models/dto"
	"github.com/hongminglow/campus-connect/internal/storage"
)

// AttendanceHandler serves a member's own attendance log.
type AttendanceHandler struct {
	store       storage.AttendanceStore
	log         logrus.FieldLogger
	development bool
}

func NewAttendanceHandler(store storage.AttendanceStore, log logrus.FieldLogger, development bool) *AttendanceHandler {
	return &AttendanceHandler{store: store, log: log, development: development}
}

// Register attaches /attendance routes behind gate.
func (h *AttendanceHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(gate)
		r.Get("/", h.handleList)
		r.Post("/", h.handleMark)
		r.Get("/stats", h.handleStats)
	})
}

func (h *AttendanceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, found := auth.IdentityFromContext(r.Context())
	if !found {
		respond.Error(w, http.StatusUnauthorized, "Access token required")
		return
	}
	q := r.URL.Query()
	filter := storage.AttendanceFilter{
		Subject: strings.TrimSpace(q.Get("subject")),
		Date:    strings.TrimSpace(q.Get("date")),
	}
	records, err := h.store.ListAttendance(r.Context(), identity.UserID, filter)
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch attendance", err)
		return
	}
	respond.JSON(w, http.StatusOK, records)
}

func (h *AttendanceHandler) handleMark(w http.ResponseWriter, r *http.Request) {
	identity, found := auth.IdentityFromContext(r.Context())
	if !found {
		respond.Error(w, http.StatusUnauthorized, "Access token required")
		return
	}
	var req dto.AttendanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, h.log, h.development, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	record := models.AttendanceRecord{
		UserID:  identity.UserID,
		Subject: strings.TrimSpace(req.Subject),
		Date:    strings.TrimSpace(req.Date),
		Status:  models.AttendanceStatus(strings.TrimSpace(req.Status)),
	}
	if record.Subject == "" || record.Date == "" || record.Status == "" {
		respond.Error(w, http.StatusBadRequest, "Subject, date, and status are required")
		return
	}
	if !validDate(record.Date) {
		respond.Error(w, http.StatusBadRequest, "Date must be in YYYY-MM-DD format")
		return
	}
	if !record.Status.Valid() {
		respond.Error(w, http.StatusBadRequest, "Invalid status")
		return
	}

	id, err := h.store.MarkAttendance(r.Context(), record)
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to mark attendance", err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.CreatedResponse{Message: "Attendance marked successfully", ID: id})
}

func (h *AttendanceHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	identity, found := auth.IdentityFromContext(r.Context())
	if !found {
		respond.Error(w, http.StatusUnauthorized, "Access token required")
		return
	}
	stats, err := h.store.AttendanceStats(r.Context(), identity.UserID)
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch statistics", err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}
