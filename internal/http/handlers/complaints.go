package handlers

import (
	"errors"
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

// ComplaintHandler serves the complaint desk. Every route is gated.
type ComplaintHandler struct {
	store       storage.ComplaintStore
	log         logrus.FieldLogger
	development bool
}

func NewComplaintHandler(store storage.ComplaintStore, log logrus.FieldLogger, development bool) *ComplaintHandler {
	return &ComplaintHandler{store: store, log: log, development: development}
}

// Register attaches /complaints routes behind gate.
func (h *ComplaintHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Route("/complaints", func(r chi.Router) {
		r.Use(gate)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/stats/summary", h.handleStats)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}/status", h.handleStatus)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *ComplaintHandler) handleList(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "all" {
		status = ""
	}
	complaints, err := h.store.ListComplaints(r.Context(), storage.ComplaintFilter{Status: models.ComplaintStatus(status)})
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch complaints", err)
		return
	}
	respond.JSON(w, http.StatusOK, complaints)
}

func (h *ComplaintHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Complaint not found")
		return
	}
	complaint, err := h.store.GetComplaint(r.Context(), id)
	if err != nil {
		h.storeError(w, "Failed to fetch complaint", err)
		return
	}
	respond.JSON(w, http.StatusOK, complaint)
}

func (h *ComplaintHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.ComplaintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, h.log, h.development, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	complaint := models.Complaint{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
	}
	if complaint.Title == "" || complaint.Description == "" || complaint.Category == "" {
		respond.Error(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if identity, found := auth.IdentityFromContext(r.Context()); found {
		uid := identity.UserID
		complaint.CreatedBy = &uid
	}

	id, err := h.store.CreateComplaint(r.Context(), complaint)
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to create complaint", err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.CreatedResponse{Message: "Complaint submitted successfully", ID: id})
}

func (h *ComplaintHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Complaint not found")
		return
	}
	var req dto.ComplaintStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, h.log, h.development, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := models.ComplaintStatus(req.Status)
	if !status.Valid() {
		respond.Error(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if err := h.store.UpdateComplaintStatus(r.Context(), id, status); err != nil {
		h.storeError(w, "Failed to update complaint status", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Complaint status updated successfully"})
}

func (h *ComplaintHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Complaint not found")
		return
	}
	if err := h.store.DeleteComplaint(r.Context(), id); err != nil {
		h.storeError(w, "Failed to delete complaint", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Complaint deleted successfully"})
}

func (h *ComplaintHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ComplaintStats(r.Context())
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch statistics", err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}

func (h *ComplaintHandler) storeError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Complaint not found")
		return
	}
	writeFailure(w, h.log, h.development, http.StatusInternalServerError, message, err)
}
