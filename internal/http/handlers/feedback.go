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

// FeedbackHandler serves the feedback wall and its rating summary.
type FeedbackHandler struct {
	store       storage.FeedbackStore
	log         logrus.FieldLogger
	development bool
}

func NewFeedbackHandler(store storage.FeedbackStore, log logrus.FieldLogger, development bool) *FeedbackHandler {
	return &FeedbackHandler{store: store, log: log, development: development}
}

// Register attaches /feedback routes. Reads are public, writes gated.
func (h *FeedbackHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Route("/feedback", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/stats/summary", h.handleSummary)
		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Post("/", h.handleCreate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

func (h *FeedbackHandler) handleList(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.store.ListFeedback(r.Context(), storage.CategoryFilter{Category: categoryParam(r)})
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch feedback", err)
		return
	}
	respond.JSON(w, http.StatusOK, feedback)
}

func (h *FeedbackHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, h.log, h.development, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	feedback := models.Feedback{
		Title:    strings.TrimSpace(req.Title),
		Message:  strings.TrimSpace(req.Message),
		Category: strings.TrimSpace(req.Category),
		Rating:   req.Rating,
	}
	if feedback.Title == "" || feedback.Message == "" || feedback.Category == "" || feedback.Rating == 0 {
		respond.Error(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if feedback.Rating < models.MinRating || feedback.Rating > models.MaxRating {
		respond.Error(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	if identity, found := auth.IdentityFromContext(r.Context()); found {
		uid := identity.UserID
		feedback.CreatedBy = &uid
	}

	id, err := h.store.CreateFeedback(r.Context(), feedback)
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to submit feedback", err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.CreatedResponse{Message: "Feedback submitted successfully", ID: id})
}

func (h *FeedbackHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Feedback not found")
		return
	}
	if err := h.store.DeleteFeedback(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Feedback not found")
			return
		}
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to delete feedback", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Feedback deleted successfully"})
}

func (h *FeedbackHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.FeedbackSummary(r.Context())
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch statistics", err)
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}
