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

// EventHandler serves the events calendar. Reads are public, writes gated.
type EventHandler struct {
	store       storage.EventStore
	log         logrus.FieldLogger
	development bool
}

func NewEventHandler(store storage.EventStore, log logrus.FieldLogger, development bool) *EventHandler {
	return &EventHandler{store: store, log: log, development: development}
}

// Register attaches /events routes.
func (h *EventHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Post("/", h.handleCreate)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

func (h *EventHandler) handleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListEvents(r.Context(), storage.CategoryFilter{Category: categoryParam(r)})
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch events", err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

func (h *EventHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Event not found")
		return
	}
	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		h.storeError(w, "Failed to fetch event", err)
		return
	}
	respond.JSON(w, http.StatusOK, event)
}

func (h *EventHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	event, ok := h.decode(w, r)
	if !ok {
		return
	}
	if identity, found := auth.IdentityFromContext(r.Context()); found {
		uid := identity.UserID
		event.CreatedBy = &uid
	}

	id, err := h.store.CreateEvent(r.Context(), event)
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to create event", err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.CreatedResponse{Message: "Event created successfully", ID: id})
}

func (h *EventHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Event not found")
		return
	}
	event, ok := h.decode(w, r)
	if !ok {
		return
	}
	event.ID = id

	if err := h.store.UpdateEvent(r.Context(), event); err != nil {
		h.storeError(w, "Failed to update event", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Event updated successfully"})
}

func (h *EventHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Event not found")
		return
	}
	if err := h.store.DeleteEvent(r.Context(), id); err != nil {
		h.storeError(w, "Failed to delete event", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Event deleted successfully"})
}

func (h *EventHandler) decode(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	var req dto.EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, h.log, h.development, http.StatusBadRequest, "Invalid request body", err)
		return models.Event{}, false
	}
	event := models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Date:        strings.TrimSpace(req.Date),
		Time:        strings.TrimSpace(req.Time),
		Venue:       strings.TrimSpace(req.Venue),
		Organizer:   strings.TrimSpace(req.Organizer),
	}
	if event.Title == "" || event.Description == "" || event.Category == "" || event.Date == "" ||
		event.Time == "" || event.Venue == "" || event.Organizer == "" {
		respond.Error(w, http.StatusBadRequest, "All fields are required")
		return models.Event{}, false
	}
	if !validDate(event.Date) {
		respond.Error(w, http.StatusBadRequest, "Date must be in YYYY-MM-DD format")
		return models.Event{}, false
	}
	return event, true
}

func (h *EventHandler) storeError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Event not found")
		return
	}
	writeFailure(w, h.log, h.development, http.StatusInternalServerError, message, err)
}
