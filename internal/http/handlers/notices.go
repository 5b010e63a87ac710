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

// NoticeHandler serves the notice board. Reads are public, writes gated.
type NoticeHandler struct {
	store       storage.NoticeStore
	log         logrus.FieldLogger
	development bool
}

func NewNoticeHandler(store storage.NoticeStore, log logrus.FieldLogger, development bool) *NoticeHandler {
	return &NoticeHandler{store: store, log: log, development: development}
}

// Register attaches /notices routes.
func (h *NoticeHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Route("/notices", func(r chi.Router) {
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

func (h *NoticeHandler) handleList(w http.ResponseWriter, r *http.Request) {
	priority := strings.TrimSpace(r.URL.Query().Get("priority"))
	if priority == "all" {
		priority = ""
	}
	notices, err := h.store.ListNotices(r.Context(), storage.NoticeFilter{Priority: priority})
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch notices", err)
		return
	}
	respond.JSON(w, http.StatusOK, notices)
}

func (h *NoticeHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Notice not found")
		return
	}
	notice, err := h.store.GetNotice(r.Context(), id)
	if err != nil {
		h.storeError(w, "Failed to fetch notice", err)
		return
	}
	respond.JSON(w, http.StatusOK, notice)
}

func (h *NoticeHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	notice, ok := h.decode(w, r)
	if !ok {
		return
	}
	if identity, found := auth.IdentityFromContext(r.Context()); found {
		uid := identity.UserID
		notice.CreatedBy = &uid
	}

	id, err := h.store.CreateNotice(r.Context(), notice)
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to create notice", err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.CreatedResponse{Message: "Notice created successfully", ID: id})
}

func (h *NoticeHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Notice not found")
		return
	}
	notice, ok := h.decode(w, r)
	if !ok {
		return
	}
	notice.ID = id

	if err := h.store.UpdateNotice(r.Context(), notice); err != nil {
		h.storeError(w, "Failed to update notice", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Notice updated successfully"})
}

func (h *NoticeHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Notice not found")
		return
	}
	if err := h.store.DeleteNotice(r.Context(), id); err != nil {
		h.storeError(w, "Failed to delete notice", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Notice deleted successfully"})
}

// decode validates a create/update body and applies the default priority.
func (h *NoticeHandler) decode(w http.ResponseWriter, r *http.Request) (models.Notice, bool) {
	var req dto.NoticeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, h.log, h.development, http.StatusBadRequest, "Invalid request body", err)
		return models.Notice{}, false
	}
	notice := models.Notice{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Priority: strings.TrimSpace(req.Priority),
		Author:   strings.TrimSpace(req.Author),
	}
	if notice.Title == "" || notice.Content == "" || notice.Author == "" {
		respond.Error(w, http.StatusBadRequest, "Title, content, and author are required")
		return models.Notice{}, false
	}
	if notice.Priority == "" {
		notice.Priority = models.DefaultNoticePriority
	}
	return notice, true
}

func (h *NoticeHandler) storeError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Notice not found")
		return
	}
	writeFailure(w, h.log, h.development, http.StatusInternalServerError, message, err)
}
