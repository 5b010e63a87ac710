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

// ClubHandler serves the club directory and memberships.
type ClubHandler struct {
	store       storage.ClubStore
	log         logrus.FieldLogger
	development bool
}

func NewClubHandler(store storage.ClubStore, log logrus.FieldLogger, development bool) *ClubHandler {
	return &ClubHandler{store: store, log: log, development: development}
}

// Register attaches /clubs routes. Listing and lookup are public.
func (h *ClubHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Route("/clubs", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Post("/", h.handleCreate)
			r.Post("/{id}/join", h.handleJoin)
			r.Post("/{id}/leave", h.handleLeave)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

func (h *ClubHandler) handleList(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.store.ListClubs(r.Context(), storage.CategoryFilter{Category: categoryParam(r)})
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch clubs", err)
		return
	}
	respond.JSON(w, http.StatusOK, clubs)
}

func (h *ClubHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Club not found")
		return
	}
	club, err := h.store.GetClub(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Club not found")
			return
		}
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to fetch club", err)
		return
	}
	respond.JSON(w, http.StatusOK, club)
}

func (h *ClubHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, found := auth.IdentityFromContext(r.Context())
	if !found {
		respond.Error(w, http.StatusUnauthorized, "Access token required")
		return
	}
	var req dto.ClubRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, h.log, h.development, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	club := models.Club{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Coordinator: strings.TrimSpace(req.Coordinator),
	}
	if club.Name == "" || club.Description == "" || club.Category == "" || club.Coordinator == "" {
		respond.Error(w, http.StatusBadRequest, "All fields are required")
		return
	}

	id, err := h.store.CreateClub(r.Context(), club, identity.UserID)
	if err != nil {
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to create club", err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.CreatedResponse{Message: "Club created successfully", ID: id})
}

func (h *ClubHandler) handleJoin(w http.ResponseWriter, r *http.Request) {
	identity, found := auth.IdentityFromContext(r.Context())
	if !found {
		respond.Error(w, http.StatusUnauthorized, "Access token required")
		return
	}
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Club not found")
		return
	}
	switch err := h.store.JoinClub(r.Context(), id, identity.UserID); {
	case err == nil:
		respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Joined club successfully"})
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusBadRequest, "Already a member")
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Club not found")
	default:
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to join club", err)
	}
}

func (h *ClubHandler) handleLeave(w http.ResponseWriter, r *http.Request) {
	identity, found := auth.IdentityFromContext(r.Context())
	if !found {
		respond.Error(w, http.StatusUnauthorized, "Access token required")
		return
	}
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Not a member of this club")
		return
	}
	switch err := h.store.LeaveClub(r.Context(), id, identity.UserID); {
	case err == nil:
		respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Left club successfully"})
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Not a member of this club")
	default:
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to leave club", err)
	}
}

func (h *ClubHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respond.Error(w, http.StatusNotFound, "Club not found")
		return
	}
	if err := h.store.DeleteClub(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Club not found")
			return
		}
		writeFailure(w, h.log, h.development, http.StatusInternalServerError, "Failed to delete club", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Club deleted successfully"})
}
