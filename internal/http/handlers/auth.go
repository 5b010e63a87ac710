package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/campus-connect/internal/accounts"
	"github.com/hongminglow/campus-connect/internal/auth"
	"github.com/hongminglow/campus-connect/internal/http/respond"
	"github.com/hongminglow/campus-connect/internal/metrics"
	"github.com/hongminglow/campus-connect/internal/models/dto"
)

// AuthHandler owns the signup, login, me and logout endpoints.
type AuthHandler struct {
	accounts    *accounts.Service
	deny        auth.DenyList
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
	development bool
}

// NewAuthHandler constructs the handler. deny and m may be nil.
func NewAuthHandler(svc *accounts.Service, deny auth.DenyList, m *metrics.Metrics, log logrus.FieldLogger, development bool) *AuthHandler {
	return &AuthHandler{accounts: svc, deny: deny, metrics: m, log: log, development: development}
}

// Register attaches the auth routes. gate guards me and logout.
func (h *AuthHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.With(gate).Get("/me", h.handleMe)
		r.With(gate).Post("/logout", h.handleLogout)
	})
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.metrics.AuthAttempt("signup", "invalid")
		h.fail(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.accounts.Signup(r.Context(), req)
	if err != nil {
		h.accountError(w, "signup", "Failed to create user", err)
		return
	}

	h.metrics.AuthAttempt("signup", "ok")
	h.log.WithFields(logrus.Fields{"user_id": session.User.ID, "role": session.User.Role}).Info("user registered")
	respond.JSON(w, http.StatusCreated, dto.AuthResponse{
		Message: "User registered successfully",
		Token:   session.Token,
		User:    session.User.Profile(),
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.metrics.AuthAttempt("login", "invalid")
		h.fail(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		h.accountError(w, "login", "Server error", err)
		return
	}

	h.metrics.AuthAttempt("login", "ok")
	respond.JSON(w, http.StatusOK, dto.AuthResponse{
		Message: "Login successful",
		Token:   session.Token,
		User:    session.User.Profile(),
	})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Access token required")
		return
	}
	respond.JSON(w, http.StatusOK, dto.MeResponse{ID: id.UserID, Email: id.Email, Role: id.Role})
}

// handleLogout revokes the presented token when a deny-list is configured.
// Without one the token stays valid until it expires.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Access token required")
		return
	}
	if h.deny != nil && claims.ID != "" && claims.ExpiresAt != nil {
		if err := h.deny.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.fail(w, http.StatusInternalServerError, "Server error", err)
			return
		}
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// accountError maps service errors onto responses. storageMessage is the
// operation-specific text for a storage failure.
func (h *AuthHandler) accountError(w http.ResponseWriter, operation, storageMessage string, err error) {
	var verr *accounts.ValidationError
	switch {
	case errors.As(err, &verr):
		h.metrics.AuthAttempt(operation, "invalid")
		respond.Error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, accounts.ErrDuplicateEmail):
		h.metrics.AuthAttempt(operation, "duplicate")
		respond.Error(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, accounts.ErrInvalidCredentials):
		h.metrics.AuthAttempt(operation, "invalid_credentials")
		respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, accounts.ErrStorage):
		h.metrics.AuthAttempt(operation, "error")
		h.fail(w, http.StatusInternalServerError, storageMessage, err)
	default:
		h.metrics.AuthAttempt(operation, "error")
		h.fail(w, http.StatusInternalServerError, "Server error", err)
	}
}

// fail writes message and, in development, the error text as detail.
// Server errors are logged with their cause.
func (h *AuthHandler) fail(w http.ResponseWriter, status int, message string, err error) {
	writeFailure(w, h.log, h.development, status, message, err)
}

func writeFailure(w http.ResponseWriter, log logrus.FieldLogger, development bool, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error(message)
	}
	detail := ""
	if development && err != nil {
		detail = err.Error()
	}
	respond.ErrorDetail(w, status, message, detail)
}
