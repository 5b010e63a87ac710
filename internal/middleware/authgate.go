package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/campus-connect/internal/auth"
	"github.com/hongminglow/campus-connect/internal/http/respond"
	"github.com/hongminglow/campus-connect/internal/metrics"
)

const (
	msgTokenRequired = "Access token required"
	msgTokenInvalid  = "Invalid or expired token"
)

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthGate rejects requests without a valid bearer token and attaches the
// caller's identity to the request context otherwise. It makes no role
// decisions.
type AuthGate struct {
	tokens  TokenVerifier
	deny    auth.DenyList
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewAuthGate builds the gate. deny and m may be nil.
func NewAuthGate(tokens TokenVerifier, deny auth.DenyList, log logrus.FieldLogger, m *metrics.Metrics) *AuthGate {
	return &AuthGate{tokens: tokens, deny: deny, log: log, metrics: m}
}

// Handler wraps next with the token check.
func (g *AuthGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.TrimSpace(header) == "" {
			g.reject(w, r, "missing", msgTokenRequired, nil)
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			g.reject(w, r, "malformed_header", msgTokenInvalid, nil)
			return
		}

		claims, err := g.tokens.Verify(token)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			g.reject(w, r, reason, msgTokenInvalid, err)
			return
		}

		if g.deny != nil && claims.ID != "" {
			revoked, err := g.deny.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				g.log.WithError(err).Error("auth gate: revocation lookup failed")
				respond.Error(w, http.StatusInternalServerError, "Server error")
				return
			}
			if revoked {
				g.reject(w, r, "revoked", msgTokenInvalid, nil)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func (g *AuthGate) reject(w http.ResponseWriter, r *http.Request, reason, message string, cause error) {
	g.metrics.GateRejected(reason)
	entry := g.log.WithFields(logrus.Fields{
		"reason": reason,
		"method": r.Method,
		"path":   r.URL.Path,
	})
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Info("auth gate: request rejected")
	respond.Error(w, http.StatusUnauthorized, message)
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is
// matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
