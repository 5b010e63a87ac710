package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/campus-connect/internal/accounts"
	"github.com/hongminglow/campus-connect/internal/auth"
	"github.com/hongminglow/campus-connect/internal/metrics"
	"github.com/hongminglow/campus-connect/internal/middleware"
	"github.com/hongminglow/campus-connect/internal/storage/storagetest"
)

type testAPI struct {
	router  chi.Router
	store   *storagetest.MemoryStore
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

func newTestAPI(t *testing.T, deny auth.DenyList) *testAPI {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := storagetest.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", "campus-connect", time.Hour)
	m := metrics.New()
	gate := middleware.NewAuthGate(tokens, deny, logger, m).Handler

	svc := accounts.NewService(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, logger)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHealthHandler(time.Now(), store).Register(r)
		NewAuthHandler(svc, deny, m, logger, true).Register(r, gate)
		NewNoticeHandler(store, logger, true).Register(r, gate)
		NewComplaintHandler(store, logger, true).Register(r, gate)
		NewEventHandler(store, logger, true).Register(r, gate)
		NewClubHandler(store, logger, true).Register(r, gate)
		NewAttendanceHandler(store, logger, true).Register(r, gate)
		NewFeedbackHandler(store, logger, true).Register(r, gate)
	})
	return &testAPI{router: r, store: store, tokens: tokens, metrics: m}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns its token.
func (a *testAPI) signup(t *testing.T, name, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "pw12345",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["error"]
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
