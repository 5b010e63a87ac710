package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestCallAttachesTokenWhenHeld(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := New(ts.URL+"/api/", nil)
	var out map[string]bool
	require.NoError(t, c.Call(context.Background(), http.MethodGet, "/notices", nil, &out))
	require.NoError(t, c.WithTokens(staticToken("abc")).Call(context.Background(), http.MethodGet, "/notices", nil, &out))
	require.NoError(t, c.WithTokens(staticToken("")).Call(context.Background(), http.MethodGet, "/notices", nil, nil))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "Bearer abc", ""}, seen)
	assert.True(t, out["ok"])
}

func TestCallMapsErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}
	}))
	defer ts.Close()

	c := New(ts.URL+"/api", nil)
	err := c.Call(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "a"}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Error())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	err = c.Call(context.Background(), http.MethodGet, "/health", nil, nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Request failed", apiErr.Message)
}
