package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campus-connect/internal/metrics"
)

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(RequestLogger(logger, m))
	r.Get("/api/notices/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/notices/42", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "/api/notices/{id}", entry.Data["route"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}
