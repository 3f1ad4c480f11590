package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/equalplay-service/internal/handler"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func newProbeEngine(p handler.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// no service: only probes and docs are mounted
	handler.Register(r, p, nil)
	return r
}

func TestHealthEndpoints(t *testing.T) {
	down := errors.New("store down")
	tests := []struct {
		name   string
		pinger handler.Pinger
		method string
		path   string
		want   int
	}{
		{"ready ok", stubPinger{}, http.MethodGet, "/api/v1/health/ready", http.StatusOK},
		{"ready unavailable", stubPinger{err: down}, http.MethodGet, "/api/v1/health/ready", http.StatusServiceUnavailable},
		{"ready without store", nil, http.MethodGet, "/api/v1/health/ready", http.StatusOK},
		{"live", stubPinger{err: down}, http.MethodGet, "/api/v1/health/live", http.StatusOK},
		{"root live", stubPinger{}, http.MethodGet, "/live", http.StatusOK},
		{"root ready", stubPinger{}, http.MethodGet, "/ready", http.StatusOK},
		{"root ready unavailable", stubPinger{err: down}, http.MethodGet, "/ready", http.StatusServiceUnavailable},
		{"unknown path", stubPinger{}, http.MethodGet, "/no-such", http.StatusNotFound},
		{"api not mounted without service", stubPinger{}, http.MethodGet, "/api/v1/players", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newProbeEngine(tt.pinger)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestReadiness_MethodNotAllowed(t *testing.T) {
	r := newProbeEngine(stubPinger{})
	w := httptest.NewRecorder()
	// gin answers 404 for a wrong method unless HandleMethodNotAllowed is set
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/health/ready", nil))
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, w.Code)
}

func TestDocs(t *testing.T) {
	r := newProbeEngine(stubPinger{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/yaml")
	assert.Contains(t, w.Body.String(), "openapi:")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/openapi.yaml")
}
