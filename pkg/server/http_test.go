package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestNewChiRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := NewChiRouter(logger)
	mux.Get("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name         string
		method       string
		path         string
		expectStatus int
		expectBody   string
	}{
		{name: "known route", method: http.MethodGet, path: "/api/v1/products", expectStatus: http.StatusOK},
		{name: "trailing slash", method: http.MethodGet, path: "/api/v1/products/", expectStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/nope", expectStatus: http.StatusNotFound,
			expectBody: `{"error":"Route not found"}`},
		{name: "wrong method", method: http.MethodPatch, path: "/api/v1/products", expectStatus: http.StatusMethodNotAllowed,
			expectBody: `{"error":"Method not allowed"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			rr := httptest.NewRecorder()
			// when
			mux.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			// then
			assert.Equal(t, tc.expectStatus, rr.Code)
			assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
			if tc.expectBody != "" {
				assert.JSONEq(t, tc.expectBody, rr.Body.String())
			}
		})
	}
}

func TestNewHTTPServer(t *testing.T) {
	// given
	cfg := HTTPConfig{Port: 8080, MaxHeaderBytes: 1 << 20, ReadTimeout: time.Second, WriteTimeout: 2 * time.Second,
		IdleTimeout: 3 * time.Second, ReadHeader: 4 * time.Second}
	// when
	srv := NewHTTPServer(cfg, http.NotFoundHandler())
	// then
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 1<<20, srv.MaxHeaderBytes)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
	assert.Equal(t, 4*time.Second, srv.ReadHeaderTimeout)
}
