package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rollbook/pkg/logging"
	"github.com/ssargent/rollbook/pkg/service"
)

func TestNewRouter_Metrics(t *testing.T) {
	ts := setupTestServer(t)

	ts.do(t, http.MethodGet, "/api/v1/health", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "rollbook_http_requests_total")
	assert.Contains(t, body, "rollbook_health_checks_total")
}

func TestNewRouter_Swagger(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("json document", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/swagger/swagger.json", nil)
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, json.Valid(w.Body.Bytes()), w.Body.String())

		var doc struct {
			BasePath string                 `json:"basePath"`
			Paths    map[string]interface{} `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "/api/v1", doc.BasePath)
		assert.Contains(t, doc.Paths, "/students/{roll}")
	})

	t.Run("ui", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "<!DOCTYPE html>"))
	})

	t.Run("unknown", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/swagger/other", nil)
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNewMetrics_Independent(t *testing.T) {
	// each server registers on its own registry
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestStartServer_ShutsDownOnCancel(t *testing.T) {
	roster := service.NewRoster(&memoryBackend{}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServerFactory().CreateServerStarter().StartServer(ctx, roster, ServerConfig{
			Bind:   "127.0.0.1",
			Port:   0,
			APIKey: testAPIKey,
			Logger: logging.Discard(),
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
