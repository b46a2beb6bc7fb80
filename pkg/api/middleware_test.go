package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		wantStatus    int
		wantErrorText string
	}{
		{name: "valid key", header: "test-key", wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantErrorText: "Missing X-API-Key header"},
		{name: "wrong key", header: "wrong-key", wantStatus: http.StatusUnauthorized, wantErrorText: "Invalid API key"},
		{name: "prefix of key", header: "test", wantStatus: http.StatusUnauthorized, wantErrorText: "Invalid API key"},
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := apiKeyMiddleware("test-key")(ok)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantErrorText != "" {
				var resp APIResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantErrorText, resp.Error)
			}
		})
	}
}

func TestSendHelpers(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendSuccess(w, map[string]string{"message": "test"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"success":true,"data":{"message":"test"}}`, w.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendCreated(w, 1)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"success":true,"data":1}`, w.Body.String())
	})

	t.Run("error", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendError(w, "Invalid request", http.StatusBadRequest)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid request"}`, w.Body.String())
	})

	t.Run("unencodable payload", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendSuccess(w, map[string]float64{"marks": math.NaN()})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"failed to encode response"}`, w.Body.String())
	})

	t.Run("error with data", func(t *testing.T) {
		w := httptest.NewRecorder()
		sendErrorWithData(w, map[string]int{"roll": 3}, "storage unavailable", http.StatusInternalServerError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"data":{"roll":3},"error":"storage unavailable"}`, w.Body.String())
	})
}
