package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/pkg/logger"
)

func TestAPIKeyAuth(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})
	authHandler := APIKeyAuth([]string{"apitest", "testkey123"}, logger.New("error"))(testHandler)

	tests := []struct {
		name           string
		apiKey         string
		expectedStatus int
		expectedError  string
	}{
		{name: "valid key", apiKey: "apitest", expectedStatus: http.StatusOK},
		{name: "second valid key", apiKey: "testkey123", expectedStatus: http.StatusOK},
		{name: "missing key", expectedStatus: http.StatusUnauthorized, expectedError: "API key required"},
		{name: "wrong key", apiKey: "wrongkey", expectedStatus: http.StatusForbidden, expectedError: "Invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/foods", nil)
			if tt.apiKey != "" {
				req.Header.Set(APIKeyHeader, tt.apiKey)
			}

			w := httptest.NewRecorder()
			authHandler.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError == "" {
				assert.Equal(t, "success", w.Body.String())
				return
			}
			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedError, resp["error"])
		})
	}
}

func TestAPIKeyAuth_NoKeysConfigured(t *testing.T) {
	handler := APIKeyAuth(nil, logger.New("error"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/foods/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
