package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureLogger(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		status    int
		wantPath  string
		wantLevel string
	}{
		{"plain", "/health", http.StatusOK, "/health", "INFO"},
		{"query kept", "/health?verbose=1", http.StatusOK, "/health?verbose=1", "INFO"},
		{"query redacted", "/health?dsn=postgres://u:p@h/db", http.StatusOK, "/health?[REDACTED]", "INFO"},
		{"degraded", "/health", http.StatusServiceUnavailable, "/health", "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			handler := SecureLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.target, nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "http_request", entry["msg"])
			assert.Equal(t, tt.wantPath, entry["path"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, float64(tt.status), entry["status"])
		})
	}
}
