package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/dbconn/internal/database"
	"github.com/stretchr/testify/assert"
)

// MockConnectionManager implements ConnectionManager for testing
type MockConnectionManager struct {
	EnsureConnectedFunc func(ctx context.Context) (database.Conn, error)
	StateValue          database.State
	Attempts            int
}

func (m *MockConnectionManager) EnsureConnected(ctx context.Context) (database.Conn, error) {
	if m.EnsureConnectedFunc != nil {
		return m.EnsureConnectedFunc(ctx)
	}
	return nil, nil
}

func (m *MockConnectionManager) State() database.State {
	return m.StateValue
}

func (m *MockConnectionManager) LastAttempts() int {
	return m.Attempts
}

// AssertJSONResponse checks the status code and decodes the body into target
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	if target != nil {
		if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
			t.Fatalf("failed to decode response body: %v", err)
		}
	}
}
