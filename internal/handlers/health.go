package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/BradenHooton/dbconn/internal/database"
	pkghttp "github.com/BradenHooton/dbconn/pkg/http"
	pkglogger "github.com/BradenHooton/dbconn/pkg/logger"
)

// ConnectionManager is the slice of database.Manager the health endpoint needs
type ConnectionManager interface {
	EnsureConnected(ctx context.Context) (database.Conn, error)
	State() database.State
	LastAttempts() int
}

type HealthHandler struct {
	manager     ConnectionManager
	databaseURL string
	timeout     time.Duration
	now         func() time.Time
}

// NewHealthHandler bounds each health check by timeout, which must stay below the
// server's write timeout or a slow database turns the 503 into a reset.
func NewHealthHandler(manager ConnectionManager, databaseURL string, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		manager:     manager,
		databaseURL: databaseURL,
		timeout:     timeout,
		now:         time.Now,
	}
}

type HealthResponse struct {
	Status         string     `json:"status"`
	Database       string     `json:"database"`
	State          string     `json:"state"`
	Attempts       int        `json:"attempts"`
	Timestamp      time.Time  `json:"timestamp"`
	ResponseTimeMs float64    `json:"response_time_ms"`
	DatabaseURL    string     `json:"database_url"`
	Error          string     `json:"error,omitempty"`
	Pool           *PoolStats `json:"pool,omitempty"`
}

type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
}

// Health reports whether the database is reachable. A failed connect is a
// degraded response (503 with the reason), never a crash.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	resp := HealthResponse{
		Status:      "healthy",
		Database:    "up",
		Timestamp:   start.UTC(),
		DatabaseURL: "not set",
	}
	if h.databaseURL != "" {
		resp.DatabaseURL = pkglogger.MaskDSN(h.databaseURL)
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	conn, err := h.manager.EnsureConnected(ctx)
	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
		resp.Status = "unhealthy"
		resp.Database = "down"
		resp.Error = describeConnectError(err)
	} else if pool, ok := conn.(*database.Pool); ok {
		stat := pool.Stat()
		resp.Pool = &PoolStats{
			TotalConns:    stat.TotalConns(),
			IdleConns:     stat.IdleConns(),
			AcquiredConns: stat.AcquiredConns(),
		}
	}

	resp.State = h.manager.State().String()
	resp.Attempts = h.manager.LastAttempts()
	resp.ResponseTimeMs = float64(h.now().Sub(start).Microseconds()) / 1000

	pkghttp.WriteJSON(w, status, resp)
}

func describeConnectError(err error) string {
	switch {
	case errors.Is(err, database.ErrConfiguration):
		return "database url is not configured"
	case errors.Is(err, database.ErrExhaustedRetries):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "database connect interrupted"
	default:
		return err.Error()
	}
}
