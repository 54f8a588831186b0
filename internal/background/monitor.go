package background

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/dbconn/internal/database"
)

// Connector is satisfied by *database.Manager
type Connector interface {
	EnsureConnected(ctx context.Context) (database.Conn, error)
}

// ConnectionMonitor periodically re-checks the database so a dropped
// connection is re-established before the next request needs it.
type ConnectionMonitor struct {
	manager  Connector
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewConnectionMonitor(manager Connector, logger *slog.Logger, interval time.Duration) *ConnectionMonitor {
	return &ConnectionMonitor{
		manager:  manager,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start blocks until Stop is called or ctx is cancelled
func (cm *ConnectionMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.check(ctx)

	for {
		select {
		case <-ticker.C:
			cm.check(ctx)
		case <-cm.stopCh:
			cm.logger.Info("connection monitor stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("connection monitor context cancelled")
			return
		}
	}
}

func (cm *ConnectionMonitor) check(ctx context.Context) {
	if _, err := cm.manager.EnsureConnected(ctx); err != nil {
		if errors.Is(err, database.ErrConfiguration) {
			cm.logger.Warn("connection monitor skipped, database url not configured")
			return
		}
		cm.logger.Error("database unavailable", slog.Any("error", err))
	}
}

func (cm *ConnectionMonitor) Stop() {
	close(cm.stopCh)
}
