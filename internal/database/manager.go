package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	pkglogger "github.com/BradenHooton/dbconn/pkg/logger"
)

// Conn is a live database handle owned by the Manager
type Conn interface {
	Ping(ctx context.Context) error
	Close() error
}

// Connector opens a new handle for dsn. It must respect ctx's deadline.
type Connector func(ctx context.Context, dsn string) (Conn, error)

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Manager owns the process's database handle. Only one connect sequence runs
// at a time; concurrent callers of EnsureConnected queue behind it until their
// own ctx expires. State and LastAttempts never block, so a running sequence
// is visible as StateInitializing.
type Manager struct {
	sem      chan struct{}
	dsn      string
	connect  Connector
	policy   RetryPolicy
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
	conn     Conn
	state    atomic.Int32
	attempts atomic.Int32
}

type Option func(*Manager)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithSleeper replaces the wait between attempts. Tests use it to record delays.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Manager) {
		m.sleep = sleep
	}
}

func NewManager(dsn string, connect Connector, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		sem:     make(chan struct{}, 1),
		dsn:     dsn,
		connect: connect,
		policy:  DefaultRetryPolicy(),
		sleep:   sleepContext,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.policy.MaxAttempts < 1 {
		m.policy.MaxAttempts = 1
	}
	return m
}

// EnsureConnected returns a live handle, reconnecting with bounded retries
// when there is none or the current one no longer answers a ping.
func (m *Manager) EnsureConnected(ctx context.Context) (Conn, error) {
	if m.dsn == "" {
		return nil, ErrConfiguration
	}

	if err := m.lock(ctx); err != nil {
		return nil, fmt.Errorf("waiting for database connection: %w", err)
	}
	defer m.unlock()

	if m.State() == StateConnected && m.conn != nil {
		pingCtx, cancel := context.WithTimeout(ctx, m.policy.AttemptTimeout)
		err := m.conn.Ping(pingCtx)
		cancel()
		if err == nil {
			return m.conn, nil
		}
		m.logger.Warn("database connection lost, reconnecting", slog.Any("error", err))
	}

	m.closeLocked()
	m.setState(StateInitializing)

	var lastErr error
	for attempt := 1; attempt <= m.policy.MaxAttempts; attempt++ {
		m.logger.Info("connecting to database",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", m.policy.MaxAttempts),
			slog.String("database_url", pkglogger.MaskDSN(m.dsn)),
		)

		conn, err := m.tryConnect(ctx)
		if err == nil {
			m.conn = conn
			m.setState(StateConnected)
			m.attempts.Store(int32(attempt))
			m.logger.Info("database connection established", slog.Int("attempt", attempt))
			return conn, nil
		}

		lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
		m.logger.Warn("database connection attempt failed",
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		if attempt == m.policy.MaxAttempts {
			break
		}

		delay := m.policy.Backoff(attempt)
		m.logger.Info("retrying database connection", slog.String("delay", delay.String()))
		if err := m.sleep(ctx, delay); err != nil {
			m.setState(StateUninitialized)
			m.attempts.Store(int32(attempt))
			return nil, fmt.Errorf("database connect interrupted: %w", err)
		}
	}

	m.setState(StateUninitialized)
	m.attempts.Store(int32(m.policy.MaxAttempts))
	return nil, &ExhaustedError{Attempts: m.policy.MaxAttempts, Last: lastErr}
}

func (m *Manager) tryConnect(ctx context.Context) (Conn, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, m.policy.AttemptTimeout)
	defer cancel()
	return m.connect(attemptCtx, m.dsn)
}

// Reset drops the current handle; the next EnsureConnected starts from scratch.
func (m *Manager) Reset() {
	_ = m.lock(context.Background())
	defer m.unlock()
	m.closeLocked()
}

func (m *Manager) Close() {
	m.logger.Info("closing database connection")
	m.Reset()
}

func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
}

// LastAttempts reports how many attempts the most recent connect sequence used.
func (m *Manager) LastAttempts() int {
	return int(m.attempts.Load())
}

func (m *Manager) lock(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) unlock() {
	<-m.sem
}

// closeLocked releases a stale handle. Close failures are logged and ignored.
func (m *Manager) closeLocked() {
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Warn("failed to close stale database connection", slog.Any("error", err))
		}
		m.conn = nil
	}
	m.setState(StateUninitialized)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
