package database

import (
	"context"
	"fmt"

	"github.com/BradenHooton/dbconn/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool adapts a pgxpool.Pool to Conn. Everything else on the pool is promoted.
type Pool struct {
	*pgxpool.Pool
}

func (p *Pool) Close() error {
	p.Pool.Close()
	return nil
}

// PoolConnector opens a pgx pool sized from cfg and pings it before handing it out.
func PoolConnector(cfg *config.DatabaseConfig) Connector {
	return func(ctx context.Context, dsn string) (Conn, error) {
		poolConfig, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("unable to parse database config: %w", err)
		}

		poolConfig.MaxConns = cfg.MaxConns
		poolConfig.MinConns = cfg.MinConns
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("unable to create connection pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("unable to ping database: %w", err)
		}

		return &Pool{Pool: pool}, nil
	}
}
