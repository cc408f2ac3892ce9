package connector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Konsultn-Engineering/registrar/database"
	"github.com/Konsultn-Engineering/registrar/dialect"
	"github.com/Konsultn-Engineering/registrar/logging"
)

// PostgresConnector owns the pgx pool used by the repositories.
type PostgresConnector struct {
	config  Config
	pool    *pgxpool.Pool
	db      *database.PgxPool
	dialect dialect.Dialect
}

// Connect opens the pool, retrying with backoff as configured, and verifies
// it with a ping.
func Connect(ctx context.Context, cfg Config) (*PostgresConnector, error) {
	p := &PostgresConnector{
		config:  cfg,
		dialect: dialect.NewPostgresDialect(),
	}

	poolCfg, err := p.poolConfig()
	if err != nil {
		return nil, err
	}

	err = retry(ctx, cfg.Retry, func(ctx context.Context) error {
		if cfg.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
			defer cancel()
		}
		return p.connect(ctx, poolCfg)
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.RedactedDSN(), err)
	}

	logging.Info().
		Str("dialect", p.dialect.Name()).
		Str("dsn", cfg.RedactedDSN()).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("database pool ready")
	return p, nil
}

// poolConfig parses the DSN and applies pool limits with defaults.
func (p *PostgresConnector) poolConfig() (*pgxpool.Config, error) {
	u, err := p.config.connURL()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("parse dsn %s: %w", u.Redacted(), err)
	}

	pc := p.config.Pool
	if pc.MaxOpen > 0 {
		poolCfg.MaxConns = int32(pc.MaxOpen)
	}
	if pc.MaxIdle > 0 {
		poolCfg.MinConns = int32(min(pc.MaxIdle, int(poolCfg.MaxConns)))
	}
	if pc.MaxLifetime > 0 {
		poolCfg.MaxConnLifetime = pc.MaxLifetime
	}
	if pc.MaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = pc.MaxIdleTime
	}
	if pc.HealthCheckFreq > 0 {
		poolCfg.HealthCheckPeriod = pc.HealthCheckFreq
	}
	return poolCfg, nil
}

func (p *PostgresConnector) connect(ctx context.Context, poolCfg *pgxpool.Config) error {
	if p.pool != nil {
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}
	p.pool = pool
	p.db = database.NewPgxPool(pool)
	return nil
}

// Pool returns the database abstraction used by the repositories.
func (p *PostgresConnector) Pool() database.Pool {
	return p.db
}

// Dialect returns the dialect statements for this store are rendered in.
func (p *PostgresConnector) Dialect() dialect.Dialect {
	return p.dialect
}

// Health checks the connection health.
func (p *PostgresConnector) Health(ctx context.Context) error {
	if p.pool == nil {
		return errors.New("not connected")
	}
	return p.pool.Ping(ctx)
}

// Stats returns connection pool statistics.
func (p *PostgresConnector) Stats() ConnectionStats {
	if p.db == nil {
		return ConnectionStats{}
	}
	return statsOf(p.db.Stat())
}

// Close closes the connection pool.
func (p *PostgresConnector) Close() error {
	if p.pool != nil {
		p.pool.Close()
		p.pool, p.db = nil, nil
	}
	return nil
}
