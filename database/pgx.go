package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool implements Pool for pgxpool.Pool.
type PgxPool struct {
	pool *pgxpool.Pool
}

// NewPgxPool wraps pool.
func NewPgxPool(pool *pgxpool.Pool) *PgxPool {
	return &PgxPool{pool: pool}
}

// Acquire checks a connection out of the pool.
func (p *PgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &PgxConn{conn: conn}, nil
}

// Ping verifies a connection to the database is alive.
func (p *PgxPool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes every connection in the pool.
func (p *PgxPool) Close() {
	p.pool.Close()
}

// Stat exposes the pool counters.
func (p *PgxPool) Stat() *pgxpool.Stat {
	return p.pool.Stat()
}

// PgxConn implements Conn for pgxpool.Conn.
type PgxConn struct {
	conn *pgxpool.Conn
}

// Query executes a query that returns rows.
func (c *PgxConn) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &PgxRows{rows: rows}, nil
}

// QueryRow executes a query expected to return at most one row.
func (c *PgxConn) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

// Exec executes a statement without returning rows.
func (c *PgxConn) Exec(ctx context.Context, sql string, args ...any) (Result, error) {
	tag, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &PgxResult{cmdTag: tag}, nil
}

// Release returns the connection to the pool.
func (c *PgxConn) Release() {
	c.conn.Release()
}

// PgxRows implements Rows for pgx.Rows.
type PgxRows struct {
	rows pgx.Rows
}

// Next prepares the next result row for reading.
func (p *PgxRows) Next() bool { return p.rows.Next() }

// Scan copies the columns from the current row into the provided destinations.
func (p *PgxRows) Scan(dest ...any) error { return p.rows.Scan(dest...) }

// Close closes the rows iterator.
func (p *PgxRows) Close() error { p.rows.Close(); return nil }

// Err returns the error, if any, that ended the iteration.
func (p *PgxRows) Err() error { return p.rows.Err() }

// PgxResult implements Result for pgx command tags.
type PgxResult struct {
	cmdTag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (r *PgxResult) RowsAffected() (int64, error) {
	return r.cmdTag.RowsAffected(), nil
}

var (
	_ Pool   = (*PgxPool)(nil)
	_ Conn   = (*PgxConn)(nil)
	_ Rows   = (*PgxRows)(nil)
	_ Result = (*PgxResult)(nil)
)
