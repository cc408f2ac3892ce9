package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/registrar/database"
)

type call struct {
	kind string
	sql  string
	args []any
}

// fakePool hands out one fakeConn and records every statement it runs.
type fakePool struct {
	conn       *fakeConn
	acquireErr error
	acquired   int
}

func newFakePool() *fakePool {
	return &fakePool{conn: &fakeConn{}}
}

func (p *fakePool) Acquire(context.Context) (database.Conn, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.conn, nil
}

func (p *fakePool) Ping(context.Context) error { return nil }
func (p *fakePool) Close()                     {}

type fakeConn struct {
	calls    []call
	released int

	count    int64
	countErr error
	columns  []string
	rows     []map[string]any
	queryErr error
	scanErr  error

	affected int64
	execErr  error
}

func (c *fakeConn) Query(_ context.Context, sql string, args ...any) (database.Rows, error) {
	c.calls = append(c.calls, call{"query", sql, args})
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return &fakeRows{columns: c.columns, rows: c.rows, scanErr: c.scanErr}, nil
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, args ...any) database.Row {
	c.calls = append(c.calls, call{"queryRow", sql, args})
	return fakeRow{value: c.count, err: c.countErr}
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...any) (database.Result, error) {
	c.calls = append(c.calls, call{"exec", sql, args})
	if c.execErr != nil {
		return nil, c.execErr
	}
	return fakeResult(c.affected), nil
}

func (c *fakeConn) Release() { c.released++ }

type fakeRow struct {
	value int64
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.value
	return nil
}

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) { return int64(r), nil }

// fakeRows assigns row values by column name; missing columns keep their
// zero value.
type fakeRows struct {
	columns []string
	rows    []map[string]any
	pos     int
	scanErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	if len(dest) != len(r.columns) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(r.columns))
	}
	row := r.rows[r.pos-1]
	for i, col := range r.columns {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		if err := assign(dest[i], v); err != nil {
			return fmt.Errorf("column %s: %w", col, err)
		}
	}
	return nil
}

func (r *fakeRows) Close() error { r.closed = true; return nil }
func (r *fakeRows) Err() error   { return nil }

func assign(dest, v any) error {
	dv := reflect.ValueOf(dest).Elem()
	vv := reflect.ValueOf(v)
	switch {
	case vv.Type().AssignableTo(dv.Type()):
		dv.Set(vv)
	case dv.Kind() == reflect.Pointer && vv.Type().AssignableTo(dv.Type().Elem()):
		p := reflect.New(dv.Type().Elem())
		p.Elem().Set(vv)
		dv.Set(p)
	default:
		return errors.New("cannot assign " + vv.Type().String() + " to " + dv.Type().String())
	}
	return nil
}
