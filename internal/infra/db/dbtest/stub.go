// Package dbtest provides an in-memory database/sql driver for repository
// tests. Every query returns the configured rows.
package dbtest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

// Stub answers every query with Columns and Rows and records the query.
type Stub struct {
	Columns []string
	Rows    [][]driver.Value
	Err     error

	mu    sync.Mutex
	query string
	args  []driver.Value
}

// Open returns a *sql.DB backed by s.
func (s *Stub) Open() *sql.DB { return sql.OpenDB(connector{s}) }

// LastQuery returns the last query text and its arguments.
func (s *Stub) LastQuery() (string, []driver.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.args
}

type connector struct{ s *Stub }

func (c connector) Connect(context.Context) (driver.Conn, error) { return conn{c.s}, nil }
func (c connector) Driver() driver.Driver { return drv{c.s} }

type drv struct{ s *Stub }

func (d drv) Open(string) (driver.Conn, error) { return conn{d.s}, nil }

type conn struct{ s *Stub }

func (c conn) Prepare(query string) (driver.Stmt, error) { return stmt{s: c.s, query: query}, nil }
func (c conn) Close() error { return nil }
func (c conn) Begin() (driver.Tx, error) { return nil, errors.New("dbtest: transactions not supported") }

type stmt struct {
	s     *Stub
	query string
}

func (st stmt) Close() error { return nil }
func (st stmt) NumInput() int { return -1 }

func (st stmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errors.New("dbtest: exec not supported")
}

func (st stmt) Query(args []driver.Value) (driver.Rows, error) {
	st.s.mu.Lock()
	st.s.query, st.s.args = st.query, args
	st.s.mu.Unlock()
	if st.s.Err != nil {
		return nil, st.s.Err
	}
	return &rows{cols: st.s.Columns, data: st.s.Rows}, nil
}

type rows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *rows) Columns() []string { return r.cols }
func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.i])
	r.i++
	return nil
}
