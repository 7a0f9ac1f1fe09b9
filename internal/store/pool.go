package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrResourceExhausted is returned when every connection in the pool is
// checked out. Acquisition never waits for one to free up.
var ErrResourceExhausted = errors.New("connection pool exhausted")

// Pool is a bounded set of dedicated connections.
//
// A connection is created on demand while fewer than limit exist; released
// connections go back to the idle set and are reused. The pool never holds
// global state: each Store owns exactly one Pool.
type Pool struct {
	db    *sql.DB
	limit int

	mu     sync.Mutex
	idle   []*sql.Conn
	open   int
	closed bool
}

func newPool(db *sql.DB, limit int) *Pool {
	return &Pool{db: db, limit: limit}
}

// Limit returns the pool bound.
func (p *Pool) Limit() int {
	return p.limit
}

// InUse returns the number of connections currently checked out.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open - len(p.idle)
}

// WithConn checks out a connection, runs fn with it and returns it to the
// pool. Anything fn did not commit is rolled back, whether fn returned an
// error, succeeded without committing, or panicked.
func (p *Pool) WithConn(ctx context.Context, fn func(*Conn) error) error {
	c, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.release(c)
	return fn(c)
}

func (p *Pool) acquire(ctx context.Context) (*Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.New("connection pool closed")
	}
	if n := len(p.idle); n > 0 {
		sc := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return &Conn{conn: sc}, nil
	}
	if p.open >= p.limit {
		p.mu.Unlock()
		return nil, fmt.Errorf("acquire connection (limit %d): %w", p.limit, ErrResourceExhausted)
	}
	p.open++
	p.mu.Unlock()

	sc, err := p.db.Conn(ctx)
	if err != nil {
		p.mu.Lock()
		p.open--
		p.mu.Unlock()
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Conn{conn: sc}, nil
}

func (p *Pool) release(c *Conn) {
	broken := c.rollback() != nil

	p.mu.Lock()
	defer p.mu.Unlock()
	if broken || p.closed {
		p.open--
		c.conn.Close()
		return
	}
	p.idle = append(p.idle, c.conn)
}

func (p *Pool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sc := range p.idle {
		sc.Close()
	}
	p.open -= len(p.idle)
	p.idle = nil
	p.closed = true
}

// Conn is a checked-out connection. A transaction is started lazily by the
// first statement and stays open until Commit or the end of the scope.
type Conn struct {
	conn *sql.Conn
	tx   *sql.Tx
}

func (c *Conn) begin(ctx context.Context) (*sql.Tx, error) {
	if c.tx != nil {
		return c.tx, nil
	}
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	c.tx = tx
	return tx, nil
}

// Exec runs a statement inside the connection's current transaction.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx.ExecContext(ctx, query, args...)
}

// Query runs a query inside the connection's current transaction.
// Callers are responsible for closing the returned rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	tx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx.QueryContext(ctx, query, args...)
}

// QueryRow runs a single-row query inside the current transaction.
func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	tx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx.QueryRowContext(ctx, query, args...), nil
}

// Commit commits the current transaction, if any. The next statement opens
// a new one.
func (c *Conn) Commit() error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (c *Conn) rollback() error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
