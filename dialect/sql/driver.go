package sql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/syssam/schemagraph/dialect"
)

// DriverName returns the database/sql driver registered for a dialect.
func DriverName(dialectName string) (string, error) {
	d, err := dialect.Lookup(dialectName)
	if err != nil {
		return "", err
	}
	switch d.Name() {
	case dialect.Postgres, dialect.Cockroach:
		return "postgres", nil
	case dialect.MySQL, dialect.MariaDB:
		return "mysql", nil
	case dialect.SQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("dialect/sql: no driver for dialect %q", d.Name())
}

// Driver wraps a database connection pool with the dialect it was opened
// for. Every statement executed through the driver is recorded in its
// statistics.
type Driver struct {
	db      *sql.DB
	dialect string
	log     *zap.Logger
	slow    time.Duration
	stats   counters
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger logs every statement at debug level and slow statements at
// warn level.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithSlowThreshold sets the duration above which a statement counts as slow.
func WithSlowThreshold(t time.Duration) Option {
	return func(d *Driver) { d.slow = t }
}

// Open opens a database of the given dialect. The data source format is
// the one of the dialect's database/sql driver.
func Open(dialectName, source string, opts ...Option) (*Driver, error) {
	name, err := DriverName(dialectName)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, source)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open %s: %w", name, err)
	}
	return OpenDB(dialectName, db, opts...), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(dialectName string, db *sql.DB, opts ...Option) *Driver {
	if d, err := dialect.Lookup(dialectName); err == nil {
		dialectName = d.Name()
	}
	d := &Driver{
		db:      db,
		dialect: dialectName,
		log:     zap.NewNop(),
		slow:    DefaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB { return d.db }

// Dialect returns the dialect name of the driver.
func (d *Driver) Dialect() string { return d.dialect }

// Stats returns a snapshot of the statement statistics.
func (d *Driver) Stats() Stats { return d.stats.load() }

// ExecContext executes a statement without returning rows.
func (d *Driver) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.record(query, start, err, false)
	return res, err
}

// QueryContext executes a query returning rows.
func (d *Driver) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.record(query, start, err, true)
	return rows, err
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: begin: %w", err)
	}
	return &Tx{Tx: tx, d: d}, nil
}

// Close closes the underlying connection pool.
func (d *Driver) Close() error { return d.db.Close() }

// Tx is a transaction whose statements are recorded by its driver.
type Tx struct {
	*sql.Tx
	d *Driver
}

// ExecContext executes a statement within the transaction.
func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := tx.Tx.ExecContext(ctx, query, args...)
	tx.d.record(query, start, err, false)
	return res, err
}

// QueryContext executes a query within the transaction.
func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := tx.Tx.QueryContext(ctx, query, args...)
	tx.d.record(query, start, err, true)
	return rows, err
}

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)
