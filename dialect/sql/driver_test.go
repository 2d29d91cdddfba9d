package sql

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/syssam/schemagraph/dialect"
)

func TestDriverName(t *testing.T) {
	tests := []struct {
		dialect string
		want    string
		wantErr bool
	}{
		{dialect: dialect.Postgres, want: "postgres"},
		{dialect: "crdb", want: "postgres"},
		{dialect: dialect.MySQL, want: "mysql"},
		{dialect: dialect.MariaDB, want: "mysql"},
		{dialect: "sqlite", want: "sqlite"},
		{dialect: dialect.SQLServer, wantErr: true},
		{dialect: "db2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			got, err := DriverName(tt.dialect)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDriverStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)
	drv := OpenDB("postgresql", db, WithLogger(zap.New(core)))
	assert.Equal(t, dialect.Postgres, drv.Dialect())
	assert.Same(t, db, drv.DB())

	ctx := context.Background()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	rows, err := drv.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	mock.ExpectExec("CREATE TABLE users").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = drv.ExecContext(ctx, "CREATE TABLE users (id integer)")
	require.NoError(t, err)

	mock.ExpectExec("DROP TABLE users").WillReturnError(errors.New("permission denied"))
	_, err = drv.ExecContext(ctx, "DROP TABLE users")
	require.Error(t, err)

	s := drv.Stats()
	assert.Equal(t, int64(1), s.Queries)
	assert.Equal(t, int64(2), s.Execs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Zero(t, s.Slow)
	assert.Contains(t, s.String(), "queries=1 execs=2")
	assert.Equal(t, 3, logs.FilterMessage("statement").Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverSlowStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)
	drv := OpenDB(dialect.MySQL, db, WithLogger(zap.New(core)), WithSlowThreshold(-1))

	mock.ExpectExec("UPDATE t").WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = drv.ExecContext(context.Background(), "UPDATE t SET a = 1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), drv.Stats().Slow)
	require.Equal(t, 1, logs.FilterMessage("slow statement").Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT a FROM t").WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow(1))
	mock.ExpectCommit()
	tx, err := drv.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, "INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	rows, err := tx.QueryContext(ctx, "SELECT a FROM t")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	require.NoError(t, tx.Commit())

	mock.ExpectBegin().WillReturnError(errors.New("busy"))
	_, err = drv.BeginTx(ctx, nil)
	require.Error(t, err)

	s := drv.Stats()
	assert.Equal(t, int64(1), s.Execs)
	assert.Equal(t, int64(1), s.Queries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSQLite(t *testing.T) {
	drv, err := Open(dialect.SQLite, "file:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer drv.Close()
	ctx := context.Background()

	_, err = drv.ExecContext(ctx, "CREATE TABLE users (id integer primary key, email text)")
	require.NoError(t, err)
	_, err = drv.ExecContext(ctx, "INSERT INTO users (email) VALUES (?)", "a@example.com")
	require.NoError(t, err)
	var n int
	require.NoError(t, drv.DB().QueryRowContext(ctx, "SELECT count(*) FROM users").Scan(&n))
	assert.Equal(t, 1, n)

	_, err = Open(dialect.Oracle, "")
	require.Error(t, err)
}

func TestStatsAvg(t *testing.T) {
	assert.Zero(t, Stats{}.Avg())
	assert.Equal(t, 10*time.Nanosecond, Stats{Queries: 2, Execs: 2, Duration: 40}.Avg())
}
