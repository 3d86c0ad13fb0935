package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"testing/fstest"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	createTrackingSQL = "CREATE TABLE IF NOT EXISTS schema_migrations"
	checkAppliedSQL   = "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)"
	recordAppliedSQL  = "INSERT INTO schema_migrations (version) VALUES ($1)"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"002_index.up.sql": {Data: []byte("CREATE INDEX kv_store_updated_at_idx ON kv_store (updated_at);")},
		"001_kv.up.sql":    {Data: []byte("CREATE TABLE kv_store (key TEXT PRIMARY KEY);")},
		"001_kv.down.sql":  {Data: []byte("DROP TABLE kv_store;")},
		"README.md":        {Data: []byte("notes")},
		"nested/x.up.sql":  {Data: []byte("SELECT 1;")},
	}
}

func TestMigrationFiles_SortedUpOnly(t *testing.T) {
	names, err := migrationFiles(testMigrations())
	require.NoError(t, err)
	assert.Equal(t, []string{"001_kv.up.sql", "002_index.up.sql"}, names)
}

func TestRunMigrations_AppliesPending(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(createTrackingSQL)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	mock.ExpectQuery(regexp.QuoteMeta(checkAppliedSQL)).WithArgs("001_kv.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(regexp.QuoteMeta(checkAppliedSQL)).WithArgs("002_index.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX kv_store_updated_at_idx")).WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
	mock.ExpectExec(regexp.QuoteMeta(recordAppliedSQL)).WithArgs("002_index.up.sql").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, RunMigrations(context.Background(), mock, testMigrations(), discardLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SQLErrorRollsBackWithoutRetry(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	migrations := fstest.MapFS{"001_kv.up.sql": {Data: []byte("CREATE TABLE kv_store (key TEXT PRIMARY KEY);")}}

	mock.ExpectExec(regexp.QuoteMeta(createTrackingSQL)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectQuery(regexp.QuoteMeta(checkAppliedSQL)).WithArgs("001_kv.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE kv_store")).WillReturnError(errors.New("syntax error at or near"))
	mock.ExpectRollback()

	err = RunMigrations(context.Background(), mock, migrations, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute migration 001_kv.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_TrackingTableFailure(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(createTrackingSQL)).WillReturnError(errors.New("permission denied for schema public"))

	err = RunMigrations(context.Background(), mock, testMigrations(), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create schema_migrations table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_ConnectionErrorStopsOnCanceledContext(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(createTrackingSQL)).WillReturnError(errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = RunMigrations(ctx, mock, testMigrations(), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
