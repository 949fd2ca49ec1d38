package provider

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	querylint "github.com/querylint/querylint"
)

// expectSQLiteProbe queues the full query sequence of one sqlite probe.
func expectSQLiteProbe(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sqlite_version()")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("3.45.0"))

	mock.ExpectQuery(regexp.QuoteMeta(sqliteTablesQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("users"))

	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA table_info("users")`)).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 1, nil, 1).
			AddRow(1, "name", "TEXT", 0, nil, 0))

	mock.ExpectClose()
}

func TestProviderCachesSnapshots(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	expectSQLiteProbe(mock)

	connects := 0
	p := NewProvider(WithConnector(func(ConnectionInfo) (*sql.DB, error) {
		connects++
		return db, nil
	}))

	ctx := context.Background()

	first, err := p.Snapshot(ctx, "sqlite://./app.db")
	require.NoError(t, err)

	table, ok := first.Table("users")
	require.True(t, ok)
	assert.Len(t, table.Columns, 2)

	// Equivalent reference spellings hit the same cache entry.
	second, err := p.Snapshot(ctx, "sqlite3://./app.db")
	require.NoError(t, err)
	assert.Same(t, first, second)

	assert.Equal(t, 1, connects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderConcurrentProbeRunsOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	const callers = 8

	var (
		connects atomic.Int32
		started  sync.WaitGroup
		done     sync.WaitGroup
		release  = make(chan struct{})
	)

	expectSQLiteProbe(mock)

	p := NewProvider(WithConnector(func(ConnectionInfo) (*sql.DB, error) {
		connects.Add(1)
		// hold the probe until every caller is in flight
		<-release

		return db, nil
	}))

	snapshots := make([]*querylint.Snapshot, callers)
	errs := make([]error, callers)

	started.Add(callers)
	done.Add(callers)

	for i := range callers {
		go func() {
			defer done.Done()

			started.Done()
			snapshots[i], errs[i] = p.Snapshot(context.Background(), "sqlite://./app.db")
		}()
	}

	started.Wait()
	close(release)
	done.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, snapshots[0], snapshots[i])
	}

	assert.Equal(t, int32(1), connects.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderInvalidate(t *testing.T) {
	dbs := make([]*sql.DB, 0, 2)

	for range 2 {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		expectSQLiteProbe(mock)

		dbs = append(dbs, db)
	}

	connects := 0
	p := NewProvider(WithConnector(func(ConnectionInfo) (*sql.DB, error) {
		db := dbs[connects]
		connects++

		return db, nil
	}))

	ctx := context.Background()

	_, err := p.Snapshot(ctx, "sqlite://./app.db")
	require.NoError(t, err)

	p.Invalidate("sqlite://./app.db")

	_, err = p.Snapshot(ctx, "sqlite://./app.db")
	require.NoError(t, err)

	assert.Equal(t, 2, connects)
}

func TestProviderFailureIsNotCached(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	expectSQLiteProbe(mock)

	connects := 0
	p := NewProvider(WithConnector(func(ConnectionInfo) (*sql.DB, error) {
		connects++
		if connects == 1 {
			return nil, errors.New("connection refused")
		}

		return db, nil
	}))

	ctx := context.Background()

	_, err = p.Snapshot(ctx, "sqlite://./app.db")
	assert.ErrorIs(t, err, ErrSchemaUnavailable)

	// next call retries the probe
	_, err = p.Snapshot(ctx, "sqlite://./app.db")
	require.NoError(t, err)
	assert.Equal(t, 2, connects)
}

func TestProviderInvalidReference(t *testing.T) {
	p := NewProvider()

	_, err := p.Snapshot(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyReference)

	_, err = p.Snapshot(context.Background(), "mongodb://h/db")
	assert.ErrorIs(t, err, ErrUnsupportedDatabase)
}

const singleFileSchema = `name: app
database:
  type: sqlite
  version: 3.45.0
tables:
  - name: users
    columns:
      - name: id
        type: int
        nullable: false
        isPrimaryKey: true
      - name: name
        type: string
        nullable: true
`

func TestProviderFileReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(singleFileSchema), 0o644))

	p := NewProvider()

	snapshot, err := p.Snapshot(context.Background(), "file://"+path)
	require.NoError(t, err)

	assert.Equal(t, "app", snapshot.Name)

	table, ok := snapshot.Table("Users")
	require.True(t, ok)

	col, ok := table.Column("NAME")
	require.True(t, ok)
	assert.Equal(t, querylint.TypeString, col.Type)
	assert.True(t, col.Nullable)
}

func TestLoadSnapshotErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, ErrSchemaFileNotFound)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tables: {not: [valid"), 0o644))

		_, err := LoadSnapshot(path)
		assert.ErrorIs(t, err, ErrInvalidSchemaFile)
	})

	t.Run("no tables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: app\n"), 0o644))

		_, err := LoadSnapshot(path)
		assert.ErrorIs(t, err, ErrNoTablesFound)
	})

	t.Run("duplicate table", func(t *testing.T) {
		doc := "tables:\n  - name: users\n    columns: []\n  - name: USERS\n    columns: []\n"
		path := filepath.Join(t.TempDir(), "dup.yaml")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		_, err := LoadSnapshot(path)
		assert.ErrorIs(t, err, ErrInvalidSchemaFile)
	})
}

func TestYAMLRoundTrip(t *testing.T) {
	maxLength := 255

	snapshot, err := querylint.NewSnapshot("shop", querylint.DatabaseInfo{Type: "postgres", Version: "16.2"}, []*querylint.Table{
		{
			Name: "orders",
			Columns: []*querylint.Column{
				{Name: "id", Type: querylint.TypeInt, Nullable: false, IsPrimaryKey: true},
				{Name: "total", Type: querylint.TypeDecimal, Nullable: false},
			},
		},
		{
			Name: "users",
			Columns: []*querylint.Column{
				{Name: "id", Type: querylint.TypeInt, Nullable: false, IsPrimaryKey: true},
				{Name: "email", Type: querylint.TypeString, Nullable: true, MaxLength: &maxLength},
			},
		},
	})
	require.NoError(t, err)

	t.Run("per table", func(t *testing.T) {
		dir := t.TempDir()

		path, err := NewYAMLGenerator(true).Generate(snapshot, dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "shop"), path)

		loaded, err := LoadSnapshot(path)
		require.NoError(t, err)

		assertSnapshotEquivalent(t, snapshot, loaded)
	})

	t.Run("single file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shop.yaml")

		written, err := NewYAMLGenerator(false).Generate(snapshot, path)
		require.NoError(t, err)
		assert.Equal(t, path, written)

		loaded, err := LoadSnapshot(path)
		require.NoError(t, err)

		assertSnapshotEquivalent(t, snapshot, loaded)
	})
}

func assertSnapshotEquivalent(t *testing.T, expected, actual *querylint.Snapshot) {
	t.Helper()

	assert.Equal(t, expected.Name, actual.Name)
	assert.Equal(t, expected.Database, actual.Database)
	require.Len(t, actual.Tables, len(expected.Tables))

	for i, table := range expected.Tables {
		assert.Equal(t, table.Name, actual.Tables[i].Name)
		assert.Equal(t, table.Columns, actual.Tables[i].Columns)
	}
}
