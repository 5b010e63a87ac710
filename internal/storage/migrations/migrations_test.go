package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSListsBothDialects(t *testing.T) {
	for _, d := range []Dialect{Postgres, SQLite} {
		fsys, err := FS(d)
		require.NoError(t, err)
		names, err := fs.Glob(fsys, "*.sql")
		require.NoError(t, err)
		assert.Equal(t, []string{"00001_users.sql", "00002_campus.sql", "00003_activities.sql"}, names, "dialect %s", d)
	}
}

func TestUpSQLiteIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations_test?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	applied, err := Up(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	applied, err = Up(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Zero(t, applied)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Zero(t, count)
}

func TestUpRejectsUnknownDialect(t *testing.T) {
	_, err := Up(context.Background(), nil, Dialect("oracle"))
	assert.Error(t, err)
}
