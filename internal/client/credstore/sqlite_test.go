package credstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) (*SQLiteBackend, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "session.db")
	b, err := OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, dsn
}

func TestSQLite_LoadEmpty_ReturnsEmptyNil(t *testing.T) {
	b, _ := openSQLite(t)

	v, err := b.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestSQLite_SaveThenLoad_Overwrites(t *testing.T) {
	b, _ := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "old"))
	require.NoError(t, b.Save(ctx, "new"))

	v, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", v)

	var n int
	require.NoError(t, b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n))
	require.Equal(t, 1, n, "exactly one credential row")
}

func TestSQLite_Delete_IsIdempotent(t *testing.T) {
	b, _ := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "tok"))
	require.NoError(t, b.Delete(ctx))
	require.NoError(t, b.Delete(ctx))

	v, err := b.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	b, dsn := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, b.Save(ctx, "persisted"))
	require.NoError(t, b.Close())

	again, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer again.Close()

	v, err := again.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "persisted", v)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
}

func TestSQLite_ClosedDB_ErrorsWrapped(t *testing.T) {
	b, _ := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, b.db.Close())

	_, err := b.Load(ctx)
	require.ErrorContains(t, err, "failed to get credentials[access_token]")
	require.ErrorContains(t, b.Save(ctx, "x"), "failed to set credentials[access_token]")
	require.ErrorContains(t, b.Delete(ctx), "failed to clear credentials")
}
