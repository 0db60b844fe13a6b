package kv

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guia-app/guia/internal/dbx"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE kv (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "guia_token", []byte("tok-1")))

	v, err := r.Get(ctx, "guia_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-1"), v)
}

func TestGet_Missing_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestGetMany_ReturnsPresentSubset(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB}))
	require.NoError(t, r.Set(ctx, "other", []byte{0x00}))

	m, err := r.GetMany(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {0xAA}, "b": {0xBB}}, m)

	empty, err := r.GetMany(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDelete_ManyKeys_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{1}))
	require.NoError(t, r.Set(ctx, "y", []byte{2}))
	require.NoError(t, r.Set(ctx, "z", []byte{3}))

	require.NoError(t, r.Delete(ctx, "x", "y"))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"z": {3}}, m)
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestWritesInsideTx_RollBackTogether(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := NewSQLiteRepository(tx)
		require.NoError(t, r.Set(ctx, "guia_token", []byte("t")))
		require.NoError(t, r.Set(ctx, "guia_refresh_token", []byte("r")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	m, err := NewSQLiteRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestClosedDB_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to get kv[k]")

	_, err = r.GetMany(ctx, "k")
	assert.ErrorContains(t, err, "failed to get kv[k]")

	assert.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set kv[k]")
	assert.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete kv[k]")
	assert.ErrorContains(t, r.Clear(ctx), "failed to clear kv")

	_, err = r.List(ctx)
	assert.ErrorContains(t, err, "failed to list kv")
}

func newMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestList_ScanErrorIsWrapped(t *testing.T) {
	r, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"key"}).AddRow("only-one-column")
	mock.ExpectQuery(`SELECT key, value FROM kv`).WillReturnRows(rows)

	_, err := r.List(context.Background())
	assert.ErrorContains(t, err, "failed to scan kv row")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMany_RowErrorIsWrapped(t *testing.T) {
	r, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("a", []byte("1")).
		RowError(0, errors.New("disk I/O error"))
	mock.ExpectQuery(`SELECT key, value FROM kv WHERE key IN \(\?,\?\)`).
		WithArgs("a", "b").
		WillReturnRows(rows)

	_, err := r.GetMany(context.Background(), "a", "b")
	assert.ErrorContains(t, err, "failed to iterate kv rows")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_PassesAllKeys(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM kv WHERE key IN \(\?,\?,\?\)`).
		WithArgs("guia_token", "guia_refresh_token", "guia_user").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, r.Delete(context.Background(), "guia_token", "guia_refresh_token", "guia_user"))
	require.NoError(t, mock.ExpectationsWereMet())
}
