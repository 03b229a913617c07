package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the behavior every backend must share.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Put(ctx, "k", []byte(`{"a":1}`)))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	require.NoError(t, kv.Put(ctx, "k", []byte(`{"a":2}`)))
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), got, "Put must fully overwrite")

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, kv.Delete(ctx, "k"), "deleting a missing key is not an error")
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "store.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	exerciseKV(t, db)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "cashraaga-analysis", []byte(`{"cleaned_csv":"x"}`)))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	got, err := db.Get(ctx, "cashraaga-analysis")
	require.NoError(t, err)
	assert.Equal(t, `{"cleaned_csv":"x"}`, string(got))

	ts, err := db.UpdatedAt(ctx, "cashraaga-analysis")
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}

func TestRedis_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := DialRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)

	r := NewRedis(client)
	defer func() { _ = r.Close() }()

	exerciseKV(t, r)
	assert.False(t, mr.Exists("k"))
}

func TestDialRedis_Errors(t *testing.T) {
	_, err := DialRedis(context.Background(), RedisOptions{})
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = DialRedis(context.Background(), RedisOptions{Addr: addr})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		kv, err := Open(ctx, Options{Backend: "memory"})
		require.NoError(t, err)
		_, ok := kv.(*Memory)
		assert.True(t, ok)
	})

	t.Run("sqlite by default", func(t *testing.T) {
		kv, err := Open(ctx, Options{SQLitePath: filepath.Join(t.TempDir(), "s.db")})
		require.NoError(t, err)
		defer func() { _ = kv.Close() }()
		_, ok := kv.(*SQLite)
		assert.True(t, ok)
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := Open(ctx, Options{Backend: "sqlite"})
		assert.Error(t, err)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		kv, err := Open(ctx, Options{Backend: " Redis ", Redis: RedisOptions{Addr: mr.Addr()}})
		require.NoError(t, err)
		defer func() { _ = kv.Close() }()
		_, ok := kv.(*Redis)
		assert.True(t, ok)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, Options{Backend: "etcd"})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
	})
}
