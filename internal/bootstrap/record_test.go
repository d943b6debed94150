package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecord(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "databaseName.txt")
	rec := NewFileRecord(path)

	name, err := rec.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, name)

	require.NoError(t, rec.Save(ctx, "books_01-02-2026_03-04-05_1"))
	name, err = rec.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "books_01-02-2026_03-04-05_1", name)

	require.NoError(t, rec.Save(ctx, "books_01-02-2026_03-04-05_2"))
	name, err = rec.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "books_01-02-2026_03-04-05_2", name)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileRecord_TrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "name.txt")
	require.NoError(t, os.WriteFile(path, []byte("books_x\n"), 0o644))

	name, err := NewFileRecord(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "books_x", name)
}

func TestNewFileRecord_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultRecordPath, NewFileRecord("").Path)
}

func TestRedisRecord(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rec := NewRedisRecord(client, "booksstock:working-collection")

	name, err := rec.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, name)

	require.NoError(t, rec.Save(ctx, "books_01-02-2026_03-04-05_1"))
	name, err = rec.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "books_01-02-2026_03-04-05_1", name)

	stored, err := mr.Get("booksstock:working-collection")
	require.NoError(t, err)
	assert.Equal(t, "books_01-02-2026_03-04-05_1", stored)
}

func TestRedisRecord_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewRedisRecord(client, "k").Load(context.Background())
	assert.Error(t, err)
}
