package main

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booksstock/internal/config"
	"booksstock/internal/entity"
	"booksstock/internal/store"
)

func TestGenerateBooks(t *testing.T) {
	books := generateBooks(rand.New(rand.NewSource(7)), 50)
	require.Len(t, books, 50)

	seen := make(map[string]bool)
	for _, b := range books {
		assert.Len(t, b.ID, entity.IDLength)
		assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true

		assert.NotEmpty(t, b.Genres)
		assert.LessOrEqual(t, len(b.Genres), 3)
		assert.GreaterOrEqual(t, b.Price, 1.0)
		assert.Less(t, b.Price, 50.0)
	}
}

func TestInsert_Batches(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryDatabase()
	coll := db.Collection("books")

	books := generateBooks(rand.New(rand.NewSource(1)), batchSize+10)
	require.NoError(t, insert(ctx, coll, books, slog.New(slog.NewTextHandler(io.Discard, nil))))

	n, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(batchSize+10), n)
}

func TestOpenDatabase_RejectsMemory(t *testing.T) {
	cfg := config.Default()
	cfg.StoreDriver = config.DriverMemory
	_, _, err := openDatabase(context.Background(), cfg)
	assert.Error(t, err)
}
