package book

import (
	"context"

	"booksstock/internal/entity"
	"booksstock/internal/store"
)

// StoreRepository runs catalog operations against one store collection.
type StoreRepository struct {
	coll store.Collection
}

func NewStoreRepository(coll store.Collection) *StoreRepository {
	return &StoreRepository{coll: coll}
}

// GetAll returns the whole collection with no limit.
func (r *StoreRepository) GetAll(ctx context.Context) ([]entity.Book, error) {
	return r.coll.Find(ctx, store.All())
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (entity.Book, error) {
	books, err := r.coll.Find(ctx, store.ByID(id))
	if err != nil {
		return entity.Book{}, err
	}
	if len(books) == 0 {
		return entity.Book{}, ErrNotFound
	}
	return books[0], nil
}

func (r *StoreRepository) GetAllEquals(ctx context.Context, term string) ([]entity.Book, error) {
	return r.coll.Find(ctx, store.Equals(term))
}

func (r *StoreRepository) GetAllContains(ctx context.Context, term string) ([]entity.Book, error) {
	return r.coll.Find(ctx, store.Contains(term))
}

// Add stores b under a new identity and writes it back into b.ID.
func (r *StoreRepository) Add(ctx context.Context, b *entity.Book) error {
	b.ID = ""
	return r.coll.InsertOne(ctx, b)
}

func (r *StoreRepository) Replace(ctx context.Context, b entity.Book) error {
	ok, err := r.coll.FindOneAndReplace(ctx, b.ID, b)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete succeeds when nothing matches id.
func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	_, err := r.coll.FindOneAndDelete(ctx, id)
	return err
}
