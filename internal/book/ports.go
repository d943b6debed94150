package book

import (
	"context"

	"booksstock/internal/entity"
)

// Repository defines the contract for the working collection of books.
type Repository interface {
	GetAll(ctx context.Context) ([]entity.Book, error)
	GetByID(ctx context.Context, id string) (entity.Book, error)
	GetAllEquals(ctx context.Context, term string) ([]entity.Book, error)
	GetAllContains(ctx context.Context, term string) ([]entity.Book, error)
	Add(ctx context.Context, b *entity.Book) error
	Replace(ctx context.Context, b entity.Book) error
	Delete(ctx context.Context, id string) error
}
