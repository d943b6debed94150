package user

import (
	"context"

	"booksstock/internal/entity"
)

type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByLogin(ctx context.Context, login string) (entity.User, error)
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	GetByID(ctx context.Context, id string) (entity.User, error)
}
