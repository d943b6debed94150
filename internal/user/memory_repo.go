package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"booksstock/internal/entity"
)

// MemoryRepo keeps accounts in process for the memory store driver and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	users []entity.User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Login == u.Login || existing.Email == u.Email {
			return ErrAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	r.users = append(r.users, *u)
	return nil
}

func (r *MemoryRepo) GetByLogin(_ context.Context, login string) (entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Login == login })
}

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email })
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id })
}

func (r *MemoryRepo) find(match func(entity.User) bool) (entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return entity.User{}, ErrNotFound
}
