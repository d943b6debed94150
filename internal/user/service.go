package user

import (
	"context"
	"errors"
	"fmt"

	"booksstock/internal/entity"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account. Every registered account administers the catalog.
func (s *Service) Register(ctx context.Context, login, email, hashedPassword string) (entity.User, error) {
	if err := s.ensureFree(ctx, login, email); err != nil {
		return entity.User{}, err
	}

	newUser := &entity.User{
		Login:    login,
		Email:    email,
		Password: hashedPassword,
		Role:     entity.RoleAdmin,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return entity.User{}, err
	}
	return *newUser, nil
}

func (s *Service) ensureFree(ctx context.Context, login, email string) error {
	_, loginErr := s.repo.GetByLogin(ctx, login)
	if loginErr != nil && !errors.Is(loginErr, ErrNotFound) {
		return loginErr
	}
	_, emailErr := s.repo.GetByEmail(ctx, email)
	if emailErr != nil && !errors.Is(emailErr, ErrNotFound) {
		return emailErr
	}

	switch {
	case loginErr == nil && emailErr == nil:
		return fmt.Errorf("%w: login and email are taken", ErrAlreadyExists)
	case loginErr == nil:
		return fmt.Errorf("%w: login is taken", ErrAlreadyExists)
	case emailErr == nil:
		return fmt.Errorf("%w: email is taken", ErrAlreadyExists)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (entity.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByLogin(ctx context.Context, login string) (entity.User, error) {
	return s.repo.GetByLogin(ctx, login)
}
