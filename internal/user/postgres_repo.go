package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"booksstock/internal/entity"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Create(ctx context.Context, u *entity.User) error {
	const query = `
	INSERT INTO users (id, login, email, password_hash, role)
	VALUES (gen_random_uuid(), $1, $2, $3, $4)
	RETURNING id::text, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, u.Login, u.Email, u.Password, u.Role).Scan(&u.ID, &u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) GetByLogin(ctx context.Context, login string) (entity.User, error) {
	return r.getOne(ctx, "login", login)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (entity.User, error) {
	return r.getOne(ctx, "id::text", id)
}

// getOne is only called with the fixed column expressions above.
func (r *PostgresRepo) getOne(ctx context.Context, column, value string) (entity.User, error) {
	query := `
	SELECT id::text, login, email, password_hash, role, created_at
	FROM users
	WHERE ` + column + ` = $1
	LIMIT 1
	`
	var u entity.User
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, value).Scan(&u.ID, &u.Login, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, ErrNotFound
		}
		return entity.User{}, err
	}
	return u, nil
}
