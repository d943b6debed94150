package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booksstock/internal/entity"
)

// PostgresDatabase stores every collection as its own table of JSONB documents.
type PostgresDatabase struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresDatabase(db *pgxpool.Pool, timeout time.Duration) *PostgresDatabase {
	return &PostgresDatabase{db: db, timeout: timeout}
}

func (d *PostgresDatabase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

func (d *PostgresDatabase) ListCollectionNames(ctx context.Context, prefix string) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name LIKE $1 ESCAPE '\'
		ORDER BY table_name
	`
	timeoutCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	rows, err := d.db.Query(timeoutCtx, query, escapeLike(prefix)+`\_%`)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (d *PostgresDatabase) CreateCollection(ctx context.Context, name string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id CHAR(24) PRIMARY KEY,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, pgx.Identifier{name}.Sanitize())

	timeoutCtx, cancel := d.withTimeout(ctx)
	defer cancel()
	_, err := d.db.Exec(timeoutCtx, sql)
	return err
}

func (d *PostgresDatabase) Collection(name string) Collection {
	return &pgCollection{db: d, name: name, table: pgx.Identifier{name}.Sanitize()}
}

type pgCollection struct {
	db    *PostgresDatabase
	name  string
	table string
}

func (c *pgCollection) Name() string { return c.name }

func (c *pgCollection) Find(ctx context.Context, f Filter) ([]entity.Book, error) {
	where, args := pgWhere(f)
	sql := fmt.Sprintf("SELECT id, doc FROM %s %s ORDER BY created_at, id", c.table, where)

	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()
	rows, err := c.db.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Book{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
		}
		out = append(out, doc.toBook(id))
	}
	return out, rows.Err()
}

func (c *pgCollection) InsertOne(ctx context.Context, b *entity.Book) error {
	id := b.ID
	if id == "" {
		id = NewID()
	}
	raw, err := json.Marshal(toDocument(*b))
	if err != nil {
		return err
	}

	sql := fmt.Sprintf("INSERT INTO %s (id, doc) VALUES ($1, $2)", c.table)
	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()
	if _, err := c.db.db.Exec(timeoutCtx, sql, id, raw); err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (c *pgCollection) InsertMany(ctx context.Context, books []entity.Book) error {
	if len(books) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(books))
	for _, b := range books {
		id := b.ID
		if id == "" {
			id = NewID()
		}
		raw, err := json.Marshal(toDocument(b))
		if err != nil {
			return err
		}
		rows = append(rows, []any{id, raw})
	}

	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()
	_, err := c.db.db.CopyFrom(timeoutCtx, pgx.Identifier{c.name}, []string{"id", "doc"}, pgx.CopyFromRows(rows))
	return err
}

func (c *pgCollection) FindOneAndReplace(ctx context.Context, id string, b entity.Book) (bool, error) {
	raw, err := json.Marshal(toDocument(b))
	if err != nil {
		return false, err
	}
	sql := fmt.Sprintf("UPDATE %s SET doc = $2 WHERE id = $1", c.table)

	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()
	tag, err := c.db.db.Exec(timeoutCtx, sql, id, raw)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (c *pgCollection) FindOneAndDelete(ctx context.Context, id string) (bool, error) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", c.table)

	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()
	tag, err := c.db.db.Exec(timeoutCtx, sql, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (c *pgCollection) Count(ctx context.Context) (int64, error) {
	var n int64
	timeoutCtx, cancel := c.db.withTimeout(ctx)
	defer cancel()
	err := c.db.db.QueryRow(timeoutCtx, fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)).Scan(&n)
	return n, err
}

const pgGenreExists = `EXISTS (
	SELECT 1 FROM jsonb_array_elements_text(COALESCE(doc->'genre', '[]'::jsonb)) AS g(v)
	WHERE %s)`

func pgWhere(f Filter) (string, []any) {
	switch f.kind {
	case filterByID:
		return "WHERE id = $1", []any{f.value}
	case filterEquals:
		return "WHERE " + pgAnyField(func(col string) string {
			return fmt.Sprintf("lower(%s) = lower($1)", col)
		}), []any{f.value}
	case filterContains:
		return "WHERE " + pgAnyField(func(col string) string {
			return fmt.Sprintf("strpos(lower(%s), lower($1)) > 0", col)
		}), []any{f.value}
	default:
		return "", nil
	}
}

func pgAnyField(cond func(col string) string) string {
	clauses := []string{
		cond("doc->>'book'"),
		cond("doc->>'author'"),
		cond("doc->>'language'"),
		fmt.Sprintf(pgGenreExists, cond("g.v")),
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `_`, `\_`, `%`, `\%`)
	return r.Replace(s)
}
