package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"booksstock/internal/store"
)

// Result describes the working collection a run resolved.
type Result struct {
	Name    string
	Created bool
	Copied  int
}

// Manager resolves the working collection the catalog writes to and fills it
// once from the read-only source collection.
type Manager struct {
	db     store.Database
	record NameRecord
	prefix string
	source string
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func NewManager(db store.Database, record NameRecord, prefix, source string, opts ...Option) *Manager {
	m := &Manager{
		db:     db,
		record: record,
		prefix: prefix,
		source: source,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run must finish before the catalog serves requests. Running it again
// against a populated working collection changes nothing.
func (m *Manager) Run(ctx context.Context) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names, err := m.db.ListCollectionNames(ctx, m.prefix)
	if err != nil {
		return Result{}, fmt.Errorf("list collections: %w", err)
	}

	name, err := m.record.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load working collection name: %w", err)
	}

	res := Result{Name: name}
	if name == "" || !contains(names, name) {
		if name != "" {
			m.logger.Warn("stale working collection name", "name", name)
		}
		serial, err := NextSerial(m.prefix, names, m.source)
		if err != nil {
			return Result{}, err
		}
		res.Name = NewName(m.prefix, m.now(), serial).String()
		res.Created = true
	}

	if res.Created {
		if err := m.db.CreateCollection(ctx, res.Name); err != nil {
			return Result{}, fmt.Errorf("create %s: %w", res.Name, err)
		}
		if err := m.record.Save(ctx, res.Name); err != nil {
			return Result{}, fmt.Errorf("save working collection name: %w", err)
		}
	}

	working := m.db.Collection(res.Name)
	count, err := working.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count %s: %w", res.Name, err)
	}
	if count == 0 {
		res.Copied, err = m.copySource(ctx, working)
		if err != nil {
			return Result{}, err
		}
	}

	m.logger.Info("working collection ready",
		"name", res.Name,
		"created", res.Created,
		"copied", res.Copied,
	)
	return res, nil
}

func (m *Manager) copySource(ctx context.Context, working store.Collection) (int, error) {
	books, err := m.db.Collection(m.source).Find(ctx, store.All())
	if err != nil {
		return 0, fmt.Errorf("read source %s: %w", m.source, err)
	}
	if len(books) == 0 {
		m.logger.Warn("source collection is empty", "source", m.source)
		return 0, nil
	}
	if err := working.InsertMany(ctx, books); err != nil {
		return 0, fmt.Errorf("copy %s into %s: %w", m.source, working.Name(), err)
	}
	return len(books), nil
}
