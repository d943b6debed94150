package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"booksstock/internal/entity"
)

// MemoryDatabase keeps collections in process. It backs local runs and tests.
type MemoryDatabase struct {
	mu          sync.RWMutex
	collections map[string][]entity.Book
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{collections: make(map[string][]entity.Book)}
}

func (d *MemoryDatabase) ListCollectionNames(_ context.Context, prefix string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := []string{}
	for name := range d.collections {
		if strings.HasPrefix(name, prefix+"_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (d *MemoryDatabase) CreateCollection(_ context.Context, name string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.collections[name]; !ok {
		d.collections[name] = []entity.Book{}
	}
	return nil
}

func (d *MemoryDatabase) Collection(name string) Collection {
	return &memoryCollection{db: d, name: name}
}

type memoryCollection struct {
	db   *MemoryDatabase
	name string
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Find(_ context.Context, f Filter) ([]entity.Book, error) {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()

	out := []entity.Book{}
	for _, b := range c.db.collections[c.name] {
		if f.Matches(b) {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

func (c *memoryCollection) InsertOne(_ context.Context, b *entity.Book) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if c.indexOf(b.ID) >= 0 {
		return fmt.Errorf("insert %s: duplicate id %s", c.name, b.ID)
	}
	c.db.collections[c.name] = append(c.db.collections[c.name], clone(*b))
	return nil
}

func (c *memoryCollection) InsertMany(_ context.Context, books []entity.Book) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	for _, b := range books {
		if b.ID == "" {
			b.ID = NewID()
		}
		if c.indexOf(b.ID) >= 0 {
			return fmt.Errorf("insert %s: duplicate id %s", c.name, b.ID)
		}
		c.db.collections[c.name] = append(c.db.collections[c.name], clone(b))
	}
	return nil
}

func (c *memoryCollection) FindOneAndReplace(_ context.Context, id string, b entity.Book) (bool, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	b.ID = id
	c.db.collections[c.name][i] = clone(b)
	return true, nil
}

func (c *memoryCollection) FindOneAndDelete(_ context.Context, id string) (bool, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	books := c.db.collections[c.name]
	c.db.collections[c.name] = append(books[:i:i], books[i+1:]...)
	return true, nil
}

func (c *memoryCollection) Count(_ context.Context) (int64, error) {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()
	return int64(len(c.db.collections[c.name])), nil
}

// indexOf must be called with the lock held.
func (c *memoryCollection) indexOf(id string) int {
	for i, b := range c.db.collections[c.name] {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func clone(b entity.Book) entity.Book {
	if len(b.Genres) == 0 {
		b.Genres = entity.DefaultGenres()
		return b
	}
	b.Genres = append([]string(nil), b.Genres...)
	return b
}
