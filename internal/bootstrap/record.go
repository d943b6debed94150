package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRecordPath is where FileRecord keeps the active name by default.
const DefaultRecordPath = "databaseName.txt"

// NameRecord persists the name of the active working collection.
type NameRecord interface {
	// Load returns "" when no name was saved yet.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, name string) error
}

// FileRecord keeps the name in a small text file.
type FileRecord struct {
	Path string
}

func NewFileRecord(path string) *FileRecord {
	if path == "" {
		path = DefaultRecordPath
	}
	return &FileRecord{Path: path}
}

func (r *FileRecord) Load(_ context.Context) (string, error) {
	b, err := os.ReadFile(r.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Save replaces the file atomically.
func (r *FileRecord) Save(_ context.Context, name string) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.Path), filepath.Base(r.Path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(name); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.Path)
}

// RedisRecord keeps the name under a single Redis key.
type RedisRecord struct {
	client *redis.Client
	key    string
}

func NewRedisRecord(client *redis.Client, key string) *RedisRecord {
	return &RedisRecord{client: client, key: key}
}

func (r *RedisRecord) Load(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisRecord) Save(ctx context.Context, name string) error {
	return r.client.Set(ctx, r.key, name, 0).Err()
}
