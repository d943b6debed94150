package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"booksstock/internal/auth"
	"booksstock/internal/book"
	"booksstock/internal/bootstrap"
	"booksstock/internal/config"
	"booksstock/internal/httpx"
	"booksstock/internal/platform/logging"
	"booksstock/internal/store"
	"booksstock/internal/user"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	backend, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.close()

	var redisClient *redis.Client
	if cfg.NameRecord == config.RecordRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = redisClient.Close() }()
	}

	var record bootstrap.NameRecord = bootstrap.NewFileRecord(cfg.NameRecordPath)
	blacklist := backend.blacklist
	if redisClient != nil {
		record = bootstrap.NewRedisRecord(redisClient, cfg.RedisKey)
		blacklist = auth.NewRedisBlacklist(redisClient, revokedKeyPrefix)
	}

	manager := bootstrap.NewManager(backend.db, record, cfg.WorkingPrefix, cfg.SourceCollection,
		bootstrap.WithLogger(logger))
	working, err := manager.Run(ctx)
	if err != nil {
		return err
	}

	bookService := book.NewService(book.NewStoreRepository(backend.db.Collection(working.Name)))
	userService := user.NewService(backend.users)
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTTTL, userService, blacklist)

	handler := newRouter(routerDeps{
		books:        bookService,
		users:        userService,
		auth:         authService,
		apiKey:       cfg.APIKey,
		limiter:      httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
		ready:        backend.ping,
		adminOrigins: cfg.AdminOrigins,
		userOrigins:  cfg.UserOrigins,
		logger:       logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "collection", working.Name)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

const revokedKeyPrefix = "booksstock:revoked:"

// backend is an opened store driver with the account storage that lives next to it.
type backend struct {
	db        store.Database
	users     user.Repository
	blacklist auth.Blacklist
	ping      func(context.Context) error
	close     func()
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := openDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return backend{}, err
		}
		logger.Info("database connection OK", "dsn", redactDSN(cfg.DatabaseDSN))
		return backend{
			db:        store.NewPostgresDatabase(pool, cfg.StoreTimeout),
			users:     user.NewPostgresRepo(pool, cfg.StoreTimeout),
			blacklist: auth.NewPostgresBlacklist(pool, cfg.StoreTimeout),
			ping:      pool.Ping,
			close:     pool.Close,
		}, nil

	case config.DriverElastic:
		client, err := store.NewElasticClient(cfg.ElasticURL)
		if err != nil {
			return backend{}, err
		}
		logger.Warn("accounts are kept in memory with the elastic driver")
		return backend{
			db:        store.NewElasticDatabase(client, cfg.StoreTimeout),
			users:     user.NewMemoryRepo(),
			blacklist: auth.NewMemoryBlacklist(),
			ping: func(ctx context.Context) error {
				_, _, err := client.Ping(cfg.ElasticURL).Do(ctx)
				return err
			},
			close: client.Stop,
		}, nil

	default:
		logger.Warn("using the in-memory store; data is lost on exit")
		return backend{
			db:        store.NewMemoryDatabase(),
			users:     user.NewMemoryRepo(),
			blacklist: auth.NewMemoryBlacklist(),
			ping:      func(context.Context) error { return nil },
			close:     func() {},
		}, nil
	}
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
