package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"booksstock/internal/config"
	"booksstock/internal/platform/logging"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()
	logger := logging.InitLogger(os.Getenv("LOG_LEVEL"))
	dir := migrationsDir()

	if *command == "create" {
		if *name == "" {
			fatal(logger, "name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			fatal(logger, "create migration", "error", err)
		}
		logger.Info("migration created", "name", *name, "dir", dir)
		return
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		fatal(logger, "connect to database", "error", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		fatal(logger, "set dialect", "error", err)
	}

	switch *command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			fatal(logger, "run migrations", "error", err)
		}
		logger.Info("migrations applied")
	case "down":
		if err := goose.Down(db, dir); err != nil {
			fatal(logger, "roll back migration", "error", err)
		}
		logger.Info("migration rolled back")
	case "status":
		if err := goose.Status(db, dir); err != nil {
			fatal(logger, "check migration status", "error", err)
		}
	default:
		fatal(logger, "unknown command, use: up, down, status, create", "command", *command)
	}
}

func fatal(logger *slog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}
