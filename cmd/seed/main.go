package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"booksstock/internal/config"
	"booksstock/internal/entity"
	"booksstock/internal/ingest"
	"booksstock/internal/platform/logging"
	"booksstock/internal/platform/openlibrary"
	"booksstock/internal/store"
)

const batchSize = 1000

var (
	genres    = []string{"fiction", "sci-fi", "history", "science", "technology", "romance", "mystery", "biography", "philosophy", "art"}
	languages = []string{"english", "spanish", "french", "german", "italian", "portuguese", "chinese", "japanese"}
	authors   = []string{"Austen", "Borges", "Calvino", "Dostoevsky", "Eco", "Fitzgerald", "Garcia Marquez", "Herbert", "Lem", "Murakami"}
	words     = []string{"Adventure", "Mystery", "Journey", "Discovery", "Secret", "Legacy", "Revolution", "Evolution", "Harmony", "Balance"}
)

func main() {
	count := flag.Int("count", 500, "books to generate, or the source size to reach when importing")
	seed := flag.Int64("seed", 1, "random seed")
	from := flag.String("from", "generated", "book origin: generated or openlibrary")
	subjects := flag.String("subjects", "fiction,science_fiction,history,romance,mystery,biography,philosophy,art", "Open Library subjects to import")
	flag.Parse()

	config.LoadEnvFiles()
	logger := logging.InitLogger(os.Getenv("LOG_LEVEL"))

	cfg := config.Default()
	for key, dst := range map[string]*string{
		"STORE_DRIVER":      &cfg.StoreDriver,
		"DB_DSN":            &cfg.DatabaseDSN,
		"ELASTIC_URL":       &cfg.ElasticURL,
		"SOURCE_COLLECTION": &cfg.SourceCollection,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ctx := context.Background()
	db, closeDB, err := openDatabase(ctx, cfg)
	if err != nil {
		logger.Error("open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeDB()

	r := rand.New(rand.NewSource(*seed))
	source := db.Collection(cfg.SourceCollection)
	switch *from {
	case "generated":
		if err := insert(ctx, source, generateBooks(r, *count), logger); err != nil {
			logger.Error("insert books", "error", err)
			os.Exit(1)
		}
	case "openlibrary":
		client := openlibrary.NewClient(os.Getenv("OPENLIBRARY_URL"), "booksstock-seed/1.0", 2, 3)
		importer := ingest.NewService(client, source, func() float64 { return randomPrice(r) }, ingest.Config{
			BooksMax:  *count,
			Subjects:  strings.Split(*subjects, ","),
			BatchSize: batchSize,
		}, logger)
		stats, err := importer.Run(ctx)
		if err != nil {
			logger.Error("import from open library", "error", err)
			os.Exit(1)
		}
		logger.Info("open library import", "fetched", stats.Fetched, "inserted", stats.Inserted, "skipped", stats.Skipped)
	default:
		logger.Error("unknown book origin", "from", *from)
		os.Exit(1)
	}

	total, err := db.Collection(cfg.SourceCollection).Count(ctx)
	if err != nil {
		logger.Error("count books", "error", err)
		os.Exit(1)
	}
	logger.Info("seed complete", "collection", cfg.SourceCollection, "total", total)
}

func openDatabase(ctx context.Context, cfg config.Config) (store.Database, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		db := store.NewPostgresDatabase(pool, cfg.StoreTimeout)
		if err := db.CreateCollection(ctx, cfg.SourceCollection); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return db, pool.Close, nil
	case config.DriverElastic:
		client, err := store.NewElasticClient(cfg.ElasticURL)
		if err != nil {
			return nil, nil, err
		}
		db := store.NewElasticDatabase(client, cfg.StoreTimeout)
		if err := db.CreateCollection(ctx, cfg.SourceCollection); err != nil {
			client.Stop()
			return nil, nil, err
		}
		return db, client.Stop, nil
	default:
		return nil, nil, fmt.Errorf("seeding needs a persistent driver, got %q", cfg.StoreDriver)
	}
}

func insert(ctx context.Context, coll store.Collection, books []entity.Book, logger *slog.Logger) error {
	for start := 0; start < len(books); start += batchSize {
		end := min(start+batchSize, len(books))
		if err := coll.InsertMany(ctx, books[start:end]); err != nil {
			return err
		}
		logger.Info("inserted batch", "done", end, "of", len(books))
	}
	return nil
}

// generateBooks returns n books with fresh ids, one to three genres and a
// price with cents. Roughly four in five are available.
func generateBooks(r *rand.Rand, n int) []entity.Book {
	books := make([]entity.Book, n)
	for i := range books {
		word := words[r.Intn(len(words))]
		books[i] = entity.Book{
			ID:          store.NewID(),
			Title:       fmt.Sprintf("Book Title %d - %s", i+1, word),
			Author:      authors[r.Intn(len(authors))],
			Description: fmt.Sprintf("A book about %s.", word),
			Language:    languages[r.Intn(len(languages))],
			Genres:      pickGenres(r),
			Link:        fmt.Sprintf("https://books.example.com/%d", i+1),
			IsAvailable: r.Intn(5) != 0,
			Price:       randomPrice(r),
		}
	}
	return books
}

func randomPrice(r *rand.Rand) float64 {
	return float64(100+r.Intn(4900)) / 100
}

func pickGenres(r *rand.Rand) []string {
	perm := r.Perm(len(genres))
	picked := make([]string, 1+r.Intn(3))
	for i := range picked {
		picked[i] = genres[perm[i]]
	}
	return picked
}
