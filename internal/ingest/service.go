package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booksstock/internal/entity"
	"booksstock/internal/platform/openlibrary"
	"booksstock/internal/store"
)

type Config struct {
	BooksMax  int
	Subjects  []string
	BatchSize int
}

type OpenLibraryClient interface {
	SearchBooks(ctx context.Context, subject string, limit int) (*openlibrary.SearchResponse, error)
	WorkURL(key string) string
}

// Stats summarises one import.
type Stats struct {
	Fetched  int
	Inserted int
	Skipped  int
}

// Service fills the read-only source collection with works from Open Library
// until it holds BooksMax books.
type Service struct {
	olClient OpenLibraryClient
	source   store.Collection
	price    func() float64
	cfg      Config
	logger   *slog.Logger
}

func NewService(olClient OpenLibraryClient, source store.Collection, price func() float64, cfg Config, logger *slog.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Service{olClient: olClient, source: source, price: price, cfg: cfg, logger: logger}
}

func (s *Service) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	current, err := s.source.Count(ctx)
	if err != nil {
		return stats, err
	}
	needed := s.cfg.BooksMax - int(current)
	if needed <= 0 {
		s.logger.Info("source collection already full, skipping import", "count", current)
		return stats, nil
	}

	seen := make(map[string]bool)
	var batch []entity.Book
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.source.InsertMany(ctx, batch); err != nil {
			return err
		}
		stats.Inserted += len(batch)
		batch = nil
		return nil
	}

	for _, subject := range s.cfg.Subjects {
		if stats.Inserted+len(batch) >= needed {
			break
		}

		limit := 100
		if remaining := needed - stats.Inserted - len(batch); remaining < 50 {
			limit = remaining * 2
		}
		res, err := s.olClient.SearchBooks(ctx, subject, limit)
		if err != nil {
			return stats, fmt.Errorf("search failed for %s: %w", subject, err)
		}
		stats.Fetched += len(res.Docs)

		for _, doc := range res.Docs {
			if stats.Inserted+len(batch) >= needed {
				break
			}
			if doc.Key == "" || doc.Title == "" || seen[doc.Key] {
				stats.Skipped++
				continue
			}
			seen[doc.Key] = true

			batch = append(batch, s.toBook(doc, subject))
			if len(batch) >= s.cfg.BatchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
		s.logger.Info("subject imported", "subject", subject, "docs", len(res.Docs), "inserted", stats.Inserted+len(batch))
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Service) toBook(doc openlibrary.SearchDoc, subject string) entity.Book {
	b := entity.Book{
		ID:          store.NewID(),
		Title:       doc.Title,
		Author:      strings.Join(doc.AuthorNames, ", "),
		Language:    languageName(doc.Language),
		Genres:      []string{strings.ToLower(subject)},
		Link:        s.olClient.WorkURL(doc.Key),
		IsAvailable: true,
		Price:       s.price(),
	}
	if len(doc.FirstSentence) > 0 {
		b.Description = doc.FirstSentence[0]
	}
	return b
}

var languageNames = map[string]string{
	"eng": "english",
	"spa": "spanish",
	"fre": "french",
	"ger": "german",
	"ita": "italian",
	"por": "portuguese",
	"rus": "russian",
	"chi": "chinese",
	"jpn": "japanese",
}

// languageName maps the first MARC language code onto a name. Unknown codes
// are kept as they are.
func languageName(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	if name, ok := languageNames[codes[0]]; ok {
		return name
	}
	return codes[0]
}
