package store

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"booksstock/internal/entity"
)

// ErrInvalidName is returned for collection names a driver cannot hold.
var ErrInvalidName = errors.New("invalid collection name")

// Database is a set of named book collections.
type Database interface {
	// ListCollectionNames returns the sorted names that start with prefix + "_".
	ListCollectionNames(ctx context.Context, prefix string) ([]string, error)
	// CreateCollection creates the named collection if it does not exist yet.
	CreateCollection(ctx context.Context, name string) error
	Collection(name string) Collection
}

// Collection is a single collection of book documents.
type Collection interface {
	Name() string
	Find(ctx context.Context, f Filter) ([]entity.Book, error)
	// InsertOne stores b, assigning a new id when b.ID is empty.
	InsertOne(ctx context.Context, b *entity.Book) error
	// InsertMany stores books with their ids, assigning ids only where missing.
	InsertMany(ctx context.Context, books []entity.Book) error
	// FindOneAndReplace reports whether a document with id existed.
	FindOneAndReplace(ctx context.Context, id string, b entity.Book) (bool, error)
	// FindOneAndDelete reports whether a document with id existed.
	FindOneAndDelete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// NewID returns a fresh 24 character hex identity.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

type filterKind int

const (
	filterAll filterKind = iota
	filterByID
	filterEquals
	filterContains
)

// Filter selects documents of a collection.
type Filter struct {
	kind  filterKind
	value string
}

// All matches every document.
func All() Filter { return Filter{kind: filterAll} }

// ByID matches the document with the exact identity.
func ByID(id string) Filter { return Filter{kind: filterByID, value: id} }

// Equals matches a case-insensitive equality on title, author, language or a genre.
func Equals(term string) Filter { return Filter{kind: filterEquals, value: term} }

// Contains matches a case-insensitive substring of title, author, language or a genre.
func Contains(term string) Filter { return Filter{kind: filterContains, value: term} }

// Matches is the in-process form of the filter. Every driver returns the
// same documents for a filter as Matches accepts.
func (f Filter) Matches(b entity.Book) bool {
	switch f.kind {
	case filterByID:
		return b.ID == f.value
	case filterEquals:
		return anyField(b, func(v string) bool { return strings.EqualFold(v, f.value) })
	case filterContains:
		term := strings.ToLower(f.value)
		return anyField(b, func(v string) bool { return strings.Contains(strings.ToLower(v), term) })
	default:
		return true
	}
}

func anyField(b entity.Book, match func(string) bool) bool {
	if match(b.Title) || match(b.Author) || match(b.Language) {
		return true
	}
	for _, g := range b.Genres {
		if match(g) {
			return true
		}
	}
	return false
}

// document is the stored shape of a book. Field names follow the source
// collection the service was first deployed against.
type document struct {
	Title      string   `json:"book"`
	Author     string   `json:"author"`
	Annotation string   `json:"annotation"`
	Language   string   `json:"language"`
	Genres     []string `json:"genre"`
	Link       string   `json:"link"`
	Available  bool     `json:"available"`
	Price      float64  `json:"price"`
}

func toDocument(b entity.Book) document {
	return document{
		Title:      b.Title,
		Author:     b.Author,
		Annotation: b.Description,
		Language:   b.Language,
		Genres:     b.Genres,
		Link:       b.Link,
		Available:  b.IsAvailable,
		Price:      b.Price,
	}
}

// toBook fills the sentinel genre list for documents stored without genres.
func (d document) toBook(id string) entity.Book {
	genres := d.Genres
	if len(genres) == 0 {
		genres = entity.DefaultGenres()
	}
	return entity.Book{
		ID:          id,
		Title:       d.Title,
		Author:      d.Author,
		Description: d.Annotation,
		Language:    d.Language,
		Genres:      genres,
		Link:        d.Link,
		IsAvailable: d.Available,
		Price:       d.Price,
	}
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \"*\\/?<>|,#:")
}
