package book

import (
	"errors"

	"booksstock/internal/entity"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidID is returned for identities that are not 24 characters long.
	ErrInvalidID = errors.New("invalid book id")
)

// Scope selects which part of the catalog an operation sees.
type Scope int

const (
	// ScopeAll is the administrative view of every book.
	ScopeAll Scope = iota
	// ScopeAvailable is the public view restricted to available books.
	ScopeAvailable
)

// NewBook is the payload for adding a book.
type NewBook struct {
	Title       string   `json:"title" validate:"max=500"`
	Author      string   `json:"author" validate:"max=300"`
	Description string   `json:"description" validate:"max=5000"`
	Language    string   `json:"language" validate:"max=100"`
	Genres      []string `json:"genres" validate:"max=50,dive,max=100"`
	Link        string   `json:"link"`
	IsAvailable bool     `json:"is_available"`
	Price       float64  `json:"price"`
}

// Changes is the payload for updating a book. Nil fields keep the stored value.
type Changes struct {
	Title       *string  `json:"title" validate:"omitempty,max=500"`
	Author      *string  `json:"author" validate:"omitempty,max=300"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Language    *string  `json:"language" validate:"omitempty,max=100"`
	Genres      []string `json:"genres" validate:"max=50,dive,max=100"`
	Link        *string  `json:"link"`
	IsAvailable *bool    `json:"is_available"`
	Price       *float64 `json:"price"`
}

// ValidID reports whether id has the length of a store-assigned identity.
func ValidID(id string) bool {
	return len(id) == entity.IDLength
}
