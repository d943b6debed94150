package query

import (
	"errors"
	"fmt"
	"strings"

	"booksstock/internal/entity"
)

// ErrInvalidCriteria is returned when filter criteria cannot describe any valid range.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// Predicate reports whether a book belongs to a result set.
type Predicate func(entity.Book) bool

// Criteria is a set of independent optional narrowing rules. Zero values
// (empty strings, nil slices and pointers) leave the candidate set untouched.
type Criteria struct {
	Title       string
	Author      string
	Description string
	Language    string
	Genres      []string
	Available   *bool
	MinPrice    *float64
	MaxPrice    *float64
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return c.Title == "" && c.Author == "" && c.Description == "" && c.Language == "" &&
		len(c.Genres) == 0 && c.Available == nil && c.MinPrice == nil && c.MaxPrice == nil
}

// Validate checks the price range.
func (c Criteria) Validate() error {
	if c.MinPrice != nil && *c.MinPrice < 0 {
		return fmt.Errorf("%w: min price must not be negative", ErrInvalidCriteria)
	}
	if c.MaxPrice != nil && *c.MaxPrice < 0 {
		return fmt.Errorf("%w: max price must not be negative", ErrInvalidCriteria)
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return fmt.Errorf("%w: min price is greater than max price", ErrInvalidCriteria)
	}
	return nil
}

// BuildPredicate composes every set criterion with a logical AND.
func BuildPredicate(c Criteria) Predicate {
	return build(c, true)
}

// BuildPredicateNoAvailability is BuildPredicate without the availability
// rule, for result sets whose availability is already fixed.
func BuildPredicateNoAvailability(c Criteria) Predicate {
	return build(c, false)
}

func build(c Criteria, withAvailability bool) Predicate {
	var rules []Predicate

	if c.Title != "" {
		rules = append(rules, containsRule(c.Title, func(b entity.Book) string { return b.Title }))
	}
	if c.Author != "" {
		rules = append(rules, containsRule(c.Author, func(b entity.Book) string { return b.Author }))
	}
	if c.Description != "" {
		rules = append(rules, containsRule(c.Description, func(b entity.Book) string { return b.Description }))
	}
	if c.Language != "" {
		rules = append(rules, containsRule(c.Language, func(b entity.Book) string { return b.Language }))
	}
	if len(c.Genres) > 0 {
		rules = append(rules, genreRule(c.Genres))
	}
	if withAvailability && c.Available != nil {
		want := *c.Available
		rules = append(rules, func(b entity.Book) bool { return b.IsAvailable == want })
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		rules = append(rules, priceRule(c.MinPrice, c.MaxPrice))
	}

	return func(b entity.Book) bool {
		for _, rule := range rules {
			if !rule(b) {
				return false
			}
		}
		return true
	}
}

func containsRule(term string, field func(entity.Book) string) Predicate {
	term = strings.ToLower(term)
	return func(b entity.Book) bool {
		return strings.Contains(strings.ToLower(field(b)), term)
	}
}

// genreRule matches when a requested term contains one of the book's genres.
// The direction is intentional: "science-fiction-sci-fi" matches a "sci-fi"
// book while "sci" does not.
func genreRule(requested []string) Predicate {
	terms := make([]string, len(requested))
	for i, t := range requested {
		terms[i] = strings.ToLower(t)
	}
	return func(b entity.Book) bool {
		for _, genre := range b.Genres {
			genre = strings.ToLower(genre)
			for _, term := range terms {
				if strings.Contains(term, genre) {
					return true
				}
			}
		}
		return false
	}
}

func priceRule(minPrice, maxPrice *float64) Predicate {
	return func(b entity.Book) bool {
		if minPrice != nil && b.Price < *minPrice {
			return false
		}
		if maxPrice != nil && b.Price > *maxPrice {
			return false
		}
		return true
	}
}
