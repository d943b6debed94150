package book

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"booksstock/internal/entity"
	"booksstock/internal/query"
)

// Service provides catalog operations on top of the working collection.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// All returns every book visible in scope.
func (s *Service) All(ctx context.Context, scope Scope) ([]entity.Book, error) {
	books, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return restrict(books, scope), nil
}

// ByID returns a single book.
func (s *Service) ByID(ctx context.Context, id string) (entity.Book, error) {
	if !ValidID(id) {
		return entity.Book{}, ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

// ByAvailability returns the books whose availability equals available.
func (s *Service) ByAvailability(ctx context.Context, available bool) ([]entity.Book, error) {
	books, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return keep(books, func(b entity.Book) bool { return b.IsAvailable == available }), nil
}

// Equals returns books with a title, author, language or genre equal to term.
func (s *Service) Equals(ctx context.Context, scope Scope, term string) ([]entity.Book, error) {
	books, err := s.repo.GetAllEquals(ctx, term)
	if err != nil {
		return nil, err
	}
	return restrict(books, scope), nil
}

// Contains returns books with a title, author, language or genre containing term.
func (s *Service) Contains(ctx context.Context, scope Scope, term string) ([]entity.Book, error) {
	books, err := s.repo.GetAllContains(ctx, term)
	if err != nil {
		return nil, err
	}
	return restrict(books, scope), nil
}

// Filtered returns the books matching every set criterion.
func (s *Service) Filtered(ctx context.Context, scope Scope, c query.Criteria) ([]entity.Book, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	books, err := s.All(ctx, scope)
	if err != nil {
		return nil, err
	}
	return keep(books, predicate(scope, c)), nil
}

// Paginate applies the optional criteria, price ordering and paging to books
// already read through scope.
func (s *Service) Paginate(scope Scope, books []entity.Book, c *query.Criteria, req query.PageRequest) (query.Result, error) {
	if c == nil {
		return query.Shape(books, nil, req), nil
	}
	if err := c.Validate(); err != nil {
		return query.Result{}, err
	}
	return query.Shape(books, predicate(scope, *c), req), nil
}

// Genres lists the distinct genres of the scope in first-seen order.
func (s *Service) Genres(ctx context.Context, scope Scope) ([]string, error) {
	books, err := s.All(ctx, scope)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	genres := []string{}
	for _, b := range books {
		for _, g := range b.Genres {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		}
	}
	return genres, nil
}

// Count returns the number of books in scope.
func (s *Service) Count(ctx context.Context, scope Scope) (int, error) {
	books, err := s.All(ctx, scope)
	if err != nil {
		return 0, err
	}
	return len(books), nil
}

// CountAvailable returns the number of books whose availability equals available.
func (s *Service) CountAvailable(ctx context.Context, available bool) (int, error) {
	books, err := s.ByAvailability(ctx, available)
	if err != nil {
		return 0, err
	}
	return len(books), nil
}

// CountGenre returns the number of books in scope carrying exactly genre.
func (s *Service) CountGenre(ctx context.Context, scope Scope, genre string) (int, error) {
	books, err := s.All(ctx, scope)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range books {
		if b.HasGenre(genre) {
			n++
		}
	}
	return n, nil
}

// Add normalises the new book and stores it under a fresh identity.
func (s *Service) Add(ctx context.Context, in NewBook) (entity.Book, error) {
	b := entity.Book{
		Title:       in.Title,
		Author:      in.Author,
		Description: in.Description,
		Language:    in.Language,
		Genres:      in.Genres,
		Link:        s.normalizeLink(in.Link),
		IsAvailable: in.IsAvailable,
		Price:       in.Price,
	}
	if len(b.Genres) == 0 {
		b.Genres = entity.DefaultGenres()
	}
	if b.Price <= 0 {
		b.Price = 0
	}

	if err := s.repo.Add(ctx, &b); err != nil {
		return entity.Book{}, fmt.Errorf("add book: %w", err)
	}
	return b, nil
}

// Update merges changes into the stored book and replaces it.
func (s *Service) Update(ctx context.Context, id string, ch Changes) (entity.Book, error) {
	if !ValidID(id) {
		return entity.Book{}, ErrInvalidID
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return entity.Book{}, err
	}

	merged := Merge(existing, ch)
	if ch.Link != nil {
		merged.Link = s.normalizeLink(*ch.Link)
	}
	if err := s.repo.Replace(ctx, merged); err != nil {
		return entity.Book{}, err
	}
	return merged, nil
}

// Delete removes a book that exists.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Merge overlays the set fields of ch onto existing. Empty strings, an empty
// genre list and a price that is not positive count as unset. A stored book
// without genres gets the sentinel list. The link is copied as given, even
// when empty; callers normalise it.
func Merge(existing entity.Book, ch Changes) entity.Book {
	out := existing
	setString(&out.Title, ch.Title)
	setString(&out.Author, ch.Author)
	setString(&out.Description, ch.Description)
	setString(&out.Language, ch.Language)
	switch {
	case len(ch.Genres) > 0:
		out.Genres = ch.Genres
	case len(out.Genres) == 0:
		out.Genres = entity.DefaultGenres()
	}
	if ch.Link != nil {
		out.Link = *ch.Link
	}
	if ch.IsAvailable != nil {
		out.IsAvailable = *ch.IsAvailable
	}
	if ch.Price != nil && *ch.Price > 0 {
		out.Price = *ch.Price
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func (s *Service) normalizeLink(link string) string {
	if link == "" || s.validate.Var(link, "url") != nil {
		return entity.BlankLink
	}
	return link
}

// predicate drops the availability rule where scope already fixed it.
func predicate(scope Scope, c query.Criteria) query.Predicate {
	if scope == ScopeAvailable {
		return query.BuildPredicateNoAvailability(c)
	}
	return query.BuildPredicate(c)
}

func restrict(books []entity.Book, scope Scope) []entity.Book {
	if scope != ScopeAvailable {
		return books
	}
	return keep(books, func(b entity.Book) bool { return b.IsAvailable })
}

func keep(books []entity.Book, pred func(entity.Book) bool) []entity.Book {
	out := make([]entity.Book, 0, len(books))
	for _, b := range books {
		if pred(b) {
			out = append(out, b)
		}
	}
	return out
}
