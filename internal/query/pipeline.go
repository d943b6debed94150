package query

import (
	"sort"

	"booksstock/internal/entity"
)

// Paginate shapes a raw result set into one page: filter, sort by price,
// compute the window on the post-filter count and slice it.
//
// A nil filter keeps every record. The returned slice is never nil; an empty
// slice means nothing matched, while an error means the request itself was
// unusable.
func Paginate(records []entity.Book, filter *Criteria, req PageRequest) ([]entity.Book, error) {
	pred := Predicate(nil)
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
		pred = BuildPredicate(*filter)
	}
	return Shape(records, pred, req).Items, nil
}

// Result is one shaped page together with the window that produced it.
type Result struct {
	Items []entity.Book
	Page  Page
	// Total counts the records that passed the predicate.
	Total int
}

// Shape is Paginate with a caller-built predicate; a nil predicate keeps
// every record.
func Shape(records []entity.Book, pred Predicate, req PageRequest) Result {
	matched := make([]entity.Book, 0, len(records))
	for _, b := range records {
		if pred == nil || pred(b) {
			matched = append(matched, b)
		}
	}

	SortByPrice(matched, req.Order)

	page := ComputePage(req.CurrentPage, req.PerPage, len(matched))
	res := Result{Items: matched, Page: page, Total: len(matched)}
	if len(matched) == 0 {
		return res
	}
	end := page.Skip + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	res.Items = matched[page.Skip:end]
	return res
}

// SortByPrice orders books by price in place. Ties keep a stable order by id.
func SortByPrice(books []entity.Book, order Order) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		if a.Price == b.Price {
			return a.ID < b.ID
		}
		if order == Descending {
			return a.Price > b.Price
		}
		return a.Price < b.Price
	})
}

// ParseOrder maps "desc" to Descending and anything else to Ascending.
func ParseOrder(s string) Order {
	if s == "desc" || s == "DESC" {
		return Descending
	}
	return Ascending
}
