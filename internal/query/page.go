package query

const (
	MinPerPage = 5
	MaxPerPage = 20
	MinPage    = 1

	// DefaultPerPage is the page size used when a request does not name one.
	DefaultPerPage = MaxPerPage
)

// Order is the price sort direction of a page.
type Order int

const (
	Ascending Order = iota
	Descending
)

// PageRequest describes one requested page of a result set.
type PageRequest struct {
	CurrentPage int
	PerPage     int
	Order       Order
}

// DefaultPageRequest returns the first page in ascending price order.
func DefaultPageRequest() PageRequest {
	return PageRequest{CurrentPage: MinPage, PerPage: DefaultPerPage, Order: Ascending}
}

// Page is the normalized window computed for a result set.
type Page struct {
	Size       int
	Skip       int
	TotalPages int
}

// EffectiveSize maps a requested page size onto [MinPerPage, MaxPerPage].
// Only sizes strictly inside the bounds are kept; anything above the ceiling
// becomes MaxPerPage and everything else, the bounds themselves included,
// becomes MinPerPage.
func EffectiveSize(requested int) int {
	switch {
	case requested > MinPerPage && requested < MaxPerPage:
		return requested
	case requested > MaxPerPage:
		return MaxPerPage
	default:
		return MinPerPage
	}
}

// ComputePage converts a page index, a requested size and the number of
// available items into a page window. It never fails: a page past the end
// (or an overflowing offset) is redirected to the last page.
func ComputePage(currentPage, requestedSize, totalCount int) Page {
	size := EffectiveSize(requestedSize)
	if currentPage < MinPage {
		currentPage = MinPage
	}
	if totalCount <= 0 {
		return Page{Size: size}
	}

	totalPages := (totalCount + size - 1) / size
	// Compared in pages rather than items so huge page numbers cannot overflow.
	if currentPage > totalPages {
		currentPage = totalPages
	}
	return Page{Size: size, Skip: (currentPage - MinPage) * size, TotalPages: totalPages}
}
