package entity

const (
	// IDLength is the length of a store-assigned book identity.
	IDLength = 24

	// BlankLink replaces links that are missing or not absolute URIs.
	BlankLink = "about:blank"

	// UnspecifiedGenre is the single genre of a book added without genres.
	UnspecifiedGenre = "unspecified"
)

// Book is a record of the working collection.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Genres      []string `json:"genres"`
	Link        string   `json:"link"`
	IsAvailable bool     `json:"is_available"`
	Price       float64  `json:"price"`
}

// DefaultGenres returns a fresh sentinel genre list.
func DefaultGenres() []string {
	return []string{UnspecifiedGenre}
}

// HasGenre reports whether genre is one of the book's genres, compared exactly.
func (b Book) HasGenre(genre string) bool {
	for _, g := range b.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
