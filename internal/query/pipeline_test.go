package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booksstock/internal/entity"
)

func pricedBooks(n int) []entity.Book {
	books := make([]entity.Book, 0, n)
	// Reverse order so sorting is observable.
	for i := n; i >= 1; i-- {
		books = append(books, entity.Book{
			ID:          fmt.Sprintf("%024d", i),
			Title:       fmt.Sprintf("Book %d", i),
			IsAvailable: i%2 == 0,
			Price:       float64(i),
		})
	}
	return books
}

func prices(books []entity.Book) []float64 {
	out := make([]float64, len(books))
	for i, b := range books {
		out[i] = b.Price
	}
	return out
}

func TestPaginate(t *testing.T) {
	books := pricedBooks(12)

	t.Run("second page ascending", func(t *testing.T) {
		got, err := Paginate(books, nil, PageRequest{CurrentPage: 2, PerPage: 5})
		require.NoError(t, err)
		assert.Equal(t, []float64{6, 7, 8, 9, 10}, prices(got))
	})

	t.Run("first page descending", func(t *testing.T) {
		got, err := Paginate(books, nil, PageRequest{CurrentPage: 1, PerPage: 6, Order: Descending})
		require.NoError(t, err)
		assert.Equal(t, []float64{12, 11, 10, 9, 8, 7}, prices(got))
	})

	t.Run("past the end returns last page", func(t *testing.T) {
		got, err := Paginate(books, nil, PageRequest{CurrentPage: 40, PerPage: 5})
		require.NoError(t, err)
		assert.Equal(t, []float64{11, 12}, prices(got))
	})

	t.Run("filter runs before paging", func(t *testing.T) {
		c := &Criteria{Available: boolPtr(true)}
		got, err := Paginate(books, c, PageRequest{CurrentPage: 2, PerPage: 5})
		require.NoError(t, err)
		assert.Equal(t, []float64{12}, prices(got))
	})

	t.Run("no match is empty not nil", func(t *testing.T) {
		got, err := Paginate(books, &Criteria{Title: "missing"}, DefaultPageRequest())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := Paginate(nil, nil, DefaultPageRequest())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("invalid criteria is an error", func(t *testing.T) {
		got, err := Paginate(books, &Criteria{MinPrice: floatPtr(-5)}, DefaultPageRequest())
		assert.ErrorIs(t, err, ErrInvalidCriteria)
		assert.Nil(t, got)
	})

	t.Run("input is not reordered", func(t *testing.T) {
		_, err := Paginate(books, nil, DefaultPageRequest())
		require.NoError(t, err)
		assert.Equal(t, float64(12), books[0].Price)
	})
}

func TestSortByPrice_TiesByID(t *testing.T) {
	books := []entity.Book{{ID: "b", Price: 1}, {ID: "a", Price: 1}, {ID: "c", Price: 0}}
	SortByPrice(books, Ascending)
	assert.Equal(t, "c", books[0].ID)
	assert.Equal(t, "a", books[1].ID)
	assert.Equal(t, "b", books[2].ID)
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, Descending, ParseOrder("desc"))
	assert.Equal(t, Ascending, ParseOrder("asc"))
	assert.Equal(t, Ascending, ParseOrder(""))
}

func TestShape(t *testing.T) {
	books := pricedBooks(12)
	pred := BuildPredicate(Criteria{Available: boolPtr(true)})

	res := Shape(books, pred, PageRequest{CurrentPage: 1, PerPage: 5, Order: Descending})

	assert.Equal(t, 6, res.Total)
	assert.Equal(t, Page{Size: 5, Skip: 0, TotalPages: 2}, res.Page)
	assert.Equal(t, []float64{12, 10, 8, 6, 4}, prices(res.Items))
}
