package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveSize(t *testing.T) {
	t.Run("inside bounds kept", func(t *testing.T) {
		for size := MinPerPage + 1; size < MaxPerPage; size++ {
			assert.Equal(t, size, EffectiveSize(size))
		}
	})

	t.Run("bounds map to floor", func(t *testing.T) {
		assert.Equal(t, MinPerPage, EffectiveSize(MinPerPage))
		assert.Equal(t, MinPerPage, EffectiveSize(MaxPerPage))
	})

	t.Run("outside range", func(t *testing.T) {
		assert.Equal(t, MinPerPage, EffectiveSize(0))
		assert.Equal(t, MinPerPage, EffectiveSize(-3))
		assert.Equal(t, MaxPerPage, EffectiveSize(21))
		assert.Equal(t, MaxPerPage, EffectiveSize(1000))
	})

	t.Run("default request", func(t *testing.T) {
		req := DefaultPageRequest()
		assert.Equal(t, MaxPerPage, req.PerPage)
		assert.Equal(t, MinPerPage, EffectiveSize(req.PerPage))
	})
}

func TestComputePage(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		total    int
		expected Page
	}{
		{"empty total", 1, 5, 0, Page{Size: 5, Skip: 0, TotalPages: 0}},
		{"negative total", 3, 7, -4, Page{Size: 7, Skip: 0, TotalPages: 0}},
		{"first page", 1, 6, 13, Page{Size: 6, Skip: 0, TotalPages: 3}},
		{"second page", 2, 5, 12, Page{Size: 5, Skip: 5, TotalPages: 3}},
		{"partial last page", 3, 5, 12, Page{Size: 5, Skip: 10, TotalPages: 3}},
		{"past the end", 9, 5, 12, Page{Size: 5, Skip: 10, TotalPages: 3}},
		{"zero page clamped", 0, 5, 12, Page{Size: 5, Skip: 0, TotalPages: 3}},
		{"negative page clamped", -2, 10, 12, Page{Size: 10, Skip: 0, TotalPages: 2}},
		{"huge page", math.MaxInt, 10, 35, Page{Size: 10, Skip: 30, TotalPages: 4}},
		{"exact multiple", 2, 6, 12, Page{Size: 6, Skip: 6, TotalPages: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputePage(tt.page, tt.size, tt.total))
		})
	}
}
