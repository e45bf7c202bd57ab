package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	p := FromRequest(httptest.NewRequest("GET", "/api/product", nil))

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_ExplicitParams(t *testing.T) {
	p := FromRequest(httptest.NewRequest("GET", "/api/product?page=3&per_page=50", nil))

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PerPage)
	assert.Equal(t, 100, p.Offset)
}

func TestFromRequest_InvalidValuesIgnored(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric", "?page=abc&per_page=xyz"},
		{"zero", "?page=0&per_page=0"},
		{"negative", "?page=-1&per_page=-5"},
		{"per_page over cap", "?per_page=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromRequest(httptest.NewRequest("GET", "/api/product"+tt.query, nil))
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 20, p.PerPage)
		})
	}
}

func TestNewResult(t *testing.T) {
	params := Params{Page: 2, PerPage: 10, Offset: 10}
	res := NewResult([]string{"a", "b"}, 25, params)

	assert.Equal(t, 25, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestNewResult_NilDataBecomesEmptySlice(t *testing.T) {
	res := NewResult[string](nil, 0, Params{Page: 1, PerPage: 10})

	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Zero(t, res.TotalPages)
	assert.False(t, res.HasNext)
	assert.False(t, res.HasPrev)
}
