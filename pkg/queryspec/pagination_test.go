package queryspec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitechdev/QuerySpec/pkg/config"
)

func TestResolveCurrentPage(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		want  int
	}{
		{name: "missing", input: nil, want: 1},
		{name: "string", input: map[string]interface{}{"page": "4"}, want: 4},
		{name: "int", input: map[string]interface{}{"page": 2}, want: 2},
		{name: "not numeric", input: map[string]interface{}{"page": "abc"}, want: 1},
		{name: "zero", input: map[string]interface{}{"page": "0"}, want: 1},
		{name: "negative", input: map[string]interface{}{"page": -3}, want: 1},
		{name: "other key", input: map[string]interface{}{"p": "5"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginationSpec(config.Defaults())
			assert.Equal(t, tt.want, p.ResolveCurrentPage(tt.input))
		})
	}
}

func TestResolveCurrentPageClampsOverflow(t *testing.T) {
	p := NewPaginationSpec(config.Defaults()).SetPerPage(12)

	page := p.ResolveCurrentPage(map[string]interface{}{"page": "768614336404564651"})
	assert.Equal(t, math.MaxInt/12, page)
	assert.GreaterOrEqual(t, (page-1)*p.PerPage(), 0)

	p.SetCurrentPage(math.MaxInt)
	page = p.ResolveCurrentPage(nil)
	assert.Equal(t, math.MaxInt/12, page)
	assert.GreaterOrEqual(t, (page-1)*p.PerPage()+p.PerPage(), 0)
}

func TestPaginationSpec_PinnedPage(t *testing.T) {
	p := NewPaginationSpec(config.Defaults())
	input := map[string]interface{}{"page": "4"}

	p.SetCurrentPage(2)
	assert.Equal(t, 2, p.ResolveCurrentPage(input))

	p.SetCurrentPage(-1)
	assert.Equal(t, 1, p.ResolveCurrentPage(input))

	p.ClearCurrentPage()
	assert.Equal(t, 4, p.ResolveCurrentPage(input))
}

func TestPaginationSpec_Settings(t *testing.T) {
	p := NewPaginationSpec(config.Config{})
	assert.Equal(t, 15, p.PerPage())
	assert.Equal(t, "page", p.PageName())
	assert.False(t, p.Enabled())

	p.SetPerPage(0).SetPerPage(-5)
	assert.Equal(t, 15, p.PerPage())
	p.SetPerPage(30).SetPageName("").SetPerPageOptions(5, 10)
	assert.Equal(t, 30, p.PerPage())
	assert.Equal(t, "page", p.PageName())
	assert.Equal(t, []int{5, 10}, p.PerPageOptions())

	c := p.clone()
	c.SetPerPage(3).SetPerPageOptions(1)
	assert.Equal(t, 30, p.PerPage())
	assert.Equal(t, []int{5, 10}, p.PerPageOptions())
}

func TestPage(t *testing.T) {
	page := &Page{Total: 23, PerPage: 10, CurrentPage: 2, LastPage: 3, From: 11, To: 20}
	assert.True(t, page.HasMorePages())

	meta := page.Metadata(10)
	assert.Equal(t, int64(23), meta.Total)
	assert.Equal(t, int64(10), meta.Count)
	assert.Equal(t, 10, meta.Offset)
	assert.Equal(t, 3, meta.LastPage)
	assert.Equal(t, 11, meta.From)

	page.CurrentPage = 3
	assert.False(t, page.HasMorePages())
}
