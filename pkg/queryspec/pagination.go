package queryspec

import (
	"context"
	"math"

	"github.com/spf13/cast"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/config"
	"github.com/bitechdev/QuerySpec/pkg/reflection"
)

// PaginationSpec holds page size, page selection and the page-size catalog.
type PaginationSpec struct {
	perPage        int
	pageName       string
	currentPage    *int
	perPageOptions []int
	enabled        bool
}

// NewPaginationSpec returns a spec seeded from cfg.
func NewPaginationSpec(cfg config.Config) *PaginationSpec {
	p := &PaginationSpec{
		perPage:        cfg.PerPage,
		pageName:       cfg.Pagination.PageName,
		perPageOptions: append([]int(nil), cfg.PerPageOptions...),
		enabled:        cfg.Pagination.Enabled,
	}
	if p.perPage <= 0 {
		p.perPage = config.Defaults().PerPage
	}
	if p.pageName == "" {
		p.pageName = "page"
	}
	return p
}

// SetPerPage ignores non-positive sizes.
func (p *PaginationSpec) SetPerPage(n int) *PaginationSpec {
	if n > 0 {
		p.perPage = n
	}
	return p
}

func (p *PaginationSpec) PerPage() int {
	return p.perPage
}

func (p *PaginationSpec) SetPageName(name string) *PaginationSpec {
	if name != "" {
		p.pageName = name
	}
	return p
}

func (p *PaginationSpec) PageName() string {
	return p.pageName
}

// SetCurrentPage pins the page, overriding raw input.
func (p *PaginationSpec) SetCurrentPage(page int) *PaginationSpec {
	p.currentPage = &page
	return p
}

// ClearCurrentPage returns page selection to raw input.
func (p *PaginationSpec) ClearCurrentPage() *PaginationSpec {
	p.currentPage = nil
	return p
}

func (p *PaginationSpec) SetPerPageOptions(options ...int) *PaginationSpec {
	p.perPageOptions = append([]int(nil), options...)
	return p
}

func (p *PaginationSpec) PerPageOptions() []int {
	return append([]int(nil), p.perPageOptions...)
}

func (p *PaginationSpec) SetEnabled(enabled bool) *PaginationSpec {
	p.enabled = enabled
	return p
}

func (p *PaginationSpec) Enabled() bool {
	return p.enabled
}

// ResolveCurrentPage returns the pinned page, else the page read from input
// under PageName. Missing, non-numeric and non-positive pages resolve to 1.
// Pages whose offset would overflow an int are clamped to the last
// addressable page.
func (p *PaginationSpec) ResolveCurrentPage(input map[string]interface{}) int {
	page := 1
	if p.currentPage != nil {
		page = *p.currentPage
	} else if raw, ok := input[p.pageName]; ok {
		if n, err := cast.ToIntE(raw); err == nil {
			page = n
		}
	}
	if page < 1 {
		return 1
	}
	if maxPage := math.MaxInt / p.perPage; page > maxPage {
		return maxPage
	}
	return page
}

// Page describes one page of results. The rows themselves are scanned into
// the destination passed to Paginate.
type Page struct {
	Total          int    `json:"total"`
	PerPage        int    `json:"per_page"`
	CurrentPage    int    `json:"current_page"`
	LastPage       int    `json:"last_page"`
	From           int    `json:"from"`
	To             int    `json:"to"`
	PageName       string `json:"page_name"`
	PerPageOptions []int  `json:"per_page_options"`
}

// HasMorePages reports whether a later page exists.
func (p *Page) HasMorePages() bool {
	return p.CurrentPage < p.LastPage
}

// Metadata converts the page for a common.Response.
func (p *Page) Metadata(count int) *common.Metadata {
	return &common.Metadata{
		Total:       int64(p.Total),
		Count:       int64(count),
		Limit:       p.PerPage,
		Offset:      (p.CurrentPage - 1) * p.PerPage,
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		PerPage:     p.PerPage,
		From:        p.From,
		To:          p.To,
	}
}

// Apply counts q, then scans the selected page into dest. With pagination
// disabled every row is scanned and reported as a single page.
func (p *PaginationSpec) Apply(ctx context.Context, q common.SelectQuery, dest interface{}, input map[string]interface{}) (*Page, error) {
	if !p.enabled {
		if err := q.Scan(ctx, dest); err != nil {
			return nil, err
		}
		n := reflection.Len(dest)
		page := &Page{Total: n, PerPage: n, CurrentPage: 1, LastPage: 1, PageName: p.pageName, PerPageOptions: p.PerPageOptions()}
		if n > 0 {
			page.From, page.To = 1, n
		}
		return page, nil
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}

	current := p.ResolveCurrentPage(input)
	offset := (current - 1) * p.perPage
	if err := q.Clone().Limit(p.perPage).Offset(offset).Scan(ctx, dest); err != nil {
		return nil, err
	}

	lastPage := (total + p.perPage - 1) / p.perPage
	if lastPage < 1 {
		lastPage = 1
	}

	page := &Page{
		Total:          total,
		PerPage:        p.perPage,
		CurrentPage:    current,
		LastPage:       lastPage,
		PageName:       p.pageName,
		PerPageOptions: p.PerPageOptions(),
	}
	if n := reflection.Len(dest); n > 0 {
		page.From = offset + 1
		page.To = offset + n
	}
	return page, nil
}

func (p *PaginationSpec) clone() *PaginationSpec {
	c := *p
	c.perPageOptions = append([]int(nil), p.perPageOptions...)
	if p.currentPage != nil {
		page := *p.currentPage
		c.currentPage = &page
	}
	return &c
}
