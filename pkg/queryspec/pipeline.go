package queryspec

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/config"
	"github.com/bitechdev/QuerySpec/pkg/logger"
	"github.com/bitechdev/QuerySpec/pkg/modelregistry"
	"github.com/bitechdev/QuerySpec/pkg/reflection"
)

// ScopeFunc is a reusable query constraint applied through Pipeline.Scope.
type ScopeFunc func(q common.SelectQuery, args ...interface{}) common.SelectQuery

// Pipeline composes search, filters, sorting and pagination onto a base query.
//
// A Pipeline is a builder owned by one request; it is not safe for concurrent
// use. Configure a template once and Clone it per request.
type Pipeline struct {
	cfg config.Config

	base     common.SelectQuery
	composed common.SelectQuery
	applied  bool
	err      error

	filters       []Filter
	filterIndex   map[string]int
	filterValues  map[string]interface{}
	preserveEmpty bool

	search *SearchSpec

	sortable      map[string]bool
	sortableOrder []string
	defaultSort   *Sort
	currentSort   *Sort

	pagination *PaginationSpec
	input      map[string]interface{}
}

// New returns a pipeline with the built-in defaults.
func New() *Pipeline {
	return NewWithConfig(config.Defaults())
}

// NewWithConfig returns a pipeline seeded from cfg.
func NewWithConfig(cfg config.Config) *Pipeline {
	return &Pipeline{
		cfg:           cfg,
		filterIndex:   make(map[string]int),
		filterValues:  make(map[string]interface{}),
		preserveEmpty: cfg.Filters.PreserveEmpty,
		search:        NewSearchSpec(cfg.Search),
		sortable:      make(map[string]bool),
		pagination:    NewPaginationSpec(cfg),
		input:         make(map[string]interface{}),
	}
}

// For builds a pipeline over a fresh select of model.
func For(db common.Database, model interface{}) *Pipeline {
	return New().SetQuery(db.NewSelect().Model(model))
}

// ForEntity resolves name through registry and builds a pipeline over it.
func ForEntity(db common.Database, registry modelregistry.ModelRegistry, name string) (*Pipeline, error) {
	model, err := registry.GetModel(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entity %s: %w", name, err)
	}
	return For(db, reflection.NewModel(model)), nil
}

// SetQuery replaces the base query and discards any composed result.
// Search, filter, sort and pagination settings are kept.
func (p *Pipeline) SetQuery(q common.SelectQuery) *Pipeline {
	p.base = q
	p.composed = nil
	p.applied = false
	p.err = nil
	return p
}

// Reset discards the composed query so configuration changes made after Apply
// take effect on the next Apply.
func (p *Pipeline) Reset() *Pipeline {
	return p.SetQuery(p.base)
}

// Query returns the base query.
func (p *Pipeline) Query() (common.SelectQuery, error) {
	if p.base == nil {
		return nil, p.wrap("query", ErrNoQueryConfigured)
	}
	return p.base, nil
}

// IsApplied reports whether the current composition pass has run.
func (p *Pipeline) IsApplied() bool {
	return p.applied
}

// mutate runs fn on the base query and, once applied, on the composed query
// too, so direct query constraints behave the same before and after Apply.
func (p *Pipeline) mutate(op string, fn func(common.SelectQuery) common.SelectQuery) *Pipeline {
	if p.base == nil {
		if p.err == nil {
			p.err = p.wrap(op, ErrNoQueryConfigured)
		}
		return p
	}
	p.base = fn(p.base)
	if p.applied {
		p.composed = fn(p.composed)
	}
	return p
}

// Tap passes the base query to fn.
func (p *Pipeline) Tap(fn func(q common.SelectQuery)) *Pipeline {
	return p.mutate("tap", func(q common.SelectQuery) common.SelectQuery {
		fn(q)
		return q
	})
}

// Where adds a raw predicate to the base query.
func (p *Pipeline) Where(query string, args ...interface{}) *Pipeline {
	return p.mutate("where", func(q common.SelectQuery) common.SelectQuery {
		return q.Where(query, args...)
	})
}

// Scope applies a named constraint function with arguments.
func (p *Pipeline) Scope(scope ScopeFunc, args ...interface{}) *Pipeline {
	return p.mutate("scope", func(q common.SelectQuery) common.SelectQuery {
		return scope(q, args...)
	})
}

// Preload eager loads relations by their Go field names.
func (p *Pipeline) Preload(relations ...string) *Pipeline {
	return p.mutate("preload", func(q common.SelectQuery) common.SelectQuery {
		for _, relation := range relations {
			q = q.Preload(relation)
		}
		return q
	})
}

// When runs fn if condition holds.
func (p *Pipeline) When(condition bool, fn func(p *Pipeline)) *Pipeline {
	if condition {
		fn(p)
	}
	return p
}

// Unless runs fn if condition does not hold.
func (p *Pipeline) Unless(condition bool, fn func(p *Pipeline)) *Pipeline {
	return p.When(!condition, fn)
}

// Search

// Searchable sets the columns the search term is matched against. Dotted
// relation.column references search the related entity.
func (p *Pipeline) Searchable(columns ...string) *Pipeline {
	p.search.SetColumns(columns...)
	return p
}

func (p *Pipeline) Search(term string) *Pipeline {
	p.search.SetTerm(term)
	return p
}

func (p *Pipeline) ClearSearch() *Pipeline {
	p.search.ClearTerm()
	return p
}

func (p *Pipeline) SearchCaseSensitive(caseSensitive bool) *Pipeline {
	p.search.SetCaseSensitive(caseSensitive)
	return p
}

func (p *Pipeline) SearchMinLength(n int) *Pipeline {
	p.search.SetMinLength(n)
	return p
}

func (p *Pipeline) SearchInputName(name string) *Pipeline {
	p.search.SetInputName(name)
	return p
}

// SearchSpec exposes the search settings.
func (p *Pipeline) SearchSpec() *SearchSpec {
	return p.search
}

// Filters

// Filter registers f. A filter with the same name is replaced in place.
func (p *Pipeline) Filter(f Filter) *Pipeline {
	if ep, ok := f.(emptyPolicy); ok {
		ep.preserveEmptyDefault(p.preserveEmpty)
	}
	if idx, ok := p.filterIndex[f.Name()]; ok {
		p.filters[idx] = f
		return p
	}
	p.filterIndex[f.Name()] = len(p.filters)
	p.filters = append(p.filters, f)
	return p
}

func (p *Pipeline) Filters(filters ...Filter) *Pipeline {
	for _, f := range filters {
		p.Filter(f)
	}
	return p
}

// GetFilter returns the registered filter called name.
func (p *Pipeline) GetFilter(name string) (Filter, bool) {
	idx, ok := p.filterIndex[name]
	if !ok {
		return nil, false
	}
	return p.filters[idx], true
}

// GetFilters returns the filters in registration order.
func (p *Pipeline) GetFilters() []Filter {
	return append([]Filter(nil), p.filters...)
}

// ActiveFilters returns the filters that will apply, in registration order.
func (p *Pipeline) ActiveFilters() []Filter {
	var active []Filter
	for _, f := range p.filters {
		if f.IsActive() {
			active = append(active, f)
		}
	}
	return active
}

func (p *Pipeline) HasActiveFilters() bool {
	return len(p.ActiveFilters()) > 0
}

// SetFilterValues records values and hands each key that names a registered
// filter to that filter. Other keys are ignored.
func (p *Pipeline) SetFilterValues(values map[string]interface{}) *Pipeline {
	p.filterValues = make(map[string]interface{}, len(values))
	for name, value := range values {
		p.filterValues[name] = value
		if idx, ok := p.filterIndex[name]; ok {
			p.filters[idx].SetValue(value)
		}
	}
	return p
}

// FilterValues returns the last snapshot given to SetFilterValues.
func (p *Pipeline) FilterValues() map[string]interface{} {
	values := make(map[string]interface{}, len(p.filterValues))
	for k, v := range p.filterValues {
		values[k] = v
	}
	return values
}

// ClearFilters empties every filter value.
func (p *Pipeline) ClearFilters() *Pipeline {
	p.filterValues = make(map[string]interface{})
	for _, f := range p.filters {
		f.SetValue(nil)
	}
	return p
}

// Sorting

// Sortable marks columns as sortable.
func (p *Pipeline) Sortable(columns ...string) *Pipeline {
	for _, column := range columns {
		p.setSortable(column, true)
	}
	return p
}

// SortableColumns sets sortability per column; false entries are recorded but
// refuse sorting.
func (p *Pipeline) SortableColumns(columns map[string]bool) *Pipeline {
	for column, ok := range columns {
		p.setSortable(column, ok)
	}
	return p
}

func (p *Pipeline) setSortable(column string, ok bool) {
	if _, field, _ := common.SplitRelationColumn(column); ok && common.IsSQLKeyword(field) {
		logger.Warn("Refusing sort on SQL keyword column %q", column)
		ok = false
	}
	if _, exists := p.sortable[column]; !exists {
		p.sortableOrder = append(p.sortableOrder, column)
	}
	p.sortable[column] = ok
}

func (p *Pipeline) IsSortable(column string) bool {
	return p.sortable[column]
}

// DefaultSort is used while no sort has been requested.
func (p *Pipeline) DefaultSort(column, direction string) *Pipeline {
	s := NewSort(column, direction)
	p.defaultSort = &s
	return p
}

// Sort requests an ordering. Columns that are not sortable are ignored and
// the previous sort stays in effect.
func (p *Pipeline) Sort(column, direction string) *Pipeline {
	if column == "" || !p.IsSortable(column) {
		logger.Debug("Ignoring sort on non-sortable column %q", column)
		return p
	}
	if strings.TrimSpace(direction) == "" {
		direction = p.cfg.Sort.DefaultDirection
	}
	s := NewSort(column, direction)
	p.currentSort = &s
	return p
}

// CurrentSort returns the requested sort, else the default sort.
func (p *Pipeline) CurrentSort() (Sort, bool) {
	if p.currentSort != nil {
		return *p.currentSort, true
	}
	if p.defaultSort != nil {
		return *p.defaultSort, true
	}
	return Sort{}, false
}

// CurrentSortDirection falls back to asc when nothing is sorted.
func (p *Pipeline) CurrentSortDirection() Direction {
	if s, ok := p.CurrentSort(); ok {
		return s.Direction
	}
	return DirectionAsc
}

func (p *Pipeline) IsSorted(column string) bool {
	s, ok := p.CurrentSort()
	return ok && s.Column == column
}

func (p *Pipeline) IsSortedAsc(column string) bool {
	return p.IsSorted(column) && p.CurrentSortDirection() == DirectionAsc
}

func (p *Pipeline) IsSortedDesc(column string) bool {
	return p.IsSorted(column) && p.CurrentSortDirection() == DirectionDesc
}

// NextDirection is the direction a sort toggle on column should request:
// desc when column is currently sorted asc, otherwise asc.
func (p *Pipeline) NextDirection(column string) Direction {
	if p.IsSortedAsc(column) {
		return DirectionDesc
	}
	return DirectionAsc
}

// SortParams returns the raw input keys that toggle sorting on column.
func (p *Pipeline) SortParams(column string) map[string]string {
	return map[string]string{
		p.cfg.Sort.ColumnParam:    column,
		p.cfg.Sort.DirectionParam: string(p.NextDirection(column)),
	}
}

// activeSort is the sort Apply uses; it must still be sortable.
func (p *Pipeline) activeSort() (Sort, bool) {
	s, ok := p.CurrentSort()
	if !ok || !p.IsSortable(s.Column) {
		return Sort{}, false
	}
	return s, true
}

// Pagination

func (p *Pipeline) PerPage(n int) *Pipeline {
	p.pagination.SetPerPage(n)
	return p
}

func (p *Pipeline) GetPerPage() int {
	return p.pagination.PerPage()
}

func (p *Pipeline) PageName(name string) *Pipeline {
	p.pagination.SetPageName(name)
	return p
}

func (p *Pipeline) CurrentPage(page int) *Pipeline {
	p.pagination.SetCurrentPage(page)
	return p
}

// GetCurrentPage resolves the page from the pinned value or the raw input.
func (p *Pipeline) GetCurrentPage() int {
	return p.pagination.ResolveCurrentPage(p.input)
}

func (p *Pipeline) PerPageOptions(options ...int) *Pipeline {
	p.pagination.SetPerPageOptions(options...)
	return p
}

func (p *Pipeline) EnablePagination(enabled bool) *Pipeline {
	p.pagination.SetEnabled(enabled)
	return p
}

func (p *Pipeline) WithoutPagination() *Pipeline {
	return p.EnablePagination(false)
}

// Pagination exposes the pagination settings.
func (p *Pipeline) Pagination() *PaginationSpec {
	return p.pagination
}

// FromRawInput maps request-like input onto the pipeline: the search input
// key sets the term, the sort and direction keys request a sort, the per-page
// key sets the page size and the page key is kept for page resolution. All
// other keys go to SetFilterValues.
func (p *Pipeline) FromRawInput(input map[string]interface{}) *Pipeline {
	searchKey := p.search.InputName()
	sortKey := p.cfg.Sort.ColumnParam
	directionKey := p.cfg.Sort.DirectionParam
	perPageKey := p.cfg.Pagination.PerPageParam
	pageKey := p.pagination.PageName()

	p.input = make(map[string]interface{}, len(input))
	for k, v := range input {
		p.input[k] = v
	}

	if term, ok := inputString(input, searchKey); ok {
		p.Search(term)
	}

	if column, ok := inputString(input, sortKey); ok && column != "" {
		direction, _ := inputString(input, directionKey)
		p.Sort(column, direction)
	}

	if raw, ok := input[perPageKey]; ok && raw != nil {
		if n, err := cast.ToIntE(raw); err == nil {
			p.PerPage(n)
		}
	}

	rest := make(map[string]interface{}, len(input))
	for k, v := range input {
		switch k {
		case searchKey, sortKey, directionKey, perPageKey, pageKey:
			continue
		}
		rest[k] = v
	}
	return p.SetFilterValues(rest)
}

// Apply folds search, active filters and the current sort onto a copy of the
// base query. The result is cached: later calls return it without composing
// again until SetQuery or Reset.
func (p *Pipeline) Apply() (common.SelectQuery, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.base == nil {
		return nil, p.wrap("apply", ErrNoQueryConfigured)
	}
	if p.applied {
		return p.composed, nil
	}

	q := p.base.Clone()

	q, err := p.search.Apply(q)
	if err != nil {
		return nil, p.wrap("apply", err)
	}
	if p.search.IsActive() {
		logger.Debug("Applied search %q on %v", *p.search.term, p.search.columns)
	}

	for _, f := range p.ActiveFilters() {
		q = f.Apply(q, f.Value())
		logger.Debug("Applied filter %s", f.Name())
	}

	if s, ok := p.activeSort(); ok {
		q, err = s.Apply(q)
		if err != nil {
			return nil, p.wrap("apply", err)
		}
		logger.Debug("Applied sort %s", s)
	}

	p.composed = q
	p.applied = true
	return q, nil
}

// Clone returns an independent pipeline with the same configuration over a
// copy of the base query. Filters implementing ClonableFilter are copied.
func (p *Pipeline) Clone() *Pipeline {
	c := &Pipeline{
		cfg:           p.cfg,
		err:           p.err,
		filterIndex:   make(map[string]int, len(p.filterIndex)),
		filterValues:  p.FilterValues(),
		preserveEmpty: p.preserveEmpty,
		search:        p.search.clone(),
		sortable:      make(map[string]bool, len(p.sortable)),
		sortableOrder: append([]string(nil), p.sortableOrder...),
		pagination:    p.pagination.clone(),
		input:         make(map[string]interface{}, len(p.input)),
	}
	if p.base != nil {
		c.base = p.base.Clone()
	}
	for _, f := range p.filters {
		if cf, ok := f.(ClonableFilter); ok {
			f = cf.Clone()
		}
		c.filterIndex[f.Name()] = len(c.filters)
		c.filters = append(c.filters, f)
	}
	for k, v := range p.sortable {
		c.sortable[k] = v
	}
	for k, v := range p.input {
		c.input[k] = v
	}
	if p.defaultSort != nil {
		s := *p.defaultSort
		c.defaultSort = &s
	}
	if p.currentSort != nil {
		s := *p.currentSort
		c.currentSort = &s
	}
	return c
}

// entity names the base table for error messages.
func (p *Pipeline) entity() string {
	if p.base == nil {
		return ""
	}
	return p.base.GetTableName()
}

// state summarises the configuration an operation ran with.
func (p *Pipeline) state() string {
	var parts []string
	if term, ok := p.search.Term(); ok {
		parts = append(parts, fmt.Sprintf("search=%q", term))
	}
	if active := p.ActiveFilters(); len(active) > 0 {
		names := make([]string, 0, len(active))
		for _, f := range active {
			names = append(names, f.Name())
		}
		parts = append(parts, "filters="+strings.Join(names, ","))
	}
	if s, ok := p.CurrentSort(); ok {
		parts = append(parts, "sort="+s.String())
	}
	return strings.Join(parts, " ")
}

func (p *Pipeline) wrap(op string, err error) error {
	return &PipelineError{Op: op, Entity: p.entity(), State: p.state(), Err: err}
}
