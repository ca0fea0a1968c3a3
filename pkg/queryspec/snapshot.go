package queryspec

// Snapshot is a plain view of a pipeline's configuration for presentation
// layers.
type Snapshot struct {
	Filters              []string               `json:"filters"`
	ActiveFilters        []string               `json:"active_filters"`
	FilterValues         map[string]interface{} `json:"filter_values"`
	SearchTerm           *string                `json:"search_term"`
	SearchColumns        []string               `json:"search_columns"`
	SortableColumns      []string               `json:"sortable_columns"`
	CurrentSortColumn    *string                `json:"current_sort_column"`
	CurrentSortDirection Direction              `json:"current_sort_direction"`
	PerPage              int                    `json:"per_page"`
	PaginationEnabled    bool                   `json:"pagination_enabled"`
}

// Snapshot captures the current configuration.
func (p *Pipeline) Snapshot() Snapshot {
	s := Snapshot{
		Filters:              make([]string, 0, len(p.filters)),
		ActiveFilters:        make([]string, 0),
		FilterValues:         p.FilterValues(),
		SearchColumns:        p.search.Columns(),
		SortableColumns:      append([]string{}, p.sortableOrder...),
		CurrentSortDirection: p.CurrentSortDirection(),
		PerPage:              p.pagination.PerPage(),
		PaginationEnabled:    p.pagination.Enabled(),
	}
	for _, f := range p.filters {
		s.Filters = append(s.Filters, f.Name())
		if f.IsActive() {
			s.ActiveFilters = append(s.ActiveFilters, f.Name())
		}
	}
	if term, ok := p.search.Term(); ok {
		s.SearchTerm = &term
	}
	if s.SearchColumns == nil {
		s.SearchColumns = []string{}
	}
	if sort, ok := p.CurrentSort(); ok {
		column := sort.Column
		s.CurrentSortColumn = &column
	}
	return s
}

// ToMap returns the snapshot as a map keyed like its JSON form.
func (s Snapshot) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"filters":                s.Filters,
		"active_filters":         s.ActiveFilters,
		"filter_values":          s.FilterValues,
		"search_term":            nil,
		"search_columns":         s.SearchColumns,
		"sortable_columns":       s.SortableColumns,
		"current_sort_column":    nil,
		"current_sort_direction": string(s.CurrentSortDirection),
		"per_page":               s.PerPage,
		"pagination_enabled":     s.PaginationEnabled,
	}
	if s.SearchTerm != nil {
		m["search_term"] = *s.SearchTerm
	}
	if s.CurrentSortColumn != nil {
		m["current_sort_column"] = *s.CurrentSortColumn
	}
	return m
}
