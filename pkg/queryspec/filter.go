package queryspec

import (
	"reflect"
	"strings"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/reflection"
)

// Filter is a named predicate with a value slot. Apply must not change the
// filter's own state.
type Filter interface {
	Name() string
	IsActive() bool
	Value() interface{}
	SetValue(value interface{})
	Apply(q common.SelectQuery, value interface{}) common.SelectQuery
}

// ClonableFilter is implemented by filters that can hand a cloned pipeline its
// own value slot. Filters without it are shared between clones.
type ClonableFilter interface {
	Filter
	Clone() Filter
}

// emptyPolicy is implemented by filters that honour the preserve_empty setting.
type emptyPolicy interface {
	preserveEmptyDefault(preserve bool)
}

// BaseFilter carries the name and value slot shared by the built-in filters.
// Embed it to write a custom filter.
type BaseFilter struct {
	name          string
	value         interface{}
	preserveEmpty *bool
}

func NewBaseFilter(name string) BaseFilter {
	return BaseFilter{name: name}
}

func (f *BaseFilter) Name() string {
	return f.name
}

func (f *BaseFilter) Value() interface{} {
	return f.value
}

func (f *BaseFilter) SetValue(value interface{}) {
	f.value = value
}

// PreserveEmpty sets whether empty strings, slices and maps count as a value.
// An explicit setting wins over the pipeline default.
func (f *BaseFilter) PreserveEmpty(preserve bool) {
	f.preserveEmpty = &preserve
}

func (f *BaseFilter) preserveEmptyDefault(preserve bool) {
	if f.preserveEmpty == nil {
		f.preserveEmpty = &preserve
	}
}

// IsActive is false for nil values. Unless empty values are preserved, blank
// strings and empty slices and maps are inactive too.
func (f *BaseFilter) IsActive() bool {
	return HasValue(f.value, f.preserveEmpty != nil && *f.preserveEmpty)
}

// HasValue reports whether v counts as a filter value.
func HasValue(v interface{}, preserveEmpty bool) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if preserveEmpty {
		return true
	}
	switch rv.Kind() {
	case reflect.String:
		return strings.TrimSpace(rv.String()) != ""
	case reflect.Slice, reflect.Array, reflect.Map:
		return reflection.Len(rv.Interface()) > 0
	}
	return true
}

func (f BaseFilter) cloneBase() BaseFilter {
	c := f
	if f.preserveEmpty != nil {
		preserve := *f.preserveEmpty
		c.preserveEmpty = &preserve
	}
	return c
}
