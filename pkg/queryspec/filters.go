package queryspec

import (
	"reflect"
	"strings"

	"github.com/spf13/cast"

	"github.com/bitechdev/QuerySpec/pkg/common"
)

// filterColumn qualifies a bare column with the query's base table.
func filterColumn(q common.SelectQuery, column string) string {
	return common.QualifyColumn(column, q.TableAlias())
}

// EqualsFilter matches column = value.
type EqualsFilter struct {
	BaseFilter
	column string
}

// Equals filters column by equality. An empty column defaults to the name.
func Equals(name, column string) *EqualsFilter {
	if column == "" {
		column = name
	}
	return &EqualsFilter{BaseFilter: NewBaseFilter(name), column: column}
}

func (f *EqualsFilter) Apply(q common.SelectQuery, value interface{}) common.SelectQuery {
	return q.Where(filterColumn(q, f.column)+" = ?", value)
}

func (f *EqualsFilter) Clone() Filter {
	c := *f
	c.BaseFilter = f.cloneBase()
	return &c
}

// LikeFilter matches rows whose column contains the value.
type LikeFilter struct {
	BaseFilter
	column        string
	caseSensitive bool
}

// Like filters column by substring. Matching is case-insensitive unless
// CaseSensitive is set.
func Like(name, column string) *LikeFilter {
	if column == "" {
		column = name
	}
	return &LikeFilter{BaseFilter: NewBaseFilter(name), column: column}
}

func (f *LikeFilter) CaseSensitive(caseSensitive bool) *LikeFilter {
	f.caseSensitive = caseSensitive
	return f
}

func (f *LikeFilter) Apply(q common.SelectQuery, value interface{}) common.SelectQuery {
	pattern := common.ContainsPattern(cast.ToString(value))
	return q.Where(common.LikeCondition(filterColumn(q, f.column), f.caseSensitive), pattern)
}

func (f *LikeFilter) Clone() Filter {
	c := *f
	c.BaseFilter = f.cloneBase()
	return &c
}

// InFilter matches column against a set of values. The value may be a slice
// or a comma separated string.
type InFilter struct {
	BaseFilter
	column string
}

func In(name, column string) *InFilter {
	if column == "" {
		column = name
	}
	return &InFilter{BaseFilter: NewBaseFilter(name), column: column}
}

func (f *InFilter) Apply(q common.SelectQuery, value interface{}) common.SelectQuery {
	values := splitValues(value)
	if len(values) == 0 {
		return q
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return q.Where(filterColumn(q, f.column)+" IN ("+placeholders+")", values...)
}

func (f *InFilter) Clone() Filter {
	c := *f
	c.BaseFilter = f.cloneBase()
	return &c
}

// splitValues flattens a slice or comma separated string into bind arguments.
func splitValues(value interface{}) []interface{} {
	if s, ok := value.(string); ok {
		var values []interface{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
		return values
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		if value == nil {
			return nil
		}
		return []interface{}{value}
	}
	values := make([]interface{}, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		values = append(values, rv.Index(i).Interface())
	}
	return values
}

// RangeValue bounds a RangeFilter. Nil or blank bounds are open.
type RangeValue struct {
	Min interface{} `json:"min"`
	Max interface{} `json:"max"`
}

// RangeFilter matches min <= column <= max. Values may be a RangeValue, a map
// with min/max (or from/to) keys, or a two element slice.
type RangeFilter struct {
	BaseFilter
	column string
}

func Range(name, column string) *RangeFilter {
	if column == "" {
		column = name
	}
	return &RangeFilter{BaseFilter: NewBaseFilter(name), column: column}
}

// IsActive requires at least one usable bound.
func (f *RangeFilter) IsActive() bool {
	if !f.BaseFilter.IsActive() {
		return false
	}
	bounds, ok := toRange(f.value)
	return ok && (isBound(bounds.Min) || isBound(bounds.Max))
}

func (f *RangeFilter) Apply(q common.SelectQuery, value interface{}) common.SelectQuery {
	bounds, ok := toRange(value)
	if !ok {
		return q
	}
	column := filterColumn(q, f.column)
	if isBound(bounds.Min) {
		q = q.Where(column+" >= ?", bounds.Min)
	}
	if isBound(bounds.Max) {
		q = q.Where(column+" <= ?", bounds.Max)
	}
	return q
}

func (f *RangeFilter) Clone() Filter {
	c := *f
	c.BaseFilter = f.cloneBase()
	return &c
}

func isBound(v interface{}) bool {
	return HasValue(v, false)
}

func toRange(value interface{}) (RangeValue, bool) {
	switch v := value.(type) {
	case RangeValue:
		return v, true
	case *RangeValue:
		if v == nil {
			return RangeValue{}, false
		}
		return *v, true
	case map[string]interface{}:
		return rangeFromMap(v), true
	case map[string]string:
		m := make(map[string]interface{}, len(v))
		for k, s := range v {
			m[k] = s
		}
		return rangeFromMap(m), true
	}
	if values := splitValues(value); len(values) == 2 {
		return RangeValue{Min: values[0], Max: values[1]}, true
	}
	return RangeValue{}, false
}

func rangeFromMap(m map[string]interface{}) RangeValue {
	r := RangeValue{Min: m["min"], Max: m["max"]}
	if r.Min == nil {
		r.Min = m["from"]
	}
	if r.Max == nil {
		r.Max = m["to"]
	}
	return r
}

// NullFilter matches column IS NULL for a true value and IS NOT NULL for
// false. Values that do not parse as a boolean leave it inactive.
type NullFilter struct {
	BaseFilter
	column string
}

func Null(name, column string) *NullFilter {
	if column == "" {
		column = name
	}
	return &NullFilter{BaseFilter: NewBaseFilter(name), column: column}
}

func (f *NullFilter) IsActive() bool {
	if !f.BaseFilter.IsActive() {
		return false
	}
	_, err := cast.ToBoolE(f.value)
	return err == nil
}

func (f *NullFilter) Apply(q common.SelectQuery, value interface{}) common.SelectQuery {
	isNull, err := cast.ToBoolE(value)
	if err != nil {
		return q
	}
	if isNull {
		return q.Where(filterColumn(q, f.column) + " IS NULL")
	}
	return q.Where(filterColumn(q, f.column) + " IS NOT NULL")
}

func (f *NullFilter) Clone() Filter {
	c := *f
	c.BaseFilter = f.cloneBase()
	return &c
}

// CallbackFunc applies a custom predicate for a filter value.
type CallbackFunc func(q common.SelectQuery, value interface{}) common.SelectQuery

// CallbackFilter delegates Apply to a function. It replaces scopes looked up
// by name.
type CallbackFilter struct {
	BaseFilter
	fn CallbackFunc
}

func Callback(name string, fn CallbackFunc) *CallbackFilter {
	return &CallbackFilter{BaseFilter: NewBaseFilter(name), fn: fn}
}

func (f *CallbackFilter) Apply(q common.SelectQuery, value interface{}) common.SelectQuery {
	if f.fn == nil {
		return q
	}
	return f.fn(q, value)
}

func (f *CallbackFilter) Clone() Filter {
	c := *f
	c.BaseFilter = f.cloneBase()
	return &c
}
