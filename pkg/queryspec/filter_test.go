package queryspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitechdev/QuerySpec/pkg/testmodels"
)

func TestHasValue(t *testing.T) {
	var nilSlice []string
	var nilPtr *int
	zero := 0

	tests := []struct {
		name          string
		value         interface{}
		preserveEmpty bool
		want          bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "nil preserved", value: nil, preserveEmpty: true, want: false},
		{name: "nil pointer", value: nilPtr, preserveEmpty: true, want: false},
		{name: "empty string", value: "", want: false},
		{name: "blank string", value: "   ", want: false},
		{name: "empty string preserved", value: "", preserveEmpty: true, want: true},
		{name: "string", value: "admin", want: true},
		{name: "zero", value: 0, want: true},
		{name: "pointer to zero", value: &zero, want: true},
		{name: "false", value: false, want: true},
		{name: "empty slice", value: []string{}, want: false},
		{name: "nil slice", value: nilSlice, want: false},
		{name: "empty slice preserved", value: []string{}, preserveEmpty: true, want: true},
		{name: "slice", value: []int{1}, want: true},
		{name: "empty map", value: map[string]interface{}{}, want: false},
		{name: "map", value: map[string]interface{}{"min": 1}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasValue(tt.value, tt.preserveEmpty))
		})
	}
}

func TestFilterActivity(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		value  interface{}
		want   bool
	}{
		{name: "equals", filter: Equals("role", ""), value: "admin", want: true},
		{name: "equals blank", filter: Equals("role", ""), value: " ", want: false},
		{name: "range without bounds", filter: Range("age", ""), value: map[string]interface{}{"min": "", "max": nil}, want: false},
		{name: "range with max", filter: Range("age", ""), value: map[string]string{"to": "40"}, want: true},
		{name: "range bad shape", filter: Range("age", ""), value: "30", want: false},
		{name: "null yes", filter: Null("deleted", ""), value: "1", want: true},
		{name: "null not a bool", filter: Null("deleted", ""), value: "maybe", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.SetValue(tt.value)
			assert.Equal(t, tt.want, tt.filter.IsActive())
		})
	}
}

func TestFilterClone(t *testing.T) {
	original := Equals("role", "role")
	original.PreserveEmpty(true)
	original.SetValue("admin")

	clone := original.Clone()
	clone.SetValue("editor")

	assert.Equal(t, "admin", original.Value())
	assert.Equal(t, "editor", clone.Value())

	original.PreserveEmpty(false)
	clone.SetValue("")
	assert.True(t, clone.IsActive(), "the clone keeps its own empty policy")
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []interface{}{"a", "b"}, splitValues("a, b,,"))
	assert.Equal(t, []interface{}{1, 2}, splitValues([]int{1, 2}))
	assert.Equal(t, []interface{}{7}, splitValues(7))
	assert.Nil(t, splitValues(nil))
	assert.Nil(t, splitValues(""))
}

func TestFiltersQualifyColumns(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			db := b.open(t)
			q := db.NewSelect().Model(&testmodels.User{})
			alias := q.TableAlias()

			q = Equals("role", "").Apply(q, "admin")
			q = In("age", "").Apply(q, "28,34")
			q = Null("email", "").Apply(q, false)

			sql, err := q.ToSQL()
			require.NoError(t, err)
			assert.Contains(t, sql, alias+".role = ?")
			assert.Contains(t, sql, alias+".age IN (?, ?)")
			assert.Contains(t, sql, alias+".email IS NOT NULL")
		})
	}
}
