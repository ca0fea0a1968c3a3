package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnValidator(t *testing.T) {
	v := NewColumnValidator(&Pet{})

	tests := []struct {
		column string
		valid  bool
	}{
		{"", true},
		{"name", true},
		{"NAME", true},
		{"owner_id", true},
		{"owner.id", true},
		{"owner.missing", false},
		{"missing", false},
		{"vet.name", false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.valid, v.IsValidColumn(tt.column))
		})
	}
}

func TestColumnValidatorFilterAndList(t *testing.T) {
	v := NewColumnValidator(Pet{})

	assert.Equal(t, []string{"name", "owner.id"}, v.FilterValidColumns([]string{"name", "bogus", "owner.id"}))
	assert.Nil(t, v.FilterValidColumns(nil))

	err := v.ValidateColumns([]string{"name", "bogus", "other"})
	assert.EqualError(t, err, "invalid columns: bogus, other")
	assert.NoError(t, v.ValidateColumns([]string{"id", "name"}))

	assert.Contains(t, v.GetValidColumns(), "owner_id")
	assert.NotContains(t, v.GetValidColumns(), "owner")
}
