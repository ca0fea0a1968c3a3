package reflection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/logger"
)

// ColumnValidator checks column references against a model's fields.
// Dotted relation.column references are resolved through the model's
// relations, one hop at a time.
type ColumnValidator struct {
	validColumns map[string]bool
	model        interface{}
}

// NewColumnValidator creates a validator for model.
func NewColumnValidator(model interface{}) *ColumnValidator {
	v := &ColumnValidator{
		validColumns: make(map[string]bool),
		model:        model,
	}
	for _, column := range GetModelColumns(model) {
		v.validColumns[strings.ToLower(column)] = true
	}
	return v
}

// ValidateColumn returns nil for an empty column or one the model declares.
func (v *ColumnValidator) ValidateColumn(column string) error {
	if column == "" {
		return nil
	}

	relation, rest, ok := common.SplitRelationColumn(column)
	if !ok {
		if !v.validColumns[strings.ToLower(column)] {
			return fmt.Errorf("invalid column '%s': column does not exist in model", column)
		}
		return nil
	}

	info, err := GetRelationInfo(v.model, relation)
	if err != nil {
		return fmt.Errorf("invalid column '%s': %w", column, err)
	}
	if err := NewColumnValidator(info.RelatedModel).ValidateColumn(rest); err != nil {
		return fmt.Errorf("in relation %s: %w", relation, err)
	}
	return nil
}

func (v *ColumnValidator) IsValidColumn(column string) bool {
	return v.ValidateColumn(column) == nil
}

// FilterValidColumns returns the valid columns and logs a warning for each
// dropped one.
func (v *ColumnValidator) FilterValidColumns(columns []string) []string {
	if len(columns) == 0 {
		return columns
	}

	valid := make([]string, 0, len(columns))
	for _, column := range columns {
		if v.IsValidColumn(column) {
			valid = append(valid, column)
		} else {
			logger.Warn("Invalid column '%s' filtered out: column does not exist in model", column)
		}
	}
	return valid
}

// ValidateColumns reports every invalid column in one error.
func (v *ColumnValidator) ValidateColumns(columns []string) error {
	var invalid []string
	for _, column := range columns {
		if err := v.ValidateColumn(column); err != nil {
			invalid = append(invalid, column)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid columns: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// GetValidColumns lists the model's own columns, sorted.
func (v *ColumnValidator) GetValidColumns() []string {
	columns := make([]string, 0, len(v.validColumns))
	for column := range v.validColumns {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
