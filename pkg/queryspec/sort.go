package queryspec

import (
	"fmt"
	"strings"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/reflection"
)

// Direction is a normalized sort direction.
type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// NormalizeDirection maps anything other than a case-insensitive "desc" to asc.
// Surrounding whitespace is not trimmed, so " desc " is asc.
func NormalizeDirection(direction string) Direction {
	if strings.EqualFold(direction, string(DirectionDesc)) {
		return DirectionDesc
	}
	return DirectionAsc
}

// SQL returns the direction keyword.
func (d Direction) SQL() string {
	if d == DirectionDesc {
		return "DESC"
	}
	return "ASC"
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == DirectionAsc {
		return DirectionDesc
	}
	return DirectionAsc
}

// Sort orders a query by one column. Column may be a dotted relation.column
// reference, in which case Apply joins the related table.
type Sort struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// NewSort builds a Sort, normalizing direction.
func NewSort(column, direction string) Sort {
	return Sort{Column: column, Direction: NormalizeDirection(direction)}
}

func Asc(column string) Sort {
	return Sort{Column: column, Direction: DirectionAsc}
}

func Desc(column string) Sort {
	return Sort{Column: column, Direction: DirectionDesc}
}

// IsRelation reports whether the sort targets a related entity.
func (s Sort) IsRelation() bool {
	_, _, ok := common.SplitRelationColumn(s.Column)
	return ok
}

// Apply adds the ordering to q. A plain column is qualified with the base
// table's alias so it stays unambiguous next to preload joins. A relation sort inner-joins the related table
// on the relation's keys and selects only the base table's columns. Calling it
// twice on the same query adds the join twice.
func (s Sort) Apply(q common.SelectQuery) (common.SelectQuery, error) {
	if s.Column == "" {
		return q, nil
	}
	direction := NormalizeDirection(string(s.Direction)).SQL()

	relation, column, ok := common.SplitRelationColumn(s.Column)
	if !ok {
		return q.Order(common.QualifyColumn(s.Column, q.TableAlias()) + " " + direction), nil
	}

	info, err := reflection.GetRelationInfo(q.GetModel(), relation)
	if err != nil {
		return q, fmt.Errorf("sort by %s: %w", s.Column, err)
	}

	alias := q.TableAlias()
	return q.
		Join(fmt.Sprintf("JOIN %s ON %s", info.RelatedTable, info.JoinCondition(alias))).
		Column(alias+".*").
		Order(info.RelatedTable+common.RelationDelimiter+column+" "+direction), nil
}

func (s Sort) String() string {
	return s.Column + " " + string(s.Direction)
}
