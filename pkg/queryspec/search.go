package queryspec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/config"
	"github.com/bitechdev/QuerySpec/pkg/reflection"
)

// SearchSpec matches a term against a set of columns with an OR'd LIKE group.
type SearchSpec struct {
	columns       []string
	term          *string
	caseSensitive bool
	minLength     int
	inputName     string
}

// NewSearchSpec returns a spec seeded from cfg.
func NewSearchSpec(cfg config.SearchConfig) *SearchSpec {
	s := &SearchSpec{
		caseSensitive: cfg.CaseSensitive,
		minLength:     cfg.MinLength,
		inputName:     cfg.InputName,
	}
	if s.inputName == "" {
		s.inputName = "search"
	}
	return s
}

// SetColumns replaces the searched columns. Columns are not checked against
// the schema; a bad column fails when the query runs.
func (s *SearchSpec) SetColumns(columns ...string) *SearchSpec {
	s.columns = append([]string(nil), columns...)
	return s
}

func (s *SearchSpec) Columns() []string {
	return append([]string(nil), s.columns...)
}

// SetTerm stores the term as given.
func (s *SearchSpec) SetTerm(term string) *SearchSpec {
	s.term = &term
	return s
}

// ClearTerm removes the term.
func (s *SearchSpec) ClearTerm() *SearchSpec {
	s.term = nil
	return s
}

// Term returns the stored term and whether one is set.
func (s *SearchSpec) Term() (string, bool) {
	if s.term == nil {
		return "", false
	}
	return *s.term, true
}

func (s *SearchSpec) SetCaseSensitive(caseSensitive bool) *SearchSpec {
	s.caseSensitive = caseSensitive
	return s
}

func (s *SearchSpec) CaseSensitive() bool {
	return s.caseSensitive
}

func (s *SearchSpec) SetMinLength(n int) *SearchSpec {
	if n < 0 {
		n = 0
	}
	s.minLength = n
	return s
}

func (s *SearchSpec) MinLength() int {
	return s.minLength
}

func (s *SearchSpec) SetInputName(name string) *SearchSpec {
	if name != "" {
		s.inputName = name
	}
	return s
}

func (s *SearchSpec) InputName() string {
	return s.inputName
}

// IsActive reports whether a term is set and at least MinLength runes long.
func (s *SearchSpec) IsActive() bool {
	return s.term != nil && utf8.RuneCountInString(*s.term) >= s.minLength
}

// pattern is the bound LIKE argument for the current term. Case folding is
// left to the database.
func (s *SearchSpec) pattern() string {
	return common.ContainsPattern(*s.term)
}

// Apply ANDs one parenthesized OR group onto q, one predicate per column.
// Inactive searches and empty column sets return q untouched.
func (s *SearchSpec) Apply(q common.SelectQuery) (common.SelectQuery, error) {
	if !s.IsActive() || len(s.columns) == 0 {
		return q, nil
	}

	pattern := s.pattern()
	conditions := make([]string, 0, len(s.columns))
	args := make([]interface{}, 0, len(s.columns))
	for _, column := range s.columns {
		condition, err := s.condition(q.GetModel(), q.TableAlias(), column)
		if err != nil {
			return q, fmt.Errorf("search %s: %w", column, err)
		}
		conditions = append(conditions, condition)
		args = append(args, pattern)
	}

	return q.Where("("+strings.Join(conditions, " OR ")+")", args...), nil
}

// condition renders the match for one column against a single placeholder.
// A relation.column reference becomes an EXISTS over the related table,
// recursing for the remainder of the path.
func (s *SearchSpec) condition(model interface{}, alias, column string) (string, error) {
	relation, field, ok := common.SplitRelationColumn(column)
	if !ok {
		return common.LikeCondition(common.QualifyColumn(column, alias), s.caseSensitive), nil
	}

	info, err := reflection.GetRelationInfo(model, relation)
	if err != nil {
		return "", err
	}

	inner, err := s.condition(info.RelatedModel, info.RelatedTable, field)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s AND %s)",
		info.RelatedTable, info.JoinCondition(alias), inner), nil
}

func (s *SearchSpec) clone() *SearchSpec {
	c := *s
	c.columns = append([]string(nil), s.columns...)
	if s.term != nil {
		term := *s.term
		c.term = &term
	}
	return &c
}
