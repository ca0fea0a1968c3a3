package common

import (
	"strings"
)

// RelationDelimiter separates a relation name from a column on the related entity.
const RelationDelimiter = "."

// SplitRelationColumn splits a dotted column reference such as "author.name" into
// its relation and column parts. ok is false for plain columns.
func SplitRelationColumn(column string) (relation, field string, ok bool) {
	idx := strings.Index(column, RelationDelimiter)
	if idx <= 0 || idx == len(column)-1 {
		return "", column, false
	}
	return column[:idx], column[idx+1:], true
}

// QualifyColumn prefixes a bare column with the given table alias.
// Columns that already carry a qualifier, or look like expressions, are returned
// unchanged.
func QualifyColumn(column, alias string) string {
	if alias == "" || column == "" {
		return column
	}
	if strings.Contains(column, RelationDelimiter) || IsSQLExpression(column) {
		return column
	}
	return alias + RelationDelimiter + column
}

// ParseTableName splits "schema.table" into its parts.
// For example: "public.users" -> ("public", "users")
//
//	"users" -> ("", "users")
func ParseTableName(fullTableName string) (schema, table string) {
	if idx := strings.LastIndex(fullTableName, "."); idx != -1 {
		return fullTableName[:idx], fullTableName[idx+1:]
	}
	return "", fullTableName
}

// ContainsPattern wraps term for a substring LIKE match.
func ContainsPattern(term string) string {
	return "%" + term + "%"
}

// LikeCondition renders a substring match of column against a single placeholder.
// When caseSensitive is false the database lower-cases both the column and the
// bound pattern, so both sides fold under the same rules.
func LikeCondition(column string, caseSensitive bool) string {
	if caseSensitive {
		return column + " LIKE ?"
	}
	return "LOWER(" + column + ") LIKE LOWER(?)"
}

// IsSQLExpression reports whether s looks like an expression rather than an
// identifier: function calls, casts, quoted literals or the trivial literals.
func IsSQLExpression(s string) bool {
	if strings.ContainsAny(s, "()'\" ") {
		return true
	}
	switch strings.ToLower(s) {
	case "true", "false", "null", "*":
		return true
	}
	return false
}

// IsSQLKeyword checks if a string is a SQL keyword that shouldn't be treated as a column name
func IsSQLKeyword(word string) bool {
	keywords := []string{"select", "from", "where", "and", "or", "not", "in", "is", "null", "true", "false", "like", "between", "exists"}
	for _, kw := range keywords {
		if strings.EqualFold(word, kw) {
			return true
		}
	}
	return false
}

// ToSnakeCase converts a string from CamelCase to snake_case
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') || (prev >= 'A' && prev <= 'Z' && nextLower) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
