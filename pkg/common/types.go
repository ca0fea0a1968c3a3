package common

// Response is the JSON envelope returned by the HTTP glue.
type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Metadata *Metadata   `json:"metadata,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
}

type Metadata struct {
	Total       int64 `json:"total"`
	Count       int64 `json:"count"`
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// Relation types reported by RelationInfo.
const (
	RelationBelongsTo = "belongsTo"
	RelationHasOne    = "hasOne"
	RelationHasMany   = "hasMany"
)

// RelationInfo describes a one-hop association from a base entity to a related
// entity. LocalKey is a column on the base table and ForeignKey a column on the
// related table; the pair is joined with an equality.
type RelationInfo struct {
	Name         string      `json:"name"`
	FieldName    string      `json:"field_name"`
	RelationType string      `json:"relation_type"`
	RelatedTable string      `json:"related_table"`
	LocalKey     string      `json:"local_key"`
	ForeignKey   string      `json:"foreign_key"`
	RelatedModel interface{} `json:"-"`
}

// JoinCondition renders "related.fk = base.local" with base qualified by alias.
func (r *RelationInfo) JoinCondition(baseAlias string) string {
	return r.RelatedTable + "." + r.ForeignKey + " = " + baseAlias + "." + r.LocalKey
}
