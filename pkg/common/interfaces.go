package common

import "context"

// Database is the host data-access layer a pipeline builds queries from.
type Database interface {
	NewSelect() SelectQuery
	DriverName() string
}

// SelectQuery is the host query-construction handle. Builder methods return the
// handle itself so calls can be chained; nothing touches the database until one
// of the terminal methods runs.
type SelectQuery interface {
	Model(model interface{}) SelectQuery
	Table(table string) SelectQuery
	Column(columns ...string) SelectQuery
	Where(query string, args ...interface{}) SelectQuery
	WhereOr(query string, args ...interface{}) SelectQuery
	Join(query string, args ...interface{}) SelectQuery
	Preload(relation string) SelectQuery
	Order(order string) SelectQuery
	Limit(n int) SelectQuery
	Offset(n int) SelectQuery
	Group(group string) SelectQuery
	Having(having string, args ...interface{}) SelectQuery

	// GetModel returns the value passed to Model, or nil.
	GetModel() interface{}
	// GetTableName returns the base table name without schema qualification.
	GetTableName() string
	// TableAlias returns the identifier base-table columns must be qualified with
	// inside Where, Join and Order fragments.
	TableAlias() string

	Scan(ctx context.Context, dest interface{}) error
	// ScanOne scans the first row into dest and returns sql.ErrNoRows when the
	// query matches nothing.
	ScanOne(ctx context.Context, dest interface{}) error
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context) (bool, error)
	Pluck(ctx context.Context, column string, dest interface{}) error
	ScanMaps(ctx context.Context, columns ...string) ([]map[string]interface{}, error)

	// ToSQL renders the select statement with placeholders.
	ToSQL() (string, error)
	// ToRawSQL renders the select statement with arguments inlined.
	ToRawSQL() (string, error)

	// Clone returns an independent handle carrying the same builder state.
	Clone() SelectQuery
}

// TableNameProvider is implemented by models that name their own table.
type TableNameProvider interface {
	TableName() string
}

// SchemaProvider is implemented by models that live outside the default schema.
type SchemaProvider interface {
	SchemaName() string
}
