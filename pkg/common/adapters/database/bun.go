package database

import (
	"context"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/reflection"
)

// BunAdapter adapts Bun to work with our Database interface
type BunAdapter struct {
	db *bun.DB
}

// NewBunAdapter creates a new Bun adapter
func NewBunAdapter(db *bun.DB) *BunAdapter {
	return &BunAdapter{db: db}
}

func (b *BunAdapter) NewSelect() common.SelectQuery {
	return &BunSelectQuery{db: b.db, limit: -1, offset: -1}
}

func (b *BunAdapter) DriverName() string {
	return strings.ToLower(b.db.Dialect().Name().String())
}

// DB exposes the underlying connection.
func (b *BunAdapter) DB() *bun.DB {
	return b.db
}

// BunSelectQuery implements SelectQuery for Bun. Like GormSelectQuery it
// records builder calls and replays them onto a new bun.SelectQuery for every
// terminal call.
type BunSelectQuery struct {
	db        *bun.DB
	model     interface{}
	table     string
	columns   []string
	ops       []func(*bun.SelectQuery) *bun.SelectQuery
	orders    []string
	relations []string
	limit     int
	offset    int
}

type bunBuild struct {
	columns   bool
	orders    bool
	paging    bool
	relations bool
}

var (
	bunFull  = bunBuild{columns: true, orders: true, paging: true, relations: true}
	bunCount = bunBuild{columns: true}
)

func (b *BunSelectQuery) Model(model interface{}) common.SelectQuery {
	b.model = model
	return b
}

func (b *BunSelectQuery) Table(table string) common.SelectQuery {
	b.table = table
	return b
}

func (b *BunSelectQuery) Column(columns ...string) common.SelectQuery {
	b.columns = append(b.columns, columns...)
	return b
}

func (b *BunSelectQuery) Where(query string, args ...interface{}) common.SelectQuery {
	b.ops = append(b.ops, func(q *bun.SelectQuery) *bun.SelectQuery { return q.Where(query, args...) })
	return b
}

func (b *BunSelectQuery) WhereOr(query string, args ...interface{}) common.SelectQuery {
	b.ops = append(b.ops, func(q *bun.SelectQuery) *bun.SelectQuery { return q.WhereOr(query, args...) })
	return b
}

func (b *BunSelectQuery) Join(query string, args ...interface{}) common.SelectQuery {
	b.ops = append(b.ops, func(q *bun.SelectQuery) *bun.SelectQuery { return q.Join(query, args...) })
	return b
}

// Preload loads a relation by its Go field name.
func (b *BunSelectQuery) Preload(relation string) common.SelectQuery {
	b.relations = append(b.relations, relation)
	return b
}

func (b *BunSelectQuery) Order(order string) common.SelectQuery {
	b.orders = append(b.orders, order)
	return b
}

func (b *BunSelectQuery) Limit(n int) common.SelectQuery {
	b.limit = n
	return b
}

func (b *BunSelectQuery) Offset(n int) common.SelectQuery {
	b.offset = n
	return b
}

func (b *BunSelectQuery) Group(group string) common.SelectQuery {
	b.ops = append(b.ops, func(q *bun.SelectQuery) *bun.SelectQuery { return q.GroupExpr(group) })
	return b
}

func (b *BunSelectQuery) Having(having string, args ...interface{}) common.SelectQuery {
	b.ops = append(b.ops, func(q *bun.SelectQuery) *bun.SelectQuery { return q.Having(having, args...) })
	return b
}

func (b *BunSelectQuery) GetModel() interface{} {
	return b.model
}

// modelTable returns bun's metadata for the model, or nil without a model.
func (b *BunSelectQuery) modelTable() *schema.Table {
	typ := reflection.ModelType(b.model)
	if typ == nil {
		return nil
	}
	return b.db.Table(typ)
}

func (b *BunSelectQuery) GetTableName() string {
	if b.table != "" {
		_, table := common.ParseTableName(b.table)
		return table
	}
	if table := b.modelTable(); table != nil {
		return table.Name
	}
	return ""
}

// TableAlias returns the quoted alias bun gives the model table, e.g. "p" for
// `bun:"table:posts,alias:p"`.
func (b *BunSelectQuery) TableAlias() string {
	if b.table == "" {
		if table := b.modelTable(); table != nil {
			return string(table.SQLAlias)
		}
	}
	return b.GetTableName()
}

func (b *BunSelectQuery) build(model interface{}, opts bunBuild) *bun.SelectQuery {
	q := b.db.NewSelect()
	if model != nil {
		q = q.Model(model)
		if b.table != "" {
			q = q.ModelTableExpr(b.table)
		}
	} else if b.table != "" {
		q = q.Table(b.table)
	}
	for _, op := range b.ops {
		q = op(q)
	}
	if opts.columns {
		for _, column := range b.columns {
			q = applyBunColumn(q, column)
		}
	}
	if opts.orders {
		for _, order := range b.orders {
			q = q.OrderExpr(order)
		}
	}
	if opts.paging {
		if b.limit >= 0 {
			q = q.Limit(b.limit)
		}
		if b.offset > 0 {
			q = q.Offset(b.offset)
		}
	}
	if opts.relations {
		for _, relation := range b.relations {
			q = q.Relation(relation)
		}
	}
	return q
}

// applyBunColumn quotes plain identifiers and passes expressions through.
func applyBunColumn(q *bun.SelectQuery, column string) *bun.SelectQuery {
	if common.IsSQLExpression(column) || strings.Contains(column, common.RelationDelimiter) || strings.Contains(column, "?") {
		return q.ColumnExpr(column)
	}
	return q.Column(column)
}

// sameModel reports whether dest holds the model's struct type; bun then
// scans into dest as the model so relations are loaded.
func (b *BunSelectQuery) sameModel(dest interface{}) bool {
	return b.model != nil && reflection.ModelType(dest) == reflection.ModelType(b.model)
}

func (b *BunSelectQuery) Scan(ctx context.Context, dest interface{}) error {
	if b.sameModel(dest) {
		return b.build(dest, bunFull).Scan(ctx)
	}
	return b.build(b.model, bunFull).Scan(ctx, dest)
}

func (b *BunSelectQuery) ScanOne(ctx context.Context, dest interface{}) error {
	if b.sameModel(dest) {
		return b.build(dest, bunFull).Limit(1).Scan(ctx)
	}
	return b.build(b.model, bunFull).Limit(1).Scan(ctx, dest)
}

func (b *BunSelectQuery) Count(ctx context.Context) (int, error) {
	return b.build(b.model, bunCount).Count(ctx)
}

func (b *BunSelectQuery) Exists(ctx context.Context) (bool, error) {
	return b.build(b.model, bunCount).Exists(ctx)
}

func (b *BunSelectQuery) Pluck(ctx context.Context, column string, dest interface{}) error {
	return b.build(b.model, bunBuild{orders: true, paging: true}).ColumnExpr(column).Scan(ctx, dest)
}

func (b *BunSelectQuery) ScanMaps(ctx context.Context, columns ...string) ([]map[string]interface{}, error) {
	q := b.build(b.model, bunBuild{columns: len(columns) == 0, orders: true, paging: true})
	for _, column := range columns {
		q = applyBunColumn(q, column)
	}
	rows := make([]map[string]interface{}, 0)
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ToSQL renders with the nop formatter, which leaves placeholders unbound.
func (b *BunSelectQuery) ToSQL() (string, error) {
	query, err := b.build(b.model, bunBuild{columns: true, orders: true, paging: true}).
		AppendQuery(schema.NewNopFormatter(), nil)
	if err != nil {
		return "", err
	}
	return string(query), nil
}

func (b *BunSelectQuery) ToRawSQL() (string, error) {
	query, err := b.build(b.model, bunBuild{columns: true, orders: true, paging: true}).
		AppendQuery(b.db.Formatter(), nil)
	if err != nil {
		return "", err
	}
	return string(query), nil
}

func (b *BunSelectQuery) Clone() common.SelectQuery {
	clone := *b
	clone.columns = append([]string(nil), b.columns...)
	clone.ops = append([]func(*bun.SelectQuery) *bun.SelectQuery(nil), b.ops...)
	clone.orders = append([]string(nil), b.orders...)
	clone.relations = append([]string(nil), b.relations...)
	return &clone
}
