package database

import (
	"context"
	"errors"
	"reflect"

	"gorm.io/gorm"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/reflection"
)

// GormAdapter adapts GORM to work with our Database interface
type GormAdapter struct {
	db *gorm.DB
}

// NewGormAdapter creates a new GORM adapter
func NewGormAdapter(db *gorm.DB) *GormAdapter {
	return &GormAdapter{db: db}
}

func (g *GormAdapter) NewSelect() common.SelectQuery {
	return &GormSelectQuery{db: g.db, limit: -1, offset: -1}
}

func (g *GormAdapter) DriverName() string {
	return g.db.Dialector.Name()
}

// DB exposes the underlying connection.
func (g *GormAdapter) DB() *gorm.DB {
	return g.db
}

// GormSelectQuery implements SelectQuery for GORM.
//
// Builder calls are recorded and replayed onto a fresh session by every
// terminal call, so a Count never leaks into a later Scan and Clone yields an
// independent handle.
type GormSelectQuery struct {
	db       *gorm.DB
	model    interface{}
	table    string
	columns  []string
	ops      []func(*gorm.DB) *gorm.DB
	orders   []string
	preloads []string
	limit    int
	offset   int
}

// gormBuild selects which recorded parts a terminal call replays.
type gormBuild struct {
	columns  bool
	orders   bool
	paging   bool
	preloads bool
}

var (
	gormFull  = gormBuild{columns: true, orders: true, paging: true, preloads: true}
	gormCount = gormBuild{columns: true}
)

func (g *GormSelectQuery) Model(model interface{}) common.SelectQuery {
	g.model = model
	return g
}

func (g *GormSelectQuery) Table(table string) common.SelectQuery {
	g.table = table
	return g
}

func (g *GormSelectQuery) Column(columns ...string) common.SelectQuery {
	g.columns = append(g.columns, columns...)
	return g
}

func (g *GormSelectQuery) Where(query string, args ...interface{}) common.SelectQuery {
	g.ops = append(g.ops, func(tx *gorm.DB) *gorm.DB { return tx.Where(query, args...) })
	return g
}

func (g *GormSelectQuery) WhereOr(query string, args ...interface{}) common.SelectQuery {
	g.ops = append(g.ops, func(tx *gorm.DB) *gorm.DB { return tx.Or(query, args...) })
	return g
}

func (g *GormSelectQuery) Join(query string, args ...interface{}) common.SelectQuery {
	g.ops = append(g.ops, func(tx *gorm.DB) *gorm.DB { return tx.Joins(query, args...) })
	return g
}

func (g *GormSelectQuery) Preload(relation string) common.SelectQuery {
	g.preloads = append(g.preloads, relation)
	return g
}

func (g *GormSelectQuery) Order(order string) common.SelectQuery {
	g.orders = append(g.orders, order)
	return g
}

func (g *GormSelectQuery) Limit(n int) common.SelectQuery {
	g.limit = n
	return g
}

func (g *GormSelectQuery) Offset(n int) common.SelectQuery {
	g.offset = n
	return g
}

func (g *GormSelectQuery) Group(group string) common.SelectQuery {
	g.ops = append(g.ops, func(tx *gorm.DB) *gorm.DB { return tx.Group(group) })
	return g
}

func (g *GormSelectQuery) Having(having string, args ...interface{}) common.SelectQuery {
	g.ops = append(g.ops, func(tx *gorm.DB) *gorm.DB { return tx.Having(having, args...) })
	return g
}

func (g *GormSelectQuery) GetModel() interface{} {
	return g.model
}

func (g *GormSelectQuery) GetTableName() string {
	if g.table != "" {
		_, table := common.ParseTableName(g.table)
		return table
	}
	if g.model == nil {
		return ""
	}
	stmt := &gorm.Statement{DB: g.db}
	if err := stmt.Parse(g.model); err == nil && stmt.Schema != nil {
		_, table := common.ParseTableName(stmt.Schema.Table)
		return table
	}
	return reflection.GetTableName(g.model)
}

// TableAlias is the bare table name; GORM does not alias the base table.
func (g *GormSelectQuery) TableAlias() string {
	return g.GetTableName()
}

// build replays the recorded state onto tx.
func (g *GormSelectQuery) build(tx *gorm.DB, model interface{}, opts gormBuild) *gorm.DB {
	if model != nil {
		tx = tx.Model(model)
	}
	if g.table != "" {
		tx = tx.Table(g.table)
	}
	for _, op := range g.ops {
		tx = op(tx)
	}
	if opts.columns && len(g.columns) > 0 {
		tx = tx.Select(g.columns)
	}
	if opts.orders {
		for _, order := range g.orders {
			tx = tx.Order(order)
		}
	}
	if opts.paging {
		if g.limit >= 0 {
			tx = tx.Limit(g.limit)
		}
		if g.offset > 0 {
			tx = tx.Offset(g.offset)
		}
	}
	if opts.preloads {
		for _, relation := range g.preloads {
			tx = tx.Preload(relation)
		}
	}
	return tx
}

// modelFor uses dest as the model when it holds the same struct type, which
// lets preloads populate dest directly.
func (g *GormSelectQuery) modelFor(dest interface{}) interface{} {
	if g.model == nil {
		return nil
	}
	if reflection.ModelType(dest) == reflection.ModelType(g.model) {
		return dest
	}
	return g.model
}

func (g *GormSelectQuery) Scan(ctx context.Context, dest interface{}) error {
	return g.build(g.db.WithContext(ctx), g.modelFor(dest), gormFull).Find(dest).Error
}

func (g *GormSelectQuery) ScanOne(ctx context.Context, dest interface{}) error {
	err := g.build(g.db.WithContext(ctx), g.modelFor(dest), gormFull).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNoRows
	}
	return err
}

// Count wraps the query in a subquery so joins, grouping and qualified select
// lists are counted the same way they are scanned.
func (g *GormSelectQuery) Count(ctx context.Context) (int, error) {
	var count int64
	inner := g.build(g.db.WithContext(ctx), g.model, gormCount)
	err := g.db.WithContext(ctx).Table("(?) AS sub", inner).Count(&count).Error
	return int(count), err
}

func (g *GormSelectQuery) Exists(ctx context.Context) (bool, error) {
	var count int64
	inner := g.build(g.db.WithContext(ctx), g.model, gormCount).Limit(1)
	err := g.db.WithContext(ctx).Table("(?) AS sub", inner).Count(&count).Error
	return count > 0, err
}

func (g *GormSelectQuery) Pluck(ctx context.Context, column string, dest interface{}) error {
	tx := g.build(g.db.WithContext(ctx), g.model, gormBuild{orders: true, paging: true})
	return tx.Pluck(column, dest).Error
}

func (g *GormSelectQuery) ScanMaps(ctx context.Context, columns ...string) ([]map[string]interface{}, error) {
	tx := g.build(g.db.WithContext(ctx), g.model, gormBuild{columns: len(columns) == 0, orders: true, paging: true})
	if len(columns) > 0 {
		tx = tx.Select(columns)
	}
	rows := make([]map[string]interface{}, 0)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *GormSelectQuery) ToSQL() (string, error) {
	tx := g.build(g.db.Session(&gorm.Session{DryRun: true}), g.model, gormBuild{columns: true, orders: true, paging: true})
	tx = tx.Find(g.scratchDest())
	if tx.Error != nil {
		return "", tx.Error
	}
	return tx.Statement.SQL.String(), nil
}

func (g *GormSelectQuery) ToRawSQL() (string, error) {
	var buildErr error
	sql := g.db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		tx = g.build(tx, g.model, gormBuild{columns: true, orders: true, paging: true}).Find(g.scratchDest())
		buildErr = tx.Error
		return tx
	})
	return sql, buildErr
}

// scratchDest is a throwaway destination for dry runs.
func (g *GormSelectQuery) scratchDest() interface{} {
	if typ := reflection.ModelType(g.model); typ != nil {
		return reflect.New(reflect.SliceOf(typ)).Interface()
	}
	return &[]map[string]interface{}{}
}

func (g *GormSelectQuery) Clone() common.SelectQuery {
	clone := *g
	clone.columns = append([]string(nil), g.columns...)
	clone.ops = append([]func(*gorm.DB) *gorm.DB(nil), g.ops...)
	clone.orders = append([]string(nil), g.orders...)
	clone.preloads = append([]string(nil), g.preloads...)
	return &clone
}
