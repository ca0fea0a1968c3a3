package queryspec

import (
	"context"
	"errors"

	"github.com/spf13/cast"

	"github.com/bitechdev/QuerySpec/pkg/common"
)

// composedFor runs Apply and reports failures under op.
func (p *Pipeline) composedFor(op string) (common.SelectQuery, error) {
	q, err := p.Apply()
	if err != nil {
		var pe *PipelineError
		if errors.As(err, &pe) {
			relabeled := *pe
			relabeled.Op = op
			return nil, &relabeled
		}
		return nil, p.wrap(op, err)
	}
	return q, nil
}

// Get scans every matching row into dest.
func (p *Pipeline) Get(ctx context.Context, dest interface{}) error {
	q, err := p.composedFor("get")
	if err != nil {
		return err
	}
	if err := q.Scan(ctx, dest); err != nil {
		return p.wrap("get", err)
	}
	return nil
}

// First scans the first matching row into dest. It returns an error wrapping
// common.ErrNoRows when nothing matches.
func (p *Pipeline) First(ctx context.Context, dest interface{}) error {
	q, err := p.composedFor("first")
	if err != nil {
		return err
	}
	if err := q.ScanOne(ctx, dest); err != nil {
		return p.wrap("first", err)
	}
	return nil
}

// Count returns the number of matching rows.
func (p *Pipeline) Count(ctx context.Context) (int, error) {
	q, err := p.composedFor("count")
	if err != nil {
		return 0, err
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, p.wrap("count", err)
	}
	return count, nil
}

// Exists reports whether any row matches.
func (p *Pipeline) Exists(ctx context.Context) (bool, error) {
	q, err := p.composedFor("exists")
	if err != nil {
		return false, err
	}
	ok, err := q.Exists(ctx)
	if err != nil {
		return false, p.wrap("exists", err)
	}
	return ok, nil
}

// Pluck scans one column of every matching row into dest, a pointer to a
// slice. Bare columns are qualified with the base table.
func (p *Pipeline) Pluck(ctx context.Context, column string, dest interface{}) error {
	q, err := p.composedFor("pluck")
	if err != nil {
		return err
	}
	if err := q.Pluck(ctx, common.QualifyColumn(column, q.TableAlias()), dest); err != nil {
		return p.wrap("pluck", err)
	}
	return nil
}

// PluckKeyed returns column values keyed by the string form of keyColumn.
// Later rows win on duplicate keys.
func (p *Pipeline) PluckKeyed(ctx context.Context, column, keyColumn string) (map[string]interface{}, error) {
	q, err := p.composedFor("pluck")
	if err != nil {
		return nil, err
	}
	alias := q.TableAlias()
	valueAlias, keyAlias := "pluck_value", "pluck_key"
	rows, err := q.ScanMaps(ctx,
		common.QualifyColumn(column, alias)+" AS "+valueAlias,
		common.QualifyColumn(keyColumn, alias)+" AS "+keyAlias,
	)
	if err != nil {
		return nil, p.wrap("pluck", err)
	}
	result := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		result[cast.ToString(row[keyAlias])] = row[valueAlias]
	}
	return result, nil
}

// Paginate counts the matches and scans the current page into dest. A
// positive perPage different from the configured default replaces the page
// size first.
func (p *Pipeline) Paginate(ctx context.Context, dest interface{}, perPage int) (*Page, error) {
	if perPage > 0 && perPage != p.cfg.PerPage {
		p.PerPage(perPage)
	}
	q, err := p.composedFor("paginate")
	if err != nil {
		return nil, err
	}
	page, err := p.pagination.Apply(ctx, q, dest, p.input)
	if err != nil {
		return nil, p.wrap("paginate", err)
	}
	return page, nil
}

// ToSQL renders the composed query with placeholders.
func (p *Pipeline) ToSQL() (string, error) {
	q, err := p.composedFor("to_sql")
	if err != nil {
		return "", err
	}
	sql, err := q.ToSQL()
	if err != nil {
		return "", p.wrap("to_sql", err)
	}
	return sql, nil
}

// ToRawSQL renders the composed query with arguments inlined.
func (p *Pipeline) ToRawSQL() (string, error) {
	q, err := p.composedFor("to_raw_sql")
	if err != nil {
		return "", err
	}
	sql, err := q.ToRawSQL()
	if err != nil {
		return "", p.wrap("to_raw_sql", err)
	}
	return sql, nil
}
