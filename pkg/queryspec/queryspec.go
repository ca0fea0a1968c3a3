// Package queryspec composes declarative search, filters, sorting and
// pagination onto GORM or Bun select queries.
//
//	users := []testmodels.User{}
//	page, err := queryspec.ForGORM(db, &testmodels.User{}).
//		Searchable("name", "email", "posts.title").
//		Sortable("name", "created_at").
//		Filters(queryspec.Equals("role", "role")).
//		FromRawInput(queryspec.InputFromValues(r.URL.Query())).
//		Paginate(ctx, &users, 0)
package queryspec

import (
	"github.com/uptrace/bun"
	"gorm.io/gorm"

	"github.com/bitechdev/QuerySpec/pkg/common/adapters/database"
)

// ForGORM builds a pipeline over a GORM connection.
func ForGORM(db *gorm.DB, model interface{}) *Pipeline {
	return For(database.NewGormAdapter(db), model)
}

// ForBun builds a pipeline over a Bun connection.
func ForBun(db *bun.DB, model interface{}) *Pipeline {
	return For(database.NewBunAdapter(db), model)
}
