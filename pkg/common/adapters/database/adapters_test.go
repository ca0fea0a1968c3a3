package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/testmodels"
)

type adapterCase struct {
	name string
	open func(t *testing.T) common.Database
}

func adapters() []adapterCase {
	return []adapterCase{
		{
			name: "gorm",
			open: func(t *testing.T) common.Database {
				db, err := testmodels.NewGormDB(t.Name())
				require.NoError(t, err)
				sqlDB, err := db.DB()
				require.NoError(t, err)
				t.Cleanup(func() { _ = sqlDB.Close() })
				return NewGormAdapter(db)
			},
		},
		{
			name: "bun",
			open: func(t *testing.T) common.Database {
				db, err := testmodels.NewBunDB(context.Background(), t.Name())
				require.NoError(t, err)
				t.Cleanup(func() { _ = db.Close() })
				return NewBunAdapter(db)
			},
		},
	}
}

func TestSelectQuery_ScanAndOrder(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)
			q := db.NewSelect().Model(&testmodels.User{})

			var users []testmodels.User
			err := q.Order(common.QualifyColumn("name", q.TableAlias()) + " ASC").Scan(context.Background(), &users)
			require.NoError(t, err)
			require.Len(t, users, 3)
			assert.Equal(t, "Bob Wilson", users[0].Name)
			assert.Equal(t, "John Doe", users[2].Name)
		})
	}
}

func TestSelectQuery_ScanOne(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)
			ctx := context.Background()

			var user testmodels.User
			err := db.NewSelect().Model(&testmodels.User{}).Where("email = ?", "jane@example.com").ScanOne(ctx, &user)
			require.NoError(t, err)
			assert.Equal(t, "Jane Smith", user.Name)

			err = db.NewSelect().Model(&testmodels.User{}).Where("email = ?", "nobody@example.com").ScanOne(ctx, &user)
			assert.ErrorIs(t, err, common.ErrNoRows)
		})
	}
}

func TestSelectQuery_CountIgnoresPaging(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)
			ctx := context.Background()

			q := db.NewSelect().Model(&testmodels.Post{}).Where("status = ?", "published").Limit(1).Offset(1).Order("views DESC")
			count, err := q.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			// counting must not disturb a later scan
			var posts []testmodels.Post
			require.NoError(t, q.Scan(ctx, &posts))
			require.Len(t, posts, 1)
			assert.Equal(t, "Getting started with Go", posts[0].Title)
		})
	}
}

func TestSelectQuery_CountWithJoin(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)
			ctx := context.Background()

			q := db.NewSelect().Model(&testmodels.Post{})
			alias := q.TableAlias()
			q.Join("JOIN users ON users.id = "+alias+".user_id").
				Column(alias+".*").
				Where("users.role = ?", "admin")

			count, err := q.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			var posts []testmodels.Post
			require.NoError(t, q.Scan(ctx, &posts))
			assert.Len(t, posts, 2)
		})
	}
}

func TestSelectQuery_Exists(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)
			ctx := context.Background()

			ok, err := db.NewSelect().Model(&testmodels.User{}).Where("role = ?", "admin").Exists(ctx)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = db.NewSelect().Model(&testmodels.User{}).Where("role = ?", "owner").Exists(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSelectQuery_Pluck(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)

			q := db.NewSelect().Model(&testmodels.User{})
			q.Column(q.TableAlias() + ".*").Order("age DESC")

			var names []string
			require.NoError(t, q.Pluck(context.Background(), common.QualifyColumn("name", q.TableAlias()), &names))
			assert.Equal(t, []string{"Bob Wilson", "John Doe", "Jane Smith"}, names)
		})
	}
}

func TestSelectQuery_ScanMaps(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)

			rows, err := db.NewSelect().Model(&testmodels.User{}).Order("id ASC").ScanMaps(context.Background(), "id", "email")
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, "john@example.com", rows[0]["email"])
			assert.Len(t, rows[0], 2)
		})
	}
}

func TestSelectQuery_Preload(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)

			q := db.NewSelect().Model(&testmodels.Post{}).Preload("User")

			var posts []*testmodels.Post
			err := q.Order(common.QualifyColumn("id", q.TableAlias()) + " ASC").Scan(context.Background(), &posts)
			require.NoError(t, err)
			require.Len(t, posts, 4)
			require.NotNil(t, posts[2].User)
			assert.Equal(t, "Jane Smith", posts[2].User.Name)
		})
	}
}

func TestSelectQuery_CloneIsIndependent(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)
			ctx := context.Background()

			base := db.NewSelect().Model(&testmodels.Post{})
			clone := base.Clone().Where("status = ?", "draft")

			total, err := base.Count(ctx)
			require.NoError(t, err)
			drafts, err := clone.Count(ctx)
			require.NoError(t, err)

			assert.Equal(t, 4, total)
			assert.Equal(t, 1, drafts)
		})
	}
}

func TestSelectQuery_ToSQL(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)

			q := db.NewSelect().Model(&testmodels.User{}).Where("LOWER(name) LIKE ?", "%john%")

			sql, err := q.ToSQL()
			require.NoError(t, err)
			assert.Contains(t, sql, "LOWER(name) LIKE ?")
			assert.NotContains(t, sql, "%john%")

			raw, err := q.ToRawSQL()
			require.NoError(t, err)
			assert.Contains(t, raw, "%john%")
		})
	}
}

func TestSelectQuery_Metadata(t *testing.T) {
	for _, ac := range adapters() {
		t.Run(ac.name, func(t *testing.T) {
			db := ac.open(t)

			q := db.NewSelect().Model(&testmodels.Post{})
			assert.Equal(t, "posts", q.GetTableName())
			assert.IsType(t, &testmodels.Post{}, q.GetModel())
			assert.Equal(t, "sqlite", db.DriverName())
			assert.NotEmpty(t, q.TableAlias())
		})
	}
}

func TestBunTableAlias(t *testing.T) {
	db, err := testmodels.NewBunDB(context.Background(), t.Name())
	require.NoError(t, err)
	defer db.Close()

	q := NewBunAdapter(db).NewSelect().Model((*testmodels.Post)(nil))
	assert.Equal(t, `"p"`, q.TableAlias())

	q = NewBunAdapter(db).NewSelect().Table("public.posts")
	assert.Equal(t, "posts", q.TableAlias())
}

func TestGormTableAlias(t *testing.T) {
	db, err := testmodels.NewGormDB(t.Name())
	require.NoError(t, err)

	q := NewGormAdapter(db).NewSelect().Model(&testmodels.Comment{})
	assert.Equal(t, "comments", q.TableAlias())
}
