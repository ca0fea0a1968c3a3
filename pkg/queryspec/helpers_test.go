package queryspec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/common/adapters/database"
	"github.com/bitechdev/QuerySpec/pkg/testmodels"
)

type backend struct {
	name string
	open func(t *testing.T) common.Database
}

// backends runs a test body against every supported ORM.
func backends() []backend {
	return []backend{
		{
			name: "gorm",
			open: func(t *testing.T) common.Database {
				db, err := testmodels.NewGormDB(t.Name())
				require.NoError(t, err)
				sqlDB, err := db.DB()
				require.NoError(t, err)
				t.Cleanup(func() { _ = sqlDB.Close() })
				return database.NewGormAdapter(db)
			},
		},
		{
			name: "bun",
			open: func(t *testing.T) common.Database {
				db, err := testmodels.NewBunDB(context.Background(), t.Name())
				require.NoError(t, err)
				t.Cleanup(func() { _ = db.Close() })
				return database.NewBunAdapter(db)
			},
		},
	}
}

// insertUser adds a row through whichever ORM backs db.
func insertUser(t *testing.T, db common.Database, u *testmodels.User) {
	t.Helper()
	switch a := db.(type) {
	case *database.GormAdapter:
		require.NoError(t, a.DB().Create(u).Error)
	case *database.BunAdapter:
		_, err := a.DB().NewInsert().Model(u).Exec(context.Background())
		require.NoError(t, err)
	default:
		t.Fatalf("unsupported database %T", db)
	}
}

func userNames(users []testmodels.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names
}

func postTitles(posts []testmodels.Post) []string {
	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	return titles
}
