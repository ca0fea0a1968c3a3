package queryspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/testmodels"
)

func TestNormalizeDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
	}{
		{"asc", DirectionAsc},
		{"desc", DirectionDesc},
		{"DESC", DirectionDesc},
		{" Desc ", DirectionAsc},
		{"desc ", DirectionAsc},
		{"ASC", DirectionAsc},
		{"", DirectionAsc},
		{"descending", DirectionAsc},
		{"random", DirectionAsc},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirection(tt.input))
		})
	}
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "ASC", DirectionAsc.SQL())
	assert.Equal(t, "DESC", DirectionDesc.SQL())
	assert.Equal(t, "ASC", Direction("bogus").SQL())
	assert.Equal(t, DirectionDesc, DirectionAsc.Toggle())
	assert.Equal(t, DirectionAsc, DirectionDesc.Toggle())
}

func TestSortConstructors(t *testing.T) {
	assert.Equal(t, Sort{Column: "name", Direction: DirectionDesc}, NewSort("name", "DESC"))
	assert.Equal(t, Sort{Column: "name", Direction: DirectionAsc}, Asc("name"))
	assert.Equal(t, Sort{Column: "name", Direction: DirectionDesc}, Desc("name"))
	assert.Equal(t, "name desc", Desc("name").String())
	assert.True(t, Asc("user.name").IsRelation())
	assert.False(t, Asc("name").IsRelation())
}

func TestSortApplySQL(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			db := b.open(t)

			base := db.NewSelect().Model(&testmodels.Post{})
			q, err := Desc("title").Apply(base)
			require.NoError(t, err)
			sql, err := q.ToSQL()
			require.NoError(t, err)
			assert.Contains(t, sql, "ORDER BY "+base.TableAlias()+".title DESC")
			assert.NotContains(t, sql, "JOIN")

			q, err = Asc("user.name").Apply(db.NewSelect().Model(&testmodels.Post{}))
			require.NoError(t, err)
			sql, err = q.ToSQL()
			require.NoError(t, err)
			assert.Contains(t, sql, "JOIN users ON users.id = ")
			assert.Contains(t, sql, "ORDER BY users.name ASC")

			_, err = Asc("author.name").Apply(db.NewSelect().Model(&testmodels.Post{}))
			assert.ErrorIs(t, err, common.ErrUnknownRelation)
		})
	}
}

func TestSortApplyEmptyColumn(t *testing.T) {
	db := backends()[0].open(t)
	q := db.NewSelect().Model(&testmodels.User{})

	got, err := Sort{}.Apply(q)
	require.NoError(t, err)
	assert.Same(t, q, got)
}
