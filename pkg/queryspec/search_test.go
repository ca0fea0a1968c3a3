package queryspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitechdev/QuerySpec/pkg/config"
	"github.com/bitechdev/QuerySpec/pkg/testmodels"
)

func TestSearchSpec_IsActive(t *testing.T) {
	tests := []struct {
		name      string
		term      *string
		minLength int
		want      bool
	}{
		{name: "no term", term: nil, minLength: 1, want: false},
		{name: "empty term", term: strPtr(""), minLength: 1, want: false},
		{name: "empty term with zero min", term: strPtr(""), minLength: 0, want: true},
		{name: "too short", term: strPtr("jo"), minLength: 3, want: false},
		{name: "exact length", term: strPtr("joh"), minLength: 3, want: true},
		{name: "multibyte counts runes", term: strPtr("Zoë"), minLength: 3, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSearchSpec(config.Defaults().Search).SetMinLength(tt.minLength)
			if tt.term != nil {
				s.SetTerm(*tt.term)
			}
			assert.Equal(t, tt.want, s.IsActive())
		})
	}
}

func TestSearchSpec_Settings(t *testing.T) {
	s := NewSearchSpec(config.SearchConfig{})
	assert.Equal(t, "search", s.InputName())
	assert.Equal(t, 0, s.MinLength())
	assert.False(t, s.CaseSensitive())

	s.SetInputName("q").SetInputName("").SetMinLength(-4).SetCaseSensitive(true)
	assert.Equal(t, "q", s.InputName())
	assert.Equal(t, 0, s.MinLength())
	assert.True(t, s.CaseSensitive())

	s.SetTerm("  padded  ")
	term, ok := s.Term()
	require.True(t, ok)
	assert.Equal(t, "  padded  ", term, "terms are kept verbatim")

	s.ClearTerm()
	_, ok = s.Term()
	assert.False(t, ok)
}

func TestSearchSpec_CloneIsIndependent(t *testing.T) {
	s := NewSearchSpec(config.Defaults().Search).SetColumns("name", "email").SetTerm("john")
	c := s.clone()
	c.SetColumns("title").SetTerm("jane")

	term, _ := s.Term()
	assert.Equal(t, "john", term)
	assert.Equal(t, []string{"name", "email"}, s.Columns())
}

func TestSearchSpec_ApplySQL(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			db := b.open(t)

			s := NewSearchSpec(config.Defaults().Search).SetColumns("title", "user.name").SetTerm("Go")
			q, err := s.Apply(db.NewSelect().Model(&testmodels.Post{}))
			require.NoError(t, err)

			sql, err := q.ToSQL()
			require.NoError(t, err)
			assert.Contains(t, sql, "LOWER(")
			assert.Contains(t, sql, "EXISTS (SELECT 1 FROM users WHERE users.id = ")
			assert.Contains(t, sql, "LOWER(users.name) LIKE LOWER(?)")

			// no columns leaves the query alone
			plain := db.NewSelect().Model(&testmodels.Post{})
			got, err := NewSearchSpec(config.Defaults().Search).SetTerm("go").Apply(plain)
			require.NoError(t, err)
			assert.Same(t, plain, got)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
