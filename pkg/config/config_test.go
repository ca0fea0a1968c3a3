package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 15, cfg.PerPage)
	assert.Equal(t, []int{10, 15, 25, 50, 100}, cfg.PerPageOptions)
	assert.Equal(t, "search", cfg.Search.InputName)
	assert.Equal(t, 1, cfg.Search.MinLength)
	assert.False(t, cfg.Search.CaseSensitive)
	assert.Equal(t, "sort", cfg.Sort.ColumnParam)
	assert.Equal(t, "direction", cfg.Sort.DirectionParam)
	assert.Equal(t, "asc", cfg.Sort.DefaultDirection)
	assert.Equal(t, "page", cfg.Pagination.PageName)
	assert.Equal(t, "per_page", cfg.Pagination.PerPageParam)
	assert.True(t, cfg.Pagination.Enabled)
	assert.False(t, cfg.Filters.PreserveEmpty)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queryspec.yaml")
	content := `
per_page: 25
per_page_options: [5, 25]
search:
  input_name: q
  min_length: 3
  case_sensitive: true
sort:
  default_direction: DESC
filters:
  preserve_empty: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.PerPage)
	assert.Equal(t, []int{5, 25}, cfg.PerPageOptions)
	assert.Equal(t, "q", cfg.Search.InputName)
	assert.Equal(t, 3, cfg.Search.MinLength)
	assert.True(t, cfg.Search.CaseSensitive)
	assert.Equal(t, "desc", cfg.Sort.DefaultDirection)
	assert.Equal(t, "sort", cfg.Sort.ColumnParam, "unset keys keep defaults")
	assert.True(t, cfg.Filters.PreserveEmpty)
}

func TestLoadSearchesPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "queryspec.yaml"), []byte("per_page: 50\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.PerPage)
}

func TestNormalizeRejectsUnusableValues(t *testing.T) {
	cfg := Config{PerPage: -1, Sort: SortConfig{DefaultDirection: "sideways"}}
	cfg.normalize()

	assert.Equal(t, 15, cfg.PerPage)
	assert.Equal(t, "asc", cfg.Sort.DefaultDirection)
	assert.Equal(t, "search", cfg.Search.InputName)
	assert.Equal(t, "page", cfg.Pagination.PageName)
}
