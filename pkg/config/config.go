package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the defaults a pipeline starts from.
type Config struct {
	PerPage        int              `mapstructure:"per_page"`
	PerPageOptions []int            `mapstructure:"per_page_options"`
	Search         SearchConfig     `mapstructure:"search"`
	Sort           SortConfig       `mapstructure:"sort"`
	Pagination     PaginationConfig `mapstructure:"pagination"`
	Filters        FilterConfig     `mapstructure:"filters"`
}

type SearchConfig struct {
	InputName     string `mapstructure:"input_name"`
	MinLength     int    `mapstructure:"min_length"`
	CaseSensitive bool   `mapstructure:"case_sensitive"`
}

type SortConfig struct {
	ColumnParam      string `mapstructure:"column_param"`
	DirectionParam   string `mapstructure:"direction_param"`
	DefaultDirection string `mapstructure:"default_direction"`
}

type PaginationConfig struct {
	PageName     string `mapstructure:"page_name"`
	PerPageParam string `mapstructure:"per_page_param"`
	Enabled      bool   `mapstructure:"enabled"`
}

type FilterConfig struct {
	// PreserveEmpty makes empty-but-not-nil filter values count as active.
	PreserveEmpty bool `mapstructure:"preserve_empty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		PerPage:        15,
		PerPageOptions: []int{10, 15, 25, 50, 100},
		Search: SearchConfig{
			InputName:     "search",
			MinLength:     1,
			CaseSensitive: false,
		},
		Sort: SortConfig{
			ColumnParam:      "sort",
			DirectionParam:   "direction",
			DefaultDirection: "asc",
		},
		Pagination: PaginationConfig{
			PageName:     "page",
			PerPageParam: "per_page",
			Enabled:      true,
		},
		Filters: FilterConfig{
			PreserveEmpty: false,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("per_page", d.PerPage)
	v.SetDefault("per_page_options", d.PerPageOptions)
	v.SetDefault("search.input_name", d.Search.InputName)
	v.SetDefault("search.min_length", d.Search.MinLength)
	v.SetDefault("search.case_sensitive", d.Search.CaseSensitive)
	v.SetDefault("sort.column_param", d.Sort.ColumnParam)
	v.SetDefault("sort.direction_param", d.Sort.DirectionParam)
	v.SetDefault("sort.default_direction", d.Sort.DefaultDirection)
	v.SetDefault("pagination.page_name", d.Pagination.PageName)
	v.SetDefault("pagination.per_page_param", d.Pagination.PerPageParam)
	v.SetDefault("pagination.enabled", d.Pagination.Enabled)
	v.SetDefault("filters.preserve_empty", d.Filters.PreserveEmpty)
}

// Load reads queryspec.yaml from the given directories (the working directory
// and ./config when none are given). Environment variables prefixed with
// QUERYSPEC_ override file values, e.g. QUERYSPEC_SEARCH_MIN_LENGTH=3.
// A missing file is not an error.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("queryspec")
	v.SetConfigType("yaml")

	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("QUERYSPEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config: %w", err)
		}
	}

	return decode(v)
}

// LoadFile reads configuration from an explicit file path.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("error reading config %s: %w", path, err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize replaces unusable values with the defaults.
func (c *Config) normalize() {
	d := Defaults()
	if c.PerPage <= 0 {
		c.PerPage = d.PerPage
	}
	if len(c.PerPageOptions) == 0 {
		c.PerPageOptions = d.PerPageOptions
	}
	if c.Search.InputName == "" {
		c.Search.InputName = d.Search.InputName
	}
	if c.Search.MinLength < 0 {
		c.Search.MinLength = d.Search.MinLength
	}
	if c.Sort.ColumnParam == "" {
		c.Sort.ColumnParam = d.Sort.ColumnParam
	}
	if c.Sort.DirectionParam == "" {
		c.Sort.DirectionParam = d.Sort.DirectionParam
	}
	if !strings.EqualFold(c.Sort.DefaultDirection, "desc") {
		c.Sort.DefaultDirection = "asc"
	} else {
		c.Sort.DefaultDirection = "desc"
	}
	if c.Pagination.PageName == "" {
		c.Pagination.PageName = d.Pagination.PageName
	}
	if c.Pagination.PerPageParam == "" {
		c.Pagination.PerPageParam = d.Pagination.PerPageParam
	}
}
