package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrUnknownKey is returned by Load when grid.toml has keys no field reads.
var ErrUnknownKey = errors.New("unknown key")

// Config represents a grid.toml file
type Config struct {
	Table        TableConfig        `toml:"table"`
	Source       SourceConfig       `toml:"source"`
	Features     FeaturesConfig     `toml:"features"`
	Columns      []ColumnConfig     `toml:"columns,omitempty"`
	InitialState InitialStateConfig `toml:"initial_state"`
	Localization map[string]string  `toml:"localization,omitempty"`
}

// TableConfig contains table-wide settings
type TableConfig struct {
	Title           string `toml:"title,omitempty" config:"table.title" desc:"Title shown above the grid"`
	PageSize        int    `toml:"page_size,omitempty" config:"table.page_size" min:"1" max:"10000" desc:"Rows per page (empty = preference)"`
	Density         string `toml:"density,omitempty" config:"table.density" enum:"comfortable,compact,spacious" desc:"Row spacing"`
	GlobalFilterFn  string `toml:"global_filter_fn,omitempty" config:"table.global_filter_fn" desc:"Filter function used by search"`
	ActionsPosition string `toml:"actions_position,omitempty" config:"table.actions_position" enum:"first,last" desc:"Where the row actions column goes"`
	EditingMode     string `toml:"editing_mode,omitempty" config:"table.editing_mode" enum:"modal,row,cell,table" desc:"How rows are edited"`
}

// SourceConfig says where the rows come from
type SourceConfig struct {
	Path      string `toml:"path,omitempty" config:"source.path" desc:"Data file, relative to grid.toml"`
	Format    string `toml:"format,omitempty" config:"source.format" enum:"csv,tsv,json,postgres" desc:"Data format (empty = from extension)"`
	Delimiter string `toml:"delimiter,omitempty" config:"source.delimiter" desc:"CSV field delimiter"`
	URL       string `toml:"url,omitempty" config:"source.url" desc:"PostgreSQL connection URL"`
	Query     string `toml:"query,omitempty" config:"source.query" desc:"SQL query for the postgres format"`
}

// FeaturesConfig toggles grid capabilities
type FeaturesConfig struct {
	ColumnFilters     bool `toml:"column_filters" config:"features.column_filters" default:"true" desc:"Per-column filters"`
	ColumnFilterModes bool `toml:"column_filter_modes" config:"features.column_filter_modes" default:"false" desc:"Switch a column's filter function"`
	GlobalFilter      bool `toml:"global_filter" config:"features.global_filter" default:"true" desc:"Search across columns"`
	Sorting           bool `toml:"sorting" config:"features.sorting" default:"true" desc:"Sort by columns"`
	Pagination        bool `toml:"pagination" config:"features.pagination" default:"true" desc:"Split rows into pages"`
	Grouping          bool `toml:"grouping" config:"features.grouping" default:"false" desc:"Group rows by column values"`
	Expanding         bool `toml:"expanding" config:"features.expanding" default:"false" desc:"Expand rows with sub rows"`
	ExpandAll         bool `toml:"expand_all" config:"features.expand_all" default:"true" desc:"Expand-all header toggle"`
	RowSelection      bool `toml:"row_selection" config:"features.row_selection" default:"false" desc:"Select rows"`
	MultiRowSelection bool `toml:"multi_row_selection" config:"features.multi_row_selection" default:"true" desc:"Select more than one row"`
	SelectAll         bool `toml:"select_all" config:"features.select_all" default:"true" desc:"Select-all header toggle"`
	RowNumbers        bool `toml:"row_numbers" config:"features.row_numbers" default:"false" desc:"Row number column"`
	RowActions        bool `toml:"row_actions" config:"features.row_actions" default:"false" desc:"Row actions column"`
	RowDragging       bool `toml:"row_dragging" config:"features.row_dragging" default:"false" desc:"Row drag handle column"`
	Hiding            bool `toml:"hiding" config:"features.hiding" default:"true" desc:"Hide columns"`
	FacetedValues     bool `toml:"faceted_values" config:"features.faceted_values" default:"false" desc:"Show value counts for filters"`
	Editing           bool `toml:"editing" config:"features.editing" default:"false" desc:"Edit cells"`
}

// ColumnConfig is one [[columns]] entry. Nested columns make a group.
type ColumnConfig struct {
	ID            string         `toml:"id,omitempty"`
	Accessor      string         `toml:"accessor,omitempty"`
	Header        string         `toml:"header,omitempty"`
	Type          string         `toml:"type,omitempty"`
	FilterVariant string         `toml:"filter_variant,omitempty"`
	FilterFn      string         `toml:"filter_fn,omitempty"`
	SortFn        string         `toml:"sort_fn,omitempty"`
	Aggregation   string         `toml:"aggregation,omitempty"`
	Size          int            `toml:"size,omitempty"`
	Sortable      *bool          `toml:"sortable,omitempty"`
	Filterable    *bool          `toml:"filterable,omitempty"`
	Searchable    *bool          `toml:"searchable,omitempty"`
	Groupable     *bool          `toml:"groupable,omitempty"`
	Hideable      *bool          `toml:"hideable,omitempty"`
	Columns       []ColumnConfig `toml:"columns,omitempty"`
}

// InitialStateConfig seeds the grid state
type InitialStateConfig struct {
	ColumnOrder       []string          `toml:"column_order,omitempty"`
	Hidden            []string          `toml:"hidden,omitempty"`
	Grouping          []string          `toml:"grouping,omitempty"`
	Sorting           []string          `toml:"sorting,omitempty"` // "name" or "-name" for descending
	Filters           map[string]any    `toml:"filters,omitempty"`
	ColumnFilterFns   map[string]string `toml:"column_filter_fns,omitempty"`
	GlobalFilter      string            `toml:"global_filter,omitempty"`
	PageIndex         int               `toml:"page_index,omitempty"`
	Expanded          bool              `toml:"expanded,omitempty"`
	ShowColumnFilters bool              `toml:"show_column_filters,omitempty"`
	ShowGlobalFilter  bool              `toml:"show_global_filter,omitempty"`
	FullScreen        bool              `toml:"full_screen,omitempty"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Features: FeaturesConfig{
			ColumnFilters:     true,
			GlobalFilter:      true,
			Sorting:           true,
			Pagination:        true,
			ExpandAll:         true,
			MultiRowSelection: true,
			SelectAll:         true,
			Hiding:            true,
		},
	}
}

// Load reads a grid.toml file. Keys that match no setting are an error so
// typos do not pass silently.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			// filter values are free-form
			if len(k) > 2 && k[0] == "initial_state" && k[1] == "filters" {
				continue
			}
			keys = append(keys, k.String())
		}
		if len(keys) > 0 {
			sort.Strings(keys)
			return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
		}
	}

	return cfg, nil
}

// Save writes the config file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	encoder.Indent = ""
	return encoder.Encode(c)
}

// GetValue returns a config value by key (uses reflection)
func (c *Config) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a config value by key (uses reflection with validation)
func (c *Config) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}

// LeafIDs returns the ids of the data columns in definition order.
func (c *Config) LeafIDs() []string {
	var ids []string
	var walk func(cols []ColumnConfig)
	walk = func(cols []ColumnConfig) {
		for _, col := range cols {
			if len(col.Columns) > 0 {
				walk(col.Columns)
				continue
			}
			ids = append(ids, col.id())
		}
	}
	walk(c.Columns)
	return ids
}

func (c ColumnConfig) id() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Accessor != "":
		return c.Accessor
	}
	return c.Header
}
