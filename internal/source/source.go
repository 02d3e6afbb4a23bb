// Package source loads grid datasets from CSV, TSV and JSON files and from
// PostgreSQL queries. Every loader infers a type for each column so a grid
// definition can be generated from the data alone.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/imgajeed76/gridcore/internal/config"
	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/rowmodel"
	"github.com/imgajeed76/gridcore/internal/util"
)

// Format names a source encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatJSON     Format = "json"
	FormatPostgres Format = "postgres"
)

// Column types, matching the type names grid.toml accepts.
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeBool   = "bool"
	TypeDate   = "date"
)

// SubRowsKey is the record key holding nested rows in JSON sources. It
// matches the key rowmodel.DefaultSubRows reads.
const SubRowsKey = "subRows"

// Column is one column of a loaded dataset.
type Column struct {
	Name string
	Type string
}

// Dataset is a loaded source.
type Dataset struct {
	Columns []Column
	Rows    []grid.Record
	// Truncated is set when MaxRows stopped the load early.
	Truncated bool
	// Nested is set when some record carries sub rows.
	Nested bool
}

// Spec describes where to load from.
type Spec struct {
	Path      string
	Format    Format
	Delimiter string
	URL       string
	Query     string
	MaxRows   int // 0 = unlimited
	Timeout   time.Duration
}

// FromConfig builds a Spec from a grid definition. Relative paths resolve
// against the directory of gridFile.
func FromConfig(cfg *config.Config, gridFile string, prefs *config.GlobalConfig) Spec {
	if prefs == nil {
		prefs = config.DefaultGlobalConfig()
	}
	spec := Spec{
		Path:      util.ResolveRelative(gridFile, cfg.Source.Path),
		Format:    Format(cfg.Source.Format),
		Delimiter: cfg.Source.Delimiter,
		URL:       cfg.Source.URL,
		Query:     cfg.Source.Query,
		MaxRows:   prefs.Database.MaxRows,
		Timeout:   time.Duration(prefs.Database.TimeoutSeconds) * time.Second,
	}
	if spec.URL == "" && spec.Format == FormatPostgres {
		spec.URL = prefs.Database.URL
	}
	return spec
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".json":
		return FormatJSON, nil
	}
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") {
		return FormatPostgres, nil
	}
	return "", fmt.Errorf("%w: %q", util.ErrUnsupportedSource, path)
}

// Load reads the dataset described by spec.
func Load(ctx context.Context, spec Spec) (*Dataset, error) {
	format := spec.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(spec.Path); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatCSV, FormatTSV:
		return LoadCSV(ctx, spec.Path, delimiter(format, spec.Delimiter), spec.MaxRows)
	case FormatJSON:
		return LoadJSON(ctx, spec.Path, spec.MaxRows)
	case FormatPostgres:
		url := spec.URL
		if url == "" {
			url = spec.Path
		}
		if spec.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
			defer cancel()
		}
		db, err := Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Load(ctx, spec.Query, spec.MaxRows)
	}
	return nil, fmt.Errorf("%w: %q", util.ErrUnsupportedSource, format)
}

func delimiter(format Format, configured string) rune {
	if configured == `\t` {
		return '\t'
	}
	if r := []rune(configured); len(r) > 0 {
		return r[0]
	}
	if format == FormatTSV {
		return '\t'
	}
	return ','
}

// ColumnConfigs turns the inferred columns into grid.toml column entries.
func (d *Dataset) ColumnConfigs() []config.ColumnConfig {
	cols := make([]config.ColumnConfig, 0, len(d.Columns))
	for _, c := range d.Columns {
		cc := config.ColumnConfig{
			Accessor: c.Name,
			Header:   headerFor(c.Name),
		}
		if c.Type != TypeString {
			cc.Type = c.Type
		}
		switch c.Type {
		case TypeNumber:
			cc.FilterVariant = "range"
		case TypeBool:
			cc.FilterVariant = "checkbox"
		}
		cols = append(cols, cc)
	}
	return cols
}

// ColumnDefs is ColumnConfigs for callers without a grid definition.
func (d *Dataset) ColumnDefs() []grid.ColumnDef {
	defs := make([]grid.ColumnDef, 0, len(d.Columns))
	for _, c := range d.Columns {
		def := grid.ColumnDef{
			AccessorKey: c.Name,
			Header:      headerFor(c.Name),
		}
		switch c.Type {
		case TypeNumber:
			def.DataType = grid.TypeNumber
			def.FilterVariant = grid.VariantRange
		case TypeBool:
			def.DataType = grid.TypeBool
			def.FilterVariant = grid.VariantCheckbox
		case TypeDate:
			def.DataType = grid.TypeDate
		default:
			def.DataType = grid.TypeString
		}
		defs = append(defs, def)
	}
	return defs
}

// SubRows returns the sub-row accessor for nested datasets, nil otherwise.
func (d *Dataset) SubRows() rowmodel.SubRowsFunc {
	if !d.Nested {
		return nil
	}
	return rowmodel.DefaultSubRows
}

// headerFor turns snake_case and kebab-case names into titles.
func headerFor(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}
