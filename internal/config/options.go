package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/imgajeed76/gridcore/internal/grid"
)

// ErrInvalidValue marks a grid.toml value outside its allowed set.
var ErrInvalidValue = errors.New("invalid value")

var dataTypes = map[string]grid.DataType{
	"":         grid.TypeString,
	"string":   grid.TypeString,
	"text":     grid.TypeString,
	"number":   grid.TypeNumber,
	"int":      grid.TypeNumber,
	"float":    grid.TypeNumber,
	"bool":     grid.TypeBool,
	"boolean":  grid.TypeBool,
	"date":     grid.TypeDate,
	"datetime": grid.TypeDate,
}

var filterVariants = map[string]grid.FilterVariant{
	"":             "",
	"text":         grid.VariantText,
	"select":       grid.VariantSelect,
	"multi-select": grid.VariantMultiSelect,
	"range":        grid.VariantRange,
	"checkbox":     grid.VariantCheckbox,
}

// Options converts the grid definition into grid options. Preferences
// fill what the file leaves open. Data is supplied by the caller.
func (c *Config) Options(prefs *GlobalConfig) (grid.Options, error) {
	if prefs == nil {
		prefs = DefaultGlobalConfig()
	}
	var errs []error

	columns, err := columnDefs(c.Columns)
	if err != nil {
		errs = append(errs, err)
	}

	opts := grid.Options{
		Columns:        columns,
		Features:       c.features(),
		GlobalFilterFn: c.Table.GlobalFilterFn,
	}

	if opts.Features.EditingMode, err = editingMode(c.Table.EditingMode); err != nil {
		errs = append(errs, err)
	}
	if opts.Features.PositionActionsColumn, err = actionsPosition(c.Table.ActionsPosition); err != nil {
		errs = append(errs, err)
	}

	density := c.Table.Density
	if density == "" {
		density = prefs.Display.Density
	}
	d, err := parseDensity(density)
	if err != nil {
		errs = append(errs, err)
	}

	pageSize := c.Table.PageSize
	if pageSize == 0 {
		pageSize = prefs.Display.PageSize
	}

	st := c.InitialState
	opts.InitialState = grid.State{
		ColumnOrder:       st.ColumnOrder,
		Density:           d,
		Grouping:          st.Grouping,
		ColumnFilterFns:   st.ColumnFilterFns,
		GlobalFilter:      st.GlobalFilter,
		ShowColumnFilters: st.ShowColumnFilters,
		ShowGlobalFilter:  st.ShowGlobalFilter || st.GlobalFilter != "",
		IsFullScreen:      st.FullScreen || prefs.Display.FullScreen,
		Pagination:        grid.Pagination{PageIndex: st.PageIndex, PageSize: pageSize},
		Sorting:           parseSorting(st.Sorting),
		ColumnFilters:     columnFilters(st.Filters),
		Expanded:          grid.Expanded{All: st.Expanded},
	}
	if len(st.Hidden) > 0 {
		opts.InitialState.ColumnVisibility = make(map[string]bool, len(st.Hidden))
		for _, id := range st.Hidden {
			opts.InitialState.ColumnVisibility[id] = false
		}
	}

	opts.Localization, err = localization(c.Localization)
	if err != nil {
		errs = append(errs, err)
	}

	return opts, errors.Join(errs...)
}

func (c *Config) features() grid.Features {
	f := c.Features
	return grid.Features{
		EnableColumnFilters:     f.ColumnFilters,
		EnableColumnFilterModes: f.ColumnFilterModes,
		EnableFilters:           f.ColumnFilters || f.GlobalFilter,
		EnableGlobalFilter:      f.GlobalFilter,
		EnableSorting:           f.Sorting,
		EnablePagination:        f.Pagination,
		EnableGrouping:          f.Grouping,
		EnableExpanding:         f.Expanding,
		EnableExpandAll:         f.ExpandAll,
		EnableRowSelection:      f.RowSelection,
		EnableMultiRowSelection: f.MultiRowSelection,
		EnableSelectAll:         f.SelectAll,
		EnableRowNumbers:        f.RowNumbers,
		EnableRowActions:        f.RowActions,
		EnableRowDragging:       f.RowDragging,
		EnableHiding:            f.Hiding,
		EnableFacetedValues:     f.FacetedValues,
		EnableEditing:           f.Editing,
	}
}

func columnDefs(cols []ColumnConfig) ([]grid.ColumnDef, error) {
	var errs []error
	defs := make([]grid.ColumnDef, 0, len(cols))
	for _, col := range cols {
		def := grid.ColumnDef{
			ID:                 col.ID,
			AccessorKey:        col.Accessor,
			Header:             col.Header,
			FilterFn:           col.FilterFn,
			SortFn:             col.SortFn,
			AggregationFn:      col.Aggregation,
			Size:               col.Size,
			EnableSorting:      col.Sortable,
			EnableColumnFilter: col.Filterable,
			EnableGlobalFilter: col.Searchable,
			EnableGrouping:     col.Groupable,
			EnableHiding:       col.Hideable,
		}
		if def.Header == "" {
			def.Header = col.id()
		}

		dt, ok := dataTypes[strings.ToLower(col.Type)]
		if !ok {
			errs = append(errs, fmt.Errorf("column %q: %w: type %q", col.id(), ErrInvalidValue, col.Type))
		}
		def.DataType = dt

		fv, ok := filterVariants[strings.ToLower(col.FilterVariant)]
		if !ok {
			errs = append(errs, fmt.Errorf("column %q: %w: filter_variant %q", col.id(), ErrInvalidValue, col.FilterVariant))
		}
		def.FilterVariant = fv

		if len(col.Columns) > 0 {
			nested, err := columnDefs(col.Columns)
			if err != nil {
				errs = append(errs, err)
			}
			def.Columns = nested
		}
		defs = append(defs, def)
	}
	return defs, errors.Join(errs...)
}

func parseDensity(s string) (grid.Density, error) {
	switch d := grid.Density(s); d {
	case "":
		return grid.DensityComfortable, nil
	case grid.DensityComfortable, grid.DensityCompact, grid.DensitySpacious:
		return d, nil
	}
	return "", fmt.Errorf("%w: density %q", ErrInvalidValue, s)
}

func editingMode(s string) (grid.EditingMode, error) {
	switch m := grid.EditingMode(s); m {
	case "":
		return grid.EditingModal, nil
	case grid.EditingModal, grid.EditingRow, grid.EditingCell, grid.EditingTable:
		return m, nil
	}
	return "", fmt.Errorf("%w: editing_mode %q", ErrInvalidValue, s)
}

func actionsPosition(s string) (grid.ActionsPosition, error) {
	switch p := grid.ActionsPosition(s); p {
	case "":
		return grid.ActionsFirst, nil
	case grid.ActionsFirst, grid.ActionsLast:
		return p, nil
	}
	return "", fmt.Errorf("%w: actions_position %q", ErrInvalidValue, s)
}

// parseSorting reads "name" / "-name" entries.
func parseSorting(specs []string) []grid.SortSpec {
	if len(specs) == 0 {
		return nil
	}
	out := make([]grid.SortSpec, 0, len(specs))
	for _, s := range specs {
		s = strings.TrimSpace(s)
		if id, ok := strings.CutPrefix(s, "-"); ok {
			out = append(out, grid.SortSpec{ID: id, Desc: true})
			continue
		}
		out = append(out, grid.SortSpec{ID: strings.TrimPrefix(s, "+")})
	}
	return out
}

// columnFilters orders filters by column id so evaluation is stable.
func columnFilters(filters map[string]any) []grid.ColumnFilter {
	if len(filters) == 0 {
		return nil
	}
	ids := make([]string, 0, len(filters))
	for id := range filters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]grid.ColumnFilter, len(ids))
	for i, id := range ids {
		out[i] = grid.ColumnFilter{ID: id, Value: filters[id]}
	}
	return out
}

func localization(m map[string]string) (grid.Localization, error) {
	var l grid.Localization
	targets := map[string]*string{
		"actions":               &l.Actions,
		"expand":                &l.Expand,
		"expand_all":            &l.ExpandAll,
		"move":                  &l.Move,
		"row_number":            &l.RowNumber,
		"row_numbers":           &l.RowNumbers,
		"select":                &l.Select,
		"select_all":            &l.SelectAll,
		"loading":               &l.Loading,
		"no_records_to_display": &l.NoRecordsToDisplay,
	}
	var errs []error
	for k, v := range m {
		dst, ok := targets[k]
		if !ok {
			errs = append(errs, fmt.Errorf("localization: %w: %q", ErrUnknownKey, k))
			continue
		}
		*dst = v
	}
	return l, errors.Join(errs...)
}
