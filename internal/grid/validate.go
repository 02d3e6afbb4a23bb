package grid

import (
	"errors"
	"fmt"

	"github.com/imgajeed76/gridcore/internal/rowmodel"
)

var (
	ErrDuplicateColumnID    = errors.New("duplicate column id")
	ErrMissingColumnID      = errors.New("column has no id, accessor key or header")
	ErrUnknownFilterFn      = errors.New("unknown filter function")
	ErrUnknownSortFn        = errors.New("unknown sorting function")
	ErrUnknownAggregationFn = errors.New("unknown aggregation function")
	ErrInvalidPageSize      = errors.New("page size must be positive")
	ErrUnknownColumnOrderID = errors.New("column order names an unknown column")
	ErrUnknownSlice         = errors.New("unknown state slice")
	ErrSliceType            = errors.New("wrong value type for state slice")
)

// Validate checks options for configuration errors and reports all of
// them joined. Empty data is never an error.
func Validate(opts Options) error {
	var errs []error

	known := make(map[string]bool)
	var walk func(defs []ColumnDef, path string)
	walk = func(defs []ColumnDef, path string) {
		for i, def := range defs {
			at := fmt.Sprintf("%s[%d]", path, i)
			id := ColumnID(def)
			switch {
			case id == "":
				errs = append(errs, fmt.Errorf("%w: %s", ErrMissingColumnID, at))
			case known[id]:
				errs = append(errs, fmt.Errorf("%w: %q at %s", ErrDuplicateColumnID, id, at))
			case IsControlColumn(id):
				errs = append(errs, fmt.Errorf("%w: %q is reserved for a control column", ErrDuplicateColumnID, id))
			default:
				known[id] = true
			}
			if len(def.Columns) > 0 {
				walk(def.Columns, at+".columns")
				continue
			}
			if def.FilterFunc == nil && def.FilterFn != "" {
				if err := checkFilter(def.FilterFn, opts.FilterFns); err != nil {
					errs = append(errs, fmt.Errorf("column %q: %w", id, err))
				}
			}
			if def.SortFn != "" {
				if _, ok := rowmodel.LookupSort(def.SortFn); !ok {
					errs = append(errs, fmt.Errorf("column %q: %w: %q", id, ErrUnknownSortFn, def.SortFn))
				}
			}
			if def.AggregationFn != "" {
				if _, ok := rowmodel.LookupAggregation(def.AggregationFn); !ok {
					errs = append(errs, fmt.Errorf("column %q: %w: %q", id, ErrUnknownAggregationFn, def.AggregationFn))
				}
			}
		}
	}
	walk(opts.Columns, "columns")

	checkFns := func(where string, fns map[string]string) {
		for col, name := range fns {
			if name == CustomFilter {
				continue
			}
			if err := checkFilter(name, opts.FilterFns); err != nil {
				errs = append(errs, fmt.Errorf("%s column %q: %w", where, col, err))
			}
		}
	}
	checkFns("initial state", opts.InitialState.ColumnFilterFns)
	if opts.State.ColumnFilterFns.Valid {
		checkFns("state", opts.State.ColumnFilterFns.Value)
	}

	for _, name := range []string{opts.GlobalFilterFn, opts.InitialState.GlobalFilterFn} {
		if name == "" {
			continue
		}
		if err := checkFilter(name, opts.FilterFns); err != nil {
			errs = append(errs, fmt.Errorf("global filter: %w", err))
		}
	}
	if o := opts.State.GlobalFilterFn; o.Valid {
		if err := checkFilter(o.Value, opts.FilterFns); err != nil {
			errs = append(errs, fmt.Errorf("global filter: %w", err))
		}
	}

	// zero in the initial state means "default"
	if size := opts.InitialState.Pagination.PageSize; size < 0 {
		errs = append(errs, fmt.Errorf("initial state: %w: %d", ErrInvalidPageSize, size))
	}
	if o := opts.State.Pagination; o.Valid && o.Value.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("state: %w: %d", ErrInvalidPageSize, o.Value.PageSize))
	}

	checkOrder := func(where string, order []string) {
		for _, id := range order {
			if !known[id] && !IsControlColumn(id) {
				errs = append(errs, fmt.Errorf("%s: %w: %q", where, ErrUnknownColumnOrderID, id))
			}
		}
	}
	checkOrder("initial state", opts.InitialState.ColumnOrder)
	if opts.State.ColumnOrder.Valid {
		checkOrder("state", opts.State.ColumnOrder.Value)
	}

	return errors.Join(errs...)
}

func checkFilter(name string, custom map[string]rowmodel.FilterFunc) error {
	if _, ok := rowmodel.LookupFilter(name, custom); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilterFn, name)
	}
	return nil
}
