package grid

import (
	"fmt"

	"github.com/imgajeed76/gridcore/internal/rowmodel"
)

type (
	ColumnFilter = rowmodel.ColumnFilter
	SortSpec     = rowmodel.SortSpec
	Pagination   = rowmodel.Pagination
	Expanded     = rowmodel.Expanded
)

// ColumnRef identifies a column taking part in an interaction.
type ColumnRef struct {
	ID string
}

// RowRef identifies a row taking part in an interaction.
type RowRef struct {
	ID    string
	Index int
}

// CellRef identifies a cell being edited.
type CellRef struct {
	RowID    string
	ColumnID string
}

// State is a snapshot of every slice. It doubles as the initial state in
// Options, where zero values mean "use the default".
type State struct {
	ColumnFilterFns     map[string]string
	ColumnOrder         []string
	Density             Density
	DraggingColumn      *ColumnRef
	DraggingRow         *RowRef
	EditingCell         *CellRef
	EditingRow          *RowRef
	GlobalFilterFn      string
	Grouping            []string
	HoveredColumn       *ColumnRef
	HoveredRow          *RowRef
	IsFullScreen        bool
	ShowAlertBanner     bool
	ShowColumnFilters   bool
	ShowGlobalFilter    bool
	ShowToolbarDropZone bool

	ColumnFilters    []ColumnFilter
	GlobalFilter     string
	Sorting          []SortSpec
	Pagination       Pagination
	Expanded         Expanded
	RowSelection     map[string]bool
	ColumnVisibility map[string]bool

	IsLoading     bool
	ShowSkeletons bool
}

// Slice is one controllable piece of state. Reads prefer the host override;
// writes go to the host callback when one is registered and otherwise to
// the internal value.
type Slice[T any] struct {
	name     string
	value    T
	override Opt[T]
	onChange func(T)
	changed  func(name string)
}

func (s *Slice[T]) Name() string { return s.name }

// Get returns the effective value.
func (s *Slice[T]) Get() T {
	if s.override.Valid {
		return s.override.Value
	}
	return s.value
}

// Internal returns the internally held value, ignoring any override.
func (s *Slice[T]) Internal() T { return s.value }

// Controlled reports whether writes are routed to a host callback.
func (s *Slice[T]) Controlled() bool { return s.onChange != nil }

// Overridden reports whether reads come from a host override.
func (s *Slice[T]) Overridden() bool { return s.override.Valid }

func (s *Slice[T]) Set(v T) {
	if s.onChange != nil {
		s.onChange(v)
		return
	}
	s.value = v
	if s.changed != nil {
		s.changed(s.name)
	}
}

// Update applies fn to the effective value and sets the result.
func (s *Slice[T]) Update(fn func(T) T) {
	s.Set(fn(s.Get()))
}

func (s *Slice[T]) bind(o Opt[T], onChange func(T)) {
	s.override = o
	s.onChange = onChange
}

func (s *Slice[T]) getAny() any { return s.Get() }

func (s *Slice[T]) setAny(v any) error {
	if v == nil {
		var zero T
		s.Set(zero)
		return nil
	}
	tv, ok := v.(T)
	if !ok {
		var zero T
		return fmt.Errorf("%w: %s wants %T, got %T", ErrSliceType, s.name, zero, v)
	}
	s.Set(tv)
	return nil
}

type slice interface {
	Name() string
	Controlled() bool
	Overridden() bool
	getAny() any
	setAny(v any) error
}

// StateStore holds every slice of a table.
type StateStore struct {
	ColumnFilterFns     *Slice[map[string]string]
	ColumnOrder         *Slice[[]string]
	Density             *Slice[Density]
	DraggingColumn      *Slice[*ColumnRef]
	DraggingRow         *Slice[*RowRef]
	EditingCell         *Slice[*CellRef]
	EditingRow          *Slice[*RowRef]
	GlobalFilterFn      *Slice[string]
	Grouping            *Slice[[]string]
	HoveredColumn       *Slice[*ColumnRef]
	HoveredRow          *Slice[*RowRef]
	IsFullScreen        *Slice[bool]
	ShowAlertBanner     *Slice[bool]
	ShowColumnFilters   *Slice[bool]
	ShowGlobalFilter    *Slice[bool]
	ShowToolbarDropZone *Slice[bool]

	ColumnFilters    *Slice[[]ColumnFilter]
	GlobalFilter     *Slice[string]
	Sorting          *Slice[[]SortSpec]
	Pagination       *Slice[Pagination]
	Expanded         *Slice[Expanded]
	RowSelection     *Slice[map[string]bool]
	ColumnVisibility *Slice[map[string]bool]

	IsLoading     *Slice[bool]
	ShowSkeletons *Slice[bool]

	registry map[string]slice
	names    []string
	changed  func(name string)
}

func register[T any](s *StateStore, name string, initial T) *Slice[T] {
	sl := &Slice[T]{name: name, value: initial, changed: s.notify}
	s.registry[name] = sl
	s.names = append(s.names, name)
	return sl
}

// newStateStore seeds every slice from a fully defaulted initial state.
func newStateStore(seed State, changed func(name string)) *StateStore {
	s := &StateStore{registry: make(map[string]slice), changed: changed}

	s.ColumnFilterFns = register(s, "columnFilterFns", seed.ColumnFilterFns)
	s.ColumnOrder = register(s, "columnOrder", seed.ColumnOrder)
	s.Density = register(s, "density", seed.Density)
	s.DraggingColumn = register(s, "draggingColumn", seed.DraggingColumn)
	s.DraggingRow = register(s, "draggingRow", seed.DraggingRow)
	s.EditingCell = register(s, "editingCell", seed.EditingCell)
	s.EditingRow = register(s, "editingRow", seed.EditingRow)
	s.GlobalFilterFn = register(s, "globalFilterFn", seed.GlobalFilterFn)
	s.Grouping = register(s, "grouping", seed.Grouping)
	s.HoveredColumn = register(s, "hoveredColumn", seed.HoveredColumn)
	s.HoveredRow = register(s, "hoveredRow", seed.HoveredRow)
	s.IsFullScreen = register(s, "isFullScreen", seed.IsFullScreen)
	s.ShowAlertBanner = register(s, "showAlertBanner", seed.ShowAlertBanner)
	s.ShowColumnFilters = register(s, "showColumnFilters", seed.ShowColumnFilters)
	s.ShowGlobalFilter = register(s, "showGlobalFilter", seed.ShowGlobalFilter)
	s.ShowToolbarDropZone = register(s, "showToolbarDropZone", seed.ShowToolbarDropZone)

	s.ColumnFilters = register(s, "columnFilters", seed.ColumnFilters)
	s.GlobalFilter = register(s, "globalFilter", seed.GlobalFilter)
	s.Sorting = register(s, "sorting", seed.Sorting)
	s.Pagination = register(s, "pagination", seed.Pagination)
	s.Expanded = register(s, "expanded", seed.Expanded)
	s.RowSelection = register(s, "rowSelection", seed.RowSelection)
	s.ColumnVisibility = register(s, "columnVisibility", seed.ColumnVisibility)

	s.IsLoading = register(s, "isLoading", seed.IsLoading)
	s.ShowSkeletons = register(s, "showSkeletons", seed.ShowSkeletons)
	return s
}

func (s *StateStore) notify(name string) {
	if s.changed != nil {
		s.changed(name)
	}
}

// bind installs this evaluation's overrides and callbacks.
func (s *StateStore) bind(o StateOverride, h Handlers) {
	s.ColumnFilterFns.bind(o.ColumnFilterFns, h.OnColumnFilterFnsChange)
	s.ColumnOrder.bind(o.ColumnOrder, h.OnColumnOrderChange)
	s.Density.bind(o.Density, h.OnDensityChange)
	s.DraggingColumn.bind(o.DraggingColumn, h.OnDraggingColumnChange)
	s.DraggingRow.bind(o.DraggingRow, h.OnDraggingRowChange)
	s.EditingCell.bind(o.EditingCell, h.OnEditingCellChange)
	s.EditingRow.bind(o.EditingRow, h.OnEditingRowChange)
	s.GlobalFilterFn.bind(o.GlobalFilterFn, h.OnGlobalFilterFnChange)
	s.Grouping.bind(o.Grouping, h.OnGroupingChange)
	s.HoveredColumn.bind(o.HoveredColumn, h.OnHoveredColumnChange)
	s.HoveredRow.bind(o.HoveredRow, h.OnHoveredRowChange)
	s.IsFullScreen.bind(o.IsFullScreen, h.OnIsFullScreenChange)
	s.ShowAlertBanner.bind(o.ShowAlertBanner, h.OnShowAlertBannerChange)
	s.ShowColumnFilters.bind(o.ShowColumnFilters, h.OnShowColumnFiltersChange)
	s.ShowGlobalFilter.bind(o.ShowGlobalFilter, h.OnShowGlobalFilterChange)
	s.ShowToolbarDropZone.bind(o.ShowToolbarDropZone, h.OnShowToolbarDropZoneChange)

	s.ColumnFilters.bind(o.ColumnFilters, h.OnColumnFiltersChange)
	s.GlobalFilter.bind(o.GlobalFilter, h.OnGlobalFilterChange)
	s.Sorting.bind(o.Sorting, h.OnSortingChange)
	s.Pagination.bind(o.Pagination, h.OnPaginationChange)
	s.Expanded.bind(o.Expanded, h.OnExpandedChange)
	s.RowSelection.bind(o.RowSelection, h.OnRowSelectionChange)
	s.ColumnVisibility.bind(o.ColumnVisibility, h.OnColumnVisibilityChange)

	// host-only flags have no callbacks
	s.IsLoading.bind(o.IsLoading, nil)
	s.ShowSkeletons.bind(o.ShowSkeletons, nil)
}

// Snapshot reads the effective value of every slice.
func (s *StateStore) Snapshot() State {
	return State{
		ColumnFilterFns:     s.ColumnFilterFns.Get(),
		ColumnOrder:         s.ColumnOrder.Get(),
		Density:             s.Density.Get(),
		DraggingColumn:      s.DraggingColumn.Get(),
		DraggingRow:         s.DraggingRow.Get(),
		EditingCell:         s.EditingCell.Get(),
		EditingRow:          s.EditingRow.Get(),
		GlobalFilterFn:      s.GlobalFilterFn.Get(),
		Grouping:            s.Grouping.Get(),
		HoveredColumn:       s.HoveredColumn.Get(),
		HoveredRow:          s.HoveredRow.Get(),
		IsFullScreen:        s.IsFullScreen.Get(),
		ShowAlertBanner:     s.ShowAlertBanner.Get(),
		ShowColumnFilters:   s.ShowColumnFilters.Get(),
		ShowGlobalFilter:    s.ShowGlobalFilter.Get(),
		ShowToolbarDropZone: s.ShowToolbarDropZone.Get(),

		ColumnFilters:    s.ColumnFilters.Get(),
		GlobalFilter:     s.GlobalFilter.Get(),
		Sorting:          s.Sorting.Get(),
		Pagination:       s.Pagination.Get(),
		Expanded:         s.Expanded.Get(),
		RowSelection:     s.RowSelection.Get(),
		ColumnVisibility: s.ColumnVisibility.Get(),

		IsLoading:     s.IsLoading.Get(),
		ShowSkeletons: s.ShowSkeletons.Get(),
	}
}

// Names lists the registered slice names in declaration order.
func (s *StateStore) Names() []string {
	return append([]string(nil), s.names...)
}

// Get reads a slice by name.
func (s *StateStore) Get(name string) (any, error) {
	sl, ok := s.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlice, name)
	}
	return sl.getAny(), nil
}

// SetSlice writes a slice by name. The value must have the slice's type.
func (s *StateStore) SetSlice(name string, value any) error {
	sl, ok := s.registry[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlice, name)
	}
	return sl.setAny(value)
}

// Controlled reports whether the named slice routes writes to the host.
func (s *StateStore) Controlled(name string) bool {
	sl, ok := s.registry[name]
	return ok && sl.Controlled()
}

// seedState fills every unset field of the configured initial state with
// its default.
func seedState(opts Options) State {
	seed := opts.InitialState

	if seed.ColumnOrder == nil {
		seed.ColumnOrder = DefaultColumnOrder(opts)
	} else {
		seed.ColumnOrder = append([]string(nil), seed.ColumnOrder...)
	}
	seed.ColumnFilterFns = defaultColumnFilterFns(opts.Columns, seed.ColumnFilterFns)
	if seed.Density == "" {
		seed.Density = DensityComfortable
	}
	switch {
	case opts.GlobalFilterFn != "":
		seed.GlobalFilterFn = opts.GlobalFilterFn
	case seed.GlobalFilterFn == "":
		seed.GlobalFilterFn = rowmodel.FuzzyFilter
	}
	if seed.Grouping == nil {
		seed.Grouping = []string{}
	}
	if seed.Pagination.PageSize == 0 {
		seed.Pagination.PageSize = rowmodel.DefaultPageSize
	}
	if seed.RowSelection == nil {
		seed.RowSelection = map[string]bool{}
	}
	if seed.ColumnVisibility == nil {
		seed.ColumnVisibility = map[string]bool{}
	}
	return seed
}

// defaultColumnFilterFns picks each leaf column's starting filter
// function: an explicit function, then an explicit name, then the
// initial-state entry, then the default for its type.
func defaultColumnFilterFns(columns []ColumnDef, initial map[string]string) map[string]string {
	out := make(map[string]string)
	for _, c := range LeafColumns(columns) {
		id := ColumnID(c)
		switch {
		case c.FilterFunc != nil:
			out[id] = explicitFilterName(c)
		case c.FilterFn != "":
			out[id] = c.FilterFn
		case initial[id] != "":
			out[id] = initial[id]
		default:
			out[id] = DefaultFilterFn(c)
		}
	}
	return out
}

func explicitFilterName(c ColumnDef) string {
	if c.FilterFnName != "" {
		return c.FilterFnName
	}
	return CustomFilter
}
