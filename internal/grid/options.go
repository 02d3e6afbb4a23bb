// Package grid is the state-and-pipeline orchestrator of a data grid. A
// Table owns the view state, synthesizes control columns, resolves the
// dataset, composes the row-model pipeline and assembles one Instance per
// evaluation for a presentation layer to render.
//
// A Table is single-threaded: setters, SetOptions and Evaluate must be
// called from one goroutine (the presentation loop).
package grid

import (
	"log/slog"

	"github.com/imgajeed76/gridcore/internal/rowmodel"
)

// Record is one source row.
type Record = rowmodel.Record

// Opt is an optional value. A valid Opt in StateOverride makes the slice
// host-controlled for that evaluation.
type Opt[T any] struct {
	Valid bool
	Value T
}

// Some wraps a value as a set Opt.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Valid: true, Value: v}
}

// Density is the row spacing mode.
type Density string

const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
	DensitySpacious    Density = "spacious"
)

// Next cycles comfortable → compact → spacious → comfortable.
func (d Density) Next() Density {
	switch d {
	case DensityComfortable:
		return DensityCompact
	case DensityCompact:
		return DensitySpacious
	}
	return DensityComfortable
}

// EditingMode selects how rows are edited.
type EditingMode string

const (
	EditingModal EditingMode = "modal"
	EditingRow   EditingMode = "row"
	EditingCell  EditingMode = "cell"
	EditingTable EditingMode = "table"
)

// ActionsPosition places the row-actions column.
type ActionsPosition string

const (
	ActionsFirst ActionsPosition = "first"
	ActionsLast  ActionsPosition = "last"
)

// Features are the capability flags of a table.
type Features struct {
	EnableColumnDragging    bool
	EnableColumnFilterModes bool
	EnableColumnFilters     bool
	EnableColumnOrdering    bool
	EnableEditing           bool
	EnableExpandAll         bool
	EnableExpanding         bool
	EnableFacetedValues     bool
	EnableFilters           bool
	EnableGlobalFilter      bool
	EnableGrouping          bool
	EnableHiding            bool
	EnableMultiRowSelection bool
	EnablePagination        bool
	EnableRowActions        bool
	EnableRowDragging       bool
	EnableRowNumbers        bool
	EnableRowOrdering       bool
	EnableRowSelection      bool
	EnableSelectAll         bool
	EnableSorting           bool

	EditingMode           EditingMode
	PositionActionsColumn ActionsPosition
}

// DefaultFeatures returns the flags a table starts with when the caller
// does not say otherwise.
func DefaultFeatures() Features {
	return Features{
		EnableColumnFilters:     true,
		EnableExpandAll:         true,
		EnableFilters:           true,
		EnableGlobalFilter:      true,
		EnableHiding:            true,
		EnableMultiRowSelection: true,
		EnablePagination:        true,
		EnableSelectAll:         true,
		EnableSorting:           true,
		EditingMode:             EditingModal,
		PositionActionsColumn:   ActionsFirst,
	}
}

// Localization holds the user-facing strings the orchestrator produces.
type Localization struct {
	Actions            string
	Expand             string
	ExpandAll          string
	Move               string
	RowNumber          string
	RowNumbers         string
	Select             string
	SelectAll          string
	Loading            string
	NoRecordsToDisplay string
}

// DefaultLocalization is the English string table.
func DefaultLocalization() Localization {
	return Localization{
		Actions:            "Actions",
		Expand:             "Expand",
		ExpandAll:          "Expand all",
		Move:               "Move",
		RowNumber:          "#",
		RowNumbers:         "Row Numbers",
		Select:             "Select",
		SelectAll:          "Select all",
		Loading:            "Loading",
		NoRecordsToDisplay: "No records to display",
	}
}

// withDefaults fills blank strings from the English table.
func (l Localization) withDefaults() Localization {
	d := DefaultLocalization()
	fill := func(s *string, def string) {
		if *s == "" {
			*s = def
		}
	}
	fill(&l.Actions, d.Actions)
	fill(&l.Expand, d.Expand)
	fill(&l.ExpandAll, d.ExpandAll)
	fill(&l.Move, d.Move)
	fill(&l.RowNumber, d.RowNumber)
	fill(&l.RowNumbers, d.RowNumbers)
	fill(&l.Select, d.Select)
	fill(&l.SelectAll, d.SelectAll)
	fill(&l.Loading, d.Loading)
	fill(&l.NoRecordsToDisplay, d.NoRecordsToDisplay)
	return l
}

// Handlers are host callbacks, one per state slice. A non-nil handler
// makes the slice's setter call the handler instead of updating internal
// state.
type Handlers struct {
	OnColumnFilterFnsChange     func(map[string]string)
	OnColumnOrderChange         func([]string)
	OnDensityChange             func(Density)
	OnDraggingColumnChange      func(*ColumnRef)
	OnDraggingRowChange         func(*RowRef)
	OnEditingCellChange         func(*CellRef)
	OnEditingRowChange          func(*RowRef)
	OnGlobalFilterFnChange      func(string)
	OnGroupingChange            func([]string)
	OnHoveredColumnChange       func(*ColumnRef)
	OnHoveredRowChange          func(*RowRef)
	OnIsFullScreenChange        func(bool)
	OnShowAlertBannerChange     func(bool)
	OnShowColumnFiltersChange   func(bool)
	OnShowGlobalFilterChange    func(bool)
	OnShowToolbarDropZoneChange func(bool)

	OnColumnFiltersChange    func([]ColumnFilter)
	OnGlobalFilterChange     func(string)
	OnSortingChange          func([]SortSpec)
	OnPaginationChange       func(Pagination)
	OnExpandedChange         func(Expanded)
	OnRowSelectionChange     func(map[string]bool)
	OnColumnVisibilityChange func(map[string]bool)
}

// StateOverride carries host-controlled slice values for one evaluation.
type StateOverride struct {
	ColumnFilterFns     Opt[map[string]string]
	ColumnOrder         Opt[[]string]
	Density             Opt[Density]
	DraggingColumn      Opt[*ColumnRef]
	DraggingRow         Opt[*RowRef]
	EditingCell         Opt[*CellRef]
	EditingRow          Opt[*RowRef]
	GlobalFilterFn      Opt[string]
	Grouping            Opt[[]string]
	HoveredColumn       Opt[*ColumnRef]
	HoveredRow          Opt[*RowRef]
	IsFullScreen        Opt[bool]
	ShowAlertBanner     Opt[bool]
	ShowColumnFilters   Opt[bool]
	ShowGlobalFilter    Opt[bool]
	ShowToolbarDropZone Opt[bool]

	ColumnFilters    Opt[[]ColumnFilter]
	GlobalFilter     Opt[string]
	Sorting          Opt[[]SortSpec]
	Pagination       Opt[Pagination]
	Expanded         Opt[Expanded]
	RowSelection     Opt[map[string]bool]
	ColumnVisibility Opt[map[string]bool]

	IsLoading     Opt[bool]
	ShowSkeletons Opt[bool]
}

// InstanceRef is an output slot the assembled instance is written to once
// per evaluation. The instance stored there is a caller-owned snapshot.
type InstanceRef struct {
	Current *Instance
}

// Options is the declarative configuration of a table.
type Options struct {
	Columns []ColumnDef
	Data    []Record
	// RowCount overrides the pre-pagination row count, for data paged
	// by the host.
	RowCount Opt[int]

	Features     Features
	State        StateOverride
	Handlers     Handlers
	InitialState State
	Localization Localization

	Plugins     []Plugin
	InstanceRef *InstanceRef

	DefaultDisplayColumn    *ColumnDef
	DisplayColumnDefOptions map[string]ColumnDef

	FilterFns      map[string]rowmodel.FilterFunc
	GlobalFilterFn string
	GetSubRows     rowmodel.SubRowsFunc

	RenderDetailPanel func(row *rowmodel.Row) string
	RenderRowActions  func(row *rowmodel.Row) string

	// Surface is the ambient presentation surface whose height fullscreen
	// mode takes over. Nil disables the fullscreen effect.
	Surface Surface
	Logger  *slog.Logger
	// OnInvalidate is called when internal state changes and the table
	// needs a fresh evaluation.
	OnInvalidate func()
}
