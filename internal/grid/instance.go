package grid

import (
	"fmt"
	"maps"
	"slices"

	"github.com/imgajeed76/gridcore/internal/rowmodel"
)

// Ref is a mutable handle a presentation layer attaches to one of its
// elements. The orchestrator creates the handles; it never reads them.
type Ref struct {
	Current any
}

// Refs are the scoped element handles shared by every instance of a table.
type Refs struct {
	BottomToolbar  *Ref
	EditInputs     map[string]*Ref
	FilterInputs   map[string]*Ref
	SearchInput    *Ref
	TableContainer *Ref
	TableHeadCells map[string]*Ref
	TablePaper     *Ref
	TopToolbar     *Ref
}

func newRefs() *Refs {
	return &Refs{
		BottomToolbar:  &Ref{},
		EditInputs:     make(map[string]*Ref),
		FilterInputs:   make(map[string]*Ref),
		SearchInput:    &Ref{},
		TableContainer: &Ref{},
		TableHeadCells: make(map[string]*Ref),
		TablePaper:     &Ref{},
		TopToolbar:     &Ref{},
	}
}

// Fields are the extension values a plugin adds to an instance.
type Fields map[string]any

// Plugin derives extension fields from the instance assembled so far.
type Plugin func(inst *Instance) Fields

// Instance is the assembled table for one evaluation: a state snapshot,
// the prepared columns, the row models and setters routed through the
// state store. Reads are stable for the lifetime of the value; setters
// request a new evaluation.
type Instance struct {
	ID         string
	TableID    string
	Evaluation int
	Refs       *Refs

	state        State
	options      *Options
	localization Localization
	columns      []ColumnDef
	leaves       []ColumnDef
	rows         *RowModels
	store        *StateStore
	extensions   Fields
}

// State returns the effective state snapshot.
func (i *Instance) State() State { return i.state }

// Options returns the options the instance was assembled from.
func (i *Instance) Options() Options { return *i.options }

func (i *Instance) Localization() Localization { return i.localization }

// AllColumns returns the prepared columns, control columns first.
func (i *Instance) AllColumns() []ColumnDef { return i.columns }

// LeafColumns returns the prepared leaf columns.
func (i *Instance) LeafColumns() []ColumnDef { return i.leaves }

// Column finds a prepared leaf column by id.
func (i *Instance) Column(id string) (ColumnDef, bool) {
	for _, c := range i.leaves {
		if c.ID == id {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// VisibleColumns returns the leaf columns in display order: columnOrder
// first, leaves it does not mention after, hidden columns dropped. Ids in
// columnOrder that name no column are skipped.
func (i *Instance) VisibleColumns() []ColumnDef {
	byID := make(map[string]ColumnDef, len(i.leaves))
	for _, c := range i.leaves {
		byID[c.ID] = c
	}
	seen := make(map[string]bool, len(i.leaves))
	out := make([]ColumnDef, 0, len(i.leaves))
	add := func(c ColumnDef) {
		if seen[c.ID] {
			return
		}
		seen[c.ID] = true
		if v, ok := i.state.ColumnVisibility[c.ID]; ok && !v {
			return
		}
		out = append(out, c)
	}
	for _, id := range i.state.ColumnOrder {
		if c, ok := byID[id]; ok {
			add(c)
		}
	}
	for _, c := range i.leaves {
		add(c)
	}
	return out
}

func (i *Instance) RowModels() *RowModels { return i.rows }

// RowModel is the final model a presentation layer renders.
func (i *Instance) RowModel() *rowmodel.Model              { return i.rows.Final() }
func (i *Instance) CoreRowModel() *rowmodel.Model          { return i.rows.Core() }
func (i *Instance) PreFilteredRowModel() *rowmodel.Model   { return i.rows.Core() }
func (i *Instance) FilteredRowModel() *rowmodel.Model      { return i.rows.Filtered() }
func (i *Instance) GroupedRowModel() *rowmodel.Model       { return i.rows.Grouped() }
func (i *Instance) SortedRowModel() *rowmodel.Model        { return i.rows.Sorted() }
func (i *Instance) PrePaginationRowModel() *rowmodel.Model { return i.rows.PrePagination() }
func (i *Instance) PaginationRowModel() *rowmodel.Model    { return i.rows.Paginated() }

// FacetedRowModel is the model a column's filter input draws options from.
func (i *Instance) FacetedRowModel(columnID string) *rowmodel.Model {
	return i.rows.Faceted(columnID)
}

// FacetedUniqueValues counts a column's values under every other filter.
// Empty when faceting is disabled.
func (i *Instance) FacetedUniqueValues(columnID string) map[any]int {
	if !i.options.Features.EnableFacetedValues {
		return map[any]int{}
	}
	return rowmodel.UniqueValues(i.rows.Faceted(columnID), columnID)
}

// FacetedMinMax is a column's numeric range under every other filter.
func (i *Instance) FacetedMinMax(columnID string) (lo, hi float64, ok bool) {
	if !i.options.Features.EnableFacetedValues {
		return 0, 0, false
	}
	return rowmodel.MinMax(i.rows.Faceted(columnID), columnID)
}

// RowCount is the number of rows before pagination, or the host override.
func (i *Instance) RowCount() int {
	if i.options.RowCount.Valid {
		return i.options.RowCount.Value
	}
	return i.rows.PrePagination().Len()
}

func (i *Instance) PageCount() int {
	return rowmodel.PageCount(i.RowCount(), i.state.Pagination.PageSize)
}

func (i *Instance) CanPreviousPage() bool { return i.state.Pagination.PageIndex > 0 }

func (i *Instance) CanNextPage() bool { return i.state.Pagination.PageIndex+1 < i.PageCount() }

// Loading reports whether placeholders are being shown.
func (i *Instance) Loading() bool { return i.state.IsLoading || i.state.ShowSkeletons }

// Row finds any row of the core or grouped model by id.
func (i *Instance) Row(id string) (*rowmodel.Row, bool) {
	if r, ok := i.rows.Final().Row(id); ok {
		return r, true
	}
	return i.rows.Core().Row(id)
}

// HeaderText renders a column header.
func (i *Instance) HeaderText(c ColumnDef) string {
	if c.HeaderCell != nil {
		return c.HeaderCell(HeaderContext{Column: &c, Instance: i})
	}
	if c.Header != "" {
		return c.Header
	}
	return c.ID
}

// CellText renders one cell. Group rows show the grouped value with its
// leaf count in the grouping column.
func (i *Instance) CellText(row *rowmodel.Row, c ColumnDef) string {
	v := row.Value(c.ID)
	if c.Cell != nil {
		return c.Cell(CellContext{Row: row, Column: &c, Value: v, Instance: i})
	}
	if row.IsGrouped() && row.GroupingColumnID == c.ID {
		return fmt.Sprintf("%s (%d)", rowmodel.ToString(v), len(row.LeafRows))
	}
	return rowmodel.ToString(v)
}

// DetailPanel renders a row's detail panel, if configured.
func (i *Instance) DetailPanel(row *rowmodel.Row) (string, bool) {
	if i.options.RenderDetailPanel == nil || row == nil {
		return "", false
	}
	return i.options.RenderDetailPanel(row), true
}

// SelectedRowIDs lists the selected row ids in core order.
func (i *Instance) SelectedRowIDs() []string {
	var ids []string
	for _, r := range i.rows.Core().FlatRows {
		if i.state.RowSelection[r.ID] {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// AllPageRowsSelected reports whether the current page is non-empty and
// fully selected.
func (i *Instance) AllPageRowsSelected() bool {
	rows := i.rows.Paginated().Rows
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if !i.state.RowSelection[r.ID] {
			return false
		}
	}
	return true
}

// Extension returns a plugin-provided field.
func (i *Instance) Extension(name string) (any, bool) {
	v, ok := i.extensions[name]
	return v, ok
}

// Extensions returns a copy of every plugin-provided field.
func (i *Instance) Extensions() Fields { return maps.Clone(i.extensions) }

// with returns a copy of the instance carrying the extra fields. The
// receiver is left untouched.
func (i *Instance) with(f Fields) *Instance {
	if len(f) == 0 {
		return i
	}
	next := *i
	next.extensions = make(Fields, len(i.extensions)+len(f))
	maps.Copy(next.extensions, i.extensions)
	maps.Copy(next.extensions, f)
	return &next
}

// applyPlugins folds the plugins over the base instance; each plugin sees
// the fields of the plugins before it.
func applyPlugins(base *Instance, plugins []Plugin) *Instance {
	inst := base
	for _, p := range plugins {
		if p == nil {
			continue
		}
		inst = inst.with(p(inst))
	}
	return inst
}

// Setters. Each goes through the state store: host callback when the
// slice is controlled, internal state otherwise.

func (i *Instance) SetColumnFilterFns(v map[string]string) { i.store.ColumnFilterFns.Set(v) }
func (i *Instance) SetColumnOrder(v []string)               { i.store.ColumnOrder.Set(v) }
func (i *Instance) SetDensity(v Density)                    { i.store.Density.Set(v) }
func (i *Instance) SetDraggingColumn(v *ColumnRef)          { i.store.DraggingColumn.Set(v) }
func (i *Instance) SetDraggingRow(v *RowRef)                { i.store.DraggingRow.Set(v) }
func (i *Instance) SetEditingCell(v *CellRef)               { i.store.EditingCell.Set(v) }
func (i *Instance) SetEditingRow(v *RowRef)                 { i.store.EditingRow.Set(v) }
func (i *Instance) SetGlobalFilterFn(v string)              { i.store.GlobalFilterFn.Set(v) }
func (i *Instance) SetGrouping(v []string)                  { i.store.Grouping.Set(v) }
func (i *Instance) SetHoveredColumn(v *ColumnRef)           { i.store.HoveredColumn.Set(v) }
func (i *Instance) SetHoveredRow(v *RowRef)                 { i.store.HoveredRow.Set(v) }
func (i *Instance) SetIsFullScreen(v bool)                  { i.store.IsFullScreen.Set(v) }
func (i *Instance) SetShowAlertBanner(v bool)               { i.store.ShowAlertBanner.Set(v) }
func (i *Instance) SetShowColumnFilters(v bool)             { i.store.ShowColumnFilters.Set(v) }
func (i *Instance) SetShowGlobalFilter(v bool)              { i.store.ShowGlobalFilter.Set(v) }
func (i *Instance) SetShowToolbarDropZone(v bool)           { i.store.ShowToolbarDropZone.Set(v) }
func (i *Instance) SetColumnFilters(v []ColumnFilter)       { i.store.ColumnFilters.Set(v) }
func (i *Instance) SetSorting(v []SortSpec)                 { i.store.Sorting.Set(v) }
func (i *Instance) SetPagination(v Pagination)              { i.store.Pagination.Set(v) }
func (i *Instance) SetExpanded(v Expanded)                  { i.store.Expanded.Set(v) }
func (i *Instance) SetRowSelection(v map[string]bool)       { i.store.RowSelection.Set(v) }
func (i *Instance) SetColumnVisibility(v map[string]bool)   { i.store.ColumnVisibility.Set(v) }

// SetGlobalFilter sets the search value and returns to the first page.
func (i *Instance) SetGlobalFilter(v string) {
	i.store.GlobalFilter.Set(v)
	i.SetPageIndex(0)
}

// SetSlice writes a slice by name.
func (i *Instance) SetSlice(name string, value any) error {
	return i.store.SetSlice(name, value)
}

func (i *Instance) SetPageIndex(index int) {
	if index < 0 {
		index = 0
	}
	i.store.Pagination.Update(func(p Pagination) Pagination {
		p.PageIndex = index
		return p
	})
}

func (i *Instance) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	i.store.Pagination.Update(func(p Pagination) Pagination {
		return Pagination{PageIndex: p.PageIndex * p.PageSize / size, PageSize: size}
	})
}

func (i *Instance) NextPage() {
	if i.CanNextPage() {
		i.SetPageIndex(i.state.Pagination.PageIndex + 1)
	}
}

func (i *Instance) PreviousPage() {
	if i.CanPreviousPage() {
		i.SetPageIndex(i.state.Pagination.PageIndex - 1)
	}
}

// SetColumnFilter sets or clears (empty value) one column's filter.
func (i *Instance) SetColumnFilter(columnID string, value any) {
	i.store.ColumnFilters.Update(func(fs []ColumnFilter) []ColumnFilter {
		out := make([]ColumnFilter, 0, len(fs)+1)
		for _, f := range fs {
			if f.ID != columnID {
				out = append(out, f)
			}
		}
		if !rowmodel.IsEmpty(value) {
			out = append(out, ColumnFilter{ID: columnID, Value: value})
		}
		return out
	})
}

// ToggleSorting cycles a column through ascending, descending and unsorted.
// With multi false the column replaces any other sort.
func (i *Instance) ToggleSorting(columnID string, multi bool) {
	i.store.Sorting.Update(func(sorting []SortSpec) []SortSpec {
		idx := slices.IndexFunc(sorting, func(s SortSpec) bool { return s.ID == columnID })
		var next []SortSpec
		if multi {
			next = slices.Clone(sorting)
		}
		switch {
		case idx < 0:
			next = append(next, SortSpec{ID: columnID})
		case !sorting[idx].Desc:
			if multi {
				next[idx].Desc = true
			} else {
				next = append(next, SortSpec{ID: columnID, Desc: true})
			}
		default:
			if multi {
				next = slices.Delete(next, idx, idx+1)
			}
		}
		if next == nil {
			next = []SortSpec{}
		}
		return next
	})
}

// ToggleGrouping adds or removes a column from the grouping.
// ToggleGrouping adds or removes a grouping column. Columns that cannot
// group are never added.
func (i *Instance) ToggleGrouping(columnID string) {
	col, ok := i.Column(columnID)
	canGroup := ok && col.CanGroup(i.options.Features)
	i.store.Grouping.Update(func(g []string) []string {
		if idx := slices.Index(g, columnID); idx >= 0 {
			return slices.Delete(slices.Clone(g), idx, idx+1)
		}
		if !canGroup {
			return g
		}
		return append(slices.Clone(g), columnID)
	})
}

func (i *Instance) ToggleExpanded(rowID string) {
	i.store.Expanded.Update(func(e Expanded) Expanded {
		return e.Toggle(rowID, i.rows.Grouped())
	})
}

func (i *Instance) ToggleAllRowsExpanded() {
	i.store.Expanded.Update(func(e Expanded) Expanded {
		if e.All || len(e.IDs) > 0 {
			return Expanded{}
		}
		return Expanded{All: true}
	})
}

// ToggleRowSelected flips one row. Without multi-row selection the row
// replaces the current selection.
func (i *Instance) ToggleRowSelected(rowID string) {
	multi := i.options.Features.EnableMultiRowSelection
	i.store.RowSelection.Update(func(sel map[string]bool) map[string]bool {
		next := make(map[string]bool, len(sel)+1)
		if multi {
			maps.Copy(next, sel)
		}
		if sel[rowID] {
			delete(next, rowID)
		} else {
			next[rowID] = true
		}
		return next
	})
}

// ToggleAllPageRowsSelected selects the current page, or clears it when it
// is already fully selected.
func (i *Instance) ToggleAllPageRowsSelected() {
	all := i.AllPageRowsSelected()
	rows := i.rows.Paginated().Rows
	i.store.RowSelection.Update(func(sel map[string]bool) map[string]bool {
		next := maps.Clone(sel)
		if next == nil {
			next = make(map[string]bool)
		}
		for _, r := range rows {
			if all {
				delete(next, r.ID)
			} else {
				next[r.ID] = true
			}
		}
		return next
	})
}

// ToggleColumnVisibility hides or shows a column. Showing always works;
// hiding needs CanHide.
func (i *Instance) ToggleColumnVisibility(columnID string) {
	col, ok := i.Column(columnID)
	canHide := ok && col.CanHide(i.options.Features)
	i.store.ColumnVisibility.Update(func(vis map[string]bool) map[string]bool {
		next := maps.Clone(vis)
		if next == nil {
			next = make(map[string]bool)
		}
		visible, ok := vis[columnID]
		if (!ok || visible) && !canHide {
			return vis
		}
		next[columnID] = ok && !visible
		return next
	})
}

// ToggleFullScreen flips fullscreen mode.
func (i *Instance) ToggleFullScreen() { i.SetIsFullScreen(!i.state.IsFullScreen) }
