package grid

import (
	"strconv"
	"strings"

	"github.com/imgajeed76/gridcore/internal/rowmodel"
)

// ColumnKind separates data columns from synthesized control columns.
type ColumnKind int

const (
	KindData ColumnKind = iota
	KindControl
)

// ControlKind names a control column. Its value is the column id.
type ControlKind string

const (
	ControlDrag       ControlKind = "grid-row-drag"
	ControlRowActions ControlKind = "grid-row-actions"
	ControlExpand     ControlKind = "grid-row-expand"
	ControlSelect     ControlKind = "grid-row-select"
	ControlRowNumbers ControlKind = "grid-row-numbers"
)

// controlKinds is the fixed emission order.
var controlKinds = []ControlKind{ControlDrag, ControlRowActions, ControlExpand, ControlSelect, ControlRowNumbers}

// IsControlColumn reports whether id is one of the control column ids.
func IsControlColumn(id string) bool {
	for _, k := range controlKinds {
		if string(k) == id {
			return true
		}
	}
	return false
}

// DataType drives default filter and sort functions.
type DataType string

const (
	TypeString DataType = "string"
	TypeNumber DataType = "number"
	TypeBool   DataType = "bool"
	TypeDate   DataType = "date"
)

// FilterVariant is the kind of filter input a column offers.
type FilterVariant string

const (
	VariantText        FilterVariant = "text"
	VariantSelect      FilterVariant = "select"
	VariantMultiSelect FilterVariant = "multi-select"
	VariantRange       FilterVariant = "range"
	VariantCheckbox    FilterVariant = "checkbox"
)

// CustomFilter is the state name of a column's explicit filter function.
const CustomFilter = "custom"

// CellContext is handed to cell renderers.
type CellContext struct {
	Row      *rowmodel.Row
	Column   *ColumnDef
	Value    any
	Instance *Instance
}

// HeaderContext is handed to header renderers.
type HeaderContext struct {
	Column   *ColumnDef
	Instance *Instance
}

// ColumnDef describes one column. Columns with nested Columns are group
// columns; the leaves are the data columns.
type ColumnDef struct {
	ID          string
	AccessorKey string
	Accessor    func(Record) any
	Header      string
	HeaderCell  func(HeaderContext) string
	Cell        func(CellContext) string
	Size        int

	Kind    ColumnKind
	Control ControlKind

	DataType      DataType
	FilterVariant FilterVariant
	FilterFn      string
	FilterFunc    rowmodel.FilterFunc
	FilterFnName  string
	SortFn        string
	AggregationFn string

	EnableSorting      *bool
	EnableColumnFilter *bool
	EnableGlobalFilter *bool
	EnableGrouping     *bool
	EnableHiding       *bool

	Columns []ColumnDef

	filter         rowmodel.FilterFunc
	activeFilterFn string
}

// ActiveFilterFn is the filter function name resolved for this evaluation.
func (c ColumnDef) ActiveFilterFn() string { return c.activeFilterFn }

// IsControl reports whether the column was synthesized.
func (c ColumnDef) IsControl() bool { return c.Kind == KindControl }

// CanGroup reports whether rows may be grouped by the column.
func (c ColumnDef) CanGroup(f Features) bool {
	return f.EnableGrouping && !c.IsControl() && enabled(c.EnableGrouping, true)
}

// CanHide reports whether the column may be hidden.
func (c ColumnDef) CanHide(f Features) bool {
	return f.EnableHiding && !c.IsControl() && enabled(c.EnableHiding, true)
}

func enabled(flag *bool, def bool) bool {
	if flag == nil {
		return def
	}
	return *flag
}

// ColumnID derives a column's id: explicit id, else accessor key, else
// header.
func ColumnID(c ColumnDef) string {
	switch {
	case c.ID != "":
		return c.ID
	case c.AccessorKey != "":
		return c.AccessorKey
	}
	return c.Header
}

// LeafColumns flattens group columns depth-first.
func LeafColumns(defs []ColumnDef) []ColumnDef {
	var out []ColumnDef
	for _, d := range defs {
		if len(d.Columns) > 0 {
			out = append(out, LeafColumns(d.Columns)...)
			continue
		}
		out = append(out, d)
	}
	return out
}

// DefaultFilterFn is the filter function a column gets from its variant
// or data type.
func DefaultFilterFn(c ColumnDef) string {
	switch c.FilterVariant {
	case VariantMultiSelect:
		return "arrIncludesSome"
	case VariantRange:
		return "betweenInclusive"
	case VariantSelect, VariantCheckbox:
		return "equals"
	}
	switch c.DataType {
	case TypeBool, TypeNumber, TypeDate:
		return "equals"
	}
	return rowmodel.FuzzyFilter
}

func accessorFor(c ColumnDef) func(Record) any {
	if c.Accessor != nil {
		return c.Accessor
	}
	key := c.AccessorKey
	if key == "" {
		key = ColumnID(c)
	}
	if !strings.Contains(key, ".") {
		return func(r Record) any { return r[key] }
	}
	path := strings.Split(key, ".")
	return func(r Record) any {
		var cur any = r
		for _, p := range path {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[p]
		}
		return cur
	}
}

// DefaultColumnOrder is the starting display order: eligible control ids
// around the leaf data column ids.
func DefaultColumnOrder(opts Options) []string {
	f := opts.Features
	actions := f.EnableRowActions || (f.EnableEditing && f.EditingMode == EditingRow)
	var order []string
	if f.EnableRowDragging || f.EnableRowOrdering {
		order = append(order, string(ControlDrag))
	}
	if actions && f.PositionActionsColumn != ActionsLast {
		order = append(order, string(ControlRowActions))
	}
	if f.EnableExpanding || f.EnableGrouping || opts.RenderDetailPanel != nil {
		order = append(order, string(ControlExpand))
	}
	if f.EnableRowSelection {
		order = append(order, string(ControlSelect))
	}
	if f.EnableRowNumbers {
		order = append(order, string(ControlRowNumbers))
	}
	for _, c := range LeafColumns(opts.Columns) {
		order = append(order, ColumnID(c))
	}
	if actions && f.PositionActionsColumn == ActionsLast {
		order = append(order, string(ControlRowActions))
	}
	return order
}

type synthInput struct {
	columnOrder    []string
	grouping       []string
	features       Features
	localization   Localization
	defaultDisplay *ColumnDef
	overrides      map[string]ColumnDef
	detailPanel    bool
	rowActions     func(*rowmodel.Row) string
}

// synthesizeControls emits the control columns listed in the column order.
func synthesizeControls(in synthInput) []ColumnDef {
	listed := make(map[string]bool, len(in.columnOrder))
	for _, id := range in.columnOrder {
		listed[id] = true
	}
	f := in.features
	loc := in.localization

	var out []ColumnDef
	for _, kind := range controlKinds {
		id := string(kind)
		if !listed[id] {
			continue
		}
		var def ColumnDef
		switch kind {
		case ControlDrag:
			def = ColumnDef{Header: loc.Move, Size: 60, Cell: func(CellContext) string { return "≡" }}
		case ControlRowActions:
			actions := in.rowActions
			def = ColumnDef{Header: loc.Actions, Size: 70, Cell: func(ctx CellContext) string {
				if actions != nil {
					return actions(ctx.Row)
				}
				return "⋯"
			}}
		case ControlExpand:
			expandable := f.EnableExpanding ||
				(f.EnableGrouping && len(in.grouping) > 0) ||
				in.detailPanel
			if !expandable {
				continue
			}
			def = ColumnDef{Header: loc.Expand, Size: 60, Cell: expandCell(in.detailPanel)}
			if f.EnableExpandAll {
				def.HeaderCell = expandAllHeader
			}
		case ControlSelect:
			def = ColumnDef{Header: loc.Select, Size: 60, Cell: selectCell}
			if f.EnableSelectAll && f.EnableMultiRowSelection {
				def.HeaderCell = selectAllHeader
			}
		case ControlRowNumbers:
			def = ColumnDef{Header: loc.RowNumbers, Size: 60, Cell: rowNumberCell}
			header := loc.RowNumber
			def.HeaderCell = func(HeaderContext) string { return header }
		}
		def.Kind = KindControl
		def.Control = kind
		def.EnableSorting = new(bool)
		def.EnableColumnFilter = new(bool)
		def.EnableGlobalFilter = new(bool)
		def.EnableGrouping = new(bool)
		if in.defaultDisplay != nil {
			def = mergeColumnDef(def, *in.defaultDisplay)
		}
		if o, ok := in.overrides[id]; ok {
			def = mergeColumnDef(def, o)
		}
		def.ID = id
		def.Kind = KindControl
		def.Control = kind
		out = append(out, def)
	}
	return out
}

func expandCell(detailPanel bool) func(CellContext) string {
	return func(ctx CellContext) string {
		if ctx.Row == nil || (!ctx.Row.CanExpand() && !detailPanel) {
			return ""
		}
		if ctx.Instance != nil && ctx.Instance.state.Expanded.IsExpanded(ctx.Row.ID) {
			return "▾"
		}
		return "▸"
	}
}

func expandAllHeader(ctx HeaderContext) string {
	if ctx.Instance != nil && ctx.Instance.state.Expanded.All {
		return "⊟"
	}
	return "⊞"
}

func selectCell(ctx CellContext) string {
	if ctx.Row != nil && ctx.Instance != nil && ctx.Instance.state.RowSelection[ctx.Row.ID] {
		return "[x]"
	}
	return "[ ]"
}

func selectAllHeader(ctx HeaderContext) string {
	if ctx.Instance != nil && ctx.Instance.AllPageRowsSelected() {
		return "[x]"
	}
	return "[ ]"
}

func rowNumberCell(ctx CellContext) string {
	if ctx.Row == nil {
		return ""
	}
	return strconv.Itoa(ctx.Row.Index + 1)
}

// mergeColumnDef overlays the set fields of src onto dst.
func mergeColumnDef(dst, src ColumnDef) ColumnDef {
	if src.ID != "" {
		dst.ID = src.ID
	}
	if src.AccessorKey != "" {
		dst.AccessorKey = src.AccessorKey
	}
	if src.Accessor != nil {
		dst.Accessor = src.Accessor
	}
	if src.Header != "" {
		dst.Header = src.Header
	}
	if src.HeaderCell != nil {
		dst.HeaderCell = src.HeaderCell
	}
	if src.Cell != nil {
		dst.Cell = src.Cell
	}
	if src.Size != 0 {
		dst.Size = src.Size
	}
	if src.DataType != "" {
		dst.DataType = src.DataType
	}
	if src.FilterVariant != "" {
		dst.FilterVariant = src.FilterVariant
	}
	if src.FilterFn != "" {
		dst.FilterFn = src.FilterFn
	}
	if src.FilterFunc != nil {
		dst.FilterFunc = src.FilterFunc
		dst.FilterFnName = src.FilterFnName
	}
	if src.SortFn != "" {
		dst.SortFn = src.SortFn
	}
	if src.AggregationFn != "" {
		dst.AggregationFn = src.AggregationFn
	}
	if src.EnableSorting != nil {
		dst.EnableSorting = src.EnableSorting
	}
	if src.EnableColumnFilter != nil {
		dst.EnableColumnFilter = src.EnableColumnFilter
	}
	if src.EnableGlobalFilter != nil {
		dst.EnableGlobalFilter = src.EnableGlobalFilter
	}
	if src.EnableGrouping != nil {
		dst.EnableGrouping = src.EnableGrouping
	}
	if src.EnableHiding != nil {
		dst.EnableHiding = src.EnableHiding
	}
	return dst
}

type prepareInput struct {
	columnFilterFns map[string]string
	filterFns       map[string]rowmodel.FilterFunc
}

// prepareColumns derives ids and resolves each data column's active
// filter function. Control columns come first.
func prepareColumns(controls, user []ColumnDef, in prepareInput) []ColumnDef {
	out := make([]ColumnDef, 0, len(controls)+len(user))
	out = append(out, controls...)
	return append(out, prepareData(user, in)...)
}

func prepareData(defs []ColumnDef, in prepareInput) []ColumnDef {
	out := make([]ColumnDef, len(defs))
	for i, def := range defs {
		def.ID = ColumnID(def)
		def.Kind = KindData
		if len(def.Columns) > 0 {
			def.Columns = prepareData(def.Columns, in)
			out[i] = def
			continue
		}
		def.filter, def.activeFilterFn = resolveFilter(def, in)
		out[i] = def
	}
	return out
}

func resolveFilter(def ColumnDef, in prepareInput) (rowmodel.FilterFunc, string) {
	if def.FilterFunc != nil {
		return def.FilterFunc, explicitFilterName(def)
	}
	name := in.columnFilterFns[def.ID]
	if name == "" || name == CustomFilter {
		name = def.FilterFn
	}
	if name == "" {
		name = DefaultFilterFn(def)
	}
	if fn, ok := rowmodel.LookupFilter(name, in.filterFns); ok {
		return fn, name
	}
	return rowmodel.Fuzzy, rowmodel.FuzzyFilter
}

// engineColumns turns prepared data leaves into row-model columns.
func engineColumns(prepared []ColumnDef, f Features) []rowmodel.Column {
	var out []rowmodel.Column
	for _, def := range LeafColumns(prepared) {
		if def.IsControl() {
			continue
		}
		col := rowmodel.Column{
			ID:              def.ID,
			Accessor:        accessorFor(def),
			Filter:          def.filter,
			CanFilter:       (f.EnableFilters || f.EnableColumnFilters) && enabled(def.EnableColumnFilter, true),
			CanGlobalFilter: (f.EnableFilters || f.EnableGlobalFilter) && enabled(def.EnableGlobalFilter, true),
			CanSort:         f.EnableSorting && enabled(def.EnableSorting, true),
			CanGroup:        def.CanGroup(f),
		}
		if fn, ok := rowmodel.LookupSort(sortName(def)); ok {
			col.Sort = fn
		}
		if def.AggregationFn != "" {
			col.Aggregate, _ = rowmodel.LookupAggregation(def.AggregationFn)
		}
		out = append(out, col)
	}
	return out
}

func sortName(def ColumnDef) string {
	if def.SortFn != "" {
		return def.SortFn
	}
	if def.DataType == TypeDate {
		return "datetime"
	}
	return "basic"
}
