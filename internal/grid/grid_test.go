package grid

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imgajeed76/gridcore/internal/rowmodel"
)

func peopleColumns() []ColumnDef {
	return []ColumnDef{
		{AccessorKey: "name", Header: "Name"},
		{AccessorKey: "age", Header: "Age", DataType: TypeNumber, AggregationFn: "sum"},
		{AccessorKey: "city", Header: "City", FilterVariant: VariantSelect},
	}
}

func people() []Record {
	return []Record{
		{"name": "Alice", "age": 30, "city": "Oslo"},
		{"name": "Bob", "age": 25, "city": "Bergen"},
		{"name": "Carol", "age": 35, "city": "Oslo"},
		{"name": "Dave", "age": nil, "city": "Bergen"},
	}
}

func numbered(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{"name": fmt.Sprintf("row%02d", i), "age": i, "city": "X"}
	}
	return out
}

func baseOptions() Options {
	return Options{
		Columns:  peopleColumns(),
		Data:     people(),
		Features: DefaultFeatures(),
	}
}

func newTable(t *testing.T, opts Options) *Table {
	t.Helper()
	tbl, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(tbl.Close)
	return tbl
}

func columnIDs(cols []ColumnDef) []string {
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}

func rowNames(rows []*rowmodel.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r.Value("name")
	}
	return out
}

type fakeSurface struct {
	height string
	sets   []string
}

func (s *fakeSurface) Height() string { return s.height }

func (s *fakeSurface) SetHeight(h string) {
	s.height = h
	s.sets = append(s.sets, h)
}

func TestDefaultColumnOrder(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowSelection = true
	opts.Features.EnableRowNumbers = true
	opts.Features.EnableExpanding = true

	require.Equal(t,
		[]string{"grid-row-expand", "grid-row-select", "grid-row-numbers", "name", "age", "city"},
		DefaultColumnOrder(opts))
}

func TestDefaultColumnOrder_ActionsPosition(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowDragging = true
	opts.Features.EnableRowActions = true
	require.Equal(t,
		[]string{"grid-row-drag", "grid-row-actions", "name", "age", "city"},
		DefaultColumnOrder(opts))

	opts.Features.PositionActionsColumn = ActionsLast
	require.Equal(t,
		[]string{"grid-row-drag", "name", "age", "city", "grid-row-actions"},
		DefaultColumnOrder(opts))

	// row editing also brings the actions column
	opts.Features.EnableRowActions = false
	opts.Features.EnableEditing = true
	opts.Features.EditingMode = EditingRow
	require.Contains(t, DefaultColumnOrder(opts), "grid-row-actions")
}

func TestEvaluate_ColumnIDsAreUnique(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowSelection = true
	opts.Features.EnableRowNumbers = true
	opts.Features.EnableRowDragging = true
	opts.Features.EnableRowActions = true
	opts.Features.EnableExpanding = true

	inst := newTable(t, opts).Evaluate()
	ids := columnIDs(inst.AllColumns())
	seen := map[string]bool{}
	for _, id := range ids {
		require.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
	require.Equal(t,
		[]string{"grid-row-drag", "grid-row-actions", "grid-row-expand", "grid-row-select", "grid-row-numbers", "name", "age", "city"},
		ids)
}

func TestControlColumns_PresentOnlyWhenListed(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowSelection = true
	opts.Features.EnableRowNumbers = true
	opts.InitialState.ColumnOrder = []string{"grid-row-numbers", "name", "age", "city"}

	inst := newTable(t, opts).Evaluate()
	require.Equal(t, []string{"grid-row-numbers", "name", "age", "city"}, columnIDs(inst.AllColumns()))
}

func TestControlColumns_ExpandNeedsExpandableContent(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.ColumnOrder = []string{"grid-row-expand", "name", "age", "city"}

	inst := newTable(t, opts).Evaluate()
	require.NotContains(t, columnIDs(inst.AllColumns()), "grid-row-expand")

	// grouping enabled but nothing grouped yet
	opts.Features.EnableGrouping = true
	tbl := newTable(t, opts)
	require.NotContains(t, columnIDs(tbl.Evaluate().AllColumns()), "grid-row-expand")

	tbl.Evaluate().SetGrouping([]string{"city"})
	require.Contains(t, columnIDs(tbl.Evaluate().AllColumns()), "grid-row-expand")

	opts.Features.EnableGrouping = false
	opts.RenderDetailPanel = func(r *rowmodel.Row) string { return "detail" }
	require.Contains(t, columnIDs(newTable(t, opts).Evaluate().AllColumns()), "grid-row-expand")
}

func TestControlColumns_MergeDisplayOptions(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowNumbers = true
	opts.DefaultDisplayColumn = &ColumnDef{Size: 40, Header: "ctl"}
	opts.DisplayColumnDefOptions = map[string]ColumnDef{
		"grid-row-numbers": {ID: "renamed", Header: "No."},
	}
	// data columns never receive the default display column
	inst := newTable(t, opts).Evaluate()

	numbers, ok := inst.Column("grid-row-numbers")
	require.True(t, ok)
	require.Equal(t, "No.", numbers.Header)
	require.Equal(t, 40, numbers.Size)
	require.True(t, numbers.IsControl())

	name, ok := inst.Column("name")
	require.True(t, ok)
	require.Equal(t, 0, name.Size)
}

func TestFullScreen_RestoresCapturedHeight(t *testing.T) {
	surface := &fakeSurface{height: "auto"}
	opts := baseOptions()
	opts.Surface = surface
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	require.Empty(t, surface.sets)

	inst.SetIsFullScreen(true)
	inst = tbl.Evaluate()
	require.Equal(t, FillHeight, surface.height)

	inst.SetIsFullScreen(false)
	tbl.Evaluate()
	require.Equal(t, "auto", surface.height)
	require.Equal(t, []string{FillHeight, "auto"}, surface.sets)
}

func TestFullScreen_CloseReleasesLease(t *testing.T) {
	surface := &fakeSurface{height: "480px"}
	opts := baseOptions()
	opts.Surface = surface
	opts.InitialState.IsFullScreen = true
	tbl, err := New(opts)
	require.NoError(t, err)

	tbl.Evaluate()
	require.Equal(t, FillHeight, surface.height)

	tbl.Close()
	require.Equal(t, "480px", surface.height)

	// a second close is a no-op
	tbl.Close()
	require.Equal(t, []string{FillHeight, "480px"}, surface.sets)
}

func TestFullScreen_NoSurface(t *testing.T) {
	tbl := newTable(t, baseOptions())
	tbl.Evaluate().SetIsFullScreen(true)
	require.True(t, tbl.Evaluate().State().IsFullScreen)
}

func TestFullScreen_SurfaceSwap(t *testing.T) {
	first := &fakeSurface{height: "auto"}
	opts := baseOptions()
	opts.Surface = first
	opts.InitialState.IsFullScreen = true
	tbl := newTable(t, opts)
	tbl.Evaluate()
	require.Equal(t, FillHeight, first.height)

	second := &fakeSurface{height: "300px"}
	opts.Surface = second
	require.NoError(t, tbl.SetOptions(opts))
	inst := tbl.Evaluate()
	require.Equal(t, "auto", first.height)
	require.Equal(t, FillHeight, second.height)

	inst.SetIsFullScreen(false)
	tbl.Evaluate()
	require.Equal(t, "300px", second.height)
	require.Equal(t, []string{FillHeight, "auto"}, first.sets)
}

func TestFullScreen_ReenterAfterClose(t *testing.T) {
	surface := &fakeSurface{height: "auto"}
	opts := baseOptions()
	opts.Surface = surface
	opts.InitialState.IsFullScreen = true
	tbl := newTable(t, opts)

	tbl.Evaluate()
	tbl.Close()
	require.Equal(t, "auto", surface.height)

	tbl.Evaluate()
	require.Equal(t, FillHeight, surface.height)
}

func TestControlledSetter_LeavesInternalStateAlone(t *testing.T) {
	var got []Density
	opts := baseOptions()
	opts.Handlers.OnDensityChange = func(d Density) { got = append(got, d) }
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	inst.SetDensity(DensityCompact)

	require.Equal(t, []Density{DensityCompact}, got)
	require.Equal(t, DensityComfortable, tbl.Store().Density.Internal())
	require.False(t, tbl.Dirty())
	require.Equal(t, DensityComfortable, tbl.Evaluate().State().Density)
}

func TestUncontrolledSetter_UpdatesAndInvalidates(t *testing.T) {
	invalidated := 0
	opts := baseOptions()
	opts.OnInvalidate = func() { invalidated++ }
	tbl := newTable(t, opts)

	tbl.Evaluate().SetDensity(DensitySpacious)
	require.True(t, tbl.Dirty())
	require.Equal(t, 1, invalidated)
	require.Equal(t, DensitySpacious, tbl.Evaluate().State().Density)
}

func TestOverride_WinsOverInternalValue(t *testing.T) {
	opts := baseOptions()
	opts.State.Density = Some(DensityCompact)
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	require.Equal(t, DensityCompact, inst.State().Density)

	// without a handler the write lands internally but the override still wins
	inst.SetDensity(DensitySpacious)
	require.Equal(t, DensityCompact, tbl.Evaluate().State().Density)
	require.Equal(t, DensitySpacious, tbl.Store().Density.Internal())
}

func TestSetSlice_ByName(t *testing.T) {
	tbl := newTable(t, baseOptions())
	inst := tbl.Evaluate()

	require.NoError(t, inst.SetSlice("grouping", []string{"city"}))
	require.Equal(t, []string{"city"}, tbl.Evaluate().State().Grouping)

	err := inst.SetSlice("grouping", "city")
	require.ErrorIs(t, err, ErrSliceType)

	err = inst.SetSlice("nope", true)
	require.ErrorIs(t, err, ErrUnknownSlice)

	v, err := tbl.Store().Get("density")
	require.NoError(t, err)
	require.Equal(t, DensityComfortable, v)
	require.Len(t, tbl.Store().Names(), 25)
}

func TestSkeletons_WhileLoadingWithoutData(t *testing.T) {
	opts := baseOptions()
	opts.Data = nil
	opts.State.IsLoading = Some(true)
	opts.InitialState.Pagination.PageSize = 5

	inst := newTable(t, opts).Evaluate()
	core := inst.CoreRowModel()
	require.Equal(t, 5, core.Len())
	for _, r := range core.Rows {
		require.Equal(t, Record{"name": nil, "age": nil, "city": nil}, r.Original)
	}
	require.True(t, inst.Loading())

	opts.State.Pagination = Some(Pagination{PageSize: 7})
	require.Equal(t, 7, newTable(t, opts).Evaluate().CoreRowModel().Len())

	opts.State.Pagination = Opt[Pagination]{}
	opts.InitialState.Pagination.PageSize = 0
	opts.State.IsLoading = Opt[bool]{}
	opts.State.ShowSkeletons = Some(true)
	require.Equal(t, 10, newTable(t, opts).Evaluate().CoreRowModel().Len())
}

func TestSkeletons_RealDataWins(t *testing.T) {
	opts := baseOptions()
	opts.State.IsLoading = Some(true)

	inst := newTable(t, opts).Evaluate()
	require.Equal(t, []any{"Alice", "Bob", "Carol", "Dave"}, rowNames(inst.CoreRowModel().Rows))
}

func TestSkeletons_FollowPageSizeChanges(t *testing.T) {
	opts := baseOptions()
	opts.Data = nil
	opts.State.IsLoading = Some(true)
	opts.State.Pagination = Some(Pagination{PageSize: 5})
	tbl := newTable(t, opts)
	require.Equal(t, 5, tbl.Evaluate().CoreRowModel().Len())

	opts.State.Pagination = Some(Pagination{PageSize: 20})
	require.NoError(t, tbl.SetOptions(opts))
	require.Equal(t, 20, tbl.Evaluate().CoreRowModel().Len())

	opts.Columns = []ColumnDef{{AccessorKey: "name"}, {AccessorKey: "email"}}
	require.NoError(t, tbl.SetOptions(opts))
	core := tbl.Evaluate().CoreRowModel()
	require.Equal(t, 20, core.Len())
	require.Equal(t, Record{"name": nil, "email": nil}, core.Rows[0].Original)
}

func TestPageBounds_MovesToLastPage(t *testing.T) {
	opts := baseOptions()
	opts.Data = numbered(25)
	opts.InitialState.Pagination = Pagination{PageIndex: 5, PageSize: 10}

	inst := newTable(t, opts).Evaluate()
	require.Equal(t, 2, inst.State().Pagination.PageIndex)
	require.Equal(t, 5, inst.RowModel().Len())
}

func TestPageBounds_StrictComparison(t *testing.T) {
	opts := baseOptions()
	opts.Data = numbered(20)
	opts.InitialState.Pagination = Pagination{PageIndex: 2, PageSize: 10}

	inst := newTable(t, opts).Evaluate()
	require.Equal(t, 2, inst.State().Pagination.PageIndex)
	require.Equal(t, 0, inst.RowModel().Len())
}

func TestPageBounds_ControlledPagination(t *testing.T) {
	var got []Pagination
	opts := baseOptions()
	opts.Data = numbered(25)
	opts.State.Pagination = Some(Pagination{PageIndex: 5, PageSize: 10})
	opts.Handlers.OnPaginationChange = func(p Pagination) { got = append(got, p) }

	newTable(t, opts).Evaluate()
	require.Equal(t, []Pagination{{PageIndex: 2, PageSize: 10}}, got)
}

func TestPageBounds_RowCountOverride(t *testing.T) {
	opts := baseOptions()
	opts.Data = numbered(10)
	opts.RowCount = Some(95)
	opts.Features.EnablePagination = false
	opts.InitialState.Pagination = Pagination{PageIndex: 9, PageSize: 10}

	tbl := newTable(t, opts)
	inst := tbl.Evaluate()
	require.Equal(t, 9, inst.State().Pagination.PageIndex)
	require.Equal(t, 10, inst.PageCount())

	opts.RowCount = Some(30)
	require.NoError(t, tbl.SetOptions(opts))
	require.Equal(t, 3, tbl.Evaluate().State().Pagination.PageIndex)
}

func TestEvaluate_StableAcrossIdenticalInputs(t *testing.T) {
	tbl := newTable(t, baseOptions())
	first := tbl.Evaluate()
	second := tbl.Evaluate()

	require.Same(t, first.RowModel(), second.RowModel())
	require.Equal(t, columnIDs(first.AllColumns()), columnIDs(second.AllColumns()))
	require.NotEqual(t, first.ID, second.ID)

	other := newTable(t, baseOptions()).Evaluate()
	require.Equal(t, rowNames(first.RowModel().Rows), rowNames(other.RowModel().Rows))
}

func TestDefaultFilterFn(t *testing.T) {
	cases := []struct {
		def  ColumnDef
		want string
	}{
		{ColumnDef{FilterVariant: VariantMultiSelect}, "arrIncludesSome"},
		{ColumnDef{FilterVariant: VariantRange, DataType: TypeNumber}, "betweenInclusive"},
		{ColumnDef{FilterVariant: VariantSelect}, "equals"},
		{ColumnDef{FilterVariant: VariantCheckbox}, "equals"},
		{ColumnDef{DataType: TypeBool}, "equals"},
		{ColumnDef{DataType: TypeNumber}, "equals"},
		{ColumnDef{DataType: TypeDate}, "equals"},
		{ColumnDef{}, "fuzzy"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, DefaultFilterFn(tc.def))
	}
}

func TestColumnFilterFns_Resolution(t *testing.T) {
	opts := baseOptions()
	opts.Columns = append(opts.Columns,
		ColumnDef{AccessorKey: "tags", FilterFn: "arrIncludes"},
		ColumnDef{AccessorKey: "code", FilterFunc: func(*rowmodel.Row, string, any) bool { return true }},
		ColumnDef{AccessorKey: "zip", FilterFunc: rowmodel.StartsWith, FilterFnName: "prefix"},
	)
	opts.InitialState.ColumnFilterFns = map[string]string{"name": "contains", "tags": "equals"}

	inst := newTable(t, opts).Evaluate()
	want := map[string]string{
		"name": "contains",
		"age":  "equals",
		"city": "equals",
		"tags": "arrIncludes",
		"code": "custom",
		"zip":  "prefix",
	}
	require.Equal(t, want, inst.State().ColumnFilterFns)
	for id, fn := range want {
		c, ok := inst.Column(id)
		require.True(t, ok)
		require.Equal(t, fn, c.ActiveFilterFn(), id)
	}
}

func TestColumnFilterFns_SwitchingMode(t *testing.T) {
	tbl := newTable(t, baseOptions())
	inst := tbl.Evaluate()
	inst.SetColumnFilter("name", "ali")
	require.Equal(t, []any{"Alice"}, rowNames(tbl.Evaluate().RowModel().Rows))

	fns := map[string]string{"name": "endsWith", "age": "equals", "city": "equals"}
	tbl.Evaluate().SetColumnFilterFns(fns)
	inst = tbl.Evaluate()
	c, _ := inst.Column("name")
	require.Equal(t, "endsWith", c.ActiveFilterFn())
	require.Empty(t, inst.RowModel().Rows)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	opts := baseOptions()
	opts.Columns = append(opts.Columns,
		ColumnDef{AccessorKey: "name"},
		ColumnDef{},
		ColumnDef{AccessorKey: "x", FilterFn: "nope"},
	)
	opts.InitialState.ColumnOrder = []string{"name", "ghost"}
	opts.State.Pagination = Some(Pagination{PageSize: 0})

	_, err := New(opts)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicateColumnID)
	require.ErrorIs(t, err, ErrMissingColumnID)
	require.ErrorIs(t, err, ErrUnknownFilterFn)
	require.ErrorIs(t, err, ErrUnknownColumnOrderID)
	require.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestValidate_ReservedControlID(t *testing.T) {
	opts := baseOptions()
	opts.Columns = append(opts.Columns, ColumnDef{ID: "grid-row-select"})
	require.ErrorIs(t, Validate(opts), ErrDuplicateColumnID)
}

func TestValidate_EmptyDataIsFine(t *testing.T) {
	opts := baseOptions()
	opts.Data = nil
	require.NoError(t, Validate(opts))

	inst := newTable(t, opts).Evaluate()
	require.Equal(t, 0, inst.RowModel().Len())
	require.Equal(t, 1, inst.PageCount())
}

func TestEmptyData_FlowsThroughEveryStage(t *testing.T) {
	opts := baseOptions()
	opts.Data = nil
	opts.Features.EnableGrouping = true
	opts.Features.EnableExpanding = true
	opts.Features.EnableFacetedValues = true
	opts.InitialState.Grouping = []string{"city"}
	opts.InitialState.Sorting = []SortSpec{{ID: "name", Desc: true}}
	opts.InitialState.ColumnFilters = []ColumnFilter{{ID: "city", Value: "Oslo"}}
	opts.InitialState.GlobalFilter = "al"
	opts.InitialState.Expanded = Expanded{All: true}
	opts.InitialState.Pagination = Pagination{PageIndex: 3, PageSize: 5}
	require.NoError(t, Validate(opts))

	inst := newTable(t, opts).Evaluate()
	require.Equal(t, []string{StageFilter, StageGroup, StageSort, StagePaginate, StageExpand, StageFacet},
		inst.RowModels().Enabled())
	require.Equal(t, 0, inst.CoreRowModel().Len())
	require.Equal(t, 0, inst.PrePaginationRowModel().Len())
	require.Equal(t, 0, inst.RowModel().Len())
	require.Equal(t, 0, inst.State().Pagination.PageIndex)
	require.Equal(t, 1, inst.PageCount())
	require.Empty(t, inst.FacetedUniqueValues("city"))
}

func TestSetOptions_RejectsInvalid(t *testing.T) {
	tbl := newTable(t, baseOptions())
	bad := baseOptions()
	bad.GlobalFilterFn = "nope"
	require.ErrorIs(t, tbl.SetOptions(bad), ErrUnknownFilterFn)
	require.Empty(t, tbl.Options().GlobalFilterFn)
}

func TestGlobalFilterFn_OptionBeatsInitialState(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.GlobalFilterFn = "equals"
	require.Equal(t, "equals", newTable(t, opts).Evaluate().State().GlobalFilterFn)

	opts.GlobalFilterFn = "contains"
	require.Equal(t, "contains", newTable(t, opts).Evaluate().State().GlobalFilterFn)

	opts = baseOptions()
	require.Equal(t, rowmodel.FuzzyFilter, newTable(t, opts).Evaluate().State().GlobalFilterFn)
}

func TestPlugins_FoldInOrder(t *testing.T) {
	var seenByFirst bool
	first := func(inst *Instance) Fields {
		_, seenByFirst = inst.Extension("second")
		return Fields{"first": 1}
	}
	second := func(inst *Instance) Fields {
		v, ok := inst.Extension("first")
		require.True(t, ok)
		return Fields{"second": v.(int) + 1}
	}
	opts := baseOptions()
	opts.Plugins = []Plugin{first, nil, second}

	inst := newTable(t, opts).Evaluate()
	require.False(t, seenByFirst)
	v, ok := inst.Extension("second")
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Len(t, inst.Extensions(), 2)
}

func TestPlugins_DoNotMutateEarlierInstances(t *testing.T) {
	base := &Instance{extensions: Fields{"a": 1}}
	next := base.with(Fields{"b": 2})
	require.Len(t, base.extensions, 1)
	require.Len(t, next.extensions, 2)
}

func TestBuiltinPlugins(t *testing.T) {
	opts := baseOptions()
	opts.Data = numbered(25)
	opts.Features.EnableRowSelection = true
	opts.InitialState.Pagination = Pagination{PageIndex: 1, PageSize: 10}
	opts.InitialState.RowSelection = map[string]bool{"3": true, "12": true}
	opts.Plugins = []Plugin{PageSummaryPlugin(), SelectionSummaryPlugin()}

	inst := newTable(t, opts).Evaluate()

	v, ok := inst.Extension(ExtPageSummary)
	require.True(t, ok)
	require.Equal(t, PageSummary{PageIndex: 1, PageCount: 3, VisibleRows: 10, TotalRows: 25, FirstRow: 11, LastRow: 20}, v)

	v, ok = inst.Extension(ExtSelectionSummary)
	require.True(t, ok)
	sel := v.(SelectionSummary)
	require.Equal(t, []string{"3", "12"}, sel.IDs)
	require.False(t, sel.AllPageRowsSelected)
}

func TestInstanceRef_Published(t *testing.T) {
	ref := &InstanceRef{}
	opts := baseOptions()
	opts.InstanceRef = ref

	inst := newTable(t, opts).Evaluate()
	require.Same(t, inst, ref.Current)
}

func TestRefs_SharedAcrossEvaluations(t *testing.T) {
	tbl := newTable(t, baseOptions())
	a := tbl.Evaluate()
	a.Refs.SearchInput.Current = "input"
	b := tbl.Evaluate()
	require.Same(t, a.Refs, b.Refs)
	require.Equal(t, "input", b.Refs.SearchInput.Current)
	require.NotNil(t, b.Refs.TableHeadCells)
}

func TestPipeline_EnabledStages(t *testing.T) {
	inst := newTable(t, baseOptions()).Evaluate()
	require.Equal(t, []string{StageFilter, StageSort, StagePaginate}, inst.RowModels().Enabled())

	opts := baseOptions()
	opts.Features = Features{}
	inst = newTable(t, opts).Evaluate()
	require.Empty(t, inst.RowModels().Enabled())
	require.Same(t, inst.CoreRowModel(), inst.RowModel())
}

func TestPipeline_FilterSortPaginate(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.Pagination.PageSize = 2
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	inst.ToggleSorting("name", false)
	inst = tbl.Evaluate()
	inst.ToggleSorting("name", false)
	inst = tbl.Evaluate()
	require.Equal(t, []SortSpec{{ID: "name", Desc: true}}, inst.State().Sorting)
	require.Equal(t, []any{"Dave", "Carol"}, rowNames(inst.RowModel().Rows))
	require.Equal(t, 2, inst.PageCount())

	inst.SetGlobalFilter("oslo")
	inst = tbl.Evaluate()
	require.Equal(t, []any{"Carol", "Alice"}, rowNames(inst.RowModel().Rows))
	require.Equal(t, 4, inst.PreFilteredRowModel().Len())
	require.Equal(t, 2, inst.PrePaginationRowModel().Len())

	inst.ToggleSorting("name", false)
	require.Empty(t, tbl.Evaluate().State().Sorting)
}

func TestPipeline_GroupAndExpand(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableGrouping = true
	opts.InitialState.Grouping = []string{"city"}
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	require.Equal(t, []string{StageFilter, StageGroup, StageSort, StagePaginate, StageExpand}, inst.RowModels().Enabled())
	rows := inst.RowModel().Rows
	require.Len(t, rows, 2)
	city, _ := inst.Column("city")
	require.Equal(t, "Oslo (2)", inst.CellText(rows[0], city))
	age, _ := inst.Column("age")
	require.Equal(t, "65", inst.CellText(rows[0], age))

	inst.ToggleExpanded(rows[0].ID)
	inst = tbl.Evaluate()
	require.Equal(t, []any{"Oslo", "Alice", "Carol", "Bergen"}, []any{
		inst.RowModel().Rows[0].Value("city"),
		inst.RowModel().Rows[1].Value("name"),
		inst.RowModel().Rows[2].Value("name"),
		inst.RowModel().Rows[3].Value("city"),
	})
	expand, ok := inst.Column(string(ControlExpand))
	require.True(t, ok)
	require.Equal(t, "▾", inst.CellText(inst.RowModel().Rows[0], expand))
	require.Equal(t, "⊞", inst.HeaderText(expand))

	inst.ToggleAllRowsExpanded()
	require.Equal(t, Expanded{}, tbl.Evaluate().State().Expanded)
}

func TestVisibleColumns(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowNumbers = true
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	inst.SetColumnOrder([]string{"city", "gone", "grid-row-numbers", "name"})
	inst = tbl.Evaluate()
	require.Equal(t, []string{"city", "grid-row-numbers", "name", "age"}, columnIDs(inst.VisibleColumns()))

	inst.ToggleColumnVisibility("name")
	inst = tbl.Evaluate()
	require.Equal(t, []string{"city", "grid-row-numbers", "age"}, columnIDs(inst.VisibleColumns()))

	inst.ToggleColumnVisibility("name")
	require.Contains(t, columnIDs(tbl.Evaluate().VisibleColumns()), "name")
}

func TestColumnGrouping_PerColumnFlag(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableGrouping = true
	opts.Columns[2].EnableGrouping = new(bool)
	opts.InitialState.Grouping = []string{"city"}
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	require.Equal(t, 4, inst.RowModel().Len())
	require.False(t, inst.RowModel().Rows[0].IsGrouped())

	city, _ := inst.Column("city")
	require.False(t, city.CanGroup(opts.Features))
	name, _ := inst.Column("name")
	require.True(t, name.CanGroup(opts.Features))

	// removing a configured grouping still works, adding it back does not
	inst.ToggleGrouping("city")
	inst = tbl.Evaluate()
	require.Empty(t, inst.State().Grouping)
	inst.ToggleGrouping("city")
	inst = tbl.Evaluate()
	require.Empty(t, inst.State().Grouping)

	inst.ToggleGrouping("name")
	require.Equal(t, []string{"name"}, tbl.Evaluate().State().Grouping)
}

func TestColumnHiding_PerColumnFlag(t *testing.T) {
	opts := baseOptions()
	opts.Columns[2].EnableHiding = new(bool)
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	inst.ToggleColumnVisibility("city")
	inst = tbl.Evaluate()
	require.Contains(t, columnIDs(inst.VisibleColumns()), "city")

	inst.ToggleColumnVisibility("name")
	inst = tbl.Evaluate()
	require.NotContains(t, columnIDs(inst.VisibleColumns()), "name")

	// a column hidden by the host can still be shown again
	inst.SetColumnVisibility(map[string]bool{"city": false})
	inst = tbl.Evaluate()
	require.NotContains(t, columnIDs(inst.VisibleColumns()), "city")
	inst.ToggleColumnVisibility("city")
	require.Contains(t, columnIDs(tbl.Evaluate().VisibleColumns()), "city")

	opts.Features.EnableHiding = false
	other := newTable(t, opts)
	other.Evaluate().ToggleColumnVisibility("name")
	require.Empty(t, other.Evaluate().State().ColumnVisibility)
}

func TestRowSelection(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowSelection = true
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	inst.ToggleRowSelected("1")
	inst = tbl.Evaluate()
	inst.ToggleRowSelected("2")
	inst = tbl.Evaluate()
	require.Equal(t, []string{"1", "2"}, inst.SelectedRowIDs())

	sel, _ := inst.Column(string(ControlSelect))
	row, _ := inst.Row("1")
	require.Equal(t, "[x]", inst.CellText(row, sel))
	require.Equal(t, "[ ]", inst.HeaderText(sel))

	inst.ToggleAllPageRowsSelected()
	inst = tbl.Evaluate()
	require.True(t, inst.AllPageRowsSelected())
	require.Equal(t, "[x]", inst.HeaderText(sel))

	inst.ToggleAllPageRowsSelected()
	require.Empty(t, tbl.Evaluate().SelectedRowIDs())
}

func TestRowSelection_Single(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowSelection = true
	opts.Features.EnableMultiRowSelection = false
	tbl := newTable(t, opts)

	tbl.Evaluate().ToggleRowSelected("1")
	tbl.Evaluate().ToggleRowSelected("2")
	require.Equal(t, []string{"2"}, tbl.Evaluate().SelectedRowIDs())
}

func TestFacetedValues(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableFacetedValues = true
	opts.InitialState.ColumnFilters = []ColumnFilter{{ID: "city", Value: "Oslo"}}

	inst := newTable(t, opts).Evaluate()
	require.Equal(t, map[any]int{"Oslo": 2, "Bergen": 2}, inst.FacetedUniqueValues("city"))
	require.Equal(t, map[any]int{"Alice": 1, "Carol": 1}, inst.FacetedUniqueValues("name"))

	lo, hi, ok := inst.FacetedMinMax("age")
	require.True(t, ok)
	require.Equal(t, 30.0, lo)
	require.Equal(t, 35.0, hi)

	opts.Features.EnableFacetedValues = false
	require.Empty(t, newTable(t, opts).Evaluate().FacetedUniqueValues("city"))
}

func TestDescribeStateChange(t *testing.T) {
	prev := State{Density: DensityComfortable}
	next := State{Density: DensityCompact}

	diff := DescribeStateChange(prev, next)
	require.Equal(t, "-density: comfortable\n+density: compact\n", diff)
	require.Empty(t, DescribeStateChange(prev, prev))
}

func TestErrorsAreJoined(t *testing.T) {
	opts := baseOptions()
	opts.GlobalFilterFn = "a"
	opts.InitialState.GlobalFilterFn = "b"
	err := Validate(opts)
	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	require.Len(t, joined.Unwrap(), 2)
}
