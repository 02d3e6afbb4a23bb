package table

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/rowmodel"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
)

func init() {
	styles.SetNoColor(true)
}

func people() []grid.Record {
	return []grid.Record{
		{"name": "Alice", "age": 30, "city": "Oslo"},
		{"name": "Bob", "age": 25, "city": "Bergen"},
		{"name": "Carol", "age": 35, "city": "Oslo"},
		{"name": "Dave", "age": 41, "city": "Bergen"},
	}
}

func baseOptions() grid.Options {
	return grid.Options{
		Columns: []grid.ColumnDef{
			{AccessorKey: "name", Header: "Name"},
			{AccessorKey: "age", Header: "Age", DataType: grid.TypeNumber, AggregationFn: "sum"},
			{AccessorKey: "city", Header: "City", FilterVariant: grid.VariantSelect},
		},
		Data:     people(),
		Features: grid.DefaultFeatures(),
		Plugins:  []grid.Plugin{grid.PageSummaryPlugin(), grid.SelectionSummaryPlugin()},
	}
}

func newTable(t *testing.T, opts grid.Options) *grid.Table {
	t.Helper()
	tbl, err := grid.New(opts)
	require.NoError(t, err)
	t.Cleanup(tbl.Close)
	return tbl
}

func columnIndex(t *testing.T, f Frame, id string) int {
	t.Helper()
	for i, c := range f.Columns {
		if c.ID == id {
			return i
		}
	}
	t.Fatalf("column %q not in frame", id)
	return -1
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBuildFrame_Columns(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.Sorting = []grid.SortSpec{{ID: "age", Desc: true}}
	f := BuildFrame(newTable(t, opts).Evaluate(), "people", 0)

	require.Equal(t, "people", f.Title)
	require.Len(t, f.Columns, 3)
	age := f.Columns[columnIndex(t, f, "age")]
	require.True(t, age.Sorted)
	require.True(t, age.Desc)
	require.Zero(t, age.SortPos)
	require.Equal(t, len("Age ^"), age.Width)

	require.Equal(t, []string{"Dave", "41", "Bergen"}, f.Lines[0].Cells)
	require.Equal(t, 2, f.Gap)
	require.Empty(t, f.Empty)
	require.False(t, f.Loading)
}

func TestBuildFrame_MultiSortPositions(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.Sorting = []grid.SortSpec{{ID: "city"}, {ID: "age", Desc: true}}
	f := BuildFrame(newTable(t, opts).Evaluate(), "", 0)

	require.Equal(t, 1, f.Columns[columnIndex(t, f, "city")].SortPos)
	require.Equal(t, 2, f.Columns[columnIndex(t, f, "age")].SortPos)
	require.Equal(t, "Carol", f.Lines[2].Cells[columnIndex(t, f, "name")])
}

func TestBuildFrame_MaxCellWidth(t *testing.T) {
	opts := baseOptions()
	opts.Data = []grid.Record{{"name": strings.Repeat("x", 50), "age": 1, "city": "Oslo"}}
	f := BuildFrame(newTable(t, opts).Evaluate(), "", 10)
	require.Equal(t, 10, f.Columns[columnIndex(t, f, "name")].Width)
	require.Equal(t, minColWidth, f.Columns[columnIndex(t, f, "age")].Width)
}

func TestBuildFrame_SkeletonWhileLoading(t *testing.T) {
	opts := baseOptions()
	opts.Data = nil
	opts.State.IsLoading = grid.Some(true)
	opts.InitialState.Pagination.PageSize = 3
	f := BuildFrame(newTable(t, opts).Evaluate(), "", 0)

	require.True(t, f.Loading)
	require.Len(t, f.Lines, 3)
	for _, l := range f.Lines {
		require.True(t, l.Skeleton)
	}
	require.Equal(t, skeletonColWidth, f.Columns[columnIndex(t, f, "name")].Width)

	var raw bytes.Buffer
	require.NoError(t, WriteRaw(&raw, f))
	require.Empty(t, raw.String())

	var plain bytes.Buffer
	require.NoError(t, WritePlain(&plain, f))
	require.Contains(t, plain.String(), strings.Repeat(".", skeletonColWidth))
}

func TestBuildFrame_GroupedRows(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableGrouping = true
	opts.InitialState.Grouping = []string{"city"}
	f := BuildFrame(newTable(t, opts).Evaluate(), "", 0)

	require.Len(t, f.Lines, 2)
	city := columnIndex(t, f, "city")
	require.True(t, f.Lines[0].Grouped)
	require.Equal(t, "Oslo (2)", f.Lines[0].Cells[city])
	require.Equal(t, "65", f.Lines[0].Cells[columnIndex(t, f, "age")])
	require.Contains(t, f.Filters, "grouped by city")
}

func TestBuildFrame_NestedRowsAreIndented(t *testing.T) {
	opts := baseOptions()
	opts.Data = []grid.Record{
		{"name": "parent", "age": 1, "city": "Oslo", "subRows": []any{
			map[string]any{"name": "child", "age": 2, "city": "Oslo"},
		}},
	}
	opts.GetSubRows = rowmodel.DefaultSubRows
	opts.Features.EnableExpanding = true
	opts.InitialState.Expanded = rowmodel.Expanded{All: true}
	f := BuildFrame(newTable(t, opts).Evaluate(), "", 0)

	name := columnIndex(t, f, "name")
	require.Len(t, f.Lines, 2)
	require.Equal(t, "parent", f.Lines[0].Cells[name])
	require.Equal(t, "  child", f.Lines[1].Cells[name])
	require.Equal(t, 1, f.Lines[1].Depth)
}

func TestBuildFrame_DetailPanel(t *testing.T) {
	opts := baseOptions()
	opts.RenderDetailPanel = func(row *rowmodel.Row) string {
		return "lives in " + rowmodel.ToString(row.Value("city"))
	}
	tbl := newTable(t, opts)
	inst := tbl.Evaluate()
	require.Empty(t, BuildFrame(inst, "", 0).Lines[0].Detail)

	inst.ToggleExpanded(inst.RowModel().Rows[0].ID)
	f := BuildFrame(tbl.Evaluate(), "", 0)
	require.Equal(t, "lives in Oslo", f.Lines[0].Detail)
	require.Empty(t, f.Lines[1].Detail)

	var buf bytes.Buffer
	require.NoError(t, WritePlain(&buf, f))
	require.Contains(t, buf.String(), "lives in Oslo")
}

func TestBuildFrame_Footer(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowSelection = true
	opts.InitialState.Pagination.PageSize = 2
	tbl := newTable(t, opts)

	inst := tbl.Evaluate()
	require.Equal(t, "rows 1-2 of 4 · page 1/2", BuildFrame(inst, "", 0).Footer)

	inst.NextPage()
	inst = tbl.Evaluate()
	inst.ToggleRowSelected(inst.RowModel().Rows[0].ID)
	require.Equal(t, "rows 3-4 of 4 · page 2/2 · 1 selected", BuildFrame(tbl.Evaluate(), "", 0).Footer)
}

func TestBuildFrame_FooterWithoutPlugins(t *testing.T) {
	opts := baseOptions()
	opts.Plugins = nil
	require.Equal(t, "4 rows", BuildFrame(newTable(t, opts).Evaluate(), "", 0).Footer)
}

func TestBuildFrame_EmptyResult(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.GlobalFilter = "zzzz"
	f := BuildFrame(newTable(t, opts).Evaluate(), "", 0)

	require.Empty(t, f.Lines)
	require.Equal(t, "No records to display", f.Empty)
	require.Equal(t, "0 of 0 rows · page 1/1", f.Footer)
	require.Contains(t, f.Filters, `search "zzzz"`)
}

func TestBuildFrame_Density(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.Density = grid.DensityCompact
	require.Equal(t, 1, BuildFrame(newTable(t, opts).Evaluate(), "", 0).Gap)

	opts.InitialState.Density = grid.DensitySpacious
	require.Equal(t, 4, BuildFrame(newTable(t, opts).Evaluate(), "", 0).Gap)
}

func TestBuildFrame_EscapesNewlines(t *testing.T) {
	opts := baseOptions()
	opts.Data = []grid.Record{{"name": "a\nb", "age": 1, "city": "x\ty"}}
	f := BuildFrame(newTable(t, opts).Evaluate(), "", 0)
	require.Equal(t, `a\nb`, f.Lines[0].Cells[columnIndex(t, f, "name")])
	require.Equal(t, `x\ty`, f.Lines[0].Cells[columnIndex(t, f, "city")])
}

func TestWritePlain(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.Sorting = []grid.SortSpec{{ID: "name", Desc: true}}
	var buf bytes.Buffer
	require.NoError(t, WritePlain(&buf, BuildFrame(newTable(t, opts).Evaluate(), "people", 0)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, "people", lines[0])
	require.Equal(t, "Name v  Age  City  ", lines[1])
	require.Equal(t, "──────  ───  ──────", lines[2])
	require.Equal(t, "Dave    41   Bergen", lines[3])
	require.Equal(t, "(rows 1-4 of 4 · page 1/1)", lines[len(lines)-1])
}

func TestWriteRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRaw(&buf, BuildFrame(newTable(t, baseOptions()).Evaluate(), "", 0)))
	require.Equal(t, "Alice\t30\tOslo\nBob\t25\tBergen\nCarol\t35\tOslo\nDave\t41\tBergen\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowNumbers = true
	opts.InitialState.Pagination.PageSize = 2

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, newTable(t, opts).Evaluate()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, []map[string]any{
		{"name": "Alice", "age": float64(30), "city": "Oslo"},
		{"name": "Bob", "age": float64(25), "city": "Bergen"},
	}, got)
}

func TestPrint_AllRows(t *testing.T) {
	opts := baseOptions()
	opts.InitialState.Pagination.PageSize = 1
	tbl := newTable(t, opts)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, tbl, DisplayOptions{Raw: true}))
	require.Equal(t, "Alice\t30\tOslo\n", buf.String())

	buf.Reset()
	require.NoError(t, Print(&buf, tbl, DisplayOptions{Raw: true, AllRows: true}))
	require.Equal(t, 4, strings.Count(buf.String(), "\n"))
}

func TestParseFilterInput(t *testing.T) {
	text := grid.ColumnDef{ID: "name"}
	number := grid.ColumnDef{ID: "age", DataType: grid.TypeNumber}
	boolean := grid.ColumnDef{ID: "ok", DataType: grid.TypeBool}
	multi := grid.ColumnDef{ID: "city", FilterVariant: grid.VariantMultiSelect}

	tests := []struct {
		name string
		text string
		col  grid.ColumnDef
		want any
	}{
		{"empty clears", "  ", text, nil},
		{"text", " ali ", text, "ali"},
		{"number", "42", number, float64(42)},
		{"bad number stays text", "forty", number, "forty"},
		{"bool", "true", boolean, true},
		{"range", "10..20", number, []any{float64(10), float64(20)}},
		{"open range", "..20", number, []any{nil, float64(20)}},
		{"multi", "Oslo, Bergen,", multi, []any{"Oslo", "Bergen"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseFilterInput(tt.text, tt.col))
		})
	}
}

func TestCurrentFilter(t *testing.T) {
	st := grid.State{ColumnFilters: []grid.ColumnFilter{
		{ID: "age", Value: []any{float64(1), float64(5)}},
		{ID: "city", Value: []any{"Oslo", "Bergen", "Bodø"}},
		{ID: "name", Value: "ali"},
	}}
	require.Equal(t, "1..5", currentFilter(st, "age"))
	require.Equal(t, "Oslo,Bergen,Bodø", currentFilter(st, "city"))
	require.Equal(t, "ali", currentFilter(st, "name"))
	require.Empty(t, currentFilter(st, "other"))
}

func TestFit(t *testing.T) {
	require.Equal(t, "ab  ", fit("ab", 4))
	require.Equal(t, "he…", fit("hello", 3))
	require.Equal(t, "日… ", fit("日本語", 4))
}

func TestApplyViewport(t *testing.T) {
	require.Equal(t, "cde", applyViewport("abcdef", 2, 3))
	require.Equal(t, "ab  ", applyViewport("ab", 0, 4))
	require.Equal(t, " 本", applyViewport("日本", 1, 3))
	require.Empty(t, applyViewport("abc", 0, 0))

	styled := "\x1b[1mbold\x1b[0m"
	require.Equal(t, "\x1b[1mld\x1b[0m", applyViewport(styled, 2, 2))
}

func TestScreen(t *testing.T) {
	s := newScreen()
	require.Equal(t, heightAuto, s.Height())
	require.False(t, s.fullScreen())

	s.SetHeight(grid.FillHeight)
	s.SetHeight(grid.FillHeight)
	require.True(t, s.fullScreen())
	require.Len(t, s.pending, 1)
	require.NotNil(t, s.flush())
	require.Empty(t, s.pending)

	s.SetHeight(heightAuto)
	require.Len(t, s.pending, 1)
	require.False(t, s.fullScreen())
}

func TestTUI_KeysDriveState(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableRowSelection = true
	tbl := newTable(t, opts)

	m, err := newTableModel(tbl, DisplayOptions{Title: "people"})
	require.NoError(t, err)

	update := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(tableModel)
	}
	update(tea.WindowSizeMsg{Width: 80, Height: 20})
	require.Equal(t, string(grid.ControlSelect), m.frame.Columns[0].ID)

	update(keyPress("s"))
	require.Empty(t, m.inst.State().Sorting)

	update(keyPress("l"))
	update(keyPress("s"))
	require.Equal(t, []grid.SortSpec{{ID: "name"}}, m.inst.State().Sorting)
	update(keyPress("s"))
	require.Equal(t, "Dave", m.frame.Lines[0].Cells[columnIndex(t, m.frame, "name")])

	update(keyPress("j"))
	update(keyPress(" "))
	require.Len(t, m.inst.SelectedRowIDs(), 1)
	require.Contains(t, m.frame.Footer, "1 selected")

	update(keyPress("d"))
	require.Equal(t, grid.DensityCompact, m.inst.State().Density)

	update(keyPress("f"))
	require.True(t, m.inst.State().IsFullScreen)
	require.Equal(t, grid.FillHeight, m.screen.Height())
	update(keyPress("f"))
	require.Equal(t, heightAuto, m.screen.Height())

	update(keyPress("l"))
	update(keyPress("H"))
	require.Len(t, m.frame.Columns, 3)
	require.Equal(t, "city", m.frame.Columns[2].ID)
	update(keyPress("V"))
	require.Len(t, m.frame.Columns, 4)

	require.Contains(t, m.View(), "people")
}

func TestTUI_PerColumnGroupAndHide(t *testing.T) {
	opts := baseOptions()
	opts.Features.EnableGrouping = true
	opts.Columns[0].EnableGrouping = new(bool)
	opts.Columns[0].EnableHiding = new(bool)
	tbl := newTable(t, opts)

	m, err := newTableModel(tbl, DisplayOptions{Title: "people"})
	require.NoError(t, err)
	update := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(tableModel)
	}
	update(tea.WindowSizeMsg{Width: 80, Height: 20})
	for i := 0; i < columnIndex(t, m.frame, "name"); i++ {
		update(keyPress("l"))
	}

	update(keyPress("g"))
	require.Empty(t, m.inst.State().Grouping)
	update(keyPress("H"))
	require.Empty(t, m.inst.State().ColumnVisibility)

	update(keyPress("l"))
	update(keyPress("g"))
	require.Equal(t, []string{"age"}, m.inst.State().Grouping)
}

func TestTUI_SearchInput(t *testing.T) {
	m, err := newTableModel(newTable(t, baseOptions()), DisplayOptions{})
	require.NoError(t, err)

	next, _ := m.Update(keyPress("/"))
	m = next.(tableModel)
	require.Equal(t, tableModeSearch, m.mode)

	for _, r := range "car" {
		next, _ = m.Update(keyPress(string(r)))
		m = next.(tableModel)
	}
	require.Equal(t, "car", m.inst.State().GlobalFilter)
	require.Len(t, m.frame.Lines, 1)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(tableModel)
	require.Equal(t, tableModeNormal, m.mode)
	require.Empty(t, m.inst.State().GlobalFilter)
	require.Len(t, m.frame.Lines, 4)
}

func TestTUI_ColumnFilterInput(t *testing.T) {
	opts := baseOptions()
	opts.Columns[1].FilterVariant = grid.VariantRange
	m, err := newTableModel(newTable(t, opts), DisplayOptions{})
	require.NoError(t, err)

	next, _ := m.Update(keyPress("l"))
	m = next.(tableModel)
	next, _ = m.Update(keyPress("c"))
	m = next.(tableModel)
	require.Equal(t, tableModeFilter, m.mode)
	require.Equal(t, "age", m.filterCol)

	for _, r := range "30..40" {
		next, _ = m.Update(keyPress(string(r)))
		m = next.(tableModel)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(tableModel)

	require.Equal(t, tableModeNormal, m.mode)
	require.Equal(t, []grid.ColumnFilter{{ID: "age", Value: []any{float64(30), float64(40)}}}, m.inst.State().ColumnFilters)
	require.Len(t, m.frame.Lines, 2)
}

func TestTUI_AsyncLoad(t *testing.T) {
	opts := baseOptions()
	opts.Data = nil
	tbl := newTable(t, opts)

	m, err := newTableModel(tbl, DisplayOptions{
		Load: func(context.Context) ([]grid.Record, error) { return people(), nil },
	})
	require.NoError(t, err)
	require.True(t, m.frame.Loading)
	require.True(t, m.frame.Lines[0].Skeleton)

	next, _ := m.Update(loadedMsg{rows: people()})
	m = next.(tableModel)
	require.False(t, m.frame.Loading)
	require.Len(t, m.frame.Lines, 4)
	require.False(t, m.frame.Lines[0].Skeleton)
}

func TestTUI_LoadErrorQuits(t *testing.T) {
	m, err := newTableModel(newTable(t, baseOptions()), DisplayOptions{})
	require.NoError(t, err)

	next, cmd := m.Update(loadedMsg{err: context.DeadlineExceeded})
	require.ErrorIs(t, next.(tableModel).loadErr, context.DeadlineExceeded)
	require.NotNil(t, cmd)
}
