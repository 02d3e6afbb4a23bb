package table

import (
	"fmt"
	"strings"

	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/rowmodel"
	"github.com/mattn/go-runewidth"
)

const (
	minColWidth      = 3
	skeletonColWidth = 8
	indentWidth      = 2
)

// FrameColumn is one rendered column.
type FrameColumn struct {
	ID      string
	Header  string
	Control bool
	Sorted  bool
	Desc    bool
	SortPos int // 1-based position in a multi-column sort, 0 otherwise
	Width   int // display width of the widest cell, capped
}

// Line is one rendered row.
type Line struct {
	RowID    string
	Depth    int
	Cells    []string
	Grouped  bool
	Selected bool
	Skeleton bool
	Detail   string
}

// Frame is everything a renderer needs from one evaluation.
type Frame struct {
	Title   string
	Columns []FrameColumn
	Lines   []Line
	Gap     int
	Empty   string // shown when there are no lines
	Filters string
	Footer  string
	Loading bool
}

// BuildFrame projects an instance onto display text. maxCellWidth caps
// column widths; 0 means uncapped.
func BuildFrame(inst *grid.Instance, title string, maxCellWidth int) Frame {
	st := inst.State()
	f := Frame{
		Title:   title,
		Gap:     gapFor(st.Density),
		Loading: inst.Loading(),
		Filters: filterSummary(st),
		Footer:  footer(inst),
	}

	sortPos := make(map[string]int, len(st.Sorting))
	sortDesc := make(map[string]bool, len(st.Sorting))
	for i, s := range st.Sorting {
		sortPos[s.ID] = i + 1
		sortDesc[s.ID] = s.Desc
	}

	cols := inst.VisibleColumns()
	firstData := -1
	for i, c := range cols {
		fc := FrameColumn{
			ID:      c.ID,
			Header:  inst.HeaderText(c),
			Control: c.IsControl(),
		}
		if pos, ok := sortPos[c.ID]; ok {
			fc.Sorted = true
			fc.Desc = sortDesc[c.ID]
			if len(st.Sorting) > 1 {
				fc.SortPos = pos
			}
		}
		fc.Width = runewidth.StringWidth(headerLabel(fc))
		if firstData < 0 && !fc.Control {
			firstData = i
		}
		f.Columns = append(f.Columns, fc)
	}

	skeleton := f.Loading && len(inst.Options().Data) == 0
	for _, row := range inst.RowModel().Rows {
		line := Line{
			RowID:    row.ID,
			Depth:    row.Depth,
			Grouped:  row.IsGrouped(),
			Selected: st.RowSelection[row.ID],
			Skeleton: skeleton,
			Cells:    make([]string, len(cols)),
		}
		for i, c := range cols {
			if skeleton && !c.IsControl() {
				f.Columns[i].Width = max(f.Columns[i].Width, skeletonColWidth)
				continue
			}
			text := cellText(inst, row, c)
			if i == firstData && row.Depth > 0 {
				text = strings.Repeat(" ", row.Depth*indentWidth) + text
			}
			line.Cells[i] = text
			f.Columns[i].Width = max(f.Columns[i].Width, runewidth.StringWidth(text))
		}
		if st.Expanded.IsExpanded(row.ID) {
			if detail, ok := inst.DetailPanel(row); ok {
				line.Detail = detail
			}
		}
		f.Lines = append(f.Lines, line)
	}

	for i := range f.Columns {
		w := max(f.Columns[i].Width, minColWidth)
		if maxCellWidth > 0 && w > maxCellWidth && !f.Columns[i].Control {
			w = maxCellWidth
		}
		f.Columns[i].Width = w
	}

	if len(f.Lines) == 0 {
		f.Empty = inst.Localization().NoRecordsToDisplay
	}
	return f
}

// cellText flattens a cell to one line.
func cellText(inst *grid.Instance, row *rowmodel.Row, c grid.ColumnDef) string {
	s := inst.CellText(row, c)
	if strings.ContainsAny(s, "\n\r\t") {
		s = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`).Replace(s)
	}
	return s
}

// headerLabel is the header text plus a plain sort marker, used for width.
func headerLabel(c FrameColumn) string {
	if !c.Sorted {
		return c.Header
	}
	label := c.Header + " ^"
	if c.SortPos > 0 {
		label += fmt.Sprint(c.SortPos)
	}
	return label
}

func gapFor(d grid.Density) int {
	switch d {
	case grid.DensityCompact:
		return 1
	case grid.DensitySpacious:
		return 4
	}
	return 2
}

func filterSummary(st grid.State) string {
	var parts []string
	if st.GlobalFilter != "" {
		parts = append(parts, fmt.Sprintf("search %q", st.GlobalFilter))
	}
	for _, cf := range st.ColumnFilters {
		fn := st.ColumnFilterFns[cf.ID]
		if fn == "" {
			fn = "="
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", cf.ID, fn, rowmodel.ToString(cf.Value)))
	}
	if len(st.Grouping) > 0 {
		parts = append(parts, "grouped by "+strings.Join(st.Grouping, ", "))
	}
	return strings.Join(parts, " · ")
}

func footer(inst *grid.Instance) string {
	var parts []string
	if ext, ok := inst.Extension(grid.ExtPageSummary); ok {
		if p, ok := ext.(grid.PageSummary); ok {
			if p.VisibleRows == 0 {
				parts = append(parts, fmt.Sprintf("0 of %d rows", p.TotalRows))
			} else {
				parts = append(parts, fmt.Sprintf("rows %d-%d of %d", p.FirstRow, p.LastRow, p.TotalRows))
			}
			if inst.Options().Features.EnablePagination {
				parts = append(parts, fmt.Sprintf("page %d/%d", p.PageIndex+1, p.PageCount))
			}
		}
	}
	if ext, ok := inst.Extension(grid.ExtSelectionSummary); ok {
		if s, ok := ext.(grid.SelectionSummary); ok && s.Count > 0 {
			parts = append(parts, fmt.Sprintf("%d selected", s.Count))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d rows", inst.RowModel().Len()))
	}
	return strings.Join(parts, " · ")
}

// fit pads or truncates s to exactly width display cells.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
