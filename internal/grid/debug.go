package grid

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// describeState renders a state snapshot one slice per line.
func describeState(s State) string {
	var b strings.Builder
	line := func(name string, v any) {
		fmt.Fprintf(&b, "%s: %v\n", name, v)
	}
	ref := func(v any) any {
		switch r := v.(type) {
		case *ColumnRef:
			if r != nil {
				return r.ID
			}
		case *RowRef:
			if r != nil {
				return r.ID
			}
		case *CellRef:
			if r != nil {
				return r.RowID + "/" + r.ColumnID
			}
		}
		return "none"
	}

	line("columnFilterFns", s.ColumnFilterFns)
	line("columnOrder", s.ColumnOrder)
	line("density", s.Density)
	line("draggingColumn", ref(s.DraggingColumn))
	line("draggingRow", ref(s.DraggingRow))
	line("editingCell", ref(s.EditingCell))
	line("editingRow", ref(s.EditingRow))
	line("globalFilterFn", s.GlobalFilterFn)
	line("grouping", s.Grouping)
	line("hoveredColumn", ref(s.HoveredColumn))
	line("hoveredRow", ref(s.HoveredRow))
	line("isFullScreen", s.IsFullScreen)
	line("showAlertBanner", s.ShowAlertBanner)
	line("showColumnFilters", s.ShowColumnFilters)
	line("showGlobalFilter", s.ShowGlobalFilter)
	line("showToolbarDropZone", s.ShowToolbarDropZone)
	line("columnFilters", s.ColumnFilters)
	line("globalFilter", fmt.Sprintf("%q", s.GlobalFilter))
	line("sorting", s.Sorting)
	line("pagination", s.Pagination)
	line("expanded", s.Expanded)
	line("rowSelection", s.RowSelection)
	line("columnVisibility", s.ColumnVisibility)
	line("isLoading", s.IsLoading)
	line("showSkeletons", s.ShowSkeletons)
	return b.String()
}

// DescribeStateChange lists the slices that differ between two snapshots
// as "-old" / "+new" lines. Empty when nothing changed.
func DescribeStateChange(prev, next State) string {
	a, b := describeState(prev), describeState(next)
	if a == b {
		return ""
	}

	dmp := diffmatchpatch.New()
	ra, rb, lines := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffMainRunes(ra, rb, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		default:
			continue
		}
		for _, l := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out.WriteString(prefix + l + "\n")
		}
	}
	return out.String()
}
