package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/mattn/go-runewidth"
)

// WritePlain prints an aligned table for non-TTY output.
func WritePlain(w io.Writer, f Frame) error {
	ew := &errWriter{w: w}
	if f.Title != "" {
		ew.println(styles.Render(styles.TitleStyle, f.Title))
	}
	if f.Filters != "" {
		ew.println(styles.Render(styles.FilterStyle, f.Filters))
	}
	if len(f.Columns) == 0 {
		ew.println("(no columns)")
		return ew.err
	}

	gap := strings.Repeat(" ", f.Gap)

	var header, sep []string
	for _, c := range f.Columns {
		header = append(header, headerCell(c))
		sep = append(sep, strings.Repeat("─", c.Width))
	}
	ew.println(strings.Join(header, gap))
	ew.println(styles.Mute(strings.Join(sep, gap)))

	for _, line := range f.Lines {
		ew.println(renderLine(f, line, gap))
		if line.Detail != "" {
			ew.println(styles.Indent(styles.Mute(line.Detail), indentWidth*(line.Depth+1)))
		}
	}

	ew.println("")
	if len(f.Lines) == 0 && f.Empty != "" {
		ew.println(styles.Mute(f.Empty))
	}
	ew.println(styles.Mute("(" + f.Footer + ")"))
	return ew.err
}

func headerCell(c FrameColumn) string {
	if !c.Sorted {
		return styles.Render(styles.HeaderStyle, fit(c.Header, c.Width))
	}
	pad := c.Width - runewidth.StringWidth(headerLabel(c))
	return styles.Header(c.Header, true, c.Desc, c.SortPos) + strings.Repeat(" ", max(0, pad))
}

func renderLine(f Frame, line Line, gap string) string {
	cells := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		switch {
		case line.Skeleton && !c.Control:
			cells[i] = styles.Skeleton(c.Width)
		case line.Grouped && !c.Control:
			cells[i] = styles.Render(styles.GroupStyle, fit(line.Cells[i], c.Width))
		case c.Control:
			cells[i] = styles.Render(styles.ControlStyle, fit(line.Cells[i], c.Width))
		default:
			cells[i] = fit(line.Cells[i], c.Width)
		}
	}
	s := strings.Join(cells, gap)
	if line.Selected {
		s = styles.Render(styles.SelectedStyle, s)
	}
	return s
}

// WriteRaw prints data cells tab-separated, one row per line.
func WriteRaw(w io.Writer, f Frame) error {
	ew := &errWriter{w: w}
	for _, line := range f.Lines {
		if line.Skeleton {
			continue
		}
		var cells []string
		for i, c := range f.Columns {
			if !c.Control {
				cells = append(cells, strings.TrimLeft(line.Cells[i], " "))
			}
		}
		ew.println(strings.Join(cells, "\t"))
	}
	return ew.err
}

// WriteJSON prints the rendered rows as an array of objects keyed by
// column id, keeping the raw cell values.
func WriteJSON(w io.Writer, inst *grid.Instance) error {
	cols := inst.VisibleColumns()
	rows := inst.RowModel().Rows
	results := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(cols))
		for _, c := range cols {
			if c.IsControl() {
				continue
			}
			obj[c.ID] = row.Value(c.ID)
		}
		results = append(results, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) println(s string) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, s)
}
