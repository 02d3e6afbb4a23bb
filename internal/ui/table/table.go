// Package table renders a grid.Table. It supports an interactive TUI
// (search, column filters, sorting, grouping, paging, selection,
// fullscreen), plain text tables, JSON output and raw tab-separated
// output.
//
// This package is used by both `grid view` and `grid sql`.
package table

import (
	"context"
	"io"
	"os"

	"github.com/imgajeed76/gridcore/internal/grid"
	"golang.org/x/term"
)

// DisplayOptions controls how a grid is rendered.
type DisplayOptions struct {
	// Title is shown above the grid.
	Title string
	// JSON outputs rows as a JSON array of objects.
	JSON bool
	// Raw outputs rows as tab-separated values (for piping).
	Raw bool
	// NoPager forces plain table output even on a TTY.
	NoPager bool
	// AllRows prints every row instead of the current page in
	// non-interactive modes.
	AllRows bool
	// MaxCellWidth caps column widths; 0 means uncapped.
	MaxCellWidth int
	// Load, when set, fetches the data after the TUI starts. The grid shows
	// skeleton rows until it returns.
	Load func(ctx context.Context) ([]grid.Record, error)
}

// Interactive reports whether Display would start the TUI.
func Interactive(opts DisplayOptions) bool {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	return isTTY && !opts.JSON && !opts.Raw && !opts.NoPager
}

// Display picks the right output mode based on options and environment,
// then renders the table.
func Display(t *grid.Table, opts DisplayOptions) error {
	if Interactive(opts) {
		return RunTUI(t, opts)
	}

	if opts.Load != nil {
		rows, err := opts.Load(context.Background())
		if err != nil {
			return err
		}
		o := t.Options()
		o.Data = rows
		if err := t.SetOptions(o); err != nil {
			return err
		}
	}
	return Print(os.Stdout, t, opts)
}

// Print renders the table non-interactively to w.
func Print(w io.Writer, t *grid.Table, opts DisplayOptions) error {
	if opts.AllRows {
		o := t.Options()
		o.Features.EnablePagination = false
		if err := t.SetOptions(o); err != nil {
			return err
		}
	}
	inst := t.Evaluate()

	switch {
	case opts.JSON:
		return WriteJSON(w, inst)
	case opts.Raw:
		return WriteRaw(w, BuildFrame(inst, "", 0))
	}
	return WritePlain(w, BuildFrame(inst, opts.Title, opts.MaxCellWidth))
}
