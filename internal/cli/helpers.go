package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/imgajeed76/gridcore/internal/config"
	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/rowmodel"
	"github.com/imgajeed76/gridcore/internal/source"
	"github.com/imgajeed76/gridcore/internal/ui"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/imgajeed76/gridcore/internal/util"
)

// gridDef is a grid definition and where it came from. path is empty when
// a bare data file is viewed without a grid.toml.
type gridDef struct {
	path string
	cfg  *config.Config
}

// resolveGrid finds the definition for a command argument: a grid.toml
// path, a data file, or nothing (search upwards from the working dir).
func resolveGrid(arg string) (*gridDef, error) {
	if arg != "" && !strings.EqualFold(filepath.Ext(arg), ".toml") {
		if _, err := os.Stat(arg); err != nil {
			return nil, util.SourceError(arg, err)
		}
		cfg := config.DefaultConfig()
		cfg.Source.Path = arg
		return &gridDef{cfg: cfg}, nil
	}

	path := arg
	if path == "" {
		var err error
		path, err = util.FindGridFile()
		if errors.Is(err, util.ErrNoGridFile) {
			return nil, util.NoGridFileError()
		}
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, util.NoGridFileError().WithContext(path).Wrap(err)
		}
		return nil, util.InvalidGridError(path, err)
	}
	return &gridDef{path: path, cfg: cfg}, nil
}

// location names the definition in messages.
func (d *gridDef) location() string {
	if d.path != "" {
		return d.path
	}
	return d.cfg.Source.Path
}

// title is the configured title, else the data file name.
func (d *gridDef) title() string {
	if d.cfg.Table.Title != "" {
		return d.cfg.Table.Title
	}
	if d.cfg.Source.Path != "" {
		return filepath.Base(d.cfg.Source.Path)
	}
	return ""
}

// options converts the definition and wires the ambient pieces every
// command shares: logger and summary plugins.
func (d *gridDef) options() (grid.Options, error) {
	opts, err := d.cfg.Options(prefs)
	if err != nil {
		return grid.Options{}, util.InvalidGridError(d.location(), err)
	}
	opts.Logger = logger
	opts.Plugins = append(opts.Plugins, grid.PageSummaryPlugin(), grid.SelectionSummaryPlugin())
	return opts, nil
}

// loadDataset reads a source behind a spinner. Truncation is reported on
// stderr.
func loadDataset(ctx context.Context, spec source.Spec) (*source.Dataset, error) {
	if spec.Format != source.FormatPostgres && spec.Path != "" {
		if binary, err := util.IsBinaryFile(spec.Path); err == nil && binary {
			return nil, util.SourceError(spec.Path, util.ErrUnsupportedSource)
		}
	}

	sp := ui.NewSpinner("Loading " + describeSource(spec) + "...")
	sp.Start()
	ds, err := source.Load(ctx, spec)
	sp.Stop()
	if err != nil {
		return nil, sourceError(spec, err)
	}

	logger.Debug("source loaded",
		slog.String("source", describeSource(spec)),
		slog.Int("columns", len(ds.Columns)),
		slog.Int("rows", len(ds.Rows)),
		slog.Bool("nested", ds.Nested))
	if ds.Truncated {
		fmt.Fprintln(os.Stderr, styles.WarningMsg(fmt.Sprintf("Showing the first %d rows (database.max_rows)", spec.MaxRows)))
	}
	return ds, nil
}

func describeSource(spec source.Spec) string {
	if spec.Format == source.FormatPostgres {
		return "query"
	}
	return filepath.Base(spec.Path)
}

func sourceError(spec source.Spec, err error) error {
	if spec.Format != source.FormatPostgres {
		return util.SourceError(spec.Path, err)
	}
	if errors.Is(err, util.ErrEmptySource) || errors.Is(err, util.ErrNotConnected) || spec.URL == "" {
		return util.DatabaseConnectionError(spec.URL, err)
	}
	var gridErr *util.GridError
	if errors.As(err, &gridErr) {
		return err
	}
	return util.QueryError(spec.Query, err)
}

// applyDataset fills what a definition without [[columns]] leaves open.
func applyDataset(opts *grid.Options, ds *source.Dataset) {
	if len(opts.Columns) == 0 {
		opts.Columns = ds.ColumnDefs()
	}
	if ds.Nested {
		opts.GetSubRows = ds.SubRows()
		opts.Features.EnableExpanding = true
	}
	opts.Data = ds.Rows
}

// detailPanel renders every column of a row as "Header: value" lines.
func detailPanel(columns []grid.ColumnDef) func(row *rowmodel.Row) string {
	leaves := grid.LeafColumns(columns)
	width := 0
	for _, c := range leaves {
		width = max(width, len(headerOf(c)))
	}
	return func(row *rowmodel.Row) string {
		var sb strings.Builder
		for i, c := range leaves {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%-*s  %s", width+1, headerOf(c)+":", rowmodel.ToString(row.Value(grid.ColumnID(c))))
		}
		return sb.String()
	}
}

func headerOf(c grid.ColumnDef) string {
	if c.Header != "" {
		return c.Header
	}
	return grid.ColumnID(c)
}
