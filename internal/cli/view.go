package cli

import (
	"context"
	"strings"

	"github.com/imgajeed76/gridcore/internal/config"
	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/source"
	"github.com/imgajeed76/gridcore/internal/ui/table"
	"github.com/imgajeed76/gridcore/internal/util"
	"github.com/spf13/cobra"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Show a data grid",
		Long: `Show a data grid for a CSV, TSV or JSON file, or for the grid.toml
found in the current directory or a parent.

On a terminal the grid is interactive:
  /        search all columns        c        filter the current column
  s / S    sort / add to sort        g        group by the current column
  e        expand a row              E        expand all
  space    select a row              a        select the page
  n / p    next / previous page      d        cycle density
  f        fullscreen                H / V    hide column / show all
  y / Y    copy cell / row           J R P    print JSON, raw or table
  q        quit

Use --no-pager, --json or --raw for non-interactive output.

Examples:
  grid view                        # Use ./grid.toml
  grid view sales.csv              # Infer columns from the file
  grid view data.json --json --all # Print every row as JSON
  grid view --search oslo --sort -age people.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runView,
	}

	cmd.Flags().Bool("json", false, "Output rows as a JSON array")
	cmd.Flags().Bool("raw", false, "Output raw tab-separated values (for piping)")
	cmd.Flags().Bool("no-pager", false, "Disable the interactive view")
	cmd.Flags().Bool("all", false, "Print every row instead of the first page")
	cmd.Flags().String("format", "", "Data format: csv, tsv or json (default: from extension)")
	cmd.Flags().String("delimiter", "", "CSV field delimiter")
	cmd.Flags().String("search", "", "Start with this search")
	cmd.Flags().StringSlice("sort", nil, "Sort by columns (prefix - for descending)")
	cmd.Flags().StringSlice("group", nil, "Group by columns")
	cmd.Flags().Int("page-size", 0, "Rows per page")
	cmd.Flags().Bool("select", false, "Enable row selection")
	cmd.Flags().Bool("row-numbers", false, "Show row numbers")
	cmd.Flags().Bool("detail", false, "Show every column of an expanded row")
	cmd.Flags().Bool("full-screen", false, "Start in fullscreen")

	return cmd
}

func runView(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	def, err := resolveGrid(arg)
	if err != nil {
		return err
	}
	if err := applyViewFlags(cmd, def.cfg); err != nil {
		return err
	}

	opts, err := def.options()
	if err != nil {
		return err
	}
	spec := source.FromConfig(def.cfg, def.path, prefs)
	detail, _ := cmd.Flags().GetBool("detail")

	display := table.DisplayOptions{
		Title:        def.title(),
		MaxCellWidth: prefs.Display.MaxCellWidth,
	}
	display.JSON, _ = cmd.Flags().GetBool("json")
	display.Raw, _ = cmd.Flags().GetBool("raw")
	display.NoPager, _ = cmd.Flags().GetBool("no-pager")
	display.AllRows, _ = cmd.Flags().GetBool("all")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// With declared columns the interactive grid can open before the data
	// arrives; it shows skeleton rows until the load finishes.
	if len(opts.Columns) > 0 && table.Interactive(display) {
		if detail {
			opts.RenderDetailPanel = detailPanel(opts.Columns)
		}
		display.Load = func(ctx context.Context) ([]grid.Record, error) {
			ds, err := source.Load(ctx, spec)
			if err != nil {
				return nil, sourceError(spec, err)
			}
			return ds.Rows, nil
		}
	} else {
		ds, err := loadDataset(ctx, spec)
		if err != nil {
			return err
		}
		applyDataset(&opts, ds)
		if detail {
			opts.RenderDetailPanel = detailPanel(opts.Columns)
		}
	}

	t, err := grid.New(opts)
	if err != nil {
		return util.InvalidGridError(def.location(), err)
	}
	defer t.Close()

	return table.Display(t, display)
}

// applyViewFlags layers command-line overrides onto the definition.
func applyViewFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Source.Format, _ = flags.GetString("format")
	}
	if flags.Changed("delimiter") {
		cfg.Source.Delimiter, _ = flags.GetString("delimiter")
	}
	if flags.Changed("search") {
		cfg.InitialState.GlobalFilter, _ = flags.GetString("search")
	}
	if flags.Changed("sort") {
		cfg.InitialState.Sorting, _ = flags.GetStringSlice("sort")
	}
	if flags.Changed("group") {
		cfg.InitialState.Grouping, _ = flags.GetStringSlice("group")
		cfg.Features.Grouping = true
	}
	if flags.Changed("page-size") {
		size, _ := flags.GetInt("page-size")
		if size < 1 {
			return util.NewError("Invalid page size").
				WithMessage("--page-size must be at least 1")
		}
		cfg.Table.PageSize = size
	}
	if v, _ := flags.GetBool("select"); v {
		cfg.Features.RowSelection = true
	}
	if v, _ := flags.GetBool("row-numbers"); v {
		cfg.Features.RowNumbers = true
	}
	if v, _ := flags.GetBool("full-screen"); v {
		cfg.InitialState.FullScreen = true
	}
	if v, _ := flags.GetBool("detail"); v {
		cfg.Features.Expanding = true
	}
	if cfg.Source.Format != "" {
		cfg.Source.Format = strings.ToLower(cfg.Source.Format)
	}
	return nil
}
