package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imgajeed76/gridcore/internal/config"
	"github.com/imgajeed76/gridcore/internal/source"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/imgajeed76/gridcore/internal/util"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <data-file>",
		Short: "Create a grid.toml for a data file",
		Long: `Create a grid.toml next to a data file.

The data is read once to infer column names and types. Number columns
get range filters, boolean columns get checkbox filters. Edit the file
afterwards to rename headers, hide columns or set a starting state.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing grid.toml")
	cmd.Flags().String("format", "", "Data format: csv, tsv or json (default: from extension)")
	cmd.Flags().String("title", "", "Grid title (default: file name)")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return util.MissingArgumentError("data-file", "grid init sales.csv")
	}
	dataPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	format, _ := cmd.Flags().GetString("format")
	title, _ := cmd.Flags().GetString("title")

	gridPath := filepath.Join(filepath.Dir(dataPath), util.GridFile)
	if _, err := os.Stat(gridPath); err == nil && !force {
		return util.NewError("Grid definition already exists").
			WithContext(gridPath).
			WithSuggestion("grid init --force " + args[0] + "   # Overwrite it").
			Wrap(util.ErrGridFileExists)
	}

	spec := source.Spec{
		Path:    dataPath,
		Format:  source.Format(format),
		MaxRows: prefs.Database.MaxRows,
	}
	ds, err := loadDataset(cmd.Context(), spec)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Table.Title = title
	if cfg.Table.Title == "" {
		cfg.Table.Title = filepath.Base(dataPath)
	}
	cfg.Source.Path = filepath.Base(dataPath)
	cfg.Source.Format = format
	cfg.Columns = ds.ColumnConfigs()
	if ds.Nested {
		cfg.Features.Expanding = true
	}

	if err := cfg.Save(gridPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", gridPath, err)
	}

	fmt.Printf("Created %s\n", gridPath)
	fmt.Printf("  Columns: %s\n", styles.Cyan(fmt.Sprint(len(cfg.Columns))))
	fmt.Printf("  Rows:    %s\n", styles.Cyan(fmt.Sprint(len(ds.Rows))))
	for _, c := range ds.Columns {
		fmt.Println(styles.Mutef("    %-24s %s", c.Name, c.Type))
	}
	fmt.Println()
	fmt.Println("View it with:")
	fmt.Println("  grid view " + gridPath)
	return nil
}
