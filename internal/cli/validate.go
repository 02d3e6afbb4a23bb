package cli

import (
	"fmt"

	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/source"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/imgajeed76/gridcore/internal/util"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [grid.toml]",
		Short: "Check a grid definition for errors",
		Long: `Check a grid definition without showing it.

Every problem is reported at once: unknown keys, invalid values, duplicate
column ids, column order entries naming no column, and more.
With --data the source is loaded too and inferred columns are checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
	cmd.Flags().Bool("data", false, "Also load the data source")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	def, err := resolveGrid(arg)
	if err != nil {
		return err
	}

	opts, err := def.options()
	if err != nil {
		return err
	}

	rows := 0
	if withData, _ := cmd.Flags().GetBool("data"); withData {
		ds, err := loadDataset(cmd.Context(), source.FromConfig(def.cfg, def.path, prefs))
		if err != nil {
			return err
		}
		applyDataset(&opts, ds)
		rows = len(ds.Rows)
	}

	if err := grid.Validate(opts); err != nil {
		return util.InvalidGridError(def.location(), err)
	}

	msg := fmt.Sprintf("%s is valid (%d columns)", def.location(), len(grid.LeafColumns(opts.Columns)))
	if rows > 0 {
		msg = fmt.Sprintf("%s is valid (%d columns, %d rows)", def.location(), len(grid.LeafColumns(opts.Columns)), rows)
	}
	fmt.Println(styles.SuccessMsg(msg))
	return nil
}
