package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/imgajeed76/gridcore/internal/config"
	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/source"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/imgajeed76/gridcore/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment and the nearest grid",
		Long: `Run diagnostics to check if grid is properly configured.

This command checks:
  - Terminal, colors and clipboard support
  - Global preferences
  - The nearest grid.toml and its data source
  - Database connectivity, when a URL is configured`,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println(styles.Boldf("grid doctor"))
	fmt.Println()

	allOK := true

	fmt.Print("Checking terminal... ")
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		fmt.Println(styles.Successf("OK") + fmt.Sprintf(" (%dx%d)", w, h))
	} else {
		fmt.Println(styles.Mute("NOT A TTY"))
		fmt.Println("  Output will be printed, not shown interactively")
	}

	fmt.Print("Checking colors... ")
	if styles.NoColor() {
		fmt.Println(styles.Mute("DISABLED"))
	} else {
		fmt.Println(styles.Successf("OK"))
	}

	fmt.Print("Checking clipboard... ")
	if clipboard.Unsupported {
		fmt.Println(styles.Warningf("UNSUPPORTED"))
		fmt.Println("  Install xclip, xsel or wl-clipboard to copy cells")
	} else {
		fmt.Println(styles.Successf("OK"))
	}

	fmt.Print("Checking preferences... ")
	if _, err := os.Stat(config.GlobalConfigPath()); err == nil {
		fmt.Println(styles.Successf("OK") + fmt.Sprintf(" (%s)", config.GlobalConfigPath()))
	} else {
		fmt.Println(styles.Mute("DEFAULTS"))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Print("Checking grid definition... ")
	path, err := util.FindGridFile()
	if err != nil {
		fmt.Println(styles.Mute("NONE"))
		fmt.Println("  Run 'grid init <data-file>' to create one")
	} else if def, err := resolveGrid(path); err != nil {
		fmt.Println(styles.Errorf("INVALID"))
		fmt.Printf("  %v\n", err)
		allOK = false
	} else if opts, err := def.options(); err != nil {
		fmt.Println(styles.Errorf("INVALID"))
		fmt.Printf("  %v\n", err)
		allOK = false
	} else if err := grid.Validate(opts); err != nil {
		fmt.Println(styles.Errorf("INVALID"))
		fmt.Println(styles.Indent(err.Error(), 2))
		allOK = false
	} else {
		fmt.Println(styles.Successf("OK") + fmt.Sprintf(" (%s)", path))
		if !checkSource(ctx, source.FromConfig(def.cfg, def.path, prefs)) {
			allOK = false
		}
	}

	if url := prefs.Database.URL; url != "" {
		fmt.Print("Checking database connection... ")
		if err := pingDatabase(ctx, url); err != nil {
			fmt.Println(styles.Errorf("FAILED"))
			fmt.Printf("  Error: %v\n", err)
			allOK = false
		} else {
			fmt.Println(styles.Successf("OK"))
		}
	}

	fmt.Println()
	if allOK {
		fmt.Println(styles.Successf("All checks passed!"))
	} else {
		fmt.Println(styles.Warningf("Some issues were found. See above for details."))
	}

	return nil
}

func checkSource(ctx context.Context, spec source.Spec) bool {
	fmt.Print("Checking data source... ")
	if spec.Format == source.FormatPostgres {
		if err := pingDatabase(ctx, spec.URL); err != nil {
			fmt.Println(styles.Errorf("FAILED"))
			fmt.Printf("  Error: %v\n", err)
			return false
		}
		fmt.Println(styles.Successf("OK") + " (postgres)")
		return true
	}

	info, err := os.Stat(spec.Path)
	if err != nil {
		fmt.Println(styles.Errorf("MISSING"))
		fmt.Printf("  %s\n", spec.Path)
		return false
	}
	if binary, _ := util.IsBinaryFile(spec.Path); binary {
		fmt.Println(styles.Errorf("BINARY"))
		fmt.Printf("  %s is not a text file\n", spec.Path)
		return false
	}

	ds, err := source.Load(ctx, spec)
	if err != nil {
		fmt.Println(styles.Errorf("UNREADABLE"))
		fmt.Printf("  Error: %v\n", err)
		return false
	}
	fmt.Println(styles.Successf("OK") + fmt.Sprintf(" (%d rows, %d columns, modified %s)",
		len(ds.Rows), len(ds.Columns), util.RelativeTimeShort(info.ModTime())))
	if ds.Truncated {
		fmt.Printf("  Only the first %d rows are read (database.max_rows)\n", spec.MaxRows)
	}
	return true
}

func pingDatabase(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := source.Connect(ctx, url)
	if err != nil {
		return err
	}
	db.Close()
	return nil
}
