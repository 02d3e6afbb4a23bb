package cli

import (
	"errors"
	"fmt"

	"github.com/imgajeed76/gridcore/internal/config"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/imgajeed76/gridcore/internal/util"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get and set grid options and preferences",
		Long: `Get and set options of the nearest grid.toml, or global preferences
with --global.

Grid options (grid.toml):
` + config.GenerateLocalHelpText() + `

Preferences (--global):
` + config.GenerateHelpText() + `

Columns, initial state and localization are edited in grid.toml directly.

Examples:
  grid config table.title "Sales 2024"        # Set value
  grid config features.grouping true           # Enable grouping
  grid config --global display.page_size 50    # Set a preference
  grid config --global database.url            # Get value
  grid config --list                           # List all options`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}

	cmd.Flags().BoolP("list", "l", false, "List all configuration")
	cmd.Flags().BoolP("global", "g", false, "Use global preferences instead of grid.toml")

	return cmd
}

// settings is what config get/set/list need from either config file.
type settings interface {
	GetValue(key string) (string, bool)
	SetValue(key, value string) error
}

func runConfig(cmd *cobra.Command, args []string) error {
	listAll, _ := cmd.Flags().GetBool("list")
	global, _ := cmd.Flags().GetBool("global")

	var (
		cfg  settings
		keys []string
		save func() error
	)
	if global {
		cfg = prefs
		keys = config.ListGlobalKeys()
		save = prefs.Save
	} else {
		path, err := util.FindGridFile()
		if err != nil {
			if errors.Is(err, util.ErrNoGridFile) {
				return util.NoGridFileError().
					WithSuggestion("grid config --global <key>   # Edit preferences instead")
			}
			return err
		}
		local, err := config.Load(path)
		if err != nil {
			return util.InvalidGridError(path, err)
		}
		cfg = local
		keys = config.ListLocalKeys()
		save = func() error { return local.Save(path) }
	}

	if listAll {
		for _, key := range keys {
			value, _ := cfg.GetValue(key)
			fmt.Printf("%s=%s\n", key, value)
		}
		return nil
	}

	if len(args) == 0 {
		return util.MissingArgumentError("key", "grid config table.title")
	}
	key := args[0]

	// Get or set?
	if len(args) == 1 {
		value, ok := cfg.GetValue(key)
		if !ok {
			return unknownKeyError(key, global)
		}
		fmt.Println(value)
		return nil
	}

	if err := cfg.SetValue(key, args[1]); err != nil {
		return util.NewError("Cannot set " + key).
			WithMessage(err.Error()).
			WithSuggestion("grid config --help   # List keys and allowed values").
			Wrap(err)
	}
	if err := save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println(styles.SuccessMsg(fmt.Sprintf("%s = %s", key, args[1])))
	return nil
}

func unknownKeyError(key string, global bool) error {
	e := util.NewError("Unknown config key: " + key).Wrap(config.ErrUnknownKey)
	if global {
		return e.WithSuggestion("grid config --global --list")
	}
	return e.WithSuggestions(
		"grid config --list",
		"grid config --global "+key+"   # Preferences are under --global",
	)
}
