package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/imgajeed76/gridcore/internal/config"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"github.com/imgajeed76/gridcore/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// prefs holds the global preferences, loaded before any command runs.
var prefs = config.DefaultGlobalConfig()

var rootCmd = &cobra.Command{
	Use:   "grid",
	Short: "Explore tabular data in the terminal",
	Long: `grid is an interactive data grid for CSV, TSV, JSON and PostgreSQL
sources. Search, filter, sort, group, page and select rows from the
keyboard, or print the result as a table, JSON or tab-separated values.

A grid.toml next to the data describes columns, enabled features and the
starting state. Without one, columns are inferred from the data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

func Execute() error {
	defer closeLogging()
	if err := rootCmd.Execute(); err != nil {
		// Check if it's a structured GridError
		var gridErr *util.GridError
		if errors.As(err, &gridErr) {
			fmt.Fprintln(os.Stderr, gridErr.Format())
		} else {
			// Simple error - still format nicely
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file")

	// Version flag template to show more info
	rootCmd.SetVersionTemplate(fmt.Sprintf("grid version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	// Set up pre-run to handle global flags
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		p, err := config.LoadGlobal()
		if err != nil {
			return util.NewError("Cannot read preferences").
				WithContext(config.GlobalConfigPath()).
				WithSuggestion("grid config --global --list   # Inspect the preferences").
				Wrap(err)
		}
		prefs = p

		noColor, _ := cmd.Flags().GetBool("no-color")
		if noColor || prefs.Display.NoColor {
			styles.SetNoColor(true)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		logFile, _ := cmd.Flags().GetString("log-file")
		return setupLogging(prefs.Log, verbose, logFile)
	}

	// Add all subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newViewCmd(),
		newSQLCmd(),
		newValidateCmd(),
		newConfigCmd(),
		newDoctorCmd(),
		newCompletionCmd(),
	)
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for grid.

To load completions:

Bash:
  $ source <(grid completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ grid completion bash > /etc/bash_completion.d/grid
  # macOS:
  $ grid completion bash > $(brew --prefix)/etc/bash_completion.d/grid

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ grid completion zsh > "${fpath[1]}/_grid"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ grid completion fish | source

  # To load completions for each session, execute once:
  $ grid completion fish > ~/.config/fish/completions/grid.fish

PowerShell:
  PS> grid completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> grid completion powershell > grid.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("grid version %s\n", Version)
			fmt.Printf("  commit: %s\n", CommitSHA)
			fmt.Printf("  built:  %s\n", BuildDate)
		},
	}
}
