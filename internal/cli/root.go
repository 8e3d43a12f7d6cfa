package cli

import (
	"github.com/spf13/cobra"

	"github.com/ssebasarias/Dahell/internal/app"
)

// rootOptions carries the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	prefsPath  string
	apiURL     string
}

func (o *rootOptions) appOptions(headless bool) app.Options {
	return app.Options{
		ConfigPath: o.configPath,
		PrefsPath:  o.prefsPath,
		APIURL:     o.apiURL,
		LogStderr:  headless,
	}
}

// NewRootCmd builds the dahell command tree. Running it without a subcommand
// starts the console.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "dahell",
		Short: "Dahell product intelligence console",
		Long: `Dahell is a terminal console for the Dahell product intelligence backend.

It browses Gold Mine opportunities, resolves Cluster Lab orphans, reviews
matcher audits and watches the backend containers.

Run without arguments to start the interactive console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts.appOptions(false))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/dahell/config.toml)")
	flags.StringVar(&opts.prefsPath, "prefs", "", "preferences file (default ~/.config/dahell/prefs.toml)")
	flags.StringVar(&opts.apiURL, "api-url", "", "backend API root, overrides config and DAHELL_API_URL")

	root.AddCommand(
		newTUICmd(opts),
		newGoldMineCmd(opts),
		newOrphansCmd(opts),
		newMockAPICmd(),
		newVersionCmd(version),
	)
	return root
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts.appOptions(false))
		},
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dahell version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("dahell %s\n", version)
		},
	}
}
