package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/five82/shelver/internal/app"
	"github.com/five82/shelver/internal/config"
	"github.com/five82/shelver/internal/logging"
	"github.com/five82/shelver/internal/prefs"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	prefsPath  string
	logLevel   string
	library    string
	poll       int
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		LogLevel:   g.logLevel,
		Library:    g.library,
		PollEvery:  g.poll,
	}
}

// NewRootCmd creates the shelver command tree. Without a subcommand it opens
// the browser.
func NewRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "shelver",
		Short: "Browse an Audiobookshelf library from the terminal",
		Long: `shelver lists the audiobooks, series and podcasts of an Audiobookshelf
library, fetching pages from the server as you scroll.

The server URL and API token are read from ~/.config/shelver/config.toml;
SHELVER_TOKEN overrides the token.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file (default "+prefs.DefaultPath()+")")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.library, "library", "", "library name or id (default: first book library)")

	browse := newBrowseCmd(flags)
	cmd.Flags().IntVar(&flags.poll, "poll", 0, "server status interval in seconds")

	cmd.AddCommand(
		browse,
		newLibrariesCmd(flags),
		newListCmd(flags),
		newSeriesBooksCmd(flags),
	)
	return cmd
}

func newBrowseCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}
	cmd.Flags().IntVar(&flags.poll, "poll", 0, "server status interval in seconds")
	return cmd
}

// connect resolves the session for a headless command. Logs go to the
// command's stderr.
func connect(cmd *cobra.Command, flags *globalFlags) (*app.Session, prefs.Prefs, zerolog.Logger, error) {
	opts := flags.options()
	cfg, err := app.LoadConfig(opts)
	if err != nil {
		return nil, prefs.Prefs{}, zerolog.Nop(), err
	}
	log := logging.ConsoleTo(cmd.ErrOrStderr(), cfg.LogLevel)

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	session, err := app.Connect(ctx, cfg, log)
	if err != nil {
		return nil, prefs.Prefs{}, log, fmt.Errorf("connect: %w", err)
	}
	return session, userPrefs, log, nil
}
