package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/five82/apiwatchdog/internal/app"
)

// Runner starts the watchdog in one of its two modes.
type Runner interface {
	RunCLI(ctx context.Context, opts app.Options, w app.Watch) error
	RunForm(ctx context.Context, opts app.Options, initial *app.Watch) error
}

// AppRunner runs the real application.
type AppRunner struct{}

func (AppRunner) RunCLI(ctx context.Context, opts app.Options, w app.Watch) error {
	a, err := app.New(opts)
	if err != nil {
		return err
	}
	return a.RunCLI(ctx, w)
}

func (AppRunner) RunForm(ctx context.Context, opts app.Options, initial *app.Watch) error {
	a, err := app.New(opts)
	if err != nil {
		return err
	}
	return a.RunForm(ctx, initial)
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	cli         bool
	configPath  string
	mirror      bool
	metricsAddr string
	logLevel    string
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath:  g.configPath,
		Mirror:      g.mirror,
		MetricsAddr: g.metricsAddr,
		LogLevel:    g.logLevel,
	}
}

// NewRootCmd builds the command tree. Without a subcommand the interactive
// form opens.
func NewRootCmd(runner Runner) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "apiwatchdog",
		Short: "Poll a weather or stock API and log what it returns",
		Long: `apiwatchdog periodically fetches current weather from OpenWeatherMap or
intraday prices from Alpha Vantage and writes formatted records to a log file.

API keys are read from OPENWEATHERMAP_API_KEY and ALPHAVANTAGE_API_KEY; a .env
file in the working directory is loaded first.

Run a subcommand with --cli to poll in the foreground, or without it to open
the interactive form pre-filled with the given values.`,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runtimeFailure(runner.RunForm(cmd.Context(), flags.options(), nil))
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.cli, "cli", "c", false, "Poll in the foreground instead of opening the form")
	pf.StringVar(&flags.configPath, "config", "", "Settings file, TOML or YAML (default ~/.config/apiwatchdog/config.toml)")
	pf.BoolVar(&flags.mirror, "mirror", false, "Mirror log records to the console")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newWeatherCmd(runner, flags),
		newStockCmd(runner, flags),
		newTailCmd(),
	)
	return root
}

// watch runs w in the mode selected by --cli.
func watch(cmd *cobra.Command, runner Runner, flags *globalFlags, w app.Watch) error {
	cmd.SilenceUsage = true
	if flags.cli {
		return runtimeFailure(runner.RunCLI(cmd.Context(), flags.options(), w))
	}
	return runtimeFailure(runner.RunForm(cmd.Context(), flags.options(), &w))
}
