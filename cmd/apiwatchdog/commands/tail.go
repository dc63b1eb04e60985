package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/apiwatchdog/internal/config"
	"github.com/five82/apiwatchdog/internal/logtail"
	"github.com/five82/apiwatchdog/internal/prefs"
	"github.com/five82/apiwatchdog/internal/provider"
)

func newTailCmd() *cobra.Command {
	var (
		logFile string
		lines   int
		follow  bool
		poll    bool
		kind    string
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the last records of a watchdog log",
		Long: `Print the last records of a watchdog log.

Without flags this reads the interactive form's log. The weather and stock
commands write weather_api_watchdog.log and stock_api_watchdog.log by
default; use --provider to read those, or --log-file for any other path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != "" && !cmd.Flags().Changed("log-file") {
				k, err := provider.ParseKind(kind)
				if err != nil {
					return err
				}
				logFile = k.DefaultLogFile()
			}
			cmd.SilenceUsage = true
			path := config.ExpandPath(logFile)
			out := cmd.OutOrStdout()

			if !follow || lines > 0 {
				recent, err := logtail.Read(path, lines)
				if err != nil {
					return runtimeFailure(err)
				}
				for _, line := range recent {
					fmt.Fprintln(out, line)
				}
			}
			if !follow {
				return nil
			}
			err := logtail.Follow(cmd.Context(), path, logtail.FollowOptions{FromStart: lines == 0, Poll: poll}, func(line string) {
				fmt.Fprintln(out, line)
			})
			return runtimeFailure(err)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&logFile, "log-file", "l", prefs.DefaultLogFile, "Log file to read (the form's log by default)")
	f.StringVarP(&kind, "provider", "p", "", "Read the default log of the weather or stock command")
	f.IntVarP(&lines, "lines", "n", 20, "Number of records to print, 0 for all")
	f.BoolVarP(&follow, "follow", "f", false, "Keep printing records as they are written")
	f.BoolVar(&poll, "poll", false, "Watch the file by polling instead of inotify")
	return cmd
}
