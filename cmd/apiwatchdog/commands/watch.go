package commands

import (
	"github.com/spf13/cobra"

	"github.com/five82/apiwatchdog/internal/app"
	"github.com/five82/apiwatchdog/internal/provider"
)

const defaultInterval = 5

func newWeatherCmd(runner Runner, flags *globalFlags) *cobra.Command {
	w := app.Watch{Kind: provider.KindWeather}

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Watch current weather for a location",
		Example: `  apiwatchdog weather --cli -L "London,uk"
  apiwatchdog weather -L Paris -i 60 -l logs/paris.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd, runner, flags, w)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&w.Query, "location", "L", "", "Location to watch, e.g. London,uk")
	f.IntVarP(&w.Interval, "interval", "i", defaultInterval, "Seconds between polls")
	f.StringVarP(&w.LogFile, "log-file", "l", provider.KindWeather.DefaultLogFile(), "Log file")
	return cmd
}

func newStockCmd(runner Runner, flags *globalFlags) *cobra.Command {
	w := app.Watch{Kind: provider.KindStock}

	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Watch intraday prices for a stock symbol",
		Example: `  apiwatchdog stock --cli -s AAPL
  apiwatchdog stock --cli -s MSFT -b 15 -i 300`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd, runner, flags, w)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&w.Query, "stock", "s", "", "Stock symbol to watch, e.g. AAPL")
	f.IntVarP(&w.BarMinutes, "bar-interval", "b", provider.DefaultBarMinutes, "Intraday bar size in minutes: 1, 5, 15, 30 or 60")
	f.IntVarP(&w.Interval, "interval", "i", defaultInterval, "Seconds between polls")
	f.StringVarP(&w.LogFile, "log-file", "l", provider.KindStock.DefaultLogFile(), "Log file")
	return cmd
}
