package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/apiwatchdog/cmd/apiwatchdog/commands"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := commands.NewRootCmd(commands.AppRunner{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "apiwatchdog: %v\n", err)
		return commands.ExitCode(err)
	}
	return 0
}
