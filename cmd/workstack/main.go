package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/workstack-dev/workstack/internal/cli"
)

func init() {
	if os.Getenv("CLICOLOR_FORCE") == "1" {
		color.NoColor = false
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.RootCmd()
	err := rootCmd.ExecuteContext(ctx)
	cli.CloseContainer()

	if ctx.Err() != nil {
		os.Exit(130)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
