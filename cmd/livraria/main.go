// Command livraria manages a bookstore catalog from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xiebiao/livraria/internal/interface/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// 1. Ctrl+C / SIGTERM cancel the running workflow and end the menu
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 2. commands build their services through the Wire injector
	app := cli.NewApp(cli.Options{
		Version: version,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Build:   initializeServices,
	})

	if err := app.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", cli.Describe(err))
		cancel()
		os.Exit(1)
	}
}
