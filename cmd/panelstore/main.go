// Package main is the entry point for panelstore, the operator tool for the
// panel's persistent entities. It creates the schema, seeds defaults and
// lists, counts, reads, creates, updates, deletes and restores records of
// every stored entity. Every command prints a JSON envelope on stdout and
// reports failures as a JSON error on stderr with a matching exit code.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/utils"
)

// Version information is set during build time through linker flags.
var (
	// version represents the release version of the application.
	version = "dev"

	// commit is the git commit hash from which the application was built.
	commit = "none"

	// buildDate is the timestamp when the application was built.
	buildDate = "unknown"
)

// init loads environment variables from a .env file if present.
func init() {
	// Not finding a .env file is not fatal; configuration may come from
	// the config file or the environment.
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found or couldn't be loaded")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	closeStore()
	if err == nil {
		return constants.ExitOK
	}

	code := utils.ExitCode(err)
	if code == constants.ExitFailure {
		utils.LogError(err, map[string]interface{}{"command": cmd.CommandPath()})
	}
	_ = utils.WriteError(stderr, err)
	return code
}
