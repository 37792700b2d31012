// Package main is stock, a command line client that keeps a local product cache in step with the
// stockd REST endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/stocksync/internal/client/app"
	"github.com/abgdnv/stocksync/internal/client/config"
	"github.com/abgdnv/stocksync/pkg/bootstrap"
	"github.com/abgdnv/stocksync/pkg/config/configloader"
	"github.com/spf13/pflag"
)

const usage = `Usage: stock [--config FILE] <command> [flags]

Commands:
  list                                  show cached products, then the synchronized list
  create --name N --quantity Q          create a product on the server and cache it
  update --id I --name N --quantity Q   overwrite a product on the server and in the cache
  delete --id I                         delete a product on the server and from the cache
`

// errUsage marks command line mistakes.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("stock", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	global.Usage = func() { _, _ = fmt.Fprint(stderr, usage) }
	configFile := global.StringP("config", "c", "", "path to the YAML configuration file (default config.yaml)")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if global.NArg() == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := configloader.Load[*config.Config](config.ServiceName,
		configloader.WithDefaults(config.Defaults()),
		configloader.WithConfigFile(*configFile),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger := bootstrap.NewLoggerTo(stderr, cfg.Log.Level)
	logger.Debug("Configuration loaded", "config", cfg.String())

	client, err := app.Open(ctx, cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close the client", "error", err)
		}
	}()

	cmd := &commands{repo: client.Repository, stdout: stdout, stderr: stderr}
	err = cmd.dispatch(ctx, global.Arg(0), global.Args()[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintf(stderr, "%v\n%s", err, usage)
		return 2
	default:
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}
