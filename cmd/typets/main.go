package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/broady/typets/cmd/typets/internal/check"
	"github.com/broady/typets/cmd/typets/internal/cli"
	"github.com/broady/typets/cmd/typets/internal/gen"
	"github.com/broady/typets/cmd/typets/internal/serve"
	"github.com/broady/typets/config"
)

type CLI struct {
	Config   string `help:"Path to the configuration file." short:"c" default:"${config_file}" type:"path"`
	LogLevel string `help:"Minimum log level." enum:"debug,info,warn,error" default:"info"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate TypeScript declarations from the configuration file."`
	Check   check.Cmd  `cmd:"" help:"Validate and translate the configured input without writing files."`
	Go      gen.GoCmd  `cmd:"" name:"go" help:"Generate TypeScript declarations from Go packages."`
	Serve   serve.Cmd  `cmd:"" help:"Start the HTTP translation playground."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *cli.Globals) error {
	fmt.Fprintln(g.Stdout, Version())
	return nil
}

// newLogger writes human-readable logs to a terminal and JSON otherwise.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func main() {
	var args CLI
	kctx := kong.Parse(&args,
		kong.Name("typets"),
		kong.Description("Translate type descriptors and Go types into TypeScript declarations."),
		kong.Vars{"config_file": config.DefaultFile},
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(args.LogLevel)
	slog.SetDefault(logger)

	err := kctx.Run(&cli.Globals{
		Context: ctx,
		Config:  args.Config,
		Logger:  logger,
		Stdout:  os.Stdout,
	})
	kctx.FatalIfErrorf(err)
}
