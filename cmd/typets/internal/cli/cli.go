// Package cli holds state shared by the typets subcommands.
package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/broady/typets/config"
	"github.com/broady/typets/sink"
	"github.com/broady/typets/typetsgen"
)

// Globals is bound into every command's Run method.
type Globals struct {
	Context context.Context
	Config  string
	Logger  *slog.Logger
	Stdout  io.Writer
}

// LoadConfig reads the configuration file named by --config.
func (g *Globals) LoadConfig() (*config.Config, error) {
	return config.Load(g.Config)
}

// Write runs gen into out. An empty out or "-" writes to stdout; relative
// paths are resolved against dir.
func (g *Globals) Write(gen *typetsgen.Generator, dir, out string) error {
	if out == "" || out == "-" {
		_, err := gen.ToSink(g.Context, sink.NewWriterSink(g.Stdout), "-")
		return err
	}

	if dir != "" && !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	res, err := gen.ToFile(g.Context, out)
	if err != nil {
		return err
	}
	g.Logger.Info("wrote declarations",
		slog.String("path", out),
		slog.Int("definitions", res.Definitions),
		slog.Int("warnings", len(res.Warnings)),
	)
	return nil
}
