package serve

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/broady/typets/cmd/typets/internal/cli"
	"github.com/broady/typets/internal/playground"
)

type Cmd struct {
	Addr string `help:"Address to listen on." default:"localhost:8787"`
}

func (c *Cmd) Run(g *cli.Globals) error {
	srv := playground.New().WithLogger(g.Logger)

	// Model and declarative plugins come from the config file when one
	// exists.
	cfg, err := g.LoadConfig()
	switch {
	case err == nil:
		srv = srv.WithPlugins(cfg.BuildPlugins)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return err
	}

	hs := &http.Server{
		Addr:              c.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		g.Logger.Info("playground listening", slog.String("addr", "http://"+c.Addr))
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-g.Context.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(ctx)
}
