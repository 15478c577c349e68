package gen

import (
	"cmp"
	"fmt"

	"github.com/broady/typets/cmd/typets/internal/cli"
	"github.com/broady/typets/typetsgen"
)

type Cmd struct {
	Out string `help:"Output file, overriding the config. Use - for stdout." short:"o"`
}

func (c *Cmd) Run(g *cli.Globals) error {
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	gen, err := typetsgen.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("configure generator: %w", err)
	}

	// --out is relative to the working directory, config output to the
	// config file.
	if c.Out != "" {
		return g.Write(gen.WithLogger(g.Logger), "", c.Out)
	}
	return g.Write(gen.WithLogger(g.Logger), cfg.Dir(), cmp.Or(cfg.Output, "-"))
}
