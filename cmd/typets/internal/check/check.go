package check

import (
	"fmt"

	"github.com/broady/typets/cmd/typets/internal/cli"
	"github.com/broady/typets/typetsgen"
)

type Cmd struct {
	Strict bool `help:"Fail when the input produces warnings."`
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

	res, err := gen.WithLogger(g.Logger).Check(g.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(g.Stdout, "✓ %d definitions\n", res.Definitions)
	for _, w := range res.Warnings {
		fmt.Fprintf(g.Stdout, "! %s: %s\n", w.TypeName, w.Message)
	}
	if c.Strict && len(res.Warnings) > 0 {
		return fmt.Errorf("%d warnings", len(res.Warnings))
	}
	return nil
}
