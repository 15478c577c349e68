package gen

import (
	"github.com/broady/typets/cmd/typets/internal/cli"
	"github.com/broady/typets/format"
	"github.com/broady/typets/typetsgen"
)

// GoCmd generates declarations straight from Go packages without a
// configuration file.
type GoCmd struct {
	Packages  []string `arg:"" optional:"" help:"Go package patterns." default:"."`
	Types     []string `help:"Root type names (default: every exported type)." short:"t"`
	Functions bool     `help:"Also emit exported functions and methods."`
	Namespace string   `help:"Wrap output in a declared namespace." short:"n"`
	EnumStyle string   `help:"Enum output style." enum:"enum,const_enum,union,object" default:"enum"`
	Comments  bool     `help:"Emit JSDoc from Go doc comments."`
	Out       string   `help:"Output file. Use - for stdout." short:"o" default:"-"`
}

func (c *GoCmd) Run(g *cli.Globals) error {
	gen := typetsgen.FromPackages(c.Packages...).
		Types(c.Types...).
		Namespace(c.Namespace).
		EnumStyle(c.EnumStyle).
		Formatted(format.Default()).
		WithLogger(g.Logger)
	if c.Functions {
		gen = gen.WithFunctions()
	}
	if c.Comments {
		gen = gen.PreserveComments("default")
	}
	return g.Write(gen, "", c.Out)
}
