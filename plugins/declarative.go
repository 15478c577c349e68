package plugins

import (
	"bytes"
	"slices"
	"strings"

	"github.com/broady/typets"
	"github.com/broady/typets/ir"
	"github.com/broady/typets/typescript"
)

// DeclarativeSpec describes a plugin without code, typically loaded from
// the [[plugins]] tables of typets.toml:
//
//	[[plugins]]
//	name = "numpy"
//	modules = ["numpy"]
//	render = "number[]"
//
//	[plugins.types]
//	"numpy.float64" = "number"
type DeclarativeSpec struct {
	Name string `toml:"name" yaml:"name" validate:"required"`

	// Types are direct renderings keyed by "Name" or "module.Name".
	Types map[string]string `toml:"types" yaml:"types" validate:"dive,keys,required,endkeys,required"`

	// Frameworks and Modules select named descriptors to render as an alias
	// of Render.
	Frameworks []string `toml:"frameworks" yaml:"frameworks" validate:"dive,required"`
	Modules    []string `toml:"modules" yaml:"modules" validate:"dive,required"`

	// Render is the aliased type for selected descriptors.
	Render string `toml:"render" yaml:"render" validate:"required_with=Frameworks Modules"`
}

// Declarative is a plugin built from a DeclarativeSpec.
type Declarative struct {
	spec    DeclarativeSpec
	typeMap map[ir.Identifier]string
}

// NewDeclarative validates spec and builds its plugin.
func NewDeclarative(spec DeclarativeSpec) (*Declarative, error) {
	if err := validateOptions(spec); err != nil {
		return nil, err
	}

	typeMap := make(map[ir.Identifier]string, len(spec.Types))
	for key, ts := range spec.Types {
		typeMap[ParseIdentifier(key)] = ts
	}
	return &Declarative{spec: spec, typeMap: typeMap}, nil
}

// ParseIdentifier splits "module.Name" at its last dot.
func ParseIdentifier(s string) ir.Identifier {
	if i := strings.LastIndexByte(s, '.'); i > 0 && i < len(s)-1 {
		return ir.Identifier{Name: s[i+1:], Module: s[:i]}
	}
	return ir.Identifier{Name: s}
}

func (d *Declarative) Name() string { return d.spec.Name }

func (d *Declarative) TypeMap() map[ir.Identifier]string { return d.typeMap }

func (d *Declarative) Supports(td ir.TypeDescriptor) bool {
	if d.spec.Render == "" || !ir.IsNamed(td) {
		return false
	}
	if slices.Contains(d.spec.Modules, td.TypeName().Module) {
		return true
	}
	return slices.Contains(d.spec.Frameworks, frameworkOf(td))
}

func (d *Declarative) Render(td ir.TypeDescriptor, rc *typets.RenderContext) (typets.Output, error) {
	var buf bytes.Buffer
	if rc.EmitComments {
		typescript.WriteJSDoc(&buf, "", td.Doc())
	}
	typescript.WriteAlias(&buf, td.TypeName().Name, nil, d.spec.Render)
	return typets.Output{Text: buf.String()}, nil
}

func frameworkOf(td ir.TypeDescriptor) string {
	switch d := td.(type) {
	case *ir.CompositeDescriptor:
		return d.Framework
	case *ir.OpaqueDescriptor:
		return d.Framework
	}
	return ""
}
