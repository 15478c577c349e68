package plugins

import (
	"bytes"

	"github.com/broady/typets"
	"github.com/broady/typets/ir"
	"github.com/broady/typets/typescript"
)

// EnumOptions configures the enum plugin.
type EnumOptions struct {
	// Style is one of "enum" (default), "const_enum", "union" or "object".
	Style string `validate:"omitempty,oneof=enum const_enum union object"`
}

// Enum renders ir.EnumDescriptor definitions into the "enum" bucket.
type Enum struct {
	style typescript.EnumStyle
}

// NewEnum returns an enum plugin for opts.
func NewEnum(opts EnumOptions) (*Enum, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return &Enum{style: typescript.EnumStyle(opts.Style)}, nil
}

func (*Enum) Name() string { return "enum" }

func (*Enum) TypeMap() map[ir.Identifier]string { return nil }

func (*Enum) Supports(td ir.TypeDescriptor) bool {
	_, ok := td.(*ir.EnumDescriptor)
	return ok
}

func (e *Enum) Render(td ir.TypeDescriptor, rc *typets.RenderContext) (typets.Output, error) {
	d := td.(*ir.EnumDescriptor)

	var buf bytes.Buffer
	if rc.EmitComments {
		typescript.WriteJSDoc(&buf, "", d.Documentation)
	}
	typescript.WriteEnum(&buf, d.Name.Name, d.Members, e.style, rc.EmitComments)
	return typets.Output{Text: buf.String()}, nil
}
