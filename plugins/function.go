package plugins

import (
	"bytes"
	"fmt"

	"github.com/broady/typets"
	"github.com/broady/typets/ir"
	"github.com/broady/typets/typescript"
)

// Function renders function and method signatures as ambient declarations:
//
//	function greet(name: string, times?: number): string;
//
// Functions and methods are stored in separate buckets and referenced as
// "typeof name".
type Function struct{}

func (*Function) Name() string { return "function" }

func (*Function) TypeMap() map[ir.Identifier]string { return nil }

func (*Function) Supports(td ir.TypeDescriptor) bool {
	_, ok := td.(*ir.FunctionDescriptor)
	return ok
}

func (*Function) Render(td ir.TypeDescriptor, rc *typets.RenderContext) (typets.Output, error) {
	d := td.(*ir.FunctionDescriptor)
	name := d.Name.Name

	params := make([]typescript.Param, 0, len(d.Params))
	for _, p := range d.Params {
		text, err := rc.ResolveText(p.Type)
		if err != nil {
			return typets.Output{}, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		params = append(params, typescript.Param{
			Name:     p.Name,
			Type:     text,
			Optional: p.Optional || typets.IsNullable(p.Type),
		})
	}

	ret := "void"
	if d.Return != nil && !isNone(d.Return) {
		text, err := rc.ResolveText(d.Return)
		if err != nil {
			return typets.Output{}, fmt.Errorf("return: %w", err)
		}
		ret = text
	}

	var buf bytes.Buffer
	if rc.EmitComments {
		typescript.WriteJSDoc(&buf, "", d.Documentation)
	}
	typescript.WriteFunction(&buf, name, params, ret)

	bucket := "function"
	if d.Method {
		bucket = "method"
	}
	return typets.Output{
		Text:      buf.String(),
		Bucket:    bucket,
		Reference: "typeof " + name,
	}, nil
}

func isNone(td ir.TypeDescriptor) bool {
	p, ok := typets.Unwrap(td).(*ir.PrimitiveDescriptor)
	return ok && p.PrimitiveKind == ir.PrimitiveNone
}
