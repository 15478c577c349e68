package ir

import "encoding/json"

// Serialization support for documents. The encoded form is the same shape
// ReadDocument accepts, so a document produced by a front end can be written
// out and translated later. Every definition and expression object carries a
// "kind" field for type discrimination.

// MarshalJSON implements json.Marshaler for Document.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.value())
}

// MarshalYAML implements yaml.Marshaler for Document.
func (d *Document) MarshalYAML() (any, error) {
	return d.value(), nil
}

func (d *Document) value() map[string]any {
	out := map[string]any{}
	if d.Module != "" {
		out["module"] = d.Module
	}
	if d.Namespace != "" {
		out["namespace"] = d.Namespace
	}

	declared := make(map[TypeDescriptor]bool, len(d.Types))
	for _, t := range d.Types {
		declared[t] = true
	}

	types := make([]any, 0, len(d.Types))
	for _, t := range d.Types {
		types = append(types, d.definitionValue(t, declared))
	}
	out["types"] = types

	if len(d.Roots) > 0 {
		roots := make([]any, 0, len(d.Roots))
		for _, r := range d.Roots {
			roots = append(roots, exprValue(r))
		}
		out["roots"] = roots
	}
	return out
}

func (d *Document) definitionValue(td TypeDescriptor, declared map[TypeDescriptor]bool) map[string]any {
	name := td.TypeName()
	m := map[string]any{"name": name.Name}
	if name.Module != "" && name.Module != d.Module {
		m["module"] = name.Module
	}
	if doc := td.Doc(); doc.Body != "" {
		m["doc"] = doc.Body
	}

	switch t := td.(type) {
	case *CompositeDescriptor:
		m["kind"] = "composite"
		if t.Framework != "" {
			m["framework"] = t.Framework
		}
		if len(t.TypeParams) > 0 {
			params := make([]any, 0, len(t.TypeParams))
			for _, tp := range t.TypeParams {
				if declared[tp] {
					params = append(params, tp.Name.Name)
					continue
				}
				params = append(params, typeVarValue(tp))
			}
			m["typeParams"] = params
		}
		if len(t.Bases) > 0 {
			m["bases"] = exprValues(t.Bases)
		}
		fields := make([]any, 0, len(t.Fields))
		for _, f := range t.Fields {
			fm := map[string]any{"name": f.Name, "type": exprValue(f.Type)}
			if f.Optional {
				fm["optional"] = true
			}
			if f.Exclude {
				fm["exclude"] = true
			}
			if f.Documentation.Body != "" {
				fm["doc"] = f.Documentation.Body
			}
			fields = append(fields, fm)
		}
		m["fields"] = fields
	case *AliasDescriptor:
		m["kind"] = "alias"
		m["type"] = exprValue(t.Underlying)
	case *TypeVarDescriptor:
		for k, v := range typeVarValue(t) {
			m[k] = v
		}
	case *EnumDescriptor:
		m["kind"] = "enum"
		members := make([]any, 0, len(t.Members))
		for _, mem := range t.Members {
			mm := map[string]any{"name": mem.Name, "value": mem.Value}
			if mem.Documentation.Body != "" {
				mm["doc"] = mem.Documentation.Body
			}
			members = append(members, mm)
		}
		m["members"] = members
	case *FunctionDescriptor:
		m["kind"] = "function"
		if t.Method {
			m["kind"] = "method"
		}
		params := make([]any, 0, len(t.Params))
		for _, p := range t.Params {
			pm := map[string]any{"name": p.Name, "type": exprValue(p.Type)}
			if p.Optional {
				pm["optional"] = true
			}
			params = append(params, pm)
		}
		m["params"] = params
		if t.Return != nil {
			m["returns"] = exprValue(t.Return)
		}
	case *OpaqueDescriptor:
		m["kind"] = "opaque"
		if t.Framework != "" {
			m["framework"] = t.Framework
		}
		if len(t.Payload) > 0 {
			m["payload"] = t.Payload
		}
	}
	return m
}

func typeVarValue(t *TypeVarDescriptor) map[string]any {
	m := map[string]any{"kind": "typevar", "name": t.Name.Name}
	if t.Bound != nil {
		m["bound"] = exprValue(t.Bound)
	}
	if len(t.Constraints) > 0 {
		m["constraints"] = exprValues(t.Constraints)
	}
	return m
}

func exprValues(tds []TypeDescriptor) []any {
	out := make([]any, 0, len(tds))
	for _, td := range tds {
		out = append(out, exprValue(td))
	}
	return out
}

// exprValue encodes a type expression. Named descriptors are written as
// references; their bodies appear once under "types".
func exprValue(td TypeDescriptor) any {
	if td == nil {
		return nil
	}
	if IsNamed(td) {
		return map[string]any{"kind": "ref", "name": td.TypeName().Name}
	}

	switch t := td.(type) {
	case *PrimitiveDescriptor:
		return t.PrimitiveKind.SourceName()
	case *ContainerDescriptor:
		return map[string]any{"kind": "container", "origin": t.Origin, "args": exprValues(t.Args)}
	case *UnionDescriptor:
		return map[string]any{"kind": "union", "types": exprValues(t.Types)}
	case *OptionalDescriptor:
		return map[string]any{"kind": "optional", "type": exprValue(t.Element)}
	case *LiteralDescriptor:
		values := t.Values
		if values == nil {
			values = []any{}
		}
		return map[string]any{"kind": "literal", "values": values}
	case *CallableDescriptor:
		m := map[string]any{"kind": "callable"}
		if t.Variadic {
			m["params"] = "..."
		} else {
			m["params"] = exprValues(t.Params)
		}
		if t.Return != nil {
			m["returns"] = exprValue(t.Return)
		}
		return m
	case *InstanceDescriptor:
		origin := ""
		if t.Origin != nil {
			origin = t.Origin.Name.Name
		}
		return map[string]any{"kind": "instance", "origin": origin, "args": exprValues(t.Args)}
	case *ForwardRefDescriptor:
		return map[string]any{"kind": "forward", "name": t.Target}
	case *ConstDescriptor:
		return map[string]any{"kind": "const", "value": t.Value}
	case *SequenceDescriptor:
		return map[string]any{"kind": "sequence", "items": exprValues(t.Items)}
	case *EllipsisDescriptor:
		return "..."
	}
	return nil
}
