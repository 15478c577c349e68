package ir

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Documents are YAML (or JSON, which is a subset) of the form:
//
//	module: app.models
//	namespace: api
//	types:
//	  - kind: typevar
//	    name: T
//	    bound: int
//	  - kind: composite
//	    name: Page
//	    typeParams: [T]
//	    fields:
//	      - name: items
//	        type: {kind: container, origin: list, args: [T]}
//	roots:
//	  - {kind: instance, origin: Page, args: [str]}
//
// A scalar in type position is a primitive spelling ("int", "str", "None",
// ...), "..." for the variadic marker, the name of a definition, or
// otherwise a forward reference.

type rawDocument struct {
	Module    string      `yaml:"module"`
	Namespace string      `yaml:"namespace"`
	Types     []rawType   `yaml:"types"`
	Roots     []yaml.Node `yaml:"roots"`
}

type rawType struct {
	Kind        string         `yaml:"kind"`
	Name        string         `yaml:"name"`
	Module      string         `yaml:"module"`
	Doc         string         `yaml:"doc"`
	Type        yaml.Node      `yaml:"type"`
	Bound       yaml.Node      `yaml:"bound"`
	Constraints []*yaml.Node   `yaml:"constraints"`
	Framework   string         `yaml:"framework"`
	TypeParams  []yaml.Node    `yaml:"typeParams"`
	Bases       []*yaml.Node   `yaml:"bases"`
	Fields      []rawField     `yaml:"fields"`
	Members     []rawMember    `yaml:"members"`
	Params      []rawField     `yaml:"params"`
	Returns     yaml.Node      `yaml:"returns"`
	Method      bool           `yaml:"method"`
	Payload     map[string]any `yaml:"payload"`
}

type rawField struct {
	Name     string    `yaml:"name"`
	Type     yaml.Node `yaml:"type"`
	Optional bool      `yaml:"optional"`
	Exclude  bool      `yaml:"exclude"`
	Doc      string    `yaml:"doc"`
}

type rawMember struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
	Doc   string `yaml:"doc"`
}

type rawExpr struct {
	Kind    string       `yaml:"kind"`
	Name    string       `yaml:"name"`
	Origin  string       `yaml:"origin"`
	Args    []*yaml.Node `yaml:"args"`
	Types   []*yaml.Node `yaml:"types"`
	Type    yaml.Node    `yaml:"type"`
	Values  []any        `yaml:"values"`
	Params  yaml.Node    `yaml:"params"`
	Returns yaml.Node    `yaml:"returns"`
	Value   any          `yaml:"value"`
	Items   []*yaml.Node `yaml:"items"`
}

// ParseDocument decodes a YAML or JSON document.
func ParseDocument(data []byte) (*Document, error) {
	return ReadDocument(bytes.NewReader(data))
}

// ReadDocument decodes a YAML or JSON document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	var raw rawDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("decode document: %w", err)
	}

	d := &decoder{
		module: raw.Module,
		named:  make(map[string]TypeDescriptor),
	}
	return d.document(&raw)
}

type decoder struct {
	module string
	named  map[string]TypeDescriptor

	// scope holds type parameters declared inline on the composite being
	// decoded. Consulted before named.
	scope map[string]TypeDescriptor
}

func (d *decoder) document(raw *rawDocument) (*Document, error) {
	doc := &Document{Module: raw.Module, Namespace: raw.Namespace}

	// First pass: allocate one descriptor per definition so references
	// resolve to the same pointer regardless of declaration order.
	shells := make([]TypeDescriptor, len(raw.Types))
	for i := range raw.Types {
		rt := &raw.Types[i]
		shell, err := d.shell(rt)
		if err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
		shells[i] = shell
		if _, exists := d.named[rt.Name]; !exists {
			d.named[rt.Name] = shell
		}
		doc.AddType(shell)
	}

	// Second pass: fill bodies.
	for i := range raw.Types {
		if err := d.fill(shells[i], &raw.Types[i]); err != nil {
			return nil, fmt.Errorf("types[%d] %s: %w", i, raw.Types[i].Name, err)
		}
	}

	for i := range raw.Roots {
		td, err := d.expr(&raw.Roots[i])
		if err != nil {
			return nil, fmt.Errorf("roots[%d]: %w", i, err)
		}
		doc.Roots = append(doc.Roots, td)
	}
	return doc, nil
}

func (d *decoder) ident(rt *rawType) Identifier {
	module := rt.Module
	if module == "" {
		module = d.module
	}
	return Identifier{Name: rt.Name, Module: module}
}

func (d *decoder) shell(rt *rawType) (TypeDescriptor, error) {
	id := d.ident(rt)
	var doc Documentation
	if rt.Doc != "" {
		doc = Doc(rt.Doc)
	}
	switch rt.Kind {
	case "composite", "class", "model":
		return &CompositeDescriptor{Name: id, Framework: rt.Framework, Documentation: doc}, nil
	case "alias":
		return &AliasDescriptor{Name: id, Documentation: doc}, nil
	case "typevar":
		return &TypeVarDescriptor{Name: id}, nil
	case "enum":
		ed := &EnumDescriptor{Name: id, Documentation: doc}
		for _, m := range rt.Members {
			member := EnumMember{Name: m.Name, Value: normalizeScalar(m.Value)}
			if m.Doc != "" {
				member.Documentation = Doc(m.Doc)
			}
			ed.Members = append(ed.Members, member)
		}
		return ed, nil
	case "function", "method":
		return &FunctionDescriptor{Name: id, Method: rt.Method || rt.Kind == "method", Documentation: doc}, nil
	case "opaque":
		return &OpaqueDescriptor{Name: id, Framework: rt.Framework, Payload: rt.Payload}, nil
	case "":
		return nil, fmt.Errorf("definition %q has no kind", rt.Name)
	default:
		return nil, fmt.Errorf("unknown definition kind %q", rt.Kind)
	}
}

func (d *decoder) fill(td TypeDescriptor, rt *rawType) error {
	var err error
	switch t := td.(type) {
	case *AliasDescriptor:
		t.Underlying, err = d.optionalExpr(&rt.Type)
		if err == nil && t.Underlying == nil {
			err = fmt.Errorf("alias requires a type")
		}
	case *TypeVarDescriptor:
		if t.Bound, err = d.optionalExpr(&rt.Bound); err != nil {
			return err
		}
		t.Constraints, err = d.exprList(rt.Constraints)
	case *CompositeDescriptor:
		err = d.fillComposite(t, rt)
	case *FunctionDescriptor:
		for _, p := range rt.Params {
			pt, perr := d.optionalExpr(&p.Type)
			if perr != nil {
				return fmt.Errorf("param %s: %w", p.Name, perr)
			}
			if pt == nil {
				pt = Any()
			}
			t.Params = append(t.Params, ParamDescriptor{Name: p.Name, Type: pt, Optional: p.Optional})
		}
		t.Return, err = d.optionalExpr(&rt.Returns)
	}
	return err
}

func (d *decoder) fillComposite(cd *CompositeDescriptor, rt *rawType) error {
	d.scope = make(map[string]TypeDescriptor)
	defer func() { d.scope = nil }()

	for i := range rt.TypeParams {
		n := &rt.TypeParams[i]
		var tv *TypeVarDescriptor
		if n.Kind == yaml.ScalarNode {
			if existing, ok := d.named[n.Value].(*TypeVarDescriptor); ok {
				tv = existing
			} else {
				tv = &TypeVarDescriptor{Name: Identifier{Name: n.Value}}
			}
		} else {
			var inline rawType
			if err := n.Decode(&inline); err != nil {
				return fmt.Errorf("line %d: type parameter: %w", n.Line, err)
			}
			tv = &TypeVarDescriptor{Name: Identifier{Name: inline.Name}}
			if err := d.fill(tv, &inline); err != nil {
				return fmt.Errorf("type parameter %s: %w", inline.Name, err)
			}
		}
		cd.TypeParams = append(cd.TypeParams, tv)
		d.scope[tv.Name.Name] = tv
	}

	bases, err := d.exprList(rt.Bases)
	if err != nil {
		return fmt.Errorf("bases: %w", err)
	}
	cd.Bases = bases

	for _, f := range rt.Fields {
		ft, err := d.optionalExpr(&f.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if ft == nil {
			ft = Any()
		}
		field := FieldDescriptor{Name: f.Name, Type: ft, Optional: f.Optional, Exclude: f.Exclude}
		if f.Doc != "" {
			field.Documentation = Doc(f.Doc)
		}
		cd.Fields = append(cd.Fields, field)
	}
	return nil
}

// optionalExpr decodes n, returning nil when the node is absent.
func (d *decoder) optionalExpr(n *yaml.Node) (TypeDescriptor, error) {
	if n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return nil, nil
	}
	return d.expr(n)
}

func (d *decoder) exprList(nodes []*yaml.Node) ([]TypeDescriptor, error) {
	var out []TypeDescriptor
	for _, n := range nodes {
		td, err := d.expr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, td)
	}
	return out, nil
}

func (d *decoder) lookup(name string) (TypeDescriptor, bool) {
	if td, ok := d.scope[name]; ok {
		return td, true
	}
	td, ok := d.named[name]
	return td, ok
}

func (d *decoder) expr(n *yaml.Node) (TypeDescriptor, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return d.expr(n.Alias)
	case yaml.ScalarNode:
		return d.scalar(n.Value), nil
	case yaml.SequenceNode:
		items, err := d.exprList(n.Content)
		if err != nil {
			return nil, err
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: unexpected node in type position", n.Line)
	}

	var re rawExpr
	if err := n.Decode(&re); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}

	switch re.Kind {
	case "primitive":
		k, ok := LookupPrimitive(re.Name)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown primitive %q", n.Line, re.Name)
		}
		return Primitive(k), nil
	case "container":
		if re.Origin == "" {
			return nil, fmt.Errorf("line %d: container requires an origin", n.Line)
		}
		args, err := d.exprList(re.Args)
		if err != nil {
			return nil, err
		}
		return Container(re.Origin, args...), nil
	case "union":
		types, err := d.exprList(re.Types)
		if err != nil {
			return nil, err
		}
		return Union(types...), nil
	case "optional":
		elem, err := d.optionalExpr(&re.Type)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			return nil, fmt.Errorf("line %d: optional requires a type", n.Line)
		}
		return Optional(elem), nil
	case "literal":
		values := make([]any, len(re.Values))
		for i, v := range re.Values {
			values[i] = normalizeScalar(v)
		}
		return Literal(values...), nil
	case "callable":
		return d.callable(n, &re)
	case "ref":
		td, ok := d.lookup(re.Name)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown type %q", n.Line, re.Name)
		}
		return td, nil
	case "forward":
		return ForwardRef(re.Name), nil
	case "instance":
		origin, ok := d.named[re.Origin].(*CompositeDescriptor)
		if !ok {
			return nil, fmt.Errorf("line %d: %q is not a generic composite", n.Line, re.Origin)
		}
		args, err := d.exprList(re.Args)
		if err != nil {
			return nil, err
		}
		return Instantiate(origin, args...), nil
	case "const":
		return Const(normalizeScalar(re.Value)), nil
	case "sequence":
		items, err := d.exprList(re.Items)
		if err != nil {
			return nil, err
		}
		return Sequence(items...), nil
	case "ellipsis":
		return Ellipsis(), nil
	default:
		return nil, fmt.Errorf("line %d: unknown type kind %q", n.Line, re.Kind)
	}
}

func (d *decoder) scalar(s string) TypeDescriptor {
	if s == "..." {
		return Ellipsis()
	}
	if k, ok := LookupPrimitive(s); ok {
		return Primitive(k)
	}
	if td, ok := d.lookup(s); ok {
		return td
	}
	return ForwardRef(s)
}

func (d *decoder) callable(n *yaml.Node, re *rawExpr) (TypeDescriptor, error) {
	ret, err := d.optionalExpr(&re.Returns)
	if err != nil {
		return nil, err
	}
	switch re.Params.Kind {
	case 0:
		return Callable(nil, ret), nil
	case yaml.ScalarNode:
		if re.Params.Value != "..." {
			return nil, fmt.Errorf("line %d: callable params must be a list or ...", n.Line)
		}
		return VariadicCallable(ret), nil
	case yaml.SequenceNode:
		params, err := d.exprList(re.Params.Content)
		if err != nil {
			return nil, err
		}
		return Callable(params, ret), nil
	default:
		return nil, fmt.Errorf("line %d: callable params must be a list or ...", n.Line)
	}
}

// normalizeScalar widens decoded integers to int64 so literal and enum
// values have a single integer representation.
func normalizeScalar(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}
