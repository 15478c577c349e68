package typets

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/broady/typets/ir"
	"github.com/broady/typets/typescript"
)

// resolver is the state of one top-level resolution: the traversal stack
// used for cycle detection and the generic bindings of the composite being
// rendered. A fresh resolver is used for every Translator.Resolve call.
type resolver struct {
	t        *Translator
	stack    []ir.TypeDescriptor
	bindings BindingMap
}

func (r *resolver) onStack(td ir.TypeDescriptor) bool {
	for _, s := range r.stack {
		if ir.SameEntity(s, td) {
			return true
		}
	}
	return false
}

// resolve renders td, registering definitions for named types it reaches.
func (r *resolver) resolve(td ir.TypeDescriptor) (Rendered, error) {
	if td == nil {
		return Rendered{Text: anyType, Flags: FlagUnknown}, nil
	}
	if r.onStack(td) {
		return Rendered{Text: selfName(td)}, nil
	}

	td = Unwrap(td)
	if r.onStack(td) {
		return Rendered{Text: selfName(td)}, nil
	}
	if text, ok := r.mapped(td); ok {
		return Rendered{Text: text}, nil
	}
	r.stack = append(r.stack, td)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	switch kind := classify(td); kind {
	case KindForwardRef:
		return Rendered{Text: td.(*ir.ForwardRefDescriptor).Target}, nil
	case KindPrimitive:
		return Rendered{Text: renderPrimitive(td.(*ir.PrimitiveDescriptor).PrimitiveKind)}, nil
	case KindConst:
		return Rendered{Text: renderConst(td.(*ir.ConstDescriptor).Value), Flags: FlagLiteral}, nil
	case KindAlias:
		return r.alias(td.(*ir.AliasDescriptor))
	case KindTypeVar:
		return r.typeVar(td.(*ir.TypeVarDescriptor))
	case KindComposite:
		return r.composite(td.(*ir.CompositeDescriptor))
	case KindInstance:
		rendered, _, err := r.instance(td.(*ir.InstanceDescriptor))
		return rendered, err
	case KindSequence:
		return r.tuple(td.(*ir.SequenceDescriptor).Items)
	case KindTuple:
		return r.tuple(td.(*ir.ContainerDescriptor).Args)
	case KindArray, KindRecord, KindSet, KindFrozenSet, KindDeque, KindCounter, KindChainMap:
		return r.container(kind, td.(*ir.ContainerDescriptor).Args)
	case KindUnion:
		args, err := r.resolveAll(td.(*ir.UnionDescriptor).Types)
		if err != nil {
			return Rendered{}, err
		}
		return Rendered{Text: renderUnion(args), Flags: FlagUnion}, nil
	case KindOptional:
		elem, err := r.resolve(td.(*ir.OptionalDescriptor).Element)
		if err != nil {
			return Rendered{}, err
		}
		return Rendered{Text: renderOptional(elem.Text), Flags: FlagOptional | FlagUnion}, nil
	case KindLiteral:
		return Rendered{Text: renderLiteral(td.(*ir.LiteralDescriptor).Values), Flags: FlagLiteral}, nil
	case KindCallable:
		return r.callable(td.(*ir.CallableDescriptor))
	default:
		return r.unknown(td)
	}
}

// mapped reports the configured replacement for a named definition. Type
// variables are left to the generic bindings.
func (r *resolver) mapped(td ir.TypeDescriptor) (string, bool) {
	if _, ok := td.(*ir.TypeVarDescriptor); ok || !ir.IsNamed(td) {
		return "", false
	}
	return r.t.lookupMapping(td)
}

// selfName is the text for a descriptor reached again while it is still
// being resolved.
func selfName(td ir.TypeDescriptor) string {
	if ir.IsNamed(td) {
		return td.TypeName().Name
	}
	if inst, ok := td.(*ir.InstanceDescriptor); ok && inst.Origin != nil {
		return inst.Origin.Name.Name
	}
	return anyType
}

func (r *resolver) resolveAll(tds []ir.TypeDescriptor) ([]string, error) {
	out := make([]string, len(tds))
	for i, td := range tds {
		rendered, err := r.resolve(td)
		if err != nil {
			return nil, err
		}
		out[i] = rendered.Text
	}
	return out, nil
}

// isolate runs fn with no generic bindings in effect, restoring the current
// bindings afterwards. Definitions are rendered in their own scope so a
// binding active at the use site never leaks into a stored definition.
func (r *resolver) isolate(fn func() error) error {
	saved := r.bindings
	r.bindings = nil
	defer func() { r.bindings = saved }()
	return fn()
}

func (r *resolver) register(bucket string, e Entry) {
	if r.t.store.Put(bucket, e) {
		r.t.logger.Debug("registered definition",
			slog.String("bucket", bucket),
			slog.String("name", e.Key.ID.String()))
	}
}

func (r *resolver) alias(d *ir.AliasDescriptor) (Rendered, error) {
	key := KeyOf(d)
	if !r.t.store.Has(key) {
		err := r.isolate(func() error {
			under, err := r.resolve(d.Underlying)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if r.t.emitComments {
				typescript.WriteJSDoc(&buf, "", d.Documentation)
			}
			typescript.WriteAlias(&buf, d.Name.Name, nil, under.Text)
			r.register(BucketAlias, Entry{Key: key, Text: buf.String()})
			return nil
		})
		if err != nil {
			return Rendered{}, fmt.Errorf("alias %s: %w", d.Name.Name, err)
		}
	}
	return Rendered{Text: d.Name.Name, Flags: FlagAlias}, nil
}

func (r *resolver) typeVar(d *ir.TypeVarDescriptor) (Rendered, error) {
	name := d.Name.Name
	key := KeyOf(d)
	if !r.t.store.Has(key) {
		err := r.isolate(func() error {
			constraint := anyType
			switch {
			case d.Bound != nil:
				bound, err := r.resolve(d.Bound)
				if err != nil {
					return err
				}
				constraint = bound.Text
			case len(d.Constraints) > 0:
				parts, err := r.resolveAll(d.Constraints)
				if err != nil {
					return err
				}
				constraint = renderUnion(parts)
			}
			r.register(BucketTypeVar, Entry{Key: key, Text: name + " extends " + constraint})
			return nil
		})
		if err != nil {
			return Rendered{}, fmt.Errorf("type variable %s: %w", name, err)
		}
	}
	if replacement, ok := r.bindings[name]; ok {
		return Rendered{Text: replacement, Flags: FlagTypeVar | FlagGeneric}, nil
	}
	return Rendered{Text: name, Flags: FlagTypeVar}, nil
}

func (r *resolver) composite(d *ir.CompositeDescriptor) (Rendered, error) {
	key := KeyOf(d)
	if e, ok := r.t.store.Get(key); ok {
		return Rendered{Text: e.Reference, Flags: FlagComposite}, nil
	}

	m, matched := r.t.registry.find(d)
	if matched && m.direct {
		return Rendered{Text: m.mapped, Flags: FlagPlugin}, nil
	}

	var rendered Rendered
	err := r.isolate(func() error {
		rc, err := r.compositeContext(d)
		if err != nil {
			return err
		}
		if matched {
			rendered, err = r.renderWith(m.plugin, d, rc)
			rendered.Flags |= FlagComposite
			return err
		}
		text, err := r.renderInterface(d, rc)
		if err != nil {
			return err
		}
		r.register(BucketComposite, Entry{Key: key, Text: text})
		rendered = Rendered{Text: d.Name.Name, Flags: FlagComposite}
		return nil
	})
	if err != nil {
		return Rendered{}, fmt.Errorf("composite %s: %w", d.Name.Name, err)
	}
	return rendered, nil
}

// compositeContext resolves the type parameters and bases of d and installs
// the bindings its generic bases imply. Callers run it inside isolate so the
// bindings are dropped when d is finished.
func (r *resolver) compositeContext(d *ir.CompositeDescriptor) (*RenderContext, error) {
	rc := r.newContext()

	for _, tp := range d.TypeParams {
		if _, err := r.resolve(tp); err != nil {
			return nil, err
		}
		name := tp.Name.Name
		def := name + " extends " + anyType
		if e, ok := r.t.store.Get(KeyOf(tp)); ok {
			def = e.Text
		}
		rc.GenericNames = append(rc.GenericNames, name)
		rc.GenericDefs = append(rc.GenericDefs, def)
	}

	var bound BindingMap
	for _, b := range d.Bases {
		if inst, ok := Unwrap(b).(*ir.InstanceDescriptor); ok && inst.Origin != nil {
			rendered, bindings, err := r.instance(inst)
			if err != nil {
				return nil, err
			}
			rc.Extends = append(rc.Extends, rendered.Text)
			bound = bound.merge(bindings)
			continue
		}
		rendered, err := r.resolve(b)
		if err != nil {
			return nil, err
		}
		rc.Extends = append(rc.Extends, rendered.Text)
	}
	r.bindings = bound

	return rc, nil
}

func (r *resolver) newContext() *RenderContext {
	return &RenderContext{
		EmitComments: r.t.emitComments,
		Logger:       r.t.logger,
		resolve:      r.resolve,
	}
}

// renderInterface is the built-in composite renderer.
func (r *resolver) renderInterface(d *ir.CompositeDescriptor, rc *RenderContext) (string, error) {
	decl := typescript.ObjectDecl{
		Name:         d.Name.Name,
		TypeParams:   rc.GenericDefs,
		Extends:      rc.Extends,
		Doc:          d.Documentation,
		EmitComments: rc.EmitComments,
	}
	for _, f := range d.Fields {
		if f.Exclude {
			continue
		}
		m, err := rc.Member(f)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", f.Name, err)
		}
		decl.Members = append(decl.Members, m)
	}

	var buf bytes.Buffer
	typescript.WriteObject(&buf, decl)
	return buf.String(), nil
}

// instance renders Origin<args> and returns the bindings it implies for the
// origin's parameters.
func (r *resolver) instance(d *ir.InstanceDescriptor) (Rendered, BindingMap, error) {
	origin, err := r.resolve(d.Origin)
	if err != nil {
		return Rendered{}, nil, err
	}
	args, err := r.resolveAll(d.Args)
	if err != nil {
		return Rendered{}, nil, err
	}
	text := origin.Text
	if len(args) > 0 {
		text += "<" + strings.Join(args, ", ") + ">"
	}
	return Rendered{Text: text, Flags: FlagGeneric | FlagComposite}, BindGeneric(d.Origin, args), nil
}

func (r *resolver) tuple(args []ir.TypeDescriptor) (Rendered, error) {
	if len(args) == 2 && ir.IsEllipsis(Unwrap(args[1])) {
		elem, err := r.resolve(args[0])
		if err != nil {
			return Rendered{}, err
		}
		return Rendered{Text: arrayOf(elem), Flags: FlagArray}, nil
	}
	texts, err := r.resolveAll(args)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Text: renderTuple(texts), Flags: FlagTuple}, nil
}

func (r *resolver) container(kind Kind, args []ir.TypeDescriptor) (Rendered, error) {
	texts, err := r.resolveAll(args)
	if err != nil {
		return Rendered{}, err
	}

	var text string
	var flags Flag
	switch kind {
	case KindArray:
		text, flags = renderArray(texts), FlagArray
		if len(texts) > 1 {
			flags = FlagTuple
		}
	case KindRecord:
		text, err = renderRecord(texts)
		flags = FlagRecord
	case KindSet, KindFrozenSet:
		text, err = renderSet(kind, texts)
		flags = FlagSet
	case KindDeque:
		text, err = renderDeque(texts)
		flags = FlagArray
	case KindCounter:
		text, err = renderCounter(texts)
		flags = FlagRecord
	case KindChainMap:
		text, err = renderChainMap(texts)
		flags = FlagRecord
	}
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Text: text, Flags: flags}, nil
}

func (r *resolver) callable(d *ir.CallableDescriptor) (Rendered, error) {
	params := "any[]"
	if !d.Variadic {
		texts, err := r.resolveAll(d.Params)
		if err != nil {
			return Rendered{}, err
		}
		params = "[" + strings.Join(texts, ", ") + "]"
	}

	ret := voidType
	if d.Return != nil && !isNone(Unwrap(d.Return)) {
		rendered, err := r.resolve(d.Return)
		if err != nil {
			return Rendered{}, err
		}
		ret = rendered.Text
	}
	return Rendered{Text: renderCallable(params, ret), Flags: FlagCallable}, nil
}

// unknown handles descriptors outside the built-in shapes: plugins first,
// then container origin mappings, then any.
func (r *resolver) unknown(td ir.TypeDescriptor) (Rendered, error) {
	if ir.IsNamed(td) {
		if e, ok := r.t.store.Get(KeyOf(td)); ok {
			return Rendered{Text: e.Reference, Flags: FlagPlugin}, nil
		}
	}

	if m, ok := r.t.registry.find(td); ok {
		if m.direct {
			return Rendered{Text: m.mapped, Flags: FlagPlugin}, nil
		}
		var rendered Rendered
		err := r.isolate(func() error {
			var err error
			rendered, err = r.renderWith(m.plugin, td, r.newContext())
			return err
		})
		return rendered, err
	}

	if text, ok := r.t.lookupMapping(td); ok {
		return Rendered{Text: text}, nil
	}

	r.t.logger.Warn("unsupported type, rendering any",
		slog.String("kind", td.Kind().String()),
		slog.String("type", describe(td)))
	return Rendered{Text: anyType, Flags: FlagUnknown}, nil
}

// renderWith invokes a plugin and stores its output.
func (r *resolver) renderWith(p Plugin, td ir.TypeDescriptor, rc *RenderContext) (Rendered, error) {
	r.t.logger.Debug("plugin dispatch",
		slog.String("plugin", p.Name()),
		slog.String("type", describe(td)))

	out, err := p.Render(td, rc)
	if err != nil {
		return Rendered{}, Errorf(CodePluginFailed, "plugin %s: %v", p.Name(), err).
			WithDetail("plugin", p.Name()).
			WithDetail("type", describe(td))
	}

	bucket := out.Bucket
	if bucket == "" {
		bucket = p.Name()
	}
	ref := out.Reference
	if ref == "" {
		ref = td.TypeName().Name
	}
	if ref == "" {
		ref = anyType
	}

	key := KeyOf(td)
	if !ir.IsNamed(td) {
		key = Key{Kind: td.Kind(), ID: ir.Identifier{Name: ref}}
	}
	if out.Text != "" {
		r.register(bucket, Entry{Key: key, Text: out.Text, Reference: ref})
	}
	return Rendered{Text: ref, Flags: FlagPlugin}, nil
}

// describe names td for logs and error details.
func describe(td ir.TypeDescriptor) string {
	if ir.IsNamed(td) {
		return td.TypeName().String()
	}
	if c, ok := td.(*ir.ContainerDescriptor); ok {
		return c.Origin
	}
	return td.Kind().String()
}
