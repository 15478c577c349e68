package typets

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/broady/typets/ir"
	"github.com/broady/typets/typescript"
)

// Plugin translates descriptors the core does not understand: enums,
// functions, framework models and opaque payloads. Named composites are
// offered to plugins before the built-in interface renderer.
//
// Plugins must recurse through the RenderContext, never through the
// Translator, so self-references terminate.
type Plugin interface {
	// Name identifies the plugin for OverridePlugin and is the default
	// store bucket for its output.
	Name() string

	// TypeMap maps identities directly to TypeScript text. It is consulted
	// before Supports; hits are returned in place and never stored.
	// Entries with an empty Module match any module.
	TypeMap() map[ir.Identifier]string

	// Supports reports whether the plugin renders td.
	Supports(td ir.TypeDescriptor) bool

	// Render produces the definition for td.
	Render(td ir.TypeDescriptor, rc *RenderContext) (Output, error)
}

// Output is a plugin rendering.
type Output struct {
	// Text is the definition to store. Empty stores nothing.
	Text string

	// Bucket is the store bucket. Defaults to the plugin name.
	Bucket string

	// Reference is returned in place of the type. Defaults to the type name.
	Reference string
}

// RenderContext carries what a plugin needs to render a definition.
type RenderContext struct {
	// GenericNames are the type parameter names of the composite being
	// rendered, in declaration order.
	GenericNames []string

	// GenericDefs are the matching parameter definitions, e.g. "T extends any".
	GenericDefs []string

	// Extends are the rendered supertype references.
	Extends []string

	// EmitComments reports whether definitions should carry JSDoc.
	EmitComments bool

	Logger *slog.Logger

	resolve func(ir.TypeDescriptor) (Rendered, error)
}

// Resolve renders td through the active resolution, sharing its traversal
// stack and generic bindings.
func (rc *RenderContext) Resolve(td ir.TypeDescriptor) (Rendered, error) {
	return rc.resolve(td)
}

// ResolveText is Resolve returning only the text.
func (rc *RenderContext) ResolveText(td ir.TypeDescriptor) (string, error) {
	r, err := rc.resolve(td)
	return r.Text, err
}

// Member renders a composite field as an object member. The member is
// optional when the field is marked optional or its type admits None.
func (rc *RenderContext) Member(f ir.FieldDescriptor) (typescript.Member, error) {
	text, err := rc.ResolveText(f.Type)
	if err != nil {
		return typescript.Member{}, err
	}
	return typescript.Member{
		Name:     f.Name,
		Type:     text,
		Optional: f.Optional || IsNullable(f.Type),
		Doc:      f.Documentation,
	}, nil
}

// IsNullable reports whether td is Optional[T], or a union with a None
// member, after stripping one transparent qualifier.
func IsNullable(td ir.TypeDescriptor) bool {
	switch d := Unwrap(td).(type) {
	case *ir.OptionalDescriptor:
		return true
	case *ir.UnionDescriptor:
		for _, m := range d.Types {
			if isNone(m) {
				return true
			}
		}
	}
	return false
}

func isNone(td ir.TypeDescriptor) bool {
	p, ok := td.(*ir.PrimitiveDescriptor)
	return ok && p.PrimitiveKind == ir.PrimitiveNone
}

// Registry is an ordered list of plugins. The first plugin that maps or
// supports a descriptor wins.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
}

// Use appends plugins in order. If any plugin is invalid, none are added.
func (r *Registry) Use(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := validatePlugin(p); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, plugins...)
	return nil
}

// Override replaces the registered plugin with the same name.
func (r *Registry) Override(p Plugin) error {
	if err := validatePlugin(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.plugins {
		if existing.Name() == p.Name() {
			r.plugins[i] = p
			return nil
		}
	}
	return Errorf(CodePluginNotFound, "no plugin named %q to override", p.Name()).
		WithDetail("plugin", p.Name())
}

// Plugins returns the registered plugins in dispatch order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}

func validatePlugin(p Plugin) error {
	if p == nil {
		return NewError(CodeInvalidPlugin, "plugin is nil")
	}
	if v := reflect.ValueOf(p); v.Kind() == reflect.Pointer && v.IsNil() {
		return Errorf(CodeInvalidPlugin, "plugin %T is a nil pointer", p)
	}
	if p.Name() == "" {
		return Errorf(CodeInvalidPlugin, "plugin %T has no name", p)
	}
	return nil
}

// match is the outcome of registry lookup: either a direct mapping or a
// plugin that supports the descriptor.
type match struct {
	plugin Plugin
	mapped string
	direct bool
}

// find returns the first plugin that maps or supports td.
func (r *Registry) find(td ir.TypeDescriptor) (match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, hasID := identityOf(td)
	for _, p := range r.plugins {
		if hasID {
			if text, ok := lookupTypeMap(p.TypeMap(), id); ok {
				return match{plugin: p, mapped: text, direct: true}, true
			}
		}
		if p.Supports(td) {
			return match{plugin: p}, true
		}
	}
	return match{}, false
}

// identityOf returns the identity used for direct type map lookups: the
// name of a named descriptor, or the origin of a container.
func identityOf(td ir.TypeDescriptor) (ir.Identifier, bool) {
	if ir.IsNamed(td) {
		return td.TypeName(), true
	}
	if c, ok := td.(*ir.ContainerDescriptor); ok {
		return ir.Identifier{Name: c.Origin}, true
	}
	return ir.Identifier{}, false
}

func lookupTypeMap(m map[ir.Identifier]string, id ir.Identifier) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	if text, ok := m[id]; ok {
		return text, true
	}
	if id.Module != "" {
		if text, ok := m[ir.Identifier{Name: id.Name}]; ok {
			return text, true
		}
	}
	return "", false
}
