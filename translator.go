package typets

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/broady/typets/ir"
)

// Translator turns type descriptors into TypeScript. It owns one Store and
// one Registry; definitions accumulate across calls until Reset.
//
// Resolutions are serialized: each call gets its own traversal stack and
// generic bindings, but the store is shared.
type Translator struct {
	mu           sync.Mutex
	store        *Store
	registry     *Registry
	logger       *slog.Logger
	mappings     map[string]string
	emitComments bool
}

// New returns a Translator with an empty store and no plugins.
func New() *Translator {
	return &Translator{
		store:    NewStore(),
		registry: &Registry{},
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger for registration and fallback diagnostics.
// If not set, slog.Default() is used.
func (t *Translator) WithLogger(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	t.logger = logger
	return t
}

// WithTypeMappings sets replacement renderings keyed by qualified name
// ("module.Name"), bare name or container origin. A mapped named type
// renders as its replacement before any plugin sees it and no definition is
// stored for it. Origin keys apply to containers no plugin claims.
// The mappings replace any set previously.
func (t *Translator) WithTypeMappings(m map[string]string) *Translator {
	t.mappings = maps.Clone(m)
	return t
}

// WithComments enables JSDoc comments on stored definitions.
func (t *Translator) WithComments(enabled bool) *Translator {
	t.emitComments = enabled
	return t
}

// Store returns the translator's definition store.
func (t *Translator) Store() *Store { return t.store }

// Registry returns the translator's plugin registry.
func (t *Translator) Registry() *Registry { return t.registry }

// UsePlugin appends plugins to the dispatch order.
func (t *Translator) UsePlugin(plugins ...Plugin) error {
	return t.registry.Use(plugins...)
}

// OverridePlugin replaces the registered plugin with the same name.
func (t *Translator) OverridePlugin(p Plugin) error {
	return t.registry.Override(p)
}

// Resolve renders td as an in-place type expression, storing definitions
// for every named type it reaches.
func (t *Translator) Resolve(td ir.TypeDescriptor) (Rendered, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := &resolver{t: t}
	return r.resolve(td)
}

// ResolveToText is Resolve returning only the text.
func (t *Translator) ResolveToText(td ir.TypeDescriptor) (string, error) {
	r, err := t.Resolve(td)
	return r.Text, err
}

// Reset clears every stored definition. Plugins and options are kept.
func (t *Translator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store.Reset()
}

// Translate resolves every entry of doc and returns the snapshot of the
// store under doc.Namespace. The store is not reset first, so definitions
// from earlier calls are included.
func (t *Translator) Translate(doc *ir.Document) (string, error) {
	for _, td := range doc.Entries() {
		if _, err := t.Resolve(td); err != nil {
			name := describe(td)
			return "", fmt.Errorf("translate %s: %w", name, err)
		}
	}
	return t.Snapshot(doc.Namespace), nil
}

// lookupMapping consults the configured type mappings for td.
func (t *Translator) lookupMapping(td ir.TypeDescriptor) (string, bool) {
	if len(t.mappings) == 0 {
		return "", false
	}
	var keys []string
	if ir.IsNamed(td) {
		id := td.TypeName()
		keys = append(keys, id.String(), id.Name)
	}
	if c, ok := td.(*ir.ContainerDescriptor); ok {
		keys = append(keys, c.Origin)
	}
	for _, k := range keys {
		if text, ok := t.mappings[k]; ok {
			return text, true
		}
	}
	return "", false
}
