// Package typetsgen drives a complete generation run: it obtains a
// descriptor document from a provider, registers plugins, translates, and
// writes the formatted result to a sink.
package typetsgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"

	"github.com/broady/typets"
	"github.com/broady/typets/config"
	"github.com/broady/typets/format"
	"github.com/broady/typets/ir"
	"github.com/broady/typets/plugins"
	"github.com/broady/typets/provider"
	"github.com/broady/typets/sink"
)

// DefaultFile is the file name Generate renders into.
const DefaultFile = "types.d.ts"

// Generator provides a fluent API for code generation.
// Create with FromDocument, FromFiles, FromTypes, FromPackages or
// FromConfig and configure with method chaining.
//
// Example:
//
//	typetsgen.FromPackages("./internal/models").
//	    Types("User", "Order").
//	    Namespace("api").
//	    ToFile(ctx, "web/src/types.d.ts")
type Generator struct {
	doc   *ir.Document
	files []string
	types []any
	cfg   Config
}

// FromDocument creates a Generator for an already-built document.
func FromDocument(doc *ir.Document) *Generator {
	return &Generator{doc: doc, cfg: Config{Provider: "document"}}
}

// FromFiles creates a Generator reading YAML or JSON descriptor documents.
// Multiple documents are merged in order.
func FromFiles(paths ...string) *Generator {
	return &Generator{files: paths, cfg: Config{Provider: "document"}}
}

// FromTypes creates a Generator that extracts Go types by reflection.
// Pass zero values of the types to translate.
//
// Example:
//
//	typetsgen.FromTypes(User{}, Order{}).Generate(ctx)
func FromTypes(types ...any) *Generator {
	return &Generator{types: types, cfg: Config{Provider: "reflection"}}
}

// FromPackages creates a Generator that analyzes Go packages from source.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Provider: "source", Packages: patterns}}
}

// FromConfig creates a Generator from a loaded typets.toml.
func FromConfig(c *config.Config) (*Generator, error) {
	var g *Generator
	if len(c.Input.Packages) > 0 {
		g = FromPackages(c.Input.Packages...).
			Types(c.Input.Types...).
			Framework(c.Input.Framework).
			Dir(c.Dir())
		if c.Input.Functions {
			g = g.WithFunctions()
		}
	} else {
		g = FromFiles(c.Documents()...)
	}

	extra, err := c.BuildPlugins()
	if err != nil {
		return nil, err
	}
	f, err := c.Formatter()
	if err != nil {
		return nil, err
	}

	g = g.Namespace(c.Namespace).
		EnumStyle(c.EnumStyle).
		WithPlugins(extra...).
		Frontmatter(c.Frontmatter).
		Formatted(f)
	for k, v := range c.TypeMappings {
		g = g.TypeMapping(k, v)
	}
	if c.Comments {
		g = g.PreserveComments("default")
	}
	return g, nil
}

// Types restricts source extraction to the named root types.
func (g *Generator) Types(names ...string) *Generator {
	g.cfg.RootTypes = append(g.cfg.RootTypes, names...)
	return g
}

// WithFunctions also extracts exported functions and methods.
func (g *Generator) WithFunctions() *Generator {
	g.cfg.Functions = true
	return g
}

// Framework tags extracted Go structs for a framework plugin.
func (g *Generator) Framework(name string) *Generator {
	g.cfg.Framework = name
	return g
}

// Dir sets the directory Go packages are resolved from.
func (g *Generator) Dir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// Namespace wraps the output in a declared namespace.
func (g *Generator) Namespace(ns string) *Generator {
	g.cfg.Namespace = ns
	return g
}

// EnumStyle controls enum output.
// Valid values: "enum" (default), "const_enum", "union", "object".
func (g *Generator) EnumStyle(style string) *Generator {
	g.cfg.EnumStyle = style
	return g
}

// PreserveComments controls whether documentation becomes JSDoc.
// Valid values: "none" (default), "default".
func (g *Generator) PreserveComments(mode string) *Generator {
	g.cfg.PreserveComments = mode
	return g
}

// TypeMapping maps a named type ("module.Name" or "Name") to TypeScript.
func (g *Generator) TypeMapping(name, tsType string) *Generator {
	if g.cfg.TypeMappings == nil {
		g.cfg.TypeMappings = make(map[string]string)
	}
	g.cfg.TypeMappings[name] = tsType
	return g
}

// WithPlugins registers plugins after the built-in enum and function
// plugins.
func (g *Generator) WithPlugins(ps ...typets.Plugin) *Generator {
	g.cfg.Plugins = append(g.cfg.Plugins, ps...)
	return g
}

// Frontmatter adds content to the top of the output.
func (g *Generator) Frontmatter(content string) *Generator {
	g.cfg.Frontmatter = content
	return g
}

// Formatted sets the formatter applied when writing. Nil disables
// formatting.
func (g *Generator) Formatted(f format.Formatter) *Generator {
	g.cfg.Formatter = f
	return g
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// GenerateResult summarizes a generation run.
type GenerateResult struct {
	// Output is the generated text. ToSink and ToFile report it before
	// formatting; Generate reports the formatted text.
	Output string

	// Definitions is the number of stored definitions.
	Definitions int

	// Warnings are the provider's non-fatal findings.
	Warnings []ir.Warning
}

// Generate returns the generated declarations in memory.
func (g *Generator) Generate(ctx context.Context) (*GenerateResult, error) {
	mem := sink.NewMemorySink()
	res, err := g.ToSink(ctx, mem, DefaultFile)
	if err != nil {
		return nil, err
	}
	res.Output = string(mem.Get(DefaultFile))
	return res, nil
}

// ToFile writes the generated declarations to path.
// This is a terminal operation that writes to disk.
func (g *Generator) ToFile(ctx context.Context, path string) (*GenerateResult, error) {
	return g.ToSink(ctx, sink.NewFilesystemSink(filepath.Dir(path)), filepath.Base(path))
}

// ToSink writes the generated declarations to path in s.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink, path string) (*GenerateResult, error) {
	cfg := applyConfigDefaults(&g.cfg)

	res, err := g.render(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Formatter != nil {
		s = sink.Formatted(s, cfg.Formatter)
	}
	if err := s.WriteFile(ctx, path, []byte(res.Output)); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return res, nil
}

// Check builds and validates the document and translates it without
// writing anything.
func (g *Generator) Check(ctx context.Context) (*GenerateResult, error) {
	return g.render(ctx, applyConfigDefaults(&g.cfg))
}

func (g *Generator) render(ctx context.Context, cfg *Config) (*GenerateResult, error) {
	doc, err := g.buildDocument(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return nil, typets.AsError(errors.Join(errs...))
	}
	if cfg.Namespace != "" {
		scoped := *doc
		scoped.Namespace = cfg.Namespace
		doc = &scoped
	}

	for _, w := range doc.Warnings {
		cfg.Logger.Warn("descriptor warning",
			slog.String("code", w.Code),
			slog.String("type", w.TypeName),
			slog.String("message", w.Message),
		)
	}

	enum, err := plugins.NewEnum(plugins.EnumOptions{Style: cfg.EnumStyle})
	if err != nil {
		return nil, err
	}
	tr := typets.New().
		WithLogger(cfg.Logger).
		WithTypeMappings(cfg.TypeMappings).
		WithComments(cfg.PreserveComments != "none")
	if err := tr.UsePlugin(enum, &plugins.Function{}); err != nil {
		return nil, err
	}
	if err := tr.UsePlugin(cfg.Plugins...); err != nil {
		return nil, err
	}

	out, err := tr.Translate(doc)
	if err != nil {
		return nil, err
	}
	if cfg.Frontmatter != "" {
		out = cfg.Frontmatter + "\n\n" + out
	}

	cfg.Logger.Debug("generated declarations",
		slog.String("provider", cfg.Provider),
		slog.Int("definitions", tr.Store().Len()),
	)
	return &GenerateResult{
		Output:      out,
		Definitions: tr.Store().Len(),
		Warnings:    doc.Warnings,
	}, nil
}

func (g *Generator) buildDocument(ctx context.Context, cfg *Config) (*ir.Document, error) {
	switch cfg.Provider {
	case "document":
		if g.doc != nil {
			return g.doc, nil
		}
		return readDocuments(g.files)

	case "source":
		if len(cfg.Packages) == 0 {
			return nil, fmt.Errorf("packages is required when using source provider")
		}
		p := &provider.SourceProvider{}
		return p.BuildDocument(ctx, provider.SourceInputOptions{
			Packages:  cfg.Packages,
			Dir:       cfg.Dir,
			RootTypes: cfg.RootTypes,
			Functions: cfg.Functions,
			Framework: cfg.Framework,
		})

	case "reflection":
		rootTypes := make([]reflect.Type, 0, len(g.types))
		for _, v := range g.types {
			rootTypes = append(rootTypes, reflect.TypeOf(v))
		}
		p := &provider.ReflectionProvider{}
		return p.BuildDocument(ctx, provider.ReflectionInputOptions{
			RootTypes: rootTypes,
			Framework: cfg.Framework,
		})

	default:
		return nil, fmt.Errorf("unknown provider: %q (expected \"document\", \"source\" or \"reflection\")", cfg.Provider)
	}
}

// readDocuments decodes and merges descriptor documents. Module and
// namespace come from the first document that sets them.
func readDocuments(paths []string) (*ir.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input documents")
	}

	merged := &ir.Document{}
	for _, path := range paths {
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		if merged.Module == "" {
			merged.Module = doc.Module
		}
		if merged.Namespace == "" {
			merged.Namespace = doc.Namespace
		}
		merged.Types = append(merged.Types, doc.Types...)
		merged.Roots = append(merged.Roots, doc.Roots...)
		merged.Warnings = append(merged.Warnings, doc.Warnings...)
	}
	return merged, nil
}

func readDocument(path string) (*ir.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := ir.ReadDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
