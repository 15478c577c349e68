package typetsgen

import (
	"log/slog"

	"github.com/broady/typets"
	"github.com/broady/typets/format"
)

// Config holds the configuration for a generation run.
type Config struct {
	// Provider selects how descriptors are obtained:
	// "document" - descriptors supplied by the caller or read from files
	// "source" - go/packages analysis with enums, comments and generics
	// "reflection" - runtime reflection over Go values
	// Default: inferred from the Generator constructor.
	Provider string

	// Packages are the Go package patterns analyzed by the source provider.
	Packages []string

	// Dir is the directory Go packages are resolved from.
	Dir string

	// RootTypes restricts the source provider to the named types.
	RootTypes []string

	// Functions makes the source provider also extract exported functions
	// and methods.
	Functions bool

	// Framework is stamped on extracted Go structs so a framework plugin can
	// claim them.
	Framework string

	// Namespace wraps the output in `declare namespace <Namespace> {}`.
	// Overrides the document's own namespace when set.
	Namespace string

	// EnumStyle controls enum output: "enum", "const_enum", "union" or
	// "object". Default: "enum".
	EnumStyle string

	// PreserveComments controls JSDoc output: "default" or "none".
	// Default: "none".
	PreserveComments string

	// TypeMappings override the rendering of named types, keyed by
	// "module.Name" or "Name". A mapped type emits no definition.
	TypeMappings map[string]string

	// Plugins are registered after the enum and function plugins.
	Plugins []typets.Plugin

	// Frontmatter is written before the declarations.
	Frontmatter string

	// Formatter re-indents the output. Nil leaves it as rendered.
	Formatter format.Formatter

	// Logger receives warnings and debug output. Default: slog.Default().
	Logger *slog.Logger
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.Provider == "" {
		switch {
		case len(result.Packages) > 0:
			result.Provider = "source"
		default:
			result.Provider = "document"
		}
	}
	if result.EnumStyle == "" {
		result.EnumStyle = "enum"
	}
	if result.PreserveComments == "" {
		result.PreserveComments = "none"
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}

	return &result
}
