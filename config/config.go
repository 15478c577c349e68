// Package config loads typets.toml.
//
// A minimal configuration names an input and an output:
//
//	output = "src/types.d.ts"
//	namespace = "api"
//
//	[input]
//	documents = ["schema/models.yaml"]
//
// Go packages can be used as input instead of descriptor documents:
//
//	[input]
//	packages = ["./internal/models"]
//	types = ["User", "Order"]
//	functions = true
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/broady/typets"
	"github.com/broady/typets/format"
	"github.com/broady/typets/plugins"
)

// DefaultFile is the configuration file looked up by the CLI.
const DefaultFile = "typets.toml"

// Config is the decoded form of typets.toml.
type Config struct {
	Input Input `toml:"input"`

	// Output is the file the declarations are written to. Empty or "-"
	// writes to stdout.
	Output string `toml:"output"`

	// Namespace wraps the output in `declare namespace <Namespace> {}`.
	// It overrides the namespace of input documents.
	Namespace string `toml:"namespace"`

	// EnumStyle is the enum plugin style.
	EnumStyle string `toml:"enum_style" validate:"omitempty,oneof=enum const_enum union object"`

	// Comments emits JSDoc from documentation.
	Comments bool `toml:"comments"`

	// Format re-indents the output using FormatOptions.
	Format        *bool          `toml:"format"`
	FormatOptions format.Options `toml:"format_options"`

	// Frontmatter is written verbatim before the declarations.
	Frontmatter string `toml:"frontmatter"`

	// TypeMappings replace the rendering of named types, keyed by
	// "module.Name" or "Name". A mapped type is never handed to a plugin.
	TypeMappings map[string]string `toml:"type_mappings" validate:"dive,keys,required,endkeys,required"`

	// Plugins are declarative plugins, registered after the built-in ones.
	Plugins []plugins.DeclarativeSpec `toml:"plugins" validate:"dive"`

	// Pydantic and SQLModel enable the framework model plugins.
	Pydantic *plugins.ModelOptions `toml:"pydantic"`
	SQLModel *plugins.ModelOptions `toml:"sqlmodel"`

	// dir is the directory of the loaded file; relative input paths are
	// resolved against it.
	dir string
}

// Input selects where descriptors come from. Exactly one of Documents and
// Packages must be set.
type Input struct {
	// Documents are YAML or JSON descriptor documents.
	Documents []string `toml:"documents" validate:"required_without=Packages,excluded_with=Packages,dive,required"`

	// Packages are Go package patterns analyzed from source.
	Packages []string `toml:"packages" validate:"required_without=Documents,dive,required"`

	// Types restricts Go extraction to the named root types.
	Types []string `toml:"types" validate:"dive,required"`

	// Functions also extracts exported Go functions and methods.
	Functions bool `toml:"functions"`

	// Framework tags extracted Go structs for a framework plugin.
	Framework string `toml:"framework"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes and validates a TOML configuration. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, typets.Errorf(typets.CodeInvalidArgument, "parse config: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, typets.Errorf(typets.CodeInvalidArgument, "unknown config key %q", undecoded[0].String()).
			WithDetail("keys", len(undecoded))
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset values.
func applyDefaults(cfg *Config) {
	if cfg.EnumStyle == "" {
		cfg.EnumStyle = "enum"
	}
	if cfg.Format == nil {
		enabled := true
		cfg.Format = &enabled
	}
	if cfg.FormatOptions.IndentStyle == "" {
		cfg.FormatOptions.IndentStyle = "space"
	}
	if cfg.FormatOptions.IndentSize == 0 {
		cfg.FormatOptions.IndentSize = 2
	}
	if cfg.FormatOptions.LineEnding == "" {
		cfg.FormatOptions.LineEnding = "lf"
	}
}

// Validate checks the configuration, reporting every violation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return typets.AsError(verrs)
		}
		return err
	}
	return nil
}

// Documents returns the input document paths resolved against the config
// file's directory.
func (c *Config) Documents() []string {
	paths := make([]string, len(c.Input.Documents))
	for i, p := range c.Input.Documents {
		if c.dir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(c.dir, p)
		}
		paths[i] = p
	}
	return paths
}

// Dir returns the directory of the loaded configuration file, or "" when
// it was parsed from memory.
func (c *Config) Dir() string { return c.dir }

// BuildPlugins constructs the plugins the configuration enables beyond the
// built-in enum and function plugins: the framework model plugins, then the
// declarative plugins.
func (c *Config) BuildPlugins() ([]typets.Plugin, error) {
	var out []typets.Plugin

	if c.SQLModel != nil {
		m, err := plugins.SQLModel(*c.SQLModel)
		if err != nil {
			return nil, fmt.Errorf("sqlmodel: %w", err)
		}
		out = append(out, m)
	}
	if c.Pydantic != nil || c.SQLModel != nil {
		var opts plugins.ModelOptions
		if c.Pydantic != nil {
			opts = *c.Pydantic
		}
		m, err := plugins.Pydantic(opts)
		if err != nil {
			return nil, fmt.Errorf("pydantic: %w", err)
		}
		out = append(out, m)
	}

	for _, spec := range c.Plugins {
		p, err := plugins.NewDeclarative(spec)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", spec.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Formatter returns the configured formatter, or nil when formatting is
// disabled.
func (c *Config) Formatter() (format.Formatter, error) {
	if c.Format != nil && !*c.Format {
		return nil, nil
	}
	f, err := format.New(c.FormatOptions)
	if err != nil {
		return nil, typets.AsError(err)
	}
	return f, nil
}
