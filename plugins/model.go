package plugins

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/broady/typets"
	"github.com/broady/typets/ir"
	"github.com/broady/typets/typescript"
)

// ModelOptions configures a framework model plugin.
type ModelOptions struct {
	// Exclude drops fields marked as excluded from serialization.
	Exclude bool `toml:"exclude" yaml:"exclude"`

	// TypePrefix selects `interface X {...}` or `type X = {...};`.
	TypePrefix string `toml:"type_prefix" yaml:"type_prefix" validate:"omitempty,oneof=interface type"`
}

// Model renders composites produced by a modelling framework. Fields are
// optional only when the framework says they are not required; a nullable
// type alone does not make a field optional.
type Model struct {
	name       string
	frameworks []string
	typeMap    map[ir.Identifier]string
	opts       ModelOptions
}

// NewModel returns a model plugin named name that claims composites whose
// Framework is one of frameworks. typeMap holds direct renderings for the
// framework's special types.
func NewModel(name string, frameworks []string, typeMap map[ir.Identifier]string, opts ModelOptions) (*Model, error) {
	if name == "" {
		return nil, typets.NewError(typets.CodeInvalidPlugin, "model plugin has no name")
	}
	if len(frameworks) == 0 {
		return nil, typets.Errorf(typets.CodeInvalidPlugin, "model plugin %s matches no framework", name)
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if opts.TypePrefix == "" {
		opts.TypePrefix = "interface"
	}
	return &Model{name: name, frameworks: frameworks, typeMap: typeMap, opts: opts}, nil
}

// Pydantic returns the model plugin for pydantic models.
func Pydantic(opts ModelOptions) (*Model, error) {
	return NewModel("pydantic", []string{"pydantic"}, pydanticTypes, opts)
}

// SQLModel returns the model plugin for SQLModel tables. Its type prefix
// defaults to "type". SQLModel classes are also pydantic models, so callers
// usually register Pydantic alongside it.
func SQLModel(opts ModelOptions) (*Model, error) {
	if opts.TypePrefix == "" {
		opts.TypePrefix = "type"
	}
	return NewModel("sqlmodel", []string{"sqlmodel"}, sqlModelTypes, opts)
}

func (m *Model) Name() string { return m.name }

func (m *Model) TypeMap() map[ir.Identifier]string { return m.typeMap }

func (m *Model) Supports(td ir.TypeDescriptor) bool {
	c, ok := td.(*ir.CompositeDescriptor)
	return ok && slices.Contains(m.frameworks, c.Framework)
}

func (m *Model) Render(td ir.TypeDescriptor, rc *typets.RenderContext) (typets.Output, error) {
	d := td.(*ir.CompositeDescriptor)

	decl := typescript.ObjectDecl{
		Keyword:      m.opts.TypePrefix,
		Name:         d.Name.Name,
		TypeParams:   rc.GenericDefs,
		Extends:      rc.Extends,
		Doc:          d.Documentation,
		EmitComments: rc.EmitComments,
	}
	for _, f := range d.Fields {
		if m.opts.Exclude && f.Exclude {
			continue
		}
		member, err := rc.Member(f)
		if err != nil {
			return typets.Output{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		member.Optional = f.Optional
		decl.Members = append(decl.Members, member)
	}

	var buf bytes.Buffer
	typescript.WriteObject(&buf, decl)
	return typets.Output{Text: buf.String()}, nil
}

func names(module string, m map[string]string) map[ir.Identifier]string {
	out := make(map[ir.Identifier]string, len(m))
	for name, ts := range m {
		out[ir.Identifier{Name: name, Module: module}] = ts
	}
	return out
}

// pydanticTypes match any module: the names are distinctive and pydantic
// re-exports them from several submodules.
var pydanticTypes = names("", map[string]string{
	"EmailStr":          "string",
	"NameEmail":         "string",
	"IPvAnyAddress":     "string",
	"IPvAnyInterface":   "string",
	"IPvAnyNetwork":     "string",
	"Json":              "any",
	"SecretStr":         "string",
	"SecretBytes":       "Uint8Array",
	"StrictStr":         "string",
	"StrictInt":         "number",
	"StrictFloat":       "number",
	"StrictBool":        "boolean",
	"StrictBytes":       "Uint8Array",
	"PaymentCardNumber": "string",
	"ByteSize":          "number",
	"PastDate":          "Date",
	"FutureDate":        "Date",
	"PastDatetime":      "Date",
	"FutureDatetime":    "Date",
	"AwareDatetime":     "Date",
	"NaiveDatetime":     "Date",
	"condate":           "Date",
	"UUID1":             "string",
	"UUID3":             "string",
	"UUID4":             "string",
	"UUID5":             "string",
	"FilePath":          "string",
	"DirectoryPath":     "string",
	"NewPath":           "string",
	"AnyUrl":            "string",
	"AnyHttpUrl":        "string",
	"HttpUrl":           "string",
	"PostgresDsn":       "string",
	"CockroachDsn":      "string",
	"AmqpDsn":           "string",
	"RedisDsn":          "string",
	"MongoDsn":          "string",
	"KafkaDsn":          "string",
	"NatsDsn":           "string",
	"validate_email":    "string",
})

// sqlModelTypes are column types; their names are generic, so they only
// match descriptors from the sqlmodel module.
var sqlModelTypes = names("sqlmodel", map[string]string{
	"AutoString":   "string",
	"BigInteger":   "number",
	"Boolean":      "boolean",
	"Date":         "Date",
	"DateTime":     "Date",
	"Enum":         "string",
	"Float":        "number",
	"Integer":      "number",
	"Interval":     "number",
	"LargeBinary":  "Uint8Array",
	"Numeric":      "number",
	"SmallInteger": "number",
	"String":       "string",
	"Text":         "string",
	"Time":         "string",
	"Unicode":      "string",
	"UnicodeText":  "string",
})
