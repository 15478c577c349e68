package typetsgen

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/broady/typets"
	"github.com/broady/typets/config"
	"github.com/broady/typets/format"
	"github.com/broady/typets/ir"
	"github.com/broady/typets/sink"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestApplyConfigDefaults(t *testing.T) {
	tests := []struct {
		name   string
		input  *Config
		check  func(*Config) bool
		errMsg string
	}{
		{
			name:  "empty config gets defaults",
			input: &Config{},
			check: func(c *Config) bool {
				return c.Provider == "document" &&
					c.EnumStyle == "enum" &&
					c.PreserveComments == "none" &&
					c.Logger != nil
			},
			errMsg: "defaults not applied correctly",
		},
		{
			name:  "packages imply source provider",
			input: &Config{Packages: []string{"./models"}},
			check: func(c *Config) bool {
				return c.Provider == "source"
			},
			errMsg: "provider not inferred from packages",
		},
		{
			name: "explicit values preserved",
			input: &Config{
				Provider:         "reflection",
				EnumStyle:        "union",
				PreserveComments: "default",
				Logger:           quiet,
			},
			check: func(c *Config) bool {
				return c.Provider == "reflection" &&
					c.EnumStyle == "union" &&
					c.PreserveComments == "default" &&
					c.Logger == quiet
			},
			errMsg: "explicit values not preserved",
		},
		{
			name: "preserves TypeMappings",
			input: &Config{
				TypeMappings: map[string]string{"app.Money": "string"},
			},
			check: func(c *Config) bool {
				return c.TypeMappings["app.Money"] == "string"
			},
			errMsg: "TypeMappings not preserved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := applyConfigDefaults(tt.input)
			if !tt.check(result) {
				t.Errorf("%s: got %+v", tt.errMsg, result)
			}
		})
	}
}

func TestApplyConfigDefaults_DoesNotMutate(t *testing.T) {
	cfg := &Config{}
	_ = applyConfigDefaults(cfg)
	if cfg.Provider != "" || cfg.EnumStyle != "" || cfg.Logger != nil {
		t.Errorf("input config mutated: %+v", cfg)
	}
}

func sampleDocument() *ir.Document {
	doc := &ir.Document{Module: "app"}
	userID := ir.Alias("UserId", ir.Int())
	userID.Name.Module = "app"
	doc.AddType(userID)
	doc.AddType(&ir.EnumDescriptor{
		Name: ir.Ident("Color", "app"),
		Members: []ir.EnumMember{
			{Name: "RED", Value: "red"},
			{Name: "GREEN", Value: int64(2)},
		},
	})
	doc.AddType(&ir.CompositeDescriptor{
		Name: ir.Ident("User", "app"),
		Fields: []ir.FieldDescriptor{
			{Name: "id", Type: userID},
			{Name: "color", Type: doc.FindType("Color")},
		},
	})
	return doc
}

func TestGenerate_Document(t *testing.T) {
	res, err := FromDocument(sampleDocument()).
		WithLogger(quiet).
		Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, want := range []string{
		"type UserId = number;",
		"interface User {\n  id: UserId;\n  color: Color;\n}",
		"enum Color {\n  RED = 'red',\n  GREEN = 2,\n}",
	} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("output missing %q\n%s", want, res.Output)
		}
	}
	if res.Definitions != 3 {
		t.Errorf("Definitions = %d, want 3", res.Definitions)
	}
}

func TestGenerate_Options(t *testing.T) {
	res, err := FromDocument(sampleDocument()).
		Namespace("api").
		EnumStyle("union").
		TypeMapping("app.UserId", "string").
		Frontmatter("// Code generated by typets. DO NOT EDIT.").
		WithLogger(quiet).
		Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.HasPrefix(res.Output, "// Code generated by typets. DO NOT EDIT.\n\ndeclare namespace Api {\n") {
		t.Errorf("output header:\n%s", res.Output)
	}
	for _, want := range []string{
		"  type Color = 'red' | 2;",
		"    id: string;",
	} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("output missing %q\n%s", want, res.Output)
		}
	}
	if strings.Contains(res.Output, "UserId") {
		t.Errorf("mapped alias should not be emitted:\n%s", res.Output)
	}
}

func TestGenerate_Formatted(t *testing.T) {
	f, err := format.New(format.Options{IndentStyle: "tab", TrailingNewline: true})
	if err != nil {
		t.Fatal(err)
	}
	res, err := FromDocument(sampleDocument()).
		Formatted(f).
		WithLogger(quiet).
		Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(res.Output, "interface User {\n\tid: UserId;\n") {
		t.Errorf("output not re-indented:\n%s", res.Output)
	}
	if !strings.HasSuffix(res.Output, "}\n") {
		t.Errorf("output lacks trailing newline: %q", res.Output)
	}
}

type Item struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Owner *Owner   `json:"owner"`
}

type Owner struct {
	Email string `json:"email"`
}

func TestGenerate_Reflection(t *testing.T) {
	res, err := FromTypes(Item{}).WithLogger(quiet).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, want := range []string{
		"interface Item {",
		"  name: string;\n",
		"  tags?: Array<string>;\n",
		"  owner?: Owner | null | undefined;\n",
		"interface Owner {\n  email: string;\n}",
	} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("output missing %q\n%s", want, res.Output)
		}
	}
}

const docA = `
module: app
types:
  - kind: alias
    name: UserId
    type: int
`

const docB = `
module: app
types:
  - kind: composite
    name: Post
    fields:
      - name: title
        type: str
`

func TestGenerate_Files(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(a, []byte(docA), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(docB), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := FromFiles(a, b).WithLogger(quiet).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, want := range []string{"type UserId = number;", "interface Post {\n  title: string;\n}"} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("output missing %q\n%s", want, res.Output)
		}
	}

	if _, err := FromFiles(filepath.Join(dir, "missing.yaml")).Generate(context.Background()); err == nil {
		t.Error("expected error for missing document")
	}
	if _, err := FromFiles().Generate(context.Background()); err == nil {
		t.Error("expected error for no documents")
	}
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "types.d.ts")
	res, err := FromDocument(sampleDocument()).
		Formatted(format.Default()).
		WithLogger(quiet).
		ToFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ToFile() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != res.Output+"\n" {
		t.Errorf("file = %q, want formatted %q", got, res.Output)
	}
}

func TestToSink(t *testing.T) {
	mem := sink.NewMemorySink()
	if _, err := FromDocument(sampleDocument()).WithLogger(quiet).ToSink(context.Background(), mem, "api/types.d.ts"); err != nil {
		t.Fatalf("ToSink() error = %v", err)
	}
	if !strings.Contains(string(mem.Get("api/types.d.ts")), "interface User {") {
		t.Errorf("sink content = %q", mem.Get("api/types.d.ts"))
	}
}

func TestCheck(t *testing.T) {
	res, err := FromDocument(sampleDocument()).WithLogger(quiet).Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !strings.Contains(res.Output, "interface User {") {
		t.Errorf("Check() output = %q", res.Output)
	}
}

func TestGenerate_Errors(t *testing.T) {
	dup := &ir.Document{}
	dup.AddType(ir.Alias("A", ir.Int()))
	dup.AddType(ir.Alias("A", ir.String()))

	_, err := FromDocument(dup).WithLogger(quiet).Generate(context.Background())
	if !typets.IsCode(err, typets.CodeInvalidDescriptor) {
		t.Errorf("duplicate type error = %v, want %s", err, typets.CodeInvalidDescriptor)
	}

	g := FromDocument(sampleDocument())
	g.cfg.Provider = "bogus"
	if _, err := g.Generate(context.Background()); err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("error = %v, want unknown provider", err)
	}

	_, err = FromDocument(sampleDocument()).EnumStyle("sparkly").WithLogger(quiet).Generate(context.Background())
	if !typets.IsCode(err, typets.CodeInvalidArgument) {
		t.Errorf("enum style error = %v, want %s", err, typets.CodeInvalidArgument)
	}
}

const modelDoc = `
module: app
types:
  - kind: composite
    name: User
    framework: pydantic
    fields:
      - name: id
        type: int
      - name: password
        type: str
        exclude: true
`

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "models.yaml"), []byte(modelDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, config.DefaultFile)
	if err := os.WriteFile(cfgPath, []byte(`
namespace = "api"

[input]
documents = ["models.yaml"]

[pydantic]
exclude = true
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	g, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	res, err := g.WithLogger(quiet).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := "declare namespace Api {\n  interface User {\n    id: number;\n  }\n}"
	if res.Output != want {
		t.Errorf("output =\n%s\nwant:\n%s", res.Output, want)
	}
}
