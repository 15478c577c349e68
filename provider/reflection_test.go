package provider

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/broady/typets"
	"github.com/broady/typets/ir"
)

type SimpleStruct struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email,omitempty"`
}

type UserID string

type Account struct {
	ID       UserID            `json:"id"`
	Tags     []string          `json:"tags"`
	Scores   map[string]int    `json:"scores"`
	Avatar   []byte            `json:"avatar"`
	Manager  *SimpleStruct     `json:"manager"`
	Created  time.Time         `json:"created"`
	Timeout  time.Duration     `json:"timeout"`
	Number   json.Number       `json:"number"`
	Raw      json.RawMessage   `json:"raw"`
	Extra    any               `json:"extra"`
	Checksum [4]int            `json:"checksum"`
	Labels   map[UserID]string `json:"labels,omitzero"`
	Secret   string            `json:"-"`
	internal string
}

type Node struct {
	Value    int     `json:"value"`
	Children []*Node `json:"children"`
}

type Left struct {
	Right *Right `json:"right"`
}

type Right struct {
	Left *Left `json:"left"`
}

type Audit struct {
	CreatedBy string `json:"created_by"`
}

type Document struct {
	Audit
	Meta  Audit  `json:"meta"`
	Title string `json:"title"`
}

type Envelope struct {
	Header struct {
		Version int `json:"version"`
	} `json:"header"`
}

type Page[T any] struct {
	Items []T `json:"items"`
}

type Handlers struct {
	OnSave func(string, int) error `json:"on_save"`
	OnLog  func(...string)         `json:"on_log"`
}

type Stringer interface{ String() string }

type WithInterface struct {
	S Stringer `json:"s"`
}

type WithChan struct {
	C chan int `json:"c"`
}

type WithComplex struct {
	C complex128 `json:"c"`
}

type WithStructKey struct {
	M map[SimpleStruct]int `json:"m"`
}

func build(t *testing.T, opts ReflectionInputOptions) *ir.Document {
	t.Helper()
	doc, err := (&ReflectionProvider{}).BuildDocument(context.Background(), opts)
	if err != nil {
		t.Fatalf("BuildDocument() error = %v", err)
	}
	return doc
}

func rootsOf(types ...any) []reflect.Type {
	var out []reflect.Type
	for _, v := range types {
		out = append(out, reflect.TypeOf(v))
	}
	return out
}

func TestReflectionProvider_SimpleStruct(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(SimpleStruct{})})

	if len(doc.Types) != 1 || len(doc.Roots) != 1 {
		t.Fatalf("got %d types, %d roots; want 1, 1", len(doc.Types), len(doc.Roots))
	}
	c, ok := doc.Types[0].(*ir.CompositeDescriptor)
	if !ok {
		t.Fatalf("Types[0] = %T, want *ir.CompositeDescriptor", doc.Types[0])
	}
	if c.Name.Name != "SimpleStruct" || c.Name.Module != reflect.TypeOf(SimpleStruct{}).PkgPath() {
		t.Errorf("Name = %+v", c.Name)
	}
	if len(c.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(c.Fields))
	}
	if c.Fields[0].Name != "name" || c.Fields[1].Name != "age" {
		t.Errorf("field names = %q, %q", c.Fields[0].Name, c.Fields[1].Name)
	}
	if !c.Fields[2].Optional {
		t.Error("omitempty field should be optional")
	}
}

func TestReflectionProvider_Fields(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Account{})})

	acct := doc.FindType("Account").(*ir.CompositeDescriptor)
	kinds := map[string]ir.DescriptorKind{
		"id":       ir.KindAlias,
		"tags":     ir.KindContainer,
		"scores":   ir.KindContainer,
		"avatar":   ir.KindPrimitive,
		"manager":  ir.KindOptional,
		"created":  ir.KindPrimitive,
		"checksum": ir.KindContainer,
		"labels":   ir.KindContainer,
	}
	for name, want := range kinds {
		f := acct.Field(name)
		if f == nil {
			t.Errorf("missing field %q", name)
			continue
		}
		if got := f.Type.Kind(); got != want {
			t.Errorf("field %q kind = %v, want %v", name, got, want)
		}
	}

	if f := acct.Field("internal"); f != nil {
		t.Error("unexported field should be skipped")
	}
	secret := acct.Field("Secret")
	if secret == nil || !secret.Exclude {
		t.Errorf(`json:"-" field should be kept as excluded, got %+v`, secret)
	}
	if !acct.Field("labels").Optional {
		t.Error("omitzero field should be optional")
	}

	if doc.FindType("UserID") == nil {
		t.Error("named string type should be extracted as an alias")
	}
	if doc.FindType("SimpleStruct") == nil {
		t.Error("referenced struct should be extracted")
	}
}

func TestReflectionProvider_Translate(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Account{})})

	out, err := typets.New().Translate(doc)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	for _, want := range []string{
		"type UserID = string;",
		"interface SimpleStruct {\n  name: string;\n  age: number;\n  email?: string;\n}",
		"  id: UserID;\n",
		"  tags: Array<string>;\n",
		"  scores: Record<string, number>;\n",
		"  avatar: Uint8Array;\n",
		"  manager?: SimpleStruct | null | undefined;\n",
		"  created: Date;\n",
		"  timeout: number;\n",
		"  number: string;\n",
		"  raw: any;\n",
		"  extra: any;\n",
		"  checksum: number[];\n",
		"  labels?: Record<UserID, string>;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Secret") {
		t.Errorf("excluded field rendered:\n%s", out)
	}
}

func TestReflectionProvider_Recursive(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Node{})})

	node := doc.FindType("Node").(*ir.CompositeDescriptor)
	list := node.Field("children").Type.(*ir.ContainerDescriptor)
	opt := list.Args[0].(*ir.OptionalDescriptor)
	if opt.Element != node {
		t.Error("recursive reference should point at the same descriptor")
	}

	out, err := typets.New().Translate(doc)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	want := "interface Node {\n  value: number;\n  children: Array<Node | null | undefined>;\n}"
	if out != want {
		t.Errorf("Translate() =\n%s\nwant\n%s", out, want)
	}
}

func TestReflectionProvider_MutualRecursion(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Left{})})

	if len(doc.Types) != 2 {
		t.Fatalf("got %d types, want 2", len(doc.Types))
	}
	if doc.FindType("Right") == nil {
		t.Error("Right should be extracted through Left")
	}
}

func TestReflectionProvider_Embedding(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Document{})})

	d := doc.FindType("Document").(*ir.CompositeDescriptor)
	if len(d.Bases) != 1 || d.Bases[0].TypeName().Name != "Audit" {
		t.Fatalf("Bases = %v, want [Audit]", d.Bases)
	}
	if d.Field("meta") == nil || d.Field("title") == nil {
		t.Error("tagged embedded and own fields should be fields")
	}
	if d.Field("Audit") != nil {
		t.Error("untagged embedded struct should not be a field")
	}

	out, err := typets.New().Translate(doc)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if !strings.Contains(out, "interface Document extends Audit {") {
		t.Errorf("missing extends clause:\n%s", out)
	}
}

func TestReflectionProvider_AnonymousStruct(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Envelope{})})

	header := doc.FindType("Envelope_Header")
	if header == nil {
		t.Fatal("anonymous struct should get a synthetic name")
	}
	env := doc.FindType("Envelope").(*ir.CompositeDescriptor)
	if env.Field("header").Type != header {
		t.Error("field should reference the synthetic composite")
	}
}

func TestReflectionProvider_GenericInstantiation(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Page[SimpleStruct]{})})

	if doc.FindType("Page_SimpleStruct") == nil {
		var names []string
		for _, td := range doc.Types {
			names = append(names, td.TypeName().Name)
		}
		t.Errorf("want Page_SimpleStruct, got %v", names)
	}
}

func TestReflectionProvider_Funcs(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Handlers{})})

	out, err := typets.New().Translate(doc)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	for _, want := range []string{
		"  on_save: (...args: [string, number]) => void;\n",
		"  on_log: (...args: any[]) => void;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestReflectionProvider_Framework(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(Document{}), Framework: "pydantic"})

	for _, td := range doc.Types {
		if c, ok := td.(*ir.CompositeDescriptor); ok && c.Framework != "pydantic" {
			t.Errorf("%s.Framework = %q, want pydantic", c.Name.Name, c.Framework)
		}
	}
}

func TestReflectionProvider_InterfaceWarning(t *testing.T) {
	doc := build(t, ReflectionInputOptions{RootTypes: rootsOf(WithInterface{})})

	if len(doc.Warnings) != 1 || doc.Warnings[0].Code != "INTERFACE_TYPE" {
		t.Errorf("Warnings = %+v, want one INTERFACE_TYPE", doc.Warnings)
	}
}

func TestReflectionProvider_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		root any
		want string
	}{
		{"channel", WithChan{}, "channel"},
		{"complex", WithComplex{}, "complex"},
		{"struct map key", WithStructKey{}, "map key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&ReflectionProvider{}).BuildDocument(context.Background(), ReflectionInputOptions{
				RootTypes: rootsOf(tt.root),
			})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestReflectionProvider_NoRootTypes(t *testing.T) {
	_, err := (&ReflectionProvider{}).BuildDocument(context.Background(), ReflectionInputOptions{})
	if err == nil {
		t.Error("expected error for empty root types")
	}
}

func TestReflectionProvider_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&ReflectionProvider{}).BuildDocument(ctx, ReflectionInputOptions{RootTypes: rootsOf(SimpleStruct{})})
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParseJSONTag(t *testing.T) {
	tests := []struct {
		tag          string
		wantName     string
		wantOptional bool
		wantSkip     bool
	}{
		{"", "Field", false, false},
		{"name", "name", false, false},
		{"name,omitempty", "name", true, false},
		{",omitempty", "Field", true, false},
		{"name,omitzero", "name", true, false},
		{"-", "", false, true},
		{"-,", "-", false, false},
		{"name,string", "name", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			name, optional, skip := parseJSONTag(tt.tag, "Field")
			if name != tt.wantName || optional != tt.wantOptional || skip != tt.wantSkip {
				t.Errorf("parseJSONTag(%q) = %q, %v, %v; want %q, %v, %v",
					tt.tag, name, optional, skip, tt.wantName, tt.wantOptional, tt.wantSkip)
			}
		})
	}
}

func TestSyntheticName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Page[int]", "Page_int"},
		{"Page[example.com/app.User]", "Page_User"},
		{"Pair[string,*example.com/app.User]", "Pair_string_PtrUser"},
		{"Page[func()]", "Page_func__"},
		{"Page[struct {}]", "Page_struct__"},
	}
	for _, tt := range tests {
		if got := syntheticName(tt.in); got != tt.want {
			t.Errorf("syntheticName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
