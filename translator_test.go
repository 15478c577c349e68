package typets

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/broady/typets/ir"
)

func TestResolveToText(t *testing.T) {
	tests := []struct {
		name string
		td   ir.TypeDescriptor
		want string
	}{
		{"nested containers", ir.List(ir.Dict(ir.String(), ir.Int())), "Array<Record<string, number>>"},
		{"one tuple", ir.Tuple(ir.Int()), "[number]"},
		{"variadic tuple", ir.Tuple(ir.Int(), ir.Ellipsis()), "number[]"},
		{"pair tuple", ir.Tuple(ir.Int(), ir.String()), "[number, string]"},
		{"empty tuple", ir.Tuple(), "any[]"},
		{"optional", ir.Optional(ir.String()), "string | null | undefined"},
		{"empty set", ir.Set(), "Set<any>"},
		{"set", ir.Set(ir.Int()), "Set<number>"},
		{"frozenset", ir.FrozenSet(ir.String()), "ReadonlySet<string>"},
		{"bare list", ir.List(), "any[]"},
		{"list with many args", ir.List(ir.Int(), ir.String()), "[number, string]"},
		{"typing list", ir.Container("typing.List", ir.Bool()), "Array<boolean>"},
		{"bare dict", ir.Dict(), "Record<string, any>"},
		{"bare deque", ir.Container(ir.OriginDeque), "Array<any>"},
		{"deque", ir.Container(ir.OriginDeque, ir.Float()), "Array<number>"},
		{"bare counter", ir.Container(ir.OriginCounter), "Record<any, number>"},
		{"counter", ir.Container(ir.OriginCounter, ir.String()), "Record<string, number>"},
		{"bare chainmap", ir.Container(ir.OriginChainMap), "Record<any, any>"},
		{"chainmap", ir.Container(ir.OriginChainMap, ir.String(), ir.Int()), "Record<string, number>"},
		{"sequence", ir.Sequence(ir.Int(), ir.String()), "[number, string]"},
		{"variadic sequence", ir.Sequence(ir.String(), ir.Ellipsis()), "string[]"},
		{"variadic optional elements", ir.Tuple(ir.Optional(ir.Int()), ir.Ellipsis()), "(number | null | undefined)[]"},
		{"union", ir.Union(ir.Int(), ir.String()), "number | string"},
		{"empty union", ir.Union(), "never"},
		{"literal", ir.Literal("a", int64(1), true, 2.5), "'a' | 1 | true | 2.5"},
		{"empty literal", ir.Literal(), "never"},
		{"callable", ir.Callable([]ir.TypeDescriptor{ir.Int(), ir.String()}, ir.Bool()), "(...args: [number, string]) => boolean"},
		{"callable none return", ir.Callable(nil, ir.None()), "(...args: []) => void"},
		{"variadic callable", ir.VariadicCallable(ir.Int()), "(...args: any[]) => number"},
		{"none", ir.None(), "null | undefined"},
		{"bytes", ir.Bytes(), "Uint8Array"},
		{"datetime", ir.Datetime(), "Date"},
		{"any", ir.Any(), "any"},
		{"final", ir.Final(ir.Int()), "number"},
		{"classvar", ir.ClassVar(ir.List(ir.Int())), "Array<number>"},
		{"stacked qualifiers strip once", ir.Final(ir.ClassVar(ir.Int())), "any"},
		{"string const", ir.Const("Foo"), "Foo"},
		{"numeric const", ir.Const(int64(3)), "3"},
		{"forward ref", ir.ForwardRef("User"), "User"},
		{"nil", nil, "any"},
		{"unknown container", ir.Container("weakref.ref", ir.Int()), "any"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			got, err := tr.ResolveToText(tt.td)
			if err != nil {
				t.Fatalf("ResolveToText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveToText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveArityErrors(t *testing.T) {
	tests := []struct {
		name string
		td   ir.TypeDescriptor
	}{
		{"dict with one arg", ir.Dict(ir.Int())},
		{"dict with three args", ir.Dict(ir.Int(), ir.Int(), ir.Int())},
		{"set with two args", ir.Set(ir.Int(), ir.String())},
		{"frozenset with two args", ir.FrozenSet(ir.Int(), ir.String())},
		{"deque with two args", ir.Container(ir.OriginDeque, ir.Int(), ir.Int())},
		{"counter with two args", ir.Container(ir.OriginCounter, ir.Int(), ir.Int())},
		{"chainmap with one arg", ir.Container(ir.OriginChainMap, ir.Int())},
		{"nested", ir.List(ir.Dict(ir.Int()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Resolve(tt.td)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsCode(err, CodeArity) {
				t.Errorf("expected code %s, got %v", CodeArity, err)
			}
		})
	}
}

func TestResolveComposite(t *testing.T) {
	user := ir.Composite("User",
		ir.Field("id", ir.Int()),
		ir.Field("email", ir.Optional(ir.String())),
	)
	user.Fields = append(user.Fields,
		ir.Field("friends", ir.List(user)),
		ir.FieldDescriptor{Name: "password", Type: ir.String(), Exclude: true},
		ir.FieldDescriptor{Name: "nickname", Type: ir.String(), Optional: true},
	)

	tr := New()
	got, err := tr.ResolveToText(user)
	if err != nil {
		t.Fatalf("ResolveToText() error = %v", err)
	}
	if got != "User" {
		t.Errorf("ResolveToText() = %q, want %q", got, "User")
	}

	want := "interface User {\n" +
		"  id: number;\n" +
		"  email?: string | null | undefined;\n" +
		"  friends: Array<User>;\n" +
		"  nickname?: string;\n" +
		"}"
	if snap := tr.Snapshot(""); snap != want {
		t.Errorf("Snapshot() =\n%s\nwant:\n%s", snap, want)
	}
}

func TestResolveIdempotent(t *testing.T) {
	user := ir.Composite("User", ir.Field("name", ir.String()))
	id := ir.Alias("UserId", ir.Int())

	tr := New()
	for i := 0; i < 3; i++ {
		for _, td := range []ir.TypeDescriptor{user, id, ir.List(user)} {
			if _, err := tr.Resolve(td); err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
		}
	}

	if n := tr.Store().Len(); n != 2 {
		t.Errorf("Store().Len() = %d, want 2", n)
	}
	snap := tr.Snapshot("")
	if strings.Count(snap, "interface User") != 1 {
		t.Errorf("User emitted more than once:\n%s", snap)
	}
	if strings.Count(snap, "type UserId") != 1 {
		t.Errorf("UserId emitted more than once:\n%s", snap)
	}
}

func TestResolveMutualRecursion(t *testing.T) {
	a := ir.Composite("A")
	b := ir.Composite("B", ir.Field("a", a))
	a.Fields = []ir.FieldDescriptor{ir.Field("b", b), ir.Field("self", ir.Optional(a))}

	tr := New()
	if _, err := tr.Resolve(a); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := "interface B {\n  a: A;\n}\n" +
		"interface A {\n  b: B;\n  self?: A | null | undefined;\n}"
	if snap := tr.Snapshot(""); snap != want {
		t.Errorf("Snapshot() =\n%s\nwant:\n%s", snap, want)
	}
}

func TestResolveQualifiedSelfReference(t *testing.T) {
	node := ir.Composite("Node", ir.Field("id", ir.Int()))
	node.Fields = append(node.Fields,
		ir.Field("root", ir.ClassVar(node)),
		ir.Field("parent", ir.Final(ir.Optional(node))),
	)

	tr := New()
	got, err := tr.ResolveToText(node)
	if err != nil {
		t.Fatalf("ResolveToText() error = %v", err)
	}
	if got != "Node" {
		t.Errorf("ResolveToText() = %q, want %q", got, "Node")
	}

	want := "interface Node {\n  id: number;\n  root: Node;\n  parent?: Node | null | undefined;\n}"
	if snap := tr.Snapshot(""); snap != want {
		t.Errorf("Snapshot() =\n%s\nwant:\n%s", snap, want)
	}
}

func TestResolveAlias(t *testing.T) {
	tr := New()
	alias := ir.Alias("Tags", ir.List(ir.String()))
	alias.Documentation = ir.Doc("Tags attached to a post.")

	rendered, err := tr.Resolve(alias)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if rendered.Text != "Tags" || !rendered.Has(FlagAlias) {
		t.Errorf("Resolve() = %+v, want Tags with FlagAlias", rendered)
	}
	if snap := tr.Snapshot(""); snap != "type Tags = Array<string>;" {
		t.Errorf("Snapshot() = %q", snap)
	}

	tr = New().WithComments(true)
	if _, err := tr.Resolve(alias); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := "/** Tags attached to a post. */\ntype Tags = Array<string>;"
	if snap := tr.Snapshot(""); snap != want {
		t.Errorf("Snapshot() = %q, want %q", snap, want)
	}
}

func TestResolveTypeVars(t *testing.T) {
	tests := []struct {
		name string
		tv   *ir.TypeVarDescriptor
		want string
	}{
		{"unbounded", ir.TypeVar("T", nil), "T extends any"},
		{"bound", ir.TypeVar("N", ir.Int()), "N extends number"},
		{"constrained", ir.ConstrainedTypeVar("S", ir.Int(), ir.String()), "S extends number | string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			got, err := tr.ResolveToText(tt.tv)
			if err != nil {
				t.Fatalf("ResolveToText() error = %v", err)
			}
			if got != tt.tv.Name.Name {
				t.Errorf("ResolveToText() = %q, want %q", got, tt.tv.Name.Name)
			}
			entries := tr.Store().Bucket(BucketTypeVar)
			if len(entries) != 1 || entries[0].Text != tt.want {
				t.Errorf("typevar bucket = %+v, want %q", entries, tt.want)
			}
		})
	}
}

func TestResolveGenericBinding(t *testing.T) {
	tv := ir.TypeVar("T", nil)
	base := ir.Composite("Base", ir.Field("value", tv))
	base.TypeParams = []*ir.TypeVarDescriptor{tv}

	child := ir.Composite("Child",
		ir.Field("extra", tv),
		ir.Field("items", ir.List(tv)),
	)
	child.Bases = []ir.TypeDescriptor{ir.Instantiate(base, ir.Int())}

	tr := New()
	if _, err := tr.Resolve(child); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := "T extends any\n" +
		"interface Base<T extends any> {\n  value: T;\n}\n" +
		"interface Child extends Base<number> {\n  extra: number;\n  items: Array<number>;\n}"
	if snap := tr.Snapshot(""); snap != want {
		t.Errorf("Snapshot() =\n%s\nwant:\n%s", snap, want)
	}

	// Bindings do not outlive the composite that installed them.
	got, err := tr.ResolveToText(tv)
	if err != nil {
		t.Fatalf("ResolveToText() error = %v", err)
	}
	if got != "T" {
		t.Errorf("ResolveToText(T) after binding = %q, want %q", got, "T")
	}

	sibling := ir.Composite("Sibling", ir.Field("v", tv))
	if _, err := tr.Resolve(sibling); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !strings.Contains(tr.Snapshot(""), "interface Sibling {\n  v: T;\n}") {
		t.Errorf("sibling saw a leaked binding:\n%s", tr.Snapshot(""))
	}
}

func TestResolveGenericBindingClearedOnError(t *testing.T) {
	tv := ir.TypeVar("T", nil)
	base := ir.Composite("Base", ir.Field("value", tv))
	base.TypeParams = []*ir.TypeVarDescriptor{tv}

	child := ir.Composite("Child",
		ir.Field("extra", tv),
		ir.Field("lookup", ir.Dict(ir.Int())),
	)
	child.Bases = []ir.TypeDescriptor{ir.Instantiate(base, ir.Int())}

	tr := New()
	_, err := tr.Resolve(child)
	if !IsCode(err, CodeArity) {
		t.Fatalf("Resolve() error = %v, want %s", err, CodeArity)
	}
	if tr.Store().Has(KeyOf(child)) {
		t.Error("failed composite must not be stored")
	}

	got, err := tr.ResolveToText(tv)
	if err != nil {
		t.Fatalf("ResolveToText() error = %v", err)
	}
	if got != "T" {
		t.Errorf("ResolveToText(T) after failed binding = %q, want %q", got, "T")
	}
}

func TestResolveInstance(t *testing.T) {
	k := ir.TypeVar("K", nil)
	v := ir.TypeVar("V", nil)
	pair := ir.Composite("Pair", ir.Field("key", k), ir.Field("value", v))
	pair.TypeParams = []*ir.TypeVarDescriptor{k, v}

	tr := New()
	rendered, err := tr.Resolve(ir.Instantiate(pair, ir.String(), ir.List(ir.Int())))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if rendered.Text != "Pair<string, Array<number>>" {
		t.Errorf("Resolve() = %q", rendered.Text)
	}
	if !rendered.Has(FlagGeneric) {
		t.Error("expected FlagGeneric")
	}
	if !strings.Contains(tr.Snapshot(""), "interface Pair<K extends any, V extends any> {") {
		t.Errorf("generic definition missing:\n%s", tr.Snapshot(""))
	}
}

func TestResetScenario(t *testing.T) {
	tr := New()
	if _, err := tr.Resolve(ir.Composite("Secret", ir.Field("token", ir.String()))); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	tr.Reset()
	if _, err := tr.Resolve(ir.Int()); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	snap := tr.Snapshot("")
	if strings.Contains(snap, "Secret") || strings.Contains(snap, "token") {
		t.Errorf("Snapshot() after Reset contains the first composite: %q", snap)
	}
	if snap != "" {
		t.Errorf("Snapshot() = %q, want empty", snap)
	}

	// A reset store emits the composite again on next use.
	if _, err := tr.Resolve(ir.Composite("Secret")); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if tr.Store().Len() != 1 {
		t.Errorf("Store().Len() = %d, want 1", tr.Store().Len())
	}
}

func TestSnapshotNamespace(t *testing.T) {
	tr := New()
	if _, err := tr.Resolve(ir.Alias("UserId", ir.Int())); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Resolve(ir.Composite("A", ir.Field("x", ir.Int()))); err != nil {
		t.Fatal(err)
	}

	want := "declare namespace Api {\n" +
		"  type UserId = number;\n" +
		"  interface A {\n" +
		"    x: number;\n" +
		"  }\n" +
		"}"
	if got := tr.Snapshot("api"); got != want {
		t.Errorf("Snapshot(api) =\n%s\nwant:\n%s", got, want)
	}
	if got := tr.Snapshot("  "); got != "type UserId = number;\ninterface A {\n  x: number;\n}" {
		t.Errorf("Snapshot(blank) = %q", got)
	}
}

func TestNamespaceCapitalization(t *testing.T) {
	tests := []struct {
		namespace string
		want      string
	}{
		{"api", "declare namespace Api {"},
		{"API", "declare namespace Api {"},
		{"api v2", "declare namespace Api v2 {"},
		{"myModels", "declare namespace Mymodels {"},
		{"éclair", "declare namespace Éclair {"},
	}
	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			got := wrapNamespace(tt.namespace, []string{"type A = number;"})
			if !strings.HasPrefix(got, tt.want+"\n") {
				t.Errorf("wrapNamespace(%q) = %q, want prefix %q", tt.namespace, got, tt.want)
			}
		})
	}
}

func TestTypeMappings(t *testing.T) {
	tr := New().WithTypeMappings(map[string]string{
		"decimal.Decimal": "string",
		"UUID":            "string",
		"weakref.ref":     "object",
		"app.UserId":      "string",
		"Money":           "number",
		"app.Color":       "string",
	})

	tests := []struct {
		name string
		td   ir.TypeDescriptor
		want string
	}{
		{"qualified alias", &ir.AliasDescriptor{Name: ir.Ident("UserId", "app"), Underlying: ir.Int()}, "string"},
		{"bare composite", &ir.CompositeDescriptor{Name: ir.Ident("Money", "billing")}, "number"},
		{"enum", &ir.EnumDescriptor{Name: ir.Ident("Color", "app"), Members: []ir.EnumMember{{Name: "RED", Value: "red"}}}, "string"},
		{"qualified", &ir.OpaqueDescriptor{Name: ir.Ident("Decimal", "decimal")}, "string"},
		{"bare name", &ir.OpaqueDescriptor{Name: ir.Ident("UUID", "uuid")}, "string"},
		{"container origin", ir.Container("weakref.ref", ir.Int()), "object"},
		{"unmapped", &ir.OpaqueDescriptor{Name: ir.Ident("Path", "pathlib")}, "any"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.ResolveToText(tt.td)
			if err != nil {
				t.Fatalf("ResolveToText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveToText() = %q, want %q", got, tt.want)
			}
		})
	}
	if tr.Store().Len() != 0 {
		t.Errorf("mappings must not store definitions, got %d", tr.Store().Len())
	}

	wallet := ir.Composite("Wallet", ir.Field("balance", &ir.CompositeDescriptor{Name: ir.Ident("Money", "billing")}))
	if _, err := tr.Resolve(wallet); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if snap := tr.Snapshot(""); snap != "interface Wallet {\n  balance: number;\n}" {
		t.Errorf("Snapshot() = %q", snap)
	}

	// Type variables are bound by generics, never mapped.
	if got, err := tr.ResolveToText(ir.TypeVar("Money", nil)); err != nil || got != "Money" {
		t.Errorf("ResolveToText(TypeVar Money) = %q, %v", got, err)
	}
}

func TestUnknownLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := New().WithLogger(logger)

	rendered, err := tr.Resolve(&ir.OpaqueDescriptor{Name: ir.Ident("Path", "pathlib")})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if rendered.Text != "any" || !rendered.Has(FlagUnknown) {
		t.Errorf("Resolve() = %+v, want any with FlagUnknown", rendered)
	}
	if !strings.Contains(buf.String(), "unsupported type") || !strings.Contains(buf.String(), "pathlib.Path") {
		t.Errorf("expected warning in log, got %q", buf.String())
	}

	buf.Reset()
	if _, err := tr.Resolve(ir.Alias("A", ir.Int())); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "registered definition") {
		t.Errorf("expected debug registration log, got %q", buf.String())
	}
}

func TestTranslate(t *testing.T) {
	doc := &ir.Document{Namespace: "models"}
	id := ir.Alias("UserId", ir.Int())
	doc.AddType(id)
	doc.AddType(ir.Composite("User", ir.Field("id", id)))

	tr := New()
	got, err := tr.Translate(doc)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	want := "declare namespace Models {\n" +
		"  type UserId = number;\n" +
		"  interface User {\n" +
		"    id: UserId;\n" +
		"  }\n" +
		"}"
	if got != want {
		t.Errorf("Translate() =\n%s\nwant:\n%s", got, want)
	}

	bad := &ir.Document{}
	bad.AddType(ir.Alias("Broken", ir.Dict(ir.Int())))
	if _, err := New().Translate(bad); !IsCode(err, CodeArity) {
		t.Errorf("Translate() error = %v, want arity error", err)
	}
}

func TestConcurrentResolve(t *testing.T) {
	tr := New()
	shared := ir.Composite("Shared", ir.Field("n", ir.Int()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Resolve(ir.List(shared)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if tr.Store().Len() != 1 {
		t.Errorf("Store().Len() = %d, want 1", tr.Store().Len())
	}
}
