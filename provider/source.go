package provider

import (
	"cmp"
	"context"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/typets/ir"
)

// SourceProvider extracts descriptors by analyzing Go source code. Unlike
// reflection it sees doc comments, type parameters, constant groups
// (emitted as enums) and function signatures.
type SourceProvider struct{}

// SourceInputOptions configures source-based extraction.
type SourceInputOptions struct {
	// Packages are the Go package patterns to analyze.
	Packages []string

	// Dir is the directory packages are resolved from. Empty means the
	// current directory.
	Dir string

	// RootTypes are the type names to extract. If empty, all exported types
	// in the packages are extracted.
	RootTypes []string

	// Functions also extracts exported functions and the exported methods of
	// extracted types.
	Functions bool

	// Framework, when set, is stamped on every extracted struct.
	Framework string
}

// BuildDocument analyzes source code and returns a Document. Types reachable
// from the roots are extracted recursively.
func (p *SourceProvider) BuildDocument(ctx context.Context, opts SourceInputOptions) (*ir.Document, error) {
	if len(opts.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}

	b := &sourceBuilder{
		pkgs:           pkgs,
		doc:            &ir.Document{Module: pkgs[0].PkgPath},
		framework:      opts.Framework,
		named:          make(map[string]ir.TypeDescriptor),
		typeParams:     make(map[*types.TypeParam]*ir.TypeVarDescriptor),
		enumCandidates: make(map[*types.TypeName][]*types.Const),
		comments:       make(map[token.Pos]*ast.CommentGroup),
	}
	b.indexComments()
	b.indexEnumConstants()

	if len(opts.RootTypes) > 0 {
		for _, name := range opts.RootTypes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			td, err := b.extractRootType(name)
			if err != nil {
				return nil, fmt.Errorf("failed to extract root type %s: %w", name, err)
			}
			b.doc.Roots = append(b.doc.Roots, td)
		}
	} else if err := b.extractAllExported(ctx); err != nil {
		return nil, fmt.Errorf("failed to extract exported types: %w", err)
	}

	if opts.Functions {
		if err := b.extractFunctions(ctx, len(opts.RootTypes) > 0); err != nil {
			return nil, err
		}
	}

	return b.doc, nil
}

// sourceBuilder accumulates descriptors while walking go/types objects.
type sourceBuilder struct {
	pkgs      []*packages.Package
	doc       *ir.Document
	framework string

	named          map[string]ir.TypeDescriptor // key: pkgPath.Name
	typeParams     map[*types.TypeParam]*ir.TypeVarDescriptor
	enumCandidates map[*types.TypeName][]*types.Const
	comments       map[token.Pos]*ast.CommentGroup

	// extracted lists named types in extraction order, for method lookup.
	extracted []*types.Named
}

func (b *sourceBuilder) extractRootType(name string) (ir.TypeDescriptor, error) {
	for _, pkg := range b.pkgs {
		if tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName); ok {
			return b.extractNamed(tn)
		}
	}
	return nil, fmt.Errorf("type %s not found in any package", name)
}

func (b *sourceBuilder) extractAllExported(ctx context.Context) error {
	for _, pkg := range b.pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			if err := ctx.Err(); err != nil {
				return err
			}
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !tn.Exported() || tn.IsAlias() {
				continue
			}
			if _, err := b.extractNamed(tn); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractNamed converts a declared type to a named descriptor: an enum when
// constants of the type exist, a composite for structs, and an alias
// otherwise. The result is cached so each declaration maps to one
// descriptor.
func (b *sourceBuilder) extractNamed(tn *types.TypeName) (ir.TypeDescriptor, error) {
	if tn.IsAlias() {
		return b.convertType(types.Unalias(tn.Type()), tn.Name())
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%s is not a declared type", tn.Name())
	}
	named = named.Origin()

	key := typeKey(named)
	if td, ok := b.named[key]; ok {
		return td, nil
	}

	id := ir.Ident(tn.Name(), pkgPath(tn))
	doc := b.documentation(tn.Pos())

	if consts := b.enumCandidates[named.Obj()]; len(consts) > 0 {
		desc := b.buildEnum(id, consts, doc)
		b.register(key, named, desc)
		return desc, nil
	}

	if hasCustomMarshaler(named) {
		b.addWarning("CUSTOM_MARSHALER", fmt.Sprintf("type %s implements a custom marshaler, mapped to any", tn.Name()), tn.Name())
		desc := &ir.AliasDescriptor{Name: id, Underlying: ir.Any(), Documentation: doc}
		b.register(key, named, desc)
		return desc, nil
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		desc := &ir.CompositeDescriptor{Name: id, Framework: b.framework, Documentation: doc}
		b.register(key, named, desc)
		if err := b.fillStruct(desc, named.TypeParams(), u); err != nil {
			return nil, err
		}
		return desc, nil

	case *types.Interface:
		if !u.Empty() {
			b.addWarning("INTERFACE_TYPE", fmt.Sprintf("interface type %s mapped to any", tn.Name()), tn.Name())
		}
		desc := &ir.AliasDescriptor{Name: id, Underlying: ir.Any(), Documentation: doc}
		b.register(key, named, desc)
		return desc, nil

	default:
		desc := &ir.AliasDescriptor{Name: id, Documentation: doc}
		b.register(key, named, desc)
		underlying, err := b.convertType(u, tn.Name())
		if err != nil {
			return nil, err
		}
		desc.Underlying = underlying
		return desc, nil
	}
}

func (b *sourceBuilder) register(key string, named *types.Named, td ir.TypeDescriptor) {
	b.named[key] = td
	b.extracted = append(b.extracted, named)
	b.doc.AddType(td)
}

// fillStruct converts the type parameters and fields of a struct.
func (b *sourceBuilder) fillStruct(desc *ir.CompositeDescriptor, tparams *types.TypeParamList, st *types.Struct) error {
	for i := range tparams.Len() {
		tv, err := b.typeVar(tparams.At(i), desc.Name.String())
		if err != nil {
			return err
		}
		desc.TypeParams = append(desc.TypeParams, tv)
	}

	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}
		jsonTag, hasTag := reflect.StructTag(st.Tag(i)).Lookup("json")

		if field.Embedded() && !hasTag {
			if base, ok := b.embeddedBase(field.Type()); ok {
				td, err := b.convertType(base, desc.Name.Name)
				if err != nil {
					return err
				}
				desc.Bases = append(desc.Bases, td)
				continue
			}
		}

		name, optional, skip := parseJSONTag(jsonTag, field.Name())
		if skip {
			name = field.Name()
		}
		td, err := b.convertType(field.Type(), desc.Name.Name+"_"+field.Name())
		if err != nil {
			return fmt.Errorf("%s.%s: %w", desc.Name.Name, field.Name(), err)
		}
		desc.Fields = append(desc.Fields, ir.FieldDescriptor{
			Name:          name,
			Type:          td,
			Optional:      optional,
			Exclude:       skip,
			Documentation: b.documentation(field.Pos()),
		})
	}
	return nil
}

// embeddedBase returns the named struct type an embedded field extends.
func (b *sourceBuilder) embeddedBase(t types.Type) (types.Type, bool) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || specialType(named) != nil {
		return nil, false
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return nil, false
	}
	return named, true
}

// typeVar converts a type parameter. The variable is qualified by its owner
// so that same-named parameters of different types stay distinct.
// Unconstrained (any, comparable) parameters get no bound, union constraints
// such as ~string | ~int become constraint lists, and a single-term union
// becomes the bound.
func (b *sourceBuilder) typeVar(tp *types.TypeParam, owner string) (*ir.TypeVarDescriptor, error) {
	if tv, ok := b.typeParams[tp]; ok {
		return tv, nil
	}
	tv := &ir.TypeVarDescriptor{Name: ir.Ident(tp.Obj().Name(), owner)}
	b.typeParams[tp] = tv

	iface, ok := tp.Constraint().Underlying().(*types.Interface)
	if !ok || iface.Empty() || iface.IsComparable() && iface.NumMethods() == 0 && iface.NumEmbeddeds() == 0 {
		return tv, nil
	}

	for i := range iface.NumEmbeddeds() {
		union, ok := iface.EmbeddedType(i).(*types.Union)
		if !ok {
			continue
		}
		for j := range union.Len() {
			td, err := b.convertType(union.Term(j).Type(), "")
			if err != nil {
				return nil, err
			}
			tv.Constraints = append(tv.Constraints, td)
		}
	}
	if len(tv.Constraints) == 1 {
		tv.Bound, tv.Constraints = tv.Constraints[0], nil
	}
	return tv, nil
}

// convertType converts a Go type to a descriptor. parentName seeds synthetic
// names for anonymous structs.
func (b *sourceBuilder) convertType(t types.Type, parentName string) (ir.TypeDescriptor, error) {
	if desc := specialType(t); desc != nil {
		return desc, nil
	}

	switch typ := t.(type) {
	case *types.Basic:
		return convertBasic(typ), nil

	case *types.Alias:
		return b.convertType(types.Unalias(typ), parentName)

	case *types.Named:
		if typ.TypeArgs().Len() == 0 {
			return b.extractNamed(typ.Obj())
		}
		return b.instance(typ, parentName)

	case *types.Pointer:
		elem, err := b.convertType(typ.Elem(), parentName)
		if err != nil {
			return nil, err
		}
		return ir.Optional(elem), nil

	case *types.Slice:
		elem, err := b.convertType(typ.Elem(), parentName)
		if err != nil {
			return nil, err
		}
		return ir.List(elem), nil

	case *types.Array:
		elem, err := b.convertType(typ.Elem(), parentName)
		if err != nil {
			return nil, err
		}
		return ir.Tuple(elem, ir.Ellipsis()), nil

	case *types.Map:
		if !isValidMapKey(typ.Key()) {
			return nil, fmt.Errorf("unsupported map key type: %s", typ.Key())
		}
		key, err := b.convertType(typ.Key(), parentName)
		if err != nil {
			return nil, err
		}
		value, err := b.convertType(typ.Elem(), parentName)
		if err != nil {
			return nil, err
		}
		return ir.Dict(key, value), nil

	case *types.Interface:
		if !typ.Empty() {
			b.addWarning("INTERFACE_TYPE", fmt.Sprintf("interface type %s mapped to any", typ), "")
		}
		return ir.Any(), nil

	case *types.Struct:
		return b.anonymousStruct(typ, parentName)

	case *types.TypeParam:
		return b.typeVar(typ, "")

	case *types.Signature:
		return b.callable(typ, parentName)

	case *types.Chan:
		return nil, fmt.Errorf("channel types are not supported: %s", t)

	default:
		return nil, fmt.Errorf("unknown type: %T", t)
	}
}

// instance converts an instantiated generic type. Generic structs become an
// instance of their composite; other generic types are expanded inline.
func (b *sourceBuilder) instance(named *types.Named, parentName string) (ir.TypeDescriptor, error) {
	origin, err := b.extractNamed(named.Obj())
	if err != nil {
		return nil, err
	}

	args := make([]ir.TypeDescriptor, 0, named.TypeArgs().Len())
	for i := range named.TypeArgs().Len() {
		td, err := b.convertType(named.TypeArgs().At(i), parentName)
		if err != nil {
			return nil, err
		}
		args = append(args, td)
	}

	if c, ok := origin.(*ir.CompositeDescriptor); ok {
		return ir.Instantiate(c, args...), nil
	}
	return b.convertType(named.Underlying(), parentName)
}

func (b *sourceBuilder) anonymousStruct(st *types.Struct, parentName string) (ir.TypeDescriptor, error) {
	if parentName == "" {
		return nil, fmt.Errorf("anonymous struct %s has no enclosing type to name it after", st)
	}
	key := "anon." + parentName
	if td, ok := b.named[key]; ok {
		return td, nil
	}

	desc := &ir.CompositeDescriptor{Name: ir.Ident(parentName, b.doc.Module), Framework: b.framework}
	b.named[key] = desc
	b.doc.AddType(desc)

	if err := b.fillStruct(desc, nil, st); err != nil {
		return nil, err
	}
	return desc, nil
}

func (b *sourceBuilder) callable(sig *types.Signature, parentName string) (ir.TypeDescriptor, error) {
	ret, err := b.result(sig, parentName)
	if err != nil {
		return nil, err
	}
	if sig.Variadic() {
		return ir.VariadicCallable(ret), nil
	}

	params := make([]ir.TypeDescriptor, 0, sig.Params().Len())
	for i := range sig.Params().Len() {
		td, err := b.convertType(sig.Params().At(i).Type(), parentName)
		if err != nil {
			return nil, err
		}
		params = append(params, td)
	}
	return ir.Callable(params, ret), nil
}

// result converts the first non-error result of sig, or None.
func (b *sourceBuilder) result(sig *types.Signature, parentName string) (ir.TypeDescriptor, error) {
	res := sig.Results()
	if res.Len() == 0 || isErrorType(res.At(0).Type()) {
		return ir.None(), nil
	}
	return b.convertType(res.At(0).Type(), parentName)
}

// extractFunctions adds exported package functions and the exported methods
// of extracted types. When roots is set they are also added as roots.
func (b *sourceBuilder) extractFunctions(ctx context.Context, roots bool) error {
	for _, pkg := range b.pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn, ok := scope.Lookup(name).(*types.Func)
			if !ok || !fn.Exported() {
				continue
			}
			desc, err := b.function(fn, ir.Ident(fn.Name(), pkgPath(fn)), false)
			if err != nil {
				return fmt.Errorf("function %s: %w", fn.Name(), err)
			}
			b.doc.AddType(desc)
			if roots {
				b.doc.Roots = append(b.doc.Roots, desc)
			}
		}
	}

	for _, named := range slices.Clone(b.extracted) {
		if !b.loaded(named.Obj().Pkg()) || named.TypeParams().Len() > 0 {
			continue
		}
		owner := named.Obj().Pkg().Path() + "." + named.Obj().Name()
		for i := range named.NumMethods() {
			m := named.Method(i)
			if !m.Exported() {
				continue
			}
			desc, err := b.function(m, ir.Ident(m.Name(), owner), true)
			if err != nil {
				return fmt.Errorf("method %s.%s: %w", named.Obj().Name(), m.Name(), err)
			}
			b.doc.AddType(desc)
			if roots {
				b.doc.Roots = append(b.doc.Roots, desc)
			}
		}
	}
	return nil
}

// loaded reports whether pkg is one of the analyzed packages.
func (b *sourceBuilder) loaded(pkg *types.Package) bool {
	return pkg != nil && slices.ContainsFunc(b.pkgs, func(p *packages.Package) bool { return p.Types == pkg })
}

func (b *sourceBuilder) function(fn *types.Func, id ir.Identifier, method bool) (*ir.FunctionDescriptor, error) {
	sig := fn.Signature()
	desc := &ir.FunctionDescriptor{
		Name:          id,
		Method:        method,
		Documentation: b.documentation(fn.Pos()),
	}

	params := sig.Params()
	for i := range params.Len() {
		p := params.At(i)
		name := p.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		if i == 0 && isContextType(p.Type()) {
			continue
		}
		td, err := b.convertType(p.Type(), "")
		if err != nil {
			return nil, err
		}
		desc.Params = append(desc.Params, ir.ParamDescriptor{
			Name:     name,
			Type:     td,
			Optional: sig.Variadic() && i == params.Len()-1,
		})
	}

	ret, err := b.result(sig, "")
	if err != nil {
		return nil, err
	}
	desc.Return = ret
	return desc, nil
}

// specialType maps standard library types with custom JSON encodings and
// []byte.
func specialType(t types.Type) ir.TypeDescriptor {
	switch typ := t.(type) {
	case *types.Slice:
		if basic, ok := typ.Elem().(*types.Basic); ok && basic.Kind() == types.Byte {
			return ir.Bytes()
		}
	case *types.Array:
		if basic, ok := typ.Elem().(*types.Basic); ok && basic.Kind() == types.Byte {
			return ir.Bytes()
		}
	case *types.Named:
		obj := typ.Obj()
		if obj.Pkg() == nil {
			return nil
		}
		switch obj.Pkg().Path() + "." + obj.Name() {
		case "time.Time":
			return ir.Datetime()
		case "time.Duration":
			return ir.Int()
		case "encoding/json.Number":
			return ir.String()
		case "encoding/json.RawMessage":
			return ir.Any()
		}
	}
	return nil
}

func convertBasic(basic *types.Basic) ir.TypeDescriptor {
	info := basic.Info()
	switch {
	case info&types.IsBoolean != 0:
		return ir.Bool()
	case info&types.IsInteger != 0:
		return ir.Int()
	case info&types.IsFloat != 0:
		return ir.Float()
	case info&types.IsComplex != 0:
		return ir.Primitive(ir.PrimitiveComplex)
	case info&types.IsString != 0:
		return ir.String()
	case basic.Kind() == types.UntypedNil:
		return ir.None()
	default:
		return ir.Any()
	}
}

// hasCustomMarshaler reports whether named declares MarshalJSON or
// MarshalText.
func hasCustomMarshaler(named *types.Named) bool {
	for i := range named.NumMethods() {
		switch named.Method(i).Name() {
		case "MarshalJSON", "MarshalText":
			return true
		}
	}
	return false
}

func hasTextMarshaler(named *types.Named) bool {
	for i := range named.NumMethods() {
		if named.Method(i).Name() == "MarshalText" {
			return true
		}
	}
	return false
}

func isValidMapKey(t types.Type) bool {
	switch typ := types.Unalias(t).(type) {
	case *types.Basic:
		return typ.Info()&(types.IsString|types.IsInteger) != 0
	case *types.Named:
		return hasTextMarshaler(typ) || isValidMapKey(typ.Underlying())
	default:
		return false
	}
}

func isErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func isContextType(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	return ok && named.Obj().Pkg() != nil &&
		named.Obj().Pkg().Path() == "context" && named.Obj().Name() == "Context"
}

func typeKey(named *types.Named) string {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return named.String()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

func pkgPath(obj types.Object) string {
	if obj.Pkg() == nil {
		return ""
	}
	return obj.Pkg().Path()
}

// indexEnumConstants groups package-level constants by their declared type.
// Only named types with a basic underlying type qualify.
func (b *sourceBuilder) indexEnumConstants() {
	for _, pkg := range b.pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			c, ok := scope.Lookup(name).(*types.Const)
			if !ok {
				continue
			}
			named, ok := c.Type().(*types.Named)
			if !ok || named.Obj().Pkg() != pkg.Types {
				continue
			}
			if _, ok := named.Underlying().(*types.Basic); !ok {
				continue
			}
			b.enumCandidates[named.Obj()] = append(b.enumCandidates[named.Obj()], c)
		}
	}
	for _, consts := range b.enumCandidates {
		slices.SortFunc(consts, func(a, b *types.Const) int { return cmp.Compare(a.Pos(), b.Pos()) })
	}
}

func (b *sourceBuilder) buildEnum(id ir.Identifier, consts []*types.Const, doc ir.Documentation) *ir.EnumDescriptor {
	members := make([]ir.EnumMember, 0, len(consts))
	for _, c := range consts {
		members = append(members, ir.EnumMember{
			Name:          c.Name(),
			Value:         constantValue(c.Val()),
			Documentation: b.documentation(c.Pos()),
		})
	}
	return &ir.EnumDescriptor{Name: id, Members: members, Documentation: doc}
}

// constantValue converts a constant to string, int64, float64 or bool.
func constantValue(v constant.Value) any {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		if i64, ok := constant.Int64Val(v); ok {
			return i64
		}
		f64, _ := constant.Float64Val(v)
		return f64
	case constant.Float:
		f64, _ := constant.Float64Val(v)
		return f64
	case constant.Bool:
		return constant.BoolVal(v)
	default:
		return v.String()
	}
}

// indexComments maps declaration positions to their doc comments: type
// specs, constants, functions and struct fields.
func (b *sourceBuilder) indexComments() {
	for _, pkg := range b.pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				switch decl := n.(type) {
				case *ast.GenDecl:
					for _, spec := range decl.Specs {
						switch s := spec.(type) {
						case *ast.TypeSpec:
							b.comments[s.Name.Pos()] = firstGroup(s.Doc, declDoc(decl))
						case *ast.ValueSpec:
							for _, name := range s.Names {
								b.comments[name.Pos()] = firstGroup(s.Doc, s.Comment)
							}
						}
					}
				case *ast.FuncDecl:
					b.comments[decl.Name.Pos()] = decl.Doc
				case *ast.Field:
					for _, name := range decl.Names {
						b.comments[name.Pos()] = firstGroup(decl.Doc, decl.Comment)
					}
				}
				return true
			})
		}
	}
}

// declDoc returns the GenDecl doc only when it holds a single spec, so that
// a grouped `type ( ... )` comment is not copied onto every member.
func declDoc(decl *ast.GenDecl) *ast.CommentGroup {
	if len(decl.Specs) == 1 {
		return decl.Doc
	}
	return nil
}

func firstGroup(groups ...*ast.CommentGroup) *ast.CommentGroup {
	for _, g := range groups {
		if g != nil {
			return g
		}
	}
	return nil
}

func (b *sourceBuilder) documentation(pos token.Pos) ir.Documentation {
	return parseDocumentation(b.comments[pos])
}

// parseDocumentation converts a comment group into Documentation, lifting a
// "Deprecated:" paragraph out of the body.
func parseDocumentation(cg *ast.CommentGroup) ir.Documentation {
	if cg == nil {
		return ir.Documentation{}
	}

	lines := strings.Split(strings.TrimSpace(cg.Text()), "\n")
	var deprecated *string
	for i, line := range lines {
		if msg, ok := strings.CutPrefix(line, "Deprecated:"); ok {
			msg = strings.TrimSpace(msg)
			deprecated = &msg
			lines = slices.Delete(lines, i, i+1)
			break
		}
	}

	body := strings.TrimSpace(strings.Join(lines, "\n"))
	doc := ir.Doc(body)
	doc.Deprecated = deprecated
	return doc
}

func (b *sourceBuilder) addWarning(code, message, typeName string) {
	b.doc.AddWarning(ir.Warning{
		Code:     code,
		Message:  message,
		TypeName: typeName,
	})
}
