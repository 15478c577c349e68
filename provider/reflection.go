// Package provider builds descriptor documents from Go code. The reflection
// provider walks runtime types; the source provider loads packages with
// go/packages and reads declarations, doc comments and constant groups.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/broady/typets/ir"
	"github.com/broady/typets/typescript"
)

// ReflectionProvider extracts descriptors using runtime reflection.
// Reflection cannot see doc comments, constant groups or type parameters;
// use the SourceProvider when those matter.
type ReflectionProvider struct{}

// ReflectionInputOptions configures reflection-based extraction.
type ReflectionInputOptions struct {
	// RootTypes are the types to extract.
	RootTypes []reflect.Type

	// Framework, when set, is stamped on every extracted struct so that a
	// framework plugin can claim it.
	Framework string
}

// BuildDocument extracts the root types and everything they reference.
func (p *ReflectionProvider) BuildDocument(ctx context.Context, opts ReflectionInputOptions) (*ir.Document, error) {
	if len(opts.RootTypes) == 0 {
		return nil, fmt.Errorf("no root types provided")
	}

	b := &reflectionBuilder{
		doc:         &ir.Document{},
		framework:   opts.Framework,
		visited:     make(map[reflect.Type]ir.TypeDescriptor),
		anonStructs: make(map[reflect.Type]*ir.CompositeDescriptor),
	}

	for _, t := range opts.RootTypes {
		if t == nil {
			return nil, fmt.Errorf("nil root type")
		}
		td, err := b.typeToDescriptor(ctx, t, "")
		if err != nil {
			return nil, err
		}
		b.doc.Roots = append(b.doc.Roots, td)
	}

	return b.doc, nil
}

// reflectionBuilder maintains state during document construction.
type reflectionBuilder struct {
	doc       *ir.Document
	framework string

	// visited maps named types to their descriptor. Struct descriptors are
	// registered before their fields are walked, so recursive types resolve
	// to the same pointer instead of recursing.
	visited     map[reflect.Type]ir.TypeDescriptor
	anonStructs map[reflect.Type]*ir.CompositeDescriptor
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	durationType   = reflect.TypeOf(time.Duration(0))
	jsonNumberType = reflect.TypeOf(json.Number(""))
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
)

// typeToDescriptor converts t to a descriptor. parentName seeds synthetic
// names for anonymous structs.
func (b *reflectionBuilder) typeToDescriptor(ctx context.Context, t reflect.Type, parentName string) (ir.TypeDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if desc := b.checkSpecialType(t); desc != nil {
		return desc, nil
	}
	if err := checkUnsupportedType(t); err != nil {
		return nil, err
	}

	if td, ok := b.visited[t]; ok {
		return td, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := b.typeToDescriptor(ctx, t.Elem(), parentName)
		if err != nil {
			return nil, err
		}
		return ir.Optional(elem), nil

	case reflect.Struct:
		if t.Name() == "" {
			return b.anonymousStruct(ctx, t, parentName)
		}
		return b.extractStruct(ctx, t)

	case reflect.Interface:
		if t.NumMethod() > 0 {
			b.addWarning("INTERFACE_TYPE", fmt.Sprintf("interface type %s mapped to any", t), t.String())
		}
		return ir.Any(), nil
	}

	if isNamed(t) {
		return b.extractAlias(ctx, t)
	}
	return b.unnamed(ctx, t, parentName)
}

// unnamed converts an anonymous non-struct type.
func (b *reflectionBuilder) unnamed(ctx context.Context, t reflect.Type, parentName string) (ir.TypeDescriptor, error) {
	switch t.Kind() {
	case reflect.Bool:
		return ir.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return ir.Int(), nil
	case reflect.Float32, reflect.Float64:
		return ir.Float(), nil
	case reflect.String:
		return ir.String(), nil

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ir.Bytes(), nil
		}
		elem, err := b.typeToDescriptor(ctx, t.Elem(), parentName)
		if err != nil {
			return nil, err
		}
		return ir.List(elem), nil

	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return ir.Bytes(), nil
		}
		elem, err := b.typeToDescriptor(ctx, t.Elem(), parentName)
		if err != nil {
			return nil, err
		}
		return ir.Tuple(elem, ir.Ellipsis()), nil

	case reflect.Map:
		if err := validateMapKeyType(t.Key()); err != nil {
			return nil, err
		}
		key, err := b.typeToDescriptor(ctx, t.Key(), parentName)
		if err != nil {
			return nil, err
		}
		val, err := b.typeToDescriptor(ctx, t.Elem(), parentName)
		if err != nil {
			return nil, err
		}
		return ir.Dict(key, val), nil

	case reflect.Func:
		return b.callable(ctx, t, parentName)
	}

	return nil, fmt.Errorf("unsupported type: %s (kind: %s)", t, t.Kind())
}

// callable converts a func type to a Callable. Multiple results collapse to
// the first; a trailing error result is dropped.
func (b *reflectionBuilder) callable(ctx context.Context, t reflect.Type, parentName string) (ir.TypeDescriptor, error) {
	if t.IsVariadic() {
		ret, err := b.result(ctx, t, parentName)
		if err != nil {
			return nil, err
		}
		return ir.VariadicCallable(ret), nil
	}

	params := make([]ir.TypeDescriptor, 0, t.NumIn())
	for i := range t.NumIn() {
		p, err := b.typeToDescriptor(ctx, t.In(i), parentName)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	ret, err := b.result(ctx, t, parentName)
	if err != nil {
		return nil, err
	}
	return ir.Callable(params, ret), nil
}

var errorType = reflect.TypeFor[error]()

func (b *reflectionBuilder) result(ctx context.Context, t reflect.Type, parentName string) (ir.TypeDescriptor, error) {
	if t.NumOut() == 0 || t.Out(0) == errorType {
		return ir.None(), nil
	}
	return b.typeToDescriptor(ctx, t.Out(0), parentName)
}

// extractStruct converts a named struct to a Composite.
func (b *reflectionBuilder) extractStruct(ctx context.Context, t reflect.Type) (ir.TypeDescriptor, error) {
	desc := &ir.CompositeDescriptor{
		Name:      ir.Ident(typeName(t), t.PkgPath()),
		Framework: b.framework,
	}
	b.visited[t] = desc
	b.doc.AddType(desc)

	if err := b.fillStruct(ctx, t, desc); err != nil {
		delete(b.visited, t)
		return nil, err
	}
	return desc, nil
}

// anonymousStruct converts an inline struct to a Composite with a synthetic
// Parent_Field name.
func (b *reflectionBuilder) anonymousStruct(ctx context.Context, t reflect.Type, parentName string) (ir.TypeDescriptor, error) {
	if desc, ok := b.anonStructs[t]; ok {
		return desc, nil
	}
	if parentName == "" {
		return nil, fmt.Errorf("anonymous struct %s has no enclosing type to name it after", t)
	}

	desc := &ir.CompositeDescriptor{
		Name:      ir.Ident(parentName, ""),
		Framework: b.framework,
	}
	b.anonStructs[t] = desc
	b.doc.AddType(desc)

	if err := b.fillStruct(ctx, t, desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// fillStruct walks the exported fields of t into desc. Embedded structs
// without a json tag become bases; everything else becomes a field.
func (b *reflectionBuilder) fillStruct(ctx context.Context, t reflect.Type, desc *ir.CompositeDescriptor) error {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if field.Anonymous && jsonTag == "" {
			base, err := b.embedded(ctx, field, desc.Name.Name)
			if err != nil {
				return err
			}
			if base != nil {
				desc.Bases = append(desc.Bases, base)
				continue
			}
		}

		fd, err := b.buildFieldDescriptor(ctx, field, desc.Name.Name)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", desc.Name.Name, field.Name, err)
		}
		desc.Fields = append(desc.Fields, fd)
	}
	return nil
}

// embedded resolves an embedded struct to its composite. It returns nil for
// embedded non-struct types, which are treated as ordinary fields.
func (b *reflectionBuilder) embedded(ctx context.Context, field reflect.StructField, parentName string) (ir.TypeDescriptor, error) {
	et := field.Type
	for et.Kind() == reflect.Pointer {
		et = et.Elem()
	}
	if et.Kind() != reflect.Struct || et.Name() == "" || b.checkSpecialType(et) != nil {
		return nil, nil
	}
	return b.typeToDescriptor(ctx, et, parentName+"_"+field.Name)
}

// buildFieldDescriptor creates a FieldDescriptor from a struct field.
func (b *reflectionBuilder) buildFieldDescriptor(ctx context.Context, field reflect.StructField, parentName string) (ir.FieldDescriptor, error) {
	jsonName, optional, skip := parseJSONTag(field.Tag.Get("json"), field.Name)

	fieldType, err := b.typeToDescriptor(ctx, field.Type, parentName+"_"+field.Name)
	if err != nil {
		return ir.FieldDescriptor{}, err
	}

	if skip {
		jsonName = field.Name
	}
	return ir.FieldDescriptor{
		Name:     jsonName,
		Type:     fieldType,
		Optional: optional,
		Exclude:  skip,
	}, nil
}

// extractAlias converts a named non-struct type (type UserID string) to an
// Alias of its underlying shape.
func (b *reflectionBuilder) extractAlias(ctx context.Context, t reflect.Type) (ir.TypeDescriptor, error) {
	desc := &ir.AliasDescriptor{Name: ir.Ident(typeName(t), t.PkgPath())}
	b.visited[t] = desc

	underlying, err := b.unnamed(ctx, t, typeName(t))
	if err != nil {
		delete(b.visited, t)
		return nil, err
	}
	desc.Underlying = underlying
	b.doc.AddType(desc)
	return desc, nil
}

// checkSpecialType maps standard library types with custom JSON encodings.
func (b *reflectionBuilder) checkSpecialType(t reflect.Type) ir.TypeDescriptor {
	switch t {
	case timeType:
		return ir.Datetime()
	case durationType:
		return ir.Int()
	case jsonNumberType:
		return ir.String()
	case rawMessageType:
		return ir.Any()
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return ir.Any()
	}
	return nil
}

func checkUnsupportedType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Chan:
		return fmt.Errorf("channel types are not supported: %s", t)
	case reflect.UnsafePointer:
		return fmt.Errorf("unsafe.Pointer is not supported")
	case reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("complex types are not supported: %s", t)
	}
	return nil
}

// validateMapKeyType rejects keys encoding/json cannot marshal.
func validateMapKeyType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	}
	if t.Implements(reflect.TypeFor[interface{ MarshalText() ([]byte, error) }]()) {
		return nil
	}
	return fmt.Errorf("unsupported map key type: %s", t)
}

func isNamed(t reflect.Type) bool {
	return t.Name() != "" && t.PkgPath() != ""
}

// typeName returns the name for t, sanitizing generic instantiations.
func typeName(t reflect.Type) string {
	name := t.Name()
	if strings.Contains(name, "[") {
		return syntheticName(name)
	}
	return name
}

// syntheticName flattens a generic instantiation name such as
// "Page[example.com/app.User]" into a valid TypeScript identifier.
func syntheticName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		args := strings.Split(name[i+1:strings.LastIndexByte(name, ']')], ",")
		for j, arg := range args {
			arg = strings.TrimSpace(arg)
			ptr := strings.HasPrefix(arg, "*")
			arg = strings.TrimLeft(arg, "*")
			if k := strings.LastIndexAny(arg, "/."); k >= 0 && !strings.Contains(arg, "[") {
				arg = arg[k+1:]
			}
			if ptr {
				arg = "Ptr" + arg
			}
			args[j] = arg
		}
		name = name[:i] + "_" + strings.Join(args, "_")
	}
	r := strings.NewReplacer(".", "_", "/", "_", "[", "_", "]", "", ",", "_", " ", "", "*", "Ptr")
	return typescript.SanitizeIdentifier(r.Replace(name))
}

// parseJSONTag parses a json struct tag. A bare "-" marks the field as
// skipped; omitempty and omitzero make it optional.
func parseJSONTag(tag, fieldName string) (jsonName string, optional, skip bool) {
	if tag == "" {
		return fieldName, false, false
	}

	parts := strings.Split(tag, ",")
	jsonName = parts[0]

	if jsonName == "-" && len(parts) == 1 {
		return "", false, true
	}
	if jsonName == "" {
		jsonName = fieldName
	}

	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty", "omitzero":
			optional = true
		}
	}
	return jsonName, optional, false
}

func (b *reflectionBuilder) addWarning(code, message, typeName string) {
	b.doc.AddWarning(ir.Warning{
		Code:     code,
		Message:  message,
		TypeName: typeName,
	})
}
