package typets

import (
	"strings"

	"github.com/broady/typets/ir"
	"github.com/broady/typets/typescript"
)

// Flag records how a rendering was produced.
type Flag uint32

const (
	FlagAlias Flag = 1 << iota
	FlagTypeVar
	FlagLiteral
	FlagTuple
	FlagArray
	FlagRecord
	FlagSet
	FlagUnion
	FlagOptional
	FlagCallable
	FlagComposite
	FlagGeneric
	FlagPlugin
	FlagUnknown
)

// Rendered is the result of resolving one descriptor: the TypeScript type
// expression plus flags describing its shape.
type Rendered struct {
	Text  string
	Flags Flag
}

// Has reports whether all of f are set.
func (r Rendered) Has(f Flag) bool { return r.Flags&f == f }

const (
	anyType   = "any"
	voidType  = "void"
	neverType = "never"
	nullish   = "null | undefined"
)

// renderPrimitive maps a primitive to its TypeScript spelling.
func renderPrimitive(k ir.PrimitiveKind) string {
	switch k {
	case ir.PrimitiveInt, ir.PrimitiveFloat:
		return "number"
	case ir.PrimitiveString, ir.PrimitiveComplex:
		return "string"
	case ir.PrimitiveBool:
		return "boolean"
	case ir.PrimitiveBytes:
		return "Uint8Array"
	case ir.PrimitiveRange:
		return "number[]"
	case ir.PrimitiveNone:
		return nullish
	case ir.PrimitiveDate, ir.PrimitiveDatetime:
		return "Date"
	default:
		return anyType
	}
}

// renderConst renders a bare constant in type position. Strings are emitted
// verbatim, as they name a type.
func renderConst(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return typescript.FormatLiteral(v)
}

// renderArray renders list[...]: any[] when bare, Array<T> for one argument,
// and a fixed tuple for more.
func renderArray(args []string) string {
	switch len(args) {
	case 0:
		return "any[]"
	case 1:
		return "Array<" + args[0] + ">"
	default:
		return "[" + strings.Join(args, ", ") + "]"
	}
}

// renderTuple renders a fixed tuple. The variadic tuple[T, ...] form is
// detected on descriptors before arguments are rendered; see arrayOf.
func renderTuple(args []string) string {
	if len(args) == 0 {
		return "any[]"
	}
	return "[" + strings.Join(args, ", ") + "]"
}

// arrayOf renders T[], parenthesizing compound element types.
func arrayOf(elem Rendered) string {
	if elem.Flags&(FlagUnion|FlagOptional|FlagCallable) != 0 || strings.Contains(elem.Text, " | ") {
		return "(" + elem.Text + ")[]"
	}
	return elem.Text + "[]"
}

func renderRecord(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "Record<string, any>", nil
	case 2:
		return "Record<" + args[0] + ", " + args[1] + ">", nil
	default:
		return "", arityError(KindRecord, "0 or 2", len(args))
	}
}

func renderSet(kind Kind, args []string) (string, error) {
	name := "Set"
	if kind == KindFrozenSet {
		name = "ReadonlySet"
	}
	switch len(args) {
	case 0:
		return name + "<any>", nil
	case 1:
		return name + "<" + args[0] + ">", nil
	default:
		return "", arityError(kind, "0 or 1", len(args))
	}
}

func renderDeque(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "Array<any>", nil
	case 1:
		return "Array<" + args[0] + ">", nil
	default:
		return "", arityError(KindDeque, "0 or 1", len(args))
	}
}

func renderCounter(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "Record<any, number>", nil
	case 1:
		return "Record<" + args[0] + ", number>", nil
	default:
		return "", arityError(KindCounter, "0 or 1", len(args))
	}
}

func renderChainMap(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "Record<any, any>", nil
	case 2:
		return "Record<" + args[0] + ", " + args[1] + ">", nil
	default:
		return "", arityError(KindChainMap, "0 or 2", len(args))
	}
}

func renderUnion(args []string) string {
	if len(args) == 0 {
		return neverType
	}
	return strings.Join(args, " | ")
}

func renderOptional(inner string) string {
	if inner == nullish {
		return inner
	}
	return inner + " | " + nullish
}

// renderLiteral renders literal members in declaration order; an empty set
// is never.
func renderLiteral(values []any) string {
	if len(values) == 0 {
		return neverType
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = typescript.FormatLiteral(v)
	}
	return strings.Join(parts, " | ")
}

// renderCallable renders (...args: P) => R from a rendered parameter list.
func renderCallable(params, ret string) string {
	return "(...args: " + params + ") => " + ret
}

func arityError(kind Kind, want string, got int) error {
	return Errorf(CodeArity, "%s expects %s type arguments, got %d", kind, want, got).
		WithDetail("kind", kind.String()).
		WithDetail("args", got)
}
