package ir

// PrimitiveKind identifies the category of a primitive type.
type PrimitiveKind int

const (
	PrimitiveInt PrimitiveKind = iota
	PrimitiveFloat
	PrimitiveString
	PrimitiveBool
	PrimitiveBytes    // Binary data (Uint8Array)
	PrimitiveComplex  // Complex number, carried as a string
	PrimitiveRange    // Integer range, carried as number[]
	PrimitiveNone     // The unit/None type
	PrimitiveAny      // Unconstrained
	PrimitiveDate     // Calendar date
	PrimitiveDatetime // Timestamp
)

// String returns the string representation of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveInt:
		return "Int"
	case PrimitiveFloat:
		return "Float"
	case PrimitiveString:
		return "String"
	case PrimitiveBool:
		return "Bool"
	case PrimitiveBytes:
		return "Bytes"
	case PrimitiveComplex:
		return "Complex"
	case PrimitiveRange:
		return "Range"
	case PrimitiveNone:
		return "None"
	case PrimitiveAny:
		return "Any"
	case PrimitiveDate:
		return "Date"
	case PrimitiveDatetime:
		return "Datetime"
	default:
		return "Unknown"
	}
}

// primitiveNames maps the source spellings accepted by documents to kinds.
var primitiveNames = map[string]PrimitiveKind{
	"int":      PrimitiveInt,
	"float":    PrimitiveFloat,
	"str":      PrimitiveString,
	"bool":     PrimitiveBool,
	"bytes":    PrimitiveBytes,
	"complex":  PrimitiveComplex,
	"range":    PrimitiveRange,
	"None":     PrimitiveNone,
	"any":      PrimitiveAny,
	"Any":      PrimitiveAny,
	"date":     PrimitiveDate,
	"datetime": PrimitiveDatetime,
}

// LookupPrimitive returns the primitive kind for a source spelling such as
// "int" or "None".
func LookupPrimitive(name string) (PrimitiveKind, bool) {
	k, ok := primitiveNames[name]
	return k, ok
}

// SourceName returns the canonical source spelling of the kind.
func (k PrimitiveKind) SourceName() string {
	switch k {
	case PrimitiveInt:
		return "int"
	case PrimitiveFloat:
		return "float"
	case PrimitiveString:
		return "str"
	case PrimitiveBool:
		return "bool"
	case PrimitiveBytes:
		return "bytes"
	case PrimitiveComplex:
		return "complex"
	case PrimitiveRange:
		return "range"
	case PrimitiveNone:
		return "None"
	case PrimitiveDate:
		return "date"
	case PrimitiveDatetime:
		return "datetime"
	default:
		return "any"
	}
}

// PrimitiveDescriptor represents a built-in primitive type.
type PrimitiveDescriptor struct {
	exprBase
	PrimitiveKind PrimitiveKind
}

// Kind returns KindPrimitive.
func (d *PrimitiveDescriptor) Kind() DescriptorKind { return KindPrimitive }

// Convenience constructors for common primitives.

// Int returns a PrimitiveDescriptor for int.
func Int() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveInt} }

// Float returns a PrimitiveDescriptor for float.
func Float() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveFloat} }

// String returns a PrimitiveDescriptor for str.
func String() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveString} }

// Bool returns a PrimitiveDescriptor for bool.
func Bool() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveBool} }

// Bytes returns a PrimitiveDescriptor for bytes.
func Bytes() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveBytes} }

// None returns a PrimitiveDescriptor for the None type.
func None() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveNone} }

// Any returns a PrimitiveDescriptor for Any.
func Any() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveAny} }

// Date returns a PrimitiveDescriptor for date.
func Date() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveDate} }

// Datetime returns a PrimitiveDescriptor for datetime.
func Datetime() *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: PrimitiveDatetime} }

// Primitive returns a PrimitiveDescriptor of the given kind.
func Primitive(k PrimitiveKind) *PrimitiveDescriptor { return &PrimitiveDescriptor{PrimitiveKind: k} }
