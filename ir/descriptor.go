package ir

// DescriptorKind identifies the category of a type descriptor.
type DescriptorKind int

const (
	// Named descriptors (carry an Identifier, appear in Document.Types)
	KindComposite DescriptorKind = iota // Record-like type with ordered fields
	KindAlias                           // NewType or type alias
	KindTypeVar                         // Generic type variable
	KindEnum                            // Enumeration of constants
	KindFunction                        // Function or method signature
	KindOpaque                          // Framework-specific payload, plugins only

	// Expression descriptors (appear nested in fields and arguments)
	KindPrimitive  // Built-in primitive type
	KindContainer  // Parameterized container (list[T], dict[K, V], ...)
	KindUnion      // Union of types (T1 | T2 | ...)
	KindOptional   // Optional wrapper (T | None)
	KindLiteral    // Literal value set
	KindCallable   // Callable[[P...], R]
	KindInstance   // Generic instantiation (Page[int])
	KindForwardRef // Forward reference by name
	KindConst      // Bare literal constant used as a type
	KindSequence   // Raw ordered sequence of descriptors
	KindEllipsis   // Variadic marker (...)
)

// String returns the string representation of the descriptor kind.
func (k DescriptorKind) String() string {
	switch k {
	case KindComposite:
		return "Composite"
	case KindAlias:
		return "Alias"
	case KindTypeVar:
		return "TypeVar"
	case KindEnum:
		return "Enum"
	case KindFunction:
		return "Function"
	case KindOpaque:
		return "Opaque"
	case KindPrimitive:
		return "Primitive"
	case KindContainer:
		return "Container"
	case KindUnion:
		return "Union"
	case KindOptional:
		return "Optional"
	case KindLiteral:
		return "Literal"
	case KindCallable:
		return "Callable"
	case KindInstance:
		return "Instance"
	case KindForwardRef:
		return "ForwardRef"
	case KindConst:
		return "Const"
	case KindSequence:
		return "Sequence"
	case KindEllipsis:
		return "Ellipsis"
	default:
		return "Unknown"
	}
}

// TypeDescriptor is the base interface for all type descriptors.
type TypeDescriptor interface {
	// Kind returns the descriptor kind for type switching.
	Kind() DescriptorKind

	// TypeName returns the nominal identity of this type.
	// Returns the zero value for expression descriptors.
	TypeName() Identifier

	// Doc returns associated documentation.
	// Returns the zero value for expression descriptors.
	Doc() Documentation

	// Ensure only types in this package can implement TypeDescriptor.
	sealed()
}

// exprBase provides zero-value implementations of TypeDescriptor methods
// for expression descriptors that don't have names or docs.
type exprBase struct{}

func (exprBase) TypeName() Identifier { return Identifier{} }
func (exprBase) Doc() Documentation   { return Documentation{} }
func (exprBase) sealed()              {}

// IsNamed reports whether td carries a nominal identity.
func IsNamed(td TypeDescriptor) bool {
	return td != nil && !td.TypeName().IsZero()
}

// SameEntity reports whether a and b denote the same source definition.
// Named descriptors compare by kind and identifier; expression descriptors
// compare by pointer identity.
func SameEntity(a, b TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	if IsNamed(a) || IsNamed(b) {
		return a.Kind() == b.Kind() && a.TypeName() == b.TypeName()
	}
	return a == b
}
