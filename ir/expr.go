package ir

// Canonical container origins. Front ends may also use the qualified
// spellings ("typing.List", "typing.Dict", ...) accepted by the classifier.
const (
	OriginList      = "list"
	OriginTuple     = "tuple"
	OriginDict      = "dict"
	OriginSet       = "set"
	OriginFrozenSet = "frozenset"
	OriginDeque     = "collections.deque"
	OriginCounter   = "collections.Counter"
	OriginChainMap  = "collections.ChainMap"
	OriginFinal     = "typing.Final"
	OriginClassVar  = "typing.ClassVar"
)

// ContainerDescriptor represents a parameterized container such as list[T],
// dict[K, V] or tuple[T, ...].
type ContainerDescriptor struct {
	exprBase

	// Origin is the source spelling of the container, e.g. "list" or
	// "typing.Dict".
	Origin string

	// Args are the type arguments in declaration order. May be empty for a
	// bare container.
	Args []TypeDescriptor
}

// Kind returns KindContainer.
func (d *ContainerDescriptor) Kind() DescriptorKind { return KindContainer }

// Container returns a ContainerDescriptor for an arbitrary origin.
func Container(origin string, args ...TypeDescriptor) *ContainerDescriptor {
	return &ContainerDescriptor{Origin: origin, Args: args}
}

// List returns a list[...] container.
func List(args ...TypeDescriptor) *ContainerDescriptor { return Container(OriginList, args...) }

// Tuple returns a tuple[...] container. Use Ellipsis() as the second
// argument for a homogeneous variable-length tuple.
func Tuple(args ...TypeDescriptor) *ContainerDescriptor { return Container(OriginTuple, args...) }

// Dict returns a dict[...] container.
func Dict(args ...TypeDescriptor) *ContainerDescriptor { return Container(OriginDict, args...) }

// Set returns a set[...] container.
func Set(args ...TypeDescriptor) *ContainerDescriptor { return Container(OriginSet, args...) }

// FrozenSet returns a frozenset[...] container.
func FrozenSet(args ...TypeDescriptor) *ContainerDescriptor {
	return Container(OriginFrozenSet, args...)
}

// Final wraps inner in the typing.Final qualifier.
func Final(inner TypeDescriptor) *ContainerDescriptor { return Container(OriginFinal, inner) }

// ClassVar wraps inner in the typing.ClassVar qualifier.
func ClassVar(inner TypeDescriptor) *ContainerDescriptor { return Container(OriginClassVar, inner) }

// UnionDescriptor represents a union of types (T1 | T2 | ...).
type UnionDescriptor struct {
	exprBase

	// Types contains the union members in declaration order.
	Types []TypeDescriptor
}

// Kind returns KindUnion.
func (d *UnionDescriptor) Kind() DescriptorKind { return KindUnion }

// Union returns a UnionDescriptor for the given types.
func Union(types ...TypeDescriptor) *UnionDescriptor {
	return &UnionDescriptor{Types: types}
}

// OptionalDescriptor represents Optional[T], i.e. T or None.
type OptionalDescriptor struct {
	exprBase
	Element TypeDescriptor
}

// Kind returns KindOptional.
func (d *OptionalDescriptor) Kind() DescriptorKind { return KindOptional }

// Optional returns an OptionalDescriptor wrapping element.
func Optional(element TypeDescriptor) *OptionalDescriptor {
	return &OptionalDescriptor{Element: element}
}

// LiteralDescriptor represents Literal[v1, v2, ...].
//
// Values hold string, bool, int64 or float64. Other integer and float widths
// are accepted and rendered numerically.
type LiteralDescriptor struct {
	exprBase
	Values []any
}

// Kind returns KindLiteral.
func (d *LiteralDescriptor) Kind() DescriptorKind { return KindLiteral }

// Literal returns a LiteralDescriptor for the given values.
func Literal(values ...any) *LiteralDescriptor {
	return &LiteralDescriptor{Values: values}
}

// CallableDescriptor represents Callable[[P1, P2], R].
type CallableDescriptor struct {
	exprBase

	// Params are the positional parameter types. Ignored when Variadic is set.
	Params []TypeDescriptor

	// Variadic marks Callable[..., R].
	Variadic bool

	// Return is the return type. A nil Return or the None primitive renders
	// as void.
	Return TypeDescriptor
}

// Kind returns KindCallable.
func (d *CallableDescriptor) Kind() DescriptorKind { return KindCallable }

// Callable returns a CallableDescriptor with explicit parameters.
func Callable(params []TypeDescriptor, ret TypeDescriptor) *CallableDescriptor {
	return &CallableDescriptor{Params: params, Return: ret}
}

// VariadicCallable returns Callable[..., ret].
func VariadicCallable(ret TypeDescriptor) *CallableDescriptor {
	return &CallableDescriptor{Variadic: true, Return: ret}
}

// InstanceDescriptor represents a generic composite applied to arguments,
// e.g. Page[int].
type InstanceDescriptor struct {
	exprBase
	Origin *CompositeDescriptor
	Args   []TypeDescriptor
}

// Kind returns KindInstance.
func (d *InstanceDescriptor) Kind() DescriptorKind { return KindInstance }

// Instantiate returns an InstanceDescriptor for origin[args...].
func Instantiate(origin *CompositeDescriptor, args ...TypeDescriptor) *InstanceDescriptor {
	return &InstanceDescriptor{Origin: origin, Args: args}
}

// ForwardRefDescriptor represents a reference by name to a type that is not
// yet defined (a string annotation).
type ForwardRefDescriptor struct {
	exprBase
	Target string
}

// Kind returns KindForwardRef.
func (d *ForwardRefDescriptor) Kind() DescriptorKind { return KindForwardRef }

// ForwardRef returns a ForwardRefDescriptor for the named target.
func ForwardRef(target string) *ForwardRefDescriptor {
	return &ForwardRefDescriptor{Target: target}
}

// ConstDescriptor is a bare constant used in type position.
type ConstDescriptor struct {
	exprBase
	Value any
}

// Kind returns KindConst.
func (d *ConstDescriptor) Kind() DescriptorKind { return KindConst }

// Const returns a ConstDescriptor for v.
func Const(v any) *ConstDescriptor { return &ConstDescriptor{Value: v} }

// SequenceDescriptor is a raw ordered sequence of descriptors, as produced
// by a bare list or tuple in type position.
type SequenceDescriptor struct {
	exprBase
	Items []TypeDescriptor
}

// Kind returns KindSequence.
func (d *SequenceDescriptor) Kind() DescriptorKind { return KindSequence }

// Sequence returns a SequenceDescriptor for items.
func Sequence(items ...TypeDescriptor) *SequenceDescriptor {
	return &SequenceDescriptor{Items: items}
}

// EllipsisDescriptor is the variadic marker. There is a single instance,
// returned by Ellipsis.
type EllipsisDescriptor struct {
	exprBase
}

// Kind returns KindEllipsis.
func (d *EllipsisDescriptor) Kind() DescriptorKind { return KindEllipsis }

var ellipsis = &EllipsisDescriptor{}

// Ellipsis returns the variadic marker.
func Ellipsis() *EllipsisDescriptor { return ellipsis }

// IsEllipsis reports whether td is the variadic marker.
func IsEllipsis(td TypeDescriptor) bool {
	_, ok := td.(*EllipsisDescriptor)
	return ok
}
