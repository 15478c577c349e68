package typets

import "github.com/broady/typets/ir"

// Kind is the shape the resolver assigns to a descriptor.
type Kind int

const (
	KindUnknown Kind = iota
	KindForwardRef
	KindTypeVar
	KindAlias
	KindConst
	KindSequence
	KindPrimitive
	KindArray
	KindTuple
	KindRecord
	KindSet
	KindFrozenSet
	KindDeque
	KindCounter
	KindChainMap
	KindUnion
	KindOptional
	KindLiteral
	KindCallable
	KindInstance
	KindComposite
)

var kindNames = [...]string{
	KindUnknown:    "Unknown",
	KindForwardRef: "ForwardRef",
	KindTypeVar:    "TypeVar",
	KindAlias:      "Alias",
	KindConst:      "Const",
	KindSequence:   "Sequence",
	KindPrimitive:  "Primitive",
	KindArray:      "Array",
	KindTuple:      "Tuple",
	KindRecord:     "Record",
	KindSet:        "Set",
	KindFrozenSet:  "FrozenSet",
	KindDeque:      "Deque",
	KindCounter:    "Counter",
	KindChainMap:   "ChainMap",
	KindUnion:      "Union",
	KindOptional:   "Optional",
	KindLiteral:    "Literal",
	KindCallable:   "Callable",
	KindInstance:   "Instance",
	KindComposite:  "Composite",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// containerKinds maps container origins to their shape. Both bare and
// module-qualified spellings are accepted.
var containerKinds = map[string]Kind{
	"list":        KindArray,
	"List":        KindArray,
	"typing.List": KindArray,

	"tuple":        KindTuple,
	"Tuple":        KindTuple,
	"typing.Tuple": KindTuple,

	"dict":                           KindRecord,
	"Dict":                           KindRecord,
	"typing.Dict":                    KindRecord,
	"OrderedDict":                    KindRecord,
	"collections.OrderedDict":        KindRecord,
	"typing.OrderedDict":             KindRecord,
	"defaultdict":                    KindRecord,
	"collections.defaultdict":        KindRecord,
	"typing.DefaultDict":             KindRecord,
	"Mapping":                        KindRecord,
	"typing.Mapping":                 KindRecord,
	"collections.abc.Mapping":        KindRecord,
	"MutableMapping":                 KindRecord,
	"typing.MutableMapping":          KindRecord,
	"collections.abc.MutableMapping": KindRecord,

	"set":                        KindSet,
	"Set":                        KindSet,
	"typing.Set":                 KindSet,
	"MutableSet":                 KindSet,
	"typing.MutableSet":          KindSet,
	"collections.abc.MutableSet": KindSet,

	"frozenset":        KindFrozenSet,
	"FrozenSet":        KindFrozenSet,
	"typing.FrozenSet": KindFrozenSet,

	"deque":             KindDeque,
	"collections.deque": KindDeque,
	"Deque":             KindDeque,
	"typing.Deque":      KindDeque,

	"Counter":             KindCounter,
	"collections.Counter": KindCounter,
	"typing.Counter":      KindCounter,

	"ChainMap":             KindChainMap,
	"collections.ChainMap": KindChainMap,
	"typing.ChainMap":      KindChainMap,
}

// transparentQualifiers wrap a type without changing its shape.
var transparentQualifiers = map[string]bool{
	"Final":           true,
	"typing.Final":    true,
	"ClassVar":        true,
	"typing.ClassVar": true,
}

// IsTransparent reports whether td is a qualifier wrapper such as Final[T].
func IsTransparent(td ir.TypeDescriptor) bool {
	c, ok := td.(*ir.ContainerDescriptor)
	return ok && transparentQualifiers[c.Origin] && len(c.Args) == 1
}

// Unwrap strips one transparent qualifier from td. Nested qualifiers are
// left in place: Final[ClassVar[int]] unwraps to ClassVar[int].
func Unwrap(td ir.TypeDescriptor) ir.TypeDescriptor {
	if IsTransparent(td) {
		return td.(*ir.ContainerDescriptor).Args[0]
	}
	return td
}

// Classify returns the shape of td after stripping one transparent
// qualifier. It never fails: anything unrecognized is KindUnknown and left
// to plugins.
//
// Checks run in a fixed order: forward reference, type variable, alias,
// constant, raw sequence, primitive, container origin, special forms
// (union, optional, literal, callable), then generic instance and named
// composite.
func Classify(td ir.TypeDescriptor) Kind {
	if td == nil {
		return KindUnknown
	}
	return classify(Unwrap(td))
}

// classify is Classify without qualifier stripping.
func classify(td ir.TypeDescriptor) Kind {
	switch d := td.(type) {
	case *ir.ForwardRefDescriptor:
		return KindForwardRef
	case *ir.TypeVarDescriptor:
		return KindTypeVar
	case *ir.AliasDescriptor:
		return KindAlias
	case *ir.ConstDescriptor:
		return KindConst
	case *ir.SequenceDescriptor:
		return KindSequence
	case *ir.PrimitiveDescriptor:
		return KindPrimitive
	case *ir.ContainerDescriptor:
		if k, ok := containerKinds[d.Origin]; ok {
			return k
		}
		return KindUnknown
	case *ir.UnionDescriptor:
		return KindUnion
	case *ir.OptionalDescriptor:
		return KindOptional
	case *ir.LiteralDescriptor:
		return KindLiteral
	case *ir.CallableDescriptor:
		return KindCallable
	case *ir.InstanceDescriptor:
		if d.Origin == nil {
			return KindUnknown
		}
		return KindInstance
	case *ir.CompositeDescriptor:
		return KindComposite
	}
	return KindUnknown
}
