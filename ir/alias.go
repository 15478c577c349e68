package ir

// AliasDescriptor represents a NewType or a named type alias.
//
// The translator emits aliases as `type Name = <underlying>;` and refers to
// them by name everywhere else.
type AliasDescriptor struct {
	// Name is the type identifier.
	Name Identifier

	// Underlying is the aliased type expression.
	Underlying TypeDescriptor

	// Documentation for this type.
	Documentation Documentation
}

// Kind returns KindAlias.
func (d *AliasDescriptor) Kind() DescriptorKind { return KindAlias }

// TypeName returns the alias name.
func (d *AliasDescriptor) TypeName() Identifier { return d.Name }

// Doc returns the alias documentation.
func (d *AliasDescriptor) Doc() Documentation { return d.Documentation }

func (*AliasDescriptor) sealed() {}

// Alias returns an AliasDescriptor for a module-less name.
func Alias(name string, underlying TypeDescriptor) *AliasDescriptor {
	return &AliasDescriptor{Name: Identifier{Name: name}, Underlying: underlying}
}

// TypeVarDescriptor represents a generic type variable.
//
// A variable may carry an upper Bound or a list of Constraints; when both are
// set the bound wins.
type TypeVarDescriptor struct {
	// Name is the variable name, e.g. "T".
	Name Identifier

	// Bound is the upper bound (TypeVar("T", bound=X)). May be nil.
	Bound TypeDescriptor

	// Constraints lists the allowed types (TypeVar("T", A, B)). May be empty.
	Constraints []TypeDescriptor
}

// Kind returns KindTypeVar.
func (d *TypeVarDescriptor) Kind() DescriptorKind { return KindTypeVar }

// TypeName returns the variable name.
func (d *TypeVarDescriptor) TypeName() Identifier { return d.Name }

// Doc returns the zero value; type variables carry no documentation.
func (d *TypeVarDescriptor) Doc() Documentation { return Documentation{} }

func (*TypeVarDescriptor) sealed() {}

// TypeVar returns a TypeVarDescriptor with an optional bound.
func TypeVar(name string, bound TypeDescriptor) *TypeVarDescriptor {
	return &TypeVarDescriptor{Name: Identifier{Name: name}, Bound: bound}
}

// ConstrainedTypeVar returns a TypeVarDescriptor restricted to constraints.
func ConstrainedTypeVar(name string, constraints ...TypeDescriptor) *TypeVarDescriptor {
	return &TypeVarDescriptor{Name: Identifier{Name: name}, Constraints: constraints}
}
