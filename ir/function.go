package ir

// FunctionDescriptor represents a function or method signature.
type FunctionDescriptor struct {
	// Name is the function identifier. For methods the name is qualified by
	// the owning class in Module.
	Name Identifier

	// Params are the parameters in declaration order.
	Params []ParamDescriptor

	// Return is the return type. Nil or None renders as void.
	Return TypeDescriptor

	// Method marks a bound method; methods are stored apart from functions.
	Method bool

	// Documentation for this function.
	Documentation Documentation
}

// Kind returns KindFunction.
func (d *FunctionDescriptor) Kind() DescriptorKind { return KindFunction }

// TypeName returns the function's name.
func (d *FunctionDescriptor) TypeName() Identifier { return d.Name }

// Doc returns the function's documentation.
func (d *FunctionDescriptor) Doc() Documentation { return d.Documentation }

func (*FunctionDescriptor) sealed() {}

// ParamDescriptor is a single function parameter.
type ParamDescriptor struct {
	Name string
	Type TypeDescriptor

	// Optional marks a parameter with a default value.
	Optional bool
}

// OpaqueDescriptor carries a framework-specific payload the core does not
// understand. Only plugins can translate it.
type OpaqueDescriptor struct {
	// Name is the type identifier.
	Name Identifier

	// Framework tags the payload's origin for plugin matching.
	Framework string

	// Payload is the raw framework data.
	Payload map[string]any
}

// Kind returns KindOpaque.
func (d *OpaqueDescriptor) Kind() DescriptorKind { return KindOpaque }

// TypeName returns the opaque type's name.
func (d *OpaqueDescriptor) TypeName() Identifier { return d.Name }

// Doc returns the zero value.
func (d *OpaqueDescriptor) Doc() Documentation { return Documentation{} }

func (*OpaqueDescriptor) sealed() {}
