package ir

// CompositeDescriptor represents a nominal record type (a class, dataclass,
// TypedDict or framework model) with ordered fields.
type CompositeDescriptor struct {
	// Name is the type identifier.
	Name Identifier

	// TypeParams lists the declared generic parameters, in order.
	TypeParams []*TypeVarDescriptor

	// Bases are the supertypes. Each entry is another CompositeDescriptor or
	// an InstanceDescriptor of one.
	Bases []TypeDescriptor

	// Fields contains the declared fields in declaration order. Inherited
	// fields are not repeated here.
	Fields []FieldDescriptor

	// Framework names the modelling framework that produced this type
	// ("pydantic", "sqlmodel", "dataclass", ...). Empty for plain classes.
	// Framework plugins match on this value.
	Framework string

	// Documentation for this type.
	Documentation Documentation
}

// Kind returns KindComposite.
func (d *CompositeDescriptor) Kind() DescriptorKind { return KindComposite }

// TypeName returns the composite's name.
func (d *CompositeDescriptor) TypeName() Identifier { return d.Name }

// Doc returns the composite's documentation.
func (d *CompositeDescriptor) Doc() Documentation { return d.Documentation }

func (*CompositeDescriptor) sealed() {}

// Field looks up a declared field by name. Returns nil if not found.
func (d *CompositeDescriptor) Field(name string) *FieldDescriptor {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// FieldDescriptor represents a single field within a composite.
type FieldDescriptor struct {
	// Name is the serialized property name.
	Name string

	// Type is the field's type descriptor.
	Type TypeDescriptor

	// Optional indicates the field may be absent (not required). Emitted as
	// `name?:`. A field whose Type is an OptionalDescriptor is emitted the
	// same way regardless of this flag.
	Optional bool

	// Exclude indicates the field is excluded from serialization. The
	// built-in interface renderer omits it; framework plugins decide per
	// their options.
	Exclude bool

	// Documentation for this field.
	Documentation Documentation
}

// Composite returns a CompositeDescriptor for a module-less name.
func Composite(name string, fields ...FieldDescriptor) *CompositeDescriptor {
	return &CompositeDescriptor{Name: Identifier{Name: name}, Fields: fields}
}

// Field returns a required FieldDescriptor.
func Field(name string, td TypeDescriptor) FieldDescriptor {
	return FieldDescriptor{Name: name, Type: td}
}
