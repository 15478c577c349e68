package ir

// EnumDescriptor represents an enumeration of named constants.
type EnumDescriptor struct {
	// Name is the type identifier.
	Name Identifier

	// Members contains the enum values in declaration order.
	Members []EnumMember

	// Documentation for this type.
	Documentation Documentation
}

// Kind returns KindEnum.
func (d *EnumDescriptor) Kind() DescriptorKind { return KindEnum }

// TypeName returns the enum's name.
func (d *EnumDescriptor) TypeName() Identifier { return d.Name }

// Doc returns the enum's documentation.
func (d *EnumDescriptor) Doc() Documentation { return d.Documentation }

func (*EnumDescriptor) sealed() {}

// EnumMember represents a single enum value.
type EnumMember struct {
	// Name is the member name.
	Name string

	// Value is the constant: string, int64, float64 or bool.
	Value any

	// Documentation for this member.
	Documentation Documentation
}
