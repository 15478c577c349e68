// Package ir defines the descriptor graph the translator consumes.
// Descriptors are host-neutral representations of source types (records,
// aliases, generic variables, containers, unions, enumerations, callables)
// built by a front end and handed to the resolution engine.
package ir

// Identifier names a nominal entity together with the module that defines it.
// Two descriptors with equal identifiers denote the same source definition.
type Identifier struct {
	// Name is the type name as written in the source, e.g. "User".
	Name string

	// Module is the defining module or package path, e.g. "app.models".
	// Empty for builtins and for documents that do not qualify names.
	Module string
}

// IsZero returns true if the identifier is empty.
func (id Identifier) IsZero() bool {
	return id.Name == "" && id.Module == ""
}

// String returns the qualified form "module.Name", or just the name when no
// module is set.
func (id Identifier) String() string {
	if id.Module == "" {
		return id.Name
	}
	return id.Module + "." + id.Name
}

// Ident returns an Identifier for a name in the given module.
func Ident(name, module string) Identifier {
	return Identifier{Name: name, Module: module}
}

// Documentation holds documentation comments attached to a definition.
type Documentation struct {
	// Summary is the first sentence or line.
	Summary string

	// Body is the complete documentation text, including the summary.
	Body string

	// Deprecated is non-nil if the symbol is marked deprecated.
	// The string value is the deprecation message (may be empty).
	Deprecated *string
}

// IsZero returns true if the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == "" && d.Deprecated == nil
}

// Doc builds Documentation from free text, using the first line as summary.
func Doc(body string) Documentation {
	summary := body
	for i, r := range body {
		if r == '\n' {
			summary = body[:i]
			break
		}
	}
	return Documentation{Summary: summary, Body: body}
}

// Warning represents a non-fatal issue found while building or translating
// descriptors.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string `json:"type_name,omitempty"`
}
