package ir

import "strings"

// Document is a complete set of type definitions handed to the translator.
type Document struct {
	// Module is the default module for names declared in the document.
	Module string

	// Namespace, when set, wraps the emitted definitions in
	// `declare namespace <Namespace> { ... }`.
	Namespace string

	// Types contains the named definitions: composites, aliases, type
	// variables, enums, functions and opaque types.
	//
	// Generators MUST NOT rely on ordering; definitions may reference each
	// other in any order, including cyclically.
	Types []TypeDescriptor

	// Roots are the expressions to translate. When empty, every entry of
	// Types is a root.
	Roots []TypeDescriptor

	// Warnings contains non-fatal issues encountered while building.
	Warnings []Warning
}

// AddType adds a named type descriptor to the document.
func (d *Document) AddType(t TypeDescriptor) {
	d.Types = append(d.Types, t)
}

// AddWarning adds a warning to the document.
func (d *Document) AddWarning(w Warning) {
	d.Warnings = append(d.Warnings, w)
}

// FindType looks up a definition by name. Returns nil if not found.
func (d *Document) FindType(name string) TypeDescriptor {
	for _, t := range d.Types {
		if t.TypeName().Name == name {
			return t
		}
	}
	return nil
}

// Entries returns the descriptors to translate: Roots if any, otherwise Types.
func (d *Document) Entries() []TypeDescriptor {
	if len(d.Roots) > 0 {
		return d.Roots
	}
	return d.Types
}

// ValidationError represents a document validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the document for structural issues.
// Returns all validation errors found (not just the first).
func (d *Document) Validate() []error {
	var errors []*ValidationError

	typeNames := make(map[string]bool)
	for _, t := range d.Types {
		name := t.TypeName()
		if name.IsZero() || name.Name == "" {
			errors = append(errors, &ValidationError{
				Code:    "empty_name",
				Message: strings.ToLower(t.Kind().String()) + " definition has no name",
			})
			continue
		}
		if typeNames[name.Name] {
			errors = append(errors, &ValidationError{
				Code:    "duplicate_type",
				Message: "duplicate type name: " + name.String(),
			})
		}
		typeNames[name.Name] = true
	}

	for _, t := range d.Types {
		switch td := t.(type) {
		case *CompositeDescriptor:
			for _, base := range td.Bases {
				switch base.(type) {
				case *CompositeDescriptor, *InstanceDescriptor:
				default:
					errors = append(errors, &ValidationError{
						Code:    "invalid_base",
						Message: "composite " + td.Name.Name + " has a base that is not a composite type",
					})
				}
			}
			for _, f := range td.Fields {
				errors = append(errors, validateExpr(f.Type, typeNames, "field "+td.Name.Name+"."+f.Name)...)
			}
		case *AliasDescriptor:
			errors = append(errors, validateExpr(td.Underlying, typeNames, "alias "+td.Name.Name)...)
		case *TypeVarDescriptor:
			errors = append(errors, validateExpr(td.Bound, typeNames, "type variable "+td.Name.Name)...)
			for _, c := range td.Constraints {
				errors = append(errors, validateExpr(c, typeNames, "type variable "+td.Name.Name)...)
			}
		case *FunctionDescriptor:
			for _, p := range td.Params {
				errors = append(errors, validateExpr(p.Type, typeNames, "function "+td.Name.Name+" parameter "+p.Name)...)
			}
			errors = append(errors, validateExpr(td.Return, typeNames, "function "+td.Name.Name+" return")...)
		}
	}
	for _, r := range d.Roots {
		errors = append(errors, validateExpr(r, typeNames, "root")...)
	}

	if circularErrs := d.detectCircularInheritance(); len(circularErrs) > 0 {
		errors = append(errors, circularErrs...)
	}

	var result []error
	for _, e := range errors {
		result = append(result, e)
	}
	return result
}

// validateExpr walks an expression and reports forward references to names
// the document does not define and literal values of unsupported types.
// Named descriptors are leaves; their bodies are checked separately.
func validateExpr(td TypeDescriptor, typeNames map[string]bool, context string) []*ValidationError {
	if td == nil {
		return nil
	}

	var errors []*ValidationError

	switch d := td.(type) {
	case *ForwardRefDescriptor:
		if !typeNames[d.Target] {
			errors = append(errors, &ValidationError{
				Code:    "missing_type_reference",
				Message: context + " references unknown type: " + d.Target,
			})
		}
	case *ContainerDescriptor:
		for _, a := range d.Args {
			errors = append(errors, validateExpr(a, typeNames, context)...)
		}
	case *UnionDescriptor:
		for _, t := range d.Types {
			errors = append(errors, validateExpr(t, typeNames, context)...)
		}
	case *OptionalDescriptor:
		errors = append(errors, validateExpr(d.Element, typeNames, context)...)
	case *LiteralDescriptor:
		for _, v := range d.Values {
			if !isLiteralValue(v) {
				errors = append(errors, &ValidationError{
					Code:    "invalid_literal",
					Message: context + " has a literal value that is not a string, number or bool",
				})
			}
		}
	case *CallableDescriptor:
		for _, p := range d.Params {
			errors = append(errors, validateExpr(p, typeNames, context)...)
		}
		errors = append(errors, validateExpr(d.Return, typeNames, context)...)
	case *InstanceDescriptor:
		if d.Origin == nil {
			errors = append(errors, &ValidationError{
				Code:    "missing_type_reference",
				Message: context + " instantiates a nil generic",
			})
		}
		for _, a := range d.Args {
			errors = append(errors, validateExpr(a, typeNames, context)...)
		}
	case *SequenceDescriptor:
		for _, it := range d.Items {
			errors = append(errors, validateExpr(it, typeNames, context)...)
		}
	}

	return errors
}

func isLiteralValue(v any) bool {
	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// detectCircularInheritance checks for cycles in composite bases.
func (d *Document) detectCircularInheritance() []*ValidationError {
	var errors []*ValidationError

	composites := make(map[Identifier]*CompositeDescriptor)
	var order []Identifier
	for _, t := range d.Types {
		if cd, ok := t.(*CompositeDescriptor); ok {
			if _, seen := composites[cd.Name]; !seen {
				order = append(order, cd.Name)
			}
			composites[cd.Name] = cd
		}
	}

	// DFS cycle detection
	visited := make(map[Identifier]bool)
	inStack := make(map[Identifier]bool)

	var detectCycle func(name Identifier, path []string)
	detectCycle = func(name Identifier, path []string) {
		if inStack[name] {
			cyclePath := append(path, name.Name)
			errors = append(errors, &ValidationError{
				Code:    "circular_inheritance",
				Message: "circular inheritance detected: " + strings.Join(cyclePath, " -> "),
			})
			return
		}
		if visited[name] {
			return
		}

		visited[name] = true
		inStack[name] = true

		if cd, ok := composites[name]; ok {
			for _, base := range cd.Bases {
				if origin := baseOrigin(base); origin != nil {
					detectCycle(origin.Name, append(path, name.Name))
				}
			}
		}

		inStack[name] = false
	}

	for _, name := range order {
		detectCycle(name, nil)
	}

	return errors
}

// baseOrigin returns the composite a base entry refers to, or nil.
func baseOrigin(td TypeDescriptor) *CompositeDescriptor {
	switch b := td.(type) {
	case *CompositeDescriptor:
		return b
	case *InstanceDescriptor:
		return b.Origin
	}
	return nil
}
