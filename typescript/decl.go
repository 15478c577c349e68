package typescript

import (
	"bytes"
	"strings"

	"github.com/broady/typets/ir"
)

// ObjectDecl describes an object-shaped declaration: an interface, or a type
// alias to an object literal.
type ObjectDecl struct {
	// Keyword is "interface" (default) or "type".
	Keyword string

	Name string

	// TypeParams are rendered parameter definitions, e.g. "T extends number".
	TypeParams []string

	// Extends are rendered supertype references. Interfaces list them in an
	// extends clause; type aliases intersect them with the literal.
	Extends []string

	Members []Member

	// Doc is written as a JSDoc block when EmitComments is set.
	Doc          ir.Documentation
	EmitComments bool
}

// Member is a single property of an object declaration.
type Member struct {
	Name     string
	Type     string
	Optional bool
	Doc      ir.Documentation
}

// TypeParams renders a type parameter list, or "" when defs is empty.
func TypeParams(defs []string) string {
	if len(defs) == 0 {
		return ""
	}
	return "<" + strings.Join(defs, ", ") + ">"
}

// WriteObject writes an interface or object type alias to buf.
func WriteObject(buf *bytes.Buffer, d ObjectDecl) {
	if d.EmitComments {
		WriteJSDoc(buf, "", d.Doc)
	}

	useInterface := d.Keyword != "type"
	if useInterface {
		buf.WriteString("interface ")
		buf.WriteString(d.Name)
		buf.WriteString(TypeParams(d.TypeParams))
		buf.WriteString(" ")
		if len(d.Extends) > 0 {
			buf.WriteString("extends ")
			buf.WriteString(strings.Join(d.Extends, ", "))
			buf.WriteString(" ")
		}
	} else {
		buf.WriteString("type ")
		buf.WriteString(d.Name)
		buf.WriteString(TypeParams(d.TypeParams))
		buf.WriteString(" = ")
		for _, ext := range d.Extends {
			buf.WriteString(ext)
			buf.WriteString(" & ")
		}
	}
	buf.WriteString("{\n")

	for _, m := range d.Members {
		if d.EmitComments {
			WriteJSDoc(buf, "  ", m.Doc)
		}
		buf.WriteString("  ")
		buf.WriteString(PropertyName(m.Name))
		if m.Optional {
			buf.WriteString("?")
		}
		buf.WriteString(": ")
		buf.WriteString(m.Type)
		buf.WriteString(";\n")
	}

	if useInterface {
		buf.WriteString("}")
	} else {
		buf.WriteString("};")
	}
}

// WriteAlias writes `type Name = expr;` to buf.
func WriteAlias(buf *bytes.Buffer, name string, typeParams []string, expr string) {
	buf.WriteString("type ")
	buf.WriteString(name)
	buf.WriteString(TypeParams(typeParams))
	buf.WriteString(" = ")
	buf.WriteString(expr)
	buf.WriteString(";")
}

// EnumStyle controls enum generation.
type EnumStyle string

const (
	EnumStyleEnum      EnumStyle = "enum"
	EnumStyleConstEnum EnumStyle = "const_enum"
	EnumStyleUnion     EnumStyle = "union"
	EnumStyleObject    EnumStyle = "object"
)

// WriteEnum writes an enumeration in the given style. Unknown styles fall
// back to EnumStyleEnum.
func WriteEnum(buf *bytes.Buffer, name string, members []ir.EnumMember, style EnumStyle, emitComments bool) {
	switch style {
	case EnumStyleUnion:
		buf.WriteString("type ")
		buf.WriteString(name)
		buf.WriteString(" = ")
		if len(members) == 0 {
			buf.WriteString("never")
		}
		for i, m := range members {
			if i > 0 {
				buf.WriteString(" | ")
			}
			buf.WriteString(FormatLiteral(m.Value))
		}
		buf.WriteString(";")
	case EnumStyleObject:
		buf.WriteString("const ")
		buf.WriteString(name)
		buf.WriteString(" = {\n")
		for _, m := range members {
			buf.WriteString("  ")
			buf.WriteString(PropertyName(m.Name))
			buf.WriteString(": ")
			buf.WriteString(FormatLiteral(m.Value))
			buf.WriteString(",\n")
		}
		buf.WriteString("} as const;")
	default:
		if style == EnumStyleConstEnum {
			buf.WriteString("const ")
		}
		buf.WriteString("enum ")
		buf.WriteString(name)
		buf.WriteString(" {\n")
		for _, m := range members {
			if emitComments {
				WriteJSDoc(buf, "  ", m.Documentation)
			}
			buf.WriteString("  ")
			buf.WriteString(EscapeReservedWord(m.Name))
			buf.WriteString(" = ")
			buf.WriteString(FormatLiteral(m.Value))
			buf.WriteString(",\n")
		}
		buf.WriteString("}")
	}
}

// Param is a rendered function parameter.
type Param struct {
	Name     string
	Type     string
	Optional bool
}

// WriteFunction writes `function name(a: T, b?: U): R;` to buf.
func WriteFunction(buf *bytes.Buffer, name string, params []Param, ret string) {
	buf.WriteString("function ")
	buf.WriteString(name)
	buf.WriteString("(")
	for i, p := range params {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(EscapeReservedWord(p.Name))
		if p.Optional {
			buf.WriteString("?")
		}
		buf.WriteString(": ")
		buf.WriteString(p.Type)
	}
	buf.WriteString("): ")
	buf.WriteString(ret)
	buf.WriteString(";")
}

// WriteJSDoc writes a JSDoc comment for doc at the given indent. It writes
// nothing for empty documentation.
func WriteJSDoc(buf *bytes.Buffer, indent string, doc ir.Documentation) {
	if doc.IsZero() {
		return
	}

	lines := strings.Split(strings.TrimRight(doc.Body, "\n"), "\n")
	if len(lines) == 1 && doc.Deprecated == nil {
		buf.WriteString(indent)
		buf.WriteString("/** ")
		buf.WriteString(strings.TrimSpace(lines[0]))
		buf.WriteString(" */\n")
		return
	}

	buf.WriteString(indent)
	buf.WriteString("/**\n")
	for _, line := range lines {
		buf.WriteString(indent)
		buf.WriteString(" * ")
		buf.WriteString(strings.TrimSpace(line))
		buf.WriteString("\n")
	}

	if doc.Deprecated != nil {
		buf.WriteString(indent)
		buf.WriteString(" * @deprecated")
		if *doc.Deprecated != "" {
			buf.WriteString(" ")
			buf.WriteString(*doc.Deprecated)
		}
		buf.WriteString("\n")
	}

	buf.WriteString(indent)
	buf.WriteString(" */\n")
}
