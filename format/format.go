// Package format re-indents generated TypeScript.
//
// The formatter is shallow: it trusts the line structure of
// its input and only rewrites leading whitespace, blank lines and line
// endings. Bracket depth is tracked outside string literals and comments.
package format

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Formatter rewrites generated text.
type Formatter interface {
	Format(src string) string
}

// Options controls indentation and line endings.
type Options struct {
	IndentStyle     string `toml:"indent_style" validate:"omitempty,oneof=space tab"`
	IndentSize      int    `toml:"indent_size" validate:"gte=0,lte=16"`
	LineEnding      string `toml:"line_ending" validate:"omitempty,oneof=lf crlf"`
	TrailingNewline bool   `toml:"trailing_newline"`
}

// Indenter is the default Formatter.
type Indenter struct {
	indent  string
	newline string
	trail   bool
}

// New returns an Indenter for opts. Zero values select two-space
// indentation with LF line endings.
func New(opts Options) (*Indenter, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, err
	}

	ind := &Indenter{indent: "  ", newline: "\n", trail: opts.TrailingNewline}
	switch {
	case opts.IndentStyle == "tab":
		ind.indent = "\t"
	case opts.IndentSize > 0:
		ind.indent = strings.Repeat(" ", opts.IndentSize)
	}
	if opts.LineEnding == "crlf" {
		ind.newline = "\r\n"
	}
	return ind, nil
}

// Default returns a two-space Indenter with a trailing newline.
func Default() *Indenter {
	return &Indenter{indent: "  ", newline: "\n", trail: true}
}

// Format re-indents src by bracket depth. Consecutive blank lines collapse
// into one and trailing whitespace is removed.
func (f *Indenter) Format(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")

	var (
		out   []string
		sc    scanner
		depth int
		blank bool
	)
	for _, raw := range strings.Split(src, "\n") {
		if sc.inBlockComment() {
			line := strings.TrimRight(raw, " \t")
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "*") {
				line = strings.Repeat(f.indent, depth) + " " + trimmed
			}
			out = append(out, line)
			sc.scan(raw)
			blank = false
			continue
		}
		if sc.inTemplate() {
			out = append(out, strings.TrimRight(raw, " \t"))
			sc.scan(raw)
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false

		level := depth - leadingClosers(line)
		if level < 0 {
			level = 0
		}
		out = append(out, strings.Repeat(f.indent, level)+line)

		depth += sc.scan(line)
		if depth < 0 {
			depth = 0
		}
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	result := strings.Join(out, f.newline)
	if f.trail && result != "" {
		result += f.newline
	}
	return result
}

// leadingClosers counts the closing brackets that start line.
func leadingClosers(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case '}', ')', ']':
			n++
		case ' ', '\t':
		default:
			return n
		}
	}
	return n
}

// scanner tracks lexical state across lines.
type scanner struct {
	quote        rune
	blockComment bool
}

func (s *scanner) inBlockComment() bool { return s.blockComment }
func (s *scanner) inTemplate() bool     { return s.quote == '`' }

// scan consumes one line and returns its net bracket depth change.
func (s *scanner) scan(line string) int {
	delta := 0
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch {
		case s.blockComment:
			if r == '*' && next == '/' {
				s.blockComment = false
				i++
			}
		case s.quote != 0:
			if r == '\\' {
				i++
			} else if r == s.quote {
				s.quote = 0
			}
		case r == '/' && next == '/':
			return delta
		case r == '/' && next == '*':
			s.blockComment = true
			i++
		case r == '\'' || r == '"' || r == '`':
			s.quote = r
		case r == '{' || r == '(' || r == '[':
			delta++
		case r == '}' || r == ')' || r == ']':
			delta--
		}
	}
	// Single and double quoted strings do not span lines.
	if s.quote == '\'' || s.quote == '"' {
		s.quote = 0
	}
	return delta
}
