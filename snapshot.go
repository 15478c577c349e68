package typets

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Snapshot concatenates every stored definition: aliases, type variables,
// composites, then plugin buckets in first-use order. A non-empty namespace
// wraps the result in a capitalized "declare namespace" block.
func (t *Translator) Snapshot(namespace string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return wrapNamespace(namespace, t.store.Definitions())
}

func wrapNamespace(namespace string, defs []string) string {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return strings.Join(defs, "\n")
	}

	var b strings.Builder
	b.WriteString("declare namespace ")
	b.WriteString(capitalize(namespace))
	b.WriteString(" {\n")
	for _, d := range defs {
		b.WriteString("  ")
		b.WriteString(strings.ReplaceAll(d, "\n", "\n  "))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// capitalize upper-cases the first rune of s and lower-cases the rest, so
// "api v2" becomes "Api v2" and "API" becomes "Api".
func capitalize(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}
