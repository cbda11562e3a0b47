// Package render assembles policy documents: strict ${name} substitution,
// the section catalogue used to compose templates, and the Markdown blocks
// (control sections, crosswalk rows, evidence rows) fed into them.
package render

import (
	"fmt"
	"sort"
	"strings"
)

// Bundle maps placeholder names to pre-formatted values.
type Bundle map[string]string

// MissingPlaceholderError lists every placeholder without a binding.
type MissingPlaceholderError struct {
	Names []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("template placeholders without value: %s", strings.Join(e.Names, ", "))
}

func (e *MissingPlaceholderError) Code() string { return "render.missing_placeholder" }

type token struct {
	literal string
	name    string
}

// scan splits a template into literal text and ${name} references. "$$" is a
// literal dollar; any other "$" that does not open a valid reference is kept
// as is.
func scan(tpl string) []token {
	var out []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, token{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		if c != '$' || i+1 >= len(tpl) {
			lit.WriteByte(c)
			continue
		}
		switch tpl[i+1] {
		case '$':
			lit.WriteByte('$')
			i++
		case '{':
			end := strings.IndexByte(tpl[i+2:], '}')
			if end < 0 || !validName(tpl[i+2:i+2+end]) {
				lit.WriteByte(c)
				continue
			}
			flush()
			out = append(out, token{name: tpl[i+2 : i+2+end]})
			i += 2 + end
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return out
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Placeholders returns the distinct placeholder names of a template, sorted.
func Placeholders(tpl string) []string {
	return names(scan(tpl))
}

func names(tokens []token) []string {
	set := map[string]struct{}{}
	for _, t := range tokens {
		if t.name != "" {
			set[t.name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Render substitutes every placeholder. Values are inserted verbatim and are
// not scanned again. A placeholder missing from the bundle fails the whole
// render before any output is produced.
func Render(tpl string, bundle Bundle) (string, error) {
	tokens := scan(tpl)
	var missing []string
	for _, name := range names(tokens) {
		if _, ok := bundle[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingPlaceholderError{Names: missing}
	}
	var b strings.Builder
	b.Grow(len(tpl))
	for _, t := range tokens {
		if t.name != "" {
			b.WriteString(bundle[t.name])
		} else {
			b.WriteString(t.literal)
		}
	}
	return b.String(), nil
}

// Escape doubles dollar signs so text survives a later Render unchanged.
func Escape(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
