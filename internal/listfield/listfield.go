// Package listfield converts the serialized list cells of the vocabulary bank
// (synonyms, confusables, collocations) into string slices and back.
//
// Cells are hand-edited, so Parse never fails: anything it cannot read as a
// list literal is kept as a single element.
package listfield

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Parse returns the elements of a list cell.
func Parse(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string:
		return lo.Filter(v, func(s string, _ int) bool { return strings.TrimSpace(s) != "" })
	case []any:
		out := make([]string, 0, len(v))
		for _, el := range v {
			if el == nil {
				continue
			}
			s := fmt.Sprint(el)
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return ParseString(v)
	case fmt.Stringer:
		return ParseString(v.String())
	default:
		return ParseString(fmt.Sprint(v))
	}
}

// ParseString reads a literal list such as ['a', "b"] or ("a", 1).
// A lone quoted string or number becomes a one-element list and any other
// text is returned whole.
func ParseString(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return []string{}
	}

	p := &parser{src: trimmed}
	val, err := p.parseValue()
	if err == nil {
		p.skipSpace()
		if p.pos != len(p.src) {
			err = p.errorf("trailing characters")
		}
	}
	if err != nil {
		return []string{trimmed}
	}

	if val.list != nil {
		out := make([]string, 0, len(val.list))
		for _, el := range val.list {
			if el.isNone {
				continue
			}
			if str := el.String(); str != "" {
				out = append(out, str)
			}
		}
		return out
	}
	if val.isNone {
		return []string{trimmed}
	}
	return []string{val.String()}
}

// Format serializes a list so that ParseString returns the same elements.
// An empty list is an empty cell.
func Format(items []string) string {
	items = lo.Filter(items, func(s string, _ int) bool { return s != "" })
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(item))
	}
	b.WriteByte(']')
	return b.String()
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
