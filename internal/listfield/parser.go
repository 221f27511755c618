package listfield

import (
	"fmt"
	"strings"
)

// value is a parsed literal: a scalar (quoted or bare token) or a sequence.
type value struct {
	text   string
	list   []value
	isNone bool
}

func (v value) String() string {
	if v.list == nil {
		return v.text
	}
	items := make([]string, 0, len(v.list))
	for _, el := range v.list {
		if el.list != nil {
			items = append(items, el.String())
			continue
		}
		items = append(items, quote(el.text))
	}
	return "[" + strings.Join(items, ", ") + "]"
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("listfield: at %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseValue() (value, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return value{}, p.errorf("unexpected end of input")
	}
	switch c := p.src[p.pos]; c {
	case '[':
		return p.parseSequence('[', ']')
	case '(':
		return p.parseSequence('(', ')')
	case '\'', '"':
		return p.parseQuoted(c)
	default:
		return p.parseToken()
	}
}

func (p *parser) parseSequence(open, close byte) (value, error) {
	p.pos++ // open
	items := make([]value, 0)
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return value{}, p.errorf("unterminated %c", open)
		}
		if p.src[p.pos] == close {
			p.pos++
			return value{list: items}, nil
		}

		el, err := p.parseValue()
		if err != nil {
			return value{}, err
		}
		items = append(items, el)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return value{}, p.errorf("unterminated %c", open)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case close:
		default:
			return value{}, p.errorf("expected ',' or %q", close)
		}
	}
}

func (p *parser) parseQuoted(q byte) (value, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return value{text: b.String()}, nil
		case c == '\\' && p.pos+1 < len(p.src):
			next := p.src[p.pos+1]
			switch next {
			case '\\', '\'', '"':
				b.WriteByte(next)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			p.pos += 2
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return value{}, p.errorf("unterminated string")
}

// parseToken accepts numbers and the True/False/None keywords.
func (p *parser) parseToken() (value, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ',' || c == ']' || c == ')' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		p.pos++
	}
	tok := p.src[start:p.pos]
	switch tok {
	case "True", "False":
		return value{text: tok}, nil
	case "None":
		return value{text: tok, isNone: true}, nil
	}
	if isNumber(tok) {
		return value{text: tok}, nil
	}
	p.pos = start
	return value{}, p.errorf("unexpected token %q", tok)
}

func isNumber(tok string) bool {
	if tok == "" {
		return false
	}
	i := 0
	if tok[0] == '-' || tok[0] == '+' {
		i++
	}
	digits, dots := 0, 0
	for ; i < len(tok); i++ {
		switch c := tok[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		case c == '_' && digits > 0:
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
