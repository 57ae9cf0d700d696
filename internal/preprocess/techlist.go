package preprocess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrNotList is returned when a string-encoded technology list is not a list literal.
var ErrNotList = errors.New("not a list literal")

// NormalizeTechList turns a technology list into a lowercase comma-joined string,
// e.g. ["Kotlin", "Firebase"] or "['Kotlin','Firebase']" become "kotlin,firebase".
// Non-string elements are dropped. A string that is not a list literal, or any other
// input type, yields "".
func NormalizeTechList(v any) string {
	var items []any
	switch t := v.(type) {
	case []string:
		return joinLower(t)
	case []any:
		items = t
	case string:
		parsed, err := ParseListLiteral(t)
		if err != nil {
			return ""
		}
		items = parsed
	default:
		return ""
	}
	techs := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			techs = append(techs, s)
		}
	}
	return joinLower(techs)
}

func joinLower(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return strings.Join(out, ",")
}

// ParseListLiteral parses a list literal such as ['kotlin', "firebase", 3, None].
// It accepts quoted strings, numbers, True/False/None and nested lists or tuples;
// nothing is evaluated. Strings decode to string, numbers to float64, True/False to bool,
// None to nil and nested sequences to []any.
func ParseListLiteral(s string) ([]any, error) {
	p := &listParser{src: []rune(s)}
	p.skipSpace()
	if !p.peekIs('[') {
		return nil, ErrNotList
	}
	v, err := p.parseSequence('[', ']')
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	return v, nil
}

type listParser struct {
	src []rune
	pos int
}

func (p *listParser) eof() bool { return p.pos >= len(p.src) }

func (p *listParser) peekIs(r rune) bool { return !p.eof() && p.src[p.pos] == r }

func (p *listParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *listParser) parseSequence(left, right rune) ([]any, error) {
	p.pos++
	items := make([]any, 0)
	for {
		p.skipSpace()
		if p.eof() {
			return nil, fmt.Errorf("unterminated %q", left)
		}
		if p.peekIs(right) {
			p.pos++
			return items, nil
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipSpace()
		switch {
		case p.peekIs(','):
			p.pos++
		case p.peekIs(right):
			p.pos++
			return items, nil
		case p.eof():
			return nil, fmt.Errorf("unterminated %q", left)
		default:
			return nil, fmt.Errorf("expected ',' or %q at offset %d", right, p.pos)
		}
	}
}

func (p *listParser) parseItem() (any, error) {
	r := p.src[p.pos]
	switch {
	case r == '\'' || r == '"':
		return p.parseString(r)
	case r == '[':
		return p.parseSequence('[', ']')
	case r == '(':
		return p.parseSequence('(', ')')
	case r == '-' || r == '+' || r == '.' || unicode.IsDigit(r):
		return p.parseNumber()
	case unicode.IsLetter(r):
		return p.parseName()
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d", r, p.pos)
	}
}

func (p *listParser) parseString(quote rune) (string, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for !p.eof() {
		r := p.src[p.pos]
		p.pos++
		switch r {
		case quote:
			return b.String(), nil
		case '\n':
			return "", fmt.Errorf("newline in string starting at offset %d", start)
		case '\\':
			if p.eof() {
				return "", fmt.Errorf("unterminated string starting at offset %d", start)
			}
			esc := p.src[p.pos]
			p.pos++
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\', '\'', '"':
				b.WriteRune(esc)
			default:
				b.WriteRune('\\')
				b.WriteRune(esc)
			}
		default:
			b.WriteRune(r)
		}
	}
	return "", fmt.Errorf("unterminated string starting at offset %d", start)
}

func (p *listParser) parseNumber() (float64, error) {
	start := p.pos
	for !p.eof() {
		r := p.src[p.pos]
		if unicode.IsDigit(r) || strings.ContainsRune("+-.eE_", r) {
			p.pos++
			continue
		}
		break
	}
	lit := strings.ReplaceAll(string(p.src[start:p.pos]), "_", "")
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q at offset %d", lit, start)
	}
	return f, nil
}

func (p *listParser) parseName() (any, error) {
	start := p.pos
	for !p.eof() && (unicode.IsLetter(p.src[p.pos]) || unicode.IsDigit(p.src[p.pos]) || p.src[p.pos] == '_') {
		p.pos++
	}
	switch name := string(p.src[start:p.pos]); name {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported name %q at offset %d", name, start)
	}
}
