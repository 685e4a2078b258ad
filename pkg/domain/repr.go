package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRepr is returned by ParseRepr for text that Repr cannot have produced.
var ErrMalformedRepr = errors.New("malformed tree repr")

const maxReprDepth = 64

// ParseRepr is the inverse of Repr: ParseRepr(Repr(t)) reproduces t.
func ParseRepr(s string) (Tree, error) {
	p := &reprParser{src: s}
	nodes, err := p.list(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing text")
	}
	return Tree(nodes), nil
}

type reprParser struct {
	src string
	pos int
}

func (p *reprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: at offset %d: %s", ErrMalformedRepr, p.pos, fmt.Sprintf(format, args...))
}

func (p *reprParser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *reprParser) peek(b byte) bool {
	p.skipSpace()
	return p.pos < len(p.src) && p.src[p.pos] == b
}

func (p *reprParser) expect(b byte) error {
	if !p.peek(b) {
		return p.errorf("expected %q", b)
	}
	p.pos++
	return nil
}

func (p *reprParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *reprParser) list(depth int) ([]Component, error) {
	if depth > maxReprDepth {
		return nil, p.errorf("nesting deeper than %d", maxReprDepth)
	}
	if err := p.expect('['); err != nil {
		return nil, err
	}
	nodes := []Component{}
	for !p.peek(']') {
		c, err := p.component(depth)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, c)
		if p.peek(',') {
			p.pos++
		}
	}
	p.pos++
	return nodes, nil
}

func (p *reprParser) component(depth int) (Component, error) {
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected a component name")
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	var children []Component
	for !p.peek(')') {
		key := p.ident()
		if key == "" {
			return nil, p.errorf("expected a field name in %s", name)
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		if p.peek('[') {
			var err error
			if children, err = p.list(depth + 1); err != nil {
				return nil, err
			}
		} else {
			quoted, err := strconv.QuotedPrefix(p.src[p.pos:])
			if err != nil {
				return nil, p.errorf("field %s of %s is not a quoted string", key, name)
			}
			fields[key], _ = strconv.Unquote(quoted)
			p.pos += len(quoted)
		}
		if p.peek(',') {
			p.pos++
		}
	}
	p.pos++

	switch name {
	case "Text":
		return Text{StyleClass: fields["style_class"], Content: fields["content"]}, nil
	case "Button":
		return Button{StyleClass: fields["style_class"], Content: fields["content"], ClickAction: fields["click_action"]}, nil
	case "Link":
		return Link{StyleClass: fields["style_class"], Content: fields["content"], ClickAction: fields["click_action"]}, nil
	case "InputField":
		return InputField{
			StyleClass:   fields["style_class"],
			Label:        fields["label"],
			Placeholder:  fields["placeholder"],
			SubmitAction: fields["submit_action"],
			SubmitLabel:  fields["submit_label"],
		}, nil
	case "Container":
		if children == nil {
			children = []Component{}
		}
		return Container{StyleClass: fields["style_class"], Children: children}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, name)
	}
}
