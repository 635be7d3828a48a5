package compiler

import (
	"fmt"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

type parser struct {
	src string
	pos int
}

// Parse parses a template into a root node. Malformed markup fails
// immediately with a C001, C002 or C003 error pointing into the source;
// no partial tree is returned.
func Parse(template string) (*Node, error) {
	p := &parser{src: template}
	children, err := p.parseChildren(nil)
	if err != nil {
		return nil, err
	}
	return &Node{
		Type:     NodeRoot,
		Children: children,
		Pos:      Pos{Line: 1, Column: 1},
		Source:   template,
	}, nil
}

func (p *parser) parseChildren(parent *Node) ([]*Node, error) {
	var nodes []*Node
	for {
		if p.eof() {
			if parent != nil {
				return nil, p.errorAt("C002", parent.Pos).
					WithDetailf("element <%s> is never closed", parent.Tag)
			}
			break
		}

		rest := p.src[p.pos:]
		var (
			node *Node
			err  error
		)
		switch {
		case strings.HasPrefix(rest, "</"):
			if parent == nil {
				return nil, p.errorAt("C003", p.position(p.pos)).
					WithDetailf("unexpected closing tag %q", closingTagText(rest))
			}
			if tag := closingTagName(rest); tag != parent.Tag {
				return nil, p.errorAt("C002", parent.Pos).
					WithDetailf("element <%s> is never closed (found </%s>)", parent.Tag, tag)
			}
			return trimWhitespace(nodes), nil
		case strings.HasPrefix(rest, openDelim):
			node, err = p.parseInterpolation()
		case len(rest) > 1 && rest[0] == '<' && isTagStart(rest[1]):
			node, err = p.parseElement()
		default:
			node = p.parseText()
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return trimWhitespace(nodes), nil
}

func (p *parser) parseInterpolation() (*Node, error) {
	start := p.pos
	end := strings.Index(p.src[start+len(openDelim):], closeDelim)
	if end < 0 {
		return nil, p.errorAt("C001", p.position(start))
	}
	raw := p.src[start+len(openDelim) : start+len(openDelim)+end]
	p.pos = start + len(openDelim) + end + len(closeDelim)
	return &Node{
		Type:    NodeInterpolation,
		Content: strings.TrimSpace(raw),
		Pos:     p.position(start),
	}, nil
}

func (p *parser) parseText() *Node {
	start := p.pos
	end := len(p.src)
	// Skip the first byte so a lone '<' that does not open a tag is text.
	for i := start + 1; i < len(p.src); i++ {
		if p.src[i] == '<' || strings.HasPrefix(p.src[i:], openDelim) {
			end = i
			break
		}
	}
	p.pos = end
	return &Node{Type: NodeText, Content: p.src[start:end], Pos: p.position(start)}
}

func (p *parser) parseElement() (*Node, error) {
	start := p.pos
	p.pos++ // '<'
	tag := p.readWhile(isTagChar)
	el := &Node{Type: NodeElement, Tag: tag, Pos: p.position(start)}

	selfClosing, err := p.parseAttrs(el)
	if err != nil {
		return nil, err
	}
	if selfClosing || voidElements[tag] {
		return el, nil
	}

	children, err := p.parseChildren(el)
	if err != nil {
		return nil, err
	}
	el.Children = children

	// parseChildren stops at the matching "</tag".
	closeStart := p.pos
	p.pos += 2 + len(tag)
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '>' {
		return nil, p.errorAt("C003", p.position(closeStart)).
			WithDetailf("closing tag </%s> is missing '>'", tag)
	}
	p.pos++
	return el, nil
}

// parseAttrs reads attributes up to and including the end of the start
// tag. It reports whether the tag was self-closing.
func (p *parser) parseAttrs(el *Node) (bool, error) {
	for {
		p.skipSpace()
		if p.eof() {
			return false, p.errorAt("C003", el.Pos).
				WithDetailf("start tag <%s> is missing '>'", el.Tag)
		}
		switch {
		case strings.HasPrefix(p.src[p.pos:], "/>"):
			p.pos += 2
			return true, nil
		case p.src[p.pos] == '>':
			p.pos++
			return false, nil
		}

		attrStart := p.pos
		name := p.readWhile(isAttrNameChar)
		if name == "" {
			return false, p.errorAt("C003", p.position(attrStart)).
				WithDetailf("unexpected %q in <%s>", p.src[p.pos], el.Tag)
		}
		attr := Attr{Kind: AttrStatic, Name: name}
		switch name[0] {
		case ':':
			attr.Kind, attr.Name = AttrBind, name[1:]
		case '@':
			attr.Kind, attr.Name = AttrOn, name[1:]
		}
		if attr.Name == "" {
			return false, p.errorAt("C003", p.position(attrStart)).
				WithDetailf("attribute %q has no name", name)
		}

		p.skipSpace()
		if !p.eof() && p.src[p.pos] == '=' {
			p.pos++
			p.skipSpace()
			value, err := p.parseAttrValue(el)
			if err != nil {
				return false, err
			}
			attr.Value = value
		}
		if attr.Kind != AttrStatic && attr.Value == "" {
			return false, p.errorAt("C003", p.position(attrStart)).
				WithDetailf("binding %q needs a value", name)
		}
		el.Attrs = append(el.Attrs, attr)
	}
}

func (p *parser) parseAttrValue(el *Node) (string, error) {
	if p.eof() {
		return "", p.errorAt("C003", el.Pos).
			WithDetailf("start tag <%s> is missing '>'", el.Tag)
	}
	if q := p.src[p.pos]; q == '"' || q == '\'' {
		start := p.pos
		end := strings.IndexByte(p.src[start+1:], q)
		if end < 0 {
			return "", p.errorAt("C003", p.position(start)).
				WithDetail("attribute value is missing its closing quote")
		}
		p.pos = start + 1 + end + 1
		return p.src[start+1 : start+1+end], nil
	}
	return p.readWhile(func(c byte) bool {
		return !isSpace(c) && c != '>' && c != '/'
	}), nil
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) readWhile(ok func(byte) bool) string {
	start := p.pos
	for p.pos < len(p.src) && ok(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) skipSpace() {
	p.readWhile(isSpace)
}

// position converts a byte offset to a 1-based line and column.
func (p *parser) position(offset int) Pos {
	line, col := 1, 1
	for i := 0; i < offset && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Pos{Line: line, Column: col}
}

func (p *parser) errorAt(code string, pos Pos) *errors.Error {
	return errors.New(code).WithSource(p.src, pos.Line, pos.Column)
}

// trimWhitespace drops whitespace-only text nodes that contain a newline.
// They come from template indentation, not content.
func trimWhitespace(nodes []*Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == NodeText && strings.TrimSpace(n.Content) == "" && strings.Contains(n.Content, "\n") {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func closingTagName(rest string) string {
	i := 2
	for i < len(rest) && isTagChar(rest[i]) {
		i++
	}
	return rest[2:i]
}

func closingTagText(rest string) string {
	if i := strings.IndexByte(rest, '>'); i >= 0 {
		return rest[:i+1]
	}
	return fmt.Sprintf("</%s", closingTagName(rest))
}

func isTagStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isTagChar(c byte) bool {
	return isTagStart(c) || c >= '0' && c <= '9' || c == '-'
}

func isAttrNameChar(c byte) bool {
	return !isSpace(c) && c != '=' && c != '>' && c != '/' && c != '"' && c != '\''
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
