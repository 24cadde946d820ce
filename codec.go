package humpack

import (
	"math"
	"sort"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/pkg/errors"
)

// The canonical text form is plain JSON:
//
//	{"root":1,"nodes":{
//	  "1":{"type":"dict","members":{"one":1,"banana":{"@ref":2}}},
//	  "2":{"type":"list","members":{"0":1,"1":2,"2":3}}}}
//
// Primitive nodes render as {"value":V}. A member value is an inline
// primitive or a {"@ref":N} link marker; primitives are never objects, so
// the two are unambiguous. Floats always carry '.' or 'e' so the
// int/float split survives a round trip.

// EncodeText renders a document to its canonical text. Nodes are emitted
// in ascending id order and members in document order, so equal documents
// encode to identical bytes.
func EncodeText(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.Wrap(humpack_errors.ErrMalformedDocument, "nil document")
	}
	ids := make([]NodeID, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buf := append([]byte(`{"root":`), strconv.AppendUint(nil, uint64(doc.Root), 10)...)
	buf = append(buf, `,"nodes":{`...)
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = strconv.AppendUint(buf, uint64(id), 10)
		buf = append(buf, '"', ':')
		var err error
		buf, err = appendNode(buf, doc.Nodes[id])
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", id)
		}
	}
	return append(buf, '}', '}'), nil
}

func appendNode(buf []byte, node *Node) ([]byte, error) {
	switch node.Kind {
	case Primitive:
		buf = append(buf, `{"value":`...)
		var err error
		buf, err = appendPrim(buf, node.Value)
		if err != nil {
			return nil, err
		}
		return append(buf, '}'), nil
	case Object:
		buf = append(buf, `{"type":`...)
		buf = appendString(buf, node.TypeID)
		buf = append(buf, `,"members":{`...)
		for i, m := range node.Members {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, m.Name)
			buf = append(buf, ':')
			if m.IsRef {
				buf = append(buf, `{"@ref":`...)
				buf = strconv.AppendUint(buf, uint64(m.Ref), 10)
				buf = append(buf, '}')
			} else {
				var err error
				buf, err = appendPrim(buf, m.Value)
				if err != nil {
					return nil, errors.Wrapf(err, "member %q", m.Name)
				}
			}
		}
		return append(buf, '}', '}'), nil
	}
	return nil, errors.Wrapf(humpack_errors.ErrMalformedDocument, "unknown node kind %q", node.Kind)
}

func appendPrim(buf []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(buf, `null`...), nil
	case bool:
		if x {
			return append(buf, `true`...), nil
		}
		return append(buf, `false`...), nil
	case int64:
		return strconv.AppendInt(buf, x, 10), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errors.Wrap(humpack_errors.ErrMalformedDocument, "non-finite float")
		}
		mark := len(buf)
		buf = strconv.AppendFloat(buf, x, 'g', -1, 64)
		for _, c := range buf[mark:] {
			if c == '.' || c == 'e' || c == 'E' {
				return buf, nil
			}
		}
		return append(buf, '.', '0'), nil
	case string:
		return appendString(buf, x), nil
	}
	return nil, errors.Wrapf(humpack_errors.ErrMalformedDocument, "non-primitive value %T", v)
}

const hexDigits = "0123456789abcdef"

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			buf = append(buf, '\\', byte(r))
		case r == '\n':
			buf = append(buf, '\\', 'n')
		case r == '\t':
			buf = append(buf, '\\', 't')
		case r == '\r':
			buf = append(buf, '\\', 'r')
		case r < 0x20:
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[r>>4], hexDigits[r&0xf])
		default:
			buf = utf8.AppendRune(buf, r)
		}
	}
	return append(buf, '"')
}

// DecodeText parses canonical text back into a document. It accepts any
// JSON whitespace and key order but only the document grammar; anything
// else fails with ErrBadSyntax carrying the byte offset.
func DecodeText(data []byte) (*Document, error) {
	p := &parser{data: data}
	doc, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	p.ws()
	if p.pos != len(p.data) {
		return nil, p.fail("trailing data")
	}
	return doc, nil
}

type parser struct {
	data []byte
	pos  int
}

func (p *parser) fail(msg string) error {
	return errors.Wrapf(humpack_errors.ErrBadSyntax, "offset %d: %s", p.pos, msg)
}

func (p *parser) ws() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) expect(c byte) error {
	p.ws()
	if p.pos >= len(p.data) || p.data[p.pos] != c {
		return p.fail("expected " + string(c))
	}
	p.pos++
	return nil
}

func (p *parser) peek() (byte, bool) {
	p.ws()
	if p.pos >= len(p.data) {
		return 0, false
	}
	return p.data[p.pos], true
}

func (p *parser) parseDocument() (*Document, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	doc := &Document{Nodes: map[NodeID]*Node{}}
	haveRoot, haveNodes := false, false
	err := p.parseObjectBody(func(key string) error {
		switch key {
		case "root":
			id, err := p.parseID()
			if err != nil {
				return err
			}
			doc.Root, haveRoot = id, true
		case "nodes":
			haveNodes = true
			return p.parseNodes(doc)
		default:
			return p.fail("unexpected key " + strconv.Quote(key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !haveRoot || !haveNodes {
		return nil, p.fail(`document needs "root" and "nodes"`)
	}
	return doc, nil
}

// parseObjectBody consumes key:value pairs after the opening brace,
// delegating each value to fn, through the closing brace.
func (p *parser) parseObjectBody(fn func(key string) error) error {
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return nil
	}
	for {
		p.ws()
		key, err := p.parseString()
		if err != nil {
			return err
		}
		if err = p.expect(':'); err != nil {
			return err
		}
		if err = fn(key); err != nil {
			return err
		}
		c, ok := p.peek()
		if !ok {
			return p.fail("unterminated object")
		}
		p.pos++
		if c == '}' {
			return nil
		}
		if c != ',' {
			return p.fail("expected , or }")
		}
	}
}

func (p *parser) parseNodes(doc *Document) error {
	if err := p.expect('{'); err != nil {
		return err
	}
	return p.parseObjectBody(func(key string) error {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 {
			return p.fail("bad node id " + strconv.Quote(key))
		}
		if _, dup := doc.Nodes[NodeID(id)]; dup {
			return p.fail("duplicate node id " + key)
		}
		node, err := p.parseNode()
		if err != nil {
			return err
		}
		doc.Nodes[NodeID(id)] = node
		return nil
	})
}

func (p *parser) parseNode() (*Node, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	node := &Node{}
	err := p.parseObjectBody(func(key string) error {
		switch key {
		case "value":
			if node.Kind != 0 {
				return p.fail("node is both primitive and object")
			}
			v, err := p.parsePrim()
			if err != nil {
				return err
			}
			node.Kind, node.Value = Primitive, v
		case "type":
			if node.Kind == Primitive {
				return p.fail("node is both primitive and object")
			}
			p.ws()
			name, err := p.parseString()
			if err != nil {
				return err
			}
			node.Kind, node.TypeID = Object, name
		case "members":
			if node.Kind == Primitive {
				return p.fail("node is both primitive and object")
			}
			node.Kind = Object
			return p.parseMembers(node)
		default:
			return p.fail("unexpected node key " + strconv.Quote(key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if node.Kind == 0 || (node.Kind == Object && node.TypeID == "") {
		return nil, p.fail("node needs \"value\" or \"type\"")
	}
	return node, nil
}

func (p *parser) parseMembers(node *Node) error {
	if err := p.expect('{'); err != nil {
		return err
	}
	return p.parseObjectBody(func(key string) error {
		c, ok := p.peek()
		if !ok {
			return p.fail("unterminated member")
		}
		m := Member{Name: key}
		if c == '{' { // link marker
			p.pos++
			seen := false
			err := p.parseObjectBody(func(k string) error {
				if k != "@ref" || seen {
					return p.fail("expected single @ref key")
				}
				seen = true
				id, err := p.parseID()
				if err != nil {
					return err
				}
				m.Ref, m.IsRef = id, true
				return nil
			})
			if err != nil {
				return err
			}
			if !seen {
				return p.fail("empty link marker")
			}
		} else {
			v, err := p.parsePrim()
			if err != nil {
				return err
			}
			m.Value = v
		}
		node.Members = append(node.Members, m)
		return nil
	})
}

func (p *parser) parseID() (NodeID, error) {
	v, err := p.parsePrim()
	if err != nil {
		return BadID, err
	}
	n, ok := v.(int64)
	if !ok || n <= 0 {
		return BadID, p.fail("expected a positive node id")
	}
	return NodeID(n), nil
}

func (p *parser) parsePrim() (any, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.fail("unexpected end of input")
	}
	switch {
	case c == '"':
		return p.parseString()
	case c == 't':
		return true, p.literal("true")
	case c == 'f':
		return false, p.literal("false")
	case c == 'n':
		return nil, p.literal("null")
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	}
	return nil, p.fail("unexpected character " + strconv.QuoteRune(rune(c)))
}

func (p *parser) literal(lit string) error {
	if len(p.data)-p.pos < len(lit) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return p.fail("bad literal")
	}
	p.pos += len(lit)
	return nil
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	isFloat := false
	if p.data[p.pos] == '-' {
		p.pos++
	}
	digits := func() int {
		n := 0
		for p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
			p.pos++
			n++
		}
		return n
	}
	intStart := p.pos
	if digits() == 0 {
		return nil, p.fail("malformed number")
	}
	if p.data[intStart] == '0' && p.pos-intStart > 1 {
		return nil, p.fail("leading zero")
	}
	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		isFloat = true
		p.pos++
		if digits() == 0 {
			return nil, p.fail("malformed number")
		}
	}
	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if digits() == 0 {
			return nil, p.fail("malformed number")
		}
	}
	text := string(p.data[start:p.pos])
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.fail("malformed number")
		}
		return f, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.fail("integer out of range")
	}
	return n, nil
}

func (p *parser) parseString() (string, error) {
	if p.pos >= len(p.data) || p.data[p.pos] != '"' {
		return "", p.fail("expected string")
	}
	p.pos++
	var out []byte
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return string(out), nil
		case c == '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return "", p.fail("unterminated escape")
			}
			e := p.data[p.pos]
			p.pos++
			switch e {
			case '"', '\\', '/':
				out = append(out, e)
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'u':
				r, err := p.parseHexRune()
				if err != nil {
					return "", err
				}
				if utf16.IsSurrogate(r) && p.pos+1 < len(p.data) &&
					p.data[p.pos] == '\\' && p.data[p.pos+1] == 'u' {
					p.pos += 2
					r2, err := p.parseHexRune()
					if err != nil {
						return "", err
					}
					r = utf16.DecodeRune(r, r2)
				}
				out = utf8.AppendRune(out, r)
			default:
				return "", p.fail("bad escape")
			}
		case c < 0x20:
			return "", p.fail("control character in string")
		default:
			out = append(out, c)
			p.pos++
		}
	}
	return "", p.fail("unterminated string")
}

func (p *parser) parseHexRune() (rune, error) {
	if len(p.data)-p.pos < 4 {
		return 0, p.fail("bad unicode escape")
	}
	n, err := strconv.ParseUint(string(p.data[p.pos:p.pos+4]), 16, 32)
	if err != nil {
		return 0, p.fail("bad unicode escape")
	}
	p.pos += 4
	return rune(n), nil
}
