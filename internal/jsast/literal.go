package jsast

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// StringValue returns the decoded value of a string literal or of a
// template literal without substitutions.
func (n Node) StringValue() (string, bool) {
	if !n.Is(KindString, KindTemplateString) {
		return "", false
	}
	start, end := int(n.n.StartByte())+1, int(n.n.EndByte())-1
	if end < start {
		return "", false
	}
	var b strings.Builder
	// high holds a \uXXXX high surrogate until the escape after it is seen.
	var high rune
	flush := func() {
		if high != 0 {
			b.WriteRune(utf8.RuneError)
			high = 0
		}
	}
	pos := start
	for i := 0; i < int(n.n.ChildCount()); i++ {
		c := n.wrap(n.n.Child(i))
		switch c.Kind() {
		case KindEscapeSequence:
			if at := int(c.n.StartByte()); at > pos {
				flush()
				b.Write(n.src[pos:at])
			}
			r, ok := utf16Unit(c.Text())
			switch {
			case ok && r >= 0xD800 && r < 0xDC00:
				flush()
				high = r
			case ok && high != 0 && utf16.IsSurrogate(r):
				b.WriteRune(utf16.DecodeRune(high, r))
				high = 0
			default:
				flush()
				b.WriteString(DecodeEscape(c.Text()))
			}
			pos = int(c.n.EndByte())
		case KindSubstitution:
			return "", false
		}
	}
	flush()
	if pos < end {
		b.Write(n.src[pos:end])
	}
	return b.String(), true
}

// utf16Unit returns the code unit of a four-digit \uXXXX escape.
func utf16Unit(seq string) (rune, bool) {
	if len(seq) != 6 || seq[:2] != `\u` {
		return 0, false
	}
	return parseHexRune(seq[2:])
}

// RawStringContent returns the literal's source text without its
// surrounding quote characters. Escapes are left as written.
func (n Node) RawStringContent() string {
	t := n.Text()
	if len(t) >= 2 {
		return t[1 : len(t)-1]
	}
	return t
}

// LiteralValue returns the value of a string, template or number
// literal. Numbers are returned as written.
func (n Node) LiteralValue() (string, bool) {
	if n.Kind() == KindNumber {
		return n.Text(), true
	}
	return n.StringValue()
}

// PropertyKey returns the key of an object pair as a plain string.
func (n Node) PropertyKey() (string, bool) {
	if n.Kind() != KindPair {
		return "", false
	}
	key, ok := n.Field("key")
	if !ok {
		return "", false
	}
	switch key.Kind() {
	case KindPropertyIdentifier, KindIdentifier, KindNumber:
		return key.Text(), true
	case KindString:
		return key.StringValue()
	default:
		return "", false
	}
}

// Properties returns the object's pairs keyed by name; the first pair wins
// when a key repeats. Spread elements, methods and computed keys are
// ignored.
func (n Node) Properties() map[string]Node {
	out := make(map[string]Node)
	if n.Kind() != KindObject {
		return out
	}
	for _, c := range n.NamedChildren() {
		key, ok := c.PropertyKey()
		if !ok {
			continue
		}
		if _, seen := out[key]; seen {
			continue
		}
		if v, ok := c.Field("value"); ok {
			out[key] = v
		}
	}
	return out
}

// DecodeEscape decodes one JavaScript escape sequence such as \n, \x41
// or \u{1F600}. Unknown escapes such as \/ decode to the escaped character.
func DecodeEscape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	body := seq[1:]
	switch body[0] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(body) == 1 {
			return "\x00"
		}
	case 'x':
		if r, ok := parseHexRune(body[1:]); ok {
			return string(r)
		}
	case 'u':
		hex := strings.TrimSuffix(strings.TrimPrefix(body[1:], "{"), "}")
		if r, ok := parseHexRune(hex); ok {
			return string(r)
		}
	case '\n':
		return ""
	case '\r':
		return ""
	}
	_, size := utf8.DecodeRuneInString(body)
	return body[:size]
}

func parseHexRune(hex string) (rune, bool) {
	if hex == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || v > utf8.MaxRune {
		return 0, false
	}
	return rune(v), true
}
