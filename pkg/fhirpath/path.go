// Package fhirpath parses and resolves the simple property paths used by
// preview templates: dotted identifiers, numeric indices, and quoted bracket
// keys such as `name[0].given[1]` or `extension['url.with.dots']`.
//
// Predicates and function calls are not part of the grammar. Callers that
// need `telecom.find(...)` style lookups special-case them before reaching
// this package. Resolution never fails loudly: malformed or absent paths
// resolve to (nil, false).
package fhirpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind distinguishes property access from index access.
type SegmentKind int

const (
	SegmentField SegmentKind = iota
	SegmentIndex
)

// Segment is one step of a Path.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
	// Quoted records that the field was written in bracket form.
	Quoted bool
}

// Path is a parsed property path.
type Path []Segment

var (
	// ErrEmptyPath is returned when the path has no segments.
	ErrEmptyPath = errors.New("fhirpath: empty path")
)

// SyntaxError reports a malformed path with the byte offset of the failure.
type SyntaxError struct {
	Path    string
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("fhirpath: %s at offset %d in %q", e.Message, e.Offset, e.Path)
}

// HasIndex reports whether any segment is a numeric index.
func (p Path) HasIndex() bool {
	for _, seg := range p {
		if seg.Kind == SegmentIndex {
			return true
		}
	}
	return false
}

// String renders the path in canonical form: identifiers joined by dots,
// indices in brackets, non-identifier keys in quoted brackets.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case seg.Kind == SegmentIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		case !isIdentifier(seg.Name):
			b.WriteString("['")
			b.WriteString(strings.ReplaceAll(seg.Name, "'", `\'`))
			b.WriteString("']")
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Name)
		}
	}
	return b.String()
}

// Parse converts a path string into segments. Leading and trailing
// whitespace is ignored. Dot segments accept any characters other than `.`,
// `[`, and `]`, which keeps keys like `valueQuantity` or `_birthDate`
// addressable without quoting.
func Parse(path string) (Path, error) {
	input := strings.TrimSpace(path)
	if input == "" {
		return nil, ErrEmptyPath
	}

	p := parser{input: input}
	return p.parse()
}

// MustParse panics when path cannot be parsed.
func MustParse(path string) Path {
	parsed, err := Parse(path)
	if err != nil {
		panic(err)
	}
	return parsed
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parse() (Path, error) {
	var segments Path
	expectName := true

	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		switch {
		case ch == ' ' || ch == '\t':
			p.pos++
		case ch == '[':
			seg, err := p.parseBracket()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			expectName = false
		case ch == '.':
			if expectName {
				return nil, p.errorf("unexpected '.'")
			}
			p.pos++
			if p.pos >= len(p.input) {
				return nil, p.errorf("path ends with '.'")
			}
			if p.input[p.pos] == '.' || p.input[p.pos] == '[' || p.input[p.pos] == ']' {
				return nil, p.errorf("expected property name after '.'")
			}
			expectName = true
		case ch == ']':
			return nil, p.errorf("unexpected ']'")
		default:
			if !expectName {
				return nil, p.errorf("expected '.' or '[' before property name")
			}
			start := p.pos
			for p.pos < len(p.input) && !strings.ContainsRune(".[]", rune(p.input[p.pos])) {
				p.pos++
			}
			name := strings.TrimSpace(p.input[start:p.pos])
			if name == "" {
				return nil, p.errorf("empty property name")
			}
			segments = append(segments, Segment{Kind: SegmentField, Name: name})
			expectName = false
		}
	}

	if len(segments) == 0 {
		return nil, ErrEmptyPath
	}
	return segments, nil
}

func (p *parser) parseBracket() (Segment, error) {
	p.pos++ // '['
	if p.pos >= len(p.input) {
		return Segment{}, p.errorf("unterminated '['")
	}

	if quote := p.input[p.pos]; quote == '\'' || quote == '"' {
		p.pos++
		var b strings.Builder
		for {
			if p.pos >= len(p.input) {
				return Segment{}, p.errorf("unterminated quoted key")
			}
			ch := p.input[p.pos]
			if ch == '\\' && p.pos+1 < len(p.input) {
				b.WriteByte(p.input[p.pos+1])
				p.pos += 2
				continue
			}
			if ch == quote {
				p.pos++
				break
			}
			b.WriteByte(ch)
			p.pos++
		}
		if p.pos >= len(p.input) || p.input[p.pos] != ']' {
			return Segment{}, p.errorf("expected ']' after quoted key")
		}
		p.pos++
		return Segment{Kind: SegmentField, Name: b.String(), Quoted: true}, nil
	}

	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return Segment{}, p.errorf("expected index or quoted key")
	}
	if p.pos >= len(p.input) || p.input[p.pos] != ']' {
		return Segment{}, p.errorf("unterminated '['")
	}
	index, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return Segment{}, p.errorf("index out of range")
	}
	p.pos++
	return Segment{Kind: SegmentIndex, Index: index}, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Path: p.input, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
