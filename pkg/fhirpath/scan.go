package fhirpath

import (
	"strconv"
)

// Reference is a path-shaped run found inside free text.
type Reference struct {
	Text  string
	Start int
	End   int
	Path  Path
}

// Indexed reports whether the reference carries a numeric index, which is
// what marks a bare run of text as a path rather than a plain word.
func (r Reference) Indexed() bool {
	return r.Path.HasIndex()
}

// ScanAt reads the maximal strict path run starting at pos: an identifier
// followed by any number of `.identifier` or `[digits]` parts. A trailing
// dot that is not followed by an identifier is left unconsumed.
func ScanAt(text string, pos int) (Reference, bool) {
	if pos < 0 || pos >= len(text) || !isIdentStart(text[pos]) {
		return Reference{}, false
	}

	i := pos
	var path Path
	name, next := readIdent(text, i)
	path = append(path, Segment{Kind: SegmentField, Name: name})
	i = next

	for i < len(text) {
		switch text[i] {
		case '.':
			if i+1 >= len(text) || !isIdentStart(text[i+1]) {
				return Reference{Text: text[pos:i], Start: pos, End: i, Path: path}, true
			}
			name, next = readIdent(text, i+1)
			path = append(path, Segment{Kind: SegmentField, Name: name})
			i = next
		case '[':
			j := i + 1
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			if j == i+1 || j >= len(text) || text[j] != ']' {
				return Reference{Text: text[pos:i], Start: pos, End: i, Path: path}, true
			}
			index, err := strconv.Atoi(text[i+1 : j])
			if err != nil {
				return Reference{Text: text[pos:i], Start: pos, End: i, Path: path}, true
			}
			path = append(path, Segment{Kind: SegmentIndex, Index: index})
			i = j + 1
		default:
			return Reference{Text: text[pos:i], Start: pos, End: i, Path: path}, true
		}
	}
	return Reference{Text: text[pos:i], Start: pos, End: i, Path: path}, true
}

// Scan lists every path run in text outside quoted literals. Runs start only
// at identifier boundaries, so `a.b[0]` is reported once rather than once per
// suffix.
func Scan(text string) []Reference {
	var refs []Reference
	for i := 0; i < len(text); {
		ch := text[i]
		switch {
		case ch == '\'' || ch == '"':
			i = SkipQuoted(text, i)
		case isIdentStart(ch) && AtBoundary(text, i):
			ref, _ := ScanAt(text, i)
			refs = append(refs, ref)
			i = ref.End
		default:
			i++
		}
	}
	return refs
}

// SkipQuoted returns the offset just past the quoted literal opening at pos,
// honouring backslash escapes. Unterminated literals run to the end of text.
func SkipQuoted(text string, pos int) int {
	quote := text[pos]
	i := pos + 1
	for i < len(text) {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		}
		i++
	}
	return len(text)
}

// AtBoundary reports whether an identifier may start at pos, meaning the
// previous byte neither continues an identifier nor is a member dot.
func AtBoundary(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	prev := text[pos-1]
	return !isIdentPart(prev) && prev != '.'
}

func readIdent(text string, pos int) (string, int) {
	i := pos
	for i < len(text) && isIdentPart(text[i]) {
		i++
	}
	return text[pos:i], i
}
