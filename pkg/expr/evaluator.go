// Package expr evaluates computed-field expressions such as
// `firstName + ' ' + lastName`.
//
// The grammar is deliberately tiny: string literals joined by `+`. Before
// parsing, references in the expression text are replaced by their resolved
// values:
//
//   - `telecom.find(<predicate>).value` special forms (email and phone)
//   - bracket-indexed paths like `name[0].given[0]`
//   - aliases known for the data's resourceType, like `firstName`
//
// Resolved values become literal tokens directly, so a value containing
// quotes can never terminate a literal early. Quoted author literals are
// opaque: nothing inside them is substituted. Any identifier that survives
// substitution, and any operator other than `+`, is an error.
package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-fhirview/pkg/alias"
	"github.com/goliatone/go-fhirview/pkg/fhirpath"
	"github.com/goliatone/go-fhirview/pkg/model"
)

// Evaluator evaluates expressions against one resource. It keeps no state
// between calls beyond the resource it was built with.
type Evaluator struct {
	data         model.Resource
	resourceType string
	aliases      *alias.Table
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithAliasTable routes alias resolution through table, typically one wired
// to a diagnostics reporter.
func WithAliasTable(table *alias.Table) Option {
	return func(e *Evaluator) {
		e.aliases = table
	}
}

// New builds an Evaluator for data. data may be nil, in which case every
// reference resolves to the empty string.
func New(data model.Resource, options ...Option) *Evaluator {
	e := &Evaluator{
		data:         data,
		resourceType: model.ResourceTypeOf(data),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.aliases == nil {
		e.aliases = alias.NewTable()
	}
	return e
}

// Evaluate is the one-shot form of New(data).Evaluate(expression).
func Evaluate(expression string, data model.Resource) string {
	return New(data).Evaluate(expression)
}

// Evaluate returns the expression result, or `[Error: <message>]` when the
// expression cannot be evaluated. It never panics on malformed input.
func (e *Evaluator) Evaluate(expression string) string {
	result, err := e.Eval(expression)
	if err != nil {
		return FormatError(err)
	}
	return result
}

// Eval returns the expression result or the evaluation error.
func (e *Evaluator) Eval(expression string) (string, error) {
	if strings.TrimSpace(expression) == "" {
		return "", nil
	}

	tokens, err := e.tokenize(expression)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", nil
	}

	stream := &tokenStream{tokens: tokens}
	return parseConcat(stream)
}

// FormatError renders err in the `[Error: <message>]` display form.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return "[Error: " + strings.TrimPrefix(err.Error(), "expr: ") + "]"
}

// UnresolvedIdentifierError reports an identifier that is neither an alias
// for the resource type nor an indexed path.
type UnresolvedIdentifierError struct {
	Name string
}

func (e *UnresolvedIdentifierError) Error() string {
	return fmt.Sprintf("expr: unresolved identifier %q", e.Name)
}

var errUnterminated = errors.New("expr: unterminated string literal")

type tokenKind int

const (
	tokenString tokenKind = iota
	tokenPlus
	tokenIdentifier
	tokenNumber
)

type token struct {
	kind tokenKind
	raw  string
}

// piece is either author-written text or a resolved reference value.
type piece struct {
	text     string
	value    string
	resolved bool
}

func (e *Evaluator) tokenize(expression string) ([]token, error) {
	var tokens []token
	for _, p := range e.substitute(expression) {
		if p.resolved {
			tokens = append(tokens, token{kind: tokenString, raw: p.value})
			continue
		}
		authored, err := tokenizeAuthored(stripUnsafe(p.text))
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, authored...)
	}
	return tokens, nil
}

// substitute splits the expression into author text and resolved references.
// Each distinct reference text is resolved once per call.
func (e *Evaluator) substitute(input string) []piece {
	var (
		pieces   []piece
		author   strings.Builder
		resolved = make(map[string]string)
	)

	flush := func() {
		if author.Len() > 0 {
			pieces = append(pieces, piece{text: author.String()})
			author.Reset()
		}
	}
	emit := func(text string, resolve func() string) {
		flush()
		value, ok := resolved[text]
		if !ok {
			value = resolve()
			resolved[text] = value
		}
		pieces = append(pieces, piece{value: value, resolved: true})
	}

	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == '\'' || ch == '"':
			end := fhirpath.SkipQuoted(input, i)
			author.WriteString(input[i:end])
			i = end
		case isIdentStart(ch) && fhirpath.AtBoundary(input, i):
			if form, ok := matchSpecialForm(input, i); ok {
				emit(form, func() string {
					value, _ := alias.ResolveSpecialForm(e.data, form)
					return value
				})
				i += len(form)
				continue
			}

			ref, _ := fhirpath.ScanAt(input, i)
			switch {
			case ref.Indexed():
				emit(ref.Text, func() string { return alias.ResolvePath(e.data, ref.Text) })
			case e.isAlias(ref.Text):
				emit(ref.Text, func() string { return e.aliases.Resolve(e.data, ref.Text) })
			default:
				author.WriteString(ref.Text)
			}
			i = ref.End
		default:
			author.WriteByte(ch)
			i++
		}
	}
	flush()
	return pieces
}

func (e *Evaluator) isAlias(name string) bool {
	if e.resourceType == "" {
		return false
	}
	_, ok := alias.Lookup(e.resourceType, name)
	return ok
}

const (
	specialPrefix = "telecom.find("
	specialSuffix = ".value"
)

// matchSpecialForm matches `telecom.find(` up to the first `)` followed by
// `.value`, starting at pos.
func matchSpecialForm(input string, pos int) (string, bool) {
	rest := input[pos:]
	if !strings.HasPrefix(rest, specialPrefix) {
		return "", false
	}
	closeAt := strings.IndexByte(rest[len(specialPrefix):], ')')
	if closeAt < 0 {
		return "", false
	}
	end := len(specialPrefix) + closeAt + 1
	if !strings.HasPrefix(rest[end:], specialSuffix) {
		return "", false
	}
	return rest[:end+len(specialSuffix)], true
}

const unsafeChars = "<>{}$`\\"

// stripUnsafe removes characters that have no meaning in the grammar and
// would only matter to a more permissive evaluator.
func stripUnsafe(text string) string {
	if !strings.ContainsAny(text, unsafeChars) {
		return text
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return -1
		}
		return r
	}, text)
}

func tokenizeAuthored(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '+':
			tokens = append(tokens, token{kind: tokenPlus, raw: "+"})
			i++
		case ch == '\'' || ch == '"':
			end := strings.IndexByte(input[i+1:], ch)
			if end < 0 {
				return nil, errUnterminated
			}
			tokens = append(tokens, token{kind: tokenString, raw: input[i+1 : i+1+end]})
			i += end + 2
		case isIdentStart(ch):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdentifier, raw: input[start:i]})
		case ch >= '0' && ch <= '9':
			start := i
			for i < len(input) && (isIdentPart(input[i]) || input[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: input[start:i]})
		default:
			return nil, fmt.Errorf("expr: unexpected character %q", rune(ch))
		}
	}
	return tokens, nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) peek() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *tokenStream) consume() (token, bool) {
	tok, ok := s.peek()
	if ok {
		s.pos++
	}
	return tok, ok
}

func (s *tokenStream) match(kind tokenKind) bool {
	tok, ok := s.peek()
	return ok && tok.kind == kind
}

// parseConcat parses `literal ('+' literal)*`.
func parseConcat(s *tokenStream) (string, error) {
	var b strings.Builder

	first, err := parseOperand(s, "")
	if err != nil {
		return "", err
	}
	b.WriteString(first)

	for s.match(tokenPlus) {
		s.consume()
		operand, err := parseOperand(s, "+")
		if err != nil {
			return "", err
		}
		b.WriteString(operand)
	}

	if tok, ok := s.peek(); ok {
		switch tok.kind {
		case tokenIdentifier:
			return "", &UnresolvedIdentifierError{Name: tok.raw}
		case tokenString:
			return "", fmt.Errorf("expr: expected '+' before string literal %q", tok.raw)
		default:
			return "", fmt.Errorf("expr: unexpected %q", tok.raw)
		}
	}
	return b.String(), nil
}

func parseOperand(s *tokenStream, after string) (string, error) {
	tok, ok := s.consume()
	if !ok {
		if after != "" {
			return "", fmt.Errorf("expr: expected string literal after %q", after)
		}
		return "", errors.New("expr: unexpected end of expression")
	}
	switch tok.kind {
	case tokenString:
		return tok.raw, nil
	case tokenIdentifier:
		return "", &UnresolvedIdentifierError{Name: tok.raw}
	case tokenNumber:
		return "", fmt.Errorf("expr: numeric literal %s is not supported", tok.raw)
	default:
		return "", fmt.Errorf("expr: expected string literal, got %q", tok.raw)
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
