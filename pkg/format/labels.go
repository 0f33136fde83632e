package format

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-fhirview/pkg/alias"
	"github.com/goliatone/go-fhirview/pkg/fhirpath"
	"github.com/goliatone/go-fhirview/pkg/model"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// Humanize converts a property name into a sentence-case label, splitting on
// underscores, dashes, and camelCase boundaries: `birthDate` becomes
// "Birth date".
func Humanize(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, splitCamel(word))
	}
	return sentenceCase(strings.TrimSpace(strings.Join(segments, " ")))
}

// Capitalize title-cases a FHIR code such as `home` or `official`.
func Capitalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return cases.Title(language.English).String(code)
}

// LabelFor returns the field's label, deriving one from its path when the
// author left it blank.
func LabelFor(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return field.Label
	}
	if field.FHIRPath != "" {
		if alias.IsSpecialForm(field.FHIRPath) {
			if system := alias.SystemOf(field.FHIRPath); system != "" {
				return Capitalize(system)
			}
		}
		if path, err := fhirpath.Compile(field.FHIRPath); err == nil {
			for i := len(path) - 1; i >= 0; i-- {
				if path[i].Kind == fhirpath.SegmentField {
					return Humanize(path[i].Name)
				}
			}
		}
	}
	return ""
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func sentenceCase(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
