// Package diagnostics carries the non-fatal warnings produced while building a
// preview: alias misses, resource type mismatches, expression errors, widget
// lookups that fail. Warnings are fire-and-forget; nothing in the preview
// pipeline waits on or reacts to a Reporter.
package diagnostics

import (
	"sync"

	"github.com/rs/zerolog"
)

// Code classifies a warning.
type Code string

const (
	CodeAliasMiss              Code = "alias_miss"
	CodeResourceTypeMismatch   Code = "resource_type_mismatch"
	CodeExpressionError        Code = "expression_error"
	CodeUnsupportedField       Code = "unsupported_field"
	CodeWidgetNoTemplate       Code = "widget_no_template"
	CodeWidgetTemplateNotFound Code = "widget_template_not_found"
	CodeWidgetRecursion        Code = "widget_recursion"
	CodeItemLabel              Code = "item_label"
	CodeValidation             Code = "validation"
)

// Warning describes one non-fatal finding.
type Warning struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Template string `json:"template,omitempty"`
	FieldID  string `json:"field,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Reporter receives warnings.
type Reporter interface {
	Warn(Warning)
}

// ReporterFunc adapts a function into a Reporter.
type ReporterFunc func(Warning)

// Warn calls fn.
func (fn ReporterFunc) Warn(w Warning) {
	if fn != nil {
		fn(w)
	}
}

type nopReporter struct{}

func (nopReporter) Warn(Warning) {}

// Nop discards every warning.
func Nop() Reporter { return nopReporter{} }

// OrNop returns r, or a discarding reporter when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop()
	}
	return r
}

// Multi fans a warning out to every non-nil reporter.
func Multi(reporters ...Reporter) Reporter {
	filtered := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			filtered = append(filtered, r)
		}
	}
	return ReporterFunc(func(w Warning) {
		for _, r := range filtered {
			r.Warn(w)
		}
	})
}

// Recorder keeps warnings in memory. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	warnings []Warning
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Warn appends w.
func (r *Recorder) Warn(w Warning) {
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()
}

// Warnings returns a copy of the recorded warnings in arrival order.
func (r *Recorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Codes lists recorded warning codes in arrival order.
func (r *Recorder) Codes() []Code {
	warnings := r.Warnings()
	codes := make([]Code, len(warnings))
	for i, w := range warnings {
		codes[i] = w.Code
	}
	return codes
}

// Reset drops recorded warnings.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.warnings = nil
	r.mu.Unlock()
}

type zerologReporter struct {
	logger zerolog.Logger
}

// NewZerolog emits each warning as a structured warn-level event.
func NewZerolog(logger zerolog.Logger) Reporter {
	return zerologReporter{logger: logger}
}

func (z zerologReporter) Warn(w Warning) {
	event := z.logger.Warn().Str("code", string(w.Code))
	if w.Template != "" {
		event = event.Str("template", w.Template)
	}
	if w.FieldID != "" {
		event = event.Str("field", w.FieldID)
	}
	if w.Detail != "" {
		event = event.Str("detail", w.Detail)
	}
	event.Msg(w.Message)
}
