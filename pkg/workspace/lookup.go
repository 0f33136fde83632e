package workspace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-fhirview/pkg/model"
)

// FindTemplateByName returns the first template whose name matches exactly.
func FindTemplateByName(ws model.Workspace, name string) (*model.Template, bool) {
	for i := range ws.Templates {
		if ws.Templates[i].Name == name {
			tpl := ws.Templates[i]
			return &tpl, true
		}
	}
	return nil, false
}

// TemplateNotFoundError reports a missing template along with the names the
// workspace does offer.
type TemplateNotFoundError struct {
	Name      string
	Available []string
}

func (e *TemplateNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("workspace: template %q not found (workspace has no templates)", e.Name)
	}
	quoted := make([]string, len(e.Available))
	for i, name := range e.Available {
		quoted[i] = strconv.Quote(name)
	}
	return fmt.Sprintf("workspace: template %q not found (available: %s)", e.Name, strings.Join(quoted, ", "))
}

// Lookup is FindTemplateByName returning a TemplateNotFoundError on a miss.
func Lookup(ws model.Workspace, name string) (model.Template, error) {
	tpl, ok := FindTemplateByName(ws, name)
	if !ok {
		return model.Template{}, &TemplateNotFoundError{Name: name, Available: ws.TemplateNames()}
	}
	return *tpl, nil
}

// ValidateCompatibility reports whether tpl may preview data. Only a template
// and a resource that both declare a resourceType and disagree are
// incompatible; callers treat that as a warning and render anyway.
func ValidateCompatibility(tpl model.Template, data any) bool {
	want := strings.TrimSpace(tpl.ResourceType)
	got := model.ResourceTypeOf(data)
	return want == "" || got == "" || want == got
}
