package workspace

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-fhirview/pkg/model"
)

// Issue is one structural finding with its location.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result collects validation findings. Issues never block rendering.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Validate reports duplicate names and ids, non-finite orders, widgets with no
// template selected, option fields with no options, and unsupported field
// types.
func Validate(ws model.Workspace) Result {
	var issues []Issue
	names := make(map[string]int)
	ids := make(map[string]int)

	for i, tpl := range ws.Templates {
		prefix := "templates[" + strconv.Itoa(i) + "]"
		name := strings.TrimSpace(tpl.Name)
		switch {
		case name == "":
			issues = append(issues, Issue{Path: prefix + ".name", Message: "template name is required"})
		case names[name] > 0:
			issues = append(issues, Issue{Path: prefix + ".name", Message: fmt.Sprintf("duplicate template name %q", name)})
		}
		names[name]++

		if id := strings.TrimSpace(tpl.ID); id != "" {
			if ids[id] > 0 {
				issues = append(issues, Issue{Path: prefix + ".id", Message: fmt.Sprintf("duplicate template id %q", id)})
			}
			ids[id]++
		}

		issues = append(issues, validateFields(prefix, tpl.Fields)...)
	}

	return Result{Valid: len(issues) == 0, Issues: issues}
}

func validateFields(prefix string, fields []model.Field) []Issue {
	var issues []Issue
	seen := make(map[string]bool)

	model.Walk(fields, func(path string, field model.Field) bool {
		path = prefix + "." + path
		id := strings.TrimSpace(field.ID)
		switch {
		case id == "":
			issues = append(issues, Issue{Path: path + ".id", Message: "field id is required"})
		case seen[id]:
			issues = append(issues, Issue{Path: path + ".id", Field: id, Message: fmt.Sprintf("duplicate field id %q", id)})
		}
		seen[id] = true

		if math.IsNaN(field.Order) || math.IsInf(field.Order, 0) {
			issues = append(issues, Issue{Path: path + ".order", Field: id, Message: "order must be a finite number"})
		}

		switch spec := field.Variant.(type) {
		case model.WidgetSpec:
			if spec.WidgetTemplateID == "" {
				issues = append(issues, Issue{Path: path + ".widgetTemplateId", Field: id, Message: "widget has no template selected"})
			}
		case model.SelectSpec, model.RadioSpec:
			if len(field.Options()) == 0 {
				issues = append(issues, Issue{Path: path + ".options", Field: id, Message: fmt.Sprintf("%s field has no options", field.Type())})
			}
		case model.UnknownSpec:
			issues = append(issues, Issue{Path: path + ".type", Field: id, Message: fmt.Sprintf("unsupported field type %q", spec.Type)})
		case nil:
			issues = append(issues, Issue{Path: path + ".type", Field: id, Message: "field type is required"})
		}
		return true
	})
	return issues
}

// AssignIDs fills empty workspace, template, and field ids using newID, or
// random UUIDs when newID is nil. It returns the number of ids assigned.
func AssignIDs(ws *model.Workspace, newID func() string) int {
	if ws == nil {
		return 0
	}
	if newID == nil {
		newID = uuid.NewString
	}

	assigned := 0
	if strings.TrimSpace(ws.ID) == "" {
		ws.ID = newID()
		assigned++
	}
	for i := range ws.Templates {
		if strings.TrimSpace(ws.Templates[i].ID) == "" {
			ws.Templates[i].ID = newID()
			assigned++
		}
		assigned += assignFieldIDs(ws.Templates[i].Fields, newID)
	}
	return assigned
}

func assignFieldIDs(fields []model.Field, newID func() string) int {
	assigned := 0
	for i := range fields {
		if strings.TrimSpace(fields[i].ID) == "" {
			fields[i].ID = newID()
			assigned++
		}
		switch spec := fields[i].Variant.(type) {
		case model.GroupSpec:
			assigned += assignFieldIDs(spec.Children, newID)
		case model.TwoColumnSpec:
			assigned += assignFieldIDs(spec.LeftColumn, newID)
			assigned += assignFieldIDs(spec.RightColumn, newID)
		}
	}
	return assigned
}
