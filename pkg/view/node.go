package view

import "github.com/goliatone/go-fhirview/pkg/model"

// Kind classifies a rendered node.
type Kind string

const (
	KindValue       Kind = "value"
	KindLabel       Kind = "label"
	KindGroup       Kind = "group"
	KindTwoColumn   Kind = "twoColumn"
	KindWidget      Kind = "widget"
	KindItem        Kind = "item"
	KindEmpty       Kind = "empty"
	KindPlaceholder Kind = "placeholder"
	KindError       Kind = "error"
	KindUnsupported Kind = "unsupported"
)

// Icon categories derived from resource types.
const (
	IconPerson   = "person"
	IconName     = "name"
	IconContact  = "contact"
	IconAddress  = "address"
	IconResource = "resource"
)

// IconFor maps a resource type onto its icon category.
func IconFor(resourceType string) string {
	switch resourceType {
	case "Patient":
		return IconPerson
	case "HumanName":
		return IconName
	case "ContactPoint":
		return IconContact
	case "Address":
		return IconAddress
	default:
		return IconResource
	}
}

// LabelStyle carries the author's styling for label fields.
type LabelStyle struct {
	FontSize   string `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Node is one rendered field, or a diagnostic standing in for one.
type Node struct {
	Key       string          `json:"key"`
	FieldID   string          `json:"fieldId,omitempty"`
	Kind      Kind            `json:"kind"`
	Type      model.FieldType `json:"type,omitempty"`
	Label     string          `json:"label,omitempty"`
	HideLabel bool            `json:"hideLabel,omitempty"`
	Required  bool            `json:"required,omitempty"`

	Value   string `json:"value,omitempty"`
	Missing bool   `json:"missing,omitempty"`
	Checked *bool  `json:"checked,omitempty"`

	Style *LabelStyle `json:"style,omitempty"`

	Children  []*Node `json:"children,omitempty"`
	Left      []*Node `json:"left,omitempty"`
	Right     []*Node `json:"right,omitempty"`
	LeftWidth string  `json:"leftWidth,omitempty"`
	Gap       string  `json:"gap,omitempty"`

	ResourceType string `json:"resourceType,omitempty"`
	TemplateName string `json:"templateName,omitempty"`
	Icon         string `json:"icon,omitempty"`

	// Message explains placeholder, empty, error, and unsupported nodes.
	Message string `json:"message,omitempty"`
}

// View is the rendered tree for one template.
type View struct {
	TemplateID   string  `json:"templateId,omitempty"`
	TemplateName string  `json:"templateName"`
	ResourceType string  `json:"resourceType,omitempty"`
	Description  string  `json:"description,omitempty"`
	Icon         string  `json:"icon"`
	Nodes        []*Node `json:"nodes"`
}

// Walk visits every node depth-first, children before columns.
func Walk(nodes []*Node, visit func(*Node)) {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		visit(node)
		Walk(node.Children, visit)
		Walk(node.Left, visit)
		Walk(node.Right, visit)
	}
}

// Find returns the first node rendered for fieldID.
func (v *View) Find(fieldID string) *Node {
	if v == nil {
		return nil
	}
	var found *Node
	Walk(v.Nodes, func(n *Node) {
		if found == nil && n.FieldID == fieldID {
			found = n
		}
	})
	return found
}
