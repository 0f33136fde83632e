// Package model defines the workspace, template, and field types consumed by
// the preview engine. A Workspace is authored elsewhere and handed to this
// module as a base64 JSON payload; it is read-only once decoded.
//
// Fields form a tagged union keyed by the JSON `type` attribute. Common
// attributes (`id`, `label`, `order`, `fhirPath`, `expression`, visibility
// flags) live on Field itself while the type-specific payload is carried by a
// sealed Variant. Unknown type strings decode into UnknownSpec rather than
// failing so renderers can surface a per-field diagnostic instead of rejecting
// the whole workspace.
package model
