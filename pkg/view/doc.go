// Package view walks a template's field tree against a resource and produces
// a presentation-neutral node tree. Leaf values come from the expression
// evaluator or the path resolver and are shaped by the display formatter;
// groups, two-column layouts, and nested widget templates are composed
// recursively. Per-field failures become diagnostic nodes plus warnings,
// never errors.
package view
