// Package template holds the engine contract the html painter renders its
// page and error templates through. The default implementation lives in
// the gotemplate subpackage.
package template
