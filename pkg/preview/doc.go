// Package preview runs complete render passes over a workspace payload: it
// decodes the workspace, looks up the requested template, checks it against
// the resource, builds the view tree and paints it with a registered painter.
//
// Decode and lookup failures end the pass and are painted as an error panel
// (or nothing, when errors are hidden). Everything below that level is
// reported as warnings and inline diagnostic nodes.
package preview
