// Package theme defines the preview's closed set of colour schemes (light,
// dark, high-contrast) as a go-theme manifest with one variant per scheme,
// and resolves them into renderer configuration.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ManifestName names the single manifest holding every scheme.
const ManifestName = "fhirview"

// Scheme names.
const (
	Light        = "light"
	Dark         = "dark"
	HighContrast = "high-contrast"
)

// Default is used when no scheme is requested.
const Default = Light

// Partial keys understood by the HTML painter.
const (
	PartialPage  = "preview.page"
	PartialError = "preview.error"
)

// ErrUnknownTheme is returned for names outside the closed set.
var ErrUnknownTheme = errors.New("theme: unknown theme")

// Names lists the supported schemes.
func Names() []string {
	return []string{Light, Dark, HighContrast}
}

// Known reports whether name is a supported scheme.
func Known(name string) bool {
	switch normalize(name) {
	case Light, Dark, HighContrast:
		return true
	}
	return false
}

var lightTokens = map[string]string{
	"surface":       "#ffffff",
	"surface-muted": "#f6f8fa",
	"text":          "#1f2328",
	"text-muted":    "#59636e",
	"border":        "#d1d9e0",
	"accent":        "#0969da",
	"badge":         "#ddf4ff",
	"error":         "#d1242f",
	"error-surface": "#ffebe9",
	"warning":       "#9a6700",
	"font-family":   "system-ui, -apple-system, \"Segoe UI\", sans-serif",
	"radius":        "6px",
}

var darkTokens = map[string]string{
	"surface":       "#0d1117",
	"surface-muted": "#151b23",
	"text":          "#f0f6fc",
	"text-muted":    "#9198a1",
	"border":        "#3d444d",
	"accent":        "#4493f8",
	"badge":         "#121d2f",
	"error":         "#f85149",
	"error-surface": "#25171c",
	"warning":       "#d29922",
}

var highContrastTokens = map[string]string{
	"surface":       "#000000",
	"surface-muted": "#000000",
	"text":          "#ffffff",
	"text-muted":    "#ffffff",
	"border":        "#ffffff",
	"accent":        "#ffff00",
	"badge":         "#000000",
	"error":         "#ff6a69",
	"error-surface": "#000000",
	"warning":       "#ffd33d",
	"radius":        "0",
}

// Manifest returns the go-theme manifest describing every scheme. The base
// tokens are the light scheme; dark and high-contrast are variants.
func Manifest() *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    ManifestName,
		Version: "1.0.0",
		Tokens:  copyTokens(lightTokens),
		Templates: map[string]string{
			PartialPage:  "page.tmpl",
			PartialError: "error.tmpl",
		},
		Assets: gotheme.Assets{
			Prefix: "/assets/fhirview",
			Files: map[string]string{
				"stylesheet": "fhirview.css",
			},
		},
		Variants: map[string]gotheme.Variant{
			Dark:         {Tokens: copyTokens(darkTokens)},
			HighContrast: {Tokens: copyTokens(highContrastTokens)},
		},
	}
}

// Selector resolves scheme names into renderer configuration and caches each
// result. It implements go-theme's ThemeSelector.
type Selector struct {
	manifest *gotheme.Manifest

	mu      sync.Mutex
	configs map[string]*gotheme.RendererConfig
}

// NewSelector builds a Selector over Manifest().
func NewSelector() *Selector {
	return &Selector{
		manifest: Manifest(),
		configs:  make(map[string]*gotheme.RendererConfig),
	}
}

// Select resolves a scheme. The scheme may be passed as the theme name or the
// variant; an empty pair selects the default.
func (s *Selector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	scheme := normalize(variant)
	if scheme == "" && normalize(name) != ManifestName {
		scheme = normalize(name)
	}
	if scheme == "" {
		scheme = Default
	}
	if !Known(scheme) {
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownTheme, scheme, strings.Join(Names(), ", "))
	}
	return &gotheme.Selection{
		Theme:    ManifestName,
		Variant:  scheme,
		Manifest: s.manifest,
	}, nil
}

// Config returns the renderer configuration for scheme.
func (s *Selector) Config(scheme string) (*gotheme.RendererConfig, error) {
	selection, err := s.Select("", scheme)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.configs[selection.Variant]; ok {
		return cfg, nil
	}
	cfg := RendererConfig(selection)
	s.configs[selection.Variant] = cfg
	return cfg, nil
}

// RendererConfig flattens a selection into the tokens, CSS variables,
// partials, and asset resolver painters consume. Variant values override
// the base manifest.
func RendererConfig(selection *gotheme.Selection) *gotheme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := copyTokens(manifest.Tokens)
	partials := copyTokens(manifest.Templates)
	assets := gotheme.Assets{Prefix: manifest.Assets.Prefix, Files: copyTokens(manifest.Assets.Files)}

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		mergeInto(tokens, variant.Tokens)
		mergeInto(partials, variant.Templates)
		if variant.Assets.Prefix != "" {
			assets.Prefix = variant.Assets.Prefix
		}
		mergeInto(assets.Files, variant.Assets.Files)
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &gotheme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   tokens,
		Partials: partials,
		CSSVars:  cssVars,
		AssetURL: assetResolver(assets),
	}
}

// CSSVarNames returns the variable names in cfg, sorted.
func CSSVarNames(cfg *gotheme.RendererConfig) []string {
	if cfg == nil {
		return nil
	}
	names := make([]string, 0, len(cfg.CSSVars))
	for name := range cfg.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func assetResolver(assets gotheme.Assets) func(string) string {
	return func(key string) string {
		file, ok := assets.Files[key]
		if !ok || file == "" {
			return ""
		}
		return strings.TrimRight(assets.Prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "highcontrast", "high_contrast", "contrast":
		return HighContrast
	}
	return name
}

func copyTokens(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeInto(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
