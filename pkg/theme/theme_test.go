package theme

import (
	"errors"
	"testing"

	gotheme "github.com/goliatone/go-theme"
)

var _ gotheme.ThemeSelector = (*Selector)(nil)

func TestSelectorResolvesEveryScheme(t *testing.T) {
	t.Parallel()

	selector := NewSelector()
	for _, name := range Names() {
		cfg, err := selector.Config(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if cfg.Theme != ManifestName || cfg.Variant != name {
			t.Fatalf("%s: unexpected selection %s/%s", name, cfg.Theme, cfg.Variant)
		}
		for key := range lightTokens {
			if cfg.CSSVars["--"+key] == "" {
				t.Fatalf("%s: expected css var for %s", name, key)
			}
		}
	}
}

func TestVariantTokensOverrideBase(t *testing.T) {
	t.Parallel()

	selector := NewSelector()
	dark, _ := selector.Config(Dark)
	if dark.Tokens["surface"] != "#0d1117" {
		t.Fatalf("expected dark surface, got %s", dark.Tokens["surface"])
	}
	if dark.Tokens["radius"] != lightTokens["radius"] {
		t.Fatalf("expected base token to carry over, got %s", dark.Tokens["radius"])
	}
	contrast, _ := selector.Config("High_Contrast")
	if contrast.CSSVars["--accent"] != "#ffff00" {
		t.Fatalf("expected high-contrast accent, got %s", contrast.CSSVars["--accent"])
	}
	if got := dark.AssetURL("stylesheet"); got != "/assets/fhirview/fhirview.css" {
		t.Fatalf("unexpected stylesheet url: %s", got)
	}
	if dark.Partials[PartialPage] != "page.tmpl" {
		t.Fatalf("expected page partial, got %+v", dark.Partials)
	}
}

func TestSelectorDefaultsAndErrors(t *testing.T) {
	t.Parallel()

	selector := NewSelector()
	selection, err := selector.Select("", "")
	if err != nil || selection.Variant != Light {
		t.Fatalf("expected light default, got %+v (%v)", selection, err)
	}
	selection, err = selector.Select(Dark, "")
	if err != nil || selection.Variant != Dark {
		t.Fatalf("expected scheme as theme name, got %+v (%v)", selection, err)
	}
	if _, err := selector.Config("sepia"); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}

func TestConfigIsCached(t *testing.T) {
	t.Parallel()

	selector := NewSelector()
	first, _ := selector.Config(Light)
	second, _ := selector.Config(" LIGHT ")
	if first != second {
		t.Fatalf("expected cached config to be reused")
	}
}
