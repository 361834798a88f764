package tui

import (
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func TestPaletteColorsAreValidHex(t *testing.T) {
	colors := []lipgloss.Color{
		colorPink, colorRed, colorPeach, colorYellow, colorGreen, colorTeal, colorBlue, colorLavender,
		colorText, colorSubtext1, colorSubtext0, colorOverlay1, colorOverlay0,
		colorSurface2, colorSurface1, colorSurface0, colorBase, colorMantle, colorCrust,
	}
	for _, c := range colors {
		if !hexColorRegex.MatchString(string(c)) {
			t.Errorf("invalid hex color: %q", c)
		}
	}
}

func TestSemanticAliasesMatchPalette(t *testing.T) {
	tests := []struct {
		name  string
		alias lipgloss.Color
		want  lipgloss.Color
	}{
		{"accent", colorAccent, colorPink},
		{"brand", colorBrand, colorPink},
		{"focus", colorFocus, colorLavender},
		{"success", colorSuccess, colorGreen},
		{"error", colorError, colorRed},
		{"warning", colorWarning, colorYellow},
		{"info", colorInfo, colorTeal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.alias != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.alias, tt.want)
			}
		})
	}
}
