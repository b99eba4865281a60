package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrinityDev369/thumbgen/preset"
)

func TestEnhanceKeepsBasePromptAsPrefix(t *testing.T) {
	e := NewEnhancer(DefaultGuidelines())
	p := &preset.Preset{ID: "youtube", PromptSuffix: "bold high-contrast composition"}

	result := e.Enhance("a mountain sunrise", p)
	assert.True(t, strings.HasPrefix(result, "a mountain sunrise"), result)
}

func TestEnhanceSectionOrder(t *testing.T) {
	e := NewEnhancer(Guidelines{
		ColorPalette:  []string{"deep blue (#0066cc)", "warm white (#fafaf9)"},
		StyleKeywords: []string{"modern", "minimal"},
		AvoidKeywords: []string{"clutter"},
	})
	p := &preset.Preset{ID: "og-image", PromptSuffix: "clean composition"}

	result := e.Enhance("a city skyline", p)
	assert.Equal(t,
		"a city skyline. clean composition. "+
			"Style: modern, minimal. "+
			"Color palette: deep blue (#0066cc) and warm white (#fafaf9). "+
			"Avoid: clutter",
		result)
}

func TestEnhanceTruncatesGuidelineLists(t *testing.T) {
	e := NewEnhancer(Guidelines{
		ColorPalette:  []string{"c1", "c2", "c3", "c4"},
		StyleKeywords: []string{"s1", "s2", "s3", "s4", "s5"},
		AvoidKeywords: []string{"a1", "a2", "a3"},
	})

	result := e.Enhance("base", nil)
	assert.Contains(t, result, "Style: s1, s2, s3")
	assert.NotContains(t, result, "s4")
	assert.Contains(t, result, "Color palette: c1 and c2")
	assert.NotContains(t, result, "c3")
	assert.Contains(t, result, "Avoid: a1, a2")
	assert.NotContains(t, result, "a3")
}

func TestEnhanceEmptyGuidelinesAndPreset(t *testing.T) {
	e := NewEnhancer(Guidelines{})
	assert.Equal(t, "just the prompt", e.Enhance("just the prompt", nil))
}

func TestEnhanceNilPresetSkipsSuffix(t *testing.T) {
	e := NewEnhancer(Guidelines{StyleKeywords: []string{"minimal"}})
	assert.Equal(t, "base. Style: minimal", e.Enhance("base", nil))
}

func TestDefaultGuidelinesNonEmpty(t *testing.T) {
	g := DefaultGuidelines()
	assert.NotEmpty(t, g.ColorPalette)
	assert.NotEmpty(t, g.StyleKeywords)
	assert.NotEmpty(t, g.AvoidKeywords)
}

func TestParseGuidelines(t *testing.T) {
	manifest := []byte(`
apiVersion: thumbgen.trinitydev.io/v1
kind: BrandGuidelines
metadata:
  name: acme-brand
spec:
  color_palette:
    - "forest green (#14532d)"
  style_keywords:
    - organic
    - textured
  avoid_keywords:
    - neon
`)

	g, err := ParseGuidelines(manifest)
	require.NoError(t, err)
	assert.Equal(t, []string{"forest green (#14532d)"}, g.ColorPalette)
	assert.Equal(t, []string{"organic", "textured"}, g.StyleKeywords)
	assert.Equal(t, []string{"neon"}, g.AvoidKeywords)
}

func TestParseGuidelinesRejectsWrongKind(t *testing.T) {
	_, err := ParseGuidelines([]byte("apiVersion: thumbgen.trinitydev.io/v1\nkind: PresetPack\nspec: {}\n"))
	assert.Error(t, err)
}
