// Package prompt implements prompt enhancement for thumbnail generation.
//
// The enhancer is a pure function: it combines the user prompt, the preset's
// prompt suffix, and the configured brand guidelines into the final prompt
// sent to a provider. Enhancement is deterministic and idempotent in the
// sense that enhancing an already-enhanced prompt simply appends another
// copy of the guideline sections, so callers must enhance at most once.
package prompt

import (
	"strings"

	"github.com/TrinityDev369/thumbgen/preset"
)

// Section limits applied when folding guidelines into a prompt.
const (
	maxStyleKeywords  = 3
	maxPaletteEntries = 2
	maxAvoidKeywords  = 2
)

// Guidelines are the brand constraints folded into every enhanced prompt.
// They are configured at startup and read-only afterwards.
type Guidelines struct {
	// ColorPalette entries are human-readable, e.g. "deep blue (#0066cc)".
	ColorPalette []string `yaml:"color_palette" json:"color_palette"`

	StyleKeywords []string `yaml:"style_keywords" json:"style_keywords"`
	AvoidKeywords []string `yaml:"avoid_keywords" json:"avoid_keywords"`
}

// DefaultGuidelines returns the house style used when no brand is configured.
func DefaultGuidelines() Guidelines {
	return Guidelines{
		ColorPalette: []string{
			"deep blue (#0066cc)",
			"slate gray (#475569)",
			"warm white (#fafaf9)",
		},
		StyleKeywords: []string{"modern", "minimal", "high contrast", "clean"},
		AvoidKeywords: []string{"clutter", "watermarks", "text artifacts"},
	}
}

// Enhancer combines prompts with brand guidelines.
type Enhancer struct {
	guidelines Guidelines
}

// NewEnhancer creates an Enhancer with the given guidelines.
func NewEnhancer(g Guidelines) *Enhancer {
	return &Enhancer{guidelines: g}
}

// Guidelines returns the configured brand guidelines.
func (e *Enhancer) Guidelines() Guidelines {
	return e.guidelines
}

// Enhance builds the final prompt from the base prompt, the preset's suffix
// (when a preset is given), and the brand guidelines. Sections are joined
// with ". "; empty guideline lists contribute nothing.
func (e *Enhancer) Enhance(basePrompt string, p *preset.Preset) string {
	sections := []string{basePrompt}

	if p != nil && p.PromptSuffix != "" {
		sections = append(sections, p.PromptSuffix)
	}

	if keywords := head(e.guidelines.StyleKeywords, maxStyleKeywords); len(keywords) > 0 {
		sections = append(sections, "Style: "+strings.Join(keywords, ", "))
	}

	if palette := head(e.guidelines.ColorPalette, maxPaletteEntries); len(palette) > 0 {
		sections = append(sections, "Color palette: "+strings.Join(palette, " and "))
	}

	if avoid := head(e.guidelines.AvoidKeywords, maxAvoidKeywords); len(avoid) > 0 {
		sections = append(sections, "Avoid: "+strings.Join(avoid, ", "))
	}

	return strings.Join(sections, ". ")
}

func head(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
