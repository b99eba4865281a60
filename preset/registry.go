// Package preset provides the read-only catalog of thumbnail presets.
//
// A preset bundles canvas dimensions, a default model, and a prompt suffix
// for a common target surface (social share card, video thumbnail, blog
// hero). The built-in catalog is loaded once at startup and never mutated;
// additional presets can be overlaid from YAML PresetPack manifests.
package preset

import "sort"

// Preset is an immutable catalog entry.
type Preset struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Width        int    `yaml:"width" json:"width"`
	Height       int    `yaml:"height" json:"height"`
	AspectRatio  string `yaml:"aspect_ratio" json:"aspect_ratio"`
	DefaultModel string `yaml:"default_model" json:"default_model"`
	PromptSuffix string `yaml:"prompt_suffix" json:"prompt_suffix"`
	UseCase      string `yaml:"use_case" json:"use_case"`
}

// builtins is the static catalog.
var builtins = []Preset{
	{
		ID:           "og-image",
		Name:         "Open Graph Image",
		Width:        1200,
		Height:       630,
		AspectRatio:  "1.91:1",
		DefaultModel: "reve-create",
		PromptSuffix: "clean composition with negative space for a text overlay, professional lighting",
		UseCase:      "social share cards",
	},
	{
		ID:           "youtube",
		Name:         "YouTube Thumbnail",
		Width:        1280,
		Height:       720,
		AspectRatio:  "16:9",
		DefaultModel: "flux-2-pro",
		PromptSuffix: "bold high-contrast composition, eye-catching focal point",
		UseCase:      "video thumbnails",
	},
	{
		ID:           "twitter-card",
		Name:         "Twitter Card",
		Width:        1200,
		Height:       675,
		AspectRatio:  "16:9",
		DefaultModel: "reve-create",
		PromptSuffix: "clean modern composition, legible at small sizes",
		UseCase:      "tweet link cards",
	},
	{
		ID:           "instagram-post",
		Name:         "Instagram Post",
		Width:        1080,
		Height:       1080,
		AspectRatio:  "1:1",
		DefaultModel: "reve-create",
		PromptSuffix: "centered subject, vibrant colors, square crop friendly",
		UseCase:      "feed posts",
	},
	{
		ID:           "blog-hero",
		Name:         "Blog Hero",
		Width:        1920,
		Height:       1080,
		AspectRatio:  "16:9",
		DefaultModel: "flux-pro-1.1",
		PromptSuffix: "wide cinematic composition, muted background suitable behind headline text",
		UseCase:      "article heroes",
	},
	{
		ID:           "linkedin-banner",
		Name:         "LinkedIn Banner",
		Width:        1584,
		Height:       396,
		AspectRatio:  "4:1",
		DefaultModel: "flux-pro-1.1",
		PromptSuffix: "panoramic composition, understated professional style",
		UseCase:      "profile banners",
	},
}

// Registry is the read-only preset catalog.
type Registry struct {
	presets map[string]Preset
}

// NewRegistry returns a registry populated with the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Preset, len(builtins))}
	for _, p := range builtins {
		r.presets[p.ID] = p
	}
	return r
}

// Get returns the preset with the given id, or false when unknown.
func (r *Registry) Get(id string) (Preset, bool) {
	p, ok := r.presets[id]
	return p, ok
}

// All returns every preset in stable id order.
func (r *Registry) All() []Preset {
	ids := make([]string, 0, len(r.presets))
	for id := range r.presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Preset, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.presets[id])
	}
	return out
}

// Merge overlays the presets of a pack onto the registry. Pack entries with
// an id already present override the built-in.
func (r *Registry) Merge(pack *Pack) {
	for _, p := range pack.Presets {
		r.presets[p.ID] = p
	}
}

// ResolveDimensions returns the explicit overrides when both are given,
// otherwise the preset defaults.
func ResolveDimensions(p Preset, overrideW, overrideH int) (int, int) {
	w, h := p.Width, p.Height
	if overrideW > 0 {
		w = overrideW
	}
	if overrideH > 0 {
		h = overrideH
	}
	return w, h
}
