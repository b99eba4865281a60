package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()

	p, ok := r.Get("og-image")
	require.True(t, ok)
	assert.Equal(t, 1200, p.Width)
	assert.Equal(t, 630, p.Height)
	assert.Equal(t, "reve-create", p.DefaultModel)

	_, ok = r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistryAllStableOrder(t *testing.T) {
	r := NewRegistry()

	all := r.All()
	require.Len(t, all, 6)

	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{
		"blog-hero", "instagram-post", "linkedin-banner",
		"og-image", "twitter-card", "youtube",
	}, ids)

	assert.Equal(t, all, r.All(), "order must be stable across calls")
}

func TestRegistryMergeOverrides(t *testing.T) {
	r := NewRegistry()
	r.Merge(&Pack{Presets: []Preset{
		{ID: "og-image", Name: "Custom OG", Width: 1600, Height: 840, DefaultModel: "flux-dev"},
		{ID: "podcast-cover", Name: "Podcast Cover", Width: 3000, Height: 3000, DefaultModel: "reve-create"},
	}})

	p, ok := r.Get("og-image")
	require.True(t, ok)
	assert.Equal(t, 1600, p.Width)

	_, ok = r.Get("podcast-cover")
	assert.True(t, ok)
	assert.Len(t, r.All(), 7)
}

func TestResolveDimensions(t *testing.T) {
	p := Preset{ID: "youtube", Width: 1280, Height: 720}

	tests := []struct {
		name      string
		overrideW int
		overrideH int
		wantW     int
		wantH     int
	}{
		{name: "no overrides", wantW: 1280, wantH: 720},
		{name: "both overridden", overrideW: 1, overrideH: 2, wantW: 1, wantH: 2},
		{name: "width only", overrideW: 1920, wantW: 1920, wantH: 720},
		{name: "height only", overrideH: 1080, wantW: 1280, wantH: 1080},
		{name: "negative ignored", overrideW: -5, overrideH: -5, wantW: 1280, wantH: 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ResolveDimensions(p, tt.overrideW, tt.overrideH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestParsePack(t *testing.T) {
	manifest := []byte(`
apiVersion: thumbgen.trinitydev.io/v1
kind: PresetPack
metadata:
  name: marketing
spec:
  version: 1.2.0
  description: marketing surfaces
  presets:
    - id: email-header
      name: Email Header
      width: 600
      height: 200
      default_model: flux-dev
`)

	pack, err := ParsePack(manifest)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", pack.Version)
	assert.Equal(t, "marketing surfaces", pack.Description)
	require.Len(t, pack.Presets, 1)
	assert.Equal(t, "email-header", pack.Presets[0].ID)
	assert.Equal(t, 600, pack.Presets[0].Width)
}

func TestParsePackAcceptsVPrefixedVersion(t *testing.T) {
	manifest := "apiVersion: thumbgen.trinitydev.io/v1\nkind: PresetPack\nspec:\n  version: v2.0.1\n  presets: []\n"
	pack, err := ParsePack([]byte(manifest))
	require.NoError(t, err)
	assert.Equal(t, "v2.0.1", pack.Version)
}

func TestParsePackRejectsBadManifests(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{
			name:     "wrong kind",
			manifest: "apiVersion: thumbgen.trinitydev.io/v1\nkind: BrandGuidelines\nspec:\n  presets: []\n",
		},
		{
			name:     "wrong apiVersion",
			manifest: "apiVersion: v2\nkind: PresetPack\nspec:\n  presets: []\n",
		},
		{
			name:     "missing id",
			manifest: "apiVersion: thumbgen.trinitydev.io/v1\nkind: PresetPack\nspec:\n  presets:\n    - name: No ID\n      width: 100\n      height: 100\n",
		},
		{
			name:     "zero dimensions",
			manifest: "apiVersion: thumbgen.trinitydev.io/v1\nkind: PresetPack\nspec:\n  presets:\n    - id: bad\n      width: 0\n      height: 100\n",
		},
		{
			name:     "partial version",
			manifest: "apiVersion: thumbgen.trinitydev.io/v1\nkind: PresetPack\nspec:\n  version: \"1.0\"\n  presets: []\n",
		},
		{
			name:     "non-numeric version",
			manifest: "apiVersion: thumbgen.trinitydev.io/v1\nkind: PresetPack\nspec:\n  version: latest\n  presets: []\n",
		},
		{
			name:     "not yaml",
			manifest: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePack([]byte(tt.manifest))
			assert.Error(t, err)
		})
	}
}
