package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	opts := DefaultOptions(1280, 720)
	opts.Seed = 42

	first, err := Generate(opts)
	require.NoError(t, err)
	second, err := Generate(opts)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must produce byte-identical SVG")
}

// stripBlur removes the blur defs and per-line filter attributes so that two
// outputs can be compared modulo the stochastic blur assignment.
func stripBlur(svg string) string {
	var kept []string
	for _, line := range strings.Split(svg, "\n") {
		if strings.HasPrefix(line, "<defs>") {
			continue
		}
		kept = append(kept, strings.ReplaceAll(line, ` filter="url(#blur)"`, ""))
	}
	return strings.Join(kept, "\n")
}

func TestSeedChangesBlurOnly(t *testing.T) {
	opts := DefaultOptions(1280, 720)

	opts.Seed = 1
	first, err := Generate(opts)
	require.NoError(t, err)

	opts.Seed = 2
	second, err := Generate(opts)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "different seeds should blur different segments")
	assert.Equal(t, stripBlur(first), stripBlur(second),
		"seed must change which segments are blurred, never which are drawn")
}

func TestGenerateStructure(t *testing.T) {
	svg, err := Generate(DefaultOptions(1280, 720))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="1280" height="720"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Greater(t, strings.Count(svg, "<line "), 0, "corner regions must contain segments")

	for _, color := range DefaultColors {
		assert.Contains(t, svg, color)
	}
}

func TestGenerateZeroBlurProbabilityOmitsDefs(t *testing.T) {
	opts := DefaultOptions(800, 600)
	opts.BlurProbability = 0

	svg, err := Generate(opts)
	require.NoError(t, err)
	assert.NotContains(t, svg, "<defs>")
	assert.NotContains(t, svg, "filter=")
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "zero width", opts: Options{Width: 0, Height: 100, SideLength: 80}},
		{name: "negative height", opts: Options{Width: 100, Height: -1, SideLength: 80}},
		{name: "zero side length", opts: Options{Width: 100, Height: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestGenerateTitleBand(t *testing.T) {
	opts := DefaultOptions(1200, 630)
	opts.Title = &Title{Text: "Shipping Fast & Safe"}

	svg, err := Generate(opts)
	require.NoError(t, err)

	assert.Contains(t, svg, "Shipping Fast &amp; Safe", "title text must be XML-escaped")
	assert.Contains(t, svg, `text-anchor="middle"`)
	assert.Contains(t, svg, `lengthAdjust="spacing"`)
	// Band center sits at (1 - 0.15) * 630 = 535.50.
	assert.Contains(t, svg, `y="535.50"`)
}

func TestGenerateBadgeCorners(t *testing.T) {
	opts := DefaultOptions(1000, 500)
	opts.Badges = []Badge{
		{Text: "NEW", Corner: TopLeft},
		{Text: "NEW", Corner: BottomRight},
	}

	svg, err := Generate(opts)
	require.NoError(t, err)

	// TopLeft badge rect starts at the default padding.
	assert.Contains(t, svg, `<rect x="16.00" y="16.00"`)
	// bgWidth = 3*10 + 24 = 54; BottomRight x = 1000 - 16 - 54 = 930.
	assert.Contains(t, svg, `<rect x="930.00" y="448.00"`)
	assert.Contains(t, svg, `rx="6.00"`)
}

func TestMulberry32Sequence(t *testing.T) {
	a := newMulberry32(7)
	b := newMulberry32(7)
	c := newMulberry32(8)

	var sameSeed, otherSeed []float64
	for i := 0; i < 16; i++ {
		va := a.Float64()
		assert.GreaterOrEqual(t, va, 0.0)
		assert.Less(t, va, 1.0)
		assert.Equal(t, va, b.Float64(), "same seed must replay the same sequence")
		sameSeed = append(sameSeed, va)
		otherSeed = append(otherSeed, c.Float64())
	}
	assert.NotEqual(t, sameSeed, otherSeed)
}
