package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngFixture encodes a solid-color PNG of the given size.
func pngFixture(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const overlayFixture = `<svg xmlns="http://www.w3.org/2000/svg" width="40" height="20" viewBox="0 0 40 20">
<rect x="0" y="0" width="20" height="20" fill="#ff0000"/>
</svg>`

func TestCompositeProducesTargetDimensions(t *testing.T) {
	c := NewSVGCompositor()
	base := pngFixture(t, 100, 100, color.White)

	out, err := c.Composite(context.Background(), base, overlayFixture, 40, 20, FormatPNG)
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 40, decoded.Bounds().Dx())
	assert.Equal(t, 20, decoded.Bounds().Dy())
}

func TestCompositeAppliesOverlay(t *testing.T) {
	c := NewSVGCompositor()
	base := pngFixture(t, 40, 20, color.White)

	out, err := c.Composite(context.Background(), base, overlayFixture, 40, 20, FormatPNG)
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	r, _, _, _ := decoded.At(5, 10).RGBA()
	assert.Equal(t, uint32(0xffff), r, "left half should be covered by the red overlay rect")

	right := decoded.At(35, 10)
	rr, gg, bb, _ := right.RGBA()
	assert.Equal(t, uint32(0xffff), rr)
	assert.Equal(t, uint32(0xffff), gg)
	assert.Equal(t, uint32(0xffff), bb)
}

func TestCompositeCoverFitCropsBase(t *testing.T) {
	c := NewSVGCompositor()
	// A wide base cropped into a square target must not letterbox.
	base := pngFixture(t, 200, 100, color.RGBA{R: 10, G: 200, B: 30, A: 255})
	empty := `<svg xmlns="http://www.w3.org/2000/svg" width="50" height="50" viewBox="0 0 50 50"></svg>`

	out, err := c.Composite(context.Background(), base, empty, 50, 50, FormatPNG)
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	_, g, _, a := decoded.At(0, 0).RGBA()
	assert.Greater(t, g, uint32(0x9000), "corners must be filled by the cropped base image")
	assert.Equal(t, uint32(0xffff), a)
}

func TestCompositeWebPOutput(t *testing.T) {
	c := NewSVGCompositor()
	base := pngFixture(t, 40, 20, color.White)

	out, err := c.Composite(context.Background(), base, overlayFixture, 40, 20, FormatWebP)
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 40, decoded.Bounds().Dx())
}

func TestCompositeErrors(t *testing.T) {
	c := NewSVGCompositor()
	base := pngFixture(t, 10, 10, color.White)

	t.Run("invalid dimensions", func(t *testing.T) {
		_, err := c.Composite(context.Background(), base, overlayFixture, 0, 20, FormatPNG)
		assert.Error(t, err)
	})

	t.Run("undecodable base image", func(t *testing.T) {
		_, err := c.Composite(context.Background(), []byte("not an image"), overlayFixture, 40, 20, FormatPNG)
		assert.Error(t, err)
	})

	t.Run("malformed svg", func(t *testing.T) {
		_, err := c.Composite(context.Background(), base, "<svg", 40, 20, FormatPNG)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Composite(ctx, base, overlayFixture, 40, 20, FormatPNG)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFormatMIMEType(t *testing.T) {
	assert.Equal(t, MIMETypePNG, FormatPNG.MIMEType())
	assert.Equal(t, MIMETypeWebP, FormatWebP.MIMEType())
	assert.Equal(t, MIMETypePNG, Format("").MIMEType())
}
