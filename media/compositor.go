// Package media composes generated bitmaps with SVG overlays.
//
// The Compositor interface is the seam the pipeline depends on; the default
// implementation rasterizes SVG with oksvg/rasterx and can be swapped for a
// different rasterizer or stubbed in tests.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Format is an output encoding.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// MIME type constants.
const (
	MIMETypePNG  = "image/png"
	MIMETypeWebP = "image/webp"
)

// WebPQuality is the encode quality used for WebP output.
const WebPQuality = 90

// MIMEType returns the MIME type for the format.
func (f Format) MIMEType() string {
	if f == FormatWebP {
		return MIMETypeWebP
	}
	return MIMETypePNG
}

// Compositor overlays SVG content onto a base bitmap at target dimensions.
type Compositor interface {
	// Composite rasterizes overlaySVG at (width, height), resizes the base
	// image to the same dimensions with cover-fit semantics, alpha-composites
	// the overlay on top, and encodes to the requested format.
	Composite(ctx context.Context, baseImage []byte, overlaySVG string, width, height int, format Format) ([]byte, error)
}

// SVGCompositor is the default Compositor backed by oksvg + rasterx.
type SVGCompositor struct{}

// NewSVGCompositor creates the default compositor.
func NewSVGCompositor() *SVGCompositor {
	return &SVGCompositor{}
}

// Composite implements Compositor.
func (c *SVGCompositor) Composite(ctx context.Context, baseImage []byte, overlaySVG string, width, height int, format Format) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("media: target dimensions must be positive, got %dx%d", width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, _, err := image.Decode(bytes.NewReader(baseImage))
	if err != nil {
		return nil, fmt.Errorf("media: failed to decode base image: %w", err)
	}

	overlay, err := rasterizeSVG(overlaySVG, width, height)
	if err != nil {
		return nil, err
	}

	// Cover-fit: preserve aspect ratio, crop to fill the target canvas.
	fitted := imaging.Fill(base, width, height, imaging.Center, imaging.Lanczos)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), fitted, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), overlay, image.Point{}, draw.Over)

	return Encode(canvas, format)
}

// rasterizeSVG renders SVG text into an RGBA image at the given size.
func rasterizeSVG(svg string, width, height int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("media: failed to parse overlay SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return img, nil
}

// Encode serializes an image in the requested format. WebP uses WebPQuality;
// PNG is the default for any other value.
func Encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatWebP:
		if err := webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality}); err != nil {
			return nil, fmt.Errorf("media: webp encode failed: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("media: png encode failed: %w", err)
		}
	}
	return buf.Bytes(), nil
}
