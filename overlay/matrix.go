// Package overlay generates deterministic procedural SVG overlays.
//
// The pattern is an "isotropic vector matrix": an equilateral triangle
// tessellation rotated about the canvas center and clipped so that only
// segments near the four canvas corners are rendered, with stroke opacity
// fading towards the configured corner margin. Optional title and badge text
// layers sit on top of the pattern.
//
// Output is byte-identical for identical inputs. The only stochastic element
// is the per-segment blur trial, driven by a mulberry32 PRNG seeded from
// Options.Seed; see prng.go for the exact algorithm. Varying the seed changes
// which segments are blurred but never which segments are drawn.
package overlay

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Default pattern parameters.
const (
	DefaultSideLength      = 80.0
	DefaultRotationDeg     = 15.0
	DefaultCornerMargin    = 0.25
	DefaultLineWidth       = 1.5
	DefaultOpacity         = 0.5
	DefaultBlurAmount      = 2.0
	DefaultBlurProbability = 0.3
)

// DefaultColors are cycled by triangle family when Options.Colors is empty.
var DefaultColors = []string{"#0066cc", "#475569", "#94a3b8"}

// Options configure the generated overlay.
type Options struct {
	// Width and Height are the canvas dimensions in pixels.
	Width  int
	Height int

	// SideLength is the triangle edge length in pixels.
	SideLength float64

	// RotationDeg rotates the whole pattern about the canvas center.
	RotationDeg float64

	// CornerMargin is a fraction of the canvas diagonal. Segments whose
	// closer endpoint to any corner exceeds this distance are dropped.
	CornerMargin float64

	// Colors are cycled by triangle family.
	Colors []string

	LineWidth float64

	// Opacity is a global multiplier on the per-segment corner opacity.
	Opacity float64

	// BlurAmount is the Gaussian blur stdDeviation applied to segments that
	// win the per-segment Bernoulli trial with probability BlurProbability.
	BlurAmount      float64
	BlurProbability float64

	// Seed drives the blur trials.
	Seed uint32

	// Title is an optional text band layer.
	Title *Title

	// Badges are optional corner text layers.
	Badges []Badge
}

// DefaultOptions returns pattern defaults for the given canvas.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:           width,
		Height:          height,
		SideLength:      DefaultSideLength,
		RotationDeg:     DefaultRotationDeg,
		CornerMargin:    DefaultCornerMargin,
		Colors:          DefaultColors,
		LineWidth:       DefaultLineWidth,
		Opacity:         DefaultOpacity,
		BlurAmount:      DefaultBlurAmount,
		BlurProbability: DefaultBlurProbability,
	}
}

// segment is a line segment tagged with its direction family (0 horizontal,
// 1 and 2 the two oblique directions of the triangulation).
type segment struct {
	x1, y1, x2, y2 float64
	family         int
}

// Generate renders the overlay as SVG text.
func Generate(opts Options) (string, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return "", errors.New("overlay: canvas dimensions must be positive")
	}
	if opts.SideLength <= 0 {
		return "", errors.New("overlay: side length must be positive")
	}
	if len(opts.Colors) == 0 {
		opts.Colors = DefaultColors
	}

	w := float64(opts.Width)
	h := float64(opts.Height)
	diagonal := math.Hypot(w, h)
	maxDist := opts.CornerMargin * diagonal

	segments := tessellate(w, h, opts.SideLength)
	rotate(segments, w/2, h/2, opts.RotationDeg)

	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}
	rng := newMulberry32(opts.Seed)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		opts.Width, opts.Height, opts.Width, opts.Height)
	sb.WriteByte('\n')

	// Two passes: segments are retained and blur-rolled first so the filter
	// def is only emitted when at least one segment uses it. The PRNG draw
	// order is the retained-segment order, which is part of the stable
	// output contract.
	type stroke struct {
		seg     segment
		opacity float64
		blurred bool
	}
	strokes := make([]stroke, 0, len(segments))
	anyBlur := false
	for _, seg := range segments {
		d := cornerDistance(seg, corners)
		if maxDist <= 0 || d > maxDist {
			continue
		}
		blurred := rng.Float64() < opts.BlurProbability
		if blurred {
			anyBlur = true
		}
		strokes = append(strokes, stroke{
			seg:     seg,
			opacity: opts.Opacity * (1 - d/maxDist),
			blurred: blurred,
		})
	}

	if anyBlur && opts.BlurAmount > 0 {
		fmt.Fprintf(&sb, `<defs><filter id="blur"><feGaussianBlur stdDeviation="%s"/></filter></defs>`,
			num(opts.BlurAmount))
		sb.WriteByte('\n')
	}

	for _, s := range strokes {
		color := opts.Colors[s.seg.family%len(opts.Colors)]
		filter := ""
		if s.blurred && opts.BlurAmount > 0 {
			filter = ` filter="url(#blur)"`
		}
		fmt.Fprintf(&sb, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s"%s/>`,
			num(s.seg.x1), num(s.seg.y1), num(s.seg.x2), num(s.seg.y2),
			color, num(opts.LineWidth), opacityNum(s.opacity), filter)
		sb.WriteByte('\n')
	}

	if opts.Title != nil {
		writeTitle(&sb, opts.Title, w, h)
	}
	for _, badge := range opts.Badges {
		writeBadge(&sb, badge, w, h)
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

// tessellate generates the three segment families over a rectangle extending
// 50% beyond the canvas in every direction. Family 0 is horizontal with
// vertical spacing side*sqrt(3)/2; families 1 and 2 are the two oblique
// directions, offset by side/2 on alternate rows.
func tessellate(w, h, side float64) []segment {
	rowHeight := side * math.Sqrt(3) / 2
	minX, maxX := -0.5*w, 1.5*w
	minY, maxY := -0.5*h, 1.5*h

	var segments []segment
	row := 0
	for y := minY; y <= maxY; y += rowHeight {
		offset := 0.0
		if row%2 == 1 {
			offset = side / 2
		}
		for x := minX + offset; x <= maxX; x += side {
			segments = append(segments,
				segment{x, y, x + side, y, 0},
				segment{x, y, x - side/2, y + rowHeight, 1},
				segment{x, y, x + side/2, y + rowHeight, 2},
			)
		}
		row++
	}
	return segments
}

// rotate rotates every endpoint about (cx, cy) by deg degrees.
func rotate(segments []segment, cx, cy, deg float64) {
	if deg == 0 {
		return
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	for i := range segments {
		segments[i].x1, segments[i].y1 = rotatePoint(segments[i].x1, segments[i].y1, cx, cy, sin, cos)
		segments[i].x2, segments[i].y2 = rotatePoint(segments[i].x2, segments[i].y2, cx, cy, sin, cos)
	}
}

func rotatePoint(x, y, cx, cy, sin, cos float64) (float64, float64) {
	dx, dy := x-cx, y-cy
	return cx + dx*cos - dy*sin, cy + dx*sin + dy*cos
}

// cornerDistance returns the minimum Euclidean distance from the segment's
// endpoints to the four canvas corners.
func cornerDistance(seg segment, corners [4][2]float64) float64 {
	min := math.MaxFloat64
	for _, c := range corners {
		for _, p := range [2][2]float64{{seg.x1, seg.y1}, {seg.x2, seg.y2}} {
			if d := math.Hypot(p[0]-c[0], p[1]-c[1]); d < min {
				min = d
			}
		}
	}
	return min
}

// num formats a coordinate with two decimal places. Fixed-width formatting
// keeps output byte-identical across platforms.
func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// opacityNum formats an opacity with three decimal places.
func opacityNum(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
