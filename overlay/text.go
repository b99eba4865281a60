package overlay

import (
	"fmt"
	"strings"
)

// Title layer defaults.
const (
	DefaultTitleBottomOffset     = 0.15
	DefaultTitleMaxWidthFraction = 0.8
	DefaultTitleFontSize         = 48.0
	DefaultTitleBandHeight       = 96.0
	DefaultTitleBandOpacity      = 0.55
)

// Badge layer defaults.
const (
	DefaultBadgeFontSize     = 20.0
	DefaultBadgePadding      = 16.0
	DefaultBadgeCornerRadius = 6.0
	badgeHeight              = 36.0
	badgeCharWidth           = 10.0
	badgeTextPad             = 24.0
)

// Corner identifies a badge anchor.
type Corner string

// Badge anchor positions.
const (
	TopLeft     Corner = "top-left"
	TopRight    Corner = "top-right"
	BottomLeft  Corner = "bottom-left"
	BottomRight Corner = "bottom-right"
)

// Title is a full-width translucent band with horizontally-centered text.
type Title struct {
	Text string

	// BottomOffset places the band center at (1 - BottomOffset) of the
	// canvas height. Default: DefaultTitleBottomOffset.
	BottomOffset float64

	// MaxWidthFraction fits the text to this fraction of the canvas width
	// via SVG textLength. Default: DefaultTitleMaxWidthFraction.
	MaxWidthFraction float64

	FontSize    float64
	TextColor   string
	BandColor   string
	BandHeight  float64
	BandOpacity float64
}

// Badge is a small rounded label anchored at one of the four corners.
// Its background width scales with text length.
type Badge struct {
	Text         string
	Corner       Corner
	Background   string
	TextColor    string
	Padding      float64
	CornerRadius float64
	FontSize     float64
}

func writeTitle(sb *strings.Builder, t *Title, w, h float64) {
	bottomOffset := t.BottomOffset
	if bottomOffset == 0 {
		bottomOffset = DefaultTitleBottomOffset
	}
	maxWidth := t.MaxWidthFraction
	if maxWidth == 0 {
		maxWidth = DefaultTitleMaxWidthFraction
	}
	fontSize := t.FontSize
	if fontSize == 0 {
		fontSize = DefaultTitleFontSize
	}
	bandHeight := t.BandHeight
	if bandHeight == 0 {
		bandHeight = DefaultTitleBandHeight
	}
	bandOpacity := t.BandOpacity
	if bandOpacity == 0 {
		bandOpacity = DefaultTitleBandOpacity
	}
	bandColor := t.BandColor
	if bandColor == "" {
		bandColor = "#000000"
	}
	textColor := t.TextColor
	if textColor == "" {
		textColor = "#ffffff"
	}

	centerY := (1 - bottomOffset) * h
	bandY := centerY - bandHeight/2

	fmt.Fprintf(sb, `<rect x="0" y="%s" width="%s" height="%s" fill="%s" fill-opacity="%s"/>`,
		num(bandY), num(w), num(bandHeight), bandColor, opacityNum(bandOpacity))
	sb.WriteByte('\n')
	fmt.Fprintf(sb, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" `+
		`font-family="sans-serif" font-size="%s" fill="%s" textLength="%s" lengthAdjust="spacing">%s</text>`,
		num(w/2), num(centerY), num(fontSize), textColor, num(maxWidth*w), escapeXML(t.Text))
	sb.WriteByte('\n')
}

func writeBadge(sb *strings.Builder, b Badge, w, h float64) {
	padding := b.Padding
	if padding == 0 {
		padding = DefaultBadgePadding
	}
	radius := b.CornerRadius
	if radius == 0 {
		radius = DefaultBadgeCornerRadius
	}
	fontSize := b.FontSize
	if fontSize == 0 {
		fontSize = DefaultBadgeFontSize
	}
	background := b.Background
	if background == "" {
		background = "#0066cc"
	}
	textColor := b.TextColor
	if textColor == "" {
		textColor = "#ffffff"
	}

	bgWidth := float64(len(b.Text))*badgeCharWidth + badgeTextPad

	var x, y float64
	switch b.Corner {
	case TopRight:
		x, y = w-padding-bgWidth, padding
	case BottomLeft:
		x, y = padding, h-padding-badgeHeight
	case BottomRight:
		x, y = w-padding-bgWidth, h-padding-badgeHeight
	default: // TopLeft
		x, y = padding, padding
	}

	fmt.Fprintf(sb, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"/>`,
		num(x), num(y), num(bgWidth), num(badgeHeight), num(radius), background)
	sb.WriteByte('\n')
	fmt.Fprintf(sb, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" `+
		`font-family="sans-serif" font-size="%s" fill="%s">%s</text>`,
		num(x+bgWidth/2), num(y+badgeHeight/2), num(fontSize), textColor, escapeXML(b.Text))
	sb.WriteByte('\n')
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeXML escapes user-supplied text for embedding in SVG.
func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
