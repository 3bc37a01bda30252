package state

import (
	"fmt"
	"image/color"
	"strings"

	"DocInk/internal/geom"
)

// Path is a committed ink stroke. Points are normalized to the page, so a path
// renders the same at any zoom level or raster resolution.
type Path struct {
	ID     string       `json:"id" cbor:"id"`
	Color  string       `json:"color" cbor:"color"`
	Width  float64      `json:"stroke" cbor:"stroke"`
	Points []geom.Point `json:"points" cbor:"points"`
}

// Valid reports whether the path has enough points to be drawn.
func (p Path) Valid() bool { return len(p.Points) >= 2 }

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	c := p
	c.Points = append([]geom.Point(nil), p.Points...)
	return c
}

// Bounds returns the bounding box of the path's points.
func (p Path) Bounds() (geom.Rect, bool) { return geom.Bounds(p.Points) }

// ClonePaths deep-copies a page's path list.
func ClonePaths(paths []Path) []Path {
	if paths == nil {
		return nil
	}
	out := make([]Path, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}

var namedColors = map[string]color.NRGBA{
	"black":  {A: 255},
	"red":    {R: 255, A: 255},
	"green":  {G: 255, A: 255},
	"blue":   {B: 255, A: 255},
	"yellow": {R: 255, G: 255, A: 255},
	"white":  {R: 255, G: 255, B: 255, A: 255},
}

// ParseColor understands the named colors used by the toolbar and #rrggbb or
// #rrggbbaa hex strings. Anything else is black.
func ParseColor(s string) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") {
		var r, g, b uint8
		a := uint8(255)
		switch len(s) {
		case 7:
			if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err == nil {
				return color.NRGBA{R: r, G: g, B: b, A: a}
			}
		case 9:
			if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &r, &g, &b, &a); err == nil {
				return color.NRGBA{R: r, G: g, B: b, A: a}
			}
		}
	}
	return namedColors["black"]
}

// ColorString converts c to the string form stored on a Path.
func ColorString(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	for name, v := range namedColors {
		if v == n {
			return name
		}
	}
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
