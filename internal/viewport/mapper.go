package viewport

import "DocInk/internal/geom"

// ScreenToDocument converts a screen pixel position into normalized document
// coordinates. canvas is the unzoomed page size in canvas pixels. A degenerate
// canvas or zoom returns p unchanged.
func ScreenToDocument(p geom.Point, v View, canvas geom.Size) geom.Point {
	if canvas.Empty() || !(v.Zoom > 0) {
		return p
	}
	c := p.Sub(v.Pan).Scale(1 / v.Zoom)
	return geom.Pt(c.X/canvas.W, c.Y/canvas.H)
}

// DocumentToScreen is the inverse of ScreenToDocument.
func DocumentToScreen(p geom.Point, v View, canvas geom.Size) geom.Point {
	if canvas.Empty() || !(v.Zoom > 0) {
		return p
	}
	return geom.Pt(p.X*canvas.W, p.Y*canvas.H).Scale(v.Zoom).Add(v.Pan)
}

// ScreenLenToDocument converts a screen distance into a normalized distance
// along the page width.
func ScreenLenToDocument(d float64, v View, canvas geom.Size) float64 {
	if canvas.Empty() || !(v.Zoom > 0) {
		return d
	}
	return d / v.Zoom / canvas.W
}
