// Package viewport owns zoom, pan and overscroll for one page and maps points
// between screen pixels and normalized document space.
package viewport

import (
	"math"

	"DocInk/internal/geom"
)

const (
	// MaxZoom is the upper zoom bound.
	MaxZoom = 5.0
	// defaultMinZoom is the floor used before the first fit.
	defaultMinZoom = 0.1
	// DefaultZoomStep is the factor applied by ZoomIn and ZoomOut.
	DefaultZoomStep = 1.25
)

// FitOptions selects how FitToScreen places the page.
type FitOptions struct {
	// FitToHeight together with AlignLeft fits the page height only and
	// pins it to the left edge, for split layouts.
	FitToHeight bool
	AlignLeft   bool
}

func (o FitOptions) split() bool { return o.FitToHeight && o.AlignLeft }

// View is a snapshot of the zoom and pan used for coordinate mapping.
type View struct {
	Zoom float64
	Pan  geom.Point
}

// Transform is the viewport state of the visible page. The zero value is not
// usable; call New.
type Transform struct {
	zoom       float64
	minZoom    float64
	pan        geom.Point
	overscroll geom.Point

	container geom.Size
	content   geom.Size
	opts      FitOptions
	step      float64

	fitZoom float64
	fitPan  geom.Point
}

// New returns a Transform at zoom 1 with no content.
func New() *Transform {
	return &Transform{
		zoom:    1,
		minZoom: defaultMinZoom,
		step:    DefaultZoomStep,
		fitZoom: 1,
	}
}

// SetZoomStep changes the ZoomIn/ZoomOut factor. Values ≤ 1 are ignored.
func (t *Transform) SetZoomStep(step float64) {
	if step > 1 {
		t.step = step
	}
}

// SetContainer records the size of the visible area in screen pixels.
func (t *Transform) SetContainer(s geom.Size) { t.container = s }

// Container returns the visible area size.
func (t *Transform) Container() geom.Size { return t.container }

// Content returns the unzoomed page size in canvas pixels.
func (t *Transform) Content() geom.Size { return t.content }

// Zoom returns the current zoom.
func (t *Transform) Zoom() float64 { return t.zoom }

// MinZoom returns the dynamic zoom floor.
func (t *Transform) MinZoom() float64 { return t.minZoom }

// Pan returns the pan offset in screen pixels.
func (t *Transform) Pan() geom.Point { return t.pan }

// Overscroll returns the elastic overscroll offset.
func (t *Transform) Overscroll() geom.Point { return t.overscroll }

// SetOverscroll replaces the overscroll offset.
func (t *Transform) SetOverscroll(p geom.Point) { t.overscroll = p }

// View returns the zoom and pan as a mapping snapshot.
func (t *Transform) View() View { return View{Zoom: t.zoom, Pan: t.pan} }

// FitToScreen picks the largest zoom not above 1 at which the page fits the
// container and makes it the zoom floor. maxHeight bounds the usable height;
// a non-positive value means the container height.
func (t *Transform) FitToScreen(contentW, contentH, maxHeight float64, opts FitOptions) {
	if !(contentW > 0 && contentH > 0) {
		return
	}
	if maxHeight <= 0 {
		maxHeight = t.container.H
	}
	if maxHeight <= 0 {
		return
	}
	t.content = geom.Size{W: contentW, H: contentH}
	t.opts = opts

	zoom := math.Min(1, maxHeight/contentH)
	if !opts.split() && t.container.W > 0 {
		zoom = math.Min(zoom, t.container.W/contentW)
	}
	t.minZoom = zoom
	t.zoom = zoom
	t.overscroll = geom.Point{}
	t.pan = t.ApplyPanLimit(geom.Point{}, zoom)

	t.fitZoom = t.zoom
	t.fitPan = t.pan
}

// Reset returns to the zoom and pan chosen by the last fit.
func (t *Transform) Reset() {
	t.zoom = t.fitZoom
	t.pan = t.fitPan
	t.overscroll = geom.Point{}
}

// SetZoom clamps z into [MinZoom, MaxZoom] and applies it without moving the
// pan. It returns the applied zoom.
func (t *Transform) SetZoom(z float64) float64 {
	t.zoom = t.clampZoom(z)
	return t.zoom
}

func (t *Transform) clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return t.zoom
	}
	return math.Max(t.minZoom, math.Min(MaxZoom, z))
}

// ZoomAt sets the zoom so that the document point under anchor stays under
// anchor, then limits the pan.
func (t *Transform) ZoomAt(z float64, anchor geom.Point) {
	old := t.zoom
	t.zoom = t.clampZoom(z)
	if old > 0 {
		t.pan = AnchorPan(anchor, t.pan, old, anchor, t.zoom)
	}
	t.pan = t.ApplyPanLimit(t.pan, t.zoom)
}

// ZoomIn zooms one step around the container center.
func (t *Transform) ZoomIn() { t.ZoomAt(t.zoom*t.step, t.center()) }

// ZoomOut zooms out one step around the container center.
func (t *Transform) ZoomOut() { t.ZoomAt(t.zoom/t.step, t.center()) }

func (t *Transform) center() geom.Point {
	return geom.Pt(t.container.W/2, t.container.H/2)
}

// SetPan sets the pan offset verbatim. External pan bridges use this, so no
// limit is applied.
func (t *Transform) SetPan(p geom.Point) { t.pan = p }

// ApplyPanLimit returns the legal pan nearest to candidate for the given zoom.
// On an axis where the scaled page fits the container the pan is locked:
// centered, or at 0 horizontally when left aligned. Otherwise the page edge
// may not come inside the container edge.
func (t *Transform) ApplyPanLimit(candidate geom.Point, zoom float64) geom.Point {
	if t.content.Empty() || t.container.Empty() || !(zoom > 0) {
		return candidate
	}
	return geom.Point{
		X: limitAxis(candidate.X, t.content.W*zoom, t.container.W, t.opts.AlignLeft),
		Y: limitAxis(candidate.Y, t.content.H*zoom, t.container.H, false),
	}
}

// PanLimited applies ApplyPanLimit at the current zoom, stores the result and
// returns the rejected part of the candidate.
func (t *Transform) PanLimited(candidate geom.Point) (rejected geom.Point) {
	limited := t.ApplyPanLimit(candidate, t.zoom)
	t.pan = limited
	return candidate.Sub(limited)
}

func limitAxis(v, scaled, container float64, alignStart bool) float64 {
	if scaled <= container {
		if alignStart {
			return 0
		}
		return (container - scaled) / 2
	}
	return math.Max(container-scaled, math.Min(0, v))
}

// AnchorPan returns the pan that keeps the document point which was under
// originAnchor at (originPan, originZoom) beneath anchor at zoom.
func AnchorPan(originAnchor, originPan geom.Point, originZoom float64, anchor geom.Point, zoom float64) geom.Point {
	if !(originZoom > 0) {
		return originPan
	}
	return anchor.Sub(originAnchor.Sub(originPan).Scale(zoom / originZoom))
}
