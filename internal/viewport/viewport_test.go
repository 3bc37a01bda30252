package viewport

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DocInk/internal/geom"
)

func fitted(t *testing.T, opts FitOptions) *Transform {
	t.Helper()
	tr := New()
	tr.SetContainer(geom.Size{W: 800, H: 600})
	tr.FitToScreen(1000, 1200, 0, opts)
	return tr
}

func TestFitToScreenBothDimensions(t *testing.T) {
	tr := fitted(t, FitOptions{})
	assert.InDelta(t, 0.5, tr.Zoom(), 1e-12)
	assert.Equal(t, tr.Zoom(), tr.MinZoom())
	// 500 px wide page centered in 800 px.
	assert.InDelta(t, 150, tr.Pan().X, 1e-9)
	assert.InDelta(t, 0, tr.Pan().Y, 1e-9)
}

func TestFitToScreenSplitHeightOnly(t *testing.T) {
	tr := New()
	tr.SetContainer(geom.Size{W: 300, H: 600})
	tr.FitToScreen(1000, 1200, 600, FitOptions{FitToHeight: true, AlignLeft: true})
	assert.InDelta(t, 0.5, tr.Zoom(), 1e-12)
	assert.Equal(t, 0.0, tr.Pan().X)
}

func TestFitNeverZoomsAboveOne(t *testing.T) {
	tr := New()
	tr.SetContainer(geom.Size{W: 800, H: 600})
	tr.FitToScreen(100, 100, 0, FitOptions{})
	assert.Equal(t, 1.0, tr.Zoom())
}

func TestFitDegenerateIsNoop(t *testing.T) {
	tr := New()
	tr.SetContainer(geom.Size{W: 800, H: 600})
	tr.FitToScreen(0, 100, 0, FitOptions{})
	tr.FitToScreen(100, -1, 0, FitOptions{})
	assert.Equal(t, 1.0, tr.Zoom())
	assert.True(t, tr.Content().Empty())
}

func TestZoomAlwaysClamped(t *testing.T) {
	tr := fitted(t, FitOptions{})
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		z := tr.Zoom() * (0.2 + rng.Float64()*3)
		if i%3 == 0 {
			tr.ZoomAt(z, geom.Pt(rng.Float64()*800, rng.Float64()*600))
		} else {
			tr.SetZoom(z)
		}
		require.GreaterOrEqual(t, tr.Zoom(), tr.MinZoom())
		require.LessOrEqual(t, tr.Zoom(), MaxZoom)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	tr := fitted(t, FitOptions{})
	canvas := tr.Content()
	anchor := geom.Pt(400, 300)
	before := ScreenToDocument(anchor, tr.View(), canvas)
	tr.ZoomAt(2, anchor)
	after := ScreenToDocument(anchor, tr.View(), canvas)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestApplyPanLimit(t *testing.T) {
	tr := fitted(t, FitOptions{})
	tr.SetZoom(1)
	// 1000x1200 page in 800x600 container.
	assert.Equal(t, geom.Pt(0, 0), tr.ApplyPanLimit(geom.Pt(50, 80), 1))
	assert.Equal(t, geom.Pt(-200, -600), tr.ApplyPanLimit(geom.Pt(-900, -900), 1))
	assert.Equal(t, geom.Pt(-10, -20), tr.ApplyPanLimit(geom.Pt(-10, -20), 1))

	// at fit zoom height fits exactly: vertical pan is locked.
	assert.Equal(t, 0.0, tr.ApplyPanLimit(geom.Pt(0, 120), 0.5).Y)

	rejected := tr.PanLimited(geom.Pt(30, -700))
	assert.Equal(t, geom.Pt(0, -600), tr.Pan())
	assert.Equal(t, geom.Pt(30, -100), rejected)
}

func TestResetReturnsToFit(t *testing.T) {
	tr := fitted(t, FitOptions{})
	fitPan := tr.Pan()
	tr.ZoomIn()
	tr.ZoomIn()
	assert.Greater(t, tr.Zoom(), 0.5)
	tr.Reset()
	assert.Equal(t, 0.5, tr.Zoom())
	assert.Equal(t, fitPan, tr.Pan())

	tr.ZoomOut()
	assert.Equal(t, 0.5, tr.Zoom())
}

func TestMapperRoundTrip(t *testing.T) {
	canvas := geom.Size{W: 1000, H: 1400}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		v := View{Zoom: 0.2 + rng.Float64()*4.8, Pan: geom.Pt(rng.Float64()*400-200, rng.Float64()*400-200)}
		p := geom.Pt(rng.Float64()*800, rng.Float64()*600)
		back := DocumentToScreen(ScreenToDocument(p, v, canvas), v, canvas)
		require.InDelta(t, p.X, back.X, 1e-9)
		require.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestMapperDegenerate(t *testing.T) {
	p := geom.Pt(12, 34)
	v := View{Zoom: 2}
	assert.Equal(t, p, ScreenToDocument(p, v, geom.Size{}))
	assert.Equal(t, p, DocumentToScreen(p, v, geom.Size{W: 0, H: 10}))
	assert.Equal(t, p, ScreenToDocument(p, View{}, geom.Size{W: 10, H: 10}))
	assert.Equal(t, 5.0, ScreenLenToDocument(5, v, geom.Size{}))
}

func TestMapperKnownValue(t *testing.T) {
	v := View{Zoom: 2, Pan: geom.Pt(100, 50)}
	canvas := geom.Size{W: 500, H: 1000}
	assert.Equal(t, geom.Pt(0.5, 0.25), ScreenToDocument(geom.Pt(600, 550), v, canvas))
	assert.Equal(t, 0.01, ScreenLenToDocument(10, v, canvas))
}
