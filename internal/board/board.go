// Package board is the annotation engine facade. A Board owns the viewport,
// the gesture classifier and the ink engines for the page on screen and
// persists every change through a state.Store.
//
// A Board is not safe for concurrent use; drive it from the UI goroutine.
package board

import (
	"image"
	"log"
	"time"

	"DocInk/internal/config"
	"DocInk/internal/export"
	"DocInk/internal/geom"
	"DocInk/internal/gesture"
	"DocInk/internal/ink"
	"DocInk/internal/state"
	"DocInk/internal/viewport"
)

// Board is one annotation surface.
type Board struct {
	cfg   config.Config
	store state.Store

	vp       *viewport.Transform
	nav      *gesture.Navigator
	rec      *ink.Recorder
	lasso    *ink.Lasso
	gestures *gesture.Classifier
	scratch  ink.ScratchParams

	page      int
	pageCount int
	paths     []state.Path
	raster    image.Image
	canvas    geom.Size
	ready     bool

	color string
	width float64

	erased bool

	// OnPageChange is called with the target page when a swipe asks for a
	// page turn. The owner of the document answers with SetPage.
	OnPageChange func(page int)
	// OnChange is called after anything visible changed.
	OnChange func()
}

// New returns a board on page 1 of a one page document.
func New(cfg config.Config, store state.Store) *Board {
	if store == nil {
		store = state.NewBook()
	}
	b := &Board{
		cfg:       cfg,
		store:     store,
		vp:        viewport.New(),
		nav:       gesture.NewNavigator(cfg.Gesture.SwipeDamping, cfg.Gesture.SwipeThreshold),
		page:      1,
		pageCount: 1,
		color:     cfg.Ink.Color,
		width:     cfg.Ink.Width,
		scratch: ink.ScratchParams{
			MinPoints:    cfg.Ink.ScratchMinPoints,
			MaxExtent:    cfg.Ink.ScratchMaxExtent,
			MinReversals: cfg.Ink.ScratchMinReversals,
			Jitter:       cfg.Ink.ScratchJitter,
		},
	}
	b.vp.SetZoomStep(cfg.Viewport.ZoomStep)
	b.rec = ink.NewRecorder(b.color, b.width, b.commit)
	b.lasso = ink.NewLasso(ink.LassoParams{
		Delay:        cfg.Gesture.LongPressDelay.Duration,
		Jitter:       cfg.Gesture.LongPressJitter,
		SelectRadius: cfg.Ink.SelectRadius,
		Padding:      cfg.Ink.SelectionPadding,
	})
	b.gestures = gesture.NewClassifier(&input{b: b}, gesture.Params{
		TapMaxDuration:  cfg.Gesture.TapMaxDuration.Duration,
		TapJitter:       cfg.Gesture.TapJitter,
		DoubleTapWindow: cfg.Gesture.DoubleTapWindow.Duration,
		TouchDraws:      cfg.Gesture.TouchDraws,
	})
	b.paths = store.LoadPaths(b.page)
	return b
}

func (b *Board) changed() {
	if b.OnChange != nil {
		b.OnChange()
	}
}

func (b *Board) save() {
	b.store.SavePaths(b.page, state.ClonePaths(b.paths))
}

func (b *Board) toDoc(screen geom.Point) geom.Point {
	return viewport.ScreenToDocument(screen, b.vp.View(), b.canvas)
}

// HandleEvent feeds one raw input event to the classifier. Input arriving
// before the page has been laid out is dropped.
func (b *Board) HandleEvent(ev gesture.Event) {
	if !b.ready {
		return
	}
	b.gestures.Handle(ev)
	b.changed()
}

// Tick fires a pending long press whose delay has elapsed. When that selects
// ink, the stroke under the press is dropped and the contact that armed it
// does nothing more until it lifts.
func (b *Board) Tick(now time.Time) {
	if !b.lasso.Fire(now, b.paths) {
		return
	}
	b.rec.Cancel()
	b.gestures.Suspend()
	b.changed()
}

// LongPressDeadline returns when Tick should next be called.
func (b *Board) LongPressDeadline() (time.Time, bool) { return b.lasso.Deadline() }

// SetPage shows page n over raster. Readiness is cleared until the next
// PageRendered and any stroke in progress is dropped.
func (b *Board) SetPage(n int, raster image.Image) {
	if n < 1 {
		n = 1
	}
	b.rec.Cancel()
	b.lasso.Clear()
	b.gestures.Reset()
	b.nav.Reset()
	b.ready = false
	b.erased = false

	b.page = n
	if n > b.pageCount {
		b.pageCount = n
	}
	b.raster = raster
	b.canvas = geom.Size{}
	if raster != nil {
		r := raster.Bounds()
		b.canvas = geom.Size{W: float64(r.Dx()), H: float64(r.Dy())}
	}
	b.paths = b.store.LoadPaths(n)
	log.Printf("[INK] Page %d loaded with %d paths", n, len(b.paths))
	b.changed()
}

// PageRendered is called once the page has been laid out in a container of
// the given size. It fits the page and accepts input from then on.
func (b *Board) PageRendered(container geom.Size) {
	b.vp.SetContainer(container)
	b.vp.FitToScreen(b.canvas.W, b.canvas.H, 0, viewport.FitOptions{
		FitToHeight: b.cfg.Viewport.FitToHeight,
		AlignLeft:   b.cfg.Viewport.AlignLeft,
	})
	b.ready = !b.canvas.Empty() && !container.Empty()
	b.changed()
}

// Ready reports whether the board accepts input.
func (b *Board) Ready() bool { return b.ready }

// Page returns the page on screen.
func (b *Board) Page() int { return b.page }

// PageCount returns the number of pages in the document.
func (b *Board) PageCount() int { return b.pageCount }

// SetPageCount sets the number of pages swipes may move between.
func (b *Board) SetPageCount(n int) {
	if n < 1 {
		n = 1
	}
	b.pageCount = n
}

// NextPage requests the following page, if any.
func (b *Board) NextPage() { b.requestPage(b.page + 1) }

// PrevPage requests the preceding page, if any.
func (b *Board) PrevPage() { b.requestPage(b.page - 1) }

func (b *Board) requestPage(n int) {
	if n < 1 || n > b.pageCount || n == b.page {
		return
	}
	if b.OnPageChange != nil {
		b.OnPageChange(n)
	}
}

// Raster returns the page image on screen.
func (b *Board) Raster() image.Image { return b.raster }

// Canvas returns the unzoomed page size in canvas pixels.
func (b *Board) Canvas() geom.Size { return b.canvas }

// View returns the current zoom and pan.
func (b *Board) View() viewport.View { return b.vp.View() }

// Zoom returns the current zoom.
func (b *Board) Zoom() float64 { return b.vp.Zoom() }

// SetZoom clamps and applies z, keeping the pan.
func (b *Board) SetZoom(z float64) {
	b.vp.SetZoom(z)
	b.changed()
}

// ZoomAt zooms to z keeping the document point under anchor in place.
func (b *Board) ZoomAt(z float64, anchor geom.Point) {
	b.vp.ZoomAt(z, anchor)
	b.changed()
}

// ZoomIn zooms in one step around the container center.
func (b *Board) ZoomIn() {
	b.vp.ZoomIn()
	b.changed()
}

// ZoomOut zooms out one step around the container center.
func (b *Board) ZoomOut() {
	b.vp.ZoomOut()
	b.changed()
}

// ResetZoom returns to the fitted zoom and pan.
func (b *Board) ResetZoom() {
	b.vp.Reset()
	b.nav.Reset()
	b.changed()
}

// PanOffset returns the pan in screen pixels.
func (b *Board) PanOffset() geom.Point { return b.vp.Pan() }

// SetPanOffset sets the pan without applying the pan limit.
func (b *Board) SetPanOffset(p geom.Point) {
	b.vp.SetPan(p)
	b.changed()
}

// Overscroll returns the elastic offset drawn on top of the pan.
func (b *Board) Overscroll() geom.Point { return b.vp.Overscroll() }

// SetTool switches the single-contact tool. Any selection is dropped.
func (b *Board) SetTool(t gesture.Tool) {
	b.lasso.Clear()
	b.gestures.SetTool(t)
	b.changed()
}

// Tool returns the single-contact tool.
func (b *Board) Tool() gesture.Tool { return b.gestures.Tool() }

// SetColor sets the pen color for the next stroke.
func (b *Board) SetColor(c string) { b.color = c }

// Color returns the pen color.
func (b *Board) Color() string { return b.color }

// SetStrokeWidth sets the pen width, in page pixels, for the next stroke.
func (b *Board) SetStrokeWidth(w float64) {
	if w > 0 {
		b.width = w
	}
}

// StrokeWidth returns the pen width.
func (b *Board) StrokeWidth() float64 { return b.width }

// Paths returns a copy of the committed paths of the current page.
func (b *Board) Paths() []state.Path { return state.ClonePaths(b.paths) }

// CurrentStroke returns the stroke being drawn, if any.
func (b *Board) CurrentStroke() (state.Path, bool) { return b.rec.Current() }

// Selection returns the lasso selection, if any.
func (b *Board) Selection() (ink.Selection, bool) { return b.lasso.Selection() }

// Undo removes the most recently committed path of the current page. It does
// nothing on an empty page.
func (b *Board) Undo() {
	n := len(b.paths)
	if n == 0 {
		return
	}
	last := b.paths[n-1]
	b.paths = append([]state.Path(nil), b.paths[:n-1]...)
	b.lasso.Forget(last.ID)
	b.save()
	log.Printf("[INK] Undo removed %s from page %d", last.ID, b.page)
	b.changed()
}

// Clear removes every path from the current page.
func (b *Board) Clear() {
	if len(b.paths) == 0 {
		return
	}
	b.paths = nil
	b.lasso.Clear()
	b.save()
	log.Printf("[INK] Cleared page %d", b.page)
	b.changed()
}

// CompositeRaster returns the page raster with the ink drawn over it, or nil
// when no raster is set.
func (b *Board) CompositeRaster() image.Image {
	if out := export.Composite(b.raster, b.paths); out != nil {
		return out
	}
	return nil
}

// CompositeSelection returns the composite cropped to the lasso selection.
func (b *Board) CompositeSelection() (image.Image, bool) {
	sel, ok := b.lasso.Selection()
	if !ok {
		return nil, false
	}
	out := export.CompositeCrop(b.raster, b.paths, sel.Bounds)
	if out == nil {
		return nil, false
	}
	return out, true
}

// commit receives strokes completed by the recorder. A scratch-out removes the
// paths it crosses instead of adding ink.
func (b *Board) commit(p state.Path) {
	if ink.IsScratch(p.Points, b.scratch) {
		kept, removed := ink.ScratchErase(p.Points, b.paths)
		if len(removed) == 0 {
			return
		}
		b.paths = kept
		b.lasso.Forget(removed...)
		b.save()
		log.Printf("[INK] Scratch removed %d paths from page %d", len(removed), b.page)
		return
	}
	b.paths = append(b.paths, p)
	b.save()
}
