package ui

import (
	"image"
	"image/color"
	"time"

	"DocInk/internal/board"
	"DocInk/internal/geom"
	"DocInk/internal/gesture"
	"DocInk/internal/state"
	"DocInk/internal/viewport"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	pointerID = 1
	touchID   = 1
)

// InkWidget shows a board page and feeds mouse, pen and touch input to it.
type InkWidget struct {
	widget.BaseWidget
	board *board.Board

	pointerDown bool
	touchDown   bool
	touchLast   fyne.Position
	timer       *time.Timer
	timerAt     time.Time

	// OnChange is called on the UI goroutine after the board changed.
	OnChange func()
	// Now is the clock used to stamp events.
	Now func() time.Time
}

var _ fyne.Widget = (*InkWidget)(nil)
var _ fyne.Draggable = (*InkWidget)(nil)
var _ fyne.Scrollable = (*InkWidget)(nil)
var _ desktop.Mouseable = (*InkWidget)(nil)

// NewInkWidget returns a widget driving b. It takes over b.OnChange.
func NewInkWidget(b *board.Board) *InkWidget {
	w := &InkWidget{board: b, Now: time.Now}
	b.OnChange = w.changed
	w.ExtendBaseWidget(w)
	return w
}

// Board returns the board behind the widget.
func (w *InkWidget) Board() *board.Board { return w.board }

// ShowPage displays page n over raster. Input is accepted again once the page
// has been laid out.
func (w *InkWidget) ShowPage(n int, raster image.Image) {
	w.pointerDown, w.touchDown = false, false
	w.board.SetPage(n, raster)
	w.Refresh()
}

func (w *InkWidget) changed() {
	w.Refresh()
	if w.OnChange != nil {
		w.OnChange()
	}
}

func (w *InkWidget) send(ch gesture.Channel, id int, ph gesture.Phase, pos fyne.Position, modifier bool) {
	w.board.HandleEvent(gesture.Event{
		Channel:  ch,
		ID:       id,
		Phase:    ph,
		Pos:      toPoint(pos),
		Time:     w.Now(),
		Modifier: modifier,
	})
	w.scheduleTick()
}

// scheduleTick arms a timer for the board's pending long press.
func (w *InkWidget) scheduleTick() {
	at, ok := w.board.LongPressDeadline()
	if !ok {
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		return
	}
	if w.timer != nil && at.Equal(w.timerAt) {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerAt = at
	w.timer = time.AfterFunc(time.Until(at), func() {
		fyne.Do(func() {
			w.timer = nil
			w.board.Tick(w.Now())
		})
	})
}

func toPoint(p fyne.Position) geom.Point { return geom.Pt(float64(p.X), float64(p.Y)) }

func toPos(p geom.Point) fyne.Position { return fyne.NewPos(float32(p.X), float32(p.Y)) }

func (w *InkWidget) MouseDown(e *desktop.MouseEvent) {
	if w.touchDown {
		return
	}
	w.pointerDown = true
	pan := e.Button != desktop.MouseButtonPrimary || e.Modifier&fyne.KeyModifierShift != 0
	w.send(gesture.ChannelPointer, pointerID, gesture.PhaseDown, e.Position, pan)
}

func (w *InkWidget) MouseUp(e *desktop.MouseEvent) {
	if !w.pointerDown {
		return
	}
	w.pointerDown = false
	w.send(gesture.ChannelPointer, pointerID, gesture.PhaseUp, e.Position, false)
}

// Dragged moves the pointer contact. Without a preceding MouseDown, as on
// touch screens, the drag itself is the contact.
func (w *InkWidget) Dragged(e *fyne.DragEvent) {
	if w.pointerDown {
		w.send(gesture.ChannelPointer, pointerID, gesture.PhaseMove, e.Position, false)
		return
	}
	if !w.touchDown {
		w.touchDown = true
		start := e.Position.Subtract(e.Dragged)
		w.send(gesture.ChannelTouch, touchID, gesture.PhaseDown, start, false)
	}
	w.touchLast = e.Position
	w.send(gesture.ChannelTouch, touchID, gesture.PhaseMove, e.Position, false)
}

func (w *InkWidget) DragEnd() {
	if !w.touchDown {
		return
	}
	w.touchDown = false
	w.send(gesture.ChannelTouch, touchID, gesture.PhaseUp, w.touchLast, false)
}

// Scrolled zooms around the cursor by a tenth per wheel notch.
func (w *InkWidget) Scrolled(e *fyne.ScrollEvent) {
	if e.Scrolled.DY == 0 {
		return
	}
	z := w.board.Zoom() * 1.1
	if e.Scrolled.DY < 0 {
		z = w.board.Zoom() / 1.1
	}
	w.board.ZoomAt(z, toPoint(e.Position))
}

func (w *InkWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &inkRenderer{w: w}
	r.background = canvas.NewRectangle(color.NRGBA{R: 90, G: 90, B: 96, A: 255})
	r.build()
	return r
}

type inkRenderer struct {
	w          *InkWidget
	background *canvas.Rectangle
	page       *canvas.Image
	pageSrc    image.Image
	objects    []fyne.CanvasObject
	size       fyne.Size
}

func (r *inkRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	if size != r.size {
		r.size = size
		r.w.board.PageRendered(geom.Size{W: float64(size.Width), H: float64(size.Height)})
	}
	r.build()
}

func (r *inkRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *inkRenderer) Refresh() {
	b := r.w.board
	if !b.Ready() && r.size.Width > 0 && r.size.Height > 0 && !b.Canvas().Empty() {
		// First draw after SetPage: the page is laid out at the current size.
		b.PageRendered(geom.Size{W: float64(r.size.Width), H: float64(r.size.Height)})
	}
	r.build()
	canvas.Refresh(r.w)
}

func (r *inkRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *inkRenderer) Destroy() {
	if r.w.timer != nil {
		r.w.timer.Stop()
	}
}

// build lays out the page image, the committed ink, the live stroke and the
// selection box in screen space.
func (r *inkRenderer) build() {
	b := r.w.board
	v := b.View()
	v.Pan = v.Pan.Add(b.Overscroll())
	c := b.Canvas()

	objects := []fyne.CanvasObject{r.background}
	if src := b.Raster(); src != nil {
		if src != r.pageSrc {
			r.page = canvas.NewImageFromImage(src)
			r.page.FillMode = canvas.ImageFillStretch
			r.pageSrc = src
		}
		r.page.Move(toPos(v.Pan))
		r.page.Resize(fyne.NewSize(float32(c.W*v.Zoom), float32(c.H*v.Zoom)))
		objects = append(objects, r.page)
	}

	paths := b.Paths()
	if cur, ok := b.CurrentStroke(); ok {
		paths = append(paths, cur)
	}
	for _, p := range paths {
		objects = append(objects, strokeLines(p, v, c)...)
	}

	if sel, ok := b.Selection(); ok {
		lo := viewport.DocumentToScreen(sel.Bounds.Min, v, c)
		hi := viewport.DocumentToScreen(sel.Bounds.Max, v, c)
		box := canvas.NewRectangle(color.NRGBA{R: 30, G: 120, B: 255, A: 24})
		box.StrokeColor = color.NRGBA{R: 30, G: 120, B: 255, A: 200}
		box.StrokeWidth = 1
		box.Move(toPos(lo))
		box.Resize(fyne.NewSize(float32(hi.X-lo.X), float32(hi.Y-lo.Y)))
		objects = append(objects, box)
	}
	r.objects = objects
}

func strokeLines(p state.Path, v viewport.View, c geom.Size) []fyne.CanvasObject {
	if len(p.Points) < 2 {
		return nil
	}
	col := state.ParseColor(p.Color)
	width := float32(p.Width * v.Zoom)
	lines := make([]fyne.CanvasObject, 0, len(p.Points)-1)
	prev := viewport.DocumentToScreen(p.Points[0], v, c)
	for _, pt := range p.Points[1:] {
		next := viewport.DocumentToScreen(pt, v, c)
		segment := canvas.NewLine(col)
		segment.StrokeWidth = width
		segment.Position1 = toPos(prev)
		segment.Position2 = toPos(next)
		lines = append(lines, segment)
		prev = next
	}
	return lines
}

func (w *InkWidget) MouseIn(*desktop.MouseEvent)    {}
func (w *InkWidget) MouseOut()                      {}
func (w *InkWidget) MouseMoved(*desktop.MouseEvent) {}
