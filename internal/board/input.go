package board

import (
	"time"

	"DocInk/internal/geom"
	"DocInk/internal/gesture"
	"DocInk/internal/ink"
	"DocInk/internal/viewport"
)

// input routes classified gestures into the board's engines. It is kept apart
// from Board so the handler callbacks stay out of the public API.
type input struct {
	b *Board
}

var _ gesture.Handler = (*input)(nil)

func (in *input) View() viewport.View { return in.b.vp.View() }

func (in *input) SelectionHit(screen geom.Point) bool {
	return in.b.lasso.IsPointInSelection(in.b.toDoc(screen))
}

func (in *input) ClearSelection() {
	if _, ok := in.b.lasso.Selection(); ok {
		in.b.lasso.Clear()
	}
}

func (in *input) sample(s gesture.Sample) ink.Sample {
	return ink.Sample{P: in.b.toDoc(s.Pos), T: s.Time}
}

func (in *input) BeginStroke(s gesture.Sample) {
	in.b.rec.SetPen(in.b.color, in.b.width)
	in.b.rec.Start(in.sample(s))
}

func (in *input) ExtendStroke(batch []gesture.Sample) {
	out := make([]ink.Sample, len(batch))
	for i, s := range batch {
		out[i] = in.sample(s)
	}
	in.b.rec.ExtendBatch(out)
}

func (in *input) EndStroke(commit bool) {
	if commit {
		in.b.rec.Complete()
		return
	}
	in.b.rec.Cancel()
}

func (in *input) EraseAt(batch []gesture.Sample) {
	b := in.b
	radius := viewport.ScreenLenToDocument(b.cfg.Ink.EraserRadius, b.vp.View(), b.canvas)
	for _, s := range batch {
		out, changed := ink.Erase(b.toDoc(s.Pos), radius, b.paths)
		if changed {
			b.paths = out
			b.erased = true
		}
	}
}

func (in *input) EndErase() {
	if in.b.erased {
		in.b.erased = false
		in.b.save()
	}
}

func (in *input) Pan(s gesture.Session, pos geom.Point) bool {
	return in.limit(s.OriginPan.Add(pos.Sub(s.Start)))
}

func (in *input) Pinch(s gesture.Session, ratio float64, center geom.Point) bool {
	z := in.b.vp.SetZoom(s.OriginZoom * ratio)
	return in.limit(viewport.AnchorPan(s.OriginCenter, s.OriginPan, s.OriginZoom, center, z))
}

// limit applies the pan limit to candidate and feeds the rejected part to
// the page navigator as overscroll.
func (in *input) limit(candidate geom.Point) bool {
	rejected := in.b.vp.PanLimited(candidate)
	over := in.b.nav.Update(rejected)
	in.b.vp.SetOverscroll(over)
	return rejected.Y != 0
}

func (in *input) EndViewportGesture() {
	b := in.b
	target, ok := b.nav.End(b.vp.Container().H, b.page, b.pageCount)
	b.vp.SetOverscroll(geom.Point{})
	if ok {
		b.requestPage(target)
	}
}

func (in *input) ArmLongPress(screen geom.Point, t time.Time) {
	in.b.lasso.StartLongPress(in.b.toDoc(screen), screen, t)
}

func (in *input) MoveLongPress(screen geom.Point) { in.b.lasso.CheckLongPressMove(screen) }

func (in *input) CancelLongPress() { in.b.lasso.CancelPending() }

func (in *input) BeginLassoDrag(screen geom.Point) {
	in.b.lasso.StartDrag(in.b.toDoc(screen), in.b.paths)
}

func (in *input) LassoDragTo(screen geom.Point) {
	in.b.lasso.Drag(in.b.toDoc(screen), in.b.paths)
}

func (in *input) EndLassoDrag() {
	if in.b.lasso.EndDrag() {
		in.b.save()
	}
}

func (in *input) Undo() { in.b.Undo() }
