package ink

import (
	"log"
	"math"
	"time"

	"DocInk/internal/geom"
	"DocInk/internal/state"
)

// LassoState is the phase of the lasso selection engine.
type LassoState int

const (
	LassoIdle LassoState = iota
	LassoPending
	LassoActive
	LassoDragging
)

func (s LassoState) String() string {
	switch s {
	case LassoPending:
		return "pending"
	case LassoActive:
		return "active"
	case LassoDragging:
		return "dragging"
	}
	return "idle"
}

// LassoParams tunes the lasso. Jitter is in screen pixels, SelectRadius and
// Padding are normalized.
type LassoParams struct {
	Delay        time.Duration
	Jitter       float64
	SelectRadius float64
	Padding      float64
}

// Selection is the set of paths picked by a long press.
type Selection struct {
	Bounds   geom.Rect
	Members  map[string]bool
	Dragging bool
}

// Lasso is the long-press selection and drag state machine.
type Lasso struct {
	params LassoParams
	st     LassoState

	pressDoc    geom.Point
	pressScreen geom.Point
	pressAt     time.Time

	sel *Selection
	// inner is the unpadded box of the members.
	inner geom.Rect

	dragStart    geom.Point
	origin       map[string][]geom.Point
	originBounds geom.Rect
	originInner  geom.Rect
}

// NewLasso returns an idle lasso.
func NewLasso(p LassoParams) *Lasso {
	return &Lasso{params: p}
}

// State returns the current phase.
func (l *Lasso) State() LassoState { return l.st }

// Selection returns the active selection, if any.
func (l *Lasso) Selection() (Selection, bool) {
	if l.sel == nil {
		return Selection{}, false
	}
	return *l.sel, true
}

// StartLongPress arms the long-press timer at a document point. Any previous
// selection is discarded.
func (l *Lasso) StartLongPress(doc, screen geom.Point, now time.Time) {
	l.sel = nil
	l.origin = nil
	l.st = LassoPending
	l.pressDoc = doc
	l.pressScreen = screen
	l.pressAt = now
}

// Deadline returns when the pending long press fires.
func (l *Lasso) Deadline() (time.Time, bool) {
	if l.st != LassoPending {
		return time.Time{}, false
	}
	return l.pressAt.Add(l.params.Delay), true
}

// CheckLongPressMove cancels the pending long press when the contact moved
// farther than the jitter radius. It reports whether the press is still
// pending.
func (l *Lasso) CheckLongPressMove(screen geom.Point) bool {
	if l.st != LassoPending {
		return false
	}
	if geom.Dist(screen, l.pressScreen) > l.params.Jitter {
		l.st = LassoIdle
		return false
	}
	return true
}

// CancelPending disarms a pending long press without touching a selection.
func (l *Lasso) CancelPending() {
	if l.st == LassoPending {
		l.st = LassoIdle
	}
}

// Fire completes a pending long press once its delay has elapsed. Paths with
// any point within SelectRadius of the press point become the selection. It
// reports whether a selection was created; pressing on empty paper is not an
// error and leaves the lasso idle.
func (l *Lasso) Fire(now time.Time, paths []state.Path) bool {
	deadline, ok := l.Deadline()
	if !ok || now.Before(deadline) {
		return false
	}
	l.st = LassoIdle

	members := make(map[string]bool)
	var inner geom.Rect
	for _, p := range paths {
		if !near(p.Points, l.pressDoc, l.params.SelectRadius) {
			continue
		}
		b, _ := p.Bounds()
		if len(members) == 0 {
			inner = b
		} else {
			inner = inner.Union(b)
		}
		members[p.ID] = true
	}
	if len(members) == 0 {
		return false
	}
	l.st = LassoActive
	l.inner = inner
	l.sel = &Selection{Bounds: inner.Inset(l.params.Padding), Members: members}
	log.Printf("[INK] Lasso selected %d paths", len(members))
	return true
}

func near(pts []geom.Point, c geom.Point, r float64) bool {
	for _, p := range pts {
		if geom.Dist(p, c) <= r {
			return true
		}
	}
	return false
}

// IsPointInSelection hit-tests the selection's bounding box.
func (l *Lasso) IsPointInSelection(doc geom.Point) bool {
	return l.sel != nil && l.sel.Bounds.Contains(doc)
}

// StartDrag begins moving the selection from doc. The member points are
// snapshotted so every Drag applies one cumulative delta.
func (l *Lasso) StartDrag(doc geom.Point, paths []state.Path) bool {
	if l.st != LassoActive || l.sel == nil {
		return false
	}
	l.origin = make(map[string][]geom.Point, len(l.sel.Members))
	for _, p := range paths {
		if l.sel.Members[p.ID] {
			l.origin[p.ID] = append([]geom.Point(nil), p.Points...)
		}
	}
	l.dragStart = doc
	l.originBounds = l.sel.Bounds
	l.originInner = l.inner
	l.sel.Dragging = true
	l.st = LassoDragging
	return true
}

// Drag moves every member path to its snapshot plus the delta between doc and
// the drag start. The delta is clamped so the members stay on the page; all
// members always receive the same delta. Paths are updated in place.
func (l *Lasso) Drag(doc geom.Point, paths []state.Path) bool {
	if l.st != LassoDragging {
		return false
	}
	d := doc.Sub(l.dragStart)
	d.X = math.Max(-l.originInner.Min.X, math.Min(1-l.originInner.Max.X, d.X))
	d.Y = math.Max(-l.originInner.Min.Y, math.Min(1-l.originInner.Max.Y, d.Y))

	for i := range paths {
		orig, ok := l.origin[paths[i].ID]
		if !ok {
			continue
		}
		moved := make([]geom.Point, len(orig))
		for j, pt := range orig {
			moved[j] = pt.Add(d)
		}
		paths[i].Points = moved
	}
	l.sel.Bounds = l.originBounds.Translate(d)
	l.inner = l.originInner.Translate(d)
	return true
}

// EndDrag finishes a drag; the selection stays active at its new place.
func (l *Lasso) EndDrag() bool {
	if l.st != LassoDragging {
		return false
	}
	l.st = LassoActive
	l.sel.Dragging = false
	l.origin = nil
	return true
}

// Clear discards the selection and any pending press. Translations already
// applied to the paths are kept.
func (l *Lasso) Clear() {
	l.st = LassoIdle
	l.sel = nil
	l.origin = nil
}

// Forget drops a path from the selection, for example after it was erased.
// The selection is cleared when no member remains.
func (l *Lasso) Forget(ids ...string) {
	if l.sel == nil {
		return
	}
	for _, id := range ids {
		delete(l.sel.Members, id)
	}
	if len(l.sel.Members) == 0 {
		l.Clear()
	}
}
