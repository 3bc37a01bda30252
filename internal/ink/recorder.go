// Package ink implements the operations that create and change page ink:
// stroke recording, erasing, scratch-out detection and lasso selection.
package ink

import (
	"log"
	"sort"
	"time"

	"DocInk/internal/geom"
	"DocInk/internal/state"
)

// Sample is one input position in normalized document space.
type Sample struct {
	P geom.Point
	T time.Time
}

// Recorder accumulates one continuous stroke from bursts of input samples.
type Recorder struct {
	current  *state.Path
	last     geom.Point
	color    string
	width    float64
	onCommit func(state.Path)
}

// NewRecorder returns a recorder that hands finished strokes to onCommit.
func NewRecorder(color string, width float64, onCommit func(state.Path)) *Recorder {
	return &Recorder{color: color, width: width, onCommit: onCommit}
}

// SetPen changes the color and width used by the next stroke.
func (r *Recorder) SetPen(color string, width float64) {
	r.color = color
	r.width = width
}

// Active reports whether a stroke is in progress.
func (r *Recorder) Active() bool { return r.current != nil }

// Current returns a copy of the in-progress stroke for live rendering.
func (r *Recorder) Current() (state.Path, bool) {
	if r.current == nil {
		return state.Path{}, false
	}
	return r.current.Clone(), true
}

// Start begins a stroke at s. A stroke still in progress is completed first.
func (r *Recorder) Start(s Sample) {
	if r.current != nil {
		log.Printf("[INK] Stroke %s restarted without completion", r.current.ID)
		r.Complete()
	}
	p := geom.Clamp01(s.P)
	r.current = &state.Path{
		ID:     state.NewPathID(),
		Color:  r.color,
		Width:  r.width,
		Points: []geom.Point{p},
	}
	r.last = p
}

// ExtendBatch folds a batch of samples into the stroke in timestamp order and
// returns the segment to draw: the previously emitted point followed by the
// batch, so consecutive batches join without gaps.
func (r *Recorder) ExtendBatch(batch []Sample) []geom.Point {
	if r.current == nil || len(batch) == 0 {
		return nil
	}
	sorted := append([]Sample(nil), batch...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T.Before(sorted[j].T) })

	segment := make([]geom.Point, 0, len(sorted)+1)
	segment = append(segment, r.last)
	for _, s := range sorted {
		p := geom.Clamp01(s.P)
		segment = append(segment, p)
		if p != r.last {
			r.current.Points = append(r.current.Points, p)
		}
		r.last = p
	}
	return segment
}

// Complete finishes the stroke. Strokes with fewer than two points are dropped
// silently; others are passed to the commit callback and returned.
func (r *Recorder) Complete() (state.Path, bool) {
	if r.current == nil {
		return state.Path{}, false
	}
	p := *r.current
	r.current = nil
	if !p.Valid() {
		return state.Path{}, false
	}
	if r.onCommit != nil {
		r.onCommit(p)
	}
	return p, true
}

// Cancel drops the in-progress stroke.
func (r *Recorder) Cancel() {
	r.current = nil
}
