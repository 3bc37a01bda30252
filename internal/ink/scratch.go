package ink

import (
	"math"

	"DocInk/internal/geom"
	"DocInk/internal/state"
)

// ScratchParams tunes the zig-zag heuristic. Distances are normalized.
type ScratchParams struct {
	MinPoints    int
	MaxExtent    float64
	MinReversals int
	Jitter       float64
}

// IsScratch reports whether pts look like a cross-out: a short stroke inside a
// small box that reverses direction along its long axis at least MinReversals
// times. Moves shorter than Jitter do not count as a direction.
func IsScratch(pts []geom.Point, sp ScratchParams) bool {
	if len(pts) < sp.MinPoints || len(pts) < 3 {
		return false
	}
	box, _ := geom.Bounds(pts)
	if box.Diagonal() > sp.MaxExtent {
		return false
	}
	axis := func(p geom.Point) float64 { return p.X }
	if box.Height() > box.Width() {
		axis = func(p geom.Point) float64 { return p.Y }
	}

	reversals := 0
	dir := 0.0
	anchor := axis(pts[0])
	for _, p := range pts[1:] {
		d := axis(p) - anchor
		if math.Abs(d) < sp.Jitter || d == 0 {
			continue
		}
		s := math.Copysign(1, d)
		if dir != 0 && s != dir {
			reversals++
		}
		dir = s
		anchor = axis(p)
	}
	return reversals >= sp.MinReversals
}

// ScratchErase deletes every path crossed by the scratch polyline. It returns
// the remaining paths and the IDs of the deleted ones; when nothing is crossed
// the input slice is returned with no IDs.
func ScratchErase(scratch []geom.Point, paths []state.Path) (kept []state.Path, removed []string) {
	sbox, ok := geom.Bounds(scratch)
	if !ok || len(scratch) < 2 {
		return paths, nil
	}
	kept = make([]state.Path, 0, len(paths))
	for _, p := range paths {
		if crosses(scratch, sbox, p) {
			removed = append(removed, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	if len(removed) == 0 {
		return paths, nil
	}
	return kept, removed
}

func crosses(scratch []geom.Point, sbox geom.Rect, p state.Path) bool {
	pbox, ok := p.Bounds()
	if !ok || !pbox.Overlaps(sbox) {
		return false
	}
	for i := 1; i < len(scratch); i++ {
		a, b := scratch[i-1], scratch[i]
		for j := 1; j < len(p.Points); j++ {
			if geom.SegmentsIntersect(a, b, p.Points[j-1], p.Points[j]) {
				return true
			}
		}
	}
	return false
}
