package gesture

import (
	"log"
	"math"

	"DocInk/internal/geom"
)

// Navigator turns pan attempts past the vertical pan limit into an elastic
// overscroll and decides, once per gesture, whether that overscroll turns the
// page. Pages are numbered from 1.
type Navigator struct {
	damping   float64
	threshold float64

	overscroll geom.Point
	armed      bool
}

// NewNavigator returns a navigator. damping scales the rejected pan and must
// be below 1; threshold is the fraction of the viewport height the overscroll
// must exceed.
func NewNavigator(damping, threshold float64) *Navigator {
	return &Navigator{damping: damping, threshold: threshold}
}

// Update records the rejected part of the latest pan candidate and returns the
// resulting overscroll.
func (n *Navigator) Update(rejected geom.Point) geom.Point {
	n.overscroll = rejected.Scale(n.damping)
	n.armed = true
	return n.overscroll
}

// Overscroll returns the current overscroll.
func (n *Navigator) Overscroll() geom.Point { return n.overscroll }

// End evaluates the finished gesture and resets the overscroll. Pulling the
// content up past the limit (negative overscroll) moves to the next page,
// pulling it down to the previous one. It reports the target page and whether
// a turn should happen; calling End again without an Update never turns.
func (n *Navigator) End(viewportH float64, page, pageCount int) (int, bool) {
	over := n.overscroll
	armed := n.armed
	n.Reset()
	if !armed || !(viewportH > 0) {
		return page, false
	}
	if math.Abs(over.Y) <= n.threshold*viewportH {
		return page, false
	}
	target := page + 1
	if over.Y > 0 {
		target = page - 1
	}
	if target < 1 || target > pageCount {
		return page, false
	}
	log.Printf("[GESTURE] Swipe to page %d (overscroll %.1f)", target, over.Y)
	return target, true
}

// Reset snaps the overscroll back to zero.
func (n *Navigator) Reset() {
	n.overscroll = geom.Point{}
	n.armed = false
}
