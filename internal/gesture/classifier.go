// Package gesture classifies raw pointer and touch input into exactly one
// active gesture per input channel and routes it to a Handler.
package gesture

import (
	"log"
	"time"

	"DocInk/internal/geom"
	"DocInk/internal/viewport"
)

// Channel separates physically distinct input sources. Session state is kept
// per channel so a stylus and a finger never share a gesture.
type Channel int

const (
	// ChannelPointer is mouse or stylus input.
	ChannelPointer Channel = iota
	// ChannelTouch is finger input, possibly multi-contact.
	ChannelTouch
)

func (c Channel) String() string {
	if c == ChannelTouch {
		return "touch"
	}
	return "pointer"
}

// Phase is the lifecycle step of one contact.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	// PhaseCancel is sent when capture is lost or the contact leaves the
	// surface.
	PhaseCancel
)

// Tool is the active toolbar tool.
type Tool int

const (
	ToolDraw Tool = iota
	ToolErase
	ToolSelect
	ToolPan
)

func (t Tool) String() string {
	switch t {
	case ToolErase:
		return "erase"
	case ToolSelect:
		return "select"
	case ToolPan:
		return "pan"
	}
	return "draw"
}

// Kind is what the current session is doing.
type Kind int

const (
	KindNone Kind = iota
	KindDraw
	KindErase
	KindPan
	KindPinch
	KindLassoDrag
	KindSwipeCandidate
)

func (k Kind) String() string {
	return [...]string{"none", "draw", "erase", "pan", "pinch", "lasso-drag", "swipe-candidate"}[k]
}

// Sample is one screen position with its timestamp.
type Sample struct {
	Pos  geom.Point
	Time time.Time
}

// Event is one raw input event for one contact.
type Event struct {
	Channel Channel
	ID      int
	Phase   Phase
	Pos     geom.Point
	Time    time.Time
	// Coalesced holds the buffered samples delivered with this event,
	// including the primary position. Empty means just Pos.
	Coalesced []Sample
	// Modifier is true when a pan modifier (e.g. space or middle button)
	// is held.
	Modifier bool
}

func (ev Event) batch() []Sample {
	if len(ev.Coalesced) > 0 {
		return ev.Coalesced
	}
	return []Sample{{Pos: ev.Pos, Time: ev.Time}}
}

// Session is the state of the interaction on one channel. It carries the
// origin snapshot the viewport gestures are computed from.
type Session struct {
	Kind     Kind
	Channel  Channel
	Contacts []int

	Start     geom.Point
	StartTime time.Time

	OriginZoom     float64
	OriginPan      geom.Point
	OriginDistance float64
	OriginCenter   geom.Point
}

// Handler receives the resolved gestures. Positions are screen pixels.
type Handler interface {
	View() viewport.View
	SelectionHit(screen geom.Point) bool
	ClearSelection()

	BeginStroke(s Sample)
	ExtendStroke(batch []Sample)
	// EndStroke completes the stroke when commit is true and drops it
	// otherwise.
	EndStroke(commit bool)

	EraseAt(batch []Sample)
	EndErase()

	// Pan and Pinch report whether the candidate pan was rejected by the
	// vertical limit, i.e. the gesture is overscrolling.
	Pan(s Session, pos geom.Point) bool
	Pinch(s Session, ratio float64, center geom.Point) bool
	// EndViewportGesture runs once when the last contact of a gesture that
	// panned or pinched lifts.
	EndViewportGesture()

	ArmLongPress(screen geom.Point, t time.Time)
	MoveLongPress(screen geom.Point)
	CancelLongPress()

	BeginLassoDrag(screen geom.Point)
	LassoDragTo(screen geom.Point)
	EndLassoDrag()

	Undo()
}

// Params are the classifier thresholds. Distances are screen pixels.
type Params struct {
	TapMaxDuration  time.Duration
	TapJitter       float64
	DoubleTapWindow time.Duration
	TouchDraws      bool
}

type contact struct {
	id    int
	start geom.Point
	last  geom.Point
}

type tapCandidate struct {
	start   time.Time
	origins map[int]geom.Point
	valid   bool
}

type channelState struct {
	contacts map[int]*contact
	order    []int
	session  *Session
	tap      *tapCandidate
	// moved is set once the gesture panned or pinched.
	moved bool
}

func (cs *channelState) add(c *contact) {
	cs.contacts[c.id] = c
	cs.order = append(cs.order, c.id)
}

func (cs *channelState) remove(id int) {
	delete(cs.contacts, id)
	for i, v := range cs.order {
		if v == id {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
}

// Classifier is the gesture state machine. It owns contact bookkeeping only;
// ink and viewport state live behind the Handler. It is not safe for
// concurrent use.
type Classifier struct {
	h        Handler
	params   Params
	tool     Tool
	channels map[Channel]*channelState
	lastTap  time.Time
}

// NewClassifier returns a classifier routing to h.
func NewClassifier(h Handler, p Params) *Classifier {
	return &Classifier{
		h:        h,
		params:   p,
		channels: make(map[Channel]*channelState),
	}
}

// SetTool changes the tool used for sessions started from now on.
func (c *Classifier) SetTool(t Tool) { c.tool = t }

// Tool returns the active tool.
func (c *Classifier) Tool() Tool { return c.tool }

// Session returns a copy of the session on ch, if one exists.
func (c *Classifier) Session(ch Channel) (Session, bool) {
	cs := c.channels[ch]
	if cs == nil || cs.session == nil {
		return Session{}, false
	}
	s := *cs.session
	s.Contacts = append([]int(nil), s.Contacts...)
	return s, true
}

// Suspend turns every active session into a none session that ignores input
// until its contacts lift. Used when a long press takes over a stroke.
func (c *Classifier) Suspend() {
	for _, cs := range c.channels {
		if cs.session != nil {
			cs.session.Kind = KindNone
		}
	}
}

// Reset forgets all contacts and sessions without notifying the handler.
func (c *Classifier) Reset() {
	c.channels = make(map[Channel]*channelState)
	c.lastTap = time.Time{}
}

func (c *Classifier) channel(ch Channel) *channelState {
	cs := c.channels[ch]
	if cs == nil {
		cs = &channelState{contacts: make(map[int]*contact)}
		c.channels[ch] = cs
	}
	return cs
}

// Handle processes one event. Events for a contact must arrive in order.
func (c *Classifier) Handle(ev Event) {
	cs := c.channel(ev.Channel)
	switch ev.Phase {
	case PhaseDown:
		c.down(cs, ev)
	case PhaseMove:
		c.move(cs, ev)
	case PhaseUp, PhaseCancel:
		c.up(cs, ev)
	}
}

func (c *Classifier) down(cs *channelState, ev Event) {
	if _, dup := cs.contacts[ev.ID]; dup {
		// A repeated down means we missed the up; restart the contact.
		c.up(cs, Event{Channel: ev.Channel, ID: ev.ID, Phase: PhaseCancel, Pos: ev.Pos, Time: ev.Time})
	}
	cs.add(&contact{id: ev.ID, start: ev.Pos, last: ev.Pos})

	switch n := len(cs.order); {
	case n == 1:
		cs.tap = nil
		cs.moved = false
		c.startSingle(cs, ev)
	case n == 2:
		c.endSession(cs, false)
		c.startPinch(cs, ev.Channel, ev.Time)
		cs.tap = &tapCandidate{start: ev.Time, origins: c.positions(cs), valid: true}
	default:
		c.endSession(cs, false)
		if cs.tap != nil {
			cs.tap.valid = false
		}
		cs.session = &Session{Kind: KindNone, Channel: ev.Channel, Contacts: append([]int(nil), cs.order...), StartTime: ev.Time}
	}
}

func (c *Classifier) positions(cs *channelState) map[int]geom.Point {
	m := make(map[int]geom.Point, len(cs.order))
	for _, id := range cs.order {
		m[id] = cs.contacts[id].last
	}
	return m
}

func (c *Classifier) startSingle(cs *channelState, ev Event) {
	pos := ev.Pos
	s := &Session{Channel: ev.Channel, Contacts: []int{ev.ID}, Start: pos, StartTime: ev.Time}
	cs.session = s

	touch := ev.Channel == ChannelTouch
	switch {
	case touch && c.pointerInking():
		s.Kind = KindNone
	case ev.Modifier || c.tool == ToolPan || (touch && !c.params.TouchDraws):
		if !c.h.SelectionHit(pos) {
			c.h.ClearSelection()
		}
		c.startPan(cs, s)
	case c.tool == ToolErase:
		c.h.ClearSelection()
		s.Kind = KindErase
		c.h.EraseAt(ev.batch())
	case c.h.SelectionHit(pos):
		s.Kind = KindLassoDrag
		c.h.BeginLassoDrag(pos)
	case c.tool == ToolDraw:
		c.h.ClearSelection()
		s.Kind = KindDraw
		c.h.BeginStroke(Sample{Pos: pos, Time: ev.Time})
		c.h.ArmLongPress(pos, ev.Time)
	default:
		c.h.ClearSelection()
		c.startPan(cs, s)
		c.h.ArmLongPress(pos, ev.Time)
	}
}

// pointerInking reports whether the pointer channel is drawing or erasing,
// in which case single touches are treated as a resting palm.
func (c *Classifier) pointerInking() bool {
	cs := c.channels[ChannelPointer]
	if cs == nil || cs.session == nil {
		return false
	}
	return cs.session.Kind == KindDraw || cs.session.Kind == KindErase
}

func (c *Classifier) startPan(cs *channelState, s *Session) {
	v := c.h.View()
	s.Kind = KindPan
	s.OriginZoom = v.Zoom
	s.OriginPan = v.Pan
	if len(s.Contacts) > 0 {
		if ct := cs.contacts[s.Contacts[0]]; ct != nil {
			s.Start = ct.last
		}
	}
}

func (c *Classifier) startPinch(cs *channelState, ch Channel, t time.Time) {
	a, b := cs.contacts[cs.order[0]], cs.contacts[cs.order[1]]
	v := c.h.View()
	cs.session = &Session{
		Kind:           KindPinch,
		Channel:        ch,
		Contacts:       []int{a.id, b.id},
		StartTime:      t,
		OriginZoom:     v.Zoom,
		OriginPan:      v.Pan,
		OriginDistance: geom.Dist(a.last, b.last),
		OriginCenter:   geom.Mid(a.last, b.last),
	}
	cs.session.Start = cs.session.OriginCenter
}

func (c *Classifier) move(cs *channelState, ev Event) {
	ct := cs.contacts[ev.ID]
	if ct == nil {
		return
	}
	ct.last = ev.Pos
	if cs.tap != nil && cs.tap.valid {
		if o, ok := cs.tap.origins[ev.ID]; ok && geom.Dist(o, ev.Pos) > c.params.TapJitter {
			cs.tap.valid = false
		}
	}

	s := cs.session
	if s == nil {
		return
	}
	switch s.Kind {
	case KindDraw:
		c.h.MoveLongPress(ev.Pos)
		c.h.ExtendStroke(ev.batch())
	case KindErase:
		c.h.EraseAt(ev.batch())
	case KindPan, KindSwipeCandidate:
		if len(s.Contacts) == 0 || s.Contacts[0] != ev.ID {
			return
		}
		c.h.MoveLongPress(ev.Pos)
		cs.moved = true
		s.Kind = KindPan
		if c.h.Pan(*s, ev.Pos) {
			s.Kind = KindSwipeCandidate
		}
	case KindPinch:
		a, b := cs.contacts[s.Contacts[0]], cs.contacts[s.Contacts[1]]
		if a == nil || b == nil {
			return
		}
		ratio := 1.0
		if s.OriginDistance > 1e-6 {
			ratio = geom.Dist(a.last, b.last) / s.OriginDistance
		}
		cs.moved = true
		c.h.Pinch(*s, ratio, geom.Mid(a.last, b.last))
	case KindLassoDrag:
		c.h.LassoDragTo(ev.Pos)
	}
}

func (c *Classifier) up(cs *channelState, ev Event) {
	ct, ok := cs.contacts[ev.ID]
	if !ok {
		return
	}
	if s := cs.session; s != nil && s.Kind == KindDraw && ev.Phase == PhaseUp && ev.Pos != ct.last {
		c.h.ExtendStroke(ev.batch())
	}
	if ev.Phase == PhaseCancel && cs.tap != nil {
		cs.tap.valid = false
	}
	cs.remove(ev.ID)

	switch n := len(cs.order); {
	case n == 0:
		c.endSession(cs, true)
		if cs.moved {
			c.h.EndViewportGesture()
		}
		c.finishTap(cs, ev.Time)
		cs.session = nil
		cs.moved = false
	case n == 1:
		// Dropping out of a pinch continues as a pan on the remaining
		// contact; it never starts drawing.
		prev := cs.session
		c.endSession(cs, true)
		s := &Session{Channel: ev.Channel, Contacts: []int{cs.order[0]}, StartTime: ev.Time}
		cs.session = s
		if prev != nil && prev.Kind == KindPinch {
			c.startPan(cs, s)
		} else {
			s.Kind = KindNone
		}
	case n == 2:
		c.endSession(cs, true)
		c.startPinch(cs, ev.Channel, ev.Time)
	default:
		if cs.session != nil {
			cs.session.Contacts = append([]int(nil), cs.order...)
		}
	}
}

// endSession winds down the current session. complete is false when a new
// contact supersedes it, which discards a stroke in progress.
func (c *Classifier) endSession(cs *channelState, complete bool) {
	s := cs.session
	if s == nil {
		return
	}
	switch s.Kind {
	case KindDraw:
		c.h.CancelLongPress()
		c.h.EndStroke(complete)
	case KindErase:
		c.h.EndErase()
	case KindPan, KindSwipeCandidate:
		c.h.CancelLongPress()
	case KindLassoDrag:
		c.h.EndLassoDrag()
	}
	cs.session = nil
}

// finishTap runs when the last contact of a channel lifts. Any gesture that
// is not a valid two-finger tap disarms a pending first tap.
func (c *Classifier) finishTap(cs *channelState, now time.Time) {
	tap := cs.tap
	cs.tap = nil
	if tap == nil || !tap.valid || now.Sub(tap.start) > c.params.TapMaxDuration {
		c.lastTap = time.Time{}
		return
	}
	if !c.lastTap.IsZero() && now.Sub(c.lastTap) <= c.params.DoubleTapWindow {
		log.Printf("[GESTURE] Two-finger double tap, undo")
		c.lastTap = time.Time{}
		c.h.Undo()
		return
	}
	c.lastTap = now
}
