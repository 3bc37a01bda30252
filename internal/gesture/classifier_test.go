package gesture

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DocInk/internal/geom"
	"DocInk/internal/viewport"
)

type fakeHandler struct {
	calls      []string
	selection  geom.Rect
	hasSel     bool
	overscroll bool
	lastRatio  float64
	lastCenter geom.Point
	undos      int
}

func (f *fakeHandler) log(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeHandler) View() viewport.View { return viewport.View{Zoom: 1} }
func (f *fakeHandler) SelectionHit(p geom.Point) bool {
	return f.hasSel && f.selection.Contains(p)
}
func (f *fakeHandler) ClearSelection() { f.hasSel = false; f.log("clear") }
func (f *fakeHandler) BeginStroke(Sample) { f.log("stroke") }
func (f *fakeHandler) ExtendStroke(b []Sample) { f.log("extend %d", len(b)) }
func (f *fakeHandler) EndStroke(commit bool) { f.log("end-stroke %v", commit) }
func (f *fakeHandler) EraseAt(b []Sample) { f.log("erase") }
func (f *fakeHandler) EndErase() { f.log("end-erase") }
func (f *fakeHandler) EndViewportGesture() { f.log("end-viewport") }
func (f *fakeHandler) ArmLongPress(geom.Point, time.Time) { f.log("arm") }
func (f *fakeHandler) MoveLongPress(geom.Point) {}
func (f *fakeHandler) CancelLongPress() { f.log("disarm") }
func (f *fakeHandler) BeginLassoDrag(geom.Point) { f.log("lasso") }
func (f *fakeHandler) LassoDragTo(geom.Point) { f.log("lasso-move") }
func (f *fakeHandler) EndLassoDrag() { f.log("end-lasso") }
func (f *fakeHandler) Undo() { f.undos++; f.log("undo") }

func (f *fakeHandler) Pan(s Session, pos geom.Point) bool {
	f.log("pan")
	return f.overscroll
}

func (f *fakeHandler) Pinch(s Session, ratio float64, center geom.Point) bool {
	f.lastRatio, f.lastCenter = ratio, center
	f.log("pinch")
	return false
}

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return base.Add(time.Duration(n) * time.Millisecond) }

func ev(ch Channel, id int, ph Phase, x, y float64, t int) Event {
	return Event{Channel: ch, ID: id, Phase: ph, Pos: geom.Pt(x, y), Time: ms(t)}
}

var params = Params{
	TapMaxDuration:  250 * time.Millisecond,
	TapJitter:       10,
	DoubleTapWindow: 400 * time.Millisecond,
	TouchDraws:      true,
}

func newTest() (*Classifier, *fakeHandler) {
	h := &fakeHandler{}
	return NewClassifier(h, params), h
}

func kind(t *testing.T, c *Classifier, ch Channel) Kind {
	t.Helper()
	s, ok := c.Session(ch)
	if !ok {
		return KindNone
	}
	return s.Kind
}

func TestSingleContactDraw(t *testing.T) {
	c, h := newTest()
	c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 0))
	assert.Equal(t, KindDraw, kind(t, c, ChannelPointer))
	c.Handle(ev(ChannelPointer, 1, PhaseMove, 20, 10, 10))
	c.Handle(ev(ChannelPointer, 1, PhaseUp, 20, 10, 20))
	assert.Equal(t, []string{"clear", "stroke", "arm", "extend 1", "disarm", "end-stroke true"}, h.calls)
	_, ok := c.Session(ChannelPointer)
	assert.False(t, ok)
}

func TestToolRouting(t *testing.T) {
	tests := []struct {
		tool     Tool
		modifier bool
		want     Kind
	}{
		{ToolDraw, false, KindDraw},
		{ToolErase, false, KindErase},
		{ToolPan, false, KindPan},
		{ToolSelect, false, KindPan},
		{ToolDraw, true, KindPan},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%v", tt.tool, tt.modifier), func(t *testing.T) {
			c, _ := newTest()
			c.SetTool(tt.tool)
			e := ev(ChannelPointer, 1, PhaseDown, 10, 10, 0)
			e.Modifier = tt.modifier
			c.Handle(e)
			assert.Equal(t, tt.want, kind(t, c, ChannelPointer))
		})
	}
}

func TestSelectionHitStartsLassoDrag(t *testing.T) {
	c, h := newTest()
	h.hasSel = true
	h.selection = geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(50, 50)}
	c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 0))
	assert.Equal(t, KindLassoDrag, kind(t, c, ChannelPointer))
	c.Handle(ev(ChannelPointer, 1, PhaseMove, 30, 10, 10))
	c.Handle(ev(ChannelPointer, 1, PhaseUp, 30, 10, 20))
	assert.Equal(t, []string{"lasso", "lasso-move", "end-lasso"}, h.calls)
}

func TestEraseClearsSelectionFirst(t *testing.T) {
	c, h := newTest()
	c.SetTool(ToolErase)
	h.hasSel = true
	h.selection = geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(50, 50)}
	c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 0))
	assert.Equal(t, KindErase, kind(t, c, ChannelPointer))
	assert.Equal(t, []string{"clear", "erase"}, h.calls)
}

func TestSecondContactDiscardsStrokeAndPinches(t *testing.T) {
	c, h := newTest()
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, 0))
	c.Handle(ev(ChannelTouch, 2, PhaseDown, 200, 100, 5))
	assert.Equal(t, KindPinch, kind(t, c, ChannelTouch))
	assert.Contains(t, h.calls, "end-stroke false")
	assert.NotContains(t, h.calls, "end-stroke true")

	s, _ := c.Session(ChannelTouch)
	assert.Equal(t, 100.0, s.OriginDistance)
	assert.Equal(t, geom.Pt(150, 100), s.OriginCenter)

	c.Handle(ev(ChannelTouch, 2, PhaseMove, 300, 100, 30))
	assert.InDelta(t, 2.0, h.lastRatio, 1e-12)
	assert.Equal(t, geom.Pt(200, 100), h.lastCenter)
}

func TestPinchDropToOneContactPans(t *testing.T) {
	c, h := newTest()
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, 0))
	c.Handle(ev(ChannelTouch, 2, PhaseDown, 200, 100, 5))
	c.Handle(ev(ChannelTouch, 2, PhaseMove, 260, 100, 30))
	c.Handle(ev(ChannelTouch, 2, PhaseUp, 260, 100, 40))
	assert.Equal(t, KindPan, kind(t, c, ChannelTouch))

	h.calls = nil
	c.Handle(ev(ChannelTouch, 1, PhaseMove, 120, 140, 50))
	c.Handle(ev(ChannelTouch, 1, PhaseUp, 120, 140, 60))
	assert.Equal(t, []string{"pan", "disarm", "end-viewport"}, h.calls)
}

func TestZeroPinchDistanceIsSafe(t *testing.T) {
	c, h := newTest()
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, 0))
	c.Handle(ev(ChannelTouch, 2, PhaseDown, 100, 100, 5))
	c.Handle(ev(ChannelTouch, 2, PhaseMove, 150, 100, 30))
	assert.Equal(t, 1.0, h.lastRatio)
}

func twoFingerTap(c *Classifier, start int) {
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, start))
	c.Handle(ev(ChannelTouch, 2, PhaseDown, 200, 100, start+10))
	c.Handle(ev(ChannelTouch, 1, PhaseUp, 100, 100, start+80))
	c.Handle(ev(ChannelTouch, 2, PhaseUp, 200, 100, start+90))
}

func TestTwoFingerDoubleTapUndoes(t *testing.T) {
	c, h := newTest()
	twoFingerTap(c, 0)
	assert.Zero(t, h.undos)
	twoFingerTap(c, 200)
	assert.Equal(t, 1, h.undos)

	// a third tap starts a new pair rather than undoing again.
	twoFingerTap(c, 400)
	assert.Equal(t, 1, h.undos)
}

func TestTwoFingerTapTooSlowApart(t *testing.T) {
	c, h := newTest()
	twoFingerTap(c, 0)
	twoFingerTap(c, 1000)
	assert.Zero(t, h.undos)
}

func TestTapInvalidatedByMovement(t *testing.T) {
	c, h := newTest()
	twoFingerTap(c, 0)
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, 200))
	c.Handle(ev(ChannelTouch, 2, PhaseDown, 200, 100, 210))
	c.Handle(ev(ChannelTouch, 2, PhaseMove, 240, 100, 220))
	c.Handle(ev(ChannelTouch, 1, PhaseUp, 100, 100, 260))
	c.Handle(ev(ChannelTouch, 2, PhaseUp, 240, 100, 270))
	assert.Zero(t, h.undos)
}

func TestTapInvalidatedByThirdContact(t *testing.T) {
	c, h := newTest()
	twoFingerTap(c, 0)
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, 200))
	c.Handle(ev(ChannelTouch, 2, PhaseDown, 200, 100, 210))
	c.Handle(ev(ChannelTouch, 3, PhaseDown, 300, 100, 220))
	assert.Equal(t, KindNone, kind(t, c, ChannelTouch))
	c.Handle(ev(ChannelTouch, 3, PhaseUp, 300, 100, 230))
	assert.Equal(t, KindPinch, kind(t, c, ChannelTouch))
	c.Handle(ev(ChannelTouch, 1, PhaseUp, 100, 100, 240))
	c.Handle(ev(ChannelTouch, 2, PhaseUp, 200, 100, 250))
	assert.Zero(t, h.undos)
}

func TestInterruptingGestureDisarmsFirstTap(t *testing.T) {
	t.Run("pinch", func(t *testing.T) {
		c, h := newTest()
		twoFingerTap(c, 0)
		c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, 100))
		c.Handle(ev(ChannelTouch, 2, PhaseDown, 200, 100, 105))
		c.Handle(ev(ChannelTouch, 2, PhaseMove, 300, 100, 120))
		c.Handle(ev(ChannelTouch, 1, PhaseUp, 100, 100, 135))
		c.Handle(ev(ChannelTouch, 2, PhaseUp, 300, 100, 140))
		twoFingerTap(c, 200)
		assert.Zero(t, h.undos)
	})
	t.Run("stroke", func(t *testing.T) {
		c, h := newTest()
		twoFingerTap(c, 0)
		c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 100))
		c.Handle(ev(ChannelPointer, 1, PhaseMove, 40, 10, 110))
		c.Handle(ev(ChannelPointer, 1, PhaseUp, 60, 10, 120))
		twoFingerTap(c, 200)
		assert.Zero(t, h.undos)
	})
	t.Run("moved tap", func(t *testing.T) {
		c, h := newTest()
		twoFingerTap(c, 0)
		c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, 120))
		c.Handle(ev(ChannelTouch, 2, PhaseDown, 200, 100, 130))
		c.Handle(ev(ChannelTouch, 2, PhaseMove, 240, 100, 140))
		c.Handle(ev(ChannelTouch, 1, PhaseUp, 100, 100, 150))
		c.Handle(ev(ChannelTouch, 2, PhaseUp, 240, 100, 160))
		twoFingerTap(c, 250)
		assert.Zero(t, h.undos)

		// the tap at 250 arms a fresh pair.
		twoFingerTap(c, 400)
		assert.Equal(t, 1, h.undos)
	})
}

func TestPanPressOutsideSelectionClearsIt(t *testing.T) {
	c, h := newTest()
	c.SetTool(ToolPan)
	h.hasSel = true
	h.selection = geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(50, 50)}

	c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 0))
	assert.Equal(t, KindPan, kind(t, c, ChannelPointer))
	assert.True(t, h.hasSel)
	c.Handle(ev(ChannelPointer, 1, PhaseUp, 10, 10, 10))

	c.Handle(ev(ChannelPointer, 1, PhaseDown, 200, 200, 20))
	assert.Equal(t, KindPan, kind(t, c, ChannelPointer))
	assert.False(t, h.hasSel)
	assert.Equal(t, 1, count(h.calls, "clear"))
}

func TestTapTooLong(t *testing.T) {
	c, h := newTest()
	twoFingerTap(c, 0)
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 100, 100, 100))
	c.Handle(ev(ChannelTouch, 2, PhaseDown, 200, 100, 110))
	c.Handle(ev(ChannelTouch, 1, PhaseUp, 100, 100, 390))
	c.Handle(ev(ChannelTouch, 2, PhaseUp, 200, 100, 400))
	assert.Zero(t, h.undos)
}

func TestChannelsAreIndependent(t *testing.T) {
	c, h := newTest()
	c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 0))
	// a resting palm while the stylus draws is ignored.
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 300, 300, 5))
	assert.Equal(t, KindNone, kind(t, c, ChannelTouch))
	assert.Equal(t, KindDraw, kind(t, c, ChannelPointer))
	c.Handle(ev(ChannelTouch, 1, PhaseMove, 320, 300, 10))
	c.Handle(ev(ChannelTouch, 1, PhaseUp, 320, 300, 15))
	assert.Equal(t, KindDraw, kind(t, c, ChannelPointer))

	c.Handle(ev(ChannelPointer, 1, PhaseUp, 10, 10, 20))
	assert.Equal(t, 1, count(h.calls, "stroke"))
	assert.Equal(t, 1, count(h.calls, "end-stroke true"))
}

func TestTouchDrawsDisabled(t *testing.T) {
	h := &fakeHandler{}
	p := params
	p.TouchDraws = false
	c := NewClassifier(h, p)
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 10, 10, 0))
	assert.Equal(t, KindPan, kind(t, c, ChannelTouch))
	c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 0))
	assert.Equal(t, KindDraw, kind(t, c, ChannelPointer))
}

func TestOverscrollMarksSwipeCandidate(t *testing.T) {
	c, h := newTest()
	c.SetTool(ToolPan)
	h.overscroll = true
	c.Handle(ev(ChannelTouch, 1, PhaseDown, 10, 10, 0))
	c.Handle(ev(ChannelTouch, 1, PhaseMove, 10, -200, 10))
	assert.Equal(t, KindSwipeCandidate, kind(t, c, ChannelTouch))
	h.overscroll = false
	c.Handle(ev(ChannelTouch, 1, PhaseMove, 10, -20, 20))
	assert.Equal(t, KindPan, kind(t, c, ChannelTouch))
	c.Handle(ev(ChannelTouch, 1, PhaseUp, 10, -20, 30))
	assert.Equal(t, 1, count(h.calls, "end-viewport"))
}

func TestCancelCompletesStroke(t *testing.T) {
	c, h := newTest()
	c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 0))
	c.Handle(ev(ChannelPointer, 1, PhaseMove, 30, 10, 10))
	c.Handle(ev(ChannelPointer, 1, PhaseCancel, 60, 10, 20))
	assert.Equal(t, "end-stroke true", h.calls[len(h.calls)-1])
	_, ok := c.Session(ChannelPointer)
	assert.False(t, ok)
}

func TestSuspendIgnoresFurtherInput(t *testing.T) {
	c, h := newTest()
	c.Handle(ev(ChannelPointer, 1, PhaseDown, 10, 10, 0))
	c.Suspend()
	h.calls = nil
	c.Handle(ev(ChannelPointer, 1, PhaseMove, 30, 10, 10))
	c.Handle(ev(ChannelPointer, 1, PhaseUp, 30, 10, 20))
	assert.Empty(t, h.calls)
}

func TestUnknownContactIgnored(t *testing.T) {
	c, h := newTest()
	c.Handle(ev(ChannelTouch, 9, PhaseMove, 1, 1, 0))
	c.Handle(ev(ChannelTouch, 9, PhaseUp, 1, 1, 0))
	require.Empty(t, h.calls)
}

func count(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}
