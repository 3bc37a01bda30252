package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DocInk/internal/geom"
	"DocInk/internal/state"
)

func line(id string, n int, y float64) state.Path {
	p := state.Path{ID: id, Color: "blue", Width: 4}
	for i := 0; i < n; i++ {
		p.Points = append(p.Points, geom.Pt(0.1+float64(i)*0.05, y))
	}
	return p
}

func countPoints(paths []state.Path) int {
	n := 0
	for _, p := range paths {
		n += len(p.Points)
	}
	return n
}

func TestEraseCutsThrough(t *testing.T) {
	in := []state.Path{line("a", 10, 0.5)}
	// points 3,4,5 sit at x = 0.25, 0.30, 0.35.
	out, changed := Erase(geom.Pt(0.30, 0.5), 0.06, in)
	require.True(t, changed)
	require.Len(t, out, 2)
	assert.Len(t, out[0].Points, 3)
	assert.Len(t, out[1].Points, 4)
	assert.Equal(t, in[0].Points[:3], out[0].Points)
	assert.Equal(t, in[0].Points[6:], out[1].Points)
	for _, p := range out {
		assert.NotEqual(t, "a", p.ID)
		assert.Equal(t, "blue", p.Color)
		assert.Equal(t, 4.0, p.Width)
	}
	assert.NotEqual(t, out[0].ID, out[1].ID)
	assert.Len(t, in[0].Points, 10)
}

func TestEraseNoHitReturnsInput(t *testing.T) {
	in := []state.Path{line("a", 5, 0.5), line("b", 5, 0.7)}
	out, changed := Erase(geom.Pt(0.9, 0.1), 0.05, in)
	assert.False(t, changed)
	assert.Equal(t, in, out)
	assert.Equal(t, countPoints(in), countPoints(out))
}

func TestEraseWholePath(t *testing.T) {
	in := []state.Path{line("a", 3, 0.5), line("b", 3, 0.9)}
	out, changed := Erase(geom.Pt(0.15, 0.5), 0.2, in)
	assert.True(t, changed)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestEraseDropsShortRuns(t *testing.T) {
	in := []state.Path{line("a", 4, 0.5)}
	// erase point 1 only: leaves run [0] (dropped) and [2,3].
	out, changed := Erase(geom.Pt(0.15, 0.5), 0.01, in)
	assert.True(t, changed)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].Points[2:], out[0].Points)
}

func TestEraseIsPointConservative(t *testing.T) {
	in := []state.Path{line("a", 10, 0.5), line("b", 10, 0.52), line("c", 10, 0.9)}
	for _, c := range []geom.Point{geom.Pt(0.2, 0.5), geom.Pt(0.5, 0.51), geom.Pt(0, 0), geom.Pt(0.4, 0.9)} {
		out, changed := Erase(c, 0.04, in)
		if changed {
			assert.Less(t, countPoints(out), countPoints(in))
		} else {
			assert.Equal(t, countPoints(in), countPoints(out))
		}
	}
}

func TestEraseDegenerate(t *testing.T) {
	out, changed := Erase(geom.Pt(0.5, 0.5), 0.1, nil)
	assert.False(t, changed)
	assert.Empty(t, out)

	in := []state.Path{line("a", 3, 0.5)}
	out, changed = Erase(geom.Pt(0.1, 0.5), 0, in)
	assert.False(t, changed)
	assert.Equal(t, in, out)
}
