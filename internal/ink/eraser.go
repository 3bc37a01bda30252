package ink

import (
	"DocInk/internal/geom"
	"DocInk/internal/state"
)

// Erase removes every point closer than radius to center and splits the
// affected paths into their surviving runs. Runs shorter than two points are
// dropped and every run gets a fresh ID. When no point falls inside the radius
// the input slice is returned as is with hasChanges false. The input paths are
// never modified.
func Erase(center geom.Point, radius float64, paths []state.Path) (out []state.Path, hasChanges bool) {
	if !(radius > 0) || len(paths) == 0 {
		return paths, false
	}
	out = make([]state.Path, 0, len(paths))
	for _, p := range paths {
		runs, hit := eraseRuns(center, radius, p.Points)
		if !hit {
			out = append(out, p)
			continue
		}
		hasChanges = true
		for _, run := range runs {
			out = append(out, state.Path{
				ID:     state.NewPathID(),
				Color:  p.Color,
				Width:  p.Width,
				Points: run,
			})
		}
	}
	if !hasChanges {
		return paths, false
	}
	return out, true
}

func eraseRuns(center geom.Point, radius float64, pts []geom.Point) (runs [][]geom.Point, hit bool) {
	var run []geom.Point
	flush := func() {
		if len(run) >= 2 {
			runs = append(runs, run)
		}
		run = nil
	}
	for _, pt := range pts {
		if geom.Dist(pt, center) < radius {
			hit = true
			flush()
			continue
		}
		run = append(run, pt)
	}
	flush()
	return runs, hit
}
