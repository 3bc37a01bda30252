// Package export flattens annotated pages into rasters and PDF documents.
package export

import (
	"image"
	"image/color"
	"math"

	"DocInk/internal/geom"
	"DocInk/internal/state"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

// Composite draws page and then every path in order at its stored color and
// width. Widths are in page pixels. A nil or empty page yields nil.
func Composite(page image.Image, paths []state.Path) *image.RGBA {
	if page == nil || page.Bounds().Empty() {
		return nil
	}
	b := page.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), page, b.Min, draw.Src)
	DrawPaths(dst, paths)
	return dst
}

// DrawPaths strokes paths onto dst, mapping normalized coordinates onto the
// full bounds of dst.
func DrawPaths(dst draw.Image, paths []state.Path) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	scanner := rasterx.NewScannerGV(w, h, dst, b)
	dasher := rasterx.NewDasher(w, h, scanner)
	for _, p := range paths {
		if !p.Valid() {
			continue
		}
		width := math.Max(p.Width, 0.5)
		dasher.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
		dasher.SetColor(color.Color(state.ParseColor(p.Color)))
		for i, pt := range p.Points {
			fp := rasterx.ToFixedP(pt.X*float64(w), pt.Y*float64(h))
			if i == 0 {
				dasher.Start(fp)
				continue
			}
			dasher.Line(fp)
		}
		dasher.Stop(false)
		dasher.Draw()
		dasher.Clear()
	}
}

// CompositeCrop composites the page and returns the part inside r, given in
// normalized coordinates. It returns nil when nothing of r lies on the page.
func CompositeCrop(page image.Image, paths []state.Path, r geom.Rect) *image.RGBA {
	full := Composite(page, paths)
	if full == nil {
		return nil
	}
	fb := full.Bounds()
	px := image.Rect(
		int(math.Floor(r.Min.X*float64(fb.Dx()))),
		int(math.Floor(r.Min.Y*float64(fb.Dy()))),
		int(math.Ceil(r.Max.X*float64(fb.Dx()))),
		int(math.Ceil(r.Max.Y*float64(fb.Dy()))),
	).Intersect(fb)
	if px.Empty() {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, px.Dx(), px.Dy()))
	draw.Draw(out, out.Bounds(), full, px.Min, draw.Src)
	return out
}

// Fit scales img down so that it is at most maxW pixels wide, keeping the
// aspect ratio. Smaller images are returned as they are.
func Fit(img image.Image, maxW int) image.Image {
	b := img.Bounds()
	if maxW <= 0 || b.Dx() <= maxW {
		return img
	}
	h := int(math.Round(float64(b.Dy()) * float64(maxW) / float64(b.Dx())))
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxW, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
