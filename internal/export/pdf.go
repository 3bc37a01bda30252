package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"

	"DocInk/internal/state"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidthMM = 210.0
	a4HeightMM  = 297.0
	// maxRasterWidth bounds the embedded page image at roughly 300 dpi.
	maxRasterWidth = 2480
)

// Page is one page to export. Raster may be nil for a blank A4 sheet.
type Page struct {
	Number int
	Raster image.Image
	Paths  []state.Path
}

// WritePDF writes pages as a PDF to w. Each page keeps the aspect ratio of its
// raster; ink is emitted as vector lines over the image.
func WritePDF(w io.Writer, pages []Page) error {
	pdf, err := build(pages)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDF writes pages to the PDF file at path.
func ExportPDF(path string, pages []Page) error {
	pdf, err := build(pages)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	log.Printf("[EXPORT] Wrote %d pages to %s", len(pages), path)
	return nil
}

func build(pages []Page) (*gofpdf.Fpdf, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("export: no pages")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	for _, pg := range pages {
		wMM, hMM := pageWidthMM, a4HeightMM
		var pxW float64 = 1
		if pg.Raster != nil && !pg.Raster.Bounds().Empty() {
			b := pg.Raster.Bounds()
			hMM = pageWidthMM * float64(b.Dy()) / float64(b.Dx())
			pxW = float64(b.Dx())
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: wMM, Ht: hMM})

		if pxW > 1 {
			name := fmt.Sprintf("page-%d", pg.Number)
			var buf bytes.Buffer
			if err := png.Encode(&buf, Fit(pg.Raster, maxRasterWidth)); err != nil {
				return nil, fmt.Errorf("encode page %d: %w", pg.Number, err)
			}
			opt := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opt, &buf)
			pdf.ImageOptions(name, 0, 0, wMM, hMM, false, opt, 0, "")
		}

		// Stroke widths are page pixels; without a raster assume the page
		// is a thousand pixels wide.
		mmPerPx := wMM / pxW
		if pxW <= 1 {
			mmPerPx = wMM / 1000
		}
		for _, p := range pg.Paths {
			if !p.Valid() {
				continue
			}
			c := state.ParseColor(p.Color)
			pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
			pdf.SetLineWidth(p.Width * mmPerPx)
			for i := 1; i < len(p.Points); i++ {
				a, b := p.Points[i-1], p.Points[i]
				pdf.Line(a.X*wMM, a.Y*hMM, b.X*wMM, b.Y*hMM)
			}
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}
