package export

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
)

// ExportPNG writes img to path as a PNG.
func ExportPNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("export: no image")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	b := img.Bounds()
	log.Printf("[EXPORT] Wrote %dx%d crop to %s", b.Dx(), b.Dy(), path)
	return nil
}
