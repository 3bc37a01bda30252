// Package document supplies page rasters for the annotation board.
package document

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source yields the raster of each page. Pages are numbered from 1.
type Source interface {
	PageCount() int
	Page(n int) (image.Image, error)
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// ImageDir is a document whose pages are the image files of a directory,
// in file name order.
type ImageDir struct {
	dir   string
	files []string

	cached    int
	cachedImg image.Image
}

// OpenImageDir lists the page images in dir.
func OpenImageDir(dir string) (*ImageDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read page dir: %w", err)
	}
	d := &ImageDir{dir: dir}
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		d.files = append(d.files, e.Name())
	}
	if len(d.files) == 0 {
		return nil, fmt.Errorf("no page images in %s", dir)
	}
	sort.Strings(d.files)
	log.Printf("[DOC] %d pages in %s", len(d.files), dir)
	return d, nil
}

// PageCount returns the number of page images.
func (d *ImageDir) PageCount() int { return len(d.files) }

// Page decodes page n. The most recent page is kept in memory.
func (d *ImageDir) Page(n int) (image.Image, error) {
	if n < 1 || n > len(d.files) {
		return nil, fmt.Errorf("page %d out of range 1..%d", n, len(d.files))
	}
	if d.cached == n {
		return d.cachedImg, nil
	}
	path := filepath.Join(d.dir, d.files[n-1])
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	d.cached, d.cachedImg = n, img
	return img, nil
}

// Blank is a document of identical white pages.
type Blank struct {
	Count  int
	Width  int
	Height int
}

// A4 is a blank A4 page at 150 dpi.
func A4(count int) Blank { return Blank{Count: count, Width: 1240, Height: 1754} }

// PageCount returns b.Count.
func (b Blank) PageCount() int { return b.Count }

// Page returns a white page.
func (b Blank) Page(n int) (image.Image, error) {
	if n < 1 || n > b.Count {
		return nil, fmt.Errorf("page %d out of range 1..%d", n, b.Count)
	}
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}
