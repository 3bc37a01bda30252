package document

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.Black)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "02.png"), 20, 10)
	writePNG(t, filepath.Join(dir, "01.png"), 10, 20)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	d, err := OpenImageDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, d.PageCount())

	p1, err := d.Page(1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 20), p1.Bounds())

	p2, err := d.Page(2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), p2.Bounds())

	_, err = d.Page(3)
	assert.Error(t, err)
}

func TestImageDirEmpty(t *testing.T) {
	_, err := OpenImageDir(t.TempDir())
	assert.Error(t, err)

	_, err = OpenImageDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestBlank(t *testing.T) {
	b := A4(2)
	img, err := b.Page(2)
	require.NoError(t, err)
	assert.Equal(t, 1240, img.Bounds().Dx())
	r, g, bl, _ := img.At(100, 100).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, bl})

	_, err = b.Page(0)
	assert.Error(t, err)
}
