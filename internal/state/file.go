package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

// Format selects the on-disk encoding of a FileStore.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

var pageFileRE = regexp.MustCompile(`^page-(\d+)\.(json|cbor)$`)

// FileStore is a Store that keeps one file per annotated page in a directory.
// Reads are served from an in-memory Book loaded at open time; every save is
// written through to disk.
type FileStore struct {
	dir    string
	format Format
	book   *Book
}

var _ Store = (*FileStore)(nil)

// OpenFileStore loads every page file found in dir. The directory is created if
// it does not exist.
func OpenFileStore(dir string, format Format) (*FileStore, error) {
	if format != FormatJSON && format != FormatCBOR {
		return nil, fmt.Errorf("unknown store format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create store dir: %w", err)
	}
	fs := &FileStore{dir: dir, format: format, book: NewBook()}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read store dir: %w", err)
	}
	for _, e := range entries {
		m := pageFileRE.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		page, _ := strconv.Atoi(m[1])
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", e.Name(), err)
		}
		paths, err := decodePaths(Format(m[2]), data)
		if err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", e.Name(), err)
		}
		fs.book.SavePaths(page, paths)
	}
	log.Printf("[STORE] Opened %s with %d annotated pages", dir, len(fs.book.Pages()))
	return fs, nil
}

// LoadPaths returns the stored paths of page.
func (fs *FileStore) LoadPaths(page int) []Path {
	return fs.book.LoadPaths(page)
}

// SavePaths stores paths for page and writes the page file. Write failures are
// logged, not returned.
func (fs *FileStore) SavePaths(page int, paths []Path) {
	fs.book.SavePaths(page, paths)
	if err := fs.flush(page); err != nil {
		log.Printf("[STORE] Error saving page %d: %v", page, err)
	}
}

// Pages returns the annotated page numbers.
func (fs *FileStore) Pages() []int { return fs.book.Pages() }

func (fs *FileStore) pageFile(page int) string {
	return filepath.Join(fs.dir, fmt.Sprintf("page-%04d.%s", page, fs.format))
}

func (fs *FileStore) flush(page int) error {
	name := fs.pageFile(page)
	paths := fs.book.LoadPaths(page)
	if len(paths) == 0 {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	data, err := encodePaths(fs.format, paths)
	if err != nil {
		return err
	}
	tmp := name + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, name)
}

func encodePaths(f Format, paths []Path) ([]byte, error) {
	if f == FormatCBOR {
		return cbor.Marshal(paths)
	}
	return json.MarshalIndent(paths, "", "  ")
}

func decodePaths(f Format, data []byte) ([]Path, error) {
	var paths []Path
	var err error
	if f == FormatCBOR {
		err = cbor.Unmarshal(data, &paths)
	} else {
		err = json.Unmarshal(data, &paths)
	}
	return paths, err
}
