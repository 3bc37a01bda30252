// Package state holds the ink data model and the page-level path stores.
package state

import (
	"log"
	"sort"
	"sync"
)

// Store is the persistence collaborator the engine talks to. Implementations own
// their durability; the engine never retries a save.
type Store interface {
	LoadPaths(page int) []Path
	SavePaths(page int, paths []Path)
}

// Book is an in-memory Store mapping page numbers to their ink. Pages with no
// ink are absent rather than holding an empty list.
type Book struct {
	pages map[int][]Path
	mu    sync.RWMutex
}

var _ Store = (*Book)(nil)

// NewBook creates an empty Book.
func NewBook() *Book {
	return &Book{pages: make(map[int][]Path)}
}

// LoadPaths returns a copy of the paths stored for page.
func (b *Book) LoadPaths(page int) []Path {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ClonePaths(b.pages[page])
}

// SavePaths replaces the paths stored for page. Invalid paths are dropped.
func (b *Book) SavePaths(page int, paths []Path) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]Path, 0, len(paths))
	for _, p := range paths {
		if p.Valid() {
			kept = append(kept, p.Clone())
		}
	}
	if len(kept) == 0 {
		delete(b.pages, page)
		log.Printf("[STORE] Page %d cleared", page)
		return
	}
	b.pages[page] = kept
}

// Pages returns the page numbers that carry ink, in ascending order.
func (b *Book) Pages() []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pages := make([]int, 0, len(b.pages))
	for n := range b.pages {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages
}

// PathCount returns the number of paths across all pages.
func (b *Book) PathCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, paths := range b.pages {
		n += len(paths)
	}
	return n
}
