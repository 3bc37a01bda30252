package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"DocInk/internal/board"
	"DocInk/internal/config"
	"DocInk/internal/document"
	"DocInk/internal/export"
	"DocInk/internal/net"
	"DocInk/internal/state"
	"DocInk/internal/ui"
)

type options struct {
	configPath string
	pagesDir   string
	blank      int
	storeDir   string
	format     string
	exportPDF  string
	mirror     bool
	addr       string
	watch      string
	discover   bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "TOML config file")
	flag.StringVar(&o.pagesDir, "pages", "", "directory of page images")
	flag.IntVar(&o.blank, "blank", 4, "number of blank A4 pages when -pages is not set")
	flag.StringVar(&o.storeDir, "store", "", "directory for annotations (in memory when empty)")
	flag.StringVar(&o.format, "format", "json", "annotation file format: json or cbor")
	flag.StringVar(&o.exportPDF, "export", "", "write the annotated document to this PDF and exit")
	flag.BoolVar(&o.mirror, "mirror", false, "serve a read-only live mirror")
	flag.StringVar(&o.addr, "addr", "", "mirror listen address (overrides config)")
	flag.StringVar(&o.watch, "watch", "", "watch the mirror at host:port instead of editing")
	flag.BoolVar(&o.discover, "discover", false, "list mirrors on the LAN and exit")
	flag.Parse()

	var err error
	switch {
	case o.discover:
		err = runDiscover()
	case o.watch != "":
		err = runWatcher(o.watch)
	default:
		err = runEditor(o)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runEditor(o options) error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	if o.mirror {
		cfg.Mirror.Enabled = true
	}
	if o.addr != "" {
		cfg.Mirror.Addr = o.addr
	}

	pages, err := openPages(o)
	if err != nil {
		return err
	}
	store, err := openStore(o)
	if err != nil {
		return err
	}

	if o.exportPDF != "" {
		return exportAll(o.exportPDF, pages, store)
	}

	b := board.New(cfg, store)
	opts := ui.Options{
		Title: "DocInk",
		Board: b,
		Pages: pages,
	}
	if o.storeDir != "" {
		out := filepath.Join(o.storeDir, "annotated.pdf")
		opts.Export = func() error { return exportAll(out, pages, store) }
		crop := filepath.Join(o.storeDir, "selection.png")
		opts.ExportSelection = func(img image.Image) error { return export.ExportPNG(crop, img) }
	}

	if cfg.Mirror.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		hub := net.NewHub()
		go func() {
			if err := net.Serve(ctx, cfg.Mirror.Addr, hub); err != nil {
				log.Printf("[MIRROR] %v", err)
			}
		}()
		if cfg.Mirror.Advertise {
			_, port := splitAddr(cfg.Mirror.Addr)
			if srv, err := net.Advertise(port, o.pagesDir); err != nil {
				log.Printf("[MIRROR] Advertise: %v", err)
			} else {
				defer srv.Shutdown()
			}
		}
		log.Printf("[MIRROR] Watchers can connect to %s", mirrorURL(cfg.Mirror.Addr))
		opts.OnChange = func() {
			if err := hub.Publish(snapshotOf(b)); err != nil {
				log.Printf("[MIRROR] %v", err)
			}
		}
	}

	ui.RunApp(opts)
	return nil
}

func openPages(o options) (document.Source, error) {
	if o.pagesDir != "" {
		return document.OpenImageDir(o.pagesDir)
	}
	if o.blank < 1 {
		return nil, fmt.Errorf("-blank must be at least 1")
	}
	return document.A4(o.blank), nil
}

type pageStore interface {
	state.Store
	Pages() []int
}

func openStore(o options) (pageStore, error) {
	if o.storeDir == "" {
		return state.NewBook(), nil
	}
	return state.OpenFileStore(o.storeDir, state.Format(o.format))
}

// exportAll writes every page that has ink, or the first page when none do.
func exportAll(path string, pages document.Source, store pageStore) error {
	numbers := store.Pages()
	if len(numbers) == 0 {
		numbers = []int{1}
	}
	var out []export.Page
	for _, n := range numbers {
		if n > pages.PageCount() {
			log.Printf("[EXPORT] Skipping annotations for missing page %d", n)
			continue
		}
		img, err := pages.Page(n)
		if err != nil {
			return err
		}
		out = append(out, export.Page{Number: n, Raster: img, Paths: store.LoadPaths(n)})
	}
	return export.ExportPDF(path, out)
}

func snapshotOf(b *board.Board) net.Snapshot {
	return net.Snapshot{
		Page:      b.Page(),
		PageCount: b.PageCount(),
		Zoom:      b.Zoom(),
		Pan:       b.PanOffset(),
		Paths:     b.Paths(),
	}
}

func mirrorURL(addr string) string {
	host, port := splitAddr(addr)
	if host == "" {
		host = net.OutgoingIP()
	}
	return fmt.Sprintf("ws://%s:%d/ws", host, port)
}

func splitAddr(addr string) (string, int) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return addr, 0
	}
	port, _ := strconv.Atoi(addr[i+1:])
	return addr[:i], port
}

func runWatcher(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.Printf("[MIRROR] Watching %s", addr)
	return net.Watch(ctx, addr, func(s net.Snapshot) {
		log.Printf("[MIRROR] #%d page %d/%d, %d paths, zoom %.2f", s.Seq, s.Page, s.PageCount, len(s.Paths), s.Zoom)
	})
}

func runDiscover() error {
	return net.Browse(func(addr string) {
		fmt.Println(addr)
	})
}
