package ui

import (
	"errors"
	"image"
	"log"

	"DocInk/internal/board"
	"DocInk/internal/document"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Options configures RunApp.
type Options struct {
	Title string
	Board *board.Board
	Pages document.Source
	// OnChange is called on the UI goroutine after every board change.
	OnChange func()
	// Export writes the annotated document. Nil hides the export action.
	Export func() error
	// ExportSelection writes the composite of the lasso selection. Nil hides
	// the crop action.
	ExportSelection func(image.Image) error
}

var errNoSelection = errors.New("select some ink first")

// exportSelection passes the composite of b's selection to save.
func exportSelection(b *board.Board, save func(image.Image) error) error {
	img, ok := b.CompositeSelection()
	if !ok {
		return errNoSelection
	}
	return save(img)
}

// ShowPage loads page n from src into w.
func ShowPage(w *InkWidget, src document.Source, n int) error {
	img, err := src.Page(n)
	if err != nil {
		return err
	}
	w.ShowPage(n, img)
	return nil
}

// RunApp opens the annotation window and blocks until it is closed.
func RunApp(opts Options) {
	myApp := app.New()
	myWindow := myApp.NewWindow(opts.Title)
	myWindow.Resize(fyne.NewSize(1024, 768))

	b := opts.Board
	b.SetPageCount(opts.Pages.PageCount())
	ink := NewInkWidget(b)
	status := widget.NewLabel("")

	ink.OnChange = func() {
		status.SetText(statusText(b))
		if opts.OnChange != nil {
			opts.OnChange()
		}
	}
	b.OnPageChange = func(n int) {
		if err := ShowPage(ink, opts.Pages, n); err != nil {
			log.Printf("[DOC] Page %d: %v", n, err)
			dialog.ShowError(err, myWindow)
		}
	}

	var onExport func()
	if opts.Export != nil {
		onExport = func() {
			if err := opts.Export(); err != nil {
				dialog.ShowError(err, myWindow)
				return
			}
			dialog.ShowInformation("Export", "Annotated document saved", myWindow)
		}
	}
	var onCrop func()
	if opts.ExportSelection != nil {
		onCrop = func() {
			if err := exportSelection(b, opts.ExportSelection); err != nil {
				dialog.ShowError(err, myWindow)
				return
			}
			dialog.ShowInformation("Export", "Selection saved", myWindow)
		}
	}
	toolbar := NewToolbar(ink, onExport, onCrop)

	if err := ShowPage(ink, opts.Pages, 1); err != nil {
		log.Printf("[DOC] Page 1: %v", err)
	}
	status.SetText(statusText(b))

	content := container.NewBorder(toolbar, status, nil, nil, ink)
	myWindow.SetContent(content)
	myWindow.ShowAndRun()
}
