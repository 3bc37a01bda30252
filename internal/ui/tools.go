package ui

import (
	"fmt"
	"image/color"

	"DocInk/internal/board"
	"DocInk/internal/gesture"
	"DocInk/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var toolNames = []string{"Draw", "Erase", "Select", "Pan"}

var toolByName = map[string]gesture.Tool{
	"Draw":   gesture.ToolDraw,
	"Erase":  gesture.ToolErase,
	"Select": gesture.ToolSelect,
	"Pan":    gesture.ToolPan,
}

var palette = []color.Color{
	color.Black,
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 255, A: 255},
}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// statusText summarizes the board for the status bar.
func statusText(b *board.Board) string {
	return fmt.Sprintf("Page %d/%d · %s · %.0f%%", b.Page(), b.PageCount(), b.Tool(), b.Zoom()*100)
}

// NewToolbar builds the tool, pen and view controls for w. onExport and
// onCrop may be nil to hide the document and selection export actions.
func NewToolbar(w *InkWidget, onExport, onCrop func()) fyne.CanvasObject {
	b := w.Board()

	tools := widget.NewRadioGroup(toolNames, func(name string) {
		if t, ok := toolByName[name]; ok {
			b.SetTool(t)
		}
	})
	tools.Horizontal = true
	tools.Required = true
	tools.SetSelected(toolNames[b.Tool()])

	onColorTapped := func(c color.Color) {
		b.SetColor(state.ColorString(c))
		if b.Tool() == gesture.ToolErase {
			tools.SetSelected("Draw")
		}
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	strokeSlider := widget.NewSlider(1, 20)
	strokeSlider.SetValue(b.StrokeWidth())
	strokeSlider.OnChanged = func(val float64) { b.SetStrokeWidth(val) }
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), strokeSlider)

	items := []widget.ToolbarItem{
		widget.NewToolbarAction(theme.ContentUndoIcon(), b.Undo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomOutIcon(), b.ZoomOut),
		widget.NewToolbarAction(theme.ZoomFitIcon(), b.ResetZoom),
		widget.NewToolbarAction(theme.ZoomInIcon(), b.ZoomIn),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.NavigateBackIcon(), b.PrevPage),
		widget.NewToolbarAction(theme.NavigateNextIcon(), b.NextPage),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), b.Clear),
	}
	if onExport != nil {
		items = append(items, widget.NewToolbarAction(theme.DocumentSaveIcon(), onExport))
	}
	if onCrop != nil {
		items = append(items, widget.NewToolbarAction(theme.ContentCutIcon(), onCrop))
	}

	return container.NewHBox(
		tools,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewToolbar(items...),
		layout.NewSpacer(),
	)
}
