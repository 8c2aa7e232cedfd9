package canvas

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/app"
	"bbox-annotator/internal/render"
	"bbox-annotator/pkg/colorutil"
)

// ThumbStrip shows a sliding window of image thumbnails. At most
// annotate.MaxVisibleThumbnails are rendered at once; the window follows
// the current image and tapping a thumbnail jumps to it.
type ThumbStrip struct {
	widget.BaseWidget

	session *app.Session
	box     *fyne.Container
}

// NewThumbStrip creates the strip bound to a session.
func NewThumbStrip(session *app.Session) *ThumbStrip {
	ts := &ThumbStrip{
		session: session,
		box:     container.NewHBox(),
	}
	ts.ExtendBaseWidget(ts)
	return ts
}

// Rebuild regenerates the visible thumbnails. Call it whenever the current
// image, the annotations, or a presentation toggle changes.
func (ts *ThumbStrip) Rebuild() {
	ts.box.Objects = nil
	if !ts.session.Loaded() {
		ts.box.Refresh()
		return
	}

	cfg := ts.session.Config()
	total := ts.session.ImageCount()
	current := ts.session.CurrentIndex()
	start, end := annotate.VisibleRange(total, current)

	ids := ts.session.Dataset.ImageIDs()
	for i := start; i < end; i++ {
		idx := i
		id := ids[i]
		thumb := render.Thumbnail(ts.session.Dataset, ts.session.Controller.State(id), id,
			cfg.ThumbnailSize, ts.session.FlipY(), cfg.HighQualityThumbnails)
		img := fynecanvas.NewImageFromImage(thumb)
		img.FillMode = fynecanvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(float32(cfg.ThumbnailSize), float32(cfg.ThumbnailSize)))
		item := newThumbItem(img, id, idx == current, func() {
			ts.session.SetIndex(idx)
		})
		ts.box.Add(item)
	}
	ts.box.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (ts *ThumbStrip) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewHScroll(ts.box))
}

// thumbItem is one tappable thumbnail with an optional selection border.
type thumbItem struct {
	widget.BaseWidget

	content fyne.CanvasObject
	onTap   func()
}

func newThumbItem(img *fynecanvas.Image, id string, selected bool, onTap func()) *thumbItem {
	border := fynecanvas.NewRectangle(color.Transparent)
	border.StrokeWidth = 2
	if selected {
		border.StrokeColor = colorutil.BoxOutline
	} else {
		border.StrokeColor = color.Transparent
	}

	caption := fynecanvas.NewText(id, theme.ForegroundColor())
	caption.TextSize = 10
	caption.Alignment = fyne.TextAlignCenter

	ti := &thumbItem{
		content: container.NewBorder(nil, caption, nil, nil,
			container.NewStack(img, border)),
		onTap: onTap,
	}
	ti.ExtendBaseWidget(ti)
	return ti
}

// Tapped jumps to this thumbnail's image.
func (ti *thumbItem) Tapped(*fyne.PointEvent) {
	if ti.onTap != nil {
		ti.onTap()
	}
}

// CreateRenderer implements fyne.Widget.
func (ti *thumbItem) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ti.content)
}
