// Package canvas provides the detail plot view and the thumbnail strip.
package canvas

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/app"
	"bbox-annotator/internal/render"
	"bbox-annotator/pkg/geometry"
)

// PlotView is the detail view for the current image: every plottable box
// as an outline, mark overlays, and optionally a fetched background
// raster. Taps annotate; hovering reports the labels under the pointer.
type PlotView struct {
	widget.BaseWidget

	session *app.Session
	raster  *fynecanvas.Raster

	// proj maps the last rendered frame; scale bridges Fyne points to
	// raster pixels so pointer events land in data space correctly.
	proj   render.Projection
	scaleX float64
	scaleY float64

	// onHover receives the labels under the pointer, ok=false on a miss.
	onHover func(labels []string, ok bool)
	// onResult receives a human-readable outcome of the last click.
	onResult func(msg string)
}

// NewPlotView creates the detail view bound to a session.
func NewPlotView(session *app.Session) *PlotView {
	pv := &PlotView{session: session, scaleX: 1, scaleY: 1}
	pv.raster = fynecanvas.NewRaster(pv.draw)
	pv.ExtendBaseWidget(pv)
	return pv
}

// OnHover sets the hover label callback.
func (pv *PlotView) OnHover(callback func(labels []string, ok bool)) {
	pv.onHover = callback
}

// OnResult sets the click outcome callback.
func (pv *PlotView) OnResult(callback func(msg string)) {
	pv.onResult = callback
}

// draw renders the current image. It never blocks on a background fetch:
// CurrentBackground returns nil until the download resolves and the view
// refreshes again on EventBackgroundLoaded.
func (pv *PlotView) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 || !pv.session.Loaded() {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}

	id := pv.session.CurrentImageID()
	img, proj := render.Plot(pv.session.Dataset, pv.session.Controller.State(id), id, render.Options{
		Width:      w,
		Height:     h,
		FlipY:      pv.session.FlipY(),
		Background: pv.session.CurrentBackground(),
		Title:      "Bounding Boxes for image_id: " + id,
	})

	pv.proj = proj
	size := pv.Size()
	if size.Width > 0 && size.Height > 0 {
		pv.scaleX = float64(w) / float64(size.Width)
		pv.scaleY = float64(h) / float64(size.Height)
	}
	return img
}

// toData converts an event position to data coordinates.
func (pv *PlotView) toData(pos fyne.Position) (geometry.Point2D, bool) {
	if !pv.proj.Valid() {
		return geometry.Point2D{}, false
	}
	return pv.proj.ToData(float64(pos.X)*pv.scaleX, float64(pos.Y)*pv.scaleY), true
}

// Tapped annotates the box under the pointer, if any.
func (pv *PlotView) Tapped(ev *fyne.PointEvent) {
	p, ok := pv.toData(ev.Position)
	if !ok {
		return
	}

	res := pv.session.Click(p)
	pv.Refresh()
	if pv.onResult == nil {
		return
	}
	switch res.Outcome {
	case annotate.ClickMarked:
		pv.onResult(fmt.Sprintf("Added %q at (%.1f, %.1f)", res.MarkValue, p.X, p.Y))
	case annotate.ClickRejected:
		pv.onResult(fmt.Sprintf("Box already marked as %q - cannot add new annotation", res.ExistingMark))
	}
}

// MouseIn implements desktop.Hoverable.
func (pv *PlotView) MouseIn(*desktop.MouseEvent) {}

// MouseMoved drives the transient hover tooltip. Read-only: it never
// touches annotation state.
func (pv *PlotView) MouseMoved(ev *desktop.MouseEvent) {
	if pv.onHover == nil || !pv.session.ShowHoverLabels() {
		return
	}
	p, ok := pv.toData(ev.Position)
	if !ok {
		pv.onHover(nil, false)
		return
	}
	labels, ok := annotate.HoverLabels(pv.session.Dataset, pv.session.CurrentImageID(), p)
	pv.onHover(labels, ok)
}

// MouseOut implements desktop.Hoverable.
func (pv *PlotView) MouseOut() {
	if pv.onHover != nil {
		pv.onHover(nil, false)
	}
}

// Refresh redraws the plot.
func (pv *PlotView) Refresh() {
	pv.raster.Refresh()
	pv.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (pv *PlotView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pv.raster)
}
