package render

import (
	"image"
	"image/draw"
	"log"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/dataset"
	"bbox-annotator/pkg/colorutil"
	"bbox-annotator/pkg/geometry"
)

// dataMargin is the padding, in data units, added around the union of all
// boxes so outlines never touch the plot edge.
const dataMargin = 10

// Options controls a single plot rendering.
type Options struct {
	Width, Height int
	// FlipY selects image-style orientation: Y increases downward. When
	// false the plot uses Cartesian orientation.
	FlipY bool
	// Background, when non-nil, is composited under the boxes, stretched
	// to the data extents.
	Background image.Image
	Title      string
}

// Projection maps between data coordinates and pixel coordinates for one
// rendered plot. The UI uses it to turn pointer positions back into data
// space for hit-testing.
type Projection struct {
	XMin, XMax float64 // data extents including margin
	YMin, YMax float64
	Width      int
	Height     int
	FlipY      bool
	valid      bool
}

// Valid reports whether the image had any plottable rows. An invalid
// projection cannot map coordinates.
func (p Projection) Valid() bool {
	return p.valid
}

// ToPixel converts a data-space point to pixel coordinates.
func (p Projection) ToPixel(pt geometry.Point2D) (int, int) {
	sx := (pt.X - p.XMin) / (p.XMax - p.XMin)
	sy := (pt.Y - p.YMin) / (p.YMax - p.YMin)
	if !p.FlipY {
		sy = 1 - sy
	}
	return int(sx * float64(p.Width)), int(sy * float64(p.Height))
}

// ToData converts pixel coordinates back to data space.
func (p Projection) ToData(px, py float64) geometry.Point2D {
	sx := px / float64(p.Width)
	sy := py / float64(p.Height)
	if !p.FlipY {
		sy = 1 - sy
	}
	return geometry.Point2D{
		X: p.XMin + sx*(p.XMax-p.XMin),
		Y: p.YMin + sy*(p.YMax-p.YMin),
	}
}

// NewProjection computes the data extents of an image's plottable rows
// plus the standard margin. valid is false when nothing is plottable.
func NewProjection(ds *dataset.Dataset, imageID string, width, height int, flipY bool) Projection {
	var xMins, xMaxs, yMins, yMaxs []float64
	for _, ref := range ds.RowsFor(imageID) {
		row := ds.Row(ref)
		if !row.Plottable() {
			continue
		}
		xMins = append(xMins, row.Box.XMin)
		xMaxs = append(xMaxs, row.Box.XMax)
		yMins = append(yMins, row.Box.YMin)
		yMaxs = append(yMaxs, row.Box.YMax)
	}

	p := Projection{Width: width, Height: height, FlipY: flipY}
	if len(xMins) == 0 {
		return p
	}
	p.XMin = floats.Min(xMins) - dataMargin
	p.XMax = floats.Max(xMaxs) + dataMargin
	p.YMin = floats.Min(yMins) - dataMargin
	p.YMax = floats.Max(yMaxs) + dataMargin
	p.valid = true
	return p
}

// Plot renders one image's boxes and marks. It always returns a usable
// image: a malformed row is skipped with a log line, and an image without
// plottable rows renders as a placeholder. The returned projection lets
// the caller map pointer positions back to data coordinates.
func Plot(ds *dataset.Dataset, st *annotate.State, imageID string, opts Options) (*image.NRGBA, Projection) {
	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	fill(img, colorutil.White)

	proj := NewProjection(ds, imageID, opts.Width, opts.Height, opts.FlipY)
	if !proj.Valid() {
		drawTextCentered(img, "No bounding box data available", opts.Width/2, opts.Height/2, colorutil.Gray)
		if opts.Title != "" {
			drawTextCentered(img, opts.Title, opts.Width/2, 16, colorutil.Black)
		}
		return img, proj
	}

	if opts.Background != nil {
		compositeBackground(img, opts.Background)
	}

	// Box outlines, native row order.
	for _, ref := range ds.RowsFor(imageID) {
		row := ds.Row(ref)
		if !row.Plottable() {
			continue
		}
		x0, y0 := proj.ToPixel(geometry.Point2D{X: row.Box.XMin, Y: row.Box.YMin})
		x1, y1 := proj.ToPixel(geometry.Point2D{X: row.Box.XMax, Y: row.Box.YMax})
		drawRectOutline(img, x0, y0, x1, y1, colorutil.BoxOutline)
	}

	// Mark overlays. Flags draw as an x glyph, numbers and custom tags as
	// text, each with its own color so existing file marks stand apart.
	for _, ref := range ds.RowsFor(imageID) {
		row := ds.Row(ref)
		if !row.Mark.IsSet() || !row.Plottable() {
			continue
		}
		pos, preexisting := markInfo(st, ref, row)
		px, py := proj.ToPixel(pos)
		switch row.Mark.Kind {
		case dataset.MarkFlagged:
			c := colorutil.SessionX
			if preexisting {
				c = colorutil.ExistingX
			}
			drawXGlyph(img, px, py, 5, c)
		case dataset.MarkNumbered:
			drawTextCentered(img, row.Mark.Display(), px, py+5, colorutil.SessionNumber)
		case dataset.MarkCustom:
			drawTextCentered(img, row.Mark.Display(), px, py+5, colorutil.ExistingTag)
		default:
			log.Printf("render: row %d has unknown mark kind %v", ref, row.Mark.Kind)
		}
	}

	if opts.Title != "" {
		drawTextCentered(img, opts.Title, opts.Width/2, 16, colorutil.Black)
	}
	return img, proj
}

// markInfo returns where to draw a row's mark and whether it was loaded
// from the source file rather than placed this session. The position is
// the click point of the row's annotation entry when one exists,
// otherwise the box center. A marked row with no entry can only have come
// from the file.
func markInfo(st *annotate.State, ref dataset.RowRef, row *dataset.Row) (geometry.Point2D, bool) {
	if st != nil {
		for i := len(st.Annotations) - 1; i >= 0; i-- {
			if st.Annotations[i].Row == ref {
				pos := geometry.Point2D{X: st.Annotations[i].X, Y: st.Annotations[i].Y}
				return pos, st.Annotations[i].Preexisting
			}
		}
	}
	return row.Box.Center(), true
}

// compositeBackground stretches the fetched raster over the whole plot
// area under the outlines.
func compositeBackground(dst *image.NRGBA, bg image.Image) {
	scaled := imaging.Resize(bg, dst.Bounds().Dx(), dst.Bounds().Dy(), imaging.Linear)
	draw.Draw(dst, dst.Bounds(), scaled, image.Point{}, draw.Src)
}
