// Package render draws bounding-box plots and thumbnails as raster images.
// It replaces an external plotting dependency with a small projection from
// data space to pixel space plus a handful of drawing primitives.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawHLine draws a horizontal line segment, clipped to the image.
func drawHLine(img *image.NRGBA, x0, x1, y int, c color.NRGBA) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		setClipped(img, x, y, c)
	}
}

// drawVLine draws a vertical line segment, clipped to the image.
func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		setClipped(img, x, y, c)
	}
}

// drawRectOutline draws a 1px rectangle outline.
func drawRectOutline(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	drawHLine(img, x0, x1, y0, c)
	drawHLine(img, x0, x1, y1, c)
	drawVLine(img, x0, y0, y1, c)
	drawVLine(img, x1, y0, y1, c)
}

// drawXGlyph draws an x marker centered at (cx, cy) with the given arm
// length, two pixels wide so it reads at thumbnail sizes.
func drawXGlyph(img *image.NRGBA, cx, cy, arm int, c color.NRGBA) {
	for d := -arm; d <= arm; d++ {
		setClipped(img, cx+d, cy+d, c)
		setClipped(img, cx+d+1, cy+d, c)
		setClipped(img, cx+d, cy-d, c)
		setClipped(img, cx+d+1, cy-d, c)
	}
}

func setClipped(img *image.NRGBA, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, c)
	}
}

// drawText draws a string with its anchor at (x, y), using the fixed
// 7x13 basic font.
func drawText(img *image.NRGBA, text string, x, y int, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawTextCentered draws a string horizontally centered on x.
func drawTextCentered(img *image.NRGBA, text string, x, y int, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(text)
	d.Dot = fixed.P(x, y).Sub(fixed.Point26_6{X: w / 2})
	d.DrawString(text)
}

// fill paints the whole image with one color.
func fill(img *image.NRGBA, c color.NRGBA) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
