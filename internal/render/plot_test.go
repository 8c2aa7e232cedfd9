package render

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/dataset"
	"bbox-annotator/pkg/colorutil"
	"bbox-annotator/pkg/geometry"
)

func loadDataset(t *testing.T, content string) *dataset.Dataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boxes.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp csv: %v", err)
	}
	ds, err := dataset.Load(path)
	if err != nil {
		t.Fatalf("loading dataset: %v", err)
	}
	return ds
}

func TestProjectionRoundTrip(t *testing.T) {
	ds := loadDataset(t, "image_id,x_min,x_max,y_min,y_max\nimg1,0,100,0,50\n")

	for _, flip := range []bool{true, false} {
		p := NewProjection(ds, "img1", 400, 300, flip)
		if !p.Valid() {
			t.Fatal("projection should be valid")
		}
		// Extents include the 10-unit margin.
		if p.XMin != -10 || p.XMax != 110 || p.YMin != -10 || p.YMax != 60 {
			t.Errorf("flip=%v: unexpected extents: [%v %v] [%v %v]", flip, p.XMin, p.XMax, p.YMin, p.YMax)
		}

		pt := geometry.NewPoint2D(25, 30)
		px, py := p.ToPixel(pt)
		back := p.ToData(float64(px), float64(py))
		if math.Abs(back.X-pt.X) > 1 || math.Abs(back.Y-pt.Y) > 1 {
			t.Errorf("flip=%v: round trip drifted: %v -> (%d,%d) -> %v", flip, pt, px, py, back)
		}
	}
}

func TestFlipYInvertsVertical(t *testing.T) {
	ds := loadDataset(t, "image_id,x_min,x_max,y_min,y_max\nimg1,0,100,0,100\n")

	flipped := NewProjection(ds, "img1", 200, 200, true)
	cartesian := NewProjection(ds, "img1", 200, 200, false)

	low := geometry.NewPoint2D(50, 0) // y_min edge
	_, pyFlipped := flipped.ToPixel(low)
	_, pyCartesian := cartesian.ToPixel(low)

	// Image-style: small y near the top. Cartesian: small y near the bottom.
	if pyFlipped > 100 {
		t.Errorf("flipped projection should place y=0 near the top, got py=%d", pyFlipped)
	}
	if pyCartesian < 100 {
		t.Errorf("cartesian projection should place y=0 near the bottom, got py=%d", pyCartesian)
	}
}

func TestPlotDrawsOutlines(t *testing.T) {
	ds := loadDataset(t, "image_id,x_min,x_max,y_min,y_max\nimg1,0,100,0,100\n")
	c := annotate.NewController(ds)

	img, proj := Plot(ds, c.State("img1"), "img1", Options{Width: 300, Height: 300, FlipY: true})
	if !proj.Valid() {
		t.Fatal("expected a valid projection")
	}

	// A point on the box's top edge must carry the outline color.
	px, py := proj.ToPixel(geometry.NewPoint2D(50, 0))
	if !sameColor(img.NRGBAAt(px, py), colorutil.BoxOutline) {
		t.Errorf("expected outline color at (%d,%d), got %v", px, py, img.NRGBAAt(px, py))
	}
	// A point well inside the box stays background white.
	cx, cy := proj.ToPixel(geometry.NewPoint2D(50, 50))
	if !sameColor(img.NRGBAAt(cx, cy), colorutil.White) {
		t.Errorf("expected white at box center, got %v", img.NRGBAAt(cx, cy))
	}
}

func TestPlotDrawsMarks(t *testing.T) {
	ds := loadDataset(t, "image_id,x_min,x_max,y_min,y_max\nimg1,0,100,0,100\n")
	c := annotate.NewController(ds)

	res := c.Click("img1", geometry.NewPoint2D(50, 50))
	if res.Outcome != annotate.ClickMarked {
		t.Fatalf("setup click failed: %v", res.Outcome)
	}

	img, proj := Plot(ds, c.State("img1"), "img1", Options{Width: 300, Height: 300, FlipY: true})
	px, py := proj.ToPixel(geometry.NewPoint2D(50, 50))
	if !sameColor(img.NRGBAAt(px, py), colorutil.SessionX) {
		t.Errorf("expected x glyph color at click point, got %v", img.NRGBAAt(px, py))
	}
}

func TestPreexistingFlagRendersApart(t *testing.T) {
	ds := loadDataset(t, `image_id,x_min,x_max,y_min,y_max,marked
img1,0,100,0,100,yes
img1,200,300,0,100,
`)
	c := annotate.NewController(ds)
	if res := c.Click("img1", geometry.NewPoint2D(250, 50)); res.Outcome != annotate.ClickMarked {
		t.Fatalf("setup click failed: %v", res.Outcome)
	}

	img, proj := Plot(ds, c.State("img1"), "img1", Options{Width: 400, Height: 300, FlipY: true})

	px, py := proj.ToPixel(geometry.NewPoint2D(50, 50))
	if !sameColor(img.NRGBAAt(px, py), colorutil.ExistingX) {
		t.Errorf("file-loaded flag should use the existing-mark color, got %v", img.NRGBAAt(px, py))
	}
	px, py = proj.ToPixel(geometry.NewPoint2D(250, 50))
	if !sameColor(img.NRGBAAt(px, py), colorutil.SessionX) {
		t.Errorf("session flag should use the session color, got %v", img.NRGBAAt(px, py))
	}
}

func TestPlotWithoutPlottableRows(t *testing.T) {
	ds := loadDataset(t, "image_id,x_min,x_max,y_min,y_max\nimg1,,,,\n")

	img, proj := Plot(ds, nil, "img1", Options{Width: 200, Height: 200})
	if proj.Valid() {
		t.Error("projection must be invalid without plottable rows")
	}
	if img == nil || img.Bounds().Dx() != 200 {
		t.Error("placeholder image must still be produced")
	}
}

func TestMalformedRowDoesNotAbortPlot(t *testing.T) {
	ds := loadDataset(t, `image_id,x_min,x_max,y_min,y_max
img1,bogus,100,0,100
img1,0,50,0,50
`)
	img, proj := Plot(ds, nil, "img1", Options{Width: 200, Height: 200, FlipY: true})
	if !proj.Valid() {
		t.Fatal("the well-formed row should still plot")
	}
	px, py := proj.ToPixel(geometry.NewPoint2D(25, 0))
	if !sameColor(img.NRGBAAt(px, py), colorutil.BoxOutline) {
		t.Error("well-formed row's outline missing")
	}
}

func TestThumbnailSizes(t *testing.T) {
	ds := loadDataset(t, "image_id,x_min,x_max,y_min,y_max\nimg1,0,10,0,10\n")

	for _, hq := range []bool{true, false} {
		thumb := Thumbnail(ds, nil, "img1", 96, true, hq)
		if thumb.Bounds().Dx() != 96 || thumb.Bounds().Dy() != 96 {
			t.Errorf("hq=%v: expected 96x96, got %v", hq, thumb.Bounds())
		}
	}
}

func sameColor(a, b color.NRGBA) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B && a.A == b.A
}
