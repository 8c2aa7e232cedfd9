package annotate

import (
	"testing"

	"bbox-annotator/pkg/geometry"
)

func TestHitTestTieBreak(t *testing.T) {
	// Rows A and B overlap; point P is inside both. A is first in dataset
	// order and must always win.
	ds := loadDataset(t, `image_id,x_min,x_max,y_min,y_max,label_sku
img1,0,10,0,10,A
img1,5,15,5,15,B
`)

	for i := 0; i < 3; i++ {
		ref, ok := HitTest(ds, "img1", geometry.NewPoint2D(7, 7))
		if !ok {
			t.Fatal("expected a hit")
		}
		if ref != 0 {
			t.Fatalf("overlap must resolve to the first row, got row %d", ref)
		}
	}
}

func TestHitTestSkipsUnplottableRows(t *testing.T) {
	ds := loadDataset(t, `image_id,x_min,x_max,y_min,y_max
img1,,10,0,10
img1,0,10,0,10
`)

	ref, ok := HitTest(ds, "img1", geometry.NewPoint2D(5, 5))
	if !ok {
		t.Fatal("expected a hit on the complete row")
	}
	if ref != 1 {
		t.Errorf("row with missing coordinate must be skipped, got row %d", ref)
	}
}

func TestHitTestMiss(t *testing.T) {
	ds := loadDataset(t, twoBoxCSV)
	if _, ok := HitTest(ds, "img1", geometry.NewPoint2D(15, 5)); ok {
		t.Error("point between boxes should miss")
	}
	if _, ok := HitTest(ds, "nope", geometry.NewPoint2D(5, 5)); ok {
		t.Error("unknown image should miss")
	}
}

func TestHoverLabels(t *testing.T) {
	ds := loadDataset(t, twoBoxCSV)

	labels, ok := HoverLabels(ds, "img1", geometry.NewPoint2D(25, 5))
	if !ok {
		t.Fatal("expected labels under the pointer")
	}
	if len(labels) != 1 || labels[0] != "A200" {
		t.Errorf("unexpected labels: %v", labels)
	}

	if _, ok := HoverLabels(ds, "img1", geometry.NewPoint2D(15, 5)); ok {
		t.Error("miss should return ok=false")
	}
}
