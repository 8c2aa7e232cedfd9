package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/dataset"
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

const sessionCSV = `image_id,x_min,x_max,y_min,y_max,label_sku
img1,0,10,0,10,A100
img1,20,30,0,10,A200
img2,0,10,0,10,B100
`

func TestSaveAnnotations(t *testing.T) {
	ds := loadDataset(t, sessionCSV)
	ctrl := annotate.NewController(ds)
	ctrl.SetMode(annotate.ModeNumber)
	ctrl.Click("img1", geometry.NewPoint2D(5, 5))
	ctrl.Click("img2", geometry.NewPoint2D(5, 5))

	dir := t.TempDir()
	if err := SaveAnnotations(dir, ds, ctrl); err != nil {
		t.Fatalf("SaveAnnotations failed: %v", err)
	}

	t.Run("MarkedDataset", func(t *testing.T) {
		reloaded, err := dataset.Load(filepath.Join(dir, "marked_skus.csv"))
		if err != nil {
			t.Fatalf("reloading marked_skus.csv: %v", err)
		}
		if got := reloaded.Row(0).Mark.Legacy(); got != "1" {
			t.Errorf("row 0 marked should be 1, got %q", got)
		}
		if got := reloaded.Row(2).Mark.Legacy(); got != "2" {
			t.Errorf("row 2 marked should be 2, got %q", got)
		}
		if reloaded.Row(1).Mark.IsSet() {
			t.Error("row 1 should stay unmarked")
		}
	})

	t.Run("AnnotationLog", func(t *testing.T) {
		f, err := os.Open(filepath.Join(dir, "annotations_marked.csv"))
		if err != nil {
			t.Fatalf("opening annotation log: %v", err)
		}
		defer f.Close()

		records, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("parsing annotation log: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header + 2 events, got %d records", len(records))
		}

		header := records[0]
		want := []string{"image_id", "x", "y", "mark_value", "label_sku"}
		for i, col := range want {
			if header[i] != col {
				t.Errorf("header[%d] = %q, want %q", i, header[i], col)
			}
		}
		if records[1][0] != "img1" || records[1][3] != "1" || records[1][4] != "A100" {
			t.Errorf("unexpected first event: %v", records[1])
		}
		if records[2][0] != "img2" || records[2][3] != "2" || records[2][4] != "B100" {
			t.Errorf("unexpected second event: %v", records[2])
		}
	})
}

func TestSaveAnnotationsWithoutAnnotations(t *testing.T) {
	ds := loadDataset(t, sessionCSV)
	ctrl := annotate.NewController(ds)

	dir := t.TempDir()
	if err := SaveAnnotations(dir, ds, ctrl); err != nil {
		t.Fatalf("SaveAnnotations failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "marked_skus.csv")); err != nil {
		t.Error("marked_skus.csv must be written even with no annotations")
	}
	if _, err := os.Stat(filepath.Join(dir, "annotations_marked.csv")); !os.IsNotExist(err) {
		t.Error("annotation log should be skipped when empty")
	}
}

func TestSaveAllPlots(t *testing.T) {
	ds := loadDataset(t, sessionCSV)
	ctrl := annotate.NewController(ds)

	dir := t.TempDir()
	var calls []int
	err := SaveAllPlots(context.Background(), dir, ds, ctrl, true, func(current, total int, message string) {
		calls = append(calls, current)
		if total != 2 {
			t.Errorf("total should be 2, got %d", total)
		}
		if message == "" {
			t.Error("progress message should not be empty")
		}
	})
	if err != nil {
		t.Fatalf("SaveAllPlots failed: %v", err)
	}

	for _, id := range []string{"img1", "img2"} {
		if _, err := os.Stat(filepath.Join(dir, "annotated_"+id+".png")); err != nil {
			t.Errorf("missing plot for %s: %v", id, err)
		}
	}
	// Per-image progress plus the completion report.
	if len(calls) != 3 || calls[len(calls)-1] != 2 {
		t.Errorf("unexpected progress sequence: %v", calls)
	}
}

func TestSaveAllPlotsCancellation(t *testing.T) {
	ds := loadDataset(t, sessionCSV)
	ctrl := annotate.NewController(ds)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SaveAllPlots(ctx, t.TempDir(), ds, ctrl, true, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewOutputDir(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "input.csv")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, err := NewOutputDir(source)
	if err != nil {
		t.Fatalf("NewOutputDir failed: %v", err)
	}
	if filepath.Dir(dir) != base {
		t.Errorf("output dir should be colocated with the input: %s", dir)
	}
	if !strings.HasPrefix(filepath.Base(dir), "plots_") {
		t.Errorf("output dir should be timestamped: %s", dir)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Error("output dir should exist")
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := sanitizeFileName(`a/b\c:d`); got != "a_b_c_d" {
		t.Errorf("sanitizeFileName = %q", got)
	}
}
