// Package export persists annotation sessions: the updated dataset CSV,
// the annotation event log, and rendered plot images.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/dataset"
	"bbox-annotator/internal/render"
)

const (
	markedFileName      = "marked_skus.csv"
	annotationsFileName = "annotations_marked.csv"
	plotSize            = 600
)

// ProgressCallback reports incremental progress of a long-running batch.
// It is invoked synchronously from the exporting goroutine.
type ProgressCallback func(current, total int, message string)

// NewOutputDir creates a timestamped output directory colocated with the
// input file (or under the working directory when the source path is
// unknown) and returns its path.
func NewOutputDir(sourcePath string) (string, error) {
	base := ""
	if sourcePath != "" {
		base = filepath.Dir(sourcePath)
	}
	if base == "" || base == "." {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		base = wd
	}

	dir := filepath.Join(base, "plots_"+time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: creating output directory: %w", err)
	}
	return dir, nil
}

// SaveAnnotations writes marked_skus.csv (the full dataset with its marked
// column updated in place) and, when any annotations exist,
// annotations_marked.csv (one row per annotation event, chronological
// order, with the label values captured at mark time).
//
// The dataset file is always attempted, even when the annotation log
// fails; in-memory state is never touched, so the session continues
// after an I/O error.
func SaveAnnotations(dir string, ds *dataset.Dataset, ctrl *annotate.Controller) error {
	markedPath := filepath.Join(dir, markedFileName)
	if err := ds.SaveCSV(markedPath); err != nil {
		return fmt.Errorf("export: saving %s: %w", markedFileName, err)
	}
	log.Printf("export: input file saved to %s (%d rows)", markedPath, ds.Len())

	anns := ctrl.Annotations()
	if len(anns) == 0 {
		log.Print("export: no annotations were made to save")
		return nil
	}

	annPath := filepath.Join(dir, annotationsFileName)
	if err := writeAnnotationsCSV(annPath, ds.LabelColumns(), anns); err != nil {
		return fmt.Errorf("export: saving %s: %w", annotationsFileName, err)
	}
	log.Printf("export: %d annotation entries saved to %s", len(anns), annPath)
	return nil
}

// writeAnnotationsCSV writes the annotation event log: image_id, x, y,
// mark_value, then one column per label_* column.
func writeAnnotationsCSV(path string, labelCols []string, anns []annotate.Annotation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"image_id", "x", "y", "mark_value"}, labelCols...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, ann := range anns {
		rec := []string{
			ann.ImageID,
			formatCoord(ann.X),
			formatCoord(ann.Y),
			ann.MarkValue,
		}
		labels := ann.Labels
		for i := range labelCols {
			if i < len(labels) {
				rec = append(rec, labels[i])
			} else {
				rec = append(rec, "")
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SaveAllPlots renders annotated_<image_id>.png for every image in the
// session. A failed image is logged and skipped, never aborting the rest
// of the batch. Progress is reported synchronously per image; ctx is
// checked between images, so cancellation takes effect at image
// granularity.
func SaveAllPlots(ctx context.Context, dir string, ds *dataset.Dataset, ctrl *annotate.Controller, flipY bool, progress ProgressCallback) error {
	ids := ds.ImageIDs()
	total := len(ids)

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export: cancelled after %d of %d plots: %w", i, total, err)
		}
		if progress != nil {
			progress(i+1, total, fmt.Sprintf("Saving plot %d of %d (Image ID: %s)", i+1, total, id))
		}

		img, _ := render.Plot(ds, ctrl.State(id), id, render.Options{
			Width:  plotSize,
			Height: plotSize,
			FlipY:  flipY,
			Title:  "Bounding Boxes for image_id: " + id,
		})

		out := filepath.Join(dir, "annotated_"+sanitizeFileName(id)+".png")
		if err := imaging.Save(img, out); err != nil {
			log.Printf("export: saving plot for %s: %v", id, err)
			continue
		}
	}

	if progress != nil {
		progress(total, total, fmt.Sprintf("All plots saved successfully! (%d images)", total))
	}
	log.Printf("export: all annotated plots saved to %s", dir)
	return nil
}

// sanitizeFileName keeps image ids usable as file names.
func sanitizeFileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, id)
}
