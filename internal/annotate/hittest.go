package annotate

import (
	"bbox-annotator/internal/dataset"
	"bbox-annotator/pkg/geometry"
)

// HitTest maps a pointer position in data coordinates to at most one row
// of the given image. Candidates are tested in native dataset order and
// the first containing box wins; overlapping boxes therefore resolve
// deterministically to the earlier row. Rows with a missing coordinate
// are never candidates.
func HitTest(ds *dataset.Dataset, imageID string, p geometry.Point2D) (dataset.RowRef, bool) {
	for _, ref := range ds.RowsFor(imageID) {
		row := ds.Row(ref)
		if !row.Plottable() {
			continue
		}
		if row.Box.Contains(p) {
			return ref, true
		}
	}
	return 0, false
}

// HoverLabels returns copies of the label values of the row under the
// pointer, or ok=false when the pointer misses every box. The query is
// read-only; it never touches annotation state.
func HoverLabels(ds *dataset.Dataset, imageID string, p geometry.Point2D) ([]string, bool) {
	ref, ok := HitTest(ds, imageID, p)
	if !ok {
		return nil, false
	}
	return ds.Labels(ref), true
}
