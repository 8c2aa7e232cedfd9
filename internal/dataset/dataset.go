// Package dataset holds the shared tabular store of bounding-box rows.
//
// The dataset exclusively owns its rows. Callers address rows through
// stable RowRef indices, never by coordinate or mark-value equality, so
// mutations stay unambiguous even when several rows carry the same mark.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"bbox-annotator/pkg/geometry"
)

// Required input columns, in no particular order.
var requiredColumns = []string{"image_id", "x_min", "x_max", "y_min", "y_max"}

// RowRef is a stable index into the dataset's row slice.
type RowRef int

// Row is one bounding-box record tied to an image_id.
type Row struct {
	ImageID string
	Box     geometry.Box
	Mark    Mark

	// record is the raw source record, preserved so columns the tool does
	// not interpret survive a load/save round trip.
	record []string
}

// Plottable reports whether the row has all four coordinates.
func (r *Row) Plottable() bool {
	return r.Box.Valid()
}

// Dataset is the in-memory table of all bounding-box rows, keyed by
// image_id and row index.
type Dataset struct {
	header []string
	rows   []*Row

	// Column indices resolved from the header.
	colImageID int
	colXMin    int
	colXMax    int
	colYMin    int
	colYMax    int
	colMarked  int
	labelCols  []int
	urlCols    []int

	imageIDs []string // first-appearance order
	byImage  map[string][]RowRef
	imageURL map[string]string

	sourcePath string
}

// build constructs a Dataset from a header and data records. A "marked"
// column is synthesized when the source has none. Unparsable numeric
// fields become NaN instead of failing the load.
func build(header []string, records [][]string, sourcePath string) (*Dataset, error) {
	ds := &Dataset{
		header:     append([]string(nil), header...),
		byImage:    make(map[string][]RowRef),
		imageURL:   make(map[string]string),
		sourcePath: sourcePath,
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("dataset: required column %q missing from %s", name, sourcePath)
		}
	}
	ds.colImageID = idx["image_id"]
	ds.colXMin = idx["x_min"]
	ds.colXMax = idx["x_max"]
	ds.colYMin = idx["y_min"]
	ds.colYMax = idx["y_max"]

	if i, ok := idx["marked"]; ok {
		ds.colMarked = i
	} else {
		ds.colMarked = len(ds.header)
		ds.header = append(ds.header, "marked")
	}

	ds.labelCols = detectLabelColumns(ds.header)
	ds.urlCols = detectURLColumns(ds.header, records)

	for _, rec := range records {
		// Pad short records so every row has a slot for every column,
		// including a synthesized marked column.
		for len(rec) < len(ds.header) {
			rec = append(rec, "")
		}

		row := &Row{
			ImageID: strings.TrimSpace(rec[ds.colImageID]),
			Box: geometry.NewBox(
				parseCoord(rec[ds.colXMin]),
				parseCoord(rec[ds.colXMax]),
				parseCoord(rec[ds.colYMin]),
				parseCoord(rec[ds.colYMax]),
			),
			Mark:   ParseMark(rec[ds.colMarked]),
			record: rec,
		}

		ref := RowRef(len(ds.rows))
		ds.rows = append(ds.rows, row)
		if _, seen := ds.byImage[row.ImageID]; !seen {
			ds.imageIDs = append(ds.imageIDs, row.ImageID)
		}
		ds.byImage[row.ImageID] = append(ds.byImage[row.ImageID], ref)

		// First non-empty URL wins as the image's background.
		if _, have := ds.imageURL[row.ImageID]; !have {
			if url := firstURL(rec, ds.urlCols); url != "" {
				ds.imageURL[row.ImageID] = url
			}
		}
	}

	return ds, nil
}

// parseCoord parses a numeric field, coercing failures to NaN.
func parseCoord(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Len returns the total row count.
func (ds *Dataset) Len() int {
	return len(ds.rows)
}

// SourcePath returns the path the dataset was loaded from.
func (ds *Dataset) SourcePath() string {
	return ds.sourcePath
}

// Header returns the output column names, including the marked column.
func (ds *Dataset) Header() []string {
	return ds.header
}

// ImageIDs returns all distinct image identifiers in first-appearance order.
func (ds *Dataset) ImageIDs() []string {
	return ds.imageIDs
}

// RowsFor returns the refs of all rows belonging to an image, in native
// dataset order. The order is the hit-test priority order.
func (ds *Dataset) RowsFor(imageID string) []RowRef {
	return ds.byImage[imageID]
}

// Row returns the row for a ref, or nil if the ref is out of range.
func (ds *Dataset) Row(ref RowRef) *Row {
	if ref < 0 || int(ref) >= len(ds.rows) {
		return nil
	}
	return ds.rows[ref]
}

// SetMark mutates a row's mark in place. The row's raw record is updated
// at the same time so a later save writes the current state.
func (ds *Dataset) SetMark(ref RowRef, m Mark) {
	row := ds.Row(ref)
	if row == nil {
		return
	}
	row.Mark = m
	row.record[ds.colMarked] = m.Legacy()
}

// ClearMarks removes every mark on the given image's rows, regardless of
// whether they were made this session or loaded from the source file.
func (ds *Dataset) ClearMarks(imageID string) {
	for _, ref := range ds.byImage[imageID] {
		ds.SetMark(ref, Unmarked())
	}
}

// LabelColumns returns the names of the label_* columns, in header order.
func (ds *Dataset) LabelColumns() []string {
	names := make([]string, len(ds.labelCols))
	for i, c := range ds.labelCols {
		names[i] = ds.header[c]
	}
	return names
}

// Labels returns copies of a row's label values, parallel to LabelColumns.
func (ds *Dataset) Labels(ref RowRef) []string {
	row := ds.Row(ref)
	if row == nil {
		return nil
	}
	vals := make([]string, len(ds.labelCols))
	for i, c := range ds.labelCols {
		if c < len(row.record) {
			vals[i] = row.record[c]
		}
	}
	return vals
}

// ImageURL returns the background image URL for an image, or "".
func (ds *Dataset) ImageURL(imageID string) string {
	return ds.imageURL[imageID]
}

// URLColumns returns the names of columns detected as image URLs.
func (ds *Dataset) URLColumns() []string {
	names := make([]string, len(ds.urlCols))
	for i, c := range ds.urlCols {
		names[i] = ds.header[c]
	}
	return names
}
