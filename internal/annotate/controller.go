package annotate

import (
	"log"

	"bbox-annotator/internal/dataset"
	"bbox-annotator/pkg/geometry"
)

// ClickOutcome describes what a click did.
type ClickOutcome int

const (
	// ClickMissed means the pointer hit no box. Nothing changed.
	ClickMissed ClickOutcome = iota
	// ClickRejected means the box is already marked. Nothing changed.
	ClickRejected
	// ClickMarked means a new annotation was recorded.
	ClickMarked
)

// ClickResult reports the effect of a click so the UI can surface it.
type ClickResult struct {
	Outcome      ClickOutcome
	Row          dataset.RowRef
	MarkValue    string // display form of the new mark, when Outcome is ClickMarked
	ExistingMark string // display form of the blocking mark, when Outcome is ClickRejected
}

// Controller orchestrates annotation gestures. Every operation is a total
// function over the current state: bad input degrades to a logged no-op,
// never a panic, and the dataset's marked column stays consistent with the
// per-image annotation stacks at all times.
type Controller struct {
	ds     *dataset.Dataset
	states map[string]*State
}

// NewController builds per-image annotation state for every distinct
// image_id in the dataset, replaying marks already present in the source
// file so they are visible and undoable like any other annotation.
func NewController(ds *dataset.Dataset) *Controller {
	c := &Controller{
		ds:     ds,
		states: make(map[string]*State, len(ds.ImageIDs())),
	}
	for _, id := range ds.ImageIDs() {
		c.states[id] = newState(id, ds.ImageURL(id))
	}
	c.replayExistingMarks()
	return c
}

// replayExistingMarks seeds annotation entries for rows whose marked
// column was already set in the source file, placed at the box center.
// Rows without a usable box keep their mark in the dataset but get no
// entry; there is no meaningful point to anchor one to.
func (c *Controller) replayExistingMarks() {
	for _, id := range c.ds.ImageIDs() {
		st := c.states[id]
		for _, ref := range c.ds.RowsFor(id) {
			row := c.ds.Row(ref)
			if !row.Mark.IsSet() || !row.Plottable() {
				continue
			}
			center := row.Box.Center()
			st.Annotations = append(st.Annotations, Annotation{
				ImageID:     id,
				X:           center.X,
				Y:           center.Y,
				MarkValue:   row.Mark.Display(),
				Labels:      c.ds.Labels(ref),
				Row:         ref,
				Preexisting: true,
			})
		}
	}
}

// State returns the annotation state for an image, or nil if the image is
// unknown.
func (c *Controller) State(imageID string) *State {
	return c.states[imageID]
}

// Click resolves a pointer position against the image's boxes and marks
// the hit row according to the current mode. An already-marked row is
// rejected without any state change; a miss is a no-op.
func (c *Controller) Click(imageID string, p geometry.Point2D) ClickResult {
	st := c.states[imageID]
	if st == nil {
		log.Printf("annotate: click for unknown image %q ignored", imageID)
		return ClickResult{Outcome: ClickMissed}
	}

	ref, ok := HitTest(c.ds, imageID, p)
	if !ok {
		return ClickResult{Outcome: ClickMissed}
	}

	row := c.ds.Row(ref)
	if row.Mark.IsSet() {
		log.Printf("annotate: box already marked as %q, cannot add new annotation", row.Mark.Display())
		return ClickResult{
			Outcome:      ClickRejected,
			Row:          ref,
			ExistingMark: row.Mark.Display(),
		}
	}

	var mark dataset.Mark
	if st.Mode == ModeNumber {
		mark = dataset.Numbered(st.Counter)
		st.Counter++
	} else {
		mark = dataset.Flagged()
	}
	c.ds.SetMark(ref, mark)

	st.push(Annotation{
		ImageID:   imageID,
		X:         p.X,
		Y:         p.Y,
		MarkValue: mark.Display(),
		Labels:    c.ds.Labels(ref),
		Row:       ref,
	})

	log.Printf("annotate: added %q at (%.1f, %.1f) on %s", mark.Display(), p.X, p.Y, imageID)
	return ClickResult{Outcome: ClickMarked, Row: ref, MarkValue: mark.Display()}
}

// Undo pops the image's most recent annotation and clears exactly that
// row's mark. Returns false when there is nothing to undo.
func (c *Controller) Undo(imageID string) bool {
	st := c.states[imageID]
	if st == nil {
		return false
	}
	ann, ok := st.popUndo()
	if !ok {
		return false
	}
	c.ds.SetMark(ann.Row, dataset.Unmarked())
	return true
}

// Redo re-applies the image's most recently undone annotation, restoring
// the mark on the same row it originally occupied. Returns false when the
// redo stack is empty.
func (c *Controller) Redo(imageID string) bool {
	st := c.states[imageID]
	if st == nil {
		return false
	}
	ann, ok := st.popRedo()
	if !ok {
		return false
	}
	c.ds.SetMark(ann.Row, dataset.ParseMark(markToLegacy(ann.MarkValue)))
	return true
}

// markToLegacy maps a display value back to its persisted form.
func markToLegacy(display string) string {
	if display == "x" {
		return "yes"
	}
	return display
}

// ClearAll resets the image's annotation state and clears every mark on
// its rows, whether placed this session or loaded from the source file.
func (c *Controller) ClearAll(imageID string) {
	st := c.states[imageID]
	if st == nil {
		return
	}
	st.Reset()
	c.ds.ClearMarks(imageID)
}

// SetMode switches the annotation mode for every image in the session.
func (c *Controller) SetMode(mode Mode) {
	if mode != ModeX && mode != ModeNumber {
		log.Printf("annotate: ignoring unknown mode %q", mode)
		return
	}
	for _, st := range c.states {
		st.Mode = mode
	}
}

// Mode returns the session-wide annotation mode.
func (c *Controller) Mode() Mode {
	for _, st := range c.states {
		return st.Mode
	}
	return ModeX
}

// ResetCounter sets the numbering counter back to 1 for every image.
func (c *Controller) ResetCounter() {
	for _, st := range c.states {
		st.Counter = 1
	}
}

// Annotations returns all annotation entries across the session in
// chronological order per image, images in first-appearance order.
func (c *Controller) Annotations() []Annotation {
	var all []Annotation
	for _, id := range c.ds.ImageIDs() {
		all = append(all, c.states[id].Annotations...)
	}
	return all
}
