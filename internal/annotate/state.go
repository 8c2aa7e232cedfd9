// Package annotate implements the interactive annotation session: per-image
// mark state with undo/redo, click hit-testing, and the controller keeping
// the shared dataset consistent with it.
package annotate

import (
	"bbox-annotator/internal/dataset"
)

// Mode selects what a click places on an unmarked box.
type Mode string

const (
	// ModeX places an "x" flag (persisted as "yes").
	ModeX Mode = "x"
	// ModeNumber places the next sequential number.
	ModeNumber Mode = "number"
)

// Annotation is one mark event. It carries copies of the row's label
// values taken at mark time, so undo/redo never depends on later dataset
// mutation, plus a stable row reference so undoing a mark always clears
// exactly the row that was marked, even when several rows share a value.
type Annotation struct {
	ImageID   string
	X, Y      float64
	MarkValue string // display form: "x", a number, or a custom tag
	Labels    []string
	Row       dataset.RowRef
	// Preexisting is true for entries replayed from the source file's
	// marked column, so they render apart from this session's marks.
	Preexisting bool
}

// State holds the annotation session state for one image_id. It is created
// at load time for every distinct image, lives for the whole session, and
// is only ever reset, never destroyed.
//
// Mode and Counter are session-global policy: the controller updates them
// on every State in lockstep.
type State struct {
	ImageID  string
	ImageURL string // assigned once at load, immutable afterwards

	// Annotations in insertion order, which is also chronological and
	// display order.
	Annotations []Annotation

	// Undone is the redo stack. Appending a new annotation clears it.
	Undone []Annotation

	Mode    Mode
	Counter int // next number to assign in number mode
}

// newState creates the state for one image.
func newState(imageID, imageURL string) *State {
	return &State{
		ImageID:  imageID,
		ImageURL: imageURL,
		Mode:     ModeX,
		Counter:  1,
	}
}

// push appends a new annotation and invalidates the redo stack.
func (s *State) push(ann Annotation) {
	s.Annotations = append(s.Annotations, ann)
	s.Undone = s.Undone[:0]
}

// popUndo removes and returns the most recent annotation, moving it to the
// redo stack. ok is false when there is nothing to undo.
func (s *State) popUndo() (Annotation, bool) {
	if len(s.Annotations) == 0 {
		return Annotation{}, false
	}
	ann := s.Annotations[len(s.Annotations)-1]
	s.Annotations = s.Annotations[:len(s.Annotations)-1]
	s.Undone = append(s.Undone, ann)
	return ann, true
}

// popRedo removes and returns the most recently undone annotation,
// re-appending it to the annotation list. ok is false when the redo stack
// is empty.
func (s *State) popRedo() (Annotation, bool) {
	if len(s.Undone) == 0 {
		return Annotation{}, false
	}
	ann := s.Undone[len(s.Undone)-1]
	s.Undone = s.Undone[:len(s.Undone)-1]
	s.Annotations = append(s.Annotations, ann)
	return ann, true
}

// Reset clears both stacks. Mode, counter, and image URL survive; clearing
// the dataset's marks is the controller's job.
func (s *State) Reset() {
	s.Annotations = s.Annotations[:0]
	s.Undone = s.Undone[:0]
}
