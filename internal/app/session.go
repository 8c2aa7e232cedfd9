// Package app provides session lifecycle management, configuration, and events.
package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/internal/dataset"
	"bbox-annotator/internal/export"
	"bbox-annotator/internal/imagefetch"
	"bbox-annotator/pkg/geometry"
)

// EventType identifies different session events.
type EventType int

const (
	EventDatasetLoaded EventType = iota
	EventImageChanged
	EventAnnotationChanged
	EventModeChanged
	EventMarksCleared
	EventBackgroundLoaded
	EventSaved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Session holds one run of the tool, from dataset load to save/close: the
// shared dataset, per-image annotation state, the cursor, and the
// presentation toggles. All pointer and keyboard events funnel through it
// sequentially; the one concurrent collaborator is the background image
// fetcher, which only ever calls back into the event layer.
type Session struct {
	mu sync.RWMutex

	cfg Config

	Dataset    *dataset.Dataset
	Controller *annotate.Controller
	Fetcher    *imagefetch.Fetcher

	// currentIdx is the only global cursor; everything the view shows
	// derives from it plus Dataset plus annotation state.
	currentIdx int

	// Presentation toggles, seeded from cfg.
	flipY           bool
	showBackground  bool
	showHoverLabels bool

	// exporting is set while a batch export goroutine reads dataset and
	// annotation state; every mutating operation refuses while it is up,
	// so the export never races with undo/redo/click writes.
	exporting bool

	listeners map[EventType][]EventListener
}

// NewSession creates an empty session with the given configuration.
func NewSession(cfg Config) *Session {
	return &Session{
		cfg:             cfg,
		Fetcher:         imagefetch.New(cfg.FetchTimeout),
		flipY:           cfg.FlipY,
		showBackground:  cfg.ShowBackground,
		showHoverLabels: cfg.ShowHoverLabels,
		listeners:       make(map[EventType][]EventListener),
	}
}

// Config returns the immutable session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadFile loads a CSV or XLSX dataset and builds annotation state for
// every image in it. The cursor resets to the first image.
func (s *Session) LoadFile(path string) error {
	if s.Exporting() {
		return fmt.Errorf("cannot load a dataset while an export is running")
	}

	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Dataset = ds
	s.Controller = annotate.NewController(ds)
	s.currentIdx = 0
	s.mu.Unlock()

	s.Emit(EventDatasetLoaded, path)
	return nil
}

// Loaded reports whether a dataset is present.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dataset != nil
}

// ImageCount returns the number of distinct images.
func (s *Session) ImageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Dataset == nil {
		return 0
	}
	return len(s.Dataset.ImageIDs())
}

// CurrentIndex returns the cursor position.
func (s *Session) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIdx
}

// CurrentImageID returns the image under the cursor, or "".
func (s *Session) CurrentImageID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Dataset == nil {
		return ""
	}
	ids := s.Dataset.ImageIDs()
	if s.currentIdx < 0 || s.currentIdx >= len(ids) {
		return ""
	}
	return ids[s.currentIdx]
}

// SetIndex moves the cursor, clamped to the dataset. Switching images
// never resets annotation state on either side of the move.
func (s *Session) SetIndex(idx int) {
	s.mu.Lock()
	if s.Dataset == nil {
		s.mu.Unlock()
		return
	}
	idx = annotate.ClampIndex(len(s.Dataset.ImageIDs()), idx)
	changed := idx != s.currentIdx
	s.currentIdx = idx
	s.mu.Unlock()

	if changed {
		s.Emit(EventImageChanged, idx)
	}
}

// Navigation helpers for the keyboard surface.

func (s *Session) NextImage() { s.SetIndex(s.CurrentIndex() + 1) }
func (s *Session) PrevImage() { s.SetIndex(s.CurrentIndex() - 1) }
func (s *Session) FirstImage() {
	s.SetIndex(0)
}
func (s *Session) LastImage() {
	s.SetIndex(s.ImageCount() - 1)
}
func (s *Session) PageForward() { s.SetIndex(s.CurrentIndex() + annotate.PageJump) }
func (s *Session) PageBack()    { s.SetIndex(s.CurrentIndex() - annotate.PageJump) }

// JumpToImage moves to the nth image in the dataset, 1-based. Out of
// range is ignored rather than clamped; the digit keys only reach the
// first nine images.
func (s *Session) JumpToImage(n int) {
	if n < 1 || n > s.ImageCount() {
		return
	}
	s.SetIndex(n - 1)
}

// Click annotates the current image at a data-space position.
func (s *Session) Click(p geometry.Point2D) annotate.ClickResult {
	id := s.CurrentImageID()
	if id == "" || s.Controller == nil || s.editBlocked() {
		return annotate.ClickResult{Outcome: annotate.ClickMissed}
	}
	res := s.Controller.Click(id, p)
	if res.Outcome == annotate.ClickMarked {
		s.Emit(EventAnnotationChanged, id)
	}
	return res
}

// Undo reverts the current image's latest annotation.
func (s *Session) Undo() {
	id := s.CurrentImageID()
	if id != "" && !s.editBlocked() && s.Controller.Undo(id) {
		s.Emit(EventAnnotationChanged, id)
	}
}

// Redo re-applies the current image's latest undone annotation.
func (s *Session) Redo() {
	id := s.CurrentImageID()
	if id != "" && !s.editBlocked() && s.Controller.Redo(id) {
		s.Emit(EventAnnotationChanged, id)
	}
}

// ClearAll wipes every mark on the current image.
func (s *Session) ClearAll() {
	id := s.CurrentImageID()
	if id == "" || s.editBlocked() {
		return
	}
	s.Controller.ClearAll(id)
	s.Emit(EventMarksCleared, id)
	s.Emit(EventAnnotationChanged, id)
}

// SetMode switches the annotation mode session-wide.
func (s *Session) SetMode(mode annotate.Mode) {
	if s.Controller == nil || s.editBlocked() {
		return
	}
	s.Controller.SetMode(mode)
	s.Emit(EventModeChanged, mode)
}

// ResetCounter resets numbering to 1 for every image.
func (s *Session) ResetCounter() {
	if s.Controller == nil || s.editBlocked() {
		return
	}
	s.Controller.ResetCounter()
	s.Emit(EventModeChanged, s.Controller.Mode())
}

// Exporting reports whether a batch export is in progress.
func (s *Session) Exporting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exporting
}

// editBlocked reports and logs a refused annotation edit.
func (s *Session) editBlocked() bool {
	if !s.Exporting() {
		return false
	}
	log.Print("session: annotation edit ignored while an export is running")
	return true
}

// beginExport claims the export slot. false when one is already running.
func (s *Session) beginExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exporting {
		return false
	}
	s.exporting = true
	return true
}

func (s *Session) endExport() {
	s.mu.Lock()
	s.exporting = false
	s.mu.Unlock()
}

// FlipY reports the current axis orientation (true = image-style).
func (s *Session) FlipY() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flipY
}

// ToggleFlipY flips axis orientation for every view uniformly. Annotation
// data is untouched.
func (s *Session) ToggleFlipY() {
	s.mu.Lock()
	s.flipY = !s.flipY
	s.mu.Unlock()
	s.Emit(EventImageChanged, s.CurrentIndex())
}

// ShowBackground reports whether background images are composited.
func (s *Session) ShowBackground() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showBackground
}

// ToggleBackground flips background compositing and kicks off a fetch for
// the current image when turning it on.
func (s *Session) ToggleBackground() {
	s.mu.Lock()
	s.showBackground = !s.showBackground
	on := s.showBackground
	s.mu.Unlock()

	if on {
		s.RequestBackground()
	}
	s.Emit(EventImageChanged, s.CurrentIndex())
}

// ShowHoverLabels reports whether the hover tooltip is enabled.
func (s *Session) ShowHoverLabels() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showHoverLabels
}

// ToggleHoverLabels flips the hover tooltip.
func (s *Session) ToggleHoverLabels() {
	s.mu.Lock()
	s.showHoverLabels = !s.showHoverLabels
	s.mu.Unlock()
}

// CurrentImageURL returns the background URL of the current image, or "".
func (s *Session) CurrentImageURL() string {
	id := s.CurrentImageID()
	if id == "" {
		return ""
	}
	return s.Dataset.ImageURL(id)
}

// RequestBackground starts a background fetch of the current image's URL.
// The redraw that follows never blocks on it: CurrentBackground returns
// nil until the fetch resolves, at which point EventBackgroundLoaded fires
// and the view refreshes opportunistically.
func (s *Session) RequestBackground() {
	url := s.CurrentImageURL()
	if url == "" {
		return
	}
	s.Fetcher.Fetch(url, func(img image.Image) {
		s.Emit(EventBackgroundLoaded, url)
	})
}

// CurrentBackground returns the fetched background for the current image
// if it is enabled and already cached, else nil.
func (s *Session) CurrentBackground() image.Image {
	if !s.ShowBackground() {
		return nil
	}
	url := s.CurrentImageURL()
	if url == "" {
		return nil
	}
	img, _ := s.Fetcher.Cached(url)
	return img
}

// Save writes marked_skus.csv (and the annotation log) into the directory
// colocated with the input file. In-memory state is untouched either way.
func (s *Session) Save() error {
	if !s.Loaded() {
		return nil
	}
	dir, err := export.NewOutputDir(s.Dataset.SourcePath())
	if err != nil {
		return err
	}
	if err := export.SaveAnnotations(dir, s.Dataset, s.Controller); err != nil {
		return err
	}
	s.Emit(EventSaved, dir)
	return nil
}

// ExportAll writes the CSV outputs plus a rendered annotated_<id>.png per
// image into a fresh timestamped directory, reporting progress per image.
// Safe to call from its own goroutine: annotation edits arriving from the
// event thread are refused until the export returns.
func (s *Session) ExportAll(ctx context.Context, progress export.ProgressCallback) (string, error) {
	if !s.Loaded() {
		return "", nil
	}
	if !s.beginExport() {
		return "", fmt.Errorf("an export is already running")
	}
	defer s.endExport()
	dir, err := export.NewOutputDir(s.Dataset.SourcePath())
	if err != nil {
		return "", err
	}
	if err := export.SaveAnnotations(dir, s.Dataset, s.Controller); err != nil {
		return dir, err
	}
	if err := export.SaveAllPlots(ctx, dir, s.Dataset, s.Controller, s.FlipY(), progress); err != nil {
		return dir, err
	}
	s.Emit(EventSaved, dir)
	return dir, nil
}
