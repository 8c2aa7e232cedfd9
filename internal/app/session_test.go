package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"bbox-annotator/internal/annotate"
	"bbox-annotator/pkg/geometry"
)

func newLoadedSession(t *testing.T) *Session {
	t.Helper()
	content := "image_id,x_min,x_max,y_min,y_max\n"
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		content += id + ",0,10,0,10\n"
	}
	path := filepath.Join(t.TempDir(), "boxes.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSession(DefaultConfig())
	if err := s.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	return s
}

func TestNavigationClamps(t *testing.T) {
	s := newLoadedSession(t)

	if s.CurrentIndex() != 0 || s.CurrentImageID() != "a" {
		t.Fatalf("session should start at the first image, at %d (%s)", s.CurrentIndex(), s.CurrentImageID())
	}

	s.PrevImage()
	if s.CurrentIndex() != 0 {
		t.Error("prev at the start must clamp")
	}

	s.LastImage()
	if s.CurrentImageID() != "l" {
		t.Errorf("last image should be l, got %s", s.CurrentImageID())
	}
	s.NextImage()
	if s.CurrentImageID() != "l" {
		t.Error("next at the end must clamp")
	}

	s.FirstImage()
	s.PageForward()
	if s.CurrentIndex() != 10 {
		t.Errorf("page forward should jump 10, at %d", s.CurrentIndex())
	}
	s.PageBack()
	if s.CurrentIndex() != 0 {
		t.Errorf("page back should return to 0, at %d", s.CurrentIndex())
	}
}

func TestImageChangedEvent(t *testing.T) {
	s := newLoadedSession(t)

	var events []int
	s.On(EventImageChanged, func(data interface{}) {
		events = append(events, data.(int))
	})

	s.NextImage()
	s.NextImage()
	s.SetIndex(1) // moves
	s.SetIndex(1) // no-op, no event

	if len(events) != 3 {
		t.Fatalf("expected 3 image-changed events, got %v", events)
	}
}

func TestSwitchingImagesPreservesState(t *testing.T) {
	s := newLoadedSession(t)

	res := s.Click(geometry.NewPoint2D(5, 5))
	if res.Outcome != annotate.ClickMarked {
		t.Fatalf("setup click failed: %v", res.Outcome)
	}

	s.NextImage()
	s.PrevImage()

	if got := len(s.Controller.State("a").Annotations); got != 1 {
		t.Errorf("annotation state must survive navigation, got %d entries", got)
	}
}

func TestClickEmitsAnnotationChanged(t *testing.T) {
	s := newLoadedSession(t)

	fired := 0
	s.On(EventAnnotationChanged, func(interface{}) { fired++ })

	s.Click(geometry.NewPoint2D(5, 5))  // marks
	s.Click(geometry.NewPoint2D(5, 5))  // rejected, no event
	s.Click(geometry.NewPoint2D(50, 5)) // miss, no event

	if fired != 1 {
		t.Errorf("expected 1 annotation event, got %d", fired)
	}

	s.Undo()
	s.Redo()
	s.Undo()
	s.Undo() // empty, no event
	if fired != 4 {
		t.Errorf("expected 4 events after undo/redo, got %d", fired)
	}
}

func TestToggles(t *testing.T) {
	s := newLoadedSession(t)

	if !s.FlipY() {
		t.Error("image-style orientation should be the default")
	}
	s.ToggleFlipY()
	if s.FlipY() {
		t.Error("toggle should flip the orientation")
	}

	if s.ShowBackground() {
		t.Error("background should default off")
	}
	s.ToggleBackground()
	if !s.ShowBackground() {
		t.Error("toggle should enable background")
	}

	if !s.ShowHoverLabels() {
		t.Error("hover labels should default on")
	}
	s.ToggleHoverLabels()
	if s.ShowHoverLabels() {
		t.Error("toggle should disable hover labels")
	}
}

func TestJumpToImage(t *testing.T) {
	s := newLoadedSession(t)

	s.JumpToImage(3)
	if s.CurrentImageID() != "c" {
		t.Errorf("digit jump should land on the third image, got %s", s.CurrentImageID())
	}

	s.JumpToImage(99)
	if s.CurrentImageID() != "c" {
		t.Error("out-of-range jump must be ignored, not clamped")
	}
	s.JumpToImage(0)
	if s.CurrentImageID() != "c" {
		t.Error("jump below 1 must be ignored")
	}
}

func TestExportBlocksEditsWhileRunning(t *testing.T) {
	s := newLoadedSession(t)
	if res := s.Click(geometry.NewPoint2D(5, 5)); res.Outcome != annotate.ClickMarked {
		t.Fatalf("setup click failed: %v", res.Outcome)
	}

	// Pause the export inside its first progress report so edits arrive
	// while it is provably mid-flight.
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	var once sync.Once
	go func() {
		_, err := s.ExportAll(context.Background(), func(current, total int, message string) {
			once.Do(func() {
				close(started)
				<-release
			})
		})
		done <- err
	}()

	<-started
	if !s.Exporting() {
		t.Error("Exporting should report true mid-export")
	}

	s.Undo()
	if got := len(s.Controller.State("a").Annotations); got != 1 {
		t.Errorf("undo must be refused during an export, %d entries left", got)
	}
	s.NextImage()
	if res := s.Click(geometry.NewPoint2D(5, 5)); res.Outcome != annotate.ClickMissed {
		t.Errorf("click must be refused during an export, got %v", res.Outcome)
	}
	if got := len(s.Controller.State("b").Annotations); got != 0 {
		t.Errorf("refused click must not mutate state, %d entries", got)
	}
	if _, err := s.ExportAll(context.Background(), nil); err == nil {
		t.Error("a second concurrent export must be refused")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if s.Exporting() {
		t.Error("Exporting should clear once the export returns")
	}
	s.FirstImage()
	s.Undo()
	if got := len(s.Controller.State("a").Annotations); got != 0 {
		t.Errorf("undo must work again after the export, %d entries left", got)
	}
}

func TestOperationsBeforeLoadAreSafe(t *testing.T) {
	s := NewSession(DefaultConfig())

	// None of these may panic on an empty session.
	s.NextImage()
	s.SetMode(annotate.ModeNumber)
	s.ResetCounter()
	if res := s.Click(geometry.NewPoint2D(1, 1)); res.Outcome != annotate.ClickMissed {
		t.Error("click before load should miss")
	}
	if err := s.Save(); err != nil {
		t.Errorf("save before load should be a no-op, got %v", err)
	}
	if s.CurrentImageID() != "" {
		t.Error("no current image before load")
	}
}
