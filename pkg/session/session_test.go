package session

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mprsync/pkg/geometry"
	"mprsync/pkg/mpr"
)

const scenario = `
name: scenario
events:
  - type: translate
    view: axial
    position: [5, 0, 0]
  - type: step
    view: axial
    direction: 1
  - type: drag
    view: axial
    handle: rotation
    path: [[5, 10, 1], [15, 0, 1]]
`

func newController(t *testing.T) *mpr.Controller {
	t.Helper()
	frame, err := mpr.NewVolumeFrame(geometry.Point3{},
		mpr.Bounds{-10, 10, -10, 10, -10, 10}, geometry.Point3{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatalf("NewVolumeFrame failed: %v", err)
	}
	return mpr.NewController(mpr.NewState(frame))
}

func TestDecodeScenario(t *testing.T) {
	s, err := Decode(strings.NewReader(scenario))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Name != "scenario" || len(s.Events) != 3 {
		t.Fatalf("Unexpected script: %+v", s)
	}

	ev, err := s.Events[0].Event()
	if err != nil {
		t.Fatalf("Event failed: %v", err)
	}
	want := mpr.TranslateEvent(mpr.Axial, geometry.Point3{X: 5})
	if ev != want {
		t.Errorf("Expected %+v, got %+v", want, ev)
	}
	if _, err := s.Events[2].Event(); !errors.Is(err, mpr.ErrUnknownEvent) {
		t.Errorf("Expected drag to have no single-event form, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no events", "name: x\nevents: []\n"},
		{"unknown key", "events:\n  - type: step\n    view: axial\n    direction: 1\n    speed: 2\n"},
		{"unknown type", "events:\n  - type: zoom\n"},
		{"bad view", "events:\n  - type: translate\n    view: oblique\n    position: [0, 0, 0]\n"},
		{"short position", "events:\n  - type: rotate\n    position: [1, 2]\n"},
		{"bad direction", "events:\n  - type: step\n    view: axial\n    direction: 2\n"},
		{"drag without path", "events:\n  - type: drag\n    view: axial\n"},
		{"bad handle", "events:\n  - type: drag\n    view: axial\n    handle: zoom\n    path: [[0, 0, 0]]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.doc)); err == nil {
				t.Error("Expected decode error")
			}
		})
	}

	_, err := Decode(strings.NewReader("events:\n  - type: step\n    view: axial\n    direction: 0\n"))
	if !errors.Is(err, ErrInvalidScript) {
		t.Errorf("Expected ErrInvalidScript, got %v", err)
	}
}

func TestReplayScenario(t *testing.T) {
	s, err := Decode(strings.NewReader(scenario))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	ctrl := newController(t)

	var seen []string
	r := NewReplayer(ctrl, OnUpdate(func(_ int, st Step, _ mpr.Update) {
		seen = append(seen, st.Type)
	}))
	res, err := r.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Applied != 4 || len(seen) != 4 {
		t.Errorf("Expected 4 updates, got %d (%v)", res.Applied, seen)
	}
	if math.Abs(res.Rotation-90) > 1e-9 {
		t.Errorf("Expected 90 degrees of rotation, got %f", res.Rotation)
	}
	if got := ctrl.Crosshair().Position; got != (geometry.Point3{X: 5, Z: 1}) {
		t.Errorf("Expected crosshair (5,0,1), got %v", got)
	}
	if ctrl.Gesture().Dragging {
		t.Error("Expected the drag to be released")
	}
	if err := ctrl.Verify(mpr.DefaultOrthogonalityTolerance); err != nil {
		t.Errorf("Invariant check failed: %v", err)
	}
}

func TestReplayStopsOnFailure(t *testing.T) {
	doc := `
events:
  - type: wheel
    view: coronal
    direction: -1
  - type: drag
    view: coronal
    handle: rotation
    path: [[1, 1, 1]]
  - type: step
    view: axial
    direction: 1
`
	s, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	ctrl := newController(t)
	res, err := NewReplayer(ctrl).Run(context.Background(), s)
	if !errors.Is(err, mpr.ErrRotateAxialOnly) {
		t.Fatalf("Expected ErrRotateAxialOnly, got %v", err)
	}
	if res.Applied != 1 {
		t.Errorf("Expected 1 applied update before the failure, got %d", res.Applied)
	}
	if got := ctrl.Crosshair().Position; got != (geometry.Point3{Y: -1}) {
		t.Errorf("Expected the wheel step to stick, got %v", got)
	}
}

func TestReplayCancelled(t *testing.T) {
	s, err := Decode(strings.NewReader(scenario))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewReplayer(newController(t)).Run(ctx, s)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if res.Applied != 0 {
		t.Errorf("Expected nothing applied, got %d", res.Applied)
	}
}

func TestRecordAndReload(t *testing.T) {
	events := []mpr.Event{
		mpr.TranslateEvent(mpr.Coronal, geometry.Point3{X: 1, Y: 2, Z: 3}),
		mpr.RotateEvent(geometry.Point3{X: 4, Y: 1, Z: 3}),
		mpr.StepEvent(mpr.Sagittal, -1),
	}
	s := FromEvents("recorded", events)

	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "recorded.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, st := range loaded.Events {
		ev, err := st.Event()
		if err != nil {
			t.Fatalf("Event %d failed: %v", i, err)
		}
		if ev != events[i] {
			t.Errorf("Event %d: expected %+v, got %+v", i, events[i], ev)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for a missing script")
	}
}
