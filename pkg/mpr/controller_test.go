package mpr

import (
	"errors"
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mprsync/pkg/geometry"
)

type recordingReformatter struct {
	views []View
}

func (r *recordingReformatter) Reformat(v View, _ geometry.Affine4) {
	r.views = append(r.views, v)
}

type recordingDisplay struct {
	refreshes int
	last      Overlay
	azimuth   float64
}

func (d *recordingDisplay) Refresh(o Overlay, azimuth float64) {
	d.refreshes++
	d.last = o
	d.azimuth = azimuth
}

func TestControllerGestureStateMachine(t *testing.T) {
	c := NewController(NewState(newTestFrame(t, unitSpacing())))

	if c.Gesture().Dragging {
		t.Fatal("Expected controller to start idle")
	}
	if _, err := c.PointerMove(geometry.Point3{X: 1}); !errors.Is(err, ErrNotDragging) {
		t.Errorf("Expected ErrNotDragging while idle, got %v", err)
	}

	if err := c.PointerDown(Coronal, HandleCrosshair); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	want := Gesture{Dragging: true, View: Coronal, Handle: HandleCrosshair}
	if g := c.Gesture(); g != want {
		t.Errorf("Expected %+v, got %+v", want, g)
	}

	// Every move applies the protocol
	for i := 1; i <= 3; i++ {
		p := geometry.Point3{X: float64(i)}
		if _, err := c.PointerMove(p); err != nil {
			t.Fatalf("PointerMove failed: %v", err)
		}
		if got := c.Crosshair().Position; got != p {
			t.Errorf("Expected crosshair %v, got %v", p, got)
		}
	}

	if err := c.PointerDown(Axial, HandleCrosshair); !errors.Is(err, ErrGestureActive) {
		t.Errorf("Expected ErrGestureActive, got %v", err)
	}
	if _, err := c.Wheel(Axial, 1); !errors.Is(err, ErrGestureActive) {
		t.Errorf("Expected wheel to be rejected during a drag, got %v", err)
	}

	c.PointerUp()
	if c.Gesture().Dragging {
		t.Error("Expected idle after PointerUp")
	}
	c.PointerUp()

	if _, err := c.Wheel(Axial, 1); err != nil {
		t.Errorf("Expected wheel to succeed while idle, got %v", err)
	}
	if c.Gesture().Dragging {
		t.Error("Expected wheel to leave the controller idle")
	}
}

func TestControllerRotationHandle(t *testing.T) {
	c := NewController(NewState(newTestFrame(t, unitSpacing())))

	for _, v := range []View{Coronal, Sagittal} {
		if err := c.PointerDown(v, HandleRotation); !errors.Is(err, ErrRotateAxialOnly) {
			t.Errorf("Expected ErrRotateAxialOnly in %s, got %v", v, err)
		}
	}
	if err := c.PointerDown(View(9), HandleCrosshair); !errors.Is(err, ErrUnknownView) {
		t.Errorf("Expected ErrUnknownView, got %v", err)
	}

	if err := c.PointerDown(Axial, HandleRotation); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	u, err := c.PointerMove(geometry.Point3{X: 5})
	if err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}
	if len(u.Changed) != 2 || u.AzimuthHint == 0 {
		t.Errorf("Expected a rotation update, got %+v", u)
	}
	if c.Crosshair().Position != (geometry.Point3{}) {
		t.Error("Rotation must not move the crosshair")
	}
	c.PointerUp()
}

func TestControllerNotifiesCollaborators(t *testing.T) {
	ref := &recordingReformatter{}
	disp := &recordingDisplay{}
	c := NewController(NewState(newTestFrame(t, unitSpacing())),
		WithReformatter(ref), WithDisplay(disp))

	if _, err := c.Apply(TranslateEvent(Axial, geometry.Point3{Y: 2})); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(ref.views) != 3 {
		t.Errorf("Expected 3 reformats after translate, got %v", ref.views)
	}

	ref.views = nil
	if _, err := c.Apply(RotateEvent(geometry.Point3{X: 4, Y: 2})); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(ref.views) != 2 || ref.views[0] != Coronal || ref.views[1] != Sagittal {
		t.Errorf("Expected coronal and sagittal reformats, got %v", ref.views)
	}
	if disp.refreshes != 2 {
		t.Errorf("Expected 2 display refreshes, got %d", disp.refreshes)
	}
	if disp.azimuth == 0 || disp.last.Crosshair != (geometry.Point3{Y: 2}) {
		t.Errorf("Unexpected display state: %+v azimuth %f", disp.last, disp.azimuth)
	}

	// Rejected events notify nobody
	ref.views = nil
	if _, err := c.Apply(StepEvent(Axial, 3)); !errors.Is(err, ErrBadDirection) {
		t.Errorf("Expected ErrBadDirection, got %v", err)
	}
	if len(ref.views) != 0 || disp.refreshes != 2 {
		t.Error("Expected no notifications for a rejected event")
	}
}

func TestControllerClamp(t *testing.T) {
	c := NewController(NewState(newTestFrame(t, unitSpacing())), WithClamp(true))

	if _, err := c.Apply(TranslateEvent(Axial, geometry.Point3{X: 40, Z: -3})); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := c.Crosshair().Position; got != (geometry.Point3{X: 10, Z: -3}) {
		t.Errorf("Expected clamped crosshair (10,0,-3), got %v", got)
	}

	if _, err := c.Apply(TranslateEvent(Axial, geometry.Point3{Z: 10})); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := c.Wheel(Axial, 1); err != nil {
		t.Fatalf("Wheel failed: %v", err)
	}
	if got := c.Crosshair().Position; got.Z != 10 {
		t.Errorf("Expected step past zmax to be clamped, got %v", got)
	}
	if err := c.Verify(DefaultOrthogonalityTolerance); err != nil {
		t.Errorf("Invariant check failed: %v", err)
	}

	// Without clamping the engine accepts out-of-bounds positions
	free := NewController(NewState(newTestFrame(t, unitSpacing())))
	if _, err := free.Apply(TranslateEvent(Axial, geometry.Point3{X: 40})); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := free.Crosshair().Position; got.X != 40 {
		t.Errorf("Expected unclamped crosshair, got %v", got)
	}
}

func TestControllerLogsEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := NewController(NewState(newTestFrame(t, unitSpacing())), WithLogger(zap.New(core)))

	if _, err := c.Apply(StepEvent(Sagittal, -1)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := c.Apply(Event{Kind: 42}); err == nil {
		t.Fatal("Expected an error for an unknown event")
	}

	if n := logs.FilterMessage("event applied").Len(); n != 1 {
		t.Errorf("Expected 1 applied entry, got %d", n)
	}
	if n := logs.FilterMessage("event rejected").Len(); n != 1 {
		t.Errorf("Expected 1 rejected entry, got %d", n)
	}
}

// TestControllerConcurrentWriters hammers the controller from several
// goroutines; the single-writer lock must keep every plane on the crosshair.
func TestControllerConcurrentWriters(t *testing.T) {
	c := NewController(NewState(newTestFrame(t, unitSpacing())))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				var ev Event
				switch i % 3 {
				case 0:
					ev = TranslateEvent(Views[w%3], geometry.Point3{X: float64(w), Y: float64(i % 7)})
				case 1:
					ev = StepEvent(Views[i%3], 1-2*(w%2))
				default:
					p := c.Crosshair().Position
					ev = RotateEvent(geometry.Point3{X: p.X + float64(w+1), Y: p.Y + float64(i%5) - 2, Z: p.Z})
				}
				if _, err := c.Apply(ev); err != nil {
					t.Errorf("Apply failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	planes := c.Planes()
	cross := c.Crosshair().Position
	for _, v := range Views {
		if planes[v].Translation() != cross {
			t.Errorf("%s plane left the crosshair", v)
		}
	}
	if err := c.Verify(DefaultOrthogonalityTolerance); err != nil {
		t.Errorf("Invariant check failed: %v", err)
	}
}

func TestParseHandle(t *testing.T) {
	tests := []struct {
		in   string
		want HandleKind
	}{
		{"crosshair", HandleCrosshair},
		{"", HandleCrosshair},
		{"Rotation", HandleRotation},
		{"rotate", HandleRotation},
	}
	for _, tt := range tests {
		got, err := ParseHandle(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseHandle(%q): expected %v, got %v (err %v)", tt.in, tt.want, got, err)
		}
	}

	if _, err := ParseHandle("zoom"); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Expected ErrUnknownHandle, got %v", err)
	}
}

func TestControllerRejectsNonFiniteMove(t *testing.T) {
	c := NewController(NewState(newTestFrame(t, unitSpacing())), WithClamp(true))

	if err := c.PointerDown(Axial, HandleRotation); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	if _, err := c.PointerMove(geometry.Point3{X: math.NaN()}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite, got %v", err)
	}
	c.PointerUp()

	if _, err := c.Apply(TranslateEvent(Axial, geometry.Point3{Z: math.Inf(1)})); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite through clamping, got %v", err)
	}
	if err := c.Verify(DefaultOrthogonalityTolerance); err != nil {
		t.Errorf("Invariant check failed: %v", err)
	}
}
