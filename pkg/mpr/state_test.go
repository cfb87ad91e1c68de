package mpr

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"mprsync/pkg/geometry"
)

const tol = 1e-9

// newTestFrame returns a 21³ frame centred on the origin.
func newTestFrame(t *testing.T, spacing geometry.Point3) VolumeFrame {
	t.Helper()
	f, err := NewVolumeFrame(
		geometry.Point3{},
		Bounds{-10, 10, -10, 10, -10, 10},
		spacing,
	)
	if err != nil {
		t.Fatalf("Failed to create frame: %v", err)
	}
	return f
}

func unitSpacing() geometry.Point3 { return geometry.Point3{X: 1, Y: 1, Z: 1} }

func vecNear(a, b geometry.Point3, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// TestNewState verifies the initial planes, crosshair and handle
func TestNewState(t *testing.T) {
	center := geometry.Point3{X: 1, Y: 2, Z: 3}
	frame, err := NewVolumeFrame(center, Bounds{-9, 11, -8, 12, -7, 13}, unitSpacing())
	if err != nil {
		t.Fatalf("Failed to create frame: %v", err)
	}
	s := NewState(frame)

	if got := s.Crosshair(); got.Position != center || got.RotationAngle != 0 {
		t.Errorf("Expected crosshair at %v with no rotation, got %+v", center, got)
	}

	for _, v := range Views {
		p := s.Plane(v)
		if p.Translation() != center {
			t.Errorf("Expected %s plane centred at %v, got %v", v, center, p.Translation())
		}
		want := geometry.NewAffine(BaseOrientation(v), center)
		if p != want {
			t.Errorf("Expected %s plane %v, got %v", v, want, p)
		}
	}

	wantNormals := map[View]geometry.Point3{
		Axial:    {Z: 1},
		Coronal:  {Y: 1},
		Sagittal: {X: -1},
	}
	for v, n := range wantNormals {
		if got := s.Plane(v).Normal(); got != n {
			t.Errorf("Expected %s normal %v, got %v", v, n, got)
		}
	}

	// Halfway between the centre and ymax along +Y
	wantHandle := geometry.Point3{X: 1, Y: 7, Z: 3}
	if s.Handle() != wantHandle {
		t.Errorf("Expected handle at %v, got %v", wantHandle, s.Handle())
	}

	if err := s.Verify(DefaultOrthogonalityTolerance); err != nil {
		t.Errorf("Expected fresh state to satisfy invariants: %v", err)
	}
}

func TestBaseOrientations(t *testing.T) {
	for _, v := range Views {
		m := BaseOrientation(v)
		if e := geometry.OrthogonalityError(m); e != 0 {
			t.Errorf("%s base orientation is not orthonormal: %g", v, e)
		}
		if det := m.Det(); det != 1 {
			t.Errorf("%s base orientation should be a proper rotation, det %f", v, det)
		}
	}

	// Sagittal is coronal turned a further 90° about Y
	composed := geometry.NewAffine(BaseOrientation(Coronal), geometry.Point3{}).
		Mul(geometry.NewAffine(geometry.AxisRotation(-90, geometry.Point3{Y: 1}), geometry.Point3{}))
	if !composed.EqualApprox(geometry.NewAffine(BaseOrientation(Sagittal), geometry.Point3{}), tol) {
		t.Errorf("Expected sagittal = coronal ∘ Ry, got %v", composed)
	}

	// Returned matrices are copies
	m := BaseOrientation(Axial)
	m.Set(0, 0, 42)
	if BaseOrientation(Axial).At(0, 0) != 1 {
		t.Error("BaseOrientation returned shared storage")
	}
}

func TestVolumeFrameValidate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		spacing geometry.Point3
		wantErr bool
	}{
		{"valid", Bounds{0, 1, 0, 1, 0, 1}, unitSpacing(), false},
		{"flat", Bounds{0, 1, 0, 1, 0, 0}, unitSpacing(), false},
		{"zero spacing", Bounds{0, 1, 0, 1, 0, 1}, geometry.Point3{X: 1, Y: 0, Z: 1}, true},
		{"negative spacing", Bounds{0, 1, 0, 1, 0, 1}, geometry.Point3{X: -1, Y: 1, Z: 1}, true},
		{"inverted bounds", Bounds{0, 1, 2, 1, 0, 1}, unitSpacing(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVolumeFrame(geometry.Point3{}, tt.bounds, tt.spacing)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFrame) {
					t.Errorf("Expected ErrInvalidFrame, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestVolumeFrameClamp(t *testing.T) {
	f := newTestFrame(t, unitSpacing())

	inside := geometry.Point3{X: 1, Y: -2, Z: 3}
	if !f.Contains(inside) || f.Clamp(inside) != inside {
		t.Errorf("Expected %v to be inside and unchanged by Clamp", inside)
	}

	outside := geometry.Point3{X: 50, Y: -50, Z: 0}
	if f.Contains(outside) {
		t.Errorf("Expected %v to be outside", outside)
	}
	want := geometry.Point3{X: 10, Y: -10, Z: 0}
	if got := f.Clamp(outside); got != want {
		t.Errorf("Expected clamp to %v, got %v", want, got)
	}
}

func TestParseView(t *testing.T) {
	for _, name := range []string{"axial", "Coronal", " SAGITTAL ", "a", "c", "s"} {
		if _, err := ParseView(name); err != nil {
			t.Errorf("ParseView(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseView("oblique"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("Expected ErrUnknownView, got %v", err)
	}

	var v View
	if err := v.UnmarshalText([]byte("sagittal")); err != nil || v != Sagittal {
		t.Errorf("Expected sagittal, got %v (err %v)", v, err)
	}
	text, err := Coronal.MarshalText()
	if err != nil || string(text) != "coronal" {
		t.Errorf("Expected \"coronal\", got %q (err %v)", text, err)
	}
	if _, err := View(7).MarshalText(); err == nil {
		t.Error("Expected error marshaling an unknown view")
	}
}
