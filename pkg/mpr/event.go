package mpr

import (
	"fmt"

	"mprsync/pkg/geometry"
)

// EventKind selects the protocol an Event runs.
type EventKind int

const (
	EventTranslate EventKind = iota + 1
	EventRotate
	EventStep
)

func (k EventKind) String() string {
	switch k {
	case EventTranslate:
		return "translate"
	case EventRotate:
		return "rotate"
	case EventStep:
		return "step"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one interaction delivered by the host.
//
// Translate uses View and Position (the new crosshair). Rotate uses Position
// as the new rotation handle location and always acts on the axial view.
// Step uses View and Direction (+1 or -1).
type Event struct {
	Kind      EventKind
	View      View
	Position  geometry.Point3
	Direction int
}

// TranslateEvent builds a Translate event.
func TranslateEvent(v View, pos geometry.Point3) Event {
	return Event{Kind: EventTranslate, View: v, Position: pos}
}

// RotateEvent builds a Rotate event.
func RotateEvent(handle geometry.Point3) Event {
	return Event{Kind: EventRotate, View: Axial, Position: handle}
}

// StepEvent builds a Step event.
func StepEvent(v View, dir int) Event {
	return Event{Kind: EventStep, View: v, Direction: dir}
}

// PlaneUpdate is a plane that changed and must be resampled.
type PlaneUpdate struct {
	View      View
	Transform geometry.Affine4
}

// Overlay carries what the display needs to redraw its overlay graphics.
type Overlay struct {
	Crosshair geometry.Point3
	Handle    geometry.Point3
	// LineAngles is the accumulated in-plane rotation of the crosshair lines
	// drawn in each view, in degrees, indexed by View.
	LineAngles [3]float64
}

// Update is the result of one event.
type Update struct {
	Changed []PlaneUpdate
	Overlay Overlay
	// AzimuthHint is the incremental rotation in degrees an external 3D
	// camera should apply to stay aligned with the rotated planes. It is
	// zero for translations and steps.
	AzimuthHint float64
}

// ChangedViews lists the views in u.Changed.
func (u Update) ChangedViews() []View {
	views := make([]View, len(u.Changed))
	for i, c := range u.Changed {
		views[i] = c.View
	}
	return views
}

// Dispatch runs the protocol selected by ev against s. It returns an error
// only for malformed events; every well-formed event leaves s consistent.
func Dispatch(s *State, ev Event) (Update, error) {
	switch ev.Kind {
	case EventTranslate:
		if !ev.View.Valid() {
			return Update{}, fmt.Errorf("translate: %w: %d", ErrUnknownView, int(ev.View))
		}
		if !geometry.IsFinite(ev.Position) {
			return Update{}, fmt.Errorf("translate %s: %w: %v", ev.View, ErrNonFinite, ev.Position)
		}
		return ApplyTranslate(s, ev.View, ev.Position), nil
	case EventRotate:
		if !geometry.IsFinite(ev.Position) {
			return Update{}, fmt.Errorf("rotate: %w: %v", ErrNonFinite, ev.Position)
		}
		return ApplyRotate(s, ev.Position), nil
	case EventStep:
		if !ev.View.Valid() {
			return Update{}, fmt.Errorf("step: %w: %d", ErrUnknownView, int(ev.View))
		}
		if ev.Direction != 1 && ev.Direction != -1 {
			return Update{}, fmt.Errorf("step %s: %w (got %d)", ev.View, ErrBadDirection, ev.Direction)
		}
		return ApplyStep(s, ev.View, ev.Direction), nil
	default:
		return Update{}, fmt.Errorf("%w: %d", ErrUnknownEvent, int(ev.Kind))
	}
}
