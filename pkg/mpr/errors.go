package mpr

import "errors"

var (
	// ErrInvalidFrame is returned for a volume frame with non-positive
	// spacing or inverted bounds.
	ErrInvalidFrame = errors.New("invalid volume frame")

	// ErrUnknownView is returned for a view outside Axial, Coronal, Sagittal.
	ErrUnknownView = errors.New("unknown view")

	// ErrUnknownEvent is returned by Dispatch for an unrecognized event kind.
	ErrUnknownEvent = errors.New("unknown event kind")

	// ErrNonFinite is returned for an event position with a NaN or
	// infinite component.
	ErrNonFinite = errors.New("position must be finite")

	// ErrUnknownHandle is returned for a handle name other than crosshair or
	// rotation.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrBadDirection is returned for a slice step that is not +1 or -1.
	ErrBadDirection = errors.New("step direction must be +1 or -1")

	// ErrRotateAxialOnly is returned when a rotation drag starts outside the
	// axial view.
	ErrRotateAxialOnly = errors.New("rotation is only available in the axial view")

	// ErrGestureActive is returned when a pointer-down or wheel event arrives
	// while a drag is in progress.
	ErrGestureActive = errors.New("a drag gesture is already in progress")

	// ErrNotDragging is returned for pointer-move events with no active drag.
	ErrNotDragging = errors.New("no drag gesture in progress")

	// ErrInvariant wraps every violation reported by State.Verify.
	ErrInvariant = errors.New("plane invariant violated")
)
