package mpr

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mprsync/pkg/geometry"
)

// HandleKind identifies which draggable handle a pointer-down landed on.
type HandleKind int

const (
	// HandleCrosshair drags the crosshair itself and translates the planes.
	HandleCrosshair HandleKind = iota
	// HandleRotation drags the rotation handle in the axial view.
	HandleRotation
)

func (h HandleKind) String() string {
	switch h {
	case HandleCrosshair:
		return "crosshair"
	case HandleRotation:
		return "rotation"
	default:
		return fmt.Sprintf("handle(%d)", int(h))
	}
}

// ParseHandle accepts "crosshair" and "rotation".
func ParseHandle(s string) (HandleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crosshair", "":
		return HandleCrosshair, nil
	case "rotation", "rotate":
		return HandleRotation, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHandle, s)
}

// Gesture is the interaction state: idle, or dragging a handle in a view.
type Gesture struct {
	Dragging bool
	View     View
	Handle   HandleKind
}

// Reformatter resamples the volume along a plane. Implemented by the host's
// rendering pipeline.
type Reformatter interface {
	Reformat(v View, plane geometry.Affine4)
}

// Display redraws overlay graphics. azimuth is the incremental camera
// rotation hint in degrees.
type Display interface {
	Refresh(o Overlay, azimuth float64)
}

// Controller serializes events against a State and drives the gesture state
// machine. Every event is applied and its collaborators notified before the
// next one is admitted.
type Controller struct {
	mu      sync.Mutex
	state   *State
	gesture Gesture

	clamp       bool
	reformatter Reformatter
	display     Display
	log         *zap.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for event tracing.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithReformatter registers the collaborator notified of changed planes.
func WithReformatter(r Reformatter) ControllerOption {
	return func(c *Controller) { c.reformatter = r }
}

// WithDisplay registers the collaborator notified of overlay changes.
func WithDisplay(d Display) ControllerOption {
	return func(c *Controller) { c.display = d }
}

// WithClamp makes the controller clamp translation and step targets to the
// volume bounds before applying them.
func WithClamp(enabled bool) ControllerOption {
	return func(c *Controller) { c.clamp = enabled }
}

// NewController wraps state. The controller takes ownership; callers must
// not use state directly afterwards.
func NewController(state *State, opts ...ControllerOption) *Controller {
	c := &Controller{
		state: state,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gesture returns the current gesture state.
func (c *Controller) Gesture() Gesture {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture
}

// Crosshair returns the current crosshair.
func (c *Controller) Crosshair() Crosshair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Crosshair()
}

// Planes returns copies of the three plane transforms.
func (c *Controller) Planes() [3]geometry.Affine4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Planes()
}

// Overlay returns the current overlay state.
func (c *Controller) Overlay() Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Overlay()
}

// Verify checks the state invariants under the lock.
func (c *Controller) Verify(tol float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Verify(tol)
}

// PointerDown starts a drag of handle in view v.
func (c *Controller) PointerDown(v View, handle HandleKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !v.Valid() {
		return fmt.Errorf("pointer down: %w: %d", ErrUnknownView, int(v))
	}
	if c.gesture.Dragging {
		return fmt.Errorf("pointer down on %s %s: %w", v, handle, ErrGestureActive)
	}
	if handle == HandleRotation && v != Axial {
		return fmt.Errorf("pointer down in %s: %w", v, ErrRotateAxialOnly)
	}

	c.gesture = Gesture{Dragging: true, View: v, Handle: handle}
	c.log.Debug("drag started", zap.Stringer("view", v), zap.Stringer("handle", handle))
	return nil
}

// PointerMove applies one move of the active drag. The handle decides the
// protocol: the crosshair handle translates, the rotation handle rotates.
func (c *Controller) PointerMove(pos geometry.Point3) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.gesture.Dragging {
		return Update{}, ErrNotDragging
	}

	var ev Event
	switch c.gesture.Handle {
	case HandleRotation:
		ev = RotateEvent(pos)
	default:
		ev = TranslateEvent(c.gesture.View, pos)
	}
	return c.apply(ev)
}

// PointerUp ends the active drag. Each move already left the state
// consistent, so there is nothing to commit. Calling it while idle is a
// no-op.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gesture.Dragging {
		c.log.Debug("drag ended", zap.Stringer("view", c.gesture.View), zap.Stringer("handle", c.gesture.Handle))
	}
	c.gesture = Gesture{}
}

// Wheel steps one slice in view v. Wheel events are atomic and rejected
// while a drag is in progress.
func (c *Controller) Wheel(v View, dir int) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gesture.Dragging {
		return Update{}, fmt.Errorf("wheel in %s: %w", v, ErrGestureActive)
	}
	return c.apply(StepEvent(v, dir))
}

// Apply runs ev directly, outside the gesture state machine. Hosts that
// track gestures themselves, and scripted replays, use this.
func (c *Controller) Apply(ev Event) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ev)
}

func (c *Controller) apply(ev Event) (Update, error) {
	if c.clamp {
		ev = c.clampEvent(ev)
	}

	u, err := Dispatch(c.state, ev)
	if err != nil {
		c.log.Warn("event rejected", zap.Stringer("kind", ev.Kind), zap.Error(err))
		return Update{}, err
	}

	c.log.Debug("event applied",
		zap.Stringer("kind", ev.Kind),
		zap.Stringer("view", ev.View),
		zap.Any("crosshair", u.Overlay.Crosshair),
		zap.Float64("azimuth", u.AzimuthHint),
		zap.Int("changed", len(u.Changed)),
	)

	c.notify(u)
	return u, nil
}

// clampEvent turns steps into translations so the target can be clamped.
// Non-finite positions pass through for Dispatch to reject.
func (c *Controller) clampEvent(ev Event) Event {
	frame := c.state.Frame()
	switch ev.Kind {
	case EventTranslate:
		if geometry.IsFinite(ev.Position) {
			ev.Position = frame.Clamp(ev.Position)
		}
	case EventStep:
		if ev.View.Valid() && (ev.Direction == 1 || ev.Direction == -1) {
			target := StepTarget(c.state, ev.View, ev.Direction)
			ev = TranslateEvent(ev.View, frame.Clamp(target))
		}
	}
	return ev
}

func (c *Controller) notify(u Update) {
	if c.reformatter != nil {
		for _, p := range u.Changed {
			c.reformatter.Reformat(p.View, p.Transform)
		}
	}
	if c.display != nil {
		c.display.Refresh(u.Overlay, u.AzimuthHint)
	}
}
