package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mprsync/pkg/mpr"
)

// Result summarises a replay
type Result struct {
	// Applied counts engine updates, one per translate, rotate, step,
	// wheel and drag move
	Applied int
	// Last is the final update
	Last mpr.Update
	// Rotation is the accumulated crosshair rotation in degrees
	Rotation float64
}

// Replayer drives a Controller from a script
type Replayer struct {
	ctrl     *mpr.Controller
	log      *zap.Logger
	onUpdate func(i int, st Step, u mpr.Update)
}

// ReplayerOption configures a Replayer
type ReplayerOption func(*Replayer)

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) ReplayerOption {
	return func(r *Replayer) { r.log = l }
}

// OnUpdate registers a callback invoked after every applied update
func OnUpdate(fn func(i int, st Step, u mpr.Update)) ReplayerOption {
	return func(r *Replayer) { r.onUpdate = fn }
}

// NewReplayer creates a replayer for ctrl
func NewReplayer(ctrl *mpr.Controller, opts ...ReplayerOption) *Replayer {
	r := &Replayer{ctrl: ctrl, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays every step in order. It stops at the first failing step or
// when ctx is cancelled; the controller keeps the state reached so far.
func (r *Replayer) Run(ctx context.Context, s *Script) (Result, error) {
	var res Result
	for i, st := range s.Events {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("replay interrupted at event %d: %w", i, err)
		}
		if err := r.runStep(i, st, &res); err != nil {
			return res, fmt.Errorf("event %d (%s): %w", i, st.Type, err)
		}
	}

	r.log.Info("script replayed",
		zap.String("name", s.Name),
		zap.Int("events", len(s.Events)),
		zap.Int("updates", res.Applied),
		zap.Float64("rotation", res.Rotation))
	return res, nil
}

func (r *Replayer) runStep(i int, st Step, res *Result) error {
	switch st.Type {
	case TypeDrag:
		return r.drag(i, st, res)
	case TypeWheel:
		ev, err := st.Event()
		if err != nil {
			return err
		}
		u, err := r.ctrl.Wheel(ev.View, ev.Direction)
		if err != nil {
			return err
		}
		r.record(i, st, u, res)
		return nil
	default:
		ev, err := st.Event()
		if err != nil {
			return err
		}
		u, err := r.ctrl.Apply(ev)
		if err != nil {
			return err
		}
		r.record(i, st, u, res)
		return nil
	}
}

// drag runs a full pointer-down, move, up gesture
func (r *Replayer) drag(i int, st Step, res *Result) error {
	v, err := mpr.ParseView(st.View)
	if err != nil {
		return err
	}
	handle, err := mpr.ParseHandle(st.Handle)
	if err != nil {
		return err
	}
	if err := r.ctrl.PointerDown(v, handle); err != nil {
		return err
	}
	defer r.ctrl.PointerUp()

	for _, p := range st.Path {
		pos, err := point(p)
		if err != nil {
			return err
		}
		u, err := r.ctrl.PointerMove(pos)
		if err != nil {
			return err
		}
		r.record(i, st, u, res)
	}
	return nil
}

func (r *Replayer) record(i int, st Step, u mpr.Update, res *Result) {
	res.Applied++
	res.Last = u
	res.Rotation += u.AzimuthHint

	r.log.Debug("update",
		zap.Int("event", i),
		zap.String("type", st.Type),
		zap.Stringers("changed", u.ChangedViews()),
		zap.Float64("azimuth", u.AzimuthHint))
	if r.onUpdate != nil {
		r.onUpdate(i, st, u)
	}
}
