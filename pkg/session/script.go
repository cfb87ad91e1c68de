// Package session decodes YAML interaction scripts and replays them
// through an mpr.Controller.
//
// A script is a list of events:
//
//	name: oblique-coronal
//	events:
//	  - type: translate
//	    view: axial
//	    position: [5, 0, 0]
//	  - type: step
//	    view: axial
//	    direction: 1
//	  - type: drag
//	    view: axial
//	    handle: rotation
//	    path: [[5, 10, 1], [15, 0, 1]]
//
// translate, step and rotate map to single engine events. drag and wheel go
// through the gesture state machine.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"mprsync/pkg/geometry"
	"mprsync/pkg/mpr"
)

// ErrInvalidScript marks scripts that cannot be replayed.
var ErrInvalidScript = errors.New("invalid script")

// Step types
const (
	TypeTranslate = "translate"
	TypeRotate    = "rotate"
	TypeStep      = "step"
	TypeWheel     = "wheel"
	TypeDrag      = "drag"
)

// Script is a named sequence of interaction steps
type Script struct {
	Name   string `yaml:"name,omitempty"`
	Events []Step `yaml:"events"`
}

// Step is one scripted interaction
type Step struct {
	Type      string      `yaml:"type"`
	View      string      `yaml:"view,omitempty"`
	Handle    string      `yaml:"handle,omitempty"`
	Position  []float64   `yaml:"position,omitempty,flow"`
	Direction int         `yaml:"direction,omitempty"`
	Path      [][]float64 `yaml:"path,omitempty,flow"`
}

// Decode reads a script from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("error parsing script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a script file
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening script: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes s as YAML
func Encode(w io.Writer, s *Script) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("error encoding script: %w", err)
	}
	return enc.Close()
}

// Validate checks every step without running it
func (s *Script) Validate() error {
	if len(s.Events) == 0 {
		return fmt.Errorf("%w: no events", ErrInvalidScript)
	}
	for i, st := range s.Events {
		if err := st.validate(); err != nil {
			return fmt.Errorf("%w: event %d (%s): %v", ErrInvalidScript, i, st.Type, err)
		}
	}
	return nil
}

func (st Step) validate() error {
	switch st.Type {
	case TypeTranslate, TypeRotate, TypeStep, TypeWheel:
		_, err := st.Event()
		return err
	case TypeDrag:
		if _, err := mpr.ParseView(st.View); err != nil {
			return err
		}
		if _, err := mpr.ParseHandle(st.Handle); err != nil {
			return err
		}
		if len(st.Path) == 0 {
			return errors.New("drag needs a path")
		}
		for _, p := range st.Path {
			if _, err := point(p); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", mpr.ErrUnknownEvent, st.Type)
	}
}

// Event converts a single-event step to an engine event. Drag steps have
// no single-event form.
func (st Step) Event() (mpr.Event, error) {
	switch st.Type {
	case TypeTranslate:
		v, err := mpr.ParseView(st.View)
		if err != nil {
			return mpr.Event{}, err
		}
		p, err := point(st.Position)
		if err != nil {
			return mpr.Event{}, err
		}
		return mpr.TranslateEvent(v, p), nil
	case TypeRotate:
		p, err := point(st.Position)
		if err != nil {
			return mpr.Event{}, err
		}
		return mpr.RotateEvent(p), nil
	case TypeStep, TypeWheel:
		v, err := mpr.ParseView(st.View)
		if err != nil {
			return mpr.Event{}, err
		}
		if st.Direction != 1 && st.Direction != -1 {
			return mpr.Event{}, fmt.Errorf("%w (got %d)", mpr.ErrBadDirection, st.Direction)
		}
		return mpr.StepEvent(v, st.Direction), nil
	}
	return mpr.Event{}, fmt.Errorf("%w: %q", mpr.ErrUnknownEvent, st.Type)
}

func point(p []float64) (geometry.Point3, error) {
	if len(p) != 3 {
		return geometry.Point3{}, fmt.Errorf("position needs 3 components, got %d", len(p))
	}
	return geometry.Point3{X: p[0], Y: p[1], Z: p[2]}, nil
}

// FromEvents builds a script from engine events, e.g. to record a session
func FromEvents(name string, events []mpr.Event) *Script {
	s := &Script{Name: name}
	for _, ev := range events {
		st := Step{Position: []float64{ev.Position.X, ev.Position.Y, ev.Position.Z}}
		switch ev.Kind {
		case mpr.EventTranslate:
			st.Type, st.View = TypeTranslate, ev.View.String()
		case mpr.EventRotate:
			st.Type = TypeRotate
		case mpr.EventStep:
			st.Type, st.View, st.Direction, st.Position = TypeStep, ev.View.String(), ev.Direction, nil
		default:
			continue
		}
		s.Events = append(s.Events, st)
	}
	return s
}
