// Package gui implements the "GUI Positioning" extension: named frames that
// sprites and other frames are laid out against.
package gui

import (
	"errors"
	"fmt"
)

// StageFrame is the reserved name for the whole stage. It is never stored.
const StageFrame = "stage"

var (
	ErrFrameNotFound   = errors.New("gui: frame not found")
	ErrReservedFrame   = errors.New("gui: frame name is reserved")
	ErrUnknownProperty = errors.New("gui: unknown frame property")
)

// Frame is a rectangle in stage coordinates; X and Y are its bottom-left
// corner.
type Frame struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func DefaultFrame() Frame {
	return Frame{Width: 100, Height: 100}
}

// Properties are the keys Property accepts, in menu order.
var Properties = []string{"x", "y", "width", "height"}

// Registry maps frame names to frames. Names keep their creation order.
type Registry struct {
	frames map[string]*Frame
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{frames: map[string]*Frame{}}
}

// Create adds name with the default rectangle, replacing an existing frame
// of the same name.
func (r *Registry) Create(name string) error {
	if name == StageFrame {
		return fmt.Errorf("%w: %q", ErrReservedFrame, name)
	}
	f := DefaultFrame()
	if _, ok := r.frames[name]; !ok {
		r.order = append(r.order, name)
	}
	r.frames[name] = &f
	return nil
}

// Delete removes name and reports whether it existed.
func (r *Registry) Delete(name string) bool {
	if _, ok := r.frames[name]; !ok {
		return false
	}
	delete(r.frames, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) SetPosition(name string, x, y float64) error {
	f, ok := r.frames[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFrameNotFound, name)
	}
	f.X, f.Y = x, y
	return nil
}

func (r *Registry) SetSize(name string, width, height float64) error {
	f, ok := r.frames[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFrameNotFound, name)
	}
	f.Width, f.Height = width, height
	return nil
}

// Get returns a copy of the named frame.
func (r *Registry) Get(name string) (Frame, bool) {
	f, ok := r.frames[name]
	if !ok {
		return Frame{}, false
	}
	return *f, true
}

// Property reads one of x, y, width or height.
func (r *Registry) Property(name, key string) (float64, error) {
	f, ok := r.frames[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFrameNotFound, name)
	}
	switch key {
	case "x":
		return f.X, nil
	case "y":
		return f.Y, nil
	case "width":
		return f.Width, nil
	case "height":
		return f.Height, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, key)
}

// Names lists frame names in creation order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	return len(r.order)
}
