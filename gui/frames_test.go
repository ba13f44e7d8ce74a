package gui

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	if err := r.Create("a"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w, err := r.Property("a", "width"); err != nil || w != 100 {
		t.Fatalf("width = %v, %v; want 100", w, err)
	}

	if err := r.SetPosition("a", 5, -5); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := r.SetSize("a", 40, 20); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	if f, _ := r.Get("a"); f != (Frame{X: 5, Y: -5, Width: 40, Height: 20}) {
		t.Fatalf("frame = %+v", f)
	}

	// create resets an existing frame
	if err := r.Create("a"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f, _ := r.Get("a"); f != DefaultFrame() {
		t.Fatalf("recreated frame = %+v", f)
	}

	if !r.Delete("a") || r.Delete("a") {
		t.Fatalf("Delete should succeed exactly once")
	}
	for _, name := range r.Names() {
		if name == "a" {
			t.Fatalf("deleted frame still listed")
		}
	}
}

func TestRegistryNamesKeepOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"hud", "menu", "footer"} {
		_ = r.Create(name)
	}
	_ = r.Create("hud")
	r.Delete("menu")

	want := []string{"hud", "footer"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"reserved", r.Create(StageFrame), ErrReservedFrame},
		{"set_position_missing", r.SetPosition("ghost", 1, 1), ErrFrameNotFound},
		{"set_size_missing", r.SetSize("ghost", 1, 1), ErrFrameNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.want) {
				t.Fatalf("got %v, want %v", tc.err, tc.want)
			}
		})
	}

	if _, err := r.Property("ghost", "x"); !errors.Is(err, ErrFrameNotFound) {
		t.Fatalf("Property on missing frame: %v", err)
	}
	_ = r.Create("a")
	if _, err := r.Property("a", "depth"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("Property with bad key: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("reserved name was stored")
	}
}
