package gui

import (
	"io"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/ecs/component"
	"github.com/milk9111/stagekit/vm"
)

func newTestExtension(t *testing.T) (*Extension, *blocks.Registry, *vm.Target) {
	t.Helper()
	logger := log.New(io.Discard)
	rt := vm.New(vm.WithLogger(logger))
	ext := New(rt, logger)
	reg := blocks.NewRegistry(logger)
	if err := reg.Register(ext); err != nil {
		t.Fatalf("Register: %v", err)
	}
	sprite, err := rt.AddSprite(vm.SpriteInit{
		Name:      "button",
		Size:      100,
		Direction: 90,
		Costumes:  []component.Costume{{Name: "c", Width: 40, Height: 20, RotationCenterX: 20, RotationCenterY: 10}},
	})
	if err != nil {
		t.Fatalf("AddSprite: %v", err)
	}
	return ext, reg, sprite
}

func TestFrameBlocks(t *testing.T) {
	ext, reg, sprite := newTestExtension(t)
	call := func(op string, args blocks.Args) any { return reg.Call(ExtensionID, op, args, sprite) }

	if got := call("listFrames", nil); !reflect.DeepEqual(got, []string{"frame1"}) {
		t.Fatalf("initial frames = %v", got)
	}

	call("createFrame", blocks.Args{"frame": "a"})
	if got := call("keyOfFrame", blocks.Args{"frame": "a", "key": "width"}); got != 100.0 {
		t.Fatalf("width of a = %v, want 100", got)
	}

	call("setPosFrame", blocks.Args{"frame": "a", "x": "12", "y": -4})
	call("setSizeFrame", blocks.Args{"frame": "a", "width": 60, "height": 30})
	if f, _ := ext.Frames().Get("a"); f != (Frame{X: 12, Y: -4, Width: 60, Height: 30}) {
		t.Fatalf("frame a = %+v", f)
	}

	call("deleteFrame", blocks.Args{"frame": "a"})
	if got := call("listFrames", nil); !reflect.DeepEqual(got, []string{"frame1"}) {
		t.Fatalf("frames after delete = %v", got)
	}

	if got := call("keyOfFrame", blocks.Args{"frame": "a", "key": "x"}); got != 0.0 {
		t.Fatalf("property of deleted frame = %v, want 0", got)
	}
}

func TestSetPosAncXFrameMissingDoesNotMutate(t *testing.T) {
	ext, reg, sprite := newTestExtension(t)
	before := ext.Frames().Names()
	frame1, _ := ext.Frames().Get("frame1")

	got := reg.Call(ExtensionID, "setPosAncXFrame", blocks.Args{"frame": "ghost", "anchor": "left", "margin": 0}, sprite)
	if got != 0.0 {
		t.Fatalf("result = %v, want 0", got)
	}
	if !reflect.DeepEqual(ext.Frames().Names(), before) {
		t.Fatalf("frame list changed")
	}
	if after, _ := ext.Frames().Get("frame1"); after != frame1 {
		t.Fatalf("frame1 changed to %+v", after)
	}
}

func TestFrameAnchorBlocks(t *testing.T) {
	ext, reg, sprite := newTestExtension(t)
	reg.Call(ExtensionID, "setPosAncXFrame", blocks.Args{"frame": "frame1", "anchor": "right", "margin": -10}, sprite)
	reg.Call(ExtensionID, "setPosAncYFrame", blocks.Args{"frame": "frame1", "anchor": "top", "margin": 0}, sprite)

	f, _ := ext.Frames().Get("frame1")
	if f.X != 130 || f.Y != 80 {
		t.Fatalf("frame1 at (%v, %v), want (130, 80)", f.X, f.Y)
	}
}

func TestSpriteAnchorBlocks(t *testing.T) {
	ext, reg, sprite := newTestExtension(t)

	reg.Call(ExtensionID, "setPosAncXSprite", blocks.Args{
		"frame": "stage", "anchor": "left", "inCenterOut": "in", "zoom": 100, "margin": 4,
	}, sprite)
	reg.Call(ExtensionID, "setPosAncYSprite", blocks.Args{
		"frame": "stage", "anchor": "top", "inCenterOut": "out", "margin": 0,
	}, sprite)
	if sprite.X() != -216 || sprite.Y() != 190 {
		t.Fatalf("sprite at (%v, %v), want (-216, 190)", sprite.X(), sprite.Y())
	}

	_ = ext.Frames().SetPosition("frame1", 100, 100)
	reg.Call(ExtensionID, "setPosAncXSprite", blocks.Args{
		"frame": "frame1", "anchor": "center", "zoom": 200, "margin": 0,
	}, sprite)
	if sprite.X() != 150 || ext.Zoom() != 2 {
		t.Fatalf("x = %v zoom = %v", sprite.X(), ext.Zoom())
	}

	reg.Call(ExtensionID, "setPosAncYSprite", blocks.Args{"frame": "stage", "anchor": "bottom", "margin": 0}, sprite)
	if sprite.Y() != -80 {
		t.Fatalf("zoomed bottom y = %v, want -80", sprite.Y())
	}
}

func TestSpriteAnchorMissingFrame(t *testing.T) {
	ext, reg, sprite := newTestExtension(t)
	sprite.SetXY(3, 4)
	reg.Call(ExtensionID, "setPosAncXSprite", blocks.Args{"frame": "ghost", "anchor": "left", "zoom": 50}, sprite)
	if sprite.X() != 3 || sprite.Y() != 4 {
		t.Fatalf("sprite moved to (%v, %v)", sprite.X(), sprite.Y())
	}
	if ext.Zoom() != 0.5 {
		t.Fatalf("zoom = %v, want 0.5", ext.Zoom())
	}

	reg.Call(ExtensionID, "setPosAncXSprite", blocks.Args{"frame": "stage", "anchor": "center", "zoom": 0}, sprite)
	if ext.Zoom() != 0.5 {
		t.Fatalf("zero zoom replaced the previous zoom: %v", ext.Zoom())
	}
}

func TestFrameMenus(t *testing.T) {
	ext, reg, _ := newTestExtension(t)
	_ = ext.Frames().Create("hud")

	items, err := reg.MenuItems(ExtensionID, "FRAMES")
	if err != nil {
		t.Fatalf("MenuItems: %v", err)
	}
	if got := blocks.Values(items); !reflect.DeepEqual(got, []string{"stage", "frame1", "hud"}) {
		t.Fatalf("FRAMES = %v", got)
	}

	items, _ = reg.MenuItems(ExtensionID, "FRAMES_NOSTAGE")
	if got := blocks.Values(items); !reflect.DeepEqual(got, []string{"frame1", "hud"}) {
		t.Fatalf("FRAMES_NOSTAGE = %v", got)
	}
}

func TestCreateStageFrameRejected(t *testing.T) {
	ext, reg, sprite := newTestExtension(t)
	reg.Call(ExtensionID, "createFrame", blocks.Args{"frame": "stage"}, sprite)
	if _, ok := ext.Frames().Get("stage"); ok {
		t.Fatalf("stage frame was created")
	}
}
