package gui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/vm"
)

const ExtensionID = "guipositioning"

var ErrUnknownAnchor = errors.New("gui: unknown anchor")

// Extension exposes the frame registry as blocks. Zoom is shared by every
// block: the x sprite block sets it and the others divide stage extents by
// it.
type Extension struct {
	rt     *vm.Runtime
	frames *Registry
	zoom   float64
	logger *log.Logger
}

// New creates the extension with its starting frame, frame1.
func New(rt *vm.Runtime, logger *log.Logger) *Extension {
	if logger == nil {
		logger = rt.Logger()
	}
	e := &Extension{
		rt:     rt,
		frames: NewRegistry(),
		zoom:   1,
		logger: logger.WithPrefix(ExtensionID),
	}
	_ = e.frames.Create("frame1")
	return e
}

func (e *Extension) Frames() *Registry { return e.frames }

// Zoom returns the last zoom factor set by a sprite block.
func (e *Extension) Zoom() float64 { return e.zoom }

func (e *Extension) setZoom(percent float64) {
	if z := percent / 100; z > 0 {
		e.zoom = z
		return
	}
	e.logger.Warn("ignoring non-positive zoom", "zoom", percent)
}

// area resolves a frame name, with "stage" meaning the zoomed stage.
func (e *Extension) area(name string) (Frame, error) {
	if name == StageFrame {
		w, h := e.rt.StageSize()
		return StageArea(w, h, e.zoom), nil
	}
	f, ok := e.frames.Get(name)
	if !ok {
		return Frame{}, fmt.Errorf("%w: %q", ErrFrameNotFound, name)
	}
	return f, nil
}

func (e *Extension) createFrame(args blocks.Args, _ *vm.Target) (any, error) {
	return nil, e.frames.Create(args.String("frame"))
}

func (e *Extension) deleteFrame(args blocks.Args, _ *vm.Target) (any, error) {
	e.frames.Delete(args.String("frame"))
	return nil, nil
}

func (e *Extension) listFrames(blocks.Args, *vm.Target) (any, error) {
	return e.frames.Names(), nil
}

func (e *Extension) keyOfFrame(args blocks.Args, _ *vm.Target) (any, error) {
	v, err := e.frames.Property(args.String("frame"), args.String("key"))
	return v, err
}

func (e *Extension) setPosFrame(args blocks.Args, _ *vm.Target) (any, error) {
	err := e.frames.SetPosition(args.String("frame"), args.Number("x"), args.Number("y"))
	if err != nil {
		return 0.0, err
	}
	return nil, nil
}

func (e *Extension) setSizeFrame(args blocks.Args, _ *vm.Target) (any, error) {
	err := e.frames.SetSize(args.String("frame"), args.Number("width"), args.Number("height"))
	if err != nil {
		return 0.0, err
	}
	return nil, nil
}

func (e *Extension) setPosAncXFrame(args blocks.Args, _ *vm.Target) (any, error) {
	name := args.String("frame")
	f, ok := e.frames.Get(name)
	if !ok {
		return 0.0, fmt.Errorf("%w: %q", ErrFrameNotFound, name)
	}
	w, _ := e.rt.StageSize()
	x, ok := FrameX(f.Width, w, e.zoom, args.String("anchor"), args.Number("margin"))
	if !ok {
		return 0.0, fmt.Errorf("%w: %q", ErrUnknownAnchor, args.String("anchor"))
	}
	return nil, e.frames.SetPosition(name, x, f.Y)
}

func (e *Extension) setPosAncYFrame(args blocks.Args, _ *vm.Target) (any, error) {
	name := args.String("frame")
	f, ok := e.frames.Get(name)
	if !ok {
		return 0.0, fmt.Errorf("%w: %q", ErrFrameNotFound, name)
	}
	_, h := e.rt.StageSize()
	y, ok := FrameY(f.Height, h, e.zoom, args.String("anchor"), args.Number("margin"))
	if !ok {
		return 0.0, fmt.Errorf("%w: %q", ErrUnknownAnchor, args.String("anchor"))
	}
	return nil, e.frames.SetPosition(name, f.X, y)
}

func (e *Extension) setPosAncXSprite(args blocks.Args, t *vm.Target) (any, error) {
	e.setZoom(args.Number("zoom"))
	area, err := e.area(args.String("frame"))
	if err != nil {
		return 0.0, err
	}
	halfW, _ := halfExtent(t)
	x, ok := SpriteX(area, args.String("anchor"), ParseBias(args.String("inCenterOut")), args.Number("margin"), halfW)
	if !ok {
		return 0.0, fmt.Errorf("%w: %q", ErrUnknownAnchor, args.String("anchor"))
	}
	t.SetXY(x, t.Y())
	return nil, nil
}

func (e *Extension) setPosAncYSprite(args blocks.Args, t *vm.Target) (any, error) {
	area, err := e.area(args.String("frame"))
	if err != nil {
		return 0.0, err
	}
	_, halfH := halfExtent(t)
	y, ok := SpriteY(area, args.String("anchor"), ParseBias(args.String("inCenterOut")), args.Number("margin"), halfH)
	if !ok {
		return 0.0, fmt.Errorf("%w: %q", ErrUnknownAnchor, args.String("anchor"))
	}
	t.SetXY(t.X(), y)
	return nil, nil
}

func halfExtent(t *vm.Target) (float64, float64) {
	c, ok := t.Costume()
	if !ok {
		return 0, 0
	}
	return HalfExtent(c, t.Size())
}

func (e *Extension) framesAndStage() []blocks.MenuItem {
	return blocks.Items(append([]string{StageFrame}, e.frames.Names()...)...)
}

func (e *Extension) framesOnly() []blocks.MenuItem {
	return blocks.Items(e.frames.Names()...)
}

func (e *Extension) Info() blocks.Info {
	frameArg := blocks.Argument{Type: blocks.String, Menu: "FRAMES_NOSTAGE", Default: "frame1"}
	number := func(def string) blocks.Argument { return blocks.Argument{Type: blocks.Number, Default: def} }
	sprite := []blocks.TargetType{blocks.Sprite}

	return blocks.Info{
		ID:     ExtensionID,
		Name:   "Adaptation",
		Color1: "#5D607A",
		Color2: "#536E8E",
		Color3: "#1F202C",
		Blocks: []blocks.Block{
			{
				Opcode: "createFrame",
				Type:   blocks.Command,
				Text:   "create frame: [frame]",
				Arguments: map[string]blocks.Argument{
					"frame": {Type: blocks.String, Default: "frame1"},
				},
				Handler: e.createFrame,
			},
			{
				Opcode:    "deleteFrame",
				Type:      blocks.Command,
				Text:      "delete frame: [frame]",
				Arguments: map[string]blocks.Argument{"frame": frameArg},
				Handler:   e.deleteFrame,
			},
			{
				Opcode: "setPosFrame",
				Type:   blocks.Command,
				Text:   "set pos of frame [frame] x: [x] y: [y]",
				Arguments: map[string]blocks.Argument{
					"frame": frameArg,
					"x":     number("0"),
					"y":     number("0"),
				},
				Handler: e.setPosFrame,
			},
			{
				Opcode: "setSizeFrame",
				Type:   blocks.Command,
				Text:   "set size of frame [frame] width: [width] height: [height]",
				Arguments: map[string]blocks.Argument{
					"frame":  frameArg,
					"width":  number("100"),
					"height": number("100"),
				},
				Handler: e.setSizeFrame,
			},
			{
				Opcode: "setPosAncXFrame",
				Type:   blocks.Command,
				Text:   "set x of frame [frame] at [anchor] with offset x [margin]",
				Arguments: map[string]blocks.Argument{
					"frame":  frameArg,
					"anchor": {Type: blocks.String, Menu: "ANCHOR_X", Default: "center"},
					"margin": number("0"),
				},
				Handler: e.setPosAncXFrame,
			},
			{
				Opcode: "setPosAncYFrame",
				Type:   blocks.Command,
				Text:   "set y of frame [frame] at [anchor] with offset y [margin]",
				Arguments: map[string]blocks.Argument{
					"frame":  frameArg,
					"anchor": {Type: blocks.String, Menu: "ANCHOR_Y", Default: "center"},
					"margin": number("0"),
				},
				Handler: e.setPosAncYFrame,
			},
			{
				Opcode: "keyOfFrame",
				Type:   blocks.Reporter,
				Text:   "[key] of [frame]",
				Arguments: map[string]blocks.Argument{
					"key":   {Type: blocks.String, Menu: "FRAME_PROPERTIES", Default: "x"},
					"frame": frameArg,
				},
				Handler: e.keyOfFrame,
			},
			{
				Opcode:  "listFrames",
				Type:    blocks.Reporter,
				Text:    "frames",
				Handler: e.listFrames,
			},
			{
				Opcode: "setPosAncXSprite",
				Type:   blocks.Command,
				Text:   "set x in [frame] at [anchor] [inCenterOut] if zoom: [zoom] with offset x [margin]",
				Arguments: map[string]blocks.Argument{
					"frame":       {Type: blocks.String, Menu: "FRAMES", Default: StageFrame},
					"anchor":      {Type: blocks.String, Menu: "ANCHOR_X", Default: "center"},
					"inCenterOut": {Type: blocks.String, Menu: "inCenterOut", Default: "in"},
					"zoom":        number("100"),
					"margin":      number("0"),
				},
				Filter:  sprite,
				Handler: e.setPosAncXSprite,
			},
			{
				Opcode: "setPosAncYSprite",
				Type:   blocks.Command,
				Text:   "set y on [frame] at [anchor] [inCenterOut] with offset y [margin]",
				Arguments: map[string]blocks.Argument{
					"frame":       {Type: blocks.String, Menu: "FRAMES", Default: StageFrame},
					"anchor":      {Type: blocks.String, Menu: "ANCHOR_Y", Default: "center"},
					"inCenterOut": {Type: blocks.String, Menu: "inCenterOut", Default: "in"},
					"margin":      number("0"),
				},
				Filter:  sprite,
				Handler: e.setPosAncYSprite,
			},
		},
		Menus: map[string]blocks.Menu{
			"ANCHOR_X":         {Items: blocks.Items("left", "right", "center")},
			"ANCHOR_Y":         {Items: blocks.Items("top", "bottom", "center")},
			"inCenterOut":      {Items: blocks.Items("in", "center", "out")},
			"FRAME_PROPERTIES": {Items: blocks.Items(Properties...)},
			"FRAMES":           {AcceptReporters: true, Dynamic: e.framesAndStage},
			"FRAMES_NOSTAGE":   {AcceptReporters: true, Dynamic: e.framesOnly},
		},
	}
}
