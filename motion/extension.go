package motion

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/vm"
)

const ExtensionID = "nkmoremotion"

var (
	ErrUnknownPosition        = errors.New("motion: unknown anchor position")
	ErrCostumeNotFound        = errors.New("motion: costume not found")
	ErrUnsupportedEnvironment = errors.New("motion: unsupported environment")
)

// Extension wires anchors into a runtime: it keeps the store in step with
// the target lifecycle and re-anchors sprites before every execution step.
type Extension struct {
	rt     *vm.Runtime
	store  *Store
	logger *log.Logger
}

func New(rt *vm.Runtime, logger *log.Logger) *Extension {
	if logger == nil {
		logger = rt.Logger()
	}
	e := &Extension{
		rt:     rt,
		store:  NewStore(rt.World()),
		logger: logger.WithPrefix(ExtensionID),
	}

	e.ensureAll()
	rt.OnTargetCreated(func(ev vm.TargetCreated) {
		if ev.Original != nil {
			e.store.Ensure(ev.Target.ID(), ev.Original.ID())
			return
		}
		e.store.Ensure(ev.Target.ID(), 0)
	})
	rt.OnProjectLoaded(e.ensureAll)
	rt.OnTargetRemoved(func(t *vm.Target) { e.store.Forget(t.ID()) })
	rt.OnBeforeExecute(e.updateAll)
	return e
}

func (e *Extension) Store() *Store { return e.store }

func (e *Extension) ensureAll() {
	for _, t := range e.rt.Targets() {
		e.store.Ensure(t.ID(), 0)
	}
}

func (e *Extension) updateAll() {
	for _, id := range e.store.Following() {
		if t, ok := e.rt.Target(id); ok {
			e.UpdateAnchor(t)
		}
	}
}

// UpdateAnchor runs one full anchor pass for t: coarse placement, nudge,
// then the offset. Targets anchored to none are left alone.
func (e *Extension) UpdateAnchor(t *vm.Target) Result {
	if t == nil || !t.Alive() || t.IsStage() {
		return Result{}
	}
	cfg, ok := e.store.Get(t.ID())
	if !ok || cfg.Position == None {
		return Result{}
	}

	w, h := e.rt.StageSize()
	stage := cp.Vector{X: w, Y: h}
	placement, ok := Resolve(stage, cfg.Position)
	if !ok {
		return Result{}
	}

	t.SetXY(placement.Point.X, placement.Point.Y)
	var res Result
	if placement.Direction.X != 0 || placement.Direction.Y != 0 {
		res = Nudge(t, stage, placement.Direction, extent(t), cfg.Resolution, cfg.Retreat)
	}
	t.SetXY(t.X()+cfg.OffsetX, t.Y()+cfg.OffsetY)

	e.logger.Debug("anchor updated", "target", t.Name(), "position", cfg.Position, "steps", res.Total())
	return res
}

// extent is the costume size at the rendered scale.
func extent(t *vm.Target) cp.Vector {
	c, ok := t.Costume()
	if !ok {
		return cp.Vector{}
	}
	_, scale := t.RenderedDirectionAndScale()
	return cp.Vector{X: c.Width * math.Abs(scale[0]) / 100, Y: c.Height * math.Abs(scale[1]) / 100}
}

func (e *Extension) setPosition(args blocks.Args, t *vm.Target) (any, error) {
	pos, ok := ParsePosition(args.String("POSITION"))
	var err error
	if !ok {
		err = fmt.Errorf("%w: %q", ErrUnknownPosition, args.String("POSITION"))
	}
	var now bool
	e.update(t, func(c *Config) {
		c.Position = pos
		now = c.UpdateOnBlockCall
	})
	if now {
		e.UpdateAnchor(t)
	}
	return nil, err
}

func (e *Extension) updateAnchor(_ blocks.Args, t *vm.Target) (any, error) {
	e.UpdateAnchor(t)
	return nil, nil
}

func (e *Extension) anchorPosition(_ blocks.Args, t *vm.Target) (any, error) {
	cfg, ok := e.store.Get(t.ID())
	if !ok {
		return None.String(), nil
	}
	return cfg.Position.String(), nil
}

func (e *Extension) setAnchorOffset(args blocks.Args, t *vm.Target) (any, error) {
	x, y := args.Number("X"), args.Number("Y")
	e.update(t, func(c *Config) { c.OffsetX, c.OffsetY = x, y })
	return nil, nil
}

func (e *Extension) setAnchorUpdateOnBlockCall(args blocks.Args, t *vm.Target) (any, error) {
	on := args.Bool("ENABLED")
	e.update(t, func(c *Config) { c.UpdateOnBlockCall = on })
	return nil, nil
}

func (e *Extension) setAnchorUpdateEveryFrame(args blocks.Args, t *vm.Target) (any, error) {
	on := args.Bool("ENABLED")
	e.update(t, func(c *Config) { c.UpdateEveryFrame = on })
	return nil, nil
}

func (e *Extension) setAnchorResolution(args blocks.Args, t *vm.Target) (any, error) {
	r := args.Number("RESOLUTION")
	e.update(t, func(c *Config) { c.Resolution = normalizeResolution(r) })
	return nil, nil
}

func (e *Extension) setAnchorRetreat(args blocks.Args, t *vm.Target) (any, error) {
	on := args.Bool("ENABLED")
	e.update(t, func(c *Config) { c.Retreat = on })
	return nil, nil
}

// update applies fn to t's config, creating the default config first for
// targets the store has not seen yet.
func (e *Extension) update(t *vm.Target, fn func(*Config)) {
	e.store.Ensure(t.ID(), 0)
	e.store.Update(t.ID(), fn)
}

func (e *Extension) Info() blocks.Info {
	sprite := []blocks.TargetType{blocks.Sprite}
	toggle := map[string]blocks.Argument{"ENABLED": {Type: blocks.Boolean, Default: "true"}}

	return blocks.Info{
		ID:     ExtensionID,
		Name:   "More Motion",
		Color1: "#D34B2D",
		Color2: "#B73E23",
		Color3: "#52180C",
		Blocks: []blocks.Block{
			{
				Type:   blocks.Label,
				Text:   "Stage selected: no motion blocks",
				Filter: []blocks.TargetType{blocks.Stage},
			},
			{
				Opcode: "setXY",
				Type:   blocks.Command,
				Text:   "align costume [ALIGN] offset x: [AX] y: [AY]",
				Arguments: map[string]blocks.Argument{
					"ALIGN": {Type: blocks.String, Menu: "AlignMenu", Default: "center"},
					"AX":    {Type: blocks.Number, Default: "0"},
					"AY":    {Type: blocks.Number, Default: "0"},
				},
				Filter:  sprite,
				Handler: e.setXY,
			},
			{
				Opcode: "costumeAttribute",
				Type:   blocks.Reporter,
				Text:   "[ATTRIBUTE] of [COSTUME]",
				Arguments: map[string]blocks.Argument{
					"ATTRIBUTE": {Type: blocks.String, Menu: "costumeAttribute", Default: "width"},
					"COSTUME":   {Type: blocks.Costume},
				},
				NeedsTarget: true,
				Handler:     e.costumeAttribute,
			},
			{
				Opcode: "setPosition",
				Type:   blocks.Command,
				Text:   "set anchor position to [POSITION]",
				Arguments: map[string]blocks.Argument{
					"POSITION": {Type: blocks.String, Menu: "POSITION", Default: TopLeft.String()},
				},
				Filter:  sprite,
				Handler: e.setPosition,
			},
			{
				Opcode:  "updateAnchor",
				Type:    blocks.Command,
				Text:    "update anchor",
				Filter:  sprite,
				Handler: e.updateAnchor,
			},
			{
				Opcode:  "anchorPosition",
				Type:    blocks.Reporter,
				Text:    "anchor position",
				Filter:  sprite,
				Handler: e.anchorPosition,
			},
			{
				Opcode: "setAnchorOffset",
				Type:   blocks.Command,
				Text:   "set anchor offset x: [X] y: [Y]",
				Arguments: map[string]blocks.Argument{
					"X": {Type: blocks.Number, Default: "0"},
					"Y": {Type: blocks.Number, Default: "0"},
				},
				Filter:  sprite,
				Handler: e.setAnchorOffset,
			},
			{
				Opcode:    "setAnchorUpdateOnBlockCall",
				Type:      blocks.Command,
				Text:      "update anchor when position is set [ENABLED]",
				Arguments: toggle,
				Filter:    sprite,
				Handler:   e.setAnchorUpdateOnBlockCall,
			},
			{
				Opcode:    "setAnchorUpdateEveryFrame",
				Type:      blocks.Command,
				Text:      "update anchor every frame [ENABLED]",
				Arguments: toggle,
				Filter:    sprite,
				Handler:   e.setAnchorUpdateEveryFrame,
			},
			{
				Opcode: "setAnchorResolution",
				Type:   blocks.Command,
				Text:   "set anchor search resolution to [RESOLUTION]",
				Arguments: map[string]blocks.Argument{
					"RESOLUTION": {Type: blocks.Number, Default: "1"},
				},
				Filter:  sprite,
				Handler: e.setAnchorResolution,
			},
			{
				Opcode:    "setAnchorRetreat",
				Type:      blocks.Command,
				Text:      "retreat one step after anchor search [ENABLED]",
				Arguments: toggle,
				Filter:    sprite,
				Handler:   e.setAnchorRetreat,
			},
		},
		Menus: map[string]blocks.Menu{
			"costumeAttribute": {
				Items: append(blocks.Items("width", "height", "format"),
					blocks.MenuItem{Text: "rotation center x", Value: "rotationCenterX"},
					blocks.MenuItem{Text: "rotation center y", Value: "rotationCenterY"},
				),
			},
			"AlignMenu": {Items: alignMenu},
			"POSITION": {
				AcceptReporters: true,
				Items:           positionMenu(),
			},
		},
	}
}

func positionMenu() []blocks.MenuItem {
	items := make([]blocks.MenuItem, 0, len(Positions))
	for _, p := range Positions {
		items = append(items, blocks.MenuItem{Text: p.String(), Value: p.String()})
	}
	return items
}
