package vm

import (
	"math"
	"strings"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stagekit/common"
	"github.com/milk9111/stagekit/ecs"
	"github.com/milk9111/stagekit/ecs/component"
)

// Target is a handle to the stage or a sprite. Handles are cheap; compare
// targets by ID.
type Target struct {
	rt *Runtime
	e  ecs.Entity
}

func (t *Target) ID() ecs.Entity { return t.e }

func (t *Target) Runtime() *Runtime { return t.rt }

func (t *Target) Alive() bool {
	return t != nil && ecs.Has(t.rt.world, t.e, component.IdentityComponent.Kind())
}

func (t *Target) identity() component.Identity {
	if id, ok := ecs.Get(t.rt.world, t.e, component.IdentityComponent.Kind()); ok {
		return *id
	}
	return component.Identity{}
}

func (t *Target) transform() *component.Transform {
	if tr, ok := ecs.Get(t.rt.world, t.e, component.TransformComponent.Kind()); ok {
		return tr
	}
	return &component.Transform{}
}

func (t *Target) Name() string { return t.identity().Name }

func (t *Target) IsStage() bool { return t.identity().Stage }

// IsOriginal is false for clones.
func (t *Target) IsOriginal() bool { return t.identity().Original }

func (t *Target) X() float64 { return t.transform().X }

func (t *Target) Y() float64 { return t.transform().Y }

// SetXY moves a sprite. The stage never moves.
func (t *Target) SetXY(x, y float64) {
	if t.IsStage() {
		return
	}
	tr, ok := ecs.Get(t.rt.world, t.e, component.TransformComponent.Kind())
	if !ok {
		return
	}
	if common.Finite(x) {
		tr.X = x
	}
	if common.Finite(y) {
		tr.Y = y
	}
}

// Size is the display size in percent.
func (t *Target) Size() float64 { return t.transform().Size }

// SetSize stores size fenced to the current costume and the stage.
func (t *Target) SetSize(size float64) {
	if t.IsStage() || !common.Finite(size) {
		return
	}
	tr, ok := ecs.Get(t.rt.world, t.e, component.TransformComponent.Kind())
	if !ok {
		return
	}
	c, _ := t.Costume()
	w, h := t.rt.StageSize()
	tr.Size = fenceSize(size, c, w, h)
}

// fenceSize keeps a costume at least 5 pixels (or its own size, when smaller)
// on one axis and at most one and a half stages on both.
func fenceSize(size float64, c component.Costume, stageW, stageH float64) float64 {
	size = math.Max(0, size)
	if c.Width <= 0 || c.Height <= 0 {
		return size
	}
	minScale := math.Min(1, math.Max(5/c.Width, 5/c.Height))
	maxScale := math.Min(1.5*stageW/c.Width, 1.5*stageH/c.Height)
	return math.Min(math.Max(size/100, minScale), maxScale) * 100
}

func (t *Target) Direction() float64 { return t.transform().Direction }

// SetDirection stores a direction wrapped into (-180, 180].
func (t *Target) SetDirection(dir float64) {
	if t.IsStage() || !common.Finite(dir) {
		return
	}
	if tr, ok := ecs.Get(t.rt.world, t.e, component.TransformComponent.Kind()); ok {
		tr.Direction = wrapDirection(dir)
	}
}

func (t *Target) look() component.Look {
	if l, ok := ecs.Get(t.rt.world, t.e, component.LookComponent.Kind()); ok {
		return *l
	}
	return component.Look{}
}

func (t *Target) Visible() bool { return t.look().Visible }

func (t *Target) SetVisible(v bool) {
	if l, ok := ecs.Get(t.rt.world, t.e, component.LookComponent.Kind()); ok {
		l.Visible = v
	}
}

func (t *Target) RotationStyle() string { return t.look().RotationStyle }

// Costumes returns the sprite's costume list. The slice is shared and must
// not be modified.
func (t *Target) Costumes() []component.Costume {
	if c, ok := ecs.Get(t.rt.world, t.e, component.CostumesComponent.Kind()); ok {
		return c.List
	}
	return nil
}

// CurrentCostume returns the selected costume index.
func (t *Target) CurrentCostume() int {
	if c, ok := ecs.Get(t.rt.world, t.e, component.CostumesComponent.Kind()); ok {
		return c.Current
	}
	return 0
}

// Costume returns the selected costume.
func (t *Target) Costume() (component.Costume, bool) {
	c, ok := ecs.Get(t.rt.world, t.e, component.CostumesComponent.Kind())
	if !ok {
		return component.Costume{}, false
	}
	return c.Selected()
}

// SetCostume selects a costume by index, wrapping out-of-range values.
func (t *Target) SetCostume(index int) {
	c, ok := ecs.Get(t.rt.world, t.e, component.CostumesComponent.Kind())
	if !ok || len(c.List) == 0 {
		return
	}
	c.Current = common.WrapClamp(index, 0, len(c.List)-1)
}

// CostumeIndexByName returns the index of the named costume, or -1.
func (t *Target) CostumeIndexByName(name string) int {
	for i, c := range t.Costumes() {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// RenderedDirectionAndScale returns the direction and per-axis scale (in
// percent) the renderer applies after the rotation style is taken into
// account.
func (t *Target) RenderedDirectionAndScale() (float64, [2]float64) {
	tr := t.transform()
	dir := tr.Direction
	scale := [2]float64{tr.Size, tr.Size}
	switch t.RotationStyle() {
	case component.RotationDontRotate:
		dir = 90
	case component.RotationLeftRight:
		dir = 90
		if tr.Direction < 0 {
			scale[0] = -tr.Size
		}
	}
	return dir, scale
}

// Bounds returns the stage-space axis-aligned box of the current costume.
// The stage and costume-less sprites have no visual bounds.
func (t *Target) Bounds() (cp.BB, bool) {
	if t == nil || !t.Alive() || t.IsStage() {
		return cp.BB{}, false
	}
	costume, ok := t.Costume()
	if !ok {
		return cp.BB{}, false
	}
	dir, scale := t.RenderedDirectionAndScale()
	return costumeBounds(costume, t.X(), t.Y(), dir, scale), true
}

func costumeBounds(c component.Costume, x, y, dir float64, scale [2]float64) cp.BB {
	sx, sy := scale[0]/100, scale[1]/100
	left := -c.RotationCenterX
	right := c.Width - c.RotationCenterX
	top := c.RotationCenterY
	bottom := c.RotationCenterY - c.Height

	corners := [4][2]float64{
		{left, top}, {right, top}, {right, bottom}, {left, bottom},
	}
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for _, corner := range corners {
		px, py := common.Rotate(corner[0]*sx, corner[1]*sy, 90-dir)
		bb.L = math.Min(bb.L, px)
		bb.R = math.Max(bb.R, px)
		bb.B = math.Min(bb.B, py)
		bb.T = math.Max(bb.T, py)
	}
	return cp.BB{L: x + snap(bb.L), B: y + snap(bb.B), R: x + snap(bb.R), T: y + snap(bb.T)}
}

// snap removes floating point noise left by the rotation so axis-aligned
// costumes produce exact edges.
func snap(v float64) float64 {
	const eps = 1e-9
	if r := math.Round(v); math.Abs(v-r) < eps {
		return r
	}
	return v
}

func wrapDirection(dir float64) float64 {
	d := math.Mod(dir+180, 360)
	if d <= 0 {
		d += 360
	}
	return d - 180
}

// ParseRotationStyle accepts the menu spellings of a rotation style.
func ParseRotationStyle(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case component.RotationAllAround, "all-around":
		return component.RotationAllAround, true
	case component.RotationLeftRight, "left right":
		return component.RotationLeftRight, true
	case component.RotationDontRotate, "dont rotate", "don't-rotate":
		return component.RotationDontRotate, true
	}
	return "", false
}
