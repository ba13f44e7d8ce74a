package vm

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/milk9111/stagekit/ecs"
	"github.com/milk9111/stagekit/ecs/component"
	"github.com/milk9111/stagekit/project"
)

func newTestRuntime(opts ...Option) *Runtime {
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	return New(opts...)
}

func square(size float64) []component.Costume {
	return []component.Costume{{
		Name:            "square",
		Width:           size,
		Height:          size,
		RotationCenterX: size / 2,
		RotationCenterY: size / 2,
	}}
}

func addSprite(t *testing.T, rt *Runtime, name string, costumes []component.Costume) *Target {
	t.Helper()
	sprite, err := rt.AddSprite(SpriteInit{Name: name, Size: 100, Direction: 90, Visible: true, Costumes: costumes})
	if err != nil {
		t.Fatalf("AddSprite(%s): %v", name, err)
	}
	return sprite
}

func TestNewRuntimeHasStage(t *testing.T) {
	rt := newTestRuntime()
	targets := rt.Targets()
	if len(targets) != 1 || !targets[0].IsStage() {
		t.Fatalf("expected only the stage, got %d targets", len(targets))
	}
	w, h := rt.StageSize()
	if w != 480 || h != 360 {
		t.Fatalf("default stage size = %vx%v", w, h)
	}
	if _, ok := rt.Stage().Bounds(); ok {
		t.Fatalf("stage must not report bounds")
	}
	rt.Stage().SetXY(10, 10)
	if rt.Stage().X() != 0 {
		t.Fatalf("stage must not move")
	}
	if !rt.EditingTarget().IsStage() {
		t.Fatalf("editing target should fall back to the stage")
	}
}

func TestAddSpritePublishesTargetCreated(t *testing.T) {
	rt := newTestRuntime()
	var events []TargetCreated
	rt.OnTargetCreated(func(e TargetCreated) { events = append(events, e) })

	sprite := addSprite(t, rt, "cat", square(100))
	if len(events) != 1 || events[0].Target.ID() != sprite.ID() || events[0].Original != nil {
		t.Fatalf("unexpected events: %+v", events)
	}

	if _, err := rt.AddSprite(SpriteInit{Name: "cat"}); !errors.Is(err, ErrDuplicateSprite) {
		t.Fatalf("duplicate name: got %v", err)
	}
	if got, ok := rt.TargetByName("cat"); !ok || got.ID() != sprite.ID() {
		t.Fatalf("TargetByName did not find the sprite")
	}
}

func TestCloneCopiesStateAndReportsOriginal(t *testing.T) {
	rt := newTestRuntime()
	sprite := addSprite(t, rt, "cat", square(20))
	sprite.SetXY(12, -7)
	sprite.SetSize(150)

	var created TargetCreated
	rt.OnTargetCreated(func(e TargetCreated) { created = e })

	clone, err := rt.Clone(sprite)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if created.Original == nil || created.Original.ID() != sprite.ID() || created.Target.ID() != clone.ID() {
		t.Fatalf("TargetCreated payload wrong: %+v", created)
	}
	if clone.IsOriginal() || clone.Name() != "cat" {
		t.Fatalf("clone identity wrong: original=%v name=%q", clone.IsOriginal(), clone.Name())
	}
	if clone.X() != 12 || clone.Y() != -7 || clone.Size() != 150 {
		t.Fatalf("clone state not copied: (%v,%v) size %v", clone.X(), clone.Y(), clone.Size())
	}

	clone.SetXY(0, 0)
	if sprite.X() != 12 {
		t.Fatalf("moving the clone moved the original")
	}

	if _, err := rt.Clone(rt.Stage()); !errors.Is(err, ErrStageTarget) {
		t.Fatalf("cloning the stage: got %v", err)
	}
}

func TestDisposePublishesRemoval(t *testing.T) {
	rt := newTestRuntime()
	sprite := addSprite(t, rt, "cat", square(20))
	clone, _ := rt.Clone(sprite)

	var removed []string
	rt.OnTargetRemoved(func(t *Target) { removed = append(removed, t.ID().String()) })

	if err := rt.Dispose(clone); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if clone.Alive() || len(removed) != 1 {
		t.Fatalf("clone should be gone and reported once, removed=%v", removed)
	}
	if err := rt.Dispose(clone); !errors.Is(err, ErrTargetGone) {
		t.Fatalf("second dispose: got %v", err)
	}
	if err := rt.Dispose(rt.Stage()); !errors.Is(err, ErrStageTarget) {
		t.Fatalf("disposing the stage: got %v", err)
	}
}

func TestCloneLimit(t *testing.T) {
	rt := newTestRuntime()
	sprite := addSprite(t, rt, "cat", square(4))
	for i := 0; i < MaxClones; i++ {
		if _, err := rt.Clone(sprite); err != nil {
			t.Fatalf("clone %d: %v", i, err)
		}
	}
	if _, err := rt.Clone(sprite); !errors.Is(err, ErrCloneLimit) {
		t.Fatalf("expected clone limit, got %v", err)
	}
}

func TestStepOrder(t *testing.T) {
	rt := newTestRuntime()
	var order []string
	rt.OnBeforeExecute(func() { order = append(order, "before") })
	rt.AddSystem(systemFunc(func() { order = append(order, "system") }))

	rt.Step()
	rt.Step()
	if len(order) != 4 || order[0] != "before" || order[1] != "system" {
		t.Fatalf("unexpected step order: %v", order)
	}
	if rt.Frame() != 2 {
		t.Fatalf("Frame = %d, want 2", rt.Frame())
	}
}

func TestLoadProjectInstallsSilently(t *testing.T) {
	p, err := project.Parse([]byte(`
stage: {width: 640, height: 480}
sprites:
  - name: a
    x: 5
    costumes: [{name: c, width: 10, height: 10}]
  - name: b
`), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rt := newTestRuntime()
	old := addSprite(t, rt, "old", square(1))

	created, loaded := 0, 0
	var removed []string
	rt.OnTargetCreated(func(TargetCreated) { created++ })
	rt.OnProjectLoaded(func() {
		loaded++
		if len(rt.Targets()) != 3 {
			t.Errorf("project loaded fired before sprites were installed")
		}
	})
	rt.OnTargetRemoved(func(t *Target) { removed = append(removed, t.Name()) })

	if err := rt.LoadProject(p); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if created != 0 || loaded != 1 {
		t.Fatalf("created=%d loaded=%d, want 0 and 1", created, loaded)
	}
	if old.Alive() {
		t.Fatalf("old sprites must be removed on load")
	}
	if len(removed) != 2 {
		t.Fatalf("expected stage and old sprite removal events, got %v", removed)
	}
	if w, h := rt.StageSize(); w != 640 || h != 480 {
		t.Fatalf("stage size not applied: %vx%v", w, h)
	}
	a, ok := rt.TargetByName("a")
	if !ok || a.X() != 5 || a.Size() != 100 || a.Direction() != 90 || !a.Visible() {
		t.Fatalf("sprite a not installed with defaults")
	}
	if rt.EditingTarget().Name() != "a" {
		t.Fatalf("editing target should be the first sprite")
	}
}

func TestSetDirectionWraps(t *testing.T) {
	rt := newTestRuntime()
	sprite := addSprite(t, rt, "cat", square(10))
	tests := []struct{ in, want float64 }{
		{90, 90}, {180, 180}, {-180, 180}, {190, -170}, {-270, 90}, {450, 90},
	}
	for _, tc := range tests {
		sprite.SetDirection(tc.in)
		if got := sprite.Direction(); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("SetDirection(%v) -> %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCostumeSelection(t *testing.T) {
	rt := newTestRuntime()
	costumes := append(square(10), component.Costume{Name: "wide", Width: 30, Height: 10, RotationCenterX: 15, RotationCenterY: 5})
	sprite := addSprite(t, rt, "cat", costumes)

	if sprite.CostumeIndexByName("wide") != 1 || sprite.CostumeIndexByName("nope") != -1 {
		t.Fatalf("CostumeIndexByName wrong")
	}
	sprite.SetCostume(3)
	if sprite.CurrentCostume() != 1 {
		t.Fatalf("SetCostume should wrap, got %d", sprite.CurrentCostume())
	}
	c, ok := sprite.Costume()
	if !ok || c.Name != "wide" {
		t.Fatalf("Costume() = %+v", c)
	}
}

func TestAlertForwardsToSink(t *testing.T) {
	var got string
	rt := newTestRuntime(WithAlertSink(func(msg string) { got = msg }))
	rt.Alert("uncheck the option")
	if got != "uncheck the option" || len(rt.Alerts()) != 1 {
		t.Fatalf("alert not delivered: %q %v", got, rt.Alerts())
	}
}

type systemFunc func()

func (f systemFunc) Update(*ecs.World) { f() }
