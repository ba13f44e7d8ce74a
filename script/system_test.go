package script

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/ecs/component"
	"github.com/milk9111/stagekit/motion"
	"github.com/milk9111/stagekit/project"
	"github.com/milk9111/stagekit/vm"
)

const moverScript = `
on_start := func(engine, state) {
	state.ticks = 0
	engine.set_xy(10, 20)
}

on_tick := func(engine, state) {
	state.ticks += 1
	engine.change_xy(1, 0)
}
`

func newTestSystem(t *testing.T) (*vm.Runtime, *System) {
	t.Helper()
	logger := log.New(io.Discard)
	rt := vm.New(vm.WithLogger(logger))
	reg := blocks.NewRegistry(logger)
	if err := reg.Register(motion.New(rt, logger)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return rt, NewSystem(rt, reg, logger)
}

func addSprite(t *testing.T, rt *vm.Runtime, name string) *vm.Target {
	t.Helper()
	s, err := rt.AddSprite(vm.SpriteInit{
		Name:      name,
		Size:      100,
		Direction: 90,
		Visible:   true,
		Costumes:  []component.Costume{{Name: "box", Width: 100, Height: 100, RotationCenterX: 50, RotationCenterY: 50}},
	})
	if err != nil {
		t.Fatalf("AddSprite: %v", err)
	}
	return s
}

func mustCompile(t *testing.T, src string) *Program {
	t.Helper()
	p, err := Compile("test.tengo", []byte(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p
}

func TestCompileFindsHooks(t *testing.T) {
	p := mustCompile(t, moverScript)
	if !p.Defines(PhaseStart) || !p.Defines(PhaseTick) || p.Defines(PhaseClone) {
		t.Fatalf("hooks = %v", p.defined)
	}

	if _, err := Compile("bad.tengo", []byte("on_tick := func(")); err == nil {
		t.Fatalf("expected a compile error")
	}
}

func TestStartAndTick(t *testing.T) {
	rt, sys := newTestSystem(t)
	s := addSprite(t, rt, "mover")
	sys.Attach(s, mustCompile(t, moverScript))

	sys.Start()
	if s.X() != 10 || s.Y() != 20 {
		t.Fatalf("after start at (%v, %v)", s.X(), s.Y())
	}
	for i := 0; i < 3; i++ {
		rt.Step()
	}
	if s.X() != 13 {
		t.Fatalf("after 3 ticks x = %v, want 13", s.X())
	}

	ticks, ok := sys.scripts[s.ID()].state.Value["ticks"].(*tengo.Int)
	if !ok || ticks.Value != 3 {
		t.Fatalf("state.ticks = %v", sys.scripts[s.ID()].state.Value["ticks"])
	}
}

func TestClonesRunOnClone(t *testing.T) {
	rt, sys := newTestSystem(t)
	s := addSprite(t, rt, "spawner")
	sys.Attach(s, mustCompile(t, `
on_start := func(engine, state) {
	state.generation = 1
	engine.clone()
}

on_clone := func(engine, state) {
	state.generation += 1
	engine.set_xy(-50, 0)
}
`))

	sys.Start()
	targets := rt.Targets()
	if len(targets) != 3 {
		t.Fatalf("expected stage, sprite and clone, got %d targets", len(targets))
	}
	clone := targets[2]
	if clone.IsOriginal() || clone.X() != -50 {
		t.Fatalf("clone at x=%v original=%v", clone.X(), clone.IsOriginal())
	}

	orig := sys.scripts[s.ID()].state.Value["generation"].(*tengo.Int)
	copied := sys.scripts[clone.ID()].state.Value["generation"].(*tengo.Int)
	if orig.Value != 1 || copied.Value != 2 {
		t.Fatalf("generation original=%d clone=%d", orig.Value, copied.Value)
	}

	if err := rt.Dispose(clone); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if sys.Len() != 1 {
		t.Fatalf("disposed clone kept its script")
	}
}

func TestScriptsCallExtensions(t *testing.T) {
	rt, sys := newTestSystem(t)
	s := addSprite(t, rt, "anchored")
	sys.Attach(s, mustCompile(t, `
on_start := func(engine, state) {
	engine.nkmoremotion.setPosition({POSITION: "top left"})
	state.anchor = engine.nkmoremotion.anchorPosition()
}
`))

	sys.Start()
	rt.Step()
	if s.X() != -190 || s.Y() != 130 {
		t.Fatalf("anchored sprite at (%v, %v), want (-190, 130)", s.X(), s.Y())
	}
	anchor, ok := sys.scripts[s.ID()].state.Value["anchor"].(*tengo.String)
	if !ok || anchor.Value != "top left" {
		t.Fatalf("state.anchor = %v", sys.scripts[s.ID()].state.Value["anchor"])
	}
}

func TestFailingScriptDoesNotStopOthers(t *testing.T) {
	rt, sys := newTestSystem(t)
	broken := addSprite(t, rt, "broken")
	mover := addSprite(t, rt, "mover")
	sys.Attach(broken, mustCompile(t, `
on_tick := func(engine, state) {
	notfn := 5
	notfn()
}
`))
	sys.Attach(mover, mustCompile(t, moverScript))

	rt.Step()
	rt.Step()
	if mover.X() != 2 {
		t.Fatalf("mover x = %v, want 2", mover.X())
	}
}

func TestProjectLoadAttachesScripts(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/mover.tengo": {Data: []byte(moverScript)},
	}
	p, err := project.Parse([]byte(`
sprites:
  - name: mover
    script: scripts/mover.tengo
  - name: idle
`), fsys)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rt, sys := newTestSystem(t)
	if err := rt.LoadProject(p); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if sys.Len() != 1 {
		t.Fatalf("scripts attached = %d, want 1", sys.Len())
	}
	mover, _ := rt.TargetByName("mover")
	if mover.X() != 10 || mover.Y() != 20 {
		t.Fatalf("on_start did not run: (%v, %v)", mover.X(), mover.Y())
	}
}
