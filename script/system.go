package script

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/ecs"
	"github.com/milk9111/stagekit/project"
	"github.com/milk9111/stagekit/vm"
)

// System runs sprite scripts. It loads the scripts of every project the
// runtime loads, runs on_start once loading finishes, on_clone for each new
// clone and on_tick on every step.
type System struct {
	rt       *vm.Runtime
	registry *blocks.Registry
	logger   *log.Logger

	programs map[string]*Program
	scripts  map[ecs.Entity]*instance
}

// NewSystem attaches the script system to rt. Extensions registered with
// registry before a target is attached are visible to its script.
func NewSystem(rt *vm.Runtime, registry *blocks.Registry, logger *log.Logger) *System {
	if logger == nil {
		logger = rt.Logger()
	}
	s := &System{
		rt:       rt,
		registry: registry,
		logger:   logger.WithPrefix("script"),
		programs: map[string]*Program{},
		scripts:  map[ecs.Entity]*instance{},
	}
	rt.OnTargetCreated(s.targetCreated)
	rt.OnTargetRemoved(func(t *vm.Target) { delete(s.scripts, t.ID()) })
	rt.OnProjectLoaded(s.projectLoaded)
	rt.AddSystem(s)
	return s
}

// Attach gives t its own instance of p.
func (s *System) Attach(t *vm.Target, p *Program) {
	if t == nil || p == nil || !t.Alive() {
		return
	}
	s.scripts[t.ID()] = p.instance(nil, s.buildEngine(t))
}

// Len is the number of targets with a script.
func (s *System) Len() int {
	return len(s.scripts)
}

// Start runs on_start for every scripted original sprite.
func (s *System) Start() {
	for _, t := range s.rt.Targets() {
		in, ok := s.scripts[t.ID()]
		if !ok || !t.IsOriginal() {
			continue
		}
		s.run(t, in, PhaseStart)
	}
}

// Update runs on_tick for every scripted target. A failing script is logged
// and the remaining targets still run.
func (s *System) Update(_ *ecs.World) {
	for _, t := range s.rt.Targets() {
		in, ok := s.scripts[t.ID()]
		if !ok || !t.Alive() {
			continue
		}
		s.run(t, in, PhaseTick)
	}
}

func (s *System) run(t *vm.Target, in *instance, phase string) {
	if err := in.run(phase); err != nil {
		s.logger.Error("script failed", "target", t.Name(), "script", in.program.Name, "phase", phase, "err", err)
	}
}

func (s *System) targetCreated(ev vm.TargetCreated) {
	if ev.Original == nil {
		return
	}
	parent, ok := s.scripts[ev.Original.ID()]
	if !ok {
		return
	}
	in := parent.program.instance(copyState(parent.state), s.buildEngine(ev.Target))
	s.scripts[ev.Target.ID()] = in
	s.run(ev.Target, in, PhaseClone)
}

func (s *System) projectLoaded() {
	p := s.rt.Project()
	if p == nil {
		return
	}
	// programs are compiled once per load
	s.programs = map[string]*Program{}
	for _, spec := range p.Sprites {
		if strings.TrimSpace(spec.Script) == "" {
			continue
		}
		t, ok := s.rt.TargetByName(spec.Name)
		if !ok {
			continue
		}
		prog, err := s.load(p, spec.Script)
		if err != nil {
			s.logger.Error("script not loaded", "target", spec.Name, "err", err)
			continue
		}
		s.Attach(t, prog)
	}
	s.Start()
}

func (s *System) load(p *project.Project, name string) (*Program, error) {
	if prog, ok := s.programs[name]; ok {
		return prog, nil
	}
	src, err := p.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", name, err)
	}
	prog, err := Compile(name, src)
	if err != nil {
		return nil, err
	}
	s.programs[name] = prog
	return prog, nil
}
