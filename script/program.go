// Package script runs per-sprite tengo scripts against the stage runtime.
//
// A script defines any of on_start, on_clone and on_tick, each taking
// (engine, state). engine exposes target helpers and every registered
// extension's blocks; state is a map private to the sprite (clones get a
// copy of their original's).
package script

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const (
	PhaseStart = "start"
	PhaseClone = "clone"
	PhaseTick  = "tick"
)

var hooks = []struct {
	phase string
	fn    string
}{
	{PhaseStart, "on_start"},
	{PhaseClone, "on_clone"},
	{PhaseTick, "on_tick"},
}

// modules are the stdlib modules scripts may import. os is left out so
// project scripts cannot touch the filesystem.
var modules = []string{"math", "text", "times", "rand", "fmt", "json", "base64", "hex", "enum"}

// Program is a compiled script. It is never run directly; every sprite
// runs its own clone of it.
type Program struct {
	Name     string
	template *tengo.Compiled
	defined  map[string]bool
}

// Compile checks which hooks src defines and compiles it with a dispatcher
// that calls the hook for the current phase.
func Compile(name string, src []byte) (*Program, error) {
	probe := tengo.NewScript(src)
	probe.SetImports(stdlib.GetModuleMap(modules...))
	compiled, err := probe.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("script: run %s: %w", name, err)
	}

	defined := map[string]bool{}
	var dispatch strings.Builder
	for _, h := range hooks {
		if !compiled.IsDefined(h.fn) {
			continue
		}
		defined[h.phase] = true
		fmt.Fprintf(&dispatch, "if __phase == %q {\n\t%s(__engine, __state)\n}\n", h.phase, h.fn)
	}

	full := make([]byte, 0, len(src)+dispatch.Len()+1)
	full = append(full, src...)
	full = append(full, '\n')
	full = append(full, dispatch.String()...)

	script := tengo.NewScript(full)
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(modules...))

	template, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Program{Name: name, template: template, defined: defined}, nil
}

// Defines reports whether the script has a hook for phase.
func (p *Program) Defines(phase string) bool {
	return p.defined[phase]
}

// instance is one sprite's copy of a program.
type instance struct {
	program  *Program
	compiled *tengo.Compiled
	state    *tengo.Map
	engine   *tengo.ImmutableMap
}

func (p *Program) instance(state *tengo.Map, engine *tengo.ImmutableMap) *instance {
	if state == nil {
		state = &tengo.Map{Value: map[string]tengo.Object{}}
	}
	return &instance{
		program:  p,
		compiled: p.template.Clone(),
		state:    state,
		engine:   engine,
	}
}

func (in *instance) run(phase string) error {
	if !in.program.Defines(phase) {
		return nil
	}
	if err := in.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := in.compiled.Set("__engine", in.engine); err != nil {
		return err
	}
	if err := in.compiled.Set("__state", in.state); err != nil {
		return err
	}
	return in.compiled.Run()
}

// copyState gives a clone its own copy of the original's state.
func copyState(m *tengo.Map) *tengo.Map {
	if m == nil {
		return nil
	}
	if c, ok := m.Copy().(*tengo.Map); ok {
		return c
	}
	return nil
}
