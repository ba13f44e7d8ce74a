package main

import (
	"github.com/charmbracelet/log"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/gui"
	"github.com/milk9111/stagekit/motion"
	"github.com/milk9111/stagekit/project"
	"github.com/milk9111/stagekit/script"
	"github.com/milk9111/stagekit/vm"
)

// session is one runtime with both extensions and the script system wired
// in.
type session struct {
	rt       *vm.Runtime
	registry *blocks.Registry
	motion   *motion.Extension
	gui      *gui.Extension
	scripts  *script.System
	packaged bool
	filename string
}

func newSession(logger *log.Logger, packaged bool, alerts func(string)) (*session, error) {
	rt := vm.New(
		vm.WithLogger(logger),
		vm.WithPackaged(packaged),
		vm.WithAlertSink(alerts),
	)
	registry := blocks.NewRegistry(logger)
	mm := motion.New(rt, logger)
	gp := gui.New(rt, logger)
	for _, ext := range []blocks.Extension{mm, gp} {
		if err := registry.Register(ext); err != nil {
			return nil, err
		}
	}
	return &session{
		rt:       rt,
		registry: registry,
		motion:   mm,
		gui:      gp,
		scripts:  script.NewSystem(rt, registry, logger),
		packaged: packaged,
	}, nil
}

// load replaces the running project with filename, or the demo when
// filename is empty.
func (s *session) load(filename string) error {
	p, err := project.LoadOrDemo(filename)
	if err != nil {
		return err
	}
	if s.packaged {
		p.Packaged = true
	}
	if err := s.rt.LoadProject(p); err != nil {
		return err
	}
	s.filename = filename
	return nil
}

func (s *session) reload() error {
	return s.load(s.filename)
}
