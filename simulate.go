package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/stagekit/motion"
)

var flagTicks int

var simulateCmd = &cobra.Command{
	Use:   "simulate [project.yaml]",
	Short: "Step a project without a window and print the final state",
	Long: `Load a project, run its scripts for the given number of steps and print
every target, its anchor settings and the GUI frames as YAML.

Examples:
  stagekit simulate
  stagekit simulate --ticks 300 ./games/menu/project.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagTicks, "ticks", 60, "Number of steps to run")
}

type simulation struct {
	Project string        `yaml:"project"`
	Frame   int           `yaml:"frame"`
	Stage   stageState    `yaml:"stage"`
	Targets []targetState `yaml:"targets"`
	Frames  []frameState  `yaml:"frames"`
	Alerts  []string      `yaml:"alerts,omitempty"`
}

type stageState struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type targetState struct {
	Name      string       `yaml:"name"`
	Clone     bool         `yaml:"clone,omitempty"`
	X         float64      `yaml:"x"`
	Y         float64      `yaml:"y"`
	Direction float64      `yaml:"direction"`
	Size      float64      `yaml:"size"`
	Costume   int          `yaml:"costume"`
	Anchor    *anchorState `yaml:"anchor,omitempty"`
}

type anchorState struct {
	Position    string  `yaml:"position"`
	OffsetX     float64 `yaml:"offset_x"`
	OffsetY     float64 `yaml:"offset_y"`
	EveryFrame  bool    `yaml:"every_frame"`
	OnBlockCall bool    `yaml:"on_block_call"`
	Resolution  float64 `yaml:"resolution"`
	Retreat     bool    `yaml:"retreat"`
}

type frameState struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if flagTicks < 0 {
		return fmt.Errorf("--ticks must not be negative, got %d", flagTicks)
	}
	s, err := newSession(logger, flagPackaged, nil)
	if err != nil {
		return err
	}
	if err := s.load(projectArg(args)); err != nil {
		return err
	}
	for i := 0; i < flagTicks; i++ {
		s.rt.Step()
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(s.snapshot())
}

func (s *session) snapshot() simulation {
	w, h := s.rt.StageSize()
	out := simulation{
		Frame:  s.rt.Frame(),
		Stage:  stageState{Width: w, Height: h},
		Alerts: s.rt.Alerts(),
	}
	if p := s.rt.Project(); p != nil {
		out.Project = p.Name
	}

	for _, t := range s.rt.Targets() {
		if t.IsStage() {
			continue
		}
		ts := targetState{
			Name:      t.Name(),
			Clone:     !t.IsOriginal(),
			X:         t.X(),
			Y:         t.Y(),
			Direction: t.Direction(),
			Size:      t.Size(),
			Costume:   t.CurrentCostume() + 1,
		}
		if c, ok := s.motion.Store().Get(t.ID()); ok && c.Position != motion.None {
			ts.Anchor = &anchorState{
				Position:    c.Position.String(),
				OffsetX:     c.OffsetX,
				OffsetY:     c.OffsetY,
				EveryFrame:  c.UpdateEveryFrame,
				OnBlockCall: c.UpdateOnBlockCall,
				Resolution:  c.Resolution,
				Retreat:     c.Retreat,
			}
		}
		out.Targets = append(out.Targets, ts)
	}

	for _, name := range s.gui.Frames().Names() {
		f, _ := s.gui.Frames().Get(name)
		out.Frames = append(out.Frames, frameState{Name: name, X: f.X, Y: f.Y, Width: f.Width, Height: f.Height})
	}
	return out
}
