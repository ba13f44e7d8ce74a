package motion

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stagekit/common"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Body is a movable sprite with rendered bounds. *vm.Target satisfies it.
type Body interface {
	X() float64
	Y() float64
	SetXY(x, y float64)
	Bounds() (cp.BB, bool)
}

// Result reports how many steps each nudge pass took. Passes run in the
// order x forward, y forward, x reverse, y reverse.
type Result struct {
	Budget int
	Steps  [4]int
}

func (r Result) Total() int {
	return r.Steps[0] + r.Steps[1] + r.Steps[2] + r.Steps[3]
}

const maxBudget = math.MaxInt32

// Budget is the per-pass step ceiling for a sprite of the given extent.
func Budget(extent cp.Vector, resolution float64) int {
	b := math.Floor((math.Abs(extent.X) + math.Abs(extent.Y)) * normalizeResolution(resolution))
	if math.IsNaN(b) || b <= 0 {
		return 0
	}
	if b > maxBudget {
		return maxBudget
	}
	return int(b)
}

// TouchingEdge reports whether bounds cross the stage edge on axis. A body
// without bounds never touches.
func TouchingEdge(bounds cp.BB, ok bool, stage cp.Vector, axis Axis) bool {
	if !ok {
		return false
	}
	if axis == AxisX {
		return bounds.L < -stage.X/2 || bounds.R > stage.X/2
	}
	return bounds.T > stage.Y/2 || bounds.B < -stage.Y/2
}

// Nudge walks b from its coarse placement until its bounds sit against the
// stage edge. The forward passes step along dir while the body still crosses
// the edge; the reverse passes step against dir until it crosses again. Each
// pass is capped at Budget steps and, with retreat, undoes its last step.
// Axes whose dir component is zero are skipped.
func Nudge(b Body, stage, dir, extent cp.Vector, resolution float64, retreat bool) Result {
	resolution = normalizeResolution(resolution)
	res := Result{Budget: Budget(extent, resolution)}

	passes := [4]struct {
		axis     Axis
		sign     float64
		touching bool
	}{
		{AxisX, 1, true},
		{AxisY, 1, true},
		{AxisX, -1, false},
		{AxisY, -1, false},
	}

	for i, p := range passes {
		d := dir.X
		if p.axis == AxisY {
			d = dir.Y
		}
		if d == 0 {
			continue
		}
		step := p.sign * d / resolution

		for res.Steps[i] < res.Budget && touching(b, stage, p.axis) == p.touching {
			move(b, p.axis, step)
			res.Steps[i]++
		}
		if retreat {
			move(b, p.axis, -step)
		}
	}
	return res
}

func touching(b Body, stage cp.Vector, axis Axis) bool {
	bb, ok := b.Bounds()
	return TouchingEdge(bb, ok, stage, axis)
}

func move(b Body, axis Axis, delta float64) {
	if axis == AxisX {
		b.SetXY(b.X()+delta, b.Y())
		return
	}
	b.SetXY(b.X(), b.Y()+delta)
}

// normalizeResolution falls back to whole-unit steps for unusable values.
func normalizeResolution(r float64) float64 {
	if !common.Finite(r) || r <= 0 {
		return 1
	}
	return r
}
