package motion

import "github.com/jakecoffman/cp"

// Placement is where an anchored sprite starts before nudging, and which
// way each axis moves to pull it back inside the stage.
type Placement struct {
	Point     cp.Vector
	Direction cp.Vector
}

// Resolve maps an anchor to its coarse stage point. stage holds the stage
// width and height. None has no placement.
func Resolve(stage cp.Vector, p Position) (Placement, bool) {
	hw, hh := stage.X/2, stage.Y/2

	var col, row float64
	switch p {
	case TopLeft, MiddleLeft, BottomLeft:
		col = -1
	case TopRight, MiddleRight, BottomRight:
		col = 1
	case TopCenter, MiddleCenter, BottomCenter:
	default:
		return Placement{}, false
	}
	switch p {
	case TopLeft, TopCenter, TopRight:
		row = 1
	case BottomLeft, BottomCenter, BottomRight:
		row = -1
	}

	return Placement{
		Point:     cp.Vector{X: col * hw, Y: row * hh},
		Direction: cp.Vector{X: -col, Y: -row},
	}, true
}
