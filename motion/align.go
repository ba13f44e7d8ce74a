package motion

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/stagekit/blocks"
	"github.com/milk9111/stagekit/vm"
)

var alignMenu = []blocks.MenuItem{
	{Text: "center", Value: "center"},
	{Text: "right edge", Value: "right"},
	{Text: "left edge", Value: "left"},
	{Text: "top edge", Value: "top"},
	{Text: "bottom edge", Value: "bottom"},
	{Text: "top right corner", Value: "rightTop"},
	{Text: "bottom right corner", Value: "rightBottom"},
	{Text: "top left corner", Value: "leftTop"},
	{Text: "bottom left corner", Value: "leftBottom"},
}

// alignPoint returns the stage point named by an AlignMenu value.
func alignPoint(align string, stage cp.Vector) (cp.Vector, bool) {
	hw, hh := stage.X/2, stage.Y/2
	switch align {
	case "center":
		return cp.Vector{}, true
	case "right":
		return cp.Vector{X: hw}, true
	case "left":
		return cp.Vector{X: -hw}, true
	case "top":
		return cp.Vector{Y: hh}, true
	case "bottom":
		return cp.Vector{Y: -hh}, true
	case "rightTop":
		return cp.Vector{X: hw, Y: hh}, true
	case "rightBottom":
		return cp.Vector{X: hw, Y: -hh}, true
	case "leftTop":
		return cp.Vector{X: -hw, Y: hh}, true
	case "leftBottom":
		return cp.Vector{X: -hw, Y: -hh}, true
	}
	return cp.Vector{}, false
}

// setXY moves the sprite's rotation centre to a stage point and then by the
// given offset. An unknown alignment only applies the offset.
func (e *Extension) setXY(args blocks.Args, t *vm.Target) (any, error) {
	dx, dy := args.Number("AX"), args.Number("AY")
	w, h := e.rt.StageSize()
	if p, ok := alignPoint(args.String("ALIGN"), cp.Vector{X: w, Y: h}); ok {
		t.SetXY(p.X, p.Y)
	}
	t.SetXY(t.X()+dx, t.Y()+dy)
	return nil, nil
}
