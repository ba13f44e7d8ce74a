package gui

import (
	"math"
	"strings"

	"github.com/milk9111/stagekit/ecs/component"
)

// Bias says which side of an edge a sprite sits on.
type Bias int

const (
	In Bias = iota
	Center
	Out
)

var biasNames = [...]string{In: "in", Center: "center", Out: "out"}

func (b Bias) String() string {
	if b < 0 || int(b) >= len(biasNames) {
		return biasNames[In]
	}
	return biasNames[b]
}

// ParseBias reads an inCenterOut menu value. Unknown values mean In.
func ParseBias(s string) Bias {
	for i, name := range biasNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Bias(i)
		}
	}
	return In
}

// StageArea is the stage as a frame, scaled by 1/zoom.
func StageArea(width, height, zoom float64) Frame {
	return Frame{
		X:      -width / 2 / zoom,
		Y:      -height / 2 / zoom,
		Width:  width / zoom,
		Height: height / zoom,
	}
}

// SpriteX returns the x a sprite of half width halfW takes when placed at
// anchor (left, right or center) of area.
func SpriteX(area Frame, anchor string, bias Bias, margin, halfW float64) (float64, bool) {
	switch anchor {
	case "left":
		return edge(area.X, -1, bias, halfW) + margin, true
	case "right":
		return edge(area.X+area.Width, 1, bias, halfW) + margin, true
	case "center":
		return area.X + area.Width/2 + margin, true
	}
	return 0, false
}

// SpriteY mirrors SpriteX for bottom, top and center.
func SpriteY(area Frame, anchor string, bias Bias, margin, halfH float64) (float64, bool) {
	switch anchor {
	case "bottom":
		return edge(area.Y, -1, bias, halfH) + margin, true
	case "top":
		return edge(area.Y+area.Height, 1, bias, halfH) + margin, true
	case "center":
		return area.Y + area.Height/2 + margin, true
	}
	return 0, false
}

// edge offsets a coordinate on an edge whose outward side is outward
// (-1 for left/bottom, 1 for right/top).
func edge(at, outward float64, bias Bias, half float64) float64 {
	switch bias {
	case Center:
		return at
	case Out:
		return at + outward*half
	}
	return at - outward*half
}

// FrameX places a frame of the given width against a stage edge.
func FrameX(width, stageWidth, zoom float64, anchor string, margin float64) (float64, bool) {
	switch anchor {
	case "left":
		return -stageWidth/2/zoom + margin, true
	case "right":
		return stageWidth/2/zoom - width + margin, true
	case "center":
		return -width/2 + margin, true
	}
	return 0, false
}

// FrameY places a frame of the given height against a stage edge.
func FrameY(height, stageHeight, zoom float64, anchor string, margin float64) (float64, bool) {
	switch anchor {
	case "bottom":
		return -stageHeight/2/zoom + margin, true
	case "top":
		return stageHeight/2/zoom - height + margin, true
	case "center":
		return -height/2 + margin, true
	}
	return 0, false
}

// HalfExtent is half of a costume's rounded-up size at the sprite's display
// size in percent.
func HalfExtent(c component.Costume, size float64) (float64, float64) {
	scale := size / 100
	return math.Ceil(c.Width) / 2 * scale, math.Ceil(c.Height) / 2 * scale
}
