// Package motion implements the "More Motion" extension: per-sprite anchors
// that pin a sprite to a stage edge or corner and keep it there.
package motion

import "strings"

// Position names the stage edge or corner a sprite is anchored to.
type Position int

const (
	None Position = iota
	TopLeft
	TopCenter
	TopRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

var positionNames = [...]string{
	None:         "none",
	TopLeft:      "top left",
	TopCenter:    "top center",
	TopRight:     "top right",
	MiddleLeft:   "middle left",
	MiddleCenter: "middle center",
	MiddleRight:  "middle right",
	BottomLeft:   "bottom left",
	BottomCenter: "bottom center",
	BottomRight:  "bottom right",
}

// Positions lists the menu order: the nine anchors, then none.
var Positions = []Position{
	TopLeft, TopCenter, TopRight,
	MiddleLeft, MiddleCenter, MiddleRight,
	BottomLeft, BottomCenter, BottomRight,
	None,
}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return positionNames[None]
	}
	return positionNames[p]
}

// ParsePosition accepts "top left", "top-left", "TOP_LEFT" and so on.
func ParsePosition(s string) (Position, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")
	for p, name := range positionNames {
		if name == norm {
			return Position(p), true
		}
	}
	return None, false
}

// Config is the anchor state of one sprite or clone.
type Config struct {
	Position Position
	OffsetX  float64
	OffsetY  float64
	// UpdateOnBlockCall re-anchors as soon as the position block runs.
	UpdateOnBlockCall bool
	// UpdateEveryFrame re-anchors before every execution step.
	UpdateEveryFrame bool
	// Resolution divides the nudge step; 2 means half-unit steps.
	Resolution float64
	// Retreat backs off one step after each nudge pass.
	Retreat bool
}

func DefaultConfig() Config {
	return Config{
		Position:         None,
		UpdateEveryFrame: true,
		Resolution:       1,
		Retreat:          true,
	}
}
