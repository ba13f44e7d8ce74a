package component

// Transform is a target's stage placement. Stage coordinates are centred on
// the stage with y pointing up; Direction is in degrees where 90 faces right.
type Transform struct {
	X         float64
	Y         float64
	Size      float64 // percent
	Direction float64
}

var TransformComponent = NewComponent[Transform]()
