package component

const (
	RotationAllAround  = "all around"
	RotationLeftRight  = "left-right"
	RotationDontRotate = "don't rotate"
)

// Look holds the rendering flags of a sprite.
type Look struct {
	Visible       bool
	RotationStyle string
}

var LookComponent = NewComponent[Look]()
