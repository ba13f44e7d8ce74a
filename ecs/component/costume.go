package component

// Costume is one entry of a sprite's costume list. Width and Height are the
// logical bitmap size; the rotation centre is measured from the top-left
// corner in costume pixels.
type Costume struct {
	Name            string
	Width           float64
	Height          float64
	RotationCenterX float64
	RotationCenterY float64
	// Format is the decoded asset format ("png", "svg", ...). Data holds the
	// raw asset bytes and is dropped by packaged runtimes after loading.
	Format string
	Data   []byte
}

// Costumes is the costume list plus the selected index. Clones share the
// list slice with their original; it is never mutated in place.
type Costumes struct {
	List    []Costume
	Current int
}

// Selected returns the current costume.
func (c *Costumes) Selected() (Costume, bool) {
	if c == nil || c.Current < 0 || c.Current >= len(c.List) {
		return Costume{}, false
	}
	return c.List[c.Current], true
}

var CostumesComponent = NewComponent[Costumes]()
