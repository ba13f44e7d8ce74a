package component

// Identity names a target and records where it came from.
type Identity struct {
	Name string
	// Original is false for clones.
	Original bool
	// Stage marks the single stage target.
	Stage bool
	// Parent is the original a clone was made from.
	Parent uint64
}

var IdentityComponent = NewComponent[Identity]()
