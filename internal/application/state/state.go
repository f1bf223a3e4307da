package state

// PickState is the phase of a picking pass within one frame.
type PickState int

const (
	// PickReset: lookup cleared, counter at zero, target cleared to the
	// background sentinel.
	PickReset PickState = iota
	// PickAccumulating: meshes are being assigned colors and drawn.
	PickAccumulating
	// PickResolved: the pixel under the cursor has been read and looked up.
	PickResolved
)

// String returns the string representation of the pick state
func (s PickState) String() string {
	switch s {
	case PickReset:
		return "Reset"
	case PickAccumulating:
		return "Accumulating"
	case PickResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// CanTransition reports whether moving from s to next is legal. A frame
// always runs Reset, Accumulating, Resolved and may start over from any
// state.
func (s PickState) CanTransition(next PickState) bool {
	switch next {
	case PickReset:
		return true
	case PickAccumulating:
		return s == PickReset || s == PickAccumulating
	case PickResolved:
		return s == PickAccumulating || s == PickReset
	default:
		return false
	}
}
