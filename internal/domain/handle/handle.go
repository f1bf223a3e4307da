// Package handle defines the opaque identifiers used to reference resources.
package handle

import (
	"fmt"
	"math"
)

// Kind tags the resource kind a handle refers to.
type Kind int

const (
	KindNone Kind = iota
	KindScene
	KindMesh
	KindMaterial
	KindTexture
	KindProgram
	KindCamera
	KindLight
	KindFont
	KindText
	KindOverlay
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindScene:
		return "Scene"
	case KindMesh:
		return "Mesh"
	case KindMaterial:
		return "Material"
	case KindTexture:
		return "Texture"
	case KindProgram:
		return "Program"
	case KindCamera:
		return "Camera"
	case KindLight:
		return "Light"
	case KindFont:
		return "Font"
	case KindText:
		return "Text"
	case KindOverlay:
		return "Overlay"
	default:
		return "Unknown"
	}
}

// Handle references a resource inside its owning manager.
// The zero value is the "no resource" sentinel.
type Handle struct {
	ID   uint64
	Kind Kind
}

// None is the reserved "no resource" handle.
var None = Handle{}

// IsNone reports whether h is the sentinel handle.
func (h Handle) IsNone() bool {
	return h.ID == 0
}

func (h Handle) String() string {
	if h.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s#%d", h.Kind, h.ID)
}

// Allocator issues handle IDs. IDs start at 1 (0 is "none") and are never recycled.
type Allocator struct {
	nextID uint64
}

// NewAllocator creates an allocator whose first ID is 1.
func NewAllocator() *Allocator {
	return &Allocator{nextID: 1}
}

// Next returns a new unique handle of the given kind.
// Running out of IDs is fatal.
func (a *Allocator) Next(kind Kind) Handle {
	if a.nextID == math.MaxUint64 {
		panic("handle: identifier space exhausted")
	}
	id := a.nextID
	a.nextID++
	return Handle{ID: id, Kind: kind}
}

// Issued returns the number of handles issued so far.
func (a *Allocator) Issued() uint64 {
	return a.nextID - 1
}
