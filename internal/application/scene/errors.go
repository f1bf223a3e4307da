package scene

import "errors"

var (
	// ErrNotChildMesh is returned when vertex sharing is requested for a mesh
	// whose parent is not a mesh.
	ErrNotChildMesh = errors.New("use of parent-vertex sharing on a non-child mesh")
	// ErrPassesLocked is returned when the pass list is changed during a frame.
	ErrPassesLocked = errors.New("render passes cannot change while rendering")
	// ErrRootNode is returned for operations the scene root does not allow.
	ErrRootNode = errors.New("operation not allowed on the scene root")
	// ErrNotTraversable is returned for kinds that are not part of traversal.
	ErrNotTraversable = errors.New("kind is not traversable")
	ErrNoBackend      = errors.New("scene has no graphics backend")
	ErrNoLoaders      = errors.New("scene has no loader registry")
	ErrNoCamera       = errors.New("scene has no active camera")
)
