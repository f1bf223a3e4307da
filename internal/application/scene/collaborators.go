package scene

import (
	"image/color"

	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
	"github.com/younwookim/scenecore/internal/infrastructure/loader"
	"github.com/younwookim/scenecore/internal/infrastructure/partition"
)

// Partitioner is kept in sync with every mesh and light in the scene.
type Partitioner interface {
	Add(h handle.Handle, b partition.Box)
	Remove(h handle.Handle) bool
}

// Window reports the pointer position in window coordinates, origin at the
// top-left.
type Window interface {
	CursorPosition() (x, y int)
}

// UI is advanced once per frame after scene resources.
type UI interface {
	Update(dt float64) error
}

// Option configures a Scene at construction.
type Option func(*Scene)

// WithBackend sets the graphics backend used by Render.
func WithBackend(b gfx.Backend) Option {
	return func(s *Scene) { s.backend = b }
}

// WithPartitioner sets the spatial partitioner.
func WithPartitioner(p Partitioner) Option {
	return func(s *Scene) { s.partitioner = p }
}

// WithWindow sets the pointer source.
func WithWindow(w Window) Option {
	return func(s *Scene) { s.window = w }
}

// WithLoaders sets the registry used by the *FromFile constructors.
func WithLoaders(r *loader.Registry) Option {
	return func(s *Scene) { s.loaders = r }
}

// WithUI sets the UI collaborator.
func WithUI(ui UI) Option {
	return func(s *Scene) { s.ui = ui }
}

// WithClearColor sets the color used when a viewport has a fully transparent
// background.
func WithClearColor(c color.RGBA) Option {
	return func(s *Scene) { s.clearColor = c }
}

// WithAllocator makes the scene draw handles from a shared allocator.
func WithAllocator(a *handle.Allocator) Option {
	return func(s *Scene) { s.alloc = a }
}
