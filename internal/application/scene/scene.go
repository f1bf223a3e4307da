// Package scene owns every resource of a 3D scene, the object tree rooted at
// the scene node and the ordered render pass list.
//
// A Scene is single-threaded: Update, Render and every resource operation must
// run on the same goroutine.
package scene

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/scenecore/internal/domain/graph"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/material"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/domain/resource"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
	"github.com/younwookim/scenecore/internal/infrastructure/loader"
	"github.com/younwookim/scenecore/internal/infrastructure/logging"
	"github.com/younwookim/scenecore/internal/infrastructure/partition"
)

// Scene is the top-level owner of resources and render passes.
type Scene struct {
	alloc *handle.Allocator
	root  graph.Node

	meshes    *resource.Manager[object.Mesh]
	materials *resource.Manager[material.Material]
	textures  *resource.Manager[object.Texture]
	programs  *resource.Manager[object.Program]
	cameras   *resource.Manager[object.Camera]
	lights    *resource.Manager[object.Light]
	fonts     *resource.Manager[object.Font]
	texts     *resource.Manager[object.Text]
	overlays  *resource.Manager[object.Overlay]

	defaultMaterial handle.Handle
	activeCamera    handle.Handle
	clearColor      color.RGBA
	background      *Background

	passes         []RenderPass
	rendering      bool
	current        int
	onPassStarted  []func(PassEvent)
	onPassFinished []func(PassEvent)

	backend     gfx.Backend
	partitioner Partitioner
	window      Window
	ui          UI
	loaders     *loader.Registry
}

// New creates an empty scene with its root node and default material.
func New(opts ...Option) *Scene {
	s := &Scene{
		clearColor: color.RGBA{A: 255},
		current:    -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.alloc == nil {
		s.alloc = handle.NewAllocator()
	}

	s.root = graph.NewNode(s.alloc.Next(handle.KindScene))
	s.root.Name = "scene"

	s.meshes = resource.NewManager[object.Mesh](handle.KindMesh, s.alloc,
		resource.OnCreate[object.Mesh](func(h handle.Handle, m *object.Mesh) {
			m.Material = s.defaultMaterial
			s.attachToRoot(h)
			s.index(h)
		}))
	s.materials = resource.NewManager[material.Material](handle.KindMaterial, s.alloc)
	s.textures = resource.NewManager[object.Texture](handle.KindTexture, s.alloc)
	s.programs = resource.NewManager[object.Program](handle.KindProgram, s.alloc)
	s.cameras = resource.NewManager[object.Camera](handle.KindCamera, s.alloc,
		resource.OnCreate[object.Camera](func(h handle.Handle, _ *object.Camera) { s.attachToRoot(h) }))
	s.lights = resource.NewManager[object.Light](handle.KindLight, s.alloc,
		resource.OnCreate[object.Light](func(h handle.Handle, _ *object.Light) {
			s.attachToRoot(h)
			s.index(h)
		}))
	s.fonts = resource.NewManager[object.Font](handle.KindFont, s.alloc)
	s.texts = resource.NewManager[object.Text](handle.KindText, s.alloc,
		resource.OnCreate[object.Text](func(h handle.Handle, _ *object.Text) { s.attachToRoot(h) }))
	s.overlays = resource.NewManager[object.Overlay](handle.KindOverlay, s.alloc)

	s.background = newBackground(s)
	s.defaultMaterial = s.NewMaterial()
	mat, _ := s.materials.Get(s.defaultMaterial)
	mat.Name = "default"
	return s
}

func (s *Scene) attachToRoot(h handle.Handle) {
	// The root and a freshly created node always resolve.
	_ = graph.SetParent(s, h, s.root.Handle())
	logging.For("scene").Debug("resource created", logging.Handle(h))
}

// Root returns the handle of the scene root node.
func (s *Scene) Root() handle.Handle { return s.root.Handle() }

// Allocator returns the allocator the scene issues handles from.
func (s *Scene) Allocator() *handle.Allocator { return s.alloc }

// DefaultMaterial returns the material assigned to new meshes.
func (s *Scene) DefaultMaterial() handle.Handle { return s.defaultMaterial }

// ClearColor returns the color used when a viewport has a fully transparent
// background.
func (s *Scene) ClearColor() color.RGBA { return s.clearColor }

func (s *Scene) SetClearColor(c color.RGBA) { s.clearColor = c }

// Background returns the scrolling image layers drawn behind the scene tree.
func (s *Scene) Background() *Background { return s.background }

// Backend returns the graphics backend, or nil.
func (s *Scene) Backend() gfx.Backend { return s.backend }

// Window returns the pointer source, or nil.
func (s *Scene) Window() Window { return s.window }

// Node resolves any handle to its graph node. It implements graph.Resolver.
func (s *Scene) Node(h handle.Handle) (*graph.Node, error) {
	switch h.Kind {
	case handle.KindScene:
		if h != s.root.Handle() {
			return nil, fmt.Errorf("scene %s: %w", h, resource.ErrUnknownHandle)
		}
		return &s.root, nil
	case handle.KindMesh:
		return nodeOf(s.meshes, h, func(m *object.Mesh) *graph.Node { return &m.Node })
	case handle.KindMaterial:
		return nodeOf(s.materials, h, func(m *material.Material) *graph.Node { return &m.Node })
	case handle.KindTexture:
		return nodeOf(s.textures, h, func(t *object.Texture) *graph.Node { return &t.Node })
	case handle.KindProgram:
		return nodeOf(s.programs, h, func(p *object.Program) *graph.Node { return &p.Node })
	case handle.KindCamera:
		return nodeOf(s.cameras, h, func(c *object.Camera) *graph.Node { return &c.Node })
	case handle.KindLight:
		return nodeOf(s.lights, h, func(l *object.Light) *graph.Node { return &l.Node })
	case handle.KindFont:
		return nodeOf(s.fonts, h, func(f *object.Font) *graph.Node { return &f.Node })
	case handle.KindText:
		return nodeOf(s.texts, h, func(t *object.Text) *graph.Node { return &t.Node })
	case handle.KindOverlay:
		return nodeOf(s.overlays, h, func(o *object.Overlay) *graph.Node { return &o.Node })
	default:
		return nil, fmt.Errorf("%s: %w", h, resource.ErrUnknownHandle)
	}
}

func nodeOf[T any](m *resource.Manager[T], h handle.Handle, node func(*T) *graph.Node) (*graph.Node, error) {
	obj, err := m.Get(h)
	if err != nil {
		return nil, err
	}
	return node(obj), nil
}

// Contains reports whether h refers to a live resource or the root.
func (s *Scene) Contains(h handle.Handle) bool {
	_, err := s.Node(h)
	return err == nil
}

// Variant returns the traversal variant for h.
func (s *Scene) Variant(h handle.Handle) (object.Variant, error) {
	v := object.Variant{Kind: h.Kind}
	var err error
	switch h.Kind {
	case handle.KindMesh:
		v.Mesh, err = s.meshes.Get(h)
	case handle.KindCamera:
		v.Camera, err = s.cameras.Get(h)
	case handle.KindLight:
		v.Light, err = s.lights.Get(h)
	case handle.KindText:
		v.Text, err = s.texts.Get(h)
	case handle.KindOverlay:
		v.Overlay, err = s.overlays.Get(h)
	default:
		return v, fmt.Errorf("%s: %w", h, ErrNotTraversable)
	}
	return v, err
}

// Traverse visits the subtree under root depth-first, parents before
// children. The scene root and non-traversable kinds are passed over but
// their children are still visited. The first visitor error stops the walk.
func (s *Scene) Traverse(root handle.Handle, vis object.Visitor) error {
	var visitErr error
	err := graph.Walk(s, root, func(n *graph.Node) bool {
		if visitErr != nil {
			return false
		}
		v, err := s.Variant(n.Handle())
		if err != nil {
			return true
		}
		visitErr = v.Accept(vis)
		return visitErr == nil
	})
	if err != nil {
		return err
	}
	return visitErr
}

// SetParent moves child under parent; handle.None detaches. The scene root
// cannot be parented.
func (s *Scene) SetParent(child, parent handle.Handle) error {
	if child == s.root.Handle() {
		return fmt.Errorf("set parent of %s: %w", child, ErrRootNode)
	}
	if err := graph.SetParent(s, child, parent); err != nil {
		return err
	}
	s.reindexSubtree(child)
	return nil
}

// DestroyChildren deletes every descendant of h depth-first. h itself stays.
func (s *Scene) DestroyChildren(h handle.Handle) error {
	n, err := s.Node(h)
	if err != nil {
		return err
	}
	for _, c := range n.Children() {
		if err := s.DestroyChildren(c); err != nil {
			return err
		}
		if err := graph.SetParent(s, c, handle.None); err != nil {
			return err
		}
		if err := s.release(c); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes h and its whole subtree. The root cannot be deleted.
func (s *Scene) Delete(h handle.Handle) error {
	switch h.Kind {
	case handle.KindScene:
		return fmt.Errorf("delete %s: %w", h, ErrRootNode)
	case handle.KindMesh, handle.KindMaterial, handle.KindTexture, handle.KindProgram,
		handle.KindCamera, handle.KindLight, handle.KindFont, handle.KindText, handle.KindOverlay:
		return s.remove(h)
	default:
		return fmt.Errorf("delete %s: %w", h, resource.ErrUnknownHandle)
	}
}

func (s *Scene) remove(h handle.Handle) error {
	n, err := s.Node(h)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := s.DestroyChildren(h); err != nil {
		return err
	}
	if n.HasParent() {
		if err := graph.SetParent(s, h, handle.None); err != nil {
			return err
		}
	}
	return s.release(h)
}

// release runs per-kind cleanup and drops h from its manager. h must be
// detached and childless.
func (s *Scene) release(h handle.Handle) error {
	var err error
	switch h.Kind {
	case handle.KindMesh:
		s.unindex(h)
		err = s.meshes.Delete(h)
	case handle.KindMaterial:
		if h == s.defaultMaterial {
			s.defaultMaterial = handle.None
		}
		err = s.materials.Delete(h)
	case handle.KindTexture:
		err = s.textures.Delete(h)
	case handle.KindProgram:
		err = s.programs.Delete(h)
	case handle.KindCamera:
		if h == s.activeCamera {
			s.activeCamera = handle.None
		}
		err = s.cameras.Delete(h)
	case handle.KindLight:
		s.unindex(h)
		err = s.lights.Delete(h)
	case handle.KindFont:
		err = s.fonts.Delete(h)
	case handle.KindText:
		err = s.texts.Delete(h)
	case handle.KindOverlay:
		err = s.overlays.Delete(h)
	default:
		return fmt.Errorf("release %s: %w", h, ErrRootNode)
	}
	if err == nil {
		logging.For("scene").Debug("resource deleted", logging.Handle(h))
	}
	return err
}

// Update advances per-frame state: animated texture units, background
// scrolling, then the UI.
func (s *Scene) Update(dt float64) error {
	s.materials.Each(func(_ handle.Handle, m *material.Material) {
		m.Update(dt)
	})
	s.background.Update(dt)
	if s.ui != nil {
		if err := s.ui.Update(dt); err != nil {
			return fmt.Errorf("ui update: %w", err)
		}
	}
	return nil
}

// Stats counts live resources per kind.
type Stats struct {
	Meshes, Materials, Textures, Programs int
	Cameras, Lights, Fonts, Texts         int
	Overlays, Passes                      int
	HandlesIssued                         uint64
}

// Stats returns live resource counts.
func (s *Scene) Stats() Stats {
	return Stats{
		Meshes:        s.meshes.Len(),
		Materials:     s.materials.Len(),
		Textures:      s.textures.Len(),
		Programs:      s.programs.Len(),
		Cameras:       s.cameras.Len(),
		Lights:        s.lights.Len(),
		Fonts:         s.fonts.Len(),
		Texts:         s.texts.Len(),
		Overlays:      s.overlays.Len(),
		Passes:        len(s.passes),
		HandlesIssued: s.alloc.Issued(),
	}
}

// index adds a mesh or light to the partitioner under its world bounds.
func (s *Scene) index(h handle.Handle) {
	if s.partitioner == nil {
		return
	}
	box, err := s.WorldBounds(h)
	if err != nil {
		return
	}
	s.partitioner.Add(h, box)
}

func (s *Scene) unindex(h handle.Handle) {
	if s.partitioner != nil {
		s.partitioner.Remove(h)
	}
}

// Reindex refreshes the partitioner entries of h and its descendants. Call it
// after moving a node or changing mesh geometry.
func (s *Scene) Reindex(h handle.Handle) error {
	if !s.Contains(h) {
		return fmt.Errorf("reindex %s: %w", h, resource.ErrUnknownHandle)
	}
	s.reindexSubtree(h)
	return nil
}

func (s *Scene) reindexSubtree(h handle.Handle) {
	if s.partitioner == nil {
		return
	}
	_ = graph.Walk(s, h, func(n *graph.Node) bool {
		switch n.Handle().Kind {
		case handle.KindMesh, handle.KindLight:
			s.index(n.Handle())
		}
		return true
	})
}

// WorldBounds returns the world-space box of a mesh or light. Lights use their
// range around the world position.
func (s *Scene) WorldBounds(h handle.Handle) (partition.Box, error) {
	switch h.Kind {
	case handle.KindMesh:
		m, err := s.meshes.Get(h)
		if err != nil {
			return partition.Box{}, err
		}
		world, err := m.WorldTransform(s)
		if err != nil {
			return partition.Box{}, err
		}
		verts, err := s.MeshVertices(h)
		if err != nil {
			return partition.Box{}, err
		}
		lo, hi := verts.Bounds()
		return transformBox(world, lo, hi), nil
	case handle.KindLight:
		l, err := s.lights.Get(h)
		if err != nil {
			return partition.Box{}, err
		}
		p, err := l.WorldPosition(s)
		if err != nil {
			return partition.Box{}, err
		}
		return partition.BoxAround(p, l.Range), nil
	default:
		return partition.Box{}, fmt.Errorf("bounds of %s: %w", h, ErrNotTraversable)
	}
}

func transformBox(m mgl32.Mat4, lo, hi mgl32.Vec3) partition.Box {
	var out partition.Box
	for i := 0; i < 8; i++ {
		c := mgl32.Vec3{lo[0], lo[1], lo[2]}
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		w := mgl32.TransformCoordinate(c, m)
		if i == 0 {
			out.Min, out.Max = w, w
			continue
		}
		for k := 0; k < 3; k++ {
			out.Min[k] = min(out.Min[k], w[k])
			out.Max[k] = max(out.Max[k], w[k])
		}
	}
	return out
}

// Overlays returns the overlay handles in draw order: ascending ZIndex, then
// creation order.
func (s *Scene) Overlays() []handle.Handle {
	hs := s.overlays.Handles()
	slices.SortStableFunc(hs, func(a, b handle.Handle) int {
		oa, _ := s.overlays.Get(a)
		ob, _ := s.overlays.Get(b)
		return oa.ZIndex - ob.ZIndex
	})
	return hs
}
