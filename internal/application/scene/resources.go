package scene

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/material"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/domain/resource"
)

func deleteFrom[T any](s *Scene, m *resource.Manager[T], h handle.Handle) error {
	if !m.Contains(h) {
		return fmt.Errorf("delete %s %s: %w", m.Kind(), h, resource.ErrUnknownHandle)
	}
	return s.remove(h)
}

// NewMesh creates an empty mesh under the root with the default material.
func (s *Scene) NewMesh() handle.Handle {
	return s.meshes.Create(object.NewMesh)
}

func (s *Scene) HasMesh(h handle.Handle) bool { return s.meshes.Contains(h) }

func (s *Scene) Mesh(h handle.Handle) (*object.Mesh, error) { return s.meshes.Get(h) }

// DeleteMesh deletes the mesh and its subtree.
func (s *Scene) DeleteMesh(h handle.Handle) error { return deleteFrom(s, s.meshes, h) }

// Meshes returns live mesh handles in creation order.
func (s *Scene) Meshes() []handle.Handle { return s.meshes.Handles() }

// MeshHandleOf returns the handle owning m.
func (s *Scene) MeshHandleOf(m *object.Mesh) (handle.Handle, error) {
	return s.meshes.HandleOf(m)
}

// ShareParentVertices makes the mesh draw against its parent mesh's vertices.
func (s *Scene) ShareParentVertices(h handle.Handle) error {
	m, err := s.meshes.Get(h)
	if err != nil {
		return err
	}
	parent, err := m.ParentHandle()
	if err != nil || parent.Kind != handle.KindMesh {
		return fmt.Errorf("mesh %s: %w", h, ErrNotChildMesh)
	}
	m.SharesParentVertices = true
	s.reindexSubtree(h)
	return nil
}

// MeshVertices returns the vertex data a mesh draws with, following vertex
// sharing up to the owning ancestor.
func (s *Scene) MeshVertices(h handle.Handle) (*object.VertexData, error) {
	m, err := s.meshes.Get(h)
	if err != nil {
		return nil, err
	}
	for m.SharesParentVertices {
		parent, err := m.ParentHandle()
		if err != nil || parent.Kind != handle.KindMesh {
			return nil, fmt.Errorf("mesh %s: %w", h, ErrNotChildMesh)
		}
		if m, err = s.meshes.Get(parent); err != nil {
			return nil, err
		}
	}
	return &m.Vertices, nil
}

// NewMaterial creates a material with the default technique.
func (s *Scene) NewMaterial() handle.Handle {
	return s.materials.Create(material.New)
}

func (s *Scene) HasMaterial(h handle.Handle) bool { return s.materials.Contains(h) }

func (s *Scene) Material(h handle.Handle) (*material.Material, error) { return s.materials.Get(h) }

func (s *Scene) DeleteMaterial(h handle.Handle) error { return deleteFrom(s, s.materials, h) }

// CloneMaterial creates a new material copying the default technique of h.
func (s *Scene) CloneMaterial(h handle.Handle) (handle.Handle, error) {
	src, err := s.materials.Get(h)
	if err != nil {
		return handle.None, err
	}
	var cloneErr error
	c := s.materials.Create(func(nh handle.Handle) *material.Material {
		m, err := src.Clone(nh)
		if err != nil {
			cloneErr = err
			return material.New(nh)
		}
		return m
	})
	if cloneErr != nil {
		_ = s.materials.Delete(c)
		return handle.None, cloneErr
	}
	return c, nil
}

// NewTexture creates a texture holding img.
func (s *Scene) NewTexture(img image.Image) handle.Handle {
	return s.textures.Create(func(h handle.Handle) *object.Texture {
		t := object.NewTexture(h)
		t.Image = img
		return t
	})
}

func (s *Scene) HasTexture(h handle.Handle) bool { return s.textures.Contains(h) }

func (s *Scene) Texture(h handle.Handle) (*object.Texture, error) { return s.textures.Get(h) }

func (s *Scene) DeleteTexture(h handle.Handle) error { return deleteFrom(s, s.textures, h) }

// NewProgram registers a shader program. Sources are handed to the backend
// unchanged.
func (s *Scene) NewProgram(name, vertex, fragment string) handle.Handle {
	return s.programs.Create(func(h handle.Handle) *object.Program {
		p := object.NewProgram(h)
		p.Name = name
		p.VertexSource = vertex
		p.FragmentSource = fragment
		return p
	})
}

func (s *Scene) HasProgram(h handle.Handle) bool { return s.programs.Contains(h) }

func (s *Scene) Program(h handle.Handle) (*object.Program, error) { return s.programs.Get(h) }

func (s *Scene) DeleteProgram(h handle.Handle) error { return deleteFrom(s, s.programs, h) }

// NewCamera creates a camera under the root. The first camera becomes active.
func (s *Scene) NewCamera() handle.Handle {
	h := s.cameras.Create(object.NewCamera)
	if s.activeCamera.IsNone() {
		s.activeCamera = h
	}
	return h
}

func (s *Scene) HasCamera(h handle.Handle) bool { return s.cameras.Contains(h) }

func (s *Scene) Camera(h handle.Handle) (*object.Camera, error) { return s.cameras.Get(h) }

func (s *Scene) DeleteCamera(h handle.Handle) error { return deleteFrom(s, s.cameras, h) }

// SetActiveCamera selects the camera renderers view the scene through.
func (s *Scene) SetActiveCamera(h handle.Handle) error {
	if !s.cameras.Contains(h) {
		return fmt.Errorf("active camera %s: %w", h, resource.ErrUnknownHandle)
	}
	s.activeCamera = h
	return nil
}

// ActiveCamera returns the active camera.
func (s *Scene) ActiveCamera() (*object.Camera, error) {
	if s.activeCamera.IsNone() {
		return nil, ErrNoCamera
	}
	return s.cameras.Get(s.activeCamera)
}

// NewLight creates a light of type t under the root.
func (s *Scene) NewLight(t object.LightType) handle.Handle {
	return s.lights.Create(func(h handle.Handle) *object.Light {
		l := object.NewLight(h)
		l.Type = t
		return l
	})
}

func (s *Scene) HasLight(h handle.Handle) bool { return s.lights.Contains(h) }

func (s *Scene) Light(h handle.Handle) (*object.Light, error) { return s.lights.Get(h) }

func (s *Scene) DeleteLight(h handle.Handle) error { return deleteFrom(s, s.lights, h) }

// Lights returns live light handles in creation order.
func (s *Scene) Lights() []handle.Handle { return s.lights.Handles() }

// NewFont creates a font from a parsed face source.
func (s *Scene) NewFont(src *text.GoTextFaceSource, size float64) handle.Handle {
	return s.fonts.Create(func(h handle.Handle) *object.Font {
		f := object.NewFont(h)
		f.Source = src
		if size > 0 {
			f.Size = size
		}
		return f
	})
}

func (s *Scene) HasFont(h handle.Handle) bool { return s.fonts.Contains(h) }

func (s *Scene) Font(h handle.Handle) (*object.Font, error) { return s.fonts.Get(h) }

func (s *Scene) DeleteFont(h handle.Handle) error { return deleteFrom(s, s.fonts, h) }

// NewText creates a text node under the root.
func (s *Scene) NewText(content string, font handle.Handle) handle.Handle {
	return s.texts.Create(func(h handle.Handle) *object.Text {
		t := object.NewText(h)
		t.Content = content
		t.Font = font
		return t
	})
}

func (s *Scene) HasText(h handle.Handle) bool { return s.texts.Contains(h) }

func (s *Scene) Text(h handle.Handle) (*object.Text, error) { return s.texts.Get(h) }

func (s *Scene) DeleteText(h handle.Handle) error { return deleteFrom(s, s.texts, h) }

// NewOverlay creates a parentless 2D layer root.
func (s *Scene) NewOverlay(zIndex int) handle.Handle {
	return s.overlays.Create(func(h handle.Handle) *object.Overlay {
		o := object.NewOverlay(h)
		o.ZIndex = zIndex
		return o
	})
}

func (s *Scene) HasOverlay(h handle.Handle) bool { return s.overlays.Contains(h) }

func (s *Scene) Overlay(h handle.Handle) (*object.Overlay, error) { return s.overlays.Get(h) }

// DeleteOverlay deletes the overlay and everything parented under it.
func (s *Scene) DeleteOverlay(h handle.Handle) error { return deleteFrom(s, s.overlays, h) }
