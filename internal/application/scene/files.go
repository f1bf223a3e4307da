package scene

import (
	"fmt"

	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/object"
)

// NewTextureFromFile decodes an image through the loader registry. hint
// overrides the file extension when non-empty.
func (s *Scene) NewTextureFromFile(name, hint string) (handle.Handle, error) {
	if s.loaders == nil {
		return handle.None, ErrNoLoaders
	}
	img, err := s.loaders.LoadImage(name, hint)
	if err != nil {
		return handle.None, fmt.Errorf("texture: %w", err)
	}
	h := s.NewTexture(img)
	t, _ := s.textures.Get(h)
	t.Source = name
	t.Name = name
	return h, nil
}

// NewMeshFromFile decodes geometry through the loader registry and creates a
// mesh under the root.
func (s *Scene) NewMeshFromFile(name, hint string) (handle.Handle, error) {
	if s.loaders == nil {
		return handle.None, ErrNoLoaders
	}
	data, err := s.loaders.LoadMesh(name, hint)
	if err != nil {
		return handle.None, fmt.Errorf("mesh: %w", err)
	}
	h := s.meshes.Create(func(h handle.Handle) *object.Mesh {
		m := object.NewMesh(h)
		m.Name = name
		m.SetVertices(data.Vertices, data.Indices, data.Arrangement)
		return m
	})
	return h, nil
}

// NewFontFromFile parses a font through the loader registry.
func (s *Scene) NewFontFromFile(name, hint string, size float64) (handle.Handle, error) {
	if s.loaders == nil {
		return handle.None, ErrNoLoaders
	}
	src, err := s.loaders.LoadFont(name, hint)
	if err != nil {
		return handle.None, fmt.Errorf("font: %w", err)
	}
	h := s.NewFont(src, size)
	f, _ := s.fonts.Get(h)
	f.Path = name
	f.Name = name
	return h, nil
}
