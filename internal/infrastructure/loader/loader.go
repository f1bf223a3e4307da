// Package loader decodes resource files into in-memory data. Decoders are
// registered per file extension; a hint overrides the extension.
package loader

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/younwookim/scenecore/internal/domain/object"
)

// ErrNoLoader is returned when no decoder is registered for a file type.
var ErrNoLoader = errors.New("no loader for file type")

// MeshData is decoded geometry.
type MeshData struct {
	Vertices    object.VertexData
	Indices     []uint16
	Arrangement object.Arrangement
}

type (
	ImageDecoder func(io.Reader) (image.Image, error)
	MeshDecoder  func(io.Reader) (MeshData, error)
	FontDecoder  func(io.Reader) (*text.GoTextFaceSource, error)
)

// Registry maps extensions to decoders and reads files from an fs.FS.
type Registry struct {
	fsys   fs.FS
	images map[string]ImageDecoder
	meshes map[string]MeshDecoder
	fonts  map[string]FontDecoder
}

// NewRegistry creates a registry reading from fsys with the built-in decoders
// registered.
func NewRegistry(fsys fs.FS) *Registry {
	r := &Registry{
		fsys:   fsys,
		images: make(map[string]ImageDecoder),
		meshes: make(map[string]MeshDecoder),
		fonts:  make(map[string]FontDecoder),
	}
	registerImageDecoders(r)
	r.RegisterMesh("obj", DecodeOBJ)
	r.RegisterFont("ttf", text.NewGoTextFaceSource)
	r.RegisterFont("otf", text.NewGoTextFaceSource)
	return r
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FileType returns the decoder key for name. A non-empty hint wins.
func FileType(name, hint string) string {
	if hint != "" {
		return normalize(hint)
	}
	return normalize(path.Ext(name))
}

func (r *Registry) RegisterImage(ext string, d ImageDecoder) { r.images[normalize(ext)] = d }
func (r *Registry) RegisterMesh(ext string, d MeshDecoder)   { r.meshes[normalize(ext)] = d }
func (r *Registry) RegisterFont(ext string, d FontDecoder)   { r.fonts[normalize(ext)] = d }

// ImageDecoderFor returns the image decoder for name.
func (r *Registry) ImageDecoderFor(name, hint string) (ImageDecoder, error) {
	return lookup(r.images, name, hint)
}

// MeshDecoderFor returns the mesh decoder for name.
func (r *Registry) MeshDecoderFor(name, hint string) (MeshDecoder, error) {
	return lookup(r.meshes, name, hint)
}

// FontDecoderFor returns the font decoder for name.
func (r *Registry) FontDecoderFor(name, hint string) (FontDecoder, error) {
	return lookup(r.fonts, name, hint)
}

func lookup[D any](m map[string]D, name, hint string) (D, error) {
	t := FileType(name, hint)
	d, ok := m[t]
	if !ok {
		var zero D
		return zero, fmt.Errorf("%s (type %q): %w", name, t, ErrNoLoader)
	}
	return d, nil
}

// LoadImage decodes an image file.
func (r *Registry) LoadImage(name, hint string) (image.Image, error) {
	d, err := r.ImageDecoderFor(name, hint)
	if err != nil {
		return nil, err
	}
	return decode(r.fsys, name, d)
}

// LoadMesh decodes a mesh file.
func (r *Registry) LoadMesh(name, hint string) (MeshData, error) {
	d, err := r.MeshDecoderFor(name, hint)
	if err != nil {
		return MeshData{}, err
	}
	return decode(r.fsys, name, d)
}

// LoadFont parses a font file.
func (r *Registry) LoadFont(name, hint string) (*text.GoTextFaceSource, error) {
	d, err := r.FontDecoderFor(name, hint)
	if err != nil {
		return nil, err
	}
	return decode(r.fsys, name, d)
}

func decode[T any](fsys fs.FS, name string, d func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := fsys.Open(name)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	v, err := d(f)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return v, nil
}
