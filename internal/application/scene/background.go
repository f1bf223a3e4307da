package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/object"
)

var (
	// ErrLayerIndex is returned for a background layer index out of range.
	ErrLayerIndex = errors.New("background layer index out of range")
	// ErrVisibleDimensions is returned for a non-positive visible area.
	ErrVisibleDimensions = errors.New("background visible dimensions must be positive")
	ErrEmptyTexture      = errors.New("texture has no image data")
)

// BackgroundLayer is one textured quad of the background. Offset shifts its
// texture coordinates and wraps into [0,1).
type BackgroundLayer struct {
	Texture handle.Handle
	Quad    *object.Mesh
	Offset  mgl32.Vec2
	// Velocity is added to Offset per second by Scene.Update.
	Velocity mgl32.Vec2

	width, height int
}

// Scroll moves the texture coordinates by dx, dy in texture widths.
func (l *BackgroundLayer) Scroll(dx, dy float32) {
	l.Offset = mgl32.Vec2{wrap(l.Offset[0] + dx), wrap(l.Offset[1] + dy)}
}

// Size returns the texture size the layer was created with.
func (l *BackgroundLayer) Size() (int, int) { return l.width, l.height }

func wrap(f float32) float32 {
	return f - float32(math.Floor(float64(f)))
}

// Background holds the image layers drawn behind the scene tree, back to
// front in insertion order.
type Background struct {
	scene  *Scene
	layers []*BackgroundLayer

	visibleW, visibleH float64
}

func newBackground(s *Scene) *Background {
	return &Background{scene: s}
}

// AddLayer appends a layer showing tex. The layer quad has the texture's
// pixel size.
func (b *Background) AddLayer(tex handle.Handle) (*BackgroundLayer, error) {
	t, err := b.scene.Texture(tex)
	if err != nil {
		return nil, fmt.Errorf("background layer: %w", err)
	}
	w, h := t.Size()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("background layer %s: %w", tex, ErrEmptyTexture)
	}
	quad := object.NewMesh(handle.None)
	quad.NewRectangle(1, 1)
	quad.Pickable = false

	l := &BackgroundLayer{Texture: tex, Quad: quad, width: w, height: h}
	b.layers = append(b.layers, l)
	return l, nil
}

// AddLayerFromFile loads an image through the scene's loaders and appends a
// layer showing it.
func (b *Background) AddLayerFromFile(name string) (*BackgroundLayer, error) {
	tex, err := b.scene.NewTextureFromFile(name, "")
	if err != nil {
		return nil, err
	}
	return b.AddLayer(tex)
}

// Layer returns layer i.
func (b *Background) Layer(i int) (*BackgroundLayer, error) {
	if i < 0 || i >= len(b.layers) {
		return nil, fmt.Errorf("layer %d of %d: %w", i, len(b.layers), ErrLayerIndex)
	}
	return b.layers[i], nil
}

// Layers returns the layers in draw order.
func (b *Background) Layers() []*BackgroundLayer { return b.layers }

func (b *Background) LayerCount() int { return len(b.layers) }

// SetVisibleDimensions sets the area, in layer pixels, that maps onto the
// viewport.
func (b *Background) SetVisibleDimensions(w, h float64) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%gx%g: %w", w, h, ErrVisibleDimensions)
	}
	b.visibleW, b.visibleH = w, h
	return nil
}

// VisibleDimensions returns the visible area. Until it is set, each layer
// stretches its own size over the viewport.
func (b *Background) VisibleDimensions(l *BackgroundLayer) (float64, float64) {
	if b.visibleW > 0 && b.visibleH > 0 {
		return b.visibleW, b.visibleH
	}
	return float64(l.width), float64(l.height)
}

// Model returns the transform placing the unit quad of l over its pixel area,
// origin at the bottom-left.
func (b *Background) Model(l *BackgroundLayer) mgl32.Mat4 {
	w, h := float32(l.width), float32(l.height)
	return mgl32.Translate3D(w/2, h/2, 0).Mul4(mgl32.Scale3D(w, h, 1))
}

// Projection maps the visible area of l to clip space.
func (b *Background) Projection(l *BackgroundLayer) mgl32.Mat4 {
	w, h := b.VisibleDimensions(l)
	return mgl32.Ortho(0, float32(w), 0, float32(h), -1, 1)
}

// Update scrolls every layer by its velocity.
func (b *Background) Update(dt float64) {
	for _, l := range b.layers {
		if l.Velocity == (mgl32.Vec2{}) {
			continue
		}
		v := l.Velocity.Mul(float32(dt))
		l.Scroll(v[0], v[1])
	}
}
