package object

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/younwookim/scenecore/internal/domain/graph"
	"github.com/younwookim/scenecore/internal/domain/handle"
)

// Texture holds decoded image data.
type Texture struct {
	graph.Node

	Image  image.Image
	Source string
}

// NewTexture creates an empty texture.
func NewTexture(h handle.Handle) *Texture {
	return &Texture{Node: graph.NewNode(h)}
}

// Size returns the texture dimensions.
func (t *Texture) Size() (int, int) {
	if t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Program is a shader program. Sources are opaque to the core and compiled by
// the graphics backend.
type Program struct {
	graph.Node

	VertexSource   string
	FragmentSource string
}

// NewProgram creates a program with no sources.
func NewProgram(h handle.Handle) *Program {
	return &Program{Node: graph.NewNode(h)}
}

// Camera projects the scene for a render pass.
type Camera struct {
	graph.Node

	FovY         float32 // degrees
	Near, Far    float32
	Orthographic bool
	OrthoHeight  float32
}

// NewCamera creates a perspective camera with a 45 degree field of view.
func NewCamera(h handle.Handle) *Camera {
	return &Camera{
		Node:        graph.NewNode(h),
		FovY:        45,
		Near:        0.1,
		Far:         1000,
		OrthoHeight: 2,
	}
}

// Projection returns the projection matrix for the given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if c.Orthographic {
		hh := c.OrthoHeight / 2
		hw := hh * aspect
		return mgl32.Ortho(-hw, hw, -hh, hh, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// View returns the inverse of the camera's world transform.
func (c *Camera) View(r graph.Resolver) (mgl32.Mat4, error) {
	w, err := c.WorldTransform(r)
	if err != nil {
		return mgl32.Ident4(), err
	}
	return w.Inv(), nil
}

// LightType selects how a light is evaluated.
type LightType int

const (
	Directional LightType = iota
	Point
	Spot
)

// String returns the string representation of the light type
func (t LightType) String() string {
	switch t {
	case Directional:
		return "Directional"
	case Point:
		return "Point"
	case Spot:
		return "Spot"
	default:
		return "Unknown"
	}
}

// Light is a light source. Its direction is the node's -Z axis.
type Light struct {
	graph.Node

	Type     LightType
	Diffuse  color.RGBA
	Ambient  color.RGBA
	Specular color.RGBA
	Range    float32

	ConstantAttenuation  float32
	LinearAttenuation    float32
	QuadraticAttenuation float32
}

// NewLight creates a white point light.
func NewLight(h handle.Handle) *Light {
	return &Light{
		Node:                graph.NewNode(h),
		Type:                Point,
		Diffuse:             color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Ambient:             color.RGBA{A: 255},
		Specular:            color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Range:               100,
		ConstantAttenuation: 1,
	}
}

// Font is a parsed font face source.
type Font struct {
	graph.Node

	Source *text.GoTextFaceSource
	Size   float64
	Path   string
}

// NewFont creates an empty font.
func NewFont(h handle.Handle) *Font {
	return &Font{Node: graph.NewNode(h), Size: 16}
}

// Face returns a face of the font's size, or nil before a source is loaded.
func (f *Font) Face() text.Face {
	if f.Source == nil {
		return nil
	}
	return &text.GoTextFace{Source: f.Source, Size: f.Size}
}

// Text is a string drawn with a font.
type Text struct {
	graph.Node

	Content string
	Font    handle.Handle
	Color   color.RGBA
}

// NewText creates an empty white text.
func NewText(h handle.Handle) *Text {
	return &Text{Node: graph.NewNode(h), Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
}

// Overlay is the root of a screen-space layer drawn after the scene tree.
type Overlay struct {
	graph.Node

	ZIndex  int
	Visible bool
}

// NewOverlay creates a visible overlay.
func NewOverlay(h handle.Handle) *Overlay {
	return &Overlay{Node: graph.NewNode(h), Visible: true}
}
