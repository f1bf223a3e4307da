package gfx

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type attribute struct {
	components int
	data       []float32
}

// State tracks bindings for a backend. Backends embed it and implement the
// rasterization side.
type State struct {
	Viewport image.Rectangle
	Options  Options

	program  *Program
	uniforms map[string]any
	attribs  map[string]attribute
	textures map[int]image.Image
}

// NewState creates an empty binding state.
func NewState() State {
	return State{
		Options:  DefaultOptions(),
		uniforms: make(map[string]any),
		attribs:  make(map[string]attribute),
		textures: make(map[int]image.Image),
	}
}

func (s *State) SetViewport(r image.Rectangle) { s.Viewport = r }

func (s *State) SetOptions(o Options) { s.Options = o }

// UseProgram binds p and clears uniforms left by the previous program.
func (s *State) UseProgram(p Program) error {
	if p.Name == "" {
		return fmt.Errorf("use program: %w", ErrNoProgram)
	}
	s.program = &p
	s.uniforms = make(map[string]any)
	return nil
}

// CurrentProgram returns the bound program or nil.
func (s *State) CurrentProgram() *Program { return s.program }

func (s *State) SetUniform(name string, value any) { s.uniforms[name] = value }

// Uniform returns a bound uniform value.
func (s *State) Uniform(name string) (any, bool) {
	v, ok := s.uniforms[name]
	return v, ok
}

func (s *State) BindAttribute(name string, components int, data []float32) {
	s.attribs[name] = attribute{components: components, data: data}
}

func (s *State) DisableAttribute(name string) { delete(s.attribs, name) }

// HasAttribute reports whether name is bound.
func (s *State) HasAttribute(name string) bool {
	_, ok := s.attribs[name]
	return ok
}

func (s *State) BindTexture(unit int, img image.Image) {
	if img == nil {
		delete(s.textures, unit)
		return
	}
	s.textures[unit] = img
}

// Texture returns the image bound to unit.
func (s *State) Texture(unit int) image.Image { return s.textures[unit] }

// Vertex is a vertex after projection to window space. Y grows downward and Z
// is depth in [0,1]. U and V are its texture coordinates.
type Vertex struct {
	X, Y, Z float32
	U, V    float32
	Visible bool
}

// ProjectVertices transforms the bound positions by the "mvp" uniform into
// window space of the current viewport.
func (s *State) ProjectVertices() ([]Vertex, error) {
	if s.program == nil {
		return nil, ErrNoProgram
	}
	pos, ok := s.attribs[AttribPosition]
	if !ok || pos.components < 2 {
		return nil, ErrNoPositions
	}
	mvp := mgl32.Ident4()
	if m, ok := s.uniforms[UniformMVP].(mgl32.Mat4); ok {
		mvp = m
	}

	n := len(pos.data) / pos.components
	out := make([]Vertex, n)
	vp := s.Viewport
	tc, textured := s.attribs[AttribTexCoord]
	for i := 0; i < n; i++ {
		p := mgl32.Vec4{0, 0, 0, 1}
		copy(p[:], pos.data[i*pos.components:i*pos.components+min(pos.components, 3)])
		clip := mvp.Mul4x1(p)
		if clip.W() <= 0 {
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip.W())
		out[i] = Vertex{
			X:       float32(vp.Min.X) + (ndc.X()+1)/2*float32(vp.Dx()),
			Y:       float32(vp.Min.Y) + (1-ndc.Y())/2*float32(vp.Dy()),
			Z:       (ndc.Z() + 1) / 2,
			Visible: ndc.Z() >= -1 && ndc.Z() <= 1,
		}
		if textured && tc.components >= 2 && (i+1)*tc.components <= len(tc.data) {
			out[i].U = tc.data[i*tc.components]
			out[i].V = tc.data[i*tc.components+1]
		}
	}
	return out, nil
}

// Textured reports whether fragments sample texture unit 0: an image is bound
// there and texture coordinates are bound.
func (s *State) Textured() bool {
	_, img := s.textures[0]
	_, tc := s.attribs[AttribTexCoord]
	return img && tc
}

// Sample reads texture unit 0 at (u, v) plus the "uv_offset" uniform with
// nearest filtering and repeat wrapping. v=0 is the bottom row of the image.
func (s *State) Sample(u, v float32) color.RGBA {
	img, ok := s.textures[0]
	if !ok {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if off, ok := s.uniforms[UniformUVOffset].(mgl32.Vec2); ok {
		u += off[0]
		v += off[1]
	}
	b := img.Bounds()
	if b.Empty() {
		return color.RGBA{}
	}
	u -= float32(math.Floor(float64(u)))
	v -= float32(math.Floor(float64(v)))
	x := b.Min.X + min(int(u*float32(b.Dx())), b.Dx()-1)
	y := b.Min.Y + min(int((1-v)*float32(b.Dy())), b.Dy()-1)
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

// Modulate multiplies two colors channel by channel.
func Modulate(a, b color.RGBA) color.RGBA {
	m := func(x, y uint8) uint8 { return uint8((uint32(x)*uint32(y) + 127) / 255) }
	return color.RGBA{R: m(a.R, b.R), G: m(a.G, b.G), B: m(a.B, b.B), A: m(a.A, b.A)}
}

// FragmentColor returns the flat color the bound program produces.
func (s *State) FragmentColor() color.RGBA {
	if s.program != nil && s.program.Name == ProgramUnlit {
		return toRGBA(s.vec4(UniformColor, mgl32.Vec4{1, 1, 1, 1}))
	}
	c := s.vec4(UniformDiffuse, mgl32.Vec4{1, 1, 1, 1})
	if l, ok := s.uniforms[UniformLightColor].(mgl32.Vec4); ok {
		a := s.vec4(UniformAmbient, mgl32.Vec4{})
		for i := 0; i < 3; i++ {
			c[i] = mgl32.Clamp(c[i]*l[i]+a[i]*0.1, 0, 1)
		}
	}
	return toRGBA(c)
}

func (s *State) vec4(name string, def mgl32.Vec4) mgl32.Vec4 {
	switch v := s.uniforms[name].(type) {
	case mgl32.Vec4:
		return v
	case mgl32.Vec3:
		return v.Vec4(1)
	case []float32:
		if len(v) >= 4 {
			return mgl32.Vec4{v[0], v[1], v[2], v[3]}
		}
	}
	return def
}

// toRGBA converts normalized channels to 8 bits, rounding to nearest so that
// n/255 round-trips exactly.
func toRGBA(c mgl32.Vec4) color.RGBA {
	q := func(f float32) uint8 {
		return uint8(mgl32.Clamp(f, 0, 1)*255 + 0.5)
	}
	return color.RGBA{R: q(c[0]), G: q(c[1]), B: q(c[2]), A: q(c[3])}
}

// ColorVec converts an 8-bit color to normalized channels.
func ColorVec(c color.RGBA) mgl32.Vec4 {
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}
