package material

import (
	"image/color"

	"github.com/younwookim/scenecore/internal/domain/handle"
)

// Iteration controls how many times a pass is drawn per object.
type Iteration int

const (
	// Once draws the pass a single time.
	Once Iteration = iota
	// OncePerLight draws the pass once for each light, up to MaxIterations.
	OncePerLight
)

// String returns the string representation of the iteration policy
func (it Iteration) String() string {
	switch it {
	case Once:
		return "Once"
	case OncePerLight:
		return "OncePerLight"
	default:
		return "Unknown"
	}
}

// DefaultMaxIterations bounds per-light passes unless overridden.
const DefaultMaxIterations = 8

// White is the default pass color.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// TextureUnit binds either a single texture or an animated sequence.
type TextureUnit struct {
	Frames        []handle.Handle
	FrameDuration float64 // seconds per frame, 0 for static units

	Elapsed float64
	Frame   int
}

// NewTextureUnit creates a static unit.
func NewTextureUnit(tex handle.Handle) TextureUnit {
	return TextureUnit{Frames: []handle.Handle{tex}}
}

// NewAnimatedTextureUnit creates a unit cycling through frames.
func NewAnimatedTextureUnit(frames []handle.Handle, frameDuration float64) TextureUnit {
	fs := make([]handle.Handle, len(frames))
	copy(fs, frames)
	return TextureUnit{Frames: fs, FrameDuration: frameDuration}
}

// IsAnimated reports whether the unit cycles through more than one frame.
func (u *TextureUnit) IsAnimated() bool {
	return len(u.Frames) > 1 && u.FrameDuration > 0
}

// Current returns the texture currently bound by this unit.
func (u *TextureUnit) Current() handle.Handle {
	if len(u.Frames) == 0 {
		return handle.None
	}
	return u.Frames[u.Frame%len(u.Frames)]
}

// Update advances an animated unit by dt seconds.
func (u *TextureUnit) Update(dt float64) {
	if !u.IsAnimated() {
		return
	}
	u.Elapsed += dt
	for u.Elapsed >= u.FrameDuration {
		u.Elapsed -= u.FrameDuration
		u.Frame = (u.Frame + 1) % len(u.Frames)
	}
}

// Pass is one shader-bound draw configuration.
type Pass struct {
	Shader        handle.Handle
	TextureUnits  []TextureUnit
	Iteration     Iteration
	MaxIterations int

	Diffuse   color.RGBA
	Ambient   color.RGBA
	Specular  color.RGBA
	Shininess float32

	Blend      bool
	DepthTest  bool
	DepthWrite bool
}

func newPass(shader handle.Handle) *Pass {
	return &Pass{
		Shader:        shader,
		Iteration:     Once,
		MaxIterations: DefaultMaxIterations,
		Diffuse:       White,
		Ambient:       White,
		Specular:      White,
		DepthTest:     true,
		DepthWrite:    true,
	}
}

// SetTextureUnit binds unit i, growing the unit list as needed.
func (p *Pass) SetTextureUnit(i int, u TextureUnit) {
	for len(p.TextureUnits) <= i {
		p.TextureUnits = append(p.TextureUnits, TextureUnit{})
	}
	p.TextureUnits[i] = u
}

// SetIteration sets the iteration policy. max <= 0 keeps the current bound.
func (p *Pass) SetIteration(it Iteration, max int) {
	p.Iteration = it
	if max > 0 {
		p.MaxIterations = max
	}
}

// Iterations returns how many times the pass is drawn given lightCount lights.
func (p *Pass) Iterations(lightCount int) int {
	if p.Iteration == Once {
		return 1
	}
	if lightCount > p.MaxIterations {
		return p.MaxIterations
	}
	return lightCount
}

// Update advances animated texture units.
func (p *Pass) Update(dt float64) {
	for i := range p.TextureUnits {
		p.TextureUnits[i].Update(dt)
	}
}
