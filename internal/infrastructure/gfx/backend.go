// Package gfx defines the abstract draw-submission contract used by renderers
// and the vertex processing shared by its implementations.
package gfx

import (
	"errors"
	"image"
	"image/color"
)

// Primitive is the arrangement of submitted vertices.
type Primitive int

const (
	PrimTriangles Primitive = iota
	PrimTriangleFan
	PrimTriangleStrip
	PrimPoints
	PrimLines
	PrimLineStrip
)

// ClearMask selects which buffers Clear affects.
type ClearMask int

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// Options is the per-pass render state pushed before a renderer runs.
type Options struct {
	DepthTest  bool
	DepthWrite bool
	Blend      bool
}

// DefaultOptions returns depth-tested, opaque rendering.
func DefaultOptions() Options {
	return Options{DepthTest: true, DepthWrite: true}
}

// Built-in program names every backend understands.
const (
	// ProgramUnlit outputs the "color" uniform unchanged.
	ProgramUnlit = "unlit"
	// ProgramGeneric outputs "diffuse" modulated by "light_color" when set.
	ProgramGeneric = "generic"
)

// Standard uniform and attribute names.
const (
	UniformMVP        = "mvp"
	UniformColor      = "color"
	UniformDiffuse    = "diffuse"
	UniformAmbient    = "ambient"
	UniformLightColor = "light_color"
	// UniformUVOffset is a mgl32.Vec2 added to texture coordinates.
	UniformUVOffset = "uv_offset"

	AttribPosition = "position"
	AttribNormal   = "normal"
	AttribTexCoord = "texcoord"
	AttribColor    = "vertex_color"
)

// Program identifies a shader program. Sources are opaque to the core.
type Program struct {
	Name     string
	Vertex   string
	Fragment string
}

var (
	ErrNoProgram     = errors.New("no program bound")
	ErrNoPositions   = errors.New("position attribute not bound")
	ErrIndexRange    = errors.New("vertex index out of range")
	ErrUnsupportedOp = errors.New("operation not supported by backend")
)

// Backend submits draw work to a render target.
//
// Window coordinates passed to SetViewport have their origin at the top-left.
// ReadPixel uses the graphics convention with the origin at the bottom-left.
type Backend interface {
	Size() (width, height int)
	SetViewport(r image.Rectangle)
	SetOptions(o Options)
	Clear(mask ClearMask, c color.RGBA)

	UseProgram(p Program) error
	SetUniform(name string, value any)
	BindAttribute(name string, components int, data []float32)
	DisableAttribute(name string)
	BindTexture(unit int, img image.Image)

	DrawElements(mode Primitive, indices []uint16) error
	DrawArrays(mode Primitive, first, count int) error

	ReadPixel(x, y int) color.RGBA
}
