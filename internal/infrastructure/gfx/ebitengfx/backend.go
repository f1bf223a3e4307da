// Package ebitengfx implements gfx.Backend on top of an ebiten render target.
//
// Ebiten exposes no depth buffer, so vertex processing runs on the CPU and
// depth-tested triangles are queued and drawn far to near when the queue is
// flushed. Flushes happen on Clear, ReadPixel and Flush.
package ebitengfx

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
)

// flatShader outputs the interpolated vertex color, which carries the flat
// fragment color of the bound program. Textured batches multiply it with the
// source image, wrapping source coordinates.
var flatShader = []byte(`//kage:unit pixels

package main

var Textured float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	if Textured == 0 {
		return color
	}
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	return imageSrc0UnsafeAt(origin+mod(srcPos-origin, size)) * color
}
`)

// maxTriangles keeps a batch under ebiten's uint16 index limit.
const maxTriangles = 65535 / 3

type triangle struct {
	v     [3]gfx.Vertex
	color color.RGBA
	tex   *ebiten.Image
	uv    mgl32.Vec2
	blend bool
	depth float32
	seq   int
}

// Backend draws into the image set with SetTarget.
type Backend struct {
	gfx.State

	target   *ebiten.Image
	shader   *ebiten.Shader
	queue    []triangle
	seq      int
	textures map[image.Image]*ebiten.Image
}

// New compiles the backend's shader.
func New() (*Backend, error) {
	s, err := ebiten.NewShader(flatShader)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	return &Backend{State: gfx.NewState(), shader: s, textures: make(map[image.Image]*ebiten.Image)}, nil
}

// SetTarget selects the image to draw into, usually the screen passed to
// ebiten.Game.Draw. Pending work for the previous target is flushed.
func (b *Backend) SetTarget(img *ebiten.Image) {
	b.Flush()
	b.target = img
	if img != nil {
		b.Viewport = img.Bounds()
	}
}

func (b *Backend) Size() (int, int) {
	if b.target == nil {
		return 0, 0
	}
	s := b.target.Bounds().Size()
	return s.X, s.Y
}

func (b *Backend) Clear(mask gfx.ClearMask, c color.RGBA) {
	b.Flush()
	if b.target == nil || mask&gfx.ClearColor == 0 {
		return
	}
	sub, ok := b.target.SubImage(b.Viewport).(*ebiten.Image)
	if !ok {
		return
	}
	sub.Fill(c)
}

// ReadPixel flushes pending draws and reads back one pixel, origin at the
// bottom-left. This stalls on the GPU.
func (b *Backend) ReadPixel(x, y int) color.RGBA {
	b.Flush()
	if b.target == nil {
		return color.RGBA{}
	}
	_, h := b.Size()
	return color.RGBAModel.Convert(b.target.At(x, h-1-y)).(color.RGBA)
}

func (b *Backend) DrawElements(mode gfx.Primitive, indices []uint16) error {
	verts, err := b.ProjectVertices()
	if err != nil {
		return err
	}
	idx, err := gfx.Widen(indices, len(verts))
	if err != nil {
		return err
	}
	return b.enqueue(mode, verts, idx)
}

func (b *Backend) DrawArrays(mode gfx.Primitive, first, count int) error {
	verts, err := b.ProjectVertices()
	if err != nil {
		return err
	}
	if first < 0 || first+count > len(verts) {
		return gfx.ErrIndexRange
	}
	return b.enqueue(mode, verts, gfx.Sequential(first, count))
}

func (b *Backend) enqueue(mode gfx.Primitive, verts []gfx.Vertex, idx []int) error {
	asm, err := gfx.Assemble(mode, idx)
	if err != nil {
		return err
	}
	c := b.FragmentColor()
	tex, uv := b.boundTexture()
	for _, t := range asm.Triangles {
		b.pushTextured([3]gfx.Vertex{verts[t[0]], verts[t[1]], verts[t[2]]}, c, tex, uv)
	}
	for _, l := range asm.Lines {
		for _, q := range segmentQuad(verts[l[0]], verts[l[1]]) {
			b.push(q, c)
		}
	}
	for _, p := range asm.Points {
		for _, q := range pointQuad(verts[p]) {
			b.push(q, c)
		}
	}
	return nil
}

// boundTexture uploads the image on unit 0 when fragments are textured. Uploads
// are cached per image for the life of the backend.
func (b *Backend) boundTexture() (*ebiten.Image, mgl32.Vec2) {
	if !b.Textured() {
		return nil, mgl32.Vec2{}
	}
	img := b.Texture(0)
	tex, ok := b.textures[img]
	if !ok {
		tex = ebiten.NewImageFromImage(img)
		b.textures[img] = tex
	}
	uv, _ := b.Uniform(gfx.UniformUVOffset)
	off, _ := uv.(mgl32.Vec2)
	return tex, off
}

func (b *Backend) push(v [3]gfx.Vertex, c color.RGBA) {
	b.pushTextured(v, c, nil, mgl32.Vec2{})
}

func (b *Backend) pushTextured(v [3]gfx.Vertex, c color.RGBA, tex *ebiten.Image, uv mgl32.Vec2) {
	if !v[0].Visible || !v[1].Visible || !v[2].Visible {
		return
	}
	depth := float32(1)
	if b.Options.DepthTest {
		depth = (v[0].Z + v[1].Z + v[2].Z) / 3
	}
	b.queue = append(b.queue, triangle{v: v, color: c, tex: tex, uv: uv, blend: b.Options.Blend, depth: depth, seq: b.seq})
	b.seq++
}

// Flush draws queued triangles far to near. Ties keep submission order.
func (b *Backend) Flush() {
	if len(b.queue) == 0 || b.target == nil {
		b.queue = b.queue[:0]
		return
	}
	sortFarToNear(b.queue)

	dst, ok := b.target.SubImage(b.Viewport).(*ebiten.Image)
	if !ok {
		dst = b.target
	}
	start := 0
	for i := 1; i <= len(b.queue); i++ {
		if i == len(b.queue) || !sameBatch(b.queue[i], b.queue[start]) || i-start == maxTriangles {
			b.submit(dst, b.queue[start:i])
			start = i
		}
	}
	b.queue = b.queue[:0]
}

func sameBatch(x, y triangle) bool {
	return x.blend == y.blend && x.tex == y.tex
}

func sortFarToNear(q []triangle) {
	slices.SortStableFunc(q, func(x, y triangle) int {
		if c := cmp.Compare(y.depth, x.depth); c != 0 {
			return c
		}
		return cmp.Compare(x.seq, y.seq)
	})
}

func (b *Backend) submit(dst *ebiten.Image, tris []triangle) {
	vs := make([]ebiten.Vertex, 0, len(tris)*3)
	is := make([]uint16, 0, len(tris)*3)
	var tw, th float32
	if tex := tris[0].tex; tex != nil {
		tw, th = float32(tex.Bounds().Dx()), float32(tex.Bounds().Dy())
	}
	for _, t := range tris {
		a := float32(t.color.A) / 255
		for _, v := range t.v {
			is = append(is, uint16(len(vs)))
			vs = append(vs, ebiten.Vertex{
				DstX:   v.X,
				DstY:   v.Y,
				SrcX:   (v.U + t.uv[0]) * tw,
				SrcY:   (1 - v.V - t.uv[1]) * th,
				ColorR: float32(t.color.R) / 255 * a,
				ColorG: float32(t.color.G) / 255 * a,
				ColorB: float32(t.color.B) / 255 * a,
				ColorA: a,
			})
		}
	}
	op := &ebiten.DrawTrianglesShaderOptions{Blend: ebiten.BlendCopy}
	if tris[0].blend {
		op.Blend = ebiten.BlendSourceOver
	}
	if tex := tris[0].tex; tex != nil {
		op.Images[0] = tex
		op.Uniforms = map[string]any{"Textured": float32(1)}
	}
	dst.DrawTrianglesShader(vs, is, b.shader, op)
}

func quad(x0, y0, x1, y1, z float32) [2][3]gfx.Vertex {
	a := gfx.Vertex{X: x0, Y: y0, Z: z, Visible: true}
	bb := gfx.Vertex{X: x1, Y: y0, Z: z, Visible: true}
	c := gfx.Vertex{X: x1, Y: y1, Z: z, Visible: true}
	d := gfx.Vertex{X: x0, Y: y1, Z: z, Visible: true}
	return [2][3]gfx.Vertex{{a, bb, c}, {a, c, d}}
}

func pointQuad(v gfx.Vertex) [][3]gfx.Vertex {
	if !v.Visible {
		return nil
	}
	q := quad(v.X-0.5, v.Y-0.5, v.X+0.5, v.Y+0.5, v.Z)
	return q[:]
}

func segmentQuad(a, b gfx.Vertex) [][3]gfx.Vertex {
	if !a.Visible || !b.Visible {
		return nil
	}
	q := quad(min(a.X, b.X)-0.5, min(a.Y, b.Y)-0.5, max(a.X, b.X)+0.5, max(a.Y, b.Y)+0.5, (a.Z+b.Z)/2)
	if a.X != b.X && a.Y != b.Y {
		// Diagonal segments become a thin parallelogram.
		z := (a.Z + b.Z) / 2
		p := []gfx.Vertex{
			{X: a.X - 0.5, Y: a.Y, Z: z, Visible: true},
			{X: a.X + 0.5, Y: a.Y, Z: z, Visible: true},
			{X: b.X + 0.5, Y: b.Y, Z: z, Visible: true},
			{X: b.X - 0.5, Y: b.Y, Z: z, Visible: true},
		}
		return [][3]gfx.Vertex{{p[0], p[1], p[2]}, {p[0], p[2], p[3]}}
	}
	return q[:]
}

var _ gfx.Backend = (*Backend)(nil)
