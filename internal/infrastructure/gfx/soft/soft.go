// Package soft is a software rasterizer implementing gfx.Backend over an
// in-memory RGBA image with a float depth buffer. It runs headless and is the
// reference backend for tests.
package soft

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
)

// Backend renders into an image.RGBA.
type Backend struct {
	gfx.State

	target *image.RGBA
	depth  []float32
	draws  int
}

// New creates a backend with a w×h target. The viewport starts full size.
func New(w, h int) *Backend {
	b := &Backend{State: gfx.NewState()}
	b.Resize(w, h)
	return b
}

// Resize reallocates the target, discarding its contents.
func (b *Backend) Resize(w, h int) {
	b.target = image.NewRGBA(image.Rect(0, 0, w, h))
	b.depth = make([]float32, w*h)
	for i := range b.depth {
		b.depth[i] = 1
	}
	b.Viewport = b.target.Bounds()
}

func (b *Backend) Size() (int, int) {
	s := b.target.Bounds().Size()
	return s.X, s.Y
}

// Image returns the color target. Row 0 is the top of the window.
func (b *Backend) Image() *image.RGBA { return b.target }

// DrawCount returns the number of draw calls since creation.
func (b *Backend) DrawCount() int { return b.draws }

// Clear fills the current viewport area of the selected buffers.
func (b *Backend) Clear(mask gfx.ClearMask, c color.RGBA) {
	r := b.Viewport.Intersect(b.target.Bounds())
	if mask&gfx.ClearColor != 0 {
		draw.Draw(b.target, r, image.NewUniform(c), image.Point{}, draw.Src)
	}
	if mask&gfx.ClearDepth != 0 {
		w := b.target.Bounds().Dx()
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				b.depth[y*w+x] = 1
			}
		}
	}
}

// ReadPixel reads with the origin at the bottom-left of the target.
func (b *Backend) ReadPixel(x, y int) color.RGBA {
	_, h := b.Size()
	return b.target.RGBAAt(x, h-1-y)
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
	return b.draw(mode, verts, idx)
}

func (b *Backend) DrawArrays(mode gfx.Primitive, first, count int) error {
	verts, err := b.ProjectVertices()
	if err != nil {
		return err
	}
	if first < 0 || first+count > len(verts) {
		return gfx.ErrIndexRange
	}
	return b.draw(mode, verts, gfx.Sequential(first, count))
}

func (b *Backend) draw(mode gfx.Primitive, verts []gfx.Vertex, idx []int) error {
	asm, err := gfx.Assemble(mode, idx)
	if err != nil {
		return err
	}
	b.draws++
	c := b.FragmentColor()
	for _, t := range asm.Triangles {
		b.triangle(verts[t[0]], verts[t[1]], verts[t[2]], c)
	}
	for _, l := range asm.Lines {
		b.line(verts[l[0]], verts[l[1]], c)
	}
	for _, p := range asm.Points {
		v := verts[p]
		if v.Visible {
			b.fragment(int(math.Floor(float64(v.X))), int(math.Floor(float64(v.Y))), v.Z, c)
		}
	}
	return nil
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// triangle rasterizes with pixel-center sampling. Both windings are drawn.
// Texture coordinates are interpolated linearly in window space.
func (b *Backend) triangle(v0, v1, v2 gfx.Vertex, c color.RGBA) {
	if !v0.Visible || !v1.Visible || !v2.Visible {
		return
	}
	area := edge(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y)
	if area == 0 {
		return
	}
	clip := b.Viewport.Intersect(b.target.Bounds())
	minX := max(clip.Min.X, int(math.Floor(float64(min(v0.X, v1.X, v2.X)))))
	maxX := min(clip.Max.X-1, int(math.Ceil(float64(max(v0.X, v1.X, v2.X)))))
	minY := max(clip.Min.Y, int(math.Floor(float64(min(v0.Y, v1.Y, v2.Y)))))
	maxY := min(clip.Max.Y-1, int(math.Ceil(float64(max(v0.Y, v1.Y, v2.Y)))))
	textured := b.Textured()

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edge(v1.X, v1.Y, v2.X, v2.Y, px, py) / area
			w1 := edge(v2.X, v2.Y, v0.X, v0.Y, px, py) / area
			w2 := edge(v0.X, v0.Y, v1.X, v1.Y, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			fc := c
			if textured {
				fc = gfx.Modulate(b.Sample(w0*v0.U+w1*v1.U+w2*v2.U, w0*v0.V+w1*v1.V+w2*v2.V), c)
			}
			b.fragment(x, y, w0*v0.Z+w1*v1.Z+w2*v2.Z, fc)
		}
	}
}

func (b *Backend) line(v0, v1 gfx.Vertex, c color.RGBA) {
	if !v0.Visible || !v1.Visible {
		return
	}
	dx, dy := v1.X-v0.X, v1.Y-v0.Y
	steps := int(math.Ceil(math.Max(math.Abs(float64(dx)), math.Abs(float64(dy)))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := int(math.Floor(float64(v0.X + dx*t)))
		y := int(math.Floor(float64(v0.Y + dy*t)))
		b.fragment(x, y, v0.Z+(v1.Z-v0.Z)*t, c)
	}
}

func (b *Backend) fragment(x, y int, z float32, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(b.Viewport.Intersect(b.target.Bounds())) {
		return
	}
	i := y*b.target.Bounds().Dx() + x
	if b.Options.DepthTest && z >= b.depth[i] {
		return
	}
	if b.Options.DepthWrite {
		b.depth[i] = z
	}
	if b.Options.Blend && c.A < 255 {
		dst := b.target.RGBAAt(x, y)
		a := uint32(c.A)
		mix := func(s, d uint8) uint8 {
			return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255)
		}
		c = color.RGBA{R: mix(c.R, dst.R), G: mix(c.G, dst.G), B: mix(c.B, dst.B), A: 255}
	}
	b.target.SetRGBA(x, y, c)
}

var _ gfx.Backend = (*Backend)(nil)
