package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/application/state"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/material"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/domain/viewport"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx/soft"
	"github.com/younwookim/scenecore/internal/infrastructure/input"
)

const (
	testW = 60
	testH = 20
)

// recordingBackend keeps every color uniform set while drawing
type recordingBackend struct {
	gfx.State
	colors []mgl32.Vec4
	draws  int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{State: gfx.NewState()}
}

func (r *recordingBackend) Size() (int, int)                { return testW, testH }
func (r *recordingBackend) Clear(gfx.ClearMask, color.RGBA) {}
func (r *recordingBackend) SetUniform(name string, v any) {
	if name == gfx.UniformColor {
		r.colors = append(r.colors, v.(mgl32.Vec4))
	}
	r.State.SetUniform(name, v)
}
func (r *recordingBackend) DrawElements(gfx.Primitive, []uint16) error {
	r.draws++
	return nil
}
func (r *recordingBackend) DrawArrays(gfx.Primitive, int, int) error {
	r.draws++
	return nil
}
func (r *recordingBackend) ReadPixel(int, int) color.RGBA { return Sentinel }

// addQuad creates a w×h rectangle mesh centered at (x, y) in clip space
func addQuad(t *testing.T, s *scene.Scene, x, y, w, h float32) handle.Handle {
	t.Helper()
	mh := s.NewMesh()
	m, err := s.Mesh(mh)
	require.NoError(t, err)
	m.NewRectangle(w, h)
	m.SetPosition(mgl32.Vec3{x, y, 0})
	return mh
}

// threeQuads lays out three quads side by side across a testW×testH window
func threeQuads(t *testing.T, s *scene.Scene) [3]handle.Handle {
	return [3]handle.Handle{
		addQuad(t, s, -0.7, 0, 0.4, 1),
		addQuad(t, s, 0, 0, 0.4, 1),
		addQuad(t, s, 0.7, 0, 0.4, 1),
	}
}

func fullscreen() viewport.Viewport {
	return viewport.New(viewport.FullScreen, testW, testH)
}

func TestPicking_ResolvesMeshUnderCursor(t *testing.T) {
	tests := []struct {
		name   string
		cursor image.Point
		want   int // index into the quads, -1 for a miss
	}{
		{"left", image.Pt(9, 10), 0},
		{"middle", image.Pt(30, 10), 1},
		{"right", image.Pt(51, 10), 2},
		{"background above", image.Pt(30, 1), -1},
		{"background between", image.Pt(19, 10), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := &input.Fixed{State: input.State{CursorX: tt.cursor.X, CursorY: tt.cursor.Y}}
			s := scene.New(scene.WithBackend(soft.New(testW, testH)), scene.WithWindow(win))
			quads := threeQuads(t, s)

			p := NewPicking()
			require.NoError(t, s.AddPass(p, fullscreen()))
			require.NoError(t, s.Render())

			assert.Equal(t, 3, p.Assigned())
			assert.Equal(t, state.PickResolved, p.State())
			if tt.want < 0 {
				assert.True(t, p.LastPicked().IsNone())
			} else {
				assert.Equal(t, quads[tt.want], p.LastPicked())
			}
		})
	}
}

func TestPicking_NearestMeshWins(t *testing.T) {
	win := &input.Fixed{State: input.State{CursorX: 30, CursorY: 10}}
	s := scene.New(scene.WithBackend(soft.New(testW, testH)), scene.WithWindow(win))

	back := addQuad(t, s, 0, 0, 1, 1)
	front := addQuad(t, s, 0, 0, 0.5, 0.5)
	m, err := s.Mesh(back)
	require.NoError(t, err)
	m.SetPosition(mgl32.Vec3{0, 0, 0.5})

	p := NewPicking()
	require.NoError(t, s.AddPass(p, fullscreen()))
	require.NoError(t, s.Render())
	assert.Equal(t, front, p.LastPicked())
}

func TestPicking_NonPickableOccludes(t *testing.T) {
	win := &input.Fixed{State: input.State{CursorX: 30, CursorY: 10}}
	s := scene.New(scene.WithBackend(soft.New(testW, testH)), scene.WithWindow(win))

	behind := addQuad(t, s, 0, 0, 1, 1)
	bm, err := s.Mesh(behind)
	require.NoError(t, err)
	bm.SetPosition(mgl32.Vec3{0, 0, 0.5})

	cover := addQuad(t, s, 0, 0, 0.5, 0.5)
	cm, err := s.Mesh(cover)
	require.NoError(t, err)
	cm.Pickable = false

	p := NewPicking()
	require.NoError(t, s.AddPass(p, fullscreen()))
	require.NoError(t, s.Render())
	assert.True(t, p.LastPicked().IsNone())
	assert.Equal(t, 1, p.Assigned())
}

func TestPicking_MissWithoutWindowOrOutsideViewport(t *testing.T) {
	t.Run("no window", func(t *testing.T) {
		s := scene.New(scene.WithBackend(soft.New(testW, testH)))
		threeQuads(t, s)
		p := NewPicking()
		require.NoError(t, s.AddPass(p, fullscreen()))
		require.NoError(t, s.Render())
		assert.True(t, p.LastPicked().IsNone())
	})

	t.Run("cursor outside viewport", func(t *testing.T) {
		win := &input.Fixed{State: input.State{CursorX: 45, CursorY: 10}}
		s := scene.New(scene.WithBackend(soft.New(testW, testH)), scene.WithWindow(win))
		threeQuads(t, s)
		p := NewPicking()
		require.NoError(t, s.AddPass(p, viewport.New(viewport.SplitLeft, testW, testH)))
		require.NoError(t, s.Render())
		assert.True(t, p.LastPicked().IsNone())
	})
}

func TestPicking_SkipsInvisibleMeshes(t *testing.T) {
	win := &input.Fixed{State: input.State{CursorX: 30, CursorY: 10}}
	s := scene.New(scene.WithBackend(soft.New(testW, testH)), scene.WithWindow(win))
	quads := threeQuads(t, s)
	m, err := s.Mesh(quads[1])
	require.NoError(t, err)
	m.Visible = false

	p := NewPicking()
	require.NoError(t, s.AddPass(p, fullscreen()))
	require.NoError(t, s.Render())
	assert.Equal(t, 2, p.Assigned())
	assert.True(t, p.LastPicked().IsNone())
}

func TestPicking_CounterRollover(t *testing.T) {
	b := newRecordingBackend()
	s := scene.New(scene.WithBackend(b))
	hs := make([]handle.Handle, 256)
	for i := range hs {
		hs[i] = addQuad(t, s, 0, 0, 0.1, 0.1)
	}

	p := NewPicking()
	require.NoError(t, s.AddPass(p, fullscreen()))
	require.NoError(t, s.Render())

	require.Len(t, b.colors, 256)
	assert.Equal(t, 256, b.draws)

	seen := make(map[mgl32.Vec4]bool)
	for _, c := range b.colors {
		assert.False(t, seen[c], "color %v reused", c)
		seen[c] = true
	}
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, b.colors[0])
	assert.Equal(t, mgl32.Vec4{0, 0, 254.0 / 255, 1}, b.colors[254])
	assert.Equal(t, mgl32.Vec4{0, 1.0 / 255, 0, 1}, b.colors[255])
	assert.Equal(t, hs[255], p.lookup[PickColor{0, 1, 0}])
}

func TestPicking_AssignCarry(t *testing.T) {
	p := NewPicking()
	p.counter = PickColor{3, 254, 254}
	assert.Equal(t, PickColor{3, 254, 254}, p.assign(handle.None))
	assert.Equal(t, PickColor{4, 0, 0}, p.counter)
}

func TestPicking_ExhaustionPanics(t *testing.T) {
	p := NewPicking()
	p.counter = PickColor{254, 254, 253}
	p.assign(handle.None)
	p.assign(handle.None)
	assert.True(t, p.exhausted)
	assert.Panics(t, func() { p.assign(handle.None) })
}

func TestPicking_StartResetsFrame(t *testing.T) {
	win := &input.Fixed{State: input.State{CursorX: 30, CursorY: 10}}
	s := scene.New(scene.WithBackend(soft.New(testW, testH)), scene.WithWindow(win))
	quads := threeQuads(t, s)

	var picks []handle.Handle
	p := NewPicking()
	p.OnPick = func(h handle.Handle) { picks = append(picks, h) }
	require.NoError(t, s.AddPass(p, fullscreen()))

	require.NoError(t, s.Render())
	require.NoError(t, s.Delete(quads[1]))
	require.NoError(t, s.Render())

	assert.Equal(t, []handle.Handle{quads[1], handle.None}, picks)
	assert.Equal(t, 2, p.Assigned())
}

func TestPicking_RenderWithoutStart(t *testing.T) {
	s := scene.New(scene.WithBackend(soft.New(testW, testH)))
	p := NewPicking()
	assert.Equal(t, state.PickReset, p.State())
	assert.ErrorIs(t, p.Render(s), ErrPickNotStarted)
}

func TestPicking_LeavesClearedTarget(t *testing.T) {
	b := soft.New(testW, testH)
	win := &input.Fixed{State: input.State{CursorX: 30, CursorY: 10}}
	s := scene.New(scene.WithBackend(b), scene.WithWindow(win))
	s.SetClearColor(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	threeQuads(t, s)

	require.NoError(t, s.AddPass(NewPicking(), fullscreen()))
	require.NoError(t, s.Render())
	assert.Equal(t, s.ClearColor(), b.Image().RGBAAt(30, 10))
}

func TestGeneric_DrawsAfterPicking(t *testing.T) {
	b := soft.New(testW, testH)
	win := &input.Fixed{State: input.State{CursorX: 30, CursorY: 10}}
	s := scene.New(scene.WithBackend(b), scene.WithWindow(win))
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	s.SetClearColor(bg)
	quads := threeQuads(t, s)

	p := NewPicking()
	vp := fullscreen()
	vp.Background = color.RGBA{}
	require.NoError(t, s.AddPass(p, fullscreen()))
	require.NoError(t, s.AddPass(NewGeneric(""), vp))
	require.NoError(t, s.Render())

	assert.Equal(t, quads[1], p.LastPicked())
	assert.Equal(t, white, b.Image().RGBAAt(30, 10))
	assert.Equal(t, bg, b.Image().RGBAAt(30, 1))
}

func TestGeneric_UsesViewportBackground(t *testing.T) {
	b := soft.New(testW, testH)
	s := scene.New(scene.WithBackend(b))
	vp := fullscreen()
	vp.Background = color.RGBA{R: 1, G: 2, B: 3, A: 255}
	require.NoError(t, s.AddPass(NewGeneric(""), vp))
	require.NoError(t, s.Render())
	assert.Equal(t, vp.Background, b.Image().RGBAAt(0, 0))
}

func TestGeneric_MaterialColor(t *testing.T) {
	b := soft.New(testW, testH)
	s := scene.New(scene.WithBackend(b))
	quads := threeQuads(t, s)

	mh := s.NewMaterial()
	mat, err := s.Material(mh)
	require.NoError(t, err)
	pass, err := mat.DefaultTechnique().Pass(0)
	require.NoError(t, err)
	pass.Diffuse = color.RGBA{R: 200, A: 255}

	m, err := s.Mesh(quads[0])
	require.NoError(t, err)
	m.Material = mh

	require.NoError(t, s.AddPass(NewGeneric(""), fullscreen()))
	require.NoError(t, s.Render())
	assert.Equal(t, color.RGBA{R: 200, A: 255}, b.Image().RGBAAt(9, 10))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, b.Image().RGBAAt(30, 10))
}

func TestGeneric_SkipsMeshesWithoutScheme(t *testing.T) {
	b := newRecordingBackend()
	s := scene.New(scene.WithBackend(b))
	quads := threeQuads(t, s)

	mh := s.NewMaterial()
	mat, err := s.Material(mh)
	require.NoError(t, err)
	outline, err := mat.NewTechnique("outline")
	require.NoError(t, err)
	outline.NewPass(handle.None)
	m, err := s.Mesh(quads[2])
	require.NoError(t, err)
	m.Material = mh

	require.NoError(t, s.AddPass(NewGeneric("outline"), fullscreen()))
	require.NoError(t, s.Render())
	assert.Equal(t, 1, b.draws)
}

func TestGeneric_OncePerLight(t *testing.T) {
	tests := []struct {
		name   string
		lights int
		max    int
		want   int
	}{
		{"below bound", 2, 4, 2},
		{"bounded", 5, 3, 3},
		{"no lights", 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newRecordingBackend()
			s := scene.New(scene.WithBackend(b))
			addQuad(t, s, 0, 0, 1, 1)
			for i := 0; i < tt.lights; i++ {
				s.NewLight(object.Point)
			}
			mat, err := s.Material(s.DefaultMaterial())
			require.NoError(t, err)
			pass, err := mat.DefaultTechnique().Pass(0)
			require.NoError(t, err)
			pass.SetIteration(material.OncePerLight, tt.max)

			require.NoError(t, s.AddPass(NewGeneric(""), fullscreen()))
			require.NoError(t, s.Render())
			assert.Equal(t, tt.want, b.draws)
		})
	}
}

func TestGeneric_MissingMaterialFallsBack(t *testing.T) {
	b := newRecordingBackend()
	s := scene.New(scene.WithBackend(b))
	quads := threeQuads(t, s)
	m, err := s.Mesh(quads[0])
	require.NoError(t, err)
	m.Material = handle.None

	require.NoError(t, s.AddPass(NewGeneric(""), fullscreen()))
	require.NoError(t, s.Render())
	assert.Equal(t, 3, b.draws)
}

func TestGeneric_OverlayDrawsOnTop(t *testing.T) {
	b := soft.New(testW, testH)
	s := scene.New(scene.WithBackend(b))
	addQuad(t, s, 0, 0, 2, 2)

	oh := s.NewOverlay(0)
	mat := s.NewMaterial()
	m, err := s.Material(mat)
	require.NoError(t, err)
	pass, err := m.DefaultTechnique().Pass(0)
	require.NoError(t, err)
	pass.Diffuse = color.RGBA{G: 255, A: 255}

	// overlay coordinates are pixels from the top-left
	mh := addQuad(t, s, 10, 10, 8, 8)
	mesh, err := s.Mesh(mh)
	require.NoError(t, err)
	mesh.Material = mat
	require.NoError(t, s.SetParent(mh, oh))

	require.NoError(t, s.AddPass(NewGeneric(""), fullscreen()))
	require.NoError(t, s.Render())
	assert.Equal(t, color.RGBA{G: 255, A: 255}, b.Image().RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, b.Image().RGBAAt(40, 10))

	o, err := s.Overlay(oh)
	require.NoError(t, err)
	o.Visible = false
	require.NoError(t, s.Render())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, b.Image().RGBAAt(10, 10))
}

func TestPicking_HooksOutsidePass(t *testing.T) {
	s := scene.New(scene.WithBackend(soft.New(testW, testH)))
	p := NewPicking()

	assert.ErrorIs(t, p.OnStartRender(s), ErrNoPass)
	assert.ErrorIs(t, p.OnFinishRender(s), ErrPickNotStarted)

	p.state = state.PickAccumulating
	assert.ErrorIs(t, p.Render(s), ErrPickNotStarted)
	assert.ErrorIs(t, p.OnFinishRender(s), ErrPickNotStarted)
}

func TestGeneric_HooksOutsidePass(t *testing.T) {
	s := scene.New(scene.WithBackend(soft.New(testW, testH)))
	g := NewGeneric("")

	assert.ErrorIs(t, g.OnStartRender(s), ErrNoPass)
	assert.ErrorIs(t, g.Render(s), ErrNoPass)
}

func TestGeneric_MissingProgramFallsBack(t *testing.T) {
	b := newRecordingBackend()
	s := scene.New(scene.WithBackend(b))
	threeQuads(t, s)

	prog := s.NewProgram("toon", "vertex", "fragment")
	mat, err := s.Material(s.DefaultMaterial())
	require.NoError(t, err)
	pass, err := mat.DefaultTechnique().Pass(0)
	require.NoError(t, err)
	pass.Shader = prog

	require.NoError(t, s.AddPass(NewGeneric(""), fullscreen()))
	require.NoError(t, s.Render())
	assert.Equal(t, "toon", b.CurrentProgram().Name)

	require.NoError(t, s.DeleteProgram(prog))
	require.NoError(t, s.Render())
	assert.Equal(t, 6, b.draws)
	assert.Equal(t, gfx.ProgramGeneric, b.CurrentProgram().Name)
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// backgroundScene renders a 4×2 window whose only background layer is a
// red, green, blue, white strip
func backgroundScene(t *testing.T) (*scene.Scene, *soft.Backend, *scene.BackgroundLayer) {
	t.Helper()
	b := soft.New(4, 2)
	s := scene.New(scene.WithBackend(b))
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	for x, c := range []color.RGBA{red, green, blue, white} {
		img.SetRGBA(x, 0, c)
	}
	layer, err := s.Background().AddLayer(s.NewTexture(img))
	require.NoError(t, err)
	require.NoError(t, s.AddPass(NewGeneric(""), viewport.New(viewport.FullScreen, 4, 2)))
	return s, b, layer
}

func TestGeneric_BackgroundScrollMovesTexel(t *testing.T) {
	s, b, layer := backgroundScene(t)

	require.NoError(t, s.Render())
	assert.Equal(t, red, b.Image().RGBAAt(0, 0))
	assert.Equal(t, blue, b.Image().RGBAAt(2, 1))

	layer.Scroll(0.25, 0)
	require.NoError(t, s.Render())
	assert.Equal(t, green, b.Image().RGBAAt(0, 0))
	assert.Equal(t, white, b.Image().RGBAAt(2, 1))

	layer.Scroll(0.5, 0)
	require.NoError(t, s.Render())
	assert.Equal(t, white, b.Image().RGBAAt(0, 0))
	assert.Equal(t, green, b.Image().RGBAAt(2, 1), "offset wraps around the strip")
}

func TestGeneric_BackgroundAdvancesWithUpdate(t *testing.T) {
	s, b, layer := backgroundScene(t)
	layer.Velocity = mgl32.Vec2{0.5, 0}

	require.NoError(t, s.Update(0.5))
	require.NoError(t, s.Render())
	assert.Equal(t, green, b.Image().RGBAAt(0, 0))
}

func TestGeneric_BackgroundVisibleDimensions(t *testing.T) {
	s, b, _ := backgroundScene(t)
	require.NoError(t, s.Background().SetVisibleDimensions(2, 1))

	require.NoError(t, s.Render())
	assert.Equal(t, red, b.Image().RGBAAt(0, 0))
	assert.Equal(t, green, b.Image().RGBAAt(3, 0))
}

func TestGeneric_BackgroundBehindScene(t *testing.T) {
	s, b, _ := backgroundScene(t)
	mh := addQuad(t, s, 0, 0, 2, 2)

	require.NoError(t, s.Render())
	assert.Equal(t, white, b.Image().RGBAAt(0, 0), "default material covers the layer")
	assert.False(t, b.Textured(), "texture unit released after the layers")

	require.NoError(t, s.DeleteMesh(mh))
	tex := s.Background().Layers()[0].Texture
	require.NoError(t, s.DeleteTexture(tex))
	require.NoError(t, s.Render(), "layers without a texture are skipped")
}
