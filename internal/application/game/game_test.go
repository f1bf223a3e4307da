package game

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/infrastructure/input"
)

// mockFrame is a test double for Frame
type mockFrame struct {
	updateCalled int
	renderCalled int
	lastDT       float64
	updateErr    error
	renderErr    error
}

func (m *mockFrame) Update(dt float64) error {
	m.updateCalled++
	m.lastDT = dt
	return m.updateErr
}

func (m *mockFrame) Render() error {
	m.renderCalled++
	return m.renderErr
}

// mockTarget records SetTarget and Flush calls
type mockTarget struct {
	calls []string
}

func (m *mockTarget) SetTarget(*ebiten.Image) { m.calls = append(m.calls, "target") }
func (m *mockTarget) Flush()                  { m.calls = append(m.calls, "flush") }

type mockPainter struct {
	painted int
}

func (m *mockPainter) Paint(*ebiten.Image) { m.painted++ }

func TestNew(t *testing.T) {
	g := New(&mockFrame{}, nil, nil, 320, 240)
	assert.NotNil(t, g)
	assert.Equal(t, 0, g.Frames())
}

func TestGame_Update_DelegatesToFrame(t *testing.T) {
	f := &mockFrame{}
	g := New(f, nil, nil, 320, 240)

	err := g.Update()
	assert.NoError(t, err)
	assert.Equal(t, 1, f.updateCalled, "Update should delegate to frame")
	assert.InDelta(t, 1.0/60.0, f.lastDT, 1e-9)
	assert.Equal(t, 1, g.Frames())
}

func TestGame_SetDT(t *testing.T) {
	f := &mockFrame{}
	g := New(f, nil, nil, 320, 240)
	g.SetDT(0.5)

	require.NoError(t, g.Update())
	assert.Equal(t, 0.5, f.lastDT)
}

func TestGame_Update_PollsInput(t *testing.T) {
	src := &input.Fixed{State: input.State{CursorX: 3, CursorY: 4, Click: true}}
	g := New(&mockFrame{}, nil, src, 320, 240)

	var got []input.State
	g.OnInput = func(s input.State) { got = append(got, s) }

	require.NoError(t, g.Update())
	require.NoError(t, g.Update())
	assert.Equal(t, []input.State{src.State, src.State}, got)
}

func TestGame_Draw_RendersIntoTarget(t *testing.T) {
	f := &mockFrame{}
	tgt := &mockTarget{}
	p1, p2 := &mockPainter{}, &mockPainter{}
	g := New(f, tgt, nil, 320, 240)
	g.AddPainter(p1)
	g.AddPainter(p2)

	g.Draw(nil)

	assert.Equal(t, 1, f.renderCalled, "Draw should render the frame")
	assert.Equal(t, []string{"target", "flush"}, tgt.calls)
	assert.Equal(t, 1, p1.painted)
	assert.Equal(t, 1, p2.painted)
}

func TestGame_RenderErrorEndsGame(t *testing.T) {
	f := &mockFrame{renderErr: assert.AnError}
	tgt := &mockTarget{}
	p := &mockPainter{}
	g := New(f, tgt, nil, 320, 240)
	g.AddPainter(p)

	g.Draw(nil)
	assert.Equal(t, []string{"target"}, tgt.calls, "no flush after a failed render")
	assert.Equal(t, 0, p.painted)

	err := g.Update()
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, f.updateCalled)
}

func TestGame_Layout(t *testing.T) {
	g := New(&mockFrame{}, nil, nil, 320, 240)

	w, h := g.Layout(640, 480)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestGame_UpdateError(t *testing.T) {
	f := &mockFrame{updateErr: assert.AnError}
	g := New(f, nil, nil, 320, 240)

	err := g.Update()
	assert.Error(t, err, "Error should propagate from frame")
}

func TestLabels_Collect(t *testing.T) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(fonts.PressStart2P_ttf))
	require.NoError(t, err)

	s := scene.New()
	font := s.NewFont(src, 8)

	rootText := s.NewText("scene", font)
	rt, err := s.Text(rootText)
	require.NoError(t, err)
	rt.SetPosition(mgl32.Vec3{4, 6, 0})

	shown := s.NewOverlay(1)
	hidden := s.NewOverlay(0)
	hud := s.NewText("hud", font)
	require.NoError(t, s.SetParent(hud, shown))
	secret := s.NewText("secret", font)
	require.NoError(t, s.SetParent(secret, hidden))
	ho, err := s.Overlay(hidden)
	require.NoError(t, err)
	ho.Visible = false

	s.NewText("", font)
	s.NewText("no font", s.DefaultMaterial())

	labels := NewLabels(s).Collect()
	require.Len(t, labels, 2)
	assert.Equal(t, "scene", labels[0].Text.Content)
	assert.Equal(t, 4.0, labels[0].X)
	assert.Equal(t, 6.0, labels[0].Y)
	assert.Equal(t, "hud", labels[1].Text.Content)
	assert.NotNil(t, labels[1].Face)
}
