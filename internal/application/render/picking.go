package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/application/state"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
	"github.com/younwookim/scenecore/internal/infrastructure/logging"
)

// channelSteps is the number of values each color channel takes. 255 itself
// is never produced so that white stays free for the background.
const channelSteps = 255

// Sentinel is the picking background. The counter never produces it, so a
// read-back of Sentinel is always a miss.
var Sentinel = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ErrPickNotStarted is returned by Render and OnFinishRender outside a
// started picking pass.
var ErrPickNotStarted = errors.New("picking pass not started")

// PickColor is an identity color in 0..254 per channel.
type PickColor [3]uint8

// Vec4 returns the normalized color bound to the unlit program.
func (c PickColor) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, 1}
}

// Picking renders every pickable mesh in a unique flat color and resolves the
// pixel under the window cursor back to a mesh handle.
//
// Resolving reads one pixel back from the backend, which stalls until all
// queued drawing for the frame has completed. This happens once per frame.
type Picking struct {
	state     state.PickState
	counter   PickColor
	exhausted bool
	lookup    map[PickColor]handle.Handle
	last      handle.Handle
	covered   bool
	reported  handle.Handle

	// OnPick is called after every resolve with the picked handle, which is
	// handle.None on a miss.
	OnPick func(h handle.Handle)
	// LogPicks logs at Info whenever the picked handle changes.
	LogPicks bool
}

// NewPicking creates a picking renderer in the Reset state.
func NewPicking() *Picking {
	return &Picking{
		state:  state.PickReset,
		lookup: make(map[PickColor]handle.Handle),
	}
}

// State returns the current phase of the pick cycle.
func (p *Picking) State() state.PickState { return p.state }

// LastPicked returns the mesh under the cursor at the last resolve, or
// handle.None.
func (p *Picking) LastPicked() handle.Handle { return p.last }

// Covered reports whether the cursor was inside this pass's viewport at the
// last resolve.
func (p *Picking) Covered() bool { return p.covered }

// Assigned returns how many meshes received a color this frame.
func (p *Picking) Assigned() int { return len(p.lookup) }

func (p *Picking) setState(next state.PickState) {
	if !p.state.CanTransition(next) {
		logging.For("picking").Warn("unexpected pick state transition", "from", p.state.String(), "to", next.String())
	}
	p.state = next
}

// OnStartRender clears to the sentinel and resets the counter, the lookup
// table and the last pick.
func (p *Picking) OnStartRender(s *scene.Scene) error {
	if s.CurrentPass() == nil {
		return ErrNoPass
	}
	p.setState(state.PickReset)
	s.Backend().Clear(gfx.ClearColor|gfx.ClearDepth, Sentinel)
	p.counter = PickColor{}
	p.exhausted = false
	clear(p.lookup)
	p.last = handle.None
	p.covered = false
	p.setState(state.PickAccumulating)
	return nil
}

func (p *Picking) Render(s *scene.Scene) error {
	rp := s.CurrentPass()
	if p.state != state.PickAccumulating || rp == nil {
		return ErrPickNotStarted
	}
	b := s.Backend()
	if err := b.UseProgram(gfx.Program{Name: gfx.ProgramUnlit}); err != nil {
		return err
	}
	b.SetOptions(gfx.Options{DepthTest: true, DepthWrite: true})
	b.DisableAttribute(gfx.AttribNormal)
	b.DisableAttribute(gfx.AttribTexCoord)
	b.DisableAttribute(gfx.AttribColor)

	err := drawLayers(s, rp.Viewport, func(m *object.Mesh, projection mgl32.Mat4) error {
		return p.visit(s, m, projection)
	})
	b.SetOptions(rp.Options)
	return err
}

// visit draws one mesh in its identity color. Non-pickable meshes are drawn
// in the sentinel so they still occlude what is behind them.
func (p *Picking) visit(s *scene.Scene, m *object.Mesh, projection mgl32.Mat4) error {
	fill := gfx.ColorVec(Sentinel)
	if m.Pickable {
		h, err := s.MeshHandleOf(m)
		if err != nil {
			return err
		}
		fill = p.assign(h).Vec4()
	}

	verts, err := s.MeshVertices(m.Handle())
	if err != nil {
		return err
	}
	world, err := m.WorldTransform(s)
	if err != nil {
		return err
	}
	b := s.Backend()
	b.SetUniform(gfx.UniformMVP, projection.Mul4(world))
	b.SetUniform(gfx.UniformColor, fill)
	b.BindAttribute(gfx.AttribPosition, 3, flatten3(verts.Positions))
	return submit(b, m, verts.Len())
}

// assign records h under the current counter and advances it with carry from
// blue to green to red. Running out of red is fatal.
func (p *Picking) assign(h handle.Handle) PickColor {
	if p.exhausted {
		panic(fmt.Sprintf("picking: color space exhausted after %d meshes", len(p.lookup)))
	}
	c := p.counter
	p.lookup[c] = h

	p.counter[2]++
	if p.counter[2] == channelSteps {
		p.counter[2] = 0
		p.counter[1]++
		if p.counter[1] == channelSteps {
			p.counter[1] = 0
			p.counter[0]++
			if p.counter[0] == channelSteps {
				p.exhausted = true
			}
		}
	}
	return c
}

// OnFinishRender resolves the pixel under the cursor and clears the target.
func (p *Picking) OnFinishRender(s *scene.Scene) error {
	rp := s.CurrentPass()
	if p.state != state.PickAccumulating || rp == nil {
		return ErrPickNotStarted
	}
	p.last, p.covered = p.resolve(s, rp)
	p.setState(state.PickResolved)
	if p.LogPicks && p.last != p.reported {
		logging.For("picking").Info("pick changed", logging.Handle(p.last), "viewport", rp.Viewport.Preset.String())
	}
	p.reported = p.last

	s.Backend().Clear(gfx.ClearColor|gfx.ClearDepth, s.ClearColor())

	if p.OnPick != nil {
		p.OnPick(p.last)
	}
	return nil
}

// resolve looks up the pixel under the cursor. covered is false when there is
// no window or the cursor lies outside the pass viewport.
func (p *Picking) resolve(s *scene.Scene, rp *scene.RenderPass) (h handle.Handle, covered bool) {
	w := s.Window()
	if w == nil {
		return handle.None, false
	}
	x, y := w.CursorPosition()
	if !rp.Viewport.Contains(x, y) {
		return handle.None, false
	}
	b := s.Backend()
	_, height := b.Size()
	px := b.ReadPixel(x, height-1-y)

	if h, ok := p.lookup[PickColor{px.R, px.G, px.B}]; ok {
		return h, true
	}
	return handle.None, true
}

var (
	_ scene.Renderer       = (*Picking)(nil)
	_ scene.StartRenderer  = (*Picking)(nil)
	_ scene.FinishRenderer = (*Picking)(nil)
)
