package scene

import (
	"fmt"
	"image"
	"image/color"

	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
	"github.com/younwookim/scenecore/internal/infrastructure/partition"
)

// mockBackend records calls in order
type mockBackend struct {
	w, h      int
	calls     []string
	viewports []image.Rectangle
	options   []gfx.Options
}

func newMockBackend(w, h int) *mockBackend { return &mockBackend{w: w, h: h} }

func (m *mockBackend) Size() (int, int) { return m.w, m.h }
func (m *mockBackend) SetViewport(r image.Rectangle) {
	m.calls = append(m.calls, "viewport")
	m.viewports = append(m.viewports, r)
}
func (m *mockBackend) SetOptions(o gfx.Options) {
	m.calls = append(m.calls, "options")
	m.options = append(m.options, o)
}
func (m *mockBackend) Clear(gfx.ClearMask, color.RGBA) { m.calls = append(m.calls, "clear") }
func (m *mockBackend) UseProgram(p gfx.Program) error {
	m.calls = append(m.calls, "program:"+p.Name)
	return nil
}
func (m *mockBackend) SetUniform(string, any)               {}
func (m *mockBackend) BindAttribute(string, int, []float32) {}
func (m *mockBackend) DisableAttribute(string)              {}
func (m *mockBackend) BindTexture(int, image.Image)         {}
func (m *mockBackend) DrawElements(mode gfx.Primitive, _ []uint16) error {
	m.calls = append(m.calls, fmt.Sprintf("draw:%d", mode))
	return nil
}
func (m *mockBackend) DrawArrays(mode gfx.Primitive, _, _ int) error {
	m.calls = append(m.calls, fmt.Sprintf("draw:%d", mode))
	return nil
}
func (m *mockBackend) ReadPixel(int, int) color.RGBA { return color.RGBA{} }

// mockPartitioner tracks indexed handles
type mockPartitioner struct {
	boxes   map[handle.Handle]partition.Box
	added   int
	removed int
}

func newMockPartitioner() *mockPartitioner {
	return &mockPartitioner{boxes: make(map[handle.Handle]partition.Box)}
}

func (m *mockPartitioner) Add(h handle.Handle, b partition.Box) {
	m.added++
	m.boxes[h] = b
}

func (m *mockPartitioner) Remove(h handle.Handle) bool {
	if _, ok := m.boxes[h]; !ok {
		return false
	}
	m.removed++
	delete(m.boxes, h)
	return true
}

// mockRenderer logs its hooks into a shared journal
type mockRenderer struct {
	name      string
	journal   *[]string
	renderErr error
	onRender  func(s *Scene)
}

func (m *mockRenderer) OnStartRender(*Scene) error {
	*m.journal = append(*m.journal, m.name+":start")
	return nil
}

func (m *mockRenderer) Render(s *Scene) error {
	*m.journal = append(*m.journal, m.name+":render")
	if m.onRender != nil {
		m.onRender(s)
	}
	return m.renderErr
}

func (m *mockRenderer) OnFinishRender(*Scene) error {
	*m.journal = append(*m.journal, m.name+":finish")
	return nil
}

// plainRenderer implements only Render
type plainRenderer struct{ calls int }

func (p *plainRenderer) Render(*Scene) error {
	p.calls++
	return nil
}

type mockUI struct {
	dt  float64
	err error
}

func (m *mockUI) Update(dt float64) error {
	m.dt += dt
	return m.err
}
