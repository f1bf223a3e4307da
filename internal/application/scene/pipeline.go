package scene

import (
	"fmt"

	"github.com/younwookim/scenecore/internal/domain/viewport"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
	"github.com/younwookim/scenecore/internal/infrastructure/logging"
)

// Renderer draws the scene for one render pass.
type Renderer interface {
	Render(s *Scene) error
}

// StartRenderer is implemented by renderers that prepare state before Render.
type StartRenderer interface {
	OnStartRender(s *Scene) error
}

// FinishRenderer is implemented by renderers that resolve state after Render.
type FinishRenderer interface {
	OnFinishRender(s *Scene) error
}

// RenderPass pairs a renderer with the viewport and render options it runs
// under.
type RenderPass struct {
	Renderer Renderer
	Viewport viewport.Viewport
	Options  gfx.Options
}

// PassEvent is delivered to pass observers.
type PassEvent struct {
	Index int
	Pass  *RenderPass
}

// AddPass appends a pass with default render options.
func (s *Scene) AddPass(r Renderer, vp viewport.Viewport) error {
	return s.AddPassWithOptions(r, vp, gfx.DefaultOptions())
}

// AddPassWithOptions appends a pass. The list cannot change during Render.
func (s *Scene) AddPassWithOptions(r Renderer, vp viewport.Viewport, o gfx.Options) error {
	if s.rendering {
		return ErrPassesLocked
	}
	s.passes = append(s.passes, RenderPass{Renderer: r, Viewport: vp, Options: o})
	return nil
}

// ClearPasses removes every pass. The list cannot change during Render.
func (s *Scene) ClearPasses() error {
	if s.rendering {
		return ErrPassesLocked
	}
	s.passes = nil
	return nil
}

// Passes returns a copy of the pass list.
func (s *Scene) Passes() []RenderPass {
	out := make([]RenderPass, len(s.passes))
	copy(out, s.passes)
	return out
}

// CurrentPass returns the pass being rendered, or nil outside Render.
func (s *Scene) CurrentPass() *RenderPass {
	if !s.rendering || s.current < 0 {
		return nil
	}
	return &s.passes[s.current]
}

// Rendering reports whether a frame is in progress.
func (s *Scene) Rendering() bool { return s.rendering }

// OnPassStarted registers an observer called after the renderer's own start
// hook.
func (s *Scene) OnPassStarted(fn func(PassEvent)) {
	s.onPassStarted = append(s.onPassStarted, fn)
}

// OnPassFinished registers an observer called after the renderer's own finish
// hook.
func (s *Scene) OnPassFinished(fn func(PassEvent)) {
	s.onPassFinished = append(s.onPassFinished, fn)
}

// Render runs every pass in list order. The first error aborts the frame.
func (s *Scene) Render() error {
	if s.backend == nil {
		return ErrNoBackend
	}
	s.rendering = true
	defer func() {
		s.rendering = false
		s.current = -1
	}()

	w, h := s.backend.Size()
	for i := range s.passes {
		s.current = i
		if err := s.runPass(i, w, h); err != nil {
			return fmt.Errorf("pass %d: %w", i, err)
		}
	}
	return nil
}

func (s *Scene) runPass(i, w, h int) error {
	p := &s.passes[i]
	p.Viewport.Update(w, h)
	s.backend.SetViewport(p.Viewport.Rect)
	s.backend.SetOptions(p.Options)

	ev := PassEvent{Index: i, Pass: p}
	logging.For("scene").Debug("render pass", logging.Pass(i, fmt.Sprintf("%T", p.Renderer), p.Viewport.Preset.String()))

	if st, ok := p.Renderer.(StartRenderer); ok {
		if err := st.OnStartRender(s); err != nil {
			return err
		}
	}
	for _, fn := range s.onPassStarted {
		fn(ev)
	}

	if err := p.Renderer.Render(s); err != nil {
		return err
	}

	if fin, ok := p.Renderer.(FinishRenderer); ok {
		if err := fin.OnFinishRender(s); err != nil {
			return err
		}
	}
	for _, fn := range s.onPassFinished {
		fn(ev)
	}
	return nil
}
