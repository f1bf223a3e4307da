package render

import (
	"fmt"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/viewport"
	"github.com/younwookim/scenecore/internal/infrastructure/config"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
)

// Pipeline holds the renderers built from configuration.
type Pipeline struct {
	Generic []*Generic
	Picking []*Picking

	// OnPick is called once per frame after the last picking pass with the
	// hit of the picking pass whose viewport holds the cursor, or handle.None.
	OnPick func(h handle.Handle)

	picked handle.Handle
}

// LastPicked returns the frame's combined pick.
func (pl *Pipeline) LastPicked() handle.Handle { return pl.picked }

// combinePicks takes the first picking pass that covered the cursor.
func (pl *Pipeline) combinePicks() {
	pl.picked = handle.None
	for _, p := range pl.Picking {
		if p.Covered() {
			pl.picked = p.LastPicked()
			break
		}
	}
	if pl.OnPick != nil {
		pl.OnPick(pl.picked)
	}
}

// Configure replaces the scene's passes with the ones listed in cfg, in
// order. Each picking entry gets its own picking renderer so split viewports
// keep separate color tables. Picking entries are ignored when picking is
// disabled.
func Configure(s *scene.Scene, cfg *config.EngineConfig) (*Pipeline, error) {
	if err := s.ClearPasses(); err != nil {
		return nil, err
	}
	w, h := cfg.Display.ScreenWidth, cfg.Display.ScreenHeight

	pl := &Pipeline{}
	for i, pc := range cfg.Render.Passes {
		preset, err := viewport.ParsePreset(pc.Viewport)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", i, err)
		}
		vp := viewport.New(preset, w, h)
		if pc.Aspect != "" {
			if vp.Aspect, err = viewport.ParseAspect(pc.Aspect); err != nil {
				return nil, fmt.Errorf("pass %d: %w", i, err)
			}
		}
		if pc.Background != "" {
			if vp.Background, err = config.ParseColor(pc.Background); err != nil {
				return nil, fmt.Errorf("pass %d: %w", i, err)
			}
		} else {
			vp.Background.A = 0
		}
		opts := gfx.Options{DepthTest: pc.DepthTest, DepthWrite: pc.DepthWrite, Blend: pc.Blend}

		var r scene.Renderer
		switch pc.Renderer {
		case config.RendererGeneric:
			g := NewGeneric(pc.Scheme)
			pl.Generic = append(pl.Generic, g)
			r = g
		case config.RendererPicking:
			if !cfg.Picking.Enabled {
				continue
			}
			p := NewPicking()
			p.LogPicks = cfg.Picking.LogPicks
			pl.Picking = append(pl.Picking, p)
			r = p
		default:
			return nil, fmt.Errorf("pass %d: %q: %w", i, pc.Renderer, config.ErrUnknownRenderer)
		}
		if err := s.AddPassWithOptions(r, vp, opts); err != nil {
			return nil, err
		}
	}

	if n := len(pl.Picking); n > 0 {
		last := pl.Picking[n-1]
		s.OnPassFinished(func(ev scene.PassEvent) {
			if p, ok := ev.Pass.Renderer.(*Picking); ok && p == last {
				pl.combinePicks()
			}
		})
	}
	return pl, nil
}
