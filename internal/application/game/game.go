// Package game runs a scene inside the ebiten game loop.
package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/scenecore/internal/infrastructure/input"
	"github.com/younwookim/scenecore/internal/infrastructure/logging"
)

// Frame is stepped once per tick and rendered once per draw.
type Frame interface {
	Update(dt float64) error
	Render() error
}

// Target is the graphics backend side of the screen: it receives the screen
// image before rendering and flushes queued drawing afterwards.
type Target interface {
	SetTarget(img *ebiten.Image)
	Flush()
}

// Painter draws on top of the rendered frame.
type Painter interface {
	Paint(screen *ebiten.Image)
}

// Game implements ebiten.Game for a single Frame.
type Game struct {
	frame    Frame
	target   Target
	input    input.Source
	painters []Painter
	screenW  int
	screenH  int
	dt       float64
	frames   int
	err      error

	// OnInput receives the polled input state before each update.
	OnInput func(s input.State)
}

// New creates a Game that renders frame into target at screenW×screenH.
func New(frame Frame, target Target, src input.Source, screenW, screenH int) *Game {
	return &Game{
		frame:   frame,
		target:  target,
		input:   src,
		screenW: screenW,
		screenH: screenH,
		dt:      1.0 / 60.0, // Default to 60 FPS
	}
}

// AddPainter appends a painter drawn after every render, in order.
func (g *Game) AddPainter(p Painter) {
	g.painters = append(g.painters, p)
}

// Update polls input and advances the frame.
// Implements ebiten.Game interface.
func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	if g.input != nil {
		s := g.input.Poll()
		if g.OnInput != nil {
			g.OnInput(s)
		}
	}
	g.frames++
	return g.frame.Update(g.dt)
}

// Draw renders the frame into screen. A render error ends the game on the
// next Update.
// Implements ebiten.Game interface.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.target != nil {
		g.target.SetTarget(screen)
	}
	if err := g.frame.Render(); err != nil {
		logging.For("game").Error("render failed", "frame", g.frames, "error", err)
		g.err = err
		return
	}
	if g.target != nil {
		g.target.Flush()
	}
	for _, p := range g.painters {
		p.Paint(screen)
	}
}

// Layout returns the game's logical screen dimensions.
// Implements ebiten.Game interface.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// SetDT sets the delta time used for updates.
// Useful for testing or custom frame rates.
func (g *Game) SetDT(dt float64) {
	g.dt = dt
}

// Frames returns the number of updates run so far.
func (g *Game) Frames() int { return g.frames }
