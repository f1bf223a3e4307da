// Package input samples pointer state once per frame.
package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// State holds the pointer state for one frame
type State struct {
	CursorX    int
	CursorY    int
	Click      bool
	RightClick bool
}

// Source produces one State per frame.
type Source interface {
	Poll() State
}

// Ebiten reads input from the running ebiten game.
type Ebiten struct {
	last State
}

// NewEbiten creates an ebiten input source
func NewEbiten() *Ebiten {
	return &Ebiten{}
}

// Poll reads the current input state
func (e *Ebiten) Poll() State {
	mx, my := ebiten.CursorPosition()
	e.last = State{
		CursorX:    mx,
		CursorY:    my,
		Click:      inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		RightClick: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight),
	}
	return e.last
}

// CursorPosition returns the cursor from the last Poll.
func (e *Ebiten) CursorPosition() (int, int) {
	return e.last.CursorX, e.last.CursorY
}

// Fixed is a Source that always reports the same state. Useful for headless
// runs and tests.
type Fixed struct {
	State State
}

func (f *Fixed) Poll() State { return f.State }

func (f *Fixed) CursorPosition() (int, int) { return f.State.CursorX, f.State.CursorY }

var (
	_ Source = (*Ebiten)(nil)
	_ Source = (*Fixed)(nil)
)
