package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/infrastructure/logging"
)

// Label is a text node ready to draw. X and Y are screen pixels.
type Label struct {
	Text *object.Text
	Face text.Face
	X, Y float64
}

// Labels paints the scene's text nodes. Text positions are screen pixels,
// taken from the node's world position. Texts under hidden overlays are
// skipped.
type Labels struct {
	scene *scene.Scene
}

// NewLabels creates a painter for the text nodes of s.
func NewLabels(s *scene.Scene) *Labels {
	return &Labels{scene: s}
}

// Collect returns every drawable label: scene-tree texts first, then overlay
// texts in z order. Texts without a loaded font are skipped.
func (l *Labels) Collect() []Label {
	roots := []handle.Handle{l.scene.Root()}
	for _, h := range l.scene.Overlays() {
		o, err := l.scene.Overlay(h)
		if err != nil || !o.Visible {
			continue
		}
		roots = append(roots, h)
	}

	var out []Label
	for _, root := range roots {
		err := l.scene.Traverse(root, object.Visitor{
			Text: func(t *object.Text) error {
				lb, ok := l.label(t)
				if ok {
					out = append(out, lb)
				}
				return nil
			},
		})
		if err != nil {
			logging.For("game").Warn("label traversal failed", logging.Handle(root), "error", err)
		}
	}
	return out
}

func (l *Labels) label(t *object.Text) (Label, bool) {
	if t.Content == "" {
		return Label{}, false
	}
	f, err := l.scene.Font(t.Font)
	if err != nil {
		return Label{}, false
	}
	face := f.Face()
	if face == nil {
		return Label{}, false
	}
	pos, err := t.WorldPosition(l.scene)
	if err != nil {
		return Label{}, false
	}
	return Label{Text: t, Face: face, X: float64(pos[0]), Y: float64(pos[1])}, true
}

// Paint draws every collected label onto screen.
func (l *Labels) Paint(screen *ebiten.Image) {
	for _, lb := range l.Collect() {
		op := &text.DrawOptions{}
		op.GeoM.Translate(lb.X, lb.Y)
		op.ColorScale.ScaleWithColor(lb.Text.Color)
		text.Draw(screen, lb.Text.Content, lb.Face, op)
	}
}
