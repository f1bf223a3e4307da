package object

import (
	"fmt"

	"github.com/younwookim/scenecore/internal/domain/handle"
)

// Variant is a closed union over the node kinds visited by traversal.
// Exactly the field matching Kind is set.
type Variant struct {
	Kind    handle.Kind
	Mesh    *Mesh
	Camera  *Camera
	Light   *Light
	Text    *Text
	Overlay *Overlay
}

// Visitor receives one callback per traversable kind.
type Visitor struct {
	Mesh    func(*Mesh) error
	Camera  func(*Camera) error
	Light   func(*Light) error
	Text    func(*Text) error
	Overlay func(*Overlay) error
}

// Accept dispatches v to the callback for its kind. Nil callbacks are skipped.
func (v Variant) Accept(vis Visitor) error {
	switch v.Kind {
	case handle.KindMesh:
		if vis.Mesh != nil {
			return vis.Mesh(v.Mesh)
		}
	case handle.KindCamera:
		if vis.Camera != nil {
			return vis.Camera(v.Camera)
		}
	case handle.KindLight:
		if vis.Light != nil {
			return vis.Light(v.Light)
		}
	case handle.KindText:
		if vis.Text != nil {
			return vis.Text(v.Text)
		}
	case handle.KindOverlay:
		if vis.Overlay != nil {
			return vis.Overlay(v.Overlay)
		}
	case handle.KindNone, handle.KindScene, handle.KindMaterial, handle.KindTexture,
		handle.KindProgram, handle.KindFont:
		return fmt.Errorf("%s is not a traversable kind", v.Kind)
	default:
		panic(fmt.Sprintf("object: unhandled kind %d", v.Kind))
	}
	return nil
}
