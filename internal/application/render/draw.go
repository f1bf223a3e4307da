// Package render provides the renderer strategies run by scene render passes.
package render

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/domain/viewport"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
)

// ErrNoPass is returned when a renderer hook runs outside Scene.Render.
var ErrNoPass = errors.New("renderer called outside a render pass")

func primitive(a object.Arrangement) (gfx.Primitive, error) {
	switch a {
	case object.Triangles:
		return gfx.PrimTriangles, nil
	case object.TriangleFan:
		return gfx.PrimTriangleFan, nil
	case object.TriangleStrip:
		return gfx.PrimTriangleStrip, nil
	case object.Points:
		return gfx.PrimPoints, nil
	case object.Lines:
		return gfx.PrimLines, nil
	case object.LineStrip:
		return gfx.PrimLineStrip, nil
	default:
		return 0, fmt.Errorf("arrangement %s: %w", a, gfx.ErrUnsupportedOp)
	}
}

func flatten3(v []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

func flatten2(v []mgl32.Vec2) []float32 {
	out := make([]float32, 0, len(v)*2)
	for _, p := range v {
		out = append(out, p[0], p[1])
	}
	return out
}

func flatten4(v []mgl32.Vec4) []float32 {
	out := make([]float32, 0, len(v)*4)
	for _, p := range v {
		out = append(out, p[0], p[1], p[2], p[3])
	}
	return out
}

// bindOptional binds an attribute when present and disables it otherwise.
func bindOptional(b gfx.Backend, name string, components int, data []float32) {
	if len(data) == 0 {
		b.DisableAttribute(name)
		return
	}
	b.BindAttribute(name, components, data)
}

// submit draws indexed geometry, or the whole vertex range when the mesh has
// no indices.
func submit(b gfx.Backend, m *object.Mesh, vertexCount int) error {
	mode, err := primitive(m.Arrangement)
	if err != nil {
		return err
	}
	if len(m.Indices) > 0 {
		return b.DrawElements(mode, m.Indices)
	}
	return b.DrawArrays(mode, 0, vertexCount)
}

// viewProjection returns projection×view for the active camera. Without a
// camera, positions are taken as clip coordinates.
func viewProjection(s *scene.Scene, vp viewport.Viewport) (mgl32.Mat4, error) {
	cam, err := s.ActiveCamera()
	if errors.Is(err, scene.ErrNoCamera) {
		return mgl32.Ident4(), nil
	}
	if err != nil {
		return mgl32.Ident4(), err
	}
	view, err := cam.View(s)
	if err != nil {
		return mgl32.Ident4(), err
	}
	return cam.Projection(vp.AspectRatio()).Mul4(view), nil
}

// overlayProjection maps overlay pixel coordinates, origin at the viewport's
// top-left, to clip space.
func overlayProjection(vp viewport.Viewport) mgl32.Mat4 {
	w, h := float32(vp.Rect.Dx()), float32(vp.Rect.Dy())
	return mgl32.Ortho(0, w, h, 0, -1, 1)
}

// layer is one traversal root plus the matrix its subtree is drawn with.
type layer struct {
	root       handle.Handle
	overlay    bool
	projection mgl32.Mat4
}

func layers(s *scene.Scene, vp viewport.Viewport) ([]layer, error) {
	vpm, err := viewProjection(s, vp)
	if err != nil {
		return nil, err
	}
	out := []layer{{root: s.Root(), projection: vpm}}
	ortho := overlayProjection(vp)
	for _, h := range s.Overlays() {
		o, err := s.Overlay(h)
		if err != nil {
			return nil, err
		}
		if !o.Visible {
			continue
		}
		out = append(out, layer{root: h, overlay: true, projection: ortho})
	}
	return out, nil
}

// drawLayers traverses every visible layer in order. Depth is cleared before
// each overlay so it draws on top of what came before.
func drawLayers(s *scene.Scene, vp viewport.Viewport, mesh func(m *object.Mesh, projection mgl32.Mat4) error) error {
	ls, err := layers(s, vp)
	if err != nil {
		return err
	}
	b := s.Backend()
	for _, l := range ls {
		if l.overlay {
			b.Clear(gfx.ClearDepth, s.ClearColor())
		}
		proj := l.projection
		err := s.Traverse(l.root, object.Visitor{
			Mesh: func(m *object.Mesh) error {
				if !m.Visible {
					return nil
				}
				return mesh(m, proj)
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
