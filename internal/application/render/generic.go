package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/material"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx"
	"github.com/younwookim/scenecore/internal/infrastructure/logging"
)

// fallback is drawn for meshes whose material no longer exists.
var fallback = material.New(handle.None)

// Generic draws the scene tree and then every visible overlay using each
// mesh's material technique for Scheme.
type Generic struct {
	Scheme string
}

// NewGeneric creates a generic renderer for scheme. An empty scheme selects
// material.DefaultScheme.
func NewGeneric(scheme string) *Generic {
	if scheme == "" {
		scheme = material.DefaultScheme
	}
	return &Generic{Scheme: scheme}
}

// OnStartRender clears the viewport to its background, or to the scene clear
// color when the viewport's is fully transparent.
func (g *Generic) OnStartRender(s *scene.Scene) error {
	p := s.CurrentPass()
	if p == nil {
		return ErrNoPass
	}
	c := p.Viewport.Background
	if c.A == 0 {
		c = s.ClearColor()
	}
	s.Backend().Clear(gfx.ClearColor|gfx.ClearDepth, c)
	return nil
}

// Render draws the scene background layers, then the scene tree and overlays.
func (g *Generic) Render(s *scene.Scene) error {
	p := s.CurrentPass()
	if p == nil {
		return ErrNoPass
	}
	lights, err := g.lightColors(s)
	if err != nil {
		return err
	}
	if err := g.drawBackground(s); err != nil {
		return err
	}
	err = drawLayers(s, p.Viewport, func(m *object.Mesh, projection mgl32.Mat4) error {
		return g.drawMesh(s, p, m, projection, lights)
	})
	s.Backend().SetOptions(p.Options)
	return err
}

// drawBackground draws each layer without depth so the scene tree covers it.
// Layers whose texture was deleted are skipped.
func (g *Generic) drawBackground(s *scene.Scene) error {
	bg := s.Background()
	if bg.LayerCount() == 0 {
		return nil
	}
	b := s.Backend()
	if err := b.UseProgram(gfx.Program{Name: gfx.ProgramUnlit}); err != nil {
		return err
	}
	b.SetOptions(gfx.Options{Blend: true})
	b.DisableAttribute(gfx.AttribNormal)
	b.DisableAttribute(gfx.AttribColor)
	defer b.BindTexture(0, nil)

	for i, l := range bg.Layers() {
		tex, err := s.Texture(l.Texture)
		if err != nil {
			logging.For("render").Debug("background layer texture missing", "layer", i, logging.Handle(l.Texture))
			continue
		}
		verts := &l.Quad.Vertices
		b.BindTexture(0, tex.Image)
		b.SetUniform(gfx.UniformColor, mgl32.Vec4{1, 1, 1, 1})
		b.SetUniform(gfx.UniformUVOffset, l.Offset)
		b.SetUniform(gfx.UniformMVP, bg.Projection(l).Mul4(bg.Model(l)))
		b.BindAttribute(gfx.AttribPosition, 3, flatten3(verts.Positions))
		b.BindAttribute(gfx.AttribTexCoord, 2, flatten2(verts.TexCoords))
		if err := submit(b, l.Quad, verts.Len()); err != nil {
			return fmt.Errorf("background layer %d: %w", i, err)
		}
	}
	return nil
}

func (g *Generic) lightColors(s *scene.Scene) ([]mgl32.Vec4, error) {
	hs := s.Lights()
	out := make([]mgl32.Vec4, 0, len(hs))
	for _, h := range hs {
		l, err := s.Light(h)
		if err != nil {
			return nil, err
		}
		out = append(out, gfx.ColorVec(l.Diffuse))
	}
	return out, nil
}

func (g *Generic) technique(s *scene.Scene, m *object.Mesh) (*material.Technique, bool) {
	mat, err := s.Material(m.Material)
	if err != nil {
		mat = fallback
	}
	if !mat.HasTechnique(g.Scheme) {
		return nil, false
	}
	t, err := mat.Technique(g.Scheme)
	return t, err == nil
}

func (g *Generic) drawMesh(s *scene.Scene, rp *scene.RenderPass, m *object.Mesh, projection mgl32.Mat4, lights []mgl32.Vec4) error {
	t, ok := g.technique(s, m)
	if !ok {
		logging.For("render").Debug("mesh has no technique for scheme", logging.Handle(m.Handle()), "scheme", g.Scheme)
		return nil
	}
	verts, err := s.MeshVertices(m.Handle())
	if err != nil {
		return err
	}
	world, err := m.WorldTransform(s)
	if err != nil {
		return err
	}
	mvp := projection.Mul4(world)

	b := s.Backend()
	for i, pass := range t.Passes() {
		if err := g.bindPass(s, b, rp, pass); err != nil {
			return fmt.Errorf("mesh %s pass %d: %w", m.Handle(), i, err)
		}
		b.SetUniform(gfx.UniformMVP, mvp)
		b.BindAttribute(gfx.AttribPosition, 3, flatten3(verts.Positions))
		bindOptional(b, gfx.AttribNormal, 3, flatten3(verts.Normals))
		bindOptional(b, gfx.AttribTexCoord, 2, flatten2(verts.TexCoords))
		bindOptional(b, gfx.AttribColor, 4, flatten4(verts.Colors))

		err := g.drawPass(b, m, pass, verts.Len(), lights)
		for unit := range pass.TextureUnits {
			b.BindTexture(unit, nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *Generic) drawPass(b gfx.Backend, m *object.Mesh, pass *material.Pass, vertexCount int, lights []mgl32.Vec4) error {
	if pass.Iteration == material.Once {
		return submit(b, m, vertexCount)
	}
	for k := 0; k < pass.Iterations(len(lights)); k++ {
		b.SetUniform(gfx.UniformLightColor, lights[k])
		if err := submit(b, m, vertexCount); err != nil {
			return err
		}
	}
	return nil
}

// program returns the pass's shader program. A pass without one, or whose
// program was deleted, uses the builtin generic program.
func program(s *scene.Scene, shader handle.Handle) gfx.Program {
	if shader.IsNone() {
		return gfx.Program{Name: gfx.ProgramGeneric}
	}
	p, err := s.Program(shader)
	if err != nil {
		logging.For("render").Warn("shader program missing, using generic", logging.Handle(shader))
		return gfx.Program{Name: gfx.ProgramGeneric}
	}
	return gfx.Program{Name: p.Name, Vertex: p.VertexSource, Fragment: p.FragmentSource}
}

func (g *Generic) bindPass(s *scene.Scene, b gfx.Backend, rp *scene.RenderPass, pass *material.Pass) error {
	if err := b.UseProgram(program(s, pass.Shader)); err != nil {
		return err
	}
	b.SetOptions(gfx.Options{
		DepthTest:  rp.Options.DepthTest && pass.DepthTest,
		DepthWrite: rp.Options.DepthWrite && pass.DepthWrite,
		Blend:      rp.Options.Blend || pass.Blend,
	})
	b.SetUniform(gfx.UniformDiffuse, gfx.ColorVec(pass.Diffuse))
	b.SetUniform(gfx.UniformAmbient, gfx.ColorVec(pass.Ambient))
	b.SetUniform("specular", gfx.ColorVec(pass.Specular))
	b.SetUniform("shininess", pass.Shininess)

	for unit := range pass.TextureUnits {
		tex, err := s.Texture(pass.TextureUnits[unit].Current())
		if err != nil {
			b.BindTexture(unit, nil)
			continue
		}
		b.BindTexture(unit, tex.Image)
	}
	return nil
}

var (
	_ scene.Renderer      = (*Generic)(nil)
	_ scene.StartRenderer = (*Generic)(nil)
)
