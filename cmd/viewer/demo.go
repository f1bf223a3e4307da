package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/domain/handle"
	"github.com/younwookim/scenecore/internal/domain/material"
	"github.com/younwookim/scenecore/internal/domain/object"
	"github.com/younwookim/scenecore/internal/infrastructure/logging"
)

var (
	defaultBackground = color.RGBA{29, 35, 48, 255}
	colorHighlight    = color.RGBA{255, 215, 0, 255}
	colorPanel        = color.RGBA{12, 14, 20, 220}
	colorMarker       = color.RGBA{100, 200, 100, 255}
	colorLight        = color.RGBA{255, 244, 230, 255}
	colorSkyTop       = color.RGBA{8, 10, 22, 255}
	colorStar         = color.RGBA{200, 210, 255, 255}

	cubeColors = []color.RGBA{
		{200, 50, 50, 255},
		{100, 200, 100, 255},
		{80, 120, 220, 255},
		{220, 160, 60, 255},
		{160, 90, 200, 255},
	}
)

const (
	cubeSpacing = 2.2
	spinSpeed   = 0.8 // radians per second

	skyWidth, skyHeight = 160, 90
	skyDrift            = 0.01 // texture widths per second
)

// demo is the scene the viewer shows: a row of cubes, a camera, a light and
// a HUD overlay.
type demo struct {
	scene        *scene.Scene
	hud          *hud
	cubes        []handle.Handle
	highlightMat handle.Handle

	picked   handle.Handle
	restored handle.Handle // material the picked mesh had before highlighting
}

func buildDemo(s *scene.Scene, h *hud) (*demo, error) {
	d := &demo{scene: s, hud: h}

	cam, err := s.Camera(s.NewCamera())
	if err != nil {
		return nil, err
	}
	cam.SetPosition(mgl32.Vec3{0, 3, 10})
	cam.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	lh := s.NewLight(object.Directional)
	light, err := s.Light(lh)
	if err != nil {
		return nil, err
	}
	light.Diffuse = colorLight
	light.Rotate(mgl32.DegToRad(-45), mgl32.Vec3{1, 0, 0})

	if d.highlightMat, err = d.solidMaterial(colorHighlight); err != nil {
		return nil, err
	}

	offset := -cubeSpacing * float32(len(cubeColors)-1) / 2
	for i, c := range cubeColors {
		mh, err := d.solidMaterial(c)
		if err != nil {
			return nil, err
		}
		ch := s.NewMesh()
		cube, err := s.Mesh(ch)
		if err != nil {
			return nil, err
		}
		cube.Name = fmt.Sprintf("cube-%d", i+1)
		cube.NewCube(1.2)
		cube.Material = mh
		cube.SetPosition(mgl32.Vec3{offset + cubeSpacing*float32(i), 0, 0})
		if err := s.Reindex(ch); err != nil {
			return nil, err
		}
		d.cubes = append(d.cubes, ch)
	}

	if err := d.buildSky(); err != nil {
		return nil, err
	}
	if err := d.buildHUD(); err != nil {
		return nil, err
	}
	return d, nil
}

// buildSky adds a drifting starfield as the back background layer.
func (d *demo) buildSky() error {
	img := image.NewRGBA(image.Rect(0, 0, skyWidth, skyHeight))
	for y := 0; y < skyHeight; y++ {
		t := float64(y) / (skyHeight - 1)
		row := color.RGBA{
			R: lerp(colorSkyTop.R, defaultBackground.R, t),
			G: lerp(colorSkyTop.G, defaultBackground.G, t),
			B: lerp(colorSkyTop.B, defaultBackground.B, t),
			A: 255,
		}
		for x := 0; x < skyWidth; x++ {
			c := row
			if (x*7+y*13)%97 == 0 {
				c = colorStar
			}
			img.SetRGBA(x, y, c)
		}
	}
	layer, err := d.scene.Background().AddLayer(d.scene.NewTexture(img))
	if err != nil {
		return err
	}
	layer.Velocity = mgl32.Vec2{skyDrift, 0}
	return nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// solidMaterial clones the default material and lights it once per light.
func (d *demo) solidMaterial(c color.RGBA) (handle.Handle, error) {
	mh, err := d.scene.CloneMaterial(d.scene.DefaultMaterial())
	if err != nil {
		return handle.None, err
	}
	mat, err := d.scene.Material(mh)
	if err != nil {
		return handle.None, err
	}
	pass, err := mat.DefaultTechnique().Pass(0)
	if err != nil {
		return handle.None, err
	}
	pass.Diffuse = c
	pass.SetIteration(material.OncePerLight, 1)
	return mh, nil
}

func (d *demo) buildHUD() error {
	s := d.scene
	src, err := text.NewGoTextFaceSource(bytes.NewReader(fonts.PressStart2P_ttf))
	if err != nil {
		return err
	}
	font := s.NewFont(src, 8)
	overlay := s.NewOverlay(0)

	panelMat, err := s.CloneMaterial(s.DefaultMaterial())
	if err != nil {
		return err
	}
	mat, err := s.Material(panelMat)
	if err != nil {
		return err
	}
	pass, err := mat.DefaultTechnique().Pass(0)
	if err != nil {
		return err
	}
	pass.Diffuse = colorPanel
	pass.Blend = true

	ph := s.NewMesh()
	panel, err := s.Mesh(ph)
	if err != nil {
		return err
	}
	panel.Name = "hud-panel"
	panel.NewRectangle(220, 36)
	panel.SetPosition(mgl32.Vec3{118, 26, 0})
	panel.Material = panelMat
	panel.Pickable = false
	if err := s.SetParent(ph, overlay); err != nil {
		return err
	}

	markerMat, err := d.solidMaterial(colorMarker)
	if err != nil {
		return err
	}
	mh := s.NewMesh()
	marker, err := s.Mesh(mh)
	if err != nil {
		return err
	}
	marker.Name = "hud-marker"
	marker.NewRectangle(10, 10)
	marker.SetPosition(mgl32.Vec3{-98, 0, 0})
	marker.Material = markerMat
	if err := s.SetParent(mh, ph); err != nil {
		return err
	}

	title := s.NewText("scenecore viewer", font)
	status := s.NewText("", font)
	for i, th := range []handle.Handle{title, status} {
		t, err := s.Text(th)
		if err != nil {
			return err
		}
		t.SetPosition(mgl32.Vec3{32, float32(12 + 14*i), 0})
		if err := s.SetParent(th, overlay); err != nil {
			return err
		}
	}
	d.hud.attach(s, status)
	return nil
}

// animate spins the cubes and refreshes their partitioner bounds.
func (d *demo) animate(dt float64) error {
	angle := float32(dt) * spinSpeed
	for i, h := range d.cubes {
		cube, err := d.scene.Mesh(h)
		if err != nil {
			continue
		}
		axis := mgl32.Vec3{0, 1, 0}
		if i%2 == 1 {
			axis = mgl32.Vec3{1, 1, 0}.Normalize()
		}
		cube.Rotate(angle, axis)
		if err := d.scene.Reindex(h); err != nil {
			return fmt.Errorf("animate %s: %w", cube.Name, err)
		}
	}
	return nil
}

// highlight swaps the picked mesh to the highlight material and restores the
// previous one.
func (d *demo) highlight(h handle.Handle) {
	if h == d.picked {
		return
	}
	if prev, err := d.scene.Mesh(d.picked); err == nil {
		prev.Material = d.restored
	}
	d.picked, d.restored = handle.None, handle.None
	d.hud.setPicked("")

	m, err := d.scene.Mesh(h)
	if err != nil {
		return
	}
	d.picked, d.restored = h, m.Material
	m.Material = d.highlightMat
	d.hud.setPicked(m.Name)
	logging.For("viewer").Debug("highlighted", "mesh", m.Name, logging.Handle(h))
}

// hud keeps the status text in sync with the current pick.
type hud struct {
	scene  *scene.Scene
	status handle.Handle
	picked string
	frames int
	time   float64
	fps    float64
}

func newHUD() *hud { return &hud{} }

func (h *hud) attach(s *scene.Scene, status handle.Handle) {
	h.scene = s
	h.status = status
}

func (h *hud) setPicked(name string) { h.picked = name }

// Update implements scene.UI.
func (h *hud) Update(dt float64) error {
	if h.scene == nil {
		return nil
	}
	h.frames++
	h.time += dt
	if h.time >= 1 {
		h.fps = float64(h.frames) / h.time
		h.frames, h.time = 0, 0
	}
	t, err := h.scene.Text(h.status)
	if err != nil {
		return err
	}
	picked := h.picked
	if picked == "" {
		picked = "-"
	}
	t.Content = fmt.Sprintf("picked: %s  %.0f fps", picked, h.fps)
	return nil
}
