// Command viewer opens a window on a demo scene and reports the mesh under
// the cursor using the picking pass.
package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/scenecore/internal/application/game"
	"github.com/younwookim/scenecore/internal/application/render"
	"github.com/younwookim/scenecore/internal/application/replay"
	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/infrastructure/config"
	"github.com/younwookim/scenecore/internal/infrastructure/gfx/ebitengfx"
	"github.com/younwookim/scenecore/internal/infrastructure/input"
	"github.com/younwookim/scenecore/internal/infrastructure/loader"
	"github.com/younwookim/scenecore/internal/infrastructure/logging"
	"github.com/younwookim/scenecore/internal/infrastructure/partition"
)

// pointer is an input source that can also report the cursor to the scene.
type pointer interface {
	input.Source
	scene.Window
}

func main() {
	// Parse command line flags
	configDir := flag.String("config", "", "Load engine.json from this directory instead of the embedded one")
	recordFlag := flag.String("record", "", "Record input to file (e.g., -record replay.json)")
	replayFlag := flag.String("replay", "", "Drive the cursor from a recorded file")
	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.Logging.Level),
	})))

	backend, err := ebitengfx.New()
	if err != nil {
		log.Fatalf("Failed to create backend: %v", err)
	}

	var (
		src      pointer = input.NewEbiten()
		replayer *replay.Replayer
		recorder *replay.Recorder
	)
	switch {
	case *replayFlag != "":
		data, err := replay.LoadReplay(*replayFlag)
		if err != nil {
			log.Fatalf("Failed to load replay: %v", err)
		}
		replayer = replay.NewReplayer(*data)
		src = replayer
		log.Printf("Replaying %s (%d frames)", *replayFlag, replayer.TotalFrames())
	case *recordFlag != "":
		recorder = replay.NewRecorder(src, "demo", cfg.Display.ScreenWidth, cfg.Display.ScreenHeight)
		src = recorder
		log.Printf("Recording enabled: %s", *recordFlag)
	}

	bg, err := config.ParseColor(cfg.Render.Background)
	if err != nil {
		bg = defaultBackground
	}
	hud := newHUD()
	s := scene.New(
		scene.WithBackend(backend),
		scene.WithPartitioner(partition.NewRTree()),
		scene.WithWindow(src),
		scene.WithLoaders(loader.NewRegistry(os.DirFS(cfg.Assets.Root))),
		scene.WithClearColor(bg),
		scene.WithUI(hud),
	)

	d, err := buildDemo(s, hud)
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}
	loadAssets(s, cfg.Assets)

	pl, err := render.Configure(s, cfg)
	if err != nil {
		log.Fatalf("Failed to configure passes: %v", err)
	}
	pl.OnPick = d.highlight

	v := &viewer{scene: s, demo: d, replayer: replayer}
	g := game.New(v, backend, src, cfg.Display.ScreenWidth, cfg.Display.ScreenHeight)
	g.SetDT(1.0 / float64(cfg.Display.Framerate))
	g.AddPainter(game.NewLabels(s))

	// Set up ebiten
	ebiten.SetWindowSize(cfg.Display.ScreenWidth*cfg.Display.Scale,
		cfg.Display.ScreenHeight*cfg.Display.Scale)
	ebiten.SetWindowTitle(cfg.Display.Title)
	ebiten.SetTPS(cfg.Display.Framerate)

	// Run game
	runErr := ebiten.RunGame(g)
	if recorder != nil {
		saveRecording(recorder, *recordFlag)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}

func loadConfig(dir string) (*config.EngineConfig, error) {
	if dir != "" {
		return config.NewLoader(dir).LoadEngine()
	}
	fsys, err := fs.Sub(configFS, "configs")
	if err != nil {
		return nil, err
	}
	return config.NewFSLoader(fsys, "configs").LoadEngine()
}

// loadAssets adds the optional files named in the config. Failures are
// logged and skipped.
func loadAssets(s *scene.Scene, a config.AssetsConfig) {
	if a.Mesh != "" {
		if _, err := s.NewMeshFromFile(a.Mesh, ""); err != nil {
			logging.For("viewer").Warn("mesh asset skipped", "file", a.Mesh, "error", err)
		}
	}
	if a.Texture != "" {
		if _, err := s.NewTextureFromFile(a.Texture, ""); err != nil {
			logging.For("viewer").Warn("texture asset skipped", "file", a.Texture, "error", err)
		}
	}
	if a.Font != "" {
		if _, err := s.NewFontFromFile(a.Font, "", 0); err != nil {
			logging.For("viewer").Warn("font asset skipped", "file", a.Font, "error", err)
		}
	}
	for _, lc := range a.Background {
		layer, err := s.Background().AddLayerFromFile(lc.Image)
		if err != nil {
			logging.For("viewer").Warn("background layer skipped", "file", lc.Image, "error", err)
			continue
		}
		layer.Velocity = mgl32.Vec2{lc.ScrollX, lc.ScrollY}
	}
}

// saveRecording saves the current recording to file
func saveRecording(r *replay.Recorder, filename string) {
	if filename == "" {
		filename = replay.GenerateFilename()
	}
	if err := r.Save(filename); err != nil {
		if errors.Is(err, replay.ErrNoFrames) {
			return
		}
		log.Printf("Failed to save recording: %v", err)
		return
	}
	log.Printf("Recording saved: %s (%d frames)", filename, r.FrameCount())
}

// viewer steps the demo animation and the scene each tick.
type viewer struct {
	scene    *scene.Scene
	demo     *demo
	replayer *replay.Replayer
}

func (v *viewer) Update(dt float64) error {
	if v.replayer != nil && v.replayer.Done() {
		return ebiten.Termination
	}
	if err := v.demo.animate(dt); err != nil {
		return err
	}
	return v.scene.Update(dt)
}

func (v *viewer) Render() error {
	return v.scene.Render()
}
