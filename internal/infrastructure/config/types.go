package config

// EngineConfig is the root config for engine.json
type EngineConfig struct {
	Display DisplayConfig `json:"display"`
	Render  RenderConfig  `json:"render"`
	Picking PickingConfig `json:"picking"`
	Logging LoggingConfig `json:"logging"`
	Assets  AssetsConfig  `json:"assets"`
}

type DisplayConfig struct {
	Title        string `json:"title"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Scale        int    `json:"scale"`
	Framerate    int    `json:"framerate"`
}

// Renderer names accepted in pass entries
const (
	RendererGeneric = "generic"
	RendererPicking = "picking"
)

type RenderConfig struct {
	Background string       `json:"background"` // #rrggbb or #rrggbbaa
	Passes     []PassConfig `json:"passes"`
}

// PassConfig describes one entry of the render pass list, in execution order
type PassConfig struct {
	Renderer   string `json:"renderer"`
	Viewport   string `json:"viewport"`
	Scheme     string `json:"scheme,omitempty"`
	Background string `json:"background,omitempty"`
	Aspect     string `json:"aspect,omitempty"` // viewport, 4:3, 16:9 or 16:10
	DepthTest  bool   `json:"depthTest"`
	DepthWrite bool   `json:"depthWrite"`
	Blend      bool   `json:"blend"`
}

type PickingConfig struct {
	Enabled  bool `json:"enabled"`
	LogPicks bool `json:"logPicks"`
}

type LoggingConfig struct {
	Level string `json:"level"`
}

// AssetsConfig names files relative to Root that the viewer loads at startup
type AssetsConfig struct {
	Root       string                  `json:"root"`
	Font       string                  `json:"font,omitempty"`
	Mesh       string                  `json:"mesh,omitempty"`
	Texture    string                  `json:"texture,omitempty"`
	Background []BackgroundLayerConfig `json:"background,omitempty"`
}

// BackgroundLayerConfig is one scrolling background image, back to front
type BackgroundLayerConfig struct {
	Image   string  `json:"image"`
	ScrollX float32 `json:"scrollX"` // texture widths per second
	ScrollY float32 `json:"scrollY"`
}
