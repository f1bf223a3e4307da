package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/younwookim/scenecore/internal/domain/viewport"
)

var (
	ErrInvalidDisplay  = errors.New("invalid display size")
	ErrInvalidTiming   = errors.New("framerate must be positive")
	ErrInvalidScale    = errors.New("window scale must be positive")
	ErrLayerImage      = errors.New("background layer needs an image")
	ErrUnknownRenderer = errors.New("unknown renderer")
	ErrInvalidColor    = errors.New("invalid color")
	ErrNoPasses        = errors.New("no render passes")
	ErrCustomViewport  = errors.New("custom viewports need a rectangle and cannot be configured")
)

// Validate checks the config for values the engine cannot use
func (c *EngineConfig) Validate() error {
	if c.Display.ScreenWidth <= 0 || c.Display.ScreenHeight <= 0 {
		return fmt.Errorf("%dx%d: %w", c.Display.ScreenWidth, c.Display.ScreenHeight, ErrInvalidDisplay)
	}
	if c.Display.Framerate <= 0 {
		return fmt.Errorf("framerate %d: %w", c.Display.Framerate, ErrInvalidTiming)
	}
	if c.Display.Scale <= 0 {
		return fmt.Errorf("scale %d: %w", c.Display.Scale, ErrInvalidScale)
	}
	if c.Render.Background != "" {
		if _, err := ParseColor(c.Render.Background); err != nil {
			return fmt.Errorf("render background: %w", err)
		}
	}
	if len(c.Render.Passes) == 0 {
		return ErrNoPasses
	}
	for i, p := range c.Render.Passes {
		switch p.Renderer {
		case RendererGeneric, RendererPicking:
		default:
			return fmt.Errorf("pass %d: %q: %w", i, p.Renderer, ErrUnknownRenderer)
		}
		preset, err := viewport.ParsePreset(p.Viewport)
		if err != nil {
			return fmt.Errorf("pass %d: %w", i, err)
		}
		if preset == viewport.Custom {
			return fmt.Errorf("pass %d: %w", i, ErrCustomViewport)
		}
		if p.Background != "" {
			if _, err := ParseColor(p.Background); err != nil {
				return fmt.Errorf("pass %d background: %w", i, err)
			}
		}
		if _, err := viewport.ParseAspect(p.Aspect); err != nil {
			return fmt.Errorf("pass %d: %w", i, err)
		}
	}
	for i, l := range c.Assets.Background {
		if l.Image == "" {
			return fmt.Errorf("background layer %d: %w", i, ErrLayerImage)
		}
	}
	return nil
}

// HasPicking reports whether any pass uses the picking renderer
func (c *EngineConfig) HasPicking() bool {
	for _, p := range c.Render.Passes {
		if p.Renderer == RendererPicking {
			return true
		}
	}
	return false
}

// ParseColor parses #rrggbb or #rrggbbaa. Alpha defaults to opaque.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
