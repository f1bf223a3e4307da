// Package viewport derives render rectangles from window dimensions.
package viewport

import (
	"fmt"
	"image"
	"image/color"
)

// Preset names a rule for deriving the viewport rectangle.
type Preset int

const (
	FullScreen Preset = iota
	Letterbox4x3
	Letterbox16x9
	Letterbox16x10
	SplitLeft
	SplitRight
	SplitTop
	SplitBottom
	QuadTopLeft
	QuadTopRight
	QuadBottomLeft
	QuadBottomRight
	Custom
)

var presetNames = map[Preset]string{
	FullScreen:      "fullscreen",
	Letterbox4x3:    "letterbox-4:3",
	Letterbox16x9:   "letterbox-16:9",
	Letterbox16x10:  "letterbox-16:10",
	SplitLeft:       "split-left",
	SplitRight:      "split-right",
	SplitTop:        "split-top",
	SplitBottom:     "split-bottom",
	QuadTopLeft:     "quad-top-left",
	QuadTopRight:    "quad-top-right",
	QuadBottomLeft:  "quad-bottom-left",
	QuadBottomRight: "quad-bottom-right",
	Custom:          "custom",
}

// String returns the string representation of the preset
func (p Preset) String() string {
	if s, ok := presetNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePreset returns the preset named s.
func ParsePreset(s string) (Preset, error) {
	for p, name := range presetNames {
		if name == s {
			return p, nil
		}
	}
	return Custom, fmt.Errorf("unknown viewport preset %q", s)
}

// AspectPolicy selects the aspect ratio cameras project with inside the
// viewport. Fixed ratios stretch the image when the rectangle differs.
type AspectPolicy int

const (
	// AspectMatchViewport follows the rectangle's width/height.
	AspectMatchViewport AspectPolicy = iota
	Aspect4x3
	Aspect16x9
	Aspect16x10
)

var aspectNames = map[AspectPolicy]string{
	AspectMatchViewport: "viewport",
	Aspect4x3:           "4:3",
	Aspect16x9:          "16:9",
	Aspect16x10:         "16:10",
}

func (a AspectPolicy) String() string {
	if s, ok := aspectNames[a]; ok {
		return s
	}
	return "unknown"
}

// ParseAspect returns the policy named s. An empty name is
// AspectMatchViewport.
func ParseAspect(s string) (AspectPolicy, error) {
	if s == "" {
		return AspectMatchViewport, nil
	}
	for a, name := range aspectNames {
		if name == s {
			return a, nil
		}
	}
	return AspectMatchViewport, fmt.Errorf("unknown aspect policy %q", s)
}

// ratio returns the fixed ratio of a, or 0 for AspectMatchViewport.
func (a AspectPolicy) ratio() float32 {
	switch a {
	case Aspect4x3:
		return 4.0 / 3
	case Aspect16x9:
		return 16.0 / 9
	case Aspect16x10:
		return 16.0 / 10
	default:
		return 0
	}
}

// Viewport is a window sub-rectangle plus its background color.
// Rect uses window coordinates with the origin at the top-left.
type Viewport struct {
	Rect       image.Rectangle
	Background color.RGBA
	Preset     Preset
	Aspect     AspectPolicy
}

// New creates a viewport for preset sized to the window. Letterbox presets
// fix the aspect policy to their ratio.
func New(preset Preset, windowW, windowH int) Viewport {
	v := Viewport{Preset: preset, Background: color.RGBA{A: 255}}
	switch preset {
	case Letterbox4x3:
		v.Aspect = Aspect4x3
	case Letterbox16x9:
		v.Aspect = Aspect16x9
	case Letterbox16x10:
		v.Aspect = Aspect16x10
	}
	v.Update(windowW, windowH)
	return v
}

// NewCustom creates a viewport with a fixed rectangle.
func NewCustom(r image.Rectangle) Viewport {
	return Viewport{Rect: r, Preset: Custom, Background: color.RGBA{A: 255}}
}

// Update recomputes the rectangle from the window size. Custom viewports keep
// their rectangle.
func (v *Viewport) Update(windowW, windowH int) {
	halfW, halfH := windowW/2, windowH/2
	switch v.Preset {
	case FullScreen:
		v.Rect = image.Rect(0, 0, windowW, windowH)
	case Letterbox4x3:
		v.Rect = letterbox(windowW, windowH, 4, 3)
	case Letterbox16x9:
		v.Rect = letterbox(windowW, windowH, 16, 9)
	case Letterbox16x10:
		v.Rect = letterbox(windowW, windowH, 16, 10)
	case SplitLeft:
		v.Rect = image.Rect(0, 0, halfW, windowH)
	case SplitRight:
		v.Rect = image.Rect(halfW, 0, windowW, windowH)
	case SplitTop:
		v.Rect = image.Rect(0, 0, windowW, halfH)
	case SplitBottom:
		v.Rect = image.Rect(0, halfH, windowW, windowH)
	case QuadTopLeft:
		v.Rect = image.Rect(0, 0, halfW, halfH)
	case QuadTopRight:
		v.Rect = image.Rect(halfW, 0, windowW, halfH)
	case QuadBottomLeft:
		v.Rect = image.Rect(0, halfH, halfW, windowH)
	case QuadBottomRight:
		v.Rect = image.Rect(halfW, halfH, windowW, windowH)
	case Custom:
	}
}

// letterbox fits the largest aw:ah rectangle centered in the window.
func letterbox(windowW, windowH, aw, ah int) image.Rectangle {
	w, h := windowW, windowW*ah/aw
	if h > windowH {
		h = windowH
		w = windowH * aw / ah
	}
	x := (windowW - w) / 2
	y := (windowH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// AspectRatio returns the ratio cameras project with: the fixed ratio of the
// aspect policy, otherwise width/height of the rectangle, or 1 when empty.
func (v Viewport) AspectRatio() float32 {
	if r := v.Aspect.ratio(); r > 0 {
		return r
	}
	if v.Rect.Dy() == 0 {
		return 1
	}
	return float32(v.Rect.Dx()) / float32(v.Rect.Dy())
}

// Contains reports whether the window point lies inside the viewport.
func (v Viewport) Contains(x, y int) bool {
	return image.Pt(x, y).In(v.Rect)
}
