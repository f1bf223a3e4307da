// Package logging holds the engine-wide structured logger and the attributes
// engine packages tag their records with.
//
// Levels used:
//   - [slog.LevelDebug]: resource lifecycle, pass execution
//   - [slog.LevelInfo]: picks, startup
//   - [slog.LevelWarn]: recoverable collaborator failures
package logging

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Attribute keys shared by every engine record.
const (
	KeyComponent = "component"
	KeyHandle    = "handle"
	KeyPass      = "pass"
)

var (
	discard = slog.New(slog.DiscardHandler)
	current atomic.Pointer[slog.Logger]
)

func init() {
	current.Store(discard)
}

// SetLogger installs l for all engine packages. nil silences the engine.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = discard
	}
	current.Store(l)
}

// Logger returns the installed logger.
func Logger() *slog.Logger {
	return current.Load()
}

// For returns the installed logger tagged with an engine component such as
// "scene", "render" or "picking".
func For(component string) *slog.Logger {
	return current.Load().With(slog.String(KeyComponent, component))
}

// Handle tags a record with a resource handle.
func Handle(h fmt.Stringer) slog.Attr {
	return slog.String(KeyHandle, h.String())
}

// Pass groups the index, renderer and viewport preset of a render pass.
func Pass(index int, renderer, viewport string) slog.Attr {
	return slog.Group(KeyPass,
		slog.Int("index", index),
		slog.String("renderer", renderer),
		slog.String("viewport", viewport),
	)
}

// ParseLevel maps a config string to a slog level. Unknown names map to Info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
