package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/younwookim/scenecore/internal/infrastructure/input"
)

// ErrNoFrames is returned when saving an empty recording.
var ErrNoFrames = errors.New("no frames to save")

// Recorder wraps an input source and records every polled frame
type Recorder struct {
	src       input.Source
	data      ReplayData
	recording bool
	frame     int
}

// NewRecorder creates a recorder reading from src
func NewRecorder(src input.Source, sceneName string, width, height int) *Recorder {
	return &Recorder{
		src: src,
		data: ReplayData{
			Version:   "1.0",
			Scene:     sceneName,
			Width:     width,
			Height:    height,
			StartTime: time.Now().Format(time.RFC3339),
			Frames:    make([]FrameInput, 0, 3600), // Pre-allocate for ~1 minute at 60fps
		},
		recording: true,
		frame:     0,
	}
}

// Poll reads the wrapped source and records the result
func (r *Recorder) Poll() input.State {
	s := r.src.Poll()
	r.RecordFrame(s)
	return s
}

// CursorPosition returns the cursor of the last recorded frame.
func (r *Recorder) CursorPosition() (int, int) {
	if len(r.data.Frames) == 0 {
		return 0, 0
	}
	last := r.data.Frames[len(r.data.Frames)-1]
	return last.MX, last.MY
}

// RecordFrame records a single frame's input
func (r *Recorder) RecordFrame(s input.State) {
	if !r.recording {
		return
	}

	r.data.Frames = append(r.data.Frames, FrameInput{
		F:  r.frame,
		MX: s.CursorX,
		MY: s.CursorY,
		MC: s.Click,
		RC: s.RightClick,
	})
	r.frame++
}

// Save writes the replay data to a file
func (r *Recorder) Save(filename string) error {
	if len(r.data.Frames) == 0 {
		return ErrNoFrames
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return r.Encode(file)
}

// Encode writes the replay data as indented JSON
func (r *Recorder) Encode(w io.Writer) error {
	if len(r.data.Frames) == 0 {
		return ErrNoFrames
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r.data); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return nil
}

// Stop stops recording
func (r *Recorder) Stop() {
	r.recording = false
}

// IsRecording returns whether recording is active
func (r *Recorder) IsRecording() bool {
	return r.recording
}

// FrameCount returns the number of recorded frames
func (r *Recorder) FrameCount() int {
	return len(r.data.Frames)
}

// Data returns the recorded replay data
func (r *Recorder) Data() ReplayData {
	return r.data
}

// GenerateFilename creates a filename based on current time
func GenerateFilename() string {
	return fmt.Sprintf("replay_%s.json", time.Now().Format("20060102_150405"))
}

var _ input.Source = (*Recorder)(nil)
