package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/younwookim/scenecore/internal/infrastructure/input"
)

// Replayer plays back recorded input. It implements input.Source and the
// scene's cursor collaborator, so picking can be driven deterministically.
type Replayer struct {
	data  ReplayData
	frame int
	last  input.State
}

// NewReplayer creates a new replayer from replay data
func NewReplayer(data ReplayData) *Replayer {
	return &Replayer{
		data:  data,
		frame: 0,
	}
}

// LoadReplay loads replay data from a file
func LoadReplay(filename string) (*ReplayData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadReplay(file)
}

// ReadReplay decodes replay data
func ReadReplay(r io.Reader) (*ReplayData, error) {
	var data ReplayData
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}

	return &data, nil
}

// Next returns the input for the current frame and advances
func (r *Replayer) Next() (input.State, bool) {
	if r.frame >= len(r.data.Frames) {
		return input.State{}, false
	}

	fi := r.data.Frames[r.frame]
	r.frame++

	r.last = input.State{
		CursorX:    fi.MX,
		CursorY:    fi.MY,
		Click:      fi.MC,
		RightClick: fi.RC,
	}
	return r.last, true
}

// Poll implements input.Source. Once the recording is exhausted the cursor
// stays where it was last and no clicks are reported.
func (r *Replayer) Poll() input.State {
	if s, ok := r.Next(); ok {
		return s
	}
	return input.State{CursorX: r.last.CursorX, CursorY: r.last.CursorY}
}

// CursorPosition returns the cursor of the most recently played frame.
func (r *Replayer) CursorPosition() (int, int) {
	return r.last.CursorX, r.last.CursorY
}

// Done reports whether every frame has been played
func (r *Replayer) Done() bool {
	return r.frame >= len(r.data.Frames)
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return len(r.data.Frames)
}

// Reset resets the replayer to the beginning
func (r *Replayer) Reset() {
	r.frame = 0
	r.last = input.State{}
}

// CreateTestReplayData creates replay data for testing (idle cursor)
func CreateTestReplayData(frames int, mouseX, mouseY int) ReplayData {
	data := ReplayData{
		Version:   "1.0",
		Scene:     "test",
		StartTime: time.Now().Format(time.RFC3339),
		Frames:    make([]FrameInput, frames),
	}

	for i := 0; i < frames; i++ {
		data.Frames[i] = FrameInput{
			F:  i,
			MX: mouseX,
			MY: mouseY,
		}
	}

	return data
}

var _ input.Source = (*Replayer)(nil)
