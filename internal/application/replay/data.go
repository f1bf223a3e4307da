package replay

// FrameInput records pointer state for a single frame
type FrameInput struct {
	F  int  `json:"f"`            // Frame number
	MX int  `json:"mx"`           // CursorX
	MY int  `json:"my"`           // CursorY
	MC bool `json:"mc,omitempty"` // Click
	RC bool `json:"rc,omitempty"` // RightClick
}

// ReplayData contains all data needed to replay a viewer session
type ReplayData struct {
	Version   string       `json:"version"`
	Scene     string       `json:"scene"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	StartTime string       `json:"startTime"`
	Frames    []FrameInput `json:"frames"`
}
