package types

import "time"

// Segment is one contiguous slice of the source video. Index is 0-based;
// file names use Index+1.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
}

func (s Segment) Length() time.Duration { return s.End - s.Start }

// CropBox is the crop rectangle in source pixel coordinates.
type CropBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

func (b CropBox) Width() float64  { return b.X2 - b.X1 }
func (b CropBox) Height() float64 { return b.Y2 - b.Y1 }

// Rect is an integer crop rectangle as passed to the encoder.
type Rect struct {
	X int
	Y int
	W int
	H int
}

type Dimensions struct {
	Width  int
	Height int
}

type SegmentFailure struct {
	Index int    `json:"index"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

type CropFailure struct {
	Segment string `json:"segment"`
	Error   string `json:"error"`
}

const (
	StatusProcessed = "processed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// FileReport records what one input file produced.
type FileReport struct {
	Input    string           `json:"input"`
	Status   string           `json:"status"`
	Duration float64          `json:"duration_sec"`
	Segments []string         `json:"segments"`
	Audio    []string         `json:"audio"`
	Resized  []string         `json:"resized"`
	Error    string           `json:"error,omitempty"`
	SegFails []SegmentFailure `json:"segment_failures,omitempty"`
	Crops    []CropFailure    `json:"crop_failures,omitempty"`
}

type RunSummary struct {
	Files     int `json:"files"`
	Processed int `json:"processed"`
	Partial   int `json:"partial"`
	Failed    int `json:"failed"`
	Segments  int `json:"segments"`
	Resized   int `json:"resized"`
}

type RunReport struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Summary    RunSummary   `json:"summary"`
	Files      []FileReport `json:"files"`
}

// Finalize normalizes timestamps to UTC and recomputes the summary from Files.
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	s := RunSummary{Files: len(r.Files)}
	for _, f := range r.Files {
		switch f.Status {
		case StatusProcessed:
			s.Processed++
		case StatusPartial:
			s.Partial++
		case StatusFailed:
			s.Failed++
		}
		s.Segments += len(f.Segments)
		s.Resized += len(f.Resized)
	}
	r.Summary = s
}
