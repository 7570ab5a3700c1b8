package usecase

import "fmt"

const (
	StageCut   = "cut"
	StageAudio = "audio"
)

// ProbeError means the input's duration could not be determined.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string { return fmt.Sprintf("probe %s: %v", e.Path, e.Err) }
func (e *ProbeError) Unwrap() error { return e.Err }

// SegmentError reports a failed cut or audio extraction. Index is 1-based,
// matching the part file names.
type SegmentError struct {
	Index int
	Stage string
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d %s: %v", e.Index, e.Stage, e.Err)
}
func (e *SegmentError) Unwrap() error { return e.Err }

type CropError struct {
	Path string
	Err  error
}

func (e *CropError) Error() string { return fmt.Sprintf("crop %s: %v", e.Path, e.Err) }
func (e *CropError) Unwrap() error { return e.Err }

type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
