package ports

import (
	"context"
	"time"

	"github.com/forPelevin/vsplit/internal/types"
)

type VideoTool interface {
	ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error)
	ProbeDimensions(ctx context.Context, inMP4 string) (types.Dimensions, error)
	CutSegment(ctx context.Context, inMP4 string, start, end time.Duration, outMP4 string) error
	ExtractAudioMP3(ctx context.Context, inMP4, outMP3 string) error
	CropVideo(ctx context.Context, inMP4 string, rect types.Rect, outMP4 string) error
}

// FilePicker asks a human for the input files.
type FilePicker interface {
	Pick(ctx context.Context) ([]string, error)
}
