package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/vsplit/internal/domain/crop"
	"github.com/forPelevin/vsplit/internal/domain/segments"
	"github.com/forPelevin/vsplit/internal/ports"
)

type Deps struct {
	Video  ports.VideoTool
	Logger *slog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Usecase{d: d}
}

type SegmentInput struct {
	InputMP4 string
	OutDir   string
	// AbortOnError stops at the first failed segment instead of recording it
	// and moving on.
	AbortOnError bool
}

type SegmentResult struct {
	Duration time.Duration
	Segments []string
	Audio    []string
	Failures []*SegmentError
}

// Segment cuts the input into fixed-length parts under OutDir and extracts an
// mp3 for each part into OutDir/mp3s. Parts are produced strictly in order.
// Only successfully cut parts are returned in Segments.
func (u Usecase) Segment(ctx context.Context, in SegmentInput) (SegmentResult, error) {
	log := u.d.Logger.With("input", filepath.Base(in.InputMP4))

	d, err := u.d.Video.ProbeDuration(ctx, in.InputMP4)
	if err != nil {
		return SegmentResult{}, &ProbeError{Path: in.InputMP4, Err: err}
	}
	plan, err := segments.Plan(d)
	if err != nil {
		return SegmentResult{}, &ProbeError{Path: in.InputMP4, Err: err}
	}
	res := SegmentResult{Duration: d}
	log.Info("segment plan", "duration", d.Round(time.Millisecond), "segments", len(plan))

	audioDir := filepath.Join(in.OutDir, segments.AudioDirName)
	for _, dir := range []string{in.OutDir, audioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	for _, seg := range plan {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		videoPath := filepath.Join(in.OutDir, segments.PartName(seg.Index))
		audioPath := filepath.Join(audioDir, segments.AudioName(seg.Index))
		log.Info("segment outputs",
			"part", seg.Index+1,
			"video", segments.PartName(seg.Index),
			"audio", segments.AudioName(seg.Index),
			"start", seg.Start.Seconds(),
			"end", seg.End.Seconds(),
		)

		if err := u.d.Video.CutSegment(ctx, in.InputMP4, seg.Start, seg.End, videoPath); err != nil {
			_ = os.Remove(videoPath)
			serr := &SegmentError{Index: seg.Index + 1, Stage: StageCut, Err: err}
			if in.AbortOnError {
				return res, serr
			}
			log.Error("segment failed", "part", seg.Index+1, "stage", StageCut, "error", err)
			res.Failures = append(res.Failures, serr)
			continue
		}
		res.Segments = append(res.Segments, videoPath)

		if err := u.d.Video.ExtractAudioMP3(ctx, videoPath, audioPath); err != nil {
			_ = os.Remove(audioPath)
			serr := &SegmentError{Index: seg.Index + 1, Stage: StageAudio, Err: err}
			if in.AbortOnError {
				return res, serr
			}
			log.Error("segment failed", "part", seg.Index+1, "stage", StageAudio, "error", err)
			res.Failures = append(res.Failures, serr)
			continue
		}
		res.Audio = append(res.Audio, audioPath)
	}
	return res, nil
}

// Crop writes a centered 9:16 crop of segmentPath into resizedDir and returns
// the output path. Any failure is a *CropError.
func (u Usecase) Crop(ctx context.Context, segmentPath, resizedDir string) (string, error) {
	out, err := u.crop(ctx, segmentPath, resizedDir)
	if err != nil {
		return "", &CropError{Path: segmentPath, Err: err}
	}
	return out, nil
}

func (u Usecase) crop(ctx context.Context, segmentPath, resizedDir string) (string, error) {
	f, err := os.Open(segmentPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() || info.Size() == 0 {
		return "", errors.New("segment is empty or not a file")
	}

	dims, err := u.d.Video.ProbeDimensions(ctx, segmentPath)
	if err != nil {
		return "", err
	}
	box, err := crop.Compute(dims.Width, dims.Height)
	if err != nil {
		return "", err
	}
	rect, err := crop.Pixels(box, dims.Width)
	if err != nil {
		return "", err
	}

	out := filepath.Join(resizedDir, segments.ResizedName(segmentPath))
	if err := u.d.Video.CropVideo(ctx, segmentPath, rect, out); err != nil {
		if rmErr := os.Remove(out); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return "", fmt.Errorf("%w (cleanup: %v)", err, rmErr)
		}
		return "", err
	}
	return out, nil
}
