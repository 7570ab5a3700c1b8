package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/vsplit/internal/types"
)

// ErrTimeout is returned when a subprocess outlives the adapter timeout.
var ErrTimeout = errors.New("command timed out")

type Adapter struct {
	ffmpeg  string
	ffprobe string
	timeout time.Duration
}

// New builds an adapter. A zero timeout leaves subprocesses unbounded.
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, timeout: timeout}
}

func (a *Adapter) CutSegment(ctx context.Context, inMP4 string, start, end time.Duration, outMP4 string) error {
	args, err := cutArgs(inMP4, start, end, outMP4)
	if err != nil {
		return err
	}
	b, err := a.run(ctx, a.ffmpeg, args)
	if err != nil {
		return fmt.Errorf("ffmpeg cut: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ExtractAudioMP3(ctx context.Context, inMP4, outMP3 string) error {
	b, err := a.run(ctx, a.ffmpeg, audioArgs(inMP4, outMP3))
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) CropVideo(ctx context.Context, inMP4 string, rect types.Rect, outMP4 string) error {
	args, err := cropArgs(inMP4, rect, outMP4)
	if err != nil {
		return err
	}
	b, err := a.run(ctx, a.ffmpeg, args)
	if err != nil {
		return fmt.Errorf("ffmpeg crop: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error) {
	b, err := a.run(ctx, a.ffprobe, []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inMP4,
	})
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	return parseDuration(string(b))
}

func (a *Adapter) ProbeDimensions(ctx context.Context, inMP4 string) (types.Dimensions, error) {
	b, err := a.run(ctx, a.ffprobe, []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		inMP4,
	})
	if err != nil {
		return types.Dimensions{}, fmt.Errorf("ffprobe dimensions: %w\n%s", err, string(b))
	}
	return parseDimensions(b)
}

func (a *Adapter) run(ctx context.Context, bin string, args []string) ([]byte, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil && a.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return b, fmt.Errorf("%s: %w after %s", bin, ErrTimeout, a.timeout)
	}
	return b, err
}

func parseDuration(out string) (time.Duration, error) {
	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return 0, fmt.Errorf("parse duration %q: out of range", s)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

type probeStreams struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

func parseDimensions(b []byte) (types.Dimensions, error) {
	var p probeStreams
	if err := json.Unmarshal(b, &p); err != nil {
		return types.Dimensions{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	if len(p.Streams) == 0 {
		return types.Dimensions{}, errors.New("ffprobe: no video stream")
	}
	s := p.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return types.Dimensions{}, fmt.Errorf("ffprobe: bad frame size %dx%d", s.Width, s.Height)
	}
	return types.Dimensions{Width: s.Width, Height: s.Height}, nil
}
