package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/forPelevin/vsplit/internal/domain/segments"
	"github.com/forPelevin/vsplit/internal/ports"
	"github.com/forPelevin/vsplit/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/vsplit/internal/types"
	"github.com/forPelevin/vsplit/internal/usecase"
	"github.com/forPelevin/vsplit/internal/workpool"
)

// LockName is the lock file placed beside the inputs while their split and
// Resized directories are being written.
const LockName = ".vsplit.lock"

// ErrAllFailed is returned when no input produced any output.
var ErrAllFailed = errors.New("all inputs failed")

type Config struct {
	Inputs []string

	// Workers bounds concurrent crop jobs; 0 means one per CPU.
	Workers             int
	AbortOnSegmentError bool
	CommandTimeout      time.Duration

	FFmpegPath  string
	FFprobePath string

	Logger *slog.Logger
	RunID  string

	// Video replaces the ffmpeg adapter when set.
	Video ports.VideoTool
}

func (c Config) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("no input files")
	}
	for i, in := range c.Inputs {
		if in == "" {
			return fmt.Errorf("input %d is empty", i+1)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	return nil
}

// Run processes every input one after another. A failing input is recorded
// in the report and never stops the remaining ones.
func Run(ctx context.Context, cfg Config) (types.RunReport, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger = logger.With("run_id", runID)

	video := cfg.Video
	if video == nil {
		video = ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.CommandTimeout)
	}
	uc := usecase.New(usecase.Deps{Video: video, Logger: logger})

	workers := cfg.Workers
	if workers <= 0 {
		workers = workpool.DefaultWorkers()
	}

	rep := types.RunReport{RunID: runID, StartedAt: time.Now()}
	logger.Info("run started", "inputs", len(cfg.Inputs), "workers", workers)

	for _, in := range cfg.Inputs {
		if err := ctx.Err(); err != nil {
			rep.FinishedAt = time.Now()
			rep.Finalize()
			return rep, err
		}
		p := fileProc{uc: uc, workers: workers, abortOnSegmentError: cfg.AbortOnSegmentError, log: logger}
		rep.Files = append(rep.Files, p.process(ctx, in))
	}

	rep.FinishedAt = time.Now()
	rep.Finalize()
	logger.Info("run finished",
		"processed", rep.Summary.Processed,
		"partial", rep.Summary.Partial,
		"failed", rep.Summary.Failed,
	)
	if rep.Summary.Files > 0 && rep.Summary.Failed == rep.Summary.Files {
		return rep, ErrAllFailed
	}
	return rep, nil
}

type fileProc struct {
	uc                  usecase.Usecase
	workers             int
	abortOnSegmentError bool
	log                 *slog.Logger
}

func (p fileProc) process(ctx context.Context, input string) types.FileReport {
	fr := types.FileReport{Input: input, Status: types.StatusProcessed}
	fail := func(err error) types.FileReport {
		fr.Status = types.StatusFailed
		fr.Error = err.Error()
		p.log.Error("input failed", "input", input, "error", err)
		return fr
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return fail(&usecase.IOError{Op: "resolve", Path: input, Err: err})
	}
	fr.Input = abs
	log := p.log.With("input", filepath.Base(abs))

	lock := flock.New(filepath.Join(filepath.Dir(abs), LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return fail(&usecase.IOError{Op: "lock", Path: lock.Path(), Err: err})
	}
	if !ok {
		return fail(&usecase.IOError{Op: "lock", Path: lock.Path(), Err: errors.New("another vsplit run is writing to this directory")})
	}
	defer func() { _ = lock.Unlock() }()

	splitDir, resizedDir := segments.Dirs(abs)
	res, err := p.uc.Segment(ctx, usecase.SegmentInput{
		InputMP4:     abs,
		OutDir:       splitDir,
		AbortOnError: p.abortOnSegmentError,
	})
	fr.Duration = res.Duration.Seconds()
	fr.Segments = res.Segments
	fr.Audio = res.Audio
	for _, f := range res.Failures {
		fr.SegFails = append(fr.SegFails, types.SegmentFailure{Index: f.Index, Stage: f.Stage, Error: f.Err.Error()})
	}
	if err != nil {
		var serr *usecase.SegmentError
		if errors.As(err, &serr) {
			fr.SegFails = append(fr.SegFails, types.SegmentFailure{Index: serr.Index, Stage: serr.Stage, Error: serr.Err.Error()})
		}
		return fail(err)
	}

	if err := os.MkdirAll(resizedDir, 0o755); err != nil {
		return fail(&usecase.IOError{Op: "mkdir", Path: resizedDir, Err: err})
	}

	log.Info("cropping", "segments", len(res.Segments), "workers", min(p.workers, len(res.Segments)))
	results := workpool.Run(ctx, p.workers, res.Segments, func(ctx context.Context, seg string) (string, error) {
		return p.uc.Crop(ctx, seg, resizedDir)
	})

	outs := make(map[string]string, len(results))
	for _, r := range results {
		if r.Err != nil {
			fr.Crops = append(fr.Crops, types.CropFailure{Segment: r.Job, Error: r.Err.Error()})
			continue
		}
		outs[r.Job] = r.Value
	}
	for _, seg := range res.Segments {
		if out, ok := outs[seg]; ok {
			fr.Resized = append(fr.Resized, out)
		}
	}
	for _, c := range fr.Crops {
		log.Error("crop failed", "segment", filepath.Base(c.Segment), "error", c.Error)
	}

	if len(fr.SegFails) > 0 || len(fr.Crops) > 0 {
		fr.Status = types.StatusPartial
	}
	log.Info("input done", "status", fr.Status, "segments", len(fr.Segments), "resized", len(fr.Resized))
	return fr
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
