package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/forPelevin/vsplit/internal/types"
)

func TestRun_TenMinuteInput(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	in := filepath.Join(tmp, "talk.mp4")
	rep, err := Run(context.Background(), Config{
		Inputs:  []string{in},
		Workers: 2,
		RunID:   "test-run",
		Video:   &fakeVideoTool{duration: 600 * time.Second},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, rel := range []string{
		"split/part1.mp4",
		"split/part2.mp4",
		"split/mp3s/audio1.mp3",
		"split/mp3s/audio2.mp3",
		"Resized/part1-resized.mp4",
		"Resized/part2-resized.mp4",
	} {
		if _, err := os.Stat(filepath.Join(tmp, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(tmp, "split", "part3.mp4")); !os.IsNotExist(err) {
		t.Fatalf("expected exactly two parts, stat part3 err=%v", err)
	}

	if rep.RunID != "test-run" || len(rep.Files) != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	fr := rep.Files[0]
	if fr.Status != types.StatusProcessed {
		t.Fatalf("expected processed, got %s (%s)", fr.Status, fr.Error)
	}
	if len(fr.Segments) != 2 || len(fr.Audio) != 2 || len(fr.Resized) != 2 {
		t.Fatalf("unexpected counts %+v", fr)
	}
	if filepath.Base(fr.Resized[0]) != "part1-resized.mp4" || filepath.Base(fr.Resized[1]) != "part2-resized.mp4" {
		t.Fatalf("expected resized outputs in segment order, got %q", fr.Resized)
	}
	if rep.Summary.Processed != 1 || rep.Summary.Segments != 2 || rep.Summary.Resized != 2 {
		t.Fatalf("unexpected summary %+v", rep.Summary)
	}
}

func TestRun_CropFailureIsIsolated(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	rep, err := Run(context.Background(), Config{
		Inputs:  []string{filepath.Join(tmp, "long.mp4")},
		Workers: 3,
		Video: &fakeVideoTool{
			duration: 1500 * time.Second,
			cropFail: map[string]bool{"part3.mp4": true},
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	fr := rep.Files[0]
	if fr.Status != types.StatusPartial {
		t.Fatalf("expected partial, got %s", fr.Status)
	}
	if len(fr.Segments) != 5 {
		t.Fatalf("expected 5 segments, got %d", len(fr.Segments))
	}
	if len(fr.Resized) != 4 {
		t.Fatalf("expected 4 resized outputs, got %q", fr.Resized)
	}
	for _, r := range fr.Resized {
		if strings.Contains(r, "part3") {
			t.Fatalf("part3 must not be reported as resized: %q", fr.Resized)
		}
	}
	if len(fr.Crops) != 1 || filepath.Base(fr.Crops[0].Segment) != "part3.mp4" {
		t.Fatalf("expected one crop failure for part3, got %+v", fr.Crops)
	}
	if _, err := os.Stat(filepath.Join(tmp, "Resized", "part3-resized.mp4")); !os.IsNotExist(err) {
		t.Fatalf("expected no leftover output for part3, stat err=%v", err)
	}
}

func TestRun_FailedInputDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	badDir := filepath.Join(tmp, "a")
	goodDir := filepath.Join(tmp, "b")
	for _, d := range []string{badDir, goodDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	rep, err := Run(context.Background(), Config{
		Inputs: []string{filepath.Join(badDir, "bad.mp4"), filepath.Join(goodDir, "good.mp4")},
		Video: &fakeVideoTool{
			duration:  200 * time.Second,
			probeFail: map[string]bool{"bad.mp4": true},
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rep.Files) != 2 {
		t.Fatalf("expected 2 file reports, got %d", len(rep.Files))
	}
	if rep.Files[0].Status != types.StatusFailed || !strings.Contains(rep.Files[0].Error, "probe") {
		t.Fatalf("expected probe failure for first input, got %+v", rep.Files[0])
	}
	if rep.Files[1].Status != types.StatusProcessed || len(rep.Files[1].Resized) != 1 {
		t.Fatalf("expected second input processed, got %+v", rep.Files[1])
	}
	if rep.Summary.Failed != 1 || rep.Summary.Processed != 1 {
		t.Fatalf("unexpected summary %+v", rep.Summary)
	}
}

func TestRun_AllFailed(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	_, err := Run(context.Background(), Config{
		Inputs: []string{filepath.Join(tmp, "x.mp4")},
		Video:  &fakeVideoTool{probeFail: map[string]bool{"x.mp4": true}},
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("expected ErrAllFailed, got %v", err)
	}
}

func TestRun_SegmentFailureMarksPartial(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	rep, err := Run(context.Background(), Config{
		Inputs: []string{filepath.Join(tmp, "in.mp4")},
		Video: &fakeVideoTool{
			duration: 650 * time.Second,
			cutFail:  map[string]bool{"part2.mp4": true},
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	fr := rep.Files[0]
	if fr.Status != types.StatusPartial {
		t.Fatalf("expected partial, got %s", fr.Status)
	}
	if len(fr.SegFails) != 1 || fr.SegFails[0].Index != 2 || fr.SegFails[0].Stage != "cut" {
		t.Fatalf("unexpected segment failures %+v", fr.SegFails)
	}
	if len(fr.Resized) != 2 {
		t.Fatalf("expected parts 1 and 3 cropped, got %q", fr.Resized)
	}
}

func TestRun_LockedDirectory(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	held := flock.New(filepath.Join(tmp, LockName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("acquire test lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = held.Unlock() }()

	rep, err := Run(context.Background(), Config{
		Inputs: []string{filepath.Join(tmp, "in.mp4")},
		Video:  &fakeVideoTool{duration: 10 * time.Second},
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("expected ErrAllFailed, got %v", err)
	}
	if !strings.Contains(rep.Files[0].Error, "another vsplit run") {
		t.Fatalf("expected lock error, got %q", rep.Files[0].Error)
	}
	if _, err := os.Stat(filepath.Join(tmp, "split")); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written while locked, stat err=%v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     Config
		wantErr bool
	}{
		"ok":               {cfg: Config{Inputs: []string{"a.mp4"}}},
		"no inputs":        {cfg: Config{}, wantErr: true},
		"blank input":      {cfg: Config{Inputs: []string{"a.mp4", ""}}, wantErr: true},
		"negative workers": {cfg: Config{Inputs: []string{"a.mp4"}, Workers: -1}, wantErr: true},
		"negative timeout": {cfg: Config{Inputs: []string{"a.mp4"}, CommandTimeout: -time.Second}, wantErr: true},
	}
	for name, tc := range tests {
		err := tc.cfg.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: wantErr=%v got %v", name, tc.wantErr, err)
		}
	}
}

type fakeVideoTool struct {
	duration  time.Duration
	probeFail map[string]bool
	cutFail   map[string]bool
	cropFail  map[string]bool
}

func (f *fakeVideoTool) ProbeDuration(_ context.Context, in string) (time.Duration, error) {
	if f.probeFail[filepath.Base(in)] {
		return 0, errors.New("invalid data found when processing input")
	}
	return f.duration, nil
}

func (f *fakeVideoTool) ProbeDimensions(_ context.Context, _ string) (types.Dimensions, error) {
	return types.Dimensions{Width: 1280, Height: 720}, nil
}

func (f *fakeVideoTool) CutSegment(_ context.Context, _ string, _, _ time.Duration, out string) error {
	if f.cutFail[filepath.Base(out)] {
		return errors.New("cut failed")
	}
	return os.WriteFile(out, []byte("video"), 0o644)
}

func (f *fakeVideoTool) ExtractAudioMP3(_ context.Context, _, out string) error {
	return os.WriteFile(out, []byte("audio"), 0o644)
}

func (f *fakeVideoTool) CropVideo(_ context.Context, in string, _ types.Rect, out string) error {
	if f.cropFail[filepath.Base(in)] {
		_ = os.WriteFile(out, []byte("partial"), 0o644)
		return errors.New("encoder error")
	}
	return os.WriteFile(out, []byte("resized"), 0o644)
}
