//go:build integration

package itest

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/vsplit/internal/pipeline"
	"github.com/forPelevin/vsplit/internal/types"
)

func TestE2E_TenMinuteInput(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")
	if err := makeFixture(in, 600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	rep, err := pipeline.Run(ctx, pipeline.Config{
		Inputs:         []string{in},
		Workers:        2,
		CommandTimeout: 5 * time.Minute,
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
	})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if rep.Files[0].Status != types.StatusProcessed {
		t.Fatalf("unexpected file report %+v", rep.Files[0])
	}

	want := []string{
		"split/part1.mp4",
		"split/part2.mp4",
		"split/mp3s/audio1.mp3",
		"split/mp3s/audio2.mp3",
		"Resized/part1-resized.mp4",
		"Resized/part2-resized.mp4",
	}
	for _, rel := range want {
		if _, err := os.Stat(filepath.Join(tmp, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("missing %s: %v", rel, err)
		}
	}
	assertDirNames(t, filepath.Join(tmp, "Resized"), "part1-resized.mp4", "part2-resized.mp4")

	for _, rel := range []string{"split/part1.mp4", "split/part2.mp4"} {
		sec, err := probeDurationSeconds(filepath.Join(tmp, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("probe %s: %v", rel, err)
		}
		// stream copy cuts on keyframes, allow some slack
		if math.Abs(sec-300) > 15 {
			t.Fatalf("%s: expected ~300s, got %.2f", rel, sec)
		}
	}

	w, h, err := probeFrameSize(filepath.Join(tmp, "Resized", "part1-resized.mp4"))
	if err != nil {
		t.Fatalf("probe resized: %v", err)
	}
	if h != 180 || w != 100 {
		t.Fatalf("expected 100x180 crop, got %dx%d", w, h)
	}
}

func assertDirNames(t *testing.T, dir string, want ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("%s: got %q want %q", dir, got, want)
	}
}
