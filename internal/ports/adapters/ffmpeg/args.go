package ffmpeg

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/vsplit/internal/types"
)

// cutArgs copies [start, end) of in without re-encoding.
func cutArgs(in string, start, end time.Duration, out string) ([]string, error) {
	if start < 0 || end <= start {
		return nil, errors.Errorf("cut range [%s, %s) is empty", start, end)
	}
	return ffmpeggo.Input(in).
		Output(out, ffmpeggo.KwArgs{
			"ss":                fmtSeconds(start),
			"to":                fmtSeconds(end),
			"c":                 "copy",
			"avoid_negative_ts": "1",
		}).
		OverWriteOutput().
		GetArgs(), nil
}

func audioArgs(in, out string) []string {
	return ffmpeggo.Input(in).
		Output(out, ffmpeggo.KwArgs{
			"vn":     "",
			"acodec": "libmp3lame",
		}).
		OverWriteOutput().
		GetArgs()
}

func cropArgs(in string, r types.Rect, out string) ([]string, error) {
	if r.W <= 0 || r.H <= 0 || r.X < 0 || r.Y < 0 {
		return nil, errors.Errorf("crop rect %+v is invalid", r)
	}
	return ffmpeggo.Input(in).
		Output(out, ffmpeggo.KwArgs{
			"vf":     fmt.Sprintf("crop=%d:%d:%d:%d", r.W, r.H, r.X, r.Y),
			"c:v":    "libx264",
			"preset": "veryfast",
			"crf":    "18",
			"c:a":    "aac",
			"b:a":    "192k",
		}).
		OverWriteOutput().
		GetArgs(), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
