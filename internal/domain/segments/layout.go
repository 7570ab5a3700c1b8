package segments

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	SplitDirName   = "split"
	AudioDirName   = "mp3s"
	ResizedDirName = "Resized"
	ResizedSuffix  = "-resized"
)

// PartName is the video file name for 0-based segment index i.
func PartName(i int) string { return fmt.Sprintf("part%d.mp4", i+1) }

// AudioName is the audio file name for 0-based segment index i.
func AudioName(i int) string { return fmt.Sprintf("audio%d.mp3", i+1) }

// ResizedName maps a segment path to its cropped output name.
func ResizedName(segmentPath string) string {
	base := filepath.Base(segmentPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ResizedSuffix + ".mp4"
}

// Dirs returns the split and resized directories that sit beside an input file.
func Dirs(input string) (splitDir, resizedDir string) {
	base := filepath.Dir(input)
	return filepath.Join(base, SplitDirName), filepath.Join(base, ResizedDirName)
}
