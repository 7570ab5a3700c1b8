package crop

import (
	"errors"
	"fmt"

	"github.com/forPelevin/vsplit/internal/types"
)

// Target aspect ratio (width:height) of the vertical output.
const (
	AspectW = 9
	AspectH = 16
)

var ErrInvalidGeometry = errors.New("invalid crop geometry")

// Compute returns a full-height, horizontally centered 9:16 box for a w x h frame.
// Frames narrower than 9:16 are rejected.
func Compute(w, h int) (types.CropBox, error) {
	if w <= 0 || h <= 0 {
		return types.CropBox{}, fmt.Errorf("%w: frame %dx%d", ErrInvalidGeometry, w, h)
	}
	cw := float64(h) * AspectW / AspectH
	if cw > float64(w) {
		return types.CropBox{}, fmt.Errorf("%w: crop width %.2f exceeds frame width %d", ErrInvalidGeometry, cw, w)
	}
	return types.CropBox{
		X1: (float64(w) - cw) / 2,
		X2: (float64(w) + cw) / 2,
		Y1: 0,
		Y2: float64(h),
	}, nil
}

// Pixels snaps the box to an even-width integer rectangle centered in a frame
// of width w. Encoders using 4:2:0 chroma need even dimensions.
func Pixels(b types.CropBox, w int) (types.Rect, error) {
	cw := int(b.Width()) &^ 1
	ch := int(b.Height()) &^ 1
	if cw <= 0 || ch <= 0 {
		return types.Rect{}, fmt.Errorf("%w: crop %dx%d", ErrInvalidGeometry, cw, ch)
	}
	return types.Rect{
		X: (w - cw) / 2,
		Y: int(b.Y1),
		W: cw,
		H: ch,
	}, nil
}
