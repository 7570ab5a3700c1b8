package segments

import (
	"fmt"
	"time"

	"github.com/forPelevin/vsplit/internal/types"
)

// Length is the fixed duration of every segment except possibly the last.
const Length = 300 * time.Second

// Count returns ceil(d / Length). A zero duration has no segments.
func Count(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + Length - 1) / Length)
}

// Plan splits [0, d) into contiguous segments of Length; the last one is
// clamped to d.
func Plan(d time.Duration) ([]types.Segment, error) {
	if d < 0 {
		return nil, fmt.Errorf("negative duration %s", d)
	}
	n := Count(d)
	out := make([]types.Segment, 0, n)
	for i := 0; i < n; i++ {
		start := time.Duration(i) * Length
		end := min(start+Length, d)
		out = append(out, types.Segment{Index: i, Start: start, End: end})
	}
	return out, nil
}
