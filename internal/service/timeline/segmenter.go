// Package timeline partitions a meeting transcript into contiguous
// fixed-width time windows.
package timeline

import (
	"errors"
	"fmt"
	"math"

	"meeting-summary-service/internal/models"
)

// ErrInvalidWindowWidth is returned for a non-positive window width.
var ErrInvalidWindowWidth = errors.New("window width must be positive")

// ErrTooManyWindows is returned when the session duration would produce more
// windows than maxWindows. Without the cap a large duration turns into an
// unbounded slice allocation.
var ErrTooManyWindows = errors.New("session duration produces too many windows")

// maxWindows bounds one timeline. At the default five-minute width this still
// covers a session of over a month.
const maxWindows = 10000

// errSegmentLost signals a segmenter defect: an input segment was not
// assigned to exactly one window. This must never happen; it is surfaced
// loudly instead of producing a plausible but wrong timeline.
var errSegmentLost = errors.New("timeline invariant violated")

// Split partitions the session into ceil(duration/windowSeconds) windows
// (minimum one, even at duration zero) and assigns every transcript segment
// to exactly one window by its start time.
//
// Window i covers [i*width, min((i+1)*width, duration)); a segment starting
// exactly on a boundary belongs to the later window, and a segment starting
// at or after the session duration is assigned to the last window rather
// than dropped. Windows keep the transcript's chronological order, and empty
// windows are kept so the output timeline has one entry per time slice.
// Durations needing more than maxWindows windows are rejected with
// ErrTooManyWindows.
func Split(session *models.MeetingSession, windowSeconds float64) ([]models.TimeWindow, error) {
	if windowSeconds <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidWindowWidth, windowSeconds)
	}

	needed := math.Ceil(session.Duration / windowSeconds)
	if !(needed <= maxWindows) { // also rejects NaN and +Inf
		return nil, fmt.Errorf("%w: duration %g with width %g needs %g, limit %d",
			ErrTooManyWindows, session.Duration, windowSeconds, needed, maxWindows)
	}

	count := int(needed)
	if count < 1 {
		count = 1
	}

	windows := make([]models.TimeWindow, count)
	for i := range windows {
		start := float64(i) * windowSeconds
		end := start + windowSeconds
		if end > session.Duration {
			end = session.Duration
		}
		windows[i] = models.TimeWindow{Index: i, Start: start, End: end}
	}

	for _, seg := range session.Transcript {
		idx := int(seg.StartTime / windowSeconds)
		if idx >= count {
			// Defensive: out-of-range segment lands in the last window.
			idx = count - 1
		}
		if idx < 0 {
			idx = 0
		}
		windows[idx].Segments = append(windows[idx].Segments, seg)
	}

	assigned := 0
	for _, w := range windows {
		assigned += len(w.Segments)
	}
	if assigned != len(session.Transcript) {
		return nil, fmt.Errorf("%w: %d segments in, %d assigned", errSegmentLost, len(session.Transcript), assigned)
	}

	return windows, nil
}
