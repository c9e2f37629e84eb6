package summarize

import "fmt"

// timeRangeLabel renders a window's bounds as "M:SS - M:SS" (H:MM:SS above
// one hour). Display only; nothing downstream computes on it.
func timeRangeLabel(start, end float64) string {
	return formatClock(start) + " - " + formatClock(end)
}

func formatClock(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
