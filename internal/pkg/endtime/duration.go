package endtime

import "fmt"

// FormatSeconds renders a second count as days/hours/minutes/seconds,
// truncating through integer division only, e.g. 90061 -> "1d 01h 01m 01s".
// Negative input is clamped to zero.
func FormatSeconds(s int64) string {
	if s < 0 {
		s = 0
	}
	days := s / 86400
	s %= 86400
	hours := s / 3600
	s %= 3600
	minutes := s / 60
	seconds := s % 60
	return fmt.Sprintf("%dd %02dh %02dm %02ds", days, hours, minutes, seconds)
}
