package endtime

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0d 00h 00m 00s"},
		{59, "0d 00h 00m 59s"},
		{60, "0d 00h 01m 00s"},
		{3600, "0d 01h 00m 00s"},
		{86400, "1d 00h 00m 00s"},
		{90061, "1d 01h 01m 01s"},
		{172800 + 3*3600 + 42*60 + 7, "2d 03h 42m 07s"},
		{-5, "0d 00h 00m 00s"},
	}
	for _, c := range cases {
		if got := FormatSeconds(c.in); got != c.want {
			t.Errorf("FormatSeconds(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

// The unit decomposition must be lossless: recombining days, hours, minutes
// and seconds gives back the input, with each unit within its range.
func TestFormatSeconds_Decomposition(t *testing.T) {
	for _, s := range []int64{0, 1, 59, 60, 61, 3599, 3600, 86399, 86400, 86401, 123456789} {
		var d, h, m, sec int64
		got := FormatSeconds(s)
		if _, err := fmt.Sscanf(strings.ReplaceAll(got, " ", ""), "%dd%dh%dm%ds", &d, &h, &m, &sec); err != nil {
			t.Fatalf("unscannable output %q: %v", got, err)
		}
		if d*86400+h*3600+m*60+sec != s {
			t.Errorf("decomposition of %d does not recombine: %q", s, got)
		}
		if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
			t.Errorf("unit out of range for %d: %q", s, got)
		}
	}
}
