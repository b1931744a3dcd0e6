package simulation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Timer measures wall time since it was created or last reset.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer { return &Timer{start: time.Now()} }

func (t *Timer) Reset()              { t.start = time.Now() }
func (t *Timer) Time() time.Duration { return time.Since(t.start) }

// Format renders seconds for people: "0.0019 seconds", "4.25 seconds" or
// "5 weeks, 3 days, 1 hour, 4 minutes, 9 seconds". Leading zero units are
// omitted.
func Format(seconds float64) string {
	if seconds < 1e-2 {
		return strconv.FormatFloat(seconds, 'g', -1, 64) + " seconds"
	}
	if seconds < 60 {
		return strconv.FormatFloat(math.Round(seconds*100)/100, 'f', -1, 64) + " seconds"
	}
	rest := int64(math.RoundToEven(seconds))
	units := []struct {
		size int64
		name string
	}{{604800, "week"}, {86400, "day"}, {3600, "hour"}, {60, "minute"}}
	var out []string
	for _, u := range units {
		n := rest / u.size
		if n > 0 || len(out) > 0 {
			out = append(out, plural(n, u.name))
		}
		rest -= n * u.size
	}
	out = append(out, plural(rest, "second"))
	return strings.Join(out, ", ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
