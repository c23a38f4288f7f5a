package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var iso8601Re = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration accepts either Go shorthand ("10m", "30s", "500ms") or an
// ISO-8601 duration ("PT10M", "P1DT2H"), matching the config document's
// stated format (§6.2).
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: duration is required", ErrInvalid)
	}
	if s[0] == 'P' {
		return parseISO8601Duration(s)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration %q: %v", ErrInvalid, s, err)
	}
	return d, nil
}

func parseISO8601Duration(s string) (time.Duration, error) {
	m := iso8601Re.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: invalid ISO-8601 duration %q", ErrInvalid, s)
	}
	var total time.Duration
	if m[1] != "" {
		days, _ := strconv.Atoi(m[1])
		total += time.Duration(days) * 24 * time.Hour
	}
	if m[2] != "" {
		hours, _ := strconv.Atoi(m[2])
		total += time.Duration(hours) * time.Hour
	}
	if m[3] != "" {
		minutes, _ := strconv.Atoi(m[3])
		total += time.Duration(minutes) * time.Minute
	}
	if m[4] != "" {
		secs, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid ISO-8601 duration seconds in %q", ErrInvalid, s)
		}
		total += time.Duration(secs * float64(time.Second))
	}
	return total, nil
}
