package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimestamp renders milliseconds as m:ss.mmm.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%d:%02d.%03d", minutes, seconds, millis)
}

// ParseTimestamp accepts plain milliseconds ("1500") or m:ss[.mmm] ("1:02.500").
func ParseTimestamp(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: empty timestamp", ErrInvalidTimestamp)
	}
	if !strings.Contains(value, ":") {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
		}
		return ms, validateTimestamp(ms)
	}

	minutePart, rest, _ := strings.Cut(value, ":")
	secondPart, millisPart, hasMillis := strings.Cut(rest, ".")
	minutes, err := strconv.ParseInt(minutePart, 10, 64)
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	seconds, err := strconv.ParseInt(secondPart, 10, 64)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	var millis int64
	if hasMillis {
		if len(millisPart) == 0 || len(millisPart) > 3 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
		}
		millis, err = strconv.ParseInt(millisPart, 10, 64)
		if err != nil || millis < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
		}
		for i := len(millisPart); i < 3; i++ {
			millis *= 10
		}
	}
	ms := minutes*60000 + seconds*1000 + millis
	return ms, validateTimestamp(ms)
}
