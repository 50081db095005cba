package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a seek argument cannot be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// SeekTarget is a parsed seek argument.
type SeekTarget struct {
	Offset   time.Duration
	Relative bool // Offset is added to the current position
}

// maxSeekSeconds is the largest offset, in seconds, a time.Duration can hold.
// Larger inputs saturate to it; the result is clamped to the track anyway.
const maxSeekSeconds = math.MaxInt64 / int64(time.Second)

// ParseSeekTarget parses a seek argument.
// A plain (optionally signed) integer is a relative offset in seconds.
// "MM:SS" and "H:MM:SS" are absolute positions.
func ParseSeekTarget(input string) (SeekTarget, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return SeekTarget{}, ErrInvalidTimestamp
	}

	if !strings.Contains(input, ":") {
		seconds, err := parseSeconds(input)
		if err != nil {
			return SeekTarget{}, err
		}
		return SeekTarget{Offset: time.Duration(seconds) * time.Second, Relative: true}, nil
	}

	parts := strings.Split(input, ":")
	if len(parts) > 3 {
		return SeekTarget{}, ErrInvalidTimestamp
	}

	var total int64
	for _, part := range parts {
		n, err := parseSeconds(part)
		if err != nil || n < 0 || strings.HasPrefix(part, "-") {
			return SeekTarget{}, ErrInvalidTimestamp
		}
		if total > (maxSeekSeconds-n)/60 {
			total = maxSeekSeconds
			continue
		}
		total = total*60 + n
	}

	return SeekTarget{Offset: time.Duration(total) * time.Second}, nil
}

// parseSeconds parses a signed integer, saturating at ±maxSeekSeconds.
func parseSeconds(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		// ParseInt returns the saturated bound alongside ErrRange.
	case err != nil:
		return 0, ErrInvalidTimestamp
	}
	return max(-maxSeekSeconds, min(n, maxSeekSeconds)), nil
}

// Resolve computes the absolute position for this target, clamped to
// [0, length].
func (s SeekTarget) Resolve(position, length time.Duration) time.Duration {
	if !s.Relative {
		return max(0, min(s.Offset, length))
	}

	// Bounding both terms by length keeps the sum from overflowing without
	// changing the clamped result.
	position = max(0, min(position, length))
	offset := max(-length, min(s.Offset, length))
	return max(0, min(position+offset, length))
}

// FormatTimestamp formats d as MM:SS, or as H:MM:SS when the reference
// length reaches one hour.
func FormatTimestamp(d, length time.Duration) string {
	total := int64(max(d, 0) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if length >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", hours*60+minutes, seconds)
}
