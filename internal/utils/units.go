// Package utils provides unit conversion helpers for the vendor's string
// formats (durations, processing rates) and small file utilities.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// rateMultipliers maps rate units to their bytes-per-second factor.
// Veeam uses powers of 1024.
var rateMultipliers = map[string]float64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// ParseRateBytesPerSecond parses a processing rate string such as
// "131.9 MB/s", "1,1 GB/s" or "500 MB" into bytes per second. The unit
// suffix "/s" is optional and both "." and "," are accepted as decimal
// separator, since the server emits locale dependent numbers.
//
// Returns nil for empty, malformed, or unknown-unit input.
func ParseRateBytesPerSecond(rate string) *float64 {
	fields := strings.Fields(strings.TrimSpace(rate))
	if len(fields) != 2 {
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return nil
	}

	unit := strings.ToUpper(fields[1])
	unit = strings.TrimSuffix(unit, "/S")
	multiplier, ok := rateMultipliers[unit]
	if !ok {
		return nil
	}

	bps := value * multiplier
	return &bps
}

// ParseDurationSeconds parses a duration string in the vendor's
// [D.]HH:MM:SS[.fff] format into total whole seconds.
//
//	"00:03:26"      -> 206
//	"1.02:00:00"    -> 93600
//	"00:00:05.500"  -> 5
//
// Returns nil for empty or malformed input.
func ParseDurationSeconds(duration string) *int64 {
	parts := strings.Split(duration, ":")
	if len(parts) != 3 {
		return nil
	}

	var days, hours int64
	if daysStr, hoursStr, found := strings.Cut(parts[0], "."); found {
		d, err := strconv.ParseInt(daysStr, 10, 64)
		if err != nil {
			return nil
		}
		h, err := strconv.ParseInt(hoursStr, 10, 64)
		if err != nil {
			return nil
		}
		days, hours = d, h
	} else {
		h, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil
		}
		hours = h
	}

	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}

	// Fractional seconds are truncated.
	secondsStr, _, _ := strings.Cut(parts[2], ".")
	seconds, err := strconv.ParseInt(secondsStr, 10, 64)
	if err != nil {
		return nil
	}

	total := days*86400 + hours*3600 + minutes*60 + seconds
	return &total
}

// FormatDurationHMS renders total seconds as HH:MM:SS for display. The hour
// field is unbounded, it is not wrapped at 24.
func FormatDurationHMS(seconds int64) string {
	hours := seconds / 3600
	remainder := seconds % 3600
	return fmt.Sprintf("%02d:%02d:%02d", hours, remainder/60, remainder%60)
}
