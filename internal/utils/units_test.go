package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateBytesPerSecond(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"bytes", "512 B/s", 512},
		{"kilobytes", "2 KB/s", 2 * 1024},
		{"megabytes", "500 MB/s", 500 * 1024 * 1024},
		{"gigabytes european decimal", "1,1 GB/s", 1.1 * 1024 * 1024 * 1024},
		{"terabytes", "0.5 TB/s", 0.5 * 1024 * 1024 * 1024 * 1024},
		{"suffix optional", "500 MB", 500 * 1024 * 1024},
		{"lowercase unit", "10 mb/s", 10 * 1024 * 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := ParseRateBytesPerSecond(tt.input)
			require.NotNil(t, rate)
			assert.InDelta(t, tt.expected, *rate, 0.001)
		})
	}
}

func TestParseRateBytesPerSecond_DecimalSeparatorEquivalence(t *testing.T) {
	european := ParseRateBytesPerSecond("131,9 MB")
	american := ParseRateBytesPerSecond("131.9 MB/s")
	require.NotNil(t, european)
	require.NotNil(t, american)
	assert.Equal(t, *american, *european)
}

func TestParseRateBytesPerSecond_Malformed(t *testing.T) {
	for _, input := range []string{"", "fast", "1.5", "1.5 XB/s", "a MB/s", "1 2 MB/s"} {
		assert.Nil(t, ParseRateBytesPerSecond(input), "input %q", input)
	}
}

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"00:03:26", 206},
		{"02:00:00", 7200},
		{"1.02:00:00", 93600},
		{"3.00:00:01", 259201},
		{"00:00:05.500", 5},
		{"25:00:00", 90000},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			secs := ParseDurationSeconds(tt.input)
			require.NotNil(t, secs)
			assert.Equal(t, tt.expected, *secs)
		})
	}
}

func TestParseDurationSeconds_Malformed(t *testing.T) {
	for _, input := range []string{"", "12:34", "1:2:3:4", "aa:00:00", "00:bb:00", "00:00:cc", "x.1:00:00"} {
		assert.Nil(t, ParseDurationSeconds(input), "input %q", input)
	}
}

func TestFormatDurationHMS(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDurationHMS(0))
	assert.Equal(t, "00:03:26", FormatDurationHMS(206))
	assert.Equal(t, "02:00:00", FormatDurationHMS(7200))
	// The hour field is unbounded.
	assert.Equal(t, "26:00:00", FormatDurationHMS(93600))
}

func TestDurationRoundTrip(t *testing.T) {
	// format(parse(s)) normalizes any valid duration, including day
	// prefixes, into unwrapped HH:MM:SS.
	tests := []struct {
		input      string
		normalized string
	}{
		{"00:03:26", "00:03:26"},
		{"1.02:00:00", "26:00:00"},
		{"23:59:59", "23:59:59"},
	}
	for _, tt := range tests {
		secs := ParseDurationSeconds(tt.input)
		require.NotNil(t, secs)
		assert.Equal(t, tt.normalized, FormatDurationHMS(*secs))
	}
}
