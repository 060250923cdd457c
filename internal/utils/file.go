package utils

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ReadFile loads a YAML file into the provided target.
func ReadFile(target interface{}, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ConvertTimeToFilterDate formats a time for the createdAfterFilter query
// parameter (ISO-8601 UTC, second precision).
func ConvertTimeToFilterDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// AgeSeconds returns the whole seconds elapsed since an ISO-8601 timestamp,
// or nil when the timestamp is empty or unparseable.
func AgeSeconds(timestamp string) *int64 {
	if timestamp == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return nil
	}
	age := int64(time.Since(t).Seconds())
	return &age
}
