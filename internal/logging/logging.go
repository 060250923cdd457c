// Package logging provides centralized logging functionality using logrus.
// All output goes to stderr: stdout is reserved for the agent's section
// payload consumed by the monitoring platform.
package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup initializes the logging system. Debug mode enables per-call timing
// output at DEBUG level.
func Setup(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05",
	})
	if debug {
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug mode enabled")
	}
}

// LogInfo logs an informational message.
func LogInfo(msg string) {
	log.Info(msg)
}

// LogError logs a recoverable error message that does not terminate the run.
func LogError(msg string) {
	log.Error(msg)
}
