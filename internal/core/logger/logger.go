// internal/core/logger/logger.go
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus" // Using logrus for structured logging
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.SetOutput(os.Stderr) // stdout is reserved for provider results
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: false,
	})
	log.SetLevel(logrus.InfoLevel)
}

// SetupLogger configures the logger based on the provided level string.
func SetupLogger(level string) {
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel) // Default to info if unknown level
	}
}

// SetOutput redirects log output, e.g. to io.Discard in tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// DisableColors turns off ANSI colors in the text formatter.
func DisableColors() {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})
}

// GetLogger returns the configured logger instance.
func GetLogger() *logrus.Logger {
	return log
}
