package config

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Without verbose output nothing is
// written.
func NewLogger(verbose bool, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetOutput(w)
	} else {
		logger.SetLevel(logrus.WarnLevel)
		logger.SetOutput(io.Discard)
	}
	return logger
}
