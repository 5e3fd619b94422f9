package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// ConsoleLogger writes human-readable log lines to stderr, keeping stdout
// free for machine-readable command output.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}
