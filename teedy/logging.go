package teedy

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// leveledLogger adapts a logrus logger to retryablehttp.LeveledLogger.
// Per-request info is demoted to debug.
type leveledLogger struct {
	logrus.FieldLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.withPairs(keysAndValues).Error(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.withPairs(keysAndValues).Warn(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.withPairs(keysAndValues).Debug(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.withPairs(keysAndValues).Debug(msg)
}

func (l leveledLogger) withPairs(keysAndValues []interface{}) logrus.FieldLogger {
	if len(keysAndValues) == 0 {
		return l.FieldLogger
	}
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.WithFields(fields)
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
