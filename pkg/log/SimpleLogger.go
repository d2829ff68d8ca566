// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// SimpleLogger writes one JSON object per message.
type SimpleLogger struct {
	entry *logrus.Entry
}

func (s *SimpleLogger) log(level logrus.Level, msg string, fields map[string]interface{}) error {
	s.entry.WithFields(logrus.Fields(fields)).Log(level, msg)
	return nil
}

// Log writes the message at the info level.
func (s *SimpleLogger) Log(msg string, fields map[string]interface{}) error {
	return s.log(logrus.InfoLevel, msg, fields)
}

func (s *SimpleLogger) Debug(msg string, fields map[string]interface{}) error {
	return s.log(logrus.DebugLevel, msg, fields)
}

func (s *SimpleLogger) Warn(msg string, fields map[string]interface{}) error {
	return s.log(logrus.WarnLevel, msg, fields)
}

func (s *SimpleLogger) Error(msg string, fields map[string]interface{}) error {
	return s.log(logrus.ErrorLevel, msg, fields)
}

// With returns a logger that adds the given fields to every message.
func (s *SimpleLogger) With(fields map[string]interface{}) *SimpleLogger {
	return &SimpleLogger{entry: s.entry.WithFields(logrus.Fields(fields))}
}

// SetLevel sets the minimum level written, one of: trace, debug, info, warn, error, fatal, panic.
func (s *SimpleLogger) SetLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	s.entry.Logger.SetLevel(l)
	return nil
}

func NewSimpleLogger(w io.Writer) *SimpleLogger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &SimpleLogger{entry: logrus.NewEntry(logger)}
}

// NewDiscardLogger returns a logger that drops every message.
func NewDiscardLogger() *SimpleLogger {
	return NewSimpleLogger(io.Discard)
}
