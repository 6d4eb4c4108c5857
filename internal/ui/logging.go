package ui

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	Debug bool
	log   *logrus.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stderr, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !debug,
		FullTimestamp:    true,
	})

	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}

	return &Logger{Debug: debug, log: l}
}

// SetOutput redirects log lines, e.g. above a running progress bar.
func (l *Logger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log.Debugf(trim(format), args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log.Infof(trim(format), args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log.Warnf(trim(format), args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log.Errorf(trim(format), args...)
}

// logrus terminates entries itself
func trim(format string) string {
	return strings.TrimSuffix(format, "\n")
}
