package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
	})
}

// stopwatch times one command. Each step is logged at debug level with the
// time since the previous step; finish logs the total at info level.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func startStopwatch(l *log.Logger) *stopwatch {
	now := time.Now()
	return &stopwatch{logger: l, start: now, last: now}
}

func (s *stopwatch) step(msg string, keyvals ...any) {
	now := time.Now()
	s.logger.Debug(msg, append(keyvals, "took", now.Sub(s.last).Round(time.Millisecond))...)
	s.last = now
}

func (s *stopwatch) finish(msg string, keyvals ...any) {
	s.logger.Info(msg, append(keyvals, "took", time.Since(s.start).Round(time.Millisecond))...)
}
