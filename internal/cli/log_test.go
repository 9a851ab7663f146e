package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		emit    func(*log.Logger)
		wantLog bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("x") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestStopwatch(t *testing.T) {
	t.Run("finish", func(t *testing.T) {
		var buf bytes.Buffer
		sw := startStopwatch(newLogger(&buf, log.InfoLevel))
		sw.finish("Rendered day.json", "files", 2)
		out := buf.String()
		for _, want := range []string{"Rendered day.json", "files=2", "took="} {
			if !strings.Contains(out, want) {
				t.Errorf("output %q missing %q", out, want)
			}
		}
	})

	t.Run("steps are debug only", func(t *testing.T) {
		var buf bytes.Buffer
		l := newLogger(&buf, log.InfoLevel)
		sw := startStopwatch(l)
		sw.step("wrote tiles")
		if buf.Len() != 0 {
			t.Errorf("step logged at info level: %q", buf.String())
		}
		l.SetLevel(log.DebugLevel)
		sw.step("wrote tiles", "count", 4)
		if !strings.Contains(buf.String(), "count=4") {
			t.Errorf("step output %q missing count", buf.String())
		}
	})
}
