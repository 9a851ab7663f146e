package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner redraws a one-line status with the elapsed time until stopped or
// until its context is done. A nil spinner is valid and does nothing.
type spinner struct {
	w     io.Writer
	start time.Time
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	message string
	width   int
}

func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	s := &spinner{
		w:       w,
		start:   time.Now(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		message: message,
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(spinnerInterval)
	defer t.Stop()
	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.stop:
			s.clear()
			return
		case <-t.C:
		}
	}
}

// SetMessage replaces the status text.
func (s *spinner) SetMessage(msg string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// Stop clears the line and waits for the animation to end. It may be called
// more than once.
func (s *spinner) Stop() {
	if s == nil {
		return
	}
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.start).Truncate(time.Second)
	line := styleIconSpinner.Render(frame) + " " + s.message + " " + StyleDim.Render(elapsed.String())
	w := lipgloss.Width(line)
	pad := ""
	if w < s.width {
		pad = strings.Repeat(" ", s.width-w)
	}
	s.width = w
	fmt.Fprintf(s.w, "\r%s%s", line, pad)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}
