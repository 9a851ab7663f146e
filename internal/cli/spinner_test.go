package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Rendering day.json")
	time.Sleep(3 * spinnerInterval)
	s.SetMessage("Writing tiles")
	time.Sleep(2 * spinnerInterval)
	s.Stop()

	got := out.String()
	for _, want := range []string{"Rendering day.json", "Writing tiles"} {
		if !strings.Contains(got, want) {
			t.Errorf("output is missing %q", want)
		}
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("line should be cleared on stop, output ends with %q", got[max(0, len(got)-10):])
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinner(ctx, &syncBuffer{}, "waiting")
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after cancel")
	}
	s.Stop()
}

func TestSpinnerStopTwice(t *testing.T) {
	s := startSpinner(context.Background(), &syncBuffer{}, "x")
	s.Stop()
	s.Stop()
}

func TestNilSpinner(t *testing.T) {
	var s *spinner
	s.SetMessage("ignored")
	s.Stop()
}
