package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
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

func TestSpinnerStop(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), "Computing layout...")
	s.w = &out
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
	if out.String() == "" {
		t.Error("spinner wrote nothing")
	}
	// Stop is idempotent.
	s.Stop()
}

func TestSpinnerCancelledByContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s := newSpinner(ctx, "Rendering svg...")
			s.w = &syncBuffer{}
			s.Start()
			if tt.name == "cancel" {
				cancel()
			} else {
				defer cancel()
			}
			time.Sleep(100 * time.Millisecond)
			if !s.Cancelled() {
				t.Error("spinner should be cancelled")
			}
		})
	}
}

func TestSpinnerUpdate(t *testing.T) {
	s := newSpinner(context.Background(), "short")
	s.w = &syncBuffer{}
	s.Start()
	s.Update("a considerably longer message")
	s.Stop()
	if s.width != len("a considerably longer message") {
		t.Errorf("width = %d", s.width)
	}
}
