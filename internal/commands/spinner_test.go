package commands

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Sarah Chen is typing")
	s.start()
	// Let it spin briefly
	time.Sleep(200 * time.Millisecond)
	s.stopWithSuccess("done")

	out := buf.String()
	if !strings.Contains(out, "Sarah Chen is typing") {
		t.Errorf("spinner never rendered its message: %q", out)
	}
	if !strings.HasSuffix(out, "done\n") {
		t.Errorf("missing success line: %q", out)
	}
}

func TestSpinnerLifecycle_StopWithError(t *testing.T) {
	s := newSpinner(io.Discard, "Connecting")
	s.start()
	time.Sleep(30 * time.Millisecond)
	// Should stop cleanly on error (no panic)
	s.stopWithError()
	s.stopWithError()
}

func TestSpinnerFrame(t *testing.T) {
	s := newSpinner(io.Discard, "Alex Rivera is typing")
	s.began = time.Now()

	for tick := 0; tick < 2*(pulseDots+1); tick++ {
		s.tick = tick
		out := s.frame()
		if !strings.Contains(out, "Alex Rivera is typing") || !strings.Contains(out, "0s") {
			t.Fatalf("tick %d: frame = %q", tick, out)
		}
		raised := strings.Count(out, "●")
		want := 1
		if tick%(pulseDots+1) == pulseDots {
			want = 0
		}
		if raised != want {
			t.Errorf("tick %d: %d raised dots, want %d", tick, raised, want)
		}
	}
}
