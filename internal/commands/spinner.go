package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// pulseColors tint the bouncing typing dots.
var pulseColors = []lipgloss.Color{
	lipgloss.Color("#7aa2f7"),
	lipgloss.Color("#7dcfff"),
	lipgloss.Color("#bb9af7"),
	lipgloss.Color("#9ece6a"),
}

const (
	pulseDots     = 3
	pulseInterval = 120 * time.Millisecond
)

// spinner is the headless stand-in for the TUI typing indicator: a line of
// dots with one raised dot moving across, followed by the message and the
// time waited so far.
type spinner struct {
	w       io.Writer
	message string
	began   time.Time

	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	tick    int
	stopped bool
}

// newSpinner creates a typing indicator writing to w
func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start draws the indicator until one of the stop methods is called
func (s *spinner) start() {
	s.began = time.Now()
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(pulseInterval)
		defer ticker.Stop()

		_, _ = fmt.Fprint(s.w, "\033[?25l")
		for {
			select {
			case <-s.stop:
				_, _ = fmt.Fprint(s.w, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				_, _ = fmt.Fprint(s.w, "\r\033[K"+s.frame())
				s.tick++
				s.mu.Unlock()
			}
		}
	}()
}

// frame renders the current state. Callers hold s.mu.
func (s *spinner) frame() string {
	raised := s.tick % (pulseDots + 1)

	var dots strings.Builder
	for i := 0; i < pulseDots; i++ {
		if i > 0 {
			dots.WriteByte(' ')
		}
		if i == raised {
			color := pulseColors[(s.tick/(pulseDots+1))%len(pulseColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("•"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	waited := dimStyle.Render(fmt.Sprintf("%.0fs", time.Since(s.began).Seconds()))
	return fmt.Sprintf("%s  %s %s", dots.String(), msg, waited)
}

func (s *spinner) halt() {
	s.mu.Lock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
	s.mu.Unlock()
	<-s.done
}

// stopWithSuccess clears the indicator and prints a check line
func (s *spinner) stopWithSuccess(message string) {
	s.halt()
	check := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	_, _ = fmt.Fprintf(s.w, "%s %s\n", check, lipgloss.NewStyle().Foreground(colorSuccess).Render(message))
}

// stopWithError clears the indicator. Safe to call more than once.
func (s *spinner) stopWithError() {
	s.halt()
}
