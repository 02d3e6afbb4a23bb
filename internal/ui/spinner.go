package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/gridcore/internal/ui/styles"
	"golang.org/x/term"
)

// Spinner provides a simple animated spinner for long operations such as
// loading a large file or waiting on a query. It writes to stderr so piped
// output stays clean.
type Spinner struct {
	message string
	out     io.Writer
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	running bool
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		out:     os.Stderr,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation in the background. Nothing is drawn until
// showAfter has passed, so fast loads do not flicker.
func (s *Spinner) Start() {
	if styles.IsAccessible() || !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}

	s.running = true
	go func() {
		defer close(s.stopped)
		style := lipgloss.NewStyle().Foreground(styles.Accent)
		start := time.Now()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		drawn := false
		for i := 0; ; {
			select {
			case <-s.done:
				if drawn {
					fmt.Fprint(s.out, "\r\033[K")
				}
				return
			case <-ticker.C:
				elapsed := time.Since(start)
				if elapsed < showAfter {
					continue
				}
				fmt.Fprintf(s.out, "\r\033[K%s", frame(style, i, s.message, elapsed))
				drawn = true
				i++
			}
		}
	}()
}

// Stop stops the spinner and waits for the line to be cleared. It is safe
// to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		if s.running {
			<-s.stopped
		}
	})
}

const showAfter = 200 * time.Millisecond

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// frame renders one animation step. Waits past a second show the elapsed
// time.
func frame(style lipgloss.Style, i int, message string, elapsed time.Duration) string {
	line := styles.Render(style, frames[i%len(frames)]) + " " + message
	if elapsed >= time.Second {
		line += styles.Mutef(" (%ds)", int(elapsed.Seconds()))
	}
	return line
}
