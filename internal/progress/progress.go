// Package progress implements the engine's stage-progress callback and a
// terminal spinner that renders it, suppressed automatically when
// stderr isn't a TTY.
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Func is the callback invoked at each engine stage boundary: stage is a short tag ("discover", "extract",
// "score", ...), detail is a one-line human-readable status.
type Func func(stage, detail string)

// Noop is a Func that does nothing, used when the caller doesn't want
// progress reporting.
func Noop(string, string) {}

// Spinner displays an animated spinner on stderr for the engine's
// duration. It is a no-op when the writer is not a TTY (piped output,
// CI), so it never corrupts JSON-mode or redirected output.
type Spinner struct {
	mu      sync.Mutex
	frames  []string
	current int
	message string
	active  bool
	isTTY   bool
	writer  *os.File
	ticker  *time.Ticker
	done    chan struct{}
}

// NewSpinner creates a Spinner writing to w (typically os.Stderr).
func NewSpinner(w *os.File) *Spinner {
	return &Spinner{
		frames: []string{"|", "/", "-", "\\"},
		writer: w,
		isTTY:  isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()),
		done:   make(chan struct{}),
	}
}

// Func returns a progress.Func that drives this spinner's message.
func (s *Spinner) Func() Func {
	return func(_, detail string) { s.Update(detail) }
}

// Start begins displaying the spinner with the given message.
func (s *Spinner) Start(message string) {
	if !s.isTTY {
		return
	}

	s.mu.Lock()
	s.active = true
	s.message = message
	s.mu.Unlock()

	const spinnerInterval = 100 * time.Millisecond
	s.ticker = time.NewTicker(spinnerInterval)
	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.active {
					s.mu.Unlock()
					return
				}
				frame := s.frames[s.current%len(s.frames)]
				msg := s.message
				s.current++
				s.mu.Unlock()
				fmt.Fprintf(s.writer, "\r%s %s", frame, msg)
			}
		}
	}()
}

// Update changes the spinner message; the next tick displays it.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the spinner and optionally prints a final message.
func (s *Spinner) Stop(finalMessage string) {
	if !s.isTTY {
		return
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if finalMessage != "" {
		fmt.Fprintf(s.writer, "\r%s\n", finalMessage)
	} else {
		fmt.Fprintf(s.writer, "\r\033[K")
	}
}
