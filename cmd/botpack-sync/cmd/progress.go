package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// renderer draws progress events. On a terminal it rewrites one line;
// otherwise it prints one line per distinct status.
type renderer struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	tty     bool
	width   int
	last    string
}

func newRenderer(out io.Writer, enabled bool) *renderer {
	r := &renderer{out: out, enabled: enabled}
	if f, ok := out.(*os.File); ok {
		r.tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return r
}

// Emit implements progress.Sink.
func (r *renderer) Emit(percent float64, status string) error {
	if !r.enabled {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("%3.0f%% %s", clamp(percent), status)
	if !r.tty {
		if status == r.last {
			return nil
		}
		r.last = status
		_, err := fmt.Fprintln(r.out, line)
		return err
	}

	pad := ""
	if n := r.width - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	r.width = len(line)
	_, err := fmt.Fprint(r.out, "\r"+line+pad)
	return err
}

// Finish ends a rewritten line so later output starts on its own line.
func (r *renderer) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled && r.tty && r.width > 0 {
		fmt.Fprintln(r.out)
		r.width = 0
	}
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
