package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const refreshInterval = 100 * time.Millisecond

// Line is a single-line scan status written to a terminal. It satisfies the
// walker's progress hook.
type Line struct {
	writer      io.Writer
	mu          sync.Mutex
	directories int
	current     string
	enabled     bool
	lastUpdate  time.Time
	now         func() time.Time
}

// New writes to w when enabled is true and is silent otherwise.
func New(w io.Writer, enabled bool) *Line {
	return &Line{
		writer:  w,
		enabled: enabled,
		now:     time.Now,
	}
}

// ForStderr enables the line only when stderr is a terminal.
func ForStderr() *Line {
	return New(os.Stderr, IsTerminal(os.Stderr))
}

func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *Line) SetDirectory(dir string) {
	if !l.enabled {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.directories++
	l.current = dir

	// Update at most every 100ms to reduce flickering
	now := l.now()
	if l.directories == 1 || now.Sub(l.lastUpdate) > refreshInterval {
		l.lastUpdate = now
		l.render()
	}
}

// Directories returns how many directories have been reported so far.
func (l *Line) Directories() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.directories
}

// render must be called with mu already locked
func (l *Line) render() {
	fmt.Fprintf(l.writer, "\r\033[KScanning... %d directories | %s", l.directories, filepath.Base(l.current))
}

func (l *Line) Finish() {
	if !l.enabled {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.directories == 0 {
		return
	}
	l.render()
	fmt.Fprintf(l.writer, "\n")
}
