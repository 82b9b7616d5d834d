// Package logging prints the bracketed progress lines of a render:
// [*] info, [!] warning, [-] error, [+] success, [>] step.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD75F")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD"))
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type Options struct {
	Verbose bool
	// Color forces marker styling on or off; nil means auto-detect on stdout.
	Color   *bool
	LogFile string

	// Out and Err default to os.Stdout and os.Stderr.
	Out io.Writer
	Err io.Writer
}

// Logger writes leveled lines to the console and, optionally, a plain file.
// It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	file    *os.File
	color   bool
	verbose bool
}

func New(opts Options) (*Logger, error) {
	l := &Logger{out: opts.Out, err: opts.Err, verbose: opts.Verbose}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.err == nil {
		l.err = os.Stderr
	}

	if opts.Color != nil {
		l.color = *opts.Color
	} else {
		l.color = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
	}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0755); err != nil {
			return nil, errors.Wrap(err, "log dir")
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		l.file = f
	}
	return l, nil
}

// Discard returns a logger that prints nothing. Handy in tests.
func Discard() *Logger {
	return &Logger{out: io.Discard, err: io.Discard}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) line(w io.Writer, marker string, style lipgloss.Style, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := marker
	if l.color {
		m = style.Render(marker)
	}
	io.WriteString(w, m+" "+text+"\n")

	if l.file != nil {
		ts := time.Now().Format("2006-01-02 15:04:05")
		io.WriteString(l.file, ts+" "+marker+" "+text+"\n")
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.line(l.out, "[*]", infoStyle, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(l.out, "[!]", warnStyle, fmt.Sprintf(format, args...))
}

// Error goes to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(l.err, "[-]", errorStyle, fmt.Sprintf(format, args...))
}

func (l *Logger) Success(format string, args ...interface{}) {
	l.line(l.out, "[+]", successStyle, fmt.Sprintf(format, args...))
}

// Step reports pipeline progress, e.g. "Ready: 3/12".
func (l *Logger) Step(format string, args ...interface{}) {
	l.line(l.out, "[>]", stepStyle, fmt.Sprintf(format, args...))
}

// Debug prints only in verbose mode.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line(l.out, "[.]", debugStyle, fmt.Sprintf(format, args...))
}
