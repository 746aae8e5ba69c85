package style

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// brailleDots is the tick sequence of the status spinner
var brailleDots = []string{"⠁", "⠂", "⠄", "⡀", "⢀", "⠠", "⠐", "⠈"}

const tickDelay = 100 * time.Millisecond

type Spinner interface {
	SetSuffix(suffix string)
	SetFinalMSG(finalMSG string)
	Start()
	Stop()
}

// TestSpinner is a spinner implementation for testing that outputs each
// spinner update on a new line instead of clearing and redrawing
type TestSpinner struct {
	mu       sync.Mutex
	Suffix   string
	FinalMSG string
	Writer   io.Writer
	active   bool
	color    func(a ...interface{}) string
}

// NewTestSpinner creates a line-oriented spinner writing to w. The final
// message is colored the way the terminal spinner draws its frames, unless
// color is turned off (NO_COLOR or output that is not a terminal).
func NewTestSpinner(w io.Writer) *TestSpinner {
	return &TestSpinner{
		Writer: w,
		color:  color.New(color.FgGreen).SprintFunc(),
	}
}

func (s *TestSpinner) SetSuffix(suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.Writer, "[SET SUFFIX] %s\n", suffix)
	s.Suffix = suffix
}

func (s *TestSpinner) SetFinalMSG(finalMSG string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FinalMSG = finalMSG
}

// Start will start the indicator.
func (s *TestSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	fmt.Fprintf(s.Writer, "[SPINNER START]\n")
}

// Stop stops the indicator.
func (s *TestSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	fmt.Fprintf(s.Writer, "[SPINNER STOP]\n")
	if s.FinalMSG != "" {
		msg := strings.TrimSuffix(s.FinalMSG, "\n")
		fmt.Fprintf(s.Writer, "[FINAL MSG] %s%s", s.color(msg), s.FinalMSG[len(msg):])
	}
}

type TerminalSpinner struct {
	spinner *spinner.Spinner
}

func NewTerminalSpinner(cs []string, d time.Duration, options ...spinner.Option) *TerminalSpinner {
	return &TerminalSpinner{
		spinner: spinner.New(cs, d, options...),
	}
}

func (s *TerminalSpinner) SetSuffix(suffix string) {
	s.spinner.Lock()
	s.spinner.Suffix = suffix
	s.spinner.Unlock()
}

func (s *TerminalSpinner) SetFinalMSG(finalMSG string) {
	s.spinner.Lock()
	s.spinner.FinalMSG = finalMSG
	s.spinner.Unlock()
}

func (s *TerminalSpinner) Start() {
	s.spinner.Start()
}

func (s *TerminalSpinner) Stop() {
	s.spinner.Stop()
}

// plainSpinner prints only the final message, for output that is not a terminal
type plainSpinner struct {
	w        io.Writer
	finalMSG string
}

func (s *plainSpinner) SetSuffix(string)            {}
func (s *plainSpinner) SetFinalMSG(finalMSG string) { s.finalMSG = finalMSG }
func (s *plainSpinner) Start()                      {}
func (s *plainSpinner) Stop()                       { fmt.Fprint(s.w, s.finalMSG) }

// NewSpinner returns the line-oriented spinner when GET_RUST_TEST is set,
// the animated one when w is a terminal, and a silent one otherwise.
func NewSpinner(w io.Writer) Spinner {
	if os.Getenv("GET_RUST_TEST") == "true" {
		return NewTestSpinner(w)
	}

	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		return &plainSpinner{w: w}
	}

	return NewTerminalSpinner(brailleDots, tickDelay, spinner.WithWriter(w), spinner.WithColor("green"))
}

// StatusReporter shows pipeline status on a spinner. The spinner ticks on
// its own goroutine; SetMessage only swaps the text it draws.
type StatusReporter struct {
	spinner  Spinner
	once     sync.Once
	finished sync.Once
	failed   func(msg string) bool
}

// NewStatusReporter wraps s. isFailure decides whether a final message is
// drawn with the error icon.
func NewStatusReporter(s Spinner, isFailure func(msg string) bool) *StatusReporter {
	return &StatusReporter{spinner: s, failed: isFailure}
}

func (r *StatusReporter) SetMessage(msg string) {
	r.spinner.SetSuffix(" " + msg)
	r.once.Do(r.spinner.Start)
}

func (r *StatusReporter) Finish(msg string) {
	r.finished.Do(func() {
		icon := SuccessIcon()
		if r.failed != nil && r.failed(msg) {
			icon = ErrorIcon()
		}
		r.spinner.SetFinalMSG(fmt.Sprintf("%s %s\n", icon, msg))
		// a run that fails before any status still prints its final line
		r.once.Do(r.spinner.Start)
		r.spinner.Stop()
	})
}
