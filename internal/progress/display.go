package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// spinnerInterval is the frame delay for the animated spinner.
const spinnerInterval = 100 * time.Millisecond

// Display shows a spinner while a slow operation runs and replaces it with
// a status line when the operation finishes. A nil *Display is valid and
// every method on it is a no-op, so callers can stay silent in pipelines,
// tests, and --plain output without branching.
type Display struct {
	spin    *spinner.Spinner
	symbols ProgressSymbols
	color   bool
	out     io.Writer
}

// NewDisplay returns a Display when stdout is an interactive terminal and
// nil otherwise.
func NewDisplay(out io.Writer) *Display {
	caps := DetectTerminalCapabilities()
	if !caps.IsTTY {
		return nil
	}
	symbols := SelectSymbols(caps)

	s := spinner.New(spinner.CharSets[symbols.SpinnerSet], spinnerInterval, spinner.WithWriter(out))
	if caps.SupportsColor {
		_ = s.Color("cyan")
	}

	return &Display{
		spin:    s,
		symbols: symbols,
		color:   caps.SupportsColor,
		out:     out,
	}
}

// Start begins the spinner with the given status message.
func (d *Display) Start(message string) {
	if d == nil {
		return
	}
	d.spin.Suffix = " " + message
	d.spin.Start()
}

// Update replaces the status message while the spinner keeps running.
func (d *Display) Update(message string) {
	if d == nil {
		return
	}
	d.spin.Lock()
	d.spin.Suffix = " " + message
	d.spin.Unlock()
}

// Complete stops the spinner and prints a checkmark line.
func (d *Display) Complete(message string) {
	d.finish(d.checkmark(), message)
}

// Fail stops the spinner and prints a failure line.
func (d *Display) Fail(message string) {
	d.finish(d.failure(), message)
}

// Stop halts the spinner without printing a status line. Use it before
// handing the terminal to other output, such as a formatted error.
func (d *Display) Stop() {
	if d == nil {
		return
	}
	if d.spin.Active() {
		d.spin.Stop()
	}
}

func (d *Display) finish(symbol, message string) {
	if d == nil {
		return
	}
	d.Stop()
	fmt.Fprintf(d.out, "%s %s\n", symbol, message)
}

func (d *Display) checkmark() string {
	if d == nil {
		return ""
	}
	if d.color {
		return color.New(color.FgGreen, color.Bold).Sprint(d.symbols.Checkmark)
	}
	return d.symbols.Checkmark
}

func (d *Display) failure() string {
	if d == nil {
		return ""
	}
	if d.color {
		return color.New(color.FgRed, color.Bold).Sprint(d.symbols.Failure)
	}
	return d.symbols.Failure
}
