// Package ui provides terminal output components for the PageLingo CLI.
package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	noColorFlag bool
	verboseFlag bool
)

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verbose bool) {
	noColorFlag = noColor
	verboseFlag = verbose

	if noColor {
		color.NoColor = true
	}
}

// ProgressBar wraps a progressbar instance for per-page progress display.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a new progress bar with the given total and description.
func NewProgressBar(total int64, description string) *ProgressBar {
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

// Set moves the progress bar to the given position.
func (p *ProgressBar) Set(current int64) {
	_ = p.bar.Set64(current)
}

// Finish completes the progress bar and clears the line.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Message displays a simple message.
func Message(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
	fmt.Fprintln(os.Stdout)
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

// Success displays a success message.
func Success(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Warning displays a warning message.
func Warning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "%s %s\n", color.YellowString("⚠"), fmt.Sprintf(format, args...))
}

// Info displays an informational message.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "%s %s\n", color.CyanString("ℹ"), fmt.Sprintf(format, args...))
}

// Verbose displays a message only when verbose mode is on.
func Verbose(format string, args ...interface{}) {
	if verboseFlag {
		fmt.Fprintf(os.Stdout, "%s\n", fmt.Sprintf(format, args...))
	}
}
