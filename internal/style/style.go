// Package style provides consistent terminal styling and status colors/icons
// using Lipgloss.
package style

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Dim     = lipgloss.NewStyle().Faint(true)
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	Gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

var (
	verboseMu sync.RWMutex
	verbose   bool
)

// SetVerbose toggles Debugf output. Called once from the root command's
// --verbose flag binding.
func SetVerbose(v bool) {
	verboseMu.Lock()
	defer verboseMu.Unlock()
	verbose = v
}

func isVerbose() bool {
	verboseMu.RLock()
	defer verboseMu.RUnlock()
	return verbose
}

// PrintWarning writes a yellow, prefixed warning to stderr.
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, Warning.Render("warning:")+" "+fmt.Sprintf(format, args...))
}

// PrintError writes a red, prefixed error to stderr.
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, Red.Render("error:")+" "+fmt.Sprintf(format, args...))
}

// PrintInfo writes a plain informational line to stderr.
func PrintInfo(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}

// Debugf writes a dim debug line to stderr, only when verbose mode is on.
func Debugf(format string, args ...interface{}) {
	if !isVerbose() {
		return
	}
	fmt.Fprintln(os.Stderr, Dim.Render("debug:")+" "+fmt.Sprintf(format, args...))
}

// Color names the display color for an agent pane's status, per §4.D.
type Color int

const (
	ColorGreen Color = iota
	ColorDim
	ColorYellow
	ColorRed
	ColorGray
)

// Render applies the lipgloss style for a Color to s.
func (c Color) Render(s string) string {
	switch c {
	case ColorGreen:
		return Green.Render(s)
	case ColorDim:
		return Dim.Render(s)
	case ColorYellow:
		return Yellow.Render(s)
	case ColorRed:
		return Red.Render(s)
	default:
		return Gray.Render(s)
	}
}

// Spinner frame sets, per §4.D: foreground-running and background-running
// cycle through distinct 4-frame sets so they're distinguishable at a glance.
var (
	ForegroundFrames = [4]rune{'|', '/', '-', '\\'}
	BackgroundFrames = [4]rune{'.', 'o', 'O', 'o'}
)

// Icon returns the status icon for frame counter f (ticked once per render
// period, ~250ms) and the given display parameters.
func Icon(frames [4]rune, f int) rune {
	return frames[f%4]
}

// BlinkVisible reports whether a 500ms-blink icon should be shown this frame,
// per §4.D's WaitingInput rule: shown when (f/2) mod 2 == 0.
func BlinkVisible(f int) bool {
	return (f/2)%2 == 0
}
