package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ThinkingMessage is shown while a turn is in flight
const ThinkingMessage = "ChatLegis is thinking..."

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// ShowProgress runs fn while a spinner with message is drawn on w. When w
// is not a terminal, fn just runs. fn always runs to completion: the call
// it wraps is bounded by the transport timeout, not by the spinner.
func ShowProgress(ctx context.Context, w io.Writer, message string, fn func() error) error {
	if !IsTerminal(w) {
		LogDebug(message)
		return fn()
	}
	return showProgressSimple(ctx, w, message, fn)
}

// showProgressSimple uses a simple text-based spinner
func showProgressSimple(ctx context.Context, w io.Writer, message string, fn func() error) error {
	spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				char := spinnerChars[i%len(spinnerChars)]
				fmt.Fprintf(w, "\r%s %s", progressStyle.Render(char), message)
				i++
			}
		}
	}()

	err := fn()
	close(stop)
	<-spinnerDone

	if err != nil {
		fmt.Fprintf(w, "\r%s %s\n", errorStyle.Render("✗"), message)
		return err
	}
	fmt.Fprintf(w, "\r%s %s\n", successStyle.Render("✓"), message)
	return nil
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	if IsTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Fprintln(w, message)
	}
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	if IsTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(w, "ERROR: %s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	if IsTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Fprintln(w, message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	if IsTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(w, "WARNING: %s\n", message)
	}
}
