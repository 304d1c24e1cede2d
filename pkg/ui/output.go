// Package ui renders autopr's terminal output: start and finish banners,
// per-stage progress and the final error line.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	// Banner is used for the start line.
	Banner = color.New(color.FgBlue, color.Bold)
	// Success is used for completed stages and the finish line.
	Success = color.New(color.FgGreen, color.Bold)
	// Failure is used for failed stages and the final error.
	Failure = color.New(color.FgHiRed, color.Bold)
	// Dim is used for secondary detail such as the PR URL label.
	Dim = color.New(color.FgHiBlack)
)

// PrintStart writes the banner shown before the workflow begins.
func PrintStart(w io.Writer) {
	_, _ = fmt.Fprintln(w, Banner.Sprint("Starting pullrequest process..."))
}

// PrintDone writes the banner shown after the pull request was created, and
// the URL of the new pull request.
func PrintDone(w io.Writer, url string) {
	_, _ = fmt.Fprintln(w, Success.Sprint("pullrequest process completed."))
	if url != "" {
		_, _ = fmt.Fprintf(w, "%s %s\n", Dim.Sprint("Pull request:"), url)
	}
}

// PrintError writes msg in bright red.
func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, Failure.Sprint(msg))
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
