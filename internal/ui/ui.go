// Package ui provides terminal output for indicator listings and the
// interactive catalog browser.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	// Check if it's a file that's a terminal
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// IsInputTTY checks if input is a terminal.
func IsInputTTY(r io.Reader) bool {
	if f, ok := r.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// Interactive reports whether the full-screen browser can run on in/out.
func Interactive(in io.Reader, out io.Writer) bool {
	return IsInputTTY(in) && IsTTY(out) && !DetectCI()
}

// StylesFor returns colored styles for terminals unless NO_COLOR is set.
func StylesFor(w io.Writer) Styles {
	return GetStyles(!IsTTY(w) || DetectNoColor())
}
