package utils

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsStdinTerminal returns true if stdin is a terminal.
func IsStdinTerminal() bool {
	return IsTerminal(os.Stdin)
}

// IsStderrTerminal returns true if stderr is a terminal. Spinners are only shown when it is.
func IsStderrTerminal() bool {
	return IsTerminal(os.Stderr)
}
