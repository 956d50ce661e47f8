// Package exit carries the outcome of an invocation back to main: what to
// print, where, and the process exit code.
package exit

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Result is a terminal outcome. main prints Message to Output and exits
// with ExitCode.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the message, ensuring a trailing newline.
func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
	if !strings.HasSuffix(r.Message, "\n") {
		fmt.Fprintln(r.Output)
	}
}

// Success is a clean exit printing to stdout, used for the usage text.
func Success(message string) *Result {
	return &Result{Output: os.Stdout, Message: message}
}

// Errorf is a failed invocation printing a formatted message to stderr.
func Errorf(format string, a ...any) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: 1,
		Message:  fmt.Sprintf(format, a...),
	}
}
