package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck // no need to check for error when printing to the terminal
	fmt.Fprintf(w, format+"\n", a...)
}

// infof prints a message prefixed with a bold cyan "Info: ".
func infof(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.Bold, color.FgCyan).Fprint(w, "Info: ")
	printf(w, format, a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.Bold, color.FgYellow).Fprint(w, "Warning: ")
	printf(w, format, a...)
}

// Errorf prints a message prefixed with a bold red "Error: ".
func Errorf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.Bold, color.FgRed).Fprint(w, "Error: ")
	printf(w, format, a...)
}

// verdict prints whether a world is valid, listing the broken invariants when it is not.
func verdict(w io.Writer, err error) {
	if err == nil {
		//nolint:errcheck
		color.New(color.Bold, color.FgGreen).Fprintln(w, "VALID")
		return
	}
	//nolint:errcheck
	color.New(color.Bold, color.FgRed).Fprintln(w, "INVALID")
	for _, line := range strings.Split(err.Error(), "; ") {
		printf(w, "  %s", line)
	}
}
