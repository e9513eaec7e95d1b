package errors

import (
	"fmt"
	"os"
	"strings"
)

// DisplayErrors prints a source-annotated error listing to stderr, one
// entry per error. source may be empty — this module's boundary starts
// at the compiled code unit, so a CLI driving it from a .pvmb file
// rarely has the original text on hand; when it's missing (or the
// recorded position falls outside it) the output degrades to the
// Kind/Message line alone, without the source/caret lines.
func DisplayErrors(source string, errs []ScriptError) {
	if len(errs) == 0 {
		return
	}

	var lines []string
	if source != "" {
		lines = strings.Split(source, "\n")
	}

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(os.Stderr, "%s Error: %s\n", kind, msg)
			continue
		}

		sourceLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")
		fmt.Fprintf(os.Stderr, "%s Error at %d:%d: %s\n", kind, pos.Line, pos.Column, msg)
		fmt.Fprintf(os.Stderr, "  %s\n", sourceLine)
		if pos.Column > 0 && pos.Column <= len(sourceLine)+1 {
			fmt.Fprintf(os.Stderr, "  %s^\n", strings.Repeat(" ", pos.Column-1))
		}
	}
}
