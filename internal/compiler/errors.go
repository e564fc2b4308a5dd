package compiler

import "strings"

// CompileError collects every diagnostic produced during one Compile call.
// The source material stops the scanner/parser relationship at "did any
// error occur" (hadError); Go callers get the actual messages back instead
// of having to re-run with a different reporting mode.
type CompileError struct {
	Messages []string
}

func (e *CompileError) Error() string {
	return strings.Join(e.Messages, "\n")
}
