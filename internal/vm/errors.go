package vm

import (
	"fmt"
	"strings"
)

// traceFrame captures one line of a runtime error's stack trace: which
// function was executing and at what source line (spec §7, "Runtime
// error reporting").
type traceFrame struct {
	FunctionName string
	Line         int
}

// RuntimeError is returned by Interpret/Run when script execution fails
// after successfully compiling — a thrown exception in the source
// material's terms, except cinder has no user-catchable exceptions (spec
// §4.3 Non-goals), so every one of these terminates the run.
type RuntimeError struct {
	Message string
	Trace   []traceFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i := len(e.Trace) - 1; i >= 0; i-- {
		f := e.Trace[i]
		b.WriteString("\n[line ")
		b.WriteString(fmt.Sprint(f.Line))
		b.WriteString("] in ")
		b.WriteString(f.FunctionName)
	}
	return b.String()
}

func newRuntimeError(format string, trace []traceFrame, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Trace: trace}
}
