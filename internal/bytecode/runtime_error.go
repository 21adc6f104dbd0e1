package bytecode

import "fmt"

// RuntimeError is a script-raised or VM-raised error that escaped every
// handler and propagated out of the top-level chunk. Unlike ErrorObject
// (a script-visible value moving through `?`/handler blocks),
// RuntimeError is the host-visible failure returned by VM.Run once no
// AIScript code remains to catch it.
type RuntimeError struct {
	Kind    string
	Message string
	Trace   []Frame
}

// Frame is one entry of a captured call stack, innermost first.
type Frame struct {
	FunctionName string
	Line         int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %s: %s", e.Kind, e.Message)
}

func (e *RuntimeError) FormatTrace() string {
	s := e.Error() + "\n"
	for _, f := range e.Trace {
		s += fmt.Sprintf("  at %s (line %d)\n", f.FunctionName, f.Line)
	}
	return s
}
