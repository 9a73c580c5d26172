package executor

// Result is the uniform outcome of a command invocation.
//
// Success is true exactly when Error is empty. Output holds the captured
// standard output, Error the captured standard error (or a description of
// why the process could not run).
type Result struct {
	Command string `json:"command"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// Failed returns a failed Result for command carrying msg as its error.
func Failed(command, msg string) Result {
	if msg == "" {
		msg = "command failed"
	}
	return Result{Command: command, Error: msg}
}

// Succeeded returns a successful Result for command with the given output.
func Succeeded(command, output string) Result {
	return Result{Command: command, Output: output, Success: true}
}
