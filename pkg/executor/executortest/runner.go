// Package executortest provides a scripted Runner for tests that need to
// observe or fake command execution.
package executortest

import (
	"context"
	"strings"
	"sync"

	"github.com/arthur-debert/framectl/pkg/executor"
)

// Call records one command the runner was asked to execute.
type Call struct {
	Name string
	Args []string
}

// Line renders the call the way executor.CommandLine would.
func (c Call) Line() string {
	return executor.CommandLine(c.Name, c.Args)
}

// Response is what a scripted runner hands back for a matching command.
type Response struct {
	Result executor.Result
	Err    error
}

// Runner is a scripted executor.Runner. Responses are matched by command
// line prefix; unmatched commands succeed with empty output so tests only
// script what they care about.
type Runner struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]Response
}

// NewRunner creates an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{responses: make(map[string]Response)}
}

// Respond registers a response for any command whose rendered command line
// starts with prefix.
func (r *Runner) Respond(prefix string, res executor.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[prefix] = Response{Result: res, Err: err}
}

// RespondExit is shorthand for scripting just an exit code.
func (r *Runner) RespondExit(prefix string, exitCode int) {
	r.Respond(prefix, executor.Result{ExitCode: exitCode}, nil)
}

// RespondStdout is shorthand for a successful command with output.
func (r *Runner) RespondStdout(prefix, stdout string) {
	r.Respond(prefix, executor.Result{Stdout: stdout}, nil)
}

// Run records the call and returns the scripted response, if any.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (executor.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := Call{Name: name, Args: args}
	r.calls = append(r.calls, call)

	line := call.Line()
	// Longest matching prefix wins so "dpkg -s python3-pip" can override
	// a catch-all "dpkg" script.
	var best string
	for prefix := range r.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		resp := r.responses[best]
		return resp.Result, resp.Err
	}
	return executor.Result{}, nil
}

// Calls returns every recorded call in order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallLines returns the rendered command line of every recorded call.
func (r *Runner) CallLines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// CalledMatching reports whether any recorded call contains substr.
func (r *Runner) CalledMatching(substr string) bool {
	for _, line := range r.CallLines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
