// Package executor abstracts command execution so the provisioning
// pipeline and deploy orchestrator can run against a real shell, an ssh
// channel, or a scripted fake in tests.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/arthur-debert/framectl/pkg/logging"
)

// Result captures everything framectl cares about from a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs one command to completion and reports its outcome.
// A non-zero exit code comes back in Result with a nil error; the error
// return is reserved for failing to run the command at all (binary
// missing, context cancelled).
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// LocalRunner executes commands on the local machine via os/exec.
type LocalRunner struct{}

// NewLocalRunner creates a LocalRunner.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes the command synchronously, capturing stdout and stderr.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	logger := logging.GetLogger("executor.local")
	logger.Debug().Str("cmd", name).Strs("args", args).Msg("running command")

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			logger.Debug().Str("cmd", name).Int("exit", res.ExitCode).Msg("command exited non-zero")
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// CommandLine renders a command and its args for log and error messages.
func CommandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
