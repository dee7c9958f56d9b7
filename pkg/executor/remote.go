package executor

import (
	"context"
	"strings"

	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/logging"
	"github.com/arthur-debert/framectl/pkg/types"
)

// Remote runs commands on a target device over ssh. It is itself a Runner,
// so anything written against Runner (the provisioning pipeline, the
// service manager) works unchanged against a remote device.
//
// Commands are strictly sequential: each call blocks until the remote
// command finishes. Later commands depend on filesystem and service state
// left by earlier ones, so there is no pipelining and no retry.
type Remote struct {
	target types.Target
	runner Runner
}

// NewRemote creates a remote executor for the given target. The underlying
// runner is what actually spawns the ssh client, which keeps Remote
// testable without a device.
func NewRemote(target types.Target, runner Runner) *Remote {
	return &Remote{target: target, runner: runner}
}

// Run executes one command on the target and waits for it.
func (r *Remote) Run(ctx context.Context, name string, args ...string) (Result, error) {
	sshArgs := []string{"-o", "BatchMode=yes", "-o", "ConnectTimeout=10", r.target.Addr(), "--", name}
	sshArgs = append(sshArgs, args...)

	logger := logging.GetLogger("executor.remote")
	logger.Debug().Str("target", r.target.Addr()).Str("cmd", CommandLine(name, args)).Msg("running remote command")

	return r.runner.Run(ctx, "ssh", sshArgs...)
}

// Exec runs a command and converts a non-zero exit into a REMOTE_EXEC
// error carrying the command line and captured stderr. Callers that want
// raw exit codes use Run instead.
func (r *Remote) Exec(ctx context.Context, name string, args ...string) (Result, error) {
	res, err := r.Run(ctx, name, args...)
	if err != nil {
		return res, errors.Wrapf(err, errors.ErrRemoteExec, "ssh to %s failed", r.target.Addr())
	}
	if res.ExitCode != 0 {
		return res, errors.Newf(errors.ErrRemoteExec, "%q exited %d on %s: %s",
			CommandLine(name, args), res.ExitCode, r.target.Addr(), strings.TrimSpace(res.Stderr)).
			WithDetail("exitCode", res.ExitCode)
	}
	return res, nil
}
