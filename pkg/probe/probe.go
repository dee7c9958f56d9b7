// Package probe verifies a target device is reachable before any
// destructive or time-consuming deployment work begins.
package probe

import (
	"context"
	"strconv"
	"time"

	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/logging"
)

// DefaultTimeout bounds the single reachability check.
const DefaultTimeout = 2 * time.Second

// Probe answers whether a host is reachable right now.
type Probe struct {
	runner  executor.Runner
	timeout time.Duration
}

// New creates a probe with the default timeout.
func New(runner executor.Runner) *Probe {
	return &Probe{runner: runner, timeout: DefaultTimeout}
}

// WithTimeout overrides the probe timeout.
func (p *Probe) WithTimeout(d time.Duration) *Probe {
	p.timeout = d
	return p
}

// Reachable sends one ping to the host. Unreachability is a normal
// result, never an error: timeouts, DNS failures and non-zero exits all
// report false. The deploy orchestrator treats false as a hard gate.
func (p *Probe) Reachable(ctx context.Context, host string) bool {
	logger := logging.GetLogger("probe")

	secs := int(p.timeout / time.Second)
	if secs < 1 {
		secs = 1
	}

	res, err := p.runner.Run(ctx, "ping", "-c", "1", "-W", strconv.Itoa(secs), host)
	if err != nil {
		logger.Debug().Err(err).Str("host", host).Msg("ping could not run")
		return false
	}
	if res.ExitCode != 0 {
		logger.Debug().Str("host", host).Int("exit", res.ExitCode).Msg("host unreachable")
		return false
	}
	return true
}
