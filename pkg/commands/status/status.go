// Package status reports the frame service's state on a target device.
package status

import (
	"context"

	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/logging"
	"github.com/arthur-debert/framectl/pkg/probe"
	"github.com/arthur-debert/framectl/pkg/service"
	"github.com/arthur-debert/framectl/pkg/types"
)

// Options defines the options for the Status command.
type Options struct {
	Config *config.Config
	Target types.Target
	Runner executor.Runner
}

// Report is what the CLI renders.
type Report struct {
	Target    types.Target
	Reachable bool
	State     types.ServiceState
}

// Run probes the target and queries the service state. An unreachable
// target short-circuits with ServiceUnknown; a failed state query also
// reports ServiceUnknown rather than guessing.
func Run(ctx context.Context, opts Options) Report {
	log := logging.GetLogger("commands.status")

	report := Report{Target: opts.Target, State: types.ServiceUnknown}
	if !probe.New(opts.Runner).Reachable(ctx, opts.Target.Host) {
		log.Warn().Str("host", opts.Target.Host).Msg("target unreachable")
		return report
	}
	report.Reachable = true

	remote := executor.NewRemote(opts.Target, opts.Runner)
	state, err := service.NewManager(remote, opts.Config.Service.Unit).Status(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("service state query failed")
		return report
	}
	report.State = state
	return report
}
