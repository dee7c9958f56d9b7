// Package deploy composes the connectivity probe, file synchronizer,
// remote executor and service manager into one end-to-end deployment.
package deploy

import (
	"context"
	"path"

	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/logging"
	"github.com/arthur-debert/framectl/pkg/probe"
	"github.com/arthur-debert/framectl/pkg/service"
	"github.com/arthur-debert/framectl/pkg/syncer"
	"github.com/arthur-debert/framectl/pkg/types"
)

// Stage names let a caller tell exactly which part of a deployment failed.
type Stage string

const (
	StageConnectivity Stage = "connectivity"
	StageSync         Stage = "sync"
	StagePermissions  Stage = "permissions"
	StageProvision    Stage = "provision"
	StageService      Stage = "service"
)

// StageOutcome records how one stage of the deployment went.
type StageOutcome struct {
	Stage Stage
	Err   error
}

// Result is the full deployment report.
type Result struct {
	Stages []StageOutcome
	// ServiceState is the state observed after the final stage.
	ServiceState types.ServiceState
	// ManualStart is set when the service could not be restarted
	// automatically, with Reason explaining why.
	ManualStart bool
	Reason      string
}

// FailedStage returns the first stage that failed, if any.
func (r *Result) FailedStage() (Stage, error) {
	for _, s := range r.Stages {
		if s.Err != nil {
			return s.Stage, s.Err
		}
	}
	return "", nil
}

// Options configures one deployment run.
type Options struct {
	Config    *config.Config
	Target    types.Target
	LocalRoot string
	// Runner spawns the local ping/rsync/ssh processes. Tests substitute
	// a scripted runner.
	Runner executor.Runner
	// ForceContinue skips the known-host guard. Interactive prompting
	// belongs in the CLI shell, never here.
	ForceContinue bool
	// DryRun previews the sync and stops before anything mutates the
	// device.
	DryRun bool
}

// Run executes the deployment pipeline: probe, sync, permissions, remote
// provisioning, service restart. Each gate aborts the run, so a sync is
// never attempted against an unreachable host and provisioning never
// follows a failed sync. Remote commands run strictly one at a time.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("deploy")
	result := &Result{ServiceState: types.ServiceUnknown}

	if opts.Target.Host != opts.Config.Target.Host && !opts.ForceContinue {
		return result, errors.Newf(errors.ErrInvalidInput,
			"%s is not the configured frame host (%s); pass --force to deploy anyway",
			opts.Target.Host, opts.Config.Target.Host)
	}

	// Gate 1: connectivity. No side effects have happened yet.
	if !probe.New(opts.Runner).Reachable(ctx, opts.Target.Host) {
		err := errors.Newf(errors.ErrConnectivity, "%s is unreachable", opts.Target.Host)
		result.Stages = append(result.Stages, StageOutcome{Stage: StageConnectivity, Err: err})
		return result, err
	}
	result.Stages = append(result.Stages, StageOutcome{Stage: StageConnectivity})
	logger.Info().Str("host", opts.Target.Host).Msg("target reachable")

	// Gate 2: mirror the project tree.
	manifest := types.SyncManifest{
		LocalRoot:        opts.LocalRoot,
		RemoteDir:        opts.Config.Remote.Dir,
		Excludes:         opts.Config.Sync.Excludes,
		DeleteExtraneous: true,
		DryRun:           opts.DryRun,
	}
	if _, err := syncer.New(opts.Runner).Sync(ctx, opts.Target, manifest); err != nil {
		result.Stages = append(result.Stages, StageOutcome{Stage: StageSync, Err: err})
		return result, err
	}
	result.Stages = append(result.Stages, StageOutcome{Stage: StageSync})

	if opts.DryRun {
		logger.Info().Msg("dry run, stopping before remote provisioning")
		result.ManualStart = false
		result.Reason = "dry run: provisioning and service restart skipped"
		return result, nil
	}

	remote := executor.NewRemote(opts.Target, opts.Runner)
	provisionBin := path.Join(opts.Config.Remote.Dir, opts.Config.Remote.ProvisionBin)

	// rsync preserves permissions, but a fresh checkout may never have
	// been executable in the first place.
	if _, err := remote.Exec(ctx, "chmod", "+x", provisionBin); err != nil {
		result.Stages = append(result.Stages, StageOutcome{Stage: StagePermissions, Err: err})
		return result, err
	}
	result.Stages = append(result.Stages, StageOutcome{Stage: StagePermissions})

	// Gate 3: run the provisioning pipeline on the device.
	if _, err := remote.Exec(ctx, "sudo", provisionBin, "provision", "--dir", opts.Config.Remote.Dir); err != nil {
		result.Stages = append(result.Stages, StageOutcome{Stage: StageProvision, Err: err})
		return result, err
	}
	result.Stages = append(result.Stages, StageOutcome{Stage: StageProvision})

	// Final stage: pick up the new code. "Not installed" and "installed
	// but stopped" are different situations and reported as such.
	mgr := service.NewManager(remote, opts.Config.Service.Unit)
	state, err := mgr.Status(ctx)
	if err != nil {
		// Query failure reads as not running, never assumed healthy.
		result.Stages = append(result.Stages, StageOutcome{Stage: StageService, Err: err})
		result.ManualStart = true
		result.Reason = "service state could not be determined"
		return result, err
	}

	switch state {
	case types.ServiceNotInstalled:
		result.ManualStart = true
		result.Reason = "service unit is not installed; start the frame manually"
	case types.ServiceDisabled:
		result.ManualStart = true
		result.Reason = "service unit is installed but not enabled; enable and start it manually"
	default:
		if err := mgr.Restart(ctx); err != nil {
			result.Stages = append(result.Stages, StageOutcome{Stage: StageService, Err: err})
			result.ServiceState = state
			return result, err
		}
		state, err = mgr.Status(ctx)
		if err != nil {
			state = types.ServiceUnknown
		}
	}

	result.ServiceState = state
	result.Stages = append(result.Stages, StageOutcome{Stage: StageService})
	logger.Info().Str("state", string(state)).Msg("deployment complete")
	return result, nil
}
