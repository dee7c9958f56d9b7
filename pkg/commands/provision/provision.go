// Package provision is the command layer over the on-device pipeline.
package provision

import (
	"context"

	"github.com/spf13/afero"

	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/logging"
	"github.com/arthur-debert/framectl/pkg/pipeline"
	"github.com/arthur-debert/framectl/pkg/provision"
	"github.com/arthur-debert/framectl/pkg/types"
)

// Options defines the options for the Provision command.
type Options struct {
	Config *config.Config
	// Dir is the project directory on the device.
	Dir string
	// ServiceUser owns the data directories the pipeline creates.
	ServiceUser string
	// Runner and Fs default to the real machine; tests inject fakes.
	Runner executor.Runner
	Fs     afero.Fs
}

// Run executes the full provisioning pipeline and returns its result.
// The result is a report, not a checkpoint: a failed run is retried by
// running the whole pipeline again.
func Run(ctx context.Context, opts Options) types.PipelineResult {
	log := logging.GetLogger("commands.provision")
	log.Info().Str("dir", opts.Dir).Msg("provisioning device")

	runner := opts.Runner
	if runner == nil {
		runner = executor.NewLocalRunner()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	user := opts.ServiceUser
	if user == "" {
		user = opts.Config.Target.User
	}

	env := provision.Env{
		Runner:      runner,
		Fs:          fs,
		Config:      opts.Config,
		BaseDir:     opts.Dir,
		ServiceUser: user,
	}

	result := pipeline.Run(ctx, provision.Steps(env))
	if result.OK() {
		log.Info().Int("steps", len(result.Completed)).Msg("provisioning complete")
	} else {
		log.Error().Str("step", result.FailedStep).Err(result.Cause).Msg("provisioning failed")
	}
	return result
}
