// Package pipeline runs an ordered list of idempotent provisioning steps.
//
// Ordering is total and caller-specified: later steps depend on package,
// filesystem and service state established by earlier ones. The runner is
// fail-fast by default and never rolls back; every step is individually
// idempotent, so the recovery path after any failure is a full re-run.
package pipeline

import (
	"context"

	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/logging"
	"github.com/arthur-debert/framectl/pkg/types"
)

// Run executes steps strictly in order.
//
// Before each step the precondition is evaluated; if it already holds the
// action is skipped and the step recorded as satisfied. On the first
// failing action with the FailFast policy, execution stops and the result
// names the failing step; subsequent steps never run. A step with
// WarnAndContinue records its failure as a warning instead and the
// pipeline moves on.
func Run(ctx context.Context, steps []types.Step) types.PipelineResult {
	logger := logging.GetLogger("pipeline")
	result := types.PipelineResult{}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			result.FailedStep = step.Name
			result.Cause = errors.Wrap(err, errors.ErrStepFailed, "pipeline interrupted")
			return result
		}

		stepLog := logger.With().Str("step", step.Name).Logger()

		if step.Precondition != nil {
			satisfied, err := step.Precondition(ctx)
			if err != nil {
				stepLog.Error().Err(err).Msg("precondition check failed")
				result.FailedStep = step.Name
				result.Cause = errors.Wrapf(err, errors.ErrStepFailed, "step %q precondition check failed", step.Name)
				return result
			}
			if satisfied {
				stepLog.Info().Msg("already satisfied, skipping")
				result.Completed = append(result.Completed, types.StepOutcome{
					Name:        step.Name,
					Disposition: types.SkippedSatisfied,
				})
				continue
			}
		}

		stepLog.Info().Msg("applying")
		if err := step.Action(ctx); err != nil {
			if step.OnFailure == types.WarnAndContinue {
				stepLog.Warn().Err(err).Msg("step failed, continuing by policy")
				result.Completed = append(result.Completed, types.StepOutcome{
					Name:        step.Name,
					Disposition: types.SkippedWarning,
					Warning:     err,
				})
				continue
			}
			stepLog.Error().Err(err).Msg("step failed")
			result.FailedStep = step.Name
			result.Cause = stepCause(step.Name, err)
			return result
		}

		result.Completed = append(result.Completed, types.StepOutcome{
			Name:        step.Name,
			Disposition: types.Applied,
		})
	}

	return result
}

// stepCause wraps an action failure as STEP_FAILED, unless the error
// already carries a code of its own. A missing requirements manifest is a
// CONFIG_MISSING error, not a step failure, and must stay distinguishable
// at the CLI.
func stepCause(name string, err error) error {
	if errors.GetErrorCode(err) != errors.ErrUnknown {
		return err
	}
	return errors.Wrapf(err, errors.ErrStepFailed, "step %q failed", name)
}
