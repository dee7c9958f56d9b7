package deploy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/framectl/pkg/commands/deploy"
	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/executor/executortest"
	"github.com/arthur-debert/framectl/pkg/types"
)

func testOptions(t *testing.T, fake *executortest.Runner) deploy.Options {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	return deploy.Options{
		Config:    cfg,
		Target:    types.Target{User: "pi", Host: cfg.Target.Host},
		LocalRoot: "/home/dev/picture-frame",
		Runner:    fake,
	}
}

// scriptHealthyTarget makes the device reachable with an enabled, running
// service.
func scriptHealthyTarget(fake *executortest.Runner) {
	fake.RespondExit("ping", 0)
	fake.RespondExit("rsync", 0)
	fake.RespondExit("ssh", 0)
	fake.Respond("ssh -o BatchMode=yes -o ConnectTimeout=10 pi@raspberrypi.local -- systemctl is-enabled",
		executor.Result{Stdout: "enabled\n"}, nil)
	fake.Respond("ssh -o BatchMode=yes -o ConnectTimeout=10 pi@raspberrypi.local -- systemctl is-active",
		executor.Result{Stdout: "active\n"}, nil)
}

func TestDeployHappyPathRestartsService(t *testing.T) {
	fake := executortest.NewRunner()
	scriptHealthyTarget(fake)

	result, err := deploy.Run(context.Background(), testOptions(t, fake))
	require.NoError(t, err)

	failed, _ := result.FailedStage()
	assert.Empty(t, failed)
	assert.Equal(t, types.ServiceRunning, result.ServiceState)
	assert.False(t, result.ManualStart)

	assert.True(t, fake.CalledMatching("ping"))
	assert.True(t, fake.CalledMatching("rsync"))
	assert.True(t, fake.CalledMatching("chmod +x /home/pi/picture-frame/bin/framectl"))
	assert.True(t, fake.CalledMatching("sudo /home/pi/picture-frame/bin/framectl provision"))
	assert.True(t, fake.CalledMatching("systemctl restart picture-frame.service"))
}

func TestUnreachableHostStopsEverything(t *testing.T) {
	fake := executortest.NewRunner()
	fake.RespondExit("ping", 1)

	result, err := deploy.Run(context.Background(), testOptions(t, fake))

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConnectivity))
	stage, _ := result.FailedStage()
	assert.Equal(t, deploy.StageConnectivity, stage)
	assert.False(t, fake.CalledMatching("rsync"), "no sync may be attempted against an unreachable host")
	assert.False(t, fake.CalledMatching("ssh"), "no remote execution either")
}

func TestSyncFailureAbortsBeforeRemoteExecution(t *testing.T) {
	fake := executortest.NewRunner()
	fake.RespondExit("ping", 0)
	fake.Respond("rsync", executor.Result{ExitCode: 23, Stderr: "partial transfer"}, nil)

	result, err := deploy.Run(context.Background(), testOptions(t, fake))

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSync))
	stage, _ := result.FailedStage()
	assert.Equal(t, deploy.StageSync, stage)
	assert.False(t, fake.CalledMatching("ssh"), "provisioning must not follow a failed sync")
}

func TestProvisionFailureReportsStage(t *testing.T) {
	fake := executortest.NewRunner()
	scriptHealthyTarget(fake)
	fake.Respond("ssh -o BatchMode=yes -o ConnectTimeout=10 pi@raspberrypi.local -- sudo",
		executor.Result{ExitCode: 1, Stderr: "step \"install-packages\" failed"}, nil)

	result, err := deploy.Run(context.Background(), testOptions(t, fake))

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteExec))
	stage, stageErr := result.FailedStage()
	assert.Equal(t, deploy.StageProvision, stage)
	assert.Contains(t, stageErr.Error(), "install-packages")
	assert.False(t, fake.CalledMatching("systemctl restart"))
}

func TestNotInstalledServiceMeansManualStart(t *testing.T) {
	fake := executortest.NewRunner()
	scriptHealthyTarget(fake)
	fake.Respond("ssh -o BatchMode=yes -o ConnectTimeout=10 pi@raspberrypi.local -- systemctl is-enabled",
		executor.Result{Stdout: "not-found\n", ExitCode: 4}, nil)

	result, err := deploy.Run(context.Background(), testOptions(t, fake))
	require.NoError(t, err)

	assert.True(t, result.ManualStart)
	assert.Contains(t, result.Reason, "not installed")
	assert.Equal(t, types.ServiceNotInstalled, result.ServiceState)
	assert.False(t, fake.CalledMatching("systemctl restart"))
}

func TestDisabledServiceDistinctFromAbsent(t *testing.T) {
	fake := executortest.NewRunner()
	scriptHealthyTarget(fake)
	fake.Respond("ssh -o BatchMode=yes -o ConnectTimeout=10 pi@raspberrypi.local -- systemctl is-enabled",
		executor.Result{Stdout: "disabled\n", ExitCode: 1}, nil)
	fake.Respond("ssh -o BatchMode=yes -o ConnectTimeout=10 pi@raspberrypi.local -- systemctl is-active",
		executor.Result{Stdout: "inactive\n", ExitCode: 3}, nil)

	result, err := deploy.Run(context.Background(), testOptions(t, fake))
	require.NoError(t, err)

	assert.True(t, result.ManualStart)
	assert.Contains(t, result.Reason, "not enabled")
	assert.Equal(t, types.ServiceDisabled, result.ServiceState)
}

func TestDryRunStopsBeforeRemoteExecution(t *testing.T) {
	fake := executortest.NewRunner()
	scriptHealthyTarget(fake)

	opts := testOptions(t, fake)
	opts.DryRun = true

	result, err := deploy.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Contains(t, result.Reason, "dry run")
	assert.False(t, result.ManualStart)
	assert.True(t, fake.CalledMatching("--dry-run"))
	assert.False(t, fake.CalledMatching("ssh"), "a dry run never reaches the device over ssh")
}

func TestUnknownHostRequiresForce(t *testing.T) {
	fake := executortest.NewRunner()
	opts := testOptions(t, fake)
	opts.Target = types.Target{User: "pi", Host: "some-other-box.local"}

	_, err := deploy.Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Empty(t, fake.Calls(), "nothing runs without --force")

	opts.ForceContinue = true
	scriptHealthyTarget(fake)
	fake.Respond("ssh -o BatchMode=yes -o ConnectTimeout=10 pi@some-other-box.local -- systemctl is-enabled",
		executor.Result{Stdout: "enabled\n"}, nil)
	fake.Respond("ssh -o BatchMode=yes -o ConnectTimeout=10 pi@some-other-box.local -- systemctl is-active",
		executor.Result{Stdout: "active\n"}, nil)

	_, err = deploy.Run(context.Background(), opts)
	assert.NoError(t, err)
}
