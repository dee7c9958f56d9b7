package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/framectl/pkg/commands/deploy"
	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/style"
	"github.com/arthur-debert/framectl/pkg/types"
)

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [user@host]",
		Short: "Sync sources to the frame, provision it and restart the service",
		Long: `Deploy runs the full pipeline against the target device: reachability
check, mirror sync of the project tree, remote provisioning, and a service
restart to pick up the new code.

With no argument the configured frame host is used. Deploying to a host
that is not the configured one requires --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(projectRoot)
			if err != nil {
				return err
			}

			connString := cfg.DefaultTarget()
			if len(args) == 1 {
				connString = args[0]
			}
			target, err := types.ParseTarget(connString)
			if err != nil {
				return err
			}

			style.Stage(fmt.Sprintf("Deploying to %s", target.Addr()))
			result, err := deploy.Run(cmd.Context(), deploy.Options{
				Config:        cfg,
				Target:        target,
				LocalRoot:     projectRoot,
				Runner:        executor.NewLocalRunner(),
				ForceContinue: force,
				DryRun:        dryRun,
			})
			printDeployResult(result)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Deploy even if the target is not the configured frame host")
	return cmd
}

func printDeployResult(result *deploy.Result) {
	if result == nil {
		return
	}
	for _, stage := range result.Stages {
		if stage.Err != nil {
			style.StageFail(fmt.Sprintf("%s: %v", stage.Stage, stage.Err))
			continue
		}
		style.StageOK(string(stage.Stage))
	}
	if failed, _ := result.FailedStage(); failed != "" {
		return
	}
	if result.ManualStart {
		style.StageWarn(result.Reason)
	} else if result.Reason != "" {
		style.StageOK(result.Reason)
		return
	}
	fmt.Printf("service state: %s\n", style.RenderState(result.ServiceState))
}
