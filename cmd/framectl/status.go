package main

import (
	"fmt"

	"github.com/spf13/cobra"

	statuscmd "github.com/arthur-debert/framectl/pkg/commands/status"
	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/style"
	"github.com/arthur-debert/framectl/pkg/types"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [user@host]",
		Short: "Report the frame service's state on the target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, target, err := loadTarget(args)
			if err != nil {
				return err
			}

			report := statuscmd.Run(cmd.Context(), statuscmd.Options{
				Config: cfg,
				Target: target,
				Runner: executor.NewLocalRunner(),
			})

			if !report.Reachable {
				fmt.Printf("%s: unreachable\n", target.Addr())
				return nil
			}
			fmt.Printf("%s: %s\n", target.Addr(), style.RenderState(report.State))
			return nil
		},
	}
}

// loadTarget resolves config and the optional positional connection
// string shared by status and service commands.
func loadTarget(args []string) (*config.Config, types.Target, error) {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, types.Target{}, err
	}
	connString := cfg.DefaultTarget()
	if len(args) >= 1 {
		connString = args[0]
	}
	target, err := types.ParseTarget(connString)
	if err != nil {
		return nil, types.Target{}, err
	}
	return cfg, target, nil
}
