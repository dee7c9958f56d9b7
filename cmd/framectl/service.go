package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/service"
	"github.com/arthur-debert/framectl/pkg/style"
)

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Control the frame service on the target",
	}

	for _, verb := range []string{"start", "stop", "restart"} {
		verb := verb
		cmd.AddCommand(&cobra.Command{
			Use:   fmt.Sprintf("%s [user@host]", verb),
			Short: fmt.Sprintf("%s the frame service", verb),
			Args:  cobra.MaximumNArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				cfg, target, err := loadTarget(args)
				if err != nil {
					return err
				}

				remote := executor.NewRemote(target, executor.NewLocalRunner())
				mgr := service.NewManager(remote, cfg.Service.Unit)

				var action func(context.Context) error
				switch verb {
				case "start":
					action = mgr.Start
				case "stop":
					action = mgr.Stop
				default:
					action = mgr.Restart
				}
				if err := action(c.Context()); err != nil {
					return err
				}

				state, err := mgr.Status(c.Context())
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s\n", cfg.Service.Unit, style.RenderState(state))
				return nil
			},
		})
	}

	return cmd
}
