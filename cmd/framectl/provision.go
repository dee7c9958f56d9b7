package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	provisioncmd "github.com/arthur-debert/framectl/pkg/commands/provision"
	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/style"
	"github.com/arthur-debert/framectl/pkg/types"
)

func newProvisionCmd() *cobra.Command {
	var dir string
	var serviceUser string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Run the on-device provisioning pipeline (requires root)",
		Long: `Provision brings this device from a bare OS image to a machine ready
to run the picture-frame service: package upgrade, dependency install, SPI
enablement, directory setup, boot configuration and service unit install.

All steps are idempotent; re-run freely after any failure. The service
unit install is optional: if the unit file is missing the pipeline still
succeeds and the frame must be started manually.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Geteuid() != 0 {
				return errors.New(errors.ErrInvalidInput, "provision must run as root (try sudo)")
			}

			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			result := provisioncmd.Run(cmd.Context(), provisioncmd.Options{
				Config:      cfg,
				Dir:         dir,
				ServiceUser: serviceUser,
			})

			for _, outcome := range result.Completed {
				fmt.Println(style.StepLine(outcome))
			}
			if !result.OK() {
				style.StageFail(fmt.Sprintf("step %q failed", result.FailedStep))
				return result.Cause
			}
			if warned(result) {
				style.StageWarn("provisioning complete; service unit missing, start the frame manually")
			} else {
				style.StageOK("provisioning complete")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", defaultProvisionDir(), "Project directory on the device")
	cmd.Flags().StringVar(&serviceUser, "user", "", "Account that owns the photo and log directories (default: configured target user)")
	return cmd
}

func warned(result types.PipelineResult) bool {
	for _, o := range result.Completed {
		if o.Disposition == types.SkippedWarning {
			return true
		}
	}
	return false
}

func defaultProvisionDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
