package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/framectl/internal/version"
	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/logging"
)

var (
	verbosity   int
	force       bool
	dryRun      bool
	projectRoot string

	rootCmd = &cobra.Command{
		Use:   "framectl",
		Short: "Provision and deploy the e-paper picture frame",
		Long: `framectl takes a Raspberry Pi from a bare OS image to a running
picture-frame service, and keeps it updated from a developer workstation.

Every provisioning step is idempotent: after any failure, re-running the
same command is the supported recovery path.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command and translates failures into exit codes.
// Components never exit the process themselves; this is the only place a
// framectl error becomes an exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "framectl: %s\n", failureMessage(err))
		return exitCode(err)
	}
	return 0
}

// failureMessage keeps the stable, operator-facing phrasing per failure
// class, falling back to the raw error for anything uncategorized.
func failureMessage(err error) string {
	switch errors.GetErrorCode(err) {
	case errors.ErrConnectivity:
		return fmt.Sprintf("target unreachable: %v", err)
	case errors.ErrSync:
		return fmt.Sprintf("file sync failed: %v", err)
	case errors.ErrConfigMissing, errors.ErrConfigLoad:
		return fmt.Sprintf("configuration problem: %v", err)
	case errors.ErrRemoteExec, errors.ErrStepFailed:
		return fmt.Sprintf("provisioning failed: %v", err)
	case errors.ErrServiceQuery, errors.ErrServiceAction:
		return fmt.Sprintf("service operation failed: %v", err)
	}
	return err.Error()
}

// exitCode gives each failure class a distinct exit status so scripts can
// branch without parsing messages.
func exitCode(err error) int {
	switch errors.GetErrorCode(err) {
	case errors.ErrConnectivity:
		return 2
	case errors.ErrSync:
		return 3
	case errors.ErrConfigMissing, errors.ErrConfigLoad:
		return 4
	case errors.ErrRemoteExec, errors.ErrStepFailed:
		return 5
	case errors.ErrServiceQuery, errors.ErrServiceAction:
		return 6
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview changes without touching the device")
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project", ".", "Project root holding the frame sources and framectl config")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newProvisionCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newServiceCmd())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("framectl version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
