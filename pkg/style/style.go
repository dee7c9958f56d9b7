// Package style renders deployment progress and service state for the
// terminal.
package style

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/framectl/pkg/types"
)

func init() {
	// Plain output when piped
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pterm.DisableStyling()
	}
}

// StateStyle returns the pterm style for a service state.
func StateStyle(state types.ServiceState) *pterm.Style {
	switch state {
	case types.ServiceRunning:
		return pterm.NewStyle(pterm.FgGreen)
	case types.ServiceFailed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case types.ServiceStopped, types.ServiceDisabled:
		return pterm.NewStyle(pterm.FgYellow)
	case types.ServiceNotInstalled:
		return pterm.NewStyle(pterm.FgGray)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// RenderState renders a service state with color.
func RenderState(state types.ServiceState) string {
	return StateStyle(state).Sprint(string(state))
}

// Stage prints a deployment stage header.
func Stage(name string) {
	pterm.DefaultSection.Println(name)
}

// StageOK reports a successful stage.
func StageOK(msg string) {
	pterm.Success.Println(msg)
}

// StageWarn reports a stage that finished in a degraded way.
func StageWarn(msg string) {
	pterm.Warning.Println(msg)
}

// StageFail reports a failed stage.
func StageFail(msg string) {
	pterm.Error.Println(msg)
}

// StepLine renders one pipeline step outcome.
func StepLine(outcome types.StepOutcome) string {
	switch outcome.Disposition {
	case types.SkippedSatisfied:
		return pterm.FgGray.Sprintf("  = %s (already satisfied)", outcome.Name)
	case types.SkippedWarning:
		return pterm.FgYellow.Sprintf("  ! %s (skipped: %v)", outcome.Name, outcome.Warning)
	default:
		return pterm.FgGreen.Sprintf("  + %s", outcome.Name)
	}
}
