// Package types defines the core data model shared across framectl:
// deployment targets, provisioning steps, sync manifests and service state.
package types

import (
	"context"
	"strings"

	"github.com/arthur-debert/framectl/pkg/errors"
)

// DefaultUser is the account framectl connects as when the connection
// string carries no user portion.
const DefaultUser = "pi"

// Target identifies the device a deployment is aimed at.
// It is created once per invocation and never mutated.
type Target struct {
	User string
	Host string
}

// ParseTarget builds a Target from a "user@host" connection string.
// A bare "host" is accepted and gets DefaultUser.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, errors.New(errors.ErrInvalidInput, "empty connection string")
	}

	user := DefaultUser
	host := s
	if at := strings.Index(s, "@"); at >= 0 {
		user = s[:at]
		host = s[at+1:]
	}
	if host == "" || user == "" || strings.Contains(host, "@") {
		return Target{}, errors.Newf(errors.ErrInvalidInput, "malformed connection string %q", s)
	}
	return Target{User: user, Host: host}, nil
}

// Addr returns the ssh-style user@host form.
func (t Target) Addr() string {
	return t.User + "@" + t.Host
}

// FailurePolicy controls what the step runner does when a step's action fails.
type FailurePolicy int

const (
	// FailFast aborts the whole pipeline on failure. This is the default.
	FailFast FailurePolicy = iota
	// WarnAndContinue records a warning and moves on to the next step.
	WarnAndContinue
)

// Step is one idempotent unit of provisioning work. Re-running a step
// whose precondition already holds must leave the device unchanged.
type Step struct {
	Name string
	// Precondition reports whether the step's desired state already holds.
	// A nil Precondition means the action always runs.
	Precondition func(ctx context.Context) (bool, error)
	Action       func(ctx context.Context) error
	OnFailure    FailurePolicy
}

// Disposition records how a step concluded.
type Disposition string

const (
	// Applied means the action ran and succeeded.
	Applied Disposition = "applied"
	// SkippedSatisfied means the precondition already held.
	SkippedSatisfied Disposition = "skipped-satisfied"
	// SkippedWarning means the action failed but the step's policy let
	// the pipeline continue.
	SkippedWarning Disposition = "skipped-warning"
)

// StepOutcome is the per-step entry in a PipelineResult.
type StepOutcome struct {
	Name        string
	Disposition Disposition
	// Warning carries the soft failure for SkippedWarning outcomes.
	Warning error
}

// PipelineResult is produced once per pipeline run. It is used for
// reporting only; there is no checkpoint or resume, idempotent re-runs
// are the recovery path.
type PipelineResult struct {
	Completed  []StepOutcome
	FailedStep string
	Cause      error
}

// OK reports whether the pipeline ran to completion.
func (r PipelineResult) OK() bool {
	return r.FailedStep == "" && r.Cause == nil
}

// SyncManifest governs what the file synchronizer transfers.
type SyncManifest struct {
	LocalRoot string
	RemoteDir string
	// Excludes are rsync-style patterns. Anything matching is never
	// transferred, and never deleted on the target either.
	Excludes []string
	// DeleteExtraneous removes target files that no longer exist locally.
	DeleteExtraneous bool
	// DryRun previews the transfer without changing the target.
	DryRun bool
}

// ServiceState is the observed state of the frame service on the device.
type ServiceState string

const (
	ServiceNotInstalled ServiceState = "not-installed"
	ServiceDisabled     ServiceState = "disabled"
	ServiceStopped      ServiceState = "stopped"
	ServiceRunning      ServiceState = "running"
	ServiceFailed       ServiceState = "failed"
	// ServiceUnknown means the query itself failed. Callers treat it as
	// "not running" and never assume healthy.
	ServiceUnknown ServiceState = "unknown"
)

// Active reports whether the service is actually executing.
func (s ServiceState) Active() bool {
	return s == ServiceRunning
}

// Installed reports whether a unit file is known to the service manager.
func (s ServiceState) Installed() bool {
	switch s {
	case ServiceNotInstalled, ServiceUnknown:
		return false
	}
	return true
}
