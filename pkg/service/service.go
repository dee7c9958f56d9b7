// Package service queries and mutates the frame service's systemd unit.
package service

import (
	"context"
	"strings"

	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/logging"
	"github.com/arthur-debert/framectl/pkg/types"
)

// Manager drives one systemd unit through a Runner. Hand it a local
// runner on the device or a Remote executor from a workstation; it does
// not care which.
type Manager struct {
	runner executor.Runner
	unit   string
}

// NewManager creates a lifecycle manager for the named unit.
func NewManager(runner executor.Runner, unit string) *Manager {
	return &Manager{runner: runner, unit: unit}
}

// Status maps the unit's enabled/active combination onto a ServiceState.
// Every call re-queries systemd; nothing is cached, the device is the
// only source of truth. A failed query reports ServiceUnknown together
// with a SERVICE_QUERY error so callers never assume healthy.
func (m *Manager) Status(ctx context.Context) (types.ServiceState, error) {
	logger := logging.GetLogger("service")

	enabledRes, err := m.runner.Run(ctx, "systemctl", "is-enabled", m.unit)
	if err != nil {
		return types.ServiceUnknown, errors.Wrapf(err, errors.ErrServiceQuery, "could not query enablement of %s", m.unit)
	}
	enabled := strings.TrimSpace(enabledRes.Stdout)

	// "not-found" (older systemd prints it on stderr with exit 1, newer
	// on stdout with exit 4) means no unit file is installed at all.
	if enabled == "not-found" || strings.Contains(enabledRes.Stderr, "No such file") ||
		strings.Contains(enabledRes.Stderr, "not-found") || enabledRes.ExitCode == 4 {
		return types.ServiceNotInstalled, nil
	}

	activeRes, err := m.runner.Run(ctx, "systemctl", "is-active", m.unit)
	if err != nil {
		return types.ServiceUnknown, errors.Wrapf(err, errors.ErrServiceQuery, "could not query activity of %s", m.unit)
	}
	active := strings.TrimSpace(activeRes.Stdout)

	logger.Debug().Str("unit", m.unit).Str("enabled", enabled).Str("active", active).Msg("service state queried")

	switch active {
	case "active", "activating":
		return types.ServiceRunning, nil
	case "failed":
		return types.ServiceFailed, nil
	}
	if enabled != "enabled" {
		return types.ServiceDisabled, nil
	}
	return types.ServiceStopped, nil
}

// Enabled reports whether the unit is enabled to start at boot.
func (m *Manager) Enabled(ctx context.Context) (bool, error) {
	res, err := m.runner.Run(ctx, "systemctl", "is-enabled", m.unit)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrServiceQuery, "could not query enablement of %s", m.unit)
	}
	return strings.TrimSpace(res.Stdout) == "enabled", nil
}

// Start starts the unit.
func (m *Manager) Start(ctx context.Context) error {
	return m.action(ctx, "start")
}

// Stop stops the unit.
func (m *Manager) Stop(ctx context.Context) error {
	return m.action(ctx, "stop")
}

// Restart restarts the unit so freshly deployed code takes effect.
func (m *Manager) Restart(ctx context.Context) error {
	return m.action(ctx, "restart")
}

func (m *Manager) action(ctx context.Context, verb string) error {
	logger := logging.GetLogger("service")
	logger.Info().Str("unit", m.unit).Str("action", verb).Msg("service action")

	res, err := m.runner.Run(ctx, "sudo", "systemctl", verb, m.unit)
	if err != nil {
		return errors.Wrapf(err, errors.ErrServiceAction, "systemctl %s %s could not run", verb, m.unit)
	}
	if res.ExitCode != 0 {
		return errors.Newf(errors.ErrServiceAction, "systemctl %s %s exited %d: %s",
			verb, m.unit, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
