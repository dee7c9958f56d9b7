// Package provision defines the on-device pipeline that takes a bare OS
// image to a machine ready to run the picture-frame service. Every step
// is idempotent: a full re-run after any failure is always safe and is
// the only recovery mechanism.
//
// Steps execute commands through an executor.Runner and touch the
// filesystem through afero, so the whole pipeline runs against fakes in
// tests. The pipeline expects to run as root.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/logging"
	"github.com/arthur-debert/framectl/pkg/types"
)

// systemdUnitDir is where installed unit files live.
const systemdUnitDir = "/etc/systemd/system"

// dirMode is the mode every framectl-managed directory gets.
const dirMode os.FileMode = 0755

// Env carries everything the steps need to act on the device.
type Env struct {
	Runner executor.Runner
	Fs     afero.Fs
	Config *config.Config
	// BaseDir is the project directory on the device, normally the
	// remote dir the deploy sync targets.
	BaseDir string
	// ServiceUser owns the photo, log and cache directories.
	ServiceUser string
}

// Steps returns the ordered provisioning pipeline. Order is load-bearing:
// SPI must be on before the service that reads the display is enabled,
// and system packages must exist before pip resolves against them.
func Steps(env Env) []types.Step {
	return []types.Step{
		updateSystem(env),
		installPackages(env),
		installPythonDeps(env),
		enableSPI(env),
		createDirectories(env),
		configureBootMemory(env),
		installServiceUnit(env),
	}
}

// updateSystem refreshes the package index and upgrades the system.
// Deliberately has no precondition: re-running is cheap and keeps the
// device current on every provision.
func updateSystem(env Env) types.Step {
	return types.Step{
		Name: "update-system",
		Action: func(ctx context.Context) error {
			if err := run(ctx, env.Runner, "apt-get", "update"); err != nil {
				return err
			}
			return run(ctx, env.Runner, "apt-get", "-y", "upgrade")
		},
	}
}

// installPackages installs the system packages the frame service needs.
// Satisfied when dpkg already knows every one of them.
func installPackages(env Env) types.Step {
	return types.Step{
		Name: "install-packages",
		Precondition: func(ctx context.Context) (bool, error) {
			for _, pkg := range env.Config.Provision.Packages {
				res, err := env.Runner.Run(ctx, "dpkg", "-s", pkg)
				if err != nil {
					return false, err
				}
				if res.ExitCode != 0 {
					return false, nil
				}
			}
			return true, nil
		},
		Action: func(ctx context.Context) error {
			args := append([]string{"-y", "install"}, env.Config.Provision.Packages...)
			return run(ctx, env.Runner, "apt-get", args...)
		},
	}
}

// installPythonDeps installs the declared Python requirements. A missing
// manifest is a configuration error, fatal and never retried, which is a
// different failure from pip itself breaking.
func installPythonDeps(env Env) types.Step {
	return types.Step{
		Name: "install-python-deps",
		Action: func(ctx context.Context) error {
			manifest := filepath.Join(env.BaseDir, env.Config.Provision.Requirements)
			exists, err := afero.Exists(env.Fs, manifest)
			if err != nil {
				return err
			}
			if !exists {
				return errors.Newf(errors.ErrConfigMissing, "requirements manifest %s not found", manifest)
			}
			return run(ctx, env.Runner, "pip3", "install", "-r", manifest)
		},
	}
}

// enableSPI turns on the SPI bus the e-paper display hangs off of.
// raspi-config's non-interactive mode is safe to invoke repeatedly, so no
// precondition is needed.
func enableSPI(env Env) types.Step {
	return types.Step{
		Name: "enable-spi",
		Action: func(ctx context.Context) error {
			return run(ctx, env.Runner, "raspi-config", "nonint", "do_spi", "0")
		},
	}
}

// createDirectories sets up the photo, log and cache directories with the
// right mode and owner. Satisfied when every directory already exists
// with the expected mode.
func createDirectories(env Env) types.Step {
	dirs := func() []string {
		return []string{
			filepath.Join(env.BaseDir, env.Config.Paths.Photos),
			filepath.Join(env.BaseDir, env.Config.Paths.Logs),
			filepath.Join(env.BaseDir, env.Config.Paths.Cache),
		}
	}
	return types.Step{
		Name: "create-directories",
		Precondition: func(ctx context.Context) (bool, error) {
			for _, dir := range dirs() {
				info, err := env.Fs.Stat(dir)
				if err != nil {
					if os.IsNotExist(err) {
						return false, nil
					}
					return false, err
				}
				if !info.IsDir() || info.Mode().Perm() != dirMode {
					return false, nil
				}
			}
			return true, nil
		},
		Action: func(ctx context.Context) error {
			for _, dir := range dirs() {
				if err := env.Fs.MkdirAll(dir, dirMode); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
				if err := env.Fs.Chmod(dir, dirMode); err != nil {
					return fmt.Errorf("setting mode on %s: %w", dir, err)
				}
				owner := env.ServiceUser + ":" + env.ServiceUser
				if err := run(ctx, env.Runner, "chown", "-R", owner, dir); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// configureBootMemory appends the GPU memory line to the boot config.
// The precondition is mandatory, not an optimization: appending without
// the exact-line check would duplicate the line on every run.
func configureBootMemory(env Env) types.Step {
	path := env.Config.Provision.BootConfig
	line := env.Config.Provision.BootConfigLine
	return types.Step{
		Name: "configure-boot-memory",
		Precondition: func(ctx context.Context) (bool, error) {
			return bootConfigHasLine(env.Fs, path, line)
		},
		Action: func(ctx context.Context) error {
			return appendBootConfigLine(env.Fs, path, line)
		},
	}
}

// installServiceUnit copies the unit file into systemd's unit directory,
// reloads the unit index and enables (but does not start) the service.
// A missing unit source is a soft failure: the device is still usable,
// the operator just has to start the frame manually.
func installServiceUnit(env Env) types.Step {
	return types.Step{
		Name:      "install-service-unit",
		OnFailure: types.WarnAndContinue,
		Action: func(ctx context.Context) error {
			src := filepath.Join(env.BaseDir, env.Config.Service.UnitSource)
			exists, err := afero.Exists(env.Fs, src)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("unit file %s not found, service must be started manually", src)
			}

			data, err := afero.ReadFile(env.Fs, src)
			if err != nil {
				return err
			}
			dest := filepath.Join(systemdUnitDir, env.Config.Service.Unit)
			if err := afero.WriteFile(env.Fs, dest, data, 0644); err != nil {
				return err
			}

			if err := run(ctx, env.Runner, "systemctl", "daemon-reload"); err != nil {
				return err
			}
			return run(ctx, env.Runner, "systemctl", "enable", env.Config.Service.Unit)
		},
	}
}

// bootConfigHasLine reports whether the file already contains the exact
// line. Substring matches on other lines do not count.
func bootConfigHasLine(fs afero.Fs, path, line string) (bool, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return false, err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return false, err
	}
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) == line {
			return true, nil
		}
	}
	return false, nil
}

// appendBootConfigLine appends the line, making sure the file still ends
// in a newline and the previous content keeps one before our line.
func appendBootConfigLine(fs afero.Fs, path, line string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += line + "\n"
	return afero.WriteFile(fs, path, []byte(content), 0644)
}

// run executes a command and converts non-zero exits into errors the
// step runner can report.
func run(ctx context.Context, runner executor.Runner, name string, args ...string) error {
	logger := logging.GetLogger("provision")
	logger.Debug().Str("cmd", executor.CommandLine(name, args)).Msg("running")

	res, err := runner.Run(ctx, name, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%q exited %d: %s",
			executor.CommandLine(name, args), res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
