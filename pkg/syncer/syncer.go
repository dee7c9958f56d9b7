// Package syncer mirrors the local project tree onto the target device.
package syncer

import (
	"context"
	"strings"

	"github.com/arthur-debert/framectl/pkg/errors"
	"github.com/arthur-debert/framectl/pkg/executor"
	"github.com/arthur-debert/framectl/pkg/logging"
	"github.com/arthur-debert/framectl/pkg/types"
)

// MandatoryExcludes are never transferred regardless of configuration.
// They are build artifacts, secrets or on-device user data that a sync
// must not clobber or leak: version control metadata, interpreter caches,
// the photo store, env files, editor droppings, virtualenvs and logs.
var MandatoryExcludes = []string{
	".git/",
	"__pycache__/",
	"*.pyc",
	".pytest_cache/",
	"photos/",
	".env",
	"*.swp",
	".DS_Store",
	"venv/",
	".venv/",
	"*.log",
	"logs/",
}

// Report summarizes a completed sync.
type Report struct {
	// Summary is the transfer tool's own output, kept for operator
	// inspection at higher verbosity.
	Summary string
}

// Syncer performs one-way mirror syncs over rsync.
type Syncer struct {
	runner executor.Runner
}

// New creates a Syncer using the given runner to spawn rsync.
func New(runner executor.Runner) *Syncer {
	return &Syncer{runner: runner}
}

// Sync mirrors manifest.LocalRoot onto target:manifest.RemoteDir.
// Excluded paths are neither transferred nor deleted on the target, so a
// photo directory that only exists on the device survives every deploy.
// A failed or interrupted transfer returns a SYNC error; the target may
// be partially updated but the next full sync self-heals.
func (s *Syncer) Sync(ctx context.Context, target types.Target, manifest types.SyncManifest) (Report, error) {
	logger := logging.GetLogger("syncer")

	args := []string{"-az"}
	if manifest.DryRun {
		args = append(args, "--dry-run", "--itemize-changes")
	}
	if manifest.DeleteExtraneous {
		args = append(args, "--delete")
	}
	for _, pattern := range mergeExcludes(manifest.Excludes) {
		args = append(args, "--exclude="+pattern)
	}

	src := strings.TrimRight(manifest.LocalRoot, "/") + "/"
	dest := target.Addr() + ":" + manifest.RemoteDir
	args = append(args, src, dest)

	logger.Info().Str("src", src).Str("dest", dest).Msg("syncing project tree")

	res, err := s.runner.Run(ctx, "rsync", args...)
	if err != nil {
		return Report{}, errors.Wrap(err, errors.ErrSync, "rsync could not run")
	}
	if res.ExitCode != 0 {
		return Report{}, errors.Newf(errors.ErrSync, "rsync exited %d: %s",
			res.ExitCode, strings.TrimSpace(res.Stderr)).WithDetail("exitCode", res.ExitCode)
	}

	logger.Debug().Str("summary", strings.TrimSpace(res.Stdout)).Msg("sync complete")
	return Report{Summary: res.Stdout}, nil
}

// mergeExcludes combines mandatory and configured patterns, dropping
// duplicates while preserving order.
func mergeExcludes(extra []string) []string {
	seen := make(map[string]bool, len(MandatoryExcludes)+len(extra))
	merged := make([]string, 0, len(MandatoryExcludes)+len(extra))
	for _, p := range append(append([]string{}, MandatoryExcludes...), extra...) {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		merged = append(merged, p)
	}
	return merged
}
