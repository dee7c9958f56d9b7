package provision_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/framectl/pkg/commands/provision"
	"github.com/arthur-debert/framectl/pkg/config"
	"github.com/arthur-debert/framectl/pkg/executor/executortest"
)

func TestRunUsesInjectedFakes(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	fake := executortest.NewRunner()
	fake.RespondExit("dpkg -s", 0)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/opt/frame/requirements.txt", []byte("pillow\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/boot/config.txt", []byte(""), 0644))

	result := provision.Run(context.Background(), provision.Options{
		Config: cfg,
		Dir:    "/opt/frame",
		Runner: fake,
		Fs:     fs,
	})

	require.True(t, result.OK(), "cause: %v", result.Cause)
	// unit file was not seeded: last step is a warning, not a failure
	last := result.Completed[len(result.Completed)-1]
	assert.Equal(t, "install-service-unit", last.Name)
	assert.Error(t, last.Warning)
}

func TestRunDefaultsServiceUserFromConfig(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	fake := executortest.NewRunner()
	fake.RespondExit("dpkg -s", 0)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/opt/frame/requirements.txt", []byte(""), 0644))

	result := provision.Run(context.Background(), provision.Options{
		Config: cfg,
		Dir:    "/opt/frame",
		Runner: fake,
		Fs:     fs,
	})
	require.True(t, result.OK())

	assert.True(t, fake.CalledMatching("chown -R pi:pi"))
}
