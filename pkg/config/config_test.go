package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "raspberrypi.local", cfg.Target.Host)
	assert.Equal(t, "pi", cfg.Target.User)
	assert.Equal(t, "pi@raspberrypi.local", cfg.DefaultTarget())
	assert.Equal(t, "/home/pi/picture-frame", cfg.Remote.Dir)
	assert.Equal(t, "picture-frame.service", cfg.Service.Unit)
	assert.Equal(t, "requirements.txt", cfg.Provision.Requirements)
	assert.Equal(t, "gpu_mem=16", cfg.Provision.BootConfigLine)
	assert.Contains(t, cfg.Provision.Packages, "python3-pip")
}

func TestLoadProjectTomlOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	content := "[target]\nhost = \"frame.lan\"\n\n[remote]\ndir = \"/opt/frame\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "framectl.toml"), []byte(content), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "frame.lan", cfg.Target.Host)
	assert.Equal(t, "/opt/frame", cfg.Remote.Dir)
	// untouched keys keep their defaults
	assert.Equal(t, "pi", cfg.Target.User)
}

func TestLoadProjectYamlOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	content := "target:\n  host: frame.lan\nsync:\n  excludes:\n    - \"*.tmp\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "framectl.yaml"), []byte(content), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "frame.lan", cfg.Target.Host)
	assert.Equal(t, []string{"*.tmp"}, cfg.Sync.Excludes)
}

func TestLoadTomlWinsOverYaml(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "framectl.toml"), []byte("[target]\nhost = \"from-toml\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "framectl.yaml"), []byte("target:\n  host: from-yaml\n"), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "from-toml", cfg.Target.Host)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FRAMECTL_TARGET_HOST", "env-host.local")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-host.local", cfg.Target.Host)
}

func TestLoadMalformedConfigFails(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "framectl.toml"), []byte("[target\nhost"), 0644))

	_, err := Load(root)
	assert.Error(t, err)
}
