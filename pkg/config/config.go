// Package config loads framectl's layered configuration: embedded
// defaults, then an optional framectl.toml or framectl.yaml at the
// project root, then FRAMECTL_* environment variables.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/framectl/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config is the fully-merged deployment configuration.
type Config struct {
	Target struct {
		Host string `koanf:"host"`
		User string `koanf:"user"`
	} `koanf:"target"`

	Remote struct {
		Dir          string `koanf:"dir"`
		ProvisionBin string `koanf:"provision_bin"`
	} `koanf:"remote"`

	Service struct {
		Unit       string `koanf:"unit"`
		UnitSource string `koanf:"unit_source"`
	} `koanf:"service"`

	Provision struct {
		Packages       []string `koanf:"packages"`
		Requirements   string   `koanf:"requirements"`
		BootConfig     string   `koanf:"boot_config"`
		BootConfigLine string   `koanf:"boot_config_line"`
	} `koanf:"provision"`

	Paths struct {
		Photos string `koanf:"photos"`
		Logs   string `koanf:"logs"`
		Cache  string `koanf:"cache"`
	} `koanf:"paths"`

	Sync struct {
		Excludes []string `koanf:"excludes"`
	} `koanf:"sync"`
}

// DefaultTarget is the connection string used when the CLI gets none.
func (c *Config) DefaultTarget() string {
	return c.Target.User + "@" + c.Target.Host
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Load builds the configuration for a project rooted at projectRoot.
func Load(projectRoot string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	// 2. Project config, first match wins
	candidates := []struct {
		name   string
		parser koanf.Parser
	}{
		{"framectl.toml", toml.Parser()},
		{"framectl.yaml", yaml.Parser()},
		{"framectl.yml", yaml.Parser()},
	}
	for _, c := range candidates {
		path := filepath.Join(projectRoot, c.name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), c.parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
		break
	}

	// 3. Environment overrides: FRAMECTL_TARGET_HOST -> target.host
	if err := k.Load(env.Provider("FRAMECTL_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "FRAMECTL_")), "_", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	return &cfg, nil
}
