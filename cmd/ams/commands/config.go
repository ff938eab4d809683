package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"

	"github.com/suresoft/ams-client/internal/app"
)

// envPrefix is stripped from environment variables during config loading (e.g., AMS_API__BASE_URL → api.base_url)
const envPrefix = "AMS_"

// configEnvVar names the config file when --config is not given.
const configEnvVar = envPrefix + "CONFIG"

// configSections are the top-level config keys. Variables and flags outside them,
// such as AMS_ACCESS_TOKEN for env token storage or --email, are not configuration.
var configSections = map[string]bool{
	"log_level":    true,
	"log_format":   true,
	"log_exporter": true,
	"api":          true,
	"auth":         true,
	"server":       true,
	"shutdown":     true,
}

// configSource describes where configuration is read from. Precedence, lowest first:
// command defaults → config file → environment variables → CLI flags → built-in defaults
type configSource struct {
	// path is the --config value. Empty means $AMS_CONFIG, then the per-user file.
	path     string
	defaults map[string]any
	environ  func() []string
	cmd      *cli.Command

	// userConfigDir locates <dir>/ams/config.toml; nil disables the lookup.
	userConfigDir func() (string, error)
}

func newConfigSource(cmd *cli.Command, defaults map[string]any) configSource {
	return configSource{
		path:          cmd.String("config"),
		defaults:      defaults,
		environ:       os.Environ,
		cmd:           cmd,
		userConfigDir: os.UserConfigDir,
	}
}

func (s configSource) load() (*app.Config, error) {
	k := koanf.New(".")

	if len(s.defaults) > 0 {
		if err := k.Load(confmap.Provider(s.defaults, "."), nil); err != nil {
			return nil, fmt.Errorf("loading command defaults: %w", err)
		}
	}

	path, err := s.configFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: envKey,
		EnvironFunc:   s.environ,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	if s.cmd != nil {
		if err := k.Load(confmap.Provider(configFlags(s.cmd), "."), nil); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	config := &app.Config{}
	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := config.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	if err := config.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("invalid config (file %s):\n%w", path, err)
		}
		return nil, fmt.Errorf("invalid config:\n%w", err)
	}

	return config, nil
}

// configFile resolves the config file to read. An explicit or $AMS_CONFIG path
// must exist; the per-user file is optional.
func (s configSource) configFile() (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	if p := lookupEnv(s.environ, configEnvVar); p != "" {
		return p, nil
	}
	if s.userConfigDir == nil {
		return "", nil
	}

	dir, err := s.userConfigDir()
	if err != nil {
		return "", nil
	}
	p := filepath.Join(dir, "ams", "config.toml")
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("checking config file: %w", err)
	}
	return p, nil
}

func lookupEnv(environ func() []string, name string) string {
	if environ == nil {
		return ""
	}
	for _, kv := range environ() {
		if v, ok := strings.CutPrefix(kv, name+"="); ok {
			return v
		}
	}
	return ""
}

// envKey maps AMS_API__BASE_URL to api.base_url. Anything outside the config
// sections maps to "" and is skipped by the provider.
func envKey(key, value string) (string, any) {
	nested := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, envPrefix), "__", "."))
	if !isConfigKey(nested) {
		return "", nil
	}
	return nested, value
}

func isConfigKey(key string) bool {
	section, _, _ := strings.Cut(key, ".")
	return configSections[section]
}

// configFlags collects the explicitly set flags that map to config keys, parent
// flags included: --server--host → server.host, --log-level → log_level.
func configFlags(cmd *cli.Command) map[string]any {
	values := make(map[string]any)

	// FlagNames() includes flags from parent commands (via lineage)
	for _, name := range cmd.FlagNames() {
		// Unset flags would shadow the file and environment
		if !cmd.IsSet(name) {
			continue
		}
		key := strings.ReplaceAll(strings.ReplaceAll(name, "--", "."), "-", "_")
		if !isConfigKey(key) {
			continue
		}
		if value := cmd.Value(name); value != nil {
			values[key] = value
		}
	}

	return values
}
