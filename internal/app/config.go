package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/suresoft/ams-client/internal/observability"
	"github.com/suresoft/ams-client/internal/tokenstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = LogFormat(observability.FormatText)
	LogFormatJSON LogFormat = LogFormat(observability.FormatJSON)
)

// TokenStorageType represents the different storage types supported for stored tokens.
type TokenStorageType string

const (
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeEnv     TokenStorageType = "env"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
	TokenStorageTypeMemory  TokenStorageType = "memory"
)

// KeyringService is the service name tokens are stored under in the OS keyring.
const KeyringService = "ams-client"

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigLogExporter     = observability.ExporterNone
	DefaultConfigAPIBaseURL      = "http://localhost:8000/api/v1"
	DefaultConfigAPITimeout      = 30 * time.Second
	DefaultConfigServerHost      = "127.0.0.1"
	DefaultConfigServerPort      = 4100
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigAuthStorage     = TokenStorageTypeFile
	DefaultConfigAuthEnvPrefix   = "AMS_"
)

// APIConfig holds AMS backend configuration.
type APIConfig struct {
	BaseURL string        `json:"base_url" validate:"required,url"`
	Timeout time.Duration `json:"timeout" validate:"gte=0"`
}

// ServerConfig holds gateway server configuration.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// AuthConfig describes where the token pair is kept.
type AuthConfig struct {
	Storage TokenStorageType `json:"storage" validate:"required,oneof=file env keyring memory"`

	// Storage-specific settings
	Dir         string `json:"dir,omitempty"`          // file: directory holding one file per token
	KeyringUser string `json:"keyring_user,omitempty"` // keyring: account prefix
	EnvPrefix   string `json:"env_prefix,omitempty"`   // env: variable prefix, e.g. AMS_ → AMS_ACCESS_TOKEN
}

// NewBackend creates the token store backend selected by the configuration.
func (a *AuthConfig) NewBackend() (tokenstore.Backend, error) {
	switch a.Storage {
	case TokenStorageTypeFile:
		return tokenstore.NewFileBackend(a.Dir)
	case TokenStorageTypeEnv:
		return tokenstore.NewEnvBackend(a.EnvPrefix)
	case TokenStorageTypeKeyring:
		return tokenstore.NewKeyringBackend(KeyringService, a.KeyringUser)
	case TokenStorageTypeMemory:
		return tokenstore.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel    slog.Level     `json:"log_level"`
	LogFormat   LogFormat      `json:"log_format" validate:"oneof=text json"`
	LogExporter string         `json:"log_exporter" validate:"oneof=none stdout otlp-grpc otlp-http"`
	API         APIConfig      `json:"api"`
	Auth        AuthConfig     `json:"auth"`
	Server      ServerConfig   `json:"server"`
	Shutdown    ShutdownConfig `json:"shutdown"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.LogExporter == "" {
		c.LogExporter = DefaultConfigLogExporter
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultConfigAPIBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultConfigAPITimeout
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Auth.Storage == "" {
		c.Auth.Storage = DefaultConfigAuthStorage
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.Dir == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.dir required (auto-detect failed: %w)", err)
			}
			c.Auth.Dir = filepath.Join(configDir, "ams", "auth")
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.KeyringUser = currentUser.Username
		}
	case TokenStorageTypeEnv:
		if c.Auth.EnvPrefix == "" {
			c.Auth.EnvPrefix = DefaultConfigAuthEnvPrefix
		}
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
// Field errors name the config key, e.g. "api.base_url must be a URL".
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(configKey)
	if err := v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		errs := make([]error, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs = append(errs, describeFieldError(fe))
		}
		return errors.Join(errs...)
	}

	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.Dir == "" {
			return errors.New("auth.dir required for file storage")
		}
	case TokenStorageTypeEnv:
		if c.Auth.EnvPrefix == "" {
			return errors.New("auth.env_prefix required for env storage")
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("auth.keyring_user required for keyring storage")
		}
	}

	return nil
}

// configKey names struct fields by their config key instead of the Go name.
func configKey(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func describeFieldError(fe validator.FieldError) error {
	// Namespace is "Config.api.base_url"; drop the root type.
	_, key, _ := strings.Cut(fe.Namespace(), ".")

	var msg string
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", key)
	case "url":
		msg = "must be a URL"
	case "oneof":
		msg = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		msg = "must be at least " + fe.Param()
	case "hostname_rfc1123|ip":
		msg = "must be a hostname or IP address"
	default:
		msg = fmt.Sprintf("fails %q", fe.Tag())
	}
	return fmt.Errorf("%s %s (got %q)", key, msg, fmt.Sprint(fe.Value()))
}
