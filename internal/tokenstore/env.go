package tokenstore

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvBackend provides read-only access to tokens stored in environment variables.
// The variable name is the prefix followed by the upper-cased key, e.g.
// AMS_ACCESS_TOKEN. Suitable for a static access token, not for refresh.
type EnvBackend struct {
	prefix  string
	environ func(string) (string, bool)
}

// Compile-time check to ensure EnvBackend implements Backend
var _ Backend = (*EnvBackend)(nil)

// NewEnvBackend creates an EnvBackend reading variables named prefix+KEY.
// Returns error if the access token variable is not set in the environment.
func NewEnvBackend(prefix string) (*EnvBackend, error) {
	return newEnvBackend(prefix, os.LookupEnv)
}

func newEnvBackend(prefix string, lookup func(string) (string, bool)) (*EnvBackend, error) {
	if prefix == "" {
		return nil, fmt.Errorf("environment prefix cannot be empty")
	}

	e := &EnvBackend{
		prefix:  prefix,
		environ: lookup,
	}
	if _, exists := lookup(e.name(KeyAccessToken)); !exists {
		return nil, fmt.Errorf("environment variable %s not set", e.name(KeyAccessToken))
	}

	return e, nil
}

func (e *EnvBackend) name(key string) string {
	return e.prefix + strings.ToUpper(key)
}

// Get returns the value from the environment variable for key.
func (e *EnvBackend) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, _ := e.environ(e.name(key))
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Set is not supported for environment variables.
func (e *EnvBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("setting %s: %w", e.name(key), ErrReadOnly)
}

// Delete is not supported for environment variables.
func (e *EnvBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("deleting %s: %w", e.name(key), ErrReadOnly)
}
