package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringBackend provides OS-native secure credential storage.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
// Each key is stored as a separate secret under "<user>/<key>".
type KeyringBackend struct {
	service string
	user    string
}

// Compile-time check to ensure KeyringBackend implements Backend
var _ Backend = (*KeyringBackend)(nil)

// NewKeyringBackend creates a KeyringBackend using the given service and user identifiers.
func NewKeyringBackend(service, user string) (*KeyringBackend, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}

	return &KeyringBackend{
		service: service,
		user:    user,
	}, nil
}

func (k *KeyringBackend) account(key string) string {
	return k.user + "/" + key
}

// Get returns the value from the system keyring. Returns ErrNotFound if missing or empty.
func (k *KeyringBackend) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, err := keyring.Get(k.service, k.account(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if value == "" {
		return "", ErrNotFound
	}

	return value, nil
}

// Set persists the value to the system keyring, overwriting any existing value.
func (k *KeyringBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return keyring.Set(k.service, k.account(key), value)
}

// Delete removes the value from the system keyring.
func (k *KeyringBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := keyring.Delete(k.service, k.account(key))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
