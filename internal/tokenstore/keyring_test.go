package tokenstore

import (
	"context"
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringBackend(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	backend, err := NewKeyringBackend("ams-test", "alice")
	if err != nil {
		t.Fatalf("NewKeyringBackend: %v", err)
	}

	if _, err := backend.Get(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty keyring: got %v, want ErrNotFound", err)
	}

	if err := backend.Set(ctx, KeyAccessToken, "secret"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := backend.Get(ctx, KeyAccessToken)
	if err != nil || got != "secret" {
		t.Fatalf("Get = %q, %v; want %q", got, err, "secret")
	}

	// Keys are stored under separate accounts.
	if _, err := backend.Get(ctx, KeyRefreshToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get refresh token: got %v, want ErrNotFound", err)
	}

	if err := backend.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := backend.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestNewKeyringBackendValidation(t *testing.T) {
	if _, err := NewKeyringBackend("", "user"); err == nil {
		t.Error("expected error for empty service")
	}
	if _, err := NewKeyringBackend("service", ""); err == nil {
		t.Error("expected error for empty user")
	}
}
