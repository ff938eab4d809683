package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantNil    bool
		wantKind   Kind
		wantDetail string
	}{
		{name: "ok", status: http.StatusOK, wantNil: true},
		{name: "no content", status: http.StatusNoContent, wantNil: true},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"detail":"Could not validate credentials"}`,
			wantKind:   KindAuth,
			wantDetail: "Could not validate credentials",
		},
		{
			name:       "forbidden",
			status:     http.StatusForbidden,
			body:       `{"detail":"Inactive user account"}`,
			wantKind:   KindForbidden,
			wantDetail: "Inactive user account",
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       `{"detail":"Asset not found"}`,
			wantKind:   KindNotFound,
			wantDetail: "Asset not found",
		},
		{
			name:     "server error with html body",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantKind: KindServer,
		},
		{
			name:       "validation error list",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"},{"loc":["body","password"],"msg":"field required"}]}`,
			wantKind:   KindUnknown,
			wantDetail: "value is not a valid email address; field required",
		},
		{
			name:       "unknown without body falls back to status text",
			status:     http.StatusConflict,
			wantKind:   KindUnknown,
			wantDetail: "Conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStatus(tt.status, []byte(tt.body))
			if tt.wantNil {
				if got != nil {
					t.Fatalf("FromStatus(%d) = %v, want nil", tt.status, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("FromStatus(%d) = nil", tt.status)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Status != tt.status {
				t.Errorf("Status = %d, want %d", got.Status, tt.status)
			}
			if got.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", got.Detail, tt.wantDetail)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("listing assets: %w", FromStatus(http.StatusForbidden, nil))

	if !errors.Is(err, ErrForbidden) {
		t.Error("expected wrapped 403 to match ErrForbidden")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("403 must not match ErrNotFound")
	}
	if KindOf(err) != KindForbidden {
		t.Errorf("KindOf = %v, want %v", KindOf(err), KindForbidden)
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors should classify as unknown")
	}
}

func TestFromTransport(t *testing.T) {
	err := FromTransport(context.DeadlineExceeded)

	if !errors.Is(err, ErrNetwork) {
		t.Error("expected network kind")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be preserved")
	}
}

func TestSessionExpired(t *testing.T) {
	cause := errors.New("refresh rejected")
	err := SessionExpired(cause)

	if !errors.Is(err, ErrSessionExpired) || !errors.Is(err, cause) {
		t.Fatalf("SessionExpired(%v) = %v", cause, err)
	}
	if !RequiresLogin(err.Kind) {
		t.Error("session expiry must require login")
	}
}

func TestNotifies(t *testing.T) {
	want := map[Kind]bool{
		KindNetwork:        false,
		KindAuth:           false,
		KindSessionExpired: false,
		KindForbidden:      true,
		KindNotFound:       false,
		KindServer:         true,
		KindUnknown:        false,
	}
	for kind, notify := range want {
		if Notifies(kind) != notify {
			t.Errorf("Notifies(%v) = %v, want %v", kind, !notify, notify)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindServer, Status: 503, Detail: "maintenance"}
	want := "server error (503 Service Unavailable): maintenance"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
