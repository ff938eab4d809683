package claims

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/suresoft/ams-client/internal/models"
)

func sign(t *testing.T, c jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("some-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := sign(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: "kim@suresoft.com",
		Role:  models.RoleManager,
	})

	c, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if c.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", c.Subject)
	}
	if c.Email != "kim@suresoft.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if c.Role != models.RoleManager {
		t.Errorf("Role = %q, want manager", c.Role)
	}

	left, ok := c.ExpiresIn(exp.Add(-time.Minute))
	if !ok || left != time.Minute {
		t.Errorf("ExpiresIn() = %v, %v; want 1m, true", left, ok)
	}
	if c.Expired(exp.Add(-time.Second)) {
		t.Error("token reported expired before its expiry")
	}
	if !c.Expired(exp) {
		t.Error("token not reported expired at its expiry")
	}
}

func TestInspectExpiredTokenStillDecodes(t *testing.T) {
	token := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-2",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})

	c, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if !c.Expired(time.Now()) {
		t.Error("Expired() = false for a token that expired an hour ago")
	}
}

func TestInspectWithoutExpiry(t *testing.T) {
	c, err := Inspect(sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-3"}}))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if _, ok := c.ExpiresIn(time.Now()); ok {
		t.Error("ExpiresIn() reported an expiry for a token without exp")
	}
	if c.Expired(time.Now()) {
		t.Error("token without exp reported expired")
	}
}

func TestInspectErrors(t *testing.T) {
	if _, err := Inspect(""); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("Inspect(\"\") error = %v, want ErrEmptyToken", err)
	}
	if _, err := Inspect("not-a-jwt"); err == nil {
		t.Error("Inspect() accepted a malformed token")
	}
}
