package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.Generate(id, "client")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != id || claims.Role != "client" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	good, _ := m.Generate(uuid.New(), "restaurant")

	expired := NewManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Generate(uuid.New(), "client")

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.New()}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		mgr   *Manager
		token string
	}{
		{name: "wrong secret", mgr: NewManager("other", time.Hour), token: good},
		{name: "expired", mgr: m, token: old},
		{name: "garbage", mgr: m, token: "not-a-token"},
		{name: "alg none", mgr: m, token: none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.mgr.Parse(tt.token); err == nil {
				t.Error("expected error")
			}
		})
	}
}
