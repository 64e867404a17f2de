package ws

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken(testSecret, "alice", []string{"admin", "member"}, "hearth-eu", time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}
	if claims.Actor != "alice" || claims.Cluster != "hearth-eu" {
		t.Fatalf("claims = %+v", claims)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" {
		t.Fatalf("roles = %v", claims.Roles)
	}
}

func TestParseTokenRejects(t *testing.T) {
	good, err := NewToken(testSecret, "alice", nil, "", time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	expired, err := NewToken(testSecret, "alice", nil, "", -time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	tests := []struct {
		name   string
		secret []byte
		token  string
	}{
		{"no secret configured", nil, good},
		{"wrong secret", []byte("not-the-secret-not-the-secret!!!"), good},
		{"expired", testSecret, expired},
		{"garbage", testSecret, "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.secret, tt.token); err == nil {
				t.Fatal("expected the token to be rejected")
			}
		})
	}
}

func TestParseTokenSubjectFallback(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "bob",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := raw.SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if claims.Actor != "bob" {
		t.Fatalf("actor = %q, want subject fallback", claims.Actor)
	}
}

func TestParseTokenRejectsAnonymous(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := raw.SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	if _, err := ParseToken(testSecret, token); err == nil {
		t.Fatal("a token naming no actor must be rejected")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		target string
		want   string
	}{
		{"header", "Bearer abc", "/api/session/ws", "abc"},
		{"header case insensitive", "bearer abc", "/api/session/ws", "abc"},
		{"malformed header", "abc", "/api/session/ws", ""},
		{"query fallback", "", "/api/session/ws?token=xyz", "xyz"},
		{"header wins over query", "Bearer abc", "/api/session/ws?token=xyz", "abc"},
		{"malformed header blocks query", "Basic abc", "/api/session/ws?token=xyz", ""},
		{"nothing", "", "/api/session/ws", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(r); got != tt.want {
				t.Fatalf("bearerToken = %q, want %q", got, tt.want)
			}
		})
	}
}
