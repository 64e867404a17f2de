package ws

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity a hearth token asserts.
type Claims struct {
	Actor   string   `json:"actor"`
	Roles   []string `json:"roles,omitempty"`
	Cluster string   `json:"cluster,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 bearer token and returns its claims. A
// token whose actor claim is empty falls back to the registered subject.
func ParseToken(secret []byte, token string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("ws: auth secret not configured")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("ws: invalid token")
	}
	if claims.Actor == "" {
		claims.Actor = claims.Subject
	}
	if claims.Actor == "" {
		return nil, errors.New("ws: token names no actor")
	}
	return claims, nil
}

// NewToken signs claims for an actor with the shared secret. The CLI mints
// development tokens with it and tests authenticate their dials.
func NewToken(secret []byte, actor string, roles []string, cluster string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Actor:   actor,
		Roles:   roles,
		Cluster: cluster,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// bearerToken pulls the token from the Authorization header, falling back
// to the token query parameter for browser WebSocket clients that cannot
// set headers.
func bearerToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		parts := strings.Fields(authz)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
