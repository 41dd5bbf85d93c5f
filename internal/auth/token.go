package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingTenant = errors.New("token has no tenant_id claim")
)

// Claims is the identity carried by a tenant token.
type Claims struct {
	TenantID int64
	Actor    string
}

// ExtractAccessToken reads the bearer token from the Authorization header,
// falling back to the access_token cookie.
func ExtractAccessToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		return token
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

// ParseTenantToken verifies an HS256 token and extracts its tenant and actor.
// A token without sub gets the actor "tenant:<id>".
func ParseTenantToken(secret []byte, raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrMissingToken
	}

	mc := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, mc, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	tenantID, err := tenantFromClaims(mc)
	if err != nil {
		return Claims{}, err
	}

	actor, _ := mc.GetSubject()
	if actor == "" {
		actor = fmt.Sprintf("tenant:%d", tenantID)
	}

	return Claims{TenantID: tenantID, Actor: actor}, nil
}

// IssueTenantToken signs a token for tenantID. A zero ttl issues a token
// without expiry.
func IssueTenantToken(secret []byte, tenantID int64, actor string, ttl time.Duration) (string, error) {
	if tenantID <= 0 {
		return "", ErrMissingTenant
	}

	mc := jwt.MapClaims{
		"tenant_id": tenantID,
		"iat":       time.Now().Unix(),
	}
	if actor != "" {
		mc["sub"] = actor
	}
	if ttl > 0 {
		mc["exp"] = time.Now().Add(ttl).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(secret)
}

// tenant_id may be encoded as a JSON number or a numeric string.
func tenantFromClaims(claims jwt.MapClaims) (int64, error) {
	switch v := claims["tenant_id"].(type) {
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, ErrMissingTenant
		}
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, ErrMissingTenant
		}
		return id, nil
	default:
		return 0, ErrMissingTenant
	}
}
