// Package auth reads the access tokens issued by the backend. Tokens are
// signed and verified by the backend; the storefront only decodes the claims
// it needs for routing decisions.
package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const RoleShopOwner = "shop_owner"

var (
	ErrBadToken   = errors.New("bad token")
	ErrBadPayload = errors.New("bad payload")
	ErrExpired    = errors.New("expired")
)

type Claims struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role,omitempty"`
	ShopID    int64     `json:"shop_id,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its exp claim. Tokens without
// exp never expire here; the backend still decides.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func (c Claims) IsShopOwner() bool {
	return c.Role == RoleShopOwner || c.ShopID != 0
}

// decodeURLB64 tries raw (no padding) then padded
func decodeURLB64(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// DecodeClaims reads the payload of a JWT without checking its signature.
func DecodeClaims(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrBadToken
	}
	raw, err := decodeURLB64(parts[1])
	if err != nil || !gjson.ValidBytes(raw) {
		return Claims{}, ErrBadToken
	}

	payload := gjson.ParseBytes(raw)
	if !payload.IsObject() {
		return Claims{}, ErrBadPayload
	}

	// user_id is numeric on some deployments and a UUID string on others
	c := Claims{
		UserID: payload.Get("user_id").String(),
		Role:   payload.Get("role").String(),
		ShopID: payload.Get("shop_id").Int(),
		Phone:  payload.Get("phone").String(),
	}
	if c.UserID == "" {
		return Claims{}, ErrBadPayload
	}
	if payload.Get("is_shop_owner").Bool() && c.Role == "" {
		c.Role = RoleShopOwner
	}
	if exp := payload.Get("exp"); exp.Exists() {
		c.ExpiresAt = time.Unix(exp.Int(), 0).UTC()
	}
	return c, nil
}

// Parse decodes the token and rejects it once expired.
func Parse(token string, now time.Time) (Claims, error) {
	c, err := DecodeClaims(token)
	if err != nil {
		return Claims{}, err
	}
	if c.Expired(now) {
		return Claims{}, ErrExpired
	}
	return c, nil
}
