package auth

import (
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".sig"
}

func TestDecodeClaims(t *testing.T) {
	c, err := DecodeClaims(makeToken(`{"user_id":42,"role":"customer","exp":1893456000}`))
	require.NoError(t, err)

	assert.Equal(t, "42", c.UserID)
	assert.Equal(t, "customer", c.Role)
	assert.Equal(t, time.Unix(1893456000, 0).UTC(), c.ExpiresAt)
	assert.False(t, c.IsShopOwner())
}

func TestDecodeClaims_StringUserAndShopOwner(t *testing.T) {
	c, err := DecodeClaims(makeToken(`{"user_id":"b3c1","is_shop_owner":true,"shop_id":7}`))
	require.NoError(t, err)

	assert.Equal(t, "b3c1", c.UserID)
	assert.Equal(t, RoleShopOwner, c.Role)
	assert.Equal(t, int64(7), c.ShopID)
	assert.True(t, c.IsShopOwner())
	assert.True(t, c.ExpiresAt.IsZero())
}

func TestDecodeClaims_PaddedPayload(t *testing.T) {
	body := base64.URLEncoding.EncodeToString([]byte(`{"user_id":1}`))
	_, err := DecodeClaims("h." + body + ".s")
	assert.NoError(t, err)
}

func TestDecodeClaims_Errors(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrBadToken},
		{"two parts", "a.b", ErrBadToken},
		{"not base64", "a.%%%.c", ErrBadToken},
		{"not json", "a." + base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".c", ErrBadToken},
		{"array payload", makeToken(`[1,2]`), ErrBadPayload},
		{"missing user", makeToken(`{"role":"customer"}`), ErrBadPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClaims(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_Expiry(t *testing.T) {
	exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	token := makeToken(`{"user_id":1,"exp":` + strconv.FormatInt(exp.Unix(), 10) + `}`)

	_, err := Parse(token, exp.Add(-time.Minute))
	assert.NoError(t, err)

	_, err = Parse(token, exp)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = Parse("garbage", exp)
	assert.ErrorIs(t, err, ErrBadToken)
}
