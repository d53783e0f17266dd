package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "secreto-de-prueba"

func TestGenerateParse(t *testing.T) {
	tok, err := Generate(secret, "u1", "t1", "stock-ledger", 5)
	require.NoError(t, err)

	userID, tenantID, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "t1", tenantID)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := Generate(secret, "u1", "t1", "stock-ledger", 5)
	require.NoError(t, err)

	expired, err := Generate(secret, "u1", "t1", "stock-ledger", -1)
	require.NoError(t, err)

	noTenant, err := Generate(secret, "u1", "", "stock-ledger", 5)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
		TenantID:         "t1",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct {
		secret string
		token  string
	}{
		"expirado":         {secret, expired},
		"firma incorrecta": {"otro-secreto", valid},
		"sin tenant":       {secret, noTenant},
		"alg none":         {secret, none},
		"basura":           {secret, "no.es.jwt"},
		"secret vacío":     {"", valid},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse(tc.secret, tc.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", "u1", "t1", "stock-ledger", 5)
	assert.Error(t, err)
}
