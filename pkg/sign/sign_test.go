package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceDigest(t *testing.T, secret, payload string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := mac.Write([]byte(payload))
	require.NoError(t, err)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignatureDeterminism(t *testing.T) {
	payload := RESTPayload(1641393600000, "GET", "/api/account", "")

	first := Signature("secret", payload)
	second := Signature("secret", payload)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Equal(t, referenceDigest(t, "secret", payload), first)
}

func TestSignatureChangesWithAnyInput(t *testing.T) {
	base := Signature("secret", RESTPayload(1641393600000, "GET", "/api/account", ""))

	variants := []string{
		Signature("secret2", RESTPayload(1641393600000, "GET", "/api/account", "")),
		Signature("secret", RESTPayload(1641393600001, "GET", "/api/account", "")),
		Signature("secret", RESTPayload(1641393600000, "POST", "/api/account", "")),
		Signature("secret", RESTPayload(1641393600000, "GET", "/api/positions", "")),
		Signature("secret", RESTPayload(1641393600000, "GET", "/api/account", `{"x":1}`)),
	}

	for _, v := range variants {
		assert.NotEqual(t, base, v)
	}
}

func TestRESTPayloadConcatenation(t *testing.T) {
	assert.Equal(t, "1641393600000GET/api/account", RESTPayload(1641393600000, "GET", "/api/account", ""))
	assert.Equal(t,
		`1641393600000POST/api/orders{"market":"BTC-PERP"}`,
		RESTPayload(1641393600000, "POST", "/api/orders", `{"market":"BTC-PERP"}`))
}

func TestLoginPayload(t *testing.T) {
	payload := LoginPayload(1641393600000)
	assert.Equal(t, "1641393600000websocket_login", payload)

	sig := Signature("secret", payload)
	assert.Equal(t, referenceDigest(t, "secret", payload), sig)
}
