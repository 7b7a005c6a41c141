// Package sign computes the request signatures required by the FTX API.
//
// Every authenticated REST request and every WebSocket login frame carries
// an HMAC-SHA256 digest over a payload that binds the request to a single
// millisecond timestamp. The functions here are pure; callers own the
// timestamp and the secret.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Signature returns the lowercase hex HMAC-SHA256 digest of payload under key.
func Signature(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// RESTPayload builds the signing payload for a REST request:
// timestamp, method, path and body concatenated, body omitted when empty.
func RESTPayload(timestampMs int64, method, path, body string) string {
	return strconv.FormatInt(timestampMs, 10) + method + path + body
}

// LoginPayload builds the signing payload for a WebSocket login frame.
func LoginPayload(timestampMs int64) string {
	return strconv.FormatInt(timestampMs, 10) + "websocket_login"
}
