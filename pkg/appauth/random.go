package appauth

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateStateToken returns a random value suitable for the state and nonce parameters.
func GenerateStateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic("appauth: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
