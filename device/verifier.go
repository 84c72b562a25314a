package device

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Verifier validates caller-supplied device proofs against the stored
// per-device secret.
type Verifier struct {
	secrets *SecretService
}

// NewVerifier creates a [Verifier] reading secrets from the given service.
func NewVerifier(secrets *SecretService) *Verifier {
	return &Verifier{secrets: secrets}
}

// Verify reports whether signature is a valid proof for (deviceID,
// timestamp). It fails closed: an absent secret, a store failure, or any
// hashing problem yields false, never an error. Timestamp freshness is
// enforced separately by the coordinator.
func (v *Verifier) Verify(ctx context.Context, deviceID, timestamp, signature string) bool {
	secret, ok, err := v.secrets.GetSecret(ctx, deviceID)
	if err != nil || !ok {
		return false
	}

	expected := Sign(secret, deviceID, timestamp)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the device proof for (deviceID, timestamp) with the given
// secret. Clients cache the secret from session creation and call the same
// computation; the output must stay bit-exact across implementations.
func Sign(secret, deviceID, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(deviceID + ":" + timestamp))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
