package discord

import (
	"crypto/ed25519"
	"encoding/hex"
)

// Signature headers sent by Discord with every interaction request.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// VerifySignature reports whether signatureHex is a valid Ed25519 signature
// over timestamp||body for the given hex-encoded public key.
//
// It verifies the exact bytes received, never a re-serialized form, and fails
// closed: a missing timestamp, malformed hex, or a wrong-length key or
// signature all return false the same way a bad signature does, so callers
// cannot distinguish failure causes.
func VerifySignature(publicKeyHex, timestamp string, body []byte, signatureHex string) bool {
	if timestamp == "" || signatureHex == "" {
		return false
	}

	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return false
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	return ed25519.Verify(ed25519.PublicKey(key), msg, sig)
}
