package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for opaque tokens
    "encoding/hex"  // hex encoding and decoding functions
)

// OpaqueTokenHexLen is the length of a raw opaque token: 32 random bytes
// hex-encoded into 64 characters.  Handlers use it to reject malformed
// tokens before they reach the service.
const OpaqueTokenHexLen = 64

// NewOpaqueToken returns a cryptographically secure random token encoded
// as a 64-character hex string.  These tokens are handed to the user out
// of band (password reset, email verification); only their digest is
// ever stored.
func NewOpaqueToken() (string, error) {
    return randomHex(32)
}

// DigestToken returns the SHA-256 hash of a raw opaque token as a hex
// string.  Storing only the digest means a leaked database row cannot be
// replayed as the token itself, while the digest still supports equality
// lookup of a presented raw token.
func DigestToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// IsOpaqueToken reports whether s has the exact shape of a token
// produced by NewOpaqueToken: fixed length, lowercase hex.
func IsOpaqueToken(s string) bool {
    if len(s) != OpaqueTokenHexLen {
        return false
    }
    _, err := hex.DecodeString(s)
    return err == nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.  If the random number generator
// fails, an error is returned.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
