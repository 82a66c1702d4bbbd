// Package common holds small helpers shared by the client packages for
// handling secrets: wiping buffers and fingerprinting credentials for logs.
package common

import (
	"crypto/sha256"
	"encoding/hex"
)

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Use it on passwords read from the terminal once they have been sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Fingerprint returns a short stable identifier for a credential that is
// safe to log. Empty input yields "".
func Fingerprint(credential string) string {
	if credential == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:4])
}
