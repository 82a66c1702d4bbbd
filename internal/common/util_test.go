package common

import (
	"encoding/hex"
	"testing"
)

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- Fingerprint ----------

func TestFingerprint_ShortAndHex(t *testing.T) {
	fp := Fingerprint("eyJhbGciOiJIUzI1NiJ9.payload.signature")
	if len(fp) != 8 {
		t.Fatalf("expected 8 hex chars, got %q", fp)
	}
	if _, err := hex.DecodeString(fp); err != nil {
		t.Fatalf("fingerprint is not valid hex: %v", err)
	}
}

func TestFingerprint_Stable(t *testing.T) {
	if Fingerprint("token-a") != Fingerprint("token-a") {
		t.Fatalf("fingerprint must be deterministic")
	}
	if Fingerprint("token-a") == Fingerprint("token-b") {
		t.Logf("warning: distinct tokens share a fingerprint; extremely unlikely")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if got := Fingerprint(""); got != "" {
		t.Fatalf("expected empty fingerprint, got %q", got)
	}
}
