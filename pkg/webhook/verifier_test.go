package webhook

import (
	"encoding/base64"
	"strconv"
	"testing"
	"time"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	secret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("test-secret-key"))
	v, err := NewVerifier(secret)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return v
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := newTestVerifier(t)
	body := []byte(`{"type":"user.created","data":{"id":"user_123"}}`)
	now := time.Now()
	ts := strconv.FormatInt(now.Unix(), 10)

	sig := v.Sign("msg_1", ts, body)
	if err := v.verifyAt("msg_1", ts, sig, body, now); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestVerifier_RejectsTamperedBody(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Now()
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := v.Sign("msg_1", ts, []byte(`{"a":1}`))

	err := v.verifyAt("msg_1", ts, sig, []byte(`{"a":2}`), now)
	if err != ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifier_MissingHeaders(t *testing.T) {
	v := newTestVerifier(t)
	if err := v.Verify("", "", "", nil); err != ErrMissingHeaders {
		t.Errorf("expected ErrMissingHeaders, got %v", err)
	}
}

func TestVerifier_StaleTimestamp(t *testing.T) {
	v := newTestVerifier(t)
	body := []byte(`{}`)
	old := time.Now().Add(-time.Hour)
	ts := strconv.FormatInt(old.Unix(), 10)
	sig := v.Sign("msg_1", ts, body)

	if err := v.verifyAt("msg_1", ts, sig, body, time.Now()); err != ErrStaleTimestamp {
		t.Errorf("expected ErrStaleTimestamp, got %v", err)
	}
}

func TestVerifier_IgnoresUnknownSchemes(t *testing.T) {
	v := newTestVerifier(t)
	body := []byte(`{}`)
	now := time.Now()
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := v.Sign("msg_1", ts, body)

	// An unknown scheme before a valid v1 candidate must not break verification.
	combined := "v2,Zm9v " + sig
	if err := v.verifyAt("msg_1", ts, combined, body, now); err != nil {
		t.Errorf("valid v1 candidate rejected: %v", err)
	}
}
