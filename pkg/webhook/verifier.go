// Package webhook verifies svix-style signed webhook events as delivered by
// Clerk: three headers (webhook id, unix timestamp, space-separated
// "v1,<base64 sig>" candidates) and an HMAC-SHA256 over "id.timestamp.body".
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingHeaders   = errors.New("missing webhook headers")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
)

const timestampTolerance = 5 * time.Minute

type Verifier struct {
	secret []byte
}

// NewVerifier accepts the shared secret, with or without the "whsec_" prefix.
// The secret payload is base64-encoded per the svix scheme.
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimPrefix(secret, "whsec_")
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode webhook secret: %w", err)
	}
	return &Verifier{secret: key}, nil
}

// Verify checks the signature headers against the raw body and returns nil
// only when at least one v1 signature candidate matches.
func (v *Verifier) Verify(id, timestamp, signatures string, body []byte) error {
	return v.verifyAt(id, timestamp, signatures, body, time.Now())
}

func (v *Verifier) verifyAt(id, timestamp, signatures string, body []byte, now time.Time) error {
	if id == "" || timestamp == "" || signatures == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp %q", ErrMissingHeaders, timestamp)
	}
	diff := now.Sub(time.Unix(ts, 0))
	if diff > timestampTolerance || diff < -timestampTolerance {
		return ErrStaleTimestamp
	}

	expected := v.sign(id, timestamp, body)

	for _, candidate := range strings.Split(signatures, " ") {
		parts := strings.SplitN(candidate, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		sig, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			continue
		}
		if hmac.Equal(sig, expected) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// Sign produces the "v1,<sig>" header value for the given event. Used by
// tests and local event replay.
func (v *Verifier) Sign(id, timestamp string, body []byte) string {
	return "v1," + base64.StdEncoding.EncodeToString(v.sign(id, timestamp, body))
}

func (v *Verifier) sign(id, timestamp string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}
