// Package stripesig verifies Stripe-style webhook signature headers of the
// form "t=<unix>,v1=<hex hmac>[,v1=<hex hmac>...]", where each v1 value is an
// HMAC-SHA256 of "<t>.<payload>" under the endpoint's shared secret.
package stripesig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DefaultTolerance = 5 * time.Minute

var (
	ErrInvalidHeader    = errors.New("invalid signature header")
	ErrNoValidSignature = errors.New("no valid signature")
	ErrStaleTimestamp   = errors.New("timestamp outside tolerance window")
)

// ComputeSignature returns the expected HMAC for a payload signed at ts.
func ComputeSignature(ts int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return mac.Sum(nil)
}

// Verify checks header against payload. The timestamp must be within
// tolerance of now, and at least one v1 signature must match.
func Verify(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	ts, sigs, err := parseHeader(header)
	if err != nil {
		return err
	}

	diff := now.Sub(time.Unix(ts, 0))
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return ErrStaleTimestamp
	}

	expected := ComputeSignature(ts, payload, secret)
	for _, sig := range sigs {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return ErrNoValidSignature
}

func parseHeader(header string) (int64, [][]byte, error) {
	if header == "" {
		return 0, nil, ErrInvalidHeader
	}

	var (
		ts   int64
		seen bool
		sigs [][]byte
	)
	for _, pair := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return 0, nil, ErrInvalidHeader
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidHeader
			}
			ts, seen = n, true
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			sigs = append(sigs, sig)
		}
	}
	if !seen || len(sigs) == 0 {
		return 0, nil, ErrInvalidHeader
	}
	return ts, sigs, nil
}
