// Package signing issues the short-lived signatures that authorize direct
// media uploads to the external storage provider. The provider re-derives
// the signature from the submitted parameters and the shared secret, so the
// serialization here is a wire contract: parameters sorted by key, encoded
// as key=value pairs joined with "&", secret appended, SHA-1 in hex.
package signing

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrMissingSecret indicates the signing secret was not configured. Issuing
// cannot proceed without it.
var ErrMissingSecret = errors.New("media signing secret is not configured")

// UploadSignature authorizes a single direct upload. It is never stored
// server-side; the provider checks timestamp freshness itself.
type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
}

// Signer derives upload signatures from a shared provider secret.
type Signer struct {
	secret string
	now    func() time.Time
}

// New returns a Signer for the given provider secret.
func New(secret string) *Signer {
	return &Signer{secret: secret, now: time.Now}
}

// NewWithClock is like New with an injectable clock.
func NewWithClock(secret string, now func() time.Time) *Signer {
	return &Signer{secret: secret, now: now}
}

// IssueUploadSignature signs the current whole-second timestamp. The result
// is deterministic for a given (timestamp, secret) pair: there is no nonce,
// so two calls within the same second produce the same signature.
func (s *Signer) IssueUploadSignature() (UploadSignature, error) {
	if s.secret == "" {
		return UploadSignature{}, ErrMissingSecret
	}

	ts := s.now().Unix()
	sig := s.sign(map[string]string{
		"timestamp": strconv.FormatInt(ts, 10),
	})

	return UploadSignature{Signature: sig, Timestamp: ts}, nil
}

// sign serializes params in the provider's canonical form and hashes them
// with the secret appended.
func (s *Signer) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + s.secret))
	return hex.EncodeToString(sum[:])
}
