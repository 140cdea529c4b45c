package signing

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"testing"
	"time"
)

func fixedClock(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestIssueUploadSignatureMissingSecret(t *testing.T) {
	s := New("")
	if _, err := s.IssueUploadSignature(); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestIssueUploadSignatureWireFormat(t *testing.T) {
	s := NewWithClock("topsecret", fixedClock(1668691037))

	got, err := s.IssueUploadSignature()
	if err != nil {
		t.Fatalf("IssueUploadSignature: %v", err)
	}

	if got.Timestamp != 1668691037 {
		t.Fatalf("timestamp = %d, want 1668691037", got.Timestamp)
	}

	// The provider recomputes sha1("timestamp=<ts>" + secret).
	sum := sha1.Sum([]byte("timestamp=1668691037topsecret"))
	if want := hex.EncodeToString(sum[:]); got.Signature != want {
		t.Fatalf("signature = %q, want %q", got.Signature, want)
	}
}

func TestIssueUploadSignatureDeterministicWithinSecond(t *testing.T) {
	s := NewWithClock("topsecret", fixedClock(1668691037))

	first, err := s.IssueUploadSignature()
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := s.IssueUploadSignature()
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}

	if first != second {
		t.Fatalf("signatures within the same second differ: %+v vs %+v", first, second)
	}
}

func TestIssueUploadSignatureChangesAcrossSeconds(t *testing.T) {
	sec := int64(1668691037)
	s := NewWithClock("topsecret", func() time.Time {
		sec++
		return time.Unix(sec, 0)
	})

	first, err := s.IssueUploadSignature()
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := s.IssueUploadSignature()
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}

	if first.Signature == second.Signature {
		t.Fatalf("signatures a second apart should differ, both %q", first.Signature)
	}
}

func TestSignatureDependsOnSecret(t *testing.T) {
	a, err := NewWithClock("secret-a", fixedClock(100)).IssueUploadSignature()
	if err != nil {
		t.Fatalf("issue with secret-a: %v", err)
	}
	b, err := NewWithClock("secret-b", fixedClock(100)).IssueUploadSignature()
	if err != nil {
		t.Fatalf("issue with secret-b: %v", err)
	}
	if a.Signature == b.Signature {
		t.Fatalf("different secrets produced the same signature %q", a.Signature)
	}
}
