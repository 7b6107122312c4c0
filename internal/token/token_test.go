package token

import (
	"strings"
	"testing"
	"time"

	"github.com/accountforge/service-identity-go/internal/apperror"
)

func TestIssueVerifyRoundtrip(t *testing.T) {
	svc := NewService("test-secret", 0)

	signed, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if signed == "" {
		t.Fatal("expected non-empty token")
	}

	subject, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "user-123" {
		t.Fatalf("expected subject user-123, got %q", subject)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	svc := NewService("test-secret", 0)

	signed, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	// skip the final byte: its low bits are padding in base64url and a
	// lenient decoder may ignore them
	sig := []byte(parts[2])
	for i := 0; i < len(sig)-1; i++ {
		flipped := byte('A')
		if sig[i] == 'A' {
			flipped = 'B'
		}
		orig := sig[i]
		sig[i] = flipped
		tampered := parts[0] + "." + parts[1] + "." + string(sig)
		if _, err := svc.Verify(tampered); err == nil {
			t.Fatalf("expected tampered signature at byte %d to fail verification", i)
		}
		sig[i] = orig
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewService("secret-a", 0).Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = NewService("secret-b", 0).Verify(signed)
	if !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	svc := NewService("test-secret", 0)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := svc.Verify(raw); !apperror.IsKind(err, apperror.KindUnauthorized) {
			t.Fatalf("expected Unauthorized for %q, got %v", raw, err)
		}
	}
}

func TestVerifyHonorsConfiguredExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService("test-secret", time.Hour)
	svc.now = func() time.Time { return issuedAt }

	signed, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// still valid before the deadline
	svc.now = func() time.Time { return issuedAt.Add(30 * time.Minute) }
	if _, err := svc.Verify(signed); err != nil {
		t.Fatalf("verify before expiry: %v", err)
	}

	// rejected after it
	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := svc.Verify(signed); !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Fatalf("expected Unauthorized after expiry, got %v", err)
	}
}

func TestNoExpiryByDefault(t *testing.T) {
	issuedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService("test-secret", 0)
	svc.now = func() time.Time { return issuedAt }

	signed, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.AddDate(10, 0, 0) }
	if _, err := svc.Verify(signed); err != nil {
		t.Fatalf("expected token without ttl to stay valid, got %v", err)
	}
}
