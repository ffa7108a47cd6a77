package auth

import (
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)

	token, expiry, err := issuer.Issue("p1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if time.Until(expiry) <= 0 {
		t.Fatalf("token issued already expired")
	}

	playerID, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if playerID != "p1" {
		t.Fatalf("validated %q, want p1", playerID)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)
	base := time.Now()
	issuer.now = func() time.Time { return base }

	token, _, err := issuer.Issue("p1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	issuer.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := issuer.Validate(token); err != ErrTokenInvalid {
		t.Fatalf("expired token validated: %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenIssuer([]byte("secret-a"), time.Minute).Issue("p1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := NewTokenIssuer([]byte("secret-b"), time.Minute).Validate(token); err != ErrTokenInvalid {
		t.Fatalf("mis-signed token validated: %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := issuer.Validate(raw); err != ErrTokenInvalid {
			t.Fatalf("garbage %q validated: %v", raw, err)
		}
	}
}

func TestTokensAreUnique(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)
	a, _, _ := issuer.Issue("p1")
	b, _, _ := issuer.Issue("p1")
	if a == b {
		t.Fatalf("two issued tokens are identical")
	}
}
