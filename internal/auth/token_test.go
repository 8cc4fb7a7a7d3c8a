package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testKey(t *testing.T, name, secret string) Key {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}
	return Key{Name: name, Hash: string(hash)}
}

func TestKeyringVerify(t *testing.T) {
	ring := NewKeyring([]Key{
		testKey(t, "prepress", "prepress-secret-0001"),
		testKey(t, "web", "web-secret-000000002"),
	})
	if !ring.Enabled() {
		t.Fatal("keyring with keys should be enabled")
	}

	name, err := ring.Verify("web-secret-000000002")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if name != "web" {
		t.Fatalf("Verify() = %q, want web", name)
	}

	// Second check is served from the fingerprint cache.
	if name, err := ring.Verify("web-secret-000000002"); err != nil || name != "web" {
		t.Fatalf("cached Verify() = %q, %v", name, err)
	}

	if _, err := ring.Verify("wrong-secret-00000000"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Verify(wrong) error = %v, want ErrInvalidKey", err)
	}
	if _, err := ring.Verify(""); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("Verify(\"\") error = %v, want ErrMissingKey", err)
	}
}

func TestEmptyKeyringDisabled(t *testing.T) {
	if NewKeyring(nil).Enabled() {
		t.Fatal("empty keyring should be disabled")
	}
	var ring *Keyring
	if ring.Enabled() {
		t.Fatal("nil keyring should be disabled")
	}
}

func TestParseKey(t *testing.T) {
	valid := testKey(t, "ci", "ci-secret-00000000003")
	got, err := ParseKey(" ci:" + valid.Hash + " ")
	if err != nil {
		t.Fatalf("ParseKey() error = %v", err)
	}
	if got != valid {
		t.Fatalf("ParseKey() = %+v, want %+v", got, valid)
	}

	for _, entry := range []string{"", "ci", ":" + valid.Hash, "ci:not-a-hash"} {
		if _, err := ParseKey(entry); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("ParseKey(%q) error = %v, want ErrInvalidHash", entry, err)
		}
	}
}

func TestHashKey(t *testing.T) {
	if _, err := HashKey("short"); err == nil {
		t.Fatal("expected short key to be rejected")
	}
	hash, err := HashKey("long-enough-secret-01")
	if err != nil {
		t.Fatalf("HashKey() error = %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("long-enough-secret-01")) != nil {
		t.Fatal("hash does not match secret")
	}
}

func TestHashToken(t *testing.T) {
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := HashToken("hello"); got != want {
		t.Fatalf("HashToken() = %s, want %s", got, want)
	}
}
