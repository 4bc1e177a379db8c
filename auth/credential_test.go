package auth

import (
	"bytes"
	"testing"

	"github.com/andrebq/jotbox/notebook"
)

func TestDeriveIsDeterministicPerSalt(t *testing.T) {
	cred, err := DeriveCredential([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cred.Hash) != hashLen || len(cred.Salt) != saltLen {
		t.Fatalf("unexpected credential widths: hash %v salt %v", len(cred.Hash), len(cred.Salt))
	}
	if !bytes.Equal(deriveHash([]byte("secret"), cred.Salt), cred.Hash) {
		t.Fatal("same password and salt must derive the same hash")
	}
}

func TestFreshSaltPerCredential(t *testing.T) {
	first, err := DeriveCredential([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := DeriveCredential([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first.Salt, second.Salt) {
		t.Fatal("two derivations must not share a salt")
	}
	if bytes.Equal(first.Hash, second.Hash) {
		t.Fatal("distinct salts must produce distinct hashes")
	}
}

func TestVerifyCredential(t *testing.T) {
	cred, err := DeriveCredential([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	ok, err := VerifyCredential([]byte("secret"), cred)
	if err != nil || !ok {
		t.Fatalf("the right password must verify, got ok=%v err=%v", ok, err)
	}
	ok, err = VerifyCredential([]byte("Secret"), cred)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("a wrong password must not verify")
	}
}

func TestVerifyCredentialRejectsCorruptedStore(t *testing.T) {
	cred, err := DeriveCredential([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	// wrong widths mean the store itself is broken, that is an error,
	// not a failed login
	for _, corrupted := range []notebook.Credential{
		{Hash: cred.Hash, Salt: cred.Salt[:8]},
		{Hash: cred.Hash[:16], Salt: cred.Salt},
		{},
	} {
		ok, err := VerifyCredential([]byte("secret"), corrupted)
		if ok || err == nil {
			t.Fatalf("corrupted credential %v/%v bytes should fail with an error, got ok=%v err=%v",
				len(corrupted.Hash), len(corrupted.Salt), ok, err)
		}
	}
}
