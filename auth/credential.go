package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/andrebq/jotbox/notebook"
	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	hashLen = 32

	// Argon2id parameters are fixed, not derived from the host: the
	// thread count changes the output, a hash derived on one machine
	// must verify on any other.
	argonPasses  = 7
	argonMemory  = 10 * 1024
	argonThreads = 4
)

// DeriveCredential extends password with Argon2id over a fresh random
// salt and returns the storable hash+salt pair. Each call produces a new
// salt, salts are never reused across signups or password changes.
func DeriveCredential(password []byte) (notebook.Credential, error) {
	salt := make([]byte, saltLen)
	_, err := rand.Read(salt)
	if err != nil {
		return notebook.Credential{}, fmt.Errorf("unable to generate salt, cause %w", err)
	}
	return notebook.Credential{Hash: deriveHash(password, salt), Salt: salt}, nil
}

// VerifyCredential re-derives the hash for password under the stored
// salt and compares it to the stored hash in constant time. A stored
// credential with the wrong widths is a corrupted store, not a wrong
// password, and comes back as an error instead of false.
func VerifyCredential(password []byte, cred notebook.Credential) (bool, error) {
	if len(cred.Hash) != hashLen || len(cred.Salt) != saltLen {
		return false, fmt.Errorf("stored credential is corrupted: hash %v salt %v bytes, expecting %v and %v",
			len(cred.Hash), len(cred.Salt), hashLen, saltLen)
	}
	return subtle.ConstantTimeCompare(deriveHash(password, cred.Salt), cred.Hash) == 1, nil
}

func deriveHash(password, salt []byte) []byte {
	// 7 passes over 10 MB should be a good replacement
	// for 1 pass over 64 MB of ram.
	return argon2.IDKey(password, salt, argonPasses, argonMemory, argonThreads, hashLen)
}
