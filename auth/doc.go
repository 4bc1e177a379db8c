// Package auth turns raw request credentials into identities.
//
// Passwords never touch the notebook: a signup extends the password with
// Argon2id over a per-user random salt and only that derived hash is
// stored. Checking a password re-derives and compares in constant time.
//
// A bearer token is nothing but the session id sealed with AES-GCM under
// a process-wide key. The token carries no user identity at all, every
// authenticated request resolves its session from the notebook, which is
// what makes logout-by-deletion take effect immediately. Whether a
// session is still usable (it exists and has not expired) is decided in
// one place, the Gate, and nowhere else.
//
// The sealing key is read once from the environment at startup and the
// variable is scrubbed, the key never appears on the command line or in
// the process environment afterwards.
package auth
