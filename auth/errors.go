package auth

type (
	// Unauthorized covers every way a token-based request can fail:
	// missing token, undecipherable token, unknown session, expired
	// session. Callers never learn which.
	Unauthorized struct{}

	// InvalidCredentials covers both unknown login and wrong password,
	// without telling them apart, so login attempts cannot be used to
	// enumerate usernames.
	InvalidCredentials struct{}

	// InvalidToken is the cipher-level failure behind most Unauthorized
	// results. It stays internal to logging, the gate collapses it into
	// Unauthorized before anything leaves the package.
	InvalidToken struct {
		Cause error
	}
)

func (Unauthorized) Error() string {
	return "unauthorized"
}

func (InvalidCredentials) Error() string {
	return "invalid credentials"
}

func (i InvalidToken) Error() string {
	return "invalid token"
}

func (i InvalidToken) Unwrap() error {
	return i.Cause
}
