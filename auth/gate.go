package auth

import (
	"context"
	"errors"
	"time"

	"github.com/andrebq/jotbox/internal/logutil"
	"github.com/andrebq/jotbox/notebook"
)

type (
	// Policy controls what a request must present to pass the gate.
	Policy int

	// Identity is who a request turned out to be. An anonymous subject
	// carries no session.
	Identity struct {
		Subject   notebook.Subject
		SessionID uint64
	}

	// Gate is the single entry point that turns a raw bearer token or a
	// login/password pair into an Identity. Expiry is checked here and
	// only here, a session row that outlived its expiration is treated
	// exactly like one that never existed.
	Gate struct {
		book   *notebook.Control
		cipher *TokenCipher
		cache  *tokenCache
		now    func() time.Time
	}
)

const (
	// Required rejects requests without a usable token.
	Required = Policy(iota)
	// Optional resolves a token when present and falls back to the
	// anonymous identity when the request carries none.
	Optional
)

func NewGate(book *notebook.Control, cipher *TokenCipher) (*Gate, error) {
	cache, err := newTokenCache(10 * time.Minute)
	if err != nil {
		return nil, err
	}
	return &Gate{
		book:   book,
		cipher: cipher,
		cache:  cache,
		now:    time.Now,
	}, nil
}

// AuthenticateToken resolves a bearer token into an identity under the
// given policy. Every failure mode (undecipherable token, unknown
// session, expired session) comes back as Unauthorized.
func (g *Gate) AuthenticateToken(ctx context.Context, token string, policy Policy) (Identity, error) {
	if token == "" {
		if policy == Optional {
			return Identity{Subject: notebook.Anonymous()}, nil
		}
		return Identity{}, Unauthorized{}
	}
	log := logutil.GetOrDefault(ctx)
	sessionID, err := g.openToken(token)
	if err != nil {
		log.Warn().Err(err).Msg("Rejecting undecipherable bearer token")
		return Identity{}, Unauthorized{}
	}
	session, err := g.book.ResolveSession(ctx, sessionID)
	var missing notebook.SessionNotFound
	if errors.As(err, &missing) {
		g.cache.forget(token)
		return Identity{}, Unauthorized{}
	} else if err != nil {
		return Identity{}, err
	}
	if !session.ExpiresAt.After(g.now()) {
		// the row is garbage waiting for the next reclamation sweep
		g.cache.forget(token)
		return Identity{}, Unauthorized{}
	}
	g.cache.save(token, sessionID)
	return Identity{Subject: notebook.UserSubject(session.UserID), SessionID: session.ID}, nil
}

// AuthenticateCredentials checks a login/password pair and returns the
// matching identity without a session, creating one is the login
// handler's call. Unknown login and wrong password are reported as the
// same InvalidCredentials.
func (g *Gate) AuthenticateCredentials(ctx context.Context, login string, password []byte) (Identity, error) {
	user, cred, err := g.book.LookupLogin(ctx, login)
	var missing notebook.UserNotFound
	if errors.As(err, &missing) {
		return Identity{}, InvalidCredentials{}
	} else if err != nil {
		return Identity{}, err
	}
	ok, err := VerifyCredential(password, cred)
	if err != nil {
		// a corrupted credential store is an internal failure, not a
		// login mistake, hiding it behind InvalidCredentials would
		// strand the user with no way to recover
		return Identity{}, err
	}
	if !ok {
		return Identity{}, InvalidCredentials{}
	}
	return Identity{Subject: notebook.UserSubject(user.ID)}, nil
}

// Seal turns a freshly created session id into the bearer token handed
// to the client.
func (g *Gate) Seal(sessionID uint64) (string, error) {
	return g.cipher.Seal(sessionID)
}

// Logout deletes the session behind the token and drops it from the
// decode cache. Tokens that do not decode or sessions already gone are
// fine, logging out twice is not an error.
func (g *Gate) Logout(ctx context.Context, token string) error {
	sessionID, err := g.openToken(token)
	if err != nil {
		return nil
	}
	err = g.book.DeleteSession(ctx, sessionID)
	if err != nil {
		return err
	}
	g.cache.forget(token)
	return nil
}

func (g *Gate) openToken(token string) (uint64, error) {
	if id, found := g.cache.lookup(token); found {
		return id, nil
	}
	return g.cipher.Open(token)
}
