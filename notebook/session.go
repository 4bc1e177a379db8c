package notebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type (
	// Session binds an issued token to a user until ExpiresAt. Rows are
	// never updated after insertion, a session either exists as created
	// or it is gone.
	Session struct {
		ID        uint64
		UserID    uint64
		ExpiresAt time.Time
	}
)

// CreateSession inserts a session for userID expiring ttl from now.
func (c *Control) CreateSession(ctx context.Context, userID uint64, ttl time.Duration) (Session, error) {
	id, err := newID()
	if err != nil {
		return Session{}, err
	}
	expires := time.Now().Add(ttl)
	_, err = c.db.ExecContext(ctx, `insert into sessions(session_id, user_id, expires_at) values (?, ?, ?)`,
		int64(id), int64(userID), expires.Unix())
	if err != nil {
		return Session{}, fmt.Errorf("unable to create session, cause %w", err)
	}
	return Session{ID: id, UserID: userID, ExpiresAt: expires}, nil
}

// ResolveSession fetches a session by id. Expired rows are returned as
// found: whether a session is still usable is decided by the caller,
// not here, so the expiry rule lives in exactly one place.
func (c *Control) ResolveSession(ctx context.Context, id uint64) (Session, error) {
	var userID, expires int64
	err := c.db.QueryRowContext(ctx, `select user_id, expires_at from sessions where session_id = ?`, int64(id)).
		Scan(&userID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, SessionNotFound{ID: id}
	} else if err != nil {
		return Session{}, fmt.Errorf("unable to resolve session, cause %w", err)
	}
	return Session{ID: id, UserID: uint64(userID), ExpiresAt: time.Unix(expires, 0)}, nil
}

// DeleteSession removes a session. Deleting an id that does not exist
// is not an error.
func (c *Control) DeleteSession(ctx context.Context, id uint64) error {
	_, err := c.db.ExecContext(ctx, `delete from sessions where session_id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("unable to delete session, cause %w", err)
	}
	return nil
}

// DeleteExpiredSessions bulk-removes every session whose expiration is
// behind now. Returns how many rows went away.
func (c *Control) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `delete from sessions where expires_at < ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("unable to delete expired sessions, cause %w", err)
	}
	return res.RowsAffected()
}
