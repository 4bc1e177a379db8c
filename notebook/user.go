package notebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/mattn/go-sqlite3"
)

type (
	User struct {
		ID        uint64
		Login     string
		FirstName string
		LastName  string
	}

	// Credential is the stored form of a password: the derived hash and
	// the salt it was derived with. The notebook treats both as opaque
	// blobs, deriving and checking them is the auth package's job.
	Credential struct {
		Hash []byte
		Salt []byte
	}
)

func loginHash(login string) int64 {
	return int64(xxhash.Sum64String(login))
}

// CreateUser inserts a new user. The login must be unique across the
// notebook, a violation surfaces as DuplicateLogin.
func (c *Control) CreateUser(ctx context.Context, login, firstName, lastName string, cred Credential) (uint64, error) {
	id, err := newID()
	if err != nil {
		return 0, err
	}
	_, err = c.db.ExecContext(ctx, `insert into users(user_id, login, login_hash64, first_name, last_name, password, salt)
		values (?, ?, ?, ?, ?, ?, ?)`,
		int64(id), login, loginHash(login), nullableText(firstName), nullableText(lastName), cred.Hash, cred.Salt)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, DuplicateLogin{Login: login}
		}
		return 0, fmt.Errorf("unable to create user %v, cause %w", login, err)
	}
	return id, nil
}

// LookupLogin fetches a user and its stored credential by login.
func (c *Control) LookupLogin(ctx context.Context, login string) (User, Credential, error) {
	var u User
	var cred Credential
	var id int64
	var first, last sql.NullString
	err := c.db.QueryRowContext(ctx, `select user_id, login, first_name, last_name, password, salt
		from users where login_hash64 = ? and login = ?`, loginHash(login), login).
		Scan(&id, &u.Login, &first, &last, &cred.Hash, &cred.Salt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, Credential{}, UserNotFound{Login: login}
	} else if err != nil {
		return User{}, Credential{}, fmt.Errorf("unable to lookup login %v, cause %w", login, err)
	}
	u.ID = uint64(id)
	u.FirstName, u.LastName = first.String, last.String
	return u, cred, nil
}

func (c *Control) GetUser(ctx context.Context, id uint64) (User, error) {
	var u User
	var first, last sql.NullString
	err := c.db.QueryRowContext(ctx, `select login, first_name, last_name from users where user_id = ?`, int64(id)).
		Scan(&u.Login, &first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to get user, cause %w", err)
	}
	u.ID = id
	u.FirstName, u.LastName = first.String, last.String
	return u, nil
}

func (c *Control) UpdateProfile(ctx context.Context, id uint64, firstName, lastName string) error {
	res, err := c.db.ExecContext(ctx, `update users set first_name = ?, last_name = ? where user_id = ?`,
		nullableText(firstName), nullableText(lastName), int64(id))
	if err != nil {
		return fmt.Errorf("unable to update profile, cause %w", err)
	}
	return mustAffect(res, UserNotFound{})
}

// UpdateCredential replaces the stored hash and salt of one user. A
// password change always comes with a fresh salt, so both columns move
// together.
func (c *Control) UpdateCredential(ctx context.Context, id uint64, cred Credential) error {
	res, err := c.db.ExecContext(ctx, `update users set password = ?, salt = ? where user_id = ?`,
		cred.Hash, cred.Salt, int64(id))
	if err != nil {
		return fmt.Errorf("unable to update credential, cause %w", err)
	}
	return mustAffect(res, UserNotFound{})
}

// DeleteUser removes the user. Sessions and permission grants pointing
// at it go with it via cascade.
func (c *Control) DeleteUser(ctx context.Context, id uint64) error {
	_, err := c.db.ExecContext(ctx, `delete from users where user_id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("unable to delete user, cause %w", err)
	}
	return nil
}

func nullableText(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func mustAffect(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
