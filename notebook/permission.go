package notebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type (
	// Role is one of the three access levels a subject can hold on a
	// list. Roles are totally ordered: owner implies write, write
	// implies read.
	Role string

	// Subject is who holds a grant: either a known user or the
	// anonymous subject. Lists owned by nobody are a supported case,
	// not an accident, so anonymous is a first-class lookup key. The
	// zero value is anonymous.
	Subject struct {
		userID uint64
		known  bool
	}

	// Grant is one row of a list's access table.
	Grant struct {
		Subject Subject
		Login   string
		Role    Role
	}
)

const (
	RoleRead  = Role("read")
	RoleWrite = Role("write")
	RoleOwner = Role("owner")
)

var roleRank = map[Role]int{
	RoleRead:  1,
	RoleWrite: 2,
	RoleOwner: 3,
}

// ParseRole validates free-form input against the closed role set.
func ParseRole(v string) (Role, error) {
	r := Role(v)
	if roleRank[r] == 0 {
		return Role(""), InvalidRole{Value: v}
	}
	return r, nil
}

// AtLeast reports whether r sits at or above min in the hierarchy.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

func Anonymous() Subject {
	return Subject{}
}

func UserSubject(id uint64) Subject {
	return Subject{userID: id, known: true}
}

func (s Subject) Anonymous() bool {
	return !s.known
}

// UserID returns the user behind the subject, ok is false for the
// anonymous subject.
func (s Subject) UserID() (uint64, bool) {
	return s.userID, s.known
}

func (s Subject) sqlValue() interface{} {
	if !s.known {
		return nil
	}
	return int64(s.userID)
}

// Grant gives sub the given role on a list, replacing whatever role it
// held before. The insert-or-update is a single statement against the
// unique index, two concurrent grants for the same subject and list
// cannot produce two rows or a lost update.
func (c *Control) Grant(ctx context.Context, sub Subject, listID uint64, role Role) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	var err error
	if sub.Anonymous() {
		_, err = c.db.ExecContext(ctx, `insert into permissions(user_id, list_id, role) values (null, ?, ?)
			on conflict (list_id) where user_id is null do update set role = excluded.role`,
			int64(listID), string(role))
	} else {
		_, err = c.db.ExecContext(ctx, `insert into permissions(user_id, list_id, role) values (?, ?, ?)
			on conflict (user_id, list_id) where user_id is not null do update set role = excluded.role`,
			sub.sqlValue(), int64(listID), string(role))
	}
	if err != nil {
		return fmt.Errorf("unable to grant %v on list %v, cause %w", role, listID, err)
	}
	return nil
}

// Revoke drops the grant sub holds on the list, if any.
func (c *Control) Revoke(ctx context.Context, sub Subject, listID uint64) error {
	var err error
	if sub.Anonymous() {
		_, err = c.db.ExecContext(ctx, `delete from permissions where user_id is null and list_id = ?`, int64(listID))
	} else {
		_, err = c.db.ExecContext(ctx, `delete from permissions where user_id = ? and list_id = ?`,
			sub.sqlValue(), int64(listID))
	}
	if err != nil {
		return fmt.Errorf("unable to revoke grant on list %v, cause %w", listID, err)
	}
	return nil
}

// GetGrant fetches the role sub holds on the list, found is false when
// no grant exists.
func (c *Control) GetGrant(ctx context.Context, sub Subject, listID uint64) (Role, bool, error) {
	var role string
	var err error
	if sub.Anonymous() {
		err = c.db.QueryRowContext(ctx, `select role from permissions where user_id is null and list_id = ?`,
			int64(listID)).Scan(&role)
	} else {
		err = c.db.QueryRowContext(ctx, `select role from permissions where user_id = ? and list_id = ?`,
			sub.sqlValue(), int64(listID)).Scan(&role)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Role(""), false, nil
	} else if err != nil {
		return Role(""), false, fmt.Errorf("unable to get grant on list %v, cause %w", listID, err)
	}
	return Role(role), true, nil
}

// RequireAtLeast returns the role sub actually holds on the list when
// that role sits at or above min, and Denied otherwise. A missing grant
// and an insufficient one are indistinguishable on purpose.
func (c *Control) RequireAtLeast(ctx context.Context, sub Subject, listID uint64, min Role) (Role, error) {
	role, found, err := c.GetGrant(ctx, sub, listID)
	if err != nil {
		return Role(""), err
	}
	if !found || !role.AtLeast(min) {
		return Role(""), Denied{Min: min}
	}
	return role, nil
}

// ListGrants enumerates every grant on the list, with the login of the
// holding user when there is one.
func (c *Control) ListGrants(ctx context.Context, listID uint64) ([]Grant, error) {
	rows, err := c.db.QueryContext(ctx, `select p.user_id, u.login, p.role
		from permissions p
		left join users u on u.user_id = p.user_id
		where p.list_id = ?
		order by p.role, u.login`, int64(listID))
	if err != nil {
		return nil, fmt.Errorf("unable to list grants of list %v, cause %w", listID, err)
	}
	defer rows.Close()
	var out []Grant
	for rows.Next() {
		var userID sql.NullInt64
		var login sql.NullString
		var role string
		err = rows.Scan(&userID, &login, &role)
		if err != nil {
			return nil, fmt.Errorf("unable to list grants of list %v, cause %w", listID, err)
		}
		g := Grant{Login: login.String, Role: Role(role)}
		if userID.Valid {
			g.Subject = UserSubject(uint64(userID.Int64))
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
