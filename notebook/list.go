package notebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type (
	List struct {
		ID   uint64
		Name string
	}

	// VisibleList is a list together with the role the asking subject
	// holds on it.
	VisibleList struct {
		List
		Role Role
	}
)

// CreateList inserts a list and its initial owner grant in one
// transaction. A list never exists without a grant pointing at it
// except transiently between a revoke and the next reclamation sweep.
func (c *Control) CreateList(ctx context.Context, name string, owner Subject) (uint64, error) {
	id, err := newID()
	if err != nil {
		return 0, err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("unable to create list %v, cause %w", name, err)
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `insert into lists(list_id, name) values (?, ?)`, int64(id), name)
	if err != nil {
		return 0, fmt.Errorf("unable to create list %v, cause %w", name, err)
	}
	_, err = tx.ExecContext(ctx, `insert into permissions(user_id, list_id, role) values (?, ?, ?)`,
		owner.sqlValue(), int64(id), string(RoleOwner))
	if err != nil {
		return 0, fmt.Errorf("unable to create owner grant for list %v, cause %w", name, err)
	}
	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("unable to create list %v, cause %w", name, err)
	}
	return id, nil
}

func (c *Control) GetList(ctx context.Context, id uint64) (List, error) {
	var name string
	err := c.db.QueryRowContext(ctx, `select name from lists where list_id = ?`, int64(id)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, ListNotFound{ID: id}
	} else if err != nil {
		return List{}, fmt.Errorf("unable to get list %v, cause %w", id, err)
	}
	return List{ID: id, Name: name}, nil
}

func (c *Control) RenameList(ctx context.Context, id uint64, name string) error {
	res, err := c.db.ExecContext(ctx, `update lists set name = ? where list_id = ?`, name, int64(id))
	if err != nil {
		return fmt.Errorf("unable to rename list %v, cause %w", id, err)
	}
	return mustAffect(res, ListNotFound{ID: id})
}

// DeleteList removes the list, its items and every grant on it.
func (c *Control) DeleteList(ctx context.Context, id uint64) error {
	_, err := c.db.ExecContext(ctx, `delete from lists where list_id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("unable to delete list %v, cause %w", id, err)
	}
	return nil
}

// VisibleLists enumerates every list the subject holds a grant on.
func (c *Control) VisibleLists(ctx context.Context, sub Subject) ([]VisibleList, error) {
	var rows *sql.Rows
	var err error
	const query = `select l.list_id, l.name, p.role
		from lists l
		inner join permissions p on p.list_id = l.list_id
		where %v
		order by l.name`
	if sub.Anonymous() {
		rows, err = c.db.QueryContext(ctx, fmt.Sprintf(query, `p.user_id is null`))
	} else {
		rows, err = c.db.QueryContext(ctx, fmt.Sprintf(query, `p.user_id = ?`), sub.sqlValue())
	}
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate visible lists, cause %w", err)
	}
	defer rows.Close()
	var out []VisibleList
	for rows.Next() {
		var id int64
		var v VisibleList
		var role string
		err = rows.Scan(&id, &v.Name, &role)
		if err != nil {
			return nil, fmt.Errorf("unable to enumerate visible lists, cause %w", err)
		}
		v.ID, v.Role = uint64(id), Role(role)
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteOrphanLists bulk-removes every list no grant points at. Such
// lists are unreachable by any subject and only take up space.
func (c *Control) DeleteOrphanLists(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `delete from lists where list_id not in (select list_id from permissions)`)
	if err != nil {
		return 0, fmt.Errorf("unable to delete orphan lists, cause %w", err)
	}
	return res.RowsAffected()
}
