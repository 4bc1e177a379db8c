// Package notebook stores the state of a jotbox instance: users, their
// sessions, the lists they share and the items on those lists.
//
// A notebook is a plain sqlite file. Relations between rows are enforced
// by the database itself (foreign keys with cascade deletes, unique
// indexes), not by checks in this package, so concurrent writers race at
// the storage layer and nowhere else.
package notebook

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type (
	// Control wraps the database handle of one notebook and exposes
	// every operation the rest of the system performs on it.
	Control struct {
		db *sql.DB
	}
)

func openNotebookDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if len(path) == 0 {
		// sqlite reads `file:?...` as a private temporary database,
		// every row written to it vanishes on close
		return nil, errors.New("notebook path cannot be empty")
	}
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return nil, fmt.Errorf("unable to create directory %v to store notebook, cause %w", filepath.Dir(path), err)
	}
	connstr := fmt.Sprintf("file:%v?_foreign_keys=on&_journal=wal&mode=rwc", path)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", path, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to ping notebook %v, cause %v", path, err)
	}
	return conn, nil
}

// Open loads the notebook at path, creating the file and its schema when
// missing. Foreign key enforcement is enabled on the connection, the
// cascade semantics of the schema depend on it.
func Open(ctx context.Context, path string) (*Control, error) {
	conn, err := openNotebookDatabase(ctx, path)
	if err != nil {
		return nil, err
	}
	c := &Control{db: conn}
	err = c.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init notebook %v, cause %v", path, err)
	}
	return c, nil
}

func (c *Control) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id integer not null primary key,
			login text not null unique,
			login_hash64 integer not null,
			first_name text,
			last_name text,
			password blob not null,
			salt blob not null
		)`,
		`create index if not exists idx_users_login_hash64
			on users(login_hash64)
		`,
		`create table if not exists sessions(
			session_id integer not null primary key,
			user_id integer not null,
			expires_at integer not null,
			foreign key (user_id) references users(user_id) on delete cascade
		)`,
		`create index if not exists idx_sessions_expires_at
			on sessions(expires_at)
		`,
		`create table if not exists lists(
			list_id integer not null primary key,
			name text not null
		)`,
		`create table if not exists permissions(
			user_id integer,
			list_id integer not null,
			role text not null,
			foreign key (user_id) references users(user_id) on delete cascade,
			foreign key (list_id) references lists(list_id) on delete cascade
		)`,
		`create unique index if not exists uidx_permissions_user_list
			on permissions(user_id, list_id) where user_id is not null
		`,
		`create unique index if not exists uidx_permissions_anon_list
			on permissions(list_id) where user_id is null
		`,
		`create table if not exists items(
			item_id integer not null primary key,
			list_id integer not null,
			name text not null,
			description text,
			state text not null,
			foreign key (list_id) references lists(list_id) on delete cascade
		)`,
		`create index if not exists idx_items_list_id
			on items(list_id)
		`,
	} {
		_, err := c.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Control) Close() error {
	return c.db.Close()
}

// newID returns a random non-zero 64-bit identifier. Identifiers are
// random rather than sequential so nothing about creation order leaks
// through ids handed out to clients.
func newID() (uint64, error) {
	var buf [8]byte
	for {
		_, err := rand.Read(buf[:])
		if err != nil {
			return 0, fmt.Errorf("unable to generate id, cause %w", err)
		}
		id := binary.BigEndian.Uint64(buf[:])
		if id != 0 {
			return id, nil
		}
	}
}
