package notebook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleHierarchy(t *testing.T) {
	type testCase struct {
		held      Role
		min       Role
		satisfies bool
	}
	for _, tc := range []testCase{
		{RoleOwner, RoleOwner, true},
		{RoleOwner, RoleWrite, true},
		{RoleOwner, RoleRead, true},
		{RoleWrite, RoleOwner, false},
		{RoleWrite, RoleWrite, true},
		{RoleWrite, RoleRead, true},
		{RoleRead, RoleOwner, false},
		{RoleRead, RoleWrite, false},
		{RoleRead, RoleRead, true},
	} {
		if tc.held.AtLeast(tc.min) != tc.satisfies {
			t.Errorf("%v.AtLeast(%v) should return %v", tc.held, tc.min, tc.satisfies)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"owner", "write", "read"} {
		_, err := ParseRole(valid)
		require.NoError(t, err)
	}
	for _, invalid := range []string{"", "admin", "OWNER", "reader"} {
		_, err := ParseRole(invalid)
		var bad InvalidRole
		require.True(t, errors.As(err, &bad), "ParseRole(%q) should fail with InvalidRole", invalid)
	}
}

func newUserAndList(t *testing.T, book *Control) (Subject, uint64) {
	t.Helper()
	ctx := context.Background()
	userID, err := book.CreateUser(ctx, "owner", "", "", Credential{Hash: []byte("h"), Salt: []byte("s")})
	if err != nil {
		t.Fatal(err)
	}
	listID, err := book.CreateList(ctx, "groceries", UserSubject(userID))
	if err != nil {
		t.Fatal(err)
	}
	return UserSubject(userID), listID
}

func TestGrantUpsert(t *testing.T) {
	book := tempNotebook(t)
	ctx := context.Background()
	_, listID := newUserAndList(t, book)
	guestID, err := book.CreateUser(ctx, "guest", "", "", Credential{Hash: []byte("h"), Salt: []byte("s")})
	require.NoError(t, err)
	guest := UserSubject(guestID)

	require.NoError(t, book.Grant(ctx, guest, listID, RoleRead))
	// same grant twice leaves exactly one row
	require.NoError(t, book.Grant(ctx, guest, listID, RoleRead))
	// re-granting with another role replaces the row in place
	require.NoError(t, book.Grant(ctx, guest, listID, RoleWrite))

	grants, err := book.ListGrants(ctx, listID)
	require.NoError(t, err)
	require.Len(t, grants, 2) // owner + guest
	role, found, err := book.GetGrant(ctx, guest, listID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, RoleWrite, role)
}

func TestGrantRejectsUnknownRole(t *testing.T) {
	book := tempNotebook(t)
	ctx := context.Background()
	owner, listID := newUserAndList(t, book)
	err := book.Grant(ctx, owner, listID, Role("admin"))
	var bad InvalidRole
	require.True(t, errors.As(err, &bad))
}

func TestRequireAtLeast(t *testing.T) {
	book := tempNotebook(t)
	ctx := context.Background()
	owner, listID := newUserAndList(t, book)

	role, err := book.RequireAtLeast(ctx, owner, listID, RoleWrite)
	require.NoError(t, err)
	require.Equal(t, RoleOwner, role, "the role actually held comes back, not the minimum asked for")

	guestID, err := book.CreateUser(ctx, "guest", "", "", Credential{Hash: []byte("h"), Salt: []byte("s")})
	require.NoError(t, err)
	guest := UserSubject(guestID)

	_, err = book.RequireAtLeast(ctx, guest, listID, RoleRead)
	var denied Denied
	require.True(t, errors.As(err, &denied), "no grant at all should be Denied")

	require.NoError(t, book.Grant(ctx, guest, listID, RoleRead))
	_, err = book.RequireAtLeast(ctx, guest, listID, RoleWrite)
	require.True(t, errors.As(err, &denied), "a grant below the minimum should be Denied")
	role, err = book.RequireAtLeast(ctx, guest, listID, RoleRead)
	require.NoError(t, err)
	require.Equal(t, RoleRead, role)
}

func TestRevokeIsIdempotent(t *testing.T) {
	book := tempNotebook(t)
	ctx := context.Background()
	owner, listID := newUserAndList(t, book)
	require.NoError(t, book.Revoke(ctx, owner, listID))
	require.NoError(t, book.Revoke(ctx, owner, listID))
	_, found, err := book.GetGrant(ctx, owner, listID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestAnonymousSubject(t *testing.T) {
	book := tempNotebook(t)
	ctx := context.Background()
	// a list owned by nobody is a supported arrangement
	listID, err := book.CreateList(ctx, "public board", Anonymous())
	require.NoError(t, err)

	role, err := book.RequireAtLeast(ctx, Anonymous(), listID, RoleOwner)
	require.NoError(t, err)
	require.Equal(t, RoleOwner, role)

	// the anonymous grant upserts like any other
	require.NoError(t, book.Grant(ctx, Anonymous(), listID, RoleRead))
	grants, err := book.ListGrants(ctx, listID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.True(t, grants[0].Subject.Anonymous())
	require.Equal(t, RoleRead, grants[0].Role)

	_, err = book.RequireAtLeast(ctx, Anonymous(), listID, RoleWrite)
	var denied Denied
	require.True(t, errors.As(err, &denied))
}
