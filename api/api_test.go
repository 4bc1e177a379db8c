package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andrebq/jotbox/auth"
	"github.com/andrebq/jotbox/internal/testutil"
	"github.com/andrebq/jotbox/notebook"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func testHandler(t *testing.T) (http.Handler, *notebook.Control) {
	t.Helper()
	ctx := context.Background()
	book, cleanup := testutil.AcquireNotebook(ctx, t, "api")
	t.Cleanup(cleanup)
	var key auth.Key
	_, err := rand.Read(key[:])
	if err != nil {
		t.Fatal(err)
	}
	cipher, err := auth.NewTokenCipher(&key)
	if err != nil {
		t.Fatal(err)
	}
	gate, err := auth.NewGate(book, cipher)
	if err != nil {
		t.Fatal(err)
	}
	return AsHandler(book, gate, time.Hour), book
}

func postJSON(t *testing.T, handler http.Handler, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", bearer(token))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		err = json.Unmarshal(rec.Body.Bytes(), out)
		if err != nil {
			t.Fatal(err)
		}
	}
	return rec
}

func signup(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()
	var res tokenResponse
	rec := postJSON(t, handler, "/signup", "", signupRequest{Username: username, Password: password}, &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("signup of %v failed with status %v: %v", username, rec.Code, rec.Body.String())
	}
	if res.Token == "" {
		t.Fatal("signup must hand back a token")
	}
	return res.Token
}

func createList(t *testing.T, handler http.Handler, token, name string) string {
	t.Helper()
	var res listResponse
	rec := postJSON(t, handler, "/list", token, listPayload{Name: name}, &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("creating list %v failed with status %v: %v", name, rec.Code, rec.Body.String())
	}
	return res.ID
}

func bearer(token string) string {
	return fmt.Sprintf("Bearer %v", token)
}

func TestSignupThenProtectedAccess(t *testing.T) {
	handler, _ := testHandler(t)
	token := signup(t, handler, "johndoe", "secret")

	apitest.New().
		Handler(handler).
		Get("/user").
		Header("Authorization", bearer(token)).
		Expect(t).
		Assert(jsonpath.Equal("$.username", "johndoe")).
		Status(http.StatusOK).
		End()

	// without the token the same endpoint stays shut
	apitest.New().
		Handler(handler).
		Get("/user").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	// the username is taken now
	apitest.New().
		Handler(handler).
		Post("/signup").
		JSON(`{"username":"johndoe","password":"other"}`).
		Expect(t).
		Status(http.StatusConflict).
		End()
}

func TestPasswordOnlyUpdateKeepsProfile(t *testing.T) {
	handler, _ := testHandler(t)
	token := signup(t, handler, "johndoe", "secret")

	apitest.New().
		Handler(handler).
		Put("/user").
		Header("Authorization", bearer(token)).
		JSON(`{"firstName":"John","lastName":"Doe"}`).
		Expect(t).
		Status(http.StatusNoContent).
		End()
	// changing only the password must not wipe the names
	apitest.New().
		Handler(handler).
		Put("/user").
		Header("Authorization", bearer(token)).
		JSON(`{"password":"rotated"}`).
		Expect(t).
		Status(http.StatusNoContent).
		End()
	apitest.New().
		Handler(handler).
		Get("/user").
		Header("Authorization", bearer(token)).
		Expect(t).
		Assert(jsonpath.Equal("$.firstName", "John")).
		Assert(jsonpath.Equal("$.lastName", "Doe")).
		Status(http.StatusOK).
		End()
	// and the new password must be the one that logs in
	apitest.New().
		Handler(handler).
		Post("/login").
		JSON(`{"username":"johndoe","password":"rotated"}`).
		Expect(t).
		Status(http.StatusOK).
		End()
	apitest.New().
		Handler(handler).
		Post("/login").
		JSON(`{"username":"johndoe","password":"secret"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestLogin(t *testing.T) {
	handler, _ := testHandler(t)
	signup(t, handler, "johndoe", "secret")

	apitest.New().
		Handler(handler).
		Post("/login").
		JSON(`{"username":"johndoe","password":"secret"}`).
		Expect(t).
		Assert(jsonpath.Present("$.token")).
		Status(http.StatusOK).
		End()
	apitest.New().
		Handler(handler).
		Post("/login").
		JSON(`{"username":"johndoe","password":"guess"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	apitest.New().
		Handler(handler).
		Post("/login").
		JSON(`{"username":"nosuchuser","password":"secret"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestLogoutKillsTheToken(t *testing.T) {
	handler, _ := testHandler(t)
	token := signup(t, handler, "johndoe", "secret")

	apitest.New().
		Handler(handler).
		Post("/logout").
		Header("Authorization", bearer(token)).
		Expect(t).
		Status(http.StatusNoContent).
		End()
	apitest.New().
		Handler(handler).
		Get("/user").
		Header("Authorization", bearer(token)).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestRoleEscalation(t *testing.T) {
	handler, _ := testHandler(t)
	owner := signup(t, handler, "owner", "secret")
	reader := signup(t, handler, "reader", "secret")
	listID := createList(t, handler, owner, "groceries")

	share := func(role string) {
		req := httptest.NewRequest("PUT", "/list/"+listID+"/share",
			bytes.NewBufferString(fmt.Sprintf(`{"username":"reader","role":%q}`, role)))
		req.Header.Set("Authorization", bearer(owner))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("sharing with role %v failed with status %v: %v", role, rec.Code, rec.Body.String())
		}
	}
	share("read")

	// read lets the list be seen but not renamed
	apitest.New().
		Handler(handler).
		Get("/list/"+listID).
		Header("Authorization", bearer(reader)).
		Expect(t).
		Assert(jsonpath.Equal("$.role", "read")).
		Status(http.StatusOK).
		End()
	apitest.New().
		Handler(handler).
		Put("/list/"+listID).
		Header("Authorization", bearer(reader)).
		JSON(`{"name":"renamed"}`).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	// the same call succeeds once the grant is raised to write
	share("write")
	apitest.New().
		Handler(handler).
		Put("/list/"+listID).
		Header("Authorization", bearer(reader)).
		JSON(`{"name":"renamed"}`).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	// write still is not ownership
	apitest.New().
		Handler(handler).
		Delete("/list/" + listID).
		Header("Authorization", bearer(reader)).
		Expect(t).
		Status(http.StatusForbidden).
		End()
}

func TestShareRejectsUnknownRole(t *testing.T) {
	handler, _ := testHandler(t)
	owner := signup(t, handler, "owner", "secret")
	listID := createList(t, handler, owner, "groceries")
	apitest.New().
		Handler(handler).
		Put("/list/"+listID+"/share").
		Header("Authorization", bearer(owner)).
		JSON(`{"username":"owner","role":"admin"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestAnonymousLists(t *testing.T) {
	handler, _ := testHandler(t)
	// no token at all: the list ends up owned by the anonymous subject
	listID := createList(t, handler, "", "public board")

	apitest.New().
		Handler(handler).
		Get("/list/"+listID).
		Expect(t).
		Assert(jsonpath.Equal("$.role", "owner")).
		Status(http.StatusOK).
		End()
	apitest.New().
		Handler(handler).
		Get("/list").
		Expect(t).
		Assert(jsonpath.Equal(`$[0].name`, "public board")).
		Status(http.StatusOK).
		End()

	// an authenticated user without a grant is still shut out
	user := signup(t, handler, "johndoe", "secret")
	apitest.New().
		Handler(handler).
		Get("/list/"+listID).
		Header("Authorization", bearer(user)).
		Expect(t).
		Status(http.StatusForbidden).
		End()
}

func TestItemFlow(t *testing.T) {
	handler, _ := testHandler(t)
	owner := signup(t, handler, "owner", "secret")
	listID := createList(t, handler, owner, "groceries")

	var item itemResponse
	rec := postJSON(t, handler, "/list/"+listID+"/item", owner, itemPayload{Name: "milk", Description: "two liters"}, &item)
	if rec.Code != http.StatusOK {
		t.Fatalf("creating item failed with status %v: %v", rec.Code, rec.Body.String())
	}
	if item.State != string(notebook.ItemInProgress) {
		t.Fatalf("new items must start in progress, got %v", item.State)
	}

	apitest.New().
		Handler(handler).
		Put("/list/"+listID+"/item/"+item.ID).
		Header("Authorization", bearer(owner)).
		JSON(`{"state":"complete"}`).
		Expect(t).
		Status(http.StatusNoContent).
		End()
	apitest.New().
		Handler(handler).
		Get("/list/"+listID+"/item/"+item.ID).
		Header("Authorization", bearer(owner)).
		Expect(t).
		Assert(jsonpath.Equal("$.state", "complete")).
		Assert(jsonpath.Equal("$.name", "milk")).
		Status(http.StatusOK).
		End()
	apitest.New().
		Handler(handler).
		Put("/list/"+listID+"/item/"+item.ID).
		Header("Authorization", bearer(owner)).
		JSON(`{"state":"done"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestOrphanedListGoesAwayAfterSweep(t *testing.T) {
	handler, book := testHandler(t)
	owner := signup(t, handler, "owner", "secret")
	listID := createList(t, handler, owner, "groceries")

	// the owner walking away leaves the list unreachable
	req := httptest.NewRequest("DELETE", "/list/"+listID+"/share/owner", nil)
	req.Header.Set("Authorization", bearer(owner))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("revoking own grant failed with status %v: %v", rec.Code, rec.Body.String())
	}

	removed, err := book.DeleteOrphanLists(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("expected the orphaned list to be reclaimed, removed %v", removed)
	}
	apitest.New().
		Handler(handler).
		Get("/list/" + listID).
		Header("Authorization", bearer(owner)).
		Expect(t).
		Status(http.StatusForbidden).
		End()
}
