package api

import (
	"net/http"

	"github.com/andrebq/jotbox/auth"
	"github.com/andrebq/jotbox/notebook"
	"github.com/julienschmidt/httprouter"
)

type (
	grantResponse struct {
		Username  string `json:"username,omitempty"`
		Anonymous bool   `json:"anonymous,omitempty"`
		Role      string `json:"role"`
	}

	putGrantRequest struct {
		Username  string `json:"username"`
		Anonymous bool   `json:"anonymous"`
		Role      string `json:"role"`
	}
)

func (s *server) listGrants(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleRead)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	grants, err := s.book.ListGrants(r.Context(), listID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, grantResponse{
			Username:  g.Login,
			Anonymous: g.Subject.Anonymous(),
			Role:      string(g.Role),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// putGrant shares the list with another subject or changes the role it
// already holds, which is the same upsert either way.
func (s *server) putGrant(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}
	var req putGrantRequest
	if !readJSON(w, r, &req) {
		return
	}
	role, err := notebook.ParseRole(req.Role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Username == "" && !req.Anonymous {
		http.Error(w, "grant needs a username or the anonymous flag", http.StatusBadRequest)
		return
	}
	_, err = s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleOwner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	target := notebook.Anonymous()
	if req.Username != "" {
		user, _, err := s.book.LookupLogin(r.Context(), req.Username)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		target = notebook.UserSubject(user.ID)
	}
	err = s.book.Grant(r.Context(), target, listID, role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) revokeGrant(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleOwner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user, _, err := s.book.LookupLogin(r.Context(), params.ByName("login"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	err = s.book.Revoke(r.Context(), notebook.UserSubject(user.ID), listID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) revokeAnonymousGrant(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleOwner)
	if err == nil {
		err = s.book.Revoke(r.Context(), notebook.Anonymous(), listID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
