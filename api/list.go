package api

import (
	"net/http"

	"github.com/andrebq/jotbox/auth"
	"github.com/andrebq/jotbox/notebook"
	"github.com/julienschmidt/httprouter"
)

type (
	listPayload struct {
		Name string `json:"name"`
	}

	listResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role,omitempty"`
	}
)

func (s *server) createList(w http.ResponseWriter, r *http.Request, _ httprouter.Params, caller auth.Identity) {
	var req listPayload
	if !readJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		http.Error(w, "list name is required", http.StatusBadRequest)
		return
	}
	// anonymous callers get anonymous-owned lists, that is a supported
	// arrangement rather than a rejected one
	id, err := s.book.CreateList(r.Context(), req.Name, caller.Subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{ID: formatID(id), Name: req.Name, Role: string(notebook.RoleOwner)})
}

func (s *server) visibleLists(w http.ResponseWriter, r *http.Request, _ httprouter.Params, caller auth.Identity) {
	lists, err := s.book.VisibleLists(r.Context(), caller.Subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]listResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, listResponse{ID: formatID(l.ID), Name: l.Name, Role: string(l.Role)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) getList(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}
	role, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleRead)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.book.GetList(r.Context(), listID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{ID: formatID(list.ID), Name: list.Name, Role: string(role)})
}

func (s *server) renameList(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}
	var req listPayload
	if !readJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		http.Error(w, "list name is required", http.StatusBadRequest)
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleWrite)
	if err == nil {
		err = s.book.RenameList(r.Context(), listID, req.Name)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) deleteList(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleOwner)
	if err == nil {
		err = s.book.DeleteList(r.Context(), listID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
