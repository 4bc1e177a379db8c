package api

import (
	"net/http"

	"github.com/andrebq/jotbox/auth"
	"github.com/andrebq/jotbox/notebook"
	"github.com/julienschmidt/httprouter"
)

type (
	itemPayload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		State       string `json:"state"`
	}

	itemResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		State       string `json:"state"`
	}
)

func (s *server) createItem(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	if !ok {
		http.Error(w, "invalid list id", http.StatusBadRequest)
		return
	}
	var req itemPayload
	if !readJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		http.Error(w, "item name is required", http.StatusBadRequest)
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleWrite)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.book.CreateItem(r.Context(), listID, req.Name, req.Description)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{
		ID:          formatID(id),
		Name:        req.Name,
		Description: req.Description,
		State:       string(notebook.ItemInProgress),
	})
}

func (s *server) listItems(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
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
	items, err := s.book.ListItems(r.Context(), listID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse{
			ID:          formatID(it.ID),
			Name:        it.Name,
			Description: it.Description,
			State:       string(it.State),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) getItem(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	itemID, itemOK := idParam(params, "item")
	if !ok || !itemOK {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleRead)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	it, err := s.book.GetItem(r.Context(), listID, itemID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{
		ID:          formatID(it.ID),
		Name:        it.Name,
		Description: it.Description,
		State:       string(it.State),
	})
}

// updateItem applies the fields present in the payload on top of the
// stored item. Concurrent edits of the same item last-write-win, items
// carry no invariants worth a stronger discipline.
func (s *server) updateItem(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	itemID, itemOK := idParam(params, "item")
	if !ok || !itemOK {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req itemPayload
	if !readJSON(w, r, &req) {
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleWrite)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	it, err := s.book.GetItem(r.Context(), listID, itemID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Name != "" {
		it.Name = req.Name
	}
	if req.Description != "" {
		it.Description = req.Description
	}
	if req.State != "" {
		it.State, err = notebook.ParseItemState(req.State)
		if err != nil {
			s.fail(w, r, err)
			return
		}
	}
	err = s.book.UpdateItem(r.Context(), listID, itemID, it.Name, it.Description, it.State)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) deleteItem(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity) {
	listID, ok := listParam(params)
	itemID, itemOK := idParam(params, "item")
	if !ok || !itemOK {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	_, err := s.book.RequireAtLeast(r.Context(), caller.Subject, listID, notebook.RoleWrite)
	if err == nil {
		err = s.book.DeleteItem(r.Context(), listID, itemID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
