package api

import (
	"net/http"

	"github.com/andrebq/jotbox/auth"
	"github.com/julienschmidt/httprouter"
)

type (
	signupRequest struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	tokenResponse struct {
		Token string `json:"token"`
	}

	userResponse struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"firstName,omitempty"`
		LastName  string `json:"lastName,omitempty"`
	}

	updateUserRequest struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Password  string `json:"password"`
	}
)

func (s *server) signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req signupRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}
	cred, err := auth.DeriveCredential([]byte(req.Password))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	userID, err := s.book.CreateUser(r.Context(), req.Username, req.FirstName, req.LastName, cred)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.issueToken(w, r, userID)
}

func (s *server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if !readJSON(w, r, &req) {
		return
	}
	caller, err := s.gate.AuthenticateCredentials(r.Context(), req.Username, []byte(req.Password))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	userID, _ := caller.Subject.UserID()
	s.issueToken(w, r, userID)
}

// issueToken opens a fresh session for the user and hands back its
// sealed form, the only shape in which session ids ever leave the
// process.
func (s *server) issueToken(w http.ResponseWriter, r *http.Request, userID uint64) {
	session, err := s.book.CreateSession(r.Context(), userID, s.sessionTTL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.gate.Seal(session.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *server) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params, caller auth.Identity) {
	err := s.gate.Logout(r.Context(), bearerToken(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params, caller auth.Identity) {
	userID, _ := caller.Subject.UserID()
	user, err := s.book.GetUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{
		ID:        formatID(user.ID),
		Username:  user.Login,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// updateUser touches only what the payload carries: a request with
// just a password leaves the profile names alone.
func (s *server) updateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params, caller auth.Identity) {
	var req updateUserRequest
	if !readJSON(w, r, &req) {
		return
	}
	userID, _ := caller.Subject.UserID()
	if req.FirstName != "" || req.LastName != "" {
		err := s.book.UpdateProfile(r.Context(), userID, req.FirstName, req.LastName)
		if err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if req.Password != "" {
		// a password change always re-salts
		cred, err := auth.DeriveCredential([]byte(req.Password))
		if err == nil {
			err = s.book.UpdateCredential(r.Context(), userID, cred)
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) deleteUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params, caller auth.Identity) {
	userID, _ := caller.Subject.UserID()
	err := s.book.DeleteUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
