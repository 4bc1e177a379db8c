// Package api exposes a jotbox notebook as a REST surface. Every
// list-scoped route asks the gate who the caller is and the notebook
// whether that subject holds a high enough role before touching
// anything.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/andrebq/jotbox/auth"
	"github.com/andrebq/jotbox/internal/logutil"
	"github.com/andrebq/jotbox/notebook"
	"github.com/julienschmidt/httprouter"
)

type (
	server struct {
		book       *notebook.Control
		gate       *auth.Gate
		sessionTTL time.Duration
	}

	identifiedHandler func(w http.ResponseWriter, r *http.Request, params httprouter.Params, caller auth.Identity)
)

const (
	DefaultSessionTTL = 24 * time.Hour
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)
)

// AsHandler builds the full route table over one notebook. sessionTTL
// bounds how long tokens issued by signup and login stay usable.
func AsHandler(book *notebook.Control, gate *auth.Gate, sessionTTL time.Duration) http.Handler {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	s := &server{book: book, gate: gate, sessionTTL: sessionTTL}
	router := httprouter.New()

	router.POST("/signup", s.signup)
	router.POST("/login", s.login)
	router.POST("/logout", s.identified(auth.Required, s.logout))

	router.GET("/user", s.identified(auth.Required, s.getUser))
	router.PUT("/user", s.identified(auth.Required, s.updateUser))
	router.DELETE("/user", s.identified(auth.Required, s.deleteUser))

	router.POST("/list", s.identified(auth.Optional, s.createList))
	router.GET("/list", s.identified(auth.Optional, s.visibleLists))
	router.GET("/list/:list", s.identified(auth.Optional, s.getList))
	router.PUT("/list/:list", s.identified(auth.Optional, s.renameList))
	router.DELETE("/list/:list", s.identified(auth.Optional, s.deleteList))

	router.GET("/list/:list/share", s.identified(auth.Optional, s.listGrants))
	router.PUT("/list/:list/share", s.identified(auth.Optional, s.putGrant))
	router.DELETE("/list/:list/share", s.identified(auth.Optional, s.revokeAnonymousGrant))
	router.DELETE("/list/:list/share/:login", s.identified(auth.Optional, s.revokeGrant))

	router.POST("/list/:list/item", s.identified(auth.Optional, s.createItem))
	router.GET("/list/:list/item", s.identified(auth.Optional, s.listItems))
	router.GET("/list/:list/item/:item", s.identified(auth.Optional, s.getItem))
	router.PUT("/list/:list/item/:item", s.identified(auth.Optional, s.updateItem))
	router.DELETE("/list/:list/item/:item", s.identified(auth.Optional, s.deleteItem))

	return router
}

// identified runs the gate before the actual handler. Routes registered
// with Optional still end up rejected later when the anonymous subject
// holds no grant on the touched list.
func (s *server) identified(policy auth.Policy, next identifiedHandler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		caller, err := s.gate.AuthenticateToken(r.Context(), bearerToken(r), policy)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		next(w, r, params, caller)
	}
}

func bearerToken(r *http.Request) string {
	groups := bearerTokenRE.FindStringSubmatch(r.Header.Get("Authorization"))
	if len(groups) == 0 {
		return ""
	}
	return groups[1]
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var unauthorized auth.Unauthorized
	var badCreds auth.InvalidCredentials
	var badToken auth.InvalidToken
	var denied notebook.Denied
	var badRole notebook.InvalidRole
	var badState notebook.InvalidItemState
	var dupLogin notebook.DuplicateLogin
	switch {
	case errors.As(err, &unauthorized) || errors.As(err, &badCreds) || errors.As(err, &badToken):
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.As(err, &denied):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.As(err, &dupLogin):
		http.Error(w, "Username is already taken", http.StatusConflict)
	case isNotFound(err):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.As(err, &badRole) || errors.As(err, &badState):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Unexpected failure while serving request")
		http.Error(w, "Unable to process request, check logs for more information", http.StatusInternalServerError)
	}
}

func isNotFound(err error) bool {
	var user notebook.UserNotFound
	var list notebook.ListNotFound
	var item notebook.ItemNotFound
	var session notebook.SessionNotFound
	return errors.As(err, &user) || errors.As(err, &list) || errors.As(err, &item) || errors.As(err, &session)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	buf, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "unable to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.Header().Add("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	w.Write(buf)
}

func readJSON(w http.ResponseWriter, r *http.Request, body interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1_000_000))
	err := dec.Decode(body)
	if err != nil {
		http.Error(w, "unable to decode request body", http.StatusBadRequest)
		return false
	}
	return true
}

func listParam(params httprouter.Params) (uint64, bool) {
	return idParam(params, "list")
}

func idParam(params httprouter.Params, name string) (uint64, bool) {
	id, err := strconv.ParseUint(params.ByName(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
