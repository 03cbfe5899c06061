package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/evcraddock/eventos/internal/user"
)

// handleAPIUsers routes /api/usuarios requests.
func (s *Server) handleAPIUsers(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/usuarios")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.listUsers(w, r)
		case http.MethodPost:
			s.addUser(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/usuarios/{id}
	id, ok := parseID(path)
	if !ok {
		apiError(w, "invalid usuario ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getUser(w, r, id)
	case http.MethodPut:
		s.updateUser(w, r, id)
	case http.MethodDelete:
		s.deleteUser(w, r, id)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		apiFail(w, r, err, "failed to fetch users")
		return
	}
	apiJSON(w, users, http.StatusOK)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request, id int64) {
	u, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		apiFail(w, r, err, "failed to fetch user")
		return
	}
	apiJSON(w, u, http.StatusOK)
}

func (s *Server) addUser(w http.ResponseWriter, r *http.Request) {
	var req user.Input
	if err := s.decodeBody(w, r, &req); err != nil {
		apiFail(w, r, err, "failed to create user")
		return
	}

	u, err := s.users.Add(r.Context(), req)
	if err != nil {
		apiFail(w, r, err, "failed to create user")
		return
	}
	apiJSON(w, u, http.StatusCreated)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, id int64) {
	var req user.Input
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	u, err := s.users.Update(r.Context(), id, req)
	if err != nil {
		apiFail(w, r, err, "failed to update user")
		return
	}
	apiJSON(w, u, http.StatusOK)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, id int64) {
	u, err := s.users.Delete(r.Context(), id)
	if err != nil {
		apiFail(w, r, err, "failed to delete user")
		return
	}
	apiJSON(w, u, http.StatusOK)
}
