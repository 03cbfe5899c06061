package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evcraddock/eventos/internal/apperr"
	"github.com/evcraddock/eventos/internal/comment"
	"github.com/evcraddock/eventos/internal/event"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encoding error response", "error", err)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// apiFail maps err to a status code. Bad requests and missing rows echo the
// error message; anything else is logged and answered with the generic
// category message only.
func apiFail(w http.ResponseWriter, r *http.Request, err error, category string) {
	switch {
	case apperr.IsBadRequest(err):
		apiError(w, err.Error(), http.StatusBadRequest)
	case apperr.IsNotFound(err):
		apiError(w, err.Error(), http.StatusNotFound)
	default:
		slog.ErrorContext(r.Context(), category, "error", err, "method", r.Method, "path", r.URL.Path)
		apiError(w, category, http.StatusInternalServerError)
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody decodes a JSON request body into dst and validates it.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.NewBadRequest("invalid JSON body")
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperr.NewBadRequest("%s", validationMessage(verrs[0]))
		}
		return apperr.NewBadRequest("invalid request: %v", err)
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// parseID parses a positive path identifier.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleAPIEvents routes /api/eventos requests, including nested comments.
func (s *Server) handleAPIEvents(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/eventos")
	path = strings.Trim(path, "/")

	// /api/eventos: list or create
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListEvents(w, r)
		case http.MethodPost:
			s.apiAddEvent(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(path, "/")
	eventID, ok := parseID(parts[0])
	if !ok {
		apiError(w, "invalid evento ID", http.StatusBadRequest)
		return
	}

	switch {
	// /api/eventos/{id}
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.apiGetEvent(w, r, eventID)
		case http.MethodPut:
			s.apiUpdateEvent(w, r, eventID)
		case http.MethodDelete:
			s.apiDeleteEvent(w, r, eventID)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}

	// /api/eventos/{id}/comentarios
	case len(parts) == 2 && parts[1] == "comentarios":
		switch r.Method {
		case http.MethodGet:
			s.apiListComments(w, r, eventID)
		case http.MethodPost:
			s.apiAddComment(w, r, eventID)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}

	// /api/eventos/{id}/comentarios/{comentarioId}
	case len(parts) == 3 && parts[1] == "comentarios":
		commentID, ok := parseID(parts[2])
		if !ok {
			apiError(w, "invalid comentario ID", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodPut:
			s.apiUpdateComment(w, r, eventID, commentID)
		case http.MethodDelete:
			s.apiDeleteComment(w, r, eventID, commentID)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}

	default:
		apiError(w, "not found", http.StatusNotFound)
	}
}

// apiListComments returns the comments of an event in creation order.
func (s *Server) apiListComments(w http.ResponseWriter, r *http.Request, eventID int64) {
	comments, err := s.commentRepo.ListByEventID(r.Context(), eventID)
	if err != nil {
		apiFail(w, r, err, "failed to fetch comments")
		return
	}
	apiJSON(w, comments, http.StatusOK)
}

// apiAddComment adds a comment to an event.
func (s *Server) apiAddComment(w http.ResponseWriter, r *http.Request, eventID int64) {
	var req comment.NewComment
	if err := s.decodeBody(w, r, &req); err != nil {
		apiFail(w, r, err, "failed to create comment")
		return
	}

	c, err := s.commentRepo.Add(r.Context(), eventID, req)
	if err != nil {
		apiFail(w, r, err, "failed to create comment")
		return
	}

	apiJSON(w, c, http.StatusCreated)
}

// apiUpdateComment merges the provided fields over an existing comment.
func (s *Server) apiUpdateComment(w http.ResponseWriter, r *http.Request, eventID, commentID int64) {
	var req comment.Patch
	if err := s.decodeBody(w, r, &req); err != nil {
		apiFail(w, r, err, "failed to update comment")
		return
	}

	c, err := s.commentRepo.Update(r.Context(), eventID, commentID, req)
	if err != nil {
		apiFail(w, r, err, "failed to update comment")
		return
	}

	apiJSON(w, c, http.StatusOK)
}

// apiDeleteComment removes a comment and returns its prior representation.
func (s *Server) apiDeleteComment(w http.ResponseWriter, r *http.Request, eventID, commentID int64) {
	c, err := s.commentRepo.Delete(r.Context(), eventID, commentID)
	if err != nil {
		apiFail(w, r, err, "failed to delete comment")
		return
	}
	apiJSON(w, c, http.StatusOK)
}

// apiListEvents returns all events.
func (s *Server) apiListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.eventRepo.List(r.Context())
	if err != nil {
		apiFail(w, r, err, "failed to fetch events")
		return
	}
	apiJSON(w, events, http.StatusOK)
}

// apiGetEvent returns a single event.
func (s *Server) apiGetEvent(w http.ResponseWriter, r *http.Request, id int64) {
	e, err := s.eventRepo.GetByID(r.Context(), id)
	if err != nil {
		apiFail(w, r, err, "failed to fetch event")
		return
	}
	apiJSON(w, e, http.StatusOK)
}

// apiAddEvent creates an event.
func (s *Server) apiAddEvent(w http.ResponseWriter, r *http.Request) {
	var req event.Input
	if err := s.decodeBody(w, r, &req); err != nil {
		apiFail(w, r, err, "failed to create event")
		return
	}

	e, err := s.eventRepo.Insert(r.Context(), req)
	if err != nil {
		apiFail(w, r, err, "failed to create event")
		return
	}
	apiJSON(w, e, http.StatusCreated)
}

// apiUpdateEvent merges the provided fields over an existing event.
func (s *Server) apiUpdateEvent(w http.ResponseWriter, r *http.Request, id int64) {
	var req event.Input
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	e, err := s.eventRepo.Update(r.Context(), id, req)
	if err != nil {
		apiFail(w, r, err, "failed to update event")
		return
	}
	apiJSON(w, e, http.StatusOK)
}

// apiDeleteEvent removes an event and its comments.
func (s *Server) apiDeleteEvent(w http.ResponseWriter, r *http.Request, id int64) {
	e, err := s.eventRepo.Delete(r.Context(), id)
	if err != nil {
		apiFail(w, r, err, "failed to delete event")
		return
	}
	apiJSON(w, e, http.StatusOK)
}
