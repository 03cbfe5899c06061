// Package store holds the comment list of the event currently being viewed
// and keeps it in sync with the API.
//
// Reads and writes fail differently. A failed Fetch is logged and leaves an
// empty list without touching State.Err. A failed Add or Delete records a
// message in State.Err and returns the error to the caller.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/evcraddock/eventos/internal/client"
	"github.com/evcraddock/eventos/internal/comment"
)

// DefaultTimeout bounds every request issued by the store.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNoProvider is returned when a closed or nil store is used.
	ErrNoProvider = errors.New("comment store used outside of an open store")

	// ErrInvalidEvent is returned by writes with a non-positive event id.
	ErrInvalidEvent = errors.New("invalid event id")
)

// CommentAPI is the subset of the REST client the store needs.
type CommentAPI interface {
	ListComments(ctx context.Context, eventID int64) ([]*comment.Comment, error)
	AddComment(ctx context.Context, eventID int64, in comment.NewComment) (*comment.Comment, error)
	DeleteComment(ctx context.Context, eventID, commentID int64) (*comment.Comment, error)
}

var _ CommentAPI = (*client.Client)(nil)

// State is a snapshot of the store.
type State struct {
	Comments []*comment.Comment
	Loading  bool
	Err      string
}

func (s State) clone() State {
	c := s
	c.Comments = make([]*comment.Comment, len(s.Comments))
	copy(c.Comments, s.Comments)
	return c
}

// Option configures a CommentStore.
type Option func(*CommentStore)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *CommentStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *CommentStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// CommentStore is the comment state holder for one event at a time.
// Operations are not serialized against each other; overlapping fetches
// each apply their own result and the last one to finish wins.
type CommentStore struct {
	api     CommentAPI
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
	closed  bool
}

// New creates a store with empty state.
func New(api CommentAPI, opts ...Option) *CommentStore {
	s := &CommentStore{
		api:     api,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		state:   State{Comments: []*comment.Comment{}},
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state. It panics with ErrNoProvider
// on a closed or nil store.
func (s *CommentStore) State() State {
	if s == nil {
		panic(ErrNoProvider)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		panic(ErrNoProvider)
	}
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (s *CommentStore) Subscribe(fn func(State)) (unsubscribe func()) {
	if s == nil {
		panic(ErrNoProvider)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		panic(ErrNoProvider)
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Close discards the state and all subscribers.
func (s *CommentStore) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.state = State{}
	s.subs = nil
}

// Fetch replaces the comment list with the comments of eventID. A
// non-positive id clears the list without a request. Request failures are
// logged and leave an empty list; Err is never modified. Fetch only returns
// an error when the store is closed.
func (s *CommentStore) Fetch(ctx context.Context, eventID int64) error {
	if err := s.check(); err != nil {
		return err
	}
	if eventID <= 0 {
		s.update(func(st *State) { st.Comments = []*comment.Comment{} })
		return nil
	}

	s.update(func(st *State) { st.Loading = true })

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	comments, err := s.api.ListComments(reqCtx, eventID)
	if err != nil {
		s.logger.WarnContext(ctx, "fetching comments failed", "evento", eventID, "error", err)
		comments = nil
	}
	if comments == nil {
		comments = []*comment.Comment{}
	}

	s.update(func(st *State) {
		st.Comments = comments
		st.Loading = false
	})
	return nil
}

// Add creates a comment on eventID and then refetches the list.
func (s *CommentStore) Add(ctx context.Context, eventID int64, authorName, body string, authorID *int64) error {
	if err := s.check(); err != nil {
		return err
	}
	if eventID <= 0 {
		return ErrInvalidEvent
	}

	in := comment.NewComment{Author: authorName, Body: body, UserID: authorID}
	err := s.withTimeout(ctx, func(reqCtx context.Context) error {
		_, err := s.api.AddComment(reqCtx, eventID, in)
		return err
	})
	if err != nil {
		return s.fail(ctx, "adding comment", eventID, err)
	}

	s.update(func(st *State) { st.Err = "" })
	return s.Fetch(ctx, eventID)
}

// Delete removes a comment from eventID and then refetches the list.
func (s *CommentStore) Delete(ctx context.Context, eventID, commentID int64) error {
	if err := s.check(); err != nil {
		return err
	}
	if eventID <= 0 {
		return ErrInvalidEvent
	}

	err := s.withTimeout(ctx, func(reqCtx context.Context) error {
		_, err := s.api.DeleteComment(reqCtx, eventID, commentID)
		return err
	})
	if err != nil {
		return s.fail(ctx, "deleting comment", eventID, err, "comentario", commentID)
	}

	s.update(func(st *State) { st.Err = "" })
	return s.Fetch(ctx, eventID)
}

func (s *CommentStore) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(reqCtx)
}

// fail records a write failure in Err and returns it wrapped.
func (s *CommentStore) fail(ctx context.Context, op string, eventID int64, err error, attrs ...any) error {
	msg := Message(err)
	args := append([]any{"evento", eventID, "error", err}, attrs...)
	s.logger.ErrorContext(ctx, op+" failed", args...)
	s.update(func(st *State) { st.Err = msg })
	return fmt.Errorf("%s: %w", op, err)
}

// Message turns a request error into the text stored in State.Err.
func Message(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return err.Error()
	}
}

func (s *CommentStore) check() error {
	if s == nil {
		return ErrNoProvider
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNoProvider
	}
	return nil
}

// update applies fn to the state and publishes the result. Updates after
// Close are dropped.
func (s *CommentStore) update(fn func(*State)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn(&s.state)
	snap := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}
